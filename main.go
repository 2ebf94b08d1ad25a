package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"
)

type procConfig struct {
	Name string
	Args []string
	Dir  string
	Env  []string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend := os.Getenv("FORMWIRE_BACKEND_URL")
	if backend == "" {
		backend = "http://127.0.0.1:5000"
	}

	if err := prepareAssets(ctx, "ui"); err != nil {
		fmt.Fprintf(os.Stderr, "formwire build failed: %v\n", err)
		os.Exit(1)
	}

	procs := []procConfig{
		{
			Name: "ui",
			Args: []string{
				"go", "run", "./cmd/ui-server",
				"-listen", "127.0.0.1:4173",
				"-backend", backend,
				"-assets", "ui",
			},
		},
	}

	if err := runAll(ctx, procs); err != nil {
		fmt.Fprintf(os.Stderr, "formwire exited with error: %v\n", err)
		os.Exit(1)
	}
}

// prepareAssets builds the wasm bundle and copies the matching wasm_exec.js
// next to it.
func prepareAssets(ctx context.Context, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	build := exec.CommandContext(ctx, "go", "build", "-o", filepath.Join(dir, "main.wasm"), "./cmd/ui-wasm")
	build.Env = append(append([]string{}, os.Environ()...), "GOOS=js", "GOARCH=wasm")
	build.Stdout = os.Stdout
	build.Stderr = os.Stderr
	if err := build.Run(); err != nil {
		return fmt.Errorf("build ui-wasm: %w", err)
	}

	out, err := exec.CommandContext(ctx, "go", "env", "GOROOT").Output()
	if err != nil {
		return fmt.Errorf("locate GOROOT: %w", err)
	}
	goroot := strings.TrimSpace(string(out))
	var runtimeJS []byte
	for _, candidate := range []string{
		filepath.Join(goroot, "lib", "wasm", "wasm_exec.js"),
		filepath.Join(goroot, "misc", "wasm", "wasm_exec.js"),
	} {
		if runtimeJS, err = os.ReadFile(candidate); err == nil {
			break
		}
	}
	if err != nil {
		return fmt.Errorf("read wasm_exec.js: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, "wasm_exec.js"), runtimeJS, 0o644)
}

func runAll(ctx context.Context, procs []procConfig) error {
	if len(procs) == 0 {
		return fmt.Errorf("no processes configured")
	}
	var wg sync.WaitGroup
	errCh := make(chan error, len(procs))

	for _, cfg := range procs {
		wg.Add(1)
		go func(cfg procConfig) {
			defer wg.Done()
			cmd := exec.CommandContext(ctx, cfg.Args[0], cfg.Args[1:]...)
			cmd.Stdout = os.Stdout
			cmd.Stderr = os.Stderr
			if cfg.Dir != "" {
				cmd.Dir = cfg.Dir
			}
			if len(cfg.Env) > 0 {
				cmd.Env = append(append([]string{}, os.Environ()...), cfg.Env...)
			}
			if err := cmd.Start(); err != nil {
				errCh <- fmt.Errorf("%s start: %w", cfg.Name, err)
				return
			}
			if err := cmd.Wait(); err != nil {
				// If the context was cancelled, treat the exit as expected.
				select {
				case <-ctx.Done():
					return
				default:
				}
				errCh <- fmt.Errorf("%s exited: %w", cfg.Name, err)
			}
		}(cfg)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		shutdownDelay := time.After(2 * time.Second)
		select {
		case <-done:
		case <-shutdownDelay:
		}
	case err := <-errCh:
		return err
	case <-done:
	}
	return nil
}
