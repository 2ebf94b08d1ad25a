// Command formctl submits the application's forms from the terminal, running
// the same flows and feedback handling the browser bundle does.
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Its-donkey/formwire/internal/ui/formspec"
	"github.com/Its-donkey/formwire/logging"
)

type rootOptions struct {
	catalog  string
	logLevel string
	timeout  time.Duration
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "formctl",
		Short: "Drive server-rendered forms without a browser",
		Long: `formctl fetches a page, fills one of its forms and submits it the way
the browser client would: one request per submission, the anti-forgery
token attached, and the server's feedback printed as notifications.`,
		SilenceUsage: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().StringVar(&opts.catalog, "catalog", "", "Form catalog file (default: embedded catalog)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "WARN", "Log level (DEBUG, INFO, WARN, ERROR)")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "Overall operation timeout")

	root.AddCommand(newFormsCmd(opts))
	root.AddCommand(newSubmitCmd(opts))
	return root
}

func (o *rootOptions) loadCatalog() (*formspec.Catalog, error) {
	if o.catalog == "" {
		return formspec.Default()
	}
	return formspec.Load(o.catalog)
}

func (o *rootOptions) logger(w io.Writer) *logging.Logger {
	return logging.New("formctl", logging.ParseLevel(o.logLevel), w)
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
