package main

import (
	"encoding/json"
	"mime"
	"net/http"
	"net/http/httputil"
	"net/url"
	"path/filepath"

	"github.com/Its-donkey/formwire/logging"
)

const backendUnavailable = "The service is temporarily unavailable. Please try again."

type server struct {
	backend   *url.URL
	assetsDir string
	log       *logging.Logger
}

func init() {
	_ = mime.AddExtensionType(".wasm", "application/wasm")
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/main.wasm", s.assetHandler("main.wasm", "application/wasm"))
	mux.Handle("/wasm_exec.js", s.assetHandler("wasm_exec.js", "application/javascript"))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.Handle("/", s.backendProxy())
	return mux
}

func (s *server) assetHandler(name, contentType string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Cache-Control", "no-cache")
		http.ServeFile(w, r, filepath.Join(s.assetsDir, name))
	})
}

// backendProxy forwards pages and form endpoints to the backend. Cookies and
// CSRF headers pass through untouched.
func (s *server) backendProxy() http.Handler {
	proxy := httputil.NewSingleHostReverseProxy(s.backend)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		s.log.WithRequestID(r.Header.Get(logging.RequestIDHeader)).
			WithCategory("proxy").
			WithField("method", r.Method).
			WithField("path", r.URL.Path).
			Error("backend request failed", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": backendUnavailable})
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Header.Set("X-Forwarded-Host", r.Host)
		r.Host = s.backend.Host
		proxy.ServeHTTP(w, r)
	})
}
