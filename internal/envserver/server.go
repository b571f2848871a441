package envserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"text/template"
	"time"

	"coffee-env/internal/accesslog"
	"coffee-env/internal/environment"
)

const shutdownGrace = 2 * time.Second

type Server struct {
	srv  *http.Server
	addr string
	done chan struct{}
}

// Addr is the bound listen address, useful when started on port 0.
func (s *Server) Addr() string { return s.addr }

// Done is closed once the server has finished shutting down.
func (s *Server) Done() <-chan struct{} { return s.done }

// Shutdown stops accepting requests and waits for in-flight ones until ctx
// expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// Handler renders both documents once; the holder never changes.
func Handler(h *environment.Holder, log *accesslog.Logger) (http.Handler, error) {
	if h == nil {
		return nil, fmt.Errorf("environment holder is nil")
	}
	tmpl, err := loadTemplate()
	if err != nil {
		return nil, err
	}
	jsonBody, jsBody, err := render(tmpl, h.Environment())
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/environment.json", serveStatic("application/json", jsonBody))
	mux.HandleFunc("/environment.js", serveStatic("text/javascript; charset=utf-8", jsBody))
	mux.HandleFunc("/healthz", serveStatic("text/plain; charset=utf-8", []byte("ok\n")))

	return withAccessLog(mux, log), nil
}

// Start serves on addr until ctx is done, then shuts down within a short
// grace period. Done reports when that has finished.
func Start(ctx context.Context, addr string, h *environment.Holder, log *accesslog.Logger) (*Server, error) {
	if addr == "" {
		return nil, fmt.Errorf("envserver addr is empty")
	}
	handler, err := Handler(h, log)
	if err != nil {
		return nil, err
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("envserver listen %s: %w", addr, err)
	}

	s := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	es := &Server{srv: s, addr: ln.Addr().String(), done: make(chan struct{})}
	go func() {
		defer close(es.done)
		<-ctx.Done()
		ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := es.Shutdown(ctx); err != nil {
			slog.Warn("envserver shutdown incomplete", "addr", es.addr, "err", err)
		}
	}()

	go func() {
		if err := s.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("envserver stopped", "addr", es.addr, "err", err)
		}
	}()
	return es, nil
}

func render(tmpl *template.Template, env environment.Environment) ([]byte, []byte, error) {
	jsonBody, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("encode environment: %w", err)
	}
	jsonBody = append(jsonBody, '\n')

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, env); err != nil {
		return nil, nil, fmt.Errorf("render environment module: %w", err)
	}
	return jsonBody, buf.Bytes(), nil
}

func serveStatic(contentType string, body []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Content-Length", fmt.Sprint(len(body)))
		if r.Method == http.MethodHead {
			return
		}
		_, _ = w.Write(body)
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

func withAccessLog(next http.Handler, log *accesslog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w}
		next.ServeHTTP(sw, r)
		if sw.status == 0 {
			sw.status = http.StatusOK
		}
		slog.Debug("envserver request", "method", r.Method, "path", r.URL.Path, "status", sw.status)
		if err := log.Request(r, sw.status, sw.bytes, time.Since(start)); err != nil {
			slog.Warn("access log write failed", "path", r.URL.Path, "failures", log.Failures(), "err", err)
		}
	})
}
