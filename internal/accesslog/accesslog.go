// Package accesslog appends one JSON object per served request.
package accesslog

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"coffee-env/internal/runid"
)

var ErrClosed = errors.New("access log closed")

type Record struct {
	RunID     string  `json:"run_id"`
	Timestamp string  `json:"ts"`
	Method    string  `json:"method"`
	Path      string  `json:"path"`
	Query     string  `json:"query,omitempty"`
	Status    int     `json:"status"`
	Bytes     int     `json:"bytes,omitempty"`
	Remote    string  `json:"remote,omitempty"`
	UserAgent string  `json:"ua,omitempty"`
	ElapsedMS float64 `json:"elapsed_ms"`
}

// Logger writes each record with a single write on an O_APPEND file, so
// lines from concurrent requests never interleave.
type Logger struct {
	runID string

	mu       sync.Mutex
	f        *os.File
	failures int
}

func New(path, runID string) (*Logger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open access log %s: %w", path, err)
	}
	return &Logger{runID: runID, f: f}, nil
}

// Request logs one served request. A nil Logger accepts and drops it.
func (l *Logger) Request(r *http.Request, status, bytes int, elapsed time.Duration) error {
	if l == nil {
		return nil
	}
	rec := Record{
		RunID:     l.runID,
		Timestamp: runid.NowTS(),
		Method:    r.Method,
		Path:      r.URL.Path,
		Query:     r.URL.RawQuery,
		Status:    status,
		Bytes:     bytes,
		Remote:    r.RemoteAddr,
		UserAgent: r.UserAgent(),
		ElapsedMS: float64(elapsed.Microseconds()) / 1000,
	}
	line, err := json.Marshal(rec)
	if err != nil {
		return l.fail(fmt.Errorf("encode access record: %w", err))
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f == nil {
		l.failures++
		return ErrClosed
	}
	if _, err := l.f.Write(append(line, '\n')); err != nil {
		l.failures++
		return fmt.Errorf("write access record: %w", err)
	}
	return nil
}

func (l *Logger) fail(err error) error {
	l.mu.Lock()
	l.failures++
	l.mu.Unlock()
	return err
}

// Failures counts records that could not be written.
func (l *Logger) Failures() int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.failures
}

func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f == nil {
		return nil
	}
	err := l.f.Close()
	l.f = nil
	return err
}
