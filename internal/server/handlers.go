package server

import (
	"errors"
	"fmt"
	"html"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

const (
	headerIdempotencyKey = "Idempotency-Key"
	headerCounterValue   = "X-Counter-Value"
	headerReplayed       = "Idempotent-Replayed"
)

// handleIncrement advances the counter. When writing the response fails the
// value has already been persisted; the client may retry with the same
// Idempotency-Key to learn it.
func (s *Server) handleIncrement(w http.ResponseWriter, r *http.Request) error {
	v, replayed, err := s.counter.UpOnce(r.Context(), r.Header.Get(headerIdempotencyKey))
	if err != nil {
		s.metrics.increments.WithLabelValues("error").Inc()
		return fmt.Errorf("counter.UpOnce: %w", err)
	}

	result := "ok"
	if replayed {
		result = "replayed"
		w.Header().Set(headerReplayed, "true")
	}
	s.metrics.increments.WithLabelValues(result).Inc()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set(headerCounterValue, strconv.FormatInt(v, 10))
	if _, err := fmt.Fprintf(w, "counter updated safely: %d\n", v); err != nil {
		s.logger.Warn("response lost after increment",
			zap.Int64("value", v),
			zap.String("requestID", requestIDFrom(r.Context())),
			zap.Error(err))
	}
	return nil
}

func (s *Server) handleComment(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		return invalid("malformed form: %v", err)
	}
	vs, ok := r.PostForm["texto"]
	if !ok || len(vs) == 0 {
		return invalid("field texto is required")
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	fmt.Fprintf(w, "comment received safely: %s", html.EscapeString(vs[0]))
	return nil
}

func (s *Server) handleOpen(w http.ResponseWriter, r *http.Request) error {
	name := r.URL.Query().Get("arquivo")
	if name == "" {
		return invalid("query parameter arquivo is required")
	}
	if !validFileName(name) {
		return invalid("invalid file name")
	}

	p := filepath.Join(s.baseDir, name)
	// Lstat so a symlink planted in BaseDir cannot point outside it.
	fi, err := os.Lstat(p)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && !fi.Mode().IsRegular()) {
		return notFound("file not found")
	}
	if err != nil {
		return fmt.Errorf("os.Lstat: %w", err)
	}

	b, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return notFound("file not found")
	}
	if err != nil {
		return fmt.Errorf("os.ReadFile: %w", err)
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Write(b)
	return nil
}

// validFileName accepts a bare file name: no parent marker, no separator of
// either platform, no NUL.
func validFileName(name string) bool {
	return !strings.Contains(name, "..") && !strings.ContainsAny(name, "/\\\x00")
}
