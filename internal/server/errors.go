package server

import (
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

var (
	// ErrValidation marks malformed or disallowed input. Responds 400.
	ErrValidation = errors.New("invalid request")
	// ErrNotFound marks a missing resource. Responds 404.
	ErrNotFound = errors.New("not found")
)

type requestError struct {
	kind error
	msg  string
}

func (e *requestError) Error() string {
	return e.msg
}

func (e *requestError) Unwrap() error {
	return e.kind
}

func invalid(format string, args ...any) error {
	return &requestError{kind: ErrValidation, msg: fmt.Sprintf(format, args...)}
}

func notFound(format string, args ...any) error {
	return &requestError{kind: ErrNotFound, msg: fmt.Sprintf(format, args...)}
}

// handlerFunc reports failures as errors; handle turns them into responses.
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		s.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("requestID", requestIDFrom(r.Context())),
			zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
