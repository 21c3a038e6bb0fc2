package client

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/team-dbx/dbx/internal/common"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrServer       = errors.New("server error")
	ErrMissingID    = errors.New("missing id")
)

// StatusError is a non-2xx answer of the Resource API.
type StatusError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("status %d", e.StatusCode)
}

func (e *StatusError) Is(target error) bool {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return target == ErrUnauthorized
	case http.StatusInternalServerError:
		return target == ErrServer
	case http.StatusNotFound:
		return target == common.ErrorNotFound
	}
	return false
}
