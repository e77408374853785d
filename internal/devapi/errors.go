package devapi

import (
	"errors"
	"os"

	"github.com/danielgtaylor/huma/v2"
)

type Code string

const (
	CodeNotFound Code = "not_found"
	CodeInternal Code = "internal"
)

// CodeOf classifies a store error.
func CodeOf(err error) Code {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, os.ErrNotExist):
		return CodeNotFound
	default:
		return CodeInternal
	}
}

// toHumaError maps a store error to a problem response. Missing resources
// report notFound as the detail.
func (s *Server) toHumaError(err error, notFound string) error {
	switch CodeOf(err) {
	case CodeNotFound:
		return huma.Error404NotFound(notFound)
	default:
		s.logger.Error("dev api operation failed", "error", err)
		return huma.Error500InternalServerError("Internal server error")
	}
}
