package common

import (
	"github.com/geonosis/console/internal/apiclient"
)

type Runtime interface {
	Client() *apiclient.Client
	Output() string
}

// RequestErrorFunc maps a client or validation error onto the CLI's error
// type, keeping the backend status.
type RequestErrorFunc func(err error) error

type WrapErrorFunc func(status int, message string) error
