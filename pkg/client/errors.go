package client

import "errors"

// Kinds. Every error a Session returns matches exactly one of these with errors.Is.
var (
	ErrConfig   = errors.New("configuration error")
	ErrResource = errors.New("resource error")
	ErrResolve  = errors.New("resolution error")
	ErrConnect  = errors.New("connection error")
	ErrEngine   = errors.New("tls engine error")
)

var (
	ErrNotClient          = newError(ErrConfig, "not a client context")
	ErrNoHost             = newError(ErrConfig, "host not specified")
	ErrNoPort             = newError(ErrConfig, "no port provided")
	ErrInvalidDescriptors = newError(ErrConfig, "invalid file descriptors")
	ErrNoCallbacks        = newError(ErrConfig, "no callbacks provided")
	ErrOCSPStapling       = newError(ErrConfig, "OCSP stapling is not supported")
	ErrNoServerName       = newError(ErrConfig, "server name not specified")
	ErrUnsupportedKeyType = newError(ErrConfig, "unsupported key type")
	ErrAlreadyConnected   = newError(ErrConfig, "already connected")
	ErrNotConnected       = newError(ErrConfig, "not connected")
)

// Error is a cause tagged with its kind. It prints as the cause alone.
type Error struct {
	Kind error
	Err  error
}

func newError(kind error, msg string) *Error {
	return &Error{Kind: kind, Err: errors.New(msg)}
}

func wrap(kind error, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Err: err}
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() []error {
	return []error{e.Kind, e.Err}
}
