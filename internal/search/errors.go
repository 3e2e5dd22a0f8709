package search

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrorKind classifies a fetch failure.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindNetwork
	KindServer
	KindAuth
	KindNotFound
	KindUnsupported
	KindCancelled
)

func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindServer:
		return "server"
	case KindAuth:
		return "auth"
	case KindNotFound:
		return "not found"
	case KindUnsupported:
		return "unsupported"
	case KindCancelled:
		return "cancelled"
	}
	return "unknown"
}

// ErrUnknownPage is returned when a page is requested whose token was never
// handed out for that request.
var ErrUnknownPage = errors.New("unknown page token")

// ErrNoAccount is returned when a remote search is issued without a
// configured provider account.
var ErrNoAccount = errors.New("no cloud account configured")

// FetchError is a classified failure of a remote or local fetch.
type FetchError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: %s error: %v", e.Op, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Retryable reports whether repeating the same fetch may succeed.
func (e *FetchError) Retryable() bool {
	return e.Kind == KindNetwork || e.Kind == KindServer
}

// NewError wraps err with a kind, unless it is already classified.
func NewError(kind ErrorKind, op string, err error) error {
	if err == nil {
		return nil
	}
	var fe *FetchError
	if errors.As(err, &fe) {
		return err
	}
	return &FetchError{Kind: kind, Op: op, Err: err}
}

// Unsupported reports that a provider cannot answer a search type.
func Unsupported(op string, t Type) error {
	return &FetchError{Kind: KindUnsupported, Op: op, Err: fmt.Errorf("search type %s is not supported", t)}
}

// ClassifyError returns the kind of err. Already classified errors keep their
// kind; context and net errors are recognised; anything else is unknown.
func ClassifyError(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	if errors.Is(err, context.Canceled) {
		return KindCancelled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindNetwork
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindNetwork
	}
	if errors.Is(err, ErrUnknownPage) {
		return KindNotFound
	}
	return KindUnknown
}

// KindForStatus maps an HTTP status code to an error kind.
func KindForStatus(code int) ErrorKind {
	switch {
	case code == 401 || code == 403:
		return KindAuth
	case code == 404:
		return KindNotFound
	case code == 429 || code >= 500:
		return KindServer
	}
	return KindUnknown
}
