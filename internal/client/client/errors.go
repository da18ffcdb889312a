package client

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorKind classifies every failure surfaced by the gateway and the
// services built on it.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	// KindValidation is a local, field-level failure; no call was made.
	KindValidation
	// KindUnauthenticated means no trusted tenant id was available, or the
	// remote refused the one sent.
	KindUnauthenticated
	// KindRemoteRejected is a 4xx answer with a message for the user.
	KindRemoteRejected
	// KindTransport covers network failures, 5xx and unreadable bodies.
	KindTransport
	// KindStale marks a response that must not be applied. Never shown.
	KindStale
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindRemoteRejected:
		return "rejected"
	case KindTransport:
		return "transport"
	case KindStale:
		return "stale"
	default:
		return "unknown"
	}
}

var (
	ErrValidation      = errors.New("validation failed")
	ErrUnauthenticated = errors.New("no trusted tenant")
	ErrRejected        = errors.New("request rejected")
	ErrUnavailable     = errors.New("server unavailable")
	ErrStale           = errors.New("stale response")
)

func (k ErrorKind) sentinel() error {
	switch k {
	case KindValidation:
		return ErrValidation
	case KindUnauthenticated:
		return ErrUnauthenticated
	case KindRemoteRejected:
		return ErrRejected
	case KindTransport:
		return ErrUnavailable
	case KindStale:
		return ErrStale
	default:
		return nil
	}
}

// Error is the uniform failure returned by HTTPClient.
type Error struct {
	Kind ErrorKind
	// Status is the HTTP status, zero when no response was received.
	Status int
	// Message is the remote-provided message, verbatim.
	Message string
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.sentinel().Error())
	if e.Status != 0 {
		fmt.Fprintf(&b, " (%d)", e.Status)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	} else if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

// NewError builds an error of kind wrapping the optional cause err.
func NewError(kind ErrorKind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// Rejected builds a RemoteRejected-kind error carrying msg verbatim. Services
// use it for remote answers that are well-formed but unacceptable.
func Rejected(msg string) *Error {
	return &Error{Kind: KindRemoteRejected, Message: msg}
}

// ValidationError carries field-level messages keyed by wire field name.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(fields map[string]string) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// KindOf reports the kind of err. A cancelled context counts as stale, an
// expired deadline as transport.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return KindValidation
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if errors.Is(err, context.Canceled) {
		return KindStale
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTransport
	}
	return KindUnknown
}

const (
	msgUnauthenticated = "Sessão não autenticada. Faça login novamente."
	msgRejected        = "A solicitação foi recusada pelo servidor."
	msgTransport       = "Não foi possível contactar o servidor. Tente novamente."
)

// UserMessage turns err into notification text. Stale errors yield "".
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	switch KindOf(err) {
	case KindValidation:
		var ve *ValidationError
		errors.As(err, &ve)
		return strings.TrimPrefix(ve.Error(), ErrValidation.Error()+": ")
	case KindUnauthenticated:
		var e *Error
		if errors.As(err, &e) && e.Message != "" {
			return e.Message
		}
		return msgUnauthenticated
	case KindRemoteRejected:
		var e *Error
		if errors.As(err, &e) && e.Message != "" {
			return e.Message
		}
		return msgRejected
	case KindTransport:
		return msgTransport
	case KindStale:
		return ""
	default:
		return err.Error()
	}
}
