// Package relayerr defines the closed taxonomy of error kinds the relay
// surfaces across package boundaries. Call sites wrap an underlying error
// with a Kind so callers can branch with errors.Is/As instead of string
// matching, and so the telemetry layer can bucket failures by kind.
package relayerr

import (
	"errors"
	"fmt"
)

// Kind classifies a relay error into one of a fixed set of categories.
type Kind string

const (
	KindConfig    Kind = "config"
	KindAuth      Kind = "auth"
	KindSession   Kind = "session"
	KindTransport Kind = "transport"
	KindDecode    Kind = "decode"
	KindParse     Kind = "parse"
	KindTimeout   Kind = "timeout"
)

// Error wraps an underlying error with an operation name and a Kind.
type Error struct {
	Op   string
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error with the same Kind, allowing
// errors.Is(err, relayerr.Config) style sentinel checks.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

// New constructs an *Error for the given op/kind, wrapping err.
func New(op string, kind Kind, err error) *Error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// Wrap is a convenience for wrapping err if non-nil, nil otherwise.
func Wrap(op string, kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return New(op, kind, err)
}

// Sentinel values usable with errors.Is for kind-only comparisons, mirroring
// the teacher's pattern of a closed set of comparable sentinel errors.
var (
	Config    = &Error{Kind: KindConfig}
	Auth      = &Error{Kind: KindAuth}
	Session   = &Error{Kind: KindSession}
	Transport = &Error{Kind: KindTransport}
	Decode    = &Error{Kind: KindDecode}
	Parse     = &Error{Kind: KindParse}
	Timeout   = &Error{Kind: KindTimeout}
)

// OfKind reports whether err (or any error it wraps) carries the given Kind.
func OfKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
