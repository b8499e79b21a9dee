// Package fault defines the tagged errors returned by every engine operation.
package fault

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Kind tags an error so callers can branch on it without string matching.
type Kind string

const (
	NoActivePlayer   Kind = "no_active_player"
	EmptyName        Kind = "empty_name"
	UnknownMonster   Kind = "unknown_monster"
	InvalidEquipment Kind = "invalid_equipment"
	InvalidPassword  Kind = "invalid_password"
	InvalidAction    Kind = "invalid_action"
	NotFound         Kind = "not_found"
)

// Sentinels for errors.Is. Any *Error with the same Kind matches.
var (
	ErrNoActivePlayer   = &Error{Kind: NoActivePlayer, Message: "no player has been created"}
	ErrEmptyName        = &Error{Kind: EmptyName, Message: "name is empty"}
	ErrUnknownMonster   = &Error{Kind: UnknownMonster, Message: "unknown monster"}
	ErrInvalidEquipment = &Error{Kind: InvalidEquipment, Message: "invalid equipment"}
	ErrInvalidPassword  = &Error{Kind: InvalidPassword, Message: "invalid password"}
	ErrInvalidAction    = &Error{Kind: InvalidAction, Message: "invalid action"}
	ErrNotFound         = &Error{Kind: NotFound, Message: "not found"}
)

// Error is a tagged, human-readable failure with optional context.
type Error struct {
	Kind    Kind
	Message string
	Context map[string]any
	Cause   error
}

// New creates an error of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// With attaches a context value and returns the same error for chaining.
func (e *Error) With(key string, value any) *Error {
	if e.Context == nil {
		e.Context = map[string]any{}
	}
	e.Context[key] = value
	return e
}

// WithCause records the underlying error.
func (e *Error) WithCause(err error) *Error {
	e.Cause = err
	return e
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	b.WriteString(": ")
	b.WriteString(e.Message)
	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%v", k, e.Context[k])
		}
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Cause }

// Is reports a match when target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the tag of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
