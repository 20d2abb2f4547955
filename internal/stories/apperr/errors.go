package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a business error so the telegram router and the admin API
// can decide how to surface it without inspecting messages.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindNotFound
	KindExists
	KindBusinessRule
	KindAdapter
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(msg string) error   { return &Error{Kind: KindValidation, Message: msg} }
func NotFound(msg string) error     { return &Error{Kind: KindNotFound, Message: msg} }
func Exists(msg string) error       { return &Error{Kind: KindExists, Message: msg} }
func BusinessRule(msg string) error { return &Error{Kind: KindBusinessRule, Message: msg} }

func Adapter(msg string, err error) error {
	return &Error{Kind: KindAdapter, Message: msg, Err: err}
}

// KindOf returns the kind of err, or 0 when err carries no classification.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// Message returns the user-facing message of a classified error. Unclassified
// errors have no user-facing text.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return ""
}

func IsValidation(err error) bool   { return KindOf(err) == KindValidation }
func IsNotFound(err error) bool     { return KindOf(err) == KindNotFound }
func IsExists(err error) bool       { return KindOf(err) == KindExists }
func IsBusinessRule(err error) bool { return KindOf(err) == KindBusinessRule }
func IsAdapter(err error) bool      { return KindOf(err) == KindAdapter }
