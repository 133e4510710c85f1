// Package services implements business logic for the application
package services

import (
	"errors"
	"fmt"
)

// Kind classifies a processing failure
type Kind string

const (
	KindValidation     Kind = "VALIDATION"
	KindNotFound       Kind = "NOT_FOUND"
	KindTransientStore Kind = "TRANSIENT_STORE"
	KindNotification   Kind = "NOTIFICATION"
)

// Error is a classified failure raised while processing a check-in
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err) }
func (e *Error) Unwrap() error { return e.Err }

func errValidation(op string, err error) *Error { return &Error{Kind: KindValidation, Op: op, Err: err} }
func errNotFound(op string, err error) *Error   { return &Error{Kind: KindNotFound, Op: op, Err: err} }
func errTransient(op string, err error) *Error  { return &Error{Kind: KindTransientStore, Op: op, Err: err} }

// KindOf reports the kind of a classified error, or "" if err is not one
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
