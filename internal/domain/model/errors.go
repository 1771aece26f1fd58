package model

import (
	"errors"
	"fmt"
)

// Error kinds shared by the analytics packages. Match with errors.Is.
var (
	// ErrParse marks malformed input: a bad semester or date label, a missing sheet or column.
	ErrParse = errors.New("parse error")
	// ErrLookup marks a category, major or ranking that is absent from its mapping table.
	ErrLookup = errors.New("lookup error")
	// ErrConfiguration marks an analysis setting outside its valid range.
	ErrConfiguration = errors.New("configuration error")
	// ErrEmptyResult marks a filter combination that leaves no records.
	ErrEmptyResult = errors.New("empty result")
)

// Error ties an error kind to the operation that produced it.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewKind builds an error of the given kind with a formatted detail.
func NewKind(op string, kind error, format string, args ...any) error {
	return &Error{Op: op, Kind: kind, Err: fmt.Errorf(format, args...)}
}

// WrapKind wraps err as the given kind. A nil err yields nil.
func WrapKind(op string, kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Kind: kind, Err: err}
}

// KindOf returns the first known kind err matches, or nil.
func KindOf(err error) error {
	for _, k := range []error{ErrParse, ErrLookup, ErrConfiguration, ErrEmptyResult} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
