package mbsim

import (
	"errors"
	"fmt"
)

// Kind classifies the errors produced while loading a scenario
type Kind uint8

const (
	// KindMalformedConfig is a structural problem with the scenario file as a whole
	KindMalformedConfig Kind = iota + 1
	// KindMalformedAddress is an address assignment that cannot be parsed
	KindMalformedAddress
	// KindMalformedRow is a data row with an unusable delay value
	KindMalformedRow
)

func (k Kind) String() string {
	switch k {
	case KindMalformedConfig:
		return "MalformedConfig"
	case KindMalformedAddress:
		return "MalformedAddress"
	case KindMalformedRow:
		return "MalformedRow"
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Error is a custom type for scenario load errors
type Error struct {
	msg    string
	kind   Kind
	row    int
	column int
	token  string
	cause  error
}

// Sentinels for use with errors.Is, they match any *Error of the same Kind
var (
	ErrMalformedConfig  = &Error{kind: KindMalformedConfig, row: -1, column: -1}
	ErrMalformedAddress = &Error{kind: KindMalformedAddress, row: -1, column: -1}
	ErrMalformedRow     = &Error{kind: KindMalformedRow, row: -1, column: -1}
)

// ErrUnsupportedSwapMode is returned when a RegisterMap is asked for a float layout it does not encode
var ErrUnsupportedSwapMode = errors.New("unsupported swap mode")

func (err *Error) Error() string {
	if err.cause != nil {
		return fmt.Sprintf("%v: %v", err.msg, err.cause)
	}
	return err.msg
}

// Kind is the classification of the error
func (err *Error) Kind() Kind {
	return err.kind
}

// Row is the 1-based file line of the row that failed, or -1
func (err *Error) Row() int {
	return err.row
}

// Column is the zero-based column index that failed, or -1
func (err *Error) Column() int {
	return err.column
}

// Token is the raw text that failed to parse, if any
func (err *Error) Token() string {
	return err.token
}

func (err *Error) Unwrap() error {
	return err.cause
}

// Is matches on Kind so that errors.Is(err, ErrMalformedRow) works through wrapping
func (err *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.kind == err.kind
}

// Find returns the first *Error of the given kind in err's chain
func Find(err error, kind Kind) (*Error, bool) {
	for err != nil {
		if e, ok := err.(*Error); ok && e.kind == kind {
			return e, true
		}
		err = errors.Unwrap(err)
	}
	return nil, false
}

// MalformedConfigErrorF represents a structural problem with the file
func MalformedConfigErrorF(format string, args ...interface{}) *Error {
	return &Error{msg: fmt.Sprintf(format, args...), kind: KindMalformedConfig, row: -1, column: -1}
}

// MalformedAddressErrorF represents an address token that cannot be used
func MalformedAddressErrorF(token string, format string, args ...interface{}) *Error {
	return &Error{msg: fmt.Sprintf(format, args...), kind: KindMalformedAddress, row: -1, column: -1, token: token}
}

// MalformedRowErrorF represents a data row that cannot be used
func MalformedRowErrorF(row, column int, token string, format string, args ...interface{}) *Error {
	return &Error{msg: fmt.Sprintf(format, args...), kind: KindMalformedRow, row: row, column: column, token: token}
}

// wrapConfig re-raises err as a MalformedConfig, keeping err in the chain.
func wrapConfig(err error, format string, args ...interface{}) *Error {
	e := MalformedConfigErrorF(format, args...)
	e.cause = err
	return e
}

// atColumn decorates an address error with the column it was found in.
func (err *Error) atColumn(column int) *Error {
	err.column = column
	err.msg = fmt.Sprintf("column %v ('%v'): %v", column, err.token, err.msg)
	return err
}
