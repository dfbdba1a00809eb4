package data

import (
	"errors"
	"fmt"
)

var (
	ErrConfiguration = errors.New("invalid pipeline configuration")
	ErrNotFound      = errors.New("no input files matched")
	ErrParse         = errors.New("malformed row")
	ErrSchema        = errors.New("schema mismatch")
	ErrClosed        = errors.New("iterator closed")
)

// ParseError describes one row that could not be converted to a Record.
// It matches ErrParse with errors.Is.
type ParseError struct {
	File   string
	Line   int
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("%s:%d: %v", e.File, e.Line, e.Err)
	}
	return fmt.Sprintf("%s:%d: column %q: cannot parse %q: %v", e.File, e.Line, e.Column, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}
