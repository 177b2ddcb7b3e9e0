package core

import (
	"errors"
	"fmt"
)

var (
	ErrSyntax                 = errors.New("syntax error")
	ErrMalformedLine          = errors.New("malformed line")
	ErrUnmatchedBlockCloser   = errors.New("unmatched block closer")
	ErrEmptyValueBlock        = errors.New("empty value block")
	ErrUnterminatedValueBlock = errors.New("unterminated value block")
	ErrInvalidOpcode          = errors.New("invalid opcode")
	ErrInvalidExtendedOpcode  = errors.New("invalid extended opcode")
	ErrNonInvertibleMask      = errors.New("mask cannot be inverted")
)

// LineError ties an input error to the 1-based line it was detected on.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// AtLine tags err with a line number unless it already carries one.
func AtLine(line int, err error) error {
	if err == nil {
		return nil
	}
	var le *LineError
	if errors.As(err, &le) {
		return err
	}
	var ie *InternalError
	if errors.As(err, &ie) {
		return err
	}
	return &LineError{Line: line, Err: err}
}

// InternalError reports a broken invariant of the converter itself, as
// opposed to a problem with the input text.
type InternalError struct {
	Line int
	Op   string
	Err  error
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("internal error in %s at line %d: %v", e.Op, e.Line, e.Err)
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

// IsInternal reports whether err is, or wraps, an InternalError.
func IsInternal(err error) bool {
	var ie *InternalError
	return errors.As(err, &ie)
}

// LineOf returns the line an error was tagged with, or 0.
func LineOf(err error) int {
	var le *LineError
	if errors.As(err, &le) {
		return le.Line
	}
	var ie *InternalError
	if errors.As(err, &ie) {
		return ie.Line
	}
	return 0
}
