package pjs

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrStepLimit is returned by Run when WithMaxSteps is exceeded.
var ErrStepLimit = errors.New("step limit exceeded")

// LexError reports source text that could not be scanned.
type LexError struct {
	Offset int
	Text   string
}

func (err *LexError) Error() string {
	return fmt.Sprintf("unrecognized text %q at offset %v", err.Text, err.Offset)
}

// ParseError reports an unbalanced bracket, brace or quote, or an unknown
// token that reached the parser.
type ParseError struct {
	Offset int
	Text   string
	Reason string
}

func (err *ParseError) Error() string {
	if err.Text == "" {
		return fmt.Sprintf("parse error at offset %v: %v", err.Offset, err.Reason)
	}
	return fmt.Sprintf("parse error at offset %v near %q: %v", err.Offset, err.Text, err.Reason)
}

// ResolutionError reports a word with neither an object nor a global handler.
type ResolutionError struct{ Word string }

func (err *ResolutionError) Error() string { return fmt.Sprintf("unknown word %q", err.Word) }

// StackShapeError reports an operation that found too few, or the wrong kind
// of, values on the data stack.
type StackShapeError struct {
	Op     string
	Reason string
}

func (err *StackShapeError) Error() string { return fmt.Sprintf("%v: %v", err.Op, err.Reason) }

// StructuralError reports a tag, selection or rotation that does not fit the
// current machine state.
type StructuralError struct {
	Op     string
	Reason string
}

func (err *StructuralError) Error() string { return fmt.Sprintf("%v: %v", err.Op, err.Reason) }

// EvalError annotates a runtime failure with the term being evaluated.
type EvalError struct {
	Term Term
	Err  error
}

func (err *EvalError) Error() string { return fmt.Sprintf("evaluating %v: %v", err.Term, err.Err) }
func (err *EvalError) Unwrap() error { return err.Err }
func (err *EvalError) Cause() error  { return err.Err }

func underflow(op string, need int) error {
	return &StackShapeError{op, fmt.Sprintf("stack underflow, need %v values", need)}
}

func wrongType(op string, want string, got Value) error {
	return &StackShapeError{op, fmt.Sprintf("expected %v, got %v", want, TypeName(got))}
}

func structural(op, format string, args ...interface{}) error {
	return &StructuralError{op, fmt.Sprintf(format, args...)}
}
