// Package errors provides the error taxonomy for ffqf.
// Every failure that crosses a package boundary is an *Error carrying the
// operation that failed and a Kind, so the command can decide between
// report-and-skip and abort without string matching.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/inconshreveable/log15"
)

// Op represents an operation name for error context.
type Op string

// Error represents an application error with context.
type Error struct {
	Op   Op     // Operation that failed
	Kind Kind   // Category of error
	Err  error  // Underlying error
	Msg  string // Additional context message
}

// Kind represents the category of error.
type Kind uint8

const (
	KindUnknown Kind = iota
	// KindUnrecognizedAccession: the input matches no known accession category.
	KindUnrecognizedAccession
	// KindInvalidAccession: the input was assigned a category but fails its validator.
	KindInvalidAccession
	// KindPartialMapping: the upstream returned fewer associations than requested.
	KindPartialMapping
	// KindUpstream: non-success HTTP status or transport failure.
	KindUpstream
	// KindParse: the payload does not match the expected schema.
	KindParse
	KindConfig
	KindIO
)

// String returns the string representation of the error kind.
func (k Kind) String() string {
	switch k {
	case KindUnrecognizedAccession:
		return "unrecognized accession"
	case KindInvalidAccession:
		return "invalid accession"
	case KindPartialMapping:
		return "partial mapping"
	case KindUpstream:
		return "upstream request"
	case KindParse:
		return "response parse"
	case KindConfig:
		return "config"
	case KindIO:
		return "io"
	default:
		return "unknown"
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(string(e.Op))
		b.WriteString(": ")
	}
	if e.Msg != "" {
		b.WriteString(e.Msg)
		if e.Err != nil {
			b.WriteString(": ")
		}
	}
	if e.Err != nil {
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// E creates a new Error with the given arguments.
// Arguments can be: Op, Kind, error, string (message).
func E(args ...interface{}) *Error {
	e := &Error{}
	for _, arg := range args {
		switch a := arg.(type) {
		case Op:
			e.Op = a
		case Kind:
			e.Kind = a
		case error:
			e.Err = a
		case string:
			e.Msg = a
		}
	}
	if e.Kind == KindUnknown {
		// inherit the kind of a wrapped application error
		var inner *Error
		if stderrors.As(e.Err, &inner) {
			e.Kind = inner.Kind
		}
	}
	return e
}

// Errorf creates a new Error of the given kind with a formatted message.
func Errorf(op Op, kind Kind, format string, a ...interface{}) *Error {
	return &Error{Op: op, Kind: kind, Msg: fmt.Sprintf(format, a...)}
}

// Wrap wraps an error with an operation name for context.
// The kind of a wrapped *Error is preserved.
func Wrap(op Op, err error) error {
	if err == nil {
		return nil
	}
	return E(op, err)
}

// WrapMsg wraps an error with an operation name and message.
func WrapMsg(op Op, msg string, err error) error {
	if err == nil {
		return nil
	}
	return E(op, msg, err)
}

// IsKind reports whether any error in err's chain is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	return GetKind(err) == kind
}

// GetKind returns the kind of the first *Error in err's chain, or KindUnknown.
func GetKind(err error) Kind {
	var e *Error
	if !stderrors.As(err, &e) {
		return KindUnknown
	}
	return e.Kind
}

// Is, As and New re-export the standard library helpers so callers importing
// this package under the name errors keep access to them.
var (
	Is  = stderrors.Is
	As  = stderrors.As
	New = stderrors.New
)

// SkipCounter tracks how many items an operation skipped.
// Use this to provide visibility into report-and-skip patterns.
type SkipCounter struct {
	Op         string
	Count      int
	LastErr    error
	LastDetail string
}

// NewSkipCounter creates a new skip counter for the given operation.
func NewSkipCounter(op string) *SkipCounter {
	return &SkipCounter{Op: op}
}

// Skip records a skipped item due to an error.
func (s *SkipCounter) Skip(err error, detail string) {
	s.Count++
	s.LastErr = err
	s.LastDetail = detail
}

// Report logs a summary at warning level if any items were skipped.
func (s *SkipCounter) Report(logger log15.Logger) {
	if s.Count > 0 {
		logger.Warn(fmt.Sprintf("%s skipped %d items", s.Op, s.Count),
			"last_err", s.LastErr, "detail", s.LastDetail)
	}
}
