// Package errors augments the standard library errors with slog annotations
// and source location capture so that wrapped errors can be logged with
// structured context at the outermost boundary.
package errors

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"
)

// annotatedError carries a message, an optional cause, slog attributes, and
// the source location of the wrap site.
type annotatedError struct {
	msg    string
	err    error
	attrs  []slog.Attr
	source string
}

// NewSentinel creates a new sentinel error that callers can match with [Is].
func NewSentinel(msg string) error {
	return &annotatedError{msg: msg, err: nil, attrs: nil, source: callerSource(2)} //nolint:mnd // skip to caller
}

// Wrap annotates err with a message and optional slog attributes. The source
// location of the Wrap call is captured for logging with [SlogError].
func Wrap(err error, msg string, attrs ...slog.Attr) error {
	return &annotatedError{msg: msg, err: err, attrs: attrs, source: callerSource(2)} //nolint:mnd // skip to caller
}

func (e *annotatedError) Error() string {
	if e.err == nil {
		return e.msg
	}
	return e.msg + ": " + e.err.Error()
}

func (e *annotatedError) Unwrap() error {
	return e.err
}

// New, Is, As, Unwrap, and Join are re-exported so that importers don't need
// to import both this package and the standard library errors.

func New(msg string) error {
	return errors.New(msg) //nolint:err113 // passthrough for the standard library constructor.
}

func Is(err, target error) bool {
	return errors.Is(err, target)
}

func As(err error, target any) bool {
	return errors.As(err, target)
}

func Unwrap(err error) error {
	return errors.Unwrap(err)
}

func Join(errs ...error) error {
	return errors.Join(errs...)
}

// SlogError renders err as a structured slog attribute containing the error
// message, all annotations collected from the wrap chain, and the source
// location of the outermost annotated error.
func SlogError(err error) slog.Attr {
	if err == nil {
		return slog.Attr{} //nolint:exhaustruct // empty attr is ignored by slog.
	}

	var (
		annotations []any
		source      string
	)
	for unwrapped := err; unwrapped != nil; unwrapped = errors.Unwrap(unwrapped) {
		var annotated *annotatedError
		if errors.As(unwrapped, &annotated) {
			if source == "" {
				source = annotated.source
			}
			for _, attr := range annotated.attrs {
				annotations = append(annotations, attr)
			}
			unwrapped = annotated
		}
	}

	attrs := []any{slog.String("message", err.Error())}
	if source != "" {
		attrs = append(attrs, slog.String("source", source))
	}
	if len(annotations) > 0 {
		attrs = append(attrs, slog.Group("annotations", annotations...))
	}
	return slog.Group("error", attrs...)
}

// DecoratePanic converts a recovered panic value into an error annotated with
// the source location of the panic site.
func DecoratePanic(excp any) error {
	if excp == nil {
		return nil
	}
	return &annotatedError{
		msg:    fmt.Sprintf("panic: %v", excp),
		err:    nil,
		attrs:  nil,
		source: panicSource(),
	}
}

// callerSource returns "file.go:line" for the caller skip frames up the stack.
func callerSource(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%s:%d", filepath.Base(file), line)
}

// panicSource locates the frame that panicked by walking past the runtime
// panic machinery.
func panicSource() string {
	const maxDepth = 32
	pcs := make([]uintptr, maxDepth)
	n := runtime.Callers(1, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	seenGopanic := false
	for {
		frame, more := frames.Next()
		if strings.HasPrefix(frame.Function, "runtime.gopanic") {
			seenGopanic = true
		} else if seenGopanic && !strings.HasPrefix(frame.Function, "runtime.") {
			return fmt.Sprintf("%s:%d", filepath.Base(frame.File), frame.Line)
		}
		if !more {
			return ""
		}
	}
}
