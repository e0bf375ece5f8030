package highway

import (
	"fmt"
	"runtime/debug"
)

// Exception is the error type every task panic and mailbox/scheduler
// failure is normalized into before it reaches a Highway's exception
// handler. It carries the source location the failing code was registered
// at (not where the panic was raised), a captured stack trace, and an
// optional wrapped cause, following the cause-chain shape the teacher's
// eventloop/errors.go uses so errors.Is/errors.As work across recovered
// panics.
type Exception struct {
	Message   string
	File      string
	Line      int
	Stack     []byte
	Cause     error
	HighwayID string
}

// NewException builds an Exception rooted at file:line with message.
func NewException(message, file string, line int) *Exception {
	return &Exception{Message: message, File: file, Line: line, Stack: debug.Stack()}
}

// WithCause returns a copy of e with cause attached, mirroring the
// original's add_info1 overload that folds a caught std::exception into
// the message while here preserving it as a structured Unwrap target.
func (e *Exception) WithCause(cause error) *Exception {
	clone := *e
	clone.Cause = cause
	return &clone
}

func (e *Exception) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s:%d: %s: %v", e.File, e.Line, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Message)
}

// Unwrap exposes the wrapped cause to errors.Is/errors.As.
func (e *Exception) Unwrap() error {
	return e.Cause
}

// ExceptionHandler is invoked with every Exception a Highway's worker loop
// recovers from a task panic, or raises itself (e.g. a task running past
// its configured maximum execution time). The default handler (installed
// whenever WithExceptionHandler is not given) logs through the Highway's
// configured logger and does not panic, unlike the original's
// HighWayParams default which re-throws.
type ExceptionHandler func(*Exception)

// defaultExceptionHandler returns the ExceptionHandler New and NewPool
// install when no WithExceptionHandler option is given. It logs every
// Exception through logger at error level rather than discarding it,
// mirroring the field/Log chaining Monitor.tick uses for stuck-highway
// reports.
func defaultExceptionHandler(logger *Logger) ExceptionHandler {
	return func(ex *Exception) {
		b := logger.Err().Str("highway", ex.HighwayID).Str("file", ex.File).Int("line", ex.Line)
		if ex.Cause != nil {
			b = b.Err(ex.Cause)
		}
		b.Log(ex.Message)
	}
}

// recoverAsException converts a recovered panic value (from recover()) and
// a task's registered source location into an *Exception.
func recoverAsException(r any, file string, line int) *Exception {
	ex := &Exception{File: file, Line: line, Stack: debug.Stack()}
	if err, ok := r.(error); ok {
		ex.Message = "panic"
		ex.Cause = err
	} else {
		ex.Message = fmt.Sprintf("panic: %v", r)
	}
	return ex
}
