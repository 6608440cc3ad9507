package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseParse   Phase = "parse"   // container decoding
	PhaseLoad    Phase = "load"    // container/file loading
	PhaseRuntime Phase = "runtime" // engine runtime creation
	PhaseContext Phase = "context" // context creation and preloading
	PhaseExec    Phase = "exec"    // entry module execution
	PhaseDrain   Phase = "drain"   // pending-task drain
	PhaseRelease Phase = "release" // handle teardown
)

// Kind categorizes the error
type Kind string

const (
	KindTruncatedHeader Kind = "truncated_header"
	KindTruncatedBody   Kind = "truncated_body"
	KindOversizedModule Kind = "oversized_module"
	KindRuntimeInit     Kind = "runtime_init"
	KindContextInit     Kind = "context_init"
	KindNoEntry         Kind = "no_entry"
	KindScript          Kind = "script"
	KindInvalidInput    Kind = "invalid_input"
	KindNotInitialized  Kind = "not_initialized"
	KindUnsupported     Kind = "unsupported"
	KindInvalidData     Kind = "invalid_data"
)

const noFrame = -1

// Error is the structured error type used throughout the library
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
	// FrameIndex is the zero-based container frame the error refers to,
	// or -1 when the error is not tied to a frame.
	FrameIndex int
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.FrameIndex >= 0 {
		fmt.Fprintf(&b, " at frame %d", e.FrameIndex)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase:      phase,
			Kind:       kind,
			FrameIndex: noFrame,
		},
	}
}

// Frame sets the offending container frame index
func (b *Builder) Frame(i int) *Builder {
	b.err.FrameIndex = i
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// TruncatedHeader creates a container error for a frame header cut short
func TruncatedHeader(frame int) *Error {
	return &Error{
		Phase:      PhaseParse,
		Kind:       KindTruncatedHeader,
		FrameIndex: frame,
		Detail:     "frame header cut short",
	}
}

// TruncatedBody creates a container error for frame data cut short
func TruncatedBody(frame int, want uint64, got int) *Error {
	return &Error{
		Phase:      PhaseParse,
		Kind:       KindTruncatedBody,
		FrameIndex: frame,
		Detail:     fmt.Sprintf("expected %d data bytes, got %d", want, got),
	}
}

// OversizedModule creates a container error for a hostile or corrupt length field
func OversizedModule(frame int, declared, max uint64) *Error {
	return &Error{
		Phase:      PhaseParse,
		Kind:       KindOversizedModule,
		FrameIndex: frame,
		Detail:     fmt.Sprintf("declared length %d exceeds maximum %d", declared, max),
		Value:      declared,
	}
}

// RuntimeInit creates a runtime creation failure
func RuntimeInit(cause error) *Error {
	return &Error{
		Phase:      PhaseRuntime,
		Kind:       KindRuntimeInit,
		FrameIndex: noFrame,
		Detail:     "create engine runtime",
		Cause:      cause,
	}
}

// ContextInit creates a context creation failure
func ContextInit(cause error) *Error {
	return &Error{
		Phase:      PhaseContext,
		Kind:       KindContextInit,
		FrameIndex: noFrame,
		Detail:     "create execution context",
		Cause:      cause,
	}
}

// NoEntry reports a container with no entry record
func NoEntry() *Error {
	return &Error{
		Phase:      PhaseExec,
		Kind:       KindNoEntry,
		FrameIndex: noFrame,
		Detail:     "no entry module (all records are preload-only)",
	}
}

// Load creates a loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:      PhaseLoad,
		Kind:       KindInvalidData,
		FrameIndex: noFrame,
		Detail:     detail,
		Cause:      cause,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:      phase,
		Kind:       KindInvalidInput,
		FrameIndex: noFrame,
		Detail:     detail,
	}
}

// NotInitialized creates a not-initialized error for a missing handle
func NotInitialized(phase Phase, what string) *Error {
	return &Error{
		Phase:      phase,
		Kind:       KindNotInitialized,
		FrameIndex: noFrame,
		Detail:     fmt.Sprintf("%s not initialized", what),
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:      phase,
		Kind:       KindUnsupported,
		FrameIndex: noFrame,
		Detail:     what,
	}
}
