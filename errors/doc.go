// Package errors provides structured error types for the script-runtime library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error
// category). Container parse errors additionally carry the zero-based index of
// the offending frame.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseParse, errors.KindTruncatedBody).
//		Frame(3).
//		Detail("expected %d bytes, got %d", want, got).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.TruncatedHeader(3)
//	err := errors.OversizedModule(3, declared, max)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
