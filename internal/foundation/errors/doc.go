// Package errors provides the classified error primitives used across docgen.
//
// A ClassifiedError carries a category (config, docs, storage, ...), a severity
// and structured context. The CLI adapter turns a category into a process exit
// code and a one-line diagnostic.
//
// Example usage:
//
//	err := errors.StorageError("copy failed").
//		WithContext("destination", dest).
//		WithCause(originalErr).
//		Build()
package errors
