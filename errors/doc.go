// Package errors provides structured error handling for flowkit.
// It implements coded error types so callers can branch on what went
// wrong (a closed queue, a failed worker, a missing named operation)
// without string matching.
package errors
