// Package errors provides structured error values for httpwrap packages.
// An AppError carries a machine-readable code, a human-readable message,
// retryable detection and an optional cause that participates in unwrapping.
package errors
