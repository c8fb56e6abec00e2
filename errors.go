package rowmap

import (
	"errors"
	"fmt"
)

// Standard sentinel errors for common operations.
var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("rowmap: entity not found")

	// ErrTxStarted is returned when attempting to start a new transaction
	// within an existing transaction.
	ErrTxStarted = errors.New("rowmap: cannot start a transaction within a transaction")
)

// ConnectionError represents a failure to establish or keep a database
// connection.
type ConnectionError struct {
	msg  string
	wrap error
}

// Error returns the error string.
func (e *ConnectionError) Error() string {
	return fmt.Sprintf("rowmap: connection failed: %s", e.msg)
}

// Unwrap returns the underlying error.
func (e *ConnectionError) Unwrap() error {
	return e.wrap
}

// NewConnectionError returns a new ConnectionError with the given message.
func NewConnectionError(msg string, wrap error) *ConnectionError {
	return &ConnectionError{msg: msg, wrap: wrap}
}

// IsConnectionError returns true if the error is a ConnectionError.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var e *ConnectionError
	return errors.As(err, &e)
}

// PoolError represents a failure to obtain a connection from the pool.
type PoolError struct {
	msg  string
	wrap error
}

// Error returns the error string.
func (e *PoolError) Error() string {
	return fmt.Sprintf("rowmap: pool: %s", e.msg)
}

// Unwrap returns the underlying error.
func (e *PoolError) Unwrap() error {
	return e.wrap
}

// NewPoolError returns a new PoolError with the given message.
func NewPoolError(msg string, wrap error) *PoolError {
	return &PoolError{msg: msg, wrap: wrap}
}

// IsPoolError returns true if the error is a PoolError.
func IsPoolError(err error) bool {
	if err == nil {
		return false
	}
	var e *PoolError
	return errors.As(err, &e)
}

// TransactionError represents a failure in the transaction lifecycle:
// begin, commit or rollback.
type TransactionError struct {
	msg  string
	wrap error
}

// Error returns the error string.
func (e *TransactionError) Error() string {
	return fmt.Sprintf("rowmap: transaction: %s", e.msg)
}

// Unwrap returns the underlying error.
func (e *TransactionError) Unwrap() error {
	return e.wrap
}

// NewTransactionError returns a new TransactionError with the given message.
func NewTransactionError(msg string, wrap error) *TransactionError {
	return &TransactionError{msg: msg, wrap: wrap}
}

// IsTransactionError returns true if the error is a TransactionError.
func IsTransactionError(err error) bool {
	if err == nil {
		return false
	}
	var e *TransactionError
	return errors.As(err, &e)
}

// QueryErrorKind sub-classifies a statement failure.
type QueryErrorKind uint8

// The query failure kinds. Classification picks the most specific kind
// the product error code allows; everything else is KindOther.
const (
	KindOther QueryErrorKind = iota
	KindSyntax
	KindForeignKeyViolation
	KindUniqueViolation
	KindNotNullViolation
	KindCheckViolation
	KindExclusionViolation
)

var queryKindNames = [...]string{
	KindOther:               "other",
	KindSyntax:              "syntax",
	KindForeignKeyViolation: "foreign-key violation",
	KindUniqueViolation:     "unique violation",
	KindNotNullViolation:    "not-null violation",
	KindCheckViolation:      "check violation",
	KindExclusionViolation:  "exclusion violation",
}

// String returns the human-readable name of the kind.
func (k QueryErrorKind) String() string {
	if int(k) < len(queryKindNames) {
		return queryKindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// QueryError represents a failed statement execution, classified by kind.
type QueryError struct {
	kind QueryErrorKind
	msg  string
	wrap error
}

// Error returns the error string.
func (e *QueryError) Error() string {
	return fmt.Sprintf("rowmap: query failed (%s): %s", e.kind, e.msg)
}

// Unwrap returns the underlying error.
func (e *QueryError) Unwrap() error {
	return e.wrap
}

// Kind returns the failure sub-classification.
func (e *QueryError) Kind() QueryErrorKind {
	return e.kind
}

// NewQueryError returns a new QueryError with the given kind and message.
func NewQueryError(kind QueryErrorKind, msg string, wrap error) *QueryError {
	return &QueryError{kind: kind, msg: msg, wrap: wrap}
}

// IsQueryError returns true if the error is a QueryError.
func IsQueryError(err error) bool {
	if err == nil {
		return false
	}
	var e *QueryError
	return errors.As(err, &e)
}

// IsUniqueViolation returns true if the error is a QueryError caused by
// a unique or primary-key constraint.
func IsUniqueViolation(err error) bool {
	var e *QueryError
	return errors.As(err, &e) && e.kind == KindUniqueViolation
}

// IsForeignKeyViolation returns true if the error is a QueryError caused
// by a foreign-key constraint.
func IsForeignKeyViolation(err error) bool {
	var e *QueryError
	return errors.As(err, &e) && e.kind == KindForeignKeyViolation
}

// ConversionError represents a failure to convert between an entity and
// the value representation.
type ConversionError struct {
	msg string
}

// Error returns the error string.
func (e *ConversionError) Error() string {
	return fmt.Sprintf("rowmap: conversion failed: %s", e.msg)
}

// NewConversionError returns a new ConversionError with the given message.
func NewConversionError(format string, args ...any) *ConversionError {
	return &ConversionError{msg: fmt.Sprintf(format, args...)}
}

// IsConversionError returns true if the error is a ConversionError.
func IsConversionError(err error) bool {
	if err == nil {
		return false
	}
	var e *ConversionError
	return errors.As(err, &e)
}

// NotFoundError represents an error when an entity is not found.
type NotFoundError struct {
	label string
	id    any // Optional: the ID that was searched for
}

// Error returns the error string.
func (e *NotFoundError) Error() string {
	if e.id != nil {
		return fmt.Sprintf("rowmap: %s not found (id=%v)", e.label, e.id)
	}
	return fmt.Sprintf("rowmap: %s not found", e.label)
}

// Is reports whether the target error matches NotFoundError.
// This allows errors.Is(notFoundErr, ErrNotFound) to return true.
func (e *NotFoundError) Is(err error) bool {
	return err == ErrNotFound
}

// Label returns the entity label.
func (e *NotFoundError) Label() string {
	return e.label
}

// ID returns the ID that was searched for, if available.
func (e *NotFoundError) ID() any {
	return e.id
}

// NewNotFoundError returns a new NotFoundError for the given entity type.
func NewNotFoundError(label string) *NotFoundError {
	return &NotFoundError{label: label}
}

// NewNotFoundErrorWithID returns a new NotFoundError with the ID that was searched for.
func NewNotFoundErrorWithID(label string, id any) *NotFoundError {
	return &NotFoundError{label: label, id: id}
}

// IsNotFound returns true if the error is a NotFoundError.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var e *NotFoundError
	return errors.As(err, &e) || errors.Is(err, ErrNotFound)
}
