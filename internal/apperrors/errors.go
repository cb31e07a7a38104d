package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// Ledger rejections. Every one of them is recovered at the stream boundary.
var (
	ErrDecode               = errors.New("malformed record")
	ErrDuplicateTransaction = errors.New("duplicate transaction")
	ErrUnknownTransaction   = errors.New("unknown or foreign transaction")
	ErrInvalidTransition    = errors.New("invalid dispute transition")
	ErrNonPositiveAmount    = errors.New("amount must be positive")
	ErrUnderflow            = errors.New("balance underflow")
	ErrAccountLocked        = errors.New("account locked")
)

// ErrRepositoryFailure means the storage backend itself failed. It is the only
// error kind allowed to terminate a stream.
var ErrRepositoryFailure = errors.New("repository failure")

// Reason is a stable, machine readable rejection code.
type Reason string

const (
	ReasonNone                 Reason = ""
	ReasonDecode               Reason = "decode_error"
	ReasonDuplicateTransaction Reason = "duplicate_transaction"
	ReasonUnknownTransaction   Reason = "unknown_transaction"
	ReasonInvalidTransition    Reason = "invalid_transition"
	ReasonNonPositiveAmount    Reason = "non_positive_amount"
	ReasonUnderflow            Reason = "underflow"
	ReasonAccountLocked        Reason = "account_locked"
	ReasonRepositoryFailure    Reason = "repository_failure"
)

var rejections = []struct {
	err    error
	reason Reason
}{
	{ErrDecode, ReasonDecode},
	{ErrDuplicateTransaction, ReasonDuplicateTransaction},
	{ErrUnknownTransaction, ReasonUnknownTransaction},
	{ErrInvalidTransition, ReasonInvalidTransition},
	{ErrNonPositiveAmount, ReasonNonPositiveAmount},
	{ErrUnderflow, ReasonUnderflow},
	{ErrAccountLocked, ReasonAccountLocked},
}

// ReasonOf maps an error to its reason code. Errors that are not a known
// rejection are reported as repository failures.
func ReasonOf(err error) Reason {
	if err == nil {
		return ReasonNone
	}
	for _, r := range rejections {
		if errors.Is(err, r.err) {
			return r.reason
		}
	}
	return ReasonRepositoryFailure
}

// IsRejection reports whether err is a business rejection that leaves the
// ledger untouched and must not stop the surrounding stream.
func IsRejection(err error) bool {
	if err == nil || errors.Is(err, ErrRepositoryFailure) {
		return false
	}
	r := ReasonOf(err)
	return r != ReasonRepositoryFailure
}

// DecodeError describes a record that could not be turned into an operation.
type DecodeError struct {
	Line int
	Raw  string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("line %d: %v: %q", e.Line, e.Err, e.Raw)
}

// Unwrap exposes both ErrDecode and the underlying cause.
func (e *DecodeError) Unwrap() []error {
	return []error{ErrDecode, e.Err}
}

// NewDecodeError builds a DecodeError for the record found at line.
func NewDecodeError(line int, raw string, err error) *DecodeError {
	return &DecodeError{Line: line, Raw: raw, Err: err}
}

// RepositoryError wraps a storage backend error.
type RepositoryError struct {
	Op  string
	Err error
}

func (e *RepositoryError) Error() string {
	return fmt.Sprintf("repository %s: %v", e.Op, e.Err)
}

func (e *RepositoryError) Unwrap() []error {
	return []error{ErrRepositoryFailure, e.Err}
}

// NewRepositoryError wraps err as a repository failure of operation op.
// A nil err yields nil.
func NewRepositoryError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &RepositoryError{Op: op, Err: err}
}

// AppError carries an HTTP-ish status code alongside a message.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *AppError) Unwrap() error { return e.Err }

// NewAppError creates an AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}
