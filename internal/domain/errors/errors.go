package errors

import (
	"fmt"
	"net/http"
	"strings"

	"medchain/internal/errors"
)

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	HTTPCode() int     // HTTP status code
	ErrorCode() string // Business error code
	Message() string   // User-friendly error message
	Details() string   // Detailed error information (optional)
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
	details   string
}

// NewBaseError creates a new base error
func NewBaseError(httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.details == "" {
		return e.message
	}

	return e.message + ": " + e.details
}

// WrapMessage wraps the error with additional context message
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

// HTTPCode returns the HTTP status code
func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

// ErrorCode returns the business error code
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns the user-friendly error message
func (e *BaseError) Message() string {
	return e.message
}

// Details returns detailed error information
func (e *BaseError) Details() string {
	return e.details
}

// WithDetails adds detailed error information. The copy still matches the original with errors.Is.
func (e *BaseError) WithDetails(details string) *BaseError {
	return &BaseError{
		httpCode:  e.httpCode,
		errorCode: e.errorCode,
		message:   e.message,
		details:   details,
	}
}

// Is matches any BaseError carrying the same business code
func (e *BaseError) Is(target error) bool {
	t, ok := target.(*BaseError)
	if !ok {
		return false
	}

	return t.errorCode == e.errorCode
}

// Predefined error types
var (
	// Wallet session errors
	ErrWalletUnavailable = NewBaseError(
		http.StatusPreconditionRequired,
		"WALLET_UNAVAILABLE",
		"no wallet account is connected",
		"",
	)

	ErrAccountNotHeld = NewBaseError(
		http.StatusBadRequest,
		"ACCOUNT_NOT_HELD",
		"the wallet does not hold this account",
		"",
	)

	ErrAccountChanged = NewBaseError(
		http.StatusConflict,
		"ACCOUNT_CHANGED",
		"the wallet account changed while the request was running",
		"",
	)

	// Session errors
	ErrNotLoggedIn = NewBaseError(
		http.StatusUnauthorized,
		"NOT_LOGGED_IN",
		"login required",
		"",
	)

	ErrInvalidCredentials = NewBaseError(
		http.StatusUnauthorized,
		"INVALID_CREDENTIALS",
		"invalid email, password or wallet address",
		"",
	)

	// Validation-related errors
	ErrValidationFailed = NewBaseError(
		http.StatusBadRequest,
		"VALIDATION_FAILED",
		"precondition not met",
		"",
	)

	// Workflow errors
	ErrInvalidTransition = NewBaseError(
		http.StatusInternalServerError,
		"INVALID_WORKFLOW_TRANSITION",
		"illegal workflow state transition",
		"",
	)

	ErrOrphanNotReplayable = NewBaseError(
		http.StatusConflict,
		"ORPHAN_NOT_REPLAYABLE",
		"this journal entry cannot be replayed",
		"",
	)

	ErrOrphanResolved = NewBaseError(
		http.StatusConflict,
		"ORPHAN_RESOLVED",
		"this journal entry is already resolved",
		"",
	)

	// QR code errors
	ErrInvalidQRCode = NewBaseError(
		http.StatusBadRequest,
		"INVALID_QR_CODE",
		"unreadable order QR code",
		"",
	)

	// General errors
	ErrInternalError = NewBaseError(
		http.StatusInternalServerError,
		"INTERNAL_ERROR",
		"internal error",
		"",
	)

	ErrForbidden = NewBaseError(
		http.StatusForbidden,
		"FORBIDDEN",
		"action not permitted for this role",
		"",
	)

	ErrNotFound = NewBaseError(
		http.StatusNotFound,
		"NOT_FOUND",
		"resource not found",
		"",
	)
)

// Validation builds a ValidationFailed error with a formatted reason
func Validation(format string, args ...any) *BaseError {
	return ErrValidationFailed.WithDetails(fmt.Sprintf(format, args...))
}

// LedgerRejectedError is returned when the contract call reverts, the signer refuses,
// or confirmation waiting is aborted. TxHash is empty when nothing was broadcast.
// Unconfirmed marks a broadcast tx whose receipt never arrived; it may still be mined.
type LedgerRejectedError struct {
	Method      string
	TxHash      string
	Unconfirmed bool
	err         error
}

// NewLedgerRejectedError creates a ledger rejection for the given contract method
func NewLedgerRejectedError(method, txHash string, err error) *LedgerRejectedError {
	return &LedgerRejectedError{
		Method: method,
		TxHash: txHash,
		err:    err,
	}
}

// NewUnconfirmedTxError reports a broadcast tx that was not seen mined in time
func NewUnconfirmedTxError(method, txHash string, err error) *LedgerRejectedError {
	return &LedgerRejectedError{
		Method:      method,
		TxHash:      txHash,
		Unconfirmed: true,
		err:         err,
	}
}

// Error implements the error interface
func (e *LedgerRejectedError) Error() string {
	if e.err == nil {
		return "ledger rejected " + e.Method
	}

	return "ledger rejected " + e.Method + ": " + e.err.Error()
}

// Unwrap returns the underlying cause
func (e *LedgerRejectedError) Unwrap() error {
	return e.err
}

// HTTPCode returns the HTTP status code
func (e *LedgerRejectedError) HTTPCode() int {
	return http.StatusUnprocessableEntity
}

// ErrorCode returns the business error code
func (e *LedgerRejectedError) ErrorCode() string {
	return "LEDGER_REJECTED"
}

// Message returns the user-friendly error message
func (e *LedgerRejectedError) Message() string {
	return "the ledger rejected " + e.Method
}

// Details surfaces the rejection reason verbatim
func (e *LedgerRejectedError) Details() string {
	var parts []string
	if e.err != nil {
		parts = append(parts, e.err.Error())
	}
	if e.TxHash != "" {
		parts = append(parts, "txHash="+e.TxHash)
	}

	return strings.Join(parts, "; ")
}

// BackendUnavailableError is returned when a metadata read or write fails. When the
// write followed a confirmed ledger transaction, TxHash holds its hash and the
// two stores disagree until the write is replayed.
type BackendUnavailableError struct {
	Endpoint   string
	StatusCode int
	TxHash     string
	JournalID  string
	err        error
}

// NewBackendUnavailableError creates a metadata failure for the endpoint
func NewBackendUnavailableError(endpoint string, statusCode int, err error) *BackendUnavailableError {
	return &BackendUnavailableError{
		Endpoint:   endpoint,
		StatusCode: statusCode,
		err:        err,
	}
}

// WithTxHash returns a copy correlated to a confirmed ledger transaction
func (e *BackendUnavailableError) WithTxHash(txHash string) *BackendUnavailableError {
	cp := *e
	cp.TxHash = txHash

	return &cp
}

// WithJournalID returns a copy pointing at the reconciliation journal entry
func (e *BackendUnavailableError) WithJournalID(id string) *BackendUnavailableError {
	cp := *e
	cp.JournalID = id

	return &cp
}

// Error implements the error interface
func (e *BackendUnavailableError) Error() string {
	msg := "metadata backend unavailable at " + e.Endpoint
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.err != nil {
		msg += ": " + e.err.Error()
	}

	return msg
}

// Unwrap returns the underlying cause
func (e *BackendUnavailableError) Unwrap() error {
	return e.err
}

// HTTPCode returns the HTTP status code
func (e *BackendUnavailableError) HTTPCode() int {
	return http.StatusFailedDependency
}

// ErrorCode returns the business error code
func (e *BackendUnavailableError) ErrorCode() string {
	return "BACKEND_UNAVAILABLE"
}

// Message returns the user-friendly error message
func (e *BackendUnavailableError) Message() string {
	if e.TxHash != "" {
		return "the transaction was confirmed but its record could not be saved"
	}

	return "the metadata backend is unavailable"
}

// Details returns the endpoint and correlation keys
func (e *BackendUnavailableError) Details() string {
	parts := []string{"endpoint=" + e.Endpoint}
	if e.TxHash != "" {
		parts = append(parts, "txHash="+e.TxHash)
	}
	if e.JournalID != "" {
		parts = append(parts, "journalId="+e.JournalID)
	}

	return strings.Join(parts, "; ")
}

// DatabaseExecuteError represents a database execution error, implementing the AppError interface
type DatabaseExecuteError struct {
	err     error
	details string
}

// NewDatabaseExecuteError creates a database-related error
func NewDatabaseExecuteError(err error, details string) AppError {
	return &DatabaseExecuteError{
		err:     err,
		details: details,
	}
}

// Error implements the error interface
func (e *DatabaseExecuteError) Error() string {
	return errors.Wrap(e.err, "database execution failed").Error()
}

// Unwrap returns the underlying cause
func (e *DatabaseExecuteError) Unwrap() error {
	return e.err
}

// HTTPCode returns the HTTP status code
func (e *DatabaseExecuteError) HTTPCode() int {
	return http.StatusInternalServerError
}

// ErrorCode returns the business error code
func (e *DatabaseExecuteError) ErrorCode() string {
	return "DATABASE_EXECUTE_FAILED"
}

// Message returns the user-friendly error message
func (e *DatabaseExecuteError) Message() string {
	return "journal storage failed"
}

// Details returns detailed error information
func (e *DatabaseExecuteError) Details() string {
	return e.details
}
