package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
)

type ErrorCode string

const (
	CodeInternal   ErrorCode = "INTERNAL_ERROR"
	CodeDataAccess ErrorCode = "DATA_ACCESS_ERROR"
	CodeSchema     ErrorCode = "SCHEMA_ERROR"
	CodeConfig     ErrorCode = "CONFIG_ERROR"
	CodeRender     ErrorCode = "RENDER_ERROR"
)

// Process exit codes. Zero is success.
const (
	ExitInternal   = 1
	ExitDataAccess = 1
	ExitSchema     = 2
	ExitRender     = 3
	ExitConfig     = 4
)

type AppError struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	ExitCode  int       `json:"-"`
	Cause     error     `json:"-"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *AppError) Error() string {
	msg := e.Message
	if e.Details != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Details)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		ExitCode:  getExitCode(code),
		Timestamp: time.Now().UTC(),
	}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		ExitCode:  getExitCode(code),
		Cause:     err,
		Timestamp: time.Now().UTC(),
	}
}

func (e *AppError) WithDetails(format string, args ...any) *AppError {
	e.Details = fmt.Sprintf(format, args...)
	return e
}

func Internal(message string) *AppError {
	return New(CodeInternal, message)
}

func InternalWrap(err error, message string) *AppError {
	return Wrap(err, CodeInternal, message)
}

func DataAccess(message string) *AppError {
	return New(CodeDataAccess, message)
}

func DataAccessWrap(err error, message string) *AppError {
	return Wrap(err, CodeDataAccess, message)
}

// MissingColumns reports the required columns absent from a file header.
func MissingColumns(path string, columns []string) *AppError {
	return New(CodeSchema, fmt.Sprintf("missing required column in %s", path)).
		WithDetails("columns: %s", strings.Join(columns, ", "))
}

func Config(message string) *AppError {
	return New(CodeConfig, message)
}

func ConfigWrap(err error, message string) *AppError {
	return Wrap(err, CodeConfig, message)
}

func Render(message string) *AppError {
	return New(CodeRender, message)
}

func RenderWrap(err error, message string) *AppError {
	return Wrap(err, CodeRender, message)
}

func getExitCode(code ErrorCode) int {
	switch code {
	case CodeDataAccess:
		return ExitDataAccess
	case CodeSchema:
		return ExitSchema
	case CodeRender:
		return ExitRender
	case CodeConfig:
		return ExitConfig
	default:
		return ExitInternal
	}
}

// As returns the first *AppError in err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func Is(err error, code ErrorCode) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == code
}

// ExitCode maps err to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if appErr, ok := As(err); ok {
		return appErr.ExitCode
	}
	return ExitInternal
}

// WriteError prints a one-line message for the user to w and logs the
// full error. Errors outside the taxonomy are reported as internal.
func WriteError(w io.Writer, logger *slog.Logger, err error) {
	appErr, ok := As(err)
	if !ok {
		appErr = InternalWrap(err, "unexpected failure")
	}

	msg := appErr.Message
	if appErr.Details != "" {
		msg += ": " + appErr.Details
	}
	if appErr.Cause != nil {
		msg += ": " + appErr.Cause.Error()
	}
	fmt.Fprintf(w, "Error: %s\n", msg)

	logLevel := slog.LevelError
	if appErr.Code == CodeSchema || appErr.Code == CodeConfig {
		logLevel = slog.LevelWarn
	}

	logger.Log(context.TODO(), logLevel, "run failed",
		"error_code", appErr.Code,
		"error_message", appErr.Message,
		"details", appErr.Details,
		"exit_code", appErr.ExitCode,
		"cause", appErr.Cause,
	)
}
