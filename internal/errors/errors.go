package errors

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

type ErrorCode string

const (
	CodeInternal   ErrorCode = "INTERNAL_ERROR"
	CodeConfig     ErrorCode = "CONFIG_ERROR"
	CodeInput      ErrorCode = "INPUT_ERROR"
	CodeParse      ErrorCode = "PARSE_ERROR"
	CodeRender     ErrorCode = "RENDER_ERROR"
	CodeUnknownCat ErrorCode = "UNKNOWN_CATEGORY"
)

type AppError struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Cause     error     `json:"-"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Cause:     err,
		Timestamp: time.Now().UTC(),
	}
}

func Internal(message string) *AppError {
	return New(CodeInternal, message)
}

func InternalWrap(err error, message string) *AppError {
	return Wrap(err, CodeInternal, message)
}

func Config(message string) *AppError {
	return New(CodeConfig, message)
}

func ConfigWrap(err error, message string) *AppError {
	return Wrap(err, CodeConfig, message)
}

func Input(message string) *AppError {
	return New(CodeInput, message)
}

func InputWrap(err error, message string) *AppError {
	return Wrap(err, CodeInput, message)
}

func Parse(message string) *AppError {
	return New(CodeParse, message)
}

func ParseWrap(err error, message string) *AppError {
	return Wrap(err, CodeParse, message)
}

func Render(message string) *AppError {
	return New(CodeRender, message)
}

func RenderWrap(err error, message string) *AppError {
	return Wrap(err, CodeRender, message)
}

func UnknownCategory(message string) *AppError {
	return New(CodeUnknownCat, message)
}

// RowError is a per-row diagnostic produced while loading the dataset.
// Bad rows are excluded from the table but never silently coerced, since a
// coerced date or amount corrupts every downstream summary.
type RowError struct {
	Line   int    `json:"line"`
	Column string `json:"column"`
	Value  string `json:"value"`
	Cause  error  `json:"-"`
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: column %q value %q: %v", e.Line, e.Column, e.Value, e.Cause)
}

func (e *RowError) Unwrap() error {
	return e.Cause
}

func NewRowError(line int, column, value string, cause error) *RowError {
	return &RowError{Line: line, Column: column, Value: value, Cause: cause}
}

// LogError logs err at a level matching its severity: row diagnostics and
// render failures are warnings, everything else is an error.
func LogError(logger *slog.Logger, err error) {
	switch e := err.(type) {
	case *RowError:
		logger.Warn("row rejected",
			"line", e.Line,
			"column", e.Column,
			"value", e.Value,
			"cause", e.Cause,
		)
	case *AppError:
		level := slog.LevelError
		if e.Code == CodeRender {
			level = slog.LevelWarn
		}
		logger.Log(context.TODO(), level, "operation failed",
			"error_code", e.Code,
			"error_message", e.Message,
			"cause", e.Cause,
		)
	default:
		logger.Error("unexpected error", "error", err)
	}
}
