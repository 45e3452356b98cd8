package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/panda73111/mod0keecrack/internal/types"
)

// ProgressUpdate represents progress information
type ProgressUpdate struct {
	Message     string
	Current     string
	Completed   int64
	Total       int64
	StartedAt   time.Time
	ElapsedTime time.Duration
}

// Percent calculates completion percentage
func (p *ProgressUpdate) Percent() int {
	if p.Total == 0 {
		return 0
	}
	return int((p.Completed * 100) / p.Total)
}

// Rate calculates items per second
func (p *ProgressUpdate) Rate() float64 {
	if p.ElapsedTime == 0 {
		return 0
	}
	return float64(p.Completed) / p.ElapsedTime.Seconds()
}

// ETA estimates time to completion
func (p *ProgressUpdate) ETA() time.Duration {
	if p.Completed == 0 || p.Total == 0 {
		return 0
	}
	rate := p.Rate()
	if rate == 0 {
		return 0
	}
	remaining := p.Total - p.Completed
	return time.Duration(float64(remaining) / rate * float64(time.Second))
}

// CommonError represents application-level errors
type CommonError struct {
	Code    string
	Message string
	Cause   error
}

func (e *CommonError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *CommonError) Unwrap() error {
	return e.Cause
}

// Common error codes
const (
	ErrCodeInvalidInput   = "INVALID_INPUT"
	ErrCodeDatabaseFormat = "DATABASE_FORMAT"
	ErrCodeDatabaseAccess = "DATABASE_ACCESS"
	ErrCodeInternal       = "INTERNAL"
	ErrCodeCheckpoint     = "CHECKPOINT"
)

// NewError creates a new CommonError
func NewError(code, message string, cause error) *CommonError {
	return &CommonError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// ClassifyError maps an error from the parsers and services onto an error code
func ClassifyError(err error) string {
	var ce *CommonError
	switch {
	case errors.As(err, &ce):
		return ce.Code
	case errors.Is(err, types.ErrInvalidSeed):
		return ErrCodeInvalidInput
	case errors.Is(err, types.ErrCheckpointConflict):
		return ErrCodeCheckpoint
	case errors.Is(err, types.ErrFormat):
		return ErrCodeDatabaseFormat
	case errors.Is(err, types.ErrIO):
		return ErrCodeDatabaseAccess
	default:
		return ErrCodeInternal
	}
}

// WrapError wraps err in a CommonError carrying its classified code
func WrapError(message string, err error) error {
	if err == nil {
		return nil
	}
	var ce *CommonError
	if errors.As(err, &ce) {
		return err
	}
	return NewError(ClassifyError(err), message, err)
}
