package errors

import (
	"errors"
	"fmt"
)

// Category represents the classes of failure an analysis run can hit
type Category string

const (
	// Fatal categories that abort the whole run
	CategoryInputSchema   Category = "INPUT_SCHEMA"
	CategoryDataIntegrity Category = "DATA_INTEGRITY"
	CategoryDataQuality   Category = "DATA_QUALITY"

	// Recoverable: absorbed per-day/per-metric without aborting the run
	CategoryInsufficientData Category = "INSUFFICIENT_DATA"
)

// AnalysisError represents a categorized error with context
type AnalysisError struct {
	Category    Category
	Component   string
	Operation   string
	Message     string
	Underlying  error
	Recoverable bool
}

// Error implements the error interface
func (e *AnalysisError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("[%s:%s] %s: %s: %v", e.Category, e.Component, e.Operation, e.Message, e.Underlying)
	}
	return fmt.Sprintf("[%s:%s] %s: %s", e.Category, e.Component, e.Operation, e.Message)
}

// Unwrap returns the underlying error for error unwrapping
func (e *AnalysisError) Unwrap() error {
	return e.Underlying
}

// IsFatal returns whether this error should abort the analysis run
func (e *AnalysisError) IsFatal() bool {
	return !e.Recoverable
}

// New creates a new categorized analysis error
func New(category Category, component, operation, message string) *AnalysisError {
	return &AnalysisError{
		Category:    category,
		Component:   component,
		Operation:   operation,
		Message:     message,
		Recoverable: category == CategoryInsufficientData,
	}
}

// Newf creates a new categorized analysis error with a formatted message
func Newf(category Category, component, operation, format string, args ...interface{}) *AnalysisError {
	return New(category, component, operation, fmt.Sprintf(format, args...))
}

// Wrap wraps an existing error with analysis error context
func Wrap(err error, category Category, component, operation string) *AnalysisError {
	if err == nil {
		return nil
	}
	return &AnalysisError{
		Category:    category,
		Component:   component,
		Operation:   operation,
		Message:     "operation failed",
		Underlying:  err,
		Recoverable: category == CategoryInsufficientData,
	}
}

// Wrapf wraps an existing error with analysis error context and a formatted message
func Wrapf(err error, category Category, component, operation, format string, args ...interface{}) *AnalysisError {
	if err == nil {
		return nil
	}
	wrapped := Wrap(err, category, component, operation)
	wrapped.Message = fmt.Sprintf(format, args...)
	return wrapped
}

// IsCategory reports whether err carries the given category anywhere in its chain
func IsCategory(err error, category Category) bool {
	var ae *AnalysisError
	if errors.As(err, &ae) {
		return ae.Category == category
	}
	return false
}

// Common constructors

func NewInputSchemaError(component, operation, message string) *AnalysisError {
	return New(CategoryInputSchema, component, operation, message)
}

func NewDataIntegrityError(component, operation, message string) *AnalysisError {
	return New(CategoryDataIntegrity, component, operation, message)
}

func NewDataQualityError(component, operation, message string) *AnalysisError {
	return New(CategoryDataQuality, component, operation, message)
}

func NewInsufficientDataError(component, operation, message string) *AnalysisError {
	return New(CategoryInsufficientData, component, operation, message)
}
