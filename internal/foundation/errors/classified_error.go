package errors

import (
	"errors"
	"fmt"
)

// ClassifiedError represents a structured error with category, severity, and context.
type ClassifiedError struct {
	category ErrorCategory
	severity ErrorSeverity
	message  string
	cause    error
	context  ErrorContext
}

// Error implements the standard error interface.
func (e *ClassifiedError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.category, e.severity, e.message, e.cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.category, e.severity, e.message)
}

// Unwrap implements Go 1.13+ error unwrapping.
func (e *ClassifiedError) Unwrap() error {
	return e.cause
}

// Category returns the error category.
func (e *ClassifiedError) Category() ErrorCategory {
	return e.category
}

// Severity returns the error severity.
func (e *ClassifiedError) Severity() ErrorSeverity {
	return e.severity
}

// Message returns the error message.
func (e *ClassifiedError) Message() string {
	return e.message
}

// Cause returns the underlying error.
func (e *ClassifiedError) Cause() error {
	return e.cause
}

// Context returns the error context.
func (e *ClassifiedError) Context() ErrorContext {
	return e.context
}

// WithContext adds context to the error and returns a new error.
func (e *ClassifiedError) WithContext(key string, value any) *ClassifiedError {
	newContext := e.context.Merge(ErrorContext{key: value})
	return &ClassifiedError{
		category: e.category,
		severity: e.severity,
		message:  e.message,
		cause:    e.cause,
		context:  newContext,
	}
}

// Is implements error comparison for errors.Is.
//
// A target without a message (a sentinel) matches any error of the same category.
func (e *ClassifiedError) Is(target error) bool {
	other, ok := target.(*ClassifiedError)
	if !ok {
		return false
	}
	if other.message == "" {
		return e.category == other.category
	}
	return e.category == other.category && e.message == other.message
}

// IsCategory checks if the error belongs to a specific category.
func (e *ClassifiedError) IsCategory(category ErrorCategory) bool {
	return e.category == category
}

// IsSeverity checks if the error has a specific severity.
func (e *ClassifiedError) IsSeverity(severity ErrorSeverity) bool {
	return e.severity == severity
}

// IsFatal checks if the error is fatal (should stop execution).
func (e *ClassifiedError) IsFatal() bool {
	return e.severity == SeverityFatal
}

// sentinel returns a message-less error used as an errors.Is target for a category.
func sentinel(category ErrorCategory) *ClassifiedError {
	return &ClassifiedError{category: category, severity: SeverityError}
}

// Sentinels for errors.Is checks. Category sentinels match every error of
// their category; the message-bearing ones match a single condition.
var (
	ErrConfig               = sentinel(CategoryConfig)
	ErrMissingRequiredField = &ClassifiedError{category: CategoryValidation, message: "missing required field"}
	ErrAction               = sentinel(CategoryAction)
	ErrMissingInput         = sentinel(CategoryMissingInput)
	ErrTemplate             = sentinel(CategoryTemplate)
	ErrTemplateNotFound     = &ClassifiedError{category: CategoryTemplate, message: "template not found"}
	ErrRenderFailed         = &ClassifiedError{category: CategoryTemplate, message: "template render failed"}
	ErrExternalTool         = sentinel(CategoryExternalTool)
	ErrBuildInProgress      = sentinel(CategoryBusy)
)

// IsClassified checks if any error in the chain is a ClassifiedError.
func IsClassified(err error) bool {
	_, ok := AsClassified(err)
	return ok
}

// AsClassified returns the outermost ClassifiedError in the chain.
func AsClassified(err error) (*ClassifiedError, bool) {
	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified, true
	}
	return nil, false
}

// HasCategory checks if any classified error in the chain belongs to a category.
func HasCategory(err error, category ErrorCategory) bool {
	return errors.Is(err, sentinel(category))
}

// HasSeverity checks if the outermost classified error has a specific severity.
func HasSeverity(err error, severity ErrorSeverity) bool {
	if classified, ok := AsClassified(err); ok {
		return classified.IsSeverity(severity)
	}
	return false
}

// GetCategory extracts the category from an error, or returns CategoryInternal.
func GetCategory(err error) ErrorCategory {
	if classified, ok := AsClassified(err); ok {
		return classified.Category()
	}
	return CategoryInternal
}

// GetSeverity extracts the severity from an error, or returns SeverityError.
func GetSeverity(err error) ErrorSeverity {
	if classified, ok := AsClassified(err); ok {
		return classified.Severity()
	}
	return SeverityError
}

// ContextString looks up a string context value on the first classified error
// in the chain that carries the key.
func ContextString(err error, key string) (string, bool) {
	for err != nil {
		if c, ok := err.(*ClassifiedError); ok {
			if v, found := c.context.GetString(key); found {
				return v, true
			}
		}
		err = errors.Unwrap(err)
	}
	return "", false
}
