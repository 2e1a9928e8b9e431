package errors

// ErrorBuilder provides a fluent API for creating ClassifiedError instances.
type ErrorBuilder struct {
	category ErrorCategory
	severity ErrorSeverity
	message  string
	cause    error
	context  ErrorContext
}

// NewError creates a new ErrorBuilder with the specified category and message.
func NewError(category ErrorCategory, message string) *ErrorBuilder {
	return &ErrorBuilder{
		category: category,
		severity: SeverityError,
		message:  message,
		context:  make(ErrorContext),
	}
}

// WrapError creates a new ErrorBuilder that wraps an existing error.
func WrapError(err error, category ErrorCategory, message string) *ErrorBuilder {
	return NewError(category, message).WithCause(err)
}

// WithSeverity sets the error severity.
func (b *ErrorBuilder) WithSeverity(severity ErrorSeverity) *ErrorBuilder {
	b.severity = severity
	return b
}

// WithCause sets the wrapped error.
func (b *ErrorBuilder) WithCause(err error) *ErrorBuilder {
	b.cause = err
	return b
}

// WithContext adds a context key-value pair.
func (b *ErrorBuilder) WithContext(key string, value any) *ErrorBuilder {
	b.context = b.context.Set(key, value)
	return b
}

// Fatal sets the severity to fatal.
func (b *ErrorBuilder) Fatal() *ErrorBuilder {
	return b.WithSeverity(SeverityFatal)
}

// Warning sets the severity to warning.
func (b *ErrorBuilder) Warning() *ErrorBuilder {
	return b.WithSeverity(SeverityWarning)
}

// Build creates the final ClassifiedError.
func (b *ErrorBuilder) Build() *ClassifiedError {
	return &ClassifiedError{
		category: b.category,
		severity: b.severity,
		message:  b.message,
		cause:    b.cause,
		context:  b.context,
	}
}

// Convenience constructors for the build taxonomy.

// ConfigError creates an error for a configuration unit that failed to load.
func ConfigError(message string) *ErrorBuilder {
	return NewError(CategoryConfig, message).Fatal()
}

// ValidationError creates an error for invalid input such as bad flags.
func ValidationError(message string) *ErrorBuilder {
	return NewError(CategoryValidation, message).Fatal()
}

// MissingRequiredField creates a construction-time command error.
func MissingRequiredField(kind, field string) *ErrorBuilder {
	return NewError(CategoryValidation, "missing required field").
		WithContext("kind", kind).
		WithContext("field", field)
}

// ActionError wraps the failure of a named action.
func ActionError(name string, cause error) *ErrorBuilder {
	return WrapError(cause, CategoryAction, "action "+name+" failed").
		WithContext("action", name)
}

// MissingInput creates an error for a source path that does not exist.
func MissingInput(message string) *ErrorBuilder {
	return NewError(CategoryMissingInput, message)
}

// TemplateNotFound creates an error for an unknown template id.
func TemplateNotFound(id string) *ErrorBuilder {
	return NewError(CategoryTemplate, "template not found").WithContext("template", id)
}

// RenderError creates an error for a template that failed while executing.
func RenderError(id string, cause error) *ErrorBuilder {
	return WrapError(cause, CategoryTemplate, "template render failed").WithContext("template", id)
}

// ExternalToolFailure creates a non-fatal error for a failed subprocess.
func ExternalToolFailure(tool string, cause error) *ErrorBuilder {
	return WrapError(cause, CategoryExternalTool, tool+" failed").
		WithContext("tool", tool).
		Warning()
}

// BuildInProgress reports a rejected rebuild request.
func BuildInProgress() *ErrorBuilder {
	return NewError(CategoryBusy, "build already in progress")
}

// BuildError creates a build processing error.
func BuildError(message string) *ErrorBuilder {
	return NewError(CategoryBuild, message)
}

// FileSystemError creates a filesystem error.
func FileSystemError(message string) *ErrorBuilder {
	return NewError(CategoryFileSystem, message)
}

// RuntimeError creates a runtime error.
func RuntimeError(message string) *ErrorBuilder {
	return NewError(CategoryRuntime, message).Fatal()
}

// InternalError creates an internal error.
func InternalError(message string) *ErrorBuilder {
	return NewError(CategoryInternal, message).Fatal()
}
