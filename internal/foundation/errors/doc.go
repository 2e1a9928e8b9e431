// Package errors provides the classified error primitives used across Beagle.
//
// Every failure a build cycle can produce is a ClassifiedError carrying a
// category, a severity and structured context (action name, template id,
// input path, ...). Sentinel values allow callers to test for a class of
// failure with the standard library:
//
//	if errors.Is(err, ferrors.ErrMissingInput) { ... }
//
// Errors are created through the fluent builder:
//
//	err := ferrors.MissingInput("concat input not found").
//		WithContext("path", rel).
//		WithCause(statErr).
//		Build()
package errors
