// Package errors provides the classified error primitives used across courseforge.
//
// A ClassifiedError carries a category (config, filesystem, build, ...), a
// severity and a small context map. Errors are created with a fluent builder:
//
//	err := errors.NewError(errors.CategoryContent, "invalid source redirect").
//		WithContext("dir", node.SourcePath).
//		WithCause(content.ErrInvalidSourceRedirect).
//		Build()
//
// The CLI adapter maps categories to process exit codes.
package errors
