package errors

import stderrors "errors"

// Join wraps the standard library errors.Join so callers only need this
// package.
func Join(errs ...error) error {
	return stderrors.Join(errs...)
}

// As wraps the standard library errors.As.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// Is wraps the standard library errors.Is.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}
