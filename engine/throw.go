package engine

import "github.com/pkg/errors"

// Entity construction and generation happen several calls deep inside the
// model. Threading error returns through every helper would bury the
// geometry code, so failures travel as panics and the adapter converts
// them back to errors at its boundary.

type Error error

// Panic with an Error.
func fatalf(format string, args ...interface{}) {
	panic(Error(errors.Errorf(format, args...)))
}

// HandlePanicRecover converts a recovered engine panic into an error.
// Foreign panics are re-raised.
func HandlePanicRecover(r interface{}) error {
	if r != nil {
		if engineErr, ok := r.(Error); ok {
			return engineErr
		}
		panic(r)
	}
	return nil
}
