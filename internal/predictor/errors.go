package predictor

import "fmt"

// notLoadedError signals a predict/info dependency on an active bundle when
// none is installed, so the HTTP layer can return 503 Service Unavailable.
type notLoadedError struct{}

func (notLoadedError) Error() string { return "model not loaded" }

// ErrNotLoaded constructs a notLoadedError.
func ErrNotLoaded() error { return notLoadedError{} }

// IsNotLoaded reports whether err indicates the predictor has no active bundle.
func IsNotLoaded(err error) bool {
	_, ok := err.(notLoadedError)
	return ok
}

// tokenizationError signals input that could not be encoded (400 mapping).
type tokenizationError struct{ msg string }

func (e tokenizationError) Error() string { return "tokenization failed: " + e.msg }

// ErrTokenization constructs a tokenizationError.
func ErrTokenization(msg string) error { return tokenizationError{msg: msg} }

// IsTokenization reports whether err indicates unencodable input text.
func IsTokenization(err error) bool {
	_, ok := err.(tokenizationError)
	return ok
}

// inferenceError signals a failed forward pass or an inconsistent model
// output (500 mapping).
type inferenceError struct{ err error }

func (e inferenceError) Error() string { return fmt.Sprintf("inference failed: %v", e.err) }
func (e inferenceError) Unwrap() error { return e.err }

// ErrInference constructs an inferenceError wrapping err.
func ErrInference(err error) error { return inferenceError{err: err} }

// IsInference reports whether err indicates a failed forward pass.
func IsInference(err error) bool {
	_, ok := err.(inferenceError)
	return ok
}
