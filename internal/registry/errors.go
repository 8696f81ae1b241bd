package registry

import "fmt"

// notFoundError signals that the registry file does not exist on disk.
type notFoundError struct{ path string }

func (e notFoundError) Error() string { return "registry not found: " + e.path }

// IsNotFound reports whether err indicates an absent registry file.
func IsNotFound(err error) bool {
	_, ok := err.(notFoundError)
	return ok
}

// corruptError signals that the registry file exists but cannot be parsed.
type corruptError struct {
	path string
	err  error
}

func (e corruptError) Error() string { return fmt.Sprintf("registry corrupt: %s: %v", e.path, e.err) }
func (e corruptError) Unwrap() error { return e.err }

// IsCorrupt reports whether err indicates an unparsable registry file.
func IsCorrupt(err error) bool {
	_, ok := err.(corruptError)
	return ok
}

// noModelsError signals an empty registry when a model was required.
type noModelsError struct{}

func (noModelsError) Error() string { return "no models available" }

// ErrNoModels constructs a noModelsError.
func ErrNoModels() error { return noModelsError{} }

// IsNoModels reports whether err indicates an empty registry.
func IsNoModels(err error) bool {
	_, ok := err.(noModelsError)
	return ok
}

// duplicateVersionError signals an append with an identifier already in use.
type duplicateVersionError struct{ id string }

func (e duplicateVersionError) Error() string { return "duplicate model version: " + e.id }

// IsDuplicateVersion reports whether err indicates an identifier collision.
func IsDuplicateVersion(err error) bool {
	_, ok := err.(duplicateVersionError)
	return ok
}

// versionNotFoundError signals a lookup of an identifier not in the registry.
type versionNotFoundError struct{ id string }

func (e versionNotFoundError) Error() string { return "model version not found: " + e.id }

// ErrVersionNotFound constructs a versionNotFoundError.
func ErrVersionNotFound(id string) error { return versionNotFoundError{id: id} }

// IsVersionNotFound reports whether err indicates a missing identifier.
func IsVersionNotFound(err error) bool {
	_, ok := err.(versionNotFoundError)
	return ok
}
