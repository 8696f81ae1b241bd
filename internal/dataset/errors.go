package dataset

import "fmt"

// unsupportedSourceError signals a config naming a source type this package
// does not implement.
type unsupportedSourceError struct{ kind string }

func (e unsupportedSourceError) Error() string { return "unsupported data source: " + e.kind }

// IsUnsupportedSource reports whether err indicates an unknown source type.
func IsUnsupportedSource(err error) bool {
	_, ok := err.(unsupportedSourceError)
	return ok
}

// invalidRowError signals a row missing its text or label.
type invalidRowError struct {
	index int
	field string
}

func (e invalidRowError) Error() string {
	return fmt.Sprintf("row %d: empty %s", e.index, e.field)
}

// IsInvalidRow reports whether err indicates a row failing validation.
func IsInvalidRow(err error) bool {
	_, ok := err.(invalidRowError)
	return ok
}
