package bundle

import "fmt"

// artifactMissingError signals that a required artifact file is absent from
// the version's model directory.
type artifactMissingError struct {
	name string
	path string
}

func (e artifactMissingError) Error() string {
	return fmt.Sprintf("artifact missing: %s (%s)", e.name, e.path)
}

// IsArtifactMissing reports whether err indicates an absent artifact file.
func IsArtifactMissing(err error) bool {
	_, ok := err.(artifactMissingError)
	return ok
}

// MissingArtifact returns the artifact name carried by an artifact-missing
// error, or "" for any other error.
func MissingArtifact(err error) string {
	if e, ok := err.(artifactMissingError); ok {
		return e.name
	}
	return ""
}

// labelMismatchError signals that the label list length does not match the
// model graph's output width. A silent mismatch would mislabel every
// prediction, so the loader rejects the bundle instead of trusting it.
type labelMismatchError struct {
	labels  int
	outputs int
}

func (e labelMismatchError) Error() string {
	return fmt.Sprintf("label count %d does not match model output width %d", e.labels, e.outputs)
}

// IsLabelMismatch reports whether err indicates a label/output-width mismatch.
func IsLabelMismatch(err error) bool {
	_, ok := err.(labelMismatchError)
	return ok
}
