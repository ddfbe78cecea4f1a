package common

import "fmt"

// GeneratedBanner returns the bare generated-file marker for a backend.
// The wording follows the Go convention so tooling that recognizes
// generated files skips them.
func GeneratedBanner(backend string) string {
	return fmt.Sprintf("Code generated by stubdex (%s backend). DO NOT EDIT.", backend)
}

// FileHeader returns the generated-file marker as a comment line using
// the target language's line-comment prefix.
func FileHeader(commentPrefix, backend string) string {
	return commentPrefix + " " + GeneratedBanner(backend)
}
