package catalog

import (
	"fmt"

	"github.com/containerd/errdefs"
)

// Error construction follows the errdefs convention: sentinel errors are
// wrapped with %w so callers can test with IsNotFound/IsConflict without
// string matching.

func errTypeNotFound(name string) error {
	return fmt.Errorf("type %q: %w", name, errdefs.ErrNotFound)
}

func errMemberNotFound(typeName, member string) error {
	return fmt.Errorf("type %q has no member %q: %w", typeName, member, errdefs.ErrNotFound)
}

func errDuplicateType(name, file string) error {
	if file == "" {
		return fmt.Errorf("type %q already declared: %w", name, errdefs.ErrConflict)
	}
	return fmt.Errorf("type %q already declared (re-declared in %s): %w", name, file, errdefs.ErrConflict)
}

func errInvalidf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, errdefs.ErrInvalidArgument)...)
}

// IsNotFound reports whether err marks a failed type or member lookup.
func IsNotFound(err error) bool { return errdefs.IsNotFound(err) }

// IsConflict reports whether err marks a duplicate declaration.
func IsConflict(err error) bool { return errdefs.IsConflict(err) }

// IsInvalid reports whether err marks malformed catalog input.
func IsInvalid(err error) bool { return errdefs.IsInvalidArgument(err) }
