package registry

import (
	"errors"
	"fmt"

	"github.com/roach88/schedreg/internal/ir"
	"github.com/roach88/schedreg/internal/model"
)

// ErrNotFound matches every *NotFoundError via errors.Is.
var ErrNotFound = errors.New("role not registered")

// ErrDuplicateRole is returned by New when a (kind, role) pair repeats.
var ErrDuplicateRole = errors.New("duplicate role")

// NotFoundError is returned when a (kind, role) pair was never registered.
// It signals a caller bug such as a misspelled role name, not bad data.
type NotFoundError struct {
	Kind string
	Role string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %s/%s", ErrNotFound, e.Kind, e.Role)
}

// Is reports whether target is ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// IncompatibleBindingError is returned by Validate when a schedule's
// constraint cannot serve the role. The schedule is left unmodified.
type IncompatibleBindingError struct {
	Role       ir.RoleDescriptor
	Schedule   model.Handle
	Constraint model.Handle
	Reason     string
}

func (e *IncompatibleBindingError) Error() string {
	return fmt.Sprintf("schedule %s: constraint %s incompatible with %s: %s",
		e.Schedule, e.Constraint, e.Role.Key(), e.Reason)
}

// IsNotFound reports whether err is, or wraps, a NotFoundError.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsIncompatible reports whether err is, or wraps, an IncompatibleBindingError.
func IsIncompatible(err error) bool {
	var ie *IncompatibleBindingError
	return errors.As(err, &ie)
}
