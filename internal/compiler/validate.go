package compiler

import (
	"fmt"
	"strings"

	"github.com/roach88/schedreg/internal/ir"
)

// Validation error codes (E200-E299)
const (
	ErrCatalogEmpty       = "E200" // catalog has no roles
	ErrEmptyConsumerKind  = "E201" // kind is required
	ErrEmptyRoleName      = "E202" // role is required
	ErrDuplicateRole      = "E203" // (kind, role) registered twice
	ErrLimitsInverted     = "E204" // lower limit above upper limit
	ErrEmptyRelationship  = "E205" // relationship is required
	ErrNonFiniteLimit     = "E206" // NaN or infinite limit
	ErrUnknownUnitType    = "E207" // unit type outside the closed set
	ErrDiscreteFractional = "E208" // discrete role with a fractional limit
)

// ValidationError represents a catalog validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate validates compiled role descriptors.
// Returns all errors found (does not fail-fast).
func Validate(roles []ir.RoleDescriptor) []ValidationError {
	var errs []ValidationError

	if len(roles) == 0 {
		return []ValidationError{{
			Field:   "roles",
			Message: "catalog must register at least one role",
			Code:    ErrCatalogEmpty,
		}}
	}

	seen := make(map[ir.RoleKey]int, len(roles))

	for i, d := range roles {
		field := fmt.Sprintf("roles[%d]", i)

		if strings.TrimSpace(d.ConsumerKind) == "" {
			errs = append(errs, ValidationError{
				Field:   field + ".kind",
				Message: "kind is required and must be non-empty",
				Code:    ErrEmptyConsumerKind,
			})
		}
		if strings.TrimSpace(d.RoleName) == "" {
			errs = append(errs, ValidationError{
				Field:   field + ".role",
				Message: "role is required and must be non-empty",
				Code:    ErrEmptyRoleName,
			})
		}
		if strings.TrimSpace(d.RelationshipName) == "" {
			errs = append(errs, ValidationError{
				Field:   field + ".relationship",
				Message: fmt.Sprintf("role %q has no relationship name", d.Key()),
				Code:    ErrEmptyRelationship,
			})
		}

		if first, ok := seen[d.Key()]; ok {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("duplicate role %q, first registered at roles[%d]", d.Key(), first),
				Code:    ErrDuplicateRole,
			})
		} else {
			seen[d.Key()] = i
		}

		if !d.UnitType.Valid() {
			errs = append(errs, ValidationError{
				Field:   field + ".unit",
				Message: fmt.Sprintf("unknown unit type %d", int(d.UnitType)),
				Code:    ErrUnknownUnitType,
			})
		}

		errs = append(errs, validateLimits(field, d)...)
	}

	return errs
}

func validateLimits(field string, d ir.RoleDescriptor) []ValidationError {
	var errs []ValidationError

	limits := []struct {
		name  string
		limit ir.Limit
	}{
		{"lower", d.LowerLimit},
		{"upper", d.UpperLimit},
	}

	for _, l := range limits {
		name := l.name
		v, ok := l.limit.Get()
		if !ok {
			continue
		}
		if !ir.ValidLimitValue(v) {
			errs = append(errs, ValidationError{
				Field:   field + "." + name,
				Message: fmt.Sprintf("%s limit must be finite, got %v", name, v),
				Code:    ErrNonFiniteLimit,
			})
			continue
		}
		if !d.IsContinuous && v != float64(int64(v)) {
			errs = append(errs, ValidationError{
				Field:   field + "." + name,
				Message: fmt.Sprintf("discrete role %q has fractional %s limit %v", d.Key(), name, v),
				Code:    ErrDiscreteFractional,
			})
		}
	}

	lo, loOK := d.LowerLimit.Get()
	hi, hiOK := d.UpperLimit.Get()
	if loOK && hiOK && lo > hi {
		errs = append(errs, ValidationError{
			Field:   field,
			Message: fmt.Sprintf("lower limit %v exceeds upper limit %v", lo, hi),
			Code:    ErrLimitsInverted,
		})
	}

	return errs
}
