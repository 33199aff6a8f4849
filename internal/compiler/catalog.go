package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/schedreg/internal/ir"
)

// CompileSource compiles CUE catalog source text into role descriptors.
// filename is used only for error positions.
func CompileSource(src, filename string) ([]ir.RoleDescriptor, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return CompileCatalog(v)
}

// CompileCatalog parses a CUE value holding a `roles` list into role
// descriptors, preserving list order.
//
// The CUE value should be the catalog root, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`roles: [{kind: "Fan", role: "Availability", ...}]`)
//	roles, err := CompileCatalog(v)
func CompileCatalog(v cue.Value) ([]ir.RoleDescriptor, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	// Surfaces schema violations (closed #Role, #Unit disjunction)
	if err := v.Validate(); err != nil {
		return nil, formatCUEError(err)
	}

	rolesVal := v.LookupPath(cue.ParsePath("roles"))
	if !rolesVal.Exists() {
		return nil, &CompileError{
			Field:   "roles",
			Message: "roles list is required",
			Pos:     v.Pos(),
		}
	}

	iter, err := rolesVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var roles []ir.RoleDescriptor
	for i := 0; iter.Next(); i++ {
		d, err := compileRole(iter.Value(), i)
		if err != nil {
			return nil, err
		}
		roles = append(roles, d)
	}

	return roles, nil
}

// compileRole parses one catalog row.
func compileRole(v cue.Value, index int) (ir.RoleDescriptor, error) {
	var d ir.RoleDescriptor
	var err error

	if d.ConsumerKind, err = requiredString(v, "kind", index); err != nil {
		return d, err
	}
	if d.RoleName, err = requiredString(v, "role", index); err != nil {
		return d, err
	}
	if d.RelationshipName, err = requiredString(v, "relationship", index); err != nil {
		return d, err
	}

	contVal := v.LookupPath(cue.ParsePath("continuous"))
	if !contVal.Exists() {
		return d, &CompileError{
			Field:   fmt.Sprintf("roles[%d].continuous", index),
			Message: "continuous is required",
			Pos:     v.Pos(),
		}
	}
	if d.IsContinuous, err = contVal.Bool(); err != nil {
		return d, formatCUEError(err)
	}

	// unit is optional; an absent or empty unit leaves UnitUnspecified
	unitVal := v.LookupPath(cue.ParsePath("unit"))
	if unitVal.Exists() {
		unitVal, _ = unitVal.Default()
		unit, err := unitVal.String()
		if err != nil {
			return d, formatCUEError(err)
		}
		if unit != "" {
			d.UnitType, err = ir.ParseUnitType(unit)
			if err != nil {
				return d, &CompileError{
					Field:   fmt.Sprintf("roles[%d].unit", index),
					Message: err.Error(),
					Pos:     unitVal.Pos(),
				}
			}
		}
	}

	if d.LowerLimit, err = optionalLimit(v, "lower", index); err != nil {
		return d, err
	}
	if d.UpperLimit, err = optionalLimit(v, "upper", index); err != nil {
		return d, err
	}

	return d, nil
}

func requiredString(v cue.Value, field string, index int) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", &CompileError{
			Field:   fmt.Sprintf("roles[%d].%s", index, field),
			Message: field + " is required",
			Pos:     v.Pos(),
		}
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

// optionalLimit reads an optional numeric bound. A missing field, or an
// optional field left at its schema type, yields ir.NoLimit.
func optionalLimit(v cue.Value, field string, index int) (ir.Limit, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() || !fv.IsConcrete() {
		return ir.NoLimit, nil
	}

	switch fv.IncompleteKind() {
	case cue.IntKind, cue.FloatKind, cue.NumberKind:
	default:
		return ir.NoLimit, &CompileError{
			Field:   fmt.Sprintf("roles[%d].%s", index, field),
			Message: fmt.Sprintf("limit must be a number, got %v", fv.IncompleteKind()),
			Pos:     fv.Pos(),
		}
	}

	f, err := fv.Float64()
	if err != nil {
		return ir.NoLimit, formatCUEError(err)
	}
	return ir.SomeLimit(f), nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
