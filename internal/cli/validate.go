package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/schedreg/internal/compiler"
	"github.com/roach88/schedreg/internal/ir"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid       bool                       `json:"valid"`
	Roles       int                        `json:"roles,omitempty"`
	Kinds       int                        `json:"kinds,omitempty"`
	CatalogHash string                     `json:"catalog_hash,omitempty"`
	Errors      []compiler.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <catalog>",
		Short: "Validate a role catalog",
		Long: `Validate a CUE role catalog without loading it into a registry.

<catalog> is a .cue file or a directory holding one CUE package. Performs
syntax checking, schema validation and consistency checks: every row names
its kind, role and relationship, no (kind, role) pair repeats, limits are
finite and ordered, and discrete roles have integral limits.

All consistency errors are reported, not just the first.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	loadResult, err := LoadCatalog(path)
	if err != nil {
		var loadErr *LoadError
		if !errors.As(err, &loadErr) {
			return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
		}
		switch loadErr.Code {
		case ErrCodeNotFound, ErrCodeScanError, ErrCodeNoFiles, ErrCodeLoadFailed:
			return formatter.Fail(ExitCommandError, loadErr.Code, loadErr.Message, nil)
		}
		// Anything else is a problem with the catalog content
		return outputValidationErrors(formatter, []compiler.ValidationError{{
			Field:   "catalog",
			Message: loadErr.Message,
			Code:    loadErr.Code,
			Line:    lineOf(loadErr),
		}})
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, path)
	formatter.VerboseLog("Compiled %d role(s)", len(loadResult.Roles))

	if errs := compiler.Validate(loadResult.Roles); len(errs) > 0 {
		return outputValidationErrors(formatter, errs)
	}

	return outputValidateSuccess(formatter, loadResult.Roles)
}

func lineOf(e *LoadError) int {
	if e.Pos.IsValid() {
		return e.Pos.Line()
	}
	return 0
}

func countKinds(roles []ir.RoleDescriptor) int {
	kinds := make(map[string]struct{})
	for _, d := range roles {
		kinds[d.ConsumerKind] = struct{}{}
	}
	return len(kinds)
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, roles []ir.RoleDescriptor) error {
	hash, err := ir.CatalogHash(roles)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeGeneric, err.Error(), nil)
	}

	result := ValidationResult{
		Valid:       true,
		Roles:       len(roles),
		Kinds:       countKinds(roles),
		CatalogHash: hash,
	}
	return formatter.Render(result, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "✓ Catalog valid: %d role(s) across %d kind(s)\n", result.Roles, result.Kinds)
		return err
	})
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, errs []compiler.ValidationError) error {
	// Validation failures = exit code 1
	failure := NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))

	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data: ValidationResult{
				Valid:  false,
				Errors: errs,
			},
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}
		if err := formatter.encode(response); err != nil {
			return err
		}
		return failure
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		if err.Line > 0 {
			fmt.Fprintf(formatter.Writer, "line %d\n", err.Line)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s: %s\n\n", err.Code, err.Field, err.Message)
	}

	return failure
}

// ValidateCatalog validates the catalog at path.
// This is a helper function for external callers.
func ValidateCatalog(path string) ([]compiler.ValidationError, error) {
	loadResult, err := LoadCatalog(path)
	if err != nil {
		return nil, err
	}
	return compiler.Validate(loadResult.Roles), nil
}
