package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/schedreg/internal/ir"
	"github.com/roach88/schedreg/internal/registry"
)

// ClassesResult lists the consumer kinds in the catalog.
type ClassesResult struct {
	Classes     []string `json:"classes"`
	CatalogHash string   `json:"catalog_hash"`
}

// RolesResult lists the roles of one consumer kind.
type RolesResult struct {
	Kind  string     `json:"kind"`
	Roles []RoleInfo `json:"roles"`
}

// RoleInfo is a role descriptor plus the name a constraint created for it
// would get.
type RoleInfo struct {
	ir.RoleDescriptor
	FullySpecified    bool   `json:"fully_specified"`
	DefaultConstraint string `json:"default_constraint"`
}

func newRoleInfo(d ir.RoleDescriptor) RoleInfo {
	return RoleInfo{
		RoleDescriptor:    d,
		FullySpecified:    d.FullySpecified(),
		DefaultConstraint: registry.DefaultConstraintName(d),
	}
}

// NewClassesCommand creates the classes command.
func NewClassesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "classes",
		Short: "List consumer kinds that have schedule roles",
		Long: `List every consumer kind registered in the catalog, sorted by name.

Examples:
  schedreg classes
  schedreg classes --catalog ./my-catalog --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClasses(rootOpts, cmd)
		},
	}
}

func runClasses(opts *RootOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	reg, err := loadRegistry(opts, cmd.ErrOrStderr())
	if err != nil {
		return registryError(formatter, err)
	}

	result := ClassesResult{
		Classes:     reg.ClassNames(),
		CatalogHash: reg.CatalogHash(),
	}
	return formatter.Render(result, func(w io.Writer) error {
		for _, name := range result.Classes {
			fmt.Fprintln(w, name)
		}
		return nil
	})
}

// NewRolesCommand creates the roles command.
func NewRolesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "roles <kind>",
		Short: "List the schedule roles of a consumer kind",
		Long: `List the schedule roles a consumer kind registers, in registration order.

A kind with no roles prints an empty list; this is not an error.

Examples:
  schedreg roles FanConstantVolume
  schedreg roles Lights --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoles(rootOpts, args[0], cmd)
		},
	}
}

func runRoles(opts *RootOptions, kind string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	reg, err := loadRegistry(opts, cmd.ErrOrStderr())
	if err != nil {
		return registryError(formatter, err)
	}

	descriptors := reg.RolesFor(kind)
	result := RolesResult{Kind: kind, Roles: make([]RoleInfo, len(descriptors))}
	for i, d := range descriptors {
		result.Roles[i] = newRoleInfo(d)
	}

	return formatter.Render(result, func(w io.Writer) error {
		if len(result.Roles) == 0 {
			_, err := fmt.Fprintf(w, "No roles registered for %s.\n", kind)
			return err
		}
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ROLE\tRELATIONSHIP\tNUMERIC\tUNIT\tLOWER\tUPPER\tDEFAULT")
		for _, info := range result.Roles {
			writeRoleRow(tw, info)
		}
		return tw.Flush()
	})
}

func writeRoleRow(w io.Writer, info RoleInfo) {
	unit := info.UnitType.String()
	if unit == "" {
		unit = "-"
	}
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
		info.RoleName, info.RelationshipName, info.NumericType(), unit,
		info.LowerLimit, info.UpperLimit, info.DefaultConstraint)
}

// NewLookupCommand creates the lookup command.
func NewLookupCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <kind> <role>",
		Short: "Show the descriptor of one role",
		Long: `Show the descriptor registered for (kind, role). Matching is exact.

Exit codes:
  0 - Role found
  1 - Role not registered
  2 - Command error (unreadable catalog, etc.)

Examples:
  schedreg lookup FanConstantVolume Availability
  schedreg lookup ZoneMixing "Minimum Receiving Temperature" --format json`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLookup(rootOpts, args[0], args[1], cmd)
		},
	}
}

func runLookup(opts *RootOptions, kind, role string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	reg, err := loadRegistry(opts, cmd.ErrOrStderr())
	if err != nil {
		return registryError(formatter, err)
	}

	d, err := reg.Lookup(kind, role)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeRoleNotFound, err.Error(), nil)
	}

	info := newRoleInfo(d)
	return formatter.Render(info, func(w io.Writer) error {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintf(tw, "Kind:\t%s\n", info.ConsumerKind)
		fmt.Fprintf(tw, "Role:\t%s\n", info.RoleName)
		fmt.Fprintf(tw, "Relationship:\t%s\n", info.RelationshipName)
		fmt.Fprintf(tw, "Numeric type:\t%s\n", info.NumericType())
		fmt.Fprintf(tw, "Unit type:\t%s\n", info.UnitType.Effective())
		fmt.Fprintf(tw, "Lower limit:\t%s\n", info.LowerLimit)
		fmt.Fprintf(tw, "Upper limit:\t%s\n", info.UpperLimit)
		fmt.Fprintf(tw, "Shared:\t%t\n", info.FullySpecified)
		fmt.Fprintf(tw, "Default constraint:\t%s\n", info.DefaultConstraint)
		return tw.Flush()
	})
}

// registryError reports a catalog that could not be loaded.
func registryError(formatter *OutputFormatter, err error) error {
	code := ErrCodeGeneric
	if loadErr, ok := err.(*LoadError); ok {
		code = loadErr.Code
	}
	return formatter.Fail(ExitCommandError, code, fmt.Sprintf("failed to load catalog: %v", err), nil)
}
