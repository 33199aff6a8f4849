package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/schedreg/internal/ir"
	"github.com/roach88/schedreg/internal/model"
	"github.com/roach88/schedreg/internal/registry"
	"github.com/roach88/schedreg/internal/store"
	"github.com/roach88/schedreg/internal/validity"
)

// ModelOptions holds flags shared by commands that work on a stored model.
type ModelOptions struct {
	*RootOptions
	Database string
}

func (o *ModelOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
}

// session is an open store with its loaded model.
type session struct {
	store *store.Store
	model *model.Model
	hash  string
}

// openModel opens the database and loads its model. A model saved against a
// different catalog is logged and loaded anyway; bind rewrites the hash on
// save.
func openModel(ctx context.Context, opts *ModelOptions, reg *registry.Registry, logger *slog.Logger) (*session, error) {
	st, err := store.Open(ctx, opts.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	m, hash, err := st.LoadModel(ctx)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to load model: %w", err)
	}

	if hash != "" && hash != reg.CatalogHash() {
		logger.Warn("model was saved against a different catalog",
			"stored", hash,
			"current", reg.CatalogHash(),
		)
	}
	logger.Debug("model loaded",
		"db", opts.Database,
		"constraints", len(m.Constraints()),
		"schedules", len(m.Schedules()),
	)
	return &session{store: st, model: m, hash: hash}, nil
}

// BindOptions holds flags for the bind command.
type BindOptions struct {
	ModelOptions
	Values []float64 // values for a schedule created by this call
}

// BindResult is the outcome of one bind.
type BindResult struct {
	Schedule       model.Handle `json:"schedule"`
	ScheduleName   string       `json:"schedule_name"`
	ScheduleNew    bool         `json:"schedule_created"`
	Role           string       `json:"role"`
	Transition     string       `json:"transition"`
	Constraint     model.Handle `json:"constraint"`
	ConstraintName string       `json:"constraint_name"`
	Created        bool         `json:"constraint_created"`
	Previous       model.Handle `json:"previous,omitempty"`
}

// NewBindCommand creates the bind command.
func NewBindCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BindOptions{ModelOptions: ModelOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "bind <kind> <role> <schedule-name>",
		Short: "Bind a schedule to a constraint compatible with a role",
		Long: `Bind the named schedule in a stored model to schedule type limits that
satisfy (kind, role), then save the model.

A schedule already on a compatible constraint keeps it. Otherwise an existing
constraint is reused when the role bounds both ends of its range, and a new
constraint is created when it does not or nothing matches. A schedule that
does not exist yet is created with --values.

Examples:
  schedreg bind --db ./model.db FanConstantVolume Availability "Always On"
  schedreg bind --db ./model.db Lights Lighting "Office Lights" --values 0,0.5,1`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBind(opts, args[0], args[1], args[2], cmd)
		},
	}

	opts.addFlags(cmd)
	cmd.Flags().Float64SliceVar(&opts.Values, "values", nil, "values for a schedule created by this call")

	return cmd
}

func runBind(opts *BindOptions, kind, role, scheduleName string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := opts.formatter(cmd)
	logger := opts.logger(cmd.ErrOrStderr())

	reg, err := loadRegistry(opts.RootOptions, cmd.ErrOrStderr())
	if err != nil {
		return registryError(formatter, err)
	}
	if _, err := reg.Lookup(kind, role); err != nil {
		return formatter.Fail(ExitFailure, ErrCodeRoleNotFound, err.Error(), nil)
	}

	sess, err := openModel(ctx, &opts.ModelOptions, reg, logger)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}
	defer sess.store.Close()

	s, found := sess.model.ScheduleByName(scheduleName)
	if !found {
		s = sess.model.NewSchedule(scheduleName, opts.Values...)
		formatter.VerboseLog("Created schedule %q (%s)", scheduleName, s.Handle())
	}

	b, err := reg.Bind(kind, role, s)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeGeneric, err.Error(), nil)
	}

	if err := sess.store.SaveModel(ctx, sess.model, reg.CatalogHash()); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}

	result := BindResult{
		Schedule:       s.Handle(),
		ScheduleName:   s.Name(),
		ScheduleNew:    !found,
		Role:           b.Role.Key().String(),
		Transition:     b.Transition.String(),
		Constraint:     b.Constraint.Handle(),
		ConstraintName: b.Constraint.Name(),
		Created:        b.Created,
	}
	if b.Previous != nil {
		result.Previous = b.Previous.Handle()
	}

	return formatter.Render(result, func(w io.Writer) error {
		verb := "Reused"
		if result.Created {
			verb = "Created"
		}
		fmt.Fprintf(w, "%s: %s for %s\n", result.ScheduleName, result.Transition, result.Role)
		_, err := fmt.Fprintf(w, "%s constraint %q (%s)\n", verb, result.ConstraintName, result.Constraint)
		return err
	})
}

// ConstraintInfo describes one stored constraint.
type ConstraintInfo struct {
	Handle      model.Handle `json:"handle"`
	Name        string       `json:"name"`
	LowerLimit  ir.Limit     `json:"lower_limit"`
	UpperLimit  ir.Limit     `json:"upper_limit"`
	NumericType string       `json:"numeric_type,omitempty"`
	UnitType    string       `json:"unit_type"`
	Schedules   []string     `json:"schedules"`
}

// ConstraintsResult lists the constraints of a stored model.
type ConstraintsResult struct {
	Constraints []ConstraintInfo `json:"constraints"`
	Unbound     []string         `json:"unbound_schedules"`
	CatalogHash string           `json:"catalog_hash,omitempty"`
}

// NewConstraintsCommand creates the constraints command.
func NewConstraintsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ModelOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "constraints",
		Short: "List the constraints in a stored model",
		Long: `List every constraint in a stored model in creation order, with the
schedules bound to it. Schedules without a constraint are listed separately.

Examples:
  schedreg constraints --db ./model.db
  schedreg constraints --db ./model.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConstraints(opts, cmd)
		},
	}

	opts.addFlags(cmd)
	return cmd
}

func runConstraints(opts *ModelOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := opts.formatter(cmd)

	reg, err := loadRegistry(opts.RootOptions, cmd.ErrOrStderr())
	if err != nil {
		return registryError(formatter, err)
	}
	sess, err := openModel(ctx, opts, reg, opts.logger(cmd.ErrOrStderr()))
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}
	defer sess.store.Close()

	result := describeModel(sess.model)
	result.CatalogHash = sess.hash

	return formatter.Render(result, func(w io.Writer) error {
		if len(result.Constraints) == 0 {
			fmt.Fprintln(w, "No constraints.")
		} else {
			tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "HANDLE\tNAME\tNUMERIC\tUNIT\tLOWER\tUPPER\tUSES")
			for _, c := range result.Constraints {
				numeric := c.NumericType
				if numeric == "" {
					numeric = "-"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%d\n",
					c.Handle, c.Name, numeric, c.UnitType, c.LowerLimit, c.UpperLimit, len(c.Schedules))
			}
			if err := tw.Flush(); err != nil {
				return err
			}
		}
		for _, name := range result.Unbound {
			fmt.Fprintf(w, "unbound: %s\n", name)
		}
		return nil
	})
}

func describeModel(m *model.Model) ConstraintsResult {
	result := ConstraintsResult{
		Constraints: []ConstraintInfo{},
		Unbound:     []string{},
	}

	index := make(map[*model.Constraint]int)
	for _, c := range m.Constraints() {
		numeric := ""
		if n, ok := c.NumericType(); ok {
			numeric = n.String()
		}
		index[c] = len(result.Constraints)
		result.Constraints = append(result.Constraints, ConstraintInfo{
			Handle:      c.Handle(),
			Name:        c.Name(),
			LowerLimit:  c.LowerLimit(),
			UpperLimit:  c.UpperLimit(),
			NumericType: numeric,
			UnitType:    c.UnitTypeString(),
			Schedules:   []string{},
		})
	}

	for _, s := range m.Schedules() {
		c := s.CurrentConstraint()
		if c == nil {
			result.Unbound = append(result.Unbound, s.Name())
			continue
		}
		info := &result.Constraints[index[c]]
		info.Schedules = append(info.Schedules, s.Name())
	}
	return result
}

// CheckResult is the validity report of a stored model.
type CheckResult struct {
	Valid      bool                 `json:"valid"`
	Schedules  int                  `json:"schedules"`
	Violations []validity.Violation `json:"violations"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ModelOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check schedule values against their constraints",
		Long: `Report every schedule value in a stored model that lies outside its
constraint's limits, is not integral under a discrete constraint, or is not
finite. Unbound schedules are not checked.

Exit codes:
  0 - No violations
  1 - One or more violations
  2 - Command error (database not found, etc.)

Examples:
  schedreg check --db ./model.db
  schedreg check --db ./model.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, cmd)
		},
	}

	opts.addFlags(cmd)
	return cmd
}

func runCheck(opts *ModelOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := opts.formatter(cmd)

	reg, err := loadRegistry(opts.RootOptions, cmd.ErrOrStderr())
	if err != nil {
		return registryError(formatter, err)
	}
	sess, err := openModel(ctx, opts, reg, opts.logger(cmd.ErrOrStderr()))
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}
	defer sess.store.Close()

	violations := validity.Check(sess.model)
	result := CheckResult{
		Valid:      len(violations) == 0,
		Schedules:  len(sess.model.Schedules()),
		Violations: violations,
	}
	if result.Violations == nil {
		result.Violations = []validity.Violation{}
	}

	if result.Valid {
		return formatter.Render(result, func(w io.Writer) error {
			_, err := fmt.Fprintf(w, "✓ %d schedule(s) within their limits\n", result.Schedules)
			return err
		})
	}

	failure := NewExitError(ExitFailure, fmt.Sprintf("%d violation(s)", len(violations)))
	if formatter.Format == "json" {
		if err := formatter.encode(CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    ErrCodeViolations,
				Message: failure.Message,
			},
		}); err != nil {
			return err
		}
		return failure
	}

	fmt.Fprintf(formatter.Writer, "✗ %d violation(s)\n", len(violations))
	for _, v := range violations {
		fmt.Fprintf(formatter.Writer, "  %s\n", v)
	}
	return failure
}
