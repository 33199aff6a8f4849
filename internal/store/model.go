package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/roach88/schedreg/internal/ir"
	"github.com/roach88/schedreg/internal/model"
)

const (
	metaCatalogHash = "catalog_hash"
	metaIRVersion   = "ir_version"
)

// ErrIRVersion is returned when a database was written under a different
// IR version.
var ErrIRVersion = errors.New("ir version mismatch")

// SaveModel replaces the stored model with m and records catalogHash.
func (s *Store) SaveModel(ctx context.Context, m *model.Model, catalogHash string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save model: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{"DELETE FROM schedules", "DELETE FROM constraints"} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("save model: %w", err)
		}
	}

	for i, c := range m.Constraints() {
		if err := writeConstraint(ctx, tx, c, int64(i+1)); err != nil {
			return fmt.Errorf("save model: %w", err)
		}
	}
	for i, sched := range m.Schedules() {
		if err := writeSchedule(ctx, tx, sched, int64(i+1)); err != nil {
			return fmt.Errorf("save model: %w", err)
		}
	}

	meta := map[string]string{
		metaCatalogHash: catalogHash,
		metaIRVersion:   ir.IRVersion,
	}
	for _, key := range []string{metaCatalogHash, metaIRVersion} {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO meta (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value
		`, key, meta[key])
		if err != nil {
			return fmt.Errorf("save model: write %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save model: commit: %w", err)
	}
	return nil
}

func writeConstraint(ctx context.Context, tx *sql.Tx, c *model.Constraint, seq int64) error {
	var numeric sql.NullString
	if n, ok := c.NumericType(); ok {
		numeric = sql.NullString{String: n.String(), Valid: true}
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO constraints
		(handle, seq, name, lower_limit, upper_limit, numeric_type, unit_type)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		string(c.Handle()),
		seq,
		c.Name(),
		nullLimit(c.LowerLimit()),
		nullLimit(c.UpperLimit()),
		numeric,
		c.UnitTypeString(),
	)
	if err != nil {
		return fmt.Errorf("write constraint %s: %w", c.Handle(), err)
	}
	return nil
}

func writeSchedule(ctx context.Context, tx *sql.Tx, sched *model.Schedule, seq int64) error {
	values, err := json.Marshal(sched.Values())
	if err != nil {
		return fmt.Errorf("write schedule %s: marshal values: %w", sched.Handle(), err)
	}

	var bound sql.NullString
	if c := sched.CurrentConstraint(); c != nil {
		bound = sql.NullString{String: string(c.Handle()), Valid: true}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO schedules
		(handle, seq, name, constraint_handle, values_json)
		VALUES (?, ?, ?, ?, ?)
	`,
		string(sched.Handle()),
		seq,
		sched.Name(),
		bound,
		string(values),
	)
	if err != nil {
		return fmt.Errorf("write schedule %s: %w", sched.Handle(), err)
	}
	return nil
}

// LoadModel rebuilds the stored model. It returns the catalog hash the model
// was saved with, or "" for an empty database. opts configure the new model;
// stored handles are kept, so a generator only matters for objects added
// after loading.
func (s *Store) LoadModel(ctx context.Context, opts ...model.Option) (*model.Model, string, error) {
	hash, version, err := s.readMeta(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("load model: %w", err)
	}
	if version != "" && version != ir.IRVersion {
		return nil, "", fmt.Errorf("load model: %w: stored %s, current %s", ErrIRVersion, version, ir.IRVersion)
	}

	m := model.New(opts...)
	if err := s.readConstraints(ctx, m); err != nil {
		return nil, "", fmt.Errorf("load model: %w", err)
	}
	if err := s.readSchedules(ctx, m); err != nil {
		return nil, "", fmt.Errorf("load model: %w", err)
	}
	return m, hash, nil
}

func (s *Store) readMeta(ctx context.Context) (hash, version string, err error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM meta`)
	if err != nil {
		return "", "", fmt.Errorf("read meta: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return "", "", fmt.Errorf("read meta: %w", err)
		}
		switch key {
		case metaCatalogHash:
			hash = value
		case metaIRVersion:
			version = value
		}
	}
	return hash, version, rows.Err()
}

func (s *Store) readConstraints(ctx context.Context, m *model.Model) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT handle, name, lower_limit, upper_limit, numeric_type, unit_type
		FROM constraints
		ORDER BY seq ASC
	`)
	if err != nil {
		return fmt.Errorf("read constraints: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			handle, name, unit string
			lower, upper       sql.NullFloat64
			numeric            sql.NullString
		)
		if err := rows.Scan(&handle, &name, &lower, &upper, &numeric, &unit); err != nil {
			return fmt.Errorf("read constraints: %w", err)
		}

		c := model.NewConstraintWithHandle(model.Handle(handle), name)
		if lower.Valid && !c.SetLowerLimit(lower.Float64) {
			return fmt.Errorf("constraint %s: lower limit %v: %w", handle, lower.Float64, model.ErrInvalidFieldValue)
		}
		if upper.Valid && !c.SetUpperLimit(upper.Float64) {
			return fmt.Errorf("constraint %s: upper limit %v: %w", handle, upper.Float64, model.ErrInvalidFieldValue)
		}
		if numeric.Valid && !c.SetNumericType(numeric.String) {
			return fmt.Errorf("constraint %s: numeric type %q: %w", handle, numeric.String, model.ErrInvalidFieldValue)
		}
		if !c.SetUnitType(unit) {
			return fmt.Errorf("constraint %s: unit type %q: %w", handle, unit, model.ErrInvalidFieldValue)
		}
		if err := m.AddConstraint(c); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (s *Store) readSchedules(ctx context.Context, m *model.Model) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT handle, name, constraint_handle, values_json
		FROM schedules
		ORDER BY seq ASC
	`)
	if err != nil {
		return fmt.Errorf("read schedules: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			handle, name, valuesJSON string
			bound                    sql.NullString
		)
		if err := rows.Scan(&handle, &name, &bound, &valuesJSON); err != nil {
			return fmt.Errorf("read schedules: %w", err)
		}

		var values []float64
		if err := json.Unmarshal([]byte(valuesJSON), &values); err != nil {
			return fmt.Errorf("schedule %s: values: %w", handle, err)
		}

		sched, err := m.RestoreSchedule(model.Handle(handle), name, values)
		if err != nil {
			return err
		}
		if !bound.Valid {
			continue
		}
		c, ok := m.Constraint(model.Handle(bound.String))
		if !ok || !sched.SetConstraint(c) {
			return fmt.Errorf("schedule %s: bound to unknown constraint %s", handle, bound.String)
		}
	}
	return rows.Err()
}

func nullLimit(l ir.Limit) sql.NullFloat64 {
	v, ok := l.Get()
	return sql.NullFloat64{Float64: v, Valid: ok}
}
