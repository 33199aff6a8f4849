package registry

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"cuelang.org/go/cue"

	"github.com/roach88/schedreg/catalog"
	"github.com/roach88/schedreg/internal/compiler"
	"github.com/roach88/schedreg/internal/ir"
)

// Registry is an immutable table of role descriptors.
type Registry struct {
	roles  []ir.RoleDescriptor
	byKey  map[ir.RoleKey]int
	byKind map[string][]int
	kinds  []string
	hash   string
	logger *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger for find-or-create and binding decisions.
// The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// New builds a registry from descriptors in registration order.
// Duplicate (kind, role) pairs are rejected, and so is any descriptor that
// fails catalog validation (see compiler.Validate). The slice is copied.
func New(descriptors []ir.RoleDescriptor, opts ...Option) (*Registry, error) {
	r := &Registry{
		roles:  slices.Clone(descriptors),
		byKey:  make(map[ir.RoleKey]int, len(descriptors)),
		byKind: make(map[string][]int),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}

	for i, d := range r.roles {
		key := d.Key()
		if first, ok := r.byKey[key]; ok {
			return nil, fmt.Errorf("%w: %s at index %d and %d", ErrDuplicateRole, key, first, i)
		}
		r.byKey[key] = i
		if _, seen := r.byKind[d.ConsumerKind]; !seen {
			r.kinds = append(r.kinds, d.ConsumerKind)
		}
		r.byKind[d.ConsumerKind] = append(r.byKind[d.ConsumerKind], i)
	}
	slices.Sort(r.kinds)

	if errs := compiler.Validate(r.roles); len(errs) > 0 {
		return nil, fmt.Errorf("invalid catalog: %w", errs[0])
	}

	hash, err := ir.CatalogHash(r.roles)
	if err != nil {
		return nil, fmt.Errorf("hash catalog: %w", err)
	}
	r.hash = hash

	return r, nil
}

// Load builds a registry from the embedded role catalog.
func Load(opts ...Option) (*Registry, error) {
	r, err := FromSource(catalog.Source, catalog.Filename, opts...)
	if err != nil {
		return nil, fmt.Errorf("load embedded catalog: %w", err)
	}
	return r, nil
}

// FromCUE builds a registry from a compiled CUE catalog value.
func FromCUE(v cue.Value, opts ...Option) (*Registry, error) {
	roles, err := compiler.CompileCatalog(v)
	if err != nil {
		return nil, err
	}
	return New(roles, opts...)
}

// FromSource builds a registry from CUE catalog source text. filename is
// used only for error positions.
func FromSource(src, filename string, opts ...Option) (*Registry, error) {
	roles, err := compiler.CompileSource(src, filename)
	if err != nil {
		return nil, err
	}
	return New(roles, opts...)
}

// Len returns the number of registered roles.
func (r *Registry) Len() int {
	return len(r.roles)
}

// Roles returns every descriptor in registration order.
func (r *Registry) Roles() []ir.RoleDescriptor {
	return slices.Clone(r.roles)
}

// CatalogHash returns the content hash of the role table. Persisted models
// record it so a changed catalog can be detected on load.
func (r *Registry) CatalogHash() string {
	return r.hash
}
