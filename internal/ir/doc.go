// Package ir provides the canonical types shared by the schedule type registry.
//
// This package contains type definitions only. All other internal packages
// import ir; ir imports nothing internal. This keeps the role catalog types
// the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Limits are three-valued: NoLimit is never collapsed to zero
//   - Unit and numeric types are closed enumerations; canonical strings only
//     appear at the boundary (catalog, store, constraint setters)
//   - RoleDescriptor values are immutable once compiled
//   - All JSON tags use snake_case
package ir
