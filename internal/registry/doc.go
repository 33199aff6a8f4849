// Package registry maps schedule roles to the constraints they require.
//
// A Registry is built once from an ordered table of role descriptors, either
// the embedded catalog (Load) or a caller-supplied table (New, FromCUE), and
// is read-only afterwards. It is safe for concurrent readers. The models it
// operates on are not: GetOrCreate and the binding helpers mutate the model
// and callers must serialise them per model.
//
// Find-or-create reuses an existing constraint only when the role's
// descriptor bounds both ends of the range. A constraint created for a
// partially bounded role is never handed to another schedule by this
// package, since a later edit to the open end would silently change every
// schedule sharing it.
//
// Among several compatible constraints the first in creation order wins.
package registry
