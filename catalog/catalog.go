// Package catalog ships the built-in schedule role catalog.
//
// roles.cue lists, for every consumer kind, the schedule roles it exposes and
// the limits each role requires. Rows are registered in file order.
package catalog

import _ "embed"

// Filename is the name CUE positions report for the embedded catalog.
const Filename = "roles.cue"

//go:embed roles.cue
var Source string
