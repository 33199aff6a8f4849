// Package harness runs binding scenarios against a registry and a fresh
// model, and checks the outcome.
//
// A scenario is a YAML file with an ordered list of steps (create schedules
// and constraints, bind, find-or-create, remove, reload through the store)
// followed by assertions on the final model. Every step appends one event to
// a trace. Handles come from a sequence generator and the trace is encoded
// as canonical JSON, so the same scenario always yields the same bytes and
// can be compared against a golden file.
//
// Scenarios use the embedded catalog unless they name a CUE catalog file,
// which is resolved relative to the scenario.
package harness
