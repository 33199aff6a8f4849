// Package model holds the objects the registry binds together: schedules
// and the constraints ("schedule type limits") they are attached to.
//
// A Model owns its constraints and schedules. Constraints are enumerated in
// creation order, which is the order find-or-create scans them in. A schedule
// references at most one constraint; the constraint does not know which
// schedules use it, so removal walks the model's schedules and clears them.
//
// Nothing in this package is synchronised. Callers that share a Model across
// goroutines must serialise every mutation themselves.
//
// String values for numeric type and unit type are converted to the closed
// ir enums at the setter boundary. Setters report success with a bool and
// leave the constraint untouched on failure.
package model
