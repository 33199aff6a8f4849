// Package testutil provides deterministic handle generation for tests and
// scenario runs, so the same steps always produce the same handles.
package testutil
