// Package testutil provides deterministic stand-ins for time and id
// sources so engine runs, traces and stored records are reproducible.
package testutil
