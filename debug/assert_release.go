//go:build !debug

// Package debug provides invariant checks for driver code. They are compiled
// in with the debug build tag and are no-ops otherwise, so hardware access
// paths don't pay for them in release firmware.
//
// Checks that are expensive to compute must be guarded with
// `if debug.Enabled {...}`.
package debug

// Enabled reports whether the debug build tag is set.
const Enabled = false

// Assert panics with message if b is false.
func Assert(b bool, message string) {}

// Assertf panics with the formatted message if b is false.
func Assertf(b bool, format string, args ...any) {}
