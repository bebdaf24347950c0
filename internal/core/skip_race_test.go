//go:build race

package core

import "testing"

// skipRace skips tests that drive the arrival queue across goroutines.
// The race detector tracks per-variable happens-before and cannot see the
// SPSC queue's cross-variable memory ordering, producing false positives.
func skipRace(tb testing.TB) {
	tb.Helper()
	tb.Skip("skip: SPSC uses cross-variable memory ordering")
}
