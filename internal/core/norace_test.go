//go:build !race

package core

import "testing"

func skipRace(tb testing.TB) {}
