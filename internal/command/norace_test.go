//go:build !race

package command

import "testing"

func skipRace(tb testing.TB) {}
