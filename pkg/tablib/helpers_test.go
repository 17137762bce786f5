package tablib

import (
	"strings"
	"testing"
)

func assertContains(t *testing.T, s, substr string) {
	t.Helper()
	if !strings.Contains(s, substr) {
		t.Errorf("expected %q to contain %q", s, substr)
	}
}

// timerUnit builds a minimal scheduled unit for tests that need one.
func timerUnit(t *testing.T, name, expr string) *Unit {
	t.Helper()
	return &Unit{
		Name:     name,
		Expr:     expr,
		Schedule: mustCompile(t, expr),
		Command:  name + " --run",
		Workdir:  "/home/user",
	}
}

// serviceUnit builds a minimal persistent service unit for tests.
func serviceUnit(name string) *Unit {
	return &Unit{
		Name:     name,
		Schedule: &Schedule{Kind: KindPersistentService},
		Command:  name + " --serve",
		Workdir:  "/home/user",
	}
}
