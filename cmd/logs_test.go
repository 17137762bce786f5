package cmd

import (
	"errors"
	"testing"

	"github.com/kok1eee/systemdtab/pkg/tablib"
)

// The happy path hands the process over to journalctl, so only the
// guard clauses are testable here; pkg/systemctl covers the exec.

func TestLogs_RequiresName(t *testing.T) {
	_, _, restore := newTestEnv(t)
	defer restore()
	stdout, _ := captureOutput(func() {
		if err := logs(newContext(testApp(), nil, "logs")); err != nil {
			t.Errorf("logs: %v", err)
		}
	})
	assertContains(t, stdout, "no name provided")
}

func TestLogs_UnknownName(t *testing.T) {
	env, _, restore := newTestEnv(t)
	defer restore()
	if err := env.store.Ensure(); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	err := logs(newContext(testApp(), []string{"ghost"}, "logs"))
	if !errors.Is(err, tablib.ErrUnitNotFound) {
		t.Errorf("expected ErrUnitNotFound, got %v", err)
	}
}
