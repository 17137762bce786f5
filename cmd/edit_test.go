package cmd

import (
	"errors"
	"strings"
	"testing"

	"github.com/kok1eee/systemdtab/pkg/tablib"
)

func swapEditor(t *testing.T, fail error) (*string, *[]string) {
	t.Helper()
	old := runEditor
	var gotEditor string
	var gotPaths []string
	runEditor = func(editor string, paths ...string) error {
		gotEditor = editor
		gotPaths = paths
		return fail
	}
	t.Cleanup(func() { runEditor = old })
	return &gotEditor, &gotPaths
}

func TestEdit_OpensBothTimerHalves(t *testing.T) {
	env, fake, restore := newTestEnv(t)
	defer restore()
	seedUnit(t, env, testUnit(t, "report", "0 9 * * *", "./report.py"))
	gotEditor, gotPaths := swapEditor(t, nil)
	t.Setenv("EDITOR", "nano")

	stdout, _ := captureOutput(func() {
		if err := edit(newContext(testApp(), []string{"report"}, "edit")); err != nil {
			t.Errorf("edit: %v", err)
		}
	})
	if *gotEditor != "nano" {
		t.Errorf("expected $EDITOR to win, got %q", *gotEditor)
	}
	if len(*gotPaths) != 2 {
		t.Fatalf("expected service and timer paths, got %v", *gotPaths)
	}
	assertContains(t, stdout, "Reloaded systemd user daemon.")
	if !fake.called("daemon-reload") {
		t.Error("expected a daemon-reload after editing")
	}
}

func TestEdit_DefaultsToVi(t *testing.T) {
	env, _, restore := newTestEnv(t)
	defer restore()
	seedUnit(t, env, testUnit(t, "report", "0 9 * * *", "./report.py"))
	gotEditor, _ := swapEditor(t, nil)
	t.Setenv("EDITOR", "")

	captureOutput(func() {
		if err := edit(newContext(testApp(), []string{"report"}, "edit")); err != nil {
			t.Errorf("edit: %v", err)
		}
	})
	if *gotEditor != "vi" {
		t.Errorf("expected vi fallback, got %q", *gotEditor)
	}
}

func TestEdit_ServiceHint(t *testing.T) {
	env, _, restore := newTestEnv(t)
	defer restore()
	seedUnit(t, env, testUnit(t, "web", "@service", "node server.js"))
	_, gotPaths := swapEditor(t, nil)
	t.Setenv("EDITOR", "nano")

	stdout, _ := captureOutput(func() {
		if err := edit(newContext(testApp(), []string{"web"}, "edit")); err != nil {
			t.Errorf("edit: %v", err)
		}
	})
	if len(*gotPaths) != 1 {
		t.Fatalf("expected only the service path, got %v", *gotPaths)
	}
	assertContains(t, stdout, "Hint: run `systemdtab restart web` to apply changes.")
}

func TestEdit_EditorFailure(t *testing.T) {
	env, _, restore := newTestEnv(t)
	defer restore()
	seedUnit(t, env, testUnit(t, "report", "0 9 * * *", "./report.py"))
	swapEditor(t, errors.New("exit status 1"))
	t.Setenv("EDITOR", "nano")

	err := edit(newContext(testApp(), []string{"report"}, "edit"))
	if err == nil || !strings.Contains(err.Error(), "editor nano") {
		t.Errorf("expected editor failure, got %v", err)
	}
}

func TestEdit_UnknownName(t *testing.T) {
	env, _, restore := newTestEnv(t)
	defer restore()
	if err := env.store.Ensure(); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	err := edit(newContext(testApp(), []string{"ghost"}, "edit"))
	if !errors.Is(err, tablib.ErrUnitNotFound) {
		t.Errorf("expected ErrUnitNotFound, got %v", err)
	}
}
