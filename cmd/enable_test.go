package cmd

import (
	"errors"
	"testing"

	"github.com/kok1eee/systemdtab/pkg/tablib"
)

func TestEnable_TimerReportsState(t *testing.T) {
	env, fake, restore := newTestEnv(t)
	defer restore()
	seedUnit(t, env, testUnit(t, "report", "0 9 * * *", "./report.py"))
	fake.show[tablib.TimerFile("report")+"/ActiveState"] = "active"

	stdout, _ := captureOutput(func() {
		if err := enable(newContext(testApp(), []string{"report"}, "enable")); err != nil {
			t.Errorf("enable: %v", err)
		}
	})
	assertContains(t, stdout, "Enabled timer 'report' (active).")
	if !fake.called("enable") {
		t.Error("expected an enable call")
	}
}

func TestEnable_ServiceNotRunning(t *testing.T) {
	env, _, restore := newTestEnv(t)
	defer restore()
	seedUnit(t, env, testUnit(t, "web", "@service", "node server.js"))

	stdout, _ := captureOutput(func() {
		if err := enable(newContext(testApp(), []string{"web"}, "enable")); err != nil {
			t.Errorf("enable: %v", err)
		}
	})
	assertContains(t, stdout, "Enabled service 'web' (inactive).")
}

func TestEnable_UnknownName(t *testing.T) {
	env, _, restore := newTestEnv(t)
	defer restore()
	if err := env.store.Ensure(); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	err := enable(newContext(testApp(), []string{"ghost"}, "enable"))
	if !errors.Is(err, tablib.ErrUnitNotFound) {
		t.Errorf("expected ErrUnitNotFound, got %v", err)
	}
}
