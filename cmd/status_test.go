package cmd

import (
	"errors"
	"testing"

	"github.com/kok1eee/systemdtab/pkg/tablib"
)

func TestExtractExecCommand_Argv(t *testing.T) {
	raw := "{ path=/usr/bin/python3 ; argv[]=/usr/bin/python3 ./report.py ; ignore_errors=no }"
	got := extractExecCommand(raw)
	if got != "/usr/bin/python3 ./report.py" {
		t.Errorf("expected argv part, got %q", got)
	}
}

func TestExtractExecCommand_NoTrailingSemicolon(t *testing.T) {
	raw := "{ path=/usr/bin/tool ; argv[]=/usr/bin/tool run }"
	got := extractExecCommand(raw)
	if got != "/usr/bin/tool run" {
		t.Errorf("expected trimmed argv, got %q", got)
	}
}

func TestExtractExecCommand_PassthroughWithoutArgv(t *testing.T) {
	raw := "/usr/bin/echo hi"
	if got := extractExecCommand(raw); got != raw {
		t.Errorf("expected passthrough, got %q", got)
	}
}

func TestStatus_Timer(t *testing.T) {
	env, fake, restore := newTestEnv(t)
	defer restore()
	seedUnit(t, env, testUnit(t, "report", "0 9 * * *", "./report.py"))
	fake.show[tablib.TimerFile("report")+"/ActiveState"] = "active"
	fake.show[tablib.TimerFile("report")+"/NextElapseUSecRealtime"] = "Tue 2026-01-06 09:00:00 UTC"
	fake.show[tablib.ServiceFile("report")+"/ExecMainStartTimestamp"] = "Mon 2026-01-05 09:00:00 UTC"
	fake.show[tablib.ServiceFile("report")+"/Result"] = "success"
	fake.show[tablib.ServiceFile("report")+"/ExecStart"] = "{ path=/usr/bin/python3 ; argv[]=/usr/bin/python3 ./report.py ; ignore_errors=no }"
	fake.show[tablib.ServiceFile("report")+"/WorkingDirectory"] = "/home/user"

	stdout, _ := captureOutput(func() {
		if err := status(newContext(testApp(), []string{"report"}, "status")); err != nil {
			t.Errorf("status: %v", err)
		}
	})
	assertContainsAll(t, stdout, []string{
		"Name:    report",
		"Type:    timer",
		"Status:  active",
		"Next:    Tue 2026-01-06 09:00:00 UTC",
		"Last:    Mon 2026-01-05 09:00:00 UTC",
		"Result:  success",
		"Command: /usr/bin/python3 ./report.py",
		"WorkDir: /home/user",
	})
}

func TestStatus_ServiceWithMemory(t *testing.T) {
	env, fake, restore := newTestEnv(t)
	defer restore()
	seedUnit(t, env, testUnit(t, "web", "@service", "node server.js"))
	service := tablib.ServiceFile("web")
	fake.show[service+"/ActiveState"] = "active"
	fake.show[service+"/SubState"] = "running"
	fake.show[service+"/MainPID"] = "4242"
	fake.show[service+"/MemoryCurrent"] = "1048576"

	stdout, _ := captureOutput(func() {
		if err := status(newContext(testApp(), []string{"web"}, "status")); err != nil {
			t.Errorf("status: %v", err)
		}
	})
	assertContainsAll(t, stdout, []string{
		"Name:    web",
		"Type:    service",
		"Status:  active (running)",
		"PID:     4242",
		"Memory:  1.0 MiB",
	})
}

func TestStatus_InactiveServiceHidesPid(t *testing.T) {
	env, fake, restore := newTestEnv(t)
	defer restore()
	seedUnit(t, env, testUnit(t, "web", "@service", "node server.js"))
	service := tablib.ServiceFile("web")
	fake.show[service+"/ActiveState"] = "inactive"
	fake.show[service+"/SubState"] = "dead"
	fake.show[service+"/MainPID"] = "0"
	fake.show[service+"/MemoryCurrent"] = "[not set]"

	stdout, _ := captureOutput(func() {
		if err := status(newContext(testApp(), []string{"web"}, "status")); err != nil {
			t.Errorf("status: %v", err)
		}
	})
	assertContains(t, stdout, "Status:  inactive (dead)")
	assertNotContains(t, stdout, "PID:")
	assertNotContains(t, stdout, "Memory:")
}

func TestStatus_ManagerUnreachableFallsBackToMetadata(t *testing.T) {
	env, fake, restore := newTestEnv(t)
	defer restore()
	seedUnit(t, env, testUnit(t, "report", "0 9 * * *", "./report.py"))
	fake.errs["show"] = errors.New("Failed to connect to bus")

	stdout, _ := captureOutput(func() {
		if err := status(newContext(testApp(), []string{"report"}, "status")); err != nil {
			t.Errorf("status: %v", err)
		}
	})
	assertContainsAll(t, stdout, []string{
		"Status:  unknown",
		"Command: ./report.py",
		"WorkDir: /home/user",
	})
}

func TestStatus_UnknownName(t *testing.T) {
	env, _, restore := newTestEnv(t)
	defer restore()
	if err := env.store.Ensure(); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	err := status(newContext(testApp(), []string{"ghost"}, "status"))
	if !errors.Is(err, tablib.ErrUnitNotFound) {
		t.Errorf("expected ErrUnitNotFound, got %v", err)
	}
}

func TestStatus_RequiresName(t *testing.T) {
	_, _, restore := newTestEnv(t)
	defer restore()
	stdout, _ := captureOutput(func() {
		if err := status(newContext(testApp(), nil, "status")); err != nil {
			t.Errorf("status: %v", err)
		}
	})
	assertContains(t, stdout, "no name provided")
}
