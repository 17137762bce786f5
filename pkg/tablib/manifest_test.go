package tablib

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
)

const sampleManifest = `[timers.report]
schedule = "0 9 * * *"
command = "uv run ./report.py"
workdir = "/home/user/project"
description = "daily report"
random_delay = "5m"
memory_max = "512M"
env = ["A=1", "B=two words"]

[services.agent]
command = "agent --serve"
workdir = "/opt/agent"
restart = "on-failure"
env_file = "/opt/agent/.env"
cpu_quota = 80
`

func TestParseManifest_Units(t *testing.T) {
	m, err := ParseManifest([]byte(sampleManifest))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	units, err := m.Units()
	if err != nil {
		t.Fatalf("units failed: %v", err)
	}
	if len(units) != 2 {
		t.Fatalf("expected 2 units, got %d", len(units))
	}

	wantReport := &Unit{
		Name:        "report",
		Expr:        "0 9 * * *",
		Schedule:    mustCompile(t, "0 9 * * *"),
		Command:     "uv run ./report.py",
		Workdir:     "/home/user/project",
		Description: "daily report",
		RandomDelay: "5m",
		MemoryMax:   "512M",
		Env:         []string{"A=1", "B=two words"},
	}
	if diff := cmp.Diff(wantReport, units["report"]); diff != "" {
		t.Errorf("report mismatch (-want +got):\n%s", diff)
	}

	wantAgent := &Unit{
		Name:     "agent",
		Expr:     "@service",
		Schedule: &Schedule{Kind: KindPersistentService},
		Command:  "agent --serve",
		Workdir:  "/opt/agent",
		Restart:  RestartOnFailure,
		EnvFile:  "/opt/agent/.env",
		CPUQuota: 80,
	}
	if diff := cmp.Diff(wantAgent, units["agent"]); diff != "" {
		t.Errorf("agent mismatch (-want +got):\n%s", diff)
	}
}

func TestParseManifest_RejectsUnknownKeys(t *testing.T) {
	docs := map[string]string{
		"top level": `prune = true
[timers.a]
schedule = "@daily"
command = "a"
workdir = "/"
`,
		"typo": `[timers.a]
schedule = "@daily"
command = "a"
workdir = "/"
descripton = "oops"
`,
		"restart on timer": `[timers.a]
schedule = "@daily"
command = "a"
workdir = "/"
restart = "always"
`,
		"env_file on timer": `[timers.a]
schedule = "@daily"
command = "a"
workdir = "/"
env_file = "/e"
`,
		"schedule on service": `[services.a]
command = "a"
workdir = "/"
schedule = "@daily"
`,
		"random_delay on service": `[services.a]
command = "a"
workdir = "/"
random_delay = "5m"
`,
	}
	for name, doc := range docs {
		_, err := ParseManifest([]byte(doc))
		if err == nil {
			t.Errorf("%s: expected error", name)
			continue
		}
		assertContains(t, err.Error(), "unknown manifest key")
	}
}

func TestParseManifest_RejectsMalformedValues(t *testing.T) {
	for name, doc := range map[string]string{
		"wrong type": `[timers.a]
schedule = 5
command = "a"
workdir = "/"
`,
		"broken syntax": `[timers.a
`,
	} {
		if _, err := ParseManifest([]byte(doc)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestManifestUnits_Errors(t *testing.T) {
	docs := map[string]struct {
		doc    string
		detail string
	}{
		"bad schedule": {`[timers.broken]
schedule = "often"
command = "b"
workdir = "/"
`, "timers.broken"},
		"service schedule under timers": {`[timers.svc]
schedule = "@service"
command = "b"
workdir = "/"
`, "[services]"},
		"duplicate name": {`[timers.same]
schedule = "@daily"
command = "b"
workdir = "/"

[services.same]
command = "b"
workdir = "/"
`, "duplicate unit name"},
		"relative workdir": {`[timers.rel]
schedule = "@daily"
command = "b"
workdir = "here"
`, "not absolute"},
		"bad restart": {`[services.svc]
command = "b"
workdir = "/"
restart = "sometimes"
`, "restart policy"},
	}
	for name, tt := range docs {
		m, err := ParseManifest([]byte(tt.doc))
		if err != nil {
			t.Fatalf("%s: parse failed: %v", name, err)
		}
		_, err = m.Units()
		if err == nil {
			t.Errorf("%s: expected error", name)
			continue
		}
		assertContains(t, err.Error(), tt.detail)
	}
}

func TestManifestUnits_DescriptionMatchingCommandDropped(t *testing.T) {
	doc := `[timers.echo]
schedule = "@daily"
command = "echo hi"
workdir = "/"
description = "echo hi"
`
	m, err := ParseManifest([]byte(doc))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	units, err := m.Units()
	if err != nil {
		t.Fatalf("units failed: %v", err)
	}
	if units["echo"].Description != "" {
		t.Errorf("description %q should collapse to empty when equal to the command", units["echo"].Description)
	}
}

func TestExportManifest_RoundTrip(t *testing.T) {
	m, err := ParseManifest([]byte(sampleManifest))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	units, err := m.Units()
	if err != nil {
		t.Fatalf("units failed: %v", err)
	}

	out, err := ExportManifest(units)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	text := string(out)
	assertContains(t, text, "[timers.report]")
	assertContains(t, text, `schedule = "0 9 * * *"`)
	assertContains(t, text, "[services.agent]")
	assertContains(t, text, `restart = "on-failure"`)

	back, err := ParseManifest(out)
	if err != nil {
		t.Fatalf("exported text does not parse: %v", err)
	}
	again, err := back.Units()
	if err != nil {
		t.Fatalf("exported units failed: %v", err)
	}
	if diff := cmp.Diff(units, again); diff != "" {
		t.Errorf("round trip drifted (-want +got):\n%s", diff)
	}
}

func TestExportManifest_OmitsDefaultRestart(t *testing.T) {
	svc := serviceUnit("agent")
	svc.Restart = RestartAlways
	out, err := ExportManifest(map[string]*Unit{"agent": svc})
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if strings.Contains(string(out), "restart") {
		t.Errorf("default restart policy leaked into export:\n%s", out)
	}
}

func TestExportManifest_Deterministic(t *testing.T) {
	units := map[string]*Unit{
		"b-job": timerUnit(t, "b-job", "@daily"),
		"a-job": timerUnit(t, "a-job", "@hourly"),
		"agent": serviceUnit("agent"),
	}
	first, err := ExportManifest(units)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if bytes.Index(first, []byte("[timers.a-job]")) > bytes.Index(first, []byte("[timers.b-job]")) {
		t.Error("timer tables not sorted by name")
	}
	for i := 0; i < 10; i++ {
		again, err := ExportManifest(units)
		if err != nil {
			t.Fatalf("export failed: %v", err)
		}
		if !bytes.Equal(first, again) {
			t.Fatal("export output changed between runs")
		}
	}
}

func TestLoadManifest(t *testing.T) {
	fs := afero.NewMemMapFs()
	path := "/home/user/.config/systemdtab/systemdtab.toml"
	if err := afero.WriteFile(fs, path, []byte(sampleManifest), 0o644); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	m, err := LoadManifest(fs, path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(m.Timers) != 1 || len(m.Services) != 1 {
		t.Errorf("loaded %d timers and %d services, want 1 and 1", len(m.Timers), len(m.Services))
	}

	if _, err := LoadManifest(fs, "/missing.toml"); err == nil {
		t.Error("expected error for missing manifest")
	}

	if err := afero.WriteFile(fs, "/bad.toml", []byte("[broken"), 0o644); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	if _, err := LoadManifest(fs, "/bad.toml"); err == nil {
		t.Error("expected error for malformed manifest")
	}
}
