package cmd

import (
	"testing"

	"github.com/spf13/afero"
)

func TestInit_CreatesLayout(t *testing.T) {
	env, fake, restore := newTestEnv(t)
	defer restore()
	t.Setenv("USER", "alice")

	stdout, _ := captureOutput(func() {
		if err := initTab(newContext(testApp(), nil, "init")); err != nil {
			t.Errorf("init: %v", err)
		}
	})
	assertContainsAll(t, stdout, []string{
		"Enabling linger for user 'alice'...",
		"Creating directory: /units",
		"Created: /config/env (edit to set PATH etc.)",
		"Reloading systemd user daemon...",
		"systemdtab initialized successfully.",
	})
	data, err := afero.ReadFile(env.fs, env.globalEnv)
	if err != nil {
		t.Fatalf("read env file: %v", err)
	}
	if string(data) != envTemplate {
		t.Errorf("env file content mismatch:\n%s", data)
	}
	if !fake.called("enable-linger") {
		t.Error("expected linger to be enabled")
	}
	if !fake.called("daemon-reload") {
		t.Error("expected a daemon-reload")
	}
}

func TestInit_KeepsExistingEnvFile(t *testing.T) {
	env, _, restore := newTestEnv(t)
	defer restore()
	t.Setenv("USER", "alice")
	if err := env.fs.MkdirAll(env.configDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	custom := "PATH=/custom/bin\n"
	if err := afero.WriteFile(env.fs, env.globalEnv, []byte(custom), 0o644); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	stdout, _ := captureOutput(func() {
		if err := initTab(newContext(testApp(), nil, "init")); err != nil {
			t.Errorf("init: %v", err)
		}
	})
	assertContains(t, stdout, "Exists: /config/env")
	assertNotContains(t, stdout, "Created: /config/env")
	data, _ := afero.ReadFile(env.fs, env.globalEnv)
	if string(data) != custom {
		t.Errorf("existing env file must not be overwritten, got:\n%s", data)
	}
}

func TestInit_RequiresUser(t *testing.T) {
	_, _, restore := newTestEnv(t)
	defer restore()
	t.Setenv("USER", "")

	err := initTab(newContext(testApp(), nil, "init"))
	if err == nil || err.Error() != "could not determine current user ($USER unset)" {
		t.Errorf("expected unset $USER error, got %v", err)
	}
}
