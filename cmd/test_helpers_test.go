package cmd

import (
	"bytes"
	"context"
	"flag"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/urfave/cli"

	"github.com/kok1eee/systemdtab/pkg/systemctl"
	"github.com/kok1eee/systemdtab/pkg/tablib"
)

// captureOutput captures stdout and stderr during function execution.
// It redirects os.Stdout and os.Stderr to pipes, runs the provided
// function, and returns the captured output as strings, so command
// output can be asserted without touching the implementations.
func captureOutput(f func()) (stdout, stderr string) {
	oldStdout := os.Stdout
	oldStderr := os.Stderr

	rOut, wOut, _ := os.Pipe()
	rErr, wErr, _ := os.Pipe()
	os.Stdout = wOut
	os.Stderr = wErr

	f()

	wOut.Close()
	wErr.Close()
	os.Stdout = oldStdout
	os.Stderr = oldStderr

	var bufOut, bufErr bytes.Buffer
	io.Copy(&bufOut, rOut)
	io.Copy(&bufErr, rErr)
	rOut.Close()
	rErr.Close()

	return bufOut.String(), bufErr.String()
}

// assertContains checks if output contains the expected substring.
func assertContains(t *testing.T, output, expected string) {
	t.Helper()
	if !strings.Contains(output, expected) {
		t.Errorf("expected output to contain %q, got:\n%s", expected, output)
	}
}

// assertNotContains checks if output does NOT contain the substring.
func assertNotContains(t *testing.T, output, notExpected string) {
	t.Helper()
	if strings.Contains(output, notExpected) {
		t.Errorf("expected output to NOT contain %q, got:\n%s", notExpected, output)
	}
}

// assertContainsAll checks that output contains all expected substrings.
func assertContainsAll(t *testing.T, output string, expected []string) {
	t.Helper()
	for _, exp := range expected {
		if !strings.Contains(output, exp) {
			t.Errorf("expected output to contain %q, got:\n%s", exp, output)
		}
	}
}

// newContext creates a CLI context for testing commands.
func newContext(app *cli.App, args []string, name string) *cli.Context {
	set := flag.NewFlagSet(name, flag.ContinueOnError)
	_ = set.Parse(args)
	ctx := cli.NewContext(app, set, nil)
	ctx.Command = cli.Command{Name: name}
	return ctx
}

func testApp() *cli.App {
	app := cli.NewApp()
	app.Name = "systemdtab"
	app.HelpName = "systemdtab"
	return app
}

// fakeCtl records every process the systemctl client would spawn and
// serves property values from a fixture map. Show answers come from
// show keyed "unit/Property"; forced failures from errs keyed by verb,
// or by "verb:arg" to fail a single unit.
type fakeCtl struct {
	calls [][]string
	show  map[string]string
	errs  map[string]error
}

func (f *fakeCtl) run(_ context.Context, name string, args ...string) (string, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	if name == "loginctl" {
		return "", f.errs["enable-linger"]
	}
	verb := ""
	if len(args) > 1 {
		verb = args[1]
	}
	if err := f.errs[verb]; err != nil {
		return "", err
	}
	for _, a := range args[1:] {
		if err := f.errs[verb+":"+a]; err != nil {
			return "", err
		}
	}
	switch verb {
	case "show":
		// --user show -p Property --value unit
		return f.show[args[5]+"/"+args[3]], nil
	case "is-active":
		if f.show[args[2]+"/ActiveState"] == "active" {
			return "active", nil
		}
		return "inactive", nil
	}
	return "", nil
}

// called reports whether any recorded invocation carries the word.
func (f *fakeCtl) called(word string) bool {
	for _, call := range f.calls {
		for _, a := range call {
			if a == word {
				return true
			}
		}
	}
	return false
}

// newTestEnv swaps the command environment for one backed by a memory
// filesystem and a recording fake runner. Command resolution is
// pass-through so tests never consult the real PATH. The returned
// restore func puts the real environment constructor back.
func newTestEnv(t *testing.T) (*environment, *fakeCtl, func()) {
	t.Helper()
	fs := afero.NewMemMapFs()
	fake := &fakeCtl{show: make(map[string]string), errs: make(map[string]error)}
	store := tablib.NewStore(fs, "/units")
	ctl := systemctl.NewWithRunner(fake.run)
	rec := tablib.NewReconciler(store, ctl, "/config/env")
	rec.Resolve = func(command, _ string) (string, error) { return command, nil }
	env := &environment{
		fs:        fs,
		store:     store,
		ctl:       ctl,
		rec:       rec,
		unitDir:   "/units",
		configDir: "/config",
		globalEnv: "/config/env",
		manifest:  "/config/systemdtab.toml",
	}
	old := newEnvironment
	newEnvironment = func() (*environment, error) { return env, nil }
	return env, fake, func() { newEnvironment = old }
}

// testUnit builds a minimal valid unit for seeding the store.
func testUnit(t *testing.T, name, expr, command string) *tablib.Unit {
	t.Helper()
	sched, err := tablib.Compile(expr)
	if err != nil {
		t.Fatalf("compile %q: %v", expr, err)
	}
	u := &tablib.Unit{
		Name:        name,
		Schedule:    sched,
		Command:     command,
		ExecCommand: command,
		Workdir:     "/home/user",
	}
	if sched.Kind != tablib.KindPersistentService {
		u.Expr = strings.TrimSpace(expr)
	}
	return u
}

// seedUnit renders a unit and installs it into the test store.
func seedUnit(t *testing.T, env *environment, u *tablib.Unit) {
	t.Helper()
	if err := env.store.Ensure(); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	files, err := tablib.Generate(u, env.globalEnv)
	if err != nil {
		t.Fatalf("generate %s: %v", u.Name, err)
	}
	if err := env.store.WriteUnit(u.Name, files); err != nil {
		t.Fatalf("write %s: %v", u.Name, err)
	}
}
