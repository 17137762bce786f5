package tablib

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kballard/go-shellquote"
)

// lookPath is swapped out in tests.
var lookPath = exec.LookPath

// ResolveCommand rewrites the first word of a command line to an
// absolute path, which is the form ExecStart requires. Resolution
// consults PATH from the global environment file first, because that is
// the PATH managed units actually run with, and falls back to the
// calling process's PATH. The argument tail is kept verbatim so the
// user's own quoting survives into the unit file.
func ResolveCommand(command, globalEnv string) (string, error) {
	trimmed := strings.TrimSpace(command)
	if trimmed == "" {
		return "", fmt.Errorf("empty command")
	}
	if _, err := shellquote.Split(trimmed); err != nil {
		return "", fmt.Errorf("bad command quoting: %w", err)
	}
	first, tail := trimmed, ""
	if i := strings.IndexAny(trimmed, " \t"); i >= 0 {
		first, tail = trimmed[:i], trimmed[i:]
	}
	if filepath.IsAbs(first) {
		return trimmed, nil
	}
	// Paths anchored to the working directory pass through untouched;
	// they only mean something next to WorkingDirectory= at runtime.
	if strings.HasPrefix(first, "./") || strings.HasPrefix(first, "../") {
		return trimmed, nil
	}
	if strings.Contains(first, "/") {
		return "", fmt.Errorf("command path %q must be absolute", first)
	}
	if path := lookInEnvFile(globalEnv, first); path != "" {
		return path + tail, nil
	}
	path, err := lookPath(first)
	if err != nil {
		return "", fmt.Errorf("cannot resolve %q: %w", first, err)
	}
	return path + tail, nil
}

// lookInEnvFile probes the PATH entries of the global environment file
// for an executable. Returns "" when the file or a match is absent.
func lookInEnvFile(globalEnv, file string) string {
	if globalEnv == "" {
		return ""
	}
	env, err := godotenv.Read(globalEnv)
	if err != nil {
		return ""
	}
	for _, dir := range filepath.SplitList(env["PATH"]) {
		if dir == "" {
			continue
		}
		candidate := filepath.Join(dir, file)
		info, err := os.Stat(candidate)
		if err != nil || info.IsDir() || info.Mode()&0111 == 0 {
			continue
		}
		return candidate
	}
	return ""
}
