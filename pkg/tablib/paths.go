package tablib

import (
	"os"
	"path/filepath"
	"strings"
)

// UnitPrefix is the fixed prefix of every unit file systemdtab manages.
// Scanning only ever looks at files carrying it, so foreign units in the
// same directory are never touched.
const UnitPrefix = "systemdtab-"

const (
	serviceSuffix = ".service"
	timerSuffix   = ".timer"
)

// ServiceFile returns the service unit name for a managed name. The same
// string doubles as the file name inside the unit directory.
func ServiceFile(name string) string { return UnitPrefix + name + serviceSuffix }

// TimerFile returns the timer unit name for a managed name.
func TimerFile(name string) string { return UnitPrefix + name + timerSuffix }

// ManagedName extracts the managed name from a unit file name. ok is
// false for files systemdtab does not own.
func ManagedName(file string) (name string, timer, ok bool) {
	rest, ok := strings.CutPrefix(file, UnitPrefix)
	if !ok {
		return "", false, false
	}
	if name, ok := strings.CutSuffix(rest, serviceSuffix); ok && name != "" {
		return name, false, true
	}
	if name, ok := strings.CutSuffix(rest, timerSuffix); ok && name != "" {
		return name, true, true
	}
	return "", false, false
}

// UnitDir is the per-user unit directory systemdtab manages.
func UnitDir() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "systemd", "user"), nil
}

// ConfigDir holds systemdtab's own files: the global environment file
// and the default manifest.
func ConfigDir() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "systemdtab"), nil
}

// GlobalEnvPath is the environment file injected into every generated
// service, so PATH tweaks apply to all managed units at once.
func GlobalEnvPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "env"), nil
}

// ManifestPath is the default declarative manifest location.
func ManifestPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "systemdtab.toml"), nil
}
