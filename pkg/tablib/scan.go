package tablib

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/coreos/go-systemd/v22/unit"
	"github.com/spf13/afero"
)

// InstalledUnit is one unit reconstructed from disk. The raw file bytes
// are retained so reconciliation can compare them against freshly
// generated text without a second read.
type InstalledUnit struct {
	Unit       *Unit
	RawService []byte
	RawTimer   []byte // nil when no timer file is installed
}

// InstalledState is the authoritative record of what a scan found in the
// unit directory.
type InstalledState struct {
	Units   map[string]*InstalledUnit
	Corrupt []*CorruptUnitError
}

// Scan reads every managed unit under the store's directory. Files
// without the managed prefix are ignored. A unit that fails to parse is
// isolated as a Corrupt entry rather than aborting the scan; only a
// directory-level read failure is fatal.
func (s *Store) Scan(globalEnv string) (*InstalledState, error) {
	infos, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrDirNotFound, s.dir)
		}
		return nil, err
	}

	st := &InstalledState{Units: make(map[string]*InstalledUnit)}
	timers := make(map[string]bool)
	for _, info := range infos {
		if info.IsDir() {
			continue
		}
		name, isTimer, ok := ManagedName(info.Name())
		if !ok {
			continue
		}
		if isTimer {
			timers[name] = true
			continue
		}
		iu, err := s.readInstalled(name, globalEnv)
		if err != nil {
			st.Corrupt = append(st.Corrupt, &CorruptUnitError{Name: name, Err: err})
			continue
		}
		st.Units[name] = iu
	}

	// A trigger without its service half is leftover state the tool
	// cannot attribute, so it surfaces as corrupt instead of vanishing.
	for name := range timers {
		if _, ok := st.Units[name]; ok {
			continue
		}
		if corruptNamed(st.Corrupt, name) {
			continue
		}
		st.Corrupt = append(st.Corrupt, &CorruptUnitError{
			Name: name,
			Err:  errors.New("timer file without a service file"),
		})
	}
	sort.Slice(st.Corrupt, func(i, j int) bool { return st.Corrupt[i].Name < st.Corrupt[j].Name })
	return st, nil
}

func corruptNamed(list []*CorruptUnitError, name string) bool {
	for _, c := range list {
		if c.Name == name {
			return true
		}
	}
	return false
}

func (s *Store) readInstalled(name, globalEnv string) (*InstalledUnit, error) {
	raw, err := afero.ReadFile(s.fs, s.ServicePath(name))
	if err != nil {
		return nil, err
	}
	u, err := parseUnitText(name, raw, globalEnv)
	if err != nil {
		return nil, err
	}
	iu := &InstalledUnit{Unit: u, RawService: raw}
	timerRaw, err := afero.ReadFile(s.fs, s.TimerPath(name))
	switch {
	case err == nil:
		iu.RawTimer = timerRaw
		if u.RandomDelay == "" {
			u.RandomDelay = timerRandomDelay(timerRaw)
		}
	case !os.IsNotExist(err):
		return nil, err
	}
	return iu, nil
}

// timerRandomDelay pulls RandomizedDelaySec out of a timer body, for
// files whose metadata predates the random_delay pair. Best effort: the
// service half is the unit's identity, so a garbage timer body reads as
// no delay here and classifies as Changed in a plan.
func timerRandomDelay(raw []byte) string {
	opts, err := unit.Deserialize(bytes.NewReader(raw))
	if err != nil {
		return ""
	}
	for _, opt := range opts {
		if opt.Section == "Timer" && opt.Name == "RandomizedDelaySec" {
			return opt.Value
		}
	}
	return ""
}

// parseUnitText rebuilds a Unit from service file text. The metadata
// block is authoritative. ExecStart and WorkingDirectory from the unit
// body fill the resolved command and, for files written by older builds
// with a thinner metadata block, fall in for missing pairs.
func parseUnitText(name string, text []byte, globalEnv string) (*Unit, error) {
	pairs, err := DecodeMetadata(text)
	if err != nil {
		return nil, err
	}
	if len(pairs) == 0 {
		return nil, errors.New("no metadata block")
	}
	u, err := UnitFromMetadata(name, pairs)
	if err != nil {
		return nil, err
	}

	opts, err := unit.Deserialize(bytes.NewReader(text))
	if err != nil {
		return nil, err
	}
	var execStart, workdir, envFile string
	for _, opt := range opts {
		if opt.Section != "Service" {
			continue
		}
		switch opt.Name {
		case "ExecStart":
			execStart = opt.Value
		case "WorkingDirectory":
			workdir = opt.Value
		case "EnvironmentFile":
			if globalEnv == "" || opt.Value != "-"+globalEnv {
				envFile = opt.Value
			}
		}
	}
	if execStart == "" {
		return nil, errors.New("no ExecStart in unit body")
	}
	u.ExecCommand = execStart
	if u.Command == "" {
		u.Command = execStart
	}
	if u.Workdir == "" {
		u.Workdir = workdir
	}
	if u.EnvFile == "" && envFile != "" && u.Kind() == KindPersistentService {
		u.EnvFile = envFile
	}
	return u, nil
}
