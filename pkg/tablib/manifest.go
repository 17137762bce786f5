package tablib

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/afero"
)

// TimerEntry is one [timers.<name>] manifest table: a command on a
// calendar or boot schedule. Service-only options deliberately have no
// field here, so the decoder rejects them as unknown keys instead of
// carrying them into a kind they cannot apply to.
type TimerEntry struct {
	Schedule     string   `toml:"schedule"`
	Command      string   `toml:"command"`
	Workdir      string   `toml:"workdir"`
	Description  string   `toml:"description,omitempty"`
	RandomDelay  string   `toml:"random_delay,omitempty"`
	MemoryMax    string   `toml:"memory_max,omitempty"`
	CPUQuota     int      `toml:"cpu_quota,omitempty"`
	IOWeight     int      `toml:"io_weight,omitempty"`
	TimeoutStop  string   `toml:"timeout_stop,omitempty"`
	ExecStartPre string   `toml:"exec_start_pre,omitempty"`
	ExecStopPost string   `toml:"exec_stop_post,omitempty"`
	LogLevelMax  string   `toml:"log_level_max,omitempty"`
	Env          []string `toml:"env,omitempty"`
}

// ServiceEntry is one [services.<name>] manifest table: a persistent
// process supervised with a restart policy.
type ServiceEntry struct {
	Command      string   `toml:"command"`
	Workdir      string   `toml:"workdir"`
	Description  string   `toml:"description,omitempty"`
	Restart      string   `toml:"restart,omitempty"`
	EnvFile      string   `toml:"env_file,omitempty"`
	MemoryMax    string   `toml:"memory_max,omitempty"`
	CPUQuota     int      `toml:"cpu_quota,omitempty"`
	IOWeight     int      `toml:"io_weight,omitempty"`
	TimeoutStop  string   `toml:"timeout_stop,omitempty"`
	ExecStartPre string   `toml:"exec_start_pre,omitempty"`
	ExecStopPost string   `toml:"exec_stop_post,omitempty"`
	LogLevelMax  string   `toml:"log_level_max,omitempty"`
	Env          []string `toml:"env,omitempty"`
}

// Manifest is the declarative description of every managed unit.
type Manifest struct {
	Timers   map[string]TimerEntry   `toml:"timers,omitempty"`
	Services map[string]ServiceEntry `toml:"services,omitempty"`
}

// ParseManifest decodes manifest text. Unknown keys are rejected so a
// typo in an option name cannot silently drop configuration.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	md, err := toml.Decode(string(data), &m)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown manifest key %q", undecoded[0].String())
	}
	return &m, nil
}

// LoadManifest reads and decodes a manifest file.
func LoadManifest(fs afero.Fs, path string) (*Manifest, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, err
	}
	m, err := ParseManifest(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Units validates the manifest and compiles it into desired units keyed
// by name. Duplicate names and kind-incompatible values are load-time
// errors: the manifest must be internally consistent before any plan is
// produced from it.
func (m *Manifest) Units() (map[string]*Unit, error) {
	units := make(map[string]*Unit, len(m.Timers)+len(m.Services))
	for name, e := range m.Timers {
		sched, err := Compile(e.Schedule)
		if err != nil {
			return nil, fmt.Errorf("timers.%s: %w", name, err)
		}
		if sched.Kind == KindPersistentService {
			return nil, fmt.Errorf("timers.%s: @service entries belong under [services]", name)
		}
		u := &Unit{
			Name:         name,
			Expr:         strings.TrimSpace(e.Schedule),
			Schedule:     sched,
			Command:      e.Command,
			Workdir:      e.Workdir,
			Description:  e.Description,
			RandomDelay:  e.RandomDelay,
			MemoryMax:    e.MemoryMax,
			CPUQuota:     e.CPUQuota,
			IOWeight:     e.IOWeight,
			TimeoutStop:  e.TimeoutStop,
			ExecStartPre: e.ExecStartPre,
			ExecStopPost: e.ExecStopPost,
			LogLevelMax:  e.LogLevelMax,
			Env:          e.Env,
		}
		if u.Description == u.Command {
			u.Description = ""
		}
		if err := u.Validate(); err != nil {
			return nil, fmt.Errorf("timers.%s: %w", name, err)
		}
		units[name] = u
	}
	for name, e := range m.Services {
		if _, ok := units[name]; ok {
			return nil, fmt.Errorf("duplicate unit name %q", name)
		}
		u := &Unit{
			Name:         name,
			Expr:         "@service",
			Schedule:     &Schedule{Kind: KindPersistentService},
			Command:      e.Command,
			Workdir:      e.Workdir,
			Description:  e.Description,
			Restart:      e.Restart,
			EnvFile:      e.EnvFile,
			MemoryMax:    e.MemoryMax,
			CPUQuota:     e.CPUQuota,
			IOWeight:     e.IOWeight,
			TimeoutStop:  e.TimeoutStop,
			ExecStartPre: e.ExecStartPre,
			ExecStopPost: e.ExecStopPost,
			LogLevelMax:  e.LogLevelMax,
			Env:          e.Env,
		}
		if u.Description == u.Command {
			u.Description = ""
		}
		if err := u.Validate(); err != nil {
			return nil, fmt.Errorf("services.%s: %w", name, err)
		}
		units[name] = u
	}
	return units, nil
}

// ExportManifest renders units back into manifest text, the inverse of
// Units for every field that survives generation. Values at their
// defaults are omitted and tables come out sorted by name.
func ExportManifest(units map[string]*Unit) ([]byte, error) {
	var m Manifest
	for name, u := range units {
		if u.Kind() == KindPersistentService {
			if m.Services == nil {
				m.Services = make(map[string]ServiceEntry)
			}
			e := ServiceEntry{
				Command:      u.Command,
				Workdir:      u.Workdir,
				Description:  u.Description,
				EnvFile:      u.EnvFile,
				MemoryMax:    u.MemoryMax,
				CPUQuota:     u.CPUQuota,
				IOWeight:     u.IOWeight,
				TimeoutStop:  u.TimeoutStop,
				ExecStartPre: u.ExecStartPre,
				ExecStopPost: u.ExecStopPost,
				LogLevelMax:  u.LogLevelMax,
				Env:          u.Env,
			}
			if u.Restart != "" && u.Restart != RestartAlways {
				e.Restart = u.Restart
			}
			m.Services[name] = e
		} else {
			if m.Timers == nil {
				m.Timers = make(map[string]TimerEntry)
			}
			m.Timers[name] = TimerEntry{
				Schedule:     u.Expr,
				Command:      u.Command,
				Workdir:      u.Workdir,
				Description:  u.Description,
				RandomDelay:  u.RandomDelay,
				MemoryMax:    u.MemoryMax,
				CPUQuota:     u.CPUQuota,
				IOWeight:     u.IOWeight,
				TimeoutStop:  u.TimeoutStop,
				ExecStartPre: u.ExecStartPre,
				ExecStopPost: u.ExecStopPost,
				LogLevelMax:  u.LogLevelMax,
				Env:          u.Env,
			}
		}
	}
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.Indent = ""
	if err := enc.Encode(m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
