package tablib

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/kballard/go-shellquote"
)

// Restart policies accepted for persistent services. The strings follow
// the service manager's own Restart= vocabulary.
const (
	RestartAlways    = "always"
	RestartOnFailure = "on-failure"
	RestartNever     = "no"
)

// Unit is one managed entry: a command on a calendar or boot trigger, or
// a persistent service supervised with a restart policy.
type Unit struct {
	Name        string
	Expr        string // schedule expression as the user wrote it
	Schedule    *Schedule
	Command     string // command line as the user wrote it
	ExecCommand string // resolved command line written to ExecStart
	Workdir     string
	Description string

	// Service-only fields.
	Restart string
	EnvFile string

	// Timer-only field.
	RandomDelay string

	// Resource limits and hooks, zero when unset. Absent lines leave
	// the manager's own defaults in force.
	MemoryMax    string
	CPUQuota     int // percent
	IOWeight     int // 1 to 10000
	TimeoutStop  string
	ExecStartPre string
	ExecStopPost string
	LogLevelMax  string
	Env          []string // KEY=VALUE pairs

	// Extra carries unrecognized metadata pairs through a
	// scan/generate round trip.
	Extra []MetaPair
}

func (u *Unit) Kind() ScheduleKind {
	if u.Schedule == nil {
		return KindCalendar
	}
	return u.Schedule.Kind
}

// HasTimer reports whether the unit gets a trigger file. Persistent
// services attach directly to the manager and run without one.
func (u *Unit) HasTimer() bool {
	return u.Kind() != KindPersistentService
}

func (u *Unit) restartPolicy() string {
	if u.Restart == "" {
		return RestartAlways
	}
	return u.Restart
}

// descriptionText is what lands in the Description= line: the explicit
// description when one was given, the command line otherwise.
func (u *Unit) descriptionText() string {
	if u.Description != "" {
		return u.Description
	}
	return u.Command
}

// Validate checks the unit for problems generation cannot express:
// a bad name, missing or unquotable command, relative working
// directory, out-of-range limits, and options that do not belong to
// the unit's kind.
func (u *Unit) Validate() error {
	if err := ValidateName(u.Name); err != nil {
		return err
	}
	if u.Schedule == nil {
		return fmt.Errorf("%s: no schedule", u.Name)
	}
	if u.Command == "" {
		return fmt.Errorf("%s: no command", u.Name)
	}
	if _, err := shellquote.Split(u.Command); err != nil {
		return fmt.Errorf("%s: bad command quoting: %w", u.Name, err)
	}
	if u.Workdir == "" {
		return fmt.Errorf("%s: no working directory", u.Name)
	}
	if !filepath.IsAbs(u.Workdir) {
		return fmt.Errorf("%s: working directory %q is not absolute", u.Name, u.Workdir)
	}

	if u.Kind() == KindPersistentService {
		switch u.Restart {
		case "", RestartAlways, RestartOnFailure, RestartNever:
		default:
			return fmt.Errorf("%s: bad restart policy %q", u.Name, u.Restart)
		}
		if u.RandomDelay != "" {
			return fmt.Errorf("%s: random_delay is only valid on scheduled units", u.Name)
		}
	} else {
		if u.Restart != "" {
			return fmt.Errorf("%s: restart is only valid on persistent services", u.Name)
		}
		if u.EnvFile != "" {
			return fmt.Errorf("%s: env_file is only valid on persistent services", u.Name)
		}
	}

	if u.MemoryMax != "" {
		if _, err := humanize.ParseBytes(u.MemoryMax); err != nil {
			return fmt.Errorf("%s: bad memory_max %q: %w", u.Name, u.MemoryMax, err)
		}
	}
	if u.CPUQuota < 0 {
		return fmt.Errorf("%s: bad cpu_quota %d", u.Name, u.CPUQuota)
	}
	if u.IOWeight != 0 && (u.IOWeight < 1 || u.IOWeight > 10000) {
		return fmt.Errorf("%s: io_weight %d out of range 1-10000", u.Name, u.IOWeight)
	}
	for _, e := range u.Env {
		key, _, ok := strings.Cut(e, "=")
		if !ok || key == "" {
			return fmt.Errorf("%s: env entry %q is not KEY=VALUE", u.Name, e)
		}
	}
	return nil
}
