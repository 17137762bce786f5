package tablib

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/coreos/go-systemd/v22/unit"
)

// unitDescPrefix tags generated Description= lines so managed units are
// recognizable in status listings.
const unitDescPrefix = "[systemdtab]"

// UnitFiles is the rendered on-disk pair for one unit. Timer is nil for
// persistent services, which attach to the manager without a trigger.
type UnitFiles struct {
	Service []byte
	Timer   []byte
}

type optList []*unit.UnitOption

func (l *optList) add(section, name, value string) {
	*l = append(*l, unit.NewUnitOption(section, name, value))
}

// Generate renders a unit into its on-disk text. The output is
// deterministic for a given unit and global environment path: the
// metadata block leads the service file and option order is fixed, so
// reconciliation can classify changes by comparing raw bytes.
func Generate(u *Unit, globalEnv string) (*UnitFiles, error) {
	if u.Schedule == nil {
		return nil, fmt.Errorf("%s: no schedule", u.Name)
	}
	execStart := u.ExecCommand
	if execStart == "" {
		execStart = u.Command
	}

	var service bytes.Buffer
	service.Write(EncodeMetadata(UnitMetadata(u)))
	service.WriteByte('\n')
	if _, err := io.Copy(&service, unit.Serialize(u.serviceOptions(execStart, globalEnv))); err != nil {
		return nil, err
	}
	files := &UnitFiles{Service: service.Bytes()}

	if u.HasTimer() {
		var timer bytes.Buffer
		if _, err := io.Copy(&timer, unit.Serialize(u.timerOptions())); err != nil {
			return nil, err
		}
		files.Timer = timer.Bytes()
	}
	return files, nil
}

func (u *Unit) serviceOptions(execStart, globalEnv string) []*unit.UnitOption {
	persistent := u.Kind() == KindPersistentService
	var opts optList

	opts.add("Unit", "Description", fmt.Sprintf("%s %s: %s", unitDescPrefix, u.Name, u.descriptionText()))
	if persistent {
		opts.add("Unit", "After", "network-online.target")
		opts.add("Service", "Type", "simple")
	} else {
		opts.add("Service", "Type", "oneshot")
	}
	if u.ExecStartPre != "" {
		opts.add("Service", "ExecStartPre", u.ExecStartPre)
	}
	opts.add("Service", "ExecStart", execStart)
	if u.ExecStopPost != "" {
		opts.add("Service", "ExecStopPost", u.ExecStopPost)
	}
	opts.add("Service", "WorkingDirectory", u.Workdir)
	if persistent {
		opts.add("Service", "Restart", u.restartPolicy())
		opts.add("Service", "RestartSec", "5")
	}
	if globalEnv != "" {
		// The leading dash keeps units starting when the file is gone.
		opts.add("Service", "EnvironmentFile", "-"+globalEnv)
	}
	if u.EnvFile != "" {
		opts.add("Service", "EnvironmentFile", u.EnvFile)
	}
	for _, e := range u.Env {
		opts.add("Service", "Environment", e)
	}
	if u.MemoryMax != "" {
		opts.add("Service", "MemoryMax", u.MemoryMax)
	}
	if u.CPUQuota > 0 {
		opts.add("Service", "CPUQuota", strconv.Itoa(u.CPUQuota)+"%")
	}
	if u.IOWeight > 0 {
		opts.add("Service", "IOWeight", strconv.Itoa(u.IOWeight))
	}
	if u.TimeoutStop != "" {
		opts.add("Service", "TimeoutStopSec", u.TimeoutStop)
	}
	if u.LogLevelMax != "" {
		opts.add("Service", "LogLevelMax", u.LogLevelMax)
	}
	if persistent {
		opts.add("Install", "WantedBy", "default.target")
	}
	return opts
}

func (u *Unit) timerOptions() []*unit.UnitOption {
	var opts optList
	opts.add("Unit", "Description", fmt.Sprintf("%s %s timer", unitDescPrefix, u.Name))
	if u.Kind() == KindReboot {
		opts.add("Timer", "OnBootSec", rebootDelay)
	} else {
		opts.add("Timer", "OnCalendar", u.Schedule.Calendar())
		opts.add("Timer", "Persistent", "true")
	}
	if u.RandomDelay != "" {
		opts.add("Timer", "RandomizedDelaySec", u.RandomDelay)
	}
	opts.add("Install", "WantedBy", "timers.target")
	return opts
}
