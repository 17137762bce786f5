package systemctl

import (
	"os"
	"os/exec"
	"strconv"

	"golang.org/x/sys/unix"
)

// TailOptions shape one journalctl invocation.
type TailOptions struct {
	Follow   bool
	Lines    int
	Priority string // journalctl priority name or number, empty for all
}

// TailArgs builds the journalctl argument list for tailing one unit's
// log output.
func TailArgs(unit string, opts TailOptions) []string {
	args := []string{"--user-unit", unit, "-n", strconv.Itoa(opts.Lines), "--no-pager"}
	if opts.Follow {
		args = append(args, "-f")
	}
	if opts.Priority != "" {
		args = append(args, "-p", opts.Priority)
	}
	return args
}

// execProcess is swapped out in tests; unix.Exec never returns on
// success.
var execProcess = unix.Exec

// Tail replaces the current process with journalctl, so follow mode,
// signals and terminal handling behave exactly as if the user had run
// it directly. Returns only on failure to exec.
func Tail(unit string, opts TailOptions) error {
	path, err := exec.LookPath("journalctl")
	if err != nil {
		return err
	}
	argv := append([]string{path}, TailArgs(unit, opts)...)
	return execProcess(path, argv, os.Environ())
}
