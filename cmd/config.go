package cmd

const DEF_LOG_LINES = 50

const DESCRIPTION = `
Systemdtab manages scheduled jobs and small daemons as systemd user
units. It compiles crontab expressions into calendar triggers, writes
tagged service and timer files under ~/.config/systemd/user, and keeps
them in sync with a declarative TOML file when you want one.
`

const (
	InitDescription = `The init command prepares the machine for systemdtab: it
enables lingering for the current user so units run without
an open session, creates the unit and config directories and
writes the global environment file template.

Example:
        systemdtab init

`
	AddDescription = `The add command installs one scheduled command or persistent
service. The schedule is a five-field crontab expression, an
alias such as @daily, @hourly, @monday or @1st (optionally
with a time suffix like @daily/9:30), @reboot, or @service
for a daemon kept alive with a restart policy.

Both the schedule and the command must be quoted.

Example:
        systemdtab add "0 9 * * *" "uv run ./report.py"
        systemdtab add "@daily/7" "./backup.sh" --name backup
        systemdtab add "@service" "node dist/index.js" --restart on-failure

`
	ListDescription = `The list command prints a table of every managed unit with
its type, schedule, command and current status. Timers show
their next elapse time, services their active state.

Example:
        systemdtab list

`
	RemoveDescription = `The remove command stops a unit, deletes its files from the
unit directory and reloads the user daemon.

Example:
        systemdtab remove backup

`
	EditDescription = `The edit command opens the unit files in $EDITOR (vi when
unset) and reloads the user daemon afterwards. Timer edits
are re-checked; a broken OnCalendar produces a warning.

Example:
        systemdtab edit backup

`
	LogsDescription = `The logs command shows journal output for a unit by handing
the process over to journalctl.

Example:
        systemdtab logs backup
        systemdtab logs web -f -p warning

`
	RestartDescription = `The restart command restarts a persistent service. Timers
are rejected; remove and re-add them instead.

Example:
        systemdtab restart web

`
	StatusDescription = `The status command prints detailed state for one unit: type,
active and sub state, PID and memory for services, next and
last run for timers, and the command line in force.

Example:
        systemdtab status web

`
	EnableDescription = `The enable command enables and starts a unit that was
disabled, using the timer when one exists and the service
otherwise.

Example:
        systemdtab enable backup

`
	DisableDescription = `The disable command stops a unit and disables it without
removing any files, so it can be enabled again later.

Example:
        systemdtab disable backup

`
	ExportDescription = `The export command renders every installed unit back into
manifest TOML, to stdout or to a file.

Example:
        systemdtab export
        systemdtab export -o systemdtab.toml

`
	ApplyDescription = `The apply command reconciles installed units against a TOML
manifest: it prints a diff (+ added, ~ changed, = unchanged,
- removed), then installs what differs. Units on disk that
are missing from the file are only removed under --prune.
With no file argument the default manifest is used.

Example:
        systemdtab apply systemdtab.toml
        systemdtab apply systemdtab.toml --dry-run
        systemdtab apply systemdtab.toml --prune

`
)
