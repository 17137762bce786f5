package cmd

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/adhocore/gronx"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli"

	"github.com/kok1eee/systemdtab/cmd/common"
	"github.com/kok1eee/systemdtab/pkg/tablib"
)

// timeNow is swapped in tests pinning next-run output.
var timeNow = time.Now

type listEntry struct {
	name     string
	kind     string
	schedule string
	command  string
	status   string
}

func list(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	env, err := newEnvironment()
	if err != nil {
		return err
	}
	st, err := env.store.Scan(env.globalEnv)
	if err != nil {
		if errors.Is(err, tablib.ErrDirNotFound) {
			fmt.Println("No timers or services found.")
			return nil
		}
		common.PrintRuntimeErr(ctx, "list", "scan", err)
		return nil
	}
	for _, c := range st.Corrupt {
		log.Warn().Str("unit", c.Name).Err(c.Err).Msg("skipping corrupt unit")
	}
	if len(st.Units) == 0 {
		fmt.Println("No timers or services found.")
		return nil
	}

	names := make([]string, 0, len(st.Units))
	for name := range st.Units {
		names = append(names, name)
	}
	sort.Strings(names)

	cctx := context.Background()
	entries := make([]listEntry, 0, len(names))
	for _, name := range names {
		u := st.Units[name].Unit
		e := listEntry{name: name, command: u.Command}
		if u.Kind() == tablib.KindPersistentService {
			e.kind = "service"
			e.schedule = "@service"
			state, err := env.ctl.Show(cctx, tablib.ServiceFile(name), "ActiveState")
			if err != nil || state == "" {
				state = "unknown"
			}
			e.status = state
		} else {
			e.kind = "timer"
			e.schedule = u.Expr
			e.status = nextElapse(cctx, env, u)
		}
		entries = append(entries, e)
	}
	fmt.Print(renderListTable(entries))
	return nil
}

// nextElapse asks the manager for the timer's next trigger and falls
// back to computing it from the canonical cron line when the manager
// has no answer (timer disabled, or no systemd in reach).
func nextElapse(cctx context.Context, env *environment, u *tablib.Unit) string {
	next, err := env.ctl.Show(cctx, tablib.TimerFile(u.Name), "NextElapseUSecRealtime")
	if err == nil && next != "" && next != "n/a" {
		return next
	}
	return nextRunFallback(u.Schedule, timeNow())
}

// nextRunFallback evaluates the schedule locally. Boot triggers have no
// computable next run.
func nextRunFallback(sched *tablib.Schedule, now time.Time) string {
	line := sched.CronLine()
	if line == "" {
		return "-"
	}
	next, err := gronx.NextTickAfter(line, now, false)
	if err != nil {
		return "-"
	}
	return next.Format("Mon 2006-01-02 15:04:05 MST")
}

func renderListTable(entries []listEntry) string {
	nameW, schedW, cmdW := len("NAME"), len("SCHEDULE"), len("COMMAND")
	typeW := len("service")
	for _, e := range entries {
		if len(e.name) > nameW {
			nameW = len(e.name)
		}
		if len(e.schedule) > schedW {
			schedW = len(e.schedule)
		}
		if len(e.command) > cmdW {
			cmdW = len(e.command)
		}
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-*s  %-*s  %-*s  %-*s  %s\n",
		nameW, "NAME", typeW, "TYPE", schedW, "SCHEDULE", cmdW, "COMMAND", "STATUS")
	for _, e := range entries {
		fmt.Fprintf(&b, "%-*s  %-*s  %-*s  %-*s  %s\n",
			nameW, e.name, typeW, e.kind, schedW, e.schedule, cmdW, e.command, e.status)
	}
	return b.String()
}
