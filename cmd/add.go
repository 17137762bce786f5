package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/adhocore/gronx"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/urfave/cli"

	"github.com/kok1eee/systemdtab/cmd/common"
	"github.com/kok1eee/systemdtab/pkg/tablib"
)

var (
	addName        string
	addWorkdir     string
	addDescription string
	addEnvFile     string
	addRestart     string
	addMemoryMax   string
	addCPUQuota    int
	addIOWeight    int
	addTimeoutStop string
	addStartPre    string
	addStopPost    string
	addLogLevel    string
	addRandomDelay string

	addFlags = []cli.Flag{
		cli.StringFlag{
			Name:        "name, n",
			Usage:       "unit name (default: derived from the command)",
			Destination: &addName,
		},
		cli.StringFlag{
			Name:        "workdir, w",
			Usage:       "working directory (default: current directory)",
			Destination: &addWorkdir,
		},
		cli.StringFlag{
			Name:        "description, d",
			Usage:       "unit description (default: the command)",
			Destination: &addDescription,
		},
		cli.StringFlag{
			Name:        "env-file, e",
			Usage:       "environment file for a @service unit",
			Destination: &addEnvFile,
		},
		cli.StringFlag{
			Name:        "restart, r",
			Usage:       "restart policy for a @service unit: always, on-failure, no",
			Destination: &addRestart,
		},
		cli.StringFlag{
			Name:        "memory-max",
			Usage:       "memory ceiling, e.g. 512M",
			Destination: &addMemoryMax,
		},
		cli.IntFlag{
			Name:        "cpu-quota",
			Usage:       "CPU quota in percent",
			Destination: &addCPUQuota,
		},
		cli.IntFlag{
			Name:        "io-weight",
			Usage:       "IO scheduling weight, 1-10000",
			Destination: &addIOWeight,
		},
		cli.StringFlag{
			Name:        "timeout-stop",
			Usage:       "stop timeout, e.g. 30s",
			Destination: &addTimeoutStop,
		},
		cli.StringFlag{
			Name:        "exec-start-pre",
			Usage:       "command to run before the unit starts",
			Destination: &addStartPre,
		},
		cli.StringFlag{
			Name:        "exec-stop-post",
			Usage:       "command to run after the unit stops",
			Destination: &addStopPost,
		},
		cli.StringFlag{
			Name:        "log-level-max",
			Usage:       "highest journal level kept, e.g. warning",
			Destination: &addLogLevel,
		},
		cli.StringFlag{
			Name:        "random-delay",
			Usage:       "random trigger delay for a timer, e.g. 5m",
			Destination: &addRandomDelay,
		},
		cli.StringSliceFlag{
			Name:  "env",
			Usage: "KEY=VALUE environment entry (repeatable)",
		},
	}
)

func add(ctx *cli.Context) error {
	schedule := ctx.Args().First()
	if schedule == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	command := ctx.Args().Get(1)
	if schedule == "" || command == "" {
		return common.PrintErrWithCmdHelp(ctx, errors.New("add needs a schedule and a command, both quoted"))
	}
	if len(ctx.Args()) > 2 {
		return common.PrintErrWithCmdHelp(ctx, errors.New("too many arguments (quote the command)"))
	}

	env, err := newEnvironment()
	if err != nil {
		return err
	}
	sched, err := tablib.Compile(schedule)
	if err != nil {
		return err
	}
	expr := strings.TrimSpace(schedule)
	// Second opinion on plain cron lines from the evaluator that later
	// computes next-run times for list.
	if sched.Kind == tablib.KindCalendar && !strings.HasPrefix(expr, "@") && !gronx.IsValid(expr) {
		log.Warn().Str("schedule", expr).Msg("next-run evaluator rejects this expression; list will not show a next run")
	}

	name := addName
	if name == "" {
		name = tablib.DeriveName(command)
	}
	workdir := addWorkdir
	if workdir == "" {
		if workdir, err = os.Getwd(); err != nil {
			return fmt.Errorf("cannot determine working directory: %w", err)
		}
	}

	u := &tablib.Unit{
		Name:         name,
		Expr:         expr,
		Schedule:     sched,
		Command:      command,
		Workdir:      workdir,
		Description:  addDescription,
		Restart:      addRestart,
		EnvFile:      addEnvFile,
		RandomDelay:  addRandomDelay,
		MemoryMax:    addMemoryMax,
		CPUQuota:     addCPUQuota,
		IOWeight:     addIOWeight,
		TimeoutStop:  addTimeoutStop,
		ExecStartPre: addStartPre,
		ExecStopPost: addStopPost,
		LogLevelMax:  addLogLevel,
		Env:          ctx.StringSlice("env"),
	}
	if u.EnvFile != "" && sched.Kind == tablib.KindPersistentService {
		ok, err := afero.Exists(env.fs, u.EnvFile)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("environment file not found: %s", u.EnvFile)
		}
	}

	cctx := context.Background()
	if err := env.rec.AddUnit(cctx, u, false); err != nil {
		if errors.Is(err, tablib.ErrUnitExists) {
			return fmt.Errorf("'%s' already exists, remove it first with: systemdtab remove %s", name, name)
		}
		return err
	}

	fmt.Printf("Created: %s\n", env.store.ServicePath(name))
	if u.HasTimer() {
		fmt.Printf("Created: %s\n", env.store.TimerPath(name))
		fmt.Printf("Timer '%s' is now active.\n", name)
		fmt.Printf("  Schedule: %s\n", u.Expr)
		fmt.Printf("  Command:  %s\n", command)
		return nil
	}
	restart := u.Restart
	if restart == "" {
		restart = tablib.RestartAlways
	}
	fmt.Printf("Service '%s' is now active.\n", name)
	fmt.Printf("  Command: %s\n", command)
	fmt.Printf("  Restart: %s\n", restart)
	if u.EnvFile != "" {
		fmt.Printf("  EnvFile: %s\n", u.EnvFile)
	}
	return nil
}
