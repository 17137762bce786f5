package cmd

import (
	"errors"
	"fmt"

	"github.com/urfave/cli"

	"github.com/kok1eee/systemdtab/cmd/common"
	"github.com/kok1eee/systemdtab/pkg/systemctl"
	"github.com/kok1eee/systemdtab/pkg/tablib"
)

var (
	followLogs  bool
	logLines    int
	logPriority string

	logsFlags = []cli.Flag{
		cli.BoolFlag{
			Name:        "follow, f",
			Usage:       "follow log output (default: false)",
			Destination: &followLogs,
		},
		cli.IntFlag{
			Name:        "lines, n",
			Usage:       "number of log lines to show",
			Value:       DEF_LOG_LINES,
			Destination: &logLines,
		},
		cli.StringFlag{
			Name:        "priority, p",
			Usage:       "filter by priority (emerg..debug)",
			Destination: &logPriority,
		},
	}
)

func logs(ctx *cli.Context) error {
	name := ctx.Args().First()
	if name == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	if name == "" {
		return common.PrintErrWithCmdHelp(ctx, errors.New("no name provided"))
	}
	env, err := newEnvironment()
	if err != nil {
		return err
	}
	hasService, err := env.store.Exists(name)
	if err != nil {
		return err
	}
	hasTimer, err := env.store.HasTimerFile(name)
	if err != nil {
		return err
	}
	if !hasService && !hasTimer {
		return fmt.Errorf("%w: '%s'", tablib.ErrUnitNotFound, name)
	}
	// Journal entries land on the service half even for timer runs.
	return systemctl.Tail(tablib.ServiceFile(name), systemctl.TailOptions{
		Follow:   followLogs,
		Lines:    logLines,
		Priority: logPriority,
	})
}
