package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli"

	"github.com/kok1eee/systemdtab/cmd/common"
	"github.com/kok1eee/systemdtab/pkg/tablib"
)

func status(ctx *cli.Context) error {
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
	cctx := context.Background()
	st, err := env.store.Scan(env.globalEnv)
	if err != nil {
		if errors.Is(err, tablib.ErrDirNotFound) {
			return fmt.Errorf("%w: '%s'", tablib.ErrUnitNotFound, name)
		}
		return err
	}
	for _, c := range st.Corrupt {
		if c.Name == name {
			return c
		}
	}
	iu, ok := st.Units[name]
	if !ok {
		return fmt.Errorf("%w: '%s'", tablib.ErrUnitNotFound, name)
	}

	fmt.Printf("Name:    %s\n", name)
	if iu.Unit.Kind() == tablib.KindPersistentService {
		fmt.Println("Type:    service")
		printServiceStatus(cctx, env, name)
	} else {
		fmt.Println("Type:    timer")
		printTimerStatus(cctx, env, name)
	}

	service := tablib.ServiceFile(name)
	if raw, err := env.ctl.Show(cctx, service, "ExecStart"); err == nil && raw != "" {
		fmt.Printf("Command: %s\n", extractExecCommand(raw))
	} else {
		fmt.Printf("Command: %s\n", iu.Unit.Command)
	}
	if workdir, err := env.ctl.Show(cctx, service, "WorkingDirectory"); err == nil && workdir != "" {
		fmt.Printf("WorkDir: %s\n", workdir)
	} else if iu.Unit.Workdir != "" {
		fmt.Printf("WorkDir: %s\n", iu.Unit.Workdir)
	}
	return nil
}

func printServiceStatus(cctx context.Context, env *environment, name string) {
	service := tablib.ServiceFile(name)
	active, err := env.ctl.Show(cctx, service, "ActiveState")
	if err != nil || active == "" {
		active = "unknown"
	}
	sub, err := env.ctl.Show(cctx, service, "SubState")
	if err != nil || sub == "" {
		sub = "unknown"
	}
	fmt.Printf("Status:  %s (%s)\n", active, sub)

	if pid, err := env.ctl.Show(cctx, service, "MainPID"); err == nil && active == "active" && pid != "0" {
		fmt.Printf("PID:     %s\n", pid)
	}
	if memory, err := env.ctl.Show(cctx, service, "MemoryCurrent"); err == nil &&
		memory != "[not set]" && memory != "infinity" {
		if bytes, perr := strconv.ParseUint(memory, 10, 64); perr == nil {
			fmt.Printf("Memory:  %s\n", humanize.IBytes(bytes))
		}
	}
}

func printTimerStatus(cctx context.Context, env *environment, name string) {
	timer := tablib.TimerFile(name)
	service := tablib.ServiceFile(name)

	active, err := env.ctl.Show(cctx, timer, "ActiveState")
	if err != nil || active == "" {
		active = "unknown"
	}
	fmt.Printf("Status:  %s\n", active)

	if next, err := env.ctl.Show(cctx, timer, "NextElapseUSecRealtime"); err == nil &&
		next != "" && next != "n/a" {
		fmt.Printf("Next:    %s\n", next)
	}
	if last, err := env.ctl.Show(cctx, service, "ExecMainStartTimestamp"); err == nil &&
		last != "" && last != "n/a" {
		fmt.Printf("Last:    %s\n", last)
	}
	if result, err := env.ctl.Show(cctx, service, "Result"); err == nil && result != "" {
		fmt.Printf("Result:  %s\n", result)
	}
}

// extractExecCommand pulls the argv out of systemctl's ExecStart
// rendering, which looks like
// { path=/usr/bin/foo ; argv[]=/usr/bin/foo arg1 ; ignore_errors=no ; ... }.
func extractExecCommand(raw string) string {
	_, rest, ok := strings.Cut(raw, "argv[]=")
	if !ok {
		return raw
	}
	if argv, _, found := strings.Cut(rest, ";"); found {
		return strings.TrimSpace(argv)
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(rest), "}"))
}
