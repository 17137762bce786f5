package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli"

	"github.com/kok1eee/systemdtab/cmd/common"
	"github.com/kok1eee/systemdtab/pkg/tablib"
)

func enable(ctx *cli.Context) error {
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
	kind, owner := "service", tablib.ServiceFile(name)
	if hasTimer {
		kind, owner = "timer", tablib.TimerFile(name)
	}
	if err = env.ctl.EnableNow(cctx, owner); err != nil {
		return err
	}
	state := "inactive"
	if active, err := env.ctl.IsActive(cctx, owner); err == nil && active {
		state = "active"
	}
	fmt.Printf("Enabled %s '%s' (%s).\n", kind, name, state)
	return nil
}
