package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli"

	"github.com/kok1eee/systemdtab/cmd/common"
	"github.com/kok1eee/systemdtab/pkg/tablib"
)

func disable(ctx *cli.Context) error {
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
	// The timer owns activation when present; stopping the service half
	// would only interrupt a run already in flight.
	if hasTimer {
		if err = env.ctl.DisableNow(cctx, tablib.TimerFile(name)); err != nil {
			return err
		}
		fmt.Printf("Disabled timer '%s'. Unit files are preserved.\n", name)
		return nil
	}
	if err = env.ctl.DisableNow(cctx, tablib.ServiceFile(name)); err != nil {
		return err
	}
	fmt.Printf("Disabled service '%s'. Unit files are preserved.\n", name)
	return nil
}
