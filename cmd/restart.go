package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli"

	"github.com/kok1eee/systemdtab/cmd/common"
	"github.com/kok1eee/systemdtab/pkg/tablib"
)

func restart(ctx *cli.Context) error {
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
	if !hasService {
		return fmt.Errorf("%w: '%s'", tablib.ErrUnitNotFound, name)
	}
	hasTimer, err := env.store.HasTimerFile(name)
	if err != nil {
		return err
	}
	if hasTimer {
		return fmt.Errorf("%w: '%s' is a timer, it runs on its own schedule", tablib.ErrNotAService, name)
	}
	if err = env.ctl.Restart(cctx, tablib.ServiceFile(name)); err != nil {
		return err
	}
	fmt.Printf("Restarted service '%s'.\n", name)
	return nil
}
