package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli"

	"github.com/kok1eee/systemdtab/cmd/common"
	"github.com/kok1eee/systemdtab/pkg/tablib"
)

func remove(ctx *cli.Context) error {
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

	var removed []string
	if hasService {
		removed = append(removed, env.store.ServicePath(name))
	}
	if hasTimer {
		removed = append(removed, env.store.TimerPath(name))
	}

	cctx := context.Background()
	if hasService {
		err = env.rec.RemoveByName(cctx, name)
	} else {
		// Leftover trigger without its service half: stop it and clear
		// the file so the name is usable again.
		env.ctl.DisableNow(cctx, tablib.TimerFile(name))
		if err = env.store.RemoveUnit(name); err == nil {
			err = env.ctl.DaemonReload(cctx)
		}
	}
	if err != nil {
		return err
	}

	for _, path := range removed {
		fmt.Printf("Removed: %s\n", path)
	}
	fmt.Printf("'%s' has been removed.\n", name)
	return nil
}
