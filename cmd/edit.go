package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/coreos/go-systemd/v22/unit"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/urfave/cli"

	"github.com/kok1eee/systemdtab/cmd/common"
	"github.com/kok1eee/systemdtab/pkg/tablib"
)

// runEditor is swapped in tests; the real one hands the terminal to the
// user's editor.
var runEditor = func(editor string, paths ...string) error {
	cmd := exec.Command(editor, paths...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func edit(ctx *cli.Context) error {
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
	exists, err := env.store.Exists(name)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: '%s'", tablib.ErrUnitNotFound, name)
	}
	hasTimer, err := env.store.HasTimerFile(name)
	if err != nil {
		return err
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
	}
	paths := []string{env.store.ServicePath(name)}
	if hasTimer {
		paths = append(paths, env.store.TimerPath(name))
	}
	if err := runEditor(editor, paths...); err != nil {
		return fmt.Errorf("editor %s: %w", editor, err)
	}

	cctx := context.Background()
	if err := env.ctl.DaemonReload(cctx); err != nil {
		return err
	}
	fmt.Println("Reloaded systemd user daemon.")

	if hasTimer {
		checkEditedTimer(env, name)
		return nil
	}
	fmt.Printf("Hint: run `systemdtab restart %s` to apply changes.\n", name)
	return nil
}

// checkEditedTimer re-parses the trigger after a hand edit. A broken
// OnCalendar is the operator's call, so it only warns.
func checkEditedTimer(env *environment, name string) {
	raw, err := afero.ReadFile(env.fs, env.store.TimerPath(name))
	if err != nil {
		log.Warn().Err(err).Str("unit", name).Msg("cannot re-read timer file")
		return
	}
	opts, err := unit.Deserialize(bytes.NewReader(raw))
	if err != nil {
		log.Warn().Err(err).Str("unit", name).Msg("edited timer file does not parse")
		return
	}
	for _, opt := range opts {
		if opt.Section != "Timer" || opt.Name != "OnCalendar" {
			continue
		}
		if _, err := tablib.ParseCalendar(opt.Value); err != nil {
			log.Warn().Err(err).Str("unit", name).
				Msg("edited OnCalendar no longer parses; list and export will degrade")
		}
	}
}
