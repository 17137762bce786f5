package cmd

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/urfave/cli"

	"github.com/kok1eee/systemdtab/pkg/tablib"
)

var (
	exportOutput string

	exportFlags = []cli.Flag{
		cli.StringFlag{
			Name:        "output, o",
			Usage:       "write the manifest to `FILE` instead of stdout",
			Destination: &exportOutput,
		},
	}
)

func export(ctx *cli.Context) error {
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
			return fmt.Errorf("%w (run: systemdtab init)", err)
		}
		return err
	}
	for _, c := range st.Corrupt {
		log.Warn().Str("unit", c.Name).Err(c.Err).Msg("skipping corrupt unit")
	}
	units := make(map[string]*tablib.Unit, len(st.Units))
	for name, iu := range st.Units {
		units[name] = iu.Unit
	}
	data, err := tablib.ExportManifest(units)
	if err != nil {
		return err
	}
	if exportOutput != "" {
		if err = afero.WriteFile(env.fs, exportOutput, data, 0o644); err != nil {
			return err
		}
		fmt.Printf("Exported to: %s\n", exportOutput)
		return nil
	}
	fmt.Print(string(data))
	return nil
}
