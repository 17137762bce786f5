package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli"

	"github.com/kok1eee/systemdtab/cmd/common"
	"github.com/kok1eee/systemdtab/pkg/tablib"
)

var (
	applyPrune  bool
	applyDryRun bool

	applyFlags = []cli.Flag{
		cli.BoolFlag{
			Name:        "prune",
			Usage:       "remove installed units missing from the manifest (default: false)",
			Destination: &applyPrune,
		},
		cli.BoolFlag{
			Name:        "dry-run",
			Usage:       "show the plan without changing anything (default: false)",
			Destination: &applyDryRun,
		},
	}
)

func apply(ctx *cli.Context) error {
	path := ctx.Args().First()
	if path == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	if ctx.NArg() > 1 {
		return common.PrintErrWithCmdHelp(ctx, errors.New("too many arguments"))
	}
	env, err := newEnvironment()
	if err != nil {
		return err
	}
	if path == "" {
		path = env.manifest
	}
	cctx := context.Background()

	m, err := tablib.LoadManifest(env.fs, path)
	if err != nil {
		return err
	}
	desired, err := m.Units()
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
		log.Warn().Str("unit", c.Name).Err(c.Err).Msg("corrupt unit treated as absent")
	}
	plan, err := tablib.BuildPlan(desired, st, applyPrune, env.globalEnv)
	if err != nil {
		return err
	}

	printPlan(plan, st)
	fmt.Println()

	if applyDryRun {
		sum, err := env.rec.Apply(cctx, plan, tablib.ApplyOptions{DryRun: true, Prune: applyPrune})
		if err != nil {
			return err
		}
		fmt.Printf("Dry run: %d to add, %d to update, %d unchanged, %d to remove\n",
			sum.Added, sum.Updated, sum.Unchanged, sum.Removed)
		return nil
	}

	unchanged := 0
	for _, e := range plan.Entries {
		if e.Status == tablib.StatusUnchanged {
			unchanged++
		}
	}
	if unchanged == len(plan.Entries) {
		fmt.Printf("Nothing to do. All %d unit(s) are up to date.\n", unchanged)
		return nil
	}

	sum, err := env.rec.Apply(cctx, plan, tablib.ApplyOptions{Prune: applyPrune})
	if sum != nil {
		for _, f := range sum.Failures {
			common.PrintUnitErr(f.Name, f.Op, f.Err)
		}
	}
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Printf("Applied: %d added, %d updated, %d unchanged, %d removed\n",
		sum.Added, sum.Updated, sum.Unchanged, sum.Removed)
	if len(sum.Failures) > 0 {
		return fmt.Errorf("%d unit(s) failed to apply", len(sum.Failures))
	}
	return nil
}

func printPlan(plan *tablib.Plan, st *tablib.InstalledState) {
	for _, e := range plan.Entries {
		symbol := e.Status.Symbol()
		switch e.Status {
		case tablib.StatusAdded:
			symbol = color.GreenString(symbol)
		case tablib.StatusChanged:
			symbol = color.YellowString(symbol)
		case tablib.StatusRemoved:
			symbol = color.RedString(symbol)
		}
		fmt.Printf("  %s %s (%s)\n", symbol, e.Name, kindLabel(entryUnit(e)))
	}
	if len(plan.Orphans) == 0 {
		return
	}
	fmt.Println()
	fmt.Println("Warning: the following units are not in the file:")
	for _, name := range plan.Orphans {
		label := "timer"
		if iu, ok := st.Units[name]; ok {
			label = kindLabel(iu.Unit)
		}
		fmt.Printf("  %s (%s)\n", name, label)
	}
	fmt.Println("Use --prune to remove them.")
}

func entryUnit(e tablib.DiffEntry) *tablib.Unit {
	if e.After != nil {
		return e.After
	}
	return e.Before
}

func kindLabel(u *tablib.Unit) string {
	if u.Kind() == tablib.KindPersistentService {
		return "service"
	}
	return "timer"
}
