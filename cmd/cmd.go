package cmd

import (
	"fmt"
	"os"
	"runtime"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli"

	"github.com/kok1eee/systemdtab/cmd/common"
)

// BuildArgs carries the -ldflags -X values from main to the CLI.
type BuildArgs struct {
	Version   string
	BuildType string
	Date      string
	Commit    string
}

var verbose bool

func Execute(args []string, bArgs BuildArgs) error {
	app := cli.App{
		Name:                  "systemdtab",
		HelpName:              "systemdtab",
		Usage:                 "systemd timer management made simple.",
		Version:               fmt.Sprintf("%s-%s", bArgs.Version, bArgs.BuildType),
		UsageText:             "systemdtab <command> [arguments...]",
		Description:           DESCRIPTION,
		CustomAppHelpTemplate: HELP_TEMPL,
		OnUsageError:          common.UsageErrorCallback,
		Flags: []cli.Flag{
			cli.BoolFlag{
				Name:        "verbose, v",
				Usage:       "enable debug logging (default: false)",
				Destination: &verbose,
			},
		},
		Before: func(ctx *cli.Context) error {
			level := zerolog.WarnLevel
			if verbose {
				level = zerolog.DebugLevel
			}
			zerolog.SetGlobalLevel(level)
			log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
			return nil
		},
		Commands: []cli.Command{
			{
				Name:               "init",
				Usage:              "prepare linger, directories and the env file",
				Action:             initTab,
				OnUsageError:       common.UsageErrorCallback,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Description:        InitDescription,
				UsageText:          " ",
			},
			{
				Name:                   "add",
				Aliases:                []string{"a"},
				Usage:                  "install a timer or persistent service",
				Action:                 add,
				OnUsageError:           common.UsageErrorCallback,
				CustomHelpTemplate:     CMD_HELP_TEMPL,
				Description:            AddDescription,
				UsageText:              `add "<schedule>" "<command>"`,
				UseShortOptionHandling: true,
				Flags:                  addFlags,
			},
			{
				Name:               "list",
				Aliases:            []string{"l"},
				Usage:              "display managed timers and services",
				Action:             list,
				OnUsageError:       common.UsageErrorCallback,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Description:        ListDescription,
				UsageText:          " ",
			},
			{
				Name:               "remove",
				Aliases:            []string{"rm"},
				Usage:              "stop a unit and delete its files",
				Action:             remove,
				OnUsageError:       common.UsageErrorCallback,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Description:        RemoveDescription,
				UsageText:          "remove <name>",
			},
			{
				Name:               "edit",
				Usage:              "open unit files in $EDITOR",
				Action:             edit,
				OnUsageError:       common.UsageErrorCallback,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Description:        EditDescription,
				UsageText:          "edit <name>",
			},
			{
				Name:                   "logs",
				Usage:                  "show journal output for a unit",
				Action:                 logs,
				OnUsageError:           common.UsageErrorCallback,
				CustomHelpTemplate:     CMD_HELP_TEMPL,
				Description:            LogsDescription,
				UsageText:              "logs <name>",
				UseShortOptionHandling: true,
				Flags:                  logsFlags,
			},
			{
				Name:               "restart",
				Usage:              "restart a persistent service",
				Action:             restart,
				OnUsageError:       common.UsageErrorCallback,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Description:        RestartDescription,
				UsageText:          "restart <name>",
			},
			{
				Name:               "status",
				Aliases:            []string{"s"},
				Usage:              "show detailed status of a unit",
				Action:             status,
				OnUsageError:       common.UsageErrorCallback,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Description:        StatusDescription,
				UsageText:          "status <name>",
			},
			{
				Name:               "enable",
				Usage:              "enable and start a unit",
				Action:             enable,
				OnUsageError:       common.UsageErrorCallback,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Description:        EnableDescription,
				UsageText:          "enable <name>",
			},
			{
				Name:               "disable",
				Usage:              "stop a unit, keeping its files",
				Action:             disable,
				OnUsageError:       common.UsageErrorCallback,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Description:        DisableDescription,
				UsageText:          "disable <name>",
			},
			{
				Name:                   "export",
				Usage:                  "render installed units as manifest TOML",
				Action:                 export,
				OnUsageError:           common.UsageErrorCallback,
				CustomHelpTemplate:     CMD_HELP_TEMPL,
				Description:            ExportDescription,
				UsageText:              "export [-o file]",
				UseShortOptionHandling: true,
				Flags:                  exportFlags,
			},
			{
				Name:                   "apply",
				Usage:                  "reconcile units against a TOML manifest",
				Action:                 apply,
				OnUsageError:           common.UsageErrorCallback,
				CustomHelpTemplate:     CMD_HELP_TEMPL,
				Description:            ApplyDescription,
				UsageText:              "apply [file] [--prune] [--dry-run]",
				UseShortOptionHandling: true,
				Flags:                  applyFlags,
			},
			{
				Name:    "help",
				Aliases: []string{"h"},
				Usage:   "prints the help message",
				Action:  common.Help,
			},
			{
				Name:               "version",
				Usage:              "prints installed version of systemdtab",
				UsageText:          " ",
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Action:             common.GetVersion,
			},
		},
		Action:                 common.Help,
		UseShortOptionHandling: true,
		HideHelp:               true,
		HideVersion:            true,
	}
	common.VersionCmdStr = fmt.Sprintf("%s %s (%s_%s)\nBuild: %s=%s\n",
		app.Name,
		app.Version,
		runtime.GOOS,
		runtime.GOARCH,
		bArgs.Date, bArgs.Commit,
	)
	return app.Run(args)
}
