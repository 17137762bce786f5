package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/urfave/cli"
)

const envTemplate = `# systemdtab global environment variables
# All services and timers inherit these settings.
# Format: KEY=VALUE (one per line)
#
# PATH=/usr/local/bin:/usr/bin:/bin
# PYTHONUNBUFFERED=1
`

func initTab(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	env, err := newEnvironment()
	if err != nil {
		return err
	}
	cctx := context.Background()

	user := os.Getenv("USER")
	if user == "" {
		return errors.New("could not determine current user ($USER unset)")
	}
	fmt.Printf("Enabling linger for user '%s'...\n", user)
	if err := env.ctl.Linger(cctx, user); err != nil {
		return err
	}

	fmt.Printf("Creating directory: %s\n", env.unitDir)
	if err := env.store.Ensure(); err != nil {
		return err
	}
	if err := env.fs.MkdirAll(env.configDir, 0o755); err != nil {
		return err
	}

	exists, err := afero.Exists(env.fs, env.globalEnv)
	if err != nil {
		return err
	}
	if !exists {
		if err := afero.WriteFile(env.fs, env.globalEnv, []byte(envTemplate), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", env.globalEnv, err)
		}
		fmt.Printf("Created: %s (edit to set PATH etc.)\n", env.globalEnv)
	} else {
		fmt.Printf("Exists: %s\n", env.globalEnv)
		data, err := afero.ReadFile(env.fs, env.globalEnv)
		if err != nil {
			return err
		}
		if _, err := godotenv.Unmarshal(string(data)); err != nil {
			log.Warn().Err(err).Str("path", env.globalEnv).
				Msg("global env file does not parse; units will ignore it")
		}
	}

	fmt.Println("Reloading systemd user daemon...")
	if err := env.ctl.DaemonReload(cctx); err != nil {
		return err
	}
	fmt.Println("systemdtab initialized successfully.")
	return nil
}
