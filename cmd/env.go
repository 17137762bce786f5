package cmd

import (
	"github.com/spf13/afero"

	"github.com/kok1eee/systemdtab/pkg/systemctl"
	"github.com/kok1eee/systemdtab/pkg/tablib"
)

// environment bundles what every command needs: the unit-file store,
// the systemctl client, the reconciler tying them together and the
// resolved user paths.
type environment struct {
	fs        afero.Fs
	store     *tablib.Store
	ctl       *systemctl.Client
	rec       *tablib.Reconciler
	unitDir   string
	configDir string
	globalEnv string
	manifest  string
}

// newEnvironment is swapped by tests to run against a memory filesystem
// and a fake systemctl runner.
var newEnvironment = realEnvironment

func realEnvironment() (*environment, error) {
	unitDir, err := tablib.UnitDir()
	if err != nil {
		return nil, err
	}
	configDir, err := tablib.ConfigDir()
	if err != nil {
		return nil, err
	}
	globalEnv, err := tablib.GlobalEnvPath()
	if err != nil {
		return nil, err
	}
	manifest, err := tablib.ManifestPath()
	if err != nil {
		return nil, err
	}
	fs := afero.NewOsFs()
	store := tablib.NewStore(fs, unitDir)
	ctl := systemctl.New()
	return &environment{
		fs:        fs,
		store:     store,
		ctl:       ctl,
		rec:       tablib.NewReconciler(store, ctl, globalEnv),
		unitDir:   unitDir,
		configDir: configDir,
		globalEnv: globalEnv,
		manifest:  manifest,
	}, nil
}
