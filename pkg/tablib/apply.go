package tablib

import (
	"context"
	"fmt"
)

// Controller is the slice of service-manager operations reconciliation
// needs. pkg/systemctl implements it against the per-user manager; tests
// substitute fakes.
type Controller interface {
	DaemonReload(ctx context.Context) error
	EnableNow(ctx context.Context, units ...string) error
	DisableNow(ctx context.Context, units ...string) error
	Restart(ctx context.Context, unit string) error
	ResetFailed(ctx context.Context, unit string) error
}

// Resolver turns a user command line into its ExecStart form. Split out
// as a function value so dry runs and tests never touch the real PATH.
type Resolver func(command, globalEnv string) (string, error)

// ApplyOptions control one reconciliation run. Prune gates Removed
// entries a second time so a plan built with pruning cannot delete
// anything when applied without it.
type ApplyOptions struct {
	DryRun bool
	Prune  bool
}

// Summary counts the outcome of an apply run. Failures carries one entry
// per unit whose steps did not all succeed.
type Summary struct {
	Added     int
	Updated   int
	Unchanged int
	Removed   int
	Failures  []*UnitError
}

// Reconciler installs plans into a store and drives the service manager
// through a Controller.
type Reconciler struct {
	Store     *Store
	Ctl       Controller
	GlobalEnv string
	Resolve   Resolver
}

// NewReconciler wires a reconciler with the default command resolver.
func NewReconciler(store *Store, ctl Controller, globalEnv string) *Reconciler {
	return &Reconciler{Store: store, Ctl: ctl, GlobalEnv: globalEnv, Resolve: ResolveCommand}
}

func (r *Reconciler) resolveCommand(command string) (string, error) {
	if r.Resolve == nil {
		return ResolveCommand(command, r.GlobalEnv)
	}
	return r.Resolve(command, r.GlobalEnv)
}

// Apply executes a plan. A dry run only counts what would happen and is
// guaranteed side-effect free. A real run writes and removes unit files
// in plan order, reloads the manager once, then enables what was
// written. A failing entry is recorded in the summary and skipped, not
// fatal; the call itself errors only when setup fails before the first
// entry or every attempted entry failed.
func (r *Reconciler) Apply(ctx context.Context, plan *Plan, opts ApplyOptions) (*Summary, error) {
	sum := &Summary{}
	if opts.DryRun {
		for _, e := range plan.Entries {
			switch e.Status {
			case StatusAdded:
				sum.Added++
			case StatusChanged:
				sum.Updated++
			case StatusUnchanged:
				sum.Unchanged++
			case StatusRemoved:
				sum.Removed++
			}
		}
		return sum, nil
	}
	if err := r.Store.CheckWritable(); err != nil {
		return nil, err
	}

	type pending struct {
		entry DiffEntry
		timer bool
	}
	var enqueue []pending
	attempted := 0
	reload := false
	fail := func(name, op string, err error) {
		sum.Failures = append(sum.Failures, &UnitError{Name: name, Op: op, Err: err})
	}

	for _, e := range plan.Entries {
		switch e.Status {
		case StatusUnchanged:
			sum.Unchanged++
		case StatusAdded, StatusChanged:
			attempted++
			u := *e.After
			if u.ExecCommand == "" {
				resolved, err := r.resolveCommand(u.Command)
				if err != nil {
					fail(e.Name, "resolve", err)
					continue
				}
				u.ExecCommand = resolved
			}
			files, err := Generate(&u, r.GlobalEnv)
			if err != nil {
				fail(e.Name, "render", err)
				continue
			}
			if files.Timer == nil {
				// A kind flip leaves a live trigger behind. Stop it
				// while its file still exists.
				if had, _ := r.Store.HasTimerFile(e.Name); had {
					r.Ctl.DisableNow(ctx, TimerFile(e.Name))
				}
			}
			if err := r.Store.WriteUnit(e.Name, files); err != nil {
				fail(e.Name, "write", err)
				continue
			}
			reload = true
			enqueue = append(enqueue, pending{entry: e, timer: files.Timer != nil})
		case StatusRemoved:
			if !opts.Prune {
				continue
			}
			attempted++
			if err := r.removeInstalled(ctx, e.Name); err != nil {
				fail(e.Name, "remove", err)
				continue
			}
			reload = true
			sum.Removed++
		}
	}

	// One reload covers every file touched above; written units cannot
	// be enabled before the manager has seen them.
	if reload {
		if err := r.Ctl.DaemonReload(ctx); err != nil {
			return sum, fmt.Errorf("daemon-reload: %w", err)
		}
	}

	for _, p := range enqueue {
		if err := r.activate(ctx, p.entry, p.timer); err != nil {
			fail(p.entry.Name, "enable", err)
			continue
		}
		if p.entry.Status == StatusAdded {
			sum.Added++
		} else {
			sum.Updated++
		}
	}

	if attempted > 0 && len(sum.Failures) == attempted {
		return sum, fmt.Errorf("all %d units failed", attempted)
	}
	return sum, nil
}

func (r *Reconciler) activate(ctx context.Context, e DiffEntry, timer bool) error {
	if timer {
		return r.Ctl.EnableNow(ctx, TimerFile(e.Name))
	}
	if err := r.Ctl.EnableNow(ctx, ServiceFile(e.Name)); err != nil {
		return err
	}
	// A changed persistent service keeps running on the old binary and
	// configuration until restarted.
	if e.Status == StatusChanged {
		return r.Ctl.Restart(ctx, ServiceFile(e.Name))
	}
	return nil
}

// removeInstalled stops and forgets a unit before deleting its files.
// Disable and reset-failed are best effort: getting the files off disk
// matters more than a clean stop of something already broken.
func (r *Reconciler) removeInstalled(ctx context.Context, name string) error {
	var units []string
	if had, _ := r.Store.HasTimerFile(name); had {
		units = append(units, TimerFile(name))
	}
	units = append(units, ServiceFile(name))
	r.Ctl.DisableNow(ctx, units...)
	r.Ctl.ResetFailed(ctx, ServiceFile(name))
	return r.Store.RemoveUnit(name)
}

// AddUnit validates, renders and activates a single unit: the imperative
// one-unit path next to plan/apply. With replace set it overwrites an
// existing unit of the same name and restarts it if it is a persistent
// service.
func (r *Reconciler) AddUnit(ctx context.Context, u *Unit, replace bool) error {
	if err := u.Validate(); err != nil {
		return err
	}
	exists, err := r.Store.Exists(u.Name)
	if err != nil {
		return err
	}
	if exists && !replace {
		return fmt.Errorf("%w: %s", ErrUnitExists, u.Name)
	}
	if u.ExecCommand == "" {
		if u.ExecCommand, err = r.resolveCommand(u.Command); err != nil {
			return err
		}
	}
	files, err := Generate(u, r.GlobalEnv)
	if err != nil {
		return err
	}
	if files.Timer == nil {
		if had, _ := r.Store.HasTimerFile(u.Name); had {
			r.Ctl.DisableNow(ctx, TimerFile(u.Name))
		}
	}
	if err := r.Store.WriteUnit(u.Name, files); err != nil {
		return err
	}
	if err := r.Ctl.DaemonReload(ctx); err != nil {
		return err
	}
	if files.Timer != nil {
		return r.Ctl.EnableNow(ctx, TimerFile(u.Name))
	}
	if err := r.Ctl.EnableNow(ctx, ServiceFile(u.Name)); err != nil {
		return err
	}
	if exists {
		return r.Ctl.Restart(ctx, ServiceFile(u.Name))
	}
	return nil
}

// RemoveByName uninstalls one unit by name.
func (r *Reconciler) RemoveByName(ctx context.Context, name string) error {
	exists, err := r.Store.Exists(name)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrUnitNotFound, name)
	}
	if err := r.removeInstalled(ctx, name); err != nil {
		return err
	}
	return r.Ctl.DaemonReload(ctx)
}
