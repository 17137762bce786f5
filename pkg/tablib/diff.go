package tablib

import (
	"bytes"
	"sort"
)

// DiffStatus classifies what reconciliation will do with one unit.
type DiffStatus int

const (
	StatusAdded DiffStatus = iota
	StatusChanged
	StatusUnchanged
	StatusRemoved
)

func (s DiffStatus) String() string {
	switch s {
	case StatusAdded:
		return "added"
	case StatusChanged:
		return "changed"
	case StatusUnchanged:
		return "unchanged"
	case StatusRemoved:
		return "removed"
	}
	return "unknown"
}

// Symbol is the one-character diff marker used in plan output.
func (s DiffStatus) Symbol() string {
	switch s {
	case StatusAdded:
		return "+"
	case StatusChanged:
		return "~"
	case StatusUnchanged:
		return "="
	case StatusRemoved:
		return "-"
	}
	return "?"
}

// DiffEntry pairs a unit name with the action reconciliation will take.
// Before is the installed unit, nil for Added; After the desired one,
// nil for Removed.
type DiffEntry struct {
	Name   string
	Status DiffStatus
	Before *Unit
	After  *Unit
}

// Plan is the reconciliation plan for one manifest. Entries are sorted
// ascending by name so output and execution order are reproducible.
// Orphans lists installed units absent from the manifest when pruning is
// off: reported for visibility, never touched.
type Plan struct {
	Entries []DiffEntry
	Orphans []string
}

// BuildPlan diffs desired units against the installed state. Equality is
// byte comparison of freshly generated text with the installed raw text,
// so hand-edited files always classify as Changed. Corrupt units count
// as absent: a desired name whose installed half is corrupt comes back
// Added and gets rewritten by apply.
func BuildPlan(desired map[string]*Unit, st *InstalledState, prune bool, globalEnv string) (*Plan, error) {
	names := make([]string, 0, len(desired)+len(st.Units))
	for name := range desired {
		names = append(names, name)
	}
	for name := range st.Units {
		if _, ok := desired[name]; !ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	plan := &Plan{}
	for _, name := range names {
		want, isDesired := desired[name]
		inst, isInstalled := st.Units[name]
		switch {
		case isDesired && !isInstalled:
			plan.Entries = append(plan.Entries, DiffEntry{Name: name, Status: StatusAdded, After: want})
		case !isDesired:
			if prune {
				plan.Entries = append(plan.Entries, DiffEntry{Name: name, Status: StatusRemoved, Before: inst.Unit})
			} else {
				plan.Orphans = append(plan.Orphans, name)
			}
		default:
			status, err := classify(want, inst, globalEnv)
			if err != nil {
				return nil, err
			}
			plan.Entries = append(plan.Entries, DiffEntry{Name: name, Status: status, Before: inst.Unit, After: want})
		}
	}
	return plan, nil
}

func classify(want *Unit, inst *InstalledUnit, globalEnv string) (DiffStatus, error) {
	// Command resolution happens at apply time. For comparison, reuse
	// the installed resolution as long as the declared command is the
	// same; a different command can never be Unchanged anyway because
	// its metadata line differs.
	cmp := *want
	if cmp.ExecCommand == "" {
		if cmp.Command != inst.Unit.Command {
			return StatusChanged, nil
		}
		cmp.ExecCommand = inst.Unit.ExecCommand
	}
	files, err := Generate(&cmp, globalEnv)
	if err != nil {
		return 0, err
	}
	if (files.Timer == nil) != (inst.RawTimer == nil) {
		return StatusChanged, nil
	}
	if !bytes.Equal(files.Service, inst.RawService) || !bytes.Equal(files.Timer, inst.RawTimer) {
		return StatusChanged, nil
	}
	return StatusUnchanged, nil
}
