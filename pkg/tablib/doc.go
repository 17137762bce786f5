// Package tablib implements the core model of systemdtab: compiling
// crontab expressions into systemd calendar triggers, rendering managed
// units into unit file text with an embedded metadata block, scanning a
// unit directory back into structured state, and reconciling a declared
// manifest against that state with a plan/apply cycle.
//
// The package never talks to systemd itself. Unit files are read and
// written through an afero filesystem, and daemon reloads, enables and
// restarts go through the Controller interface so callers decide how
// (and whether) to reach the service manager.
package tablib
