package tablib

import (
	"errors"
	"fmt"
)

var (
	ErrUnitExists   = errors.New("unit already exists")
	ErrUnitNotFound = errors.New("unit not found")
	ErrNotAService  = errors.New("unit is not a persistent service")

	ErrDirNotFound    = errors.New("directory does not exist")
	ErrNotADirectory  = errors.New("path is not a directory")
	ErrDirNotWritable = errors.New("directory is not writable")
)

// ScheduleErrorKind separates grammar violations from values that parse
// but fall outside a field's numeric range.
type ScheduleErrorKind int

const (
	ScheduleSyntax ScheduleErrorKind = iota
	ScheduleOutOfRange
)

func (k ScheduleErrorKind) String() string {
	if k == ScheduleOutOfRange {
		return "out of range"
	}
	return "syntax"
}

// ScheduleError reports an invalid schedule expression. Field names the
// offending cron field or alias when the failure is attributable to one,
// and is empty when the expression is broken as a whole.
type ScheduleError struct {
	Expr   string
	Field  string
	Kind   ScheduleErrorKind
	Detail string
}

func (e *ScheduleError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid schedule %q: %s", e.Expr, e.Detail)
	}
	return fmt.Sprintf("invalid schedule %q: %s: %s", e.Expr, e.Field, e.Detail)
}

// CodecError reports a metadata comment line that carries a recognized
// key with a value the codec cannot accept.
type CodecError struct {
	Line   string
	Detail string
}

func (e *CodecError) Error() string {
	return fmt.Sprintf("bad metadata line %q: %s", e.Line, e.Detail)
}

// CorruptUnitError wraps the parse failure of one installed unit. Scan
// collects these instead of failing so a single broken file cannot hide
// the rest of the installed state.
type CorruptUnitError struct {
	Name string
	Err  error
}

func (e *CorruptUnitError) Error() string {
	return fmt.Sprintf("corrupt unit %q: %s", e.Name, e.Err.Error())
}

func (e *CorruptUnitError) Unwrap() error { return e.Err }

// UnitError attaches the unit name and the step that failed to an apply
// error, so a batch summary can say which unit broke and where.
type UnitError struct {
	Name string
	Op   string
	Err  error
}

func (e *UnitError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Name, e.Op, e.Err.Error())
}

func (e *UnitError) Unwrap() error { return e.Err }
