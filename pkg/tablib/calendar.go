package tablib

import (
	"fmt"
	"strconv"
	"strings"
)

// rebootDelay is the boot trigger written for @reboot schedules.
const rebootDelay = "1min"

// Calendar renders a KindCalendar schedule as a systemd calendar event
// string in the order day-of-week year-month-day hour:minute:second.
// Discrete values are zero-padded to two digits, range and step bounds
// are not, matching the systemd.time forms "01,06", "1..5" and "0/5".
// Seconds are pinned to 00 so a trigger never straddles a minute.
// Returns "" for the non-calendar kinds.
func (s *Schedule) Calendar() string {
	if s.Kind != KindCalendar {
		return ""
	}
	var b strings.Builder
	if s.Dow.Kind != FieldAny {
		b.WriteString(renderDow(s.Dow))
		b.WriteByte(' ')
	}
	b.WriteString("*-")
	b.WriteString(renderField(s.Month))
	b.WriteByte('-')
	b.WriteString(renderField(s.Day))
	b.WriteByte(' ')
	b.WriteString(renderField(s.Hour))
	b.WriteByte(':')
	b.WriteString(renderField(s.Minute))
	b.WriteString(":00")
	return b.String()
}

func renderField(f Field) string {
	switch f.Kind {
	case FieldValues:
		parts := make([]string, len(f.Values))
		for i, v := range f.Values {
			parts[i] = fmt.Sprintf("%02d", v)
		}
		return strings.Join(parts, ",")
	case FieldRange:
		return fmt.Sprintf("%d..%d", f.Lo, f.Hi)
	case FieldStep:
		return fmt.Sprintf("%d/%d", f.Start, f.Stride)
	}
	return "*"
}

// renderDow writes weekday constraints as names. Compile never produces
// a step here, so only values and ranges occur.
func renderDow(f Field) string {
	switch f.Kind {
	case FieldValues:
		parts := make([]string, len(f.Values))
		for i, v := range f.Values {
			parts[i] = dowNames[v%7]
		}
		return strings.Join(parts, ",")
	case FieldRange:
		return dowNames[f.Lo%7] + ".." + dowNames[f.Hi%7]
	}
	return "*"
}

// CronLine renders the schedule back as a five-field cron expression in
// canonical numeric form, which is what the next-run evaluator consumes.
// Returns "" for the non-calendar kinds.
func (s *Schedule) CronLine() string {
	if s.Kind != KindCalendar {
		return ""
	}
	return strings.Join([]string{
		cronField(s.Minute),
		cronField(s.Hour),
		cronField(s.Day),
		cronField(s.Month),
		cronField(s.Dow),
	}, " ")
}

func cronField(f Field) string {
	switch f.Kind {
	case FieldValues:
		parts := make([]string, len(f.Values))
		for i, v := range f.Values {
			parts[i] = strconv.Itoa(v)
		}
		return strings.Join(parts, ",")
	case FieldRange:
		return fmt.Sprintf("%d-%d", f.Lo, f.Hi)
	case FieldStep:
		return fmt.Sprintf("*/%d", f.Stride)
	}
	return "*"
}

// ParseCalendar parses a calendar event string produced by Calendar back
// into a Schedule. It understands exactly the subset Calendar emits, not
// the full systemd.time grammar.
func ParseCalendar(s string) (*Schedule, error) {
	fields := strings.Fields(strings.TrimSpace(s))
	var dowPart, datePart, timePart string
	switch len(fields) {
	case 2:
		datePart, timePart = fields[0], fields[1]
	case 3:
		dowPart, datePart, timePart = fields[0], fields[1], fields[2]
	default:
		return nil, fmt.Errorf("calendar %q: expected [weekday] date time", s)
	}

	sched := &Schedule{Kind: KindCalendar}
	var err error
	if dowPart != "" {
		if sched.Dow, err = parseCalDow(dowPart); err != nil {
			return nil, fmt.Errorf("calendar %q: %w", s, err)
		}
	}

	date := strings.Split(datePart, "-")
	if len(date) != 3 || date[0] != "*" {
		return nil, fmt.Errorf("calendar %q: bad date part %q", s, datePart)
	}
	if sched.Month, err = parseCalField(date[1], monthSpec); err != nil {
		return nil, fmt.Errorf("calendar %q: %w", s, err)
	}
	if sched.Day, err = parseCalField(date[2], daySpec); err != nil {
		return nil, fmt.Errorf("calendar %q: %w", s, err)
	}

	clock := strings.Split(timePart, ":")
	if len(clock) != 3 || clock[2] != "00" {
		return nil, fmt.Errorf("calendar %q: bad time part %q", s, timePart)
	}
	if sched.Hour, err = parseCalField(clock[0], hourSpec); err != nil {
		return nil, fmt.Errorf("calendar %q: %w", s, err)
	}
	if sched.Minute, err = parseCalField(clock[1], minuteSpec); err != nil {
		return nil, fmt.Errorf("calendar %q: %w", s, err)
	}
	return sched, nil
}

func parseCalField(s string, spec fieldSpec) (Field, error) {
	if s == "*" {
		return Field{Kind: FieldAny}, nil
	}
	if loStr, hiStr, ok := strings.Cut(s, ".."); ok {
		lo, err := parseCalValue(loStr, spec)
		if err != nil {
			return Field{}, err
		}
		hi, err := parseCalValue(hiStr, spec)
		if err != nil {
			return Field{}, err
		}
		return Field{Kind: FieldRange, Lo: lo, Hi: hi}, nil
	}
	if startStr, strideStr, ok := strings.Cut(s, "/"); ok {
		start, err := parseCalValue(startStr, spec)
		if err != nil {
			return Field{}, err
		}
		stride, err := strconv.Atoi(strideStr)
		if err != nil || stride < 1 {
			return Field{}, fmt.Errorf("%s: bad stride %q", spec.name, strideStr)
		}
		return Field{Kind: FieldStep, Start: start, Stride: stride}, nil
	}
	var values []int
	for _, part := range strings.Split(s, ",") {
		v, err := parseCalValue(part, spec)
		if err != nil {
			return Field{}, err
		}
		values = append(values, v)
	}
	return Field{Kind: FieldValues, Values: normalize(values)}, nil
}

func parseCalValue(s string, spec fieldSpec) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil || v < spec.min || v > spec.max {
		return 0, fmt.Errorf("%s: bad value %q", spec.name, s)
	}
	return v, nil
}

func parseCalDow(s string) (Field, error) {
	if loStr, hiStr, ok := strings.Cut(s, ".."); ok {
		lo, okLo := dowByName(loStr)
		hi, okHi := dowByName(hiStr)
		if !okLo || !okHi {
			return Field{}, fmt.Errorf("day-of-week: bad range %q", s)
		}
		if hi == 0 && lo > 0 {
			hi = 7
		}
		return Field{Kind: FieldRange, Lo: lo, Hi: hi}, nil
	}
	var values []int
	for _, part := range strings.Split(s, ",") {
		v, ok := dowByName(part)
		if !ok {
			return Field{}, fmt.Errorf("day-of-week: bad name %q", part)
		}
		values = append(values, v)
	}
	return Field{Kind: FieldValues, Values: normalize(values)}, nil
}
