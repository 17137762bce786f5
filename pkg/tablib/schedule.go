package tablib

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ScheduleKind discriminates what a schedule expression compiled to.
type ScheduleKind int

const (
	// KindCalendar is a timed trigger derived from the five cron fields.
	KindCalendar ScheduleKind = iota
	// KindReboot fires once shortly after each boot.
	KindReboot
	// KindPersistentService means no trigger at all: the unit is a
	// long-running process kept alive by a restart policy.
	KindPersistentService
)

func (k ScheduleKind) String() string {
	switch k {
	case KindReboot:
		return "reboot"
	case KindPersistentService:
		return "service"
	default:
		return "calendar"
	}
}

// FieldKind discriminates the constraint forms a single cron field can
// take after compilation.
type FieldKind int

const (
	FieldAny FieldKind = iota
	FieldValues
	FieldRange
	FieldStep
)

// Field is the compiled constraint of one cron field. Kind selects which
// of the remaining members are meaningful: Values holds a sorted discrete
// set, Lo/Hi a contiguous range, Start/Stride a step expression.
type Field struct {
	Kind   FieldKind
	Values []int
	Lo, Hi int
	Start  int
	Stride int
}

// Schedule is the compiled form of a schedule expression. The five field
// constraints are only meaningful for KindCalendar.
type Schedule struct {
	Kind   ScheduleKind
	Minute Field
	Hour   Field
	Day    Field
	Month  Field
	Dow    Field
}

type fieldSpec struct {
	name     string
	min, max int
	dow      bool
}

var (
	minuteSpec = fieldSpec{name: "minute", min: 0, max: 59}
	hourSpec   = fieldSpec{name: "hour", min: 0, max: 23}
	daySpec    = fieldSpec{name: "day-of-month", min: 1, max: 31}
	monthSpec  = fieldSpec{name: "month", min: 1, max: 12}
	// cron follows the 0-or-7-is-Sunday convention, so 7 is admitted
	// here and folded onto 0 during parsing.
	dowSpec = fieldSpec{name: "day-of-week", min: 0, max: 7, dow: true}
)

var (
	dowNames = [...]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
	dowFull  = [...]string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}
)

// Fixed aliases that translate to plain cron lines before compilation.
// The week deliberately starts on Monday.
var cronAliases = map[string]string{
	"hourly":   "0 * * * *",
	"midnight": "0 0 * * *",
	"weekly":   "0 0 * * 1",
	"monthly":  "0 0 1 * *",
	"yearly":   "0 0 1 1 *",
	"annually": "0 0 1 1 *",
}

// Compile parses a crontab expression or @alias into a Schedule.
func Compile(expr string) (*Schedule, error) {
	trimmed := strings.TrimSpace(expr)
	if trimmed == "" {
		return nil, syntaxErr(expr, "", "empty expression")
	}
	if strings.HasPrefix(trimmed, "@") {
		return compileAlias(expr, trimmed)
	}
	fields := strings.Fields(trimmed)
	if len(fields) != 5 {
		return nil, syntaxErr(expr, "", fmt.Sprintf("expected 5 fields, got %d", len(fields)))
	}
	s := &Schedule{Kind: KindCalendar}
	var err error
	if s.Minute, err = parseField(expr, fields[0], minuteSpec); err != nil {
		return nil, err
	}
	if s.Hour, err = parseField(expr, fields[1], hourSpec); err != nil {
		return nil, err
	}
	if s.Day, err = parseField(expr, fields[2], daySpec); err != nil {
		return nil, err
	}
	if s.Month, err = parseField(expr, fields[3], monthSpec); err != nil {
		return nil, err
	}
	if s.Dow, err = parseField(expr, fields[4], dowSpec); err != nil {
		return nil, err
	}
	return s, nil
}

func compileAlias(expr, trimmed string) (*Schedule, error) {
	name := strings.ToLower(strings.TrimPrefix(trimmed, "@"))
	switch name {
	case "reboot":
		return &Schedule{Kind: KindReboot}, nil
	case "service":
		return &Schedule{Kind: KindPersistentService}, nil
	}
	base, suffix, hasTime := strings.Cut(name, "/")
	if line, ok := cronAliases[base]; ok {
		if hasTime {
			return nil, syntaxErr(expr, "@"+base, "alias does not take a time suffix")
		}
		return Compile(line)
	}
	hour, minute := 0, 0
	if hasTime {
		var err error
		if hour, minute, err = parseAliasTime(expr, base, suffix); err != nil {
			return nil, err
		}
	}
	at := &Schedule{
		Kind:   KindCalendar,
		Minute: Field{Kind: FieldValues, Values: []int{minute}},
		Hour:   Field{Kind: FieldValues, Values: []int{hour}},
	}
	if base == "daily" {
		return at, nil
	}
	if dow, ok := dowByName(base); ok {
		at.Dow = Field{Kind: FieldValues, Values: []int{dow}}
		return at, nil
	}
	if day, ok := ordinalDay(base); ok {
		at.Day = Field{Kind: FieldValues, Values: []int{day}}
		return at, nil
	}
	return nil, syntaxErr(expr, "@"+base, "unknown alias")
}

// parseAliasTime parses the /H or /H:M suffix of time-of-day aliases.
// Bad suffixes are syntax errors even when merely out of bounds, since
// the suffix is part of the alias grammar rather than a cron field.
func parseAliasTime(expr, base, suffix string) (hour, minute int, err error) {
	alias := "@" + base
	hourStr, minStr, hasMin := strings.Cut(suffix, ":")
	hour, cerr := strconv.Atoi(hourStr)
	if cerr != nil || hour < 0 || hour > 23 {
		return 0, 0, syntaxErr(expr, alias, fmt.Sprintf("bad hour %q", hourStr))
	}
	if hasMin {
		minute, cerr = strconv.Atoi(minStr)
		if cerr != nil || minute < 0 || minute > 59 {
			return 0, 0, syntaxErr(expr, alias, fmt.Sprintf("bad minute %q", minStr))
		}
	}
	return hour, minute, nil
}

func parseField(expr, field string, spec fieldSpec) (Field, error) {
	if field == "*" {
		return Field{Kind: FieldAny}, nil
	}
	if strings.Contains(field, ",") {
		var values []int
		for _, part := range strings.Split(field, ",") {
			vs, err := expandElement(expr, part, spec)
			if err != nil {
				return Field{}, err
			}
			values = append(values, vs...)
		}
		return Field{Kind: FieldValues, Values: normalize(values)}, nil
	}
	return parseElement(expr, field, spec)
}

func parseElement(expr, element string, spec fieldSpec) (Field, error) {
	if rest, ok := strings.CutPrefix(element, "*/"); ok {
		stride, err := parseStride(expr, rest, spec)
		if err != nil {
			return Field{}, err
		}
		if spec.dow {
			// systemd has no weekday step form, so expand now.
			return Field{Kind: FieldValues, Values: stepValues(spec.min, spec.max, stride, spec)}, nil
		}
		return Field{Kind: FieldStep, Start: spec.min, Stride: stride}, nil
	}
	if strings.Contains(element, "/") {
		rangePart, strideStr, _ := strings.Cut(element, "/")
		lo, hi, err := parseRange(expr, rangePart, spec)
		if err != nil {
			return Field{}, err
		}
		stride, err := parseStride(expr, strideStr, spec)
		if err != nil {
			return Field{}, err
		}
		return Field{Kind: FieldValues, Values: stepValues(lo, hi, stride, spec)}, nil
	}
	if strings.Contains(element, "-") {
		lo, hi, err := parseRange(expr, element, spec)
		if err != nil {
			return Field{}, err
		}
		return Field{Kind: FieldRange, Lo: lo, Hi: hi}, nil
	}
	v, err := parseValue(expr, element, spec)
	if err != nil {
		return Field{}, err
	}
	if spec.dow {
		v %= 7
	}
	return Field{Kind: FieldValues, Values: []int{v}}, nil
}

// expandElement parses one comma-list element into the discrete values
// it covers. Ranges and steps inside lists always expand.
func expandElement(expr, element string, spec fieldSpec) ([]int, error) {
	f, err := parseElement(expr, element, spec)
	if err != nil {
		return nil, err
	}
	switch f.Kind {
	case FieldValues:
		return f.Values, nil
	case FieldRange:
		return stepValues(f.Lo, f.Hi, 1, spec), nil
	case FieldStep:
		return stepValues(f.Start, spec.max, f.Stride, spec), nil
	}
	return nil, syntaxErr(expr, spec.name, fmt.Sprintf("bad list element %q", element))
}

func parseValue(expr, s string, spec fieldSpec) (int, error) {
	if spec.dow {
		if v, ok := dowByName(s); ok {
			return v, nil
		}
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, syntaxErr(expr, spec.name, fmt.Sprintf("bad value %q", s))
	}
	if v < spec.min || v > spec.max {
		return 0, rangeErr(expr, spec.name, fmt.Sprintf("value %d out of range %d-%d", v, spec.min, spec.max))
	}
	return v, nil
}

func parseRange(expr, s string, spec fieldSpec) (lo, hi int, err error) {
	loStr, hiStr, ok := strings.Cut(s, "-")
	if !ok || loStr == "" || hiStr == "" {
		return 0, 0, syntaxErr(expr, spec.name, fmt.Sprintf("bad range %q", s))
	}
	if lo, err = parseValue(expr, loStr, spec); err != nil {
		return 0, 0, err
	}
	if hi, err = parseValue(expr, hiStr, spec); err != nil {
		return 0, 0, err
	}
	if spec.dow && hi == 0 && lo > 0 {
		// Fri-Sun style wrap: Sunday closes the range.
		hi = 7
	}
	if lo > hi {
		return 0, 0, rangeErr(expr, spec.name, fmt.Sprintf("range %d-%d is inverted", lo, hi))
	}
	return lo, hi, nil
}

func parseStride(expr, s string, spec fieldSpec) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, syntaxErr(expr, spec.name, fmt.Sprintf("bad step %q", s))
	}
	if n < 1 {
		return 0, rangeErr(expr, spec.name, fmt.Sprintf("step %d must be at least 1", n))
	}
	return n, nil
}

func stepValues(lo, hi, stride int, spec fieldSpec) []int {
	var values []int
	for v := lo; v <= hi; v += stride {
		if spec.dow {
			values = append(values, v%7)
		} else {
			values = append(values, v)
		}
	}
	return normalize(values)
}

func normalize(values []int) []int {
	sort.Ints(values)
	out := values[:0]
	for i, v := range values {
		if i == 0 || v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}

// dowByName resolves a day name to its cron number. Both the Mon style
// abbreviation and the full English name are accepted, case-insensitive.
func dowByName(s string) (int, bool) {
	t := strings.ToLower(s)
	for i, full := range dowFull {
		if t == full || t == full[:3] {
			return i, true
		}
	}
	return 0, false
}

// ordinalDay parses day-of-month aliases like 1st, 2nd, 15th or 31st.
// The suffix has to grammatically match the number.
func ordinalDay(s string) (int, bool) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(s[:i])
	if err != nil || n < 1 || n > 31 {
		return 0, false
	}
	if s[i:] != ordinalSuffix(n) {
		return 0, false
	}
	return n, true
}

func ordinalSuffix(n int) string {
	switch {
	case n%10 == 1 && n != 11:
		return "st"
	case n%10 == 2 && n != 12:
		return "nd"
	case n%10 == 3 && n != 13:
		return "rd"
	}
	return "th"
}

func syntaxErr(expr, field, detail string) *ScheduleError {
	return &ScheduleError{Expr: expr, Field: field, Kind: ScheduleSyntax, Detail: detail}
}

func rangeErr(expr, field, detail string) *ScheduleError {
	return &ScheduleError{Expr: expr, Field: field, Kind: ScheduleOutOfRange, Detail: detail}
}
