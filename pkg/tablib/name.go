package tablib

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/kballard/go-shellquote"
)

var nameRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// Interpreters that say nothing about what a command does. Name
// derivation skips them and names the unit after the script instead.
var runnerNames = map[string]bool{
	"python": true, "python3": true, "uv": true, "node": true,
	"bash": true, "sh": true, "ruby": true, "perl": true,
}

var scriptExts = [...]string{".py", ".sh", ".rb", ".js", ".ts"}

// ValidateName checks that a unit name is usable as the variable part of
// a unit file name.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("empty unit name")
	}
	if !nameRe.MatchString(name) {
		return fmt.Errorf("bad unit name %q: must start with an alphanumeric and contain only [A-Za-z0-9._-]", name)
	}
	return nil
}

// DeriveName produces a unit name from a command line when the user did
// not give one. Interpreter words are skipped ("uv run ./report.py"
// names the unit report, not uv), the candidate is reduced to its
// basename without a script extension, and anything outside the unit
// name alphabet becomes a dash. Falls back to "task" when nothing
// usable remains.
func DeriveName(command string) string {
	words, err := shellquote.Split(command)
	if err != nil {
		words = strings.Fields(command)
	}
	if len(words) == 0 {
		return "task"
	}

	candidate := words[0]
	if len(words) >= 2 && runnerNames[filepath.Base(words[0])] {
		if words[0] == "uv" && len(words) >= 3 && words[1] == "run" {
			candidate = words[2]
		} else {
			candidate = words[1]
		}
	}

	name := filepath.Base(candidate)
	for _, ext := range scriptExts {
		if cut, ok := strings.CutSuffix(name, ext); ok {
			name = cut
			break
		}
	}

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	// The first character has to be alphanumeric.
	name = strings.TrimRight(strings.TrimLeft(b.String(), "._-"), "-.")
	if name == "" {
		return "task"
	}
	return name
}
