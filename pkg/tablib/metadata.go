package tablib

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// metaPrefix marks the comment lines systemdtab owns inside generated
// unit files. Everything after it is a key=value pair.
const metaPrefix = "# systemdtab:"

// metaVersionCurrent is the codec revision accepted by this build. The
// version pair is omitted on encode while it is still 1.
const metaVersionCurrent = 1

// Reserved metadata keys. Every field that influences generation has a
// key here so a scanned unit regenerates byte-identically.
const (
	metaKeyVersion     = "version"
	metaKeyType        = "type"
	metaKeyCron        = "cron"
	metaKeyCommand     = "command"
	metaKeyWorkdir     = "workdir"
	metaKeyDescription = "description"
	metaKeyRestart     = "restart"
	metaKeyEnvFile     = "env_file"
	metaKeyRandomDelay = "random_delay"
	metaKeyMemoryMax   = "memory_max"
	metaKeyCPUQuota    = "cpu_quota"
	metaKeyIOWeight    = "io_weight"
	metaKeyTimeoutStop = "timeout_stop"
	metaKeyStartPre    = "exec_start_pre"
	metaKeyStopPost    = "exec_stop_post"
	metaKeyLogLevelMax = "log_level_max"
	metaKeyEnv         = "env"
)

const (
	unitTypeTimer   = "timer"
	unitTypeService = "service"
)

// MetaPair is one metadata line. Pairs keep their file order, and keys
// the codec does not recognize survive decode/encode untouched.
type MetaPair struct {
	Key   string
	Value string
}

func (p MetaPair) line() string {
	return metaPrefix + p.Key + "=" + p.Value
}

// EncodeMetadata renders pairs as the comment block embedded in a unit
// file, one line per pair.
func EncodeMetadata(pairs []MetaPair) []byte {
	var b bytes.Buffer
	for _, p := range pairs {
		b.WriteString(p.line())
		b.WriteByte('\n')
	}
	return b.Bytes()
}

// DecodeMetadata extracts all metadata pairs from unit file text. Lines
// without the metadata prefix are ignored; a prefixed line without a
// key=value shape is a CodecError.
func DecodeMetadata(text []byte) ([]MetaPair, error) {
	var pairs []MetaPair
	sc := bufio.NewScanner(bytes.NewReader(text))
	for sc.Scan() {
		line := sc.Text()
		if !strings.HasPrefix(line, metaPrefix) {
			continue
		}
		key, value, ok := strings.Cut(strings.TrimPrefix(line, metaPrefix), "=")
		if !ok {
			return nil, &CodecError{Line: line, Detail: "missing '='"}
		}
		if key == "" {
			return nil, &CodecError{Line: line, Detail: "empty key"}
		}
		pairs = append(pairs, MetaPair{Key: key, Value: value})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return pairs, nil
}

// UnitMetadata builds the ordered metadata pairs for a unit. Optional
// fields only get a line when set, so absent lines always mean the
// manager's own defaults. Unrecognized pairs carried in Extra are
// appended last.
func UnitMetadata(u *Unit) []MetaPair {
	var pairs []MetaPair
	add := func(key, value string) {
		if value != "" {
			pairs = append(pairs, MetaPair{Key: key, Value: value})
		}
	}
	if u.Kind() == KindPersistentService {
		add(metaKeyType, unitTypeService)
		add(metaKeyCommand, u.Command)
		add(metaKeyWorkdir, u.Workdir)
		add(metaKeyDescription, u.Description)
		add(metaKeyRestart, u.restartPolicy())
		add(metaKeyEnvFile, u.EnvFile)
	} else {
		add(metaKeyType, unitTypeTimer)
		add(metaKeyCron, u.Expr)
		add(metaKeyCommand, u.Command)
		add(metaKeyWorkdir, u.Workdir)
		add(metaKeyDescription, u.Description)
		add(metaKeyRandomDelay, u.RandomDelay)
	}
	add(metaKeyMemoryMax, u.MemoryMax)
	if u.CPUQuota > 0 {
		add(metaKeyCPUQuota, strconv.Itoa(u.CPUQuota))
	}
	if u.IOWeight > 0 {
		add(metaKeyIOWeight, strconv.Itoa(u.IOWeight))
	}
	add(metaKeyTimeoutStop, u.TimeoutStop)
	add(metaKeyStartPre, u.ExecStartPre)
	add(metaKeyStopPost, u.ExecStopPost)
	add(metaKeyLogLevelMax, u.LogLevelMax)
	for _, e := range u.Env {
		add(metaKeyEnv, e)
	}
	return append(pairs, u.Extra...)
}

// UnitFromMetadata reconstructs a unit from its decoded metadata pairs.
// It is the inverse of UnitMetadata for every field that influences
// generation. Kind-incompatible pairs are rejected rather than dropped,
// since they indicate a hand-edited file the tool no longer owns.
func UnitFromMetadata(name string, pairs []MetaPair) (*Unit, error) {
	u := &Unit{Name: name}
	version := metaVersionCurrent
	var kind string
	for _, p := range pairs {
		var err error
		switch p.Key {
		case metaKeyVersion:
			version, err = metaInt(p)
		case metaKeyType:
			kind = p.Value
		case metaKeyCron:
			u.Expr = p.Value
		case metaKeyCommand:
			u.Command = p.Value
		case metaKeyWorkdir:
			u.Workdir = p.Value
		case metaKeyDescription:
			u.Description = p.Value
		case metaKeyRestart:
			u.Restart = p.Value
		case metaKeyEnvFile:
			u.EnvFile = p.Value
		case metaKeyRandomDelay:
			u.RandomDelay = p.Value
		case metaKeyMemoryMax:
			u.MemoryMax = p.Value
		case metaKeyCPUQuota:
			u.CPUQuota, err = metaInt(p)
		case metaKeyIOWeight:
			u.IOWeight, err = metaInt(p)
		case metaKeyTimeoutStop:
			u.TimeoutStop = p.Value
		case metaKeyStartPre:
			u.ExecStartPre = p.Value
		case metaKeyStopPost:
			u.ExecStopPost = p.Value
		case metaKeyLogLevelMax:
			u.LogLevelMax = p.Value
		case metaKeyEnv:
			u.Env = append(u.Env, p.Value)
		default:
			u.Extra = append(u.Extra, p)
		}
		if err != nil {
			return nil, err
		}
	}
	if version != metaVersionCurrent {
		return nil, fmt.Errorf("unsupported metadata version %d", version)
	}
	switch kind {
	case unitTypeTimer:
		if u.Expr == "" {
			return nil, fmt.Errorf("missing %s metadata", metaKeyCron)
		}
		sched, err := Compile(u.Expr)
		if err != nil {
			return nil, err
		}
		if sched.Kind == KindPersistentService {
			return nil, fmt.Errorf("schedule %q contradicts type=%s", u.Expr, unitTypeTimer)
		}
		u.Schedule = sched
		if u.Restart != "" {
			return nil, fmt.Errorf("%s is not valid on a timer unit", metaKeyRestart)
		}
		if u.EnvFile != "" {
			return nil, fmt.Errorf("%s is not valid on a timer unit", metaKeyEnvFile)
		}
	case unitTypeService:
		u.Schedule = &Schedule{Kind: KindPersistentService}
		if u.Expr != "" {
			return nil, fmt.Errorf("%s is not valid on a service unit", metaKeyCron)
		}
		if u.RandomDelay != "" {
			return nil, fmt.Errorf("%s is not valid on a service unit", metaKeyRandomDelay)
		}
	case "":
		return nil, fmt.Errorf("missing %s metadata", metaKeyType)
	default:
		return nil, &CodecError{Line: MetaPair{Key: metaKeyType, Value: kind}.line(), Detail: "unknown unit type"}
	}
	return u, nil
}

func metaInt(p MetaPair) (int, error) {
	n, err := strconv.Atoi(p.Value)
	if err != nil {
		return 0, &CodecError{Line: p.line(), Detail: "not a number"}
	}
	return n, nil
}
