package sysctl

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/redhatinsights/sysconfig-inspector/internal/hostfile"
)

const (
	DefaultConfPath  = "/etc/sysctl.conf"
	DefaultDropInDir = "/etc/sysctl.d/"
)

// ErrInvalidTarget is returned when a target document cannot be turned into
// a Config.
var ErrInvalidTarget = errors.New("invalid sysctl target")

// Settings maps a sysctl key, such as net.ipv4.ip_forward, to its value.
type Settings map[string]string

// Config holds the settings of each file, keyed by file path.
type Config map[string]Settings

// Files returns the file paths of c in lexicographic order.
func (c Config) Files() []string {
	files := make([]string, 0, len(c))
	for f := range c {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}

// ApplyOrder returns the file paths of c in the order sysctl --system applies
// them: drop-in files sorted by file name, then any sysctl.conf last.
func (c Config) ApplyOrder() []string {
	var dropIns, main []string
	for _, f := range c.Files() {
		if filepath.Base(f) == filepath.Base(DefaultConfPath) {
			main = append(main, f)
		} else {
			dropIns = append(dropIns, f)
		}
	}
	sort.SliceStable(dropIns, func(i, j int) bool {
		return filepath.Base(dropIns[i]) < filepath.Base(dropIns[j])
	})
	return append(dropIns, main...)
}

// Effective merges the files of c in the given order, so that a key set in a
// later file replaces the value from an earlier one.
func (c Config) Effective(order []string) Settings {
	merged := Settings{}
	for _, f := range order {
		for k, v := range c[f] {
			merged[k] = v
		}
	}
	return merged
}

// Diff is the three-way comparison of two Settings.
type Diff struct {
	Matching Settings `json:"matching" yaml:"matching"`
	Missing  Settings `json:"missing_from_actual" yaml:"missing_from_actual"`
	Extra    Settings `json:"extra_in_actual" yaml:"extra_in_actual"`
}

// HasDrift reports whether d has any missing or extra settings.
func (d Diff) HasDrift() bool {
	return len(d.Missing) > 0 || len(d.Extra) > 0
}

// Result holds a Diff for every file present on either side and one for the
// effective settings.
type Result struct {
	Files     map[string]Diff `json:"files" yaml:"files"`
	Effective Diff            `json:"effective" yaml:"effective"`
}

// HasDrift reports whether any file differs.
func (r Result) HasDrift() bool {
	for _, d := range r.Files {
		if d.HasDrift() {
			return true
		}
	}
	return r.Effective.HasDrift()
}

// Discover returns confPath, if it is a regular file, followed by the regular
// files of dropInDir in lexicographic order.
func Discover(r *hostfile.Reader, confPath, dropInDir string) []string {
	var files []string
	if r.IsRegular(confPath) {
		files = append(files, confPath)
	}
	return append(files, r.ReadDir(dropInDir)...)
}

// Parse reads every file in paths. A file that yields no settings is still
// present in the result.
func Parse(r *hostfile.Reader, paths []string) Config {
	config := make(Config, len(paths))
	for _, path := range paths {
		lines := hostfile.Sanitize(r.ReadLines(path), "#", ";")
		config[path] = parseLines(r.Logger, lines, path)
	}
	return config
}

func parseLines(logger *slog.Logger, lines []string, file string) Settings {
	if logger == nil {
		logger = slog.Default()
	}

	settings := Settings{}
	for _, line := range lines {
		line = stripComment(line)
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			logger.Warn("skipping line without '='", "line", line, "file", file)
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			logger.Warn("skipping line without key", "line", line, "file", file)
			continue
		}
		settings[key] = strings.TrimSpace(value)
	}
	return settings
}

// stripComment drops a trailing comment started by whitespace followed by
// '#' or ';'.
func stripComment(line string) string {
	for i := 1; i < len(line); i++ {
		if (line[i] == '#' || line[i] == ';') && (line[i-1] == ' ' || line[i-1] == '\t') {
			return strings.TrimSpace(line[:i])
		}
	}
	return line
}

// Compare diffs every file present in actual or target and then the effective
// settings, merged in ApplyOrder. A key whose value differs is reported on
// both sides.
func Compare(actual, target Config) Result {
	res := Result{Files: map[string]Diff{}}

	seen := map[string]bool{}
	var order []string
	for _, c := range []Config{actual, target} {
		for _, f := range c.Files() {
			if !seen[f] {
				seen[f] = true
				order = append(order, f)
			}
		}
	}
	sort.Strings(order)

	for _, f := range order {
		res.Files[f] = diffSettings(actual[f], target[f])
	}
	res.Effective = diffSettings(actual.Effective(actual.ApplyOrder()), target.Effective(target.ApplyOrder()))
	return res
}

func diffSettings(actual, target Settings) Diff {
	d := Diff{Matching: Settings{}, Missing: Settings{}, Extra: Settings{}}
	for k, want := range target {
		got, ok := actual[k]
		switch {
		case !ok:
			d.Missing[k] = want
		case got != want:
			d.Missing[k] = want
			d.Extra[k] = got
		default:
			d.Matching[k] = want
		}
	}
	for k, got := range actual {
		if _, ok := target[k]; !ok {
			d.Extra[k] = got
		}
	}
	return d
}

// ConfigFromMap builds a Config from a decoded target document shaped as
// {file: {key: value}}. Numbers are rendered in base 10 and booleans as
// 1 or 0.
func ConfigFromMap(doc map[string]any) (Config, error) {
	config := make(Config, len(doc))
	for file, raw := range doc {
		table, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: %s: expected a table, got %T", ErrInvalidTarget, file, raw)
		}
		settings := make(Settings, len(table))
		for key, v := range table {
			s, err := stringValue(v)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %s: %v", ErrInvalidTarget, file, key, err)
			}
			settings[key] = s
		}
		config[file] = settings
	}
	return config, nil
}

func stringValue(raw any) (string, error) {
	switch v := raw.(type) {
	case string:
		return v, nil
	case bool:
		if v {
			return "1", nil
		}
		return "0", nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		if v == math.Trunc(v) {
			return strconv.FormatFloat(v, 'f', 0, 64), nil
		}
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case fmt.Stringer:
		return v.String(), nil
	}
	return "", fmt.Errorf("unsupported value %v (%T)", raw, raw)
}
