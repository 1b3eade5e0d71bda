package limits

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/redhatinsights/sysconfig-inspector/internal/hostfile"
)

const (
	DefaultConfPath   = "/etc/security/limits.conf"
	DefaultDropInGlob = "/etc/security/limits.d/*.conf"
)

// ErrInvalidTarget is returned when a target document cannot be turned into
// entries.
var ErrInvalidTarget = errors.New("invalid limits target")

// Entry is one limits.conf rule, such as "@admin hard nofile 10240".
type Entry struct {
	File   string `json:"file" yaml:"file"`
	Domain string `json:"domain" yaml:"domain"`
	Type   string `json:"limit_type" yaml:"limit_type"`
	Item   string `json:"limit_item" yaml:"limit_item"`
	Value  string `json:"value" yaml:"value"`
}

// Result holds the output of Compare.
type Result struct {
	Matching []Entry `json:"matching" yaml:"matching"`
	Missing  []Entry `json:"missing_from_actual" yaml:"missing_from_actual"`
	Extra    []Entry `json:"extra_in_actual" yaml:"extra_in_actual"`
}

// NewResult compares actual against target.
func NewResult(actual, target []Entry) Result {
	var r Result
	r.Matching, r.Missing, r.Extra = Compare(actual, target)
	return r
}

func (r Result) HasDrift() bool {
	return len(r.Missing) > 0 || len(r.Extra) > 0
}

// String renders e in limits.conf syntax.
func (e Entry) String() string {
	return strings.Join([]string{e.Domain, e.Type, e.Item, e.Value}, " ")
}

// Discover returns confPath, if it is a regular file, followed by the regular
// files matching dropInGlob in lexicographic order.
func Discover(r *hostfile.Reader, confPath, dropInGlob string) []string {
	var files []string
	if r.IsRegular(confPath) {
		files = append(files, confPath)
	}
	for _, path := range r.Glob(dropInGlob) {
		if r.IsRegular(path) {
			files = append(files, path)
		}
	}
	return files
}

// Parse reads every file in paths. Lines that do not have exactly four
// fields are skipped with a warning.
func Parse(r *hostfile.Reader, paths []string) []Entry {
	var entries []Entry
	for _, path := range paths {
		entries = append(entries, parseLines(r.Logger, hostfile.Sanitize(r.ReadLines(path)), path)...)
	}
	return entries
}

func parseLines(logger *slog.Logger, lines []string, file string) []Entry {
	if logger == nil {
		logger = slog.Default()
	}

	var entries []Entry
	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) != 4 {
			logger.Warn("line does not match the expected format, skipping", "line", line, "file", file)
			continue
		}
		entries = append(entries, Entry{
			File:   file,
			Domain: fields[0],
			Type:   fields[1],
			Item:   fields[2],
			Value:  canonicalValue(fields[3]),
		})
	}
	return entries
}

// canonicalValue renders integers in base 10 so that "007" and 7 compare
// equal; other values are kept as written.
func canonicalValue(raw string) string {
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return strconv.FormatInt(n, 10)
	}
	return raw
}

// Compare returns the entries present in both lists, those only in target
// and those only in actual. Each list is sorted.
func Compare(actual, target []Entry) (matching, missing, extra []Entry) {
	actualSet := toSet(actual)
	targetSet := toSet(target)

	for e := range targetSet {
		if actualSet[e] {
			matching = append(matching, e)
		} else {
			missing = append(missing, e)
		}
	}
	for e := range actualSet {
		if !targetSet[e] {
			extra = append(extra, e)
		}
	}
	Sort(matching)
	Sort(missing)
	Sort(extra)
	return matching, missing, extra
}

func toSet(entries []Entry) map[Entry]bool {
	set := make(map[Entry]bool, len(entries))
	for _, e := range entries {
		set[e] = true
	}
	return set
}

// Sort orders entries by file, domain, item, type and value.
func Sort(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Domain != b.Domain {
			return a.Domain < b.Domain
		}
		if a.Item != b.Item {
			return a.Item < b.Item
		}
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		return a.Value < b.Value
	})
}

// EntriesFromMaps builds entries from a decoded target document. Every map
// needs the keys file, domain, limit_type (or type), limit_item (or item) and
// value.
func EntriesFromMaps(docs []map[string]any) ([]Entry, error) {
	entries := make([]Entry, 0, len(docs))
	for i, doc := range docs {
		var e Entry
		var err error
		fields := []struct {
			dst  *string
			keys []string
		}{
			{&e.File, []string{"file"}},
			{&e.Domain, []string{"domain"}},
			{&e.Type, []string{"limit_type", "type"}},
			{&e.Item, []string{"limit_item", "item"}},
			{&e.Value, []string{"value"}},
		}
		for _, f := range fields {
			if *f.dst, err = stringField(doc, f.keys); err != nil {
				return nil, fmt.Errorf("limits[%d]: %w", i, err)
			}
		}
		e.Value = canonicalValue(e.Value)
		entries = append(entries, e)
	}
	return entries, nil
}

func stringField(doc map[string]any, keys []string) (string, error) {
	for _, key := range keys {
		raw, ok := doc[key]
		if !ok {
			continue
		}
		switch v := raw.(type) {
		case string:
			return v, nil
		case int:
			return strconv.Itoa(v), nil
		case int64:
			return strconv.FormatInt(v, 10), nil
		case float64:
			if v == math.Trunc(v) {
				return strconv.FormatFloat(v, 'f', 0, 64), nil
			}
		case fmt.Stringer:
			return v.String(), nil
		}
		return "", fmt.Errorf("%w: %s: unsupported value %v (%T)", ErrInvalidTarget, key, raw, raw)
	}
	return "", fmt.Errorf("%w: missing %s", ErrInvalidTarget, keys[0])
}
