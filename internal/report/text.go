package report

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/fatih/color"

	"github.com/redhatinsights/sysconfig-inspector/internal/limits"
	"github.com/redhatinsights/sysconfig-inspector/internal/sshd"
	"github.com/redhatinsights/sysconfig-inspector/internal/sysctl"
)

// Markers prefixed to compared lines in text output.
const (
	markMatching = "="
	markMissing  = "-"
	markExtra    = "+"
)

var (
	headingColor  = color.New(color.Bold)
	matchingColor = color.New(color.FgGreen)
	missingColor  = color.New(color.FgRed)
	extraColor    = color.New(color.FgYellow)
)

// textWriter keeps the first write error so that rendering code does not
// have to check every line.
type textWriter struct {
	w   io.Writer
	err error
}

func (t *textWriter) printf(c *color.Color, format string, args ...any) {
	if t.err != nil {
		return
	}
	if c == nil {
		_, t.err = fmt.Fprintf(t.w, format, args...)
		return
	}
	_, t.err = c.Fprintf(t.w, format, args...)
}

func writeText(w io.Writer, r Report) error {
	t := &textWriter{w: w}

	t.printf(headingColor, "%s report", r.Inspector)
	t.printf(nil, "\n")
	if r.Host != "" {
		t.printf(nil, "host: %s\n", r.Host)
	}
	if !r.GeneratedAt.IsZero() {
		t.printf(nil, "generated: %s\n", r.GeneratedAt.Format(time.RFC3339))
	}
	t.printf(nil, "id: %s\n", r.ID)

	if r.Files != nil {
		t.printf(nil, "\n")
		t.printf(headingColor, "files")
		t.printf(nil, "\n")
		for _, f := range r.Files {
			t.printf(nil, "  %s\n", f)
		}
	}

	if r.Config != nil {
		t.printf(nil, "\n")
		t.printf(headingColor, "configuration")
		t.printf(nil, "\n")
		if err := t.value(r.Config, nil, ""); err != nil {
			return err
		}
	}

	if r.Comparison != nil {
		t.printf(nil, "\n")
		t.printf(headingColor, "comparison")
		t.printf(nil, "\n")
		if err := t.comparison(r.Comparison); err != nil {
			return err
		}
	}
	return t.err
}

// value renders a configuration, each line prefixed with mark.
func (t *textWriter) value(v any, c *color.Color, mark string) error {
	switch v := v.(type) {
	case sshd.Tree:
		t.sshdTree(v, c, mark)
	case *sshd.Tree:
		t.sshdTree(*v, c, mark)
	case []limits.Entry:
		t.limitEntries(v, c, mark)
	case sysctl.Config:
		for _, f := range v.Files() {
			t.printf(nil, "  %s\n", f)
			t.sysctlSettings(v[f], c, mark)
		}
	case sysctl.Settings:
		t.sysctlSettings(v, c, mark)
	default:
		return fmt.Errorf("cannot render %T as text", v)
	}
	return t.err
}

func (t *textWriter) comparison(v any) error {
	switch v := v.(type) {
	case sshd.Result:
		t.section("matching", v.Matching, matchingColor, markMatching)
		t.section("missing from actual", v.Missing, missingColor, markMissing)
		t.section("extra in actual", v.Extra, extraColor, markExtra)
	case limits.Result:
		t.section("matching", v.Matching, matchingColor, markMatching)
		t.section("missing from actual", v.Missing, missingColor, markMissing)
		t.section("extra in actual", v.Extra, extraColor, markExtra)
	case sysctl.Result:
		files := make([]string, 0, len(v.Files))
		for f := range v.Files {
			files = append(files, f)
		}
		sort.Strings(files)
		for _, f := range files {
			t.printf(nil, "  %s\n", f)
			t.sysctlDiff(v.Files[f])
		}
		t.printf(nil, "  effective\n")
		t.sysctlDiff(v.Effective)
	default:
		return fmt.Errorf("cannot render %T as text", v)
	}
	return t.err
}

func (t *textWriter) section(title string, v any, c *color.Color, mark string) {
	t.printf(nil, "  %s:\n", title)
	if err := t.value(v, c, mark); err != nil && t.err == nil {
		t.err = err
	}
}

func (t *textWriter) line(c *color.Color, mark, indent, format string, args ...any) {
	if mark != "" {
		t.printf(c, "%s %s"+format+"\n", append([]any{mark, indent}, args...)...)
		return
	}
	t.printf(c, "  "+indent+format+"\n", args...)
}

func (t *textWriter) sshdTree(tree sshd.Tree, c *color.Color, mark string) {
	t.directives(tree.Global, c, mark, "  ")
	for _, block := range tree.Matches {
		t.line(c, mark, "  ", "Match %s", block.Criterion)
		t.directives(block.Settings, c, mark, "      ")
	}
}

func (t *textWriter) directives(d *sshd.Directives, c *color.Color, mark, indent string) {
	d.Each(func(key string, v sshd.Value) {
		if v.IsFlag() {
			t.line(c, mark, indent, "%s", key)
			return
		}
		t.line(c, mark, indent, "%s %s", key, v)
	})
}

func (t *textWriter) limitEntries(entries []limits.Entry, c *color.Color, mark string) {
	file := ""
	for _, e := range entries {
		if e.File != file {
			file = e.File
			t.printf(nil, "    %s\n", file)
		}
		t.line(c, mark, "    ", "%s", e)
	}
}

func (t *textWriter) sysctlSettings(s sysctl.Settings, c *color.Color, mark string) {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		t.line(c, mark, "    ", "%s = %s", k, s[k])
	}
}

func (t *textWriter) sysctlDiff(d sysctl.Diff) {
	t.sysctlSettings(d.Matching, matchingColor, markMatching)
	t.sysctlSettings(d.Missing, missingColor, markMissing)
	t.sysctlSettings(d.Extra, extraColor, markExtra)
}
