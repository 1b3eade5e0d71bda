// Package report renders inspection results as colored text, JSON or YAML.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Format selects how a Report is written.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ErrUnknownFormat is returned by ParseFormat for names other than text, json
// and yaml.
var ErrUnknownFormat = errors.New("unknown output format")

// ParseFormat returns the Format named s, ignoring case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Report is the outcome of one inspection. Config holds what was read from
// the host and Comparison, when set, its difference from a target.
type Report struct {
	ID          uuid.UUID `json:"id" yaml:"id"`
	Host        string    `json:"host" yaml:"host"`
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`
	Inspector   string    `json:"inspector" yaml:"inspector"`
	Files       []string  `json:"files" yaml:"files"`
	Config      any       `json:"config,omitempty" yaml:"config,omitempty"`
	Comparison  any       `json:"comparison,omitempty" yaml:"comparison,omitempty"`
}

// New returns a Report with a fresh random ID generated now.
func New(inspector, host string) Report {
	return Report{
		ID:          uuid.New(),
		Host:        host,
		GeneratedAt: time.Now().UTC(),
		Inspector:   inspector,
	}
}

// Write renders r to w in the given format.
func Write(w io.Writer, format Format, r Report) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	case FormatText, "":
		return writeText(w, r)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}
