// Package policy loads target documents that describe how a host is expected
// to be configured. A policy may hold any of the sshd, limits and sysctl
// sections; sections that are absent are nil.
package policy

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/redhatinsights/sysconfig-inspector/internal/limits"
	"github.com/redhatinsights/sysconfig-inspector/internal/sshd"
	"github.com/redhatinsights/sysconfig-inspector/internal/sysctl"
)

// ErrUnsupportedFormat is returned for files whose extension is not one of
// .toml, .yaml, .yml or .json.
var ErrUnsupportedFormat = errors.New("unsupported policy format")

type Policy struct {
	SSHD   *sshd.Tree
	Limits []limits.Entry
	Sysctl sysctl.Config
}

// document is the raw shape shared by every format.
type document struct {
	SSHD   map[string]any   `json:"sshd" yaml:"sshd" toml:"sshd"`
	Limits []map[string]any `json:"limits" yaml:"limits" toml:"limits"`
	Sysctl map[string]any   `json:"sysctl" yaml:"sysctl" toml:"sysctl"`
}

// Load reads the policy at path, choosing the decoder by file extension.
func Load(path string) (Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("cannot read policy: %w", err)
	}

	doc, err := decode(filepath.Ext(path), data)
	if err != nil {
		return Policy{}, fmt.Errorf("cannot decode policy %v: %w", path, err)
	}

	p, err := fromDocument(doc)
	if err != nil {
		return Policy{}, fmt.Errorf("invalid policy %v: %w", path, err)
	}
	return p, nil
}

func decode(ext string, data []byte) (document, error) {
	var doc document
	switch strings.ToLower(ext) {
	case ".toml":
		if _, err := toml.Decode(string(data), &doc); err != nil {
			return doc, err
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return doc, err
		}
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&doc); err != nil {
			return doc, err
		}
	default:
		return doc, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return doc, nil
}

func fromDocument(doc document) (Policy, error) {
	var p Policy

	if doc.SSHD != nil {
		tree, err := sshd.TreeFromMap(doc.SSHD)
		if err != nil {
			return p, fmt.Errorf("sshd: %w", err)
		}
		p.SSHD = &tree
	}

	if doc.Limits != nil {
		entries, err := limits.EntriesFromMaps(doc.Limits)
		if err != nil {
			return p, fmt.Errorf("limits: %w", err)
		}
		p.Limits = entries
	}

	if doc.Sysctl != nil {
		config, err := sysctl.ConfigFromMap(doc.Sysctl)
		if err != nil {
			return p, fmt.Errorf("sysctl: %w", err)
		}
		p.Sysctl = config
	}

	return p, nil
}
