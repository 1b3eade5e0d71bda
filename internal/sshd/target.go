package sshd

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

// ErrInvalidTarget is returned when a target document cannot be turned into
// a Tree.
var ErrInvalidTarget = errors.New("invalid sshd target")

// TreeFromMap builds a Tree from a decoded TOML, YAML or JSON document.
// Directives are added in key order. String values are coerced like
// arguments in sshd_config ("22" -> 22, "no" -> false), except for Subsystem
// and AcceptEnv, and a null value stands for a directive without argument.
//
// "Match" holds a list of blocks, each either {criterion, settings} or the
// short form {"<criterion>": {settings}}.
func TreeFromMap(doc map[string]any) (Tree, error) {
	tree := NewTree()

	for _, key := range sortedKeys(doc) {
		if key == matchKey {
			blocks, err := matchBlocksFromAny(doc[key])
			if err != nil {
				return Tree{}, err
			}
			tree.Matches = blocks
			continue
		}
		v, err := valueFromAny(key, doc[key])
		if err != nil {
			return Tree{}, err
		}
		tree.Global.Add(key, v)
	}
	return tree, nil
}

func matchBlocksFromAny(raw any) ([]MatchBlock, error) {
	var items []any
	switch list := raw.(type) {
	case []any:
		items = list
	case []map[string]any:
		for _, m := range list {
			items = append(items, m)
		}
	default:
		return nil, fmt.Errorf("%w: Match must be a list, got %T", ErrInvalidTarget, raw)
	}

	var blocks []MatchBlock
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: Match[%d] must be a table, got %T", ErrInvalidTarget, i, item)
		}
		parsed, err := matchBlocksFromMap(m)
		if err != nil {
			return nil, fmt.Errorf("Match[%d]: %w", i, err)
		}
		blocks = append(blocks, parsed...)
	}
	return blocks, nil
}

func matchBlocksFromMap(m map[string]any) ([]MatchBlock, error) {
	if c, ok := m["criterion"]; ok {
		criterion, ok := c.(string)
		if !ok {
			return nil, fmt.Errorf("%w: criterion must be a string, got %T", ErrInvalidTarget, c)
		}
		settings, err := settingsFromAny(m["settings"])
		if err != nil {
			return nil, err
		}
		return []MatchBlock{{Criterion: strings.TrimSpace(criterion), Settings: settings}}, nil
	}

	var blocks []MatchBlock
	for _, criterion := range sortedKeys(m) {
		settings, err := settingsFromAny(m[criterion])
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, MatchBlock{Criterion: strings.TrimSpace(criterion), Settings: settings})
	}
	return blocks, nil
}

func settingsFromAny(raw any) (*Directives, error) {
	settings := NewDirectives()
	if raw == nil {
		return settings, nil
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: settings must be a table, got %T", ErrInvalidTarget, raw)
	}
	for _, key := range sortedKeys(m) {
		v, err := valueFromAny(key, m[key])
		if err != nil {
			return nil, err
		}
		settings.Add(key, v)
	}
	return settings, nil
}

func valueFromAny(key string, raw any) (Value, error) {
	switch v := raw.(type) {
	case nil:
		return FlagValue(), nil
	case bool:
		return BoolValue(v), nil
	case int:
		return IntValue(int64(v)), nil
	case int64:
		return IntValue(v), nil
	case int32:
		return IntValue(int64(v)), nil
	case uint64:
		if v > math.MaxInt64 {
			break
		}
		return IntValue(int64(v)), nil
	case float64:
		if v == math.Trunc(v) && math.Abs(v) <= math.MaxInt64 {
			return IntValue(int64(v)), nil
		}
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return IntValue(n), nil
		}
	case string:
		if isUntyped(key) {
			return StringValue(v), nil
		}
		return Coerce(v), nil
	}
	return Value{}, fmt.Errorf("%w: %s: unsupported value %v (%T)", ErrInvalidTarget, key, raw, raw)
}

func isUntyped(key string) bool {
	return key == "AcceptEnv" || strings.HasPrefix(key, "Subsystem ")
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
