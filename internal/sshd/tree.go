package sshd

import (
	"bytes"
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is where sshd reads its configuration from.
const DefaultConfigPath = "/etc/ssh/sshd_config"

// Reserved directive names. "Match" always opens a block and is never stored
// as a directive; "Include" is stored with its pattern but never compared.
const (
	matchKeyword   = "match"
	includeKeyword = "include"
	includeKey     = "Include"
	matchKey       = "Match"
)

// Directives maps directive names to values and remembers insertion order.
// Read methods accept a nil receiver and behave as on an empty set.
type Directives struct {
	keys   []string
	values map[string]Value
}

func NewDirectives() *Directives {
	return &Directives{values: map[string]Value{}}
}

// Add stores v under key unless key is already present, and reports whether
// it did. Unlike the read methods it needs a non-nil receiver.
func (d *Directives) Add(key string, v Value) bool {
	if _, ok := d.values[key]; ok {
		return false
	}
	if d.values == nil {
		d.values = map[string]Value{}
	}
	d.keys = append(d.keys, key)
	d.values[key] = v
	return true
}

func (d *Directives) Get(key string) (Value, bool) {
	if d == nil {
		return Value{}, false
	}
	v, ok := d.values[key]
	return v, ok
}

func (d *Directives) Has(key string) bool {
	_, ok := d.Get(key)
	return ok
}

// Keys returns the directive names in insertion order.
func (d *Directives) Keys() []string {
	if d == nil {
		return nil
	}
	return append([]string(nil), d.keys...)
}

func (d *Directives) Len() int {
	if d == nil {
		return 0
	}
	return len(d.keys)
}

// Each calls fn for every directive in insertion order.
func (d *Directives) Each(fn func(key string, v Value)) {
	if d == nil {
		return
	}
	for _, k := range d.keys {
		fn(k, d.values[k])
	}
}

// Map returns the directives as a plain map.
func (d *Directives) Map() map[string]Value {
	out := make(map[string]Value, d.Len())
	for _, k := range d.Keys() {
		out[k] = d.values[k]
	}
	return out
}

func (d *Directives) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range d.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(d.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (d *Directives) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, k := range d.Keys() {
		if err := appendYAMLPair(node, k, d.values[k].Interface()); err != nil {
			return nil, err
		}
	}
	return node, nil
}

func appendYAMLPair(node *yaml.Node, key string, value any) error {
	keyNode := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}
	valueNode := &yaml.Node{}
	if err := valueNode.Encode(value); err != nil {
		return err
	}
	node.Content = append(node.Content, keyNode, valueNode)
	return nil
}

// MatchBlock is a group of directives guarded by a Match criterion, such as
// "User admin".
type MatchBlock struct {
	Criterion string      `json:"criterion" yaml:"criterion"`
	Settings  *Directives `json:"settings" yaml:"settings"`
}

// Tree is a parsed sshd configuration.
type Tree struct {
	Global  *Directives
	Matches []MatchBlock
}

func NewTree() Tree {
	return Tree{Global: NewDirectives()}
}

// Include returns the pattern of the first Include directive, if any.
func (t Tree) Include() (string, bool) {
	v, ok := t.Global.Get(includeKey)
	if !ok || v.Kind() != KindString {
		return "", false
	}
	return v.Str(), true
}

// IsEmpty reports whether the tree holds no directives and no Match blocks.
func (t Tree) IsEmpty() bool {
	return t.Global.Len() == 0 && len(t.Matches) == 0
}

// MarshalJSON renders the tree as one object: the global directives in order,
// followed by a "Match" list when there are Match blocks.
func (t Tree) MarshalJSON() ([]byte, error) {
	d := t.Global
	if d == nil {
		d = NewDirectives()
	}
	global, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	if len(t.Matches) == 0 {
		return global, nil
	}
	matches, err := json.Marshal(t.Matches)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Write(global[:len(global)-1])
	if t.Global.Len() > 0 {
		buf.WriteByte(',')
	}
	buf.WriteString(`"` + matchKey + `":`)
	buf.Write(matches)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (t Tree) MarshalYAML() (any, error) {
	v, err := t.Global.MarshalYAML()
	if err != nil {
		return nil, err
	}
	node := v.(*yaml.Node)
	if len(t.Matches) > 0 {
		if err := appendYAMLPair(node, matchKey, t.Matches); err != nil {
			return nil, err
		}
	}
	return node, nil
}
