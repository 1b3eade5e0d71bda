package sshd

import (
	"encoding/json"
	"strconv"
)

// Kind is the type of a Value.
type Kind int

const (
	// KindFlag is a directive written without an argument.
	KindFlag Kind = iota
	KindBool
	KindInt
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindFlag:
		return "flag"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindString:
		return "string"
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is the typed value of a directive. Values are comparable with ==,
// and values of different kinds are never equal: IntValue(1) != BoolValue(true).
// The zero Value is the flag value.
type Value struct {
	kind Kind
	b    bool
	i    int64
	s    string
}

func FlagValue() Value { return Value{kind: KindFlag} }
func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }
func IntValue(i int64) Value { return Value{kind: KindInt, i: i} }
func StringValue(s string) Value { return Value{kind: KindString, s: s} }
func (v Value) Kind() Kind { return v.kind }
func (v Value) Bool() bool { return v.b }
func (v Value) Int() int64 { return v.i }
func (v Value) Str() string { return v.s }
func (v Value) IsFlag() bool { return v.kind == KindFlag }

// Interface returns the value as nil, bool, int64 or string.
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindString:
		return v.s
	}
	return nil
}

// String renders the value the way it would be written in sshd_config.
func (v Value) String() string {
	switch v.kind {
	case KindBool:
		if v.b {
			return "yes"
		}
		return "no"
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindString:
		return v.s
	}
	return ""
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

func (v Value) MarshalYAML() (any, error) {
	return v.Interface(), nil
}
