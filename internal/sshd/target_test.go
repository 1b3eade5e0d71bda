package sshd

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"
)

func TestTreeFromMap_Formats(t *testing.T) {
	expected := Tree{
		Global: dirs(
			"AcceptEnv", StringValue("LANG LC_*"),
			"KerberosAuthentication", FlagValue(),
			"LogLevel", StringValue("INFO"),
			"PasswordAuthentication", BoolValue(false),
			"Port", IntValue(22),
		),
		Matches: []MatchBlock{
			{Criterion: "User admin", Settings: dirs("PermitRootLogin", BoolValue(false), "MaxSessions", IntValue(2))},
		},
	}

	tests := []struct {
		name   string
		decode func(t *testing.T) map[string]any
		flag   bool
	}{
		{
			name: "json",
			flag: true,
			decode: func(t *testing.T) map[string]any {
				doc := `{
  "Port": 22,
  "PasswordAuthentication": false,
  "LogLevel": "INFO",
  "AcceptEnv": "LANG LC_*",
  "KerberosAuthentication": null,
  "Match": [{"criterion": "User admin", "settings": {"PermitRootLogin": false, "MaxSessions": 2}}]
}`
				dec := json.NewDecoder(strings.NewReader(doc))
				dec.UseNumber()
				var m map[string]any
				if err := dec.Decode(&m); err != nil {
					t.Fatal(err)
				}
				return m
			},
		},
		{
			name: "yaml with sshd spelling",
			flag: true,
			decode: func(t *testing.T) map[string]any {
				doc := `
Port: 22
PasswordAuthentication: "no"
LogLevel: INFO
AcceptEnv: LANG LC_*
KerberosAuthentication: ~
Match:
  - criterion: User admin
    settings:
      PermitRootLogin: "no"
      MaxSessions: "2"
`
				var m map[string]any
				if err := yaml.Unmarshal([]byte(doc), &m); err != nil {
					t.Fatal(err)
				}
				return m
			},
		},
		{
			name: "toml",
			decode: func(t *testing.T) map[string]any {
				doc := `
Port = 22
PasswordAuthentication = false
LogLevel = "INFO"
AcceptEnv = "LANG LC_*"

[[Match]]
criterion = "User admin"
[Match.settings]
PermitRootLogin = false
MaxSessions = 2
`
				var m map[string]any
				if _, err := toml.Decode(doc, &m); err != nil {
					t.Fatal(err)
				}
				return m
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := TreeFromMap(tt.decode(t))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			want := expected
			if !tt.flag {
				// TOML has no null, so a flag directive cannot be expressed.
				want = Tree{Global: dirs(
					"AcceptEnv", StringValue("LANG LC_*"),
					"LogLevel", StringValue("INFO"),
					"PasswordAuthentication", BoolValue(false),
					"Port", IntValue(22),
				), Matches: expected.Matches}
			}
			if diff := cmp.Diff(want, got, treeOpts); diff != "" {
				t.Errorf("TreeFromMap() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTreeFromMap_ShortMatchForm(t *testing.T) {
	doc := map[string]any{
		"Match": []any{
			map[string]any{
				"address 8.8.8.8/8,9.9.9.9/8": map[string]any{"PubKeyAuthentication": true},
			},
		},
	}

	got, err := TreeFromMap(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Tree{Matches: []MatchBlock{
		{Criterion: "address 8.8.8.8/8,9.9.9.9/8", Settings: dirs("PubKeyAuthentication", BoolValue(true))},
	}}
	if diff := cmp.Diff(want, got, treeOpts); diff != "" {
		t.Errorf("TreeFromMap() mismatch (-want +got):\n%s", diff)
	}
}

func TestTreeFromMap_UntypedKeysStayStrings(t *testing.T) {
	got, err := TreeFromMap(map[string]any{
		"Subsystem sftp": "123",
		"AcceptEnv":      "yes",
		"MaxStartups":    "10",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := dirs(
		"AcceptEnv", StringValue("yes"),
		"MaxStartups", IntValue(10),
		"Subsystem sftp", StringValue("123"),
	)
	if diff := cmp.Diff(want, got.Global, treeOpts); diff != "" {
		t.Errorf("TreeFromMap() mismatch (-want +got):\n%s", diff)
	}
}

func TestTreeFromMap_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  map[string]any
	}{
		{name: "fractional number", doc: map[string]any{"Port": 22.5}},
		{name: "list value", doc: map[string]any{"Port": []any{22}}},
		{name: "match is not a list", doc: map[string]any{"Match": "User admin"}},
		{name: "match item is not a table", doc: map[string]any{"Match": []any{"User admin"}}},
		{name: "criterion is not a string", doc: map[string]any{"Match": []any{map[string]any{"criterion": 1}}}},
		{name: "settings is not a table", doc: map[string]any{"Match": []any{map[string]any{"criterion": "User a", "settings": "x"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := TreeFromMap(tt.doc)
			if !errors.Is(err, ErrInvalidTarget) {
				t.Errorf("expected ErrInvalidTarget, got %v", err)
			}
		})
	}
}
