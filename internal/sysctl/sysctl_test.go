package sysctl

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redhatinsights/sysconfig-inspector/internal/hostfile"
)

func newTestReader(t *testing.T, files map[string]string) (*hostfile.Reader, *bytes.Buffer) {
	t.Helper()
	var logs bytes.Buffer
	r := &hostfile.Reader{
		Fs:     afero.NewMemMapFs(),
		Logger: slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug})),
	}
	for path, content := range files {
		require.NoError(t, afero.WriteFile(r.Fs, path, []byte(content), 0644))
	}
	return r, &logs
}

func TestDiscover(t *testing.T) {
	r, _ := newTestReader(t, map[string]string{
		DefaultConfPath:                     "vm.swappiness = 10\n",
		"/etc/sysctl.d/99-custom.conf":      "kernel.sysrq = 0\n",
		"/etc/sysctl.d/10-network.conf":     "net.ipv4.ip_forward = 1\n",
		"/etc/sysctl.d/nested/ignored.conf": "x = 1\n",
	})

	got := Discover(r, DefaultConfPath, DefaultDropInDir)

	assert.Equal(t, []string{
		DefaultConfPath,
		"/etc/sysctl.d/10-network.conf",
		"/etc/sysctl.d/99-custom.conf",
	}, got)
}

func TestDiscover_MissingDropInDir(t *testing.T) {
	r, logs := newTestReader(t, map[string]string{DefaultConfPath: ""})

	assert.Equal(t, []string{DefaultConfPath}, Discover(r, DefaultConfPath, DefaultDropInDir))
	assert.Contains(t, logs.String(), "directory not found")
}

func TestParse(t *testing.T) {
	r, logs := newTestReader(t, map[string]string{
		DefaultConfPath: `# Kernel sysctl configuration
; old style comment
net.ipv4.ip_forward = 0
kernel.sysrq=1
vm.swappiness = 10 # keep low
net.ipv4.conf.all.rp_filter = 1
net.ipv4.ip_forward = 1
this line is broken
kernel.domainname = example.com=1
`,
		"/etc/sysctl.d/empty.conf": "# nothing here\n",
	})

	got := Parse(r, []string{DefaultConfPath, "/etc/sysctl.d/empty.conf"})

	assert.Equal(t, Config{
		DefaultConfPath: {
			"net.ipv4.ip_forward":         "1",
			"kernel.sysrq":                "1",
			"vm.swappiness":               "10",
			"net.ipv4.conf.all.rp_filter": "1",
			"kernel.domainname":           "example.com=1",
		},
		"/etc/sysctl.d/empty.conf": {},
	}, got)
	assert.Contains(t, logs.String(), "this line is broken")
}

func TestParse_MissingFile(t *testing.T) {
	r, logs := newTestReader(t, nil)

	got := Parse(r, []string{DefaultConfPath})

	assert.Equal(t, Config{DefaultConfPath: {}}, got)
	assert.Contains(t, logs.String(), "file not found")
}

func TestStripComment(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "a = 1", want: "a = 1"},
		{in: "a = 1 # comment", want: "a = 1"},
		{in: "a = 1\t; comment", want: "a = 1"},
		{in: "a = value#notacomment", want: "a = value#notacomment"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, stripComment(tt.in), tt.in)
	}
}

func TestCompare(t *testing.T) {
	actual := Config{
		DefaultConfPath:               {"net.ipv4.ip_forward": "0", "kernel.sysrq": "1"},
		"/etc/sysctl.d/10-extra.conf": {"vm.swappiness": "10"},
	}
	target := Config{
		DefaultConfPath:                 {"net.ipv4.ip_forward": "1", "kernel.sysrq": "1", "fs.file-max": "65535"},
		"/etc/sysctl.d/20-missing.conf": {"kernel.panic": "10"},
	}

	res := Compare(actual, target)

	assert.Equal(t, map[string]Diff{
		DefaultConfPath: {
			Matching: Settings{"kernel.sysrq": "1"},
			Missing:  Settings{"net.ipv4.ip_forward": "1", "fs.file-max": "65535"},
			Extra:    Settings{"net.ipv4.ip_forward": "0"},
		},
		"/etc/sysctl.d/10-extra.conf": {
			Matching: Settings{},
			Missing:  Settings{},
			Extra:    Settings{"vm.swappiness": "10"},
		},
		"/etc/sysctl.d/20-missing.conf": {
			Matching: Settings{},
			Missing:  Settings{"kernel.panic": "10"},
			Extra:    Settings{},
		},
	}, res.Files)
	assert.True(t, res.HasDrift())
}

func TestCompare_Effective(t *testing.T) {
	actual := Config{
		"/etc/sysctl.d/10-fwd.conf":   {"net.ipv4.ip_forward": "1", "kernel.sysrq": "0"},
		"/etc/sysctl.d/99-sysrq.conf": {"kernel.sysrq": "1"},
	}
	target := Config{
		DefaultConfPath: {"net.ipv4.ip_forward": "1", "kernel.sysrq": "1"},
	}

	res := Compare(actual, target)

	assert.Equal(t, Settings{"net.ipv4.ip_forward": "1", "kernel.sysrq": "1"}, res.Effective.Matching)
	assert.Empty(t, res.Effective.Missing)
	assert.Empty(t, res.Effective.Extra)
	assert.True(t, res.Files[DefaultConfPath].HasDrift())
}

func TestCompare_EffectiveMainFileWins(t *testing.T) {
	actual := Config{
		DefaultConfPath:             {"net.ipv4.ip_forward": "0"},
		"/etc/sysctl.d/99-fwd.conf": {"net.ipv4.ip_forward": "1"},
	}
	target := Config{
		"/etc/sysctl.d/99-fwd.conf": {"net.ipv4.ip_forward": "1"},
	}

	res := Compare(actual, target)

	assert.Empty(t, res.Effective.Matching)
	assert.Equal(t, Settings{"net.ipv4.ip_forward": "1"}, res.Effective.Missing)
	assert.Equal(t, Settings{"net.ipv4.ip_forward": "0"}, res.Effective.Extra)
}

func TestConfig_ApplyOrder(t *testing.T) {
	config := Config{
		DefaultConfPath:                     {},
		"/etc/sysctl.d/99-custom.conf":      {},
		"/usr/lib/sysctl.d/50-default.conf": {},
		"/etc/sysctl.d/10-network.conf":     {},
	}

	assert.Equal(t, []string{
		"/etc/sysctl.d/10-network.conf",
		"/usr/lib/sysctl.d/50-default.conf",
		"/etc/sysctl.d/99-custom.conf",
		DefaultConfPath,
	}, config.ApplyOrder())
}

func TestCompare_Identical(t *testing.T) {
	config := Config{DefaultConfPath: {"kernel.sysrq": "1"}}

	res := Compare(config, config)

	assert.False(t, res.HasDrift())
	assert.Equal(t, Settings{"kernel.sysrq": "1"}, res.Files[DefaultConfPath].Matching)
}

func TestConfigFromMap(t *testing.T) {
	dec := json.NewDecoder(strings.NewReader(`{
  "/etc/sysctl.conf": {"net.ipv4.ip_forward": 1, "kernel.domainname": "example.com", "kernel.sysrq": true},
  "/etc/sysctl.d/10.conf": {"vm.dirty_ratio": 20.0, "fs.file-max": 65535}
}`))
	dec.UseNumber()
	var doc map[string]any
	require.NoError(t, dec.Decode(&doc))

	got, err := ConfigFromMap(doc)

	require.NoError(t, err)
	assert.Equal(t, Config{
		"/etc/sysctl.conf":      {"net.ipv4.ip_forward": "1", "kernel.domainname": "example.com", "kernel.sysrq": "1"},
		"/etc/sysctl.d/10.conf": {"vm.dirty_ratio": "20.0", "fs.file-max": "65535"},
	}, got)
}

func TestConfigFromMap_Numbers(t *testing.T) {
	got, err := ConfigFromMap(map[string]any{
		DefaultConfPath: map[string]any{"a": int64(1), "b": float64(2), "c": 3, "d": false},
	})

	require.NoError(t, err)
	assert.Equal(t, Settings{"a": "1", "b": "2", "c": "3", "d": "0"}, got[DefaultConfPath])
}

func TestConfigFromMap_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  map[string]any
	}{
		{name: "file is not a table", doc: map[string]any{DefaultConfPath: "net.ipv4.ip_forward = 1"}},
		{name: "list value", doc: map[string]any{DefaultConfPath: map[string]any{"a": []any{1}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ConfigFromMap(tt.doc)
			assert.True(t, errors.Is(err, ErrInvalidTarget), "got %v", err)
		})
	}
}
