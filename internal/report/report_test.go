package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/redhatinsights/sysconfig-inspector/internal/limits"
	"github.com/redhatinsights/sysconfig-inspector/internal/sshd"
	"github.com/redhatinsights/sysconfig-inspector/internal/sysctl"
)

var testID = uuid.MustParse("3b241101-e2bb-4255-8caf-4136c566a962")

func testReport(config, comparison any) Report {
	return Report{
		ID:          testID,
		Host:        "web01.example.com",
		GeneratedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Inspector:   "sshd",
		Files:       []string{"/etc/ssh/sshd_config"},
		Config:      config,
		Comparison:  comparison,
	}
}

func sshdTree(t *testing.T) sshd.Tree {
	t.Helper()
	tree, err := sshd.TreeFromMap(map[string]any{
		"Port":                   22,
		"KerberosAuthentication": nil,
		"Subsystem sftp":         "/usr/libexec/openssh/sftp-server",
		"Match": []any{
			map[string]any{"criterion": "User admin", "settings": map[string]any{"PermitRootLogin": "yes"}},
		},
	})
	require.NoError(t, err)
	return tree
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"text", "JSON", " yaml "} {
		_, err := ParseFormat(s)
		assert.NoError(t, err, s)
	}
	_, err := ParseFormat("xml")
	assert.True(t, errors.Is(err, ErrUnknownFormat))
}

func TestNew(t *testing.T) {
	a := New("limits", "host")
	b := New("limits", "host")

	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, "limits", a.Inspector)
	assert.False(t, a.GeneratedAt.IsZero())
}

func TestWrite_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, testReport(sshdTree(t), nil)))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, testID.String(), got["id"])
	assert.Equal(t, "web01.example.com", got["host"])
	assert.Equal(t, "2024-05-01T12:00:00Z", got["generated_at"])
	assert.Equal(t, map[string]any{
		"KerberosAuthentication": nil,
		"Port":                   float64(22),
		"Subsystem sftp":         "/usr/libexec/openssh/sftp-server",
		"Match": []any{
			map[string]any{"criterion": "User admin", "settings": map[string]any{"PermitRootLogin": true}},
		},
	}, got["config"])
	assert.NotContains(t, got, "comparison")
}

func TestWrite_YAML(t *testing.T) {
	actual := sysctl.Config{"/etc/sysctl.conf": {"kernel.sysrq": "1"}}
	target := sysctl.Config{"/etc/sysctl.conf": {"kernel.sysrq": "0"}}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatYAML, testReport(actual, sysctl.Compare(actual, target))))

	var got struct {
		ID         string `yaml:"id"`
		Comparison struct {
			Files map[string]struct {
				Missing map[string]string `yaml:"missing_from_actual"`
				Extra   map[string]string `yaml:"extra_in_actual"`
			} `yaml:"files"`
		} `yaml:"comparison"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, testID.String(), got.ID)
	assert.Equal(t, map[string]string{"kernel.sysrq": "0"}, got.Comparison.Files["/etc/sysctl.conf"].Missing)
	assert.Equal(t, map[string]string{"kernel.sysrq": "1"}, got.Comparison.Files["/etc/sysctl.conf"].Extra)
}

func TestWrite_Text(t *testing.T) {
	color.NoColor = true

	actual := sshdTree(t)
	target, err := sshd.TreeFromMap(map[string]any{"Port": 2222, "KerberosAuthentication": nil})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatText, testReport(actual, sshd.Compare(actual, target))))

	want := `sshd report
host: web01.example.com
generated: 2024-05-01T12:00:00Z
id: 3b241101-e2bb-4255-8caf-4136c566a962

files
  /etc/ssh/sshd_config

configuration
    KerberosAuthentication
    Port 22
    Subsystem sftp /usr/libexec/openssh/sftp-server
    Match User admin
        PermitRootLogin yes

comparison
  matching:
=   KerberosAuthentication
  missing from actual:
-   Port 2222
  extra in actual:
+   Port 22
+   Subsystem sftp /usr/libexec/openssh/sftp-server
+   Match User admin
+       PermitRootLogin yes
`
	assert.Equal(t, want, buf.String())
}

func TestWrite_TextLimits(t *testing.T) {
	color.NoColor = true

	core := limits.Entry{File: "/etc/security/limits.conf", Domain: "*", Type: "soft", Item: "core", Value: "0"}
	nofile := limits.Entry{File: "/etc/security/limits.d/10-admin.conf", Domain: "@admin", Type: "hard", Item: "nofile", Value: "10240"}
	r := testReport(nil, limits.NewResult([]limits.Entry{core, nofile}, []limits.Entry{core}))
	r.Inspector = "limits"
	r.Files = nil

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatText, r))

	assert.Contains(t, buf.String(), `  matching:
    /etc/security/limits.conf
=     * soft core 0
  missing from actual:
  extra in actual:
    /etc/security/limits.d/10-admin.conf
+     @admin hard nofile 10240
`)
}

func TestWrite_Errors(t *testing.T) {
	var buf bytes.Buffer
	assert.True(t, errors.Is(Write(&buf, Format("xml"), Report{}), ErrUnknownFormat))
	assert.Error(t, Write(&buf, FormatText, Report{Config: 42}))
}
