package sshd

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/spf13/afero"

	"github.com/redhatinsights/sysconfig-inspector/internal/hostfile"
)

// treeOpts compares Directives by content and treats nil and empty slices
// alike.
var treeOpts = cmp.Options{
	cmp.Transformer("directives", func(d *Directives) map[string]Value { return d.Map() }),
	cmp.Comparer(func(a, b Value) bool { return a == b }),
	cmpopts.EquateEmpty(),
}

// dirs builds Directives from alternating keys and values.
func dirs(kv ...any) *Directives {
	d := NewDirectives()
	for i := 0; i < len(kv); i += 2 {
		d.Add(kv[i].(string), kv[i+1].(Value))
	}
	return d
}

// newTestReader returns a Reader over an in-memory filesystem holding files,
// and the buffer its logger writes to.
func newTestReader(t *testing.T, files map[string]string) (*hostfile.Reader, *bytes.Buffer) {
	t.Helper()
	fs := afero.NewMemMapFs()
	for path, content := range files {
		if err := afero.WriteFile(fs, path, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write %s: %v", path, err)
		}
	}
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return &hostfile.Reader{Fs: fs, Logger: logger}, &logs
}
