package hostfile

import (
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// Reader reads host files from Fs. The zero value is not usable; use
// NewReader or set Fs explicitly.
type Reader struct {
	Fs     afero.Fs
	Logger *slog.Logger
}

// NewReader returns a Reader over the real host filesystem.
func NewReader(logger *slog.Logger) *Reader {
	return &Reader{Fs: afero.NewOsFs(), Logger: logger}
}

func (r *Reader) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

// ReadLines returns the lines of the file at path without line terminators.
// A missing or unreadable file yields an empty list.
func (r *Reader) ReadLines(path string) []string {
	info, err := r.Fs.Stat(path)
	if err != nil {
		r.logReadError(path, err)
		return nil
	}
	if info.IsDir() {
		r.logger().Error("could not read file", "file", path, "error", "is a directory")
		return nil
	}

	data, err := afero.ReadFile(r.Fs, path)
	if err != nil {
		r.logReadError(path, err)
		return nil
	}
	return SplitLines(string(data))
}

func (r *Reader) logReadError(path string, err error) {
	if errors.Is(err, fs.ErrNotExist) {
		r.logger().Warn("file not found", "file", path)
		return
	}
	r.logger().Error("could not read file", "file", path, "error", err)
}

// IsRegular reports whether path exists and is a regular file.
func (r *Reader) IsRegular(path string) bool {
	info, err := r.Fs.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

// Glob expands pattern and returns the matches in lexicographic order.
// A malformed pattern is logged and matches nothing.
func (r *Reader) Glob(pattern string) []string {
	matches, err := afero.Glob(r.Fs, pattern)
	if err != nil {
		r.logger().Warn("invalid glob pattern", "pattern", pattern, "error", err)
		return nil
	}
	sort.Strings(matches)
	return matches
}

// ReadDir returns the paths of the regular files directly inside dir, in
// lexicographic order. A missing directory yields an empty list.
func (r *Reader) ReadDir(dir string) []string {
	entries, err := afero.ReadDir(r.Fs, dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			r.logger().Debug("directory not found", "dir", dir)
		} else {
			r.logger().Error("could not read directory", "dir", dir, "error", err)
		}
		return nil
	}

	var paths []string
	for _, entry := range entries {
		if !entry.Mode().IsRegular() {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)
	return paths
}

// SplitLines splits data on newlines, dropping a trailing carriage return
// from each line.
func SplitLines(data string) []string {
	if data == "" {
		return nil
	}
	lines := strings.Split(data, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
