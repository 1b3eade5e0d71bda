package sshd

import (
	"github.com/redhatinsights/sysconfig-inspector/internal/hostfile"
)

// Parse reads the configuration rooted at primary.
func Parse(r *hostfile.Reader, primary string) Tree {
	return NewParser(r, primary).ParseFile(primary)
}

// DiscoverConfigFiles returns primary, if it is a regular file, followed by
// every regular file it pulls in through Include directives.
func DiscoverConfigFiles(r *hostfile.Reader, primary string) []string {
	p := NewParser(r, primary)
	p.ParseFile(primary)
	return p.Files()
}

// Inspector holds the parsed configuration of one host.
type Inspector struct {
	path   string
	files  []string
	config Tree
}

// NewInspector parses the configuration at path, or at DefaultConfigPath when
// path is empty.
func NewInspector(r *hostfile.Reader, path string) *Inspector {
	if path == "" {
		path = DefaultConfigPath
	}
	p := NewParser(r, path)
	config := p.ParseFile(path)
	return &Inspector{
		path:   path,
		files:  p.Files(),
		config: config,
	}
}

func (i *Inspector) Path() string { return i.path }

// ConfigFiles lists the files the configuration was read from.
func (i *Inspector) ConfigFiles() []string {
	return append([]string(nil), i.files...)
}

func (i *Inspector) Config() Tree { return i.config }

// CompareTo compares the host configuration with target.
func (i *Inspector) CompareTo(target Tree) Result {
	return Compare(i.config, target)
}
