package sshd

import (
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/redhatinsights/sysconfig-inspector/internal/hostfile"
)

// Parser reads sshd configuration files into a Tree. A Parser is not safe for
// concurrent use.
type Parser struct {
	Reader *hostfile.Reader
	Logger *slog.Logger
	// BaseDir anchors relative Include patterns, as /etc/ssh does for sshd.
	BaseDir string

	files []string
	stack []string
}

// NewParser returns a Parser resolving relative includes against the
// directory of primary.
func NewParser(r *hostfile.Reader, primary string) *Parser {
	return &Parser{
		Reader:  r,
		Logger:  r.Logger,
		BaseDir: filepath.Dir(primary),
	}
}

func (p *Parser) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}

// Files returns every regular file read by the last ParseFile or ParseLines
// call, in first-read order. A file included more than once is listed once.
func (p *Parser) Files() []string {
	return append([]string(nil), p.files...)
}

// ParseFile reads, sanitizes and parses the file at path, following Include
// directives. A missing or unreadable file yields an empty Tree.
func (p *Parser) ParseFile(path string) Tree {
	p.files = nil
	return p.parseFile(path)
}

// ParseLines parses already sanitized lines. source names them in
// diagnostics. Include directives are still expanded from the filesystem.
func (p *Parser) ParseLines(lines []string, source string) Tree {
	p.files = nil
	return p.parseLines(lines, source)
}

func (p *Parser) parseFile(path string) Tree {
	clean := filepath.Clean(path)
	for _, open := range p.stack {
		if open == clean {
			p.logger().Warn("skipping cyclic include", "file", path, "included-from", p.stack[len(p.stack)-1])
			return NewTree()
		}
	}
	p.stack = append(p.stack, clean)
	defer func() { p.stack = p.stack[:len(p.stack)-1] }()

	if p.Reader.IsRegular(path) && !p.seen(clean) {
		p.files = append(p.files, path)
	}
	lines := hostfile.Sanitize(p.Reader.ReadLines(path))
	return p.parseLines(lines, path)
}

func (p *Parser) seen(clean string) bool {
	for _, f := range p.files {
		if filepath.Clean(f) == clean {
			return true
		}
	}
	return false
}

func (p *Parser) parseLines(lines []string, source string) Tree {
	tree := NewTree()
	var block *MatchBlock

	for _, line := range lines {
		word, rest := splitWord(line)
		switch {
		case strings.EqualFold(word, matchKeyword):
			if block != nil {
				tree.Matches = append(tree.Matches, *block)
			}
			if rest == "" {
				p.logger().Warn("Match directive without criteria", "line", line, "file", source)
			}
			block = &MatchBlock{Criterion: rest, Settings: NewDirectives()}
		case block != nil:
			// Include is not expanded inside Match blocks; it is kept as an
			// ordinary setting.
			p.addDirective(block.Settings, line, source)
		case strings.EqualFold(word, includeKeyword):
			p.include(&tree, rest, line, source)
		default:
			p.addDirective(tree.Global, line, source)
		}
	}
	if block != nil {
		tree.Matches = append(tree.Matches, *block)
	}
	return tree
}

func (p *Parser) addDirective(dst *Directives, line, source string) {
	key, value, ok := ParseDirective(line)
	if !ok {
		p.logger().Warn("skipping malformed directive", "line", line, "file", source)
		return
	}
	dst.Add(key, value)
}

// include expands pattern and merges every matched file into tree. Keys
// already in tree win; Match blocks are appended in glob order.
func (p *Parser) include(tree *Tree, pattern, line, source string) {
	if pattern == "" {
		p.logger().Warn("Include directive without pattern", "line", line, "file", source)
		return
	}
	tree.Global.Add(includeKey, StringValue(pattern))

	for _, path := range p.Reader.Glob(p.resolve(pattern)) {
		if !p.Reader.IsRegular(path) {
			p.logger().Debug("skipping include match that is not a regular file", "path", path, "pattern", pattern)
			continue
		}
		included := p.parseFile(path)
		for _, key := range included.Global.Keys() {
			v, _ := included.Global.Get(key)
			tree.Global.Add(key, v)
		}
		tree.Matches = append(tree.Matches, included.Matches...)
	}
}

func (p *Parser) resolve(pattern string) string {
	if filepath.IsAbs(pattern) || p.BaseDir == "" {
		return pattern
	}
	return filepath.Join(p.BaseDir, pattern)
}
