// Package parser reads Markdown test-suite files. A suite file lists
// the P4 programs to compile as a checklist, with optional YAML
// frontmatter supplying suite-wide defaults:
//
//	---
//	compiler: ./p4c-of
//	timeout: 5m
//	args: "-DTEST"
//	---
//	# VLAN tests
//
//	- [ ] vlans/snvs.p4
//	- [ ] acl/basic.p4 -- -DVERBOSE
//
// Text after " -- " in an entry is split into extra per-entry compiler
// arguments. Prose outside list items is ignored.
package parser

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"
)

// Entry is one test in a suite: a P4 file plus extra compiler
// arguments for that file only.
type Entry struct {
	File string
	Args []string
}

// Suite is a parsed suite file.
type Suite struct {
	// Compiler overrides the configured compiler when non-empty.
	Compiler string

	// Timeout overrides the configured timeout when non-zero.
	Timeout time.Duration

	// Args are extra compiler arguments applied to every entry.
	Args []string

	// Entries are the tests, in file order.
	Entries []Entry
}

// SuiteParser parses Markdown suite files.
type SuiteParser struct {
	markdown goldmark.Markdown
}

// NewSuiteParser creates a SuiteParser.
func NewSuiteParser() *SuiteParser {
	return &SuiteParser{
		markdown: goldmark.New(),
	}
}

// Parse reads a suite file from r.
func (p *SuiteParser) Parse(r io.Reader) (*Suite, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read content: %w", err)
	}

	suite := &Suite{}
	content, frontmatter := extractFrontmatter(content)
	if frontmatter != nil {
		if err := parseSuiteConfig(frontmatter, suite); err != nil {
			return nil, fmt.Errorf("failed to parse frontmatter: %w", err)
		}
	}

	doc := p.markdown.Parser().Parse(text.NewReader(content))

	err = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		item, ok := n.(*ast.ListItem)
		if !ok {
			return ast.WalkContinue, nil
		}

		line := strings.TrimSpace(extractText(item, content))
		entry, ok := parseEntry(line)
		if ok {
			suite.Entries = append(suite.Entries, entry)
		}
		// Nested lists under this item were already covered by
		// extractText; skip them.
		return ast.WalkSkipChildren, nil
	})
	if err != nil {
		return nil, err
	}

	return suite, nil
}

// parseEntry interprets one checklist line. Returns false for lines
// that do not name a file.
func parseEntry(line string) (Entry, bool) {
	// Strip an optional checkbox marker.
	for _, marker := range []string{"[ ]", "[x]", "[X]"} {
		if strings.HasPrefix(line, marker) {
			line = strings.TrimSpace(line[len(marker):])
			break
		}
	}
	if line == "" {
		return Entry{}, false
	}

	file, argStr, _ := strings.Cut(line, " -- ")
	file = strings.TrimSpace(file)
	if file == "" || strings.ContainsAny(file, " \t") {
		return Entry{}, false
	}

	return Entry{File: file, Args: strings.Fields(argStr)}, true
}

// extractText extracts the plain text of a node and its descendants.
func extractText(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			if t, ok := c.(*ast.Text); ok {
				buf.Write(t.Segment.Value(source))
			}
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}

// extractFrontmatter extracts YAML frontmatter from markdown content.
// Returns the content without frontmatter and the frontmatter bytes.
func extractFrontmatter(content []byte) ([]byte, []byte) {
	lines := bytes.Split(content, []byte("\n"))

	if len(lines) < 3 || !bytes.Equal(bytes.TrimSpace(lines[0]), []byte("---")) {
		return content, nil
	}

	for i := 1; i < len(lines); i++ {
		if bytes.Equal(bytes.TrimSpace(lines[i]), []byte("---")) {
			frontmatter := bytes.Join(lines[1:i], []byte("\n"))
			body := bytes.Join(lines[i+1:], []byte("\n"))
			return body, frontmatter
		}
	}

	return content, nil
}

// parseSuiteConfig parses suite defaults from frontmatter.
func parseSuiteConfig(frontmatter []byte, suite *Suite) error {
	var raw struct {
		Compiler string `yaml:"compiler"`
		Timeout  string `yaml:"timeout"`
		Args     string `yaml:"args"`
	}
	if err := yaml.Unmarshal(frontmatter, &raw); err != nil {
		return err
	}

	suite.Compiler = raw.Compiler
	suite.Args = strings.Fields(raw.Args)

	if raw.Timeout != "" {
		timeout, err := time.ParseDuration(raw.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout format %q: %w", raw.Timeout, err)
		}
		suite.Timeout = timeout
	}
	return nil
}
