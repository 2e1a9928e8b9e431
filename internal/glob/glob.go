// Package glob matches slash-separated relative paths against shell-style
// patterns where `**` spans directories.
package glob

import (
	"fmt"
	iofs "io/fs"
	"path/filepath"
	"regexp"
	"strings"
)

// Pattern is a compiled glob.
type Pattern struct {
	source string
	rx     *regexp.Regexp
}

// Compile converts a glob to an anchored regular expression.
func Compile(glob string) (*Pattern, error) {
	glob = strings.TrimSpace(filepath.ToSlash(glob))
	if glob == "" {
		return nil, fmt.Errorf("empty glob")
	}
	rx, err := regexp.Compile(toRegex(glob))
	if err != nil {
		return nil, fmt.Errorf("compile glob %s: %w", glob, err)
	}
	return &Pattern{source: glob, rx: rx}, nil
}

// MustCompile is Compile for patterns known at compile time.
func MustCompile(glob string) *Pattern {
	p, err := Compile(glob)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the original glob.
func (p *Pattern) String() string { return p.source }

// Match reports whether the slash-separated relative path matches.
func (p *Pattern) Match(rel string) bool {
	return p.rx.MatchString(filepath.ToSlash(rel))
}

// MatchAny reports whether rel matches at least one of patterns.
func MatchAny(patterns []*Pattern, rel string) bool {
	for _, p := range patterns {
		if p.Match(rel) {
			return true
		}
	}
	return false
}

// Files walks root and returns every regular file whose relative path matches,
// in lexical order. Hidden entries are skipped, and so are directories the skip
// function rejects.
func (p *Pattern) Files(root string, skip func(absDir string) bool) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(path string, d iofs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if skip != nil && skip(path) {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if p.Match(rel) {
			out = append(out, filepath.ToSlash(rel))
		}
		return nil
	})
	return out, err
}

// toRegex converts a shell-style glob to an anchored regex string.
func toRegex(glob string) string {
	var b strings.Builder
	b.WriteString("^")
	for i := 0; i < len(glob); i++ {
		c := glob[i]
		switch c {
		case '*':
			if i+1 < len(glob) && glob[i+1] == '*' {
				i++
				if i+1 < len(glob) && glob[i+1] == '/' {
					i++
					b.WriteString("(?:.*/)?")
					continue
				}
				b.WriteString(".*")
				continue
			}
			b.WriteString("[^/]*")
		case '?':
			b.WriteString("[^/]")
		case '.', '+', '(', ')', '|', '^', '$', '{', '}', '[', ']', '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteString("$")
	return b.String()
}
