package markdown

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ErrMissingClosingDelimiter indicates the document opened a YAML metadata
// block but never closed it.
var ErrMissingClosingDelimiter = errors.New("yaml frontmatter start delimiter found but closing delimiter is missing")

// SplitFrontmatter separates a `---` delimited YAML block from the Markdown body.
// Documents without a leading block return an empty map and the full input.
func SplitFrontmatter(content []byte) (map[string]any, []byte, error) {
	nl := "\n"
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		nl = "\r\n"
	}
	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return map[string]any{}, content, nil
	}
	rest := content[len(open):]
	if bytes.HasPrefix(rest, open) {
		return map[string]any{}, rest[len(open):], nil
	}
	closing := []byte(nl + "---" + nl)
	idx := bytes.Index(rest, closing)
	if idx < 0 {
		return nil, nil, ErrMissingClosingDelimiter
	}

	meta := map[string]any{}
	if err := yaml.Unmarshal(rest[:idx+len(nl)], &meta); err != nil {
		return nil, nil, fmt.Errorf("parse frontmatter: %w", err)
	}
	if meta == nil {
		meta = map[string]any{}
	}
	return meta, rest[idx+len(closing):], nil
}
