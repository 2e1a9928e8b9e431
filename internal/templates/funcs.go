package templates

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	"github.com/whatisjasongoldstein/beagle/internal/markdown"
)

func newFuncs(src, prefix string, md *markdown.Converter) template.FuncMap {
	readSrc := func(rel string) ([]byte, error) {
		p, err := resolve(src, rel)
		if err != nil {
			return nil, err
		}
		return os.ReadFile(p)
	}
	parseSrc := func(rel string) (markdown.Document, error) {
		data, err := readSrc(rel)
		if err != nil {
			return markdown.Document{}, err
		}
		return md.Parse(data)
	}

	return template.FuncMap{
		"markdown": func(text string) (template.HTML, error) {
			out, err := md.Convert([]byte(text))
			return template.HTML(out), err //nolint:gosec // markdown output is trusted site content
		},
		"markdownFile": func(rel string) (template.HTML, error) {
			doc, err := parseSrc(rel)
			return template.HTML(doc.HTML), err //nolint:gosec // markdown output is trusted site content
		},
		"markdownMeta": func(rel string) (map[string]any, error) {
			doc, err := parseSrc(rel)
			return doc.Meta, err
		},
		"toc": func(rel string) (template.HTML, error) {
			doc, err := parseSrc(rel)
			return template.HTML(doc.TOC()), err //nolint:gosec // generated from escaped heading text
		},
		"read": func(rel string) (string, error) {
			data, err := readSrc(rel)
			return string(data), err
		},
		"url": func(parts ...string) string {
			return JoinURL(prefix, parts...)
		},
	}
}

// JoinURL prefixes a site-relative path with the URL prefix, keeping a trailing slash.
func JoinURL(prefix string, parts ...string) string {
	base := "/" + strings.Trim(prefix, "/")
	rel := strings.TrimLeft(strings.Join(parts, "/"), "/")
	if rel == "" {
		if base == "/" {
			return base
		}
		return base + "/"
	}
	if base == "/" {
		return base + rel
	}
	return base + "/" + rel
}

// resolve maps a template-supplied path under src, refusing paths that escape it.
func resolve(src, rel string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes the source directory", rel)
	}
	return filepath.Join(src, cleaned), nil
}
