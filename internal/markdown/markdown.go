// Package markdown converts Markdown documents to HTML with a fixed extension
// set: YAML metadata blocks, fenced code, footnotes, GFM tables with
// strikethrough and linkify, smart typography and automatic heading IDs from
// which a table of contents is generated.
package markdown

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

// Heading is one entry of a document's table of contents.
type Heading struct {
	Level int
	ID    string
	Text  string
}

// Document is a converted Markdown source.
type Document struct {
	Meta     map[string]any
	HTML     string
	Headings []Heading
}

// TOC renders the document's headings as a nested list.
func (d Document) TOC() string { return RenderTOC(d.Headings) }

// Converter is safe for concurrent use.
type Converter struct {
	md goldmark.Markdown
}

// New returns a Converter with the documented extension set.
func New() *Converter {
	return &Converter{md: goldmark.New(
		goldmark.WithExtensions(
			extension.Table,
			extension.Strikethrough,
			extension.Linkify,
			extension.Footnote,
			extension.Typographer,
		),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
	)}
}

// Convert renders src to HTML, dropping any metadata block.
func (c *Converter) Convert(src []byte) (string, error) {
	doc, err := c.Parse(src)
	if err != nil {
		return "", err
	}
	return doc.HTML, nil
}

// Parse splits metadata from src, renders the body and collects its headings.
func (c *Converter) Parse(src []byte) (Document, error) {
	meta, body, err := SplitFrontmatter(src)
	if err != nil {
		return Document{}, err
	}
	ctx := parser.NewContext()
	root := c.md.Parser().Parse(text.NewReader(body), parser.WithContext(ctx))

	var buf bytes.Buffer
	if err := c.md.Renderer().Render(&buf, body, root); err != nil {
		return Document{}, fmt.Errorf("render markdown: %w", err)
	}
	return Document{Meta: meta, HTML: buf.String(), Headings: collectHeadings(root, body)}, nil
}

func collectHeadings(root gmast.Node, source []byte) []Heading {
	var headings []Heading
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		h, ok := n.(*gmast.Heading)
		if !ok {
			return gmast.WalkContinue, nil
		}
		id := ""
		if v, ok := h.AttributeString("id"); ok {
			if b, ok := v.([]byte); ok {
				id = string(b)
			}
		}
		headings = append(headings, Heading{Level: h.Level, ID: id, Text: plainText(h, source)})
		return gmast.WalkSkipChildren, nil
	})
	return headings
}

func plainText(n gmast.Node, source []byte) string {
	var b strings.Builder
	_ = gmast.Walk(n, func(c gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *gmast.Text:
			b.Write(t.Segment.Value(source))
			if t.SoftLineBreak() {
				b.WriteByte(' ')
			}
		case *gmast.String:
			b.Write(t.Value)
		}
		return gmast.WalkContinue, nil
	})
	return b.String()
}

// RenderTOC renders headings as nested unordered lists linking to their IDs.
func RenderTOC(headings []Heading) string {
	if len(headings) == 0 {
		return ""
	}
	base := headings[0].Level
	for _, h := range headings {
		base = min(base, h.Level)
	}

	var b strings.Builder
	b.WriteString(`<nav class="toc">`)
	depth := 0
	for i, h := range headings {
		level := h.Level - base + 1
		switch {
		case level > depth:
			for ; depth < level; depth++ {
				b.WriteString("<ul>")
			}
		case level < depth:
			for ; depth > level; depth-- {
				b.WriteString("</li></ul>")
			}
			b.WriteString("</li>")
		case i > 0:
			b.WriteString("</li>")
		}
		fmt.Fprintf(&b, `<li><a href="#%s">%s</a>`, html.EscapeString(h.ID), html.EscapeString(h.Text))
	}
	for ; depth > 0; depth-- {
		b.WriteString("</li></ul>")
	}
	b.WriteString("</nav>")
	return b.String()
}
