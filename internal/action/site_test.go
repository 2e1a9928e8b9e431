package action

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whatisjasongoldstein/beagle/internal/command"
	"github.com/whatisjasongoldstein/beagle/internal/foundation/errors"
)

const yamlSiteFile = `
src: ignored
defaults: &page
  template: page.html
globals:
  site: Beagle
actions:
  - name: main
    commands:
      - kind: page
        template: index.html
        output: index.html
        context:
          title: Home
          site: Override
  - name: posts
    each: "posts/*.md"
    commands:
      - kind: page
        template: post.html
        output: "posts/{{.Stem}}.html"
        context:
          doc: "{{.Path}}"
  - name: assets
    commands:
      - kind: copy
        input: js/site.js
      - kind: stylesheet
        input: scss/site.scss
        output: css/site.css
      - kind: concat
        inputs: [a.txt, b.txt]
        output: out.txt
`

const hclSiteFile = `
src = "ignored"
globals = { site = "Beagle" }

action "main" {
  command "page" {
    template = "index.html"
    output   = "index.html"
    context  = { title = "Home", site = "Override" }
  }
}

action "posts" {
  each = "posts/*.md"
  command "page" {
    template = "post.html"
    output   = "posts/{{.Stem}}.html"
    context  = { doc = "{{.Path}}" }
  }
}

action "assets" {
  command "copy" {
    input = "js/site.js"
  }
  command "stylesheet" {
    input  = "scss/site.scss"
    output = "css/site.css"
  }
  command "concat" {
    inputs = ["a.txt", "b.txt"]
    output = "out.txt"
  }
}
`

func put(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

type runResult struct {
	names []string
	cmds  map[string][]command.Command
}

func discoverAndRun(t *testing.T, src Source) runResult {
	t.Helper()
	actions, err := src.Discover(context.Background())
	require.NoError(t, err)
	res := runResult{cmds: map[string][]command.Command{}}
	for _, a := range actions {
		cmds, err := Invoke(context.Background(), a)
		require.NoError(t, err)
		res.names = append(res.names, a.Name)
		res.cmds[a.Name] = cmds
	}
	return res
}

func siteDir(t *testing.T) string {
	t.Helper()
	src := t.TempDir()
	put(t, src, "posts/b-second.md", "# B")
	put(t, src, "posts/a-first.md", "# A")
	return src
}

func TestYAMLSiteFile(t *testing.T) {
	src := siteDir(t)
	put(t, src, "beagle.yaml", yamlSiteFile)

	res := discoverAndRun(t, NewFileSource(src))
	assert.Equal(t, []string{"main", "posts", "assets"}, res.names)

	main := res.cmds["main"][0].(command.Page)
	assert.Equal(t, map[string]any{"site": "Override", "title": "Home"}, main.Context())

	posts := res.cmds["posts"]
	require.Len(t, posts, 2)
	first := posts[0].(command.Page)
	assert.Equal(t, "posts/a-first.html", first.Output())
	assert.Equal(t, "posts/a-first.md", first.Context()["doc"])
	assert.Equal(t, "Beagle", first.Context()["site"])
	assert.Equal(t, "a-first", first.Context()["item"].(map[string]any)["Stem"])
	assert.Equal(t, "posts/b-second.html", posts[1].Output())

	assets := res.cmds["assets"]
	require.Len(t, assets, 3)
	assert.Equal(t, "js/site.js", assets[0].Output())
	assert.Equal(t, command.KindStylesheet, assets[1].Kind())
	assert.Equal(t, []string{"a.txt", "b.txt"}, assets[2].(command.Concat).Inputs())
}

func TestHCLAndYAMLProduceSameActions(t *testing.T) {
	yamlSrc := siteDir(t)
	put(t, yamlSrc, "beagle.yaml", yamlSiteFile)
	hclSrc := siteDir(t)
	put(t, hclSrc, "beagle.hcl", hclSiteFile)

	fromYAML := discoverAndRun(t, NewFileSource(yamlSrc))
	fromHCL := discoverAndRun(t, NewFileSource(hclSrc))
	assert.Equal(t, fromYAML.names, fromHCL.names)
	assert.Equal(t, fromYAML.cmds, fromHCL.cmds)
}

func TestFileSourceReloadsEdits(t *testing.T) {
	src := t.TempDir()
	put(t, src, "beagle.yaml", "actions:\n  - name: one\n    commands: []\n")
	fs := NewFileSource(src)

	first := discoverAndRun(t, fs)
	assert.Equal(t, []string{"one"}, first.names)

	put(t, src, "beagle.yaml", "actions:\n  - name: one\n    commands: []\n  - name: two\n    commands: []\n")
	second := discoverAndRun(t, fs)
	assert.Equal(t, []string{"one", "two"}, second.names)
}

func TestFileSourceErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := NewFileSource(t.TempDir()).Discover(context.Background())
		assert.ErrorIs(t, err, errors.ErrConfig)
	})
	t.Run("invalid yaml", func(t *testing.T) {
		src := t.TempDir()
		put(t, src, "beagle.yaml", "actions: [\n")
		_, err := NewFileSource(src).Discover(context.Background())
		assert.ErrorIs(t, err, errors.ErrConfig)
	})
	t.Run("invalid hcl", func(t *testing.T) {
		src := t.TempDir()
		put(t, src, "beagle.hcl", "action {")
		_, err := NewFileSource(src).Discover(context.Background())
		assert.ErrorIs(t, err, errors.ErrConfig)
	})
	t.Run("duplicate names", func(t *testing.T) {
		src := t.TempDir()
		put(t, src, "beagle.yaml", "actions:\n  - name: a\n  - name: a\n")
		_, err := NewFileSource(src).Discover(context.Background())
		assert.ErrorIs(t, err, errors.ErrConfig)
		name, _ := errors.ContextString(err, "action")
		assert.Equal(t, "a", name)
	})
}

func TestSiteFileCommandErrorsSurfaceFromAction(t *testing.T) {
	site := &SiteFile{Actions: []ActionSpec{
		{Name: "no-template", Commands: []CommandSpec{{Kind: "page", Output: "x.html"}}},
		{Name: "bad-kind", Commands: []CommandSpec{{Kind: "minify"}}},
		{Name: "no-kind", Commands: []CommandSpec{{}}},
	}}
	actions, err := site.Compile(t.TempDir(), nil)
	require.NoError(t, err)

	_, err = Invoke(context.Background(), actions[0])
	assert.ErrorIs(t, err, errors.ErrMissingRequiredField)
	name, _ := errors.ContextString(err, "action")
	assert.Equal(t, "no-template", name)

	_, err = Invoke(context.Background(), actions[1])
	assert.ErrorIs(t, err, errors.ErrConfig)

	_, err = Invoke(context.Background(), actions[2])
	assert.ErrorIs(t, err, errors.ErrMissingRequiredField)
}

func TestEachFieldTemplateError(t *testing.T) {
	src := siteDir(t)
	site := &SiteFile{Actions: []ActionSpec{{
		Name: "posts", Each: "posts/*.md",
		Commands: []CommandSpec{{Kind: "copy", Input: "{{.Missing}}"}},
	}}}
	actions, err := site.Compile(src, nil)
	require.NoError(t, err)
	_, err = Invoke(context.Background(), actions[0])
	assert.ErrorIs(t, err, errors.ErrConfig)
}

func TestPageWithoutContextGetsGlobals(t *testing.T) {
	site := &SiteFile{
		Globals: map[string]any{"site": "Beagle"},
		Actions: []ActionSpec{{Name: "main", Commands: []CommandSpec{{Kind: "page", Template: "index.html", Output: "index.html"}}}},
	}
	actions, err := site.Compile(t.TempDir(), nil)
	require.NoError(t, err)
	cmds, err := Invoke(context.Background(), actions[0])
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"site": "Beagle"}, cmds[0].(command.Page).Context())
}

func TestPagesDoNotShareNestedGlobals(t *testing.T) {
	author := map[string]any{"name": "Ada"}
	site := &SiteFile{
		Globals: map[string]any{"author": author, "links": []any{"/"}},
		Actions: []ActionSpec{{Name: "main", Commands: []CommandSpec{
			{Kind: "page", Template: "index.html", Output: "index.html"},
			{Kind: "page", Template: "about.html", Output: "about.html"},
		}}},
	}
	actions, err := site.Compile(t.TempDir(), nil)
	require.NoError(t, err)
	cmds, err := Invoke(context.Background(), actions[0])
	require.NoError(t, err)
	require.Len(t, cmds, 2)

	author["name"] = "Grace"
	site.Globals["links"].([]any)[0] = "/changed"

	for _, c := range cmds {
		got := c.(command.Page).Context()
		assert.Equal(t, "Ada", got["author"].(map[string]any)["name"])
		assert.Equal(t, []any{"/"}, got["links"])
	}
}
