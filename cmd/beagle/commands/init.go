package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/whatisjasongoldstein/beagle/internal/config"
	"github.com/whatisjasongoldstein/beagle/internal/foundation/errors"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool `help:"Overwrite existing configuration and starter files"`
}

// scaffold is the starter site written next to the config file.
var scaffold = []struct{ path, body string }{
	{"templates/base.html", `<!doctype html>
<html>
<head>
  <meta charset="utf-8">
  <title>{{ .site_name }}</title>
  <link rel="stylesheet" href="{{ url "css/site.css" }}">
</head>
<body>
{{ block "body" . }}{{ end }}
</body>
</html>
`},
	{"templates/index.html", `{{ template "templates/base.html" . }}
{{ define "body" }}<h1>{{ .title }}</h1>
<p><a href="{{ url "posts/hello.html" }}">Hello, world</a></p>{{ end }}
`},
	{"templates/post.html", `{{ template "templates/base.html" . }}
{{ define "body" }}{{ $meta := markdownMeta .source }}<article>
<h1>{{ $meta.title }}</h1>
{{ toc .source }}
{{ markdownFile .source }}
</article>{{ end }}
`},
	{"posts/hello.md", `---
title: Hello, world
---

## Welcome

This page was rendered from posts/hello.md.
`},
	{"static/robots.txt", "User-agent: *\n"},
	{"styles/site.scss", "$text: #222;\n\nbody {\n  color: $text;\n  font-family: sans-serif;\n}\n"},
}

func (i *InitCmd) Run(g *Global, root *CLI) error {
	w := g.out()
	_, _ = fmt.Fprintln(w, "Initializing beagle site")
	_, _ = fmt.Fprintf(w, "Writing configuration to %s\n", root.Config)
	if err := config.WriteExample(root.Config, i.Force); err != nil {
		_, _ = fmt.Fprintln(w, "Initialization failed")
		return err
	}
	dir := filepath.Dir(root.Config)
	for _, f := range scaffold {
		target := filepath.Join(dir, filepath.FromSlash(f.path))
		if _, err := os.Stat(target); err == nil && !i.Force {
			_, _ = fmt.Fprintf(w, "Keeping existing %s\n", f.path)
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "failed to create directory").
				WithContext("path", filepath.Dir(target)).Build()
		}
		if err := os.WriteFile(target, []byte(f.body), 0o644); err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "failed to write starter file").
				WithContext("path", target).Build()
		}
	}
	_, _ = fmt.Fprintln(w, "initialized successfully")
	return nil
}
