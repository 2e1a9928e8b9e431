package config

import (
	"os"
	"path/filepath"

	"github.com/whatisjasongoldstein/beagle/internal/foundation/errors"
)

// ExampleYAML is the starter beagle.yaml written by `beagle init`. It carries
// both process settings and the site's actions.
const ExampleYAML = `# Process settings
dist: dist
url_prefix: /
required_dirs: [css, js]

server:
  addr: 127.0.0.1:8000
  live_reload: true

watch:
  quiet: 300ms
  max_delay: 2s

compiler:
  binary: sassc
  timeout: 60s

history:
  path: .beagle/history.db

# Site actions, re-read on every build
globals:
  site_name: My Site

actions:
  - name: index
    commands:
      - kind: page
        template: templates/index.html
        output: index.html
        context:
          title: Home

  - name: posts
    each: posts/*.md
    commands:
      - kind: page
        template: templates/post.html
        output: "posts/{{ .Stem }}.html"
        context:
          source: "{{ .Path }}"

  - name: assets
    commands:
      - kind: copy
        input: static
      - kind: stylesheet
        input: styles/site.scss
        output: css/site.css
`

// WriteExample writes ExampleYAML to path. An existing file is kept unless force is set.
func WriteExample(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return errors.ConfigError("configuration file already exists (use --force to overwrite)").
			WithContext("path", path).Build()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to create config directory").Build()
	}
	if err := os.WriteFile(path, []byte(ExampleYAML), 0o644); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write config file").
			WithContext("path", path).Build()
	}
	return nil
}
