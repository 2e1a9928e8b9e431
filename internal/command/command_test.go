package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whatisjasongoldstein/beagle/internal/foundation/errors"
)

func TestConstructorsRejectMissingFields(t *testing.T) {
	tests := []struct {
		name  string
		build func() error
		field string
	}{
		{"page template", func() error { _, err := NewPage("", map[string]any{}, "index.html"); return err }, "template"},
		{"page context", func() error { _, err := NewPage("index.html", nil, "index.html"); return err }, "context"},
		{"page output", func() error { _, err := NewPage("index.html", map[string]any{}, ""); return err }, "output"},
		{"copy input", func() error { _, err := NewCopy("", "x"); return err }, "input"},
		{"stylesheet input", func() error { _, err := NewCompileStylesheet("", "site.css"); return err }, "input"},
		{"stylesheet output", func() error { _, err := NewCompileStylesheet("site.scss", ""); return err }, "output"},
		{"concat inputs", func() error { _, err := NewConcat(nil, "out.txt"); return err }, "inputs"},
		{"concat output", func() error { _, err := NewConcat([]string{"a.txt"}, " "); return err }, "output"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.build()
			require.Error(t, err)
			assert.ErrorIs(t, err, errors.ErrMissingRequiredField)
			field, ok := errors.ContextString(err, "field")
			require.True(t, ok)
			assert.Equal(t, tt.field, field)
		})
	}
}

func TestConstructorsRejectEscapingPaths(t *testing.T) {
	for _, p := range []string{"/etc/passwd", "../outside", "a/../../b", ".", ".."} {
		_, err := NewCopy(p, "")
		require.Error(t, err, p)
		assert.True(t, errors.HasCategory(err, errors.CategoryValidation), p)
		assert.NotErrorIs(t, err, errors.ErrMissingRequiredField, p)
	}
}

func TestCopyOutputDefaultsToInput(t *testing.T) {
	c, err := NewCopy("js/site.js", "")
	require.NoError(t, err)
	assert.Equal(t, "js/site.js", c.Output())
	assert.Equal(t, KindCopy, c.Kind())

	c, err = NewCopy("./img//", "assets/img")
	require.NoError(t, err)
	assert.Equal(t, "img", c.Input())
	assert.Equal(t, "assets/img", c.Output())
}

func TestCommandsAreImmutable(t *testing.T) {
	ctx := map[string]any{"title": "Home"}
	p, err := NewPage("index.html", ctx, "index.html")
	require.NoError(t, err)
	ctx["title"] = "Changed"
	got := p.Context()
	assert.Equal(t, "Home", got["title"])
	got["title"] = "Mutated"
	assert.Equal(t, "Home", p.Context()["title"])

	inputs := []string{"a.txt", "b.txt"}
	c, err := NewConcat(inputs, "out.txt")
	require.NoError(t, err)
	inputs[0] = "z.txt"
	assert.Equal(t, []string{"a.txt", "b.txt"}, c.Inputs())
}

func TestPageContextIsDeepCopied(t *testing.T) {
	nav := []any{map[string]any{"href": "/"}}
	ctx := map[string]any{
		"site": map[string]any{"name": "Beagle", "nav": nav},
		"tags": []string{"go"},
	}
	p, err := NewPage("index.html", ctx, "index.html")
	require.NoError(t, err)

	ctx["site"].(map[string]any)["name"] = "Changed"
	nav[0].(map[string]any)["href"] = "/elsewhere"
	ctx["tags"].([]string)[0] = "rust"

	got := p.Context()
	site := got["site"].(map[string]any)
	assert.Equal(t, "Beagle", site["name"])
	assert.Equal(t, "/", site["nav"].([]any)[0].(map[string]any)["href"])
	assert.Equal(t, []string{"go"}, got["tags"])

	site["name"] = "Mutated"
	assert.Equal(t, "Beagle", p.Context()["site"].(map[string]any)["name"])
}
