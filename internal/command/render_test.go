package command

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whatisjasongoldstein/beagle/internal/foundation/errors"
)

type fakeTemplates map[string]string

func (f fakeTemplates) Render(id string, data map[string]any) (string, error) {
	body, ok := f[id]
	if !ok {
		return "", errors.TemplateNotFound(id).Build()
	}
	if title, ok := data["title"].(string); ok {
		return body + ":" + title, nil
	}
	return body, nil
}

type fakeCompiler struct {
	err   error
	calls [][2]string
}

func (f *fakeCompiler) Compile(_ context.Context, input, output string) error {
	f.calls = append(f.calls, [2]string{input, output})
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(output, []byte("compiled"), 0o644)
}

func newEnv(t *testing.T) Env {
	t.Helper()
	return Env{
		Src:       t.TempDir(),
		Dist:      t.TempDir(),
		Templates: fakeTemplates{"index.html": "page"},
		Compiler:  &fakeCompiler{},
	}
}

func put(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

func read(t *testing.T, root, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

func TestRenderPageCreatesParents(t *testing.T) {
	env := newEnv(t)
	p, err := NewPage("index.html", map[string]any{"title": "Hi"}, "blog/post/index.html")
	require.NoError(t, err)

	require.NoError(t, Render(context.Background(), env, p))
	assert.Equal(t, "page:Hi", read(t, env.Dist, "blog/post/index.html"))

	// Parents already exist on the second run.
	require.NoError(t, Render(context.Background(), env, p))
}

func TestRenderPageTemplateNotFound(t *testing.T) {
	env := newEnv(t)
	p, err := NewPage("missing.html", map[string]any{}, "x.html")
	require.NoError(t, err)
	err = Render(context.Background(), env, p)
	assert.ErrorIs(t, err, errors.ErrTemplateNotFound)
}

func TestRenderCopyFileDefaultsOutput(t *testing.T) {
	env := newEnv(t)
	put(t, env.Src, "js/site.js", "console.log(1)")
	c, err := NewCopy("js/site.js", "")
	require.NoError(t, err)

	require.NoError(t, Render(context.Background(), env, c))
	assert.Equal(t, "console.log(1)", read(t, env.Dist, "js/site.js"))
}

func TestRenderCopyDirectoryReproducesTree(t *testing.T) {
	env := newEnv(t)
	put(t, env.Src, "img/logo.png", "logo")
	put(t, env.Src, "img/icons/a.svg", "a")
	put(t, env.Src, "img/icons/deep/b.svg", "b")
	c, err := NewCopy("img", "")
	require.NoError(t, err)

	require.NoError(t, Render(context.Background(), env, c))
	assert.Equal(t, "logo", read(t, env.Dist, "img/logo.png"))
	assert.Equal(t, "a", read(t, env.Dist, "img/icons/a.svg"))
	assert.Equal(t, "b", read(t, env.Dist, "img/icons/deep/b.svg"))

	// Copying again merges instead of failing on the existing directory.
	require.NoError(t, Render(context.Background(), env, c))
}

func TestRenderCopyMissingInput(t *testing.T) {
	env := newEnv(t)
	c, err := NewCopy("nope.txt", "")
	require.NoError(t, err)
	err = Render(context.Background(), env, c)
	assert.ErrorIs(t, err, errors.ErrMissingInput)
	p, _ := errors.ContextString(err, "path")
	assert.Equal(t, "nope.txt", p)
}

func TestRenderConcatIsByteExact(t *testing.T) {
	env := newEnv(t)
	put(t, env.Src, "a.txt", "A")
	put(t, env.Src, "b.txt", "B")
	c, err := NewConcat([]string{"a.txt", "b.txt"}, "out.txt")
	require.NoError(t, err)

	require.NoError(t, Render(context.Background(), env, c))
	assert.Equal(t, "AB", read(t, env.Dist, "out.txt"))
}

func TestRenderConcatMissingInput(t *testing.T) {
	env := newEnv(t)
	put(t, env.Src, "a.txt", "A")
	c, err := NewConcat([]string{"a.txt", "gone.txt"}, "out.txt")
	require.NoError(t, err)
	err = Render(context.Background(), env, c)
	assert.ErrorIs(t, err, errors.ErrMissingInput)
	assert.NoFileExists(t, filepath.Join(env.Dist, "out.txt"))
}

func TestRenderStylesheet(t *testing.T) {
	env := newEnv(t)
	compiler := env.Compiler.(*fakeCompiler)
	c, err := NewCompileStylesheet("scss/site.scss", "css/site.css")
	require.NoError(t, err)

	require.NoError(t, Render(context.Background(), env, c))
	require.Len(t, compiler.calls, 1)
	assert.Equal(t, filepath.Join(env.Src, "scss", "site.scss"), compiler.calls[0][0])
	assert.Equal(t, "compiled", read(t, env.Dist, "css/site.css"))
}

func TestRenderStylesheetFailureIsWarning(t *testing.T) {
	env := newEnv(t)
	env.Compiler = &fakeCompiler{err: stderrors.New("exit status 1")}
	c, err := NewCompileStylesheet("site.scss", "css/site.css")
	require.NoError(t, err)

	err = Render(context.Background(), env, c)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrExternalTool)
	assert.True(t, errors.HasSeverity(err, errors.SeverityWarning))
}

func TestRenderHonorsCancellation(t *testing.T) {
	env := newEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c, err := NewCopy("a.txt", "")
	require.NoError(t, err)
	assert.ErrorIs(t, Render(ctx, env, c), context.Canceled)
}
