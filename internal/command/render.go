package command

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/whatisjasongoldstein/beagle/internal/foundation/errors"
	"github.com/whatisjasongoldstein/beagle/internal/logfields"
	"github.com/whatisjasongoldstein/beagle/internal/output"
)

// Templates renders a named template with a context.
type Templates interface {
	Render(id string, data map[string]any) (string, error)
}

// Compiler turns a stylesheet source into its compiled output.
type Compiler interface {
	Compile(ctx context.Context, input, output string) error
}

// Env is everything a command needs to render. Dist is the staging root
// during a build cycle.
type Env struct {
	Src       string
	Dist      string
	Templates Templates
	Compiler  Compiler
	Logger    *slog.Logger
}

func (e Env) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}

// Render performs the side effect of cmd. An error with warning severity
// (a failed external tool) leaves the rest of the build intact; callers decide
// whether to continue.
func Render(ctx context.Context, env Env, cmd Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	switch c := cmd.(type) {
	case Page:
		return renderPage(env, c)
	case Copy:
		return renderCopy(env, c)
	case CompileStylesheet:
		return renderStylesheet(ctx, env, c)
	case Concat:
		return renderConcat(env, c)
	default:
		return errors.InternalError(fmt.Sprintf("unknown command %T", cmd)).Build()
	}
}

func renderPage(env Env, p Page) error {
	if env.Templates == nil {
		return errors.InternalError("no template environment").Build()
	}
	html, err := env.Templates.Render(p.template, p.context)
	if err != nil {
		return err
	}
	return writeOutput(env, p.output, []byte(html))
}

func renderCopy(env Env, c Copy) error {
	src := filepath.Join(env.Src, filepath.FromSlash(c.input))
	dst := filepath.Join(env.Dist, filepath.FromSlash(c.output))
	info, err := os.Stat(src)
	if err != nil {
		return missingInput(c.input, err)
	}
	if info.IsDir() {
		if err := output.CopyDir(src, dst); err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "copy directory").
				WithContext("path", c.input).Build()
		}
		env.logger().Debug("Copied directory", logfields.Path(c.input), logfields.Output(c.output))
		return nil
	}
	if err := output.EnsureParent(dst); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "create output directory").
			WithContext("path", c.output).Build()
	}
	if err := output.CopyFile(src, dst); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "copy file").
			WithContext("path", c.input).Build()
	}
	env.logger().Debug("Copied file", logfields.Path(c.input), logfields.Output(c.output))
	return nil
}

func renderStylesheet(ctx context.Context, env Env, c CompileStylesheet) error {
	src := filepath.Join(env.Src, filepath.FromSlash(c.input))
	dst := filepath.Join(env.Dist, filepath.FromSlash(c.output))
	if err := output.EnsureParent(dst); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "create output directory").
			WithContext("path", c.output).Build()
	}
	if env.Compiler == nil {
		return errors.ExternalToolFailure("stylesheet compiler", stderrors.New("no compiler configured")).
			WithContext("path", c.input).Build()
	}
	if err := env.Compiler.Compile(ctx, src, dst); err != nil {
		if errors.IsClassified(err) {
			return err
		}
		return errors.ExternalToolFailure("stylesheet compiler", err).WithContext("path", c.input).Build()
	}
	return nil
}

func renderConcat(env Env, c Concat) error {
	var buf bytes.Buffer
	for _, in := range c.inputs {
		data, err := os.ReadFile(filepath.Join(env.Src, filepath.FromSlash(in)))
		if err != nil {
			return missingInput(in, err)
		}
		buf.Write(data)
	}
	return writeOutput(env, c.output, buf.Bytes())
}

func writeOutput(env Env, rel string, data []byte) error {
	dst := filepath.Join(env.Dist, filepath.FromSlash(rel))
	if err := output.EnsureParent(dst); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "create output directory").
			WithContext("path", rel).Build()
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "write output").
			WithContext("path", rel).Build()
	}
	env.logger().Debug("Wrote output", logfields.Output(rel), slog.Int("bytes", len(data)))
	return nil
}

func missingInput(rel string, err error) error {
	if stderrors.Is(err, fs.ErrNotExist) {
		return errors.MissingInput("input does not exist").WithCause(err).WithContext("path", rel).Build()
	}
	return errors.WrapError(err, errors.CategoryFileSystem, "read input").WithContext("path", rel).Build()
}
