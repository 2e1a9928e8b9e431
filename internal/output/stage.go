package output

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/whatisjasongoldstein/beagle/internal/logfields"
)

// Stage is an isolated directory collecting one build cycle's output.
type Stage struct {
	dir    string
	target string
}

// Dir returns the staging directory commands should write into.
func (s *Stage) Dir() string { return s.dir }

// Target returns the resolved dist directory the stage promotes into.
func (s *Stage) Target() string { return s.target }

// ResolveTarget returns the real path of dist, following a symlink when dist is one.
// Missing dist directories are returned cleaned and absolute.
func ResolveTarget(dist string) (string, error) {
	abs, err := filepath.Abs(dist)
	if err != nil {
		return "", fmt.Errorf("resolve dist: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}
	return abs, nil
}

// Begin creates a sibling staging directory for dist. The staging directory
// lives next to the resolved dist so promotion is a same-filesystem rename.
func Begin(dist string, requiredDirs ...string) (*Stage, error) {
	target, err := ResolveTarget(dist)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return nil, fmt.Errorf("create dist parent: %w", err)
	}
	dir := fmt.Sprintf("%s.stage-%s", target, uuid.NewString()[:8])
	if err := EnsureDirs(dir, requiredDirs...); err != nil {
		return nil, err
	}
	slog.Debug("Initialized staging directory", slog.String("staging", dir), logfields.Output(target))
	return &Stage{dir: dir, target: target}, nil
}

// Promote moves the staged tree into dist. When clean is set the visible
// contents of dist are removed first; otherwise staged entries overlay the
// existing tree. Callers hold the Guard's write lock.
func (s *Stage) Promote(clean bool) error {
	if s.dir == "" {
		return fmt.Errorf("stage already finalized")
	}
	if err := os.MkdirAll(s.target, 0o755); err != nil {
		return fmt.Errorf("create dist: %w", err)
	}
	if clean {
		if err := Clean(s.target); err != nil {
			return err
		}
	}
	if err := merge(s.dir, s.target); err != nil {
		return fmt.Errorf("promote staging: %w", err)
	}
	dir := s.dir
	s.dir = ""
	if err := os.RemoveAll(dir); err != nil {
		slog.Warn("Failed to remove staging directory", slog.String("staging", dir), logfields.Error(err))
	}
	slog.Debug("Promoted staging directory", logfields.Output(s.target), slog.Bool("clean", clean))
	return nil
}

// Abort discards the staged tree. Safe to call after Promote.
func (s *Stage) Abort() {
	if s.dir == "" {
		return
	}
	dir := s.dir
	s.dir = ""
	if err := os.RemoveAll(dir); err != nil {
		slog.Warn("Failed to remove staging directory after abort", slog.String("staging", dir), logfields.Error(err))
	}
}

// merge renames every entry of src into dst, descending into directories that exist on both sides.
func merge(src, dst string) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		from := filepath.Join(src, entry.Name())
		to := filepath.Join(dst, entry.Name())
		existing, statErr := os.Lstat(to)
		switch {
		case statErr != nil:
			if err := os.Rename(from, to); err != nil {
				return err
			}
		case entry.IsDir() && existing.IsDir():
			if err := merge(from, to); err != nil {
				return err
			}
		case existing.IsDir():
			if err := os.RemoveAll(to); err != nil {
				return err
			}
			if err := os.Rename(from, to); err != nil {
				return err
			}
		default:
			if entry.IsDir() {
				if err := os.Remove(to); err != nil {
					return err
				}
			}
			// Renaming a file over a file replaces it atomically.
			if err := os.Rename(from, to); err != nil {
				return err
			}
		}
	}
	return nil
}
