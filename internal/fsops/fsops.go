// Package fsops applies filesystem changes for a sync and records each one
// in a change log. In dry-run mode the log is produced without touching the
// filesystem, so a dry run reports exactly what an apply would do.
package fsops

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ccconfigs/packsync/internal/logging"
)

// ManagedPathConflictError reports a target path that exists but was not
// created by packsync, so it cannot be replaced.
type ManagedPathConflictError struct {
	Path string
}

func (e *ManagedPathConflictError) Error() string {
	return fmt.Sprintf("cannot create managed skill link at %s: path already exists and is not managed", e.Path)
}

// Executor performs changes and records them in order.
type Executor struct {
	DryRun bool

	changes []string
	logger  *slog.Logger
}

// NewExecutor returns an executor. A nil logger discards output.
func NewExecutor(dryRun bool, logger *slog.Logger) *Executor {
	return &Executor{
		DryRun:  dryRun,
		changes: []string{},
		logger:  logging.OrDiscard(logger),
	}
}

// Changes returns the change log recorded so far.
func (e *Executor) Changes() []string {
	out := make([]string, len(e.changes))
	copy(out, e.changes)
	return out
}

func (e *Executor) record(change string) {
	e.changes = append(e.changes, change)
	e.logger.Debug("change", "op", change, "dry_run", e.DryRun)
}

// EnsureDir creates path (and parents) when nothing exists there.
func (e *Executor) EnsureDir(path string) error {
	if exists(path) {
		return nil
	}
	e.record("mkdir " + path)
	if e.DryRun {
		return nil
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", path, err)
	}
	return nil
}

// WriteIfChanged writes content to path unless the file already holds
// exactly that content.
func (e *Executor) WriteIfChanged(path string, content []byte) error {
	current, err := os.ReadFile(path)
	existed := err == nil
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if existed && bytes.Equal(current, content) {
		return nil
	}

	if existed {
		e.record("update " + path)
	} else {
		e.record("create " + path)
	}
	if e.DryRun {
		return nil
	}
	if err := WriteFileAtomic(path, content, 0); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Remove deletes path recursively. Symlinks are removed, not followed.
func (e *Executor) Remove(path string) error {
	if !exists(path) {
		return nil
	}
	e.record("remove " + path)
	if e.DryRun {
		return nil
	}
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}

// EnsureSymlink makes target a symlink to source. An existing link to the
// same resolved source is left alone; anything else at target is a
// *ManagedPathConflictError.
func (e *Executor) EnsureSymlink(source, target string) error {
	info, err := os.Lstat(target)
	if err == nil {
		if info.Mode()&os.ModeSymlink != 0 && linksTo(target, source) {
			return nil
		}
		return &ManagedPathConflictError{Path: target}
	}
	if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("inspect %s: %w", target, err)
	}

	e.record(fmt.Sprintf("link %s -> %s", target, source))
	if e.DryRun {
		return nil
	}
	if err := os.Symlink(source, target); err != nil {
		return fmt.Errorf("link %s: %w", target, err)
	}
	return nil
}

func linksTo(link, source string) bool {
	dest, err := os.Readlink(link)
	if err != nil {
		return false
	}
	if !filepath.IsAbs(dest) {
		dest = filepath.Join(filepath.Dir(link), dest)
	}
	want, err := filepath.Abs(source)
	if err != nil {
		return false
	}
	return filepath.Clean(dest) == filepath.Clean(want)
}

// exists reports whether anything, including a dangling symlink, is at path.
func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
