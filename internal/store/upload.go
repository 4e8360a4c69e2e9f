package store

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/roach88/flowvault/internal/access"
	"github.com/roach88/flowvault/internal/project"
)

// Upload installs a new version of the named project from a staged source
// directory. The pipeline:
//
//  1. The flow loader parses the staged sources, accumulating structural
//     errors per flow. A directory-level failure rejects the upload before
//     anything is written.
//  2. A fresh install version directory is created, named by the current
//     timestamp, and every parsed flow is persisted into it. A persistence
//     failure here is fatal; the partial version directory is left on disk
//     for diagnosis.
//  3. The staged sources are moved into the version's src/ subdirectory.
//  4. Decision gate: the version commits only when the loader reported no
//     errors or force is set. On commit the project's source pointer and
//     flow map swap together under its lock and the metadata is persisted.
//     A rejected upload returns every accumulated error at once and leaves
//     the version directory orphaned on disk; the project is untouched, and
//     recovery never follows a version the metadata does not name.
//
// Requires WRITE on the project. Returns a snapshot of the updated project.
func (s *Store) Upload(name, user, stagedDir string, force bool) (*project.Project, error) {
	e := s.lookup(name)
	if e == nil {
		return nil, &NotFoundError{Project: name}
	}
	if err := authorize(e, user, access.Write); err != nil {
		return nil, err
	}

	e.uploadMu.Lock()
	defer e.uploadMu.Unlock()

	// Remove may have archived the project while this upload waited for
	// the lock; re-check registration before touching disk.
	if s.lookup(name) != e {
		return nil, &NotFoundError{Project: name}
	}

	result, err := s.load(stagedDir)
	if err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}

	now := s.clock.Now()
	version := now.Format(versionLayout)
	versionDir := filepath.Join(s.root, name, version)
	if err := os.MkdirAll(versionDir, 0o755); err != nil {
		return nil, &PersistError{Op: "create install version", Path: versionDir, Err: err}
	}

	for _, f := range result.Flows.All() {
		if err := writeFlow(versionDir, f); err != nil {
			return nil, err
		}
	}

	moveSources(stagedDir, filepath.Join(versionDir, sourceDirName))

	if len(result.Errors) > 0 && !force {
		return nil, &UploadError{Project: name, Messages: result.Errors}
	}
	if len(result.Errors) > 0 {
		slog.Warn("forced upload installing flows with errors",
			"project", name, "version", version, "errors", len(result.Errors))
	}

	e.mu.Lock()
	e.project.Source = version
	e.project.Flows = result.Flows
	e.project.LastModifiedTime = now.UnixMilli()
	e.project.LastModifiedUser = user
	snap := e.project.Clone()
	e.mu.Unlock()

	if err := s.writeProject(e); err != nil {
		return nil, err
	}
	slog.Info("installed project version",
		"project", name, "version", version, "flows", result.Flows.Len(), "user", user)
	return snap, nil
}

// authorize checks that user holds the wanted capability on the entry's
// project. Existence is already established by lookup, so a denial here
// discloses the project exists.
func authorize(e *entry, user string, want access.Capability) error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if !e.project.Permissions.Allows(user, want) {
		return &PermissionError{Project: e.project.Name, User: user, Capability: want}
	}
	return nil
}

// moveSources relocates the staged directory into the install version as its
// src/ subdirectory. The sources are kept for audit only and are never read
// back, so a failed move degrades to a copy and a failed copy is logged
// rather than failing the upload.
func moveSources(staged, dst string) {
	if err := os.Rename(staged, dst); err == nil {
		return
	}
	// Cross-device rename or a busy source; copy instead.
	if err := copyTree(staged, dst); err != nil {
		slog.Warn("could not retain staged sources", "staged", staged, "error", err)
		return
	}
	if err := os.RemoveAll(staged); err != nil {
		slog.Warn("could not remove staged sources after copy", "staged", staged, "error", err)
	}
}

// copyTree copies the regular files under src into dst, preserving relative
// paths. Symlinks and other irregular files are skipped with a warning.
func copyTree(src, dst string) error {
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return &PersistError{Op: "create directory", Path: dst, Err: err}
	}
	return filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return &PersistError{Op: "walk staged sources", Path: path, Err: err}
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		switch {
		case d.IsDir():
			if rel == "." {
				return nil
			}
			if err := os.MkdirAll(target, 0o755); err != nil {
				return &PersistError{Op: "create directory", Path: target, Err: err}
			}
			return nil
		case !d.Type().IsRegular():
			slog.Warn("skipping irregular file in staged sources", "path", path)
			return nil
		default:
			return copyFile(path, target)
		}
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return &PersistError{Op: "open", Path: src, Err: err}
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return &PersistError{Op: "create", Path: dst, Err: err}
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return &PersistError{Op: "copy", Path: dst, Err: err}
	}
	if err := out.Close(); err != nil {
		return &PersistError{Op: "close", Path: dst, Err: err}
	}
	return nil
}
