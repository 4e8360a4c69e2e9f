package store

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// writeFileAtomic writes data to dir/name with crash-safe replace semantics:
// the bytes go to a uniquely named temp file first, any existing canonical
// file is renamed aside to name+backupSuffix, the temp file is promoted to
// the canonical name, and the backup is deleted.
//
// Every rename stays inside dir, so source and destination are always on the
// same filesystem and each step is atomic. A crash at any point leaves either
// the old canonical file, the new one, or the backup; a half-written file can
// never sit under the canonical name. The recovery scanner falls back to the
// backup when the canonical file is missing or unreadable.
//
// On write failure the temp file is removed and the canonical file is left
// untouched. No retry.
func writeFileAtomic(dir, name string, data []byte, backupSuffix string) error {
	tmp := filepath.Join(dir, "tmp-"+uuid.NewString())
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		_ = os.Remove(tmp)
		return &PersistError{Op: "write", Path: tmp, Err: err}
	}

	canonical := filepath.Join(dir, name)
	backup := canonical + backupSuffix

	if _, err := os.Stat(canonical); err == nil {
		if err := os.Rename(canonical, backup); err != nil {
			_ = os.Remove(tmp)
			return &PersistError{Op: "rename", Path: canonical, Err: err}
		}
	}

	if err := os.Rename(tmp, canonical); err != nil {
		_ = os.Remove(tmp)
		return &PersistError{Op: "rename", Path: tmp, Err: err}
	}

	// Best effort; a surviving backup is harmless and tolerated by recovery.
	_ = os.Remove(backup)
	return nil
}
