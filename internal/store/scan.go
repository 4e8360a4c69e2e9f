package store

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/roach88/flowvault/internal/project"
)

// loadAll scans the store root and registers every recoverable project.
// Recovery is partial-failure tolerant: a broken project directory is
// logged and skipped, never fatal, so one bad entry cannot take the whole
// store down with it.
func (s *Store) loadAll() error {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return &PersistError{Op: "read project root", Path: s.root, Err: err}
	}

	for _, ent := range entries {
		name := ent.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if !ent.IsDir() {
			slog.Error("skipping non-directory entry in project root", "name", name)
			continue
		}

		p, err := s.loadProject(name)
		if err != nil {
			slog.Error("skipping unrecoverable project directory", "project", name, "error", err)
			continue
		}
		s.register(p)
	}
	return nil
}

// loadProject rebuilds one project from its directory: metadata first, then
// the flow files of the newest install version, if any.
func (s *Store) loadProject(name string) (*project.Project, error) {
	dir := filepath.Join(s.root, name)

	data, err := readWithBackup(filepath.Join(dir, metadataFile), metadataBack)
	if err != nil {
		return nil, err
	}
	p, err := project.FromJSON(data)
	if err != nil {
		return nil, err
	}
	if p.Name != name {
		slog.Warn("project metadata name disagrees with directory name",
			"directory", name, "metadata", p.Name)
		p.Name = name
	}

	// Only the version named by the metadata is loaded. Orphaned version
	// directories from rejected or interrupted uploads stay on disk but are
	// never followed.
	if p.Source == "" {
		return p, nil
	}
	versionDir := filepath.Join(dir, p.Source)
	info, err := os.Stat(versionDir)
	if err != nil || !info.IsDir() {
		slog.Error("install version named in metadata is missing",
			"project", name, "version", p.Source)
		return p, nil
	}
	p.Flows = loadFlows(versionDir, name)
	return p, nil
}

// loadFlows reads every flow file in an install version directory. A flow
// file that cannot be read or parsed, and has no usable backup, is logged
// and skipped; the rest of the project still loads.
func loadFlows(dir, projectName string) *project.FlowMap {
	flows := project.NewFlowMap()

	entries, err := os.ReadDir(dir)
	if err != nil {
		slog.Error("reading install version directory", "project", projectName, "error", err)
		return flows
	}

	// Collect flow file names from canonical files and from orphaned
	// backups, so a flow whose write was interrupted after the rename-aside
	// is still discovered.
	seen := make(map[string]bool)
	for _, ent := range entries {
		if ent.IsDir() {
			continue
		}
		name := ent.Name()
		if strings.HasSuffix(name, flowSuffix+flowBack) {
			name = strings.TrimSuffix(name, flowBack)
		}
		if strings.HasSuffix(name, flowSuffix) {
			seen[name] = true
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		data, err := readWithBackup(filepath.Join(dir, name), flowBack)
		if err != nil {
			slog.Error("skipping unreadable flow file", "project", projectName, "file", name, "error", err)
			continue
		}
		f, err := project.FlowFromJSON(data)
		if err != nil {
			slog.Error("skipping unparsable flow file", "project", projectName, "file", name, "error", err)
			continue
		}
		f.Initialize()
		flows.Put(f)
	}
	return flows
}

// readWithBackup reads path, falling back to path+backupSuffix when the
// canonical file is missing or unreadable. A write interrupted between the
// rename-aside and the promote leaves only the backup behind.
func readWithBackup(path, backupSuffix string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		return data, nil
	}
	backup, backupErr := os.ReadFile(path + backupSuffix)
	if backupErr == nil {
		slog.Warn("recovered file from backup", "path", path)
		return backup, nil
	}
	return nil, &PersistError{Op: "read", Path: path, Err: err}
}
