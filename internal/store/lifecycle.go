package store

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/roach88/flowvault/internal/access"
	"github.com/roach88/flowvault/internal/project"
	"github.com/roach88/flowvault/internal/props"
)

// Create registers a new, empty project and persists its metadata. The
// creator is granted ADMIN. Input is validated before any side effect;
// a name already present in memory or on disk is a conflict.
func (s *Store) Create(name, description, creator string) (*project.Project, error) {
	switch {
	case name == "":
		return nil, &ValidationError{Message: "project name cannot be empty"}
	case !project.ValidName(name):
		return nil, &ValidationError{Message: "project name " + name + " must start with a letter and contain only letters, digits, underscore or dash"}
	case description == "":
		return nil, &ValidationError{Message: "project description cannot be empty"}
	case creator == "":
		return nil, &ValidationError{Message: "creating user cannot be empty"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lookup(name) != nil {
		return nil, &ConflictError{Project: name}
	}
	dir := filepath.Join(s.root, name)
	if _, err := os.Stat(dir); err == nil {
		// Directory exists but was not recovered at Open. Refuse rather
		// than silently adopt or overwrite it.
		return nil, &ConflictError{Project: name}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &PersistError{Op: "create project directory", Path: dir, Err: err}
	}

	p := project.New(name, description, creator, s.clock.Now().UnixMilli())
	data, err := project.Marshal(p)
	if err != nil {
		return nil, err
	}
	if err := s.writeProjectBytes(name, data); err != nil {
		return nil, err
	}

	s.register(p)
	slog.Info("created project", "project", name, "user", creator)
	return p.Clone(), nil
}

// Commit rewrites the named project's metadata file from its in-memory
// state. No permission check; callers that mutate a project are expected
// to have been authorized already.
func (s *Store) Commit(name string) error {
	e := s.lookup(name)
	if e == nil {
		return &NotFoundError{Project: name}
	}
	return s.writeProject(e)
}

// GetProject returns a snapshot of the named project. Requires READ.
// An existing project the user cannot read yields a permission error,
// not a not-found error; existence alone is not hidden.
func (s *Store) GetProject(name, user string) (*project.Project, error) {
	e := s.lookup(name)
	if e == nil {
		return nil, &NotFoundError{Project: name}
	}
	if err := authorize(e, user, access.Read); err != nil {
		return nil, err
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.project.Clone(), nil
}

// GetProjects returns snapshots of every project the user can read,
// sorted by name.
func (s *Store) GetProjects(user string) []*project.Project {
	var out []*project.Project
	for _, e := range s.snapshot() {
		e.mu.RLock()
		if e.project.Permissions.Allows(user, access.Read) {
			out = append(out, e.project.Clone())
		}
		e.mu.RUnlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ProjectNames returns every registered project name, sorted. No
// permission filter; names are not treated as secret.
func (s *Store) ProjectNames() []string {
	s.regMu.RLock()
	names := make([]string, 0, len(s.projects))
	for name := range s.projects {
		names = append(names, name)
	}
	s.regMu.RUnlock()
	sort.Strings(names)
	return names
}

// UpdatePermission sets the target user's capability on the named project,
// or removes the user from the permission table when cap is None. Requires
// ADMIN. The change is persisted before returning.
func (s *Store) UpdatePermission(name, requester, user string, cap access.Capability) error {
	if user == "" {
		return &ValidationError{Message: "target user cannot be empty"}
	}
	e := s.lookup(name)
	if e == nil {
		return &NotFoundError{Project: name}
	}
	if err := authorize(e, requester, access.Admin); err != nil {
		return err
	}

	e.mu.Lock()
	if cap == access.None {
		delete(e.project.Permissions, user)
	} else {
		e.project.Permissions[user] = cap
	}
	e.project.LastModifiedTime = s.clock.Now().UnixMilli()
	e.project.LastModifiedUser = requester
	e.mu.Unlock()

	return s.writeProject(e)
}

// Properties resolves a configuration file inside the project's installed
// sources, going through the store's cache. Requires READ. The returned
// Properties is the caller's own copy.
func (s *Store) Properties(name, user, rel string) (*props.Properties, error) {
	e := s.lookup(name)
	if e == nil {
		return nil, &NotFoundError{Project: name}
	}
	if err := authorize(e, user, access.Read); err != nil {
		return nil, err
	}
	if !filepath.IsLocal(rel) {
		return nil, &ValidationError{Message: "properties path " + rel + " escapes the project sources"}
	}

	e.mu.RLock()
	source := e.project.Source
	e.mu.RUnlock()
	if source == "" {
		return nil, &ValidationError{Message: "project " + name + " has no installed version"}
	}

	path := filepath.Join(s.root, name, source, sourceDirName, rel)
	if p, ok := s.cache.Get(path); ok {
		return p, nil
	}
	p, err := props.Load(path)
	if err != nil {
		return nil, &PersistError{Op: "load properties", Path: path, Err: err}
	}
	s.cache.Put(path, p)
	return p, nil
}

// Remove unregisters the named project and archives its directory out of
// the store by renaming it to a dot-prefixed name, which the recovery
// scanner ignores. Requires ADMIN. The archive is not deleted; an operator
// can restore it by renaming it back.
func (s *Store) Remove(name, user string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.lookup(name)
	if e == nil {
		return &NotFoundError{Project: name}
	}
	if err := authorize(e, user, access.Admin); err != nil {
		return err
	}

	// Exclude in-flight uploads. An upload already past its permission
	// check would otherwise recreate the project directory after the
	// archive rename and resurrect the project on the next recovery scan.
	e.uploadMu.Lock()
	defer e.uploadMu.Unlock()

	stamp := s.clock.Now().Format(versionLayout)
	archived := filepath.Join(s.root, ".removed-"+name+"-"+stamp)
	dir := filepath.Join(s.root, name)
	if err := os.Rename(dir, archived); err != nil {
		return &PersistError{Op: "archive project directory", Path: dir, Err: err}
	}

	s.regMu.Lock()
	delete(s.projects, name)
	s.regMu.Unlock()

	slog.Info("removed project", "project", name, "user", user, "archive", archived)
	return nil
}
