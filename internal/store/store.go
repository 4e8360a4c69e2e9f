package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/roach88/flowvault/internal/flowdef"
	"github.com/roach88/flowvault/internal/project"
	"github.com/roach88/flowvault/internal/props"
)

// On-disk layout, fixed for compatibility:
//
//	<root>/<project>/project.json           project metadata
//	<root>/<project>/<version>/             one install version
//	<root>/<project>/<version>/src/         raw uploaded sources
//	<root>/<project>/<version>/<id>.flow    one file per flow
const (
	metadataFile  = "project.json"
	metadataBack  = "_old"
	sourceDirName = "src"
	flowSuffix    = ".flow"
	flowBack      = ".old"
)

// FlowLoader parses a staged source directory into a flow map, accumulating
// non-fatal structural errors. The default is flowdef.LoadDir.
type FlowLoader func(dir string) (*flowdef.Result, error)

// entry is one registered project plus the lock guarding its mutable state.
// The project's source pointer and flow map are only ever swapped together
// while the write lock is held, and readers clone under the read lock, so no
// caller observes a pointer from one install version paired with flows from
// another.
type entry struct {
	mu      sync.RWMutex
	project *project.Project

	// uploadMu serializes whole upload pipelines against this project, so
	// two concurrent uploads cannot interleave their version directories.
	// Readers are only blocked for the final pointer swap under mu.
	uploadMu sync.Mutex
}

// Store is a durable, concurrency-safe registry of projects backed by a
// single directory tree. Construction scans the tree and rebuilds all
// in-memory state; after Open returns, the registry is the source of truth
// and disk is only written, never re-read, except for configuration files,
// which go through the properties cache.
type Store struct {
	root  string
	clock Clock
	load  FlowLoader
	cache *props.Cache

	// mu serializes store-wide mutations: project creation and removal.
	// writeMu serializes metadata-file writes so two in-process writers
	// cannot interleave their temp/rename sequences in one directory.
	mu      sync.Mutex
	writeMu sync.Mutex

	regMu    sync.RWMutex
	projects map[string]*entry
}

// Option configures a Store.
type Option func(*Store)

// WithClock substitutes the time source used for install version names and
// modification timestamps.
func WithClock(c Clock) Option {
	return func(s *Store) { s.clock = c }
}

// WithFlowLoader substitutes the staged-directory flow loader.
func WithFlowLoader(l FlowLoader) Option {
	return func(s *Store) { s.load = l }
}

// WithCache substitutes the properties cache.
func WithCache(c *props.Cache) Option {
	return func(s *Store) { s.cache = c }
}

// Open creates or opens a store rooted at root. The directory is created if
// absent. Recovery runs synchronously: every project subdirectory is scanned
// and registered before Open returns, with invalid entries logged and
// skipped rather than aborting the scan.
func Open(root string, opts ...Option) (*Store, error) {
	info, err := os.Stat(root)
	switch {
	case os.IsNotExist(err):
		if mkErr := os.MkdirAll(root, 0o755); mkErr != nil {
			return nil, &PersistError{Op: "create project root", Path: root, Err: mkErr}
		}
	case err != nil:
		return nil, &PersistError{Op: "stat project root", Path: root, Err: err}
	case !info.IsDir():
		return nil, fmt.Errorf("project root %s is not a directory", root)
	}

	s := &Store{
		root:     root,
		clock:    systemClock{},
		load:     flowdef.LoadDir,
		projects: make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cache == nil {
		s.cache = props.NewCache(props.DefaultCapacity, props.DefaultIdle)
	}

	if err := s.loadAll(); err != nil {
		return nil, err
	}
	return s, nil
}

// Root returns the store's root directory.
func (s *Store) Root() string {
	return s.root
}

// lookup returns the registry entry for name, or nil.
func (s *Store) lookup(name string) *entry {
	s.regMu.RLock()
	defer s.regMu.RUnlock()
	return s.projects[name]
}

// register adds an entry to the registry, replacing any previous one.
func (s *Store) register(p *project.Project) {
	s.regMu.Lock()
	defer s.regMu.Unlock()
	s.projects[p.Name] = &entry{project: p}
}

// snapshot returns the registered entries in arbitrary order.
func (s *Store) snapshot() []*entry {
	s.regMu.RLock()
	defer s.regMu.RUnlock()
	out := make([]*entry, 0, len(s.projects))
	for _, e := range s.projects {
		out = append(out, e)
	}
	return out
}

// writeProject marshals the project under its entry lock and persists the
// bytes to the project's metadata file. The caller must not hold e.mu.
func (s *Store) writeProject(e *entry) error {
	e.mu.RLock()
	name := e.project.Name
	data, err := project.Marshal(e.project)
	e.mu.RUnlock()
	if err != nil {
		return err
	}
	return s.writeProjectBytes(name, data)
}

// writeProjectBytes persists already-marshaled metadata for the named
// project. Metadata writes are serialized store-wide.
func (s *Store) writeProjectBytes(name string, data []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return writeFileAtomic(filepath.Join(s.root, name), metadataFile, data, metadataBack)
}

// writeFlow persists one flow file into an install version directory.
func writeFlow(dir string, f *project.Flow) error {
	data, err := project.MarshalFlow(f)
	if err != nil {
		return err
	}
	return writeFileAtomic(dir, f.ID+flowSuffix, data, flowBack)
}
