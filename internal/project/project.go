// Package project defines the data model persisted by the store: projects,
// their permission tables, and the flow definitions a project owns.
//
// Serialization goes through a canonical JSON writer so that persisted bytes
// are deterministic: rewriting unchanged state produces identical files.
package project

import (
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/roach88/flowvault/internal/access"
)

// nameRE validates project names: a letter followed by letters, digits,
// underscore or dash.
var nameRE = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)

// ValidName reports whether name is a legal project name.
func ValidName(name string) bool {
	return nameRE.MatchString(name)
}

// Project is a named, permissioned container for a versioned set of flows.
//
// Name is immutable after creation. Source names the install version
// directory currently active for the project; it is empty until the first
// successful upload. Source and Flows are always updated together: callers
// mutate a Project only while holding the store's per-project lock, and
// readers receive deep copies.
type Project struct {
	Name             string
	Description      string
	CreateTime       int64 // unix milliseconds
	LastModifiedTime int64
	LastModifiedUser string
	Source           string
	Permissions      access.Table
	Flows            *FlowMap
}

// New builds a project with the creator granted ADMIN and an empty flow set.
func New(name, description, creator string, now int64) *Project {
	return &Project{
		Name:             name,
		Description:      description,
		CreateTime:       now,
		LastModifiedTime: now,
		LastModifiedUser: creator,
		Permissions:      access.Table{creator: access.Admin},
		Flows:            NewFlowMap(),
	}
}

// Clone returns a deep copy safe to hand to a caller while the original
// keeps being mutated under the store's locks.
func (p *Project) Clone() *Project {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Permissions = p.Permissions.Clone()
	cp.Flows = p.Flows.Clone()
	return &cp
}

// ToObject converts the project metadata to the structured value persisted
// in project.json. Flows are not part of the metadata file; they live in
// individual .flow files inside the install version directory.
func (p *Project) ToObject() map[string]any {
	perms := make(map[string]any, len(p.Permissions))
	for user, cap := range p.Permissions {
		perms[user] = cap.Names()
	}

	obj := map[string]any{
		"name":             p.Name,
		"description":      p.Description,
		"createTime":       p.CreateTime,
		"lastModifiedTime": p.LastModifiedTime,
		"lastModifiedUser": p.LastModifiedUser,
		"permissions":      perms,
	}
	if p.Source != "" {
		obj["source"] = p.Source
	}
	return obj
}

// Marshal serializes the project metadata for its project.json file.
func Marshal(p *Project) ([]byte, error) {
	data, err := MarshalCanonical(p.ToObject())
	if err != nil {
		return nil, fmt.Errorf("marshal project %q: %w", p.Name, err)
	}
	return data, nil
}

type projectJSON struct {
	Name             string              `json:"name"`
	Description      string              `json:"description"`
	CreateTime       int64               `json:"createTime"`
	LastModifiedTime int64               `json:"lastModifiedTime"`
	LastModifiedUser string              `json:"lastModifiedUser"`
	Source           string              `json:"source"`
	Permissions      map[string][]string `json:"permissions"`
}

// FromJSON reconstructs a project from its persisted project.json bytes.
// The flow map is empty; the recovery scanner attaches flows separately
// after loading the install version directory.
func FromJSON(data []byte) (*Project, error) {
	var raw projectJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse project: %w", err)
	}
	if raw.Name == "" {
		return nil, fmt.Errorf("parse project: missing name")
	}

	perms := make(access.Table, len(raw.Permissions))
	for user, names := range raw.Permissions {
		cap, err := access.ParseAll(names)
		if err != nil {
			return nil, fmt.Errorf("parse project %q: user %q: %w", raw.Name, user, err)
		}
		perms[user] = cap
	}

	return &Project{
		Name:             raw.Name,
		Description:      raw.Description,
		CreateTime:       raw.CreateTime,
		LastModifiedTime: raw.LastModifiedTime,
		LastModifiedUser: raw.LastModifiedUser,
		Source:           raw.Source,
		Permissions:      perms,
		Flows:            NewFlowMap(),
	}, nil
}
