// Package access implements the capability model gating every store operation.
//
// A Capability is a bitset over READ, WRITE and ADMIN. Each project carries a
// table mapping user ids to the capabilities granted to that user. ADMIN
// implies every other capability, and is granted automatically to a project's
// creator.
//
// Callers decide disclosure policy themselves: listing operations silently
// filter out denied projects, while direct lookups surface the denial so a
// caller can distinguish "forbidden" from "absent".
package access

import (
	"fmt"
	"sort"
	"strings"
)

// Capability is a set of granted permissions, stored as a bitset.
type Capability uint8

const (
	// Read allows viewing a project and resolving its configuration files.
	Read Capability = 1 << iota
	// Write allows uploading flows and mutating project state.
	Write
	// Admin implies every capability, including removal.
	Admin
)

// None is the empty capability set.
const None Capability = 0

// Allows reports whether the set satisfies a required capability.
// Admin satisfies everything.
func (c Capability) Allows(want Capability) bool {
	if c&Admin != 0 {
		return true
	}
	return c&want == want && want != None
}

// Grant returns the set with additional capabilities added.
func (c Capability) Grant(more Capability) Capability {
	return c | more
}

// Revoke returns the set with the given capabilities removed.
func (c Capability) Revoke(drop Capability) Capability {
	return c &^ drop
}

// Names returns the canonical name of each granted capability, sorted.
// Used when serializing a permission table.
func (c Capability) Names() []string {
	var names []string
	if c&Admin != 0 {
		names = append(names, "ADMIN")
	}
	if c&Read != 0 {
		names = append(names, "READ")
	}
	if c&Write != 0 {
		names = append(names, "WRITE")
	}
	sort.Strings(names)
	return names
}

// String returns the granted capability names joined by commas, or "NONE".
func (c Capability) String() string {
	names := c.Names()
	if len(names) == 0 {
		return "NONE"
	}
	return strings.Join(names, ",")
}

// Parse converts a capability name to its bit. Case-insensitive.
func Parse(name string) (Capability, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "READ":
		return Read, nil
	case "WRITE":
		return Write, nil
	case "ADMIN":
		return Admin, nil
	default:
		return None, fmt.Errorf("unknown capability %q", name)
	}
}

// ParseAll converts a list of capability names to a single set.
func ParseAll(names []string) (Capability, error) {
	var c Capability
	for _, name := range names {
		bit, err := Parse(name)
		if err != nil {
			return None, err
		}
		c |= bit
	}
	return c, nil
}

// Table is a project's permission table: user id to granted capabilities.
type Table map[string]Capability

// Allows reports whether the table grants the user a required capability.
// Users absent from the table hold no capabilities.
func (t Table) Allows(user string, want Capability) bool {
	return t[user].Allows(want)
}

// Clone returns an independent copy of the table.
func (t Table) Clone() Table {
	if t == nil {
		return nil
	}
	out := make(Table, len(t))
	for user, cap := range t {
		out[user] = cap
	}
	return out
}
