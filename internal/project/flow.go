package project

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Node is a single step inside a flow definition.
type Node struct {
	ID     string
	Type   string
	Params map[string]string
}

// Edge is a directed dependency between two nodes of a flow.
type Edge struct {
	From string
	To   string
}

// Flow is one workflow definition belonging to a project, identified by an
// id unique within that project. The store treats it as a serializable unit:
// it persists and reloads flows but never interprets their graph beyond what
// Initialize computes.
//
// Errors collects non-fatal structural problems reported by the loader that
// produced the flow. A flow with errors can still be persisted and installed
// under a forced upload.
type Flow struct {
	ID     string
	Nodes  []Node
	Edges  []Edge
	Errors []string

	outbound map[string][]string
	inbound  map[string][]string
}

// Initialize resolves the flow's internal references, building the adjacency
// index used by Successors and Predecessors. Edges pointing at unknown nodes
// are ignored here; the loader records them as structural errors.
// Must be called after deserialization and before the flow is served.
func (f *Flow) Initialize() {
	known := make(map[string]bool, len(f.Nodes))
	for _, n := range f.Nodes {
		known[n.ID] = true
	}

	f.outbound = make(map[string][]string)
	f.inbound = make(map[string][]string)
	for _, e := range f.Edges {
		if !known[e.From] || !known[e.To] {
			continue
		}
		f.outbound[e.From] = append(f.outbound[e.From], e.To)
		f.inbound[e.To] = append(f.inbound[e.To], e.From)
	}
	for _, adj := range []map[string][]string{f.outbound, f.inbound} {
		for _, targets := range adj {
			sort.Strings(targets)
		}
	}
}

// Successors returns the ids of nodes reachable from the given node by one
// edge. Returns nil for unknown nodes or before Initialize.
func (f *Flow) Successors(nodeID string) []string {
	return f.outbound[nodeID]
}

// Predecessors returns the ids of nodes with an edge into the given node.
func (f *Flow) Predecessors(nodeID string) []string {
	return f.inbound[nodeID]
}

// Clone returns a deep copy. The adjacency index is not copied; callers
// re-run Initialize on the copy if they need it.
func (f *Flow) Clone() *Flow {
	if f == nil {
		return nil
	}
	out := &Flow{ID: f.ID}
	if len(f.Nodes) > 0 {
		out.Nodes = make([]Node, len(f.Nodes))
		for i, n := range f.Nodes {
			cp := n
			if n.Params != nil {
				cp.Params = make(map[string]string, len(n.Params))
				for k, v := range n.Params {
					cp.Params[k] = v
				}
			}
			out.Nodes[i] = cp
		}
	}
	out.Edges = append([]Edge(nil), f.Edges...)
	out.Errors = append([]string(nil), f.Errors...)
	return out
}

// ToObject converts the flow to the structured value persisted in its .flow
// file. Keys and shapes here are the on-disk contract; change with care.
func (f *Flow) ToObject() map[string]any {
	nodes := make([]any, len(f.Nodes))
	for i, n := range f.Nodes {
		node := map[string]any{
			"id":   n.ID,
			"type": n.Type,
		}
		if len(n.Params) > 0 {
			params := make(map[string]any, len(n.Params))
			for k, v := range n.Params {
				params[k] = v
			}
			node["params"] = params
		}
		nodes[i] = node
	}

	edges := make([]any, len(f.Edges))
	for i, e := range f.Edges {
		edges[i] = map[string]any{"from": e.From, "to": e.To}
	}

	obj := map[string]any{
		"id":    f.ID,
		"nodes": nodes,
		"edges": edges,
	}
	if len(f.Errors) > 0 {
		obj["errors"] = f.Errors
	}
	return obj
}

// MarshalFlow serializes a flow to its persisted .flow representation.
func MarshalFlow(f *Flow) ([]byte, error) {
	data, err := MarshalCanonical(f.ToObject())
	if err != nil {
		return nil, fmt.Errorf("marshal flow %q: %w", f.ID, err)
	}
	return data, nil
}

type flowJSON struct {
	ID     string     `json:"id"`
	Nodes  []nodeJSON `json:"nodes"`
	Edges  []edgeJSON `json:"edges"`
	Errors []string   `json:"errors"`
}

type nodeJSON struct {
	ID     string            `json:"id"`
	Type   string            `json:"type"`
	Params map[string]string `json:"params"`
}

type edgeJSON struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// FlowFromJSON reconstructs a flow from its persisted .flow representation.
// The returned flow is not initialized.
func FlowFromJSON(data []byte) (*Flow, error) {
	var raw flowJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse flow: %w", err)
	}
	if raw.ID == "" {
		return nil, fmt.Errorf("parse flow: missing id")
	}

	f := &Flow{ID: raw.ID, Errors: raw.Errors}
	for _, n := range raw.Nodes {
		f.Nodes = append(f.Nodes, Node{ID: n.ID, Type: n.Type, Params: n.Params})
	}
	for _, e := range raw.Edges {
		f.Edges = append(f.Edges, Edge{From: e.From, To: e.To})
	}
	return f, nil
}

// FlowMap is an insertion-ordered collection of flows keyed by id.
// Iteration order matches the order flows were added, which in turn matches
// the order the loader discovered them. A plain Go map would not preserve
// this, and the order is visible in listings and persisted artifacts.
type FlowMap struct {
	ids  []string
	byID map[string]*Flow
}

// NewFlowMap returns an empty flow map.
func NewFlowMap() *FlowMap {
	return &FlowMap{byID: make(map[string]*Flow)}
}

// Put adds or replaces a flow. A replaced flow keeps its original position.
func (m *FlowMap) Put(f *Flow) {
	if _, ok := m.byID[f.ID]; !ok {
		m.ids = append(m.ids, f.ID)
	}
	m.byID[f.ID] = f
}

// Get returns the flow with the given id, or nil.
func (m *FlowMap) Get(id string) *Flow {
	if m == nil {
		return nil
	}
	return m.byID[id]
}

// Len returns the number of flows.
func (m *FlowMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.ids)
}

// IDs returns the flow ids in insertion order.
func (m *FlowMap) IDs() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.ids...)
}

// All returns the flows in insertion order.
func (m *FlowMap) All() []*Flow {
	if m == nil {
		return nil
	}
	out := make([]*Flow, 0, len(m.ids))
	for _, id := range m.ids {
		out = append(out, m.byID[id])
	}
	return out
}

// Clone returns a deep copy of the map and every flow in it.
func (m *FlowMap) Clone() *FlowMap {
	if m == nil {
		return nil
	}
	out := NewFlowMap()
	for _, id := range m.ids {
		cp := m.byID[id].Clone()
		cp.Initialize()
		out.Put(cp)
	}
	return out
}
