package project

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleFlow() *Flow {
	return &Flow{
		ID: "daily-etl",
		Nodes: []Node{
			{ID: "extract", Type: "command", Params: map[string]string{"cmd": "fetch.sh"}},
			{ID: "transform", Type: "command"},
			{ID: "load", Type: "command"},
		},
		Edges: []Edge{
			{From: "extract", To: "transform"},
			{From: "transform", To: "load"},
		},
	}
}

func TestFlow_Initialize(t *testing.T) {
	f := sampleFlow()
	f.Initialize()

	assert.Equal(t, []string{"transform"}, f.Successors("extract"))
	assert.Equal(t, []string{"load"}, f.Successors("transform"))
	assert.Nil(t, f.Successors("load"))
	assert.Equal(t, []string{"transform"}, f.Predecessors("load"))
	assert.Nil(t, f.Predecessors("extract"))
}

func TestFlow_Initialize_IgnoresDanglingEdges(t *testing.T) {
	f := sampleFlow()
	f.Edges = append(f.Edges, Edge{From: "load", To: "missing"})
	f.Initialize()

	assert.Nil(t, f.Successors("load"))
}

func TestMarshalFlow_RoundTrip(t *testing.T) {
	f := sampleFlow()
	f.Errors = []string{"node transform: no command set"}

	data, err := MarshalFlow(f)
	require.NoError(t, err)

	got, err := FlowFromJSON(data)
	require.NoError(t, err)
	assert.Equal(t, f.ID, got.ID)
	assert.Equal(t, f.Nodes, got.Nodes)
	assert.Equal(t, f.Edges, got.Edges)
	assert.Equal(t, f.Errors, got.Errors)
}

func TestMarshalFlow_Deterministic(t *testing.T) {
	f := sampleFlow()
	first, err := MarshalFlow(f)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := MarshalFlow(f)
		require.NoError(t, err)
		assert.Equal(t, string(first), string(again))
	}
}

func TestFlowFromJSON_MissingID(t *testing.T) {
	_, err := FlowFromJSON([]byte(`{"nodes":[],"edges":[]}`))
	assert.Error(t, err)
}

func TestFlowMap_PreservesInsertionOrder(t *testing.T) {
	m := NewFlowMap()
	for _, id := range []string{"zulu", "alpha", "mike"} {
		m.Put(&Flow{ID: id})
	}

	assert.Equal(t, []string{"zulu", "alpha", "mike"}, m.IDs())
	assert.Equal(t, 3, m.Len())

	// Replacing keeps the original position.
	m.Put(&Flow{ID: "alpha", Errors: []string{"replaced"}})
	assert.Equal(t, []string{"zulu", "alpha", "mike"}, m.IDs())
	assert.Equal(t, []string{"replaced"}, m.Get("alpha").Errors)
}

func TestFlowMap_CloneIsDeep(t *testing.T) {
	m := NewFlowMap()
	f := sampleFlow()
	f.Initialize()
	m.Put(f)

	clone := m.Clone()
	clone.Get("daily-etl").Nodes[0].Params["cmd"] = "evil.sh"
	clone.Put(&Flow{ID: "extra"})

	assert.Equal(t, "fetch.sh", m.Get("daily-etl").Nodes[0].Params["cmd"])
	assert.Nil(t, m.Get("extra"))

	// Clones are initialized and usable immediately.
	assert.Equal(t, []string{"transform"}, clone.Get("daily-etl").Successors("extract"))
}
