// Package flowdef loads flow definitions from a staged source directory.
//
// Flow sources are CUE files declaring a top-level "flows" struct:
//
//	flows: {
//		"daily-etl": {
//			nodes: {
//				extract: {type: "command", params: {cmd: "fetch.sh"}}
//				load:    {type: "command", params: {cmd: "load.sh"}}
//			}
//			edges: [{from: "extract", to: "load"}]
//		}
//	}
//
// Loading tolerates bad flows: structural problems inside one flow are
// recorded on that flow and in the aggregate error list, never aborting the
// rest of the directory. Only directory-level failures (missing directory,
// CUE build failure) are terminal. The store decides later whether flows
// with errors may be installed.
package flowdef

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"

	"github.com/roach88/flowvault/internal/project"
)

// Result holds the flows parsed from a staged directory plus every
// non-fatal structural error accumulated across them.
type Result struct {
	Flows     *project.FlowMap
	Errors    []string
	FileCount int
}

type flowSource struct {
	Nodes map[string]nodeSource `json:"nodes"`
	Edges []edgeSource          `json:"edges"`
}

type nodeSource struct {
	Type   string            `json:"type"`
	Params map[string]string `json:"params"`
}

type edgeSource struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// LoadDir parses every CUE file under dir into a flow map.
// Returns an error only for directory-level failures; per-flow problems are
// reported through Result.Errors and the corresponding Flow.Errors.
func LoadDir(dir string) (*Result, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("flow source directory not found: %s", dir)
	}
	if err != nil {
		return nil, fmt.Errorf("access flow source directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", dir)
	}

	cueFiles, err := findCUEFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}
	if len(cueFiles) == 0 {
		return nil, fmt.Errorf("no flow definitions (*.cue) found in %s", dir)
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, fmt.Errorf("no CUE instances loaded from %s", dir)
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, fmt.Errorf("load flow definitions: %w", inst.Err)
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, fmt.Errorf("build flow definitions: %w", err)
	}

	result := &Result{
		Flows:     project.NewFlowMap(),
		FileCount: len(cueFiles),
	}

	flowsVal := value.LookupPath(cue.ParsePath("flows"))
	if !flowsVal.Exists() {
		return nil, fmt.Errorf("no \"flows\" declaration found in %s", dir)
	}

	iter, err := flowsVal.Fields()
	if err != nil {
		return nil, fmt.Errorf("iterate flows: %w", err)
	}
	for iter.Next() {
		id := iter.Label()
		flow := decodeFlow(id, iter.Value())
		for _, msg := range flow.Errors {
			result.Errors = append(result.Errors, fmt.Sprintf("flow %s: %s", id, msg))
		}
		flow.Initialize()
		result.Flows.Put(flow)
	}

	if result.Flows.Len() == 0 {
		return nil, fmt.Errorf("no flows declared in %s", dir)
	}
	return result, nil
}

// decodeFlow converts one CUE flow value into a Flow, recording structural
// problems on the flow itself. A decode failure still yields a flow carrying
// the error, so a forced upload can install a partially broken set.
func decodeFlow(id string, val cue.Value) *project.Flow {
	flow := &project.Flow{ID: id}

	var src flowSource
	if err := val.Decode(&src); err != nil {
		flow.Errors = append(flow.Errors, fmt.Sprintf("invalid definition: %v", err))
		return flow
	}

	if len(src.Nodes) == 0 {
		flow.Errors = append(flow.Errors, "no nodes defined")
	}

	// Node order must be stable across loads: sort by id.
	nodeIDs := make([]string, 0, len(src.Nodes))
	for nodeID := range src.Nodes {
		nodeIDs = append(nodeIDs, nodeID)
	}
	sort.Strings(nodeIDs)

	for _, nodeID := range nodeIDs {
		node := src.Nodes[nodeID]
		if node.Type == "" {
			flow.Errors = append(flow.Errors, fmt.Sprintf("node %s: missing type", nodeID))
		}
		flow.Nodes = append(flow.Nodes, project.Node{
			ID:     nodeID,
			Type:   node.Type,
			Params: node.Params,
		})
	}

	known := make(map[string]bool, len(nodeIDs))
	for _, nodeID := range nodeIDs {
		known[nodeID] = true
	}
	for _, edge := range src.Edges {
		if edge.From == edge.To {
			flow.Errors = append(flow.Errors, fmt.Sprintf("edge %s->%s: self reference", edge.From, edge.To))
		}
		if !known[edge.From] {
			flow.Errors = append(flow.Errors, fmt.Sprintf("edge %s->%s: unknown source node", edge.From, edge.To))
		}
		if !known[edge.To] {
			flow.Errors = append(flow.Errors, fmt.Sprintf("edge %s->%s: unknown target node", edge.From, edge.To))
		}
		flow.Edges = append(flow.Edges, project.Edge{From: edge.From, To: edge.To})
	}

	return flow
}

// findCUEFiles walks the directory and returns all .cue file paths.
func findCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
