package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// FlowSpec describes one flow for StageFlows: node ids mapped to their type,
// plus "from>to" edge specs.
type FlowSpec struct {
	Nodes map[string]string
	Edges []string
}

// StageFlows writes a flows.cue file declaring the given flows into a fresh
// temp directory and returns the directory path. The directory is what a
// caller would hand to the store's upload.
func StageFlows(t *testing.T, flows map[string]FlowSpec) string {
	t.Helper()
	dir := t.TempDir()

	var b strings.Builder
	b.WriteString("flows: {\n")

	ids := make([]string, 0, len(flows))
	for id := range flows {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		spec := flows[id]
		fmt.Fprintf(&b, "\t%q: {\n\t\tnodes: {\n", id)

		nodes := make([]string, 0, len(spec.Nodes))
		for n := range spec.Nodes {
			nodes = append(nodes, n)
		}
		sort.Strings(nodes)
		for _, n := range nodes {
			fmt.Fprintf(&b, "\t\t\t%q: {type: %q}\n", n, spec.Nodes[n])
		}

		b.WriteString("\t\t}\n\t\tedges: [")
		for i, e := range spec.Edges {
			from, to, ok := strings.Cut(e, ">")
			require.True(t, ok, "edge spec %q must be from>to", e)
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "{from: %q, to: %q}", from, to)
		}
		b.WriteString("]\n\t}\n")
	}
	b.WriteString("}\n")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "flows.cue"), []byte(b.String()), 0o644))
	return dir
}

// WriteFile writes a file under dir, creating parent directories as needed,
// and fails the test on error.
func WriteFile(t *testing.T, dir, rel, content string) string {
	t.Helper()
	path := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
