package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/flowvault/internal/testutil"
)

func createProject(t *testing.T, rootOpts *RootOptions, name string) {
	t.Helper()
	cmd := NewCreateCommand(rootOpts)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{name, "-d", "test project"})
	require.NoError(t, cmd.Execute())
}

func TestUploadCommand(t *testing.T) {
	rootOpts := testRootOptions(t, "text")
	createProject(t, rootOpts, "payments")

	staged := testutil.StageFlows(t, map[string]testutil.FlowSpec{
		"settle": {
			Nodes: map[string]string{"extract": "command", "report": "command"},
			Edges: []string{"extract>report"},
		},
	})

	buf := &bytes.Buffer{}
	cmd := NewUploadCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"payments", staged})

	err := cmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "✓ Installed version")
	assert.Contains(t, buf.String(), "1 flow(s)")
}

func TestUploadCommandRejectsFlowErrors(t *testing.T) {
	rootOpts := testRootOptions(t, "json")
	createProject(t, rootOpts, "payments")

	staged := testutil.StageFlows(t, map[string]testutil.FlowSpec{
		"broken": {
			Nodes: map[string]string{"extract": "command"},
			Edges: []string{"extract>missing", "ghost>extract"},
		},
	})

	buf := &bytes.Buffer{}
	cmd := NewUploadCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"payments", staged})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeUpload, resp.Error.Code)

	// Every flow error is carried in the details.
	details, ok := resp.Error.Details.([]any)
	require.True(t, ok)
	assert.Len(t, details, 2)
}

func TestUploadCommandForce(t *testing.T) {
	rootOpts := testRootOptions(t, "text")
	createProject(t, rootOpts, "payments")

	staged := testutil.StageFlows(t, map[string]testutil.FlowSpec{
		"broken": {
			Nodes: map[string]string{"extract": "command"},
			Edges: []string{"extract>missing"},
		},
	})

	buf := &bytes.Buffer{}
	cmd := NewUploadCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"payments", staged, "--force"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "✓ Installed version")
}

func TestUploadCommandDenied(t *testing.T) {
	rootOpts := testRootOptions(t, "text")
	createProject(t, rootOpts, "payments")

	staged := testutil.StageFlows(t, map[string]testutil.FlowSpec{
		"settle": {Nodes: map[string]string{"step": "command"}},
	})

	stranger := &RootOptions{Format: "text", Root: rootOpts.Root, User: "mallory"}
	buf := &bytes.Buffer{}
	cmd := NewUploadCommand(stranger)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"payments", staged})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrCodePermission)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestUploadCommandMissingProject(t *testing.T) {
	rootOpts := testRootOptions(t, "text")

	staged := testutil.StageFlows(t, map[string]testutil.FlowSpec{
		"settle": {Nodes: map[string]string{"step": "command"}},
	})

	buf := &bytes.Buffer{}
	cmd := NewUploadCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"ghost", staged})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrCodeNotFound)
}
