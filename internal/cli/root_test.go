package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandHelp(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--help"})

	require.NoError(t, cmd.Execute())

	output := buf.String()
	for _, sub := range []string{"create", "upload", "list", "get", "commit", "remove", "permission", "properties"} {
		assert.Contains(t, output, sub)
	}
}

func TestRootCommandInvalidFormat(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"list", "--format", "xml", "--user", "ana", "--root", t.TempDir()})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestRootCommandRequiresUser(t *testing.T) {
	t.Setenv("FLOWVAULT_USER", "")

	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"list", "--root", t.TempDir()})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--user is required")
}

func TestRootCommandEndToEnd(t *testing.T) {
	root := t.TempDir()

	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"create", "payments", "-d", "Payment pipelines", "--user", "ana", "--root", root})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "✓ Created project payments")

	// A second invocation sees the project persisted by the first.
	buf = &bytes.Buffer{}
	cmd = NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"get", "payments", "--user", "ana", "--root", root})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "payments")
	assert.Contains(t, buf.String(), "Payment pipelines")
}
