package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCapability_AdminImpliesAll(t *testing.T) {
	assert.True(t, Admin.Allows(Read))
	assert.True(t, Admin.Allows(Write))
	assert.True(t, Admin.Allows(Admin))
}

func TestCapability_ReadDoesNotImplyWrite(t *testing.T) {
	assert.True(t, Read.Allows(Read))
	assert.False(t, Read.Allows(Write))
	assert.False(t, Read.Allows(Admin))
}

func TestCapability_NoneAllowsNothing(t *testing.T) {
	assert.False(t, None.Allows(Read))
	assert.False(t, None.Allows(Write))
	assert.False(t, None.Allows(Admin))

	// The empty requirement is never satisfied, even by Read|Write.
	assert.False(t, (Read | Write).Allows(None))
}

func TestCapability_GrantRevoke(t *testing.T) {
	c := None.Grant(Read).Grant(Write)
	assert.True(t, c.Allows(Read))
	assert.True(t, c.Allows(Write))

	c = c.Revoke(Write)
	assert.True(t, c.Allows(Read))
	assert.False(t, c.Allows(Write))
}

func TestCapability_NamesSorted(t *testing.T) {
	assert.Equal(t, []string{"ADMIN", "READ", "WRITE"}, (Admin | Read | Write).Names())
	assert.Equal(t, []string{"READ"}, Read.Names())
	assert.Empty(t, None.Names())
}

func TestParse(t *testing.T) {
	for name, want := range map[string]Capability{
		"READ":  Read,
		"write": Write,
		" Admin ": Admin,
	} {
		got, err := Parse(name)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := Parse("EXECUTE")
	assert.Error(t, err)
}

func TestParseAll(t *testing.T) {
	c, err := ParseAll([]string{"READ", "WRITE"})
	require.NoError(t, err)
	assert.Equal(t, Read|Write, c)

	_, err = ParseAll([]string{"READ", "bogus"})
	assert.Error(t, err)
}

func TestTable_Allows(t *testing.T) {
	tbl := Table{"alice": Admin, "bob": Read}

	assert.True(t, tbl.Allows("alice", Write))
	assert.True(t, tbl.Allows("bob", Read))
	assert.False(t, tbl.Allows("bob", Write))
	assert.False(t, tbl.Allows("mallory", Read))
}

func TestTable_CloneIsIndependent(t *testing.T) {
	tbl := Table{"alice": Read}
	clone := tbl.Clone()
	clone["alice"] = Admin
	clone["bob"] = Write

	assert.Equal(t, Read, tbl["alice"])
	_, ok := tbl["bob"]
	assert.False(t, ok)
}
