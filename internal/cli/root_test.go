package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "kvq", cmd.Use)
	assert.Contains(t, cmd.Long, "KVQ_DB")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"init", "select", "insert", "update", "delete", "count", "last", "test"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	dbFlag := cmd.PersistentFlags().Lookup("db")
	require.NotNil(t, dbFlag)
	assert.Equal(t, "", dbFlag.DefValue)

	intervalFlag := cmd.PersistentFlags().Lookup("interval")
	require.NotNil(t, intervalFlag)
	assert.Equal(t, "100ms", intervalFlag.DefValue)
}

func TestSelectCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	selectCmd, _, err := cmd.Find([]string{"select"})
	require.NoError(t, err)

	for _, name := range []string{"where", "range", "limit"} {
		assert.NotNil(t, selectCmd.Flags().Lookup(name), "flag %s", name)
	}
}

func TestUpdateCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	updateCmd, _, err := cmd.Find([]string{"update"})
	require.NoError(t, err)

	mergeFlag := updateCmd.Flags().Lookup("merge")
	require.NotNil(t, mergeFlag)
	assert.Equal(t, "false", mergeFlag.DefValue)
}

func TestInvalidFormat(t *testing.T) {
	_, _, err := runCLI(t, "count", "users", "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}
