package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenarioSchema = `name: app
stores:
  - name: users
    keyPath: id
    data:
      - {id: 1, name: Joe}
`

const passingScenario = `name: passing
schema: schema.yaml
steps:
  - op: count
    store: users
    expect:
      result: '1'
assertions:
  - type: record
    store: users
    key: 1
    expect: '{"id":1,"name":"Joe"}'
`

const failingScenario = `name: failing
schema: schema.yaml
steps:
  - op: count
    store: users
    expect:
      result: '7'
`

// setupScenarios writes a schema and the given scenarios into a temp dir.
func setupScenarios(t *testing.T, scenarios map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "schema.yaml"), []byte(scenarioSchema), 0644))
	for name, body := range scenarios {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name+".yaml"), []byte(body), 0644))
	}
	return dir
}

func runTestCommand(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewTestCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestTestCommandMissingArgs(t *testing.T) {
	_, err := runTestCommand(t, "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestTestCommandNonExistentScenariosDir(t *testing.T) {
	_, err := runTestCommand(t, "text", "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scenarios directory not found")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTestCommandNoScenarios(t *testing.T) {
	out, err := runTestCommand(t, "text", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found.")
}

func TestTestCommandPassing(t *testing.T) {
	dir := setupScenarios(t, map[string]string{"passing": passingScenario})
	// schema.yaml is not a scenario and fails to load as one
	out, err := runTestCommand(t, "text", dir, "--filter", "pass*")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ passing")
	assert.Contains(t, out, "1 passed, 0 failed, 1 total")
}

func TestTestCommandFailing(t *testing.T) {
	dir := setupScenarios(t, map[string]string{"failing": failingScenario})
	out, err := runTestCommand(t, "text", dir, "--filter", "fail*")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ failing")
	assert.Contains(t, out, "got 1, want 7")
}

func TestTestCommandGoldenRoundTrip(t *testing.T) {
	dir := setupScenarios(t, map[string]string{"passing": passingScenario})

	out, err := runTestCommand(t, "text", dir, "--filter", "passing", "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "golden updated")

	golden, err := os.ReadFile(filepath.Join(dir, "golden", "passing.golden"))
	require.NoError(t, err)
	assert.Equal(t, `{"scenario":"passing","trace":[{"op":"count","result":1,"seq":1,"store":"users"}]}`, string(golden))

	_, err = runTestCommand(t, "text", dir, "--filter", "passing")
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "golden", "passing.golden"), []byte("{}"), 0644))
	out, err = runTestCommand(t, "text", dir, "--filter", "passing")
	require.Error(t, err)
	assert.Contains(t, out, "trace does not match golden file")
}

func TestTestCommandJSON(t *testing.T) {
	dir := setupScenarios(t, map[string]string{
		"passing": passingScenario,
		"failing": failingScenario,
	})

	out, err := runTestCommand(t, "json", dir, "--filter", "*ing")
	require.Error(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
		Error  *CLIError  `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, 1, resp.Data.Passed)
	assert.Equal(t, 1, resp.Data.Failed)
	assert.Equal(t, 2, resp.Data.Total)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E_TEST_FAILED", resp.Error.Code)
}
