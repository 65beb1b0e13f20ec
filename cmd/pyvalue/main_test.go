package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emretezel/pyvalue-sub000/internal/models"
	"github.com/emretezel/pyvalue-sub000/internal/screening"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// writeConfig points storage and fx at a temp dir and returns the config path.
func writeConfig(t *testing.T) string {
	t.Helper()
	t.Setenv("PYVALUE_DATA_PATH", "")
	t.Setenv("PYVALUE_STORAGE_BACKEND", "")
	dir := t.TempDir()
	content := fmt.Sprintf(`environment = "test"

[storage]
backend = "badger"

[storage.badger]
path = %q

[fx]
path = %q

[logging]
level = "error"
`, filepath.Join(dir, "store"), filepath.Join(dir, "fx"))
	path := filepath.Join(dir, "pyvalue.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "pyvalue")
}

func TestIngestSEC_CIKNeedsSingleSymbol(t *testing.T) {
	_, err := execute(t, "ingest", "sec", "--cik", "0000320193", "AAPL.US", "MSFT.US")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "single symbol")
}

func TestIngest_RequiresSymbol(t *testing.T) {
	_, err := execute(t, "ingest", "eodhd")
	require.Error(t, err)
}

func TestScreenCmd_MissingDefinition(t *testing.T) {
	_, err := execute(t, "screen", filepath.Join(t.TempDir(), "missing.yml"))
	require.Error(t, err)
}

func TestScreenCmd_EmptyStore(t *testing.T) {
	cfg := writeConfig(t)
	def := filepath.Join(t.TempDir(), "screen.yml")
	require.NoError(t, os.WriteFile(def, []byte(`
name: Positive working capital
criteria:
  - name: working capital positive
    left: {metric: working_capital}
    operator: ">"
    right: {value: 0}
`), 0o644))

	out, err := execute(t, "--config", cfg, "--env-file", filepath.Join(t.TempDir(), "none.env"), "screen", def)
	require.NoError(t, err)
	assert.Contains(t, out, "0 of 0 passed")
}

func TestComputeCmd_EmptyStore(t *testing.T) {
	cfg := writeConfig(t)

	out, err := execute(t, "--config", cfg, "compute", "--metric", "working_capital")
	require.NoError(t, err)
	assert.Contains(t, out, "0 symbols, 0 computed")
}

func TestComputeCmd_UnknownMetric(t *testing.T) {
	cfg := writeConfig(t)

	_, err := execute(t, "--config", cfg, "compute", "--metric", "no_such_metric")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no_such_metric")
}

func TestForEachSymbol(t *testing.T) {
	var out bytes.Buffer
	err := forEachSymbol(&out, []string{"AAPL.US", "BAD.US"}, func(symbol string) (int, error) {
		if symbol == "BAD.US" {
			return 0, errors.New("boom")
		}
		return 12, nil
	})
	require.Error(t, err)
	assert.Equal(t, "1 of 2 symbols failed", err.Error())
	assert.Contains(t, out.String(), "AAPL.US\t12 facts")
	assert.Contains(t, out.String(), "BAD.US\terror: boom")
}

func TestWriteCSV_PassingColumnsOnly(t *testing.T) {
	left := 120.5
	def := &screening.Definition{Criteria: []screening.Criterion{{Name: "wc positive", Operator: screening.OpGreater}}}
	results := []models.ScreenResult{
		{Symbol: "AAPL.US", Passed: true, Outcomes: []models.CriterionOutcome{{Name: "wc positive", Left: &left, Passed: true}}},
		{Symbol: "MSFT.US", Passed: false, Outcomes: []models.CriterionOutcome{{Name: "wc positive"}}},
	}
	path := filepath.Join(t.TempDir(), "out.csv")

	require.NoError(t, writeCSV(path, def, results))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Criterion,AAPL.US\nwc positive,120.5000\n", string(data))
}

func TestSampleScreenDefinitionLoads(t *testing.T) {
	def, err := screening.LoadDefinition(filepath.Join("..", "..", "config", "screens", "graham.yml"))
	require.NoError(t, err)
	require.NoError(t, def.Validate())
	assert.Len(t, def.Criteria, 5)
}
