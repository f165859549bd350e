package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenarioFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadScenario_Valid(t *testing.T) {
	path := writeScenarioFile(t, `
name: simple
description: a simple scenario
source: "<score-partwise/>"
expect:
  notes: 1
  warnings:
    missing_elements: 2
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, "simple", scenario.Name)
	assert.Equal(t, 1, scenario.Expect.Notes)
	assert.Equal(t, 2, scenario.Expect.Warnings["missing_elements"])
}

func TestLoadScenario_SourceFileResolvedRelative(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "piece.musicxml"), []byte("<score-partwise/>"), 0o644))
	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: from-file
description: reads its document from disk
source_file: piece.musicxml
expect:
  notes: 1
`), 0o644))

	scenario, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "piece.musicxml"), scenario.SourceFile)

	data, err := scenario.sourceBytes()
	require.NoError(t, err)
	assert.Equal(t, "<score-partwise/>", string(data))
}

func TestLoadScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			"missing name",
			"description: d\nsource: x\n",
		},
		{
			"missing description",
			"name: n\nsource: x\n",
		},
		{
			"no source at all",
			"name: n\ndescription: d\n",
		},
		{
			"both source and source_file",
			"name: n\ndescription: d\nsource: x\nsource_file: y.xml\n",
		},
		{
			"source file does not exist",
			"name: n\ndescription: d\nsource_file: nope.xml\n",
		},
		{
			"unknown field rejected",
			"name: n\ndescription: d\nsource: x\nexpcet: {}\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenarioFile(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
