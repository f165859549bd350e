package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// RunWithGolden executes a scenario, applies its expectations, and
// compares the canonical JSON of the import result against the golden
// file testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// A missing fixture is written on first run, so a new scenario
// bootstraps its own baseline and later runs diff against it.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	for _, problem := range Check(scenario, result) {
		t.Errorf("scenario %s: %v", scenario.Name, problem)
	}
	if result.Import == nil {
		// Expected-failure scenarios have no snapshot to compare.
		return nil
	}

	canonical, err := result.Import.Serialize()
	if err != nil {
		return err
	}

	fixture := filepath.Join("testdata", "golden", scenario.Name+".golden")
	if _, statErr := os.Stat(fixture); os.IsNotExist(statErr) {
		if err := os.MkdirAll(filepath.Dir(fixture), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(fixture, canonical, 0o644); err != nil {
			return err
		}
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, canonical)
	return nil
}
