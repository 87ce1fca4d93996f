package harness

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/shoalcove/scalegen/internal/generate"
)

// BatchSnapshot captures the complete output of a scenario run. All
// fields marshal deterministically: token order follows iteration
// order and the id sequence is fixed by the scenario.
type BatchSnapshot struct {
	ScenarioName string           `json:"scenario_name"`
	Result       *generate.Result `json:"result"`
}

// RunWithGolden executes a scenario and compares the batch against a
// golden file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns an error if the run itself fails; a mismatch against the
// golden file fails the test via goldie.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an already-obtained result against a golden
// file without re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *generate.Result) error {
	t.Helper()

	snapshot := BatchSnapshot{
		ScenarioName: scenarioName,
		Result:       result,
	}
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	return nil
}
