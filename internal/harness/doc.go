// Package harness provides conformance testing for the import pipeline.
//
// A scenario pairs a MusicXML source with expectations about the
// import outcome and is defined in a YAML file:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	source: |
//	  <score-partwise>...</score-partwise>
//	expect:
//	  partial_import: true
//	  instruments: 2
//	  notes: 8
//	  warnings:
//	    overlap_resolution: 1
//
// Failing imports are asserted with fail_with naming the expected
// error code:
//
//	expect:
//	  fail_with: NO_VALID_CONTENT
//
// # Deterministic Testing
//
// Import is fully deterministic: identical input produces identical
// entity IDs, warning order, and canonical JSON bytes. Scenarios
// exploit this by comparing the canonical serialization of the result
// against golden fixtures in testdata/golden, so any change to import
// output shows up as a fixture diff.
//
// # Usage
//
// Load and run a scenario:
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/overlap.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, problem := range harness.Check(scenario, result) {
//	    log.Println(problem)
//	}
package harness
