package harness

import (
	"errors"
	"fmt"

	"github.com/partwise/partwise/internal/importer"
)

// Result holds the outcome of running one scenario: either an import
// result or the import error, never both.
type Result struct {
	Import *importer.ImportResult
	Err    error
}

// Run executes a scenario's import. Loading problems (unreadable
// source file) are returned as an error; import failures land in
// Result.Err because a scenario may expect them.
func Run(scenario *Scenario) (*Result, error) {
	data, err := scenario.sourceBytes()
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	result, err := importer.Import(data, scenario.Name)
	if err != nil {
		return &Result{Err: err}, nil
	}
	return &Result{Import: result}, nil
}

// Check applies a scenario's expectations to a result and returns one
// error per unmet expectation.
func Check(scenario *Scenario, result *Result) []error {
	expect := scenario.Expect
	var problems []error

	if expect.FailWith != "" {
		if result.Err == nil {
			return []error{fmt.Errorf("expected failure with code %s, import succeeded", expect.FailWith)}
		}
		var ie *importer.ImportError
		if !errors.As(result.Err, &ie) {
			return []error{fmt.Errorf("expected ImportError with code %s, got %v", expect.FailWith, result.Err)}
		}
		if string(ie.Code) != expect.FailWith {
			return []error{fmt.Errorf("expected failure code %s, got %s", expect.FailWith, ie.Code)}
		}
		return nil
	}

	if result.Err != nil {
		return []error{fmt.Errorf("expected success, import failed: %v", result.Err)}
	}
	imported := result.Import

	if imported.PartialImport != expect.PartialImport {
		problems = append(problems, fmt.Errorf("partial_import = %v, want %v",
			imported.PartialImport, expect.PartialImport))
	}
	if expect.Instruments > 0 && imported.Statistics.InstrumentCount != expect.Instruments {
		problems = append(problems, fmt.Errorf("instrument count = %d, want %d",
			imported.Statistics.InstrumentCount, expect.Instruments))
	}
	if expect.Staves > 0 && imported.Statistics.StaffCount != expect.Staves {
		problems = append(problems, fmt.Errorf("staff count = %d, want %d",
			imported.Statistics.StaffCount, expect.Staves))
	}
	if expect.Voices > 0 && imported.Statistics.VoiceCount != expect.Voices {
		problems = append(problems, fmt.Errorf("voice count = %d, want %d",
			imported.Statistics.VoiceCount, expect.Voices))
	}
	if expect.Notes > 0 && imported.Statistics.NoteCount != expect.Notes {
		problems = append(problems, fmt.Errorf("note count = %d, want %d",
			imported.Statistics.NoteCount, expect.Notes))
	}

	for category, want := range expect.Warnings {
		got := 0
		for _, w := range imported.Warnings {
			if string(w.Category) == category {
				got++
			}
		}
		if got != want {
			problems = append(problems, fmt.Errorf("%s warnings = %d, want %d", category, got, want))
		}
	}

	return problems
}
