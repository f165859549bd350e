package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines one import conformance scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Source is the inline MusicXML document to import. Exactly one of
	// Source and SourceFile must be set.
	Source string `yaml:"source,omitempty"`

	// SourceFile is a path to the document, relative to the scenario
	// file location.
	SourceFile string `yaml:"source_file,omitempty"`

	// Expect holds the assertions applied to the import outcome.
	Expect Expectations `yaml:"expect"`
}

// Expectations asserts on the outcome of an import. Zero-valued count
// fields are not checked; use FailWith for imports that must fail.
type Expectations struct {
	// FailWith is the import error code the scenario must fail with.
	// When set, all other expectations except Warnings are ignored.
	FailWith string `yaml:"fail_with,omitempty"`

	// PartialImport is the expected partial flag.
	PartialImport bool `yaml:"partial_import,omitempty"`

	// Instruments, Staves, Voices, and Notes are expected counts,
	// checked only when positive.
	Instruments int `yaml:"instruments,omitempty"`
	Staves      int `yaml:"staves,omitempty"`
	Voices      int `yaml:"voices,omitempty"`
	Notes       int `yaml:"notes,omitempty"`

	// Warnings maps category names to expected warning counts.
	Warnings map[string]int `yaml:"warnings,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file. Unknown fields
// are rejected so typos fail loudly instead of silently skipping an
// assertion.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.SourceFile != "" && !filepath.IsAbs(scenario.SourceFile) {
		scenario.SourceFile = filepath.Join(filepath.Dir(path), scenario.SourceFile)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Source == "" && s.SourceFile == "" {
		return fmt.Errorf("one of source or source_file is required")
	}
	if s.Source != "" && s.SourceFile != "" {
		return fmt.Errorf("source and source_file are mutually exclusive")
	}
	if s.SourceFile != "" {
		if _, err := os.Stat(s.SourceFile); os.IsNotExist(err) {
			return fmt.Errorf("source file not found: %s", s.SourceFile)
		}
	}
	return nil
}

// sourceBytes resolves the scenario's document content.
func (s *Scenario) sourceBytes() ([]byte, error) {
	if s.Source != "" {
		return []byte(s.Source), nil
	}
	return os.ReadFile(s.SourceFile)
}
