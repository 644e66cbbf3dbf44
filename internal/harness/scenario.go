package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadScenario reads and parses a scenario YAML file. The schema path is
// resolved relative to the scenario file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	s, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if s.Schema != "" && !filepath.IsAbs(s.Schema) {
		s.Schema = filepath.Join(filepath.Dir(path), s.Schema)
	}

	if err := validateScenario(s); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return s, nil
}

// ParseScenario decodes scenario YAML without validating it.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict fields catch typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Schema == "" {
		return fmt.Errorf("schema is required")
	}
	if _, err := os.Stat(s.Schema); os.IsNotExist(err) {
		return fmt.Errorf("schema file not found: %s", s.Schema)
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

func validateStep(index int, s *Step) error {
	if s.Store == "" {
		return fmt.Errorf("steps[%d]: store is required", index)
	}

	switch s.Op {
	case OpSelect, OpDelete, OpCount, OpLast:
	case OpInsert, OpUpdate:
		if s.Set == "" {
			return fmt.Errorf("steps[%d]: set is required for %s", index, s.Op)
		}
	case "":
		return fmt.Errorf("steps[%d]: op is required", index)
	default:
		return fmt.Errorf("steps[%d]: unknown op %q", index, s.Op)
	}

	if s.Expect != nil && s.Expect.Error != "" && s.Expect.Result != "" {
		return fmt.Errorf("steps[%d].expect: error and result are exclusive", index)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}
	if a.Store == "" {
		return fmt.Errorf("assertions[%d]: store is required", index)
	}

	switch a.Type {
	case AssertCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	case AssertRecord:
		if a.Key == nil {
			return fmt.Errorf("assertions[%d]: key is required for record", index)
		}
		if a.Expect == "" {
			return fmt.Errorf("assertions[%d]: expect is required for record", index)
		}
	case AssertAbsent:
		if a.Key == nil {
			return fmt.Errorf("assertions[%d]: key is required for absent", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
