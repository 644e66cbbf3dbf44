package harness

import (
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/kvquery/internal/value"
)

// Snapshot renders a scenario trace as canonical JSON. Events carry seq,
// op, store and either result or error.
func Snapshot(name string, trace []TraceEvent) ([]byte, error) {
	events := make(value.Array, len(trace))
	for i, ev := range trace {
		obj := value.Object{
			"seq":   value.Number(ev.Seq),
			"op":    value.String(ev.Op),
			"store": value.String(ev.Store),
		}
		if ev.Error != "" {
			obj["error"] = value.String(ev.Error)
		} else if ev.Result != nil {
			obj["result"] = ev.Result
		}
		events[i] = obj
	}
	return value.MarshalCanonical(value.Object{
		"scenario": value.String(name),
		"trace":    events,
	})
}

// RunWithGolden executes a scenario and compares the trace against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if trace doesn't match golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(context.Background(), scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares the given result's trace against a golden file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	traceJSON, err := Snapshot(scenarioName, result.Trace)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, traceJSON)
	return nil
}
