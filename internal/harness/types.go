package harness

import "github.com/roach88/kvquery/internal/value"

// Scenario is a scripted sequence of facade operations.
type Scenario struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Schema      string      `yaml:"schema"`
	Steps       []Step      `yaml:"steps"`
	Assertions  []Assertion `yaml:"assertions,omitempty"`
}

// Step is one facade operation and its optional expectation.
type Step struct {
	Op    string      `yaml:"op"`
	Store string      `yaml:"store"`
	Where string      `yaml:"where,omitempty"`
	Set   string      `yaml:"set,omitempty"`
	Merge bool        `yaml:"merge,omitempty"`
	Range []RangeSpec `yaml:"range,omitempty"`
	Limit int         `yaml:"limit,omitempty"`

	Expect *Expect `yaml:"expect,omitempty"`
}

// RangeSpec is an inclusive key range. A missing bound is open.
type RangeSpec struct {
	Start any `yaml:"start,omitempty"`
	End   any `yaml:"end,omitempty"`
}

// Expect checks a step outcome. Error is an error code as reported by
// facade.ErrorCode; Result is the expected step result as JSON.
type Expect struct {
	Error  string `yaml:"error,omitempty"`
	Result string `yaml:"result,omitempty"`
}

// Assertion checks the final contents of a store.
type Assertion struct {
	Type   string `yaml:"type"`
	Store  string `yaml:"store"`
	Key    any    `yaml:"key,omitempty"`
	Count  int    `yaml:"count,omitempty"`
	Expect string `yaml:"expect,omitempty"`
}

// Supported step operations.
const (
	OpSelect = "select"
	OpInsert = "insert"
	OpUpdate = "update"
	OpDelete = "delete"
	OpCount  = "count"
	OpLast   = "last"
)

// Supported assertion types.
const (
	AssertCount  = "count"
	AssertRecord = "record"
	AssertAbsent = "absent"
)

// TraceEvent records one executed step.
type TraceEvent struct {
	Seq    int
	Op     string
	Store  string
	Result value.Value
	Error  string
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every expectation and assertion held.
	Pass bool

	// Trace holds one event per step, in order.
	Trace []TraceEvent

	// Errors describes each failed expectation or assertion.
	Errors []string
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{Pass: true, Trace: []TraceEvent{}, Errors: []string{}}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends an event for a completed step.
func (r *Result) AddTrace(step Step, result value.Value, code string) {
	r.Trace = append(r.Trace, TraceEvent{
		Seq:    len(r.Trace) + 1,
		Op:     step.Op,
		Store:  step.Store,
		Result: result,
		Error:  code,
	})
}
