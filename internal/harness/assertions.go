package harness

import (
	"fmt"

	"github.com/roach88/kvquery/internal/facade"
	"github.com/roach88/kvquery/internal/value"
)

// checkExpect compares a step outcome with its expect clause. A step
// without one must succeed.
func checkExpect(r *Result, index int, step Step, out value.Value, err error) {
	prefix := fmt.Sprintf("steps[%d] (%s %s)", index, step.Op, step.Store)
	exp := step.Expect

	if exp == nil || exp.Error == "" {
		if err != nil {
			r.AddError(fmt.Sprintf("%s: unexpected error: %v", prefix, err))
			return
		}
		if exp != nil && exp.Result != "" {
			if cerr := compareJSON(out, exp.Result); cerr != nil {
				r.AddError(fmt.Sprintf("%s: %v", prefix, cerr))
			}
		}
		return
	}

	if err == nil {
		r.AddError(fmt.Sprintf("%s: expected error %s, got success", prefix, exp.Error))
		return
	}
	if code := facade.ErrorCode(err); code != exp.Error {
		r.AddError(fmt.Sprintf("%s: expected error %s, got %s (%v)", prefix, exp.Error, code, err))
	}
}

// compareJSON reports whether got renders to the same sorted-key JSON as
// the document want.
func compareJSON(got value.Value, want string) error {
	expected, err := value.Decode([]byte(want))
	if err != nil {
		return fmt.Errorf("invalid expected JSON: %w", err)
	}
	g, w := render(got), render(expected)
	if g != w {
		return fmt.Errorf("got %s, want %s", g, w)
	}
	return nil
}

// render returns the sorted-key JSON of v, or a placeholder when v cannot
// be encoded.
func render(v value.Value) string {
	data, err := value.Marshal(v)
	if err != nil {
		return fmt.Sprintf("<%v>", err)
	}
	return string(data)
}
