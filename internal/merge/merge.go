// Package merge implements deep-merge semantics for partial record updates.
package merge

import "github.com/roach88/kvquery/internal/value"

// Merge folds patch into base and returns base.
//
// For every field present in patch:
//   - either side primitive (string, number, boolean, null, undefined): the
//     patch value replaces the base value
//   - both arrays: base elements followed by patch elements, duplicates kept
//   - both objects: merged recursively
//   - any other pairing (array vs object): the base field is left as-is
//
// Fields absent from patch are untouched. Merge mutates base in place; a nil
// base is replaced by a fresh object, so always use the returned value.
func Merge(base, patch value.Object) value.Object {
	if base == nil {
		base = make(value.Object, len(patch))
	}

	for key, next := range patch {
		prev := base.Get(key)
		prevKind := value.Classify(prev)
		nextKind := value.Classify(next)

		switch {
		case prevKind.IsPrimitive() || nextKind.IsPrimitive():
			base[key] = next
		case prevKind == value.KindArray && nextKind == value.KindArray:
			base[key] = concat(prev.(value.Array), next.(value.Array))
		case prevKind == value.KindObject && nextKind == value.KindObject:
			base[key] = Merge(prev.(value.Object), next.(value.Object))
		}
	}

	return base
}

// concat returns a new array holding a's elements followed by b's.
func concat(a, b value.Array) value.Array {
	out := make(value.Array, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}
