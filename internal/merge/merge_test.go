package merge

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/kvquery/internal/value"
)

func TestMerge_PrimitiveIsRightBiased(t *testing.T) {
	got := Merge(value.Object{"a": value.Number(1)}, value.Object{"a": value.Number(2)})
	assert.Equal(t, value.Number(2), got["a"])
}

func TestMerge_ArraysConcatenateBaseFirst(t *testing.T) {
	base := value.Object{"a": value.Array{value.Number(1), value.Number(2)}}
	patch := value.Object{"a": value.Array{value.Number(3), value.Number(1)}}

	got := Merge(base, patch)

	// Order preserved, duplicates retained.
	assert.Equal(t, value.Array{value.Number(1), value.Number(2), value.Number(3), value.Number(1)}, got["a"])
}

func TestMerge_NestedObjectsRecurse(t *testing.T) {
	base := value.Object{"a": value.Object{"x": value.Number(1), "y": value.Number(2)}}
	patch := value.Object{"a": value.Object{"y": value.Number(3)}}

	got := Merge(base, patch)

	assert.Equal(t, value.Object{"x": value.Number(1), "y": value.Number(3)}, got["a"])
}

func TestMerge_KindMismatchLeavesBase(t *testing.T) {
	base := value.Object{
		"list": value.Array{value.Number(1)},
		"obj":  value.Object{"k": value.String("v")},
	}
	patch := value.Object{
		"list": value.Object{"k": value.String("ignored")},
		"obj":  value.Array{value.Number(9)},
	}

	got := Merge(base, patch)

	assert.Equal(t, value.Array{value.Number(1)}, got["list"])
	assert.Equal(t, value.Object{"k": value.String("v")}, got["obj"])
}

func TestMerge_PrimitiveOverwritesComposite(t *testing.T) {
	base := value.Object{"tags": value.Array{value.String("a")}, "meta": value.Object{}}
	patch := value.Object{"tags": value.Null{}, "meta": value.String("flat")}

	got := Merge(base, patch)

	assert.Equal(t, value.Null{}, got["tags"])
	assert.Equal(t, value.String("flat"), got["meta"])
}

func TestMerge_CompositeOverwritesPrimitive(t *testing.T) {
	base := value.Object{"tags": value.String("none")}
	patch := value.Object{"tags": value.Array{value.String("a")}}

	got := Merge(base, patch)

	assert.Equal(t, value.Array{value.String("a")}, got["tags"])
}

func TestMerge_NewFieldsAdded(t *testing.T) {
	got := Merge(value.Object{"a": value.Number(1)}, value.Object{"b": value.Bool(true)})
	assert.Equal(t, value.Object{"a": value.Number(1), "b": value.Bool(true)}, got)
}

func TestMerge_AbsentFieldsUntouched(t *testing.T) {
	base := value.Object{"a": value.Number(1), "b": value.Number(2)}
	got := Merge(base, value.Object{})
	assert.Equal(t, value.Object{"a": value.Number(1), "b": value.Number(2)}, got)
}

func TestMerge_MutatesAndReturnsBase(t *testing.T) {
	base := value.Object{"a": value.Number(1)}
	got := Merge(base, value.Object{"a": value.Number(5)})

	assert.Equal(t, value.Number(5), base["a"], "base is mutated in place")
	got["z"] = value.Bool(true)
	assert.Contains(t, base, "z", "returned object is base")
}

func TestMerge_NilBase(t *testing.T) {
	got := Merge(nil, value.Object{"a": value.Number(1)})
	assert.Equal(t, value.Object{"a": value.Number(1)}, got)
}

func TestMerge_ArrayResultDoesNotAliasInputs(t *testing.T) {
	baseArr := make(value.Array, 1, 8)
	baseArr[0] = value.Number(1)
	base := value.Object{"a": baseArr}

	got := Merge(base, value.Object{"a": value.Array{value.Number(2)}})
	got["a"].(value.Array)[0] = value.Number(99)

	assert.Equal(t, value.Number(1), baseArr[0])
}

func TestMerge_NotSymmetric(t *testing.T) {
	left := Merge(value.Object{"a": value.Array{value.Number(1)}}, value.Object{"a": value.Array{value.Number(2)}})
	right := Merge(value.Object{"a": value.Array{value.Number(2)}}, value.Object{"a": value.Array{value.Number(1)}})
	assert.NotEqual(t, left, right)
}

func TestMerge_Golden(t *testing.T) {
	base := value.Object{
		"id":   value.Number(1),
		"name": value.String("Joe"),
		"age":  value.Number(30),
		"tags": value.Array{value.String("admin")},
		"address": value.Object{
			"city": value.String("Oslo"),
			"geo":  value.Object{"lat": value.Number(59.9), "lng": value.Number(10.7)},
		},
		"prefs": value.Array{value.String("dark")},
	}
	patch := value.Object{
		"age":  value.Number(31),
		"tags": value.Array{value.String("editor"), value.String("admin")},
		"address": value.Object{
			"geo": value.Object{"lat": value.Number(60.1)},
			"zip": value.String("0150"),
		},
		"prefs": value.Object{"theme": value.String("light")},
	}

	data, err := value.MarshalCanonical(Merge(base, patch))
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "deep_merge", data)
}
