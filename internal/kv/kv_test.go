package kv

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/kvquery/internal/value"
)

func TestKeyRange_Contains(t *testing.T) {
	r := KeyRange{Start: value.Number(2), End: value.Number(5)}

	assert.True(t, r.Contains(value.Number(2)), "inclusive start")
	assert.True(t, r.Contains(value.Number(5)), "inclusive end")
	assert.True(t, r.Contains(value.Number(3.5)))
	assert.False(t, r.Contains(value.Number(1)))
	assert.False(t, r.Contains(value.String("3")), "strings sort after numbers")
}

func TestKeyRange_StringKeys(t *testing.T) {
	r := KeyRange{Start: value.String("b"), End: value.String("d")}

	assert.True(t, r.Contains(value.String("c")))
	assert.True(t, r.Contains(value.String("d")))
	assert.False(t, r.Contains(value.String("da")))
	assert.False(t, r.Contains(value.Number(100)))
}
