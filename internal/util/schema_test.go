package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleArgs struct {
	A string  `json:"a" description:"Field A"`
	B *int    `json:"b" description:"Optional pointer field"`
	C int     `json:"c,omitempty" description:"Omit empty field"`
	D float64 `json:"-"`
	e string  //nolint:unused // unexported fields are skipped
}

func TestSpecsFromStruct(t *testing.T) {
	specs := SpecsFromStruct(sampleArgs{})
	require.Len(t, specs, 3)

	byName := map[string]Spec{}
	for _, s := range specs {
		byName[s.Name] = s
	}

	assert.Equal(t, "string", byName["a"].Type)
	assert.Equal(t, "Field A", byName["a"].Description)
	assert.True(t, byName["a"].Required)

	// Pointer fields and omitempty fields are optional.
	assert.Equal(t, "integer", byName["b"].Type)
	assert.False(t, byName["b"].Required)
	assert.False(t, byName["c"].Required)
}

func TestSpecsFromStruct_PointerInput(t *testing.T) {
	specs := SpecsFromStruct(&sampleArgs{})
	assert.Len(t, specs, 3)
}

func TestSpecsFromStruct_NonStruct(t *testing.T) {
	assert.Nil(t, SpecsFromStruct("not a struct"))
}

func TestCheckType(t *testing.T) {
	assert.NoError(t, CheckType("x", "hello", "string"))
	assert.NoError(t, CheckType("x", 5, "integer"))
	assert.NoError(t, CheckType("x", 5.0, "integer")) // JSON numbers decode as float64
	assert.NoError(t, CheckType("x", 5.5, "number"))
	assert.NoError(t, CheckType("x", true, "boolean"))
	assert.NoError(t, CheckType("x", []any{"a"}, "array"))
	assert.NoError(t, CheckType("x", map[string]any{}, "object"))
	assert.NoError(t, CheckType("x", nil, "string")) // nil is valid for any type

	err := CheckType("x", "hello", "integer")
	require.Error(t, err)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "x", vErr.Field)
	assert.Contains(t, vErr.Message, "expected type integer")

	assert.Error(t, CheckType("x", 5.5, "integer")) // fractional is not integer
}
