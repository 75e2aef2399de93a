package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestField_UnmarshalStates tests that absent, null and set keys decode to distinct states
func TestField_UnmarshalStates(t *testing.T) {
	var patch CaseDefinitionPatch
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"name":"BBBBBBBBBB","description":null}`), &patch))

	assert.True(t, patch.Name.Present())
	assert.False(t, patch.Name.IsNull())
	name, ok := patch.Name.Value()
	assert.True(t, ok)
	assert.Equal(t, "BBBBBBBBBB", name)

	assert.True(t, patch.Description.Present())
	assert.True(t, patch.Description.IsNull())
	_, ok = patch.Description.Value()
	assert.False(t, ok)

	assert.False(t, patch.Active.Present())
	assert.True(t, patch.Active.IsZero())
}

// TestField_Apply tests merge semantics against an existing pointer
func TestField_Apply(t *testing.T) {
	original := "AAAAAAAAAA"

	dst := &original
	Field[string]{}.Apply(&dst)
	require.NotNil(t, dst)
	assert.Equal(t, "AAAAAAAAAA", *dst, "absent field must keep the stored value")

	Set("BBBBBBBBBB").Apply(&dst)
	require.NotNil(t, dst)
	assert.Equal(t, "BBBBBBBBBB", *dst)
	assert.Equal(t, "AAAAAAAAAA", original, "apply must not write through the old pointer")

	Null[string]().Apply(&dst)
	assert.Nil(t, dst)
}

// TestField_MarshalOmitsAbsent tests that omitzero drops absent fields
func TestField_MarshalOmitsAbsent(t *testing.T) {
	id := int64(3)
	patch := CaseDefinitionPatch{
		ID:          &id,
		Active:      Set(true),
		Description: Null[string](),
	}

	data, err := json.Marshal(patch)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":3,"description":null,"active":true}`, string(data))
}

// TestField_InvalidValue tests that a type mismatch is a decode error
func TestField_InvalidValue(t *testing.T) {
	var patch CaseDefinitionPatch
	err := json.Unmarshal([]byte(`{"active":"yes"}`), &patch)
	assert.Error(t, err)
}
