package core

import (
	"bytes"
	"encoding/json"
)

// Field is a patch value that remembers whether its JSON key was present.
//
// Three states are distinguishable after decoding:
//   - absent: the key was not in the payload, the stored value is kept
//   - null: the key was present with a JSON null, the stored value is cleared
//   - set: the key was present with a value, the stored value is replaced
//
// The zero value is an absent field, so `omitzero` drops it when encoding.
type Field[T any] struct {
	value   T
	present bool
	null    bool
}

// Set returns a field holding v.
func Set[T any](v T) Field[T] {
	return Field[T]{value: v, present: true}
}

// Null returns a field that clears the stored value.
func Null[T any]() Field[T] {
	return Field[T]{present: true, null: true}
}

// Present reports whether the key appeared in the payload.
func (f Field[T]) Present() bool {
	return f.present
}

// IsNull reports whether the key appeared with a null value.
func (f Field[T]) IsNull() bool {
	return f.present && f.null
}

// IsZero reports whether the field is absent. Used by encoding/json omitzero.
func (f Field[T]) IsZero() bool {
	return !f.present
}

// Value returns the carried value. ok is false for absent and null fields.
func (f Field[T]) Value() (v T, ok bool) {
	if !f.present || f.null {
		return v, false
	}
	return f.value, true
}

// Apply merges the field into dst: absent leaves *dst untouched, null sets it
// to nil and a value replaces it with a fresh pointer.
func (f Field[T]) Apply(dst **T) {
	if !f.present {
		return
	}
	if f.null {
		*dst = nil
		return
	}
	v := f.value
	*dst = &v
}

// UnmarshalJSON marks the field present and decodes the value, treating null
// as an explicit clear.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.present = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		f.value = zero
		f.null = true
		return nil
	}
	f.null = false
	return json.Unmarshal(data, &f.value)
}

// MarshalJSON encodes null for absent and null fields and the value otherwise.
func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.present || f.null {
		return []byte("null"), nil
	}
	return json.Marshal(f.value)
}
