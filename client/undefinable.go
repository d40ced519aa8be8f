package client

import (
	"encoding/json"
)

type presence uint8

const (
	undefined presence = iota
	null
	defined
)

// Undefinable is a field that may be absent, null, or hold a value; the
// three states stay distinct through a JSON round trip. The zero value is
// absent. Tag fields with omitzero so absent values are left out:
//
//	Nickname client.Undefinable[string] `json:"nickname,omitzero"`
type Undefinable[T any] struct {
	state presence
	value T
}

// Undefined returns the absent state.
func Undefined[T any]() Undefinable[T] { return Undefinable[T]{} }

// Null returns the explicit null state.
func Null[T any]() Undefinable[T] { return Undefinable[T]{state: null} }

// Defined returns a present value.
func Defined[T any](v T) Undefinable[T] { return Undefinable[T]{state: defined, value: v} }

// IsUndefined reports whether the field was absent.
func (u Undefinable[T]) IsUndefined() bool { return u.state == undefined }

// IsNull reports whether the field was explicitly null.
func (u Undefinable[T]) IsNull() bool { return u.state == null }

// Get returns the value and whether one is present.
func (u Undefinable[T]) Get() (T, bool) { return u.value, u.state == defined }

// IsZero reports whether u is absent. encoding/json consults it for
// omitzero.
func (u Undefinable[T]) IsZero() bool { return u.state == undefined }

// MarshalJSON implements json.Marshaler. An absent value outside an
// omitzero field encodes as null.
func (u Undefinable[T]) MarshalJSON() ([]byte, error) {
	if u.state != defined {
		return []byte("null"), nil
	}
	return json.Marshal(u.value)
}

// UnmarshalJSON implements json.Unmarshaler. It only runs for keys that
// are present, so a missing key keeps the absent state.
func (u *Undefinable[T]) UnmarshalJSON(data []byte) error {
	if IsNull(data) {
		*u = Null[T]()
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*u = Defined(v)
	return nil
}

// Option is a nullable value as generated clients represent it: nil is
// null (or absent), non-nil is present.
type Option[T any] = *T

// Some returns a pointer to v, the present state of an optional field.
func Some[T any](v T) Option[T] { return &v }

// ValueOr returns the value o points to, or def when o is nil.
func ValueOr[T any](o Option[T], def T) T {
	if o == nil {
		return def
	}
	return *o
}
