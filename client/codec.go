package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strconv"
)

// ErrNoVariant is returned when encoding an enum value with no variant set.
var ErrNoVariant = errors.New("client: enum value has no variant set")

// ErrInfallible is returned when encoding or decoding Infallible.
var ErrInfallible = errors.New("client: infallible type has no values")

// VariantError reports JSON that matches no variant of an enum.
type VariantError struct {
	Enum string

	// Name is the tag found in the payload, empty if none was.
	Name string
}

func (e *VariantError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("client: no variant of %s matches", e.Enum)
	}
	return fmt.Sprintf("client: unknown variant %q of %s", e.Name, e.Enum)
}

// UnknownVariant returns a VariantError for a tag that names no variant.
func UnknownVariant(enum, name string) error {
	return &VariantError{Enum: enum, Name: name}
}

// NoMatch returns a VariantError for a payload no variant accepts.
func NoMatch(enum string) error {
	return &VariantError{Enum: enum}
}

// IsNull reports whether data is the JSON literal null.
func IsNull(data []byte) bool {
	return bytes.Equal(bytes.TrimSpace(data), []byte("null"))
}

// DecodeStrict decodes data into v, rejecting unknown object keys and
// trailing data. Untagged enums use it to tell variants apart. Unlike
// encoding/json it rejects null unless v points to a pointer, an
// interface or a type with its own UnmarshalJSON.
func DecodeStrict(data []byte, v any) error {
	if IsNull(data) && !acceptsNull(v) {
		return fmt.Errorf("client: null is not a valid %T", v)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return errors.New("client: trailing data after JSON value")
	}
	return nil
}

var unmarshalerType = reflect.TypeFor[json.Unmarshaler]()

func acceptsNull(v any) bool {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		// Let the decoder report the invalid target.
		return true
	}
	t := rv.Type().Elem()
	switch t.Kind() {
	case reflect.Pointer, reflect.Interface:
		return true
	}
	return rv.Type().Implements(unmarshalerType)
}

// MarshalExternal encodes an externally tagged variant: the bare name for
// a unit variant (nil payload), {"name": payload} otherwise.
func MarshalExternal(name string, payload any) ([]byte, error) {
	if payload == nil {
		return json.Marshal(name)
	}
	p, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return object(member{name, p}), nil
}

// DecodeExternal splits an externally tagged value into its variant name
// and payload. The payload is nil for a unit variant.
func DecodeExternal(data []byte) (string, json.RawMessage, error) {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		return name, nil, nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return "", nil, fmt.Errorf("client: externally tagged value must be a string or an object: %w", err)
	}
	if len(obj) != 1 {
		return "", nil, fmt.Errorf("client: externally tagged object has %d keys, want 1", len(obj))
	}
	for name, payload := range obj {
		return name, payload, nil
	}
	panic("unreachable")
}

// MarshalInternal encodes an internally tagged variant: the payload
// object with the tag key added first. A nil payload encodes the tag
// alone.
func MarshalInternal(tag, name string, payload any) ([]byte, error) {
	head := member{tag, quoted(name)}
	if payload == nil {
		return object(head), nil
	}
	p, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	p = bytes.TrimSpace(p)
	if len(p) < 2 || p[0] != '{' {
		return nil, fmt.Errorf("client: internally tagged variant %q must encode as an object", name)
	}
	inner := bytes.TrimSpace(p[1 : len(p)-1])
	var b bytes.Buffer
	b.Write(object(head))
	if len(inner) == 0 {
		return b.Bytes(), nil
	}
	b.Truncate(b.Len() - 1)
	b.WriteByte(',')
	b.Write(inner)
	b.WriteByte('}')
	return b.Bytes(), nil
}

// DecodeInternal returns the variant name stored under tag. The caller
// decodes the payload from the same data.
func DecodeInternal(data []byte, tag string) (string, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return "", fmt.Errorf("client: internally tagged value must be an object: %w", err)
	}
	raw, ok := obj[tag]
	if !ok {
		return "", fmt.Errorf("client: missing tag %q", tag)
	}
	var name string
	if err := json.Unmarshal(raw, &name); err != nil {
		return "", fmt.Errorf("client: tag %q must be a string: %w", tag, err)
	}
	return name, nil
}

// MarshalAdjacent encodes an adjacently tagged variant as
// {"tag": name, "content": payload}, omitting content for a nil payload.
func MarshalAdjacent(tag, content, name string, payload any) ([]byte, error) {
	head := member{tag, quoted(name)}
	if payload == nil {
		return object(head), nil
	}
	p, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return object(head, member{content, p}), nil
}

// DecodeAdjacent splits an adjacently tagged value into its variant name
// and content. The content is nil when absent.
func DecodeAdjacent(data []byte, tag, content string) (string, json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return "", nil, fmt.Errorf("client: adjacently tagged value must be an object: %w", err)
	}
	raw, ok := obj[tag]
	if !ok {
		return "", nil, fmt.Errorf("client: missing tag %q", tag)
	}
	var name string
	if err := json.Unmarshal(raw, &name); err != nil {
		return "", nil, fmt.Errorf("client: tag %q must be a string: %w", tag, err)
	}
	return name, obj[content], nil
}

// MarshalTuple encodes values as a JSON array.
func MarshalTuple(values ...any) ([]byte, error) {
	if values == nil {
		values = []any{}
	}
	return json.Marshal(values)
}

// DecodeTuple decodes a JSON array element by element into targets. The
// array length must match.
func DecodeTuple(data []byte, targets ...any) error {
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return err
	}
	if len(elems) != len(targets) {
		return fmt.Errorf("client: tuple has %d elements, want %d", len(elems), len(targets))
	}
	for i, e := range elems {
		if err := json.Unmarshal(e, targets[i]); err != nil {
			return fmt.Errorf("client: tuple element %d: %w", i, err)
		}
	}
	return nil
}

type member struct {
	key   string
	value []byte
}

// object writes members in order, which encoding/json does not do for maps.
func object(members ...member) []byte {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, m := range members {
		if i > 0 {
			b.WriteByte(',')
		}
		b.Write(quoted(m.key))
		b.WriteByte(':')
		b.Write(m.value)
	}
	b.WriteByte('}')
	return b.Bytes()
}

func quoted(s string) []byte {
	b, err := json.Marshal(s)
	if err != nil {
		return []byte(strconv.Quote(s))
	}
	return b
}

// Tuple2 is a two-element tuple, encoded as a JSON array.
type Tuple2[A, B any] struct {
	F0 A
	F1 B
}

func (t Tuple2[A, B]) MarshalJSON() ([]byte, error) { return MarshalTuple(t.F0, t.F1) }

func (t *Tuple2[A, B]) UnmarshalJSON(data []byte) error { return DecodeTuple(data, &t.F0, &t.F1) }

// Tuple3 is a three-element tuple, encoded as a JSON array.
type Tuple3[A, B, C any] struct {
	F0 A
	F1 B
	F2 C
}

func (t Tuple3[A, B, C]) MarshalJSON() ([]byte, error) { return MarshalTuple(t.F0, t.F1, t.F2) }

func (t *Tuple3[A, B, C]) UnmarshalJSON(data []byte) error {
	return DecodeTuple(data, &t.F0, &t.F1, &t.F2)
}

// Unit is a struct without fields that encodes as null.
type Unit struct{}

func (Unit) MarshalJSON() ([]byte, error) { return []byte("null"), nil }

func (*Unit) UnmarshalJSON(data []byte) error {
	if !IsNull(data) {
		return errors.New("client: unit value must be null")
	}
	return nil
}

// Infallible is the error type of routes that cannot fail. No JSON value
// decodes into it, so every non-2xx reply is a transport error.
type Infallible struct{}

func (Infallible) MarshalJSON() ([]byte, error) { return nil, ErrInfallible }

func (*Infallible) UnmarshalJSON([]byte) error { return ErrInfallible }
