package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// JSON interchange support. Type descriptors carry a "kind" discriminator;
// representations and field shapes use serde-style externally tagged
// objects so the format stays readable by non-Go tooling.

// MarshalJSON implements json.Marshaler for Primitive.
func (p *Primitive) MarshalJSON() ([]byte, error) {
	type alias Primitive
	return json.Marshal(&struct {
		Kind string `json:"kind"`
		*alias
	}{Kind: "primitive", alias: (*alias)(p)})
}

// MarshalJSON implements json.Marshaler for Struct.
func (s *Struct) MarshalJSON() ([]byte, error) {
	type alias Struct
	return json.Marshal(&struct {
		Kind string `json:"kind"`
		*alias
	}{Kind: "struct", alias: (*alias)(s)})
}

// MarshalJSON implements json.Marshaler for Enum.
func (e *Enum) MarshalJSON() ([]byte, error) {
	type alias Enum
	repr, err := marshalRepresentation(e.Repr())
	if err != nil {
		return nil, err
	}
	variants := e.Variants
	if variants == nil {
		variants = []Variant{}
	}
	return json.Marshal(&struct {
		Kind string `json:"kind"`
		*alias
		Representation json.RawMessage `json:"representation"`
		Variants       []Variant       `json:"variants"`
	}{Kind: "enum", alias: (*alias)(e), Representation: repr, Variants: variants})
}

// UnmarshalJSON implements json.Unmarshaler for Enum.
func (e *Enum) UnmarshalJSON(data []byte) error {
	type alias Enum
	aux := &struct {
		*alias
		Representation json.RawMessage `json:"representation"`
	}{alias: (*alias)(e)}
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}
	repr, err := unmarshalRepresentation(aux.Representation)
	if err != nil {
		return fmt.Errorf("enum %s: %w", e.Name, err)
	}
	e.Representation = repr
	if len(e.Variants) == 0 {
		e.Variants = nil
	}
	return nil
}

func marshalRepresentation(r Representation) ([]byte, error) {
	switch r := r.(type) {
	case External:
		return json.Marshal("external")
	case Untagged:
		return json.Marshal("none")
	case Internal:
		return json.Marshal(map[string]any{"internal": map[string]string{"tag": r.Tag}})
	case Adjacent:
		return json.Marshal(map[string]any{"adjacent": map[string]string{"tag": r.Tag, "content": r.Content}})
	default:
		return nil, fmt.Errorf("unsupported representation %T", r)
	}
}

func unmarshalRepresentation(data []byte) (Representation, error) {
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return External{}, nil
	}
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		switch name {
		case "external":
			return External{}, nil
		case "none", "untagged":
			return Untagged{}, nil
		default:
			return nil, fmt.Errorf("unknown representation %q", name)
		}
	}
	var obj struct {
		Internal *struct {
			Tag string `json:"tag"`
		} `json:"internal"`
		Adjacent *struct {
			Tag     string `json:"tag"`
			Content string `json:"content"`
		} `json:"adjacent"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("invalid representation: %w", err)
	}
	switch {
	case obj.Internal != nil && obj.Internal.Tag != "":
		return Internal{Tag: obj.Internal.Tag}, nil
	case obj.Adjacent != nil && obj.Adjacent.Tag != "" && obj.Adjacent.Content != "":
		return Adjacent{Tag: obj.Adjacent.Tag, Content: obj.Adjacent.Content}, nil
	default:
		return nil, fmt.Errorf("invalid representation %s", data)
	}
}

// MarshalJSON implements json.Marshaler for Fields.
func (f Fields) MarshalJSON() ([]byte, error) {
	list := f.List
	if list == nil {
		list = []Field{}
	}
	switch f.Kind {
	case FieldsNone:
		return json.Marshal("none")
	case FieldsNamed:
		return json.Marshal(map[string][]Field{"named": list})
	case FieldsUnnamed:
		return json.Marshal(map[string][]Field{"unnamed": list})
	default:
		return nil, fmt.Errorf("unknown fields kind %d", f.Kind)
	}
}

// UnmarshalJSON implements json.Unmarshaler for Fields.
func (f *Fields) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		if name != "none" {
			return fmt.Errorf("unknown fields shape %q", name)
		}
		*f = NoFields()
		return nil
	}
	var obj struct {
		Named   *[]Field `json:"named"`
		Unnamed *[]Field `json:"unnamed"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	switch {
	case obj.Named != nil:
		*f = Fields{Kind: FieldsNamed, List: *obj.Named}
	case obj.Unnamed != nil:
		*f = Fields{Kind: FieldsUnnamed, List: *obj.Unnamed}
	default:
		return fmt.Errorf("invalid fields %s", data)
	}
	if len(f.List) == 0 {
		f.List = nil
	}
	return nil
}

// UnmarshalType decodes a kind-tagged descriptor.
func UnmarshalType(data []byte) (Type, error) {
	var head struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, err
	}
	var t Type
	switch head.Kind {
	case "primitive":
		t = &Primitive{}
	case "struct":
		t = &Struct{}
	case "enum":
		t = &Enum{}
	default:
		return nil, fmt.Errorf("unknown type kind %q", head.Kind)
	}
	if err := json.Unmarshal(data, t); err != nil {
		return nil, err
	}
	return t, nil
}

// MarshalJSON implements json.Marshaler for Typespace. Well-known types are
// omitted; they are re-seeded on decode.
func (ts *Typespace) MarshalJSON() ([]byte, error) {
	types := make([]Type, 0, ts.Len())
	for _, t := range ts.Types() {
		if IsWellKnown(t.TypeName()) {
			continue
		}
		types = append(types, t)
	}
	return json.Marshal(&struct {
		Types []Type `json:"types"`
	}{Types: types})
}

// UnmarshalJSON implements json.Unmarshaler for Typespace.
func (ts *Typespace) UnmarshalJSON(data []byte) error {
	var aux struct {
		Types []json.RawMessage `json:"types"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*ts = *NewTypespace()
	for _, raw := range aux.Types {
		t, err := UnmarshalType(raw)
		if err != nil {
			return err
		}
		if err := ts.Insert(t); err != nil {
			return err
		}
	}
	return nil
}

// Encode writes the schema in the interchange format with stable
// indentation.
func Encode(s *Schema) ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// Decode reads a schema in the interchange format.
func Decode(data []byte) (*Schema, error) {
	s := &Schema{}
	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("decode schema: %w", err)
	}
	return s, nil
}

// canonical returns the encoding used to compare definitions.
func canonical(t Type) []byte {
	data, err := json.Marshal(t)
	if err != nil {
		// Descriptors only hold marshalable values; a failure here is a
		// programming error in a new descriptor kind.
		panic(fmt.Sprintf("schema: marshal %s: %v", t.TypeName(), err))
	}
	return data
}

// SameDefinition reports whether a and b are structurally identical.
func SameDefinition(a, b Type) bool {
	return bytes.Equal(canonical(a), canonical(b))
}
