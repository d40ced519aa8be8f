package schema

import "strconv"

// FieldsKind is the shape of a field list.
type FieldsKind int

const (
	FieldsNone    FieldsKind = iota // Unit struct or unit variant
	FieldsNamed                     // {a: A, b: B}
	FieldsUnnamed                   // (A, B)
)

// String returns the interchange spelling of the shape.
func (k FieldsKind) String() string {
	switch k {
	case FieldsNone:
		return "none"
	case FieldsNamed:
		return "named"
	case FieldsUnnamed:
		return "unnamed"
	default:
		return "unknown"
	}
}

// Fields is a shaped field list shared by structs and enum variants.
type Fields struct {
	Kind FieldsKind
	List []Field
}

// Named returns a named field list.
func Named(fields ...Field) Fields { return Fields{Kind: FieldsNamed, List: fields} }

// Unnamed returns a positional field list. Unnamed fields are named by
// position ("0", "1", ...) when no name is given.
func Unnamed(fields ...Field) Fields {
	for i := range fields {
		if fields[i].Name == "" {
			fields[i].Name = strconv.Itoa(i)
		}
	}
	return Fields{Kind: FieldsUnnamed, List: fields}
}

// NoFields returns the empty shape.
func NoFields() Fields { return Fields{Kind: FieldsNone} }

// Len returns the number of fields.
func (f Fields) Len() int { return len(f.List) }

// Field is a single member of a struct or enum variant.
type Field struct {
	// Name is the declared name; positional fields use their index.
	Name string `json:"name"`

	// SerdeName overrides the wire name when non-empty.
	SerdeName string `json:"serde_name,omitempty"`

	Description string `json:"description,omitempty"`
	Deprecation string `json:"deprecation_note,omitempty"`

	Type TypeReference `json:"type"`

	// Required means the key is always present in the payload. It is
	// independent of the field's type: an Option-typed field may still be
	// required (present, possibly null).
	Required bool `json:"required,omitempty"`

	// Flattened fields splice the members of their struct type into the
	// parent object.
	Flattened bool `json:"flattened,omitempty"`
}

// WireName returns the name used in serialized payloads.
func (f Field) WireName() string {
	if f.SerdeName != "" {
		return f.SerdeName
	}
	return f.Name
}

// Doc returns the field's documentation.
func (f Field) Doc() Documentation {
	return Documentation{Description: f.Description, Deprecation: f.Deprecation}
}

// Struct is a product type with named or positional fields.
type Struct struct {
	Name        TypeName        `json:"name"`
	SerdeName   string          `json:"serde_name,omitempty"`
	Description string          `json:"description,omitempty"`
	Deprecation string          `json:"deprecation_note,omitempty"`
	Params      []TypeParameter `json:"parameters,omitempty"`
	Fields      Fields          `json:"fields"`

	// Transparent structs serialize as their single field.
	Transparent bool `json:"transparent,omitempty"`
}

// Kind returns KindStruct.
func (s *Struct) Kind() Kind { return KindStruct }

// TypeName returns the struct's name.
func (s *Struct) TypeName() TypeName { return s.Name }

// Parameters returns the struct's generic parameters.
func (s *Struct) Parameters() []TypeParameter { return s.Params }

// Doc returns the struct's documentation.
func (s *Struct) Doc() Documentation {
	return Documentation{Description: s.Description, Deprecation: s.Deprecation}
}

// IsTuple reports whether the struct has positional fields.
func (s *Struct) IsTuple() bool { return s.Fields.Kind == FieldsUnnamed }

// Newtype reports whether s serializes as its only field: a transparent
// struct, or a tuple struct with a single element.
func (s *Struct) Newtype() bool {
	return s.Transparent || (s.IsTuple() && len(s.Fields.List) == 1)
}

func (*Struct) sealed() {}
