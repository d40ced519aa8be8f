package schema

// Representation is the wire strategy an enum uses to encode which variant
// a value holds. The implementations are External, Internal, Adjacent and
// Untagged; generators switch over them exhaustively.
type Representation interface {
	// RepresentationName returns the interchange spelling
	// ("external", "internal", "adjacent", "none").
	RepresentationName() string

	representation()
}

// External wraps the variant payload in a single-key object whose key is
// the variant name: {"dog": {...}}. Unit variants encode as the bare
// variant name string.
type External struct{}

// Internal places a tag field among the variant's own fields:
// {"type": "dog", "breed": "..."}.
type Internal struct {
	Tag string
}

// Adjacent uses separate tag and content keys:
// {"t": "dog", "c": {...}}.
type Adjacent struct {
	Tag     string
	Content string
}

// Untagged encodes the payload alone; the shape disambiguates. The
// Option-family types use it.
type Untagged struct{}

func (External) RepresentationName() string { return "external" }
func (Internal) RepresentationName() string { return "internal" }
func (Adjacent) RepresentationName() string { return "adjacent" }
func (Untagged) RepresentationName() string { return "none" }

func (External) representation() {}
func (Internal) representation() {}
func (Adjacent) representation() {}
func (Untagged) representation() {}

// Variant is one alternative of an enum.
type Variant struct {
	Name        string `json:"name"`
	SerdeName   string `json:"serde_name,omitempty"`
	Description string `json:"description,omitempty"`
	Deprecation string `json:"deprecation_note,omitempty"`
	Fields      Fields `json:"fields"`

	// Discriminant is the explicit integer value of a fieldless variant.
	Discriminant *int64 `json:"discriminant,omitempty"`

	// Untagged variants are matched by shape even inside a tagged enum.
	Untagged bool `json:"untagged,omitempty"`
}

// WireName returns the tag value used in serialized payloads.
func (v Variant) WireName() string {
	if v.SerdeName != "" {
		return v.SerdeName
	}
	return v.Name
}

// Doc returns the variant's documentation.
func (v Variant) Doc() Documentation {
	return Documentation{Description: v.Description, Deprecation: v.Deprecation}
}

// IsUnit reports whether the variant carries no payload.
func (v Variant) IsUnit() bool { return v.Fields.Kind == FieldsNone }

// IsNewtype reports whether the variant carries exactly one positional field.
func (v Variant) IsNewtype() bool {
	return v.Fields.Kind == FieldsUnnamed && len(v.Fields.List) == 1
}

// Enum is a sum type with an ordered list of variants.
type Enum struct {
	Name           TypeName        `json:"name"`
	SerdeName      string          `json:"serde_name,omitempty"`
	Description    string          `json:"description,omitempty"`
	Deprecation    string          `json:"deprecation_note,omitempty"`
	Params         []TypeParameter `json:"parameters,omitempty"`
	Representation Representation  `json:"representation"`
	Variants       []Variant       `json:"variants"`
}

// Kind returns KindEnum.
func (e *Enum) Kind() Kind { return KindEnum }

// TypeName returns the enum's name.
func (e *Enum) TypeName() TypeName { return e.Name }

// Parameters returns the enum's generic parameters.
func (e *Enum) Parameters() []TypeParameter { return e.Params }

// Doc returns the enum's documentation.
func (e *Enum) Doc() Documentation {
	return Documentation{Description: e.Description, Deprecation: e.Deprecation}
}

// Repr returns the representation, defaulting to External.
func (e *Enum) Repr() Representation {
	if e.Representation == nil {
		return External{}
	}
	return e.Representation
}

// Variant returns the variant named name.
func (e *Enum) Variant(name string) (Variant, bool) {
	for _, v := range e.Variants {
		if v.Name == name {
			return v, true
		}
	}
	return Variant{}, false
}

func (*Enum) sealed() {}
