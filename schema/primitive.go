package schema

// Primitive is an opaque leaf type such as a string, an integer or a
// timestamp. Parameterized primitives are containers (Vec, Map, Box).
type Primitive struct {
	Name        TypeName        `json:"name"`
	Description string          `json:"description,omitempty"`
	Params      []TypeParameter `json:"parameters,omitempty"`

	// Fallback is used by generators with no native rendering of the
	// primitive. It may reference the primitive's own parameters.
	Fallback *TypeReference `json:"fallback,omitempty"`
}

// Kind returns KindPrimitive.
func (p *Primitive) Kind() Kind { return KindPrimitive }

// TypeName returns the primitive's name.
func (p *Primitive) TypeName() TypeName { return p.Name }

// Parameters returns the primitive's generic parameters.
func (p *Primitive) Parameters() []TypeParameter { return p.Params }

// Doc returns the primitive's documentation.
func (p *Primitive) Doc() Documentation { return Documentation{Description: p.Description} }

func (*Primitive) sealed() {}
