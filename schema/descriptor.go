package schema

// Kind identifies the category of a type descriptor.
type Kind int

const (
	KindPrimitive Kind = iota // Opaque leaf, possibly parameterized (containers)
	KindStruct                // Named or positional field list
	KindEnum                  // Ordered variants with a tagging representation
)

// String returns the interchange spelling of the kind.
func (k Kind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindStruct:
		return "struct"
	case KindEnum:
		return "enum"
	default:
		return "unknown"
	}
}

// Type is a named type definition. The set of implementations is closed:
// *Primitive, *Struct and *Enum.
type Type interface {
	// Kind returns the descriptor kind for type switching.
	Kind() Kind

	// TypeName returns the fully qualified name of the type.
	TypeName() TypeName

	// Parameters returns the declared generic parameters, in order.
	Parameters() []TypeParameter

	// Doc returns the description and deprecation note.
	Doc() Documentation

	sealed()
}

// paramIndex returns the position of name among params, or -1.
func paramIndex(params []TypeParameter, name TypeName) int {
	for i, p := range params {
		if TypeName(p.Name) == name {
			return i
		}
	}
	return -1
}

// IsParameter reports whether ref names one of t's generic parameters.
// Parameter references never carry arguments.
func IsParameter(t Type, ref TypeReference) bool {
	return len(ref.Arguments) == 0 && paramIndex(t.Parameters(), ref.Name) >= 0
}

// References returns every TypeReference appearing directly in t: field
// types for structs and enum variants, the fallback for primitives.
func References(t Type) []TypeReference {
	switch d := t.(type) {
	case *Primitive:
		if d.Fallback != nil {
			return []TypeReference{*d.Fallback}
		}
		return nil
	case *Struct:
		return fieldRefs(d.Fields.List)
	case *Enum:
		var refs []TypeReference
		for _, v := range d.Variants {
			refs = append(refs, fieldRefs(v.Fields.List)...)
		}
		return refs
	}
	return nil
}

func fieldRefs(fields []Field) []TypeReference {
	refs := make([]TypeReference, 0, len(fields))
	for _, f := range fields {
		refs = append(refs, f.Type)
	}
	return refs
}
