package schema

// Substitute replaces references to the named parameters with the
// corresponding arguments, recursively.
func Substitute(ref TypeReference, params []TypeParameter, args []TypeReference) TypeReference {
	if len(params) == 0 {
		return ref
	}
	if len(ref.Arguments) == 0 {
		if i := paramIndex(params, ref.Name); i >= 0 && i < len(args) {
			return args[i]
		}
		return ref
	}
	out := TypeReference{Name: ref.Name, Arguments: make([]TypeReference, len(ref.Arguments))}
	for i, a := range ref.Arguments {
		out.Arguments[i] = Substitute(a, params, args)
	}
	return out
}

// Instantiate returns a copy of t with its parameters replaced by args and
// the parameter list cleared. The name is unchanged; callers name the
// concrete instance.
func Instantiate(t Type, args []TypeReference) Type {
	params := t.Parameters()
	if len(params) == 0 {
		return t
	}
	switch d := t.(type) {
	case *Primitive:
		c := *d
		c.Params = nil
		if d.Fallback != nil {
			fb := Substitute(*d.Fallback, params, args)
			c.Fallback = &fb
		}
		return &c
	case *Struct:
		c := *d
		c.Params = nil
		c.Fields = substituteFields(d.Fields, params, args)
		return &c
	case *Enum:
		c := *d
		c.Params = nil
		c.Variants = make([]Variant, len(d.Variants))
		for i, v := range d.Variants {
			v.Fields = substituteFields(v.Fields, params, args)
			c.Variants[i] = v
		}
		return &c
	}
	return t
}

func substituteFields(f Fields, params []TypeParameter, args []TypeReference) Fields {
	out := Fields{Kind: f.Kind}
	if f.List == nil {
		return out
	}
	out.List = make([]Field, len(f.List))
	for i, field := range f.List {
		field.Type = Substitute(field.Type, params, args)
		out.List[i] = field
	}
	return out
}
