package codegen

import (
	"github.com/broady/shapegen/schema"
)

// VariantShape is the payload shape of an enum variant.
type VariantShape int

const (
	ShapeUnit    VariantShape = iota // no payload
	ShapeNewtype                     // one positional field, encoded as the field itself
	ShapeTuple                       // several positional fields, encoded as an array
	ShapeStruct                      // named fields, encoded as an object
)

// Shape classifies v.
func Shape(v schema.Variant) VariantShape {
	switch v.Fields.Kind {
	case schema.FieldsNamed:
		return ShapeStruct
	case schema.FieldsUnnamed:
		if len(v.Fields.List) == 1 {
			return ShapeNewtype
		}
		return ShapeTuple
	}
	return ShapeUnit
}

// IsNumeric reports whether e is a C-like enum: untagged, with only unit
// variants that all carry a discriminant. Such enums travel as their
// integer discriminant.
func IsNumeric(e *schema.Enum) bool {
	if len(e.Variants) == 0 {
		return false
	}
	if _, ok := e.Repr().(schema.Untagged); !ok {
		return false
	}
	for _, v := range e.Variants {
		if !v.IsUnit() || v.Discriminant == nil {
			return false
		}
	}
	return true
}

// CheckEnum rejects enum shapes that have no wire encoding: internally
// tagged variants must encode as objects and must not reuse the tag key.
func (p *Plan) CheckEnum(side schema.Side, e *schema.Enum) error {
	internal, ok := e.Repr().(schema.Internal)
	if !ok {
		return nil
	}
	for _, v := range e.Variants {
		if v.Untagged {
			continue
		}
		switch Shape(v) {
		case ShapeTuple:
			return Unsupported(p.Target, e.Name, "variant %s of an internally tagged enum has positional fields", v.Name)
		case ShapeNewtype:
			if !p.isObject(side, v.Fields.List[0].Type, 0) {
				return Unsupported(p.Target, e.Name, "variant %s of an internally tagged enum wraps %s, which does not encode as an object", v.Name, v.Fields.List[0].Type.Key())
			}
		case ShapeStruct:
			for _, f := range v.Fields.List {
				if f.WireName() == internal.Tag {
					return Unsupported(p.Target, e.Name, "field %s of variant %s collides with tag %q", f.Name, v.Name, internal.Tag)
				}
			}
		}
	}
	return nil
}

// isObject reports whether values of ref encode as JSON objects.
func (p *Plan) isObject(side schema.Side, ref schema.TypeReference, depth int) bool {
	if depth > maxFallbackDepth {
		return false
	}
	t := p.Resolve(side, ref.Name)
	switch d := t.(type) {
	case *schema.Struct:
		if d.Newtype() {
			return p.isObject(side, schema.Substitute(d.Fields.List[0].Type, d.Params, ref.Arguments), depth+1)
		}
		return d.Fields.Kind == schema.FieldsNamed
	case *schema.Primitive:
		if d.Name == schema.MapName {
			return true
		}
		if fb, ok := Fallback(d, ref); ok {
			return p.isObject(side, fb, depth+1)
		}
	case *schema.Enum:
		if schema.IsWellKnown(d.Name) {
			return false
		}
		switch d.Repr().(type) {
		case schema.Internal, schema.Adjacent:
			return true
		case schema.External:
			for _, v := range d.Variants {
				if v.IsUnit() {
					return false
				}
			}
			return true
		}
	}
	return false
}

// CheckStruct rejects struct shapes that have no wire encoding.
func (p *Plan) CheckStruct(side schema.Side, s *schema.Struct) error {
	if s.Transparent && len(s.Fields.List) != 1 {
		return Unsupported(p.Target, s.Name, "transparent struct must have exactly one field, has %d", len(s.Fields.List))
	}
	for _, f := range s.Fields.List {
		if f.Flattened && !p.isObject(side, f.Type, 0) {
			return Unsupported(p.Target, s.Name, "flattened field %s has type %s, which does not encode as an object", f.Name, f.Type.Key())
		}
	}
	return nil
}
