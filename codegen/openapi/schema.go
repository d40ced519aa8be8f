package openapi

import (
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/broady/shapegen/codegen"
	"github.com/broady/shapegen/schema"
)

// undefinableExtension marks properties whose absence and null differ.
const undefinableExtension = "x-undefinable"

const maxFallbackDepth = 32

type builder struct {
	plan *codegen.Plan
}

func componentRef(name string) *openapi3.SchemaRef {
	return openapi3.NewSchemaRef("#/components/schemas/"+name, nil)
}

func value(s *openapi3.Schema) *openapi3.SchemaRef {
	return openapi3.NewSchemaRef("", s)
}

func typed(typ, format string) *openapi3.Schema {
	return &openapi3.Schema{Type: &openapi3.Types{typ}, Format: format}
}

func unsigned(format string) *openapi3.Schema {
	s := typed(openapi3.TypeInteger, format)
	zero := 0.0
	s.Min = &zero
	return s
}

// inline returns a schema that can carry annotations. A $ref cannot have
// siblings in OpenAPI 3.0, so references are wrapped in allOf.
func inline(ref *openapi3.SchemaRef) *openapi3.Schema {
	if ref.Ref != "" {
		return &openapi3.Schema{AllOf: openapi3.SchemaRefs{ref}}
	}
	return ref.Value
}

func unit() *openapi3.Schema {
	return &openapi3.Schema{Nullable: true, Enum: []any{nil}}
}

func object() *openapi3.Schema {
	return &openapi3.Schema{Type: &openapi3.Types{openapi3.TypeObject}, Properties: openapi3.Schemas{}}
}

func (b *builder) description(d schema.Documentation) string {
	return strings.Join(b.plan.CommentLines(d, true), "\n")
}

func (b *builder) annotate(s *openapi3.Schema, d schema.Documentation) {
	if desc := b.description(d); desc != "" {
		s.Description = desc
	}
	s.Deprecated = d.Deprecated()
}

func (b *builder) ref(side schema.Side, r schema.TypeReference) (*openapi3.SchemaRef, error) {
	return b.refDepth(side, r, 0)
}

func (b *builder) refDepth(side schema.Side, r schema.TypeReference, depth int) (*openapi3.SchemaRef, error) {
	if depth > maxFallbackDepth {
		return nil, codegen.Unsupported(b.plan.Target, r.Name, "primitive fallback chain does not terminate")
	}
	arg := func(i int) (*openapi3.SchemaRef, error) {
		if i >= len(r.Arguments) {
			return nil, codegen.Unsupported(b.plan.Target, r.Name, "missing type argument %d", i)
		}
		return b.refDepth(side, r.Arguments[i], depth)
	}

	switch r.Name {
	case schema.StringName:
		return value(typed(openapi3.TypeString, "")), nil
	case schema.CharName:
		s := typed(openapi3.TypeString, "")
		one := uint64(1)
		s.MinLength, s.MaxLength = 1, &one
		return value(s), nil
	case schema.BoolName:
		return value(typed(openapi3.TypeBoolean, "")), nil
	case schema.I8Name, schema.I16Name, schema.I32Name:
		return value(typed(openapi3.TypeInteger, "int32")), nil
	case schema.I64Name:
		return value(typed(openapi3.TypeInteger, "int64")), nil
	case schema.U8Name, schema.U16Name:
		return value(unsigned("int32")), nil
	case schema.U32Name, schema.U64Name:
		return value(unsigned("int64")), nil
	case schema.F32Name:
		return value(typed(openapi3.TypeNumber, "float")), nil
	case schema.F64Name:
		return value(typed(openapi3.TypeNumber, "double")), nil
	case schema.BytesName:
		return value(typed(openapi3.TypeString, "byte")), nil
	case schema.UuidName:
		return value(typed(openapi3.TypeString, "uuid")), nil
	case schema.DateTimeName:
		return value(typed(openapi3.TypeString, "date-time")), nil
	case schema.DateName:
		return value(typed(openapi3.TypeString, "date")), nil
	case schema.DurationName:
		s := unsigned("int64")
		s.Description = "Duration in milliseconds"
		return value(s), nil
	case schema.JSONName:
		return value(&openapi3.Schema{}), nil
	case schema.EmptyName:
		return value(object()), nil
	case schema.InfallibleName:
		return value(&openapi3.Schema{Not: value(&openapi3.Schema{})}), nil
	case schema.VecName:
		items, err := arg(0)
		if err != nil {
			return nil, err
		}
		s := typed(openapi3.TypeArray, "")
		s.Items = items
		return value(s), nil
	case schema.MapName:
		v, err := arg(1)
		if err != nil {
			return nil, err
		}
		s := typed(openapi3.TypeObject, "")
		s.AdditionalProperties = openapi3.AdditionalProperties{Schema: v}
		return value(s), nil
	case schema.BoxName:
		return arg(0)
	case schema.OptionName, schema.UndefinableName:
		inner, err := arg(0)
		if err != nil {
			return nil, err
		}
		return value(nullable(inner)), nil
	case schema.Tuple2Name, schema.Tuple3Name:
		s, err := b.tuple(side, r.Arguments)
		if err != nil {
			return nil, err
		}
		return value(s), nil
	}

	d, err := b.plan.Decl(side, r)
	if err != nil {
		return nil, err
	}
	if d != nil {
		return componentRef(d.Name), nil
	}
	t := b.plan.Resolve(side, r.Name)
	if fb, ok := codegen.Fallback(t, r); ok {
		return b.refDepth(side, fb, depth+1)
	}
	b.plan.Warn("no_fallback", r.Name, "primitive has no OpenAPI mapping and no fallback; rendered as an unconstrained schema")
	return value(&openapi3.Schema{}), nil
}

func nullable(inner *openapi3.SchemaRef) *openapi3.Schema {
	s := inline(inner)
	s.Nullable = true
	return s
}

// tuple renders a fixed-length array. OpenAPI 3.0 has no positional item
// schemas, so the items are the union of the element schemas.
func (b *builder) tuple(side schema.Side, elems []schema.TypeReference) (*openapi3.Schema, error) {
	s := typed(openapi3.TypeArray, "")
	n := uint64(len(elems))
	s.MinItems, s.MaxItems = n, &n

	var items openapi3.SchemaRefs
	seen := make(map[string]bool)
	for _, e := range elems {
		if seen[e.Key()] {
			continue
		}
		seen[e.Key()] = true
		ref, err := b.ref(side, e)
		if err != nil {
			return nil, err
		}
		items = append(items, ref)
	}
	if len(items) == 1 {
		s.Items = items[0]
	} else {
		s.Items = value(&openapi3.Schema{OneOf: items})
	}
	return s, nil
}

func (b *builder) decl(d *codegen.Decl) (*openapi3.SchemaRef, error) {
	var (
		s   *openapi3.Schema
		err error
	)
	switch t := d.Type.(type) {
	case *schema.Struct:
		s, err = b.structSchema(d.Side, t)
	case *schema.Enum:
		s, err = b.enumSchema(d.Side, t)
	default:
		err = codegen.Unsupported(b.plan.Target, d.Type.TypeName(), "unsupported top-level kind %s", d.Type.Kind())
	}
	if err != nil {
		return nil, err
	}
	b.annotate(s, d.Type.Doc())
	return value(s), nil
}

func (b *builder) structSchema(side schema.Side, s *schema.Struct) (*openapi3.Schema, error) {
	if err := b.plan.CheckStruct(side, s); err != nil {
		return nil, err
	}
	switch {
	case s.Newtype():
		ref, err := b.ref(side, s.Fields.List[0].Type)
		if err != nil {
			return nil, err
		}
		return inline(ref), nil
	case s.Fields.Kind == schema.FieldsNone:
		return unit(), nil
	case s.IsTuple():
		elems := make([]schema.TypeReference, len(s.Fields.List))
		for i, f := range s.Fields.List {
			elems[i] = f.Type
		}
		return b.tuple(side, elems)
	}
	return b.objectSchema(side, s.Fields.List)
}

// objectSchema renders named fields. Flattened fields are merged with
// allOf.
func (b *builder) objectSchema(side schema.Side, fields []schema.Field) (*openapi3.Schema, error) {
	obj := object()
	var flat openapi3.SchemaRefs
	for _, f := range fields {
		ref, err := b.ref(side, f.Type)
		if err != nil {
			return nil, err
		}
		if f.Flattened {
			flat = append(flat, ref)
			continue
		}
		pres := codegen.FieldPresence(f)
		doc := f.Doc()
		if !doc.IsZero() || pres.TriState {
			prop := inline(ref)
			b.annotate(prop, doc)
			if pres.TriState {
				prop.Extensions = map[string]any{undefinableExtension: true}
			}
			ref = value(prop)
		}
		obj.Properties[f.WireName()] = ref
		if !pres.Optional {
			obj.Required = append(obj.Required, f.WireName())
		}
	}
	if len(flat) == 0 {
		return obj, nil
	}
	return &openapi3.Schema{AllOf: append(flat, value(obj))}, nil
}

func tagSchema(name string) *openapi3.SchemaRef {
	s := typed(openapi3.TypeString, "")
	s.Enum = []any{name}
	return value(s)
}

func (b *builder) enumSchema(side schema.Side, e *schema.Enum) (*openapi3.Schema, error) {
	if err := b.plan.CheckEnum(side, e); err != nil {
		return nil, err
	}
	if codegen.IsNumeric(e) {
		s := typed(openapi3.TypeInteger, "int64")
		for _, v := range e.Variants {
			s.Enum = append(s.Enum, *v.Discriminant)
		}
		return s, nil
	}
	if len(e.Variants) == 0 {
		return &openapi3.Schema{Not: value(&openapi3.Schema{})}, nil
	}
	if stringEnum(e) {
		s := typed(openapi3.TypeString, "")
		for _, v := range e.Variants {
			s.Enum = append(s.Enum, v.WireName())
		}
		return s, nil
	}

	s := &openapi3.Schema{}
	for _, v := range e.Variants {
		vs, err := b.variant(side, e, v)
		if err != nil {
			return nil, err
		}
		vs.Title = v.Name
		b.annotate(vs, v.Doc())
		s.OneOf = append(s.OneOf, value(vs))
	}
	if internal, ok := e.Repr().(schema.Internal); ok && !hasUntagged(e) {
		s.Discriminator = &openapi3.Discriminator{PropertyName: internal.Tag}
	}
	return s, nil
}

// stringEnum reports whether every variant of an externally tagged enum is
// a unit, so the enum travels as a bare string.
func stringEnum(e *schema.Enum) bool {
	if _, ok := e.Repr().(schema.External); !ok {
		return false
	}
	for _, v := range e.Variants {
		if !v.IsUnit() || v.Untagged {
			return false
		}
	}
	return true
}

func hasUntagged(e *schema.Enum) bool {
	for _, v := range e.Variants {
		if v.Untagged {
			return true
		}
	}
	return false
}

func (b *builder) payload(side schema.Side, v schema.Variant) (*openapi3.SchemaRef, error) {
	switch codegen.Shape(v) {
	case codegen.ShapeNewtype:
		return b.ref(side, v.Fields.List[0].Type)
	case codegen.ShapeTuple:
		elems := make([]schema.TypeReference, len(v.Fields.List))
		for i, f := range v.Fields.List {
			elems[i] = f.Type
		}
		s, err := b.tuple(side, elems)
		if err != nil {
			return nil, err
		}
		return value(s), nil
	case codegen.ShapeStruct:
		s, err := b.objectSchema(side, v.Fields.List)
		if err != nil {
			return nil, err
		}
		return value(s), nil
	}
	return nil, nil
}

func (b *builder) variant(side schema.Side, e *schema.Enum, v schema.Variant) (*openapi3.Schema, error) {
	payload, err := b.payload(side, v)
	if err != nil {
		return nil, err
	}
	repr := e.Repr()
	if v.Untagged {
		repr = schema.Untagged{}
	}
	name := v.WireName()

	switch r := repr.(type) {
	case schema.External:
		if payload == nil {
			return tagSchema(name).Value, nil
		}
		s := object()
		s.Properties[name] = payload
		s.Required = []string{name}
		return s, nil

	case schema.Internal:
		tagged := object()
		tagged.Properties[r.Tag] = tagSchema(name)
		tagged.Required = []string{r.Tag}
		switch {
		case payload == nil:
			return tagged, nil
		case codegen.Shape(v) == codegen.ShapeStruct && payload.Value.AllOf == nil:
			fields := payload.Value
			fields.Properties[r.Tag] = tagSchema(name)
			fields.Required = append([]string{r.Tag}, fields.Required...)
			return fields, nil
		}
		return &openapi3.Schema{AllOf: openapi3.SchemaRefs{value(tagged), payload}}, nil

	case schema.Adjacent:
		s := object()
		s.Properties[r.Tag] = tagSchema(name)
		s.Required = []string{r.Tag}
		if payload != nil {
			s.Properties[r.Content] = payload
			s.Required = append(s.Required, r.Content)
		}
		return s, nil
	}

	if payload == nil {
		return unit(), nil
	}
	return inline(payload), nil
}
