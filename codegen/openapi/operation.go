package openapi

import (
	"github.com/getkin/kin-openapi/openapi3"

	"github.com/broady/shapegen/codegen"
	"github.com/broady/shapegen/schema"
)

// readonlyExtension marks functions without side effects.
const readonlyExtension = "x-readonly"

func mediaType(f schema.Format) string {
	switch f {
	case schema.FormatJSON:
		return "application/json"
	case schema.FormatMsgpack:
		return "application/msgpack"
	}
	return "application/" + string(f)
}

func content(fn schema.Function, ref *openapi3.SchemaRef) openapi3.Content {
	c := openapi3.Content{}
	for _, f := range fn.Formats() {
		c[mediaType(f)] = &openapi3.MediaType{Schema: ref}
	}
	return c
}

func (b *builder) operation(fn schema.Function) (*openapi3.Operation, error) {
	doc := fn.Doc()
	op := &openapi3.Operation{
		OperationID: fn.Name,
		Tags:        fn.Tags,
		Description: b.description(doc),
		Deprecated:  doc.Deprecated(),
		Responses:   openapi3.NewResponses(),
	}
	if fn.Readonly {
		op.Extensions = map[string]any{readonlyExtension: true}
	}

	if headers := fn.Headers(); headers.Name != schema.EmptyName {
		params, err := b.headers(headers)
		if err != nil {
			return nil, err
		}
		op.Parameters = params
	}

	input := fn.Input()
	in, err := b.ref(schema.Input, input)
	if err != nil {
		return nil, err
	}
	op.RequestBody = &openapi3.RequestBodyRef{Value: &openapi3.RequestBody{
		Required: input.Name != schema.EmptyName,
		Content:  content(fn, in),
	}}

	out, err := b.ref(schema.Output, fn.Output())
	if err != nil {
		return nil, err
	}
	op.Responses.Delete("default")
	ok := "Success"
	op.Responses.Set("200", &openapi3.ResponseRef{Value: &openapi3.Response{
		Description: &ok,
		Content:     content(fn, out),
	}})

	if fn.Error().Name != schema.InfallibleName {
		e, err := b.ref(schema.Output, fn.Error())
		if err != nil {
			return nil, err
		}
		failed := "Application error"
		op.Responses.Set("default", &openapi3.ResponseRef{Value: &openapi3.Response{
			Description: &failed,
			Content:     content(fn, e),
		}})
	}
	return op, nil
}

// headers turns the fields of the header struct into header parameters.
func (b *builder) headers(ref schema.TypeReference) (openapi3.Parameters, error) {
	d, err := b.plan.Decl(schema.Input, ref)
	if err != nil {
		return nil, err
	}
	var s *schema.Struct
	if d != nil {
		s, _ = d.Type.(*schema.Struct)
	}
	if s == nil || s.Fields.Kind != schema.FieldsNamed {
		return nil, codegen.Unsupported(b.plan.Target, ref.Name, "headers must be a struct with named fields")
	}

	var params openapi3.Parameters
	for _, f := range s.Fields.List {
		if f.Flattened {
			return nil, codegen.Unsupported(b.plan.Target, ref.Name, "header field %s is flattened", f.Name)
		}
		fs, err := b.ref(schema.Input, f.Type)
		if err != nil {
			return nil, err
		}
		doc := f.Doc()
		params = append(params, &openapi3.ParameterRef{Value: &openapi3.Parameter{
			Name:        f.WireName(),
			In:          openapi3.ParameterInHeader,
			Description: b.description(doc),
			Deprecated:  doc.Deprecated(),
			Required:    !codegen.FieldPresence(f).Optional,
			Schema:      fs,
		}})
	}
	return params, nil
}
