package golang

import (
	"strconv"

	"github.com/dave/jennifer/jen"

	"github.com/broady/shapegen/codegen"
	"github.com/broady/shapegen/schema"
)

// stringEnum reports whether e is externally tagged with only unit
// variants, so that every value is a bare string.
func stringEnum(e *schema.Enum) bool {
	if _, ok := e.Repr().(schema.External); !ok || len(e.Variants) == 0 {
		return false
	}
	for _, v := range e.Variants {
		if !v.IsUnit() || v.Untagged {
			return false
		}
	}
	return true
}

func (g *generator) enumDecl(d *codegen.Decl, e *schema.Enum) error {
	if err := g.plan.CheckEnum(d.Side, e); err != nil {
		return err
	}
	switch {
	case codegen.IsNumeric(e):
		return g.constEnum(d, e, jen.Int64(), func(v schema.Variant) jen.Code {
			return jen.Id(strconv.FormatInt(*v.Discriminant, 10))
		})
	case stringEnum(e):
		return g.constEnum(d, e, jen.String(), func(v schema.Variant) jen.Code {
			return jen.Lit(v.WireName())
		})
	}
	return g.unionEnum(d, e)
}

// constEnum renders an enum whose values are plain constants.
func (g *generator) constEnum(d *codegen.Decl, e *schema.Enum, base jen.Code, value func(schema.Variant) jen.Code) error {
	var defs []jen.Code
	for _, v := range e.Variants {
		ident, err := g.plan.Types.Declare(d.Key+"::"+v.Name, d.Name+goIdent(v.Name))
		if err != nil {
			return err
		}
		defs = append(defs, g.comments(v.Doc())...)
		defs = append(defs, jen.Id(ident).Id(d.Name).Op("=").Add(value(v)))
	}
	g.doc(e.Doc())
	g.file.Type().Id(d.Name).Add(base)
	g.file.Line()
	g.file.Const().Defs(defs...)
	g.file.Line()
	return nil
}

// variant is one member of a union enum: a pointer field that is non-nil
// when the variant is set.
type variant struct {
	schema.Variant
	field string
	typ   *jen.Statement
	unit  bool
}

func untagged(e *schema.Enum, v schema.Variant) bool {
	if v.Untagged {
		return true
	}
	_, ok := e.Repr().(schema.Untagged)
	return ok
}

// unionEnum renders an enum as a struct with one pointer per variant and
// JSON methods reproducing its representation.
func (g *generator) unionEnum(d *codegen.Decl, e *schema.Enum) error {
	scope := g.plan.Namer.Scope("variants of " + d.Name)
	var vs []variant
	var payloads []func() error
	for _, v := range e.Variants {
		field, err := scope.Declare(v.Name, goIdent(v.Name))
		if err != nil {
			return err
		}
		vi := variant{Variant: v, field: field}
		switch codegen.Shape(v) {
		case codegen.ShapeUnit:
			vi.unit = true
			vi.typ = jen.Struct()
		case codegen.ShapeNewtype:
			if vi.typ, err = g.typeExpr(d.Side, v.Fields.List[0].Type); err != nil {
				return err
			}
		default:
			name, err := g.plan.Types.Declare(d.Key+"::"+v.Name, d.Name+field)
			if err != nil {
				return err
			}
			vi.typ = jen.Id(name)
			payloads = append(payloads, func() error { return g.payloadStruct(d.Side, e.Name, name, v) })
		}
		vs = append(vs, vi)
	}

	var fields []jen.Code
	for _, vi := range vs {
		fields = append(fields, g.comments(vi.Doc())...)
		fields = append(fields, jen.Id(vi.field).Op("*").Add(vi.typ))
	}
	g.doc(e.Doc())
	g.file.Comment("Exactly one field is set.")
	g.file.Type().Id(d.Name).Struct(fields...)
	g.file.Line()
	g.marshal(d.Name, e, vs)
	g.file.Line()
	g.unmarshal(d.Name, e, vs)
	g.file.Line()

	for _, p := range payloads {
		if err := p(); err != nil {
			return err
		}
	}
	return nil
}

func (g *generator) payloadStruct(side schema.Side, owner schema.TypeName, name string, v schema.Variant) error {
	if codegen.Shape(v) == codegen.ShapeTuple {
		return g.tupleStruct(side, name, v.Fields.List)
	}
	fields, err := g.fields(side, owner+"::"+schema.TypeName(v.Name), v.Fields.List)
	if err != nil {
		return err
	}
	g.file.Type().Id(name).Struct(fields...)
	g.file.Line()
	return nil
}

func (g *generator) marshal(name string, e *schema.Enum, vs []variant) {
	var cases []jen.Code
	for _, vi := range vs {
		cases = append(cases, jen.Case(jen.Id("v").Dot(vi.field).Op("!=").Nil()).Block(g.encode(e, vi)))
	}
	g.file.Func().Params(jen.Id("v").Id(name)).Id("MarshalJSON").Params().Params(jen.Index().Byte(), jen.Error()).Block(
		jen.Switch().Block(cases...),
		jen.Return(jen.Nil(), jen.Qual(clientPath, "ErrNoVariant")),
	)
}

func (g *generator) encode(e *schema.Enum, vi variant) jen.Code {
	payload := jen.Id("v").Dot(vi.field)
	if vi.unit {
		payload = jen.Nil()
	}
	if untagged(e, vi.Variant) {
		if vi.unit {
			return jen.Return(jen.Index().Byte().Call(jen.Lit("null")), jen.Nil())
		}
		return jen.Return(jen.Qual("encoding/json", "Marshal").Call(payload))
	}
	wire := jen.Lit(vi.WireName())
	switch r := e.Repr().(type) {
	case schema.Internal:
		return jen.Return(jen.Qual(clientPath, "MarshalInternal").Call(jen.Lit(r.Tag), wire, payload))
	case schema.Adjacent:
		return jen.Return(jen.Qual(clientPath, "MarshalAdjacent").Call(jen.Lit(r.Tag), jen.Lit(r.Content), wire, payload))
	}
	return jen.Return(jen.Qual(clientPath, "MarshalExternal").Call(wire, payload))
}

// unmarshal matches null against untagged unit variants, decodes tagged
// variants by their tag, then tries the remaining untagged variants in
// declaration order.
func (g *generator) unmarshal(name string, e *schema.Enum, vs []variant) {
	var tagged, loose []variant
	needPayload := false
	for _, vi := range vs {
		if untagged(e, vi.Variant) {
			if !vi.unit {
				loose = append(loose, vi)
			}
			continue
		}
		tagged = append(tagged, vi)
		needPayload = needPayload || !vi.unit
	}

	body := []jen.Code{jen.Op("*").Id("v").Op("=").Id(name).Values()}
	for _, vi := range vs {
		if !vi.unit || !untagged(e, vi.Variant) {
			continue
		}
		body = append(body, jen.If(jen.Qual(clientPath, "IsNull").Call(jen.Id("data"))).Block(
			jen.Id("v").Dot(vi.field).Op("=").Op("&").Struct().Values(),
			jen.Return(jen.Nil()),
		))
		// Only the first unit variant is reachable from null.
		break
	}

	if len(tagged) > 0 {
		pay := "_"
		if needPayload {
			pay = "payload"
		}
		payload := jen.Id("payload")
		var decode jen.Code
		switch r := e.Repr().(type) {
		case schema.Internal:
			decode = jen.List(jen.Id("name"), jen.Err()).Op(":=").Qual(clientPath, "DecodeInternal").Call(jen.Id("data"), jen.Lit(r.Tag))
			payload = jen.Id("data")
		case schema.Adjacent:
			decode = jen.List(jen.Id("name"), jen.Id(pay), jen.Err()).Op(":=").Qual(clientPath, "DecodeAdjacent").Call(jen.Id("data"), jen.Lit(r.Tag), jen.Lit(r.Content))
		default:
			decode = jen.List(jen.Id("name"), jen.Id(pay), jen.Err()).Op(":=").Qual(clientPath, "DecodeExternal").Call(jen.Id("data"))
		}

		var cases []jen.Code
		for _, vi := range tagged {
			set := jen.Id("v").Dot(vi.field)
			if vi.unit {
				cases = append(cases, jen.Case(jen.Lit(vi.WireName())).Block(
					set.Clone().Op("=").Op("&").Struct().Values(),
					jen.Return(jen.Nil()),
				))
				continue
			}
			cases = append(cases, jen.Case(jen.Lit(vi.WireName())).Block(
				set.Clone().Op("=").New(vi.typ),
				jen.Return(jen.Qual("encoding/json", "Unmarshal").Call(payload, set.Clone())),
			))
		}
		sw := jen.Switch(jen.Id("name")).Block(cases...)

		body = append(body, decode)
		if len(loose) == 0 {
			body = append(body,
				jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Err())),
				sw,
				jen.Return(jen.Qual(clientPath, "UnknownVariant").Call(jen.Lit(name), jen.Id("name"))),
			)
			g.file.Func().Params(jen.Id("v").Op("*").Id(name)).Id("UnmarshalJSON").Params(jen.Id("data").Index().Byte()).Error().Block(body...)
			return
		}
		body = append(body, jen.If(jen.Err().Op("==").Nil()).Block(sw))
	}

	for _, vi := range loose {
		set := jen.Id("v").Dot(vi.field)
		body = append(body, jen.If(
			jen.Id("p").Op(":=").New(vi.typ),
			jen.Qual(clientPath, "DecodeStrict").Call(jen.Id("data"), jen.Id("p")).Op("==").Nil(),
		).Block(
			set.Clone().Op("=").Id("p"),
			jen.Return(jen.Nil()),
		))
	}
	body = append(body, jen.Return(jen.Qual(clientPath, "NoMatch").Call(jen.Lit(name))))
	g.file.Func().Params(jen.Id("v").Op("*").Id(name)).Id("UnmarshalJSON").Params(jen.Id("data").Index().Byte()).Error().Block(body...)
}
