package golang

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/dave/jennifer/jen"

	"github.com/broady/shapegen/codegen"
	"github.com/broady/shapegen/schema"
)

type generator struct {
	plan *codegen.Plan
	file *jen.File
}

// goIdent turns a schema name into an exported Go identifier.
func goIdent(s string) string {
	var b strings.Builder
	for _, r := range codegen.PascalCase(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			b.WriteRune(r)
		}
	}
	id := b.String()
	switch {
	case id == "":
		return "X"
	case unicode.IsDigit(rune(id[0])):
		return "F" + id
	}
	return id
}

// comments renders documentation as Go comment lines. Deprecation notes
// become the conventional "Deprecated:" paragraph.
func (g *generator) comments(d schema.Documentation) []jen.Code {
	var out []jen.Code
	for _, l := range g.plan.CommentLines(d, false) {
		out = append(out, jen.Comment(l))
	}
	return out
}

func (g *generator) doc(d schema.Documentation) {
	for _, c := range g.comments(d) {
		g.file.Add(c)
	}
}

func (g *generator) decl(d *codegen.Decl) error {
	var err error
	switch t := d.Type.(type) {
	case *schema.Struct:
		err = g.structDecl(d, t)
	case *schema.Enum:
		err = g.enumDecl(d, t)
	default:
		err = codegen.Unsupported(g.plan.Target, d.Type.TypeName(), "unsupported top-level kind %s", d.Type.Kind())
	}
	if ge, ok := err.(*codegen.GenerationError); ok && ge.TypeName == "" {
		ge.TypeName = d.Type.TypeName()
	}
	return err
}

func (g *generator) structDecl(d *codegen.Decl, s *schema.Struct) error {
	if err := g.plan.CheckStruct(d.Side, s); err != nil {
		return err
	}
	g.doc(s.Doc())

	switch {
	case s.Newtype():
		typ, err := g.typeExpr(d.Side, s.Fields.List[0].Type)
		if err != nil {
			return err
		}
		g.file.Type().Id(d.Name).Op("=").Add(typ)
		g.file.Line()
	case s.Fields.Kind == schema.FieldsNone:
		g.file.Type().Id(d.Name).Op("=").Qual(clientPath, "Unit")
		g.file.Line()
	case s.IsTuple():
		return g.tupleStruct(d.Side, d.Name, s.Fields.List)
	default:
		fields, err := g.fields(d.Side, s.Name, s.Fields.List)
		if err != nil {
			return err
		}
		g.file.Type().Id(d.Name).Struct(fields...)
		g.file.Line()
	}
	return nil
}

// fields renders named fields. Flattened fields become embedded structs,
// whose fields encoding/json promotes into the parent object.
func (g *generator) fields(side schema.Side, owner schema.TypeName, list []schema.Field) ([]jen.Code, error) {
	scope := g.plan.Namer.Scope("fields of " + string(owner))
	var out []jen.Code
	for i, f := range list {
		out = append(out, g.comments(f.Doc())...)
		if f.Flattened {
			typ, name, err := g.embedded(side, owner, f)
			if err != nil {
				return nil, err
			}
			if _, err := scope.Declare(f.Name, name); err != nil {
				return nil, err
			}
			out = append(out, typ)
			continue
		}
		id := goIdent(f.Name)
		if f.Name == "" {
			id = "F" + strconv.Itoa(i)
		}
		ident, err := scope.Declare(f.Name, id)
		if err != nil {
			return nil, err
		}
		typ, tag, err := g.fieldType(side, f)
		if err != nil {
			return nil, err
		}
		out = append(out, jen.Id(ident).Add(typ).Tag(map[string]string{"json": tag}))
	}
	return out, nil
}

func (g *generator) embedded(side schema.Side, owner schema.TypeName, f schema.Field) (*jen.Statement, string, error) {
	s, ok := g.plan.Resolve(side, f.Type.Name).(*schema.Struct)
	if !ok || s.Transparent || s.Fields.Kind != schema.FieldsNamed || !codegen.Declared(s) {
		return nil, "", codegen.Unsupported(g.plan.Target, owner, "flattened field %s must have a struct type with named fields", f.Name)
	}
	d, err := g.plan.Decl(side, f.Type)
	if err != nil {
		return nil, "", err
	}
	if !f.Required {
		return jen.Op("*").Id(d.Name), d.Name, nil
	}
	return jen.Id(d.Name), d.Name, nil
}

// fieldType applies the optionality rules: absent-able fields are
// omitted when nil, std::Option is a nil-able pointer and
// std::Undefinable keeps all three states with omitzero.
func (g *generator) fieldType(side schema.Side, f schema.Field) (*jen.Statement, string, error) {
	tag := f.WireName()
	if tag == "-" {
		tag = "-,"
	}
	typ, err := g.typeExpr(side, f.Type)
	if err != nil {
		return nil, "", err
	}
	pres := codegen.FieldPresence(f)
	switch {
	case pres.TriState:
		return typ, tag + ",omitzero", nil
	case pres.Nullable:
		if pres.Optional {
			tag += ",omitempty"
		}
		return typ, tag, nil
	case pres.Optional:
		if !nillable(f.Type) {
			typ = jen.Op("*").Add(typ)
		}
		return typ, tag + ",omitempty", nil
	}
	return typ, tag, nil
}

// nillable reports whether ref renders as a Go type with a nil value.
func nillable(ref schema.TypeReference) bool {
	switch ref.Name {
	case schema.VecName, schema.MapName, schema.BoxName, schema.OptionName, schema.JSONName, schema.BytesName:
		return true
	}
	return false
}

func (g *generator) tupleStruct(side schema.Side, name string, list []schema.Field) error {
	var fields, vals []jen.Code
	ptrs := []jen.Code{jen.Id("data")}
	for i, f := range list {
		id := "F" + strconv.Itoa(i)
		typ, err := g.typeExpr(side, f.Type)
		if err != nil {
			return err
		}
		fields = append(fields, jen.Id(id).Add(typ))
		vals = append(vals, jen.Id("v").Dot(id))
		ptrs = append(ptrs, jen.Op("&").Id("v").Dot(id))
	}
	g.file.Type().Id(name).Struct(fields...)
	g.file.Line()
	g.file.Func().Params(jen.Id("v").Id(name)).Id("MarshalJSON").Params().Params(jen.Index().Byte(), jen.Error()).Block(
		jen.Return(jen.Qual(clientPath, "MarshalTuple").Call(vals...)),
	)
	g.file.Line()
	g.file.Func().Params(jen.Id("v").Op("*").Id(name)).Id("UnmarshalJSON").Params(jen.Id("data").Index().Byte()).Error().Block(
		jen.Return(jen.Qual(clientPath, "DecodeTuple").Call(ptrs...)),
	)
	g.file.Line()
	return nil
}

// typeExpr renders a type reference on side.
func (g *generator) typeExpr(side schema.Side, ref schema.TypeReference) (*jen.Statement, error) {
	args := make([]jen.Code, len(ref.Arguments))
	for i, a := range ref.Arguments {
		expr, err := g.typeExpr(side, a)
		if err != nil {
			return nil, err
		}
		args[i] = expr
	}

	switch ref.Name {
	case schema.StringName, schema.CharName:
		return jen.String(), nil
	case schema.BoolName:
		return jen.Bool(), nil
	case schema.I8Name:
		return jen.Int8(), nil
	case schema.I16Name:
		return jen.Int16(), nil
	case schema.I32Name:
		return jen.Int32(), nil
	case schema.I64Name:
		return jen.Int64(), nil
	case schema.U8Name:
		return jen.Uint8(), nil
	case schema.U16Name:
		return jen.Uint16(), nil
	case schema.U32Name:
		return jen.Uint32(), nil
	case schema.U64Name:
		return jen.Uint64(), nil
	case schema.F32Name:
		return jen.Float32(), nil
	case schema.F64Name:
		return jen.Float64(), nil
	case schema.BytesName:
		return jen.Index().Byte(), nil
	case schema.DateTimeName:
		return jen.Qual("time", "Time"), nil
	case schema.JSONName:
		return jen.Qual("encoding/json", "RawMessage"), nil
	case schema.VecName:
		return jen.Index().Add(args[0]), nil
	case schema.MapName:
		if !g.keyLike(side, ref.Arguments[0], 0) {
			return nil, codegen.Unsupported(g.plan.Target, ref.Arguments[0].Name, "%s cannot be a JSON object key in Go", ref.Arguments[0].Key())
		}
		return jen.Map(args[0]).Add(args[1]), nil
	case schema.BoxName:
		return jen.Op("*").Add(args[0]), nil
	case schema.OptionName:
		if nillable(ref.Arguments[0]) {
			return jen.Add(args[0]), nil
		}
		return jen.Op("*").Add(args[0]), nil
	case schema.UndefinableName:
		return jen.Qual(clientPath, "Undefinable").Types(args[0]), nil
	case schema.EmptyName:
		return jen.Struct(), nil
	case schema.InfallibleName:
		return jen.Qual(clientPath, "Infallible"), nil
	case schema.Tuple2Name:
		return jen.Qual(clientPath, "Tuple2").Types(args...), nil
	case schema.Tuple3Name:
		return jen.Qual(clientPath, "Tuple3").Types(args...), nil
	}

	t := g.plan.Resolve(side, ref.Name)
	if t != nil && !codegen.Declared(t) {
		if fb, ok := codegen.Fallback(t, ref); ok {
			return g.typeExpr(side, fb)
		}
		g.plan.Warn("no_fallback", ref.Name, "primitive without fallback rendered as json.RawMessage")
		return jen.Qual("encoding/json", "RawMessage"), nil
	}
	d, err := g.plan.Decl(side, ref)
	if err != nil {
		return nil, err
	}
	return jen.Id(d.Name), nil
}

// keyLike reports whether ref renders as a Go type encoding/json accepts
// as a map key: strings, integers and text marshalers.
func (g *generator) keyLike(side schema.Side, ref schema.TypeReference, depth int) bool {
	if depth > 8 {
		return false
	}
	switch ref.Name {
	case schema.StringName, schema.CharName, schema.DateTimeName,
		schema.I8Name, schema.I16Name, schema.I32Name, schema.I64Name,
		schema.U8Name, schema.U16Name, schema.U32Name, schema.U64Name:
		return true
	}
	switch t := g.plan.Resolve(side, ref.Name).(type) {
	case *schema.Primitive:
		if fb, ok := codegen.Fallback(t, ref); ok {
			return g.keyLike(side, fb, depth+1)
		}
	case *schema.Struct:
		if t.Newtype() {
			return g.keyLike(side, schema.Substitute(t.Fields.List[0].Type, t.Params, ref.Arguments), depth+1)
		}
	case *schema.Enum:
		return codegen.IsNumeric(t) || stringEnum(t)
	}
	return false
}
