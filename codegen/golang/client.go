package golang

import (
	"fmt"
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/broady/shapegen/codegen"
	"github.com/broady/shapegen/schema"
)

// nsType is the generated struct of one namespace.
type nsType struct {
	name     string
	children []nsChild
}

type nsChild struct {
	field string
	typ   *nsType
}

// client renders the Client struct tree and its constructor.
func (g *generator) client() error {
	if len(g.plan.Schema.Functions) == 0 {
		return nil
	}
	g.file.Comment(fmt.Sprintf("Client is a client for the %s API. Its fields group the API's functions by namespace.", g.plan.Schema.Name))
	root, err := g.namespace(g.plan.Root, "Client")
	if err != nil {
		return err
	}

	g.file.Comment("NewClient returns a client that sends every request through t.")
	g.file.Func().Id("NewClient").Params(jen.Id("t").Qual(clientPath, "Transport")).Op("*").Id("Client").Block(
		jen.Return(nsValue(root)),
	)
	return nil
}

func nsValue(t *nsType) jen.Code {
	dict := jen.Dict{jen.Id("transport"): jen.Id("t")}
	for _, c := range t.children {
		dict[jen.Id(c.field)] = nsValue(c.typ)
	}
	return jen.Op("&").Id(t.name).Values(dict)
}

// namespace renders the struct for ns, its methods, and then its child
// namespaces.
func (g *generator) namespace(ns *codegen.Namespace, typeName string) (*nsType, error) {
	scope := g.plan.Namer.Scope("members of " + typeName)
	scope.Reserve("transport")
	t := &nsType{name: typeName}

	var fields []jen.Code
	var childNS []*codegen.Namespace
	for _, c := range ns.Children {
		path := strings.Join(c.Path, ".")
		field, err := scope.Declare(path, goIdent(c.Name))
		if err != nil {
			return nil, err
		}
		name, err := g.plan.Types.Declare("namespace "+path, goIdent(strings.Join(c.Path, "_"))+"Client")
		if err != nil {
			return nil, err
		}
		t.children = append(t.children, nsChild{field: field, typ: &nsType{name: name}})
		childNS = append(childNS, c)
		fields = append(fields, jen.Id(field).Op("*").Id(name))
	}
	fields = append(fields, jen.Id("transport").Qual(clientPath, "Transport"))
	g.file.Type().Id(typeName).Struct(fields...)
	g.file.Line()

	for _, m := range ns.Methods {
		ident, err := scope.Declare(m.Function.Name, goIdent(m.Name))
		if err != nil {
			return nil, err
		}
		if err := g.method(typeName, ident, m.Function); err != nil {
			if ge, ok := err.(*codegen.GenerationError); ok && ge.Function == "" {
				ge.Function = m.Function.Name
			}
			return nil, err
		}
	}

	for i, c := range childNS {
		g.file.Comment(fmt.Sprintf("%s holds the functions of namespace %s.", t.children[i].typ.name, strings.Join(c.Path, ".")))
		child, err := g.namespace(c, t.children[i].typ.name)
		if err != nil {
			return nil, err
		}
		t.children[i].typ = child
	}
	return t, nil
}

// method renders one route call. Empty inputs and headers are left out of
// the signature.
func (g *generator) method(recv, ident string, fn *schema.Function) error {
	params := []jen.Code{jen.Id("ctx").Qual("context", "Context")}
	input := jen.Code(jen.Struct().Values())
	if ref := fn.Input(); ref.Name != schema.EmptyName {
		typ, err := g.typeExpr(schema.Input, ref)
		if err != nil {
			return err
		}
		params = append(params, jen.Id("input").Add(typ))
		input = jen.Id("input")
	}
	headers := jen.Code(jen.Nil())
	if ref := fn.Headers(); ref.Name != schema.EmptyName {
		typ, err := g.typeExpr(schema.Input, ref)
		if err != nil {
			return err
		}
		params = append(params, jen.Id("headers").Add(typ))
		headers = jen.Id("headers")
	}
	out, err := g.typeExpr(schema.Output, fn.Output())
	if err != nil {
		return err
	}
	errType, err := g.typeExpr(schema.Output, fn.Error())
	if err != nil {
		return err
	}

	lines := g.plan.CommentLines(fn.Doc(), false)
	if len(lines) == 0 {
		lines = []string{fmt.Sprintf("%s calls %s.", ident, fn.Name)}
	}
	for _, l := range lines {
		g.file.Comment(l)
	}
	g.file.Func().Params(jen.Id("c").Op("*").Id(recv)).Id(ident).Params(params...).Qual(clientPath, "Result").Types(out, errType).Block(
		jen.Return(jen.Qual(clientPath, "Call").Types(out, errType).Call(
			jen.Id("ctx"), jen.Id("c").Dot("transport"), jen.Lit(fn.RoutePath()), input, headers,
		)),
	)
	g.file.Line()
	return nil
}
