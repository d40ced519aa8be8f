package typescript

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/broady/shapegen/codegen"
	"github.com/broady/shapegen/schema"
)

// member is a resolved client member: a method or a nested namespace.
type member struct {
	ident  string
	method *codegen.Method
	ns     *codegen.Namespace
}

// members names the methods and children of ns, methods first.
func (e *Emitter) members(ns *codegen.Namespace) ([]member, error) {
	where := "client"
	if len(ns.Path) > 0 {
		where = "client namespace " + strings.Join(ns.Path, ".")
	}
	scope := e.plan.Namer.Scope(where)
	var out []member
	for _, m := range ns.Methods {
		ident, err := scope.Declare(m.Function.Name, sanitizeIdentifier(codegen.CamelCase(m.Name)))
		if err != nil {
			return nil, err
		}
		out = append(out, member{ident: ident, method: m})
	}
	for _, c := range ns.Children {
		ident, err := scope.Declare(strings.Join(c.Path, "."), sanitizeIdentifier(codegen.CamelCase(c.Name)))
		if err != nil {
			return nil, err
		}
		out = append(out, member{ident: ident, ns: c})
	}
	return out, nil
}

// signature holds the rendered types of one client method.
type signature struct {
	input, headers, output, errType string
	inputOptional, hasHeaders        bool
	// infallible routes have no error body; any non-2xx reply is a
	// transport failure.
	infallible bool
}

func (e *Emitter) signature(fn *schema.Function) (signature, error) {
	var sig signature
	var err error
	if sig.input, err = e.EmitTypeExpr(schema.Input, nil, fn.Input()); err != nil {
		return sig, err
	}
	if sig.output, err = e.EmitTypeExpr(schema.Output, nil, fn.Output()); err != nil {
		return sig, err
	}
	if sig.errType, err = e.EmitTypeExpr(schema.Output, nil, fn.Error()); err != nil {
		return sig, err
	}
	sig.hasHeaders = fn.Headers().Name != schema.EmptyName
	if sig.hasHeaders {
		if sig.headers, err = e.EmitTypeExpr(schema.Input, nil, fn.Headers()); err != nil {
			return sig, err
		}
	}
	sig.inputOptional = fn.Input().Name == schema.EmptyName && !sig.hasHeaders
	sig.infallible = e.uninhabited(fn.Error())
	return sig, nil
}

// uninhabited reports whether ref names an enum without variants, such
// as std::Infallible.
func (e *Emitter) uninhabited(ref schema.TypeReference) bool {
	en, ok := e.plan.Resolve(schema.Output, ref.Name).(*schema.Enum)
	return ok && len(en.Variants) == 0
}

func (s signature) params() string {
	in := "input: " + s.input
	if s.inputOptional {
		in = "input?: " + s.input
	}
	if s.hasHeaders {
		return in + ", headers: " + s.headers
	}
	return in
}

func (s signature) result() string {
	return "Result<" + s.output + ", Err<" + s.errType + ">>"
}

// emitClient writes the Client interface and the client factory.
func (e *Emitter) emitClient(buf *bytes.Buffer) error {
	if len(e.plan.Schema.Functions) == 0 {
		return nil
	}
	if e.plan.Comments() {
		buf.WriteString("/** Typed client for the ")
		buf.WriteString(escapeComment(e.plan.Schema.Name))
		buf.WriteString(" API. */\n")
	}
	buf.WriteString("export interface Client {\n")
	if err := e.emitClientType(buf, e.plan.Root, 1); err != nil {
		return err
	}
	buf.WriteString("}\n\n")

	buf.WriteString("export function client(base: string | Transport): Client {\n")
	fmt.Fprintf(buf, "%sconst transport: Transport = typeof base === \"string\" ? new FetchTransport(base) : base;\n", e.indent)
	fmt.Fprintf(buf, "%sreturn {\n", e.indent)
	if err := e.emitClientValue(buf, e.plan.Root, 2); err != nil {
		return err
	}
	fmt.Fprintf(buf, "%s};\n", e.indent)
	buf.WriteString("}\n")
	return nil
}

func (e *Emitter) emitClientType(buf *bytes.Buffer, ns *codegen.Namespace, depth int) error {
	ms, err := e.members(ns)
	if err != nil {
		return err
	}
	pad := strings.Repeat(e.indent, depth)
	for _, m := range ms {
		if m.ns != nil {
			fmt.Fprintf(buf, "%s%s: {\n", pad, m.ident)
			if err := e.emitClientType(buf, m.ns, depth+1); err != nil {
				return err
			}
			fmt.Fprintf(buf, "%s};\n", pad)
			continue
		}
		fn := m.method.Function
		sig, err := e.signature(fn)
		if err != nil {
			return fnError(fn, err)
		}
		e.emitJSDoc(buf, pad, fn.Doc())
		fmt.Fprintf(buf, "%s%s(%s): Promise<%s>;\n", pad, m.ident, sig.params(), sig.result())
	}
	return nil
}

func (e *Emitter) emitClientValue(buf *bytes.Buffer, ns *codegen.Namespace, depth int) error {
	ms, err := e.members(ns)
	if err != nil {
		return err
	}
	pad := strings.Repeat(e.indent, depth)
	for _, m := range ms {
		if m.ns != nil {
			fmt.Fprintf(buf, "%s%s: {\n", pad, m.ident)
			if err := e.emitClientValue(buf, m.ns, depth+1); err != nil {
				return err
			}
			fmt.Fprintf(buf, "%s},\n", pad)
			continue
		}
		fn := m.method.Function
		sig, err := e.signature(fn)
		if err != nil {
			return fnError(fn, err)
		}
		headers := "{}"
		args := "input"
		if sig.hasHeaders {
			headers = "headers"
			args = "input, headers"
		}
		// Only an Empty input may be left out by the caller.
		body := "input"
		if fn.Input().Name == schema.EmptyName {
			body = "input ?? {}"
		}
		fmt.Fprintf(buf, "%s%s: (%s) =>\n%s%s__request<%s, %s>(transport, %s, %s, %s, %t),\n",
			pad, m.ident, args, pad, e.indent, sig.output, sig.errType, quote(fn.RoutePath()), body, headers, !sig.infallible)
	}
	return nil
}

func fnError(fn *schema.Function, err error) error {
	if ge, ok := err.(*codegen.GenerationError); ok {
		if ge.Function == "" {
			ge.Function = fn.Name
		}
		return ge
	}
	return fmt.Errorf("function %s: %w", fn.Name, err)
}
