package typescript

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/broady/shapegen/codegen"
	"github.com/broady/shapegen/schema"
)

const header = "// Code generated by shapegen. DO NOT EDIT.\n"

// Emitter handles TypeScript code emission for one plan.
type Emitter struct {
	plan   *codegen.Plan
	config Options
	indent string
}

func newEmitter(p *codegen.Plan, opts Options) *Emitter {
	return &Emitter{plan: p, config: opts, indent: strings.Repeat(" ", opts.IndentSize)}
}

// emitModule writes the whole generated module.
func (e *Emitter) emitModule(ctx context.Context, buf *bytes.Buffer) error {
	s := e.plan.Schema
	buf.WriteString(header)
	buf.WriteString("// Schema: ")
	buf.WriteString(s.Name)
	buf.WriteString("\n")
	for _, l := range e.plan.CommentLines(schema.Documentation{Description: s.Description}, true) {
		buf.WriteString(strings.TrimRight("// "+l, " "))
		buf.WriteString("\n")
	}
	buf.WriteString("\n")

	if e.config.RuntimeFile {
		rt := "./runtime"
		fmt.Fprintf(buf, "import { __request, FetchTransport } from %q;\n", rt)
		fmt.Fprintf(buf, "import type { Err, Result, Transport, Undefinable } from %q;\n", rt)
		fmt.Fprintf(buf, "export * from %q;\n\n", rt)
	} else {
		buf.WriteString(runtimeSource)
		buf.WriteString("\n")
	}

	for _, d := range e.plan.Decls {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.EmitDecl(buf, d); err != nil {
			return err
		}
		buf.WriteString("\n\n")
	}

	return e.emitClient(buf)
}

func (e *Emitter) runtimePath() string {
	return path.Join(path.Dir(e.config.FileName), "runtime.ts")
}

// EmitDecl emits a top-level type declaration.
func (e *Emitter) EmitDecl(buf *bytes.Buffer, d *codegen.Decl) error {
	e.emitJSDoc(buf, "", d.Type.Doc())

	var err error
	switch t := d.Type.(type) {
	case *schema.Struct:
		err = e.emitStruct(buf, d, t)
	case *schema.Enum:
		err = e.emitEnum(buf, d, t)
	default:
		err = codegen.Unsupported(e.plan.Target, d.Type.TypeName(), "unsupported top-level kind %s", d.Type.Kind())
	}
	if ge, ok := err.(*codegen.GenerationError); ok && ge.TypeName == "" {
		ge.TypeName = d.Type.TypeName()
	}
	return err
}

// emitStruct emits a struct as an interface, an object type, a tuple or
// an alias, depending on its field shape.
func (e *Emitter) emitStruct(buf *bytes.Buffer, d *codegen.Decl, s *schema.Struct) error {
	if err := e.plan.CheckStruct(d.Side, s); err != nil {
		return err
	}
	typeName := d.Name + e.emitTypeParameters(s.Params)

	switch {
	case s.Newtype():
		expr, err := e.EmitTypeExpr(d.Side, s, s.Fields.List[0].Type)
		if err != nil {
			return err
		}
		fmt.Fprintf(buf, "export type %s = %s;", typeName, expr)
		return nil
	case s.Fields.Kind == schema.FieldsNone:
		fmt.Fprintf(buf, "export type %s = null;", typeName)
		return nil
	case s.IsTuple():
		expr, err := e.emitTuple(d.Side, s, s.Fields.List)
		if err != nil {
			return err
		}
		fmt.Fprintf(buf, "export type %s = %s;", typeName, expr)
		return nil
	}

	var own []schema.Field
	var flattened []string
	for _, f := range s.Fields.List {
		if !f.Flattened {
			own = append(own, f)
			continue
		}
		expr, err := e.EmitTypeExpr(d.Side, s, f.Type)
		if err != nil {
			return err
		}
		flattened = append(flattened, expr)
	}

	// Decide whether to use interface or type
	useInterface := e.config.UseInterface && len(flattened) == 0

	if useInterface {
		fmt.Fprintf(buf, "export interface %s {\n", typeName)
	} else {
		fmt.Fprintf(buf, "export type %s = {\n", typeName)
	}
	if err := e.emitFields(buf, d.Side, s, own); err != nil {
		return err
	}
	buf.WriteString("}")
	for _, f := range flattened {
		buf.WriteString(" & ")
		buf.WriteString(f)
	}
	if !useInterface {
		buf.WriteString(";")
	}
	return nil
}

// emitFields writes one property per line.
func (e *Emitter) emitFields(buf *bytes.Buffer, side schema.Side, owner schema.Type, fields []schema.Field) error {
	scope := e.plan.Namer.Scope("properties of " + string(owner.TypeName()))
	for _, f := range fields {
		if _, err := scope.Declare(f.Name, f.WireName()); err != nil {
			return err
		}
		e.emitJSDoc(buf, e.indent, f.Doc())
		prop, err := e.property(side, owner, f)
		if err != nil {
			return err
		}
		buf.WriteString(e.indent)
		buf.WriteString(prop)
		buf.WriteString(";\n")
	}
	return nil
}

// property renders "name?: Type". Fields that may be absent get the
// optional marker; std::Option renders "T | null" and std::Undefinable
// renders Undefinable<T>, which keeps absent, null and a value apart.
func (e *Emitter) property(side schema.Side, owner schema.Type, f schema.Field) (string, error) {
	expr, err := e.EmitTypeExpr(side, owner, f.Type)
	if err != nil {
		return "", fmt.Errorf("field %s: %w", f.Name, err)
	}
	mark := ""
	if codegen.FieldPresence(f).Optional {
		mark = "?"
	}
	return propertyName(f.WireName()) + mark + ": " + expr, nil
}

// inlineObject renders fields as a single-line object type, with extra
// leading properties such as an internal tag.
func (e *Emitter) inlineObject(side schema.Side, owner schema.Type, lead []string, fields []schema.Field) (string, error) {
	scope := e.plan.Namer.Scope("properties of an inline object in " + string(owner.TypeName()))
	parts := append([]string{}, lead...)
	for _, f := range fields {
		if _, err := scope.Declare(f.Name, f.WireName()); err != nil {
			return "", err
		}
		prop, err := e.property(side, owner, f)
		if err != nil {
			return "", err
		}
		parts = append(parts, prop)
	}
	if len(parts) == 0 {
		return "{}", nil
	}
	return "{ " + strings.Join(parts, "; ") + " }", nil
}

func (e *Emitter) emitTuple(side schema.Side, owner schema.Type, fields []schema.Field) (string, error) {
	parts := make([]string, len(fields))
	for i, f := range fields {
		expr, err := e.EmitTypeExpr(side, owner, f.Type)
		if err != nil {
			return "", err
		}
		parts[i] = expr
	}
	return "[" + strings.Join(parts, ", ") + "]", nil
}

// emitEnum emits an enum as a union whose members reproduce the wire
// shape of its representation.
func (e *Emitter) emitEnum(buf *bytes.Buffer, d *codegen.Decl, en *schema.Enum) error {
	if err := e.plan.CheckEnum(d.Side, en); err != nil {
		return err
	}
	typeName := d.Name + e.emitTypeParameters(en.Params)

	if codegen.IsNumeric(en) {
		values := make([]string, len(en.Variants))
		for i, v := range en.Variants {
			values[i] = strconv.FormatInt(*v.Discriminant, 10)
		}
		fmt.Fprintf(buf, "export type %s = %s;", typeName, strings.Join(values, " | "))
		return nil
	}
	if len(en.Variants) == 0 {
		fmt.Fprintf(buf, "export type %s = never;", typeName)
		return nil
	}

	scope := e.plan.Namer.Scope("variants of " + string(en.Name))
	fmt.Fprintf(buf, "export type %s =", typeName)
	for _, v := range en.Variants {
		if _, err := scope.Declare(v.Name, v.WireName()); err != nil {
			return err
		}
		member, err := e.variant(d.Side, en, v)
		if err != nil {
			return fmt.Errorf("variant %s: %w", v.Name, err)
		}
		buf.WriteString("\n")
		e.emitJSDoc(buf, e.indent, v.Doc())
		buf.WriteString(e.indent)
		buf.WriteString("| ")
		buf.WriteString(member)
	}
	buf.WriteString(";")
	return nil
}

// variant renders one union member.
func (e *Emitter) variant(side schema.Side, en *schema.Enum, v schema.Variant) (string, error) {
	name := quote(v.WireName())
	shape := codegen.Shape(v)

	if v.Untagged {
		return e.payload(side, en, v)
	}

	switch r := en.Repr().(type) {
	case schema.External:
		if shape == codegen.ShapeUnit {
			return name, nil
		}
		p, err := e.payload(side, en, v)
		if err != nil {
			return "", err
		}
		return "{ " + propertyName(v.WireName()) + ": " + p + " }", nil

	case schema.Internal:
		tag := propertyName(r.Tag) + ": " + name
		switch shape {
		case codegen.ShapeUnit:
			return "{ " + tag + " }", nil
		case codegen.ShapeStruct:
			return e.inlineObject(side, en, []string{tag}, v.Fields.List)
		}
		p, err := e.payload(side, en, v)
		if err != nil {
			return "", err
		}
		return "{ " + tag + " } & " + p, nil

	case schema.Adjacent:
		tag := propertyName(r.Tag) + ": " + name
		if shape == codegen.ShapeUnit {
			return "{ " + tag + " }", nil
		}
		p, err := e.payload(side, en, v)
		if err != nil {
			return "", err
		}
		return "{ " + tag + "; " + propertyName(r.Content) + ": " + p + " }", nil

	case schema.Untagged:
		return e.payload(side, en, v)
	}
	return "", codegen.Unsupported(e.plan.Target, en.Name, "unknown representation %T", en.Repr())
}

// payload renders the data a variant carries; unit variants carry null.
func (e *Emitter) payload(side schema.Side, en *schema.Enum, v schema.Variant) (string, error) {
	switch codegen.Shape(v) {
	case codegen.ShapeUnit:
		return "null", nil
	case codegen.ShapeNewtype:
		return e.EmitTypeExpr(side, en, v.Fields.List[0].Type)
	case codegen.ShapeTuple:
		return e.emitTuple(side, en, v.Fields.List)
	}
	return e.inlineObject(side, en, nil, v.Fields.List)
}

// EmitTypeExpr emits a type expression for ref as used inside owner.
func (e *Emitter) EmitTypeExpr(side schema.Side, owner schema.Type, ref schema.TypeReference) (string, error) {
	if owner != nil && schema.IsParameter(owner, ref) {
		return sanitizeIdentifier(string(ref.Name)), nil
	}

	args := make([]string, len(ref.Arguments))
	for i, a := range ref.Arguments {
		expr, err := e.EmitTypeExpr(side, owner, a)
		if err != nil {
			return "", err
		}
		args[i] = expr
	}

	switch ref.Name {
	case schema.StringName, schema.CharName:
		return "string", nil
	case schema.BoolName:
		return "boolean", nil
	case schema.I8Name, schema.I16Name, schema.I32Name, schema.I64Name,
		schema.U8Name, schema.U16Name, schema.U32Name, schema.U64Name,
		schema.F32Name, schema.F64Name:
		return "number", nil
	case schema.JSONName:
		return e.config.UnknownType, nil
	case schema.VecName:
		return e.emitArray(args[0]), nil
	case schema.MapName:
		if !e.keyLike(side, ref.Arguments[0], 0) {
			args[0] = "string"
		}
		return "Record<" + args[0] + ", " + args[1] + ">", nil
	case schema.BoxName:
		return args[0], nil
	case schema.OptionName:
		return args[0] + " | null", nil
	case schema.UndefinableName:
		return "Undefinable<" + args[0] + ">", nil
	case schema.EmptyName:
		return "{}", nil
	case schema.InfallibleName:
		return "never", nil
	case schema.Tuple2Name, schema.Tuple3Name:
		return "[" + strings.Join(args, ", ") + "]", nil
	}

	t := e.plan.Resolve(side, ref.Name)
	if t != nil && !codegen.Declared(t) {
		if fb, ok := codegen.Fallback(t, ref); ok {
			return e.EmitTypeExpr(side, owner, fb)
		}
		e.plan.Warn("no_fallback", ref.Name, "primitive without fallback rendered as "+e.config.UnknownType)
		return e.config.UnknownType, nil
	}

	d, err := e.plan.Decl(side, ref)
	if err != nil {
		return "", err
	}
	if len(args) == 0 {
		return d.Name, nil
	}
	return d.Name + "<" + strings.Join(args, ", ") + ">", nil
}

// emitArray emits an array type.
func (e *Emitter) emitArray(elem string) string {
	if strings.ContainsAny(elem, "|&") && !strings.HasPrefix(elem, "{") && !strings.HasPrefix(elem, "[") {
		elem = "(" + elem + ")"
	}
	if e.config.UseReadonlyArrays {
		return "readonly " + elem + "[]"
	}
	return elem + "[]"
}

// keyLike reports whether ref renders as a type usable as a Record key.
// JSON object keys are strings; anything else is coerced to string.
func (e *Emitter) keyLike(side schema.Side, ref schema.TypeReference, depth int) bool {
	if depth > 8 {
		return false
	}
	switch ref.Name {
	case schema.StringName, schema.CharName,
		schema.I8Name, schema.I16Name, schema.I32Name, schema.I64Name,
		schema.U8Name, schema.U16Name, schema.U32Name, schema.U64Name:
		return true
	}
	switch t := e.plan.Resolve(side, ref.Name).(type) {
	case *schema.Primitive:
		if fb, ok := codegen.Fallback(t, ref); ok {
			return e.keyLike(side, fb, depth+1)
		}
	case *schema.Struct:
		if t.Newtype() {
			return e.keyLike(side, schema.Substitute(t.Fields.List[0].Type, t.Params, ref.Arguments), depth+1)
		}
	case *schema.Enum:
		if codegen.IsNumeric(t) {
			return true
		}
		if _, ok := t.Repr().(schema.External); !ok {
			return false
		}
		for _, v := range t.Variants {
			if !v.IsUnit() || v.Untagged {
				return false
			}
		}
		return len(t.Variants) > 0
	}
	return false
}

// emitTypeParameters emits type parameter declarations.
func (e *Emitter) emitTypeParameters(params []schema.TypeParameter) string {
	if !e.plan.Generics || len(params) == 0 {
		return ""
	}

	var parts []string
	for _, param := range params {
		parts = append(parts, sanitizeIdentifier(param.Name))
	}

	return "<" + strings.Join(parts, ", ") + ">"
}

// emitJSDoc emits JSDoc-style documentation comments.
func (e *Emitter) emitJSDoc(buf *bytes.Buffer, indent string, doc schema.Documentation) {
	lines := e.plan.CommentLines(doc, true)
	if len(lines) == 0 && !doc.Deprecated() {
		return
	}

	if len(lines) == 1 && !doc.Deprecated() {
		// Single line
		buf.WriteString(indent)
		buf.WriteString("/** ")
		buf.WriteString(escapeComment(lines[0]))
		buf.WriteString(" */\n")
		return
	}

	// Multi-line
	buf.WriteString(indent)
	buf.WriteString("/**\n")
	for _, line := range lines {
		buf.WriteString(indent)
		buf.WriteString(strings.TrimRight(" * "+escapeComment(line), " "))
		buf.WriteString("\n")
	}

	if doc.Deprecated() {
		buf.WriteString(indent)
		buf.WriteString(" * @deprecated ")
		buf.WriteString(escapeComment(doc.Deprecation))
		buf.WriteString("\n")
	}

	buf.WriteString(indent)
	buf.WriteString(" */\n")
}

func escapeComment(s string) string {
	return strings.ReplaceAll(s, "*/", "*\\/")
}
