// Package provider extracts schema descriptors from Go types using runtime
// reflection, so a Go server can describe its own API without writing
// descriptors by hand.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"reflect"
	"strings"
	"time"

	"github.com/broady/shapegen/client"
	"github.com/broady/shapegen/schema"
)

var (
	clientPkg      = reflect.TypeFor[client.Unit]().PkgPath()
	timeType       = reflect.TypeFor[time.Time]()
	durationType   = reflect.TypeFor[time.Duration]()
	rawMessageType = reflect.TypeFor[json.RawMessage]()
	numberType     = reflect.TypeFor[json.Number]()
	textMarshaler  = reflect.TypeFor[interface{ MarshalText() ([]byte, error) }]()
	enumType       = reflect.TypeFor[Enum]()
)

// Enum is implemented by named string types whose values form a closed
// set. They become enums of unit variants.
type Enum interface {
	EnumValues() []string
}

// Warning is a non-fatal issue found during extraction.
type Warning struct {
	Code     string
	TypeName schema.TypeName
	Message  string
}

// Reflector converts Go types into descriptors. It remembers every type it
// has converted, so a Go type maps to the same descriptor however often it
// is reached. A Reflector is not safe for concurrent use.
type Reflector struct {
	// Namespace is the first segment of every generated type name. When
	// empty, the last element of the type's package path is used.
	Namespace string

	names    map[reflect.Type]schema.TypeName
	owners   map[schema.TypeName]reflect.Type
	types    map[schema.TypeName]schema.Type
	order    []schema.TypeName
	warnings []Warning
}

func (r *Reflector) init() {
	if r.names == nil {
		r.names = make(map[reflect.Type]schema.TypeName)
		r.owners = make(map[schema.TypeName]reflect.Type)
		r.types = make(map[schema.TypeName]schema.Type)
	}
}

// TypeOf returns the reference for t, converting every named type it
// reaches into a descriptor.
func (r *Reflector) TypeOf(ctx context.Context, t reflect.Type) (schema.TypeReference, error) {
	r.init()
	if err := ctx.Err(); err != nil {
		return schema.TypeReference{}, err
	}
	return r.ref(t, "")
}

// Types returns every descriptor converted so far, in conversion order.
func (r *Reflector) Types() []schema.Type {
	out := make([]schema.Type, 0, len(r.order))
	for _, n := range r.order {
		out = append(out, r.types[n])
	}
	return out
}

// Warnings returns the issues found so far.
func (r *Reflector) Warnings() []Warning {
	return append([]Warning(nil), r.warnings...)
}

func (r *Reflector) warn(code string, name schema.TypeName, format string, args ...any) {
	r.warnings = append(r.warnings, Warning{Code: code, TypeName: name, Message: fmt.Sprintf(format, args...)})
}

// Closure returns the descriptors refs reach, in conversion order.
func (r *Reflector) Closure(refs ...schema.TypeReference) []schema.Type {
	seen := make(map[schema.TypeName]bool)
	var walk func(ref schema.TypeReference)
	walk = func(ref schema.TypeReference) {
		for _, a := range ref.Arguments {
			walk(a)
		}
		t, ok := r.types[ref.Name]
		if !ok || seen[ref.Name] {
			return
		}
		seen[ref.Name] = true
		for _, dep := range schema.References(t) {
			walk(dep)
		}
	}
	for _, ref := range refs {
		walk(ref)
	}
	var out []schema.Type
	for _, n := range r.order {
		if seen[n] {
			out = append(out, r.types[n])
		}
	}
	return out
}

// typeName names a defined Go type. Generic instantiations get a
// synthetic name: Paginated[example.com/api.Pet] becomes Paginated_Pet.
func (r *Reflector) typeName(t reflect.Type) (schema.TypeName, error) {
	ns := r.Namespace
	if ns == "" {
		ns = path.Base(t.PkgPath())
	}
	return r.claim(t, schema.TypeName(ns+schema.NameSeparator+syntheticName(t.Name())))
}

// claim reserves name for t.
func (r *Reflector) claim(t reflect.Type, name schema.TypeName) (schema.TypeName, error) {
	if owner, ok := r.owners[name]; ok && owner != t {
		return "", fmt.Errorf("name collision: %s and %s both map to %s", owner, t, name)
	}
	return name, nil
}

// syntheticName drops package qualifiers and brackets from a reflected
// type name.
func syntheticName(name string) string {
	var b, tok strings.Builder
	flush := func() {
		b.WriteString(tok.String())
		tok.Reset()
	}
	for _, c := range name {
		switch c {
		case '.', '/':
			tok.Reset()
		case '[', ',':
			flush()
			b.WriteByte('_')
		case ']', ' ':
			flush()
		case '*':
			flush()
			b.WriteString("Ptr")
		default:
			tok.WriteRune(c)
		}
	}
	flush()
	return b.String()
}

func isDefined(t reflect.Type) bool {
	return t.Name() != "" && t.PkgPath() != ""
}

// ref converts t. synthetic is the full name given to an anonymous struct,
// derived from the field that holds it.
func (r *Reflector) ref(t reflect.Type, synthetic string) (schema.TypeReference, error) {
	switch t {
	case timeType:
		return schema.DateTime(), nil
	case durationType:
		return schema.I64(), nil
	case rawMessageType:
		return schema.Ref(schema.JSONName), nil
	case numberType:
		return schema.F64(), nil
	}
	if t.PkgPath() == clientPkg {
		return r.clientRef(t)
	}
	if isDefined(t) && t.Implements(enumType) && t.Kind() == reflect.String {
		return r.enum(t)
	}
	switch t.Kind() {
	case reflect.Struct, reflect.Pointer, reflect.Interface:
	default:
		if isDefined(t) {
			return r.named(t)
		}
	}
	return r.underlying(t, synthetic)
}

// underlying converts t ignoring its name.
func (r *Reflector) underlying(t reflect.Type, synthetic string) (schema.TypeReference, error) {
	switch t.Kind() {
	case reflect.Bool:
		return schema.Bool(), nil
	case reflect.Int, reflect.Int64:
		return schema.I64(), nil
	case reflect.Int8:
		return schema.Ref(schema.I8Name), nil
	case reflect.Int16:
		return schema.Ref(schema.I16Name), nil
	case reflect.Int32:
		return schema.I32(), nil
	case reflect.Uint, reflect.Uint64, reflect.Uintptr:
		return schema.U64(), nil
	case reflect.Uint8:
		return schema.U8(), nil
	case reflect.Uint16:
		return schema.Ref(schema.U16Name), nil
	case reflect.Uint32:
		return schema.U32(), nil
	case reflect.Float32:
		return schema.Ref(schema.F32Name), nil
	case reflect.Float64:
		return schema.F64(), nil
	case reflect.String:
		return schema.String(), nil

	case reflect.Slice, reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 && t.Kind() == reflect.Slice {
			return schema.Ref(schema.BytesName), nil
		}
		elem, err := r.ref(t.Elem(), "")
		if err != nil {
			return schema.TypeReference{}, err
		}
		return schema.Vec(elem), nil

	case reflect.Map:
		if err := validateMapKey(t.Key()); err != nil {
			return schema.TypeReference{}, err
		}
		k, err := r.ref(t.Key(), "")
		if err != nil {
			return schema.TypeReference{}, err
		}
		v, err := r.ref(t.Elem(), "")
		if err != nil {
			return schema.TypeReference{}, err
		}
		return schema.Map(k, v), nil

	case reflect.Pointer:
		elem, err := r.ref(t.Elem(), synthetic)
		if err != nil {
			return schema.TypeReference{}, err
		}
		if schema.IsOption(elem) {
			return elem, nil
		}
		return schema.Option(elem), nil

	case reflect.Struct:
		if !isDefined(t) && t.NumField() == 0 {
			return schema.Ref(schema.EmptyName), nil
		}
		if !isDefined(t) && synthetic == "" {
			return schema.TypeReference{}, fmt.Errorf("cannot name anonymous struct %s outside a field", t)
		}
		return r.structRef(t, synthetic)

	case reflect.Interface:
		if t.NumMethod() > 0 {
			r.warn("interface_type", "", "interface type %s mapped to std::Json", t)
		}
		return schema.Ref(schema.JSONName), nil
	}
	return schema.TypeReference{}, fmt.Errorf("unsupported type: %s (kind: %s)", t, t.Kind())
}

// clientRef maps the client runtime's own types back to well-known ones.
func (r *Reflector) clientRef(t reflect.Type) (schema.TypeReference, error) {
	name := t.Name()
	switch {
	case strings.HasPrefix(name, "Undefinable["):
		get, ok := t.MethodByName("Get")
		if !ok {
			break
		}
		inner, err := r.ref(get.Type.Out(0), "")
		if err != nil {
			return schema.TypeReference{}, err
		}
		return schema.Undefinable(inner), nil
	case strings.HasPrefix(name, "Tuple2["), strings.HasPrefix(name, "Tuple3["):
		var args []schema.TypeReference
		for i := range t.NumField() {
			a, err := r.ref(t.Field(i).Type, "")
			if err != nil {
				return schema.TypeReference{}, err
			}
			args = append(args, a)
		}
		if len(args) == 2 {
			return schema.Ref(schema.Tuple2Name, args...), nil
		}
		return schema.Ref(schema.Tuple3Name, args...), nil
	case name == "Unit":
		if n, ok := r.names[t]; ok {
			return schema.Ref(n), nil
		}
		n, err := r.typeName(t)
		if err != nil {
			return schema.TypeReference{}, err
		}
		r.add(t, &schema.Struct{Name: n, Fields: schema.NoFields()})
		return schema.Ref(n), nil
	case name == "Infallible":
		return schema.Ref(schema.InfallibleName), nil
	}
	return schema.TypeReference{}, fmt.Errorf("unsupported client runtime type %s", t)
}

// named wraps the underlying type of a defined non-struct type in a
// transparent struct, so the type keeps its name in generated code.
func (r *Reflector) named(t reflect.Type) (schema.TypeReference, error) {
	if n, ok := r.names[t]; ok {
		return schema.Ref(n), nil
	}
	n, err := r.typeName(t)
	if err != nil {
		return schema.TypeReference{}, err
	}
	s := &schema.Struct{Name: n, Transparent: true}
	r.add(t, s)
	u, err := r.underlying(t, "")
	if err != nil {
		return schema.TypeReference{}, err
	}
	s.Fields = schema.Unnamed(schema.Field{Type: u, Required: true})
	return schema.Ref(n), nil
}

func (r *Reflector) add(t reflect.Type, d schema.Type) {
	n := d.TypeName()
	r.names[t] = n
	r.owners[n] = t
	if _, ok := r.types[n]; !ok {
		r.order = append(r.order, n)
	}
	r.types[n] = d
}

func (r *Reflector) enum(t reflect.Type) (schema.TypeReference, error) {
	if n, ok := r.names[t]; ok {
		return schema.Ref(n), nil
	}
	n, err := r.typeName(t)
	if err != nil {
		return schema.TypeReference{}, err
	}
	values := reflect.Zero(t).Interface().(Enum).EnumValues()
	e := &schema.Enum{Name: n, Representation: schema.External{}}
	for _, v := range values {
		e.Variants = append(e.Variants, schema.Variant{Name: v, Fields: schema.NoFields()})
	}
	r.add(t, e)
	return schema.Ref(n), nil
}

// structRef converts a struct. The name is recorded before the fields are
// converted, so recursive types refer to themselves by name.
func (r *Reflector) structRef(t reflect.Type, synthetic string) (schema.TypeReference, error) {
	if n, ok := r.names[t]; ok {
		return schema.Ref(n), nil
	}
	var (
		n   schema.TypeName
		err error
	)
	if isDefined(t) {
		n, err = r.typeName(t)
	} else {
		n, err = r.claim(t, schema.TypeName(synthetic))
	}
	if err != nil {
		return schema.TypeReference{}, err
	}
	s := &schema.Struct{Name: n}
	r.add(t, s)

	var fields []schema.Field
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() && !f.Anonymous {
			continue
		}
		field, ok, err := r.field(f, n)
		if err != nil {
			return schema.TypeReference{}, fmt.Errorf("field %s.%s: %w", t, f.Name, err)
		}
		if ok {
			fields = append(fields, field)
		}
	}
	s.Fields = schema.Named(fields...)
	return schema.Ref(n), nil
}

// field converts one struct field. Embedded structs without a json name
// are flattened, matching encoding/json.
func (r *Reflector) field(f reflect.StructField, owner schema.TypeName) (schema.Field, bool, error) {
	tag := parseJSONTag(f.Tag.Get("json"), f.Name)
	if tag.skip {
		return schema.Field{}, false, nil
	}

	embedded := f.Anonymous && f.Tag.Get("json") == ""
	if f.Anonymous && !f.IsExported() && !embedded {
		return schema.Field{}, false, nil
	}
	ft := f.Type
	if embedded {
		for ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}
		if ft.Kind() != reflect.Struct {
			if !f.IsExported() {
				return schema.Field{}, false, nil
			}
			embedded = false
			ft = f.Type
		}
	}

	ref, err := r.ref(ft, string(owner)+"_"+f.Name)
	if err != nil {
		return schema.Field{}, false, err
	}
	if tag.stringEncoded {
		r.warn("string_encoded", owner, "field %s uses the ,string option and is typed as a string", f.Name)
		ref = schema.String()
	}

	field := schema.Field{
		Name:        f.Name,
		Type:        ref,
		Required:    !tag.optional,
		Description: f.Tag.Get("doc"),
		Deprecation: f.Tag.Get("deprecated"),
		Flattened:   embedded,
	}
	if tag.name != f.Name {
		field.SerdeName = tag.name
	}
	if embedded {
		field.Required = f.Type.Kind() != reflect.Pointer
	}
	return field, true, nil
}

func validateMapKey(t reflect.Type) error {
	switch t.Kind() {
	case reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return nil
	}
	if t.Implements(textMarshaler) {
		return nil
	}
	return fmt.Errorf("unsupported map key type: %s", t)
}

type jsonTag struct {
	name          string
	optional      bool
	skip          bool
	stringEncoded bool
}

// parseJSONTag interprets a json struct tag the way encoding/json does.
func parseJSONTag(tag, fieldName string) jsonTag {
	if tag == "-" {
		return jsonTag{skip: true}
	}
	parts := strings.Split(tag, ",")
	out := jsonTag{name: parts[0]}
	if out.name == "" {
		out.name = fieldName
	}
	for _, opt := range parts[1:] {
		switch opt {
		case "omitempty", "omitzero":
			out.optional = true
		case "string":
			out.stringEncoded = true
		}
	}
	return out
}
