package provider

import (
	"context"
	"encoding/json"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/broady/shapegen/builder"
	"github.com/broady/shapegen/client"
	"github.com/broady/shapegen/schema"
)

type SimpleStruct struct {
	Name     string `json:"name" doc:"Display name."`
	Age      int    `json:"age"`
	Email    string `json:"email,omitempty" deprecated:"use contacts"`
	Skip     string `json:"-"`
	Raw      string
	internal string
}

type AllPrimitives struct {
	Bool    bool    `json:"bool"`
	Int8    int8    `json:"int8"`
	Int16   int16   `json:"int16"`
	Int32   int32   `json:"int32"`
	Uint16  uint16  `json:"uint16"`
	Uintptr uintptr `json:"uintptr"`
	Float32 float32 `json:"float32"`
}

type Containers struct {
	Ptr       *string                    `json:"ptr"`
	PtrOmit   *int                       `json:"ptr_omit,omitempty"`
	Slice     []string                   `json:"slice"`
	Array     [3]int                     `json:"array"`
	Bytes     []byte                     `json:"bytes"`
	Map       map[string]int             `json:"map"`
	Time      time.Time                  `json:"time"`
	Duration  time.Duration              `json:"duration"`
	Number    json.Number                `json:"number"`
	Raw       json.RawMessage            `json:"raw"`
	Any       any                        `json:"any"`
	Empty     struct{}                   `json:"empty"`
	Note      client.Undefinable[string] `json:"note,omitzero"`
	Pair      client.Tuple2[string, int] `json:"pair"`
	Quoted    int                        `json:"quoted,string"`
	Anonymous struct {
		Inner bool `json:"inner"`
	} `json:"anonymous"`
}

type Base struct {
	ID string `json:"id"`
}

type Embedding struct {
	Base
	*Extra
	Named Base   `json:"named"`
	Own   string `json:"own"`
}

type Extra struct {
	Flag bool `json:"flag"`
}

type Tree struct {
	Value    int     `json:"value"`
	Children []*Tree `json:"children"`
}

type Status string

func (Status) EnumValues() []string { return []string{"active", "archived"} }

type Label string

type Page[T any] struct {
	Items []T `json:"items"`
}

func fieldsOf(t *testing.T, r *Reflector, name schema.TypeName) map[string]schema.Field {
	t.Helper()
	for _, typ := range r.Types() {
		if typ.TypeName() == name {
			s, ok := typ.(*schema.Struct)
			if !ok {
				t.Fatalf("%s is a %s, want struct", name, typ.Kind())
			}
			out := make(map[string]schema.Field)
			for _, f := range s.Fields.List {
				out[f.Name] = f
			}
			return out
		}
	}
	t.Fatalf("type %s not extracted", name)
	return nil
}

func typeOf[T any](t *testing.T, r *Reflector) schema.TypeReference {
	t.Helper()
	ref, err := r.TypeOf(context.Background(), reflect.TypeFor[T]())
	if err != nil {
		t.Fatalf("TypeOf: %v", err)
	}
	return ref
}

func TestTypeOf_Struct(t *testing.T) {
	r := &Reflector{}
	ref := typeOf[SimpleStruct](t, r)
	if ref.Name != "provider::SimpleStruct" {
		t.Fatalf("ref = %s", ref.Key())
	}

	fields := fieldsOf(t, r, "provider::SimpleStruct")
	if len(fields) != 4 {
		t.Errorf("got %d fields, want 4 (json:\"-\" and unexported skipped)", len(fields))
	}
	want := map[string]schema.Field{
		"Name":  {Name: "Name", SerdeName: "name", Type: schema.String(), Required: true, Description: "Display name."},
		"Age":   {Name: "Age", SerdeName: "age", Type: schema.I64(), Required: true},
		"Email": {Name: "Email", SerdeName: "email", Type: schema.String(), Deprecation: "use contacts"},
		"Raw":   {Name: "Raw", Type: schema.String(), Required: true},
	}
	if diff := cmp.Diff(want, fields); diff != "" {
		t.Errorf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestTypeOf_Primitives(t *testing.T) {
	r := &Reflector{}
	typeOf[AllPrimitives](t, r)
	fields := fieldsOf(t, r, "provider::AllPrimitives")
	want := map[string]schema.TypeName{
		"Bool":    schema.BoolName,
		"Int8":    schema.I8Name,
		"Int16":   schema.I16Name,
		"Int32":   schema.I32Name,
		"Uint16":  schema.U16Name,
		"Uintptr": schema.U64Name,
		"Float32": schema.F32Name,
	}
	for name, typ := range want {
		if got := fields[name].Type.Name; got != typ {
			t.Errorf("%s: got %s, want %s", name, got, typ)
		}
	}
}

func TestTypeOf_Containers(t *testing.T) {
	r := &Reflector{}
	typeOf[Containers](t, r)
	fields := fieldsOf(t, r, "provider::Containers")

	tests := []struct {
		field    string
		want     schema.TypeReference
		required bool
	}{
		{"Ptr", schema.Option(schema.String()), true},
		{"PtrOmit", schema.Option(schema.I64()), false},
		{"Slice", schema.Vec(schema.String()), true},
		{"Array", schema.Vec(schema.I64()), true},
		{"Bytes", schema.Ref(schema.BytesName), true},
		{"Map", schema.Map(schema.String(), schema.I64()), true},
		{"Time", schema.DateTime(), true},
		{"Duration", schema.I64(), true},
		{"Number", schema.F64(), true},
		{"Raw", schema.Ref(schema.JSONName), true},
		{"Any", schema.Ref(schema.JSONName), true},
		{"Empty", schema.Ref(schema.EmptyName), true},
		{"Note", schema.Undefinable(schema.String()), false},
		{"Pair", schema.Ref(schema.Tuple2Name, schema.String(), schema.I64()), true},
		{"Quoted", schema.String(), true},
		{"Anonymous", schema.Ref("provider::Containers_Anonymous"), true},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			f := fields[tt.field]
			if !f.Type.Equal(tt.want) {
				t.Errorf("type = %s, want %s", f.Type.Key(), tt.want.Key())
			}
			if f.Required != tt.required {
				t.Errorf("required = %v, want %v", f.Required, tt.required)
			}
		})
	}

	if inner := fieldsOf(t, r, "provider::Containers_Anonymous"); !inner["Inner"].Type.Equal(schema.Bool()) {
		t.Errorf("anonymous struct field = %s", inner["Inner"].Type.Key())
	}
	var found bool
	for _, w := range r.Warnings() {
		found = found || w.Code == "string_encoded"
	}
	if !found {
		t.Error("expected a string_encoded warning")
	}
}

func TestTypeOf_Embedding(t *testing.T) {
	r := &Reflector{}
	typeOf[Embedding](t, r)
	fields := fieldsOf(t, r, "provider::Embedding")

	if f := fields["Base"]; !f.Flattened || !f.Required || f.Type.Name != "provider::Base" {
		t.Errorf("Base = %+v, want a required flattened reference", f)
	}
	if f := fields["Extra"]; !f.Flattened || f.Required || f.Type.Name != "provider::Extra" {
		t.Errorf("Extra = %+v, want an optional flattened reference", f)
	}
	if f := fields["Named"]; f.Flattened || f.SerdeName != "named" {
		t.Errorf("Named = %+v, want a plain field", f)
	}
}

func TestTypeOf_Recursive(t *testing.T) {
	r := &Reflector{}
	typeOf[Tree](t, r)
	fields := fieldsOf(t, r, "provider::Tree")
	want := schema.Vec(schema.Option(schema.Ref("provider::Tree")))
	if got := fields["Children"].Type; !got.Equal(want) {
		t.Errorf("Children = %s, want %s", got.Key(), want.Key())
	}
	if n := len(r.Types()); n != 1 {
		t.Errorf("got %d types, want 1", n)
	}
}

func TestTypeOf_NamedTypes(t *testing.T) {
	r := &Reflector{Namespace: "api"}
	if ref := typeOf[Status](t, r); ref.Name != "api::Status" {
		t.Fatalf("Status = %s", ref.Key())
	}
	if ref := typeOf[Label](t, r); ref.Name != "api::Label" {
		t.Fatalf("Label = %s", ref.Key())
	}
	ref := typeOf[Page[SimpleStruct]](t, r)
	if ref.Name != "api::Page_SimpleStruct" {
		t.Fatalf("Page[SimpleStruct] = %s", ref.Key())
	}

	types := make(map[schema.TypeName]schema.Type)
	for _, typ := range r.Types() {
		types[typ.TypeName()] = typ
	}
	status, ok := types["api::Status"].(*schema.Enum)
	if !ok || len(status.Variants) != 2 || status.Variants[1].Name != "archived" {
		t.Errorf("Status = %#v, want a two-variant enum", types["api::Status"])
	}
	label, ok := types["api::Label"].(*schema.Struct)
	if !ok || !label.Transparent || !label.Fields.List[0].Type.Equal(schema.String()) {
		t.Errorf("Label = %#v, want a transparent string", types["api::Label"])
	}
}

func TestTypeOf_Unsupported(t *testing.T) {
	tests := []struct {
		name string
		typ  reflect.Type
		want string
	}{
		{"chan", reflect.TypeFor[chan int](), "unsupported type"},
		{"func", reflect.TypeFor[func()](), "unsupported type"},
		{"complex", reflect.TypeFor[complex128](), "unsupported type"},
		{"bool map key", reflect.TypeFor[map[bool]string](), "unsupported map key"},
		{"bare anonymous struct", reflect.TypeFor[struct{ A int }](), "anonymous struct"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := (&Reflector{}).TypeOf(context.Background(), tt.typ)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestSyntheticName(t *testing.T) {
	tests := map[string]string{
		"Pet":                               "Pet",
		"Page[example.com/api.Pet]":         "Page_Pet",
		"Pair[string,int]":                  "Pair_string_int",
		"Page[*example.com/api.Pet]":        "Page_PtrPet",
		"Outer[example.com/x.Inner[uint8]]": "Outer_Inner_uint8",
	}
	for in, want := range tests {
		if got := syntheticName(in); got != want {
			t.Errorf("syntheticName(%q) = %q, want %q", in, got, want)
		}
	}
}

type GetPet struct {
	ID uint64 `json:"id"`
}

type Auth struct {
	Token string `json:"authorization"`
}

type Problem struct {
	Message string `json:"message"`
}

type Pet struct {
	ID     uint64 `json:"id"`
	Status Status `json:"status"`
}

func TestRegister(t *testing.T) {
	r := &Reflector{Namespace: "api"}
	b := builder.New("petstore")
	err := r.Register(context.Background(), b,
		Route{
			Name:     "pets.get",
			Readonly: true,
			Input:    reflect.TypeFor[GetPet](),
			Headers:  reflect.TypeFor[Auth](),
			Output:   reflect.TypeFor[Pet](),
			Error:    reflect.TypeFor[Problem](),
		},
		Route{
			Name:   "pets.list",
			Output: reflect.TypeFor[Page[Pet]](),
		},
	)
	if err != nil {
		t.Fatal(err)
	}
	s, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	get := s.Function("pets.get")
	if get == nil || get.InputType.Name != "api::GetPet" || get.InputHeaders.Name != "api::Auth" || !get.Readonly {
		t.Fatalf("pets.get = %+v", get)
	}
	if list := s.Function("pets.list"); list.InputType != nil || list.ErrorType != nil {
		t.Errorf("pets.list should keep the default input and error, got %+v", list)
	}
	for _, name := range []schema.TypeName{"api::GetPet", "api::Auth"} {
		if !s.InputTypes.Has(name) {
			t.Errorf("input typespace lacks %s", name)
		}
	}
	for _, name := range []schema.TypeName{"api::Pet", "api::Status", "api::Problem", "api::Page_Pet"} {
		if !s.OutputTypes.Has(name) {
			t.Errorf("output typespace lacks %s", name)
		}
		if s.InputTypes.Has(name) {
			t.Errorf("input typespace has output-only %s", name)
		}
	}
}

func TestRegister_Error(t *testing.T) {
	err := (&Reflector{}).Register(context.Background(), builder.New("x"), Route{
		Name:  "bad",
		Input: reflect.TypeFor[chan int](),
	})
	if err == nil || !strings.Contains(err.Error(), "route bad") {
		t.Errorf("error = %v, want it to name the route", err)
	}
}
