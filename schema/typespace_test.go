package schema

import (
	"errors"
	"testing"
)

func petStruct() *Struct {
	return &Struct{
		Name: "myapi::model::Pet",
		Fields: Named(
			Field{Name: "name", Type: String(), Required: true},
			Field{Name: "age", Type: Option(U8())},
		),
	}
}

func TestTypespace_SeededWithWellKnown(t *testing.T) {
	ts := NewTypespace()
	for _, name := range []TypeName{StringName, VecName, OptionName, UndefinableName, EmptyName, InfallibleName} {
		if !ts.Has(name) {
			t.Errorf("NewTypespace() missing well-known type %s", name)
		}
	}
	if errs := ts.Validate(); len(errs) != 0 {
		t.Errorf("well-known types should validate, got %v", errs)
	}
}

func TestTypespace_InsertIdempotent(t *testing.T) {
	ts := NewTypespace()
	before := ts.Len()

	if err := ts.Insert(petStruct()); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if err := ts.Insert(petStruct()); err != nil {
		t.Fatalf("re-Insert() of identical definition error = %v", err)
	}
	if ts.Len() != before+1 {
		t.Errorf("Len() = %d, want %d", ts.Len(), before+1)
	}
}

func TestTypespace_Defined(t *testing.T) {
	ts := NewTypespace()
	if n := ts.Defined(); n != 0 {
		t.Errorf("Defined() on a fresh typespace = %d, want 0", n)
	}
	if err := ts.Insert(petStruct()); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if n := ts.Defined(); n != 1 {
		t.Errorf("Defined() = %d, want 1", n)
	}
	var nilTS *Typespace
	if n := nilTS.Defined(); n != 0 {
		t.Errorf("nil Defined() = %d, want 0", n)
	}
}

func TestTypespace_InsertConflict(t *testing.T) {
	ts := NewTypespace()
	if err := ts.Insert(petStruct()); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	other := petStruct()
	other.Fields.List = other.Fields.List[:1]
	err := ts.Insert(other)
	if err == nil {
		t.Fatal("Insert() of conflicting definition should fail")
	}
	if !HasCode(err, CodeDuplicateType) {
		t.Errorf("error code = %v, want %s", err, CodeDuplicateType)
	}
	var se *Error
	if !errors.As(err, &se) || se.TypeName != "myapi::model::Pet" {
		t.Errorf("error should name the type, got %v", err)
	}
}

func TestTypespace_Resolve(t *testing.T) {
	ts := NewTypespace()
	_ = ts.Insert(petStruct())

	got, err := ts.Resolve(Ref("myapi::model::Pet"))
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got.TypeName() != "myapi::model::Pet" {
		t.Errorf("Resolve() = %s", got.TypeName())
	}

	_, err = ts.Resolve(Ref("myapi::model::Missing"))
	if !HasCode(err, CodeUnknownType) {
		t.Errorf("Resolve() of missing type error = %v, want unknown_type", err)
	}
}

func TestTypespace_InsertionOrder(t *testing.T) {
	ts := NewTypespace()
	names := []TypeName{"z::C", "a::A", "m::B"}
	for _, n := range names {
		_ = ts.Insert(&Struct{Name: n, Fields: Named()})
	}
	types := ts.Types()
	tail := types[len(types)-3:]
	for i, n := range names {
		if tail[i].TypeName() != n {
			t.Errorf("Types()[%d] = %s, want %s", i, tail[i].TypeName(), n)
		}
	}
}

func TestTypespace_Remove(t *testing.T) {
	ts := NewTypespace()
	_ = ts.Insert(petStruct())
	ts.Remove("myapi::model::Pet")
	ts.Remove(StringName)

	if ts.Has("myapi::model::Pet") {
		t.Error("Remove() should delete user types")
	}
	if !ts.Has(StringName) {
		t.Error("Remove() must keep well-known types")
	}
}

func TestTypeName_Segments(t *testing.T) {
	n := TypeName("myapi::model::Pet")
	if n.ShortName() != "Pet" {
		t.Errorf("ShortName() = %q", n.ShortName())
	}
	if got := n.Namespace(); len(got) != 2 || got[0] != "myapi" || got[1] != "model" {
		t.Errorf("Namespace() = %v", got)
	}
	if TypeName("Pet").ShortName() != "Pet" {
		t.Error("ShortName() of unqualified name should be the name")
	}
}

func TestTypeReference_Key(t *testing.T) {
	ref := Ref("api::Paginated", Map(String(), Vec(Ref("api::Pet"))))
	want := "api::Paginated<std::Map<std::String, std::Vec<api::Pet>>>"
	if ref.Key() != want {
		t.Errorf("Key() = %q, want %q", ref.Key(), want)
	}
	if !ref.Equal(Ref("api::Paginated", Map(String(), Vec(Ref("api::Pet"))))) {
		t.Error("Equal() should hold for identical references")
	}
	if ref.Equal(Ref("api::Paginated", String())) {
		t.Error("Equal() should fail for different arguments")
	}
}
