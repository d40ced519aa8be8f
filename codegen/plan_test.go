package codegen

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/broady/shapegen/schema"
)

func pet(extra ...schema.Field) *schema.Struct {
	fields := append([]schema.Field{
		{Name: "id", Type: schema.U64(), Required: true},
		{Name: "name", Type: schema.String(), Required: true},
	}, extra...)
	return &schema.Struct{Name: "myapi::model::Pet", Fields: schema.Named(fields...)}
}

func paginated() *schema.Struct {
	return &schema.Struct{
		Name:   "myapi::Paginated",
		Params: schema.Params("T"),
		Fields: schema.Named(
			schema.Field{Name: "items", Type: schema.Vec(schema.Ref("T")), Required: true},
			schema.Field{Name: "cursor", Type: schema.Option(schema.String())},
		),
	}
}

func user() *schema.Struct {
	return &schema.Struct{Name: "myapi::User", Fields: schema.Named(schema.Field{Name: "email", Type: schema.String(), Required: true})}
}

func newSchema(fns []schema.Function, in, out []schema.Type) *schema.Schema {
	s := &schema.Schema{Name: "test", Functions: fns, InputTypes: schema.NewTypespace(), OutputTypes: schema.NewTypespace()}
	for _, t := range in {
		if err := s.InputTypes.Insert(t); err != nil {
			panic(err)
		}
	}
	for _, t := range out {
		if err := s.OutputTypes.Insert(t); err != nil {
			panic(err)
		}
	}
	return s
}

func declNames(p *Plan) []string {
	var out []string
	for _, d := range p.Decls {
		out = append(out, d.Name)
	}
	return out
}

func paginatedSchema() *schema.Schema {
	return newSchema(
		[]schema.Function{{Name: "pets.list", OutputType: schema.RefPtr("myapi::Paginated", schema.Ref("myapi::model::Pet"))}},
		nil,
		[]schema.Type{paginated(), pet(), user()},
	)
}

func TestPlan_PaginatedPetOnly(t *testing.T) {
	s := paginatedSchema()

	mono, err := NewPlan(s, "mono", Capabilities{}, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"PaginatedPet", "Pet"}, declNames(mono))
	assert.Equal(t, "myapi::Paginated<myapi::model::Pet>", mono.Decls[0].Key)
	assert.Empty(t, mono.Decls[0].Type.Parameters(), "monomorphized declarations carry no parameters")

	gen, err := NewPlan(s, "gen", Capabilities{Generics: true}, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Paginated", "Pet"}, declNames(gen))
	assert.Len(t, gen.Decls[0].Type.Parameters(), 1)

	for _, p := range []*Plan{mono, gen} {
		d, err := p.Decl(schema.Output, schema.Ref("myapi::model::Pet"))
		require.NoError(t, err)
		assert.Equal(t, "Pet", d.Name)
		assert.True(t, d.Serves(schema.Output))
		assert.False(t, d.Serves(schema.Input))

		_, err = p.Decl(schema.Output, schema.Ref("myapi::User"))
		assert.ErrorIs(t, err, &GenerationError{Kind: UnreachableInstantiationBug})

		d, err = p.Decl(schema.Output, schema.Vec(schema.String()))
		require.NoError(t, err)
		assert.Nil(t, d, "well-known types render inline")
	}
}

func TestPlan_OneDeclarationPerInstantiation(t *testing.T) {
	s := newSchema(
		[]schema.Function{
			{Name: "pets.list", OutputType: schema.RefPtr("myapi::Paginated", schema.Ref("myapi::model::Pet"))},
			{Name: "users.list", OutputType: schema.RefPtr("myapi::Paginated", schema.Ref("myapi::User"))},
			{Name: "pets.page", OutputType: schema.RefPtr("myapi::Paginated", schema.Ref("myapi::model::Pet"))},
		},
		nil,
		[]schema.Type{paginated(), pet(), user()},
	)
	mono, err := NewPlan(s, "mono", Capabilities{}, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"PaginatedPet", "PaginatedUser", "Pet", "User"}, declNames(mono))

	gen, err := NewPlan(s, "gen", Capabilities{Generics: true}, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Paginated", "Pet", "User"}, declNames(gen))
}

func TestPlan_Sides(t *testing.T) {
	created := schema.Field{Name: "created_at", Type: schema.DateTime(), Required: true}
	inPet := pet()
	outPet := pet(created)
	tag := &schema.Struct{Name: "myapi::Tag", Fields: schema.Named(schema.Field{Name: "label", Type: schema.String(), Required: true})}
	withTag := func(p *schema.Struct) *schema.Struct {
		p.Fields.List = append(p.Fields.List, schema.Field{Name: "tag", Type: schema.Ref("myapi::Tag"), Required: true})
		return p
	}
	s := newSchema(
		[]schema.Function{
			{Name: "pets.create", InputType: schema.RefPtr("myapi::model::Pet"), OutputType: schema.RefPtr("myapi::model::Pet")},
			{Name: "pets.list", OutputType: schema.RefPtr("myapi::Paginated", schema.Ref("myapi::model::Pet"))},
			{Name: "pets.page", InputType: schema.RefPtr("myapi::Paginated", schema.Ref("myapi::model::Pet"))},
		},
		[]schema.Type{withTag(inPet), tag, paginated()},
		[]schema.Type{withTag(outPet), tag, paginated()},
	)

	gen, err := NewPlan(s, "gen", Capabilities{Generics: true}, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"PetInput", "Paginated", "Tag", "PetOutput"}, declNames(gen))
	assert.True(t, gen.Decls[1].Shared, "generic Paginated does not depend on Pet")
	assert.True(t, gen.Decls[2].Shared)

	mono, err := NewPlan(s, "mono", Capabilities{}, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"PetInput", "PaginatedPetInput", "Tag", "PetOutput", "PaginatedPetOutput"}, declNames(mono))

	d, err := mono.Decl(schema.Output, schema.Ref("myapi::Paginated", schema.Ref("myapi::model::Pet")))
	require.NoError(t, err)
	assert.Equal(t, "PaginatedPetOutput", d.Name)
	d, err = mono.Decl(schema.Output, schema.Ref("myapi::Tag"))
	require.NoError(t, err)
	assert.Equal(t, "Tag", d.Name)
}

func TestPlan_Collisions(t *testing.T) {
	other := pet()
	other.Name = "myapi::legacy::Pet"
	s := newSchema(
		[]schema.Function{
			{Name: "pets.get", OutputType: schema.RefPtr("myapi::model::Pet")},
			{Name: "pets.legacy", OutputType: schema.RefPtr("myapi::legacy::Pet")},
		},
		nil,
		[]schema.Type{pet(), other},
	)

	_, err := NewPlan(s, "ts", Capabilities{}, Options{})
	require.Error(t, err)
	var ge *GenerationError
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, IdentifierCollision, ge.Kind)
	assert.Equal(t, "ts", ge.Target)
	assert.Equal(t, schema.TypeName("myapi::legacy::Pet"), ge.TypeName)

	p, err := NewPlan(s, "ts", Capabilities{}, Options{NameStyle: NameQualified, StripPrefix: "myapi"})
	require.NoError(t, err)
	assert.Equal(t, []string{"ModelPet", "LegacyPet"}, declNames(p))
}

func TestPlan_RuntimeNameCollision(t *testing.T) {
	result := &schema.Struct{Name: "myapi::Result", Fields: schema.Named()}
	s := newSchema([]schema.Function{{Name: "run", OutputType: schema.RefPtr("myapi::Result")}}, nil, []schema.Type{result})
	_, err := NewPlan(s, "ts", Capabilities{RuntimeNames: []string{"Result"}}, Options{})
	assert.ErrorIs(t, err, &GenerationError{Kind: IdentifierCollision})
}

func TestPlan_RecursiveGenericExpansion(t *testing.T) {
	nested := &schema.Struct{
		Name:   "myapi::Nested",
		Params: schema.Params("T"),
		Fields: schema.Named(
			schema.Field{Name: "value", Type: schema.Ref("T"), Required: true},
			schema.Field{Name: "inner", Type: schema.Option(schema.Ref("myapi::Nested", schema.Vec(schema.Ref("T"))))},
		),
	}
	s := newSchema([]schema.Function{{Name: "get", OutputType: schema.RefPtr("myapi::Nested", schema.String())}}, nil, []schema.Type{nested})

	_, err := NewPlan(s, "mono", Capabilities{}, Options{MaxInstances: 16})
	require.Error(t, err)
	var ge *GenerationError
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, UnsupportedConstruct, ge.Kind)
	assert.Equal(t, schema.TypeName("myapi::Nested"), ge.TypeName)

	p, err := NewPlan(s, "gen", Capabilities{Generics: true}, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Nested"}, declNames(p))
}

func TestPlan_RecursiveTypes(t *testing.T) {
	tree := &schema.Struct{
		Name: "myapi::Tree",
		Fields: schema.Named(
			schema.Field{Name: "children", Type: schema.Vec(schema.Ref("myapi::Tree")), Required: true},
			schema.Field{Name: "parent", Type: schema.Option(schema.Box(schema.Ref("myapi::Tree")))},
		),
	}
	s := newSchema([]schema.Function{{Name: "tree", InputType: schema.RefPtr("myapi::Tree"), OutputType: schema.RefPtr("myapi::Tree")}},
		[]schema.Type{tree}, []schema.Type{tree})
	p, err := NewPlan(s, "mono", Capabilities{}, Options{})
	require.NoError(t, err)
	require.Equal(t, []string{"Tree"}, declNames(p))
	assert.True(t, p.Decls[0].Shared)
}

func TestPlan_PrimitiveFallbackIsReached(t *testing.T) {
	money := &schema.Primitive{Name: "myapi::Money", Fallback: schema.RefPtr("myapi::Amount")}
	amount := &schema.Struct{Name: "myapi::Amount", Fields: schema.Named(schema.Field{Name: "cents", Type: schema.I64(), Required: true})}
	s := newSchema([]schema.Function{{Name: "balance", OutputType: schema.RefPtr("myapi::Money")}}, nil, []schema.Type{money, amount})
	p, err := NewPlan(s, "mono", Capabilities{}, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Amount"}, declNames(p))
}

func TestPlan_RequiresJSON(t *testing.T) {
	s := newSchema([]schema.Function{{Name: "blob", Serialization: []schema.Format{schema.FormatMsgpack}}}, nil, nil)
	_, err := NewPlan(s, "go", Capabilities{RequiresJSON: true}, Options{})
	require.Error(t, err)
	var ge *GenerationError
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, UnsupportedConstruct, ge.Kind)
	assert.Equal(t, "blob", ge.Function)

	_, err = NewPlan(s, "openapi", Capabilities{}, Options{})
	assert.NoError(t, err)
}

func TestPlan_Deterministic(t *testing.T) {
	s := paginatedSchema()
	a, err := NewPlan(s, "mono", Capabilities{}, Options{})
	require.NoError(t, err)
	for range 10 {
		b, err := NewPlan(s, "mono", Capabilities{}, Options{})
		require.NoError(t, err)
		assert.Equal(t, declNames(a), declNames(b))
	}
}

func TestCommentLines(t *testing.T) {
	p := &Plan{}
	doc := schema.Documentation{Description: "A pet.\nLives in a house.  ", Deprecation: "use Animal"}
	assert.Equal(t, []string{"A pet.", "Lives in a house.", "", "Deprecated: use Animal"}, p.CommentLines(doc, false))
	assert.Equal(t, []string{"A pet.", "Lives in a house."}, p.CommentLines(doc, true))

	p.Options.NoComments = true
	assert.Equal(t, []string{"Deprecated: use Animal"}, p.CommentLines(doc, false))
	assert.Empty(t, p.CommentLines(schema.Documentation{Description: "x"}, false))
}

func TestFieldPresence(t *testing.T) {
	tests := map[string]struct {
		field schema.Field
		want  Presence
	}{
		"required": {
			schema.Field{Type: schema.String(), Required: true},
			Presence{Value: schema.String()},
		},
		"may be absent": {
			schema.Field{Type: schema.String()},
			Presence{Optional: true, Value: schema.String()},
		},
		"always present, nullable": {
			schema.Field{Type: schema.Option(schema.String()), Required: true},
			Presence{Nullable: true, Value: schema.String()},
		},
		"absent or null": {
			schema.Field{Type: schema.Option(schema.String())},
			Presence{Optional: true, Nullable: true, Value: schema.String()},
		},
		"tri-state ignores required": {
			schema.Field{Type: schema.Undefinable(schema.String()), Required: true},
			Presence{Optional: true, Nullable: true, TriState: true, Value: schema.String()},
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, FieldPresence(tt.field))
		})
	}
}

type stubTarget struct{ emitted *Plan }

func (s *stubTarget) Name() string               { return "stub" }
func (s *stubTarget) Capabilities() Capabilities { return Capabilities{} }
func (s *stubTarget) Emit(_ context.Context, p *Plan) (*Output, error) {
	s.emitted = p
	p.Warn("test", "", "from emit")
	return &Output{Files: []File{{Path: "out.txt", Content: []byte("ok")}}}, nil
}

func TestGenerate(t *testing.T) {
	st := &stubTarget{}
	out, err := Generate(context.Background(), paginatedSchema(), st, Options{})
	require.NoError(t, err)
	require.NotNil(t, st.emitted)
	assert.Equal(t, "out.txt", out.Files[0].Path)
	require.Len(t, out.Warnings, 1)
	assert.Equal(t, "from emit", out.Warnings[0].Message)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Generate(ctx, paginatedSchema(), st, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}
