package openapi

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/broady/shapegen/codegen"
	"github.com/broady/shapegen/schema"
)

func newSchema(t *testing.T, fns []schema.Function, in, out []schema.Type) *schema.Schema {
	t.Helper()
	s := &schema.Schema{Name: "petstore", Functions: fns, InputTypes: schema.NewTypespace(), OutputTypes: schema.NewTypespace()}
	for _, typ := range in {
		require.NoError(t, s.InputTypes.Insert(typ))
	}
	for _, typ := range out {
		require.NoError(t, s.OutputTypes.Insert(typ))
	}
	return s
}

func document(t *testing.T, s *schema.Schema, opts Options) *openapi3.T {
	t.Helper()
	target := New(opts)
	p, err := codegen.NewPlan(s, target.Name(), target.Capabilities(), codegen.Options{})
	require.NoError(t, err)
	doc, err := target.Document(context.Background(), p)
	require.NoError(t, err)
	return doc
}

func pet() *schema.Struct {
	return &schema.Struct{Name: "api::Pet", Description: "A pet.", Fields: schema.Named(
		schema.Field{Name: "id", Type: schema.U64(), Required: true},
		schema.Field{Name: "name", Type: schema.String(), Required: true},
		schema.Field{Name: "tag", Type: schema.Option(schema.String())},
	)}
}

func paginated() *schema.Struct {
	return &schema.Struct{
		Name:   "api::Paginated",
		Params: schema.Params("T"),
		Fields: schema.Named(
			schema.Field{Name: "items", Type: schema.Vec(schema.Ref("T")), Required: true},
			schema.Field{Name: "cursor", Type: schema.Option(schema.String())},
		),
	}
}

func petstore(t *testing.T) *schema.Schema {
	return newSchema(t,
		[]schema.Function{
			{
				Name:       "pets.list",
				Tags:       []string{"pets"},
				Readonly:   true,
				OutputType: schema.RefPtr("api::Paginated", schema.Ref("api::Pet")),
			},
			{
				Name:          "pets.create",
				Description:   "Creates a pet.",
				Deprecation:   "use pets.add",
				Tags:          []string{"pets", "admin"},
				Serialization: []schema.Format{schema.FormatJSON, schema.FormatMsgpack},
				InputType:     schema.RefPtr("api::Pet"),
				InputHeaders:  schema.RefPtr("api::Auth"),
				OutputType:    schema.RefPtr("api::Pet"),
				ErrorType:     schema.RefPtr("api::Problem"),
			},
		},
		[]schema.Type{
			pet(),
			&schema.Struct{Name: "api::Auth", Fields: schema.Named(
				schema.Field{Name: "authorization", Type: schema.String(), Required: true, Description: "Bearer token."},
				schema.Field{Name: "x-trace", Type: schema.String()},
			)},
		},
		[]schema.Type{
			pet(),
			paginated(),
			&schema.Struct{Name: "api::Problem", Fields: schema.Named(schema.Field{Name: "message", Type: schema.String(), Required: true})},
		},
	)
}

func TestDocument_Components(t *testing.T) {
	doc := document(t, petstore(t), Options{})

	names := make([]string, 0, len(doc.Components.Schemas))
	for name := range doc.Components.Schemas {
		names = append(names, name)
	}
	assert.ElementsMatch(t, []string{"Pet", "Auth", "PaginatedPet", "Problem"}, names)

	page := doc.Components.Schemas["PaginatedPet"].Value
	require.NotNil(t, page)
	assert.Equal(t, []string{"items"}, page.Required)
	items := page.Properties["items"].Value
	assert.True(t, items.Type.Is(openapi3.TypeArray))
	assert.Equal(t, "#/components/schemas/Pet", items.Items.Ref)
	assert.True(t, page.Properties["cursor"].Value.Nullable)

	p := doc.Components.Schemas["Pet"].Value
	assert.Equal(t, "A pet.", p.Description)
	assert.Equal(t, []string{"id", "name"}, p.Required)
	id := p.Properties["id"].Value
	assert.Equal(t, "int64", id.Format)
	require.NotNil(t, id.Min)
	assert.Zero(t, *id.Min)
}

func TestDocument_Operations(t *testing.T) {
	doc := document(t, petstore(t), Options{Title: "Pets", Version: "1.2.0"})

	assert.Equal(t, Version, doc.OpenAPI)
	assert.Equal(t, "Pets", doc.Info.Title)
	assert.Equal(t, "1.2.0", doc.Info.Version)
	require.Len(t, doc.Tags, 2)
	assert.Equal(t, "admin", doc.Tags[0].Name)
	assert.Equal(t, "pets", doc.Tags[1].Name)

	list := doc.Paths.Value("/pets.list").Post
	require.NotNil(t, list)
	assert.Equal(t, "pets.list", list.OperationID)
	assert.Equal(t, true, list.Extensions[readonlyExtension])
	assert.False(t, list.RequestBody.Value.Required)
	assert.Nil(t, list.Responses.Value("default"), "infallible functions have no error response")
	ok := list.Responses.Value("200").Value
	assert.Equal(t, "#/components/schemas/PaginatedPet", ok.Content["application/json"].Schema.Ref)

	create := doc.Paths.Value("/pets.create").Post
	require.NotNil(t, create)
	assert.True(t, create.Deprecated)
	assert.Equal(t, "Creates a pet.", create.Description)
	assert.Contains(t, create.RequestBody.Value.Content, "application/msgpack")
	assert.True(t, create.RequestBody.Value.Required)
	assert.Equal(t, "#/components/schemas/Problem", create.Responses.Value("default").Value.Content["application/json"].Schema.Ref)

	require.Len(t, create.Parameters, 2)
	auth := create.Parameters[0].Value
	assert.Equal(t, "authorization", auth.Name)
	assert.Equal(t, openapi3.ParameterInHeader, auth.In)
	assert.True(t, auth.Required)
	assert.Equal(t, "Bearer token.", auth.Description)
	assert.False(t, create.Parameters[1].Value.Required)
}

func TestDocument_Validates(t *testing.T) {
	target := New(Options{})
	out, err := codegen.Generate(context.Background(), petstore(t), target, codegen.Options{})
	require.NoError(t, err)
	require.Len(t, out.Files, 1)
	assert.Equal(t, "openapi.json", out.Files[0].Path)

	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(out.Files[0].Content)
	require.NoError(t, err)
	require.NoError(t, doc.Validate(loader.Context))
}

func TestDocument_Enums(t *testing.T) {
	one, two := int64(1), int64(2)
	kind := &schema.Enum{
		Name:           "api::Kind",
		Representation: schema.Internal{Tag: "type"},
		Variants: []schema.Variant{
			{Name: "Dog", SerdeName: "dog", Fields: schema.Named(schema.Field{Name: "bark", Type: schema.Bool(), Required: true})},
			{Name: "Cat", SerdeName: "cat", Fields: schema.Unnamed(schema.Field{Type: schema.Ref("api::CatInfo")})},
			{Name: "None", SerdeName: "none", Fields: schema.NoFields()},
		},
	}
	shape := &schema.Enum{
		Name:           "api::Shape",
		Representation: schema.Adjacent{Tag: "t", Content: "c"},
		Variants: []schema.Variant{
			{Name: "Circle", Fields: schema.Unnamed(schema.Field{Type: schema.F64()})},
			{Name: "Empty", Fields: schema.NoFields()},
		},
	}
	color := &schema.Enum{Name: "api::Color", Variants: []schema.Variant{
		{Name: "Red", SerdeName: "red", Fields: schema.NoFields()},
		{Name: "Green", SerdeName: "green", Fields: schema.NoFields()},
	}}
	level := &schema.Enum{Name: "api::Level", Representation: schema.Untagged{}, Variants: []schema.Variant{
		{Name: "Low", Fields: schema.NoFields(), Discriminant: &one},
		{Name: "High", Fields: schema.NoFields(), Discriminant: &two},
	}}
	holder := &schema.Struct{Name: "api::Holder", Fields: schema.Named(
		schema.Field{Name: "kind", Type: schema.Ref("api::Kind"), Required: true},
		schema.Field{Name: "shape", Type: schema.Ref("api::Shape"), Required: true},
		schema.Field{Name: "color", Type: schema.Ref("api::Color"), Required: true},
		schema.Field{Name: "level", Type: schema.Ref("api::Level"), Required: true},
		schema.Field{Name: "note", Type: schema.Undefinable(schema.String())},
	)}
	catInfo := &schema.Struct{Name: "api::CatInfo", Fields: schema.Named(schema.Field{Name: "lives", Type: schema.U8(), Required: true})}

	doc := document(t, newSchema(t,
		[]schema.Function{{Name: "get", OutputType: schema.RefPtr("api::Holder")}},
		nil,
		[]schema.Type{kind, shape, color, level, holder, catInfo},
	), Options{})
	comps := doc.Components.Schemas

	k := comps["Kind"].Value
	require.Len(t, k.OneOf, 3)
	require.NotNil(t, k.Discriminator)
	assert.Equal(t, "type", k.Discriminator.PropertyName)
	dog := k.OneOf[0].Value
	assert.Equal(t, "Dog", dog.Title)
	assert.Equal(t, []string{"type", "bark"}, dog.Required)
	assert.Equal(t, []any{"dog"}, dog.Properties["type"].Value.Enum)
	cat := k.OneOf[1].Value
	require.Len(t, cat.AllOf, 2)
	assert.Equal(t, "#/components/schemas/CatInfo", cat.AllOf[1].Ref)
	assert.Equal(t, []string{"type"}, k.OneOf[2].Value.Required)

	s := comps["Shape"].Value
	require.Len(t, s.OneOf, 2)
	assert.Nil(t, s.Discriminator)
	assert.Equal(t, []string{"t", "c"}, s.OneOf[0].Value.Required)
	assert.Equal(t, []string{"t"}, s.OneOf[1].Value.Required)

	assert.Equal(t, []any{"red", "green"}, comps["Color"].Value.Enum)
	assert.Equal(t, []any{int64(1), int64(2)}, comps["Level"].Value.Enum)

	h := comps["Holder"].Value
	note := h.Properties["note"].Value
	assert.True(t, note.Nullable)
	assert.Equal(t, true, note.Extensions[undefinableExtension])
	assert.NotContains(t, h.Required, "note")
}

func TestDocument_Shapes(t *testing.T) {
	base := &schema.Struct{Name: "api::Base", Fields: schema.Named(schema.Field{Name: "id", Type: schema.Uuid(), Required: true})}
	id := &schema.Struct{Name: "api::Id", Transparent: true, Fields: schema.Named(schema.Field{Name: "value", Type: schema.String(), Required: true})}
	marker := &schema.Struct{Name: "api::Marker", Fields: schema.NoFields()}
	item := &schema.Struct{Name: "api::Item", Fields: schema.Named(
		schema.Field{Name: "base", Type: schema.Ref("api::Base"), Required: true, Flattened: true},
		schema.Field{Name: "ref", Type: schema.Ref("api::Id"), Required: true},
		schema.Field{Name: "marker", Type: schema.Ref("api::Marker"), Required: true},
		schema.Field{Name: "pair", Type: schema.Ref(schema.Tuple2Name, schema.String(), schema.I32()), Required: true},
		schema.Field{Name: "labels", Type: schema.Map(schema.String(), schema.Box(schema.F64())), Required: true},
		schema.Field{Name: "at", Type: schema.DateTime(), Required: true},
	)}
	doc := document(t, newSchema(t,
		[]schema.Function{{Name: "get", OutputType: schema.RefPtr("api::Item")}},
		nil,
		[]schema.Type{base, id, marker, item},
	), Options{})
	comps := doc.Components.Schemas

	assert.True(t, comps["Id"].Value.Type.Is(openapi3.TypeString))
	assert.Equal(t, []any{nil}, comps["Marker"].Value.Enum)

	it := comps["Item"].Value
	require.Len(t, it.AllOf, 2)
	assert.Equal(t, "#/components/schemas/Base", it.AllOf[0].Ref)
	own := it.AllOf[1].Value
	assert.NotContains(t, own.Properties, "base")

	pair := own.Properties["pair"].Value
	assert.Equal(t, uint64(2), pair.MinItems)
	require.NotNil(t, pair.MaxItems)
	assert.Equal(t, uint64(2), *pair.MaxItems)
	assert.Len(t, pair.Items.Value.OneOf, 2)

	labels := own.Properties["labels"].Value
	require.NotNil(t, labels.AdditionalProperties.Schema)
	assert.Equal(t, "double", labels.AdditionalProperties.Schema.Value.Format)
	assert.Equal(t, "date-time", own.Properties["at"].Value.Format)
}

func TestMarshal_YAML(t *testing.T) {
	out, err := codegen.Generate(context.Background(), petstore(t), New(Options{Format: "yaml"}), codegen.Options{})
	require.NoError(t, err)
	assert.Equal(t, "openapi.yaml", out.Files[0].Path)

	var got map[string]any
	require.NoError(t, yaml.Unmarshal(out.Files[0].Content, &got))
	assert.Equal(t, Version, got["openapi"])
	assert.NotContains(t, string(out.Files[0].Content), "{\"")

	js, err := codegen.Generate(context.Background(), petstore(t), New(Options{}), codegen.Options{})
	require.NoError(t, err)
	var want map[string]any
	require.NoError(t, json.Unmarshal(js.Files[0].Content, &want))
	assert.Equal(t, len(want), len(got))
}

func TestDocument_Deterministic(t *testing.T) {
	first, err := codegen.Generate(context.Background(), petstore(t), New(Options{}), codegen.Options{})
	require.NoError(t, err)
	for range 5 {
		again, err := codegen.Generate(context.Background(), petstore(t), New(Options{}), codegen.Options{})
		require.NoError(t, err)
		assert.Equal(t, string(first.Files[0].Content), string(again.Files[0].Content))
	}
}

func TestDocument_HeadersMustBeStruct(t *testing.T) {
	s := newSchema(t, []schema.Function{{Name: "get", InputHeaders: schema.RefPtr(schema.StringName)}}, nil, nil)
	_, err := codegen.Generate(context.Background(), s, New(Options{}), codegen.Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, &codegen.GenerationError{Kind: codegen.UnsupportedConstruct}))
}

func TestDocument_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := codegen.Generate(ctx, petstore(t), New(Options{}), codegen.Options{})
	assert.ErrorIs(t, err, context.Canceled)
}
