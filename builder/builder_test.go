package builder

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/broady/shapegen/schema"
)

func petType() *schema.Struct {
	return &schema.Struct{
		Name: "myapi::model::Pet",
		Fields: schema.Named(
			schema.Field{Name: "id", Type: schema.U64(), Required: true},
			schema.Field{Name: "name", Type: schema.String(), Required: true},
		),
	}
}

func paginated() *schema.Struct {
	return &schema.Struct{
		Name:   "myapi::Paginated",
		Params: schema.Params("T"),
		Fields: schema.Named(
			schema.Field{Name: "items", Type: schema.Vec(schema.Ref("T")), Required: true},
			schema.Field{Name: "next", Type: schema.Option(schema.String())},
		),
	}
}

func listFn(name string) schema.Function {
	return schema.Function{
		Name:       name,
		Readonly:   true,
		OutputType: schema.RefPtr("myapi::Paginated", schema.Ref("myapi::model::Pet")),
	}
}

func TestBuild_Success(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	b := New("petstore", WithDescription("Pets."), WithLogger(logger))
	b.Register(listFn("pets.list"), Types{Output: []schema.Type{paginated(), petType()}})
	b.Register(schema.Function{
		Name:       "pets.create",
		InputType:  schema.RefPtr("myapi::model::Pet"),
		OutputType: schema.RefPtr("myapi::model::Pet"),
	}, Types{Input: []schema.Type{petType()}, Output: []schema.Type{petType()}})

	s, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, "petstore", s.Name)
	assert.Equal(t, "Pets.", s.Description)
	require.Len(t, s.Functions, 2)
	assert.Equal(t, "pets.list", s.Functions[0].Name)
	assert.True(t, s.InputTypes.Has("myapi::model::Pet"))
	assert.False(t, s.InputTypes.Has("myapi::Paginated"))
	assert.True(t, s.OutputTypes.Has("myapi::Paginated"))
	assert.Contains(t, logs.String(), "registered function")
	assert.Contains(t, logs.String(), "function=pets.list")
}

func TestBuild_DuplicateFunctionName(t *testing.T) {
	b := New("petstore")
	b.Register(listFn("pets.list"), Types{Output: []schema.Type{paginated(), petType()}})
	b.Register(listFn("pets.list"), Types{Output: []schema.Type{paginated(), petType()}})

	s, err := b.Build()
	require.Error(t, err)
	assert.Nil(t, s)

	var be BuildErrors
	require.True(t, errors.As(err, &be))
	require.Len(t, be, 1)
	assert.Equal(t, schema.CodeDuplicateFunctionName, be[0].Code)
	assert.Equal(t, "pets.list", be[0].Function)
	assert.True(t, schema.HasCode(err, schema.CodeDuplicateFunctionName))
}

func TestBuild_FunctionNamesAreCaseSensitive(t *testing.T) {
	b := New("petstore")
	b.Register(listFn("pets.list"), Types{Output: []schema.Type{paginated(), petType()}})
	b.Register(listFn("pets.List"), Types{Output: []schema.Type{paginated(), petType()}})

	_, err := b.Build()
	assert.NoError(t, err)
}

func TestBuild_ReportsEveryProblem(t *testing.T) {
	conflicting := petType()
	conflicting.Fields = schema.Named(schema.Field{Name: "id", Type: schema.String(), Required: true})

	b := New("petstore")
	b.Register(schema.Function{
		Name:       "pets.get",
		InputType:  schema.RefPtr("myapi::PetId"),
		OutputType: schema.RefPtr("myapi::model::Pet"),
	}, Types{Output: []schema.Type{petType()}})
	b.Register(schema.Function{
		Name:       "pets.update",
		OutputType: schema.RefPtr("myapi::model::Pet"),
		ErrorType:  schema.RefPtr("myapi::Paginated"),
	}, Types{Output: []schema.Type{conflicting, paginated()}})

	_, err := b.Build()
	require.Error(t, err)
	var be BuildErrors
	require.ErrorAs(t, err, &be)

	assert.Equal(t, []schema.ErrorCode{
		schema.CodeDuplicateType,
		schema.CodeUnknownType,
		schema.CodeArityMismatch,
	}, be.Codes())
	assert.Equal(t, "pets.update", be[0].Function)
	assert.Equal(t, "pets.get", be[1].Function)
	assert.Contains(t, be[1].Message, "input type")
	assert.Contains(t, be[2].Message, "error type")
	assert.True(t, strings.HasPrefix(err.Error(), "3 schema errors:"))
}

func TestBuild_ReferenceOnWrongSide(t *testing.T) {
	b := New("petstore")
	b.Register(schema.Function{
		Name:      "pets.create",
		InputType: schema.RefPtr("myapi::model::Pet"),
	}, Types{Output: []schema.Type{petType()}})

	_, err := b.Build()
	require.Error(t, err)
	assert.True(t, schema.HasCode(err, schema.CodeUnknownType))
}

func TestBuild_TypespaceErrorsAreIncluded(t *testing.T) {
	node := &schema.Struct{
		Name:   "myapi::Node",
		Fields: schema.Named(schema.Field{Name: "next", Type: schema.Ref("myapi::Node"), Required: true}),
	}
	b := New("graph")
	b.Register(schema.Function{Name: "walk", OutputType: schema.RefPtr("myapi::Node")}, Types{Output: []schema.Type{node}})

	_, err := b.Build()
	require.Error(t, err)
	assert.True(t, schema.HasCode(err, schema.CodeIllegalSelfReference))
	assert.Contains(t, err.Error(), "output typespace")
}

func TestBuild_SharedTypes(t *testing.T) {
	b := New("petstore").InputType(petType()).OutputType(petType())
	b.Register(schema.Function{
		Name:       "pets.echo",
		InputType:  schema.RefPtr("myapi::model::Pet"),
		OutputType: schema.RefPtr("myapi::model::Pet"),
	}, Types{})

	s, err := b.Build()
	require.NoError(t, err)
	assert.True(t, s.InputTypes.Has("myapi::model::Pet"))
	assert.True(t, s.OutputTypes.Has("myapi::model::Pet"))
}

func TestBuild_PruneUnused(t *testing.T) {
	orphan := &schema.Struct{Name: "myapi::Orphan", Fields: schema.NoFields()}

	b := New("petstore", WithPruneUnused())
	b.Register(listFn("pets.list"), Types{
		Input:  []schema.Type{orphan},
		Output: []schema.Type{orphan, paginated(), petType()},
	})

	s, err := b.Build()
	require.NoError(t, err)
	assert.False(t, s.InputTypes.Has("myapi::Orphan"))
	assert.False(t, s.OutputTypes.Has("myapi::Orphan"))
	assert.True(t, s.OutputTypes.Has("myapi::Paginated"))
	assert.True(t, s.OutputTypes.Has("myapi::model::Pet"))
	assert.True(t, s.InputTypes.Has(schema.EmptyName))
}

func TestBuild_SchemaIsIndependentOfBuilder(t *testing.T) {
	b := New("petstore")
	b.Register(listFn("pets.list"), Types{Output: []schema.Type{paginated(), petType()}})
	s, err := b.Build()
	require.NoError(t, err)

	b.Register(schema.Function{Name: "later"}, Types{Output: []schema.Type{&schema.Struct{Name: "myapi::Later", Fields: schema.NoFields()}}})
	assert.Len(t, s.Functions, 1)
	assert.False(t, s.OutputTypes.Has("myapi::Later"))
}

func TestBuildErrors_Error(t *testing.T) {
	one := BuildErrors{{Code: schema.CodeUnknownType, TypeName: "a::B", Message: "missing"}}
	assert.Equal(t, "unknown_type: type a::B: missing", one.Error())
	assert.Equal(t, "no errors", BuildErrors{}.Error())
}

func TestCheck(t *testing.T) {
	b := New("petstore")
	b.Register(listFn("pets.list"), Types{Output: []schema.Type{paginated(), petType()}})
	s, err := b.Build()
	require.NoError(t, err)
	assert.NoError(t, Check(s))

	s.Functions = append(s.Functions, schema.Function{
		Name:      "pets.create",
		InputType: schema.RefPtr("myapi::model::Missing"),
	})
	err = Check(s)
	require.Error(t, err)
	assert.True(t, schema.HasCode(err, schema.CodeUnknownType))
}
