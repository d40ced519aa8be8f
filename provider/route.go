package provider

import (
	"context"
	"fmt"
	"reflect"

	"github.com/broady/shapegen/builder"
	"github.com/broady/shapegen/schema"
)

// Route describes one function by the Go types of its signature. A nil
// type takes the function default: std::Empty for Input, Headers and
// Output, std::Infallible for Error.
type Route struct {
	Name        string
	Path        string
	Description string
	Deprecation string
	Tags        []string
	Readonly    bool
	Formats     []schema.Format

	Input   reflect.Type
	Headers reflect.Type
	Output  reflect.Type
	Error   reflect.Type
}

// Register converts the types of every route and registers the functions
// into b. Each function carries exactly the descriptors its input side and
// output side reach.
func (r *Reflector) Register(ctx context.Context, b *builder.Builder, routes ...Route) error {
	for _, rt := range routes {
		fn := schema.Function{
			Name:          rt.Name,
			Path:          rt.Path,
			Description:   rt.Description,
			Deprecation:   rt.Deprecation,
			Tags:          rt.Tags,
			Readonly:      rt.Readonly,
			Serialization: rt.Formats,
		}
		var err error
		refs := []struct {
			t   reflect.Type
			dst **schema.TypeReference
		}{
			{rt.Input, &fn.InputType},
			{rt.Headers, &fn.InputHeaders},
			{rt.Output, &fn.OutputType},
			{rt.Error, &fn.ErrorType},
		}
		for _, ref := range refs {
			if ref.t == nil {
				continue
			}
			var tr schema.TypeReference
			if tr, err = r.TypeOf(ctx, ref.t); err != nil {
				return fmt.Errorf("route %s: %w", rt.Name, err)
			}
			*ref.dst = &tr
		}
		b.Register(fn, builder.Types{
			Input:  r.Closure(fn.Input(), fn.Headers()),
			Output: r.Closure(fn.Output(), fn.Error()),
		})
	}
	return nil
}
