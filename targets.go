package shapegen

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	form "github.com/gorilla/schema"

	"github.com/broady/shapegen/codegen"
	"github.com/broady/shapegen/codegen/golang"
	"github.com/broady/shapegen/codegen/openapi"
	"github.com/broady/shapegen/codegen/typescript"
)

var (
	validate      = newValidator()
	optionDecoder = newOptionDecoder()
)

func newValidator() *validator.Validate {
	v := validator.New()
	// Report option fields under the keys users write.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("schema"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func newOptionDecoder() *form.Decoder {
	d := form.NewDecoder()
	d.IgnoreUnknownKeys(false)
	d.ZeroEmpty(true)
	return d
}

type targetFactory func(options []string) (codegen.Target, error)

var targets = map[string]targetFactory{
	"typescript": optionsFactory(typescript.DefaultOptions, func(o typescript.Options) codegen.Target {
		return typescript.New(o)
	}),
	"go": optionsFactory(golang.DefaultOptions, func(o golang.Options) codegen.Target {
		return golang.New(o)
	}),
	"openapi": optionsFactory(openapi.DefaultOptions, func(o openapi.Options) codegen.Target {
		return openapi.New(o)
	}),
}

// Targets returns the names of the available targets, sorted.
func Targets() []string {
	return slices.Sorted(maps.Keys(targets))
}

// NewTarget returns the named target configured from "key=value" options.
func NewTarget(name string, options ...string) (codegen.Target, error) {
	f, ok := targets[name]
	if !ok {
		return nil, &ConfigError{
			Target:  name,
			Message: fmt.Sprintf("unknown target (expected one of %s)", strings.Join(Targets(), ", ")),
		}
	}
	t, err := f(options)
	if err != nil {
		return nil, configError(name, err)
	}
	return t, nil
}

func optionsFactory[O any](defaults func() O, build func(O) codegen.Target) targetFactory {
	return func(options []string) (codegen.Target, error) {
		opts := defaults()
		if err := decodeOptions(&opts, options); err != nil {
			return nil, err
		}
		if err := validate.Struct(opts); err != nil {
			return nil, err
		}
		return build(opts), nil
	}
}

// ParseOptions splits "key=value" pairs into form values. A bare key is
// read as "key=true"; a repeated key keeps its last value.
func ParseOptions(options []string) (map[string][]string, error) {
	values := make(map[string][]string, len(options))
	for _, opt := range options {
		key, value, ok := strings.Cut(opt, "=")
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, fmt.Errorf("option %q: missing key", opt)
		}
		if !ok {
			value = "true"
		}
		values[key] = []string{value}
	}
	return values, nil
}

func decodeOptions(dst any, options []string) error {
	values, err := ParseOptions(options)
	if err != nil {
		return err
	}
	return optionDecoder.Decode(dst, values)
}
