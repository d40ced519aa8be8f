package schema

import "slices"

// Format is a serialization format a function accepts and produces.
type Format string

const (
	FormatJSON    Format = "json"
	FormatMsgpack Format = "msgpack"
)

// Function is a single route of the API.
type Function struct {
	// Name is dot-delimited; the segments define the namespace nesting of
	// generated clients ("pets.list" lands under "pets").
	Name string `json:"name"`

	// Path is the relative request path. Empty means "/" + Name.
	Path string `json:"path,omitempty"`

	Description string   `json:"description,omitempty"`
	Deprecation string   `json:"deprecation_note,omitempty"`
	Tags        []string `json:"tags,omitempty"`

	// Readonly functions have no side effects.
	Readonly bool `json:"readonly,omitempty"`

	// Serialization lists accepted formats. Empty means JSON only.
	Serialization []Format `json:"serialization,omitempty"`

	InputType    *TypeReference `json:"input_type,omitempty"`
	InputHeaders *TypeReference `json:"input_headers,omitempty"`
	OutputType   *TypeReference `json:"output_type,omitempty"`
	ErrorType    *TypeReference `json:"error_type,omitempty"`
}

// RoutePath returns the request path.
func (f Function) RoutePath() string {
	if f.Path != "" {
		return f.Path
	}
	return "/" + f.Name
}

// Doc returns the function's documentation.
func (f Function) Doc() Documentation {
	return Documentation{Description: f.Description, Deprecation: f.Deprecation}
}

// Formats returns the accepted formats, defaulting to JSON.
func (f Function) Formats() []Format {
	if len(f.Serialization) == 0 {
		return []Format{FormatJSON}
	}
	return f.Serialization
}

// Accepts reports whether the function supports format.
func (f Function) Accepts(format Format) bool {
	return slices.Contains(f.Formats(), format)
}

// Input returns the input body reference, std::Empty when absent.
func (f Function) Input() TypeReference { return orDefault(f.InputType, EmptyName) }

// Headers returns the input headers reference, std::Empty when absent.
func (f Function) Headers() TypeReference { return orDefault(f.InputHeaders, EmptyName) }

// Output returns the output body reference, std::Empty when absent.
func (f Function) Output() TypeReference { return orDefault(f.OutputType, EmptyName) }

// Error returns the error body reference, std::Infallible when absent.
func (f Function) Error() TypeReference { return orDefault(f.ErrorType, InfallibleName) }

func orDefault(r *TypeReference, name TypeName) TypeReference {
	if r == nil {
		return Ref(name)
	}
	return *r
}
