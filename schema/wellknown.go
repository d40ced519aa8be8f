package schema

// Names of the well-known types seeded into every Typespace.
const (
	StringName      TypeName = "std::String"
	BoolName        TypeName = "std::Bool"
	I8Name          TypeName = "std::I8"
	I16Name         TypeName = "std::I16"
	I32Name         TypeName = "std::I32"
	I64Name         TypeName = "std::I64"
	U8Name          TypeName = "std::U8"
	U16Name         TypeName = "std::U16"
	U32Name         TypeName = "std::U32"
	U64Name         TypeName = "std::U64"
	F32Name         TypeName = "std::F32"
	F64Name         TypeName = "std::F64"
	CharName        TypeName = "std::Char"
	BytesName       TypeName = "std::Bytes"
	UuidName        TypeName = "std::Uuid"
	DateTimeName    TypeName = "std::DateTime"
	DateName        TypeName = "std::Date"
	DurationName    TypeName = "std::Duration"
	JSONName        TypeName = "std::Json"
	VecName         TypeName = "std::Vec"
	MapName         TypeName = "std::Map"
	BoxName         TypeName = "std::Box"
	OptionName      TypeName = "std::Option"
	UndefinableName TypeName = "std::Undefinable"
	EmptyName       TypeName = "std::Empty"
	InfallibleName  TypeName = "std::Infallible"
	Tuple2Name      TypeName = "std::Tuple2"
	Tuple3Name      TypeName = "std::Tuple3"
)

func param(name string) TypeReference { return Ref(TypeName(name)) }

// WellKnown returns fresh copies of the well-known descriptors in their
// canonical order.
func WellKnown() []Type {
	return []Type{
		&Primitive{Name: StringName, Description: "UTF-8 string"},
		&Primitive{Name: BoolName, Description: "Boolean"},
		&Primitive{Name: I8Name, Description: "8-bit signed integer"},
		&Primitive{Name: I16Name, Description: "16-bit signed integer"},
		&Primitive{Name: I32Name, Description: "32-bit signed integer"},
		&Primitive{Name: I64Name, Description: "64-bit signed integer"},
		&Primitive{Name: U8Name, Description: "8-bit unsigned integer"},
		&Primitive{Name: U16Name, Description: "16-bit unsigned integer"},
		&Primitive{Name: U32Name, Description: "32-bit unsigned integer"},
		&Primitive{Name: U64Name, Description: "64-bit unsigned integer"},
		&Primitive{Name: F32Name, Description: "32-bit float"},
		&Primitive{Name: F64Name, Description: "64-bit float"},
		&Primitive{Name: CharName, Description: "Single unicode scalar", Fallback: RefPtr(StringName)},
		&Primitive{Name: BytesName, Description: "Binary data, base64 in JSON", Fallback: RefPtr(StringName)},
		&Primitive{Name: UuidName, Description: "UUID", Fallback: RefPtr(StringName)},
		&Primitive{Name: DateTimeName, Description: "RFC 3339 timestamp", Fallback: RefPtr(StringName)},
		&Primitive{Name: DateName, Description: "Calendar date (YYYY-MM-DD)", Fallback: RefPtr(StringName)},
		&Primitive{Name: DurationName, Description: "Duration in milliseconds", Fallback: RefPtr(U64Name)},
		&Primitive{Name: JSONName, Description: "Arbitrary JSON value"},
		&Primitive{Name: VecName, Description: "Ordered sequence", Params: Params("T")},
		&Primitive{Name: MapName, Description: "Key-value map, keys serialize as strings", Params: Params("K", "V")},
		&Primitive{Name: BoxName, Description: "Indirection, serializes as T", Params: Params("T"), Fallback: &TypeReference{Name: "T"}},
		&Enum{
			Name:           OptionName,
			Description:    "Optional value: null or a value",
			Params:         Params("T"),
			Representation: Untagged{},
			Variants: []Variant{
				{Name: "None", Fields: NoFields()},
				{Name: "Some", Fields: Unnamed(Field{Type: param("T"), Required: true})},
			},
		},
		&Enum{
			Name:           UndefinableName,
			Description:    "Tri-state optional value: absent, null, or a value",
			Params:         Params("T"),
			Representation: Untagged{},
			Variants: []Variant{
				{Name: "Undefined", Fields: NoFields()},
				{Name: "None", Fields: NoFields()},
				{Name: "Some", Fields: Unnamed(Field{Type: param("T"), Required: true})},
			},
		},
		&Struct{Name: EmptyName, Description: "Struct without fields", Fields: Named()},
		&Enum{Name: InfallibleName, Description: "Error type without variants", Representation: External{}},
		&Struct{
			Name:   Tuple2Name,
			Params: Params("A", "B"),
			Fields: Unnamed(Field{Type: param("A"), Required: true}, Field{Type: param("B"), Required: true}),
		},
		&Struct{
			Name:   Tuple3Name,
			Params: Params("A", "B", "C"),
			Fields: Unnamed(Field{Type: param("A"), Required: true}, Field{Type: param("B"), Required: true}, Field{Type: param("C"), Required: true}),
		},
	}
}

var wellKnownNames = func() map[TypeName]bool {
	m := make(map[TypeName]bool)
	for _, t := range WellKnown() {
		m[t.TypeName()] = true
	}
	return m
}()

// IsWellKnown reports whether name is one of the seeded types.
func IsWellKnown(name TypeName) bool { return wellKnownNames[name] }

// IsOption reports whether ref is std::Option<T>.
func IsOption(ref TypeReference) bool { return ref.Name == OptionName && len(ref.Arguments) == 1 }

// IsUndefinable reports whether ref is the tri-state std::Undefinable<T>.
func IsUndefinable(ref TypeReference) bool {
	return ref.Name == UndefinableName && len(ref.Arguments) == 1
}

// Convenience references for the common primitives.

func String() TypeReference                { return Ref(StringName) }
func Bool() TypeReference                  { return Ref(BoolName) }
func I32() TypeReference                   { return Ref(I32Name) }
func I64() TypeReference                   { return Ref(I64Name) }
func U8() TypeReference                    { return Ref(U8Name) }
func U32() TypeReference                   { return Ref(U32Name) }
func U64() TypeReference                   { return Ref(U64Name) }
func F64() TypeReference                   { return Ref(F64Name) }
func DateTime() TypeReference              { return Ref(DateTimeName) }
func Uuid() TypeReference                  { return Ref(UuidName) }
func Vec(elem TypeReference) TypeReference { return Ref(VecName, elem) }
func Map(k, v TypeReference) TypeReference { return Ref(MapName, k, v) }
func Box(elem TypeReference) TypeReference { return Ref(BoxName, elem) }
func Option(elem TypeReference) TypeReference {
	return Ref(OptionName, elem)
}
func Undefinable(elem TypeReference) TypeReference {
	return Ref(UndefinableName, elem)
}
