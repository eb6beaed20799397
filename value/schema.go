package value

// StructSchema describes a struct for schema-directed decoding. Fields
// are listed in declaration order, which fixes the compact layout and
// the accepted keys of the named layout.
type StructSchema struct {
	Name   string
	Fields []string
}

// FieldIndex returns the position of name in the schema, -1 when absent
func (s *StructSchema) FieldIndex(name string) int {
	for i, f := range s.Fields {
		if f == name {
			return i
		}
	}
	return -1
}

// VariantShape describes the payload form of an enum variant
type VariantShape uint8

const (
	// ShapeUnit carries no payload
	ShapeUnit VariantShape = iota
	// ShapeNewtype wraps a single value
	ShapeNewtype
	// ShapeTuple wraps a fixed-arity sequence
	ShapeTuple
	// ShapeStruct wraps named fields
	ShapeStruct
)

var shapeNames = [...]string{
	ShapeUnit:    "unit",
	ShapeNewtype: "newtype",
	ShapeTuple:   "tuple",
	ShapeStruct:  "struct",
}

// String returns the name of the shape
func (s VariantShape) String() string {
	if int(s) < len(shapeNames) {
		return shapeNames[s]
	}
	return "unknown"
}

// VariantSchema describes one variant of an enum
type VariantSchema struct {
	// Struct describes the fields of a ShapeStruct variant, nil otherwise
	Struct *StructSchema
	Name   string
	// Index is the variant's position in declaration order, used as the
	// compact wire identifier
	Index int
	// Arity is the element count of a ShapeTuple variant
	Arity int
	Shape VariantShape
}

// EnumSchema describes an enum for schema-directed decoding
type EnumSchema struct {
	Name     string
	Variants []VariantSchema
}

// ByIndex returns the variant with the given index, nil when absent
func (e *EnumSchema) ByIndex(index int) *VariantSchema {
	for i := range e.Variants {
		if e.Variants[i].Index == index {
			return &e.Variants[i]
		}
	}
	return nil
}

// ByName returns the variant with the given name, nil when absent
func (e *EnumSchema) ByName(name string) *VariantSchema {
	for i := range e.Variants {
		if e.Variants[i].Name == name {
			return &e.Variants[i]
		}
	}
	return nil
}
