// Package types models Echo's small type system: primitive names, struct
// declarations, and the pointer/optional/array modifiers a type
// annotation can carry. It is grounded on the teacher's pkg/types package
// (PrimitiveType, StructType, GenericType, ArrayType) generalized to carry
// the pointer/optional/array flags the AST's type-annotation slot needs
// (spec.md §3) and the source->C name mapping the emitter needs (spec.md
// §4.8).
package types

import "fmt"

// Name is a type's source-level name, e.g. "i32", "string", or a struct
// name like "Point". It never includes pointer/optional/array modifiers;
// those are carried alongside in Annotation.
type Name string

const (
	I8     Name = "i8"
	I16    Name = "i16"
	I32    Name = "i32"
	I64    Name = "i64"
	F32    Name = "f32"
	F64    Name = "f64"
	Bool   Name = "bool"
	String Name = "string"
	Char   Name = "char"
	Void   Name = "void"
	Auto   Name = "auto" // placeholder type, valid only in VariableDecl and
	// as a GenericFunction's declared return type (spec.md §3 invariant)
)

var builtinNames = map[Name]bool{
	I8: true, I16: true, I32: true, I64: true,
	F32: true, F64: true, Bool: true, String: true, Char: true, Void: true,
}

// IsBuiltin reports whether name is one of the fixed primitive type names.
func IsBuiltin(name Name) bool {
	return builtinNames[name]
}

// IsNumeric reports whether name is one of the integer or floating-point
// primitive names.
func IsNumeric(name Name) bool {
	switch name {
	case I8, I16, I32, I64, F32, F64:
		return true
	}
	return false
}

// Annotation is the type-annotation slot every AST node carries (spec.md
// §3): a base type name plus the pointer/optional/array modifier flags.
// At most one of Pointer, Optional, Array is meaningful at a time in the
// current grammar (spec.md §6's type syntax is "keyword-or-identifier,
// optionally followed by *, ?, or []").
type Annotation struct {
	Name     Name
	Pointer  bool
	Optional bool
	Array    bool
}

// String renders the annotation the way source syntax would write it.
func (a Annotation) String() string {
	s := string(a.Name)
	switch {
	case a.Pointer:
		s += "*"
	case a.Optional:
		s += "?"
	case a.Array:
		s += "[]"
	}
	return s
}

// CBase is the plain type name mapped to C (no suffix for pointer/array
// since those are rendered by the caller around CBase), per spec.md §4.8.
func (a Annotation) CBase() string {
	return baseCName(a.Name)
}

// CType renders the full C type string for this annotation, including the
// pointer-star or the optional-of-T runtime type, per spec.md §4.8.
func (a Annotation) CType() string {
	switch {
	case a.Pointer:
		return fmt.Sprintf("%s *", a.CBase())
	case a.Optional:
		return optionalCName(a.Name)
	case a.Array:
		return fmt.Sprintf("%s *", a.CBase())
	default:
		return baseCName(a.Name)
	}
}

// optionalNames maps a primitive name to the named typedef
// runtime/echo_runtime.h already declares for it (`typedef
// ECHO_OPTIONAL(int32_t) echo_optional_i32;` and so on), so every `T?`
// declaration site names the same nominal type instead of each expanding
// the ECHO_OPTIONAL macro into its own anonymous, mutually-incompatible
// struct — C99 gives every unnamed `struct { ... }` its own distinct type
// even when two expansions have identical layout.
var optionalNames = map[Name]string{
	I32:    "echo_optional_i32",
	I64:    "echo_optional_i64",
	F32:    "echo_optional_f32",
	F64:    "echo_optional_f64",
	Bool:   "echo_optional_bool",
	String: "echo_optional_string",
}

// optionalCName renders the C type for `name?`: the runtime's named
// typedef when one exists, otherwise a raw ECHO_OPTIONAL expansion (no
// named typedef exists for i8/i16/char/void or a user struct/enum name;
// such an optional only compiles if it appears at a single declaration
// site, a known limitation beyond what spec.md's runtime macro set
// covers).
func optionalCName(name Name) string {
	if named, ok := optionalNames[name]; ok {
		return named
	}
	return fmt.Sprintf("ECHO_OPTIONAL(%s)", baseCName(name))
}

// baseCName maps a bare source type name to its C spelling (spec.md §4.8).
// User-defined struct/enum names pass through unchanged; the emitter
// typedefs every struct declaration to its source name (see
// internal/emitter), so no further suffixing is needed here.
func baseCName(name Name) string {
	switch name {
	case I8:
		return "int8_t"
	case I16:
		return "int16_t"
	case I32:
		return "int32_t"
	case I64:
		return "int64_t"
	case F32:
		return "float"
	case F64:
		return "double"
	case Bool:
		return "bool"
	case String:
		return "char*"
	case Char:
		return "char"
	case Void:
		return "void"
	default:
		return string(name)
	}
}

// StructDecl is the recorded shape of a `struct Name { ... }` declaration:
// field order is preserved because the emitter must reproduce it verbatim
// (spec.md §4.7 phase 2, testable property #5's "struct preserves field
// order").
type StructDecl struct {
	Name   string
	Fields []Field
}

// Field is one struct field: a name and its declared type annotation.
type Field struct {
	Name string
	Type Annotation
}

// FieldType returns the annotation for the named field, or false if no such
// field exists.
func (d *StructDecl) FieldType(name string) (Annotation, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f.Type, true
		}
	}
	return Annotation{}, false
}
