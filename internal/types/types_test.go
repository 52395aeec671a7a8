package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCTypeOptionalPrimitiveUsesNamedRuntimeTypedef(t *testing.T) {
	assert.Equal(t, "echo_optional_i32", Annotation{Name: I32, Optional: true}.CType())
	assert.Equal(t, "echo_optional_f64", Annotation{Name: F64, Optional: true}.CType())
	assert.Equal(t, "echo_optional_string", Annotation{Name: String, Optional: true}.CType())
}

func TestCTypeOptionalWithoutNamedTypedefFallsBackToMacro(t *testing.T) {
	assert.Equal(t, "ECHO_OPTIONAL(Point)", Annotation{Name: Name("Point"), Optional: true}.CType())
}

func TestCTypePointerAppendsStarToBaseType(t *testing.T) {
	assert.Equal(t, "int32_t *", Annotation{Name: I32, Pointer: true}.CType())
	assert.Equal(t, "Point *", Annotation{Name: Name("Point"), Pointer: true}.CType())
}

func TestCTypePlainMapsPrimitiveName(t *testing.T) {
	assert.Equal(t, "double", Annotation{Name: F64}.CType())
	assert.Equal(t, "Point", Annotation{Name: Name("Point")}.CType())
}
