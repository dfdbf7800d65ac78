package stdlib

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rhoc-lang/rhoc/values"
)

func TestIOModule_ReadLine(t *testing.T) {
	in := strings.NewReader("hello\nworld\n")
	var out bytes.Buffer
	m := IOModule(in, &out)

	r := callNative(t, m, "read_line")
	require.Equal(t, values.TagObject, r.Tag)
	s, ok := values.AsString(r)
	require.True(t, ok)
	assert.Equal(t, "hello", s)
}

func TestIOModule_ReadLineEOFReturnsNull(t *testing.T) {
	in := strings.NewReader("")
	var out bytes.Buffer
	m := IOModule(in, &out)

	r := callNative(t, m, "read_line")
	assert.Equal(t, values.TagNull, r.Tag)
}

func TestIOModule_WriteLine(t *testing.T) {
	in := strings.NewReader("")
	var out bytes.Buffer
	m := IOModule(in, &out)

	r := callNative(t, m, "write_line", values.NewString("hi"))
	assert.Equal(t, values.TagNull, r.Tag)
	assert.Equal(t, "hi\n", out.String())
}

func TestIOModule_WriteWrongArity(t *testing.T) {
	in := strings.NewReader("")
	var out bytes.Buffer
	m := IOModule(in, &out)

	r := callNative(t, m, "write")
	assert.Equal(t, values.TagExc, r.Tag)
	assert.Equal(t, values.TypeExceptionClass, r.Obj.Class)
}
