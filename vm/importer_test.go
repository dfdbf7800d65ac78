package vm

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rhoc-lang/rhoc/codeobj"
	"github.com/rhoc-lang/rhoc/loader"
	"github.com/rhoc-lang/rhoc/opcodes"
	"github.com/rhoc-lang/rhoc/values"
)

func TestImporter_BuiltinMathModule(t *testing.T) {
	machine := New(NewImporter(t.TempDir()))
	mod := machine.doImport("math")
	require.Equal(t, values.TagObject, mod.Tag)

	d, ok := mod.Obj.Native.(*values.DictObj)
	require.True(t, ok)
	pi, ok := d.Get("pi")
	require.True(t, ok)
	assert.Equal(t, values.TagFloat, pi.Tag)
}

// TestImporter_LoadAttrReadsMathModuleConstant exercises the actual
// LOAD_ATTR opcode path `math.pi` compiles to (compiler/expr.go), not
// DictObj.Get directly, so a regression in ModuleClass.AttrGet would fail
// this test even if the plain Get accessor still worked.
func TestImporter_LoadAttrReadsMathModuleConstant(t *testing.T) {
	machine := New(NewImporter(t.TempDir()))

	co := codeobj.NewCodeObject("<module>")
	modName := co.Consts.InternString("math")
	piAttr := uint16(co.Symbols.AddAttr("pi"))
	co.Bytecode = []byte{
		byte(opcodes.IMPORT), byte(modName), byte(modName >> 8),
		byte(opcodes.LOAD_ATTR), byte(piAttr), byte(piAttr >> 8),
		byte(opcodes.RETURN),
	}
	co.StackDepth = 1

	result := machine.RunModule(co)
	require.Equal(t, values.TagFloat, result.Tag)
	assert.InDelta(t, 3.14159265, result.F, 1e-6)
}

// TestImporter_ModuleAttrSetIsRejected mirrors module.c's module_attr_set:
// assigning to a module's attribute always raises an AttributeException,
// since modules are read-only namespaces once imported.
func TestImporter_ModuleAttrSetIsRejected(t *testing.T) {
	machine := New(NewImporter(t.TempDir()))
	mod := machine.doImport("math")
	require.Equal(t, values.TagObject, mod.Tag)

	result := values.SetAttr(mod, "pi", values.Int(0))
	require.Equal(t, values.TagExc, result.Tag)
	assert.Equal(t, values.AttributeExceptionClass, result.Obj.Class)
}

func TestImporter_UnresolvedModuleRaisesImportException(t *testing.T) {
	machine := New(NewImporter(t.TempDir()))
	result := machine.doImport("does.not.exist")
	require.Equal(t, values.TagExc, result.Tag)
	assert.Equal(t, values.ImportExceptionClass, result.Obj.Class)
}

func TestImporter_NilImporterRaisesImportException(t *testing.T) {
	machine := New(nil)
	result := machine.doImport("math")
	require.Equal(t, values.TagExc, result.Tag)
	assert.Equal(t, values.ImportExceptionClass, result.Obj.Class)
}

func TestImporter_OnDiskModuleExportsAreVisible(t *testing.T) {
	dir := t.TempDir()

	co := codeobj.NewCodeObject("<module>")
	answer := co.Consts.InternInt(7)
	name := co.Consts.InternString("answer")
	co.Bytecode = []byte{
		byte(opcodes.LOAD_CONST), byte(answer), byte(answer >> 8),
		byte(opcodes.EXPORT), byte(name), byte(name >> 8),
		byte(opcodes.LOAD_NULL),
		byte(opcodes.RETURN),
	}
	co.StackDepth = 1

	path := filepath.Join(dir, "greet.rhoc")
	require.NoError(t, os.WriteFile(path, loader.Write(co), 0o644))

	machine := New(NewImporter(dir))
	mod := machine.doImport("greet")
	require.Equal(t, values.TagObject, mod.Tag)

	d, ok := mod.Obj.Native.(*values.DictObj)
	require.True(t, ok)
	answerVal, ok := d.Get("answer")
	require.True(t, ok)
	assert.Equal(t, int64(7), answerVal.I)
}
