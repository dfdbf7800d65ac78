package loader

import (
	"os"

	"github.com/rhoc-lang/rhoc/codeobj"
	"github.com/rhoc-lang/rhoc/errors"
)

// Load reads a .rhoc file from disk and parses it into a CodeObject
// (spec.md §4.4). A missing file surfaces as errors.NotFound so the
// importer can fall back to a built-in module; any other structural
// problem surfaces as errors.InvalidFileSignature or
// errors.InvalidBytecode.
func Load(path string) (co *codeobj.CodeObject, err *errors.FatalError) {
	raw, rerr := os.ReadFile(path)
	if rerr != nil {
		if os.IsNotExist(rerr) {
			return nil, errors.NewFatal(errors.NotFound, "%s", path)
		}
		return nil, errors.NewFatal(errors.NotFound, "%s: %v", path, rerr)
	}
	return Parse(raw)
}

// Parse parses an in-memory .rhoc byte stream (spec.md §4.4/§6).
func Parse(raw []byte) (co *codeobj.CodeObject, fatal *errors.FatalError) {
	defer func() {
		if rec := recover(); rec != nil {
			if fe, ok := rec.(*errors.FatalError); ok {
				co, fatal = nil, fe
				return
			}
			panic(rec)
		}
	}()

	r := &reader{data: raw}
	if r.byte() != magic0 || r.byte() != magic1 || r.byte() != magic2 || r.byte() != magic3 {
		return nil, errors.NewFatal(errors.InvalidFileSignature, "bad .rhoc magic")
	}
	moduleStackDepth := r.u16()
	moduleTryCatchDepth := r.u16()

	body := readBody(r, "<module>", 0, int(moduleStackDepth), int(moduleTryCatchDepth), len(raw))
	return body, nil
}

// readBody parses one code-object body (spec.md §6). name/argCount/
// stackDepth/tryCatchDepth are already known at this call site: for the
// top-level body they come from the module header, for a nested
// CT_ENTRY_CODEOBJ they were just read from its own preamble. end is the
// byte offset one past this body's bytecode (end of file for the
// top-level body, subStart+subLen for a nested one).
func readBody(r *reader, name string, argCount, stackDepth, tryCatchDepth, end int) *codeobj.CodeObject {
	co := codeobj.NewCodeObject(name)
	co.ArgCount = argCount
	co.StackDepth = stackDepth
	co.TryCatchDepth = tryCatchDepth

	co.FirstLine = int(r.u16())
	lnoSize := int(r.u16())
	lnoBytes := r.bytes(lnoSize)
	co.LineRuns = decodeLineRuns(lnoBytes)

	r.expect(stEntryBegin, "ST_ENTRY_BEGIN")
	co.Symbols.Locals = readStrings(r)
	co.Symbols.Attrs = readStrings(r)
	co.Symbols.Frees = readStrings(r)
	r.expect(stEntryEnd, "ST_ENTRY_END")

	r.expect(ctEntryBegin, "CT_ENTRY_BEGIN")
	count := int(r.u16())
	for i := 0; i < count; i++ {
		tag := r.byte()
		switch tag {
		case ctEntryInt:
			co.Consts.InternInt(int64(r.i32()))
		case ctEntryFloat:
			co.Consts.InternFloat(r.f64())
		case ctEntryString:
			co.Consts.InternString(r.cstring())
		case ctEntryCode:
			subLen := int(r.u16())
			subStart := r.pos
			subEnd := subStart + subLen
			subName := r.cstring()
			subArgCount := int(r.u16())
			subStackDepth := int(r.u16())
			subTryCatchDepth := int(r.u16())
			sub := readBody(r, subName, subArgCount, subStackDepth, subTryCatchDepth, subEnd)
			co.Consts.AddCode(sub)
			if r.pos != subEnd {
				panic(errors.NewFatal(errors.InvalidBytecode, "sub-code-object length mismatch for %q", subName))
			}
		default:
			panic(errors.NewFatal(errors.InvalidBytecode, "unknown constant tag 0x%02x", tag))
		}
	}
	r.expect(ctEntryEnd, "CT_ENTRY_END")

	co.Bytecode = r.bytes(end - r.pos)
	return co
}

func readStrings(r *reader) []string {
	n := int(r.u16())
	out := make([]string, n)
	for i := range out {
		out[i] = r.cstring()
	}
	return out
}

// decodeLineRuns reads (ins_delta, line_delta) pairs until the (0,0)
// sentinel (spec.md §6); the sentinel itself is not retained.
func decodeLineRuns(b []byte) []codeobj.LineRun {
	var runs []codeobj.LineRun
	for i := 0; i+1 < len(b); i += 2 {
		if b[i] == 0 && b[i+1] == 0 {
			break
		}
		runs = append(runs, codeobj.LineRun{InsDelta: b[i], LineDelta: b[i+1]})
	}
	return runs
}
