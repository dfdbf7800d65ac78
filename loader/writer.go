package loader

import "github.com/rhoc-lang/rhoc/codeobj"

// Write serializes a compiled module to the .rhoc format (spec.md §6):
// magic, the two module-level depths, then the top-level code-object body.
func Write(co *codeobj.CodeObject) []byte {
	buf := codeobj.NewBuffer()
	buf.WriteByte(magic0)
	buf.WriteByte(magic1)
	buf.WriteByte(magic2)
	buf.WriteByte(magic3)
	buf.WriteUint16(uint16(co.StackDepth))
	buf.WriteUint16(uint16(co.TryCatchDepth))
	writeBody(buf, co, false)
	return buf.Bytes()
}

// writeBody writes a code-object body. At top level there is no name/
// argcount/stack_depth/try_catch_depth preamble (those are read from the
// module header or, for a nested CT_ENTRY_CODEOBJ, from its own prefix);
// withPreamble distinguishes the two call sites.
func writeBody(buf *codeobj.Buffer, co *codeobj.CodeObject, withPreamble bool) {
	if withPreamble {
		buf.WriteStr(co.Name)
		buf.WriteUint16(uint16(co.ArgCount))
		buf.WriteUint16(uint16(co.StackDepth))
		buf.WriteUint16(uint16(co.TryCatchDepth))
	}

	buf.WriteUint16(uint16(co.FirstLine))
	lno := encodeLineRuns(co.LineRuns)
	buf.WriteUint16(uint16(lno.Len()))
	buf.Append(lno)

	buf.WriteByte(stEntryBegin)
	writeStrings(buf, co.Symbols.Locals)
	writeStrings(buf, co.Symbols.Attrs)
	writeStrings(buf, co.Symbols.Frees)
	buf.WriteByte(stEntryEnd)

	buf.WriteByte(ctEntryBegin)
	entries := co.Consts.Entries()
	buf.WriteUint16(uint16(len(entries)))
	for _, ent := range entries {
		switch ent.Kind {
		case codeobj.ConstInt:
			buf.WriteByte(ctEntryInt)
			buf.WriteInt(int32(ent.I))
		case codeobj.ConstFloat:
			buf.WriteByte(ctEntryFloat)
			buf.WriteDouble(ent.F)
		case codeobj.ConstString:
			buf.WriteByte(ctEntryString)
			buf.WriteStr(ent.S)
		case codeobj.ConstCodeObj:
			buf.WriteByte(ctEntryCode)
			sub := codeobj.NewBuffer()
			writeBody(sub, ent.Code, true)
			buf.WriteUint16(uint16(sub.Len()))
			buf.Append(sub)
		}
	}
	buf.WriteByte(ctEntryEnd)

	writeRaw(buf, co.Bytecode)
}

func writeRaw(buf *codeobj.Buffer, raw []byte) {
	for _, b := range raw {
		buf.WriteByte(b)
	}
}

func writeStrings(buf *codeobj.Buffer, names []string) {
	buf.WriteUint16(uint16(len(names)))
	for _, n := range names {
		buf.WriteStr(n)
	}
}

// encodeLineRuns flattens the run table back into its wire bytes, with the
// terminating (0,0) sentinel (spec.md §6).
func encodeLineRuns(runs []codeobj.LineRun) *codeobj.Buffer {
	out := codeobj.NewBuffer()
	for _, r := range runs {
		out.WriteByte(r.InsDelta)
		out.WriteByte(r.LineDelta)
	}
	out.WriteByte(0)
	out.WriteByte(0)
	return out
}
