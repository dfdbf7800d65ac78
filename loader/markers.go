// Package loader implements C4: it turns a .rhoc byte stream into a
// CodeObject tree, and a CodeObject tree back into a .rhoc byte stream
// (spec.md §4.4, §6).
package loader

// Wire-format marker bytes (spec.md §6). Distinct from the opcodes.Op
// space (0x30+) so a loader desync is caught early rather than silently
// misparsed as bytecode.
const (
	magic0 = 0xFE
	magic1 = 0xED
	magic2 = 0xF0
	magic3 = 0x0D

	stEntryBegin = 0x10
	stEntryEnd   = 0x11

	ctEntryBegin  = 0x20
	ctEntryInt    = 0x21
	ctEntryFloat  = 0x22
	ctEntryString = 0x23
	ctEntryCode   = 0x24
	ctEntryEnd    = 0x25
)
