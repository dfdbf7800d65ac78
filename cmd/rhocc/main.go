// Command rhocc is rhoc's offline compiler front end: it turns the JSON
// AST an external lexer/parser/symbol-table builder emits (spec.md §1 —
// that pipeline stage is explicitly out of scope for this repository)
// into a `.rhoc` bytecode module, and disassembles a `.rhoc` module back
// into readable mnemonics. Grounded on the teacher's cmd/hey/main.go
// cli.Command tree, rewritten from PHP's "parse+compile+run one file" to
// rhoc's "compile" / "disasm" split.
package main

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/rhoc-lang/rhoc/ast"
	"github.com/rhoc-lang/rhoc/codeobj"
	"github.com/rhoc-lang/rhoc/compiler"
	"github.com/rhoc-lang/rhoc/loader"
	"github.com/rhoc-lang/rhoc/opcodes"
)

func main() {
	app := &cli.Command{
		Name:  "rhocc",
		Usage: "rhoc bytecode compiler/disassembler",
		Commands: []*cli.Command{
			compileCommand,
			disasmCommand,
		},
	}
	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "rhocc: %v\n", err)
		os.Exit(1)
	}
}

var compileCommand = &cli.Command{
	Name:      "compile",
	Usage:     "compile a JSON AST program into a .rhoc module",
	ArgsUsage: "<in.json> <out.rhoc>",
	Action: func(ctx context.Context, cmd *cli.Command) error {
		in, out := cmd.Args().Get(0), cmd.Args().Get(1)
		if in == "" || out == "" {
			return fmt.Errorf("usage: rhocc compile <in.json> <out.rhoc>")
		}
		raw, err := os.ReadFile(in)
		if err != nil {
			return err
		}
		prog, err := ast.DecodeProgram(raw)
		if err != nil {
			return err
		}
		co, err := compiler.CompileModule(prog)
		if err != nil {
			return fmt.Errorf("compile error: %w", err)
		}
		return os.WriteFile(out, loader.Write(co), 0o644)
	},
}

var disasmCommand = &cli.Command{
	Name:      "disasm",
	Usage:     "disassemble a .rhoc module to stdout",
	ArgsUsage: "<module.rhoc>",
	Action: func(ctx context.Context, cmd *cli.Command) error {
		path := cmd.Args().First()
		if path == "" {
			return fmt.Errorf("usage: rhocc disasm <module.rhoc>")
		}
		co, ferr := loader.Load(path)
		if ferr != nil {
			return ferr
		}
		disasm(os.Stdout, co, "")
		return nil
	},
}

// disasm prints one code object's instructions, recursing into nested
// CT_ENTRY_CODEOBJ constants with an indented name header (spec.md §6).
func disasm(w io.Writer, co *codeobj.CodeObject, indent string) {
	fmt.Fprintf(w, "%s%s(argc=%d stack=%d try=%d)\n", indent, co.Name, co.ArgCount, co.StackDepth, co.TryCatchDepth)
	code := co.Bytecode
	for pos := 0; pos < len(code); {
		op := opcodes.Op(code[pos])
		size := opcodes.OperandSize(op)
		line := co.LineForOffset(pos)
		switch size {
		case 0:
			fmt.Fprintf(w, "%s  %04d  L%-5d %s\n", indent, pos, line, op)
		case 2:
			operand := binary.LittleEndian.Uint16(code[pos+1 : pos+3])
			fmt.Fprintf(w, "%s  %04d  L%-5d %-22s %d\n", indent, pos, line, op, operand)
		case 4:
			a := binary.LittleEndian.Uint16(code[pos+1 : pos+3])
			b := binary.LittleEndian.Uint16(code[pos+3 : pos+5])
			fmt.Fprintf(w, "%s  %04d  L%-5d %-22s %d, %d\n", indent, pos, line, op, a, b)
		}
		pos += 1 + size
	}
	for i, c := range co.Consts.Entries() {
		if c.Kind == codeobj.ConstCodeObj {
			fmt.Fprintf(w, "%s  -- const %d --\n", indent, i)
			disasm(w, c.Code, indent+"  ")
		}
	}
}
