package stdlib

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rhoc-lang/rhoc/values"
)

// IOModule builds the `io` module's exports dictionary (SPEC_FULL.md
// §11.1): line-buffered stdin reads and stdout writes, surfacing failure
// as a catchable IOException rather than a FatalError (spec.md §7 — I/O
// failure is an ordinary program condition, not an internal defect).
func IOModule(stdin io.Reader, stdout io.Writer) *values.DictObj {
	if stdin == nil {
		stdin = os.Stdin
	}
	if stdout == nil {
		stdout = os.Stdout
	}
	reader := bufio.NewReader(stdin)

	d := values.NewDict()
	d.Set("read_line", nativeFn(func(args []values.Value) values.Value {
		if len(args) != 0 {
			return values.Throw(values.TypeExceptionClass, "read_line() takes no arguments")
		}
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			if err == io.EOF {
				return values.Null()
			}
			return values.Throw(values.IOExceptionClass, err.Error())
		}
		return values.NewString(strings.TrimRight(line, "\r\n"))
	}))
	d.Set("write", nativeFn(func(args []values.Value) values.Value {
		if len(args) != 1 {
			return values.Throw(values.TypeExceptionClass, "write() takes exactly one argument")
		}
		if _, err := fmt.Fprint(stdout, args[0].String()); err != nil {
			return values.Throw(values.IOExceptionClass, err.Error())
		}
		return values.Null()
	}))
	d.Set("write_line", nativeFn(func(args []values.Value) values.Value {
		if len(args) != 1 {
			return values.Throw(values.TypeExceptionClass, "write_line() takes exactly one argument")
		}
		if _, err := fmt.Fprintln(stdout, args[0].String()); err != nil {
			return values.Throw(values.IOExceptionClass, err.Error())
		}
		return values.Null()
	}))
	return d
}
