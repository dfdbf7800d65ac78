// Package stdlib implements rhoc's two built-in modules, `math` and `io`
// (spec.md §1, SPEC_FULL.md §11.1): thin, statically-allocated wrappers a
// program reaches via `import "math"` / `import "io"`.
package stdlib

import (
	"math"

	"github.com/rhoc-lang/rhoc/values"
)

// MathModule builds the `math` module's exports dictionary (SPEC_FULL.md
// §11.1). It is built fresh per call rather than cached as a package-level
// singleton since DictObj's values carry per-Value refcounts that a
// single shared instance would have to coordinate across every importing
// VM; the importer (vm/importer.go) caches the resulting Value itself.
func MathModule() *values.DictObj {
	d := values.NewDict()
	d.Set("pi", values.Float(math.Pi))
	d.Set("e", values.Float(math.E))
	d.Set("sqrt", nativeFn(mathSqrt))
	d.Set("pow", nativeFn(mathPow))
	d.Set("floor", nativeFn(mathFloor))
	d.Set("ceil", nativeFn(mathCeil))
	d.Set("abs", nativeFn(mathAbs))
	d.Set("min", nativeFn(mathMin))
	d.Set("max", nativeFn(mathMax))
	return d
}

func asFloat(v values.Value) (float64, bool) {
	switch v.Tag {
	case values.TagFloat:
		return v.F, true
	case values.TagInt:
		return float64(v.I), true
	}
	return 0, false
}

func oneArgFloat(args []values.Value, name string) (float64, values.Value, bool) {
	if len(args) != 1 {
		return 0, values.Throw(values.TypeExceptionClass, name+"() takes exactly one argument"), false
	}
	f, ok := asFloat(args[0])
	if !ok {
		return 0, values.Throw(values.TypeExceptionClass, name+"() requires a numeric argument"), false
	}
	return f, values.Value{}, true
}

func mathSqrt(args []values.Value) values.Value {
	f, exc, ok := oneArgFloat(args, "sqrt")
	if !ok {
		return exc
	}
	return values.Float(math.Sqrt(f))
}

func mathFloor(args []values.Value) values.Value {
	f, exc, ok := oneArgFloat(args, "floor")
	if !ok {
		return exc
	}
	return values.Float(math.Floor(f))
}

func mathCeil(args []values.Value) values.Value {
	f, exc, ok := oneArgFloat(args, "ceil")
	if !ok {
		return exc
	}
	return values.Float(math.Ceil(f))
}

func mathAbs(args []values.Value) values.Value {
	if len(args) != 1 {
		return values.Throw(values.TypeExceptionClass, "abs() takes exactly one argument")
	}
	if args[0].Tag == values.TagInt {
		if args[0].I < 0 {
			return values.Int(-args[0].I)
		}
		return args[0]
	}
	f, exc, ok := oneArgFloat(args, "abs")
	if !ok {
		return exc
	}
	return values.Float(math.Abs(f))
}

func mathPow(args []values.Value) values.Value {
	if len(args) != 2 {
		return values.Throw(values.TypeExceptionClass, "pow() takes exactly two arguments")
	}
	a, ok1 := asFloat(args[0])
	b, ok2 := asFloat(args[1])
	if !ok1 || !ok2 {
		return values.Throw(values.TypeExceptionClass, "pow() requires numeric arguments")
	}
	return values.Float(math.Pow(a, b))
}

func mathMin(args []values.Value) values.Value {
	return mathExtreme(args, "min", func(a, b float64) bool { return a < b })
}

func mathMax(args []values.Value) values.Value {
	return mathExtreme(args, "max", func(a, b float64) bool { return a > b })
}

func mathExtreme(args []values.Value, name string, better func(a, b float64) bool) values.Value {
	if len(args) != 2 {
		return values.Throw(values.TypeExceptionClass, name+"() takes exactly two arguments")
	}
	a, ok1 := asFloat(args[0])
	b, ok2 := asFloat(args[1])
	if !ok1 || !ok2 {
		return values.Throw(values.TypeExceptionClass, name+"() requires numeric arguments")
	}
	if better(a, b) {
		return args[0]
	}
	return args[1]
}

var nativeFnClass = &values.Class{Name: "NativeFunction"}

// nativeFn boxes a Go function as a callable Value with CALL's positional-
// only convention (named args are rejected — the stdlib surface never
// declares named parameters, spec.md §11.1).
func nativeFn(fn func([]values.Value) values.Value) values.Value {
	o := values.NewStaticObject(nativeFnClass)
	o.Native = fn
	return values.FromObject(o)
}

func init() {
	nativeFnClass.Call = func(callee values.Value, pos []values.Value, named map[string]values.Value) values.Value {
		if len(named) != 0 {
			return values.Throw(values.TypeExceptionClass, "stdlib functions do not accept named arguments")
		}
		fn := callee.Obj.Native.(func([]values.Value) values.Value)
		return fn(pos)
	}
}
