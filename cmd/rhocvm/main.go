// Command rhocvm runs compiled `.rhoc` modules and hosts an interactive
// session for exploring them. Since the lexer/parser/symbol-table
// builder sits outside this repository (spec.md §1 Non-goals), the
// session's unit of input is a path to an already-compiled `.rhoc`
// module rather than raw source text — each line loads and runs one
// module against the session's persistent VM, so top-level state
// (globals, live actors) accumulates the way a source-level REPL's
// would. Grounded on the teacher's cmd/hey/main.go interactive-shell
// flag, generalized from "parse one more line of PHP" to "load one more
// compiled module".
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v3"

	"github.com/rhoc-lang/rhoc/loader"
	"github.com/rhoc-lang/rhoc/vmconfig"
	"github.com/rhoc-lang/rhoc/vmfactory"
)

func main() {
	app := &cli.Command{
		Name:  "rhocvm",
		Usage: "run rhoc bytecode modules",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "path to rhoc.yaml", Value: "rhoc.yaml"},
			&cli.BoolFlag{Name: "profile", Usage: "print opcode profiling summary on exit"},
		},
		Commands: []*cli.Command{
			runCommand,
			replCommand,
		},
	}
	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "rhocvm: %v\n", err)
		os.Exit(1)
	}
}

func loadFactory(cmd *cli.Command) (*vmfactory.Factory, error) {
	cfg, err := vmconfig.Load(cmd.String("config"))
	if err != nil {
		return nil, err
	}
	if cmd.Bool("profile") {
		cfg.Profiling = true
	}
	return vmfactory.New(cfg), nil
}

var runCommand = &cli.Command{
	Name:      "run",
	Usage:     "run a compiled .rhoc module to completion",
	ArgsUsage: "<module.rhoc>",
	Action: func(ctx context.Context, cmd *cli.Command) error {
		path := cmd.Args().First()
		if path == "" {
			return fmt.Errorf("usage: rhocvm run <module.rhoc>")
		}
		f, err := loadFactory(cmd)
		if err != nil {
			return err
		}
		co, ferr := loader.Load(path)
		if ferr != nil {
			return ferr
		}
		machine := f.CreateVM()
		result := machine.RunModule(co)
		machine.Shutdown()
		if f.Config().Profiling {
			fmt.Fprintln(os.Stderr, machine.Profiler.Render())
		}
		if result.IsExc() || result.IsError() {
			fmt.Fprintln(os.Stderr, result.String())
			os.Exit(1)
		}
		return nil
	},
}

var replCommand = &cli.Command{
	Name:  "repl",
	Usage: "interactively load and run compiled modules against one persistent session",
	Action: func(ctx context.Context, cmd *cli.Command) error {
		f, err := loadFactory(cmd)
		if err != nil {
			return err
		}
		machine := f.CreateVM()
		defer machine.Shutdown()

		interactive := isatty.IsTerminal(os.Stdin.Fd())
		prompt := ""
		if interactive {
			prompt = "rhoc> "
		}
		rl, err := readline.New(prompt)
		if err != nil {
			return err
		}
		defer rl.Close()

		for {
			line, err := rl.Readline()
			if err != nil {
				return nil
			}
			path := strings.TrimSpace(line)
			if path == "" {
				continue
			}
			if path == "exit" || path == "quit" {
				return nil
			}
			co, ferr := loader.Load(path)
			if ferr != nil {
				fmt.Fprintln(os.Stderr, ferr)
				continue
			}
			result := machine.RunModule(co)
			if result.IsExc() || result.IsError() {
				fmt.Fprintln(os.Stderr, result.String())
				continue
			}
			if !result.IsNull() {
				fmt.Println(result.String())
			}
		}
	},
}
