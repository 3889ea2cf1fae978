// vslower is a thin demonstration CLI around the AST->LLIR lowering core: it
// loads a JSON-encoded ast.Program (the external boundary format spec.md §6
// describes as "produced by a parser the core does not own"), runs
// src/driver.Compile, and writes the finished module's textual IR.
//
// Flag parsing follows the teacher's util/args.go style: a manual argv scan
// rather than a flag-parsing library, since no example in the pack directly
// imports one (spec.md's driver/CLI is explicitly out of core scope; this
// file exists only to exercise the core end to end).
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"vslower/src/driver"
	"vslower/src/llir"
	"vslower/src/registry"
)

var (
	red    = color.New(color.FgRed).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
)

type cliOptions struct {
	Src     string
	Out     string
	Config  string
	Verbose bool
}

func parseArgs(args []string) (cliOptions, error) {
	opt := cliOptions{}
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-h", "-help", "--help":
			printHelp()
			os.Exit(registry.ExitNoError)
		case "-o":
			if i+1 >= len(args) {
				return opt, fmt.Errorf("got flag %s but no argument", args[i])
			}
			opt.Out = args[i+1]
			i++
		case "-c":
			if i+1 >= len(args) {
				return opt, fmt.Errorf("got flag %s but no argument", args[i])
			}
			opt.Config = args[i+1]
			i++
		case "-vb":
			opt.Verbose = true
		default:
			if strings.HasPrefix(args[i], "-") {
				return opt, fmt.Errorf("unexpected flag: %s", args[i])
			}
			opt.Src = args[i]
		}
	}
	if opt.Src == "" {
		return opt, fmt.Errorf("no input file given")
	}
	return opt, nil
}

func printHelp() {
	fmt.Println("vslower [-o out.ll] [-c config.yaml] [-vb] <program.json>")
	fmt.Println("  -o   path to write the emitted LLIR text to (default: stdout)")
	fmt.Println("  -c   optional YAML config file (module_name, verbose)")
	fmt.Println("  -vb  verbose: print the emitted IR to stdout even when -o is set")
}

func run(opt cliOptions) error {
	cfg := driver.Config{}
	if opt.Config != "" {
		loaded, err := driver.LoadConfig(opt.Config)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	verbose := opt.Verbose || cfg.Verbose

	data, err := os.ReadFile(opt.Src)
	if err != nil {
		return fmt.Errorf("reading %s: %w", opt.Src, err)
	}
	program, err := decodeProgram(data)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", opt.Src, err)
	}

	name := cfg.ModuleName
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(opt.Src), filepath.Ext(opt.Src))
	}
	ctx := llir.NewContext(name)
	defer ctx.Dispose()

	if _, err := driver.Compile(ctx, program); err != nil {
		return err
	}

	ir := ctx.Module.String()
	if opt.Out != "" {
		if err := os.WriteFile(opt.Out, []byte(ir), 0644); err != nil {
			return fmt.Errorf("writing %s: %w", opt.Out, err)
		}
		fmt.Println(green("wrote " + opt.Out))
	}
	if verbose || opt.Out == "" {
		fmt.Print(ir)
	}
	return nil
}

func main() {
	opt, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %s\n", red("argument error"), err)
		printHelp()
		os.Exit(registry.ExitError)
	}

	if err := run(opt); err != nil {
		// spec.md §6: a single nonzero exit code is used for every semantic
		// failure; registry.CompileError's differentiated Code values are
		// for future multi-error reporting, not for this edge's exit status.
		if ce, ok := err.(*registry.CompileError); ok {
			fmt.Fprintf(os.Stderr, "%s: %s\n", red("compile error"), ce.Error())
		} else {
			fmt.Fprintf(os.Stderr, "%s: %s\n", yellow("error"), err)
		}
		os.Exit(registry.ExitError)
	}
}
