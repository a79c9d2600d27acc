// Package maincmd is Weaver's CLI command layer, adapted from nenuphar's
// internal/maincmd: a mainer.Parser-driven flag struct, mainer.CancelOnSignal
// for Ctrl-C handling, and a Main method returning a mainer.ExitCode. Unlike
// nenuphar's multi-phase compiler-subcommand dispatch (tokenize/parse/
// resolve, picked by reflection over Cmd's methods via buildCmds), Weaver's
// CLI surface is just two shapes per spec.md §6/SPEC_FULL.md §12 — run a
// file (or enter the REPL if none given) and disassemble a file — so Main
// dispatches directly instead of carrying over the reflection machinery.
package maincmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/caarlos0/env/v6"
	"github.com/mna/mainer"

	"github.com/swordsmanluke/weave/internal/logging"
	"github.com/swordsmanluke/weave/internal/replio"
	"github.com/swordsmanluke/weave/lang/chunk"
	"github.com/swordsmanluke/weave/lang/compiler"
	"github.com/swordsmanluke/weave/lang/weaver"
)

const binName = "weaver"

var shortUsage = fmt.Sprintf(`
usage: %s [<option>...] [FILE]
       %[1]s disasm FILE...
Run '%[1]s --help' for details.
`, binName)

var longUsage = fmt.Sprintf(`usage: %s [<option>...] [FILE]
       %[1]s disasm FILE...
       %[1]s -h|--help
       %[1]s -v|--version

Compiler and virtual machine for the Weave programming language. With FILE,
compiles and runs it; with no FILE, starts an interactive REPL. The disasm
subcommand prints each FILE's compiled bytecode instead of running it.

Valid flag options are:
       -h --help                 Show this help and exit.
       -v --version              Print version and exit.
       --log-level LEVEL         debug|info|warn|error (default info).
       --log-console             Also log to stderr when --log-file is set.
       --log-file PATH           Write logs to PATH.
       --log-format FORMAT       text|json (default text).
`, binName)

// Cmd is Weaver's flag-parsed CLI configuration, loaded by mainer.Parser
// from argv and, per SPEC_FULL.md §10.2, overlaid with WEAVER_* environment
// variables via caarlos0/env so an embedder can configure a batch job
// without touching argv.
type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help    bool `flag:"h,help"`
	Version bool `flag:"v,version"`

	LogLevel   string `flag:"log-level" env:"WEAVER_LOG_LEVEL" envDefault:"info"`
	LogConsole bool   `flag:"log-console" env:"WEAVER_LOG_CONSOLE"`
	LogFile    string `flag:"log-file" env:"WEAVER_LOG_FILE"`
	LogFormat  string `flag:"log-format" env:"WEAVER_LOG_FORMAT" envDefault:"text"`

	args []string
}

func (c *Cmd) SetArgs(args []string)    { c.args = args }
func (c *Cmd) SetFlags(map[string]bool) {}

func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}
	if len(c.args) > 0 && c.args[0] == "disasm" && len(c.args) < 2 {
		return fmt.Errorf("disasm: at least one file must be provided")
	}
	if len(c.args) > 1 && c.args[0] != "disasm" {
		return fmt.Errorf("at most one FILE may be given")
	}
	return nil
}

// Main parses args, wires up logging, then runs the requested file, enters
// the REPL, or disassembles, returning the exit code spec.md §6 defines.
func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	if err := env.Parse(c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid environment configuration: %s\n", err)
		return mainer.InvalidArgs
	}

	p := mainer.Parser{EnvVars: true, EnvPrefix: "WEAVER_"}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return mainer.InvalidArgs
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success
	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return mainer.Success
	}

	logger, closeLog, err := logging.New(logging.Config{
		Level:   c.LogLevel,
		Console: c.LogConsole,
		File:    c.LogFile,
		Format:  c.LogFormat,
	}, stdio.Stderr)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "logging setup failed: %s\n", err)
		return mainer.Failure
	}
	defer closeLog()

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)

	if len(c.args) > 0 && c.args[0] == "disasm" {
		return c.disasm(stdio, c.args[1:])
	}
	return c.run(ctx, stdio, logger)
}

func (c *Cmd) run(_ context.Context, stdio mainer.Stdio, logger *slog.Logger) mainer.ExitCode {
	m := weaver.NewVM()
	m.Stdout = stdio.Stdout
	m.Stderr = stdio.Stderr
	m.Stdin = stdio.Stdin

	if len(c.args) == 0 {
		if err := replio.Run(m, stdio.Stdin, stdio.Stdout, stdio.Stderr); err != nil {
			logger.Error("repl read error", "error", err)
			return mainer.Failure
		}
		return mainer.Success
	}

	path := c.args[0]
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n", err)
		return mainer.Failure
	}

	if _, err := weaver.Run(m, path, string(src)); err != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n", err)
		logger.Error("program failed", "error", err)
		return mainer.ExitCode(weaver.ExitCode(err))
	}
	return mainer.Success
}

func (c *Cmd) disasm(stdio mainer.Stdio, files []string) mainer.ExitCode {
	for _, path := range files {
		src, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(stdio.Stderr, "%s\n", err)
			return mainer.Failure
		}
		fn, errs := compiler.Compile(path, string(src))
		if len(errs) > 0 {
			for _, e := range errs {
				fmt.Fprintf(stdio.Stderr, "%s\n", e)
			}
			return mainer.ExitCode(weaver.ExitCompilationError)
		}
		disassembleRecursive(stdio, fn.Chunk, fn.Name)
	}
	return mainer.Success
}

func disassembleRecursive(stdio mainer.Stdio, c *chunk.Chunk, name string) {
	c.Disassemble(stdio.Stdout, name)
	for _, fn := range c.Functions {
		childName := fn.Name
		if childName == "" {
			childName = "<anonymous>"
		}
		disassembleRecursive(stdio, fn.Chunk, childName)
	}
}
