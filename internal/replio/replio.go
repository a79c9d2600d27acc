// Package replio implements the interactive line-editor REPL spec.md §1
// lists as an external collaborator. It reads a line at a time with
// bufio.Scanner (no third-party line-editor appears anywhere in the
// retrieved pack, so this one ambient piece is justified stdlib, see
// DESIGN.md), maintaining one persistent *vm.VM across lines the way
// spec.md §7 says "the embedder chooses whether to reuse the VM (REPL
// does)".
package replio

import (
	"bufio"
	"fmt"
	"io"

	"github.com/swordsmanluke/weave/lang/vm"
	"github.com/swordsmanluke/weave/lang/weaver"
)

// Run reads lines from in until EOF (Ctrl-D) or a read error, compiling and
// running each as its own top-level program against m, and prints each
// result to out and each error to errOut. It never returns an error for a normal
// EOF — that is the REPL's only clean exit.
func Run(m *vm.VM, in io.Reader, out, errOut io.Writer) error {
	scanner := bufio.NewScanner(in)
	fmt.Fprint(out, "> ")
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			fmt.Fprint(out, "> ")
			continue
		}

		v, err := weaver.Run(m, "<repl>", line)
		if err != nil {
			fmt.Fprintf(errOut, "%s\n", err)
		} else {
			fmt.Fprintf(out, "%s\n", m.Display(v))
		}
		fmt.Fprint(out, "> ")
	}
	return scanner.Err()
}
