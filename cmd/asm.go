package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dgdev1024/g10/internal/diag"
	"github.com/dgdev1024/g10/pkg/asmast"
	"github.com/dgdev1024/g10/pkg/codegen"
	"github.com/dgdev1024/g10/pkg/obj"
	"github.com/spf13/cobra"
)

// ErrNoSourceParser is returned when `g10 asm` is asked to assemble raw
// source text. Per spec.md §1 the lexer and parser that turn source text
// into a []asmast.Node are an upstream component this module assumes
// delivered, the same way the teacher's `cpu exec` delegates C source
// compilation to an external clang rather than reimplementing it. There is
// no in-tree equivalent to delegate to, so this is reported rather than
// faked.
var ErrNoSourceParser = errors.New("asm: no source lexer/parser wired into this build")

// SourceParser turns a source file into the AST Assemble consumes. It is a
// seam for whatever delivers tokens/AST upstream; the default reports
// ErrNoSourceParser.
var SourceParser = func(path string) ([]asmast.Node, error) {
	return nil, fmt.Errorf("%w: cannot assemble %q", ErrNoSourceParser, path)
}

// Assemble runs the codegen pipeline over an already-parsed program and
// returns the resulting object, or the first diagnostic any pass raises.
// This is the part of `asm` that is actually in scope and testable without
// a source parser.
func Assemble(nodes []asmast.Node) (*obj.Object, error) {
	return codegen.Generate(nodes)
}

var (
	asmOutPath string
)

var asmCmd = &cobra.Command{
	Use:   "asm <file>",
	Short: "Assemble a G10 source file into a relocatable object",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		nodes, err := SourceParser(path)
		if err != nil {
			return err
		}

		o, err := Assemble(nodes)
		if err != nil {
			var d *diag.Diagnostic
			if errors.As(err, &d) {
				fmt.Fprintln(os.Stderr, diag.Format(d))
			}
			return err
		}

		out := asmOutPath
		if out == "" {
			out = strings.TrimSuffix(path, ".g10asm") + ".o"
		}
		if err := o.Save(out); err != nil {
			return fmt.Errorf("asm: writing %q: %w", out, err)
		}
		fmt.Fprintf(os.Stderr, "wrote %s\n", out)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(asmCmd)
	asmCmd.Flags().StringVarP(&asmOutPath, "out", "o", "", "output object path (default: input with .o extension)")
}
