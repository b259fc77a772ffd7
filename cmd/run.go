package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/dgdev1024/g10/pkg/cpu"
	"github.com/dgdev1024/g10/pkg/cpubus"
	"github.com/dgdev1024/g10/pkg/cpuregs"
	"github.com/dgdev1024/g10/pkg/obj"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// ErrUnresolvedRelocations is returned when `g10 run` is asked to execute an
// object that still carries relocations. Per spec.md §1 the linker that
// resolves those fixups against other objects is out of scope; `run`
// executes a single, already-self-contained object directly.
var ErrUnresolvedRelocations = errors.New("run: object has unresolved relocations; link it first")

var (
	runROMSize   uint32
	runRAMSize   uint32
	runMaxSteps  int
	runTrace     bool
	runVerbose   bool
)

// Trace coloring, grounded on the teacher's cmd/cpu/debug.go per-role color
// variables.
var (
	traceStep = color.New(color.FgHiBlack)
	tracePC   = color.New(color.FgCyan)
	traceReg  = color.New(color.FgGreen)
	traceFlag = color.New(color.FgYellow)
)

var runCmd = &cobra.Command{
	Use:   "run <file.o>",
	Short: "Load a G10 object and execute it against the CPU simulator",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		o, err := obj.Load(args[0])
		if err != nil {
			return err
		}
		bus, err := loadImage(o, runROMSize, runRAMSize)
		if err != nil {
			return err
		}

		c := cpu.New(bus)
		if entry, ok := o.FindSymbol("main"); ok && o.Symbols[entry].Binding == obj.BindingGlobal {
			c.Regs.PC = o.Symbols[entry].Value
		}

		steps, err := run(c, runMaxSteps, runTrace)
		if runVerbose || runTrace {
			dumpState(c, steps)
		}
		if err != nil {
			return err
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(runCmd)
	runCmd.Flags().Uint32Var(&runROMSize, "rom", 0x20000, "ROM region size in bytes (backing store, not the architectural 2GiB ceiling)")
	runCmd.Flags().Uint32Var(&runRAMSize, "ram", 0x10000, "RAM region size in bytes")
	runCmd.Flags().IntVarP(&runMaxSteps, "max-steps", "n", 0, "maximum steps to execute (0 = unlimited, stop only on HALT/STOP)")
	runCmd.Flags().BoolVarP(&runTrace, "trace", "t", false, "print each fetch/execute step")
	runCmd.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "print final register state")
}

// loadImage builds a FlatBus sized per romSize/ramSize and loads every
// non-BSS section that carries data at its virtual address; the Alloc flag
// is not consulted. BSS sections reserve
// RAM space but carry no initializer, matching spec.md §3's "bss" region.
func loadImage(o *obj.Object, romSize, ramSize uint32) (*cpubus.FlatBus, error) {
	if len(o.Relocations) > 0 {
		return nil, ErrUnresolvedRelocations
	}

	bus := cpubus.NewFlatBus(romSize, ramSize)
	for i := range o.Sections {
		sec := &o.Sections[i]
		if sec.Type == obj.SectionBss || len(sec.Data) == 0 {
			continue
		}
		if sec.VirtualAddress >= cpubus.ROMBoundary {
			return nil, fmt.Errorf("run: section %q loads into RAM at 0x%08X; only BSS may live there", sec.Name, sec.VirtualAddress)
		}
		if err := bus.LoadROM(sec.VirtualAddress, sec.Data); err != nil {
			return nil, fmt.Errorf("run: loading section %q: %w", sec.Name, err)
		}
	}
	bus.Seal()
	return bus, nil
}

// run drives c.Step() until it halts/stops or maxSteps is reached (0 means
// unbounded), optionally printing a trace line before each fetch. HALT ends
// the run here rather than waiting for a wake-up interrupt: this FlatBus has
// no peripheral capable of raising one, so a halted CPU would otherwise spin
// forever ticking cycles that never resume it.
func run(c *cpu.CPU, maxSteps int, trace bool) (int, error) {
	steps := 0
	for {
		if c.IsStopped() || c.IsHalted() {
			return steps, nil
		}
		if maxSteps > 0 && steps >= maxSteps {
			return steps, nil
		}
		if trace {
			printTraceStep(c, steps)
		}
		// Step returns an error for a genuine double fault and for any bus
		// fault, which pkg/cpu passes up as an error rather than raising a
		// CPU exception; ordinary CPU exceptions are
		// recoverable and are serviced in-CPU at the vector-0 handler, so
		// they never reach here as an error.
		if err := c.Step(); err != nil {
			return steps, err
		}
		steps++
	}
}

func printTraceStep(c *cpu.CPU, step int) {
	fmt.Fprintf(os.Stderr, "[%s] %s=%s %s=%s\n",
		traceStep.Sprintf("%6d", step),
		traceReg.Sprint("PC"), tracePC.Sprintf("0x%08X", c.Regs.PC),
		traceReg.Sprint("FLAGS"), traceFlag.Sprint(c.Regs.Flags.String()))
}

func dumpState(c *cpu.CPU, steps int) {
	fmt.Fprintf(os.Stderr, "\n=== %s ===\n", stopReason(c))
	fmt.Fprintf(os.Stderr, "steps executed: %d\n", steps)
	fmt.Fprintf(os.Stderr, "PC=0x%08X SP=0x%08X FLAGS=%s\n", c.Regs.PC, c.Regs.SP, c.Regs.Flags.String())
	for i := 0; i < 16; i++ {
		fmt.Fprintf(os.Stderr, "D%-2d=0x%08X ", i, c.Regs.Read(cpuregs.D(i)))
		if i%4 == 3 {
			fmt.Fprintln(os.Stderr)
		}
	}
}

func stopReason(c *cpu.CPU) string {
	switch {
	case c.IsDoubleFaulted():
		return "double fault"
	case c.IsStopped():
		return "stopped"
	case c.IsHalted():
		return "halted"
	default:
		return "step limit reached"
	}
}
