// Package codegen implements spec.md §4.7–§4.9: the dual location-counter
// section manager and the four ordered passes that turn a validated AST
// (upstream, §1 out-of-scope lexer/parser territory) into a pkg/obj.Object.
// Grounded on original_source/projects/g10-asm/codegen.cpp and
// original_source/projects/g10asm/codegen.cpp's two-pass resolve/emit shape,
// adapted to this module's tagged-variant AST and the corrected §4.4 opcode
// layout.
package codegen

import (
	"github.com/dgdev1024/g10/pkg/asmeval"
	"github.com/dgdev1024/g10/pkg/obj"
)

// region selects which half of the dual location counter is live.
type region int

const (
	regionROM region = iota
	regionRAM
)

const (
	defaultRomLC uint32 = 0x2000
	defaultRamLC uint32 = 0x80000000
	ramCeiling   uint32 = 0x80000000
	ivtBase      uint32 = 0x00001000
	ivtSlotSize  uint32 = 0x80
)

// labelEntry records a label's resolved section and address, populated in
// Pass 1 and consumed in Pass 2, per spec.md §3's "label map".
type labelEntry struct {
	sectionIndex int
	address      uint32
}

// variable is a `.let`/`.const` binding in codegen's process-local
// environment, cleared at the start of each run per spec.md §5.
type variable struct {
	value    asmeval.Value
	constant bool
}

// State is the transient codegen state described by spec.md §3: the dual
// location counter, the label map, the disjoint global/extern name sets,
// and the object under construction.
type State struct {
	Object *obj.Object

	region region
	romLC  uint32
	ramLC  uint32

	currentSection int // index into Object.Sections; -1 when none open

	labels  map[string]labelEntry
	globals map[string]bool
	externs map[string]bool
	vars    map[string]variable

	eval *asmeval.Evaluator
}

// New returns a State with the default location counters from spec.md §3.
func New() *State {
	s := &State{
		Object:         obj.New(),
		region:         regionROM,
		romLC:          defaultRomLC,
		ramLC:          defaultRamLC,
		currentSection: -1,
		labels:         make(map[string]labelEntry),
		globals:        make(map[string]bool),
		externs:        make(map[string]bool),
		vars:           make(map[string]variable),
	}
	s.eval = asmeval.New(s)
	return s
}

// liveLC returns the currently selected location counter.
func (s *State) liveLC() uint32 {
	if s.region == regionRAM {
		return s.ramLC
	}
	return s.romLC
}

// setLiveLC updates whichever location counter is currently selected.
func (s *State) setLiveLC(addr uint32) {
	if s.region == regionRAM {
		s.ramLC = addr
	} else {
		s.romLC = addr
	}
}

// advanceLC moves the live location counter forward by n bytes.
func (s *State) advanceLC(n uint32) {
	s.setLiveLC(s.liveLC() + n)
}

// inRAM reports whether the live location counter currently sits in the RAM
// half of the address space, per spec.md §3's "ROM (MSB=0) versus RAM
// (MSB=1)" region definition — derived from the address itself rather than
// only the region selector, so a `.org` that lands outside the selected
// half is still caught by address, not by which counter happened to move.
func (s *State) inRAM() bool { return s.liveLC() >= ramCeiling }
