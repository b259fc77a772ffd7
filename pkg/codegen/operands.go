package codegen

import (
	"fmt"
	"strconv"

	"github.com/dgdev1024/g10/pkg/cpu"
)

// regClass tags which overlapping register view a mnemonic operand names,
// mirroring pkg/cpuregs's D/W/H/L size classes.
type regClass int

const (
	regL regClass = iota
	regH
	regW
	regD
)

// parseRegister splits a register operand name ("l0".."l15", "h0".."h15",
// "w0".."w15", "d0".."d15") into its class and index.
func parseRegister(name string) (regClass, int, error) {
	if len(name) < 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrUnknownRegister, name)
	}
	var class regClass
	switch name[0] {
	case 'l', 'L':
		class = regL
	case 'h', 'H':
		class = regH
	case 'w', 'W':
		class = regW
	case 'd', 'D':
		class = regD
	default:
		return 0, 0, fmt.Errorf("%w: %q", ErrUnknownRegister, name)
	}
	idx, err := strconv.Atoi(name[1:])
	if err != nil || idx < 0 || idx > 15 {
		return 0, 0, fmt.Errorf("%w: %q", ErrUnknownRegister, name)
	}
	return class, idx, nil
}

// lookupCondition maps a condition mnemonic to the CPU's ConditionCode, per
// spec.md §9's fixed "0 = NC" open-question decision. Reused directly from
// pkg/cpu rather than redefined, so the encoder and the decoder in
// pkg/cpu/decode.go can never drift apart.
func lookupCondition(name string) (cpu.ConditionCode, error) {
	switch name {
	case "", "nc":
		return cpu.CondAlways, nil
	case "zs":
		return cpu.CondZeroSet, nil
	case "zc":
		return cpu.CondZeroClear, nil
	case "cs":
		return cpu.CondCarrySet, nil
	case "cc":
		return cpu.CondCarryClear, nil
	case "vs":
		return cpu.CondOverflowSet, nil
	case "vc":
		return cpu.CondOverflowClear, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownCondition, name)
	}
}

// fitsWidth reports whether v is representable in width bytes, either as an
// unsigned or a two's-complement signed quantity. Per spec.md §9's "Integer
// widths are semantically meaningful" design note, codegen must reject
// anything wider rather than silently truncate it.
func fitsWidth(v int64, width int) bool {
	bits := uint(width * 8)
	var umax int64 = 1<<bits - 1
	smin := -(int64(1) << (bits - 1))
	smax := int64(1)<<(bits-1) - 1
	return (v >= 0 && v <= umax) || (v >= smin && v <= smax)
}
