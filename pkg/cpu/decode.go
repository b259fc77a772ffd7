package cpu

import "github.com/dgdev1024/g10/pkg/cpuregs"

// family extracts the high byte of a fetched 16-bit opcode, which selects
// the instruction family per spec §4.4's opcode tables.
func family(opcode uint16) uint8 { return uint8(opcode >> 8) }

// nibbleX and nibbleY extract the high and low nibble of the opcode's low
// byte, used throughout the load/store/move/arithmetic families to encode
// register indices, condition codes, and bit positions.
func nibbleX(opcode uint16) uint8 { return uint8(opcode>>4) & 0xF }
func nibbleY(opcode uint16) uint8 { return uint8(opcode) & 0xF }

// ConditionCode is one of the seven branch conditions defined in spec §4.4.
// Code 7 is unused; G10 fixes condition 0 as "no condition" (NC), resolving
// the spec's Open Question about that choice.
type ConditionCode uint8

const (
	CondAlways      ConditionCode = 0 // NC
	CondZeroSet     ConditionCode = 1 // ZS
	CondZeroClear   ConditionCode = 2 // ZC
	CondCarrySet    ConditionCode = 3 // CS
	CondCarryClear  ConditionCode = 4 // CC
	CondOverflowSet ConditionCode = 5 // VS
	CondOverflowClear ConditionCode = 6 // VC
)

// evaluate reports whether the condition is currently met given FLAGS.
func (c *CPU) evaluateCondition(cc ConditionCode) bool {
	f := c.Regs.Flags
	switch cc {
	case CondAlways:
		return true
	case CondZeroSet:
		return f.Z()
	case CondZeroClear:
		return !f.Z()
	case CondCarrySet:
		return f.C()
	case CondCarryClear:
		return !f.C()
	case CondOverflowSet:
		return f.V()
	case CondOverflowClear:
		return !f.V()
	default:
		return false
	}
}

func dReg(n uint8) cpuregs.Reg { return cpuregs.D(int(n)) }
func wReg(n uint8) cpuregs.Reg { return cpuregs.W(int(n)) }
func lReg(n uint8) cpuregs.Reg { return cpuregs.L(int(n)) }
func hReg(n uint8) cpuregs.Reg { return cpuregs.H(int(n)) }
