package cpu

import "github.com/dgdev1024/g10/pkg/cpuregs"

// Shift/swap family (0x80-0x85) and rotate family (0x90-0x97), per spec
// §4.4's opcode tables. Shifts and rotates only ever operate on a byte
// register (the rotates also have L0-only accumulator forms); SWAP has one
// opcode per width: nibbles within a byte register, bytes within a word
// register, words within a full register.
const (
	opSlaLx   uint8 = 0x80
	opSraLx   uint8 = 0x81
	opSrlLx   uint8 = 0x82
	opSwapLx  uint8 = 0x83 // nibble swap within a byte register
	opSwapWx  uint8 = 0x84 // byte swap within a word register
	opSwapDx  uint8 = 0x85 // word swap within a full register

	opRla  uint8 = 0x90 // rotate L0 left through carry
	opRlLx uint8 = 0x91
	opRlca uint8 = 0x92 // rotate L0 left circular
	opRlcLx uint8 = 0x93
	opRra  uint8 = 0x94 // rotate L0 right through carry
	opRrLx uint8 = 0x95
	opRrca uint8 = 0x96 // rotate L0 right circular
	opRrcLx uint8 = 0x97
)

func (c *CPU) execShift(opcode uint16) error {
	x := nibbleX(opcode)

	switch family(opcode) {
	case opSlaLx:
		result, flags := cpuregs.Sla8(uint8(c.Regs.Read(lReg(x))), c.Regs.Flags)
		c.Regs.Write(lReg(x), uint32(result))
		c.Regs.Flags = flags
		c.tick(1)
		return nil
	case opSraLx:
		result, flags := cpuregs.Sra8(uint8(c.Regs.Read(lReg(x))), c.Regs.Flags)
		c.Regs.Write(lReg(x), uint32(result))
		c.Regs.Flags = flags
		c.tick(1)
		return nil
	case opSrlLx:
		result, flags := cpuregs.Srl8(uint8(c.Regs.Read(lReg(x))), c.Regs.Flags)
		c.Regs.Write(lReg(x), uint32(result))
		c.Regs.Flags = flags
		c.tick(1)
		return nil
	case opSwapLx:
		result, flags := cpuregs.Swap4(uint8(c.Regs.Read(lReg(x))), c.Regs.Flags)
		c.Regs.Write(lReg(x), uint32(result))
		c.Regs.Flags = flags
		c.tick(1)
		return nil
	case opSwapWx:
		result, flags := cpuregs.Swap8(uint16(c.Regs.Read(wReg(x))), c.Regs.Flags)
		c.Regs.Write(wReg(x), uint32(result))
		c.Regs.Flags = flags
		c.tick(1)
		return nil
	case opSwapDx:
		result, flags := cpuregs.Swap16(c.Regs.Read(dReg(x)), c.Regs.Flags)
		c.Regs.Write(dReg(x), result)
		c.Regs.Flags = flags
		c.tick(1)
		return nil
	default:
		return c.raiseException(ExceptionInvalidInstr)
	}
}

func (c *CPU) execRotate(opcode uint16) error {
	x := nibbleX(opcode)

	switch family(opcode) {
	case opRla:
		result, flags := cpuregs.Rl8(uint8(c.Regs.Read(lReg(0))), c.Regs.Flags)
		c.Regs.Write(lReg(0), uint32(result))
		c.Regs.Flags = flags
		c.tick(1)
		return nil
	case opRlLx:
		result, flags := cpuregs.Rl8(uint8(c.Regs.Read(lReg(x))), c.Regs.Flags)
		c.Regs.Write(lReg(x), uint32(result))
		c.Regs.Flags = flags
		c.tick(1)
		return nil
	case opRlca:
		result, flags := cpuregs.Rlc8(uint8(c.Regs.Read(lReg(0))))
		c.Regs.Write(lReg(0), uint32(result))
		c.Regs.Flags = flags
		c.tick(1)
		return nil
	case opRlcLx:
		result, flags := cpuregs.Rlc8(uint8(c.Regs.Read(lReg(x))))
		c.Regs.Write(lReg(x), uint32(result))
		c.Regs.Flags = flags
		c.tick(1)
		return nil
	case opRra:
		result, flags := cpuregs.Rr8(uint8(c.Regs.Read(lReg(0))), c.Regs.Flags)
		c.Regs.Write(lReg(0), uint32(result))
		c.Regs.Flags = flags
		c.tick(1)
		return nil
	case opRrLx:
		result, flags := cpuregs.Rr8(uint8(c.Regs.Read(lReg(x))), c.Regs.Flags)
		c.Regs.Write(lReg(x), uint32(result))
		c.Regs.Flags = flags
		c.tick(1)
		return nil
	case opRrca:
		result, flags := cpuregs.Rrc8(uint8(c.Regs.Read(lReg(0))))
		c.Regs.Write(lReg(0), uint32(result))
		c.Regs.Flags = flags
		c.tick(1)
		return nil
	case opRrcLx:
		result, flags := cpuregs.Rrc8(uint8(c.Regs.Read(lReg(x))))
		c.Regs.Write(lReg(x), uint32(result))
		c.Regs.Flags = flags
		c.tick(1)
		return nil
	default:
		return c.raiseException(ExceptionInvalidInstr)
	}
}
