package cpu

import "github.com/dgdev1024/g10/pkg/cpuregs"

// 8-bit arithmetic family, per original_source/projects/g10/cpu.hpp. The
// ADD/ADC/SUB/SBC forms target the accumulator L0, per spec §4.2's
// "accumulator destination" invariant; INC/DEC act on any Lx or on the byte
// at [Dx].
const (
	opAddL0Imm8 uint8 = 0x50
	opAddL0Ly   uint8 = 0x51
	opAddL0PDy  uint8 = 0x52
	opAdcL0Imm8 uint8 = 0x53
	opAdcL0Ly   uint8 = 0x54
	opAdcL0PDy  uint8 = 0x55
	opSubL0Imm8 uint8 = 0x56
	opSubL0Ly   uint8 = 0x57
	opSubL0PDy  uint8 = 0x58
	opSbcL0Imm8 uint8 = 0x59
	opSbcL0Ly   uint8 = 0x5A
	opSbcL0PDy  uint8 = 0x5B
	opIncLx     uint8 = 0x5C
	opIncPDx    uint8 = 0x5D
	opDecLx     uint8 = 0x5E
	opDecPDx    uint8 = 0x5F
)

// 16-bit and 32-bit arithmetic, per spec §4.4's "0x60..0x6F" family.
const (
	opAddW0Imm16 uint8 = 0x60
	opAddW0Wy    uint8 = 0x61
	opSubW0Imm16 uint8 = 0x62
	opSubW0Wy    uint8 = 0x63
	opCmpW0Imm16 uint8 = 0x64
	opCmpW0Wy    uint8 = 0x65
	opIncWx      uint8 = 0x66
	opDecWx      uint8 = 0x67
	opAddD0Imm32 uint8 = 0x68
	opAddD0Dy    uint8 = 0x69
	opSubD0Imm32 uint8 = 0x6A
	opSubD0Dy    uint8 = 0x6B
	opCmpD0Imm32 uint8 = 0x6C
	opCmpD0Dy    uint8 = 0x6D
	opIncDx      uint8 = 0x6E
	opDecDx      uint8 = 0x6F
)

// 8-bit logic family: AND/OR/XOR/NOT/CMP, per spec §4.4's "0x70..0x7F"
// family.
const (
	opAndL0Imm8 uint8 = 0x70
	opAndL0Ly   uint8 = 0x71
	opOrL0Imm8  uint8 = 0x72
	opOrL0Ly    uint8 = 0x73
	opXorL0Imm8 uint8 = 0x74
	opXorL0Ly   uint8 = 0x75
	opNotL0     uint8 = 0x76
	opCmpL0Imm8 uint8 = 0x77
	opCmpL0Ly   uint8 = 0x78
	opCmpL0PDy  uint8 = 0x79
)

func (c *CPU) execArith8(opcode uint16) error {
	x, y := nibbleX(opcode), nibbleY(opcode)
	l0 := uint8(c.Regs.Read(lReg(0)))

	binop := func(rhs uint8, op func(a, b uint8) (uint8, cpuregs.Flags)) {
		result, flags := op(l0, rhs)
		c.Regs.Write(lReg(0), uint32(result))
		c.Regs.Flags = flags
	}

	switch family(opcode) {
	case opAddL0Imm8:
		imm, err := c.fetchImm8()
		if err != nil {
			return err
		}
		binop(imm, cpuregs.Add8)
		return nil
	case opAddL0Ly:
		binop(uint8(c.Regs.Read(lReg(y))), cpuregs.Add8)
		c.tick(1)
		return nil
	case opAddL0PDy:
		v, err := c.readByte(c.Regs.Read(dReg(y)))
		if err != nil {
			return err
		}
		binop(v, cpuregs.Add8)
		return nil
	case opAdcL0Imm8:
		imm, err := c.fetchImm8()
		if err != nil {
			return err
		}
		result, flags := cpuregs.Adc8(l0, imm, c.Regs.Flags.C())
		c.Regs.Write(lReg(0), uint32(result))
		c.Regs.Flags = flags
		return nil
	case opAdcL0Ly:
		result, flags := cpuregs.Adc8(l0, uint8(c.Regs.Read(lReg(y))), c.Regs.Flags.C())
		c.Regs.Write(lReg(0), uint32(result))
		c.Regs.Flags = flags
		c.tick(1)
		return nil
	case opAdcL0PDy:
		v, err := c.readByte(c.Regs.Read(dReg(y)))
		if err != nil {
			return err
		}
		result, flags := cpuregs.Adc8(l0, v, c.Regs.Flags.C())
		c.Regs.Write(lReg(0), uint32(result))
		c.Regs.Flags = flags
		return nil
	case opSubL0Imm8:
		imm, err := c.fetchImm8()
		if err != nil {
			return err
		}
		binop(imm, cpuregs.Sub8)
		return nil
	case opSubL0Ly:
		binop(uint8(c.Regs.Read(lReg(y))), cpuregs.Sub8)
		c.tick(1)
		return nil
	case opSubL0PDy:
		v, err := c.readByte(c.Regs.Read(dReg(y)))
		if err != nil {
			return err
		}
		binop(v, cpuregs.Sub8)
		return nil
	case opSbcL0Imm8:
		imm, err := c.fetchImm8()
		if err != nil {
			return err
		}
		result, flags := cpuregs.Sbc8(l0, imm, c.Regs.Flags.C())
		c.Regs.Write(lReg(0), uint32(result))
		c.Regs.Flags = flags
		return nil
	case opSbcL0Ly:
		result, flags := cpuregs.Sbc8(l0, uint8(c.Regs.Read(lReg(y))), c.Regs.Flags.C())
		c.Regs.Write(lReg(0), uint32(result))
		c.Regs.Flags = flags
		c.tick(1)
		return nil
	case opSbcL0PDy:
		v, err := c.readByte(c.Regs.Read(dReg(y)))
		if err != nil {
			return err
		}
		result, flags := cpuregs.Sbc8(l0, v, c.Regs.Flags.C())
		c.Regs.Write(lReg(0), uint32(result))
		c.Regs.Flags = flags
		return nil
	case opIncLx:
		result, flags := cpuregs.Inc8(uint8(c.Regs.Read(lReg(x))), c.Regs.Flags)
		c.Regs.Write(lReg(x), uint32(result))
		c.Regs.Flags = flags
		c.tick(1)
		return nil
	case opIncPDx:
		addr := c.Regs.Read(dReg(x))
		v, err := c.readByte(addr)
		if err != nil {
			return err
		}
		result, flags := cpuregs.Inc8(v, c.Regs.Flags)
		c.Regs.Flags = flags
		return c.writeByte(addr, result)
	case opDecLx:
		result, flags := cpuregs.Dec8(uint8(c.Regs.Read(lReg(x))), c.Regs.Flags)
		c.Regs.Write(lReg(x), uint32(result))
		c.Regs.Flags = flags
		c.tick(1)
		return nil
	case opDecPDx:
		addr := c.Regs.Read(dReg(x))
		v, err := c.readByte(addr)
		if err != nil {
			return err
		}
		result, flags := cpuregs.Dec8(v, c.Regs.Flags)
		c.Regs.Flags = flags
		return c.writeByte(addr, result)
	default:
		return c.raiseException(ExceptionInvalidInstr)
	}
}

func (c *CPU) execLogic8(opcode uint16) error {
	y := nibbleY(opcode)
	l0 := uint8(c.Regs.Read(lReg(0)))

	switch family(opcode) {
	case opAndL0Imm8:
		imm, err := c.fetchImm8()
		if err != nil {
			return err
		}
		result, flags := cpuregs.And8(l0, imm)
		c.Regs.Write(lReg(0), uint32(result))
		c.Regs.Flags = flags
		return nil
	case opAndL0Ly:
		result, flags := cpuregs.And8(l0, uint8(c.Regs.Read(lReg(y))))
		c.Regs.Write(lReg(0), uint32(result))
		c.Regs.Flags = flags
		c.tick(1)
		return nil
	case opOrL0Imm8:
		imm, err := c.fetchImm8()
		if err != nil {
			return err
		}
		result, flags := cpuregs.Or8(l0, imm)
		c.Regs.Write(lReg(0), uint32(result))
		c.Regs.Flags = flags
		return nil
	case opOrL0Ly:
		result, flags := cpuregs.Or8(l0, uint8(c.Regs.Read(lReg(y))))
		c.Regs.Write(lReg(0), uint32(result))
		c.Regs.Flags = flags
		c.tick(1)
		return nil
	case opXorL0Imm8:
		imm, err := c.fetchImm8()
		if err != nil {
			return err
		}
		result, flags := cpuregs.Xor8(l0, imm)
		c.Regs.Write(lReg(0), uint32(result))
		c.Regs.Flags = flags
		return nil
	case opXorL0Ly:
		result, flags := cpuregs.Xor8(l0, uint8(c.Regs.Read(lReg(y))))
		c.Regs.Write(lReg(0), uint32(result))
		c.Regs.Flags = flags
		c.tick(1)
		return nil
	case opNotL0:
		result, flags := cpuregs.Not8(l0, c.Regs.Flags)
		c.Regs.Write(lReg(0), uint32(result))
		c.Regs.Flags = flags
		c.tick(1)
		return nil
	case opCmpL0Imm8:
		imm, err := c.fetchImm8()
		if err != nil {
			return err
		}
		c.Regs.Flags = cpuregs.Cmp8(l0, imm)
		return nil
	case opCmpL0Ly:
		c.Regs.Flags = cpuregs.Cmp8(l0, uint8(c.Regs.Read(lReg(y))))
		c.tick(1)
		return nil
	case opCmpL0PDy:
		v, err := c.readByte(c.Regs.Read(dReg(y)))
		if err != nil {
			return err
		}
		c.Regs.Flags = cpuregs.Cmp8(l0, v)
		return nil
	default:
		return c.raiseException(ExceptionInvalidInstr)
	}
}

func (c *CPU) execArithWide(opcode uint16) error {
	x, y := nibbleX(opcode), nibbleY(opcode)

	switch family(opcode) {
	case opAddW0Imm16:
		imm, err := c.fetchImm16()
		if err != nil {
			return err
		}
		result, flags := cpuregs.Add16(uint16(c.Regs.Read(wReg(0))), imm)
		c.Regs.Write(wReg(0), uint32(result))
		c.Regs.Flags = flags
		return nil
	case opAddW0Wy:
		result, flags := cpuregs.Add16(uint16(c.Regs.Read(wReg(0))), uint16(c.Regs.Read(wReg(y))))
		c.Regs.Write(wReg(0), uint32(result))
		c.Regs.Flags = flags
		c.tick(1)
		return nil
	case opSubW0Imm16:
		imm, err := c.fetchImm16()
		if err != nil {
			return err
		}
		result, flags := cpuregs.Sub16(uint16(c.Regs.Read(wReg(0))), imm)
		c.Regs.Write(wReg(0), uint32(result))
		c.Regs.Flags = flags
		return nil
	case opSubW0Wy:
		result, flags := cpuregs.Sub16(uint16(c.Regs.Read(wReg(0))), uint16(c.Regs.Read(wReg(y))))
		c.Regs.Write(wReg(0), uint32(result))
		c.Regs.Flags = flags
		c.tick(1)
		return nil
	case opCmpW0Imm16:
		imm, err := c.fetchImm16()
		if err != nil {
			return err
		}
		c.Regs.Flags = cpuregs.Cmp16(uint16(c.Regs.Read(wReg(0))), imm)
		return nil
	case opCmpW0Wy:
		c.Regs.Flags = cpuregs.Cmp16(uint16(c.Regs.Read(wReg(0))), uint16(c.Regs.Read(wReg(y))))
		c.tick(1)
		return nil
	case opIncWx:
		result, flags := cpuregs.Inc16(uint16(c.Regs.Read(wReg(x))), c.Regs.Flags)
		c.Regs.Write(wReg(x), uint32(result))
		c.Regs.Flags = flags
		c.tick(1)
		return nil
	case opDecWx:
		result, flags := cpuregs.Dec16(uint16(c.Regs.Read(wReg(x))), c.Regs.Flags)
		c.Regs.Write(wReg(x), uint32(result))
		c.Regs.Flags = flags
		c.tick(1)
		return nil
	case opAddD0Imm32:
		imm, err := c.fetchImm32()
		if err != nil {
			return err
		}
		result, flags := cpuregs.Add32(c.Regs.Read(dReg(0)), imm)
		c.Regs.Write(dReg(0), result)
		c.Regs.Flags = flags
		return nil
	case opAddD0Dy:
		result, flags := cpuregs.Add32(c.Regs.Read(dReg(0)), c.Regs.Read(dReg(y)))
		c.Regs.Write(dReg(0), result)
		c.Regs.Flags = flags
		c.tick(1)
		return nil
	case opSubD0Imm32:
		imm, err := c.fetchImm32()
		if err != nil {
			return err
		}
		result, flags := cpuregs.Sub32(c.Regs.Read(dReg(0)), imm)
		c.Regs.Write(dReg(0), result)
		c.Regs.Flags = flags
		return nil
	case opSubD0Dy:
		result, flags := cpuregs.Sub32(c.Regs.Read(dReg(0)), c.Regs.Read(dReg(y)))
		c.Regs.Write(dReg(0), result)
		c.Regs.Flags = flags
		c.tick(1)
		return nil
	case opCmpD0Imm32:
		imm, err := c.fetchImm32()
		if err != nil {
			return err
		}
		c.Regs.Flags = cpuregs.Cmp32(c.Regs.Read(dReg(0)), imm)
		return nil
	case opCmpD0Dy:
		c.Regs.Flags = cpuregs.Cmp32(c.Regs.Read(dReg(0)), c.Regs.Read(dReg(y)))
		c.tick(1)
		return nil
	case opIncDx:
		result, flags := cpuregs.Inc32(c.Regs.Read(dReg(x)), c.Regs.Flags)
		c.Regs.Write(dReg(x), result)
		c.Regs.Flags = flags
		c.tick(1)
		return nil
	case opDecDx:
		result, flags := cpuregs.Dec32(c.Regs.Read(dReg(x)), c.Regs.Flags)
		c.Regs.Write(dReg(x), result)
		c.Regs.Flags = flags
		c.tick(1)
		return nil
	default:
		return c.raiseException(ExceptionInvalidInstr)
	}
}
