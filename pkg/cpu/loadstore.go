package cpu

// 8-bit load/store/move family, per original_source/projects/g10/cpu.hpp.
const (
	opLdLxImm8    uint8 = 0x10
	opLdLxAddr32  uint8 = 0x11
	opLdLxPDy     uint8 = 0x12
	opLdqLxAddr16 uint8 = 0x13
	opLdqLxPWy    uint8 = 0x14
	opLdpLxAddr8  uint8 = 0x15
	opLdpLxPLy    uint8 = 0x16
	opStAddr32Ly  uint8 = 0x17
	opStPDxLy     uint8 = 0x18
	opStqAddr16Ly uint8 = 0x19
	opStqPWxLy    uint8 = 0x1A
	opStpAddr8Ly  uint8 = 0x1B
	opStpPLxLy    uint8 = 0x1C
	opMvLxLy      uint8 = 0x1D
	opMvHxLy      uint8 = 0x1E
	opMvLxHy      uint8 = 0x1F
)

// 16-bit load/store/move family.
const (
	opLdWxImm16    uint8 = 0x20
	opLdWxAddr32   uint8 = 0x21
	opLdWxPDy      uint8 = 0x22
	opLdqWxAddr16  uint8 = 0x23
	opLdqWxPWy     uint8 = 0x24
	opStAddr32Wy   uint8 = 0x27
	opStPDxWy      uint8 = 0x28
	opStqAddr16Wy  uint8 = 0x29
	opStqPWxWy     uint8 = 0x2A
	opMvWxWy       uint8 = 0x2D
	opMwhDxWy      uint8 = 0x2E
	opMwlWxDy      uint8 = 0x2F
)

// 32-bit load/store/move/stack family.
const (
	opLdDxImm32    uint8 = 0x30
	opLdDxAddr32   uint8 = 0x31
	opLdDxPDy      uint8 = 0x32
	opLdqDxAddr16  uint8 = 0x33
	opLdqDxPWy     uint8 = 0x34
	opLspImm32     uint8 = 0x35
	opPopDx        uint8 = 0x36
	opStAddr32Dy   uint8 = 0x37
	opStPDxDy      uint8 = 0x38
	opStqAddr16Dy  uint8 = 0x39
	opStqPWxDy     uint8 = 0x3A
	opSspAddr32    uint8 = 0x3B
	opPushDy       uint8 = 0x3C
	opMvDxDy       uint8 = 0x3D
	opSpoDx        uint8 = 0x3E
	opSpiDy        uint8 = 0x3F
)

func (c *CPU) execLoadStore8(opcode uint16) error {
	x, y := nibbleX(opcode), nibbleY(opcode)

	switch family(opcode) {
	case opLdLxImm8:
		imm, err := c.fetchImm8()
		if err != nil {
			return err
		}
		c.Regs.Write(lReg(x), uint32(imm))
		return nil
	case opLdLxAddr32:
		addr, err := c.fetchImm32()
		if err != nil {
			return err
		}
		v, err := c.readByte(addr)
		if err != nil {
			return err
		}
		c.Regs.Write(lReg(x), uint32(v))
		return nil
	case opLdLxPDy:
		v, err := c.readByte(c.Regs.Read(dReg(y)))
		if err != nil {
			return err
		}
		c.Regs.Write(lReg(x), uint32(v))
		return nil
	case opLdqLxAddr16:
		addr, err := c.fetchImm16()
		if err != nil {
			return err
		}
		v, err := c.readByte(quickWindowBase + uint32(addr))
		if err != nil {
			return err
		}
		c.Regs.Write(lReg(x), uint32(v))
		return nil
	case opLdqLxPWy:
		v, err := c.readByte(quickWindowBase + c.Regs.Read(wReg(y)))
		if err != nil {
			return err
		}
		c.Regs.Write(lReg(x), uint32(v))
		return nil
	case opLdpLxAddr8:
		addr, err := c.fetchImm8()
		if err != nil {
			return err
		}
		v, err := c.readByte(portWindowBase + uint32(addr))
		if err != nil {
			return err
		}
		c.Regs.Write(lReg(x), uint32(v))
		return nil
	case opLdpLxPLy:
		v, err := c.readByte(portWindowBase + c.Regs.Read(lReg(y)))
		if err != nil {
			return err
		}
		c.Regs.Write(lReg(x), uint32(v))
		return nil
	case opStAddr32Ly:
		addr, err := c.fetchImm32()
		if err != nil {
			return err
		}
		return c.writeByte(addr, uint8(c.Regs.Read(lReg(y))))
	case opStPDxLy:
		return c.writeByte(c.Regs.Read(dReg(x)), uint8(c.Regs.Read(lReg(y))))
	case opStqAddr16Ly:
		addr, err := c.fetchImm16()
		if err != nil {
			return err
		}
		return c.writeByte(quickWindowBase+uint32(addr), uint8(c.Regs.Read(lReg(y))))
	case opStqPWxLy:
		return c.writeByte(quickWindowBase+c.Regs.Read(wReg(x)), uint8(c.Regs.Read(lReg(y))))
	case opStpAddr8Ly:
		addr, err := c.fetchImm8()
		if err != nil {
			return err
		}
		return c.writeByte(portWindowBase+uint32(addr), uint8(c.Regs.Read(lReg(y))))
	case opStpPLxLy:
		return c.writeByte(portWindowBase+c.Regs.Read(lReg(x)), uint8(c.Regs.Read(lReg(y))))
	case opMvLxLy:
		c.Regs.Write(lReg(x), c.Regs.Read(lReg(y)))
		c.tick(1)
		return nil
	case opMvHxLy:
		c.Regs.Write(hReg(x), c.Regs.Read(lReg(y)))
		c.tick(1)
		return nil
	case opMvLxHy:
		c.Regs.Write(lReg(x), c.Regs.Read(hReg(y)))
		c.tick(1)
		return nil
	default:
		return c.raiseException(ExceptionInvalidInstr)
	}
}

func (c *CPU) execLoadStore16(opcode uint16) error {
	x, y := nibbleX(opcode), nibbleY(opcode)

	switch family(opcode) {
	case opLdWxImm16:
		imm, err := c.fetchImm16()
		if err != nil {
			return err
		}
		c.Regs.Write(wReg(x), uint32(imm))
		return nil
	case opLdWxAddr32:
		addr, err := c.fetchImm32()
		if err != nil {
			return err
		}
		v, err := c.readWord(addr)
		if err != nil {
			return err
		}
		c.Regs.Write(wReg(x), uint32(v))
		return nil
	case opLdWxPDy:
		v, err := c.readWord(c.Regs.Read(dReg(y)))
		if err != nil {
			return err
		}
		c.Regs.Write(wReg(x), uint32(v))
		return nil
	case opLdqWxAddr16:
		addr, err := c.fetchImm16()
		if err != nil {
			return err
		}
		v, err := c.readWord(quickWindowBase + uint32(addr))
		if err != nil {
			return err
		}
		c.Regs.Write(wReg(x), uint32(v))
		return nil
	case opLdqWxPWy:
		v, err := c.readWord(quickWindowBase + c.Regs.Read(wReg(y)))
		if err != nil {
			return err
		}
		c.Regs.Write(wReg(x), uint32(v))
		return nil
	case opStAddr32Wy:
		addr, err := c.fetchImm32()
		if err != nil {
			return err
		}
		return c.writeWord(addr, uint16(c.Regs.Read(wReg(y))))
	case opStPDxWy:
		return c.writeWord(c.Regs.Read(dReg(x)), uint16(c.Regs.Read(wReg(y))))
	case opStqAddr16Wy:
		addr, err := c.fetchImm16()
		if err != nil {
			return err
		}
		return c.writeWord(quickWindowBase+uint32(addr), uint16(c.Regs.Read(wReg(y))))
	case opStqPWxWy:
		return c.writeWord(quickWindowBase+c.Regs.Read(wReg(x)), uint16(c.Regs.Read(wReg(y))))
	case opMvWxWy:
		c.Regs.Write(wReg(x), c.Regs.Read(wReg(y)))
		c.tick(1)
		return nil
	case opMwhDxWy:
		d := c.Regs.Read(dReg(x))
		c.Regs.Write(dReg(x), (d&0x0000FFFF)|(c.Regs.Read(wReg(y))<<16))
		c.tick(1)
		return nil
	case opMwlWxDy:
		c.Regs.Write(wReg(x), c.Regs.Read(dReg(y))>>16)
		c.tick(1)
		return nil
	default:
		return c.raiseException(ExceptionInvalidInstr)
	}
}

func (c *CPU) execLoadStore32(opcode uint16) error {
	x, y := nibbleX(opcode), nibbleY(opcode)

	switch family(opcode) {
	case opLdDxImm32:
		imm, err := c.fetchImm32()
		if err != nil {
			return err
		}
		c.Regs.Write(dReg(x), imm)
		return nil
	case opLdDxAddr32:
		addr, err := c.fetchImm32()
		if err != nil {
			return err
		}
		v, err := c.readDword(addr)
		if err != nil {
			return err
		}
		c.Regs.Write(dReg(x), v)
		return nil
	case opLdDxPDy:
		v, err := c.readDword(c.Regs.Read(dReg(y)))
		if err != nil {
			return err
		}
		c.Regs.Write(dReg(x), v)
		return nil
	case opLdqDxAddr16:
		addr, err := c.fetchImm16()
		if err != nil {
			return err
		}
		v, err := c.readDword(quickWindowBase + uint32(addr))
		if err != nil {
			return err
		}
		c.Regs.Write(dReg(x), v)
		return nil
	case opLdqDxPWy:
		v, err := c.readDword(quickWindowBase + c.Regs.Read(wReg(y)))
		if err != nil {
			return err
		}
		c.Regs.Write(dReg(x), v)
		return nil
	case opLspImm32:
		imm, err := c.fetchImm32()
		if err != nil {
			return err
		}
		c.Regs.SP = imm
		c.tick(1)
		return nil
	case opPopDx:
		v, err := c.popDword()
		if err != nil {
			return err
		}
		c.Regs.Write(dReg(x), v)
		return nil
	case opStAddr32Dy:
		addr, err := c.fetchImm32()
		if err != nil {
			return err
		}
		return c.writeDword(addr, c.Regs.Read(dReg(y)))
	case opStPDxDy:
		return c.writeDword(c.Regs.Read(dReg(x)), c.Regs.Read(dReg(y)))
	case opStqAddr16Dy:
		addr, err := c.fetchImm16()
		if err != nil {
			return err
		}
		return c.writeDword(quickWindowBase+uint32(addr), c.Regs.Read(dReg(y)))
	case opStqPWxDy:
		return c.writeDword(quickWindowBase+c.Regs.Read(wReg(x)), c.Regs.Read(dReg(y)))
	case opSspAddr32:
		addr, err := c.fetchImm32()
		if err != nil {
			return err
		}
		return c.writeDword(addr, c.Regs.SP)
	case opPushDy:
		return c.pushDword(c.Regs.Read(dReg(y)))
	case opMvDxDy:
		c.Regs.Write(dReg(x), c.Regs.Read(dReg(y)))
		c.tick(1)
		return nil
	case opSpoDx:
		c.Regs.Write(dReg(x), c.Regs.SP)
		c.tick(1)
		return nil
	case opSpiDy:
		c.Regs.SP = c.Regs.Read(dReg(y))
		c.tick(1)
		return nil
	default:
		return c.raiseException(ExceptionInvalidInstr)
	}
}
