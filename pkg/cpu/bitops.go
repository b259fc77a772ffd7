package cpu

import "github.com/dgdev1024/g10/pkg/cpuregs"

// Bit test/set/reset/toggle family (0xA0-0xA7), per spec §4.4. The high
// nibble of the opcode's low byte (X) carries the bit index (0-7 for byte
// registers, 0-15 for word registers); its low nibble (Y) carries the
// register index.
const (
	opBitBLx uint8 = 0xA0
	opSetBLx uint8 = 0xA1
	opResBLx uint8 = 0xA2
	opTogBLx uint8 = 0xA3
	opBitBWx uint8 = 0xA4
	opSetBWx uint8 = 0xA5
	opResBWx uint8 = 0xA6
	opTogBWx uint8 = 0xA7
)

func (c *CPU) execBitOps(opcode uint16) error {
	bit, reg := nibbleX(opcode), nibbleY(opcode)

	switch family(opcode) {
	case opBitBLx:
		v := uint8(c.Regs.Read(lReg(reg)))
		c.Regs.Flags = cpuregs.BitTest(v, int(bit), c.Regs.Flags)
		c.tick(1)
		return nil
	case opSetBLx:
		v := uint8(c.Regs.Read(lReg(reg))) | (1 << bit)
		c.Regs.Write(lReg(reg), uint32(v))
		c.tick(1)
		return nil
	case opResBLx:
		v := uint8(c.Regs.Read(lReg(reg))) &^ (1 << bit)
		c.Regs.Write(lReg(reg), uint32(v))
		c.tick(1)
		return nil
	case opTogBLx:
		v := uint8(c.Regs.Read(lReg(reg))) ^ (1 << bit)
		c.Regs.Write(lReg(reg), uint32(v))
		c.tick(1)
		return nil
	case opBitBWx:
		v := uint16(c.Regs.Read(wReg(reg)))
		z := v&(1<<bit) == 0
		c.Regs.Flags.SetZ(z)
		c.Regs.Flags.SetN(false)
		c.Regs.Flags.SetH(true)
		c.tick(1)
		return nil
	case opSetBWx:
		v := uint16(c.Regs.Read(wReg(reg))) | (1 << bit)
		c.Regs.Write(wReg(reg), uint32(v))
		c.tick(1)
		return nil
	case opResBWx:
		v := uint16(c.Regs.Read(wReg(reg))) &^ (1 << bit)
		c.Regs.Write(wReg(reg), uint32(v))
		c.tick(1)
		return nil
	case opTogBWx:
		v := uint16(c.Regs.Read(wReg(reg))) ^ (1 << bit)
		c.Regs.Write(wReg(reg), uint32(v))
		c.tick(1)
		return nil
	default:
		return c.raiseException(ExceptionInvalidInstr)
	}
}
