package cpu

import "github.com/dgdev1024/g10/pkg/cpuregs"

// Control family opcodes, per original_source/projects/g10/cpu.hpp.
const (
	opNop  uint8 = 0x00
	opStop uint8 = 0x01
	opHalt uint8 = 0x02
	opDi   uint8 = 0x03
	opEi   uint8 = 0x04
	opEii  uint8 = 0x05
	opDaa  uint8 = 0x06
	opScf  uint8 = 0x07
	opCcf  uint8 = 0x08
	opClv  uint8 = 0x09
	opSev  uint8 = 0x0A
)

func (c *CPU) execControl(opcode uint16) error {
	switch family(opcode) {
	case opNop:
		c.tick(1)
		return nil
	case opStop:
		c.enterStopState()
		return nil
	case opHalt:
		c.enterHaltState()
		return nil
	case opDi:
		c.disableInterrupts()
		c.tick(1)
		return nil
	case opEi:
		c.enableInterrupts(false)
		c.tick(1)
		return nil
	case opEii:
		c.enableInterrupts(true)
		c.tick(1)
		return nil
	case opDaa:
		result, flags := cpuregs.Daa(uint8(c.Regs.Read(lReg(0))), c.Regs.Flags)
		c.Regs.Write(lReg(0), uint32(result))
		c.Regs.Flags = flags
		c.tick(1)
		return nil
	case opScf:
		c.Regs.Flags.SetN(false)
		c.Regs.Flags.SetH(false)
		c.Regs.Flags.SetC(true)
		c.tick(1)
		return nil
	case opCcf:
		c.Regs.Flags.SetN(false)
		c.Regs.Flags.SetH(false)
		c.Regs.Flags.SetC(!c.Regs.Flags.C())
		c.tick(1)
		return nil
	case opClv:
		c.Regs.Flags.SetV(false)
		c.tick(1)
		return nil
	case opSev:
		c.Regs.Flags.SetV(true)
		c.tick(1)
		return nil
	default:
		return c.raiseException(ExceptionInvalidInstr)
	}
}

// enterHaltState places the CPU into HALT: it stops fetching new
// instructions but keeps ticking the bus until an enabled interrupt is
// pending.
func (c *CPU) enterHaltState() {
	c.halted = true
	c.tick(1)
}

// enterStopState places the CPU into STOP, unless a speed switch is armed,
// in which case it performs the speed switch sequence instead.
func (c *CPU) enterStopState() {
	if c.IsSpeedSwitchArmed() {
		c.speed ^= 1 << spdDoubleSpeed
		c.speed &^= 1 << spdArmed
		c.tick(2)
		return
	}
	c.stopped = true
	c.tick(1)
}
