package cpu

import "github.com/dgdev1024/g10/pkg/cpuregs"

// Branch/call/interrupt family, per original_source/projects/g10/cpu.hpp.
const (
	opJmpXImm32   uint8 = 0x40
	opJmpXDy      uint8 = 0x41
	opJpbXSimm16  uint8 = 0x42
	opCallXImm32  uint8 = 0x43
	opIntXX       uint8 = 0x44
	opRetX        uint8 = 0x45
	opReti        uint8 = 0x46
)

func (c *CPU) execBranch(opcode uint16) error {
	x, y := nibbleX(opcode), nibbleY(opcode)
	cc := ConditionCode(x)
	if f := family(opcode); cc > CondOverflowClear && f != opIntXX && f != opReti {
		return c.raiseException(ExceptionInvalidInstr)
	}

	switch family(opcode) {
	case opJmpXImm32:
		target, err := c.fetchImm32()
		if err != nil {
			return err
		}
		if c.evaluateCondition(cc) {
			c.Regs.PC = target
			c.tick(1)
		}
		return nil

	case opJmpXDy:
		if c.evaluateCondition(cc) {
			c.Regs.PC = c.Regs.Read(dReg(y))
			c.tick(1)
		}
		return nil

	case opJpbXSimm16:
		offset, err := c.fetchImm16()
		if err != nil {
			return err
		}
		if c.evaluateCondition(cc) {
			c.Regs.PC = uint32(int32(c.Regs.PC) + int32(int16(offset)))
			c.tick(1)
		}
		return nil

	case opCallXImm32:
		target, err := c.fetchImm32()
		if err != nil {
			return err
		}
		if c.evaluateCondition(cc) {
			if err := c.pushDword(c.Regs.PC); err != nil {
				return err
			}
			c.Regs.PC = target
			c.tick(1)
		}
		return nil

	case opIntXX:
		vector, err := c.fetchImm8()
		if err != nil {
			return err
		}
		return c.callInterrupt(vector)

	case opRetX:
		if c.evaluateCondition(cc) {
			target, err := c.popDword()
			if err != nil {
				return err
			}
			c.Regs.PC = target
			c.tick(2)
		} else {
			c.tick(1)
		}
		return nil

	case opReti:
		// Pop in reverse push order: callInterrupt/raiseException push FLAGS
		// (1 byte, SP-=1) then PC (4 bytes, SP-=4), so PC sits at the lower
		// address and must come off the stack first.
		target, err := c.popDword()
		if err != nil {
			return err
		}
		flagsByte, err := c.readByte(c.Regs.SP)
		if err != nil {
			return err
		}
		c.Regs.SP++
		c.Regs.Flags = cpuregs.FromByte(flagsByte)
		c.Regs.PC = target
		c.inException = false
		c.enableInterrupts(true)
		c.tick(2)
		return nil

	default:
		return c.raiseException(ExceptionInvalidInstr)
	}
}
