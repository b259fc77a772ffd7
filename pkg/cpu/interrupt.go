package cpu

// anyInterruptPending reports whether any IE[i] & IRQ[i] bit pair is set,
// regardless of IME -- HALT wakes on a pending-and-enabled interrupt even
// with interrupts globally disabled, per spec §4.4.
func (c *CPU) anyInterruptPending() bool {
	return c.Regs.IE&c.Regs.IRQ != 0
}

// serviceInterrupt dispatches the lowest-numbered pending, enabled interrupt
// vector if IME is set and no EI-delay (IMP) is outstanding. It pushes FLAGS
// then PC and jumps to the vector's handler address. The bool return reports
// whether a vector was dispatched, so Step can treat the dispatch itself as
// the step rather than also fetching the handler's first instruction.
func (c *CPU) serviceInterrupt() (bool, error) {
	if !c.ime || c.imp {
		return false, nil
	}

	pending := c.Regs.IE & c.Regs.IRQ
	if pending == 0 {
		return false, nil
	}

	vector := 0
	for i := 0; i < vectorCount; i++ {
		if pending&(1<<uint(i)) != 0 {
			vector = i
			break
		}
	}

	c.Regs.IRQ &^= 1 << uint(vector)
	c.ime = false

	return true, c.callInterrupt(uint8(vector))
}

// callInterrupt pushes FLAGS and PC and jumps to the vector's handler
// address ($1000 + vector*$80). It does not touch IME, IE, or IRQ itself --
// that bookkeeping belongs to the caller, matching the INT instruction's
// pure-call semantics versus serviceInterrupt's state transition semantics.
func (c *CPU) callInterrupt(vector uint8) error {
	if int(vector) >= vectorCount {
		return c.raiseException(ExceptionInvalidArgument)
	}

	c.Regs.SP--
	if err := c.writeByte(c.Regs.SP, c.Regs.Flags.AsByte()); err != nil {
		return err
	}
	if err := c.pushDword(c.Regs.PC); err != nil {
		return err
	}

	c.Regs.PC = vectorBase + uint32(vector)*vectorStride
	c.tick(1)
	return nil
}

// disableInterrupts services the DI instruction: clears IME immediately and
// cancels any outstanding EI delay.
func (c *CPU) disableInterrupts() {
	c.ime = false
	c.imp = false
}

// enableInterrupts services EI (immediately=false, delayed via IMP), and
// EII/RETI (immediately=true).
func (c *CPU) enableInterrupts(immediately bool) {
	if immediately {
		c.ime = true
		c.imp = false
	} else {
		c.imp = true
	}
}
