// Package cpu implements the G10 CPU's fetch/decode/dispatch loop: the
// register file transitions, interrupt servicing, and HALT/STOP/double-fault
// state machine described in spec §4.4. It is grounded on the ALU-unit
// decomposition style of the teacher's pkg/hw/cpu package, collapsed from a
// generic Register/Integer instruction set onto the one fixed G10 ISA.
package cpu

import (
	"errors"
	"fmt"

	"github.com/dgdev1024/g10/pkg/cpubus"
	"github.com/dgdev1024/g10/pkg/cpuregs"
)

// ExceptionCode mirrors the CPU's 8-bit EC register.
type ExceptionCode uint8

const (
	ExceptionNone             ExceptionCode = 0x00
	ExceptionInvalidInstr     ExceptionCode = 0x01
	ExceptionInvalidArgument  ExceptionCode = 0x02
	ExceptionInvalidRead      ExceptionCode = 0x03
	ExceptionInvalidWrite     ExceptionCode = 0x04
	ExceptionInvalidExecute   ExceptionCode = 0x05
	ExceptionDivideByZero     ExceptionCode = 0x06
	ExceptionStackOverflow    ExceptionCode = 0x07
	ExceptionStackUnderflow   ExceptionCode = 0x08
	ExceptionHardwareError    ExceptionCode = 0x09
	ExceptionDoubleFault      ExceptionCode = 0x0A
)

// ErrDoubleFault is returned by Step once the CPU has entered an
// irrecoverable double-fault stop, per spec §4.4.
var ErrDoubleFault = errors.New("cpu: double fault")

// vectorBase and vectorStride locate the interrupt vector table in ROM,
// per spec §2 (32 vectors x 128 bytes, starting at $1000).
const (
	vectorBase   uint32 = 0x00001000
	vectorStride uint32 = 0x80
	vectorCount  int    = 32
)

// speed switch register bit positions, per original_source/projects/g10/cpu.hpp.
const (
	spdArmed       = 0
	spdDoubleSpeed = 7
)

// CPU is the G10 execution context: register file plus the control state
// (interrupt master enable, halt/stop, speed switch) that isn't part of the
// architectural register file itself.
type CPU struct {
	Regs cpuregs.File
	Bus  cpubus.Bus

	ime bool // interrupt master enable
	imp bool // IME pending: becomes true after the instruction following EI

	halted      bool
	stopped     bool
	doubleFault bool
	inException bool // re-entrancy guard while servicing an exception (set by raiseException, cleared by RETI)

	speed uint8 // SPD hardware register (bit0 armed, bit7 double_speed)
}

// New constructs a CPU wired to bus and resets it to power-on state.
func New(bus cpubus.Bus) *CPU {
	c := &CPU{Bus: bus}
	c.Reset()
	return c
}

// Reset sets all registers, flags, and internal state to power-on values.
func (c *CPU) Reset() {
	c.Regs = cpuregs.File{}
	c.ime = false
	c.imp = false
	c.halted = false
	c.stopped = false
	c.doubleFault = false
	c.inException = false
	c.speed = 0
}

func (c *CPU) IsHalted() bool      { return c.halted }
func (c *CPU) IsStopped() bool     { return c.stopped || c.doubleFault }
func (c *CPU) IsDoubleFaulted() bool { return c.doubleFault }
func (c *CPU) IsDoubleSpeed() bool { return c.speed&(1<<spdDoubleSpeed) != 0 }
func (c *CPU) IsSpeedSwitchArmed() bool { return c.speed&(1<<spdArmed) != 0 }

// Wake exits the STOP state in response to an external event. It has no
// effect if the CPU is not stopped, or stopped due to a double fault.
func (c *CPU) Wake() {
	if c.stopped && !c.doubleFault {
		c.stopped = false
	}
}

// ReadSPD and WriteSPD implement the bus-facing SPD hardware register.
func (c *CPU) ReadSPD() uint8 { return c.speed }

func (c *CPU) WriteSPD(value uint8) {
	// Only bit 0 (armed) is writable from software; bit 7 (double_speed) is
	// read-only and only flipped by the CPU itself during a speed switch.
	c.speed = (c.speed & (1 << spdDoubleSpeed)) | (value & (1 << spdArmed))
}

// Step runs one iteration of the fetch/decode/dispatch loop, per spec §4.4:
// after a double fault it returns ErrDoubleFault; if stopped, it is a no-op;
// if halted with no interrupt pending, it consumes one M-cycle; otherwise, if
// a pending interrupt is dispatched, that dispatch is the whole step, and if
// none is, it fetches, decodes and executes the next instruction.
func (c *CPU) Step() error {
	if c.doubleFault {
		return ErrDoubleFault
	}
	if c.stopped {
		return nil
	}

	if c.halted {
		if !c.anyInterruptPending() {
			c.tick(1)
			return nil
		}
		c.halted = false
	}

	dispatched, err := c.serviceInterrupt()
	if err != nil {
		return err
	}
	if dispatched || c.stopped || c.halted {
		return nil
	}

	wasIMP := c.imp
	opcode, err := c.fetchOpcode()
	if err != nil {
		return err
	}

	if err := c.execute(opcode); err != nil {
		return err
	}

	// EI arms IMP; interrupts become enabled only after the instruction
	// that follows the EI itself, unless that instruction cancelled the
	// pending enable (DI, or an exception entry).
	if wasIMP && c.imp {
		c.ime = true
		c.imp = false
	}
	return nil
}

func (c *CPU) tick(mCycles int) {
	c.Bus.Tick(mCycles)
}

// raiseException services the CPU's exception-entry sequence, per spec
// §4.4/§4.9: it sets EC, pushes FLAGS then PC (mirroring callInterrupt),
// disables interrupts, and vectors PC to the exception handler at interrupt
// vector 0 ($1000). The fault itself is recoverable -- Step keeps running,
// now fetching at the handler, rather than aborting. inException stays set
// until RETI clears it; a second exception raised before then is a double
// fault, which is fatal.
func (c *CPU) raiseException(code ExceptionCode) error {
	if code == ExceptionNone {
		return nil
	}
	if c.inException {
		c.doubleFault = true
		c.stopped = true
		return fmt.Errorf("%w: exception 0x%02X while handling exception 0x%02X", ErrDoubleFault, code, c.Regs.EC)
	}

	c.Regs.EC = uint8(code)
	c.inException = true
	c.disableInterrupts()

	c.Regs.SP--
	if err := c.writeByte(c.Regs.SP, c.Regs.Flags.AsByte()); err != nil {
		return err
	}
	if err := c.pushDword(c.Regs.PC); err != nil {
		return err
	}

	c.Regs.PC = vectorBase
	c.tick(1)
	return nil
}

func (c *CPU) fetchOpcode() (uint16, error) {
	lo, err := c.readByte(c.Regs.PC)
	if err != nil {
		return 0, err
	}
	c.Regs.PC++
	hi, err := c.readByte(c.Regs.PC)
	if err != nil {
		return 0, err
	}
	c.Regs.PC++

	return uint16(hi)<<8 | uint16(lo), nil
}

func (c *CPU) fetchImm8() (uint8, error) {
	v, err := c.readByte(c.Regs.PC)
	if err != nil {
		return 0, err
	}
	c.Regs.PC++
	return v, nil
}

func (c *CPU) fetchImm16() (uint16, error) {
	lo, err := c.fetchImm8()
	if err != nil {
		return 0, err
	}
	hi, err := c.fetchImm8()
	if err != nil {
		return 0, err
	}
	return uint16(hi)<<8 | uint16(lo), nil
}

func (c *CPU) fetchImm32() (uint32, error) {
	lo, err := c.fetchImm16()
	if err != nil {
		return 0, err
	}
	hi, err := c.fetchImm16()
	if err != nil {
		return 0, err
	}
	return uint32(hi)<<16 | uint32(lo), nil
}

func (c *CPU) readByte(addr uint32) (uint8, error) {
	v, err := c.Bus.Read(addr)
	if err != nil {
		c.tick(1)
		return 0, fmt.Errorf("cpu: read fault at 0x%08X: %w", addr, err)
	}
	c.tick(1)
	return v, nil
}

func (c *CPU) writeByte(addr uint32, value uint8) error {
	err := c.Bus.Write(addr, value)
	c.tick(1)
	if err != nil {
		return fmt.Errorf("cpu: write fault at 0x%08X: %w", addr, err)
	}
	return nil
}

func (c *CPU) readWord(addr uint32) (uint16, error) {
	lo, err := c.readByte(addr)
	if err != nil {
		return 0, err
	}
	hi, err := c.readByte(addr + 1)
	if err != nil {
		return 0, err
	}
	return uint16(hi)<<8 | uint16(lo), nil
}

func (c *CPU) writeWord(addr uint32, value uint16) error {
	if err := c.writeByte(addr, uint8(value)); err != nil {
		return err
	}
	return c.writeByte(addr+1, uint8(value>>8))
}

func (c *CPU) readDword(addr uint32) (uint32, error) {
	lo, err := c.readWord(addr)
	if err != nil {
		return 0, err
	}
	hi, err := c.readWord(addr + 2)
	if err != nil {
		return 0, err
	}
	return uint32(hi)<<16 | uint32(lo), nil
}

func (c *CPU) writeDword(addr uint32, value uint32) error {
	if err := c.writeWord(addr, uint16(value)); err != nil {
		return err
	}
	return c.writeWord(addr+2, uint16(value>>16))
}

func (c *CPU) pushDword(value uint32) error {
	c.Regs.SP -= 4
	return c.writeDword(c.Regs.SP, value)
}

func (c *CPU) popDword() (uint32, error) {
	v, err := c.readDword(c.Regs.SP)
	if err != nil {
		return 0, err
	}
	c.Regs.SP += 4
	return v, nil
}

const (
	quickWindowBase uint32 = 0xFFFF0000
	portWindowBase  uint32 = 0xFFFFFF00
)
