package cpu_test

import (
	"testing"

	"github.com/dgdev1024/g10/pkg/cpu"
	"github.com/dgdev1024/g10/pkg/cpubus"
	"github.com/dgdev1024/g10/pkg/cpuregs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const programBase = 0x2000

func newTestCPU(t *testing.T, instrs ...byte) (*cpu.CPU, *cpubus.FlatBus) {
	t.Helper()
	bus := cpubus.NewFlatBus(0x4000, 0x2000)
	rom := make([]byte, programBase+len(instrs))
	copy(rom[programBase:], instrs)
	require.NoError(t, bus.LoadROM(0, rom))

	c := cpu.New(bus)
	c.Regs.PC = programBase
	c.Regs.SP = cpubus.ROMBoundary + 0x1000
	return c, bus
}

// op packs an opcode's family byte and x/y nibbles into the two bytes the
// fetch loop expects: the low-address byte carries the nibbles, the next
// byte carries the family (fetchOpcode reads low byte first, high byte
// second, then combines as hi<<8|lo).
func op(family, x, y byte) []byte {
	return []byte{x<<4 | y, family}
}

func le16(v uint16) []byte { return []byte{byte(v), byte(v >> 8)} }
func le32(v uint32) []byte {
	b := le16(uint16(v))
	return append(b, le16(uint16(v>>16))...)
}

func TestNopConsumesOneCycleAndAdvancesPC(t *testing.T) {
	c, _ := newTestCPU(t, op(0x00, 0, 0)...)
	require.NoError(t, c.Step())
	assert.EqualValues(t, programBase+2, c.Regs.PC)
}

func TestLoadImmediateAndAccumulatorAddOverflow(t *testing.T) {
	instrs := append(op(0x10, 0, 0), 0xFF) // LD L0, $FF
	instrs = append(instrs, append(op(0x50, 0, 0), 0x01)...) // ADD L0, $01
	c, _ := newTestCPU(t, instrs...)

	require.NoError(t, c.Step())
	assert.EqualValues(t, 0xFF, c.Regs.Read(cpuregs.L(0)))

	require.NoError(t, c.Step())
	assert.EqualValues(t, 0x00, c.Regs.Read(cpuregs.L(0)))
	assert.True(t, c.Regs.Flags.Z())
	assert.True(t, c.Regs.Flags.H())
	assert.True(t, c.Regs.Flags.C())
	assert.False(t, c.Regs.Flags.V())
}

func TestUnconditionalJumpTakesEffect(t *testing.T) {
	instrs := append(op(0x40, 0, 0), le32(0x00003000)...) // JMP NC, $00003000
	c, _ := newTestCPU(t, instrs...)
	require.NoError(t, c.Step())
	assert.EqualValues(t, 0x00003000, c.Regs.PC)
}

func TestConditionalJumpNotTakenWhenConditionFails(t *testing.T) {
	// JMP ZS, $00003000 (condition code 1) with Z currently clear: falls
	// through without jumping, but still consumes the immediate operand.
	instrs := append(op(0x40, 1, 0), le32(0x00003000)...)
	c, _ := newTestCPU(t, instrs...)
	require.NoError(t, c.Step())
	assert.EqualValues(t, programBase+6, c.Regs.PC)
}

func TestInterruptDispatchLandsOnVectorOne(t *testing.T) {
	instrs := op(0x05, 0, 0) // EII
	c, _ := newTestCPU(t, instrs...)

	c.Regs.IE = 1 << 1
	c.Regs.IRQ = 1 << 1

	require.NoError(t, c.Step()) // executes EII, IME becomes set immediately
	require.NoError(t, c.Step()) // dispatches to vector 1 instead of fetching

	assert.EqualValues(t, 0x00001080, c.Regs.PC)
	assert.Zero(t, c.Regs.IRQ)
}

func TestIntInstructionCallsHandlerWithoutTouchingIRQ(t *testing.T) {
	instrs := append(op(0x44, 0, 0), 0x02) // INT $02
	c, _ := newTestCPU(t, instrs...)
	sp := c.Regs.SP

	require.NoError(t, c.Step())

	assert.EqualValues(t, 0x1000+2*0x80, c.Regs.PC)
	assert.Less(t, c.Regs.SP, sp)
	assert.Zero(t, c.Regs.IRQ)
}

func TestHaltWakesOnPendingEnabledInterrupt(t *testing.T) {
	c, _ := newTestCPU(t, op(0x02, 0, 0)...) // HALT

	require.NoError(t, c.Step())
	assert.True(t, c.IsHalted())

	// Still halted: bus ticks but no interrupt is pending yet.
	require.NoError(t, c.Step())
	assert.True(t, c.IsHalted())

	c.Regs.IE = 1
	c.Regs.IRQ = 1
	require.NoError(t, c.Step())
	assert.False(t, c.IsHalted())
}

func TestStopEntersStoppedStateAndWakeClearsIt(t *testing.T) {
	c, _ := newTestCPU(t, op(0x01, 0, 0)...) // STOP
	require.NoError(t, c.Step())
	assert.True(t, c.IsStopped())

	require.NoError(t, c.Step())
	assert.True(t, c.IsStopped(), "STOP is a no-op while stopped")

	c.Wake()
	assert.False(t, c.IsStopped())
}

func TestArmedSpeedSwitchTogglesDoubleSpeedInsteadOfStopping(t *testing.T) {
	c, _ := newTestCPU(t, op(0x01, 0, 0)...) // STOP
	c.WriteSPD(1)
	assert.True(t, c.IsSpeedSwitchArmed())

	require.NoError(t, c.Step())

	assert.False(t, c.IsStopped())
	assert.True(t, c.IsDoubleSpeed())
	assert.False(t, c.IsSpeedSwitchArmed())
}

func TestPushPopRoundTrip(t *testing.T) {
	instrs := append(op(0x30, 1, 0), le32(0x12345678)...) // LD D1, $12345678
	instrs = append(instrs, op(0x3C, 0, 1)...)             // PUSH D1
	instrs = append(instrs, op(0x36, 2, 0)...)             // POP D2
	c, _ := newTestCPU(t, instrs...)
	sp := c.Regs.SP

	require.NoError(t, c.Step())
	require.NoError(t, c.Step())
	require.NoError(t, c.Step())

	assert.EqualValues(t, 0x12345678, c.Regs.Read(cpuregs.D(2)))
	assert.EqualValues(t, sp, c.Regs.SP)
}

func TestCallAndReturnRoundTrip(t *testing.T) {
	// CALL NC, $00003000 at programBase; at $00003000, RET NC.
	instrs := append(op(0x43, 0, 0), le32(0x00003000)...)
	c, bus := newTestCPU(t, instrs...)

	ret := op(0x45, 0, 0) // RET NC
	require.NoError(t, bus.LoadROM(0x00003000, ret))

	returnAddr := c.Regs.PC + 6
	require.NoError(t, c.Step())
	assert.EqualValues(t, 0x00003000, c.Regs.PC)

	require.NoError(t, c.Step())
	assert.EqualValues(t, returnAddr, c.Regs.PC)
}

func TestRaiseExceptionSetsExceptionCode(t *testing.T) {
	// INT with an out-of-range vector raises ExceptionInvalidArgument
	// instead of crashing the dispatch loop.
	instrs := append(op(0x44, 0, 0), 0xFF)
	c, _ := newTestCPU(t, instrs...)

	require.NoError(t, c.Step())
	assert.EqualValues(t, cpu.ExceptionInvalidArgument, cpu.ExceptionCode(c.Regs.EC))
}

func TestRaisedExceptionVectorsToHandlerZeroAndIsRecoverable(t *testing.T) {
	// The first undefined opcode raises ExceptionInvalidInstr: recoverable,
	// so Step reports no error and execution resumes at vector 0.
	c, _ := newTestCPU(t, op(0xF0, 0, 0)...)
	sp := c.Regs.SP

	require.NoError(t, c.Step())
	assert.False(t, c.IsDoubleFaulted())
	assert.EqualValues(t, 0x00001000, c.Regs.PC)
	assert.Less(t, c.Regs.SP, sp)
	assert.EqualValues(t, cpu.ExceptionInvalidInstr, cpu.ExceptionCode(c.Regs.EC))
}

func TestDoubleFaultOnReentrantException(t *testing.T) {
	// First undefined opcode at programBase raises an exception and vectors
	// PC to $1000; a second undefined opcode planted there is executed while
	// still "in" the first exception, which must escalate to a double fault.
	c, bus := newTestCPU(t, op(0xF0, 0, 0)...)
	require.NoError(t, bus.LoadROM(0x1000, op(0xF0, 0, 0)))

	require.NoError(t, c.Step())
	assert.False(t, c.IsDoubleFaulted())

	err := c.Step()
	require.Error(t, err)
	assert.ErrorIs(t, err, cpu.ErrDoubleFault)
	assert.True(t, c.IsDoubleFaulted())
}

func TestRetiRestoresFlagsAndPCAndClearsExceptionGuard(t *testing.T) {
	// INT $02 followed by RETI: RETI must restore both PC and FLAGS to their
	// pre-interrupt values and leave SP exactly where it started.
	instrs := append(op(0x44, 0, 0), 0x02) // INT $02
	c, bus := newTestCPU(t, instrs...)
	require.NoError(t, bus.LoadROM(0x1000+2*0x80, op(0x46, 0, 0))) // RETI at vector 2's handler

	c.Regs.Flags.SetC(true)
	c.Regs.Flags.SetZ(true)
	sp := c.Regs.SP
	returnAddr := c.Regs.PC + 3

	require.NoError(t, c.Step()) // INT $02
	assert.EqualValues(t, 0x1000+2*0x80, c.Regs.PC)
	assert.Less(t, c.Regs.SP, sp)

	require.NoError(t, c.Step()) // RETI
	assert.EqualValues(t, returnAddr, c.Regs.PC)
	assert.EqualValues(t, sp, c.Regs.SP)
	assert.True(t, c.Regs.Flags.C())
	assert.True(t, c.Regs.Flags.Z())
}
