// Package cpubus defines the memory bus contract the CPU executor uses for
// every byte access, per spec §4.3. The bus is a polymorphic collaborator:
// the CPU only ever reads/writes single bytes and ticks it in M-cycle units.
package cpubus

import "errors"

// ErrBusFault is the sentinel a Bus implementation wraps when a read or
// write cannot be serviced (an unmapped or faulting address).
var ErrBusFault = errors.New("bus fault")

// Bus is the memory-mapped address space the CPU reads and writes one byte
// at a time. Implementations decide what lives at which address (ROM, RAM,
// memory-mapped I/O registers) and are responsible for their own bounds
// checking.
type Bus interface {
	// Read returns the byte at addr, or an error wrapping ErrBusFault if the
	// address cannot be read.
	Read(addr uint32) (uint8, error)

	// Write stores value at addr, or returns an error wrapping ErrBusFault
	// if the address cannot be written.
	Write(addr uint32, value uint8) error

	// Tick advances any bus-owned peripherals by the given number of M-cycles.
	// The CPU calls this synchronously after every successful access, per
	// spec §4.3 ("consume_machine_cycles... ticks the bus peripherals").
	Tick(mCycles int)
}
