package cpubus_test

import (
	"testing"

	"github.com/dgdev1024/g10/pkg/cpubus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlatBusROMLoadAndRead(t *testing.T) {
	bus := cpubus.NewFlatBus(16, 16)
	require.NoError(t, bus.LoadROM(0, []byte{0xDE, 0xAD, 0xBE, 0xEF}))

	v, err := bus.Read(0)
	require.NoError(t, err)
	assert.EqualValues(t, 0xDE, v)

	v, err = bus.Read(3)
	require.NoError(t, err)
	assert.EqualValues(t, 0xEF, v)
}

func TestFlatBusSealRejectsROMWrites(t *testing.T) {
	bus := cpubus.NewFlatBus(4, 4)
	require.NoError(t, bus.LoadROM(0, []byte{1, 2, 3, 4}))
	bus.Seal()

	err := bus.Write(0, 0xFF)
	assert.ErrorIs(t, err, cpubus.ErrBusFault)

	err = bus.LoadROM(0, []byte{5})
	assert.Error(t, err)
}

func TestFlatBusRAMReadWrite(t *testing.T) {
	bus := cpubus.NewFlatBus(4, 4)

	require.NoError(t, bus.Write(cpubus.ROMBoundary+1, 0x42))
	v, err := bus.Read(cpubus.ROMBoundary + 1)
	require.NoError(t, err)
	assert.EqualValues(t, 0x42, v)
}

func TestFlatBusFaultsOnUnmappedAddress(t *testing.T) {
	bus := cpubus.NewFlatBus(4, 4)

	_, err := bus.Read(0x1000)
	assert.ErrorIs(t, err, cpubus.ErrBusFault)

	err = bus.Write(cpubus.ROMBoundary+100, 1)
	assert.ErrorIs(t, err, cpubus.ErrBusFault)
}
