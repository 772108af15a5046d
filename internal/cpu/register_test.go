package cpu_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pendragon-project/pendragon/internal/cpu"
)

func TestRegisterFileGetSetRoundTrips(t *testing.T) {
	flags := &cpu.Flags{}
	rf := cpu.NewRegisterFile(flags)

	require.NoError(t, rf.Set(cpu.BX, 0x1234))

	v, err := rf.Get(cpu.BX)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x1234), v)
}

func TestRegisterFileSetUpdatesZeroAndSignFlags(t *testing.T) {
	flags := &cpu.Flags{}
	rf := cpu.NewRegisterFile(flags)

	require.NoError(t, rf.Set(cpu.AX, 0))
	assert.True(t, flags.Test(cpu.FlagZero))

	require.NoError(t, rf.Set(cpu.AX, 0x8000))
	assert.True(t, flags.Test(cpu.FlagSign))
	assert.False(t, flags.Test(cpu.FlagZero))
}

func TestRegisterFileHighLowBytes(t *testing.T) {
	flags := &cpu.Flags{}
	rf := cpu.NewRegisterFile(flags)

	require.NoError(t, rf.Set(cpu.CX, 0xabcd))

	hi, err := rf.GetHigh(cpu.CX)
	require.NoError(t, err)
	assert.Equal(t, byte(0xab), hi)

	lo, err := rf.GetLow(cpu.CX)
	require.NoError(t, err)
	assert.Equal(t, byte(0xcd), lo)

	require.NoError(t, rf.SetHigh(cpu.CX, 0x11))
	require.NoError(t, rf.SetLow(cpu.CX, 0x22))

	v, err := rf.Get(cpu.CX)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x1122), v)
}

func TestRegisterFileIncDecWrapAndOnlyAXSetsFlags(t *testing.T) {
	flags := &cpu.Flags{}
	rf := cpu.NewRegisterFile(flags)

	require.NoError(t, rf.Set(cpu.BX, 0xffff))
	require.NoError(t, rf.Inc(cpu.BX))

	v, err := rf.Get(cpu.BX)
	require.NoError(t, err)
	assert.Equal(t, uint16(0), v)
	assert.False(t, flags.Test(cpu.FlagZero)) // BX isn't AX; flags untouched by its own wrap

	require.NoError(t, rf.Set(cpu.AX, 1))
	require.NoError(t, rf.Dec(cpu.AX))

	v, err = rf.Get(cpu.AX)
	require.NoError(t, err)
	assert.Equal(t, uint16(0), v)
	assert.True(t, flags.Test(cpu.FlagZero))
}

func TestRegisterFileRejectsInvalidRegister(t *testing.T) {
	flags := &cpu.Flags{}
	rf := cpu.NewRegisterFile(flags)

	_, err := rf.Get(cpu.RegID(0xff))
	assert.ErrorIs(t, err, cpu.ErrInvalidRegister)
}
