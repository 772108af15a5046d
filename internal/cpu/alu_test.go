package cpu_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pendragon-project/pendragon/internal/cpu"
)

func newALU() (*cpu.ALU, *cpu.RegisterFile, *cpu.Flags) {
	flags := &cpu.Flags{}
	reg := cpu.NewRegisterFile(flags)

	return cpu.NewALU(reg, flags), reg, flags
}

func TestALUWordAddSetsCarryOnOverflow(t *testing.T) {
	alu, reg, flags := newALU()

	require.NoError(t, reg.Set(cpu.AX, 0xffff))
	require.NoError(t, alu.Word(cpu.OpAdd, 2))

	v, err := reg.Get(cpu.AX)
	require.NoError(t, err)
	assert.Equal(t, uint16(1), v)
	assert.True(t, flags.Test(cpu.FlagCarry))
}

func TestALUWordDivByZeroReported(t *testing.T) {
	alu, reg, _ := newALU()

	require.NoError(t, reg.Set(cpu.AX, 10))
	err := alu.Word(cpu.OpDiv, 0)
	assert.ErrorIs(t, err, cpu.ErrDivisionByZero)
}

func TestALUByteOperatesOnLowByteAndKeepsHighByte(t *testing.T) {
	alu, reg, _ := newALU()

	require.NoError(t, reg.Set(cpu.AX, 0xff00))
	require.NoError(t, alu.Byte(cpu.OpAdd, 0x01))

	v, err := reg.Get(cpu.AX)
	require.NoError(t, err)
	assert.Equal(t, uint16(0xff01), v)
}

func TestALUCompareWordOrdering(t *testing.T) {
	alu, reg, _ := newALU()

	require.NoError(t, reg.Set(cpu.BX, 3))
	require.NoError(t, alu.CompareWord(cpu.BX, 5))

	v, err := reg.Get(cpu.BX)
	require.NoError(t, err)
	assert.Equal(t, uint16(0xffff), v) // 3 < 5

	require.NoError(t, reg.Set(cpu.BX, 5))
	require.NoError(t, alu.CompareWord(cpu.BX, 5))
	v, err = reg.Get(cpu.BX)
	require.NoError(t, err)
	assert.Equal(t, uint16(0), v) // equal

	require.NoError(t, reg.Set(cpu.BX, 9))
	require.NoError(t, alu.CompareWord(cpu.BX, 5))
	v, err = reg.Get(cpu.BX)
	require.NoError(t, err)
	assert.Equal(t, uint16(1), v) // 9 > 5
}

func TestALURotateByZeroIsIdentity(t *testing.T) {
	alu, reg, _ := newALU()

	require.NoError(t, reg.Set(cpu.AX, 0x1234))
	require.NoError(t, alu.Word(cpu.OpRol, 16)) // 16 % 16 == 0

	v, err := reg.Get(cpu.AX)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x1234), v)
}

func TestALUCompareByteHighAndLow(t *testing.T) {
	alu, reg, _ := newALU()

	require.NoError(t, reg.Set(cpu.CX, 0x0502))
	require.NoError(t, alu.CompareByteHigh(cpu.CX, 5))

	hi, err := reg.GetHigh(cpu.CX)
	require.NoError(t, err)
	assert.Equal(t, byte(0), hi) // 5 == 5

	require.NoError(t, alu.CompareByteLow(cpu.CX, 1))
	lo, err := reg.GetLow(cpu.CX)
	require.NoError(t, err)
	assert.Equal(t, byte(1), lo) // 2 > 1
}
