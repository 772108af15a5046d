package cpu_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pendragon-project/pendragon/internal/cpu"
)

func TestArityZeroOperandOpcodes(t *testing.T) {
	for _, op := range []cpu.Opcode{cpu.NOP, cpu.HALT, cpu.FLSH, cpu.RET} {
		n, ok := cpu.Arity(op)
		assert.True(t, ok)
		assert.Equal(t, 0, n)
	}
}

func TestArityLoadHalfRegisterFormsAreTwoBytes(t *testing.T) {
	// LDH reg, reg and LDL reg, reg encode both a destination and a source register byte.
	for _, op := range []cpu.Opcode{cpu.LDH_REG, cpu.LDL_REG} {
		n, ok := cpu.Arity(op)
		assert.True(t, ok)
		assert.Equal(t, 2, n)
	}
}

func TestArityCallAndDirectLoadsAreThreeBytes(t *testing.T) {
	for _, op := range []cpu.Opcode{cpu.CALL, cpu.LDA, cpu.STA, cpu.CMP_IMM16} {
		n, ok := cpu.Arity(op)
		assert.True(t, ok)
		assert.Equal(t, 3, n)
	}
}

func TestArityRejectsUnassignedOpcode(t *testing.T) {
	_, ok := cpu.Arity(cpu.Opcode(0x7e))
	assert.False(t, ok)
}
