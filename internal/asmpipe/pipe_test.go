package asmpipe_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pendragon-project/pendragon/internal/asmpipe"
	"github.com/pendragon-project/pendragon/internal/binfmt"
	"github.com/pendragon-project/pendragon/internal/cpu"
	"github.com/pendragon-project/pendragon/internal/syscalls"
)

func newCPU(t *testing.T) *cpu.CPU {
	t.Helper()

	c, err := cpu.New(cpu.Config{
		DataSize:      1 << 16,
		StackCapacity: 4096,
		Syscalls:      syscalls.NewConsole(bytes.NewReader(nil), &bytes.Buffer{}),
	})
	require.NoError(t, err)

	return c
}

func TestAssembleSumLoop(t *testing.T) {
	src := "CODE\n" +
		"LD AX, 0\n" +
		"LD CX, 3\n" +
		"loop:\n" +
		"ADD CX\n" +
		"DEC CX\n" +
		"LD DX, CX\n" + // CPL writes its result into its register, so compare a copy of CX
		"CPL DX, 0\n" +
		"JPNZ loop\n" +
		"HALT\n"

	res, err := asmpipe.Assemble(src, "sum")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Binary)

	p, err := binfmt.Decode(res.Binary)
	require.NoError(t, err)

	c := newCPU(t)
	require.NoError(t, c.Run(p))
	assert.True(t, c.Halted())

	v, err := c.Reg.Get(cpu.AX)
	require.NoError(t, err)
	assert.Equal(t, uint16(6), v) // 3 + 2 + 1
}

func TestAssembleCallWithReturn(t *testing.T) {
	src := "CODE\n" +
		"LD AX, 7\n" +
		"CALL square, 1\n" +
		"HALT\n" +
		"square:\n" +
		"MUL AX\n" +
		"PUSH AX\n" + // the return value a CALL with its return flag set expects
		"RET\n"

	res, err := asmpipe.Assemble(src, "square")
	require.NoError(t, err)

	p, err := binfmt.Decode(res.Binary)
	require.NoError(t, err)

	c := newCPU(t)
	require.NoError(t, c.Run(p))

	v, err := c.Reg.Get(cpu.AX)
	require.NoError(t, err)
	assert.Equal(t, uint16(49), v)
}

func TestAssembleReportsUndefinedSymbol(t *testing.T) {
	_, err := asmpipe.Assemble("CODE\nJMP nowhere\n", "bad")
	assert.Error(t, err)
}

func TestAssembleCountsStringLength(t *testing.T) {
	src := "DATA\n" +
		"text: DB \"Hello, World!\\0\"\n" +
		"CODE\n" +
		"LD AX, 0\n" +
		"LD BX, 2\n" + // skip text's 2-byte size header to reach the string payload
		"loop:\n" +
		"LDAL CX, (BX)\n" +
		"CPL CX, 0\n" +
		"JPZ done\n" +
		"INC AX\n" +
		"INC BX\n" +
		"JMP loop\n" +
		"done:\n" +
		"HALT\n"

	res, err := asmpipe.Assemble(src, "strlen")
	require.NoError(t, err)

	p, err := binfmt.Decode(res.Binary)
	require.NoError(t, err)

	c := newCPU(t)
	require.NoError(t, c.Run(p))
	assert.True(t, c.Halted())

	v, err := c.Reg.Get(cpu.AX)
	require.NoError(t, err)
	assert.Equal(t, uint16(13), v) // len("Hello, World!")
}

func TestAssembleRejectsCrossPageDA(t *testing.T) {
	src := "DATA\n" +
		"PAGE one\n" +
		"a: DB [1]\n" +
		"PAGE two\n" +
		"b: DB [2]\n" +
		"t: DA [a, b]\n" +
		"CODE\nHALT\n"

	_, err := asmpipe.Assemble(src, "bad")
	assert.Error(t, err)
}
