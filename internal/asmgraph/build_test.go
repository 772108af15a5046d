package asmgraph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pendragon-project/pendragon/internal/asmgraph"
	"github.com/pendragon-project/pendragon/internal/asmlex"
	"github.com/pendragon-project/pendragon/internal/asmparse"
	"github.com/pendragon-project/pendragon/internal/asmsema"
	"github.com/pendragon-project/pendragon/internal/cpu"
)

func buildGraph(t *testing.T, src string) *asmgraph.Graph {
	t.Helper()

	toks, err := asmlex.Lex(src)
	require.NoError(t, err)

	f, err := asmparse.Parse(toks)
	require.NoError(t, err)
	require.NoError(t, asmparse.RewriteSugar(f))

	analysis, err := asmsema.Analyze(f)
	require.NoError(t, err)

	g, err := asmgraph.Build(f, analysis)
	require.NoError(t, err)

	return g
}

func TestBuildImplicitAXArithmetic(t *testing.T) {
	g := buildGraph(t, "CODE\n"+
		"LD AX, 0\n"+
		"LD CX, 10\n"+
		"ADD CX\n"+
		"DEC CX\n"+
		"CPL CX, 0\n"+
		"JPNZ loop\n"+
		"loop:\n")

	require.Len(t, g.Code, 7) // six instructions plus the trailing loop label

	ld := g.Code[0].(asmgraph.InstructionNode)
	assert.Equal(t, cpu.LD_IMM16, ld.Opcode)
	assert.Equal(t, []byte{byte(cpu.AX), 0, 0}, ld.Bytes)

	add := g.Code[2].(asmgraph.InstructionNode)
	assert.Equal(t, cpu.ADD_REG, add.Opcode)
	assert.Equal(t, []byte{byte(cpu.CX)}, add.Bytes)

	dec := g.Code[3].(asmgraph.InstructionNode)
	assert.Equal(t, cpu.DEC, dec.Opcode)

	cmp := g.Code[4].(asmgraph.InstructionNode)
	assert.Equal(t, cpu.CPL_IMM8, cmp.Opcode)
	assert.Equal(t, []byte{byte(cpu.CX), 0}, cmp.Bytes)

	jmp := g.Code[5].(asmgraph.InstructionNode)
	assert.Equal(t, cpu.JPNZ, jmp.Opcode)
	require.Len(t, jmp.Patches, 1)
	assert.Equal(t, "loop", jmp.Patches[0].Symbol)
}

func TestBuildCallWithReturnFlag(t *testing.T) {
	g := buildGraph(t, "CODE\n"+
		"CALL square, 1\n"+
		"square:\n"+
		"RET\n")

	call := g.Code[0].(asmgraph.InstructionNode)
	assert.Equal(t, cpu.CALL, call.Opcode)
	assert.Equal(t, byte(1), call.Bytes[2])
	require.Len(t, call.Patches, 1)
	assert.Equal(t, "square", call.Patches[0].Symbol)
}

func TestBuildDataBlockDA(t *testing.T) {
	g := buildGraph(t, "DATA\n"+
		"PAGE text\n"+
		"a: DB [1]\n"+
		"b: DB [2]\n"+
		"table: DA [a, b]\n")

	require.Len(t, g.Data, 3)

	table := g.Data[2]
	assert.Equal(t, "table", table.Name)
	require.Len(t, table.Patches, 2)
	assert.Equal(t, "a", table.Patches[0].Symbol)
	assert.Equal(t, "b", table.Patches[1].Symbol)
}

func TestBuildLoadAddressIndirect(t *testing.T) {
	g := buildGraph(t, "CODE\nLDA AX, (BX)\n")

	ld := g.Code[0].(asmgraph.InstructionNode)
	assert.Equal(t, cpu.LDA_IND, ld.Opcode)
	assert.Equal(t, []byte{byte(cpu.AX), byte(cpu.BX)}, ld.Bytes)
	assert.Empty(t, ld.Patches)
}

func TestBuildLDASugarRewriteToLDAB(t *testing.T) {
	g := buildGraph(t, "DATA\n"+
		"greeting: DB \"hi\"\n"+
		"CODE\n"+
		"LD AL, greeting[1]\n")

	ld := g.Code[0].(asmgraph.InstructionNode)
	assert.Equal(t, cpu.LDAB, ld.Opcode)
	require.Len(t, ld.Patches, 1)
	assert.Equal(t, "greeting", ld.Patches[0].Symbol)
	assert.Equal(t, int64(1), ld.Patches[0].ConstOffset)
}
