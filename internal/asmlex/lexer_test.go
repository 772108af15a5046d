package asmlex_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pendragon-project/pendragon/internal/asmlex"
)

func TestLexInstructionLine(t *testing.T) {
	toks, err := asmlex.Lex("ADD AX, CX ; add them\n")
	require.NoError(t, err)

	require.Len(t, toks, 6) // IDENT IDENT COMMA IDENT EOL EOF

	assert.Equal(t, asmlex.IDENT, toks[0].Kind)
	assert.Equal(t, "ADD", toks[0].Text)
	assert.Equal(t, asmlex.IDENT, toks[1].Kind)
	assert.Equal(t, "AX", toks[1].Text)
	assert.Equal(t, asmlex.COMMA, toks[2].Kind)
	assert.Equal(t, asmlex.IDENT, toks[3].Kind)
	assert.Equal(t, "CX", toks[3].Text)
	assert.Equal(t, asmlex.EOL, toks[4].Kind)
}

func TestLexNumbers(t *testing.T) {
	toks, err := asmlex.Lex("10 0x1F 0b101\n")
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(toks), 3)
	assert.Equal(t, int64(10), toks[0].Number)
	assert.Equal(t, int64(0x1F), toks[1].Number)
	assert.Equal(t, int64(0b101), toks[2].Number)
}

func TestLexString(t *testing.T) {
	toks, err := asmlex.Lex(`"hi\nthere"` + "\n")
	require.NoError(t, err)
	require.NotEmpty(t, toks)
	assert.Equal(t, asmlex.STRING, toks[0].Kind)
	assert.Equal(t, "hi\nthere", toks[0].Value)
}

func TestLexUnterminatedStringReported(t *testing.T) {
	_, err := asmlex.Lex(`"unterminated` + "\n")
	require.Error(t, err)
}

func TestLexOperandPunctuation(t *testing.T) {
	toks, err := asmlex.Lex("LD AX, label[1+BX]\n")
	require.NoError(t, err)

	var kinds []asmlex.Kind
	for _, tok := range toks {
		kinds = append(kinds, tok.Kind)
	}

	assert.Contains(t, kinds, asmlex.LBRACK)
	assert.Contains(t, kinds, asmlex.RBRACK)
	assert.Contains(t, kinds, asmlex.PLUS)
}

func TestLexEOFTerminatesStream(t *testing.T) {
	toks, err := asmlex.Lex("NOP\n")
	require.NoError(t, err)
	require.NotEmpty(t, toks)
	assert.Equal(t, asmlex.EOF, toks[len(toks)-1].Kind)
}
