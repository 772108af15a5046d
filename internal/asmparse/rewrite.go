package asmparse

import (
	"errors"
	"fmt"
)

var ErrInvalidLoadOperand = errors.New("asmparse: LD with bracketed operand must be reg, label[expr]")

// RewriteSugar implements pass 1.5: every "LD reg, label[expr]" instruction is rewritten in place
// to LDAB (if reg names an 8-bit half) or LDA (if reg names a whole register), with its second
// operand collapsed from OperandMemoryAccess into OperandAddress carrying the label and offset
// expression. A bracketed operand on an LD that isn't this shape is a pass error: LD never
// addresses memory directly once this pass is done.
func RewriteSugar(f *File) error {
	var errs []error

	for i, stmt := range f.Code {
		instr, ok := stmt.(Instruction)
		if !ok || instr.Mnemonic != "LD" {
			continue
		}

		rewritten, err := rewriteLoad(instr)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		f.Code[i] = rewritten
	}

	return errors.Join(errs...)
}

func rewriteLoad(instr Instruction) (Instruction, error) {
	hasBracket := false

	for _, op := range instr.Operands {
		if op.Kind == OperandMemoryAccess || op.Kind == OperandExpression {
			hasBracket = true
		}
	}

	if !hasBracket {
		return instr, nil
	}

	if len(instr.Operands) != 2 || instr.Operands[0].Kind != OperandRegister ||
		instr.Operands[1].Kind != OperandMemoryAccess {
		return instr, fmt.Errorf("%w (at %s)", ErrInvalidLoadOperand, instr.Pos)
	}

	dst := instr.Operands[0]
	mem := instr.Operands[1]

	if Is16Bit(dst.Register) {
		instr.Mnemonic = "LDA"
	} else {
		instr.Mnemonic = "LDAB"
	}

	instr.Operands = []Operand{
		dst,
		{Kind: OperandAddress, Symbol: mem.Symbol, Expr: mem.Expr, Pos: mem.Pos},
	}

	return instr, nil
}
