package asmgraph

import (
	"errors"
	"fmt"

	"github.com/pendragon-project/pendragon/internal/asmparse"
	"github.com/pendragon-project/pendragon/internal/asmsema"
	"github.com/pendragon-project/pendragon/internal/cpu"
)

// Build lowers f into a code graph. The analysis argument is not consulted: symbol and page
// resolution are asmlink's job; this pass only records what still needs resolving.
func Build(f *asmparse.File, _ *asmsema.Analysis) (*Graph, error) {
	b := &builder{}

	var errs []error

	errs = append(errs, b.buildData(f)...)
	errs = append(errs, b.buildCode(f)...)

	return &b.g, errors.Join(errs...)
}

type builder struct {
	g    Graph
	anon int
}

func (b *builder) buildData(f *asmparse.File) []error {
	var errs []error

	page := ""

	for _, item := range f.Data {
		switch v := item.(type) {
		case asmparse.PageDirective:
			page = v.Name
		case asmparse.DataDef:
			block, err := b.dataBlock(v.Label, v.Kind, v.Bytes, v.Words, v.Refs, page)
			if err != nil {
				errs = append(errs, err)
				continue
			}

			b.g.Data = append(b.g.Data, block)
		}
	}

	return errs
}

// sizeHeader prepends every data block with its payload's little-endian 2-byte length, so a
// label's resolved address always names the header and payload bytes begin at label+2.
func sizeHeader(payloadLen int) [2]byte {
	return [2]byte{byte(payloadLen), byte(payloadLen >> 8)}
}

func (b *builder) dataBlock(name string, kind asmparse.DataKind, bts []byte, words []uint16, refs []string, page string) (DataBlock, error) {
	switch kind {
	case asmparse.KindBytes:
		h := sizeHeader(len(bts))
		buf := append(append([]byte{}, h[:]...), bts...)

		return DataBlock{Name: name, Bytes: buf, Page: page}, nil

	case asmparse.KindWords:
		h := sizeHeader(len(words) * 2)
		buf := make([]byte, 2+len(words)*2)
		copy(buf, h[:])

		for i, w := range words {
			buf[2+i*2], buf[2+i*2+1] = byte(w), byte(w>>8)
		}

		return DataBlock{Name: name, Bytes: buf, Page: page}, nil

	case asmparse.KindAddresses:
		h := sizeHeader(len(refs) * 2)
		buf := make([]byte, 2+len(refs)*2)
		copy(buf, h[:])

		patches := make([]Patch, len(refs))
		for i, ref := range refs {
			patches[i] = Patch{Offset: 2 + i*2, Width: 2, Symbol: ref}
		}

		return DataBlock{Name: name, Bytes: buf, Patches: patches, Page: page}, nil

	default:
		return DataBlock{}, fmt.Errorf("%w: data kind %d", ErrOperandShape, kind)
	}
}

func (b *builder) nextAnon() string {
	name := fmt.Sprintf("__anon_%d", b.anon)
	b.anon++

	return name
}

func (b *builder) buildCode(f *asmparse.File) []error {
	var errs []error

	for _, stmt := range f.Code {
		switch v := stmt.(type) {
		case asmparse.Label:
			b.g.Code = append(b.g.Code, LabelNode{Name: v.Name})

		case asmparse.InlineData:
			name := v.Label
			if name == "" {
				name = b.nextAnon()
			}

			block, err := b.dataBlock(name, v.Kind, v.Bytes, v.Words, nil, "")
			if err != nil {
				errs = append(errs, err)
				continue
			}

			b.g.Data = append(b.g.Data, block)

		case asmparse.Instruction:
			node, err := b.instruction(v)
			if err != nil {
				errs = append(errs, &BuildError{Pos: v.Pos, Err: err})
				continue
			}

			b.g.Code = append(b.g.Code, node)
		}
	}

	return errs
}

func word16(v int64) [2]byte { return [2]byte{byte(v), byte(v >> 8)} }

func (b *builder) instruction(instr asmparse.Instruction) (InstructionNode, error) {
	m := instr.Mnemonic
	ops := instr.Operands

	switch m {
	case "NOP":
		return InstructionNode{Opcode: cpu.NOP}, nil
	case "HALT":
		return InstructionNode{Opcode: cpu.HALT}, nil
	case "RET":
		return InstructionNode{Opcode: cpu.RET}, nil
	case "FLSH":
		return InstructionNode{Opcode: cpu.FLSH}, nil
	case "SETF":
		return b.imm16Only(cpu.SETF, ops)

	case "SWP":
		return b.regReg(cpu.SWP, ops)

	case "LD":
		return b.load(ops)
	case "LDH":
		return b.loadHalf(cpu.LDH_IMM8, cpu.LDH_REG, ops)
	case "LDL":
		return b.loadHalf(cpu.LDL_IMM8, cpu.LDL_REG, ops)

	case "LDA", "LDAB", "LDAH", "LDAL":
		return b.loadAddr(m, ops)

	case "STA", "STAH", "STAL":
		return b.store(m, ops)

	case "SYS":
		return b.imm16Only(cpu.SYS, ops)

	case "PUSH", "PUSHH", "PUSHL":
		return b.regOnly(pushOps[m], ops)
	case "POP", "POPH", "POPL":
		return b.regOnly(popOps[m], ops)
	case "PUSHW":
		return b.imm16Only(cpu.PUSHW, ops)
	case "PUSHB":
		return b.imm8Only(cpu.PUSHB, ops)

	case "PEEKB", "PEEKW", "PEEKFB", "PEEKFW":
		return b.regAndImm16(peekOps[m], ops)

	case "PAGE":
		return b.page(ops)

	case "INC":
		return b.regOnly(cpu.INC, ops)
	case "DEC":
		return b.regOnly(cpu.DEC, ops)

	case "CALL":
		return b.call(ops)

	case "CMP":
		return b.compare(ops, cpu.CMP_REG, cpu.CMP_IMM16, true)
	case "CPH":
		return b.compare(ops, cpu.CPH_REG, cpu.CPH_IMM8, false)
	case "CPL":
		return b.compare(ops, cpu.CPL_REG, cpu.CPL_IMM8, false)
	}

	if op, ok := jumpOps[m]; ok {
		return b.jumpTarget(op, ops)
	}

	if shape, ok := wordOps[m]; ok {
		return b.wordALU(shape.Imm16, shape.Reg, ops)
	}

	if op, ok := byteImmOps[m]; ok {
		return b.imm8Only(op, ops)
	}

	if op, ok := highRegOps[m]; ok {
		return b.regOnly(op, ops)
	}

	if op, ok := lowRegOps[m]; ok {
		return b.regOnly(op, ops)
	}

	return InstructionNode{}, fmt.Errorf("%w: %q", ErrUnknownMnemonic, m)
}

func requireOperands(ops []asmparse.Operand, n int) error {
	if len(ops) != n {
		return fmt.Errorf("%w: want %d, got %d", ErrOperandCount, n, len(ops))
	}

	return nil
}

func (b *builder) regReg(op cpu.Opcode, ops []asmparse.Operand) (InstructionNode, error) {
	if err := requireOperands(ops, 2); err != nil {
		return InstructionNode{}, err
	}

	r0, err := regByte(ops[0].Register)
	if err != nil {
		return InstructionNode{}, err
	}

	r1, err := regByte(ops[1].Register)
	if err != nil {
		return InstructionNode{}, err
	}

	return InstructionNode{Opcode: op, Bytes: []byte{r0, r1}}, nil
}

func (b *builder) regOnly(op cpu.Opcode, ops []asmparse.Operand) (InstructionNode, error) {
	if err := requireOperands(ops, 1); err != nil {
		return InstructionNode{}, err
	}

	if ops[0].Kind != asmparse.OperandRegister {
		return InstructionNode{}, fmt.Errorf("%w: expected register", ErrOperandShape)
	}

	r, err := regByte(ops[0].Register)
	if err != nil {
		return InstructionNode{}, err
	}

	return InstructionNode{Opcode: op, Bytes: []byte{r}}, nil
}

func (b *builder) imm16Only(op cpu.Opcode, ops []asmparse.Operand) (InstructionNode, error) {
	if err := requireOperands(ops, 1); err != nil {
		return InstructionNode{}, err
	}

	if ops[0].Kind != asmparse.OperandNumber {
		return InstructionNode{}, fmt.Errorf("%w: expected immediate", ErrOperandShape)
	}

	w := word16(ops[0].Number)

	return InstructionNode{Opcode: op, Bytes: w[:]}, nil
}

func (b *builder) imm8Only(op cpu.Opcode, ops []asmparse.Operand) (InstructionNode, error) {
	if err := requireOperands(ops, 1); err != nil {
		return InstructionNode{}, err
	}

	if ops[0].Kind != asmparse.OperandNumber {
		return InstructionNode{}, fmt.Errorf("%w: expected immediate", ErrOperandShape)
	}

	if ops[0].Number < 0 || ops[0].Number > 0xff {
		return InstructionNode{}, fmt.Errorf("%w: %d", ErrImmediateTooWide, ops[0].Number)
	}

	return InstructionNode{Opcode: op, Bytes: []byte{byte(ops[0].Number)}}, nil
}

// wordALU implements the ADD-family's single-operand shape: a register operand selects the Reg
// opcode, a numeric operand selects the Imm16 opcode -- both operate implicitly on AX.
func (b *builder) wordALU(imm16, reg cpu.Opcode, ops []asmparse.Operand) (InstructionNode, error) {
	if err := requireOperands(ops, 1); err != nil {
		return InstructionNode{}, err
	}

	switch ops[0].Kind {
	case asmparse.OperandRegister:
		r, err := regByte(ops[0].Register)
		if err != nil {
			return InstructionNode{}, err
		}

		return InstructionNode{Opcode: reg, Bytes: []byte{r}}, nil

	case asmparse.OperandNumber:
		w := word16(ops[0].Number)
		return InstructionNode{Opcode: imm16, Bytes: w[:]}, nil

	default:
		return InstructionNode{}, fmt.Errorf("%w: expected register or immediate", ErrOperandShape)
	}
}

func (b *builder) load(ops []asmparse.Operand) (InstructionNode, error) {
	if err := requireOperands(ops, 2); err != nil {
		return InstructionNode{}, err
	}

	if ops[0].Kind != asmparse.OperandRegister {
		return InstructionNode{}, fmt.Errorf("%w: LD destination must be a register", ErrOperandShape)
	}

	dst, err := regByte(ops[0].Register)
	if err != nil {
		return InstructionNode{}, err
	}

	switch ops[1].Kind {
	case asmparse.OperandRegister:
		src, err := regByte(ops[1].Register)
		if err != nil {
			return InstructionNode{}, err
		}

		return InstructionNode{Opcode: cpu.LD_REG, Bytes: []byte{dst, src}}, nil

	case asmparse.OperandNumber:
		w := word16(ops[1].Number)
		return InstructionNode{Opcode: cpu.LD_IMM16, Bytes: []byte{dst, w[0], w[1]}}, nil

	default:
		return InstructionNode{}, fmt.Errorf("%w: LD source must be a register or immediate", ErrOperandShape)
	}
}

func (b *builder) loadHalf(immOp, regOp cpu.Opcode, ops []asmparse.Operand) (InstructionNode, error) {
	if err := requireOperands(ops, 2); err != nil {
		return InstructionNode{}, err
	}

	dst, err := regByte(ops[0].Register)
	if err != nil {
		return InstructionNode{}, err
	}

	switch ops[1].Kind {
	case asmparse.OperandRegister:
		src, err := regByte(ops[1].Register)
		if err != nil {
			return InstructionNode{}, err
		}

		return InstructionNode{Opcode: regOp, Bytes: []byte{dst, src}}, nil

	case asmparse.OperandNumber:
		if ops[1].Number < 0 || ops[1].Number > 0xff {
			return InstructionNode{}, fmt.Errorf("%w: %d", ErrImmediateTooWide, ops[1].Number)
		}

		return InstructionNode{Opcode: immOp, Bytes: []byte{dst, byte(ops[1].Number)}}, nil

	default:
		return InstructionNode{}, fmt.Errorf("%w: expected register or immediate", ErrOperandShape)
	}
}

// loadAddr handles LDA/LDAB/LDAH/LDAL's two shapes: "reg, label[+-expr]" (direct address, needing
// a link-time patch) and "reg, (reg)" (register-indirect, fully resolved already).
func (b *builder) loadAddr(mnemonic string, ops []asmparse.Operand) (InstructionNode, error) {
	if err := requireOperands(ops, 2); err != nil {
		return InstructionNode{}, err
	}

	dst, err := regByte(ops[0].Register)
	if err != nil {
		return InstructionNode{}, err
	}

	if isIndirect(ops[1]) {
		op, ok := indirectAddrOps[mnemonic]
		if !ok {
			return InstructionNode{}, fmt.Errorf("%w: %s has no register-indirect form", ErrOperandShape, mnemonic)
		}

		src, err := regByte(ops[1].Expr.RegOffset)
		if err != nil {
			return InstructionNode{}, err
		}

		return InstructionNode{Opcode: op, Bytes: []byte{dst, src}}, nil
	}

	op := directAddrOps[mnemonic]

	symbol, constOffset, err := addressOf(ops[1])
	if err != nil {
		return InstructionNode{}, err
	}

	return InstructionNode{
		Opcode: op,
		Bytes:  []byte{dst, 0, 0},
		Patches: []Patch{
			{Offset: 1, Width: 2, Symbol: symbol, ConstOffset: constOffset},
		},
	}, nil
}

func (b *builder) store(mnemonic string, ops []asmparse.Operand) (InstructionNode, error) {
	if err := requireOperands(ops, 2); err != nil {
		return InstructionNode{}, err
	}

	symbol, constOffset, err := addressOf(ops[0])
	if err != nil {
		return InstructionNode{}, err
	}

	src, err := regByte(ops[1].Register)
	if err != nil {
		return InstructionNode{}, err
	}

	return InstructionNode{
		Opcode: storeOps[mnemonic],
		Bytes:  []byte{0, 0, src},
		Patches: []Patch{
			{Offset: 0, Width: 2, Symbol: symbol, ConstOffset: constOffset},
		},
	}, nil
}

func (b *builder) regAndImm16(op cpu.Opcode, ops []asmparse.Operand) (InstructionNode, error) {
	if err := requireOperands(ops, 2); err != nil {
		return InstructionNode{}, err
	}

	r, err := regByte(ops[0].Register)
	if err != nil {
		return InstructionNode{}, err
	}

	if ops[1].Kind != asmparse.OperandNumber {
		return InstructionNode{}, fmt.Errorf("%w: expected immediate offset", ErrOperandShape)
	}

	w := word16(ops[1].Number)

	return InstructionNode{Opcode: op, Bytes: []byte{r, w[0], w[1]}}, nil
}

func (b *builder) page(ops []asmparse.Operand) (InstructionNode, error) {
	if err := requireOperands(ops, 1); err != nil {
		return InstructionNode{}, err
	}

	switch ops[0].Kind {
	case asmparse.OperandRegister:
		r, err := regByte(ops[0].Register)
		if err != nil {
			return InstructionNode{}, err
		}

		return InstructionNode{Opcode: cpu.PAGE_REG, Bytes: []byte{r}}, nil

	case asmparse.OperandAddress:
		return InstructionNode{
			Opcode: cpu.PAGE_IMM,
			Bytes:  []byte{0, 0},
			Patches: []Patch{
				{Offset: 0, Width: 2, Symbol: ops[0].Symbol, IsPage: true},
			},
		}, nil

	default:
		return InstructionNode{}, fmt.Errorf("%w: PAGE expects a page name or register", ErrOperandShape)
	}
}

func (b *builder) jumpTarget(op cpu.Opcode, ops []asmparse.Operand) (InstructionNode, error) {
	if err := requireOperands(ops, 1); err != nil {
		return InstructionNode{}, err
	}

	symbol, constOffset, err := addressOf(ops[0])
	if err != nil {
		return InstructionNode{}, err
	}

	return InstructionNode{
		Opcode: op,
		Bytes:  []byte{0, 0},
		Patches: []Patch{
			{Offset: 0, Width: 2, Symbol: symbol, ConstOffset: constOffset},
		},
	}, nil
}

func (b *builder) call(ops []asmparse.Operand) (InstructionNode, error) {
	if len(ops) < 1 || len(ops) > 2 {
		return InstructionNode{}, fmt.Errorf("%w: CALL takes a target and an optional return flag", ErrOperandCount)
	}

	symbol, constOffset, err := addressOf(ops[0])
	if err != nil {
		return InstructionNode{}, err
	}

	var flag byte

	if len(ops) == 2 {
		if ops[1].Kind != asmparse.OperandNumber {
			return InstructionNode{}, fmt.Errorf("%w: CALL's return flag must be 0 or 1", ErrOperandShape)
		}

		flag = byte(ops[1].Number)
	}

	return InstructionNode{
		Opcode: cpu.CALL,
		Bytes:  []byte{0, 0, flag},
		Patches: []Patch{
			{Offset: 0, Width: 2, Symbol: symbol, ConstOffset: constOffset},
		},
	}, nil
}

func (b *builder) compare(ops []asmparse.Operand, regOp, immOp cpu.Opcode, immIsWord bool) (InstructionNode, error) {
	if err := requireOperands(ops, 2); err != nil {
		return InstructionNode{}, err
	}

	dst, err := regByte(ops[0].Register)
	if err != nil {
		return InstructionNode{}, err
	}

	switch ops[1].Kind {
	case asmparse.OperandRegister:
		src, err := regByte(ops[1].Register)
		if err != nil {
			return InstructionNode{}, err
		}

		return InstructionNode{Opcode: regOp, Bytes: []byte{dst, src}}, nil

	case asmparse.OperandNumber:
		if immIsWord {
			w := word16(ops[1].Number)
			return InstructionNode{Opcode: immOp, Bytes: []byte{dst, w[0], w[1]}}, nil
		}

		if ops[1].Number < 0 || ops[1].Number > 0xff {
			return InstructionNode{}, fmt.Errorf("%w: %d", ErrImmediateTooWide, ops[1].Number)
		}

		return InstructionNode{Opcode: immOp, Bytes: []byte{dst, byte(ops[1].Number)}}, nil

	default:
		return InstructionNode{}, fmt.Errorf("%w: expected register or immediate", ErrOperandShape)
	}
}

func isIndirect(op asmparse.Operand) bool {
	return op.Kind == asmparse.OperandExpression && op.Expr.HasReg && !op.Expr.HasSymbol && op.Expr.ConstOffset == 0
}

// addressOf extracts the symbol and constant offset an Address/MemoryAccess/Expression operand
// names, for instructions whose operand is a link-time-resolved address.
func addressOf(op asmparse.Operand) (string, int64, error) {
	switch op.Kind {
	case asmparse.OperandAddress:
		return op.Symbol, op.Expr.ConstOffset, nil
	case asmparse.OperandMemoryAccess:
		return op.Symbol, op.Expr.ConstOffset, nil
	case asmparse.OperandExpression:
		if !op.Expr.HasSymbol {
			return "", 0, fmt.Errorf("%w: expression has no label to resolve", ErrOperandShape)
		}

		return op.Expr.Symbol, op.Expr.ConstOffset, nil
	default:
		return "", 0, fmt.Errorf("%w: expected an address operand", ErrOperandShape)
	}
}
