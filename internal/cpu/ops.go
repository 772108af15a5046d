package cpu

// ops.go implements the CPU's opcode handlers, grouped and dispatched by the opcode ranges from
// spec section 4.7. ALU, logical, and shift/rotate opcodes share one implementation per operation
// across their five operand shapes via shapeHandler, rather than duplicating the shape-decoding
// logic once per operation (13 times).

import (
	"fmt"

	"github.com/pendragon-project/pendragon/internal/vmem"
)

func word(b []byte, i int) uint16 { return uint16(b[i]) | uint16(b[i+1])<<8 }

func (c *CPU) dispatch(op Opcode, p []byte) error {
	switch {
	case op == SWP:
		return c.opSwap(p)
	case op >= LD_IMM16 && op <= STAL, op == LDA_IND, op == LDAH_IND, op == LDAL_IND:
		return c.opLoadStore(op, p)
	case op >= PUSH && op <= FLSH, op == PUSHW, op == PUSHB:
		return c.opStack(op, p)
	case op == PAGE_IMM, op == PAGE_REG:
		return c.opPage(op, p)
	case op == SETF:
		return nil // legacy no-op; retained only for opcode-table completeness.
	case op >= JMP && op <= JPNO:
		return c.opJump(op, p)
	case op == CALL:
		return c.opCall(p)
	case op == RET:
		return c.IU.ReturnFromSubroutine()
	case op >= ADD_IMM16 && op <= NTL_REG:
		return c.opALUShape(op, p)
	case op >= SHL_IMM16 && op <= RRL_REG:
		return c.opALUShape(op, p)
	case op == INC:
		return c.Reg.Inc(RegID(p[0]))
	case op == DEC:
		return c.Reg.Dec(RegID(p[0]))
	case op >= CMP_REG && op <= CPL_IMM8:
		return c.opCompare(op, p)
	case op == SYS:
		return c.IU.SystemCall(word(p, 0))
	default:
		return fmt.Errorf("%w: %#02x", ErrUnknownOpcode, byte(op))
	}
}

func (c *CPU) opSwap(p []byte) error {
	a, b := RegID(p[0]), RegID(p[1])

	va, err := c.Reg.Get(a)
	if err != nil {
		return err
	}

	vb, err := c.Reg.Get(b)
	if err != nil {
		return err
	}

	if err := c.Reg.Set(a, vb); err != nil {
		return err
	}

	return c.Reg.Set(b, va)
}

// opLoadStore implements the load/store family: register-to-register, immediate-to-register, and
// memory-to-register/register-to-memory via the data context.
func (c *CPU) opLoadStore(op Opcode, p []byte) error {
	switch op {
	case LD_IMM16:
		return c.Reg.Set(RegID(p[0]), word(p, 1))
	case LD_REG:
		v, err := c.Reg.Get(RegID(p[1]))
		if err != nil {
			return err
		}

		return c.Reg.Set(RegID(p[0]), v)
	case LDH_IMM8:
		return c.Reg.SetHigh(RegID(p[0]), p[1])
	case LDH_REG:
		v, err := c.Reg.GetLow(RegID(p[1]))
		if err != nil {
			return err
		}

		return c.Reg.SetHigh(RegID(p[0]), v)
	case LDL_IMM8:
		return c.Reg.SetLow(RegID(p[0]), p[1])
	case LDL_REG:
		v, err := c.Reg.GetLow(RegID(p[1]))
		if err != nil {
			return err
		}

		return c.Reg.SetLow(RegID(p[0]), v)
	case LDA:
		acc, err := c.dataAccessor(vmem.ReadOnly)
		if err != nil {
			return err
		}

		acc.SetPage(c.dataPage)

		v, err := acc.ReadWord(word(p, 1))
		if err != nil {
			return err
		}

		return c.Reg.Set(RegID(p[0]), v)
	case LDAB:
		// Zero-extends the byte at addr into the whole register, unlike LDAH/LDAL which only
		// touch one half -- the generic form the sugar rewriter emits for an 8-bit label operand.
		acc, err := c.dataAccessor(vmem.ReadOnly)
		if err != nil {
			return err
		}

		acc.SetPage(c.dataPage)

		v, err := acc.ReadByte(word(p, 1))
		if err != nil {
			return err
		}

		return c.Reg.Set(RegID(p[0]), uint16(v))
	case LDAH:
		acc, err := c.dataAccessor(vmem.ReadOnly)
		if err != nil {
			return err
		}

		acc.SetPage(c.dataPage)

		v, err := acc.ReadByte(word(p, 1))
		if err != nil {
			return err
		}

		return c.Reg.SetHigh(RegID(p[0]), v)
	case LDAL:
		acc, err := c.dataAccessor(vmem.ReadOnly)
		if err != nil {
			return err
		}

		acc.SetPage(c.dataPage)

		v, err := acc.ReadByte(word(p, 1))
		if err != nil {
			return err
		}

		return c.Reg.SetLow(RegID(p[0]), v)
	case STA:
		v, err := c.Reg.Get(RegID(p[2]))
		if err != nil {
			return err
		}

		acc, err := c.dataAccessor(vmem.ReadWrite)
		if err != nil {
			return err
		}

		acc.SetPage(c.dataPage)

		return acc.WriteWord(word(p, 0), v)
	case STAH:
		v, err := c.Reg.GetHigh(RegID(p[2]))
		if err != nil {
			return err
		}

		acc, err := c.dataAccessor(vmem.ReadWrite)
		if err != nil {
			return err
		}

		acc.SetPage(c.dataPage)

		return acc.WriteByte(word(p, 0), v)
	case STAL:
		v, err := c.Reg.GetLow(RegID(p[2]))
		if err != nil {
			return err
		}

		acc, err := c.dataAccessor(vmem.ReadWrite)
		if err != nil {
			return err
		}

		acc.SetPage(c.dataPage)

		return acc.WriteByte(word(p, 0), v)
	case LDA_IND, LDAH_IND, LDAL_IND:
		srcAddr, err := c.Reg.Get(RegID(p[1]))
		if err != nil {
			return err
		}

		acc, err := c.dataAccessor(vmem.ReadOnly)
		if err != nil {
			return err
		}

		acc.SetPage(c.dataPage)

		switch op {
		case LDA_IND:
			v, err := acc.ReadWord(srcAddr)
			if err != nil {
				return err
			}

			return c.Reg.Set(RegID(p[0]), v)
		case LDAH_IND:
			v, err := acc.ReadByte(srcAddr)
			if err != nil {
				return err
			}

			return c.Reg.SetHigh(RegID(p[0]), v)
		default: // LDAL_IND
			v, err := acc.ReadByte(srcAddr)
			if err != nil {
				return err
			}

			return c.Reg.SetLow(RegID(p[0]), v)
		}
	default:
		return fmt.Errorf("%w: %#02x", ErrUnknownOpcode, byte(op))
	}
}

func (c *CPU) opPage(op Opcode, p []byte) error {
	switch op {
	case PAGE_IMM:
		c.dataPage = word(p, 0)
	case PAGE_REG:
		v, err := c.Reg.Get(RegID(p[0]))
		if err != nil {
			return err
		}

		c.dataPage = v
	}

	return nil
}

func (c *CPU) opStack(op Opcode, p []byte) error {
	sa, err := c.IU.StackAccessorFor(vmem.ReadWrite)
	if err != nil {
		return err
	}

	switch op {
	case PUSH:
		v, err := c.Reg.Get(RegID(p[0]))
		if err != nil {
			return err
		}

		return sa.PushWord(v)
	case PUSHH:
		v, err := c.Reg.GetHigh(RegID(p[0]))
		if err != nil {
			return err
		}

		return sa.PushByte(v)
	case PUSHL:
		v, err := c.Reg.GetLow(RegID(p[0]))
		if err != nil {
			return err
		}

		return sa.PushByte(v)
	case POP:
		v, err := sa.PopWord()
		if err != nil {
			return err
		}

		return c.Reg.Set(RegID(p[0]), v)
	case POPH:
		v, err := sa.PopByte()
		if err != nil {
			return err
		}

		return c.Reg.SetHigh(RegID(p[0]), v)
	case POPL:
		v, err := sa.PopByte()
		if err != nil {
			return err
		}

		return c.Reg.SetLow(RegID(p[0]), v)
	case PEEKB:
		v, err := sa.PeekByteFromBase(int64(word(p, 1)))
		if err != nil {
			return err
		}

		return c.Reg.SetLow(RegID(p[0]), v)
	case PEEKW:
		v, err := sa.PeekWordFromBase(int64(word(p, 1)))
		if err != nil {
			return err
		}

		return c.Reg.Set(RegID(p[0]), v)
	case PEEKFB:
		v, err := sa.PeekByteFromFrame(int64(int16(word(p, 1))))
		if err != nil {
			return err
		}

		return c.Reg.SetLow(RegID(p[0]), v)
	case PEEKFW:
		v, err := sa.PeekWordFromFrame(int64(int16(word(p, 1))))
		if err != nil {
			return err
		}

		return c.Reg.Set(RegID(p[0]), v)
	case FLSH:
		return sa.Flush()
	case PUSHW:
		return sa.PushWord(word(p, 0))
	case PUSHB:
		return sa.PushByte(p[0])
	default:
		return fmt.Errorf("%w: %#02x", ErrUnknownOpcode, byte(op))
	}
}

func (c *CPU) opJump(op Opcode, p []byte) error {
	target := word(p, 0)

	switch op {
	case JMP:
		c.IU.JumpToAddress(target)
	case JPZ:
		c.IU.JumpToAddressConditional(target, c.Flags, FlagZero, true)
	case JPNZ:
		c.IU.JumpToAddressConditional(target, c.Flags, FlagZero, false)
	case JPC:
		c.IU.JumpToAddressConditional(target, c.Flags, FlagCarry, true)
	case JPNC:
		c.IU.JumpToAddressConditional(target, c.Flags, FlagCarry, false)
	case JPS:
		c.IU.JumpToAddressConditional(target, c.Flags, FlagSign, true)
	case JPNS:
		c.IU.JumpToAddressConditional(target, c.Flags, FlagSign, false)
	case JPO:
		c.IU.JumpToAddressConditional(target, c.Flags, FlagOverflow, true)
	case JPNO:
		c.IU.JumpToAddressConditional(target, c.Flags, FlagOverflow, false)
	}

	return nil
}

func (c *CPU) opCall(p []byte) error {
	target := word(p, 0)
	withReturn := p[2] != 0

	return c.IU.CallSubroutine(target, withReturn, c.IU.CurrentFramePointer())
}

// opCompare implements CMP/CPH/CPL. Unlike the rest of the ALU family, these name their own
// register explicitly as the first operand instead of operating implicitly on AX.
func (c *CPU) opCompare(op Opcode, p []byte) error {
	dst := RegID(p[0])

	switch op {
	case CMP_REG:
		v, err := c.Reg.Get(RegID(p[1]))
		if err != nil {
			return err
		}

		return c.ALU.CompareWord(dst, v)
	case CMP_IMM16:
		return c.ALU.CompareWord(dst, word(p, 1))
	case CPH_REG:
		v, err := c.Reg.GetHigh(RegID(p[1]))
		if err != nil {
			return err
		}

		return c.ALU.CompareByteHigh(dst, v)
	case CPH_IMM8:
		return c.ALU.CompareByteHigh(dst, p[1])
	case CPL_REG:
		v, err := c.Reg.GetLow(RegID(p[1]))
		if err != nil {
			return err
		}

		return c.ALU.CompareByteLow(dst, v)
	case CPL_IMM8:
		return c.ALU.CompareByteLow(dst, p[1])
	default:
		return fmt.Errorf("%w: %#02x", ErrUnknownOpcode, byte(op))
	}
}

// shape identifies which of the five operand shapes an ALU/shift opcode uses.
type shape uint8

const (
	shapeImm16 shape = iota
	shapeReg
	shapeImm8
	shapeRegHigh
	shapeRegLow
)

// aluShapeTable maps each opcode in the arithmetic/logical/shift ranges to its operation and shape.
var aluShapeTable = map[Opcode]struct {
	op    Op
	shape shape
}{
	ADD_IMM16: {OpAdd, shapeImm16}, ADD_REG: {OpAdd, shapeReg}, ADB_IMM8: {OpAdd, shapeImm8}, ADH_REG: {OpAdd, shapeRegHigh}, ADL_REG: {OpAdd, shapeRegLow},
	SUB_IMM16: {OpSub, shapeImm16}, SUB_REG: {OpSub, shapeReg}, SBB_IMM8: {OpSub, shapeImm8}, SBH_REG: {OpSub, shapeRegHigh}, SBL_REG: {OpSub, shapeRegLow},
	MUL_IMM16: {OpMul, shapeImm16}, MUL_REG: {OpMul, shapeReg}, MLB_IMM8: {OpMul, shapeImm8}, MLH_REG: {OpMul, shapeRegHigh}, MLL_REG: {OpMul, shapeRegLow},
	DIV_IMM16: {OpDiv, shapeImm16}, DIV_REG: {OpDiv, shapeReg}, DVB_IMM8: {OpDiv, shapeImm8}, DVH_REG: {OpDiv, shapeRegHigh}, DVL_REG: {OpDiv, shapeRegLow},
	REM_IMM16: {OpRem, shapeImm16}, REM_REG: {OpRem, shapeReg}, RMB_IMM8: {OpRem, shapeImm8}, RMH_REG: {OpRem, shapeRegHigh}, RML_REG: {OpRem, shapeRegLow},

	AND_IMM16: {OpAnd, shapeImm16}, AND_REG: {OpAnd, shapeReg}, ANB_IMM8: {OpAnd, shapeImm8}, ANH_REG: {OpAnd, shapeRegHigh}, ANL_REG: {OpAnd, shapeRegLow},
	OR_IMM16: {OpOr, shapeImm16}, OR_REG: {OpOr, shapeReg}, ORB_IMM8: {OpOr, shapeImm8}, ORH_REG: {OpOr, shapeRegHigh}, ORL_REG: {OpOr, shapeRegLow},
	XOR_IMM16: {OpXor, shapeImm16}, XOR_REG: {OpXor, shapeReg}, XOB_IMM8: {OpXor, shapeImm8}, XOH_REG: {OpXor, shapeRegHigh}, XOL_REG: {OpXor, shapeRegLow},
	NOT_IMM16: {OpNot, shapeImm16}, NOT_REG: {OpNot, shapeReg}, NTB_IMM8: {OpNot, shapeImm8}, NTH_REG: {OpNot, shapeRegHigh}, NTL_REG: {OpNot, shapeRegLow},

	SHL_IMM16: {OpShl, shapeImm16}, SHL_REG: {OpShl, shapeReg}, SLB_IMM8: {OpShl, shapeImm8}, SLH_REG: {OpShl, shapeRegHigh}, SLL_REG: {OpShl, shapeRegLow},
	SHR_IMM16: {OpShr, shapeImm16}, SHR_REG: {OpShr, shapeReg}, SRB_IMM8: {OpShr, shapeImm8}, SRH_REG: {OpShr, shapeRegHigh}, SRL_REG: {OpShr, shapeRegLow},
	ROL_IMM16: {OpRol, shapeImm16}, ROL_REG: {OpRol, shapeReg}, RLB_IMM8: {OpRol, shapeImm8}, RLH_REG: {OpRol, shapeRegHigh}, RLL_REG: {OpRol, shapeRegLow},
	ROR_IMM16: {OpRor, shapeImm16}, ROR_REG: {OpRor, shapeReg}, RRB_IMM8: {OpRor, shapeImm8}, RRH_REG: {OpRor, shapeRegHigh}, RRL_REG: {OpRor, shapeRegLow},
}

func (c *CPU) opALUShape(op Opcode, p []byte) error {
	entry, ok := aluShapeTable[op]
	if !ok {
		return fmt.Errorf("%w: %#02x", ErrUnknownOpcode, byte(op))
	}

	switch entry.shape {
	case shapeImm16:
		return c.ALU.Word(entry.op, word(p, 0))
	case shapeReg:
		v, err := c.Reg.Get(RegID(p[0]))
		if err != nil {
			return err
		}

		return c.ALU.Word(entry.op, v)
	case shapeImm8:
		return c.ALU.Byte(entry.op, p[0])
	case shapeRegHigh:
		v, err := c.Reg.GetHigh(RegID(p[0]))
		if err != nil {
			return err
		}

		return c.ALU.Byte(entry.op, v)
	case shapeRegLow:
		v, err := c.Reg.GetLow(RegID(p[0]))
		if err != nil {
			return err
		}

		return c.ALU.Byte(entry.op, v)
	default:
		return fmt.Errorf("%w: %#02x", ErrUnknownOpcode, byte(op))
	}
}
