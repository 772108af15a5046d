package cpu

import (
	"fmt"

	"github.com/pendragon-project/pendragon/internal/plog"
	"github.com/pendragon-project/pendragon/internal/syscalls"
	"github.com/pendragon-project/pendragon/internal/vmem"
)

// retRecord is one entry on the Instruction Unit's private return stack.
type retRecord struct {
	returnAddr uint16
	framePtr   int64
}

// InstructionUnit owns the program counter (IR), the call/return protocol, and the syscall
// dispatch. It holds shared, non-owning references to the memory unit, the code context, and the
// data stack.
type InstructionUnit struct {
	ir uint16

	mem     *vmem.Unit
	codeCtx vmem.ContextID
	stack   *vmem.Stack
	sys     syscalls.Surface

	retStack []retRecord

	log *plog.Logger
}

// NewInstructionUnit constructs an IU. The memory unit must be Unprotected.
func NewInstructionUnit(mem *vmem.Unit, codeCtx vmem.ContextID, stack *vmem.Stack, sys syscalls.Surface) *InstructionUnit {
	return &InstructionUnit{
		mem:     mem,
		codeCtx: codeCtx,
		stack:   stack,
		sys:     sys,
		log:     plog.DefaultLogger(),
	}
}

func (iu *InstructionUnit) WithLogger(l *plog.Logger) { iu.log = l }

// GetIR returns the current instruction pointer.
func (iu *InstructionUnit) GetIR() uint16 { return iu.ir }

// SetIR sets the instruction pointer directly.
func (iu *InstructionUnit) SetIR(v uint16) { iu.ir = v }

// AdvanceIR moves the instruction pointer forward by n bytes.
func (iu *InstructionUnit) AdvanceIR(n int) { iu.ir += uint16(n) }

func (iu *InstructionUnit) codeAccessor(mode vmem.AccessMode) (*vmem.Accessor, error) {
	acc, err := iu.mem.CreateAccessor(iu.codeCtx, mode)
	if err != nil {
		return nil, err
	}

	acc.SetPage(0)

	return acc, nil
}

// ReadByteAtIR fetches the byte at IR without advancing it.
func (iu *InstructionUnit) ReadByteAtIR() (byte, error) {
	acc, err := iu.codeAccessor(vmem.ReadOnly)
	if err != nil {
		return 0, err
	}

	return acc.ReadByte(iu.ir)
}

// ReadWordAtIR fetches the little-endian word at IR without advancing it.
func (iu *InstructionUnit) ReadWordAtIR() (uint16, error) {
	acc, err := iu.codeAccessor(vmem.ReadOnly)
	if err != nil {
		return 0, err
	}

	return acc.ReadWord(iu.ir)
}

// PeekBytes reads n bytes starting at IR without advancing it.
func (iu *InstructionUnit) PeekBytes(n int) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}

	acc, err := iu.codeAccessor(vmem.ReadOnly)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, n)
	if err := acc.BulkRead(iu.ir, buf, n); err != nil {
		return nil, err
	}

	return buf, nil
}

// JumpToAddress sets IR to an absolute target.
func (iu *InstructionUnit) JumpToAddress(a uint16) { iu.ir = a }

// JumpToAddressConditional takes the jump iff the flag's value matches expected.
func (iu *InstructionUnit) JumpToAddressConditional(a uint16, flags *Flags, flag Flag, expected bool) {
	if flags.Test(flag) == expected {
		iu.ir = a
	}
}

// LoadProgram writes bytes into the code context starting at offset 0, one page-sized chunk at a
// time.
func (iu *InstructionUnit) LoadProgram(bytes []byte) error {
	acc, err := iu.codeAccessor(vmem.ReadWrite)
	if err != nil {
		return err
	}

	const pageSize = 1 << 16

	for written := 0; written < len(bytes); {
		acc.SetPage(uint16(written / pageSize))

		remaining := len(bytes) - written
		chunk := pageSize

		if remaining < chunk {
			chunk = remaining
		}

		if err := acc.BulkWrite(uint16(written%pageSize), bytes[written:written+chunk]); err != nil {
			return err
		}

		written += chunk
	}

	return nil
}

// CallSubroutine pushes a return record and the return-value marker byte, jumps to target, and
// opens a new frame over the marker.
func (iu *InstructionUnit) CallSubroutine(target uint16, withReturnValue bool, fp int64) error {
	iu.retStack = append(iu.retStack, retRecord{returnAddr: iu.ir, framePtr: fp})

	iu.ir = target

	sa, err := iu.stack.GetAccessor(vmem.ReadWrite)
	if err != nil {
		return err
	}

	marker := byte(0)
	if withReturnValue {
		marker = 1
	}

	if err := sa.PushByte(marker); err != nil {
		return err
	}

	return sa.SetFrameToTop()
}

// ReturnFromSubroutine pops the return record, restores IR, and unwinds the current frame,
// carrying forward a return value if the call requested one.
func (iu *InstructionUnit) ReturnFromSubroutine() error {
	if len(iu.retStack) == 0 {
		return ErrReturnStackUnderflow
	}

	rec := iu.retStack[len(iu.retStack)-1]
	iu.retStack = iu.retStack[:len(iu.retStack)-1]

	iu.ir = rec.returnAddr

	sa, err := iu.stack.GetAccessor(vmem.ReadWrite)
	if err != nil {
		return err
	}

	marker, err := sa.PeekByteFromFrame(-1) // the marker sits at fp, just below the frame's floor
	if err != nil {
		return err
	}

	if marker == 1 {
		retval, err := sa.PopWord()
		if err != nil {
			return err
		}

		if err := sa.Flush(); err != nil {
			return err
		}

		if err := sa.SetFramePointer(rec.framePtr); err != nil {
			return err
		}

		if _, err := sa.PopByte(); err != nil {
			return err
		}

		return sa.PushWord(retval)
	}

	if err := sa.Flush(); err != nil {
		return err
	}

	if err := sa.SetFramePointer(rec.framePtr); err != nil {
		return err
	}

	_, err = sa.PopByte()

	return err
}

// StackAccessorFor returns a scoped StackAccessor over the IU's data stack, for opcode handlers
// that push, pop, or peek directly.
func (iu *InstructionUnit) StackAccessorFor(mode vmem.AccessMode) (*vmem.StackAccessor, error) {
	return iu.stack.GetAccessor(mode)
}

// CurrentFramePointer returns the data stack's frame pointer, for CALL to snapshot into the return
// record before opening the callee's frame.
func (iu *InstructionUnit) CurrentFramePointer() int64 {
	return iu.stack.FP()
}

// SystemCall dispatches to the host syscall surface.
func (iu *InstructionUnit) SystemCall(n uint16) error {
	if iu.sys == nil {
		return fmt.Errorf("%w: %#04x", ErrUnknownSyscall, n)
	}

	sa, err := iu.stack.GetAccessor(vmem.ReadWrite)
	if err != nil {
		return err
	}

	return iu.sys.Call(n, sa)
}
