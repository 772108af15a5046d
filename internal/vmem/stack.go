package vmem

import (
	"fmt"

	"github.com/pendragon-project/pendragon/internal/plog"
)

// Stack is an upward-growing stack with frame-pointer semantics, backed by a dedicated context
// whose physical memory is pre-allocated in full at construction so no allocation ever happens
// mid-execution.
type Stack struct {
	unit *Unit
	ctx  ContextID
	cap  uint32

	sp int64 // next free byte; 0 <= sp <= cap
	fp int64 // -1 means "no frame"; otherwise fp < sp, and the marker byte sits at fp

	log *plog.Logger
}

// NewStack creates a stack of the given byte capacity. The unit must be Unprotected.
func NewStack(u *Unit, capacity uint32) (*Stack, error) {
	id, err := u.CreateContext(uint64(capacity))
	if err != nil {
		return nil, fmt.Errorf("stack: %w", err)
	}

	if err := u.EnsureAllPhysicalMemory(id); err != nil {
		return nil, fmt.Errorf("stack: %w", err)
	}

	return &Stack{
		unit: u,
		ctx:  id,
		cap:  capacity,
		fp:   -1,
		log:  plog.DefaultLogger(),
	}, nil
}

// WithLogger attaches a logger to the stack.
func (s *Stack) WithLogger(l *plog.Logger) { s.log = l }

// ContextID returns the backing context's ID.
func (s *Stack) ContextID() ContextID { return s.ctx }

// SP returns the current stack pointer.
func (s *Stack) SP() int64 { return s.sp }

// FP returns the current frame pointer (-1 if there is no frame).
func (s *Stack) FP() int64 { return s.fp }

// StackAccessor is a scoped view over the stack's flat 32-bit address space. Unlike a paged Accessor,
// it addresses the stack context directly: physical address == byte index, no page indirection.
type StackAccessor struct {
	stack *Stack
	mode  AccessMode
}

// GetAccessor returns a scoped StackAccessor. Only valid while the unit is Protected.
func (s *Stack) GetAccessor(mode AccessMode) (*StackAccessor, error) {
	if s.unit.Mode() != Protected {
		return nil, &ModeError{Op: "Stack.GetAccessor", Required: Protected, Actual: s.unit.Mode()}
	}

	return &StackAccessor{stack: s, mode: mode}, nil
}

func (sa *StackAccessor) floor() int64 {
	if sa.stack.fp == -1 {
		return 0
	}

	return sa.stack.fp + 1
}

func (sa *StackAccessor) checkWrite() error {
	if sa.mode != ReadWrite {
		return ErrReadOnly
	}

	return nil
}

// PushByte writes v at sp and advances sp by one.
func (sa *StackAccessor) PushByte(v byte) error {
	if err := sa.checkWrite(); err != nil {
		return err
	}

	s := sa.stack

	if s.sp == int64(s.cap) {
		return ErrStackOverflow
	}

	if err := s.unit.WriteByte(s.ctx, uint32(s.sp), v); err != nil {
		return err
	}

	s.sp++

	return nil
}

// PopByte reads the byte below sp, decrements sp, and returns it. Fails with ErrStackUnderflow if
// sp is already at the current frame's floor.
func (sa *StackAccessor) PopByte() (byte, error) {
	s := sa.stack

	if err := sa.checkWrite(); err != nil {
		return 0, err
	}

	if s.sp == sa.floor() {
		return 0, ErrStackUnderflow
	}

	v, err := s.unit.ReadByte(s.ctx, uint32(s.sp-1))
	if err != nil {
		return 0, err
	}

	s.sp--

	return v, nil
}

// PushWord pushes v's low byte, then its high byte, so the low byte sits at the lower address.
func (sa *StackAccessor) PushWord(v uint16) error {
	if err := sa.PushByte(byte(v)); err != nil {
		return err
	}

	return sa.PushByte(byte(v >> 8))
}

// PopWord pops the high byte, then the low byte, and recomposes the little-endian word.
func (sa *StackAccessor) PopWord() (uint16, error) {
	hi, err := sa.PopByte()
	if err != nil {
		return 0, err
	}

	lo, err := sa.PopByte()
	if err != nil {
		return 0, err
	}

	return uint16(lo) | uint16(hi)<<8, nil
}

// PeekByte reads the top byte without moving sp.
func (sa *StackAccessor) PeekByte() (byte, error) {
	s := sa.stack
	if s.sp == sa.floor() {
		return 0, ErrStackUnderflow
	}

	return s.unit.ReadByte(s.ctx, uint32(s.sp-1))
}

// PeekWord reads the top word without moving sp.
func (sa *StackAccessor) PeekWord() (uint16, error) {
	s := sa.stack
	if s.sp-2 < sa.floor() {
		return 0, ErrStackUnderflow
	}

	lo, err := s.unit.ReadByte(s.ctx, uint32(s.sp-2))
	if err != nil {
		return 0, err
	}

	hi, err := s.unit.ReadByte(s.ctx, uint32(s.sp-1))
	if err != nil {
		return 0, err
	}

	return uint16(lo) | uint16(hi)<<8, nil
}

// PeekByteFromBase reads a byte at an absolute offset from the stack's base (address 0).
func (sa *StackAccessor) PeekByteFromBase(off int64) (byte, error) {
	s := sa.stack

	if off < 0 || off >= s.sp {
		return 0, &AddressError{ContextID: s.ctx, Addr: uint32(off), Size: uint64(s.cap)}
	}

	return s.unit.ReadByte(s.ctx, uint32(off))
}

// PeekWordFromBase reads a little-endian word at an absolute offset from the stack's base.
func (sa *StackAccessor) PeekWordFromBase(off int64) (uint16, error) {
	lo, err := sa.PeekByteFromBase(off)
	if err != nil {
		return 0, err
	}

	hi, err := sa.PeekByteFromBase(off + 1)
	if err != nil {
		return 0, err
	}

	return uint16(lo) | uint16(hi)<<8, nil
}

// PeekByteFromFrame reads a byte at a (possibly negative) offset from fp+1, the first frame slot.
func (sa *StackAccessor) PeekByteFromFrame(off int64) (byte, error) {
	s := sa.stack
	idx := sa.floor() + off

	if idx < 0 || idx >= int64(s.cap) {
		return 0, &AddressError{ContextID: s.ctx, Addr: uint32(idx), Size: uint64(s.cap)}
	}

	return s.unit.ReadByte(s.ctx, uint32(idx))
}

// PeekWordFromFrame reads a little-endian word at a frame-relative offset.
func (sa *StackAccessor) PeekWordFromFrame(off int64) (uint16, error) {
	lo, err := sa.PeekByteFromFrame(off)
	if err != nil {
		return 0, err
	}

	hi, err := sa.PeekByteFromFrame(off + 1)
	if err != nil {
		return 0, err
	}

	return uint16(lo) | uint16(hi)<<8, nil
}

// SetFramePointer sets fp directly. The value -1 restores "no frame".
func (sa *StackAccessor) SetFramePointer(v int64) error {
	if err := sa.checkWrite(); err != nil {
		return err
	}

	sa.stack.fp = v

	return nil
}

// SetFrameToTop sets fp to sp-1, so the marker byte at fp is the most recently pushed byte.
func (sa *StackAccessor) SetFrameToTop() error {
	if err := sa.checkWrite(); err != nil {
		return err
	}

	sa.stack.fp = sa.stack.sp - 1

	return nil
}

// Flush collapses the current frame to its marker: sp := fp+1.
func (sa *StackAccessor) Flush() error {
	if err := sa.checkWrite(); err != nil {
		return err
	}

	sa.stack.sp = sa.floor()

	return nil
}

// IsEmpty reports whether the current frame holds no data.
func (sa *StackAccessor) IsEmpty() bool {
	return sa.stack.sp == sa.floor()
}

// IsFull reports whether the stack has no remaining capacity.
func (sa *StackAccessor) IsFull() bool {
	return sa.stack.sp == int64(sa.stack.cap)
}
