// Package cpu implements Pendragon's register file, ALU, instruction unit, and fetch-decode-
// execute loop.
package cpu

import "fmt"

// RegID identifies one of the five general-purpose registers by its encoded byte.
type RegID byte

const (
	AX RegID = 0x01
	BX RegID = 0x02
	CX RegID = 0x03
	DX RegID = 0x04
	EX RegID = 0x05
)

func (r RegID) String() string {
	switch r {
	case AX:
		return "AX"
	case BX:
		return "BX"
	case CX:
		return "CX"
	case DX:
		return "DX"
	case EX:
		return "EX"
	default:
		return fmt.Sprintf("REG(%#02x)", byte(r))
	}
}

// registerIndex centralizes the byte-code-to-slot mapping; nothing else in the package may map a
// RegID to a slot index.
func registerIndex(r RegID) (int, error) {
	switch r {
	case AX, BX, CX, DX, EX:
		return int(r) - 1, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrInvalidRegister, r)
	}
}

// Flags holds the shared condition-flag register. Registers and the ALU are the only sources of
// flag updates.
type Flags struct {
	zero, sign, carry, overflow bool
}

type Flag uint8

const (
	FlagZero Flag = iota
	FlagSign
	FlagCarry
	FlagOverflow
)

func (f *Flags) Set(flag Flag)        { f.assign(flag, true) }
func (f *Flags) Clear(flag Flag)      { f.assign(flag, false) }
func (f *Flags) Test(flag Flag) bool  { return f.get(flag) }
func (f *Flags) get(flag Flag) bool {
	switch flag {
	case FlagZero:
		return f.zero
	case FlagSign:
		return f.sign
	case FlagCarry:
		return f.carry
	case FlagOverflow:
		return f.overflow
	default:
		return false
	}
}

func (f *Flags) assign(flag Flag, v bool) {
	switch flag {
	case FlagZero:
		f.zero = v
	case FlagSign:
		f.sign = v
	case FlagCarry:
		f.carry = v
	case FlagOverflow:
		f.overflow = v
	}
}

// setFromResult updates ZERO and SIGN from a 16-bit result. It never touches CARRY or OVERFLOW,
// which are set only by the ALU.
func (f *Flags) setFromResult(v uint16) {
	f.zero = v == 0
	f.sign = int16(v) < 0
}

func (f Flags) String() string {
	return fmt.Sprintf("Z:%t S:%t C:%t O:%t", f.zero, f.sign, f.carry, f.overflow)
}

// RegisterFile is the set of five 16-bit general-purpose registers.
type RegisterFile struct {
	words [5]uint16
	flags *Flags
}

// NewRegisterFile creates a register file sharing the given Flags.
func NewRegisterFile(flags *Flags) *RegisterFile {
	return &RegisterFile{flags: flags}
}

// Get returns the whole-word value of a register.
func (rf *RegisterFile) Get(r RegID) (uint16, error) {
	i, err := registerIndex(r)
	if err != nil {
		return 0, err
	}

	return rf.words[i], nil
}

// Set stores a whole-word value and updates ZERO/SIGN from it.
func (rf *RegisterFile) Set(r RegID, v uint16) error {
	i, err := registerIndex(r)
	if err != nil {
		return err
	}

	rf.words[i] = v
	rf.flags.setFromResult(v)

	return nil
}

// GetHigh returns the high byte of a register.
func (rf *RegisterFile) GetHigh(r RegID) (byte, error) {
	v, err := rf.Get(r)
	if err != nil {
		return 0, err
	}

	return byte(v >> 8), nil
}

// SetHigh sets the high byte of a register, leaving flags untouched.
func (rf *RegisterFile) SetHigh(r RegID, v byte) error {
	i, err := registerIndex(r)
	if err != nil {
		return err
	}

	rf.words[i] = uint16(v)<<8 | (rf.words[i] & 0x00ff)

	return nil
}

// GetLow returns the low byte of a register.
func (rf *RegisterFile) GetLow(r RegID) (byte, error) {
	v, err := rf.Get(r)
	if err != nil {
		return 0, err
	}

	return byte(v), nil
}

// SetLow sets the low byte of a register, leaving flags untouched.
func (rf *RegisterFile) SetLow(r RegID, v byte) error {
	i, err := registerIndex(r)
	if err != nil {
		return err
	}

	rf.words[i] = (rf.words[i] & 0xff00) | uint16(v)

	return nil
}

// Inc increments a register, wrapping modulo 2^16. Only AX updates flags.
func (rf *RegisterFile) Inc(r RegID) error {
	i, err := registerIndex(r)
	if err != nil {
		return err
	}

	rf.words[i]++

	if r == AX {
		rf.flags.setFromResult(rf.words[i])
	}

	return nil
}

// Dec decrements a register, wrapping modulo 2^16. Only AX updates flags.
func (rf *RegisterFile) Dec(r RegID) error {
	i, err := registerIndex(r)
	if err != nil {
		return err
	}

	rf.words[i]--

	if r == AX {
		rf.flags.setFromResult(rf.words[i])
	}

	return nil
}

func (rf *RegisterFile) String() string {
	return fmt.Sprintf("AX:%#04x BX:%#04x CX:%#04x DX:%#04x EX:%#04x",
		rf.words[0], rf.words[1], rf.words[2], rf.words[3], rf.words[4])
}
