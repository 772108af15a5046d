package cpu

import "errors"

var (
	ErrInvalidRegister     = errors.New("invalid register")
	ErrDivisionByZero      = errors.New("division by zero")
	ErrUnknownOpcode       = errors.New("unknown opcode")
	ErrUnknownSyscall      = errors.New("unknown syscall")
	ErrReturnStackUnderflow = errors.New("return stack underflow")
)
