package asmsema

import (
	"errors"
	"fmt"

	"github.com/pendragon-project/pendragon/internal/asmlex"
)

var (
	ErrUndefinedSymbol  = errors.New("asmsema: undefined symbol")
	ErrInvalidRegister  = errors.New("asmsema: not a register name")
	ErrDuplicatePage    = errors.New("asmsema: page already defined")
	ErrPageTooLarge     = errors.New("asmsema: page exceeds 65536 bytes")
	ErrBracketOnPlainLD = errors.New("asmsema: [expr] operand requires a label, not a number")
)

// DuplicateSymbolError reports a second definition of a name already defined at FirstPos.
type DuplicateSymbolError struct {
	Name     string
	Pos      asmlex.Position
	FirstPos asmlex.Position
}

func (e *DuplicateSymbolError) Error() string {
	return fmt.Sprintf("%s: %q already defined at %s", e.Pos, e.Name, e.FirstPos)
}

func (e *DuplicateSymbolError) Is(target error) bool {
	_, ok := target.(*DuplicateSymbolError)
	return ok
}

// UndefinedSymbolError names a reference to a symbol pass 2 never saw defined.
type UndefinedSymbolError struct {
	Name string
	Pos  asmlex.Position
}

func (e *UndefinedSymbolError) Error() string {
	return fmt.Sprintf("%s: %w: %q", e.Pos, ErrUndefinedSymbol, e.Name)
}

func (e *UndefinedSymbolError) Unwrap() error { return ErrUndefinedSymbol }

// RegisterNameError names an identifier used where a register was required.
type RegisterNameError struct {
	Name string
	Pos  asmlex.Position
}

func (e *RegisterNameError) Error() string {
	return fmt.Sprintf("%s: %w: %q", e.Pos, ErrInvalidRegister, e.Name)
}

func (e *RegisterNameError) Unwrap() error { return ErrInvalidRegister }
