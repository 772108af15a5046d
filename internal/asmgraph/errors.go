package asmgraph

import (
	"errors"
	"fmt"

	"github.com/pendragon-project/pendragon/internal/asmlex"
)

var (
	ErrNotARegister     = errors.New("asmgraph: not a register name")
	ErrUnknownMnemonic  = errors.New("asmgraph: unknown mnemonic")
	ErrOperandShape     = errors.New("asmgraph: operand shape does not match mnemonic")
	ErrOperandCount     = errors.New("asmgraph: wrong number of operands")
	ErrImmediateTooWide = errors.New("asmgraph: immediate value out of range")
)

// BuildError pins a code-graph construction error to the instruction's source position.
type BuildError struct {
	Pos asmlex.Position
	Err error
}

func (e *BuildError) Error() string  { return fmt.Sprintf("%s: %s", e.Pos, e.Err) }
func (e *BuildError) Unwrap() error  { return e.Err }
func (e *BuildError) Is(t error) bool { return errors.Is(e.Err, t) }
