package asmgraph

import (
	"fmt"
	"strings"

	"github.com/pendragon-project/pendragon/internal/cpu"
)

// regByte encodes a register name (whole or 8-bit half alias) as the byte the CPU's opcode
// handlers expect: every alias of a register collapses to that register's RegID, since the
// instruction's opcode (not the operand byte) is what selects whole-register vs half-register
// semantics.
func regByte(name string) (byte, error) {
	switch strings.ToUpper(name) {
	case "AX", "AH", "AL":
		return byte(cpu.AX), nil
	case "BX", "BH", "BL":
		return byte(cpu.BX), nil
	case "CX", "CH", "CL":
		return byte(cpu.CX), nil
	case "DX", "DH", "DL":
		return byte(cpu.DX), nil
	case "EX", "EH", "EL":
		return byte(cpu.EX), nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrNotARegister, name)
	}
}
