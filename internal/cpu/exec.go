package cpu

// exec.go implements the fetch-decode-execute cycle.

import (
	"fmt"

	"github.com/pendragon-project/pendragon/internal/plog"
)

// Step fetches, decodes, and executes exactly one instruction.
func (c *CPU) Step() error {
	opcodeByte, err := c.IU.ReadByteAtIR()
	if err != nil {
		return fmt.Errorf("step: fetch: %w", err)
	}

	c.IU.AdvanceIR(1)

	op := Opcode(opcodeByte)

	if op == NOP {
		return nil
	}

	if op == HALT {
		c.halted = true
		return nil
	}

	k, ok := Arity(op)
	if !ok {
		return fmt.Errorf("step: %#02x: %w", opcodeByte, ErrUnknownOpcode)
	}

	params, err := c.IU.PeekBytes(k)
	if err != nil {
		return fmt.Errorf("step: operands: %w", err)
	}

	c.IU.AdvanceIR(k)

	if err := c.dispatch(op, params); err != nil {
		c.log.Error("execution failed", "opcode", fmt.Sprintf("%#02x", opcodeByte), "ir", c.IU.GetIR(), "err", err)
		return fmt.Errorf("step: %#02x: %w", opcodeByte, err)
	}

	c.log.Debug("executed", "opcode", fmt.Sprintf("%#02x", opcodeByte), plog.Group("STATE", plog.String("ir", fmt.Sprintf("%#04x", c.IU.GetIR())), plog.String("reg", c.Reg.String()), plog.String("flags", c.Flags.String())))

	return nil
}
