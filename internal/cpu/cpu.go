package cpu

import (
	"fmt"

	"github.com/pendragon-project/pendragon/internal/binfmt"
	"github.com/pendragon-project/pendragon/internal/plog"
	"github.com/pendragon-project/pendragon/internal/syscalls"
	"github.com/pendragon-project/pendragon/internal/vmem"
)

// CPU owns the register file, flags, ALU, and instruction unit, and drives the fetch-decode-
// execute loop over them.
type CPU struct {
	Reg   *RegisterFile
	Flags *Flags
	ALU   *ALU
	IU    *InstructionUnit

	mem     *vmem.Unit
	dataCtx vmem.ContextID

	// dataPage is the data context's current page, selected by PAGE_IMM/PAGE_REG (spec section
	// 4.7); every addr-bearing data opcode reads/writes through it.
	dataPage uint16

	halted bool

	log *plog.Logger
}

// Config bundles the sizes the CPU needs to stand up its memory contexts.
type Config struct {
	DataSize      uint64
	StackCapacity uint32
	Syscalls      syscalls.Surface
}

// New assembles a CPU: a memory unit, a data context, a pre-allocated stack, a 64 KiB code
// context, and an instruction unit, wired together the way the data model in spec section 3
// prescribes. Programs are written into these contexts later, by LoadProgram (which Run calls).
func New(cfg Config) (*CPU, error) {
	mem := vmem.New()

	dataCtx, err := mem.CreateContext(cfg.DataSize)
	if err != nil {
		return nil, fmt.Errorf("cpu: data context: %w", err)
	}

	stack, err := vmem.NewStack(mem, cfg.StackCapacity)
	if err != nil {
		return nil, fmt.Errorf("cpu: stack: %w", err)
	}

	codeCtx, err := mem.CreateContext(1 << 16)
	if err != nil {
		return nil, fmt.Errorf("cpu: code context: %w", err)
	}

	flags := &Flags{}
	reg := NewRegisterFile(flags)

	iu := NewInstructionUnit(mem, codeCtx, stack, cfg.Syscalls)

	return &CPU{
		Reg:     reg,
		Flags:   flags,
		ALU:     NewALU(reg, flags),
		IU:      iu,
		mem:     mem,
		dataCtx: dataCtx,
		log:     plog.DefaultLogger(),
	}, nil
}

func (c *CPU) WithLogger(l *plog.Logger) {
	c.log = l
	c.IU.WithLogger(l)
}

// Memory returns the underlying memory unit, for the loader and host glue.
func (c *CPU) Memory() *vmem.Unit { return c.mem }

// Halted reports whether the CPU has executed HALT.
func (c *CPU) Halted() bool { return c.halted }

// LoadProgram writes a decoded program file's data segment into the data context at offset 0 and
// its code segment into the code context, while the memory unit is Protected.
func (c *CPU) LoadProgram(p binfmt.Program) error {
	acc, err := c.dataAccessor(vmem.ReadWrite)
	if err != nil {
		return err
	}

	if err := acc.BulkWrite(0, p.Data); err != nil {
		return fmt.Errorf("cpu: load data segment: %w", err)
	}

	if err := c.IU.LoadProgram(p.Code); err != nil {
		return fmt.Errorf("cpu: load code segment: %w", err)
	}

	return nil
}

// Run sets the memory unit to Protected, loads p, and loops Step until the program halts or fails;
// it always restores Unprotected mode on exit, matching spec section 4.7's startup/shutdown
// contract.
func (c *CPU) Run(p binfmt.Program) error {
	c.mem.SetMode(vmem.Protected)
	defer c.mem.SetMode(vmem.Unprotected)

	if err := c.LoadProgram(p); err != nil {
		return err
	}

	for !c.halted {
		if err := c.Step(); err != nil {
			return err
		}
	}

	return nil
}

func (c *CPU) dataAccessor(mode vmem.AccessMode) (*vmem.Accessor, error) {
	return c.mem.CreateAccessor(c.dataCtx, mode)
}
