package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/pendragon-project/pendragon/internal/binfmt"
	"github.com/pendragon-project/pendragon/internal/clihost"
	"github.com/pendragon-project/pendragon/internal/cpu"
	"github.com/pendragon-project/pendragon/internal/plog"
	"github.com/pendragon-project/pendragon/internal/syscalls"
)

// Runner is the command that loads a program file and runs it to completion.
//
//	pendragon run prog.bin
func Runner() clihost.Command {
	return &runner{dataSize: 1 << 16, stackSize: 4096}
}

type runner struct {
	debug     bool
	dataSize  uint64
	stackSize uint
}

func (runner) Description() string {
	return "run a program file"
}

func (runner) Usage(out io.Writer) error {
	_, err := fmt.Fprintln(out, `run program.bin

Runs a Pendragon program file to completion.`)

	return err
}

func (r *runner) FlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	fs.BoolVar(&r.debug, "debug", false, "enable debug logging")
	fs.Uint64Var(&r.dataSize, "data-size", r.dataSize, "data segment address space, in bytes")
	fs.UintVar(&r.stackSize, "stack-size", r.stackSize, "data stack capacity, in bytes")

	return fs
}

// Run decodes the program file named by args[0] and executes it until HALT.
func (r *runner) Run(ctx context.Context, args []string, stdout io.Writer, logger *plog.Logger) int {
	if r.debug {
		plog.LogLevel.Set(plog.Debug)
	}

	if len(args) == 0 {
		logger.Error("run: no program file given")
		return 1
	}

	raw, err := os.ReadFile(args[0])
	if err != nil {
		logger.Error("read failed", "file", args[0], "err", err)
		return 1
	}

	prog, err := binfmt.Decode(raw)
	if err != nil {
		logger.Error("decode failed", "file", args[0], "err", err)
		return 1
	}

	logger.Debug("loaded program file",
		"program", prog.Header.ProgramName,
		"data_bytes", len(prog.Data),
		"code_bytes", len(prog.Code),
	)

	console := syscalls.NewConsole(os.Stdin, stdout)

	machine, err := cpu.New(cpu.Config{
		DataSize:      r.dataSize,
		StackCapacity: uint32(r.stackSize),
		Syscalls:      console,
	})
	if err != nil {
		logger.Error("init failed", "err", err)
		return 1
	}

	machine.WithLogger(logger)

	if err := machine.Run(prog); err != nil {
		logger.Error("run failed", "err", err)
		return 1
	}

	logger.Debug("halted")

	return 0
}
