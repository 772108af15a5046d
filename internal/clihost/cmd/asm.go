package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pendragon-project/pendragon/internal/asmpipe"
	"github.com/pendragon-project/pendragon/internal/clihost"
	"github.com/pendragon-project/pendragon/internal/plog"
)

// Assembler is the command that translates Pendragon assembly source into a program file.
//
//	pendragon asm -o prog.bin FILE.pasm
func Assembler() clihost.Command {
	return new(assembler)
}

type assembler struct {
	debug  bool
	output string
}

func (assembler) Description() string {
	return "assemble source code into a program file"
}

func (assembler) Usage(out io.Writer) error {
	_, err := fmt.Fprintln(out, `asm [-o file.bin] file.pasm

Assemble source into a Pendragon program file.`)

	return err
}

func (a *assembler) FlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("asm", flag.ExitOnError)
	fs.BoolVar(&a.debug, "debug", false, "enable debug logging")
	fs.StringVar(&a.output, "o", "a.bin", "output `filename`")

	return fs
}

// Run assembles each file named in args, in turn, writing the last one's program file to the
// configured output path.
func (a *assembler) Run(ctx context.Context, args []string, stdout io.Writer, logger *plog.Logger) int {
	if a.debug {
		plog.LogLevel.Set(plog.Debug)
	}

	if len(args) == 0 {
		logger.Error("asm: no source file given")
		return 1
	}

	var binary []byte

	for _, fn := range args {
		src, err := os.ReadFile(fn)
		if err != nil {
			logger.Error("read failed", "file", fn, "err", err)
			return 1
		}

		name := strings.TrimSuffix(filepath.Base(fn), filepath.Ext(fn))

		res, err := asmpipe.Assemble(string(src), name)
		if err != nil {
			logger.Error("assemble failed", "file", fn, "err", err)
			return 1
		}

		logger.Debug("assembled",
			"file", fn,
			"data_bytes", len(res.Linked.Data),
			"code_bytes", len(res.Linked.Code),
		)

		binary = res.Binary
	}

	if err := os.WriteFile(a.output, binary, 0o644); err != nil {
		logger.Error("write failed", "out", a.output, "err", err)
		return 1
	}

	logger.Debug("wrote program file", "out", a.output, "bytes", len(binary))

	return 0
}
