package main_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pendragon-project/pendragon/internal/clihost/cmd"
	"github.com/pendragon-project/pendragon/internal/plog"
)

// timeout is how long to wait for the assemble-then-run pipeline to finish. It is very likely to
// take less than a few milliseconds.
const timeout = 1 * time.Second

func TestMain(tt *testing.T) {
	dir := tt.TempDir()
	src := filepath.Join(dir, "sum.pend")
	bin := filepath.Join(dir, "sum.bin")

	err := os.WriteFile(src, []byte(
		"CODE\n"+
			"LD AX, 0\n"+
			"LD CX, 3\n"+
			"loop:\n"+
			"ADD CX\n"+
			"DEC CX\n"+
			"CPL CX, 0\n"+
			"JPNZ loop\n"+
			"HALT\n"), 0o644)
	if err != nil {
		tt.Fatal(err)
	}

	logger := plog.NewFormattedLogger(&bytes.Buffer{})

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	asmOut := &bytes.Buffer{}
	asm := cmd.Assembler()
	fs := asm.FlagSet()
	if err := fs.Parse([]string{"-o", bin, src}); err != nil {
		tt.Fatal(err)
	}

	if code := asm.Run(ctx, fs.Args(), asmOut, logger); code != 0 {
		tt.Fatalf("assemble: exit %d: %s", code, asmOut)
	}

	runOut := &bytes.Buffer{}
	if code := cmd.Runner().Run(ctx, []string{bin}, runOut, logger); code != 0 {
		tt.Fatalf("run: exit %d: %s", code, runOut)
	}
}
