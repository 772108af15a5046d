package cmd_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pendragon-project/pendragon/internal/binfmt"
	"github.com/pendragon-project/pendragon/internal/clihost/cmd"
	"github.com/pendragon-project/pendragon/internal/plog"
)

func TestAssemblerCommandWritesProgramFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "hello.pasm")
	out := filepath.Join(dir, "hello.bin")

	require.NoError(t, os.WriteFile(src, []byte("CODE\nNOP\nHALT\n"), 0o644))

	a := cmd.Assembler()
	fs := a.FlagSet()
	require.NoError(t, fs.Parse([]string{"-o", out, src}))

	code := a.Run(context.Background(), fs.Args(), &bytes.Buffer{}, plog.DefaultLogger())
	assert.Equal(t, 0, code)

	raw, err := os.ReadFile(out)
	require.NoError(t, err)

	p, err := binfmt.Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, "hello", p.Header.ProgramName)
}

func TestAssemblerCommandReportsAssembleError(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "bad.pasm")
	require.NoError(t, os.WriteFile(src, []byte("CODE\nJMP nowhere\n"), 0o644))

	a := cmd.Assembler()
	fs := a.FlagSet()
	require.NoError(t, fs.Parse([]string{src}))

	code := a.Run(context.Background(), fs.Args(), &bytes.Buffer{}, plog.DefaultLogger())
	assert.NotEqual(t, 0, code)
}
