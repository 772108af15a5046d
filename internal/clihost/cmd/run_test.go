package cmd_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pendragon-project/pendragon/internal/asmpipe"
	"github.com/pendragon-project/pendragon/internal/clihost/cmd"
	"github.com/pendragon-project/pendragon/internal/plog"
)

func TestRunnerCommandRunsProgramFile(t *testing.T) {
	res, err := asmpipe.Assemble("CODE\nLD AX, 9\nHALT\n", "prog")
	require.NoError(t, err)

	dir := t.TempDir()
	bin := filepath.Join(dir, "prog.bin")
	require.NoError(t, os.WriteFile(bin, res.Binary, 0o644))

	r := cmd.Runner()
	fs := r.FlagSet()
	require.NoError(t, fs.Parse([]string{bin}))

	var stdout bytes.Buffer
	code := r.Run(context.Background(), fs.Args(), &stdout, plog.DefaultLogger())
	assert.Equal(t, 0, code)
}

func TestRunnerCommandReportsMissingFile(t *testing.T) {
	r := cmd.Runner()
	fs := r.FlagSet()
	require.NoError(t, fs.Parse([]string{"/nonexistent/prog.bin"}))

	code := r.Run(context.Background(), fs.Args(), &bytes.Buffer{}, plog.DefaultLogger())
	assert.NotEqual(t, 0, code)
}
