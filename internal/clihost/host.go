// Package clihost contains the command-line interface shell that drives the Pendragon
// assembler and virtual machine from a terminal.
package clihost

import (
	"context"
	"flag"
	"io"
	"os"

	"github.com/pendragon-project/pendragon/internal/plog"
)

// Command represents a sub-command in the CLI. Each sub-command owns its own flags and runs
// independently of the others.
type Command interface {
	// FlagSet returns the set of options the command accepts.
	FlagSet() *flag.FlagSet

	// Description returns a brief description of the command's function.
	Description() string

	// Usage prints detailed command documentation to out.
	Usage(out io.Writer) error

	// Run executes the command with arguments. Command output should be written to stdout. It
	// returns an exit code.
	Run(ctx context.Context, args []string, stdout io.Writer, logger *plog.Logger) int
}

// Commander is a CLI command-runner that handles the life cycle of a command invocation.
type Commander struct {
	ctx context.Context
	log *plog.Logger

	help     Command
	commands []Command
}

// New creates a Commander that can dispatch to sub-commands.
func New(ctx context.Context) *Commander {
	return &Commander{ctx: ctx}
}

// WithCommands registers the sub-commands a Commander can dispatch to.
func (c *Commander) WithCommands(cmds []Command) *Commander {
	c.commands = append([]Command(nil), cmds...)
	return c
}

// WithHelp configures the command run when no sub-command matches.
func (c *Commander) WithHelp(cmd Command) *Commander {
	c.help = cmd
	return c
}

// WithLogger configures the logger used for the CLI's own diagnostics. Logs go to stderr so
// stdout stays free for program output.
func (c *Commander) WithLogger(out *os.File) *Commander {
	logger := plog.NewFormattedLogger(out)
	c.log = logger
	plog.SetDefault(logger)

	return c
}

// Execute runs the sub-command named by args[0], or the help command if there is none or no
// match. It returns the exit code the process should use.
func (c *Commander) Execute(args []string) int {
	if len(args) == 0 {
		flag.Parse()
		return c.help.Run(c.ctx, nil, os.Stdout, c.log)
	}

	found := c.help

	for _, cmd := range c.commands {
		if args[0] == cmd.FlagSet().Name() {
			found = cmd
			break
		}
	}

	fs := found.FlagSet()
	args = args[1:]

	if err := fs.Parse(args); err != nil {
		c.log.Error("parse error", "err", err)
		return 1
	}

	return found.Run(c.ctx, fs.Args(), os.Stdout, c.log)
}
