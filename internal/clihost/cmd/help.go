package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/pendragon-project/pendragon/internal/clihost"
	"github.com/pendragon-project/pendragon/internal/plog"
)

type help struct {
	cmd []clihost.Command
}

var _ clihost.Command = (*help)(nil)

// Help builds the default command, printed when no sub-command matches.
func Help(cmd []clihost.Command) *help {
	return &help{cmd: cmd}
}

func (help) Description() string {
	return "display help for commands"
}

func (h help) FlagSet() *flag.FlagSet {
	return flag.NewFlagSet("help", flag.ExitOnError)
}

func (h help) Run(_ context.Context, args []string, out io.Writer, _ *plog.Logger) int {
	if len(args) == 1 {
		for _, cmd := range h.cmd {
			if args[0] == cmd.FlagSet().Name() {
				h.printCommandHelp(cmd)
			}
		}
	} else if err := h.Usage(out); err != nil {
		return 1
	}

	return 0
}

func (h *help) Usage(out io.Writer) error {
	_, err := fmt.Fprintln(out, `
Pendragon is a virtual machine and assembler for a 16-bit register-based instruction set.

Usage:

        pendragon <command> [option]... [arg]...

Commands:`)
	if err != nil {
		return err
	}

	for _, cmd := range h.cmd {
		fs := cmd.FlagSet()
		fmt.Fprintf(out, "  %-20s %s\n", fs.Name(), cmd.Description())
	}

	fmt.Fprintf(out, "  %-20s %s\n", h.FlagSet().Name(), h.Description())
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Use `pendragon help <command>` to get help for a command.")

	return err
}

func (h *help) printCommandHelp(cmd clihost.Command) {
	_ = cmd.FlagSet().Parse(nil)

	fmt.Fprint(os.Stdout, "Usage:\n\n        pendragon ")

	if err := cmd.Usage(os.Stdout); err != nil {
		return
	}

	fmt.Fprintln(os.Stdout, "\nOptions:")
	cmd.FlagSet().PrintDefaults()
}
