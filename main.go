// pendragon is the command-line assembler and virtual machine for the Pendragon instruction set.
package main

import (
	"context"
	"os"

	"github.com/pendragon-project/pendragon/internal/clihost"
	"github.com/pendragon-project/pendragon/internal/clihost/cmd"
)

var (
	commands = []clihost.Command{
		cmd.Assembler(),
		cmd.Runner(),
	}
)

// Entry point.
func main() {
	result :=
		clihost.New(context.Background()).
			WithLogger(os.Stderr).
			WithCommands(commands).
			WithHelp(cmd.Help(commands)).
			Execute(os.Args[1:])

	os.Exit(result)
}
