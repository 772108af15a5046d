// Package syscalls implements the host syscall surface reachable from the SYS opcode. Arguments
// and results cross the ABI boundary on the data stack; the syscall number is the SYS immediate.
package syscalls

import (
	"bufio"
	"fmt"
	"io"

	"github.com/pendragon-project/pendragon/internal/vmem"
)

// Numbers reserved by the ABI. 0x0000..0x000f are reserved for exit/status; 0x0013 and above are
// free for extension.
const (
	PrintStringFromStack = uint16(0x0010)
	PrintLineFromStack   = uint16(0x0011)
	ReadLineOntoStack    = uint16(0x0012)
)

// Surface is the host-side syscall dispatcher the Instruction Unit calls into for SYS.
type Surface interface {
	// Call services syscall number n, draining and refilling the stack per its calling convention.
	Call(n uint16, stack *vmem.StackAccessor) error
}

// Console implements Surface with the minimum set from the ABI: string/line output and line input.
type Console struct {
	out io.Writer
	in  *bufio.Reader
}

// NewConsole creates a Console surface reading from in and writing to out.
func NewConsole(in io.Reader, out io.Writer) *Console {
	return &Console{out: out, in: bufio.NewReader(in)}
}

var ErrUnknownSyscall = fmt.Errorf("syscall: unknown number")

// Call dispatches to one of the three console operations.
func (c *Console) Call(n uint16, stack *vmem.StackAccessor) error {
	switch n {
	case PrintStringFromStack:
		return c.printString(stack, false)
	case PrintLineFromStack:
		return c.printString(stack, true)
	case ReadLineOntoStack:
		return c.readLine(stack)
	default:
		return fmt.Errorf("%w: %#04x", ErrUnknownSyscall, n)
	}
}

// printString pops a length word, then that many bytes. The caller pushes the bytes
// first-character-first (as readLine does), so they come off the stack in reverse and are stored
// from the end of the buffer.
func (c *Console) printString(stack *vmem.StackAccessor, newline bool) error {
	length, err := stack.PopWord()
	if err != nil {
		return err
	}

	buf := make([]byte, length)

	for i := int(length) - 1; i >= 0; i-- {
		b, err := stack.PopByte()
		if err != nil {
			return err
		}

		buf[i] = b
	}

	if _, err := c.out.Write(buf); err != nil {
		return err
	}

	if newline {
		_, err = c.out.Write([]byte{'\n'})
	}

	return err
}

// readLine reads one line from the console (without its terminator), pushes its bytes onto the
// stack first-character-first, then pushes its length.
func (c *Console) readLine(stack *vmem.StackAccessor) error {
	line, err := c.in.ReadString('\n')
	if err != nil && len(line) == 0 {
		return err
	}

	for len(line) > 0 && (line[len(line)-1] == '\n' || line[len(line)-1] == '\r') {
		line = line[:len(line)-1]
	}

	for i := 0; i < len(line); i++ {
		if err := stack.PushByte(line[i]); err != nil {
			return err
		}
	}

	return stack.PushWord(uint16(len(line)))
}
