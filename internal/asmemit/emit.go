// Package asmemit is pass 5 of the assembler: it wraps a linked program's data and code segments
// in a program file header and serialises the result via internal/binfmt.
package asmemit

import (
	"github.com/pendragon-project/pendragon/internal/asmlink"
	"github.com/pendragon-project/pendragon/internal/binfmt"
)

// Emit serialises linked into a complete Pendragon program file named programName.
func Emit(linked *asmlink.Linked, programName string) ([]byte, error) {
	return binfmt.Encode(binfmt.Program{
		Header: binfmt.NewHeader(programName),
		Data:   linked.Data,
		Code:   linked.Code,
	})
}
