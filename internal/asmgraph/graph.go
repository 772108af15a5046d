// Package asmgraph is pass 3 of the assembler: it lowers the parsed (and sugar-rewritten) AST
// into a code graph of data blocks and instruction nodes, selecting a concrete opcode for every
// instruction and recording the symbol patches address resolution (asmlink) still owes it.
package asmgraph

import "github.com/pendragon-project/pendragon/internal/cpu"

// Patch marks a byte range inside a node's encoded bytes that still needs a resolved address (or
// page id) written into it.
type Patch struct {
	Offset      int // byte offset within the owning node's Bytes
	Width       int // 1 or 2
	Symbol      string
	ConstOffset int64
	IsPage      bool // true if Symbol names a page rather than a data/code symbol
}

// DataBlock is one entry in the data segment: a named, size-prefixed run of bytes, possibly with
// patches (DA blocks: one 2-byte patch per referenced label).
type DataBlock struct {
	Name    string
	Bytes   []byte
	Patches []Patch
	Page    string
}

// InstructionNode is one machine instruction: the selected opcode plus its already-encoded
// parameter bytes (placeholders for anything Patches still needs to fill in).
type InstructionNode struct {
	Opcode  cpu.Opcode
	Bytes   []byte
	Patches []Patch
}

// LabelNode marks a code position with a name, contributing zero bytes itself.
type LabelNode struct {
	Name string
}

// CodeNode is either an InstructionNode or a LabelNode.
type CodeNode interface{ codeNode() }

func (InstructionNode) codeNode() {}
func (LabelNode) codeNode()       {}

// Graph is pass 3's output: the data blocks (in layout order) and the code nodes (in layout
// order), ready for asmlink to assign addresses and resolve patches.
type Graph struct {
	Data []DataBlock
	Code []CodeNode
}
