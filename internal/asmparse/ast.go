// Package asmparse turns a token stream from asmlex into an abstract syntax tree, and applies the
// pass 1.5 instruction-sugar rewrite (LD reg, label[expr] -> LDAB/LDA) before semantic analysis
// ever sees the tree.
package asmparse

import "github.com/pendragon-project/pendragon/internal/asmlex"

// File is a fully parsed assembly source: its DATA section definitions and its CODE section
// statements, in source order.
type File struct {
	Data []DataItem
	Code []CodeStmt
}

// DataItem is one statement inside a DATA section.
type DataItem interface{ dataItem() }

// PageDirective names the page data definitions that follow it belong to.
type PageDirective struct {
	Name string
	Pos  asmlex.Position
}

// DataDef defines a labelled block of bytes, words, or address slots.
type DataDef struct {
	Label string
	Kind  DataKind
	Bytes []byte   // DB payload, decoded from string or number list
	Words []uint16 // DW payload
	Refs  []string // DA payload: label names whose addresses will be patched in at link time
	Pos   asmlex.Position
}

// DataKind distinguishes DB/DW/DA definitions.
type DataKind int

const (
	KindBytes DataKind = iota
	KindWords
	KindAddresses
)

func (PageDirective) dataItem() {}
func (DataDef) dataItem()       {}

// CodeStmt is one statement inside a CODE section.
type CodeStmt interface{ codeStmt() }

// Label marks the current code position with a name.
type Label struct {
	Name string
	Pos  asmlex.Position
}

// Instruction is a mnemonic with zero or more operands.
type Instruction struct {
	Mnemonic string
	Operands []Operand
	Pos      asmlex.Position
}

// InlineData is a DB/DW literal embedded directly in the code stream, optionally named via
// "IN label" so other code can reference it.
type InlineData struct {
	Kind  DataKind
	Bytes []byte
	Words []uint16
	Label string // from "IN label"; empty if anonymous
	Pos   asmlex.Position
}

func (Label) codeStmt()       {}
func (Instruction) codeStmt() {}
func (InlineData) codeStmt()  {}

// OperandKind distinguishes the operand shapes the grammar admits.
type OperandKind int

const (
	// OperandRegister is a bare register name.
	OperandRegister OperandKind = iota
	// OperandNumber is a bare numeric literal.
	OperandNumber
	// OperandAddress is a bare identifier used as a label/address reference.
	OperandAddress
	// OperandMemoryAccess is IDENT[expr]: the pass-1.5 sugar candidate for LD.
	OperandMemoryAccess
	// OperandExpression is (expr) or [expr] on an instruction other than sugared LD.
	OperandExpression
	// OperandInlineData is an inline DB/DW literal used directly as an operand.
	OperandInlineData
)

// Expr is a flattened term, term (+|- term)* expression: at most one symbol term, at most one
// register-offset term, and the signed sum of every numeric term.
type Expr struct {
	Symbol      string
	ConstOffset int64
	RegOffset   string
	HasSymbol   bool
	HasReg      bool
}

// Operand is one instruction argument. Only the fields relevant to Kind are populated.
type Operand struct {
	Kind OperandKind

	Register string // OperandRegister
	Number   int64  // OperandNumber

	Symbol string // OperandAddress, OperandMemoryAccess (base identifier)
	Expr   Expr   // OperandMemoryAccess (bracket contents), OperandExpression

	InlineKind  DataKind // OperandInlineData
	InlineBytes []byte
	InlineWords []uint16

	Pos asmlex.Position
}
