// Package asmsema is pass 2 of the assembler: it walks the parsed AST, builds the symbol table,
// tracks page membership for data definitions, and checks that every referenced symbol and page is
// defined before the code-graph builder (asmgraph) runs. It does not check register names or
// operand shapes: the parser decides which identifiers are registers, and asmgraph rejects operand
// shapes it cannot encode.
package asmsema

import "github.com/pendragon-project/pendragon/internal/asmlex"

// SymbolKind classifies what a symbol refers to.
type SymbolKind int

const (
	SymbolByte SymbolKind = iota
	SymbolWord
	SymbolAddressTable
	SymbolCodeLabel
)

// Symbol records everything pass 2 knows about a defined name, ahead of address resolution in
// asmlink.
type Symbol struct {
	Name string
	Kind SymbolKind
	Page string // data block's page name; empty for code labels
	Size int    // byte size of the definition (data blocks only)
	Pos  asmlex.Position
}

// Table is the symbol table pass 2 produces: every defined name, keyed case-sensitively since the
// grammar's identifiers are (register names are the only case-insensitive tokens).
type Table struct {
	symbols map[string]Symbol
}

// NewTable returns an empty symbol table.
func NewTable() *Table {
	return &Table{symbols: make(map[string]Symbol)}
}

// Define records a new symbol, returning a DuplicateSymbolError if name is already defined.
func (t *Table) Define(sym Symbol) error {
	if existing, ok := t.symbols[sym.Name]; ok {
		return &DuplicateSymbolError{Name: sym.Name, Pos: sym.Pos, FirstPos: existing.Pos}
	}

	t.symbols[sym.Name] = sym

	return nil
}

// Lookup returns the symbol named name, if defined.
func (t *Table) Lookup(name string) (Symbol, bool) {
	sym, ok := t.symbols[name]
	return sym, ok
}

// Names returns every defined symbol name, in no particular order (it ranges over a map; use
// Analysis.DataOrder for data symbols in source-definition order).
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.symbols))
	for name := range t.symbols {
		names = append(names, name)
	}

	return names
}
