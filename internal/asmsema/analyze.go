package asmsema

import (
	"errors"
	"fmt"

	"github.com/pendragon-project/pendragon/internal/asmparse"
)

// Analysis is pass 2's output: the symbol table, data symbols in their definition order (the same
// order asmgraph emits data blocks in, which is the order asmlink lays them out), and page ids.
type Analysis struct {
	Table     *Table
	DataOrder []string

	// PageIDs maps each page name to the numeric id PAGE_IMM/PAGE_REG address it by, assigned in
	// first-declaration order.
	PageIDs map[string]uint16
}

const maxPageBytes = 1 << 16

// Analyze validates f and builds its symbol table. It returns every error found rather than
// stopping at the first, joined with errors.Join, matching the teacher's pass-accumulation style.
func Analyze(f *asmparse.File) (*Analysis, error) {
	a := &Analysis{Table: NewTable(), PageIDs: map[string]uint16{}}

	var errs []error

	errs = append(errs, a.walkData(f)...)
	errs = append(errs, a.collectCodeSymbols(f)...)
	errs = append(errs, a.checkReferences(f)...)

	return a, errors.Join(errs...)
}

func (a *Analysis) walkData(f *asmparse.File) []error {
	var errs []error

	currentPage := ""
	seenPages := map[string]bool{}
	pageSizes := map[string]int{}

	for _, item := range f.Data {
		switch v := item.(type) {
		case asmparse.PageDirective:
			if seenPages[v.Name] {
				errs = append(errs, fmt.Errorf("%s: %w: %q", v.Pos, ErrDuplicatePage, v.Name))
				continue
			}

			seenPages[v.Name] = true
			currentPage = v.Name
			a.PageIDs[v.Name] = uint16(len(a.PageIDs))

		case asmparse.DataDef:
			size, kind := dataDefSize(v)

			if err := a.Table.Define(Symbol{
				Name: v.Label, Kind: kind, Page: currentPage, Size: size, Pos: v.Pos,
			}); err != nil {
				errs = append(errs, err)
				continue
			}

			a.DataOrder = append(a.DataOrder, v.Label)

			pageSizes[currentPage] += size
			if pageSizes[currentPage] > maxPageBytes {
				errs = append(errs, fmt.Errorf("%s: %w: page %q", v.Pos, ErrPageTooLarge, currentPage))
			}
		}
	}

	return errs
}

func dataDefSize(v asmparse.DataDef) (int, SymbolKind) {
	switch v.Kind {
	case asmparse.KindBytes:
		return len(v.Bytes), SymbolByte
	case asmparse.KindWords:
		return len(v.Words) * 2, SymbolWord
	case asmparse.KindAddresses:
		return len(v.Refs) * 2, SymbolAddressTable
	default:
		return 0, SymbolByte
	}
}

// collectCodeSymbols records every code label and every named inline data block ("IN label") so
// forward references resolve in the reference-checking pass below.
func (a *Analysis) collectCodeSymbols(f *asmparse.File) []error {
	var errs []error

	anon := 0

	for _, stmt := range f.Code {
		switch v := stmt.(type) {
		case asmparse.Label:
			if err := a.Table.Define(Symbol{Name: v.Name, Kind: SymbolCodeLabel, Pos: v.Pos}); err != nil {
				errs = append(errs, err)
			}

		case asmparse.InlineData:
			name := v.Label
			if name == "" {
				name = fmt.Sprintf("__anon_%d", anon)
				anon++
			}

			size, kind := inlineSize(v)
			if err := a.Table.Define(Symbol{Name: name, Kind: kind, Pos: v.Pos, Size: size}); err != nil {
				errs = append(errs, err)
			}

			a.DataOrder = append(a.DataOrder, name)
		}
	}

	return errs
}

func inlineSize(v asmparse.InlineData) (int, SymbolKind) {
	if v.Kind == asmparse.KindWords {
		return len(v.Words) * 2, SymbolWord
	}

	return len(v.Bytes), SymbolByte
}

// checkReferences validates every symbol reference in the code section (and every DA block's
// label list) against the symbols collected above.
func (a *Analysis) checkReferences(f *asmparse.File) []error {
	var errs []error

	for _, item := range f.Data {
		def, ok := item.(asmparse.DataDef)
		if !ok || def.Kind != asmparse.KindAddresses {
			continue
		}

		for _, ref := range def.Refs {
			if _, ok := a.Table.Lookup(ref); !ok {
				errs = append(errs, &UndefinedSymbolError{Name: ref, Pos: def.Pos})
			}
		}
	}

	for _, stmt := range f.Code {
		instr, ok := stmt.(asmparse.Instruction)
		if !ok {
			continue
		}

		if instr.Mnemonic == "PAGE" && len(instr.Operands) == 1 && instr.Operands[0].Kind == asmparse.OperandAddress {
			if _, ok := a.PageIDs[instr.Operands[0].Symbol]; !ok {
				errs = append(errs, &UndefinedSymbolError{Name: instr.Operands[0].Symbol, Pos: instr.Operands[0].Pos})
			}

			continue
		}

		for _, op := range instr.Operands {
			errs = append(errs, a.checkOperand(op)...)
		}
	}

	return errs
}

func (a *Analysis) checkOperand(op asmparse.Operand) []error {
	var errs []error

	switch op.Kind {
	case asmparse.OperandAddress:
		if _, ok := a.Table.Lookup(op.Symbol); !ok {
			errs = append(errs, &UndefinedSymbolError{Name: op.Symbol, Pos: op.Pos})
		}

		if op.Expr.HasSymbol {
			if _, ok := a.Table.Lookup(op.Expr.Symbol); !ok {
				errs = append(errs, &UndefinedSymbolError{Name: op.Expr.Symbol, Pos: op.Pos})
			}
		}

	case asmparse.OperandMemoryAccess:
		if _, ok := a.Table.Lookup(op.Symbol); !ok {
			errs = append(errs, &UndefinedSymbolError{Name: op.Symbol, Pos: op.Pos})
		}

	case asmparse.OperandExpression:
		if op.Expr.HasSymbol {
			if _, ok := a.Table.Lookup(op.Expr.Symbol); !ok {
				errs = append(errs, &UndefinedSymbolError{Name: op.Expr.Symbol, Pos: op.Pos})
			}
		}
	}

	return errs
}
