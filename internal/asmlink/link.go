package asmlink

import (
	"errors"
	"fmt"

	"github.com/pendragon-project/pendragon/internal/asmgraph"
	"github.com/pendragon-project/pendragon/internal/asmsema"
)

const pageWindow = 1 << 16 // one page's address window, matching Accessor.physical's page<<16|offset

// symbolAddr is where a data symbol landed: which page, and its byte offset within that page.
type symbolAddr struct {
	Page   string
	Offset uint16
}

// Linked is pass 4's output: the fully resolved data segment (one pageWindow-sized slice per
// page, in page-id order) and the fully resolved, concatenated code segment.
type Linked struct {
	Data []byte // sized len(pages)*pageWindow; page p's bytes live at [p*pageWindow, (p+1)*pageWindow)
	Code []byte
}

// Link resolves every patch asmgraph recorded and produces the final segment bytes.
func Link(g *asmgraph.Graph, analysis *asmsema.Analysis) (*Linked, error) {
	pageOf := pageIndexer(analysis)

	dataAddr, pageCount := layoutData(g, pageOf)

	codeAddr, codeSize := layoutCode(g)

	var errs []error

	data := make([]byte, int(pageCount)*pageWindow)

	for _, block := range g.Data {
		addr := dataAddr[block.Name]
		base := int(pageOf(addr.Page))*pageWindow + int(addr.Offset)
		copy(data[base:], block.Bytes)

		if err := patchDataBlock(data, base, block, dataAddr); err != nil {
			errs = append(errs, err)
		}
	}

	code := make([]byte, 0, codeSize)

	for _, node := range g.Code {
		instr, ok := node.(asmgraph.InstructionNode)
		if !ok {
			continue
		}

		bytes := append([]byte{}, instr.Bytes...)

		for _, patch := range instr.Patches {
			if err := applyPatch(bytes, patch, codeAddr, dataAddr, analysis, pageOf); err != nil {
				errs = append(errs, err)
				continue
			}
		}

		code = append(code, byte(instr.Opcode))
		code = append(code, bytes...)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return &Linked{Data: data, Code: code}, nil
}

// pageIndexer returns a function mapping a page name to its numeric id; the empty page name (data
// defined with no PAGE directive) is assigned the id one past every declared page, so it never
// collides with a named page.
func pageIndexer(analysis *asmsema.Analysis) func(string) uint16 {
	defaultID := uint16(len(analysis.PageIDs))

	return func(name string) uint16 {
		if name == "" {
			return defaultID
		}

		return analysis.PageIDs[name]
	}
}

func layoutData(g *asmgraph.Graph, pageOf func(string) uint16) (map[string]symbolAddr, uint16) {
	addrs := make(map[string]symbolAddr, len(g.Data))
	offsets := map[string]uint16{}

	var maxPage uint16

	for _, block := range g.Data {
		off := offsets[block.Page]
		addrs[block.Name] = symbolAddr{Page: block.Page, Offset: off}
		offsets[block.Page] = off + uint16(len(block.Bytes))

		if p := pageOf(block.Page); p > maxPage {
			maxPage = p
		}
	}

	return addrs, maxPage + 1
}

func layoutCode(g *asmgraph.Graph) (map[string]uint16, uint16) {
	addrs := make(map[string]uint16)

	var offset uint16

	for _, node := range g.Code {
		switch v := node.(type) {
		case asmgraph.LabelNode:
			addrs[v.Name] = offset
		case asmgraph.InstructionNode:
			offset += uint16(1 + len(v.Bytes))
		}
	}

	return addrs, offset
}

func patchDataBlock(data []byte, base int, block asmgraph.DataBlock, dataAddr map[string]symbolAddr) error {
	var refPage string

	hasRefPage := false

	for _, patch := range block.Patches {
		addr, ok := dataAddr[patch.Symbol]
		if !ok {
			return &UnresolvedReferenceError{Symbol: patch.Symbol}
		}

		if hasRefPage && addr.Page != refPage {
			return &CrossPageAddressArrayError{Block: block.Name, PageA: refPage, PageB: addr.Page}
		}

		refPage = addr.Page
		hasRefPage = true

		value := addr.Offset + uint16(patch.ConstOffset)
		writeWord(data, base+patch.Offset, value)
	}

	return nil
}

func applyPatch(bytes []byte, patch asmgraph.Patch, codeAddr map[string]uint16, dataAddr map[string]symbolAddr, analysis *asmsema.Analysis, pageOf func(string) uint16) error {
	if patch.IsPage {
		id, ok := analysis.PageIDs[patch.Symbol]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownPage, patch.Symbol)
		}

		writeWord(bytes, patch.Offset, id)

		return nil
	}

	if addr, ok := codeAddr[patch.Symbol]; ok {
		writeWord(bytes, patch.Offset, addr+uint16(patch.ConstOffset))
		return nil
	}

	if addr, ok := dataAddr[patch.Symbol]; ok {
		writeWord(bytes, patch.Offset, addr.Offset+uint16(patch.ConstOffset))
		return nil
	}

	return &UnresolvedReferenceError{Symbol: patch.Symbol}
}

func writeWord(b []byte, offset int, v uint16) {
	b[offset] = byte(v)
	b[offset+1] = byte(v >> 8)
}
