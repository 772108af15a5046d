// Package asmlink is pass 4 of the assembler: it lays the data segment out one 64KB window per
// page (mirroring the Paged Accessor's page<<16|offset addressing) and the code segment out as a
// single flat run immediately after, then patches every unresolved address into the code graph's
// instruction and data-block bytes.
package asmlink

import (
	"errors"
	"fmt"
)

var (
	ErrUnresolvedReference   = errors.New("asmlink: reference does not resolve to any known symbol")
	ErrCrossPageAddressArray = errors.New("asmlink: DA block references addresses on more than one page")
	ErrUnknownPage           = errors.New("asmlink: unknown page")
)

// UnresolvedReferenceError names a patch whose symbol resolved to nothing.
type UnresolvedReferenceError struct {
	Symbol string
}

func (e *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("%s: %q", ErrUnresolvedReference, e.Symbol)
}

func (e *UnresolvedReferenceError) Unwrap() error { return ErrUnresolvedReference }

// CrossPageAddressArrayError names the DA block and the two pages its references span.
type CrossPageAddressArrayError struct {
	Block string
	PageA string
	PageB string
}

func (e *CrossPageAddressArrayError) Error() string {
	return fmt.Sprintf("%s: %q spans page %q and page %q", ErrCrossPageAddressArray, e.Block, e.PageA, e.PageB)
}

func (e *CrossPageAddressArrayError) Unwrap() error { return ErrCrossPageAddressArray }
