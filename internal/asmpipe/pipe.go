// Package asmpipe drives the assembler's five passes end to end: lex, parse (plus the pass 1.5
// sugar rewrite), semantic analysis, code-graph construction, address resolution, and binary
// emission. Each pass's errors are reported before the next pass runs, the way the teacher's
// assembler stops at the first stage that has anything to say.
package asmpipe

import (
	"fmt"

	"github.com/pendragon-project/pendragon/internal/asmemit"
	"github.com/pendragon-project/pendragon/internal/asmgraph"
	"github.com/pendragon-project/pendragon/internal/asmlex"
	"github.com/pendragon-project/pendragon/internal/asmlink"
	"github.com/pendragon-project/pendragon/internal/asmparse"
	"github.com/pendragon-project/pendragon/internal/asmsema"
)

// Result carries every intermediate artifact the pipeline produced, for callers (the CLI's -v
// flag, tests) that want to inspect a stage without re-running it.
type Result struct {
	File     *asmparse.File
	Analysis *asmsema.Analysis
	Graph    *asmgraph.Graph
	Linked   *asmlink.Linked
	Binary   []byte
}

// Assemble runs every pass over source and returns the emitted program file bytes named
// programName. It stops at the first pass that fails.
func Assemble(source, programName string) (*Result, error) {
	tokens, err := asmlex.Lex(source)
	if err != nil {
		return nil, fmt.Errorf("lex: %w", err)
	}

	file, err := asmparse.Parse(tokens)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}

	if err := asmparse.RewriteSugar(file); err != nil {
		return nil, fmt.Errorf("parse: sugar rewrite: %w", err)
	}

	analysis, err := asmsema.Analyze(file)
	if err != nil {
		return nil, fmt.Errorf("semantic analysis: %w", err)
	}

	graph, err := asmgraph.Build(file, analysis)
	if err != nil {
		return nil, fmt.Errorf("code graph: %w", err)
	}

	linked, err := asmlink.Link(graph, analysis)
	if err != nil {
		return nil, fmt.Errorf("link: %w", err)
	}

	binary, err := asmemit.Emit(linked, programName)
	if err != nil {
		return nil, fmt.Errorf("emit: %w", err)
	}

	return &Result{File: file, Analysis: analysis, Graph: graph, Linked: linked, Binary: binary}, nil
}
