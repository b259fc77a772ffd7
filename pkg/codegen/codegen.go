// Package codegen implements the G10 assembler's four-pass code generator:
// spec.md §4.7-§4.9 turn a preprocessed, parsed program (a []asmast.Node
// produced upstream) into a relocatable pkg/obj.Object. Grounded on the
// two-pass (resolve-addresses / emit-code) shape of the original codegen.cpp
// sources, split here into four named passes so the size invariant between
// address resolution and emission holds by sharing one encoder
// (see layout.go) instead of two hand-kept tables.
package codegen

import (
	"github.com/dgdev1024/g10/pkg/asmast"
	"github.com/dgdev1024/g10/pkg/obj"
)

// Generate runs all four passes over nodes and returns the finished,
// validated object, or the first diagnostic raised by any pass.
func Generate(nodes []asmast.Node) (*obj.Object, error) {
	s := New()

	if err := runPass0(s, nodes); err != nil {
		return nil, err
	}
	if err := runPass1(s, nodes); err != nil {
		return nil, err
	}
	if err := s.populateSymbolTable(); err != nil {
		return nil, err
	}
	if err := runPass2(s, nodes); err != nil {
		return nil, err
	}
	if err := runPass3(s); err != nil {
		return nil, err
	}
	return s.Object, nil
}
