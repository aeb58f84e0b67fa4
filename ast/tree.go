// Package ast holds the expression tree produced by the builder: nested
// sections classified as plain, alternative or combiner, each annotated with
// the bitmask of input variables that gates it.
package ast

import (
	"github.com/Konsultn-Engineering/sqlgen/lexer"
	"github.com/segmentio/fasthash/fnv1a"
)

// Tree is one compiled statement.
type Tree struct {
	Source  string
	Tokens  []lexer.Token
	Root    *Section
	Inputs  *VariableTable
	Outputs []Column
}

// RequiredMask returns the variables the statement cannot render without.
func (t *Tree) RequiredMask() uint64 {
	return t.Root.Mask
}

// HasOutputs reports whether the statement declares target variables.
func (t *Tree) HasOutputs() bool {
	return len(t.Outputs) > 0
}

// Fingerprint hashes section structure, variables and columns.
func (t *Tree) Fingerprint() uint64 {
	h := fnv1a.AddUint64(fnv1a.Init64, t.Root.Fingerprint())
	for _, v := range t.Inputs.All() {
		h = fnv1a.AddString64(h, v.Name)
		h = fnv1a.AddString64(h, v.Type)
	}
	for _, c := range t.Outputs {
		h = fnv1a.AddString64(h, "@"+c.Name)
		h = fnv1a.AddString64(h, c.Type)
	}
	return h
}
