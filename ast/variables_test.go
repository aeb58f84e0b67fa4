package ast

import (
	"testing"

	"github.com/Konsultn-Engineering/sqlgen/lexer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVariableTable(t *testing.T) {
	table := NewVariableTable()
	a := table.Insert("a", "String", lexer.EscapedVar)
	b := table.Insert("b", "int", lexer.LiteralVar)
	c := table.Insert("c", "String", lexer.OptionVar)

	assert.Equal(t, 3, table.Len())
	assert.Equal(t, uint64(1), a.Bit())
	assert.Equal(t, uint64(2), b.Bit())
	assert.Equal(t, uint64(4), c.Bit())
	assert.Equal(t, uint64(7), table.Full())

	got, ok := table.Lookup("b")
	require.True(t, ok)
	assert.Equal(t, b, got)

	_, ok = table.Lookup("missing")
	assert.False(t, ok)

	bound := map[string]bool{"a": true, "c": true}
	mask := table.Mask(func(name string) bool { return bound[name] })
	assert.Equal(t, uint64(5), mask)
	assert.Equal(t, []string{"a", "c"}, table.Names(mask))
}

func TestVariableTableFullAt64(t *testing.T) {
	table := NewVariableTable()
	for i := 0; i < MaxVariables; i++ {
		table.Insert(string(rune('a'+i%26))+string(rune('0'+i/26)), "String", lexer.EscapedVar)
	}
	assert.Equal(t, ^uint64(0), table.Full())
	last, ok := table.Lookup("l2")
	require.True(t, ok)
	assert.Equal(t, uint64(1)<<63, last.Bit())
}

func TestSectionGates(t *testing.T) {
	s := NewSection(0, true)
	s.Require(0)
	s.Require(2)

	assert.True(t, s.SatisfiedBy(0b101))
	assert.True(t, s.SatisfiedBy(0b111))
	assert.False(t, s.SatisfiedBy(0b001))
	assert.True(t, s.AnyOf(0b001))
	assert.False(t, s.AnyOf(0b010))
}

func TestWalkAndFingerprint(t *testing.T) {
	build := func() *Section {
		root := NewSection(0, false)
		child := NewSection(1, true)
		child.Require(0)
		child.Stop = 3
		root.Children = append(root.Children, child, &Section{Start: 4, Stop: 4, StopCombiner: true})
		root.Stop = 5
		return root
	}

	a, b := build(), build()
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())

	b.Children[0].Kind = Alternative
	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())

	var depths []int
	Walk(a, VisitorFunc(func(s *Section, depth int) bool {
		depths = append(depths, depth)
		return true
	}))
	assert.Equal(t, []int{0, 1, 1}, depths)

	var visited int
	Walk(a, VisitorFunc(func(s *Section, depth int) bool {
		visited++
		return false
	}))
	assert.Equal(t, 1, visited)
}
