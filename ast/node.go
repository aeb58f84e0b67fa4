package ast

import (
	"strconv"

	"github.com/segmentio/fasthash/fnv1a"
)

// Kind classifies how a bracketed section decides whether it is rendered.
type Kind uint8

const (
	// Plain sections render when all of their required variables are bound.
	Plain Kind = iota
	// Alternative sections render when at least one child section renders.
	Alternative
	// Combiner sections separate two rendered neighbours, e.g. a comma.
	Combiner
)

func (k Kind) String() string {
	switch k {
	case Plain:
		return "Plain"
	case Alternative:
		return "Alternative"
	case Combiner:
		return "Combiner"
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Section is one node of the expression tree. Start and Stop are token
// indices: for optional sections they address the opening and closing
// bracket, for the root they span the whole token list.
type Section struct {
	Start    int
	Stop     int
	Optional bool
	Kind     Kind

	// StopCombiner marks an explicit break in separator chaining ("{...}"
	// closers and empty "[]"). Such a section renders nothing.
	StopCombiner bool

	// Mask holds the variable bits gating this section. It is computed when
	// the section closes and never changes afterwards, with one exception:
	// a Combiner borrows the mask of its following sibling when the parent
	// closes.
	Mask     uint64
	Children []*Section
}

// NewSection returns an open section starting at token index start.
func NewSection(start int, optional bool) *Section {
	return &Section{Start: start, Stop: start, Optional: optional}
}

// Require sets the bit of the variable at index idx.
func (s *Section) Require(idx int) {
	s.Mask |= 1 << uint(idx)
}

// SatisfiedBy reports whether every required bit is set in available.
func (s *Section) SatisfiedBy(available uint64) bool {
	return available&s.Mask == s.Mask
}

// AnyOf reports whether at least one required bit is set in available.
func (s *Section) AnyOf(available uint64) bool {
	return available&s.Mask != 0
}

// Fingerprint hashes the structure of the section and its descendants.
// Two builds of the same statement produce equal fingerprints.
func (s *Section) Fingerprint() uint64 {
	return s.fingerprint(fnv1a.Init64)
}

func (s *Section) fingerprint(h uint64) uint64 {
	var flags uint64
	if s.Optional {
		flags |= 1
	}
	if s.StopCombiner {
		flags |= 2
	}
	h = fnv1a.AddUint64(h, uint64(s.Kind)<<8|flags)
	h = fnv1a.AddUint64(h, s.Mask)
	h = fnv1a.AddUint64(h, uint64(s.Start)<<32|uint64(uint32(s.Stop)))
	h = fnv1a.AddUint64(h, uint64(len(s.Children)))
	for _, c := range s.Children {
		h = c.fingerprint(h)
	}
	return h
}
