package ast

// Visitor is called for every section of a tree in document order.
// Returning false skips the children of the visited section.
type Visitor interface {
	VisitSection(s *Section, depth int) bool
}

// VisitorFunc adapts a plain function to Visitor.
type VisitorFunc func(s *Section, depth int) bool

func (f VisitorFunc) VisitSection(s *Section, depth int) bool { return f(s, depth) }

// Walk traverses s depth-first, parents before children.
func Walk(s *Section, v Visitor) {
	walk(s, v, 0)
}

func walk(s *Section, v Visitor, depth int) {
	if !v.VisitSection(s, depth) {
		return
	}
	for _, c := range s.Children {
		walk(c, v, depth+1)
	}
}
