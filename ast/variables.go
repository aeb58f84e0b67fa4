package ast

import "github.com/Konsultn-Engineering/sqlgen/lexer"

// MaxVariables is the number of distinct input variables a statement may
// declare; one bit of a uint64 per variable.
const MaxVariables = 64

// Variable is an input variable of a statement.
type Variable struct {
	Name  string
	Type  string
	Kind  lexer.Kind // kind of the first occurrence
	Index int
}

// Bit returns the mask bit of the variable.
func (v Variable) Bit() uint64 {
	return 1 << uint(v.Index)
}

// VariableTable is the ordered, deduplicated list of input variables in
// first occurrence order.
type VariableTable struct {
	vars  []Variable
	index map[string]int
}

// NewVariableTable returns an empty table.
func NewVariableTable() *VariableTable {
	return &VariableTable{index: make(map[string]int)}
}

// Lookup finds a variable by name.
func (t *VariableTable) Lookup(name string) (Variable, bool) {
	i, ok := t.index[name]
	if !ok {
		return Variable{}, false
	}
	return t.vars[i], true
}

// Insert registers a new variable and returns it. The caller checks for
// existing entries and the MaxVariables limit.
func (t *VariableTable) Insert(name, typ string, kind lexer.Kind) Variable {
	v := Variable{Name: name, Type: typ, Kind: kind, Index: len(t.vars)}
	t.index[name] = v.Index
	t.vars = append(t.vars, v)
	return v
}

// Len returns the number of variables.
func (t *VariableTable) Len() int { return len(t.vars) }

// All returns the variables in index order.
func (t *VariableTable) All() []Variable { return t.vars }

// Full returns the mask with one bit per variable set.
func (t *VariableTable) Full() uint64 {
	if len(t.vars) >= MaxVariables {
		return ^uint64(0)
	}
	return 1<<uint(len(t.vars)) - 1
}

// Mask computes the available mask: one bit for every variable for which
// bound returns true.
func (t *VariableTable) Mask(bound func(name string) bool) uint64 {
	var m uint64
	for _, v := range t.vars {
		if bound(v.Name) {
			m |= v.Bit()
		}
	}
	return m
}

// Names returns the variable names for the bits set in mask.
func (t *VariableTable) Names(mask uint64) []string {
	var names []string
	for _, v := range t.vars {
		if mask&v.Bit() != 0 {
			names = append(names, v.Name)
		}
	}
	return names
}

// Column is an output (target) variable; Index is its position in the
// result row.
type Column struct {
	Name  string
	Type  string
	Index int
}
