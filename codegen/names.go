package codegen

import (
	"fmt"
	"go/types"
	"sort"
	"strings"

	"github.com/Konsultn-Engineering/sqlgen/ast"
	"github.com/Konsultn-Engineering/sqlgen/schema"
)

// statement carries the Go names chosen for one compiled statement.
type statement struct {
	name     string
	factory  string
	typeName string
	rowName  string
	tree     *ast.Tree
	inputs   []field
	outputs  []field
}

type field struct {
	name   string
	ident  string
	setter string
	param  string
	bit    uint64
	typ    schema.TypeInfo
}

// Methods every parameter type and row type declares.
var (
	paramMethods = []string{"AvailableMask", "Render", "String", "Exec", "Query"}
	rowMethods   = []string{"Load", "Clone"}
)

func prepare(stmts []Statement, opts Options) ([]*statement, error) {
	typeNames := map[string]string{opts.TypeName: "statement group"}
	factories := map[string]string{"Runtime": "base method"}
	factories[embeddedName(opts.BaseType)] = "base field"

	claim := func(names map[string]string, name, owner string) error {
		if prev, ok := names[name]; ok {
			return fmt.Errorf("%w: %s of %s and %s", ErrNameClash, name, owner, prev)
		}
		names[name] = owner
		return nil
	}

	out := make([]*statement, 0, len(stmts))
	for _, s := range stmts {
		factory := schema.ExportedName(s.Name)
		if factory == "" {
			return nil, fmt.Errorf("%w: statement %q", ErrInvalidName, s.Name)
		}
		st := &statement{
			name:     s.Name,
			factory:  factory,
			typeName: opts.Prefix + factory,
			tree:     s.Tree,
		}
		st.rowName = st.typeName + "Row"

		if err := claim(typeNames, st.typeName, s.Name); err != nil {
			return nil, err
		}
		if err := claim(factories, st.factory, s.Name); err != nil {
			return nil, err
		}
		if s.Tree.Inputs.Len() > 0 {
			if err := claim(factories, st.factory+"With", s.Name); err != nil {
				return nil, err
			}
		}
		if s.Tree.HasOutputs() {
			if err := claim(typeNames, st.rowName, s.Name); err != nil {
				return nil, err
			}
		}

		inputs, err := inputFields(s.Tree, opts.Registry)
		if err != nil {
			return nil, fmt.Errorf("statement %s: %w", s.Name, err)
		}
		outputs, err := outputFields(s.Tree, opts.Registry)
		if err != nil {
			return nil, fmt.Errorf("statement %s: %w", s.Name, err)
		}
		st.inputs, st.outputs = inputs, outputs
		out = append(out, st)
	}
	return out, nil
}

func inputFields(tree *ast.Tree, reg *schema.Registry) ([]field, error) {
	used := reserved(paramMethods)
	params := map[string]bool{"p": true, "q": true}

	fields := make([]field, 0, tree.Inputs.Len())
	for _, v := range tree.Inputs.All() {
		info, ok := reg.Lookup(v.Type)
		if !ok {
			return nil, fmt.Errorf("unknown type %s of input variable %s", v.Type, v.Name)
		}
		f := field{
			name:  v.Name,
			ident: unique(used, schema.ExportedName(v.Name)),
			bit:   v.Bit(),
			typ:   info,
		}
		f.param = unique(params, paramName(v.Name))
		fields = append(fields, f)
	}

	// Setters share the method set with the fields.
	for i := range fields {
		fields[i].setter = "Set" + fields[i].ident
		if used[fields[i].setter] {
			return nil, fmt.Errorf("%w: setter %s", ErrNameClash, fields[i].setter)
		}
	}
	return fields, nil
}

func outputFields(tree *ast.Tree, reg *schema.Registry) ([]field, error) {
	used := reserved(rowMethods)
	fields := make([]field, 0, len(tree.Outputs))
	for _, c := range tree.Outputs {
		info, ok := reg.Lookup(c.Type)
		if !ok {
			return nil, fmt.Errorf("unknown type %s of output variable %s", c.Type, c.Name)
		}
		fields = append(fields, field{
			name:  c.Name,
			ident: unique(used, schema.ExportedName(c.Name)),
			typ:   info,
		})
	}
	return fields, nil
}

func paramName(name string) string {
	ident := schema.UnexportedName(name)
	if types.Universe.Lookup(ident) != nil {
		ident += "_"
	}
	return ident
}

func reserved(names []string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

// unique appends underscores to name until it is not in used, then claims it.
func unique(used map[string]bool, name string) string {
	if name == "" {
		name = "X"
	}
	for used[name] {
		name += "_"
	}
	used[name] = true
	return name
}

// embeddedName returns the field name Go gives an embedded type, e.g. API
// for *runtime.API.
func embeddedName(typ string) string {
	typ = strings.TrimPrefix(typ, "*")
	if i := strings.LastIndexByte(typ, '.'); i >= 0 {
		typ = typ[i+1:]
	}
	return typ
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
