// Package visitor renders a compiled statement tree directly, without
// generating code. Its output is identical to the Render method emitted by
// package codegen for the same statement and parameters.
package visitor

import (
	"reflect"
	"strings"
	"sync"

	"github.com/Konsultn-Engineering/sqlgen/ast"
	"github.com/Konsultn-Engineering/sqlgen/dialect"
	"github.com/Konsultn-Engineering/sqlgen/lexer"
	"github.com/Konsultn-Engineering/sqlgen/runtime"
)

var visitorPool = sync.Pool{
	New: func() any {
		return &SQLVisitor{}
	},
}

// SQLVisitor renders trees for one dialect. Obtain one with NewSQLVisitor
// and hand it back with Release.
type SQLVisitor struct {
	sb        strings.Builder
	dialect   dialect.Dialect
	tree      *ast.Tree
	params    map[string]any
	available uint64
}

func NewSQLVisitor(d dialect.Dialect) *SQLVisitor {
	v := visitorPool.Get().(*SQLVisitor)
	if d == nil {
		d = dialect.NewGenericDialect()
	}
	v.dialect = d
	v.sb.Reset()
	return v
}

func (v *SQLVisitor) Release() {
	v.dialect = nil
	v.tree = nil
	v.params = nil
	v.sb.Reset()
	visitorPool.Put(v)
}

// Render renders tree with a pooled visitor.
func Render(tree *ast.Tree, params map[string]any, d dialect.Dialect) (string, error) {
	v := NewSQLVisitor(d)
	defer v.Release()
	return v.Render(tree, params)
}

// Available returns the mask of variables bound in params. A nil value or
// nil pointer leaves a variable unbound.
func Available(tree *ast.Tree, params map[string]any) uint64 {
	return tree.Inputs.Mask(func(name string) bool {
		return bound(params[name])
	})
}

func bound(val any) bool {
	if val == nil {
		return false
	}
	rv := reflect.ValueOf(val)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		return !rv.IsNil()
	}
	return true
}

// deref unwraps pointers so that *string and string render alike.
func deref(val any) any {
	rv := reflect.ValueOf(val)
	if !rv.IsValid() {
		return nil
	}
	for rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}
	return rv.Interface()
}

// Render renders tree with the given parameters. It fails with
// runtime.ErrMissingParams when a variable outside every optional section
// is unbound.
func (v *SQLVisitor) Render(tree *ast.Tree, params map[string]any) (string, error) {
	v.tree = tree
	v.params = params
	v.available = Available(tree, params)
	v.sb.Reset()

	if !tree.Root.SatisfiedBy(v.available) {
		names := tree.Inputs.Names(tree.Inputs.Full())
		return "", runtime.MissingParams("", names, tree.Root.Mask, v.available)
	}

	combine := false
	v.section(tree.Root, false, &v.sb, nil, &combine)
	return v.sb.String(), nil
}

// section renders s into out. altFlag is set when a plain section renders
// inside an enclosing alternative; combine tracks whether the previous
// sibling rendered, which separators require.
func (v *SQLVisitor) section(s *ast.Section, check bool, out *strings.Builder, altFlag, combine *bool) {
	if s.StopCombiner {
		*combine = false
		return
	}
	if s.Mask == 0 {
		check = s.Kind == ast.Combiner
	}

	switch s.Kind {
	case ast.Plain:
		if check && !s.SatisfiedBy(v.available) {
			return
		}
		if altFlag != nil {
			*altFlag = true
		}
	case ast.Alternative:
		if check && !s.AnyOf(v.available) {
			return
		}
	case ast.Combiner:
		if !*combine {
			return
		}
		if s.Mask != 0 && !s.SatisfiedBy(v.available) {
			return
		}
	}

	target, alt, comb := out, altFlag, combine
	var sub strings.Builder
	var subAlt, subCombine bool
	if s.Kind == ast.Alternative {
		target, alt, comb = &sub, &subAlt, &subCombine
	}

	pos := s.Start
	for _, c := range s.Children {
		v.text(target, pos, c.Start)
		v.section(c, true, target, alt, comb)
		pos = c.Stop + 1
	}
	v.text(target, pos, s.Stop)

	if s.Kind != ast.Alternative {
		*combine = s.Kind != ast.Combiner
		return
	}
	if subAlt {
		if altFlag != nil {
			*altFlag = true
		}
		out.WriteString(sub.String())
		*combine = true
	}
}

// text writes the tokens in [from, to) that produce output.
func (v *SQLVisitor) text(out *strings.Builder, from, to int) {
	for _, tok := range v.tree.Tokens[from:to] {
		switch tok.Kind {
		case lexer.Literal, lexer.TargetVar:
			out.WriteString(tok.Text)
		case lexer.EscapedVar:
			out.WriteString(v.dialect.RenderValue(deref(v.params[tok.Text])))
		case lexer.LiteralVar:
			out.WriteString(runtime.Literal(deref(v.params[tok.Text])))
		}
	}
}
