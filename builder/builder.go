// Package builder turns a token sequence into an expression tree: it
// resolves input and output variables, nests bracketed sections and
// computes the bitmask that gates each section.
package builder

import (
	"fmt"

	"github.com/Konsultn-Engineering/sqlgen/ast"
	"github.com/Konsultn-Engineering/sqlgen/lexer"
	"github.com/Konsultn-Engineering/sqlgen/schema"
)

// Compile tokenizes and builds one statement. A nil registry means
// schema.DefaultRegistry().
func Compile(source string, reg *schema.Registry) (*ast.Tree, error) {
	tokens, err := lexer.Tokenize(source)
	if err != nil {
		return nil, err
	}
	tree, err := build(tokens, reg)
	if err != nil {
		if be, ok := err.(*Error); ok {
			be.Source = source
		}
		return nil, err
	}
	tree.Source = source
	return tree, nil
}

// Build constructs the expression tree for tokens. Errors are *Error values
// wrapping one of the package sentinels.
func Build(tokens []lexer.Token, reg *schema.Registry) (*ast.Tree, error) {
	return build(tokens, reg)
}

type builder struct {
	tokens  []lexer.Token
	reg     *schema.Registry
	stack   []*ast.Section
	inputs  *ast.VariableTable
	outputs []ast.Column
	names   map[string]struct{}
}

func build(tokens []lexer.Token, reg *schema.Registry) (*ast.Tree, error) {
	if reg == nil {
		reg = schema.DefaultRegistry()
	}
	b := &builder{
		tokens: tokens,
		reg:    reg,
		inputs: ast.NewVariableTable(),
		names:  make(map[string]struct{}),
	}
	root, err := b.run()
	if err != nil {
		return nil, &Error{Err: err}
	}
	return &ast.Tree{
		Tokens:  tokens,
		Root:    root,
		Inputs:  b.inputs,
		Outputs: b.outputs,
	}, nil
}

func (b *builder) top() *ast.Section {
	return b.stack[len(b.stack)-1]
}

func (b *builder) run() (*ast.Section, error) {
	root := ast.NewSection(0, false)
	b.stack = append(b.stack, root)

	for i, tok := range b.tokens {
		switch tok.Kind {
		case lexer.EscapedVar, lexer.LiteralVar, lexer.OptionVar:
			v, err := b.input(tok)
			if err != nil {
				return nil, err
			}
			b.require(v.Index)
		case lexer.TargetVar:
			if err := b.output(tok); err != nil {
				return nil, err
			}
		case lexer.OpenOptional:
			s := ast.NewSection(i, true)
			top := b.top()
			top.Children = append(top.Children, s)
			b.stack = append(b.stack, s)
		case lexer.CloseOptional:
			if len(b.stack) == 1 {
				return nil, fmt.Errorf("%w: unexpected ']' at token %d", ErrUnbalanced, i)
			}
			s := b.top()
			b.stack = b.stack[:len(b.stack)-1]
			closeSection(s, i)
		case lexer.CloseHard:
			marker := ast.NewSection(i, false)
			marker.StopCombiner = true
			top := b.top()
			top.Children = append(top.Children, marker)
		}
	}

	if len(b.stack) != 1 {
		return nil, fmt.Errorf("%w: %d section(s) left open", ErrUnbalanced, len(b.stack)-1)
	}
	closeSection(root, len(b.tokens))
	return root, nil
}

// input resolves or registers an input variable.
func (b *builder) input(tok lexer.Token) (ast.Variable, error) {
	if v, ok := b.inputs.Lookup(tok.Text); ok {
		if v.Type != tok.Type {
			return v, fmt.Errorf("%w: %s is %s and %s", ErrTypeConflict, tok.Text, v.Type, tok.Type)
		}
		return v, nil
	}
	if !b.reg.Has(tok.Type) {
		return ast.Variable{}, fmt.Errorf("%w: input variable %s is of type %s", ErrUnknownType, tok.Text, tok.Type)
	}
	if b.inputs.Len() >= ast.MaxVariables {
		return ast.Variable{}, fmt.Errorf("%w: %s", ErrTooManyVariables, tok.Text)
	}
	return b.inputs.Insert(tok.Text, tok.Type, tok.Kind), nil
}

func (b *builder) output(tok lexer.Token) error {
	if !b.reg.Has(tok.Type) {
		return fmt.Errorf("%w: output variable %s is of type %s", ErrUnknownType, tok.Text, tok.Type)
	}
	if _, dup := b.names[tok.Text]; dup {
		return fmt.Errorf("%w: %s", ErrDuplicateOutput, tok.Text)
	}
	b.names[tok.Text] = struct{}{}
	b.outputs = append(b.outputs, ast.Column{Name: tok.Text, Type: tok.Type, Index: len(b.outputs)})
	return nil
}

// require marks the variable on the open sections from the innermost
// outwards, up to and including the nearest optional one.
func (b *builder) require(idx int) {
	for i := len(b.stack) - 1; i >= 0; i-- {
		s := b.stack[i]
		s.Require(idx)
		if s.Optional {
			return
		}
	}
}

// closeSection classifies s once its last token is known.
func closeSection(s *ast.Section, stop int) {
	s.Stop = stop
	if s.Optional && s.Mask == 0 {
		if len(s.Children) == 0 {
			s.Kind = ast.Combiner
			// "[]" encloses no token at all
			s.StopCombiner = stop == s.Start+1
			return
		}
		s.Kind = ast.Alternative
	}

	for i, c := range s.Children {
		if c.Mask != 0 {
			if s.Kind == ast.Alternative {
				s.Mask |= c.Mask
			}
			continue
		}
		// a separator is gated by the section that follows it
		if c.Kind == ast.Combiner && i+1 < len(s.Children) {
			c.Mask |= s.Children[i+1].Mask
		}
	}
}
