package codegen

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/Konsultn-Engineering/sqlgen/ast"
	"github.com/Konsultn-Engineering/sqlgen/lexer"
)

// renderer emits the body of a Render method. The generated code evaluates
// sections exactly like visitor.SQLVisitor does at run time: each
// alternative gets its own buffer, flag and separator state, numbered in
// emission order.
type renderer struct {
	st        *statement
	fields    map[string]field
	body      bytes.Buffer
	depth     int
	alts      int
	available bool
}

func newRenderer(st *statement) *renderer {
	fields := make(map[string]field, len(st.inputs))
	for _, f := range st.inputs {
		fields[f.name] = f
	}
	return &renderer{st: st, fields: fields, depth: 1}
}

func (r *renderer) line(format string, args ...any) {
	r.body.WriteString(strings.Repeat("\t", r.depth))
	fmt.Fprintf(&r.body, format, args...)
	r.body.WriteByte('\n')
}

// run returns the complete method body.
func (r *renderer) run() []byte {
	root := r.st.tree.Root

	combine := ""
	if readsCombine(root) {
		combine = "combine"
		r.line("combine := false")
	}
	r.section(root, false, "b", "", combine)

	var out bytes.Buffer
	if r.available || root.Mask != 0 {
		out.WriteString("\tavailable := p.AvailableMask()\n")
	}
	if root.Mask != 0 {
		names := make([]string, len(r.st.inputs))
		for i, f := range r.st.inputs {
			names[i] = fmt.Sprintf("%q", f.name)
		}
		fmt.Fprintf(&out, "\tif available&%#x != %#x {\n", root.Mask, root.Mask)
		fmt.Fprintf(&out, "\t\treturn \"\", runtime.MissingParams(%q, []string{%s}, %#x, available)\n\t}\n",
			r.st.name, strings.Join(names, ", "), root.Mask)
	}
	out.WriteString("\tvar b strings.Builder\n")
	out.Write(r.body.Bytes())
	out.WriteString("\treturn b.String(), nil\n")
	return out.Bytes()
}

func (r *renderer) section(s *ast.Section, check bool, out, altFlag, combine string) {
	if s.StopCombiner {
		if combine != "" {
			r.line("%s = false", combine)
		}
		return
	}
	if s.Mask == 0 {
		check = s.Kind == ast.Combiner
	}

	open := false
	switch s.Kind {
	case ast.Plain:
		if check {
			r.available = true
			r.line("if available&%#x == %#x {", s.Mask, s.Mask)
			open = true
			r.depth++
		}
		if altFlag != "" {
			r.line("%s = true", altFlag)
		}
	case ast.Alternative:
		if check {
			r.available = true
			r.line("if available&%#x != 0 {", s.Mask)
			open = true
			r.depth++
		}
	case ast.Combiner:
		if s.Mask == 0 {
			r.line("if %s {", combine)
		} else {
			r.available = true
			r.line("if %s && available&%#x == %#x {", combine, s.Mask, s.Mask)
		}
		open = true
		r.depth++
	}

	target, alt, comb := out, altFlag, combine
	if s.Kind == ast.Alternative {
		r.alts++
		target = fmt.Sprintf("sub%d", r.alts)
		alt = fmt.Sprintf("alt%d", r.alts)
		comb = ""
		r.line("var %s strings.Builder", target)
		r.line("%s := false", alt)
		if readsCombine(s) {
			comb = fmt.Sprintf("combine%d", r.alts)
			r.line("%s := false", comb)
		}
	}

	pos := s.Start
	for _, c := range s.Children {
		r.text(target, pos, c.Start)
		r.section(c, true, target, alt, comb)
		pos = c.Stop + 1
	}
	r.text(target, pos, s.Stop)

	if s.Kind != ast.Alternative {
		if combine != "" {
			r.line("%s = %t", combine, s.Kind != ast.Combiner)
		}
	} else {
		r.line("if %s {", alt)
		r.depth++
		if altFlag != "" {
			r.line("%s = true", altFlag)
		}
		r.line("%s.WriteString(%s.String())", out, target)
		if combine != "" {
			r.line("%s = true", combine)
		}
		r.depth--
		r.line("}")
	}

	if open {
		r.depth--
		r.line("}")
	}
}

// text emits the tokens in [from, to). Adjacent literal text is written
// with a single call.
func (r *renderer) text(out string, from, to int) {
	var pending strings.Builder
	flush := func() {
		if pending.Len() > 0 {
			r.line("%s.WriteString(%q)", out, pending.String())
			pending.Reset()
		}
	}

	for _, tok := range r.st.tree.Tokens[from:to] {
		switch tok.Kind {
		case lexer.Literal, lexer.TargetVar:
			pending.WriteString(tok.Text)
		case lexer.EscapedVar:
			flush()
			r.line("%s.WriteString(p.api.Escape(*p.%s))", out, r.fields[tok.Text].ident)
		case lexer.LiteralVar:
			flush()
			r.line("%s.WriteString(runtime.Literal(*p.%s))", out, r.fields[tok.Text].ident)
		}
	}
	flush()
}

// readsCombine reports whether a separator shares the combine flag of s:
// any combiner reachable from s without entering a nested alternative.
func readsCombine(s *ast.Section) bool {
	for _, c := range s.Children {
		if c.StopCombiner || c.Kind == ast.Alternative {
			continue
		}
		if c.Kind == ast.Combiner || readsCombine(c) {
			return true
		}
	}
	return false
}
