// Package codegen emits Go source for the statements of one host file.
//
// Every statement becomes a parameter type with one pointer field per input
// variable, fluent setters and a Render method that reproduces the section
// evaluation of package visitor in straight-line code. Statements declaring
// target variables also get a row type that loads one result row.
package codegen

import (
	"bytes"
	"errors"
	"fmt"
	"go/token"
	"strings"

	"github.com/Konsultn-Engineering/sqlgen/ast"
	"github.com/Konsultn-Engineering/sqlgen/dialect"
	"github.com/Konsultn-Engineering/sqlgen/schema"
	"golang.org/x/tools/imports"
)

const (
	runtimeImport  = "github.com/Konsultn-Engineering/sqlgen/runtime"
	databaseImport = "github.com/Konsultn-Engineering/sqlgen/database"
	dialectImport  = "github.com/Konsultn-Engineering/sqlgen/dialect"

	// DefaultBaseType is embedded in the statement group unless Options
	// names another base.
	DefaultBaseType = "*runtime.API"
)

var (
	ErrInvalidName = errors.New("invalid identifier")
	ErrNameClash   = errors.New("generated names clash")
	ErrNoPackage   = errors.New("no package name")
)

// Options configures one generated file.
type Options struct {
	Package  string
	TypeName string

	// BaseType is embedded in the statement group type and must provide
	// Runtime() *runtime.API. BaseImport is the package it lives in.
	BaseType   string
	BaseImport string

	// Prefix is prepended to every statement and row type name.
	Prefix string

	// Dialect selects the dialect bound by the generated constructor.
	Dialect string

	Registry *schema.Registry
}

func (o Options) withDefaults() Options {
	if o.BaseType == "" {
		o.BaseType = DefaultBaseType
		o.BaseImport = ""
	}
	if o.Registry == nil {
		o.Registry = schema.DefaultRegistry()
	}
	return o
}

// Statement is one named, compiled statement of a host file.
type Statement struct {
	Name string
	Tree *ast.Tree
}

// File is the compiled content of one host file.
type File struct {
	// Path is recorded in the generated header.
	Path string
	// Hash identifies the source content the output was generated from.
	Hash       string
	Statements []Statement
}

var dialectConstructors = map[string]string{
	"generic":  "NewGenericDialect",
	"mysql":    "NewMySQLDialect",
	"postgres": "NewPostgresDialect",
	"sqlite":   "NewSQLiteDialect",
	"tidb":     "NewTiDBDialect",
}

type generator struct {
	opts    Options
	file    File
	buf     bytes.Buffer
	imports map[string]struct{}
}

// Generate returns the formatted Go source for file.
func Generate(file File, opts Options) ([]byte, error) {
	opts = opts.withDefaults()
	if opts.Package == "" {
		return nil, ErrNoPackage
	}
	if !token.IsIdentifier(opts.Package) {
		return nil, fmt.Errorf("%w: package %q", ErrInvalidName, opts.Package)
	}
	if !token.IsIdentifier(opts.TypeName) || !token.IsExported(opts.TypeName) {
		return nil, fmt.Errorf("%w: type %q", ErrInvalidName, opts.TypeName)
	}
	d, err := dialect.Lookup(opts.Dialect)
	if err != nil {
		return nil, err
	}

	stmts, err := prepare(file.Statements, opts)
	if err != nil {
		return nil, err
	}

	g := &generator{opts: opts, file: file, imports: make(map[string]struct{})}
	g.group(d)
	for _, st := range stmts {
		g.statement(st)
	}

	src := g.assemble()
	out, err := imports.Process(file.Path+".go", src, &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		return nil, fmt.Errorf("format generated code for %s: %w", file.Path, err)
	}
	return out, nil
}

func (g *generator) use(path string) {
	g.imports[path] = struct{}{}
}

func (g *generator) printf(format string, args ...any) {
	fmt.Fprintf(&g.buf, format, args...)
}

// assemble prepends the header and import block to the emitted body.
func (g *generator) assemble() []byte {
	var out bytes.Buffer
	fmt.Fprintf(&out, "// Code generated by sqlgen. DO NOT EDIT.\n")
	if g.file.Path != "" {
		fmt.Fprintf(&out, "// source: %s\n", g.file.Path)
	}
	if g.file.Hash != "" {
		fmt.Fprintf(&out, "// blake3: %s\n", g.file.Hash)
	}
	fmt.Fprintf(&out, "\npackage %s\n\n", g.opts.Package)

	if len(g.imports) > 0 {
		out.WriteString("import (\n")
		for _, path := range sortedKeys(g.imports) {
			fmt.Fprintf(&out, "\t%q\n", path)
		}
		out.WriteString(")\n\n")
	}
	out.Write(g.buf.Bytes())
	return out.Bytes()
}

// group emits the statement group type and its constructor.
func (g *generator) group(d dialect.Dialect) {
	name := g.opts.TypeName
	source := g.file.Path
	if source == "" {
		source = "its host file"
	}

	if g.opts.BaseImport != "" {
		g.use(g.opts.BaseImport)
	}
	if g.opts.BaseType == DefaultBaseType {
		g.use(runtimeImport)
		g.use(databaseImport)
		g.use(dialectImport)
	}

	g.printf("// %s groups the statements of %s.\n", name, source)
	g.printf("type %s struct {\n\t%s\n}\n\n", name, g.opts.BaseType)

	if g.opts.BaseType != DefaultBaseType {
		return
	}
	g.printf("// New%s binds the statements of %s to db using the %s dialect.\n", name, source, d.Name())
	g.printf("func New%s(db database.Database) *%s {\n", name, name)
	g.printf("\treturn &%s{API: runtime.NewAPI(db, dialect.%s())}\n}\n\n", name, dialectConstructors[d.Name()])
}

func (g *generator) statement(st *statement) {
	g.use(runtimeImport)
	g.use(databaseImport)
	g.use("context")
	g.use("strings")
	for _, f := range st.inputs {
		if f.typ.Import != "" {
			g.use(f.typ.Import)
		}
	}
	for _, f := range st.outputs {
		if f.typ.Import != "" {
			g.use(f.typ.Import)
		}
	}

	g.paramType(st)
	g.factories(st)
	g.accessors(st)
	g.render(st)
	g.execution(st)
	if len(st.outputs) > 0 {
		g.rowType(st)
	}
}

func (g *generator) paramType(st *statement) {
	g.printf("// %s holds the parameters of the %s statement:\n//\n", st.typeName, st.name)
	for _, line := range strings.Split(strings.TrimSpace(st.tree.Source), "\n") {
		line = strings.TrimRight(line, " \t\r")
		if line == "" {
			g.printf("//\n")
			continue
		}
		g.printf("//\t%s\n", line)
	}
	g.printf("type %s struct {\n\tapi *runtime.API\n", st.typeName)
	if len(st.inputs) > 0 {
		g.printf("\n")
	}
	for _, f := range st.inputs {
		g.printf("\t%s *%s\n", f.ident, f.typ.GoType)
	}
	g.printf("}\n\n")
}

func (g *generator) factories(st *statement) {
	group := g.opts.TypeName

	g.printf("// %s returns a %s statement with no parameters bound.\n", st.factory, st.name)
	g.printf("func (q *%s) %s() *%s {\n", group, st.factory, st.typeName)
	g.printf("\treturn &%s{api: q.Runtime()}\n}\n\n", st.typeName)

	if len(st.inputs) == 0 {
		return
	}
	params := make([]string, len(st.inputs))
	for i, f := range st.inputs {
		params[i] = f.param + " " + f.typ.GoType
	}
	g.printf("// %sWith returns a %s statement with every parameter bound.\n", st.factory, st.name)
	g.printf("func (q *%s) %sWith(%s) *%s {\n", group, st.factory, strings.Join(params, ", "), st.typeName)
	g.printf("\tp := q.%s()\n", st.factory)
	for _, f := range st.inputs {
		g.printf("\tp.%s = &%s\n", f.ident, f.param)
	}
	g.printf("\treturn p\n}\n\n")
}

func (g *generator) accessors(st *statement) {
	g.printf("// AvailableMask returns one bit per bound parameter.\n")
	g.printf("func (p *%s) AvailableMask() uint64 {\n", st.typeName)
	if len(st.inputs) == 0 {
		g.printf("\treturn 0\n}\n\n")
	} else {
		g.printf("\tvar m uint64\n")
		for _, f := range st.inputs {
			g.printf("\tif p.%s != nil {\n\t\tm |= %#x\n\t}\n", f.ident, f.bit)
		}
		g.printf("\treturn m\n}\n\n")
	}

	for _, f := range st.inputs {
		g.printf("func (p *%s) %s(v %s) *%s {\n", st.typeName, f.setter, f.typ.GoType, st.typeName)
		g.printf("\tp.%s = &v\n\treturn p\n}\n\n", f.ident)
	}
}

func (g *generator) render(st *statement) {
	body := newRenderer(st).run()
	g.printf("// Render builds the SQL text for the bound parameters.\n")
	g.printf("func (p *%s) Render() (string, error) {\n", st.typeName)
	g.buf.Write(body)
	g.printf("}\n\n")

	g.printf("// String returns the rendered statement, or an empty string when\n")
	g.printf("// required parameters are missing.\n")
	g.printf("func (p *%s) String() string {\n", st.typeName)
	g.printf("\ts, _ := p.Render()\n\treturn s\n}\n\n")
}

func (g *generator) execution(st *statement) {
	g.printf("func (p *%s) Exec(ctx context.Context) (database.Result, error) {\n", st.typeName)
	g.printf("\treturn p.api.Exec(ctx, p)\n}\n\n")

	if len(st.outputs) == 0 {
		return
	}
	g.printf("// Query runs the statement and iterates its rows.\n")
	g.printf("func (p *%s) Query(ctx context.Context) (*runtime.RowIterator[%s, *%s], error) {\n",
		st.typeName, st.rowName, st.rowName)
	g.printf("\treturn runtime.Query[%s](ctx, p.api, p)\n}\n\n", st.rowName)
}

func (g *generator) rowType(st *statement) {
	g.printf("// %s is one result row of the %s statement.\n", st.rowName, st.name)
	g.printf("type %s struct {\n", st.rowName)
	for _, f := range st.outputs {
		g.printf("\t%s %s\n", f.ident, f.typ.GoType)
	}
	g.printf("}\n\n")

	scans := make([]string, len(st.outputs))
	for i, f := range st.outputs {
		scans[i] = fmt.Sprintf("runtime.%s(&r.%s)", f.typ.Accessor, f.ident)
	}
	g.printf("// Load reads the current row of rows into r.\n")
	g.printf("func (r *%s) Load(rows database.Rows) error {\n", st.rowName)
	g.printf("\treturn rows.Scan(%s)\n}\n\n", strings.Join(scans, ", "))

	g.printf("func (r *%s) Clone() *%s {\n", st.rowName, st.rowName)
	g.printf("\tc := *r\n\treturn &c\n}\n\n")
}
