// Package engine turns host files into generated Go source: it splits a
// file into named statements, compiles each one, emits the statement group
// and writes it next to (or below) the source tree.
package engine

import (
	"fmt"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Konsultn-Engineering/sqlgen/builder"
	"github.com/Konsultn-Engineering/sqlgen/cache"
	"github.com/Konsultn-Engineering/sqlgen/codegen"
	"github.com/Konsultn-Engineering/sqlgen/dialect"
	"github.com/Konsultn-Engineering/sqlgen/schema"
	"github.com/Konsultn-Engineering/sqlgen/utils"
)

const (
	// SourceExt is the extension of host files.
	SourceExt = ".sqlg"
	// OutputExt is appended to the lower cased host file name.
	OutputExt = ".sqlgen.go"

	DefaultCacheSize = 256
)

// Options configures how host files become Go files. Zero fields are
// derived from the file and output paths.
type Options struct {
	// Package of the generated file. Defaults to the output directory name.
	Package string
	// TypeName of the statement group. Defaults to the host file name.
	TypeName   string
	BaseType   string
	BaseImport string
	// Dialect bound by the generated constructor when the host file name
	// does not select one.
	Dialect string

	// Force regenerates outputs that are newer than their source.
	Force bool
	// Jobs bounds the files Walk compiles at once; 0 means GOMAXPROCS.
	Jobs int
	// FailFast makes Walk stop starting new files after the first failure.
	FailFast bool

	// Compiler compiles the host files; nil uses a process wide compiler
	// with the default registry.
	Compiler *Compiler
}

func (o Options) compiler() *Compiler {
	if o.Compiler != nil {
		return o.Compiler
	}
	return defaultCompiler()
}

var defaultCompiler = sync.OnceValue(func() *Compiler {
	c, err := NewCompiler(nil, DefaultCacheSize)
	if err != nil {
		panic(err)
	}
	return c
})

// Compiler compiles host files. Results are cached by path and modification
// time, so one Compiler can serve repeated walks of the same tree.
type Compiler struct {
	registry  *schema.Registry
	files     *cache.CompileCache[codegen.File]
	generated *cache.CompileCache[[]byte]
}

// NewCompiler returns a compiler resolving types through reg (nil means
// schema.DefaultRegistry()) that keeps up to size compiled files.
func NewCompiler(reg *schema.Registry, size int) (*Compiler, error) {
	if reg == nil {
		reg = schema.DefaultRegistry()
	}
	files, err := cache.NewCompileCache[codegen.File](size)
	if err != nil {
		return nil, err
	}
	generated, err := cache.NewCompileCache[[]byte](size)
	if err != nil {
		return nil, err
	}
	return &Compiler{registry: reg, files: files, generated: generated}, nil
}

// Compile builds every statement of a host file. path labels errors and
// the generated header. The first statement that fails aborts the file.
func (c *Compiler) Compile(path string, source []byte) (codegen.File, error) {
	file := codegen.File{Path: filepath.ToSlash(path), Hash: utils.SourceHash(source)}

	lines := make(map[string]int)
	for _, b := range Split(string(source)) {
		if first, ok := lines[b.Name]; ok {
			return codegen.File{}, &StatementError{
				File:      path,
				Statement: b.Name,
				Line:      b.Line,
				Err:       fmt.Errorf("%w, first on line %d", ErrDuplicateName, first),
			}
		}
		lines[b.Name] = b.Line

		tree, err := builder.Compile(b.Body, c.registry)
		if err != nil {
			return codegen.File{}, &StatementError{File: path, Statement: b.Name, Line: b.Line, Err: err}
		}
		file.Statements = append(file.Statements, codegen.Statement{Name: b.Name, Tree: tree})
	}
	return file, nil
}

// CompileFile reads and compiles the host file at path.
func (c *Compiler) CompileFile(path string) (codegen.File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return codegen.File{}, err
	}
	key := cache.GenerateFixedKey(cache.KindHostFile, path, info.ModTime())
	return c.files.GetOrCompile(key, func() (codegen.File, error) {
		src, err := os.ReadFile(path)
		if err != nil {
			return codegen.File{}, err
		}
		return c.Compile(path, src)
	})
}

// Generate returns the Go source for the host file at src as it would be
// written to out.
func (c *Compiler) Generate(src, out string, opts Options) ([]byte, error) {
	copts, err := c.options(src, out, opts)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(src)
	if err != nil {
		return nil, err
	}

	id := utils.FingerprintStrings(src, out, copts.Package, copts.TypeName, copts.BaseType,
		copts.BaseImport, copts.Prefix, copts.Dialect)
	key := cache.GenerateFixedKey(cache.KindGenerated, fmt.Sprintf("%x", id), info.ModTime())
	return c.generated.GetOrCompile(key, func() ([]byte, error) {
		file, err := c.CompileFile(src)
		if err != nil {
			return nil, err
		}
		file.Path = displayPath(src, out)
		return codegen.Generate(file, copts)
	})
}

// GenerateFile compiles src and writes the generated code to out.
func (c *Compiler) GenerateFile(src, out string, opts Options) error {
	code, err := c.Generate(src, out, opts)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return err
	}
	return writeFile(out, code)
}

// GenerateFile compiles src with the default compiler and writes the
// generated code to out.
func GenerateFile(src, out string, opts Options) error {
	return opts.compiler().GenerateFile(src, out, opts)
}

// options resolves the codegen options of one host file. "Users.sqlg"
// yields type Users; the variant "Users.mysql.sqlg" yields UsersMysql with
// statement types prefixed Mysql and the mysql dialect.
func (c *Compiler) options(src, out string, opts Options) (codegen.Options, error) {
	base, variant := hostName(src)
	copts := codegen.Options{
		Package:    opts.Package,
		TypeName:   opts.TypeName,
		BaseType:   opts.BaseType,
		BaseImport: opts.BaseImport,
		Dialect:    opts.Dialect,
		Registry:   c.registry,
	}
	if copts.TypeName == "" {
		copts.TypeName = schema.ExportedName(base) + schema.ExportedName(variant)
	}
	if variant != "" {
		copts.Prefix = schema.ExportedName(variant)
		if _, err := dialect.Lookup(variant); err == nil {
			copts.Dialect = variant
		}
	}
	if copts.Package == "" {
		abs, err := filepath.Abs(filepath.Dir(out))
		if err != nil {
			return codegen.Options{}, err
		}
		copts.Package = PackageName(filepath.Base(abs))
	}
	return copts, nil
}

// hostName splits "dir/Users.mysql.sqlg" into "Users" and "mysql".
func hostName(path string) (base, variant string) {
	name := strings.TrimSuffix(filepath.Base(path), SourceExt)
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[:i], name[i+1:]
	}
	return name, ""
}

// OutputName returns the file name generated for a host file:
// "Users.mysql.sqlg" becomes "users_mysql.sqlgen.go".
func OutputName(path string) string {
	base, variant := hostName(path)
	name := strings.ToLower(base)
	if variant != "" {
		name += "_" + strings.ToLower(variant)
	}
	return name + OutputExt
}

// PackageName turns a directory name into a package name by lower casing
// it and dropping characters that may not appear in an identifier.
func PackageName(dir string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(dir) {
		if r == '_' || ('a' <= r && r <= 'z') || (b.Len() > 0 && '0' <= r && r <= '9') {
			b.WriteRune(r)
		}
	}
	switch {
	case b.Len() == 0:
		return "queries"
	case token.IsKeyword(b.String()):
		return b.String() + "_"
	}
	return b.String()
}

// displayPath is the source path recorded in the generated header: relative
// to the output directory when possible, so that headers do not depend on
// where the tree is checked out.
func displayPath(src, out string) string {
	if rel, err := filepath.Rel(filepath.Dir(out), src); err == nil {
		return filepath.ToSlash(rel)
	}
	return filepath.ToSlash(src)
}

// writeFile replaces path atomically.
func writeFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
