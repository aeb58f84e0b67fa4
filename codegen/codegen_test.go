package codegen

import (
	"errors"
	"go/parser"
	"go/token"
	"testing"

	"github.com/Konsultn-Engineering/sqlgen/builder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compileFile(t *testing.T, stmts ...string) File {
	t.Helper()
	f := File{Path: "queries/users.sqlg", Hash: "af1349b9f5f9a1a6a0404dea36dcc949"}
	for i := 0; i+1 < len(stmts); i += 2 {
		tree, err := builder.Compile(stmts[i+1], nil)
		require.NoError(t, err)
		f.Statements = append(f.Statements, Statement{Name: stmts[i], Tree: tree})
	}
	return f
}

func generate(t *testing.T, file File, opts Options) string {
	t.Helper()
	out, err := Generate(file, opts)
	require.NoError(t, err)

	_, err = parser.ParseFile(token.NewFileSet(), "users.go", out, parser.ParseComments)
	require.NoError(t, err, string(out))
	return string(out)
}

const selectUser = "SELECT @id:int, @name FROM t WHERE [name=$name] [AND] [age=$age:int] LIMIT 1;"

func TestGenerateHeaderAndGroup(t *testing.T) {
	src := generate(t, compileFile(t), Options{Package: "queries", TypeName: "Users", Dialect: "postgres"})

	assert.Contains(t, src, "// Code generated by sqlgen. DO NOT EDIT.\n")
	assert.Contains(t, src, "// source: queries/users.sqlg\n")
	assert.Contains(t, src, "// blake3: af1349b9f5f9a1a6a0404dea36dcc949\n")
	assert.Contains(t, src, "package queries\n")
	assert.Contains(t, src, "type Users struct {\n\t*runtime.API\n}")
	assert.Contains(t, src, "func NewUsers(db database.Database) *Users {")
	assert.Contains(t, src, "runtime.NewAPI(db, dialect.NewPostgresDialect())")
	assert.NotContains(t, src, `"context"`)
}

func TestGenerateStatement(t *testing.T) {
	src := generate(t, compileFile(t, "selectUser", selectUser), Options{Package: "queries", TypeName: "Users"})

	for _, want := range []string{
		"//\tSELECT @id:int, @name FROM t WHERE [name=$name] [AND] [age=$age:int] LIMIT 1;",
		"type SelectUser struct {\n\tapi *runtime.API\n\n\tName *string\n\tAge  *int32\n}",
		"func (q *Users) SelectUser() *SelectUser {\n\treturn &SelectUser{api: q.Runtime()}\n}",
		"func (q *Users) SelectUserWith(name string, age int32) *SelectUser {",
		"\tp.Name = &name\n\tp.Age = &age\n",
		"func (p *SelectUser) SetAge(v int32) *SelectUser {\n\tp.Age = &v\n\treturn p\n}",
		"\tif p.Age != nil {\n\t\tm |= 0x2\n\t}\n",
		"func (p *SelectUser) Exec(ctx context.Context) (database.Result, error) {\n\treturn p.api.Exec(ctx, p)\n}",
		"func (p *SelectUser) Query(ctx context.Context) (*runtime.RowIterator[SelectUserRow, *SelectUserRow], error) {",
		"return runtime.Query[SelectUserRow](ctx, p.api, p)",
		"type SelectUserRow struct {\n\tId   int32\n\tName string\n}",
		"return rows.Scan(runtime.Int32(&r.Id), runtime.String(&r.Name))",
		"func (r *SelectUserRow) Clone() *SelectUserRow {",
		"dialect.NewGenericDialect()",
	} {
		assert.Contains(t, src, want)
	}
}

func TestGenerateRenderBody(t *testing.T) {
	src := generate(t, compileFile(t, "selectUser", selectUser), Options{Package: "queries", TypeName: "Users"})

	want := `func (p *SelectUser) Render() (string, error) {
	available := p.AvailableMask()
	var b strings.Builder
	combine := false
	b.WriteString("SELECT id, name FROM t WHERE ")
	if available&0x1 == 0x1 {
		b.WriteString("name=")
		b.WriteString(p.api.Escape(*p.Name))
		combine = true
	}
	b.WriteString(" ")
	if combine && available&0x2 == 0x2 {
		b.WriteString("AND")
		combine = false
	}
	b.WriteString(" ")
	if available&0x2 == 0x2 {
		b.WriteString("age=")
		b.WriteString(p.api.Escape(*p.Age))
		combine = true
	}
	b.WriteString(" LIMIT 1;")
	combine = true
	return b.String(), nil
}`
	assert.Contains(t, src, want)
}

func TestGenerateRequiredParams(t *testing.T) {
	src := generate(t, compileFile(t, "deleteUser", "DELETE FROM users WHERE id=$id:long LIMIT #limit:int"),
		Options{Package: "queries", TypeName: "Users"})

	assert.Contains(t, src, "\tif available&0x3 != 0x3 {\n")
	assert.Contains(t, src, `return "", runtime.MissingParams("deleteUser", []string{"id", "limit"}, 0x3, available)`)
	assert.Contains(t, src, "b.WriteString(runtime.Literal(*p.Limit))")
	assert.NotContains(t, src, "combine")
	assert.NotContains(t, src, "DeleteUserRow", "no row type without target variables")
	assert.NotContains(t, src, "func (p *DeleteUser) Query(")
}

func TestGenerateAlternative(t *testing.T) {
	src := generate(t, compileFile(t, "find", "SELECT * FROM t [WHERE [a=$a] [AND] [b=$b]]"),
		Options{Package: "queries", TypeName: "Users"})

	for _, want := range []string{
		"\tif available&0x3 != 0 {\n\t\tvar sub1 strings.Builder\n\t\talt1 := false\n\t\tcombine1 := false\n",
		"\t\tsub1.WriteString(\"WHERE \")\n",
		"\t\tif available&0x1 == 0x1 {\n\t\t\talt1 = true\n",
		"\t\tif combine1 && available&0x2 == 0x2 {\n",
		"\t\tif alt1 {\n\t\t\tb.WriteString(sub1.String())\n\t\t}\n",
	} {
		assert.Contains(t, src, want)
	}
	assert.NotContains(t, src, "combine :=", "the root scope has no separator")
}

func TestGenerateStopCombiner(t *testing.T) {
	src := generate(t, compileFile(t, "pair", "[a=$a]{}[,][b=$b]"), Options{Package: "queries", TypeName: "Users"})
	assert.Contains(t, src, "\tcombine = false\n\tif combine && available&0x2 == 0x2 {\n")
}

func TestGenerateTypesAndImports(t *testing.T) {
	src := generate(t, compileFile(t,
		"touch", "UPDATE t SET seen=$seen:Timestamp WHERE id=$id:UUID RETURNING @token:ULID",
	), Options{Package: "queries", TypeName: "Users"})

	assert.Contains(t, src, `"time"`)
	assert.Contains(t, src, `"github.com/google/uuid"`)
	assert.Contains(t, src, `"github.com/oklog/ulid/v2"`)
	assert.Contains(t, src, "\tSeen *time.Time\n\tId   *uuid.UUID\n")
	assert.Contains(t, src, "runtime.ULID(&r.Token)")
}

func TestGenerateReservedNames(t *testing.T) {
	src := generate(t, compileFile(t, "lookup", "SELECT @load FROM t WHERE a=$string AND b=$render AND c=$q"),
		Options{Package: "queries", TypeName: "Users"})

	assert.Contains(t, src, "\tString_ *string\n")
	assert.Contains(t, src, "\tRender_ *string\n")
	assert.Contains(t, src, "func (p *Lookup) SetString_(v string) *Lookup {")
	assert.Contains(t, src, "LookupWith(string_ string, render string, q_ string)")
	assert.Contains(t, src, "\tLoad_ string\n")
}

func TestGenerateCustomBase(t *testing.T) {
	src := generate(t, compileFile(t, "count", "SELECT count(*) AS @n:long FROM t"), Options{
		Package:    "queries",
		TypeName:   "UsersMysql",
		BaseType:   "*base.Queries",
		BaseImport: "example.com/app/base",
		Prefix:     "Mysql",
	})

	assert.Contains(t, src, "type UsersMysql struct {\n\t*base.Queries\n}")
	assert.Contains(t, src, `"example.com/app/base"`)
	assert.NotContains(t, src, "func NewUsersMysql")
	assert.Contains(t, src, "func (q *UsersMysql) Count() *MysqlCount {")
	assert.Contains(t, src, "type MysqlCountRow struct {")
}

func TestGenerateErrors(t *testing.T) {
	tests := []struct {
		name   string
		file   File
		opts   Options
		target error
	}{
		{"NoPackage", File{}, Options{TypeName: "Users"}, ErrNoPackage},
		{"BadTypeName", File{}, Options{Package: "q", TypeName: "users"}, ErrInvalidName},
		{"DuplicateStatement", compileFile(t, "select", "SELECT 1", "Select", "SELECT 2"), Options{Package: "q", TypeName: "Users"}, ErrNameClash},
		{"StatementShadowsGroup", compileFile(t, "users", "SELECT 1"), Options{Package: "q", TypeName: "Users"}, ErrNameClash},
		{"StatementShadowsRuntime", compileFile(t, "runtime", "SELECT 1"), Options{Package: "q", TypeName: "Users"}, ErrNameClash},
		{"WithSuffixClash", compileFile(t, "get", "SELECT $a", "getWith", "SELECT 1"), Options{Package: "q", TypeName: "Users"}, ErrNameClash},
		{"SetterClash", compileFile(t, "get", "SELECT $a, $set_a"), Options{Package: "q", TypeName: "Users"}, ErrNameClash},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Generate(tt.file, tt.opts)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.target), err.Error())
		})
	}

	_, err := Generate(File{}, Options{Package: "q", TypeName: "Users", Dialect: "oracle"})
	assert.Error(t, err)
}

func TestGenerateIsDeterministic(t *testing.T) {
	file := compileFile(t, "selectUser", selectUser, "touch", "UPDATE t SET seen=$seen:Timestamp WHERE id=$id:UUID")
	opts := Options{Package: "queries", TypeName: "Users"}
	assert.Equal(t, generate(t, file, opts), generate(t, file, opts))
}
