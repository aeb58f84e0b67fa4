package visitor

import (
	"errors"
	"testing"

	"github.com/Konsultn-Engineering/sqlgen/ast"
	"github.com/Konsultn-Engineering/sqlgen/builder"
	"github.com/Konsultn-Engineering/sqlgen/dialect"
	"github.com/Konsultn-Engineering/sqlgen/runtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compile(t *testing.T, src string) *ast.Tree {
	t.Helper()
	tree, err := builder.Compile(src, nil)
	require.NoError(t, err)
	return tree
}

func render(t *testing.T, src string, params map[string]any) string {
	t.Helper()
	out, err := Render(compile(t, src), params, dialect.NewPostgresDialect())
	require.NoError(t, err)
	return out
}

const exampleStatement = "SELECT @id:int FROM t WHERE [name=$name] [AND] [age=$age:int] LIMIT 1;"

func TestRenderExampleStatement(t *testing.T) {
	tests := []struct {
		name     string
		params   map[string]any
		expected string
	}{
		{"NameOnly", map[string]any{"name": "x"}, "SELECT id FROM t WHERE name='x'  LIMIT 1;"},
		{"Both", map[string]any{"name": "x", "age": int32(3)}, "SELECT id FROM t WHERE name='x' AND age=3 LIMIT 1;"},
		{"AgeOnly", map[string]any{"age": int32(3)}, "SELECT id FROM t WHERE   age=3 LIMIT 1;"},
		{"Neither", nil, "SELECT id FROM t WHERE    LIMIT 1;"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, render(t, exampleStatement, tt.params))
		})
	}
}

func TestRenderWithoutOptionalSections(t *testing.T) {
	out := render(t, "UPDATE t SET a=$a, b=#b:int WHERE c=$c:boolean", map[string]any{
		"a": "it's",
		"b": int32(7),
		"c": true,
	})
	assert.Equal(t, "UPDATE t SET a='it''s', b=7 WHERE c=TRUE", out)

	assert.Equal(t, "SELECT now()", render(t, "SELECT now()", nil))
}

func TestRenderAlternative(t *testing.T) {
	src := "x [[a=$a][b=$b]] y"
	tests := []struct {
		name     string
		params   map[string]any
		expected string
	}{
		{"OnlyA", map[string]any{"a": "1"}, "x a='1' y"},
		{"OnlyB", map[string]any{"b": "2"}, "x b='2' y"},
		{"Neither", nil, "x  y"},
		{"Both", map[string]any{"a": "1", "b": "2"}, "x a='1'b='2' y"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, render(t, src, tt.params))
		})
	}
}

func TestRenderCombiner(t *testing.T) {
	src := "[x=$x][,] [y=$y]"
	tests := []struct {
		name     string
		params   map[string]any
		expected string
	}{
		{"OnlyX", map[string]any{"x": "1"}, "x='1' "},
		{"OnlyY", map[string]any{"y": "2"}, " y='2'"},
		{"Both", map[string]any{"x": "1", "y": "2"}, "x='1', y='2'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, render(t, src, tt.params))
		})
	}
}

func TestRenderCombinerChain(t *testing.T) {
	src := "WHERE [a=$a][ AND ][b=$b][ AND ][c=$c]"

	assert.Equal(t, "WHERE a='1' AND c='3'", render(t, src, map[string]any{"a": "1", "c": "3"}))
	assert.Equal(t, "WHERE b='2' AND c='3'", render(t, src, map[string]any{"b": "2", "c": "3"}))
	assert.Equal(t, "WHERE a='1'", render(t, src, map[string]any{"a": "1"}))
}

func TestRenderStopCombiner(t *testing.T) {
	params := map[string]any{"a": "1", "b": "2"}

	assert.Equal(t, "a='1'b='2'", render(t, "[a=$a][][,][b=$b]", params))
	assert.Equal(t, "a='1'b='2'", render(t, "[a=$a]{}[,][b=$b]", params))
	assert.Equal(t, "a='1'{x},b='2'", render(t, `[a=$a]\{x\}[,][b=$b]`, params), "escaped braces do not stop chaining")
}

func TestRenderWhereClauseAlternative(t *testing.T) {
	src := "SELECT * FROM t [WHERE [a=$a] [AND] [b=$b]]"

	assert.Equal(t, "SELECT * FROM t WHERE a='1' AND b='2'", render(t, src, map[string]any{"a": "1", "b": "2"}))
	assert.Equal(t, "SELECT * FROM t WHERE   b='2'", render(t, src, map[string]any{"b": "2"}))
	assert.Equal(t, "SELECT * FROM t ", render(t, src, nil))
}

func TestRenderNestedAlternative(t *testing.T) {
	src := "[x [[a=$a]] y]"

	assert.Equal(t, "x a='1' y", render(t, src, map[string]any{"a": "1"}))
	assert.Equal(t, "", render(t, src, nil))
}

func TestRenderVariableKinds(t *testing.T) {
	src := "SELECT @id, @name:String FROM t[?active WHERE active] ORDER BY #order_by"

	assert.Equal(t, "SELECT id, name FROM t WHERE active ORDER BY name DESC",
		render(t, src, map[string]any{"active": true, "order_by": "name DESC"}))
	assert.Equal(t, "SELECT id, name FROM t ORDER BY id",
		render(t, src, map[string]any{"order_by": "id"}))
}

func TestRenderQuoteProtection(t *testing.T) {
	out := render(t, "SELECT 'a[b' AS c, $x", map[string]any{"x": "v"})
	assert.Equal(t, "SELECT 'a[b' AS c, 'v'", out)
}

func TestRenderPointerParams(t *testing.T) {
	name := "x"
	var missing *int32

	out := render(t, exampleStatement, map[string]any{"name": &name, "age": missing})
	assert.Equal(t, "SELECT id FROM t WHERE name='x'  LIMIT 1;", out)
}

func TestRenderMissingParams(t *testing.T) {
	tree := compile(t, "DELETE FROM t WHERE id=$id:long [AND tenant=$tenant]")

	_, err := Render(tree, map[string]any{"tenant": "a"}, dialect.NewPostgresDialect())
	require.Error(t, err)
	assert.True(t, errors.Is(err, runtime.ErrMissingParams))
	assert.Contains(t, err.Error(), "id")

	out, err := Render(tree, map[string]any{"id": int64(5)}, nil)
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM t WHERE id=5 ", out)
}

func TestAvailable(t *testing.T) {
	tree := compile(t, exampleStatement)
	assert.Equal(t, uint64(0), Available(tree, nil))
	assert.Equal(t, uint64(2), Available(tree, map[string]any{"age": int32(1), "other": 1}))
	assert.Equal(t, uint64(1), Available(tree, map[string]any{"name": "", "age": nil}))
}

func TestVisitorReuse(t *testing.T) {
	tree := compile(t, exampleStatement)
	v := NewSQLVisitor(dialect.NewMySQLDialect())
	defer v.Release()

	first, err := v.Render(tree, map[string]any{"name": "o'neil"})
	require.NoError(t, err)
	second, err := v.Render(tree, map[string]any{"age": int32(4)})
	require.NoError(t, err)

	assert.Equal(t, `SELECT id FROM t WHERE name='o\'neil'  LIMIT 1;`, first)
	assert.Equal(t, "SELECT id FROM t WHERE   age=4 LIMIT 1;", second)
}

func BenchmarkRender(b *testing.B) {
	tree, err := builder.Compile(exampleStatement, nil)
	if err != nil {
		b.Fatal(err)
	}
	params := map[string]any{"name": "x", "age": int32(3)}
	d := dialect.NewPostgresDialect()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Render(tree, params, d); err != nil {
			b.Fatal(err)
		}
	}
}
