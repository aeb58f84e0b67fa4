package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Konsultn-Engineering/sqlgen/builder"
	"github.com/Konsultn-Engineering/sqlgen/connector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseParams(t *testing.T) {
	tree, err := builder.Compile("SELECT * FROM t WHERE [a=$a:int] [b=$b:boolean] [c=$c] [d=#d:double]", nil)
	require.NoError(t, err)

	params, err := parseParams(tree, []string{"a=3", "b=true", "c=x=y", "d=1.5"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": int32(3), "b": true, "c": "x=y", "d": 1.5}, params)

	for _, bad := range [][]string{{"a"}, {"z=1"}, {"a=three"}, {"a=99999999999"}} {
		_, err := parseParams(tree, bad)
		assert.Error(t, err, bad)
	}
}

func TestRunGenerate(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "Users.sqlg"),
		[]byte("selectUser:=SELECT @id:int FROM users WHERE id=$id:int;\n"), 0o644))
	out := filepath.Join(t.TempDir(), "queries")

	code := run([]string{"sqlgen", "-C", filepath.Join(root, "missing.yaml"), "generate", root})
	assert.Equal(t, 1, code)

	code = run([]string{"sqlgen", "-o", out, "-p", "queries", "generate", root})
	require.Equal(t, 0, code)
	data, err := os.ReadFile(filepath.Join(out, "users.sqlgen.go"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "package queries\n")
}

func TestRunUsage(t *testing.T) {
	assert.Equal(t, 2, run([]string{"sqlgen"}))
	assert.Equal(t, 2, run([]string{"sqlgen", "frobnicate"}))
	assert.Equal(t, 2, run([]string{"sqlgen", "-x"}))
	assert.Equal(t, 0, run([]string{"sqlgen", "-h"}))
	assert.Equal(t, 0, run([]string{"sqlgen", "types"}))
}

func TestRunRender(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Users.sqlg")
	require.NoError(t, os.WriteFile(path,
		[]byte("find:=SELECT * FROM users WHERE [name=$name] [AND] [age=$age:int];\n"), 0o644))

	assert.Equal(t, 0, run([]string{"sqlgen", "-d", "postgres", "render", path, "find", "age=3"}))
	assert.Equal(t, 1, run([]string{"sqlgen", "render", path, "missing"}))
	assert.Equal(t, 2, run([]string{"sqlgen", "render", path, "find", "age=x"}))
	assert.Equal(t, 2, run([]string{"sqlgen", "render", path}))
}

func TestDescribeConnection(t *testing.T) {
	conn, err := connector.Open(context.Background(), connector.Config{Driver: "sqlite", Path: ":memory:"})
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.Health(context.Background()))
	assert.Equal(t, "connected sqlite (sqlite dialect) open=1/1 in_use=1 idle=0", describeConnection("sqlite", conn))
}
