package codegen

import (
	"fmt"
	"go/types"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/go/packages"
)

// TestGeneratedCodeTypeChecks adds generated files to this package through
// a go list overlay and type-checks them against the real runtime,
// database and dialect packages.
func TestGeneratedCodeTypeChecks(t *testing.T) {
	if testing.Short() {
		t.Skip("loads packages through the go command")
	}
	if _, err := exec.LookPath("go"); err != nil {
		t.Skip("go command not available")
	}
	dir, err := filepath.Abs(".")
	require.NoError(t, err)

	sets := []struct {
		typeName string
		prefix   string
		dialect  string
		file     File
	}{
		{"CheckedUsers", "Checked", "", compileFile(t,
			"selectUser", selectUser,
			"deleteUser", "DELETE FROM users WHERE id=$id:long LIMIT #limit:int",
			"find", "SELECT * FROM t [WHERE [a=$a] [AND] [b=$b]]",
			"pair", "[a=$a]{}[,][b=$b]",
			"lookup", "SELECT @load FROM t WHERE a=$string AND b=$render AND c=$q",
		)},
		{"CheckedPgUsers", "CheckedPg", "postgres", compileFile(t,
			"touch", "UPDATE t SET seen=$seen:Timestamp WHERE id=$id:UUID",
			"token", "SELECT @token:ULID, @at:Timestamp FROM t WHERE [id=$id:UUID]",
			"count", "SELECT count(*) AS @n:long FROM t",
		)},
	}

	overlay := make(map[string][]byte, len(sets))
	for i, s := range sets {
		out, err := Generate(s.file, Options{Package: "codegen", TypeName: s.typeName, Prefix: s.prefix, Dialect: s.dialect})
		require.NoError(t, err)
		overlay[filepath.Join(dir, fmt.Sprintf("zz_generated_%d.go", i))] = out
	}

	pkgs, err := packages.Load(&packages.Config{
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedImports |
			packages.NeedTypes | packages.NeedSyntax | packages.NeedTypesInfo,
		Dir:     dir,
		Overlay: overlay,
	}, ".")
	require.NoError(t, err)
	require.Len(t, pkgs, 1)
	pkg := pkgs[0]
	for _, e := range pkg.Errors {
		t.Errorf("%v", e)
	}
	for path := range overlay {
		assert.Contains(t, pkg.GoFiles, path)
	}
	require.NotNil(t, pkg.Types)

	scope := pkg.Types.Scope()
	for _, name := range []string{"CheckedUsers", "CheckedSelectUser", "CheckedPair", "CheckedPgTouch", "CheckedPgTokenRow"} {
		assert.NotNil(t, scope.Lookup(name), name)
	}

	method := func(typeName, name string) types.Object {
		obj := scope.Lookup(typeName)
		require.NotNil(t, obj, typeName)
		m, _, _ := types.LookupFieldOrMethod(types.NewPointer(obj.Type()), false, pkg.Types, name)
		require.NotNil(t, m, typeName+"."+name)
		return m
	}
	assert.Equal(t, "func() (string, error)", method("CheckedSelectUser", "Render").Type().String())
	assert.Equal(t, "func() uint64", method("CheckedFind", "AvailableMask").Type().String())
	assert.Equal(t, "func() *github.com/Konsultn-Engineering/sqlgen/codegen.CheckedPgTouch",
		method("CheckedPgUsers", "Touch").Type().String())
}
