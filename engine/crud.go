package engine

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/Konsultn-Engineering/sqlgen/schema"
)

// CrudTemplate introspects the target table and returns host file text
// holding the statements of its generator.
func CrudTemplate(ctx context.Context, in schema.Introspector, target CrudTarget) (string, error) {
	kind := target.Generator
	if kind == "" {
		kind = "cruds"
	}
	columns, err := in.Columns(ctx, target.Schema, target.Table)
	if err != nil {
		return "", err
	}
	body, err := schema.GenerateTemplate(kind, target.Table, columns)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "-- %s statements of table %s, generated by sqlgen.\n", kind, target.Table)
	b.WriteString("-- Edit freely: the file is only written when it does not exist.\n\n")
	b.WriteString(body)
	return b.String(), nil
}

// WriteCrud writes the host file of target below root and returns its
// path. An existing file is never overwritten unless force is set.
func WriteCrud(ctx context.Context, in schema.Introspector, root string, target CrudTarget, force bool) (string, error) {
	path := target.Output
	if path == "" {
		path = schema.ExportedName(target.Table) + SourceExt
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}
	if _, err := os.Stat(path); err == nil && !force {
		return path, fmt.Errorf("%s: %w", path, fs.ErrExist)
	}

	text, err := CrudTemplate(ctx, in, target)
	if err != nil {
		return "", fmt.Errorf("crud %s: %w", target.Table, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	return path, writeFile(path, []byte(text))
}
