package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/Konsultn-Engineering/sqlgen/ast"
	"github.com/Konsultn-Engineering/sqlgen/connector"
	"github.com/Konsultn-Engineering/sqlgen/dialect"
	"github.com/Konsultn-Engineering/sqlgen/engine"
	"github.com/Konsultn-Engineering/sqlgen/schema"
	"github.com/Konsultn-Engineering/sqlgen/visitor"
	"github.com/fatih/color"
)

func (o *options) render(args []string) int {
	if len(args) < 2 {
		log.Println("render needs a host file and a statement name")
		return 2
	}
	path, name := args[0], args[1]

	opts := o.engineOptions()
	file, err := opts.Compiler.CompileFile(path)
	if err != nil {
		log.Println(err)
		return 1
	}
	var tree *ast.Tree
	for _, st := range file.Statements {
		if st.Name == name {
			tree = st.Tree
		}
	}
	if tree == nil {
		log.Printf("%s: no statement %s", path, name)
		return 1
	}

	params, err := parseParams(tree, args[2:])
	if err != nil {
		log.Println(err)
		return 2
	}
	d, err := dialect.Lookup(o.cfg.DialectName())
	if err != nil {
		log.Println(err)
		return 1
	}
	sql, err := visitor.Render(tree, params, d)
	if err != nil {
		log.Println(err)
		return 1
	}
	fmt.Println(sql)
	return 0
}

// parseParams converts name=value arguments to the declared types of the
// statement's input variables.
func parseParams(tree *ast.Tree, args []string) (map[string]any, error) {
	params := make(map[string]any, len(args))
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("parameter %q is not name=value", arg)
		}
		v, found := tree.Inputs.Lookup(name)
		if !found {
			return nil, fmt.Errorf("statement has no input variable %s", name)
		}
		parsed, err := parseValue(v.Type, value)
		if err != nil {
			return nil, fmt.Errorf("parameter %s: %w", name, err)
		}
		params[name] = parsed
	}
	return params, nil
}

func parseValue(typ, value string) (any, error) {
	switch typ {
	case "byte":
		n, err := strconv.ParseInt(value, 10, 8)
		return int8(n), err
	case "short":
		n, err := strconv.ParseInt(value, 10, 16)
		return int16(n), err
	case "int":
		n, err := strconv.ParseInt(value, 10, 32)
		return int32(n), err
	case "long":
		return strconv.ParseInt(value, 10, 64)
	case "float":
		f, err := strconv.ParseFloat(value, 32)
		return float32(f), err
	case "double":
		return strconv.ParseFloat(value, 64)
	case "boolean":
		return strconv.ParseBool(value)
	}
	return value, nil
}

func (o *options) crud(ctx context.Context) int {
	if o.cfg.Connection == nil || len(o.cfg.Crud) == 0 {
		log.Println("crud needs a connection and crud targets in the config")
		return 2
	}
	conn, err := connector.Open(ctx, *o.cfg.Connection)
	if err != nil {
		log.Println(err)
		return 1
	}
	defer conn.Close()
	if o.verbose {
		color.Cyan("%s", describeConnection(o.cfg.Connection.Driver, conn))
	}

	in, ok := conn.(connector.IntrospectingConnection)
	if !ok {
		log.Printf("driver %s cannot read table columns", o.cfg.Connection.Driver)
		return 1
	}

	status := 0
	for _, target := range o.cfg.Crud {
		path, err := engine.WriteCrud(ctx, in, o.cfg.Root, target, o.force)
		switch {
		case errors.Is(err, fs.ErrExist):
			color.Yellow("exists %s", path)
		case err != nil:
			color.Red("%v", err)
			status = 1
		default:
			color.Green("wrote %s", path)
		}
	}
	return status
}

func describeConnection(driver string, conn connector.Connection) string {
	return fmt.Sprintf("connected %s (%s dialect) %s", driver, conn.Dialect().Name(), conn.Stats())
}

func listTypes() int {
	reg := schema.DefaultRegistry()
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TYPE\tGO TYPE\tIMPORT")
	for _, name := range reg.Names() {
		info, _ := reg.Lookup(name)
		fmt.Fprintf(w, "%s\t%s\t%s\n", name, info.GoType, info.Import)
	}
	w.Flush()
	return 0
}
