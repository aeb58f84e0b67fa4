package schema

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrUnknownGenerator = errors.New("unknown template generator")
	ErrNoColumns        = errors.New("table has no columns")
	ErrNoPrimaryKey     = errors.New("table has no primary key")
	ErrNothingToUpdate  = errors.New("table has no columns outside the primary key")
	ErrInvalidColumn    = errors.New("column name is not a template variable name")
)

// Generator writes one or more template statements for a table.
type Generator interface {
	Generate(b *strings.Builder, table string, columns []ColumnInfo) error
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(b *strings.Builder, table string, columns []ColumnInfo) error

func (f GeneratorFunc) Generate(b *strings.Builder, table string, columns []ColumnInfo) error {
	return f(b, table, columns)
}

// Generators holds the template generators by name.
var Generators = map[string]Generator{
	"insert": GeneratorFunc(generateInsert),
	"update": GeneratorFunc(generateUpdate),
	"delete": GeneratorFunc(generateDelete),
	"select": GeneratorFunc(generateSelect),
	"list":   GeneratorFunc(generateList),
	"cruds":  GeneratorFunc(generateCruds),
}

// GeneratorNames returns the registered generator names in sorted order.
func GeneratorNames() []string {
	names := make([]string, 0, len(Generators))
	for name := range Generators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GenerateTemplate runs the named generator and returns the template text.
func GenerateTemplate(kind, table string, columns []ColumnInfo) (string, error) {
	g, ok := Generators[kind]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownGenerator, kind)
	}
	if len(columns) == 0 {
		return "", fmt.Errorf("%s: %w", table, ErrNoColumns)
	}
	for _, c := range columns {
		if !isVariableName(c.Name) {
			return "", fmt.Errorf("%s.%s: %w", table, c.Name, ErrInvalidColumn)
		}
	}
	var b strings.Builder
	if err := g.Generate(&b, table, columns); err != nil {
		return "", err
	}
	return b.String(), nil
}

// isVariableName reports whether name lexes as one template variable.
func isVariableName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
		default:
			return false
		}
	}
	return true
}

// typed renders a variable name with its ":type" suffix, omitting the default type.
func typed(c ColumnInfo) string {
	if t := c.TemplateType(); t != DefaultType {
		return c.Name + ":" + t
	}
	return c.Name
}

func primaryKeys(table string, columns []ColumnInfo) ([]ColumnInfo, error) {
	var keys []ColumnInfo
	for _, c := range columns {
		if c.PrimaryKey {
			keys = append(keys, c)
		}
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("%s: %w", table, ErrNoPrimaryKey)
	}
	return keys, nil
}

func writeKeyFilter(b *strings.Builder, keys []ColumnInfo) {
	for i, c := range keys {
		if i > 0 {
			b.WriteString("\n\t\tAND ")
		} else {
			b.WriteString("\t\t")
		}
		b.WriteString(c.Name + "=$" + typed(c))
	}
}

func writeOutputs(b *strings.Builder, columns []ColumnInfo) {
	for i, c := range columns {
		if i > 0 {
			b.WriteString(",\n")
		}
		b.WriteString("\t\t@" + typed(c))
	}
}

// =========================================================================
// Row Statements
// =========================================================================

// generateInsert lists mandatory columns unconditionally and every column
// that may be omitted (nullable, defaulted, auto increment) as an optional
// section gated by its value.
func generateInsert(b *strings.Builder, table string, columns []ColumnInfo) error {
	var mandatory, optional []ColumnInfo
	for _, c := range columns {
		if c.Optional() {
			optional = append(optional, c)
		} else {
			mandatory = append(mandatory, c)
		}
	}

	b.WriteString(StatementName("insert", table, false) + ":=INSERT INTO " + table + "\n\t(\n")
	for i, c := range mandatory {
		if i > 0 {
			b.WriteString(",\n")
		}
		b.WriteString("\t\t" + c.Name)
	}
	writeOptionalList(b, len(mandatory), optional, func(c ColumnInfo) string {
		return "?" + typed(c) + " " + c.Name
	})
	if len(mandatory) == 0 {
		// keeps the column list from feeding the first combiner of VALUES
		b.WriteString("\n\t\t[]")
	}

	b.WriteString("\n\t)\n\tVALUES (\n")
	for i, c := range mandatory {
		if i > 0 {
			b.WriteString(",\n")
		}
		b.WriteString("\t\t$" + typed(c))
	}
	writeOptionalList(b, len(mandatory), optional, func(c ColumnInfo) string {
		return " $" + typed(c) + " "
	})
	b.WriteString("\n\t);\n")
	return nil
}

// writeOptionalList appends optional items to a comma separated list. After
// mandatory items each optional item carries its own comma; without any the
// commas become combiners.
func writeOptionalList(b *strings.Builder, mandatory int, optional []ColumnInfo, item func(ColumnInfo) string) {
	for i, c := range optional {
		switch {
		case mandatory > 0:
			b.WriteString("\n\t\t[,")
		case i > 0:
			b.WriteString("\n\t\t[,][")
		default:
			b.WriteString("\n\t\t[")
		}
		b.WriteString(item(c) + "]")
	}
}

func generateUpdate(b *strings.Builder, table string, columns []ColumnInfo) error {
	keys, err := primaryKeys(table, columns)
	if err != nil {
		return err
	}

	b.WriteString(StatementName("update", table, false) + ":=UPDATE " + table + "\n\tSET\n")
	n := 0
	for _, c := range columns {
		if c.PrimaryKey {
			continue
		}
		if n > 0 {
			b.WriteString("[,]\n")
		}
		n++
		b.WriteString("\t\t[" + c.Name + "=$" + typed(c) + "]")
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", table, ErrNothingToUpdate)
	}

	b.WriteString("\n\tWHERE\n")
	writeKeyFilter(b, keys)
	b.WriteString("\n;\n")
	return nil
}

func generateDelete(b *strings.Builder, table string, columns []ColumnInfo) error {
	keys, err := primaryKeys(table, columns)
	if err != nil {
		return err
	}

	b.WriteString(StatementName("delete", table, false) + ":=DELETE \n\tFROM " + table + " WHERE\n")
	writeKeyFilter(b, keys)
	b.WriteString(";\n")
	return nil
}

func generateSelect(b *strings.Builder, table string, columns []ColumnInfo) error {
	keys, err := primaryKeys(table, columns)
	if err != nil {
		return err
	}

	b.WriteString(StatementName("select", table, false) + ":=SELECT \n")
	writeOutputs(b, columns)
	b.WriteString("\n\tFROM " + table + " WHERE\n")
	writeKeyFilter(b, keys)
	b.WriteString("\n\tLIMIT 1;\n")
	return nil
}

// generateList filters on any subset of columns joined by AND, with
// optional ordering and paging.
func generateList(b *strings.Builder, table string, columns []ColumnInfo) error {
	b.WriteString(StatementName("list", table, true) + ":=SELECT \n")
	writeOutputs(b, columns)
	b.WriteString("\n\tFROM " + table + "  [WHERE\n")
	for i, c := range columns {
		if i > 0 {
			b.WriteString("[AND]\n")
		}
		b.WriteString("\t\t[" + c.Name + "=$" + typed(c) + "]")
	}
	b.WriteString("\n\t]\n\t[ORDER BY #order_by]\n\t[LIMIT #limit:int [OFFSET #offset:int]];\n")
	return nil
}

func generateCruds(b *strings.Builder, table string, columns []ColumnInfo) error {
	for i, g := range []GeneratorFunc{generateInsert, generateUpdate, generateDelete, generateSelect, generateList} {
		if i > 0 {
			b.WriteString("\n")
		}
		if err := g(b, table, columns); err != nil {
			return err
		}
	}
	return nil
}
