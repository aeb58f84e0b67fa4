package schema

import (
	"sort"

	"github.com/Konsultn-Engineering/sqlgen/lexer"
)

// DefaultType is the template type assumed when a variable carries no ":type" suffix.
const DefaultType = lexer.DefaultType

// TypeInfo describes how one template type is carried through generated code.
type TypeInfo struct {
	// Name is the name used after ':' in templates, e.g. "int".
	Name string
	// GoType is the storage type used for parameter and row fields.
	GoType string
	// Import is the package GoType lives in, empty for builtins.
	Import string
	// Accessor names the runtime column reader used when loading rows.
	Accessor string
	// Binary marks types whose values are raw bytes.
	Binary bool
}

// Registry maps template type names to their TypeInfo. A Registry is
// immutable once built and safe for concurrent use.
type Registry struct {
	types map[string]TypeInfo
}

var builtinTypes = []TypeInfo{
	{Name: "String", GoType: "string", Accessor: "String"},
	{Name: "int", GoType: "int32", Accessor: "Int32"},
	{Name: "long", GoType: "int64", Accessor: "Int64"},
	{Name: "double", GoType: "float64", Accessor: "Float64"},
	{Name: "float", GoType: "float32", Accessor: "Float32"},
	{Name: "short", GoType: "int16", Accessor: "Int16"},
	{Name: "boolean", GoType: "bool", Accessor: "Bool"},
	{Name: "byte", GoType: "int8", Accessor: "Int8"},
	{Name: "bytes", GoType: "[]byte", Accessor: "Bytes", Binary: true},
	{Name: "decimal", GoType: "string", Accessor: "String"},
	{Name: "URL", GoType: "string", Accessor: "String"},
	{Name: "Date", GoType: "time.Time", Import: "time", Accessor: "Time"},
	{Name: "Time", GoType: "time.Time", Import: "time", Accessor: "Time"},
	{Name: "Timestamp", GoType: "time.Time", Import: "time", Accessor: "Time"},
	{Name: "Blob", GoType: "[]byte", Accessor: "Bytes", Binary: true},
	{Name: "Clob", GoType: "string", Accessor: "String"},
	{Name: "UUID", GoType: "uuid.UUID", Import: "github.com/google/uuid", Accessor: "UUID"},
	{Name: "ULID", GoType: "ulid.ULID", Import: "github.com/oklog/ulid/v2", Accessor: "ULID"},
}

var defaultRegistry = NewRegistry(builtinTypes...)

// DefaultRegistry returns the shared registry of built-in template types.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// NewRegistry builds a registry from the given types. Later entries replace
// earlier ones with the same name.
func NewRegistry(types ...TypeInfo) *Registry {
	r := &Registry{types: make(map[string]TypeInfo, len(types))}
	for _, t := range types {
		r.types[t.Name] = t
	}
	return r
}

// With returns a copy of r extended with the given types.
func (r *Registry) With(types ...TypeInfo) *Registry {
	merged := make([]TypeInfo, 0, len(r.types)+len(types))
	for _, t := range r.types {
		merged = append(merged, t)
	}
	return NewRegistry(append(merged, types...)...)
}

// Lookup returns the TypeInfo registered under name.
func (r *Registry) Lookup(name string) (TypeInfo, bool) {
	t, ok := r.types[name]
	return t, ok
}

// Has reports whether name is a known template type.
func (r *Registry) Has(name string) bool {
	_, ok := r.types[name]
	return ok
}

// Names returns all registered type names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
