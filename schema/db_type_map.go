package schema

import (
	"strings"
)

// DBTypeMap maps database column type names (upper case, without size
// parameters) to template type names. Types not listed fall back to String.
var DBTypeMap = map[string]string{
	// ===================
	// STANDARD SQL TYPES
	// ===================

	// Character types
	"CHAR":              "String",
	"VARCHAR":           "String",
	"TEXT":              "String",
	"CLOB":              "String",
	"NCHAR":             "String",
	"NVARCHAR":          "String",
	"NTEXT":             "String",
	"NCLOB":             "String",
	"CHARACTER":         "String",
	"CHAR VARYING":      "String",
	"CHARACTER VARYING": "String",

	// Numeric types - Integers
	"TINYINT":   "byte",
	"SMALLINT":  "int",
	"MEDIUMINT": "int",
	"INT":       "int",
	"INTEGER":   "int",
	"BIGINT":    "long",
	"SERIAL":    "int",
	"BIGSERIAL": "long",

	// Numeric types - Floating point
	"REAL":             "double",
	"FLOAT":            "float",
	"DOUBLE":           "double",
	"DOUBLE PRECISION": "double",
	"NUMERIC":          "decimal",
	"DECIMAL":          "decimal",
	"DEC":              "decimal",
	"FIXED":            "decimal",
	"NUMBER":           "decimal",

	// Boolean
	"BOOLEAN": "boolean",
	"BOOL":    "boolean",
	"BIT":     "boolean",

	// Date and Time
	"DATE":      "Date",
	"TIME":      "Time",
	"DATETIME":  "Timestamp",
	"TIMESTAMP": "Timestamp",
	"YEAR":      "short",

	// Binary types
	"BINARY":        "bytes",
	"VARBINARY":     "bytes",
	"BLOB":          "bytes",
	"TINYBLOB":      "bytes",
	"MEDIUMBLOB":    "bytes",
	"LONGBLOB":      "bytes",
	"LONGVARBINARY": "bytes",
	"BYTEA":         "bytes",
	"RAW":           "bytes",
	"LONG RAW":      "bytes",
	"IMAGE":         "bytes",

	// ===================
	// POSTGRESQL TYPES
	// ===================

	"SMALLSERIAL": "short",
	"SERIAL2":     "short",
	"SERIAL4":     "int",
	"SERIAL8":     "long",
	"INT2":        "short",
	"INT4":        "int",
	"INT8":        "long",
	"FLOAT4":      "float",
	"FLOAT8":      "double",
	"MONEY":       "decimal",
	"NAME":        "String",
	"BPCHAR":      "String",

	"TIMESTAMPTZ":                 "Timestamp",
	"TIMESTAMP WITH TIME ZONE":    "Timestamp",
	"TIMESTAMP WITHOUT TIME ZONE": "Timestamp",
	"TIMETZ":                      "Time",
	"TIME WITH TIME ZONE":         "Time",
	"TIME WITHOUT TIME ZONE":      "Time",

	"UUID": "UUID",
}

// TemplateType returns the template type for a database column type such as
// "varchar(255)" or "numeric(10,2)".
func TemplateType(dbType string) string {
	upperType := strings.ToUpper(strings.TrimSpace(dbType))
	if t, exists := DBTypeMap[upperType]; exists {
		return t
	}

	// Handle parameterized types like VARCHAR(255), DECIMAL(10,2), etc.
	if parenIdx := strings.IndexByte(upperType, '('); parenIdx != -1 {
		baseType := strings.TrimSpace(upperType[:parenIdx])
		if t, exists := DBTypeMap[baseType]; exists {
			return t
		}
	}

	// UNSIGNED BIGINT, INT UNSIGNED
	if base := strings.TrimSpace(strings.ReplaceAll(upperType, "UNSIGNED", "")); base != upperType {
		if t, exists := DBTypeMap[base]; exists {
			return t
		}
	}

	return DefaultType
}
