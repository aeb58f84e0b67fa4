// Package connector opens database connections through registered
// providers. Providers register themselves by name from their init
// functions; importing a providers package makes its driver available.
package connector

import (
	"context"

	"github.com/Konsultn-Engineering/sqlgen/database"
	"github.com/Konsultn-Engineering/sqlgen/dialect"
	"github.com/Konsultn-Engineering/sqlgen/schema"
)

type Connection interface {
	Database() database.Database
	Dialect() dialect.Dialect
	Health(ctx context.Context) error
	Stats() ConnectionStats
	Close() error
}

// IntrospectingConnection is a Connection that can also read table
// metadata, as needed by the CRUD template generators.
type IntrospectingConnection interface {
	Connection
	schema.Introspector
}

type Connector interface {
	Connect(ctx context.Context) (Connection, error)
	Close() error
}
