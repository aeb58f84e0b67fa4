package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMemory(t *testing.T) *SQLiteDatabase {
	t.Helper()
	db, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSQLiteExecAndQuery(t *testing.T) {
	ctx := context.Background()
	db := openMemory(t)

	_, err := db.ExecContext(ctx, "CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT NOT NULL, score REAL, avatar BLOB)")
	require.NoError(t, err)

	res, err := db.ExecContext(ctx, "INSERT INTO users (name, score, avatar) VALUES ('ann', 1.5, X'0102')")
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
	n, err := res.RowsAffected()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = db.ExecContext(ctx, "INSERT INTO users (name) VALUES (?)", "bob")
	require.NoError(t, err)

	rows, err := db.QueryContext(ctx, "SELECT id, name, score, avatar FROM users ORDER BY id")
	require.NoError(t, err)
	defer rows.Close()

	cols, err := rows.Columns()
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name", "score", "avatar"}, cols)

	type user struct {
		id     int64
		name   string
		score  float64
		avatar []byte
	}
	var got []user
	for rows.Next() {
		var u user
		require.NoError(t, rows.Scan(&u.id, &u.name, &u.score, &u.avatar))
		got = append(got, u)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []user{
		{id: 1, name: "ann", score: 1.5, avatar: []byte{1, 2}},
		{id: 2, name: "bob"},
	}, got)

	assert.NoError(t, rows.Close())
	assert.NoError(t, rows.Close())
	assert.False(t, rows.Next())
}

func TestSQLiteScanArity(t *testing.T) {
	db := openMemory(t)
	rows, err := db.QueryContext(context.Background(), "SELECT 1, 2")
	require.NoError(t, err)
	defer rows.Close()

	require.True(t, rows.Next())
	var a int64
	assert.Error(t, rows.Scan(&a))
}

func TestSQLiteQueryError(t *testing.T) {
	db := openMemory(t)
	_, err := db.QueryContext(context.Background(), "SELECT * FROM missing")
	assert.Error(t, err)
	assert.NoError(t, db.PingContext(context.Background()))
}
