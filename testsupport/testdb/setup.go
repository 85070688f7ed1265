// Package testdb provides an empty, migrated test database.
package testdb

import (
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	tcpg "github.com/mpapenbr/accbroadcast-go/testsupport/tcpostgres"
)

// InitTestDb returns a pool to a database with empty tables.
// TESTDB_URL selects an external database instead of a container.
func InitTestDb() *pgxpool.Pool {
	var pool *pgxpool.Pool
	if os.Getenv("TESTDB_URL") != "" {
		pool = tcpg.SetupExternalTestDb()
	} else {
		pool = tcpg.SetupTestDb()
	}
	tcpg.ClearAllTables(pool)
	return pool
}
