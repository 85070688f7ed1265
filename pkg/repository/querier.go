// Package repository holds the persistence of recording sessions and laps.
package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is implemented by connections, pools and transactions
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TxStarter is implemented by pools and connections
type TxStarter interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

var (
	_ Querier   = (*pgx.Conn)(nil)
	_ Querier   = (*pgxpool.Pool)(nil)
	_ Querier   = pgx.Tx(nil)
	_ TxStarter = (*pgxpool.Pool)(nil)
)
