package postgres

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store implements database.Store using PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new Store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

type scannable interface {
	Scan(dest ...any) error
}
