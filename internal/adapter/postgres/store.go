package postgres

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/NeuroForge1/Genia-fronted-sub001/internal/port/accounts"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/port/taskstore"
)

// Store implements taskstore.Store and accounts.Store using PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

var (
	_ taskstore.Store = (*Store)(nil)
	_ accounts.Store  = (*Store)(nil)
)

// NewStore creates a new Store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}
