package credentials

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"sync"

	"github.com/dmitrijs2005/machinewatch/internal/credentials/users"
	"github.com/dmitrijs2005/machinewatch/internal/dbx"
	"github.com/dmitrijs2005/machinewatch/internal/models"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// DefaultDBPort is used when no port is configured.
const DefaultDBPort = 5432

// StoreConfig holds the relational store connection parameters. Setting
// DBHost alone is what enables the store.
type StoreConfig struct {
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
}

// Enabled reports whether a store is configured.
func (c StoreConfig) Enabled() bool {
	return c.DBHost != ""
}

// DSN renders the parameters as a pgx connection URL.
func (c StoreConfig) DSN() string {
	port := c.DBPort
	if port == 0 {
		port = DefaultDBPort
	}
	u := url.URL{
		Scheme:   "postgres",
		Host:     net.JoinHostPort(c.DBHost, strconv.Itoa(port)),
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=disable",
	}
	if c.DBUser != "" {
		if c.DBPassword != "" {
			u.User = url.UserPassword(c.DBUser, c.DBPassword)
		} else {
			u.User = url.User(c.DBUser)
		}
	}
	return u.String()
}

// openDB is a seam for tests.
var openDB = func(dsn string) (*sql.DB, error) {
	return sql.Open("pgx", dsn)
}

// PostgresStore is the relational Store. The connection handle is created
// on first use and reused for the life of the store.
type PostgresStore struct {
	cfg   StoreConfig
	repos func(dbx.DBTX) users.Repository

	mu sync.Mutex
	db *sql.DB
}

// StoreOption customises a PostgresStore.
type StoreOption func(*PostgresStore)

// WithRepository overrides how the users repository is built on top of the
// connection handle.
func WithRepository(f func(dbx.DBTX) users.Repository) StoreOption {
	return func(s *PostgresStore) { s.repos = f }
}

// NewPostgresStore returns a store for cfg. Nothing is opened until the
// first lookup.
func NewPostgresStore(cfg StoreConfig, opts ...StoreOption) *PostgresStore {
	s := &PostgresStore{
		cfg: cfg,
		repos: func(db dbx.DBTX) users.Repository {
			return users.NewPostgresRepository(db)
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewStore returns a Store for cfg, or nil when cfg does not enable one.
func NewStore(cfg StoreConfig, opts ...StoreOption) Store {
	if !cfg.Enabled() {
		return nil
	}
	return NewPostgresStore(cfg, opts...)
}

// DB returns the shared connection handle, opening it if needed. A failed
// open is not cached, so the next call retries.
func (s *PostgresStore) DB() (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return s.db, nil
	}
	db, err := openDB(s.cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open user store: %w", err)
	}
	s.db = db
	return db, nil
}

func (s *PostgresStore) FindByUsername(ctx context.Context, username string) (*models.CredentialRecord, error) {
	db, err := s.DB()
	if err != nil {
		return nil, err
	}
	return s.repos(db).FindByUsername(ctx, username)
}

// Close releases the connection handle if one was opened.
func (s *PostgresStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
