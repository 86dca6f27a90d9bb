// Package session persists the signed-in identity and its token on the
// client so a restart can resume the session.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/machinewatch/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/machinewatch/internal/dbx"
	"github.com/dmitrijs2005/machinewatch/internal/logging"
	"github.com/dmitrijs2005/machinewatch/internal/models"
)

// Storage keys. Both are written and removed together.
const (
	KeyUser  = "auth_user"
	KeyToken = "auth_token"
)

// Persisted is a stored session.
type Persisted struct {
	Identity *models.Identity
	Token    string
	SavedAt  time.Time
}

// DB is what the store needs from the database handle. *sql.DB satisfies it.
type DB interface {
	dbx.DBTX
	dbx.Beginner
}

type Store struct {
	db      DB
	newRepo func(dbx.DBTX) metadata.Repository
	logger  logging.Logger
}

type Option func(*Store)

// WithRepository overrides how the key/value repository is built for a
// handle.
func WithRepository(f func(dbx.DBTX) metadata.Repository) Option {
	return func(s *Store) { s.newRepo = f }
}

func NewStore(db DB, logger logging.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = logging.Nop{}
	}
	s := &Store{
		db: db,
		newRepo: func(h dbx.DBTX) metadata.Repository {
			return metadata.NewSQLiteRepository(h)
		},
		logger: logger.With("module", "session"),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Save writes identity and token atomically.
func (s *Store) Save(ctx context.Context, id *models.Identity, token string) error {
	if id == nil || token == "" {
		return errors.New("save session: identity and token are required")
	}

	user, err := json.Marshal(id)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.newRepo(tx)
		if err := repo.Set(ctx, KeyUser, user); err != nil {
			return fmt.Errorf("save session: %w", err)
		}
		if err := repo.Set(ctx, KeyToken, []byte(token)); err != nil {
			return fmt.Errorf("save session: %w", err)
		}
		return nil
	})
}

// Load returns the stored session, or nil, nil when there is none. A
// half-written or unreadable record counts as none.
func (s *Store) Load(ctx context.Context) (*Persisted, error) {
	repo := s.newRepo(s.db)

	user, err := repo.GetEntry(ctx, KeyUser)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	token, err := repo.Get(ctx, KeyToken)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if user == nil || len(token) == 0 {
		return nil, nil
	}

	var id models.Identity
	if err := json.Unmarshal(user.Value, &id); err != nil || id.Username == "" {
		s.logger.Warn(ctx, "stored identity is unreadable, ignoring", "error", err)
		return nil, nil
	}

	return &Persisted{Identity: &id, Token: string(token), SavedAt: user.UpdatedAt}, nil
}

// Clear removes the stored session. Clearing an empty store is a no-op.
func (s *Store) Clear(ctx context.Context) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.newRepo(tx).Delete(ctx, KeyUser, KeyToken); err != nil {
			return fmt.Errorf("clear session: %w", err)
		}
		return nil
	})
}

// Token returns the stored raw token, "" when absent.
func (s *Store) Token(ctx context.Context) (string, error) {
	b, err := s.newRepo(s.db).Get(ctx, KeyToken)
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	return string(b), nil
}
