// Package credentials answers "who is this user and is this their password"
// over two sources: the relational user store, when one is configured, and
// the built-in fallback list.
package credentials

import (
	"context"
	"crypto/subtle"
	"errors"

	"github.com/dmitrijs2005/machinewatch/internal/common"
	"github.com/dmitrijs2005/machinewatch/internal/logging"
	"github.com/dmitrijs2005/machinewatch/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// Source tells where a lookup result came from.
type Source int

const (
	NotFound Source = iota
	FromStore
	FromFallback
)

func (s Source) String() string {
	switch s {
	case FromStore:
		return "store"
	case FromFallback:
		return "fallback"
	default:
		return "not_found"
	}
}

// LookupResult is the outcome of a lookup. Record is nil iff Source is
// NotFound.
type LookupResult struct {
	Source Source
	Record *models.CredentialRecord
}

// Found reports whether a record was located.
func (r LookupResult) Found() bool {
	return r.Source != NotFound && r.Record != nil
}

// Store is a persistent credential source.
type Store interface {
	// FindByUsername returns common.ErrorNotFound on a miss. Any other error
	// means the store could not answer.
	FindByUsername(ctx context.Context, username string) (*models.CredentialRecord, error)
}

// Adapter resolves usernames against the store first and the fallback list
// second. A store record shadows a fallback record with the same username.
// The adapter keeps no per-call state.
type Adapter struct {
	store    Store
	fallback map[string]models.CredentialRecord
	logger   logging.Logger
}

// NewAdapter builds an adapter. A nil store disables the store path.
func NewAdapter(store Store, fallback []models.CredentialRecord, logger logging.Logger) *Adapter {
	if logger == nil {
		logger = logging.Nop{}
	}
	byName := make(map[string]models.CredentialRecord, len(fallback))
	for _, rec := range fallback {
		if _, dup := byName[rec.Username]; !dup {
			byName[rec.Username] = rec
		}
	}
	return &Adapter{store: store, fallback: byName, logger: logger.With("module", "credentials")}
}

// StoreEnabled reports whether lookups consult the relational store.
func (a *Adapter) StoreEnabled() bool {
	return a.store != nil
}

// Lookup finds username in the store, falling back to the fixed list when
// the store is disabled, misses, or fails. Store failures are logged, not
// returned.
func (a *Adapter) Lookup(ctx context.Context, username string) LookupResult {
	if a.store != nil {
		rec, err := a.store.FindByUsername(ctx, username)
		switch {
		case err == nil && rec != nil:
			return LookupResult{Source: FromStore, Record: rec}
		case err == nil, errors.Is(err, common.ErrorNotFound):
			a.logger.Debug(ctx, "user not in store, trying fallback", "username", username)
		default:
			a.logger.Warn(ctx, "credential store lookup failed, trying fallback", "username", username, "error", err)
		}
	}
	return a.LookupFallback(username)
}

// LookupFallback consults only the fallback list.
func (a *Adapter) LookupFallback(username string) LookupResult {
	rec, ok := a.fallback[username]
	if !ok {
		return LookupResult{Source: NotFound}
	}
	return LookupResult{Source: FromFallback, Record: &rec}
}

// Verify checks candidate against the record in r. Hash comparison errors
// and store rows with an unsupported role count as a mismatch.
func (a *Adapter) Verify(candidate string, r LookupResult) bool {
	if !r.Found() {
		return false
	}
	switch r.Source {
	case FromStore:
		if r.Record.PasswordHash == "" || !r.Record.Role.Valid() {
			return false
		}
		return bcrypt.CompareHashAndPassword([]byte(r.Record.PasswordHash), []byte(candidate)) == nil
	case FromFallback:
		if r.Record.RawPassword == "" {
			return false
		}
		return subtle.ConstantTimeCompare([]byte(r.Record.RawPassword), []byte(candidate)) == 1
	default:
		return false
	}
}

// Authenticate runs Lookup and Verify. On success it returns the matching
// record and its source.
func (a *Adapter) Authenticate(ctx context.Context, username, password string) (*models.CredentialRecord, Source, bool) {
	r := a.Lookup(ctx, username)
	if !a.Verify(password, r) {
		return nil, NotFound, false
	}
	return r.Record, r.Source, true
}

// AuthenticateFallback is Authenticate restricted to the fallback list.
func (a *Adapter) AuthenticateFallback(username, password string) (*models.CredentialRecord, bool) {
	r := a.LookupFallback(username)
	if !a.Verify(password, r) {
		return nil, false
	}
	return r.Record, true
}

// HashPassword produces a bcrypt hash suitable for the password_hash column.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}
