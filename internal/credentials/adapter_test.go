package credentials

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/machinewatch/internal/common"
	"github.com/dmitrijs2005/machinewatch/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeStore struct {
	rec   *models.CredentialRecord
	err   error
	calls int
}

func (f *fakeStore) FindByUsername(_ context.Context, username string) (*models.CredentialRecord, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.rec == nil || f.rec.Username != username {
		return nil, common.ErrorNotFound
	}
	r := *f.rec
	return &r, nil
}

func mustHash(t *testing.T, pw string) string {
	t.Helper()
	// MinCost keeps the tests fast; the production path uses DefaultCost.
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestLookup_StoreDisabledUsesFallback(t *testing.T) {
	a := NewAdapter(nil, FallbackUsers(), nil)
	assert.False(t, a.StoreEnabled())

	r := a.Lookup(context.Background(), "admin")
	require.True(t, r.Found())
	assert.Equal(t, FromFallback, r.Source)
	assert.Equal(t, models.RoleAdmin, r.Record.Role)

	assert.True(t, a.Verify("admin123", r))
	assert.False(t, a.Verify("wrong", r))
}

func TestLookup_StoreShadowsFallback(t *testing.T) {
	store := &fakeStore{rec: &models.CredentialRecord{
		ID: "db-7", Username: "admin", Role: models.RoleAdmin, Name: "DB Admin",
		PasswordHash: mustHash(t, "s3cret"),
	}}
	a := NewAdapter(store, FallbackUsers(), nil)

	r := a.Lookup(context.Background(), "admin")
	require.True(t, r.Found())
	assert.Equal(t, FromStore, r.Source)
	assert.Equal(t, "db-7", r.Record.ID)

	assert.True(t, a.Verify("s3cret", r))
	// The shadowed fallback password does not work.
	assert.False(t, a.Verify("admin123", r))
}

func TestLookup_StoreMissFallsThrough(t *testing.T) {
	store := &fakeStore{}
	a := NewAdapter(store, FallbackUsers(), nil)

	r := a.Lookup(context.Background(), "rahul")
	assert.Equal(t, FromFallback, r.Source)
	assert.Equal(t, 1, store.calls)
}

func TestLookup_StoreErrorFallsThrough(t *testing.T) {
	store := &fakeStore{err: errors.New("connection refused")}
	a := NewAdapter(store, FallbackUsers(), nil)

	r := a.Lookup(context.Background(), "ashutosh")
	require.True(t, r.Found())
	assert.Equal(t, FromFallback, r.Source)
	assert.Equal(t, "Pune", r.Record.AssignedLocation)
}

func TestLookup_NotFoundAnywhere(t *testing.T) {
	a := NewAdapter(&fakeStore{}, FallbackUsers(), nil)

	r := a.Lookup(context.Background(), "nobody")
	assert.Equal(t, NotFound, r.Source)
	assert.Nil(t, r.Record)
	assert.False(t, a.Verify("anything", r))
}

func TestLookup_CaseSensitive(t *testing.T) {
	a := NewAdapter(nil, FallbackUsers(), nil)
	assert.Equal(t, NotFound, a.Lookup(context.Background(), "Admin").Source)
}

func TestLookupFallback_IgnoresStore(t *testing.T) {
	store := &fakeStore{rec: &models.CredentialRecord{Username: "admin", PasswordHash: mustHash(t, "x")}}
	a := NewAdapter(store, FallbackUsers(), nil)

	r := a.LookupFallback("admin")
	assert.Equal(t, FromFallback, r.Source)
	assert.Zero(t, store.calls)
}

func TestVerify_BadHashIsMismatch(t *testing.T) {
	a := NewAdapter(nil, nil, nil)
	r := LookupResult{Source: FromStore, Record: &models.CredentialRecord{Username: "u", PasswordHash: "not-a-bcrypt-hash"}}
	assert.False(t, a.Verify("whatever", r))

	r.Record.PasswordHash = ""
	assert.False(t, a.Verify("", r))
}

func TestVerify_StoreRecordWithUnsupportedRole(t *testing.T) {
	a := NewAdapter(nil, nil, nil)
	h := mustHash(t, "s3cret")

	for _, role := range []models.Role{"", "superuser", "Admin"} {
		r := LookupResult{Source: FromStore, Record: &models.CredentialRecord{Username: "u", Role: role, PasswordHash: h}}
		assert.False(t, a.Verify("s3cret", r), "role %q", role)
	}

	r := LookupResult{Source: FromStore, Record: &models.CredentialRecord{Username: "u", Role: models.RoleAdmin, PasswordHash: h}}
	assert.True(t, a.Verify("s3cret", r))
}

func TestVerify_EmptyFallbackPasswordNeverMatches(t *testing.T) {
	a := NewAdapter(nil, nil, nil)
	r := LookupResult{Source: FromFallback, Record: &models.CredentialRecord{Username: "u"}}
	assert.False(t, a.Verify("", r))
}

func TestAuthenticate(t *testing.T) {
	a := NewAdapter(nil, FallbackUsers(), nil)

	rec, src, ok := a.Authenticate(context.Background(), "rahul", "rahul123")
	require.True(t, ok)
	assert.Equal(t, FromFallback, src)
	assert.Equal(t, "Rahul Verma", rec.Name)

	_, src, ok = a.Authenticate(context.Background(), "rahul", "nope")
	assert.False(t, ok)
	assert.Equal(t, NotFound, src)
}

func TestAuthenticateFallback(t *testing.T) {
	a := NewAdapter(nil, FallbackUsers(), nil)

	rec, ok := a.AuthenticateFallback("ashutosh", "cdc123")
	require.True(t, ok)
	assert.Equal(t, "t1", rec.ID)

	_, ok = a.AuthenticateFallback("ashutosh", "cdc1234")
	assert.False(t, ok)
}

func TestNewAdapter_FirstDuplicateWins(t *testing.T) {
	a := NewAdapter(nil, []models.CredentialRecord{
		{ID: "1", Username: "dup", RawPassword: "a"},
		{ID: "2", Username: "dup", RawPassword: "b"},
	}, nil)

	r := a.LookupFallback("dup")
	assert.Equal(t, "1", r.Record.ID)
}

func TestLookupFallback_ReturnsCopy(t *testing.T) {
	a := NewAdapter(nil, FallbackUsers(), nil)
	r := a.LookupFallback("admin")
	r.Record.Name = "mutated"

	assert.Equal(t, "Admin User", a.LookupFallback("admin").Record.Name)
}

func TestHashPassword(t *testing.T) {
	h, err := HashPassword("cdc123")
	require.NoError(t, err)

	a := NewAdapter(nil, nil, nil)
	r := LookupResult{Source: FromStore, Record: &models.CredentialRecord{Username: "u", Role: models.RoleTechnician, PasswordHash: h}}
	assert.True(t, a.Verify("cdc123", r))

	cost, err := bcrypt.Cost([]byte(h))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}

func TestSource_String(t *testing.T) {
	assert.Equal(t, "store", FromStore.String())
	assert.Equal(t, "fallback", FromFallback.String())
	assert.Equal(t, "not_found", NotFound.String())
}
