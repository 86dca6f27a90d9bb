// Package services contains application services for the machinewatch
// client. AuthService owns the signed-in state: it routes credential checks
// to the backend or to local sources, persists the session, and ties the
// telemetry channel to the session lifecycle.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/machinewatch/internal/auth"
	"github.com/dmitrijs2005/machinewatch/internal/client/client"
	"github.com/dmitrijs2005/machinewatch/internal/client/session"
	"github.com/dmitrijs2005/machinewatch/internal/client/telemetry"
	"github.com/dmitrijs2005/machinewatch/internal/common"
	"github.com/dmitrijs2005/machinewatch/internal/credentials"
	"github.com/dmitrijs2005/machinewatch/internal/logging"
	"github.com/dmitrijs2005/machinewatch/internal/models"
)

const (
	DefaultRemoteTimeout  = 5 * time.Second
	DefaultTelemetryGrace = 2 * time.Second
)

type State int

const (
	Unauthenticated State = iota
	Authenticating
	Authenticated
	LoggingOut
)

func (s State) String() string {
	switch s {
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	case LoggingOut:
		return "logging_out"
	default:
		return "unauthenticated"
	}
}

// CredentialVerifier checks passwords against local credential sources.
type CredentialVerifier interface {
	Authenticate(ctx context.Context, username, password string) (*models.CredentialRecord, credentials.Source, bool)
	AuthenticateFallback(username, password string) (*models.CredentialRecord, bool)
}

type TokenCodec interface {
	Issue(id *models.Identity) (string, error)
	Validate(raw string) (*auth.Claims, error)
	PeekClaims(raw string) (*auth.Claims, error)
}

type SessionStore interface {
	Save(ctx context.Context, id *models.Identity, token string) error
	Load(ctx context.Context) (*session.Persisted, error)
	Clear(ctx context.Context) error
	Token(ctx context.Context) (string, error)
}

// Telemetry is the channel lifecycle the service drives.
type Telemetry interface {
	Start(token string) <-chan bool
	Disconnect() error
	State() telemetry.State
	LastError() error
}

// SystemStatus is a point-in-time view of the session for display.
type SystemStatus struct {
	State      State
	Identity   *models.Identity
	Telemetry  telemetry.State
	Degraded   bool
	Restricted bool
	// TelemetryErr is the last channel failure while Degraded.
	TelemetryErr error
}

type AuthService struct {
	remote    client.Client
	creds     CredentialVerifier
	codec     TokenCodec
	session   SessionStore
	telemetry Telemetry
	logger    logging.Logger

	restricted     bool
	remoteTimeout  time.Duration
	telemetryGrace time.Duration
	now            func() time.Time

	restoreOnce sync.Once

	mu       sync.Mutex
	state    State
	identity *models.Identity
}

type Option func(*AuthService)

// WithRestricted switches the service to fallback-only verification with no
// backend calls.
func WithRestricted(restricted bool) Option {
	return func(s *AuthService) { s.restricted = restricted }
}

func WithRemoteTimeout(d time.Duration) Option {
	return func(s *AuthService) {
		if d > 0 {
			s.remoteTimeout = d
		}
	}
}

func WithTelemetryGrace(d time.Duration) Option {
	return func(s *AuthService) {
		if d > 0 {
			s.telemetryGrace = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *AuthService) { s.now = now }
}

// NewAuthService wires the service. remote may be nil, which behaves like a
// backend that is always unavailable.
func NewAuthService(remote client.Client, creds CredentialVerifier, codec TokenCodec, store SessionStore, tel Telemetry, logger logging.Logger, opts ...Option) *AuthService {
	if logger == nil {
		logger = logging.Nop{}
	}
	s := &AuthService{
		remote:         remote,
		creds:          creds,
		codec:          codec,
		session:        store,
		telemetry:      tel,
		logger:         logger.With("module", "auth_service"),
		remoteTimeout:  DefaultRemoteTimeout,
		telemetryGrace: DefaultTelemetryGrace,
		now:            time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Restore resumes a persisted session. Only the first call in the life of
// the service does anything.
func (s *AuthService) Restore(ctx context.Context) {
	s.restoreOnce.Do(func() {
		s.mu.Lock()
		token := s.restoreLocked(ctx)
		s.mu.Unlock()

		if token != "" {
			s.waitTelemetry(ctx, token)
		}
	})
}

// restoreLocked returns the restored token, or "" when nothing was restored.
func (s *AuthService) restoreLocked(ctx context.Context) string {
	p, err := s.session.Load(ctx)
	if err != nil {
		s.logger.Warn(ctx, "cannot read stored session", "error", err)
		return ""
	}
	if p == nil {
		s.clearLocked(ctx)
		return ""
	}

	if !s.tokenValid(ctx, p.Token) {
		s.logger.Info(ctx, "stored session is no longer valid, cleared", "username", p.Identity.Username)
		s.clearLocked(ctx)
		return ""
	}

	s.identity = p.Identity
	s.state = Authenticated
	s.logger.Info(ctx, "session restored", "username", p.Identity.Username, "role", p.Identity.Role)
	return p.Token
}

// tokenValid checks a stored token locally and, when the local secret cannot
// vouch for it, asks the backend.
func (s *AuthService) tokenValid(ctx context.Context, token string) bool {
	claims, err := s.codec.PeekClaims(token)
	if err != nil || claims.Expired(s.now()) {
		return false
	}

	_, err = s.codec.Validate(token)
	switch {
	case err == nil:
		return true
	case errors.Is(err, common.ErrTokenExpired):
		return false
	case s.restricted || s.remote == nil:
		return false
	}

	rctx, cancel := context.WithTimeout(ctx, s.remoteTimeout)
	defer cancel()
	if _, err := s.remote.VerifySession(rctx, token); err != nil {
		s.logger.Debug(ctx, "backend did not confirm stored session", "error", err)
		return false
	}
	return true
}

func (s *AuthService) clearLocked(ctx context.Context) {
	if err := s.session.Clear(ctx); err != nil {
		s.logger.Warn(ctx, "cannot clear stored session", "error", err)
	}
}

// Login signs the user in. It returns nil or common.ErrInvalidCredentials;
// backend, storage and telemetry problems are logged, never returned.
func (s *AuthService) Login(ctx context.Context, username, password string) error {
	s.mu.Lock()
	prev := s.state
	s.state = Authenticating

	id, token, ok := s.authenticate(ctx, username, password)
	if !ok {
		s.state = prev
		s.mu.Unlock()
		s.logger.Info(ctx, "login rejected", "username", username)
		return common.ErrInvalidCredentials
	}

	if err := s.session.Save(ctx, id, token); err != nil {
		s.state = prev
		s.mu.Unlock()
		s.logger.Error(ctx, "cannot persist session", "username", username, "error", err)
		return common.ErrInvalidCredentials
	}

	s.identity = id
	s.state = Authenticated
	s.mu.Unlock()

	s.logger.Info(ctx, "login succeeded", "username", id.Username, "role", id.Role)
	s.waitTelemetry(ctx, token)
	return nil
}

func (s *AuthService) authenticate(ctx context.Context, username, password string) (*models.Identity, string, bool) {
	if s.restricted {
		rec, ok := s.creds.AuthenticateFallback(username, password)
		if !ok {
			return nil, "", false
		}
		return s.issueLocal(ctx, rec, credentials.FromFallback)
	}

	if s.remote != nil {
		rctx, cancel := context.WithTimeout(ctx, s.remoteTimeout)
		resp, err := s.remote.Login(rctx, username, password)
		cancel()
		switch {
		case err == nil && resp != nil && resp.Username != "" && resp.Role.Valid():
			return resp.Identity(), resp.AccessToken, true
		case err == nil:
			s.logger.Warn(ctx, "malformed sign-in response, verifying locally", "username", username)
		case errors.Is(err, common.ErrBackendUnavailable):
			s.logger.Debug(ctx, "backend unavailable, verifying locally", "error", err)
		default:
			s.logger.Debug(ctx, "backend rejected login, verifying locally", "error", err)
		}
	}

	rec, source, ok := s.creds.Authenticate(ctx, username, password)
	if !ok {
		return nil, "", false
	}
	return s.issueLocal(ctx, rec, source)
}

func (s *AuthService) issueLocal(ctx context.Context, rec *models.CredentialRecord, source credentials.Source) (*models.Identity, string, bool) {
	id := rec.Identity()
	token, err := s.codec.Issue(id)
	if err != nil {
		s.logger.Error(ctx, "cannot issue local token", "username", id.Username, "error", err)
		return nil, "", false
	}
	s.logger.Debug(ctx, "verified locally", "username", id.Username, "source", source.String())
	return id, token, true
}

// waitTelemetry starts the channel and waits up to the grace period for it.
func (s *AuthService) waitTelemetry(ctx context.Context, token string) {
	res := s.telemetry.Start(token)

	t := time.NewTimer(s.telemetryGrace)
	defer t.Stop()

	select {
	case ok := <-res:
		if !ok {
			s.logger.Warn(ctx, "telemetry unavailable", "error", s.telemetry.LastError())
		}
	case <-t.C:
		s.logger.Info(ctx, "telemetry still connecting")
	case <-ctx.Done():
	}
}

// Logout ends the session. It always completes: the backend notice is best
// effort and a stuck telemetry channel is abandoned after the grace period.
func (s *AuthService) Logout(ctx context.Context) {
	s.mu.Lock()
	s.state = LoggingOut

	token, err := s.session.Token(ctx)
	if err != nil {
		s.logger.Warn(ctx, "cannot read stored token", "error", err)
	}
	if !s.restricted && s.remote != nil && token != "" {
		rctx, cancel := context.WithTimeout(ctx, s.remoteTimeout)
		if err := s.remote.Logout(rctx, token); err != nil {
			s.logger.Warn(ctx, "backend logout failed", "error", err)
		}
		cancel()
	}

	s.clearLocked(ctx)
	username := ""
	if s.identity != nil {
		username = s.identity.Username
	}
	s.identity = nil
	s.mu.Unlock()

	s.disconnectTelemetry(ctx)

	s.mu.Lock()
	if s.state == LoggingOut {
		s.state = Unauthenticated
	}
	s.mu.Unlock()

	s.logger.Info(ctx, "logged out", "username", username)
}

func (s *AuthService) disconnectTelemetry(ctx context.Context) {
	done := make(chan error, 1)
	go func() { done <- s.telemetry.Disconnect() }()

	t := time.NewTimer(s.telemetryGrace)
	defer t.Stop()

	select {
	case err := <-done:
		if err != nil {
			s.logger.Warn(ctx, "telemetry disconnect failed", "error", err)
		}
	case <-t.C:
		s.logger.Warn(ctx, "telemetry disconnect timed out")
	}
}

// IsAuthenticated reports whether there is a signed-in identity backed by a
// stored token.
func (s *AuthService) IsAuthenticated(ctx context.Context) bool {
	s.mu.Lock()
	hasIdentity := s.identity != nil
	s.mu.Unlock()
	if !hasIdentity {
		return false
	}

	token, err := s.session.Token(ctx)
	return err == nil && token != ""
}

// CheckSession signs the user out when the stored token has expired. It
// reports whether a session is still active.
func (s *AuthService) CheckSession(ctx context.Context) bool {
	if !s.IsAuthenticated(ctx) {
		return false
	}

	token, err := s.session.Token(ctx)
	if err != nil {
		return true
	}
	claims, err := s.codec.PeekClaims(token)
	if err == nil && !claims.Expired(s.now()) {
		return true
	}

	s.logger.Info(ctx, "session expired")
	s.Logout(ctx)
	return false
}

// StartSessionWatcher runs CheckSession every interval until ctx is done.
func (s *AuthService) StartSessionWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.CheckSession(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (s *AuthService) CurrentUser() *models.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return nil
	}
	id := *s.identity
	return &id
}

func (s *AuthService) Status(ctx context.Context) SystemStatus {
	st := SystemStatus{
		Identity:   s.CurrentUser(),
		Telemetry:  s.telemetry.State(),
		Restricted: s.restricted,
	}

	s.mu.Lock()
	st.State = s.state
	s.mu.Unlock()

	if st.State == Authenticated && st.Telemetry != telemetry.Connected {
		if err := s.telemetry.LastError(); err != nil {
			st.Degraded = true
			st.TelemetryErr = err
		}
	}
	return st
}

// Close releases the backend client and the telemetry channel.
func (s *AuthService) Close(ctx context.Context) error {
	var errs []error
	if err := s.telemetry.Disconnect(); err != nil {
		errs = append(errs, err)
	}
	if s.remote != nil {
		if err := s.remote.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close backend client: %w", err))
		}
	}
	return errors.Join(errs...)
}
