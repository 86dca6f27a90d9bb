// Package auth issues and validates machinewatch session tokens.
//
// Tokens are compact JWTs signed with HS256 and a shared secret. A codec
// without a secret produces self-asserted tokens (alg "none"). Those carry
// the same claims for display purposes but never pass Validate.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/machinewatch/internal/common"
	"github.com/dmitrijs2005/machinewatch/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

// TokenLifetime is the fixed validity window of every issued token.
const TokenLifetime = 24 * time.Hour

// DevSecret is the signing secret used when none is configured and the
// development fallback is allowed. It is public knowledge; tokens signed
// with it prove nothing.
const DevSecret = "dev-secret"

// ResolveSecret picks the signing secret. An empty configured secret falls
// back to DevSecret when allowDev is set (dev reports that) and otherwise
// resolves to no secret at all.
func ResolveSecret(configured string, allowDev bool) (secret []byte, dev bool) {
	switch {
	case configured != "":
		return []byte(configured), false
	case allowDev:
		return []byte(DevSecret), true
	default:
		return nil, false
	}
}

// Claims is the payload of a session token. The username travels in the
// registered "sub" claim.
type Claims struct {
	Role             models.Role `json:"role"`
	Name             string      `json:"name"`
	AssignedLocation string      `json:"assignedLocation,omitempty"`
	AssignedOffice   string      `json:"assignedOffice,omitempty"`
	jwt.RegisteredClaims
}

// Username returns the subject of the token.
func (c *Claims) Username() string {
	return c.Subject
}

// Expired reports whether the token is past its expiry at now. A token
// without an expiry counts as expired.
func (c *Claims) Expired(now time.Time) bool {
	if c.ExpiresAt == nil {
		return true
	}
	return !now.Before(c.ExpiresAt.Time)
}

// Codec signs and verifies tokens with one secret.
type Codec struct {
	secret []byte
	now    func() time.Time
}

// Option customises a Codec.
type Option func(*Codec)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) { c.now = now }
}

// NewCodec returns a codec bound to secret. An empty secret yields a codec
// that issues self-asserted tokens only.
func NewCodec(secret []byte, opts ...Option) *Codec {
	c := &Codec{secret: secret, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CanSign reports whether the codec holds a signing secret.
func (c *Codec) CanSign() bool {
	return len(c.secret) > 0
}

// Issue builds a token for id valid for TokenLifetime from now.
func (c *Codec) Issue(id *models.Identity) (string, error) {
	if id == nil {
		return "", errors.New("issue token: nil identity")
	}

	issuedAt := c.now().Truncate(time.Second)
	claims := Claims{
		Role:             id.Role,
		Name:             id.Name,
		AssignedLocation: id.AssignedLocation,
		AssignedOffice:   id.AssignedOffice,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.Username,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(TokenLifetime)),
		},
	}

	if !c.CanSign() {
		tok := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
		return tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := tok.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return s, nil
}

// Validate verifies the signature and expiry of raw and returns its claims.
// It fails with common.ErrTokenExpired when now is at or past the expiry
// and with common.ErrInvalidToken for every other problem.
func (c *Codec) Validate(raw string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(raw, claims, c.key,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}

// PeekClaims decodes raw without checking its signature. The result must
// only be used to decide whether a token is worth sending; it is not proof
// of anything.
func (c *Codec) PeekClaims(raw string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	return claims, nil
}

// IdentityFromClaims rebuilds the display identity carried by a token. The
// token carries no user id, so the username stands in for it.
func IdentityFromClaims(c *Claims) *models.Identity {
	return &models.Identity{
		ID:               c.Subject,
		Username:         c.Subject,
		Role:             c.Role,
		Name:             c.Name,
		AssignedLocation: c.AssignedLocation,
		AssignedOffice:   c.AssignedOffice,
	}
}

func (c *Codec) key(t *jwt.Token) (any, error) {
	if !c.CanSign() {
		return nil, errors.New("no signing secret configured")
	}
	return c.secret, nil
}
