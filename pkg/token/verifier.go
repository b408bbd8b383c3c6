package token

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	gateerrors "github.com/tendant/devicegate/pkg/errors"
)

const bearerScheme = "bearer"

// Verifier validates a raw session token and returns its claims
type Verifier interface {
	Verify(rawToken string) (*Claims, error)
}

// JWTVerifier implements Verifier for HMAC signed JWTs
type JWTVerifier struct {
	key      []byte
	issuer   string
	audience string
	leeway   time.Duration
	parser   *jwt.Parser
}

// Option configures a JWTVerifier
type Option func(*JWTVerifier)

// WithIssuer requires the "iss" claim to match
func WithIssuer(issuer string) Option {
	return func(v *JWTVerifier) {
		v.issuer = issuer
	}
}

// WithAudience requires the "aud" claim to contain audience
func WithAudience(audience string) Option {
	return func(v *JWTVerifier) {
		v.audience = audience
	}
}

// WithLeeway tolerates clock skew when checking exp, nbf and iat
func WithLeeway(leeway time.Duration) Option {
	return func(v *JWTVerifier) {
		v.leeway = leeway
	}
}

// NewJWTVerifier creates a verifier bound to the given verification key
func NewJWTVerifier(key []byte, opts ...Option) *JWTVerifier {
	v := &JWTVerifier{key: key}
	for _, opt := range opts {
		opt(v)
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{
			jwt.SigningMethodHS256.Alg(),
			jwt.SigningMethodHS384.Alg(),
			jwt.SigningMethodHS512.Alg(),
		}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		parserOpts = append(parserOpts, jwt.WithAudience(v.audience))
	}
	if v.leeway > 0 {
		parserOpts = append(parserOpts, jwt.WithLeeway(v.leeway))
	}
	v.parser = jwt.NewParser(parserOpts...)

	return v
}

// Verify checks signature and expiry of rawToken. rawToken may still carry
// the "Bearer" scheme prefix. Any failure returns no claims.
func (v *JWTVerifier) Verify(rawToken string) (*Claims, error) {
	tokenStr := StripBearer(rawToken)
	if tokenStr == "" {
		return nil, gateerrors.TokenMissing()
	}

	claims := new(Claims)
	token, err := v.parser.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return v.key, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			slog.Debug("Token expired", "err", err)
			return nil, gateerrors.Wrap(err, gateerrors.ErrCodeTokenExpired, "token expired")
		}
		slog.Debug("Token rejected", "err", err)
		return nil, gateerrors.Wrap(err, gateerrors.ErrCodeTokenInvalid, "invalid token")
	}
	if !token.Valid {
		return nil, gateerrors.New(gateerrors.ErrCodeTokenInvalid, "invalid token")
	}

	if claims.SubjectID() == "" {
		return nil, gateerrors.New(gateerrors.ErrCodeTokenInvalid, "token has no subject")
	}

	return claims, nil
}

// StripBearer removes an optional, case-insensitive "Bearer" scheme and the
// whitespace that follows it.
func StripBearer(value string) string {
	value = strings.TrimSpace(value)
	if strings.EqualFold(value, bearerScheme) {
		return ""
	}
	if len(value) > len(bearerScheme) && strings.EqualFold(value[:len(bearerScheme)], bearerScheme) {
		switch value[len(bearerScheme)] {
		case ' ', '\t':
			return strings.TrimSpace(value[len(bearerScheme):])
		}
	}
	return value
}
