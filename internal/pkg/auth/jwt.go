package auth

import (
	"context"
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rsa"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/singleflight"

	"github.com/edvios/backend/internal/pkg/apperrors"
	"github.com/edvios/backend/internal/pkg/logger"
)

// JWT errors
var (
	ErrInvalidFormat = errors.New("invalid token format")
	ErrUnknownKey    = errors.New("unknown signing key")
)

// minRefetchInterval bounds JWKS fetches triggered by unknown key ids
const minRefetchInterval = 30 * time.Second

// VerifierConfig defines token verification settings
type VerifierConfig struct {
	// JWKSURL is the identity provider's published key set; empty disables asymmetric tokens
	JWKSURL string
	// Secret verifies HS256 tokens; empty disables them
	Secret string
	// Refresh is how long a fetched key set is trusted
	Refresh time.Duration
	Timeout time.Duration
}

// Claims is the subset of the identity provider's access token the backend reads
type Claims struct {
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
	jwt.RegisteredClaims
}

// UserID is the identity provider subject
func (c *Claims) UserID() string {
	return c.Subject
}

// MetadataRole is the role cached in user metadata. It may be stale and must not be used for authorization.
func (c *Claims) MetadataRole() string {
	role, _ := c.UserMetadata["role"].(string)
	return role
}

// TokenVerifier validates access tokens issued by the identity provider
type TokenVerifier struct {
	config VerifierConfig
	client *resty.Client
	group  singleflight.Group

	mu        sync.RWMutex
	keys      map[string]crypto.PublicKey
	fetchedAt time.Time
}

// NewTokenVerifier creates a new TokenVerifier
func NewTokenVerifier(config VerifierConfig) *TokenVerifier {
	if config.Refresh <= 0 {
		config.Refresh = time.Hour
	}
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	return &TokenVerifier{
		config: config,
		client: resty.New().SetTimeout(config.Timeout),
		keys:   map[string]crypto.PublicKey{},
	}
}

// ValidateToken parses and verifies a token string
func (v *TokenVerifier) ValidateToken(ctx context.Context, tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, apperrors.ErrTokenNotFound
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return v.keyFor(ctx, token)
	},
		jwt.WithValidMethods([]string{"ES256", "RS256", "HS256"}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(5*time.Second),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.ErrTokenExpired
		}
		logger.Debug().Err(err).Msg("Token rejected")
		return nil, fmt.Errorf("%w: %v", apperrors.ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, apperrors.ErrTokenInvalid
	}
	return claims, nil
}

func (v *TokenVerifier) keyFor(ctx context.Context, token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); ok {
		if v.config.Secret == "" {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(v.config.Secret), nil
	}

	if v.config.JWKSURL == "" {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	kid, _ := token.Header["kid"].(string)
	return v.publicKey(ctx, kid)
}

func (v *TokenVerifier) publicKey(ctx context.Context, kid string) (crypto.PublicKey, error) {
	v.mu.RLock()
	key, ok := v.keys[kid]
	fresh := time.Since(v.fetchedAt) < v.config.Refresh
	recent := time.Since(v.fetchedAt) < minRefetchInterval
	v.mu.RUnlock()

	if ok && fresh {
		return key, nil
	}
	// an unknown kid may be a rotated key, but do not let bad tokens hammer the endpoint
	if !ok && recent {
		return nil, ErrUnknownKey
	}

	if _, err, _ := v.group.Do("jwks", func() (interface{}, error) {
		return nil, v.refresh(ctx)
	}); err != nil {
		if ok {
			logger.Warn().Err(err).Msg("JWKS refresh failed, using cached key")
			return key, nil
		}
		return nil, err
	}

	v.mu.RLock()
	defer v.mu.RUnlock()
	if key, ok := v.keys[kid]; ok {
		return key, nil
	}
	return nil, ErrUnknownKey
}

type jwk struct {
	Kid string `json:"kid"`
	Kty string `json:"kty"`
	Crv string `json:"crv"`
	X   string `json:"x"`
	Y   string `json:"y"`
	N   string `json:"n"`
	E   string `json:"e"`
}

type jwks struct {
	Keys []jwk `json:"keys"`
}

func (v *TokenVerifier) refresh(ctx context.Context) error {
	var set jwks
	resp, err := v.client.R().SetContext(ctx).SetResult(&set).Get(v.config.JWKSURL)
	if err != nil {
		return fmt.Errorf("failed to fetch JWKS: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("failed to fetch JWKS: status %d", resp.StatusCode())
	}

	keys := make(map[string]crypto.PublicKey, len(set.Keys))
	for _, k := range set.Keys {
		key, err := k.publicKey()
		if err != nil {
			logger.Warn().Err(err).Str("kid", k.Kid).Msg("Skipping unusable JWK")
			continue
		}
		keys[k.Kid] = key
	}

	v.mu.Lock()
	v.keys = keys
	v.fetchedAt = time.Now()
	v.mu.Unlock()

	logger.Debug().Int("keys", len(keys)).Msg("JWKS refreshed")
	return nil
}

func (k jwk) publicKey() (crypto.PublicKey, error) {
	switch k.Kty {
	case "EC":
		if k.Crv != "P-256" {
			return nil, fmt.Errorf("unsupported curve %q", k.Crv)
		}
		x, err := decodeBigInt(k.X)
		if err != nil {
			return nil, err
		}
		y, err := decodeBigInt(k.Y)
		if err != nil {
			return nil, err
		}
		key := &ecdsa.PublicKey{Curve: elliptic.P256(), X: x, Y: y}
		if !key.Curve.IsOnCurve(x, y) {
			return nil, errors.New("point is not on curve")
		}
		return key, nil
	case "RSA":
		n, err := decodeBigInt(k.N)
		if err != nil {
			return nil, err
		}
		e, err := decodeBigInt(k.E)
		if err != nil {
			return nil, err
		}
		return &rsa.PublicKey{N: n, E: int(e.Int64())}, nil
	}
	return nil, fmt.Errorf("unsupported key type %q", k.Kty)
}

func decodeBigInt(s string) (*big.Int, error) {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid JWK coordinate: %w", err)
	}
	return new(big.Int).SetBytes(b), nil
}

// ExtractBearerToken extracts the token from the Authorization header
func ExtractBearerToken(authHeader string) (string, error) {
	if authHeader == "" {
		return "", ErrInvalidFormat
	}

	// Check if the header starts with "Bearer " (optional)
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer ")), nil
	}

	// Otherwise just return the entire header value as the token
	return authHeader, nil
}
