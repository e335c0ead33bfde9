package auth

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edvios/backend/internal/pkg/apperrors"
)

const testSecret = "super-secret-jwt-token-with-at-least-32-characters"

func claimsFor(sub string, exp time.Duration) Claims {
	return Claims{
		Email:        "ada@example.com",
		UserMetadata: map[string]any{"role": "AGENT"},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(exp)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
}

func TestValidateHS256(t *testing.T) {
	v := NewTokenVerifier(VerifierConfig{Secret: testSecret})
	ctx := context.Background()

	sign := func(c Claims, secret string) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(secret))
		require.NoError(t, err)
		return s
	}

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"valid", sign(claimsFor("user-1", time.Hour), testSecret), nil},
		{"expired", sign(claimsFor("user-1", -time.Hour), testSecret), apperrors.ErrTokenExpired},
		{"wrong secret", sign(claimsFor("user-1", time.Hour), "another-secret-another-secret-another"), apperrors.ErrTokenInvalid},
		{"missing subject", sign(claimsFor("", time.Hour), testSecret), apperrors.ErrTokenInvalid},
		{"empty", "", apperrors.ErrTokenNotFound},
		{"garbage", "not.a.jwt", apperrors.ErrTokenInvalid},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			claims, err := v.ValidateToken(ctx, tc.token)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "user-1", claims.UserID())
			assert.Equal(t, "ada@example.com", claims.Email)
			assert.Equal(t, "AGENT", claims.MetadataRole())
		})
	}
}

func TestValidateES256FromJWKS(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	var fetches atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"keys": []map[string]string{{
				"kid": "key-1",
				"kty": "EC",
				"crv": "P-256",
				"x":   base64.RawURLEncoding.EncodeToString(key.PublicKey.X.FillBytes(make([]byte, 32))),
				"y":   base64.RawURLEncoding.EncodeToString(key.PublicKey.Y.FillBytes(make([]byte, 32))),
			}},
		})
	}))
	defer server.Close()

	v := NewTokenVerifier(VerifierConfig{JWKSURL: server.URL})
	ctx := context.Background()

	sign := func(kid string) string {
		token := jwt.NewWithClaims(jwt.SigningMethodES256, claimsFor("user-2", time.Hour))
		token.Header["kid"] = kid
		s, err := token.SignedString(key)
		require.NoError(t, err)
		return s
	}

	claims, err := v.ValidateToken(ctx, sign("key-1"))
	require.NoError(t, err)
	assert.Equal(t, "user-2", claims.UserID())

	_, err = v.ValidateToken(ctx, sign("key-1"))
	require.NoError(t, err)
	assert.Equal(t, int32(1), fetches.Load(), "cached key set is reused")

	_, err = v.ValidateToken(ctx, sign("rotated"))
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
	assert.Equal(t, int32(1), fetches.Load(), "unknown kids do not refetch immediately")

	hs, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claimsFor("user-2", time.Hour)).SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = v.ValidateToken(ctx, hs)
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid, "HS256 is refused without a secret")
}

func TestExtractBearerToken(t *testing.T) {
	token, err := ExtractBearerToken("Bearer abc.def")
	require.NoError(t, err)
	assert.Equal(t, "abc.def", token)

	token, err = ExtractBearerToken("abc.def")
	require.NoError(t, err)
	assert.Equal(t, "abc.def", token)

	_, err = ExtractBearerToken("")
	assert.ErrorIs(t, err, ErrInvalidFormat)
}
