package github

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPrivateKey(t *testing.T) (*rsa.PrivateKey, []byte) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	pemBytes := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	return key, pemBytes
}

func TestGenerateJWT(t *testing.T) {
	key, pemBytes := testPrivateKey(t)

	signed, err := generateJWT("12345", pemBytes)
	require.NoError(t, err)

	parsed, err := jwt.Parse(signed, func(token *jwt.Token) (any, error) {
		return &key.PublicKey, nil
	}, jwt.WithValidMethods([]string{"RS256"}))
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	issuer, err := parsed.Claims.GetIssuer()
	require.NoError(t, err)
	assert.Equal(t, "12345", issuer)
}

func TestGenerateJWTBadKey(t *testing.T) {
	_, err := generateJWT("12345", []byte("not a pem key"))
	assert.Error(t, err)
}

func TestLoadPrivateKeyFromFile(t *testing.T) {
	_, pemBytes := testPrivateKey(t)
	path := filepath.Join(t.TempDir(), "app.pem")
	require.NoError(t, os.WriteFile(path, pemBytes, 0o600))

	key, err := loadPrivateKey(path)
	require.NoError(t, err)
	assert.Equal(t, pemBytes, key)
}

func TestLoadPrivateKeyInsecurePermissions(t *testing.T) {
	_, pemBytes := testPrivateKey(t)
	path := filepath.Join(t.TempDir(), "app.pem")
	require.NoError(t, os.WriteFile(path, pemBytes, 0o644))

	_, err := loadPrivateKey(path)
	assert.ErrorContains(t, err, "insecure permissions")
}

func TestLoadPrivateKeyFromEnv(t *testing.T) {
	_, pemBytes := testPrivateKey(t)
	t.Setenv("GITHUB_APP_KEY", string(pemBytes))

	key, err := loadPrivateKey("")
	require.NoError(t, err)
	assert.Equal(t, pemBytes, key)
}

func TestInitAppAuthValidatesAppID(t *testing.T) {
	_, pemBytes := testPrivateKey(t)
	t.Setenv("GITHUB_APP_KEY", string(pemBytes))

	tests := []struct {
		name  string
		appID string
	}{
		{"empty", ""},
		{"not numeric", "abc"},
		{"zero", "0"},
		{"negative", "-1"},
		{"too large", "9999999999"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.appID == "" {
				t.Setenv("GITHUB_APP_ID", "")
			}
			c := &Client{}
			assert.Error(t, c.initAppAuth(t.Context(), tt.appID, ""))
		})
	}
}
