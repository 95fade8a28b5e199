package github

import (
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// App authentication constants.
const (
	maxAppID        = 999999999
	appJWTLifetime  = 10 * time.Minute // GitHub App JWTs expire after 10 minutes max
	appJWTRefresh   = 9 * time.Minute  // Refresh 1 minute before expiry
	installGrace    = 5 * time.Minute  // Refresh installation tokens early
	filePermOwnerRW = 0o600
	filePermRO      = 0o400
)

// initAppAuth configures the client for GitHub App authentication and signs
// the initial app JWT.
func (c *Client) initAppAuth(_ context.Context, appID, keyPath string) error {
	if appID == "" {
		appID = os.Getenv("GITHUB_APP_ID")
	}
	if appID == "" {
		return errors.New("GitHub App ID is required (set GITHUB_APP_ID)")
	}
	appIDNum, err := strconv.Atoi(appID)
	if err != nil {
		return fmt.Errorf("GitHub App ID must be numeric: %w", err)
	}
	if appIDNum <= 0 || appIDNum > maxAppID {
		return errors.New("GitHub App ID out of valid range")
	}

	privateKey, err := loadPrivateKey(keyPath)
	if err != nil {
		return err
	}

	token, err := generateJWT(appID, privateKey)
	if err != nil {
		return fmt.Errorf("failed to generate app JWT: %w", err)
	}
	slog.Info("Generated JWT for GitHub App", "component", "auth", "app_id", appID)

	c.isAppAuth = true
	c.appID = appID
	c.privateKey = privateKey
	c.token = token
	c.tokenExpiry = time.Now().Add(appJWTRefresh)
	return nil
}

// loadPrivateKey reads the App private key from GITHUB_APP_KEY (content) or a
// key file path.
func loadPrivateKey(keyPath string) ([]byte, error) {
	if content := os.Getenv("GITHUB_APP_KEY"); content != "" {
		return validatePEM([]byte(content))
	}

	if keyPath == "" {
		keyPath = os.Getenv("GITHUB_APP_KEY_PATH")
	}
	if keyPath == "" {
		return nil, errors.New("GitHub App private key is required (set GITHUB_APP_KEY or GITHUB_APP_KEY_PATH)")
	}

	cleanPath := filepath.Clean(keyPath)
	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("cannot access private key file: %w", err)
	}
	if info.IsDir() {
		return nil, errors.New("private key path must be a file, not a directory")
	}
	perm := info.Mode().Perm()
	if perm != filePermOwnerRW && perm != filePermRO {
		return nil, fmt.Errorf("private key file has insecure permissions %04o (must be 0600 or 0400)", perm)
	}

	content, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read private key file: %w", err)
	}
	return validatePEM(content)
}

func validatePEM(key []byte) ([]byte, error) {
	if block, _ := pem.Decode(key); block == nil {
		return nil, errors.New("private key does not appear to be a valid PEM private key")
	}
	return key, nil
}

// generateJWT generates a short-lived JWT for GitHub App authentication.
func generateJWT(appID string, privateKey []byte) (string, error) {
	block, _ := pem.Decode(privateKey)
	if block == nil {
		return "", errors.New("failed to parse PEM block containing the private key")
	}

	key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		// Try PKCS8 format if PKCS1 fails
		parsedKey, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return "", fmt.Errorf("failed to parse private key: %w", err)
		}
		var ok bool
		key, ok = parsedKey.(*rsa.PrivateKey)
		if !ok {
			return "", errors.New("private key is not RSA")
		}
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"iat": now.Unix(),
		"exp": now.Add(appJWTLifetime).Unix(),
		"iss": appID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	return token.SignedString(key)
}

// authToken returns the token to authenticate the next request with. For App
// authentication this is an installation token for the configured org,
// refreshed as needed.
func (c *Client) authToken(ctx context.Context) (string, error) {
	if !c.isAppAuth {
		return c.token, nil
	}

	c.tokenMutex.Lock()
	defer c.tokenMutex.Unlock()

	if c.installToken != "" && time.Now().Before(c.installUntil) {
		return c.installToken, nil
	}

	if time.Now().After(c.tokenExpiry) {
		token, err := generateJWT(c.appID, c.privateKey)
		if err != nil {
			return "", fmt.Errorf("failed to refresh app JWT: %w", err)
		}
		c.token = token
		c.tokenExpiry = time.Now().Add(appJWTRefresh)
		slog.Info("Refreshed GitHub App JWT", "component", "auth")
	}

	token, expiresAt, err := c.createInstallationToken(ctx)
	if err != nil {
		return "", err
	}
	c.installToken = token
	c.installUntil = expiresAt.Add(-installGrace)
	return token, nil
}

// createInstallationToken looks up the App installation for the configured
// org and exchanges the app JWT for an installation access token.
func (c *Client) createInstallationToken(ctx context.Context) (string, time.Time, error) {
	installationID, err := c.installationID(ctx)
	if err != nil {
		return "", time.Time{}, err
	}

	apiURL := fmt.Sprintf("%s/app/installations/%d/access_tokens", c.baseURL, installationID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, http.NoBody)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to create installation token: %w", err)
	}
	defer drainAndCloseBody(resp.Body)

	if resp.StatusCode != http.StatusCreated {
		return "", time.Time{}, fmt.Errorf("failed to create installation token (status %d)", resp.StatusCode)
	}

	var tokenResp struct {
		ExpiresAt time.Time `json:"expires_at"`
		Token     string    `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", time.Time{}, fmt.Errorf("failed to decode token response: %w", err)
	}
	if tokenResp.Token == "" {
		return "", time.Time{}, errors.New("received empty installation token")
	}

	slog.Info("Created installation access token", "component", "auth", "org", c.org, "expires_at", tokenResp.ExpiresAt.Format(time.RFC3339))
	return tokenResp.Token, tokenResp.ExpiresAt, nil
}

// installationID fetches the App installation ID for the configured org.
func (c *Client) installationID(ctx context.Context) (int, error) {
	apiURL := fmt.Sprintf("%s/orgs/%s/installation", c.baseURL, c.org)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, http.NoBody)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to look up app installation: %w", err)
	}
	defer drainAndCloseBody(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("no app installation found for org %s (status %d)", c.org, resp.StatusCode)
	}

	var installation struct {
		ID int `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&installation); err != nil {
		return 0, fmt.Errorf("failed to decode installation: %w", err)
	}
	return installation.ID, nil
}
