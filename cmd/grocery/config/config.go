package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	defaultAPIURL  = "http://localhost:8080"
	tokenFileName  = ".grocery_token"
	apiPathPrefix  = "/api/v1/groceries"
	apiURLEnv      = "GROCERY_API_URL"
	tokenFileEnv   = "GROCERY_TOKEN_FILE"
	tokenFilePerms = 0600
)

// APIURL returns the base URL of the grocery API routes.
// The server address can be overridden with GROCERY_API_URL.
func APIURL() string {
	base := defaultAPIURL
	if v := os.Getenv(apiURLEnv); v != "" {
		base = strings.TrimRight(v, "/")
	}
	return base + apiPathPrefix
}

// TokenPath returns where the login token is stored, GROCERY_TOKEN_FILE
// when set.
func TokenPath() string {
	if v := os.Getenv(tokenFileEnv); v != "" {
		return v
	}
	dir, _ := os.UserHomeDir()
	return filepath.Join(dir, tokenFileName)
}

// SaveToken stores token readable only by the current user.
func SaveToken(token string) error {
	return os.WriteFile(TokenPath(), []byte(token), tokenFilePerms)
}

// LoadToken reads the stored token.
func LoadToken() (string, error) {
	data, err := os.ReadFile(TokenPath())
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// ClearToken removes the stored token. It reports false when there was none.
func ClearToken() (bool, error) {
	err := os.Remove(TokenPath())
	if os.IsNotExist(err) {
		return false, nil
	}
	return err == nil, err
}
