package auth

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"
)

// Static errors for err113 compliance.
var (
	ErrNoToken      = errors.New("no token available")
	ErrTokenExpired = errors.New("token has expired")
)

// expiryBuffer treats tokens about to expire as already expired.
const expiryBuffer = 30 * time.Second

// Credentials authorizes outgoing broker requests.
type Credentials interface {
	Authorize(ctx context.Context, req *http.Request) error
}

// Token is a bearer token with an optional expiry.
type Token struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
}

// Valid returns true if the token is set and not about to expire.
func (t *Token) Valid() bool {
	if t == nil || t.AccessToken == "" {
		return false
	}

	if t.ExpiresAt.IsZero() {
		return true
	}

	return time.Now().Add(expiryBuffer).Before(t.ExpiresAt)
}

// TokenStore holds the current token and is safe for concurrent use.
type TokenStore struct {
	mu    sync.RWMutex
	token *Token
}

// NewTokenStore creates an empty token store.
func NewTokenStore() *TokenStore {
	return &TokenStore{}
}

// Get returns the current token.
func (s *TokenStore) Get() *Token {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.token
}

// Set replaces the current token.
func (s *TokenStore) Set(token *Token) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
}

// Clear removes the current token.
func (s *TokenStore) Clear() {
	s.Set(nil)
}

// BasicCredentials sends a username and password with every request.
type BasicCredentials struct {
	Username string
	Password string
}

// Authorize implements Credentials.
func (c *BasicCredentials) Authorize(_ context.Context, req *http.Request) error {
	req.SetBasicAuth(c.Username, c.Password)

	return nil
}

// BearerCredentials sends the token held by a TokenStore.
type BearerCredentials struct {
	store *TokenStore
}

// NewBearerCredentials creates credentials for a static token.
func NewBearerCredentials(accessToken string) *BearerCredentials {
	store := NewTokenStore()
	store.Set(&Token{AccessToken: accessToken, TokenType: "bearer"})

	return &BearerCredentials{store: store}
}

// Store returns the underlying token store.
func (c *BearerCredentials) Store() *TokenStore {
	return c.store
}

// Authorize implements Credentials.
func (c *BearerCredentials) Authorize(_ context.Context, req *http.Request) error {
	token := c.store.Get()
	if token == nil || token.AccessToken == "" {
		return ErrNoToken
	}

	if !token.Valid() {
		return ErrTokenExpired
	}

	req.Header.Set("Authorization", "Bearer "+token.AccessToken)

	return nil
}
