package credentials

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/simmer-dev/simmer/internal/domain"
	"github.com/simmer-dev/simmer/internal/logger"
)

// TokenStore persists the bearer token between runs.
type TokenStore struct {
	path string
}

func NewTokenStore(path string) *TokenStore {
	return &TokenStore{path: path}
}

// Token returns the stored token, or "" when none is stored.
func (s *TokenStore) Token() string {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return ""
	}
	return string(raw)
}

func (s *TokenStore) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(s.path, []byte(token), 0o600)
}

func (s *TokenStore) Clear() error {
	err := os.Remove(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// Reader derives the viewer's authentication state from the stored token.
type Reader struct {
	tokens *TokenStore
	parser *jwt.Parser
}

func NewReader(tokens *TokenStore) *Reader {
	return &Reader{tokens: tokens, parser: jwt.NewParser()}
}

// AuthState decodes identity claims from the stored token. An absent token
// yields the unauthenticated state; an undecodable or expired token is
// cleared and yields the unauthenticated state. Never fails and never
// touches the network: the server re-checks the token on every request.
func (r *Reader) AuthState() domain.AuthState {
	tokenString := r.tokens.Token()
	if tokenString == "" {
		return domain.Unauthenticated()
	}

	user, err := r.extractUser(tokenString)
	if err != nil {
		logger.Log.Warn("clearing invalid stored token", "error", err)
		if err := r.tokens.Clear(); err != nil {
			logger.Log.Error("failed to clear invalid token", "error", err)
		}
		return domain.Unauthenticated()
	}

	return domain.AuthState{Authenticated: true, User: user}
}

var (
	errInvalidClaims = errors.New("invalid claims")
	errTokenExpired  = errors.New("token expired")
)

// extractUser parses claims without verifying the signature. Only the
// server holds the signing key; the client trusts its own token file just
// far enough to display an identity.
func (r *Reader) extractUser(tokenString string) (*domain.User, error) {
	token, _, err := r.parser.ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errInvalidClaims
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, errInvalidClaims
	}
	if exp.Before(time.Now()) {
		return nil, errTokenExpired
	}

	uid, ok := claims["uid"].(string)
	if !ok || uid == "" {
		return nil, errInvalidClaims
	}
	name, ok := claims["name"].(string)
	if !ok {
		return nil, errInvalidClaims
	}
	email, ok := claims["email"].(string)
	if !ok {
		return nil, errInvalidClaims
	}

	return &domain.User{Id: uid, Name: name, Email: email}, nil
}
