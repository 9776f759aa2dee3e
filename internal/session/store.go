// Package session holds the per-session authentication state. Tokens are
// issued by the backend; this store only caches them and reads their
// claims for convenience. Nothing here is a trust decision: every
// protected call is re-validated server-side by the backend.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"

	"github.com/Mauthecat/tienda-sub000/internal/backend"
	"github.com/Mauthecat/tienda-sub000/internal/domain"
)

// ErrInvalidCredentials carries the user-displayable login failure message.
var ErrInvalidCredentials = errors.New("correo o contraseña incorrectos")

// tokenIssuer is the slice of the backend client the store needs.
type tokenIssuer interface {
	Token(ctx context.Context, email, password string) (*backend.TokenPair, error)
	Register(ctx context.Context, name, email, password string) error
}

type Store struct {
	rdb     *redis.Client
	backend tokenIssuer
	ttl     time.Duration
}

func NewStore(rdb *redis.Client, backend tokenIssuer, ttl time.Duration) *Store {
	return &Store{rdb: rdb, backend: backend, ttl: ttl}
}

func accessKey(sid string) string  { return fmt.Sprintf("session:%s:access", sid) }
func refreshKey(sid string) string { return fmt.Sprintf("session:%s:refresh", sid) }
func emailKey(sid string) string   { return fmt.Sprintf("session:%s:email", sid) }

// Login exchanges credentials for tokens, persists them under the session
// and derives the identity from the access token's claims. Bad credentials
// come back as ErrInvalidCredentials, never as a transport failure.
func (s *Store) Login(ctx context.Context, sid, email, password string) (*domain.Identity, error) {
	pair, err := s.backend.Token(ctx, email, password)
	if err != nil {
		if errors.Is(err, backend.ErrUnauthorized) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	userID, _, err := decodeClaims(pair.Access)
	if err != nil {
		return nil, fmt.Errorf("decode access token: %w", err)
	}

	pipe := s.rdb.Pipeline()
	pipe.Set(ctx, accessKey(sid), pair.Access, s.ttl)
	pipe.Set(ctx, refreshKey(sid), pair.Refresh, s.ttl)
	pipe.Set(ctx, emailKey(sid), email, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}

	return &domain.Identity{UserID: userID, Email: email}, nil
}

// Register creates the account and, on success, logs straight in with the
// same credentials.
func (s *Store) Register(ctx context.Context, sid, name, email, password string) (*domain.Identity, error) {
	if err := s.backend.Register(ctx, name, email, password); err != nil {
		return nil, err
	}
	return s.Login(ctx, sid, email, password)
}

// Logout clears all persisted credential material for the session.
func (s *Store) Logout(ctx context.Context, sid string) error {
	if err := s.rdb.Del(ctx, accessKey(sid), refreshKey(sid), emailKey(sid)).Err(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Current restores the identity from the cached token without any network
// round-trip. An expired or malformed token triggers an implicit logout
// and an anonymous identity, never an error the caller has to handle.
func (s *Store) Current(ctx context.Context, sid string) (*domain.Identity, error) {
	access, err := s.rdb.Get(ctx, accessKey(sid)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}

	email, err := s.rdb.Get(ctx, emailKey(sid)).Result()
	if errors.Is(err, redis.Nil) {
		email = ""
	} else if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}

	userID, expiry, errDecode := decodeClaims(access)
	if errDecode != nil || expiry.IsZero() || expiry.Before(time.Now()) {
		if errLogout := s.Logout(ctx, sid); errLogout != nil {
			return nil, errLogout
		}
		return nil, nil
	}

	return &domain.Identity{UserID: userID, Email: email}, nil
}

// AccessToken returns the cached bearer token, or empty for anonymous
// sessions.
func (s *Store) AccessToken(ctx context.Context, sid string) (string, error) {
	access, err := s.rdb.Get(ctx, accessKey(sid)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read session: %w", err)
	}
	return access, nil
}

// decodeClaims reads user id and expiry out of the token payload without
// verifying the signature. The backend verifies; this is a convenience
// read only.
func decodeClaims(token string) (userID int64, expiry time.Time, err error) {
	claims := jwt.MapClaims{}
	if _, _, err = jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return 0, time.Time{}, err
	}

	if raw, ok := claims["user_id"].(float64); ok {
		userID = int64(raw)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return 0, time.Time{}, err
	}
	if exp != nil {
		expiry = exp.Time
	}
	return userID, expiry, nil
}
