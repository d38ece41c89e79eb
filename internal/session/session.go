// internal/session/session.go
// Package session provides the redis-backed admin session store and the
// route guard that decides whether a request may reach a console view.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"homecare-admin/internal/common/config"
	"homecare-admin/internal/common/database"
	commonerrors "homecare-admin/internal/common/errors"
	"homecare-admin/internal/common/logger"
)

const RoleAdmin = "admin"

// Session is the authenticated admin identity attached to a request.
type Session struct {
	Token     string    `json:"token"`
	Role      string    `json:"role"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// Store persists sessions in redis, keyed by opaque token.
type Store struct {
	rdb *database.RedisClient
	ttl time.Duration
	log logger.Logger
}

func NewStore(rdb *database.RedisClient, cfg config.SessionConfig, log logger.Logger) *Store {
	ttl := time.Duration(cfg.TTL) * time.Millisecond
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}
	return &Store{rdb: rdb, ttl: ttl, log: log}
}

func sessionKey(token string) string {
	return "admin:session:" + token
}

// Create mints a fresh token for the identity and stores it with the TTL.
func (s *Store) Create(ctx context.Context, sess Session) (Session, error) {
	sess.Token = uuid.New().String()
	sess.ExpiresAt = time.Now().Add(s.ttl)

	payload, err := json.Marshal(sess)
	if err != nil {
		return Session{}, fmt.Errorf("marshal session: %w", err)
	}
	if err := s.rdb.Set(ctx, sessionKey(sess.Token), string(payload), s.ttl); err != nil {
		return Session{}, commonerrors.NewCacheUnavailableError(err)
	}
	return sess, nil
}

// Get resolves a token back to its session. Unknown or expired tokens fail
// with a session error the HTTP layer turns into a login redirect.
func (s *Store) Get(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, commonerrors.NewSessionInvalidError("missing token")
	}

	payload, err := s.rdb.Get(ctx, sessionKey(token))
	if err != nil {
		return nil, commonerrors.NewSessionInvalidError("unknown token")
	}

	var sess Session
	if err := json.Unmarshal([]byte(payload), &sess); err != nil {
		return nil, commonerrors.NewSessionInvalidError("corrupt session payload")
	}
	if sess.Expired(time.Now()) {
		_ = s.rdb.Del(ctx, sessionKey(token))
		return nil, commonerrors.NewSessionExpiredError(token)
	}
	return &sess, nil
}

// Destroy drops the session; logout is idempotent.
func (s *Store) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.rdb.Del(ctx, sessionKey(token))
}

// GuardDecision is the outcome of a route guard check.
type GuardDecision struct {
	Allow      bool
	RedirectTo string
}

// Guard is the pure access rule for console routes: no session or an
// expired one goes to the login page, a wrong role goes to the landing
// page, anything else passes.
func Guard(sess *Session, requiredRole string, now time.Time) GuardDecision {
	if sess == nil || sess.Expired(now) {
		return GuardDecision{RedirectTo: "/login"}
	}
	if requiredRole != "" && sess.Role != requiredRole {
		return GuardDecision{RedirectTo: "/"}
	}
	return GuardDecision{Allow: true}
}
