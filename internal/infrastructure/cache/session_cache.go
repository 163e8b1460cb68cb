package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/stock-api/internal/application/ports"
	"github.com/jhoicas/stock-api/internal/domain/authz"
)

var _ ports.SessionCache = (*SessionCache)(nil)

const (
	sessionPrefix = "stock-api:session:"
	revokedPrefix = "stock-api:revoked:"
)

// SessionCache sesiones de permisos y tokens revocados en Redis, con TTL.
type SessionCache struct {
	rdb *redis.Client
}

// NewSessionCache construye la caché sobre un cliente go-redis.
func NewSessionCache(rdb *redis.Client) *SessionCache {
	return &SessionCache{rdb: rdb}
}

type sessionPayload struct {
	UserID      string   `json:"user_id"`
	CompanyID   string   `json:"company_id"`
	RoleID      string   `json:"role_id"`
	Permissions []string `json:"permissions"`
}

func encodeSession(s *authz.Session) ([]byte, error) {
	return json.Marshal(sessionPayload{UserID: s.UserID, CompanyID: s.CompanyID, RoleID: s.RoleID, Permissions: s.Permissions})
}

func decodeSession(raw []byte) (*authz.Session, error) {
	var p sessionPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	return authz.NewSession(p.UserID, p.CompanyID, p.RoleID, p.Permissions), nil
}

func (c *SessionCache) Get(ctx context.Context, userID string) (*authz.Session, error) {
	raw, err := c.rdb.Get(ctx, sessionPrefix+userID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	s, err := decodeSession(raw)
	if err != nil {
		// Entrada corrupta: se descarta y se resuelve de nuevo desde la base.
		_ = c.rdb.Del(ctx, sessionPrefix+userID).Err()
		return nil, nil
	}
	return s, nil
}

func (c *SessionCache) Set(ctx context.Context, s *authz.Session, ttl time.Duration) error {
	raw, err := encodeSession(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := c.rdb.Set(ctx, sessionPrefix+s.UserID, raw, ttl).Err(); err != nil {
		return fmt.Errorf("set session: %w", err)
	}
	return nil
}

func (c *SessionCache) Delete(ctx context.Context, userIDs ...string) error {
	if len(userIDs) == 0 {
		return nil
	}
	keys := make([]string, len(userIDs))
	for i, id := range userIDs {
		keys[i] = sessionPrefix + id
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("delete sessions: %w", err)
	}
	return nil
}

func (c *SessionCache) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := c.rdb.Set(ctx, revokedPrefix+tokenID, "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (c *SessionCache) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := c.rdb.Exists(ctx, revokedPrefix+tokenID).Result()
	if err != nil {
		return false, fmt.Errorf("check revoked: %w", err)
	}
	return n > 0, nil
}
