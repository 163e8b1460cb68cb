package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/stock-api/internal/application/ports"
	"github.com/jhoicas/stock-api/internal/domain/authz"
)

var _ ports.SessionCache = (*SessionCache)(nil)

// SessionCache caché de sesiones en proceso (fallback sin Redis).
// Guarda los campos y reconstruye la sesión en cada Get para no compartir punteros entre peticiones.
type SessionCache struct {
	mu       sync.Mutex
	sessions map[string]cachedSession
	revoked  map[string]time.Time
	clock    func() time.Time
}

type cachedSession struct {
	userID, companyID, roleID string
	permissions               []string
	expires                   time.Time
}

// NewSessionCache crea la caché en memoria.
func NewSessionCache() *SessionCache {
	return &SessionCache{
		sessions: map[string]cachedSession{},
		revoked:  map[string]time.Time{},
		clock:    time.Now,
	}
}

func (c *SessionCache) Get(_ context.Context, userID string) (*authz.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.sessions[userID]
	if !ok {
		return nil, nil
	}
	if !c.clock().Before(e.expires) {
		delete(c.sessions, userID)
		return nil, nil
	}
	return authz.NewSession(e.userID, e.companyID, e.roleID, e.permissions), nil
}

func (c *SessionCache) Set(_ context.Context, s *authz.Session, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions[s.UserID] = cachedSession{
		userID:      s.UserID,
		companyID:   s.CompanyID,
		roleID:      s.RoleID,
		permissions: append([]string(nil), s.Permissions...),
		expires:     c.clock().Add(ttl),
	}
	return nil
}

func (c *SessionCache) Delete(_ context.Context, userIDs ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range userIDs {
		delete(c.sessions, id)
	}
	return nil
}

func (c *SessionCache) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.revoked[tokenID] = c.clock().Add(ttl)
	return nil
}

func (c *SessionCache) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	exp, ok := c.revoked[tokenID]
	if !ok {
		return false, nil
	}
	if !c.clock().Before(exp) {
		delete(c.revoked, tokenID)
		return false, nil
	}
	return true, nil
}
