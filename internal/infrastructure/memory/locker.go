package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/stock-api/internal/application/ports"
)

var _ ports.Locker = (*Locker)(nil)

// Locker candado por clave en proceso. Sustituye a Redis cuando no está configurado;
// solo protege dentro de una instancia.
type Locker struct {
	mu    sync.Mutex
	held  map[string]lease
	clock func() time.Time
	seq   uint64
}

type lease struct {
	token   uint64
	expires time.Time
}

// NewLocker crea el locker en memoria.
func NewLocker() *Locker {
	return &Locker{held: map[string]lease{}, clock: time.Now}
}

// Obtain toma la clave por ttl. Falla de inmediato con ports.ErrLockNotObtained si está tomada.
func (l *Locker) Obtain(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.clock()
	if cur, ok := l.held[key]; ok && now.Before(cur.expires) {
		return nil, ports.ErrLockNotObtained
	}
	l.seq++
	token := l.seq
	l.held[key] = lease{token: token, expires: now.Add(ttl)}
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if cur, ok := l.held[key]; ok && cur.token == token {
			delete(l.held, key)
		}
	}, nil
}
