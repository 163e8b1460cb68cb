package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/stock-api/internal/application/ports"
	"github.com/jhoicas/stock-api/pkg/logger"
)

var _ ports.Locker = (*Locker)(nil)

const lockPrefix = "stock-api:lock:"

// Locker candado distribuido con redislock. Sin reintentos: si la clave está tomada falla de inmediato.
type Locker struct {
	client *redislock.Client
	log    *logger.Logger
}

// NewLocker construye el locker sobre un cliente go-redis.
func NewLocker(rdb *redis.Client, log *logger.Logger) *Locker {
	return &Locker{client: redislock.New(rdb), log: log.Component("locker")}
}

// Obtain toma la clave por ttl. La función devuelta libera el candado.
func (l *Locker) Obtain(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	lock, err := l.client.Obtain(ctx, lockPrefix+key, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, ports.ErrLockNotObtained
	}
	if err != nil {
		return nil, fmt.Errorf("obtain lock %s: %w", key, err)
	}
	return func() {
		// ctx de la petición puede estar cancelado al liberar.
		relCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := lock.Release(relCtx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			l.log.Warn().Err(err).Str("key", key).Msg("no se pudo liberar el candado")
		}
	}, nil
}
