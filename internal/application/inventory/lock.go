package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/stock-api/internal/application/ports"
	"github.com/jhoicas/stock-api/internal/domain"
)

// WithLock ejecuta fn con el candado key tomado. Si otro proceso lo tiene devuelve
// domain.ErrLocked sin esperar.
func WithLock(ctx context.Context, locker ports.Locker, key string, ttl time.Duration, fn func() error) error {
	release, err := locker.Obtain(ctx, key, ttl)
	if errors.Is(err, ports.ErrLockNotObtained) {
		return fmt.Errorf("%s: %w", key, domain.ErrLocked)
	}
	if err != nil {
		return fmt.Errorf("obtener candado %s: %w", key, err)
	}
	defer release()
	return fn()
}
