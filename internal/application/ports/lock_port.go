package ports

import (
	"context"
	"errors"
	"time"
)

// ErrLockNotObtained lo devuelve Locker.Obtain cuando otro proceso tiene el candado.
var ErrLockNotObtained = errors.New("lock no obtenido")

// Locker define el puerto de candados distribuidos por clave (Redis en producción,
// mutex en proceso para desarrollo y tests). Obtain no reintenta: falla de inmediato
// si la clave está tomada.
type Locker interface {
	Obtain(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
}
