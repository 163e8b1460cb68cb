package repository

import (
	"context"

	"github.com/jhoicas/stock-api/internal/domain/entity"
)

// LocationRepository define el puerto de persistencia para tiendas (SHOP) y almacenes (STORE).
type LocationRepository interface {
	Create(ctx context.Context, location *entity.Location) error
	GetByID(ctx context.Context, id string) (*entity.Location, error)
	Update(ctx context.Context, location *entity.Location) error
	// List filtra por tipo si locationType no está vacío. Devuelve además el total sin paginar.
	List(ctx context.Context, companyID, locationType string, page Page) ([]*entity.Location, int, error)
	Delete(ctx context.Context, id string) error
}
