package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-api/internal/application/dto"
	"github.com/jhoicas/stock-api/internal/domain"
	"github.com/jhoicas/stock-api/internal/domain/entity"
	"github.com/jhoicas/stock-api/internal/domain/repository"
)

// LocationUseCase casos de uso CRUD para bodegas (STORE) y tiendas (SHOP).
type LocationUseCase struct {
	repo repository.LocationRepository
}

// NewLocationUseCase construye el caso de uso.
func NewLocationUseCase(repo repository.LocationRepository) *LocationUseCase {
	return &LocationUseCase{repo: repo}
}

// Create crea una nueva ubicación.
func (uc *LocationUseCase) Create(ctx context.Context, companyID string, in dto.CreateLocationRequest) (*dto.LocationResponse, error) {
	if !entity.IsValidLocationType(in.Type) {
		return nil, domain.NewValidationError("type", "debe ser STORE o SHOP")
	}
	now := time.Now().UTC()
	loc := &entity.Location{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		Type:      in.Type,
		Name:      strings.TrimSpace(in.Name),
		Address:   in.Address,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, loc); err != nil {
		return nil, err
	}
	out := toLocationResponse(loc)
	return &out, nil
}

// GetByID obtiene una ubicación de la empresa.
func (uc *LocationUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.LocationResponse, error) {
	loc, err := uc.load(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	out := toLocationResponse(loc)
	return &out, nil
}

// Update actualiza nombre y dirección. El tipo no cambia.
func (uc *LocationUseCase) Update(ctx context.Context, companyID, id string, in dto.UpdateLocationRequest) (*dto.LocationResponse, error) {
	loc, err := uc.load(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		loc.Name = strings.TrimSpace(*in.Name)
	}
	if in.Address != nil {
		loc.Address = *in.Address
	}
	loc.UpdatedAt = time.Now().UTC()
	if err := uc.repo.Update(ctx, loc); err != nil {
		return nil, err
	}
	out := toLocationResponse(loc)
	return &out, nil
}

// List lista ubicaciones, opcionalmente de un tipo.
func (uc *LocationUseCase) List(ctx context.Context, companyID, locationType string, page dto.PageRequest) (dto.ListResponse[dto.LocationResponse], error) {
	page.DefaultPage()
	list, total, err := uc.repo.List(ctx, companyID, locationType, repository.Page{Limit: page.Limit, Offset: page.Offset()})
	if err != nil {
		return dto.ListResponse[dto.LocationResponse]{}, err
	}
	out := make([]dto.LocationResponse, 0, len(list))
	for _, l := range list {
		out = append(out, toLocationResponse(l))
	}
	return dto.NewListResponse(out, total, page), nil
}

// Delete elimina una ubicación sin stock. Devuelve ErrConflict si aún tiene saldo.
func (uc *LocationUseCase) Delete(ctx context.Context, companyID, id string) error {
	if _, err := uc.load(ctx, companyID, id); err != nil {
		return err
	}
	return uc.repo.Delete(ctx, id)
}

func (uc *LocationUseCase) load(ctx context.Context, companyID, id string) (*entity.Location, error) {
	loc, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if loc == nil || loc.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	return loc, nil
}

func toLocationResponse(l *entity.Location) dto.LocationResponse {
	return dto.LocationResponse{
		ID:        l.ID,
		CompanyID: l.CompanyID,
		Type:      l.Type,
		Name:      l.Name,
		Address:   l.Address,
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
	}
}
