package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-api/internal/domain"
	"github.com/jhoicas/stock-api/internal/domain/entity"
	"github.com/jhoicas/stock-api/internal/domain/repository"
)

var _ repository.LocationRepository = (*LocationRepo)(nil)

const locationColumns = `id, company_id, type, name, address, created_at, updated_at`

// LocationRepo tiendas y bodegas sobre PostgreSQL.
type LocationRepo struct {
	q Querier
}

// NewLocationRepository construye el adaptador. Acepta pool o tx (Querier).
func NewLocationRepository(q Querier) *LocationRepo {
	return &LocationRepo{q: q}
}

func scanLocation(row pgx.Row) (*entity.Location, error) {
	var l entity.Location
	if err := row.Scan(&l.ID, &l.CompanyID, &l.Type, &l.Name, &l.Address, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return nil, err
	}
	return &l, nil
}

// Create persiste una ubicación.
func (r *LocationRepo) Create(ctx context.Context, l *entity.Location) error {
	_, err := r.q.Exec(ctx, `INSERT INTO locations (`+locationColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		l.ID, l.CompanyID, l.Type, l.Name, l.Address, l.CreatedAt, l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert location: %w", err)
	}
	return nil
}

// GetByID obtiene una ubicación.
func (r *LocationRepo) GetByID(ctx context.Context, id string) (*entity.Location, error) {
	l, err := scanLocation(r.q.QueryRow(ctx, `SELECT `+locationColumns+` FROM locations WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get location: %w", err)
	}
	return l, nil
}

// Update nombre y dirección.
func (r *LocationRepo) Update(ctx context.Context, l *entity.Location) error {
	cmd, err := r.q.Exec(ctx, `UPDATE locations SET name = $2, address = $3, updated_at = $4 WHERE id = $1`,
		l.ID, l.Name, l.Address, l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update location: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List ubicaciones de la empresa, más recientes primero.
func (r *LocationRepo) List(ctx context.Context, companyID, locationType string, page repository.Page) ([]*entity.Location, int, error) {
	w := &where{}
	w.add("company_id = $%d", companyID)
	w.addIf(locationType != "", "type = $%d", locationType)

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM locations`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count locations: %w", err)
	}
	query := `SELECT ` + locationColumns + ` FROM locations` + w.String() + ` ORDER BY created_at DESC, id` + w.page(page)
	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list locations: %w", err)
	}
	defer rows.Close()
	var list []*entity.Location
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan location: %w", err)
		}
		list = append(list, l)
	}
	return list, total, rows.Err()
}

// Delete elimina la ubicación si no tiene saldo. Con stock o documentos devuelve ErrConflict.
func (r *LocationRepo) Delete(ctx context.Context, id string) error {
	var withStock bool
	if err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM batch_stock WHERE location_id = $1 AND quantity <> 0)`, id).Scan(&withStock); err != nil {
		return fmt.Errorf("check location stock: %w", err)
	}
	if withStock {
		return domain.ErrConflict
	}
	cmd, err := r.q.Exec(ctx, `DELETE FROM locations WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("delete location: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
