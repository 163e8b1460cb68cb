package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-api/internal/domain"
	"github.com/jhoicas/stock-api/internal/domain/entity"
	"github.com/jhoicas/stock-api/internal/domain/repository"
)

type locationRepo struct{ d *db }

func (r *locationRepo) Create(_ context.Context, l *entity.Location) error {
	return r.d.do(func(st *state) error {
		st.locations[l.ID] = *l
		return nil
	})
}

func (r *locationRepo) GetByID(_ context.Context, id string) (*entity.Location, error) {
	var out *entity.Location
	err := r.d.do(func(st *state) error {
		if l, ok := st.locations[id]; ok {
			out = &l
		}
		return nil
	})
	return out, err
}

func (r *locationRepo) Update(_ context.Context, l *entity.Location) error {
	return r.d.do(func(st *state) error {
		if _, ok := st.locations[l.ID]; !ok {
			return domain.ErrNotFound
		}
		st.locations[l.ID] = *l
		return nil
	})
}

func (r *locationRepo) List(_ context.Context, companyID, locationType string, page repository.Page) ([]*entity.Location, int, error) {
	var all []*entity.Location
	err := r.d.do(func(st *state) error {
		for _, l := range st.locations {
			if l.CompanyID == companyID && (locationType == "" || l.Type == locationType) {
				l := l
				all = append(all, &l)
			}
		}
		return nil
	})
	sort.Slice(all, func(i, j int) bool {
		if all[i].Name != all[j].Name {
			return all[i].Name < all[j].Name
		}
		return all[i].ID < all[j].ID
	})
	list, total := paginate(all, page)
	return list, total, err
}

func (r *locationRepo) Delete(_ context.Context, id string) error {
	return r.d.do(func(st *state) error {
		if _, ok := st.locations[id]; !ok {
			return domain.ErrNotFound
		}
		for k, s := range st.stock {
			if k.LocationID == id && !s.Quantity.IsZero() {
				return domain.ErrConflict
			}
		}
		delete(st.locations, id)
		return nil
	})
}

type productRepo struct{ d *db }

func (r *productRepo) Create(_ context.Context, p *entity.Product) error {
	return r.d.do(func(st *state) error {
		for _, existing := range st.products {
			if existing.CompanyID == p.CompanyID && existing.SKU == p.SKU {
				return domain.ErrDuplicate
			}
		}
		st.products[p.ID] = *p
		return nil
	})
}

func (r *productRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.d.do(func(st *state) error {
		if p, ok := st.products[id]; ok {
			out = &p
		}
		return nil
	})
	return out, err
}

func (r *productRepo) GetByCompanyAndSKU(_ context.Context, companyID, sku string) (*entity.Product, error) {
	var out *entity.Product
	err := r.d.do(func(st *state) error {
		for _, p := range st.products {
			if p.CompanyID == companyID && p.SKU == sku {
				p := p
				out = &p
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *productRepo) Update(_ context.Context, p *entity.Product) error {
	return r.d.do(func(st *state) error {
		if _, ok := st.products[p.ID]; !ok {
			return domain.ErrNotFound
		}
		st.products[p.ID] = *p
		return nil
	})
}

func (r *productRepo) List(_ context.Context, companyID, search string, page repository.Page) ([]*entity.Product, int, error) {
	search = strings.ToLower(strings.TrimSpace(search))
	var all []*entity.Product
	err := r.d.do(func(st *state) error {
		for _, p := range st.products {
			if p.CompanyID != companyID {
				continue
			}
			if search != "" && !strings.Contains(strings.ToLower(p.Name), search) && !strings.Contains(strings.ToLower(p.SKU), search) {
				continue
			}
			p := p
			all = append(all, &p)
		}
		return nil
	})
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID < all[j].ID
	})
	list, total := paginate(all, page)
	return list, total, err
}

func (r *productRepo) Delete(_ context.Context, id string) error {
	return r.d.do(func(st *state) error {
		if _, ok := st.products[id]; !ok {
			return domain.ErrNotFound
		}
		for _, b := range st.batches {
			if b.ProductID == id {
				return domain.ErrConflict
			}
		}
		delete(st.products, id)
		return nil
	})
}

type unitRepo struct{ d *db }

func (r *unitRepo) Create(_ context.Context, u *entity.UnitOfMeasure) error {
	return r.d.do(func(st *state) error {
		for _, existing := range st.units {
			if existing.CompanyID == u.CompanyID && strings.EqualFold(existing.Name, u.Name) {
				return domain.ErrDuplicate
			}
		}
		st.units[u.ID] = *u
		return nil
	})
}

func (r *unitRepo) GetByID(_ context.Context, id string) (*entity.UnitOfMeasure, error) {
	var out *entity.UnitOfMeasure
	err := r.d.do(func(st *state) error {
		if u, ok := st.units[id]; ok {
			out = &u
		}
		return nil
	})
	return out, err
}

func (r *unitRepo) ListByCompany(_ context.Context, companyID string) ([]*entity.UnitOfMeasure, error) {
	var out []*entity.UnitOfMeasure
	err := r.d.do(func(st *state) error {
		for _, u := range st.units {
			if u.CompanyID == companyID {
				u := u
				out = append(out, &u)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, err
}

func (r *unitRepo) Delete(_ context.Context, id string) error {
	return r.d.do(func(st *state) error {
		if _, ok := st.units[id]; !ok {
			return domain.ErrNotFound
		}
		for _, c := range st.corrections {
			for _, it := range c.Items {
				if it.UnitOfMeasureID == id {
					return domain.ErrConflict
				}
			}
		}
		delete(st.units, id)
		return nil
	})
}

type batchRepo struct{ d *db }

func (r *batchRepo) Create(_ context.Context, b *entity.ProductBatch) error {
	return r.d.do(func(st *state) error {
		for _, existing := range st.batches {
			if existing.ProductID == b.ProductID && existing.BatchNumber == b.BatchNumber {
				return domain.ErrDuplicate
			}
		}
		st.batches[b.ID] = *b
		return nil
	})
}

func (r *batchRepo) GetByID(_ context.Context, id string) (*entity.ProductBatch, error) {
	var out *entity.ProductBatch
	err := r.d.do(func(st *state) error {
		if b, ok := st.batches[id]; ok {
			out = &b
		}
		return nil
	})
	return out, err
}

func (r *batchRepo) GetByProductAndNumber(_ context.Context, productID, batchNumber string) (*entity.ProductBatch, error) {
	var out *entity.ProductBatch
	err := r.d.do(func(st *state) error {
		for _, b := range st.batches {
			if b.ProductID == productID && b.BatchNumber == batchNumber {
				b := b
				out = &b
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *batchRepo) List(_ context.Context, f repository.BatchFilter, page repository.Page) ([]*entity.ProductBatch, int, error) {
	var all []*entity.ProductBatch
	err := r.d.do(func(st *state) error {
		for _, b := range st.batches {
			if b.CompanyID != f.CompanyID {
				continue
			}
			if (f.ProductID != "" && b.ProductID != f.ProductID) || (f.StoreID != "" && b.StoreID != f.StoreID) {
				continue
			}
			b := b
			all = append(all, &b)
		}
		return nil
	})
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID < all[j].ID
	})
	list, total := paginate(all, page)
	return list, total, err
}

func (r *batchRepo) SetStock(_ context.Context, batchID string, quantity decimal.Decimal) error {
	return r.d.do(func(st *state) error {
		b, ok := st.batches[batchID]
		if !ok {
			return domain.ErrNotFound
		}
		b.Stock = quantity
		st.batches[batchID] = b
		return nil
	})
}
