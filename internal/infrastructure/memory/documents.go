package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/stock-api/internal/domain"
	"github.com/jhoicas/stock-api/internal/domain/entity"
	"github.com/jhoicas/stock-api/internal/domain/repository"
)

func newestFirst[T any](list []*T, created func(*T) time.Time, id func(*T) string) {
	sort.Slice(list, func(i, j int) bool {
		ci, cj := created(list[i]), created(list[j])
		if !ci.Equal(cj) {
			return ci.After(cj)
		}
		return id(list[i]) < id(list[j])
	})
}

type correctionRepo struct{ d *db }

func (r *correctionRepo) Create(_ context.Context, c *entity.StockCorrection) error {
	return r.d.do(func(st *state) error {
		for _, existing := range st.corrections {
			if existing.CompanyID == c.CompanyID && existing.Reference == c.Reference {
				return domain.ErrDuplicate
			}
		}
		st.corrections[c.ID] = cloneCorrection(*c)
		return nil
	})
}

func (r *correctionRepo) GetByID(_ context.Context, id string) (*entity.StockCorrection, error) {
	var out *entity.StockCorrection
	err := r.d.do(func(st *state) error {
		if c, ok := st.corrections[id]; ok {
			c = cloneCorrection(c)
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *correctionRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockCorrection, error) {
	return r.GetByID(ctx, id)
}

func (r *correctionRepo) Update(_ context.Context, c *entity.StockCorrection) error {
	return r.d.do(func(st *state) error {
		if _, ok := st.corrections[c.ID]; !ok {
			return domain.ErrNotFound
		}
		st.corrections[c.ID] = cloneCorrection(*c)
		return nil
	})
}

func (r *correctionRepo) Delete(_ context.Context, id string) error {
	return r.d.do(func(st *state) error {
		if _, ok := st.corrections[id]; !ok {
			return domain.ErrNotFound
		}
		delete(st.corrections, id)
		return nil
	})
}

func (r *correctionRepo) List(_ context.Context, f repository.CorrectionFilter, page repository.Page) ([]*entity.StockCorrection, int, error) {
	var all []*entity.StockCorrection
	err := r.d.do(func(st *state) error {
		for _, c := range st.corrections {
			c := c
			if c.CompanyID != f.CompanyID ||
				(f.Status != "" && c.Status != f.Status) ||
				(f.Reason != "" && c.Reason != f.Reason) ||
				!f.Created.Contains(c.CreatedAt) {
				continue
			}
			loc := c.Location()
			if (f.LocationType != "" && loc.Type != f.LocationType) || (f.LocationID != "" && loc.ID != f.LocationID) {
				continue
			}
			c = cloneCorrection(c)
			all = append(all, &c)
		}
		return nil
	})
	newestFirst(all, func(c *entity.StockCorrection) time.Time { return c.CreatedAt }, func(c *entity.StockCorrection) string { return c.ID })
	list, total := paginate(all, page)
	return list, total, err
}

type sellCorrectionRepo struct{ d *db }

func (r *sellCorrectionRepo) Create(_ context.Context, c *entity.SellStockCorrection) error {
	return r.d.do(func(st *state) error {
		st.sellCorrections[c.ID] = cloneSellCorrection(*c)
		return nil
	})
}

func (r *sellCorrectionRepo) GetByID(_ context.Context, id string) (*entity.SellStockCorrection, error) {
	var out *entity.SellStockCorrection
	err := r.d.do(func(st *state) error {
		if c, ok := st.sellCorrections[id]; ok {
			c = cloneSellCorrection(c)
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *sellCorrectionRepo) GetForUpdate(ctx context.Context, id string) (*entity.SellStockCorrection, error) {
	return r.GetByID(ctx, id)
}

func (r *sellCorrectionRepo) Update(_ context.Context, c *entity.SellStockCorrection) error {
	return r.d.do(func(st *state) error {
		if _, ok := st.sellCorrections[c.ID]; !ok {
			return domain.ErrNotFound
		}
		st.sellCorrections[c.ID] = cloneSellCorrection(*c)
		return nil
	})
}

func (r *sellCorrectionRepo) ListBySell(_ context.Context, sellID string) ([]*entity.SellStockCorrection, error) {
	var out []*entity.SellStockCorrection
	err := r.d.do(func(st *state) error {
		for _, c := range st.sellCorrections {
			c := c
			if c.SellID == sellID {
				c = cloneSellCorrection(c)
				out = append(out, &c)
			}
		}
		return nil
	})
	newestFirst(out, func(c *entity.SellStockCorrection) time.Time { return c.CreatedAt }, func(c *entity.SellStockCorrection) string { return c.ID })
	return out, err
}

func (r *sellCorrectionRepo) List(_ context.Context, f repository.SellCorrectionFilter, page repository.Page) ([]*entity.SellStockCorrection, int, error) {
	var all []*entity.SellStockCorrection
	err := r.d.do(func(st *state) error {
		for _, c := range st.sellCorrections {
			c := c
			if c.CompanyID != f.CompanyID ||
				(f.SellID != "" && c.SellID != f.SellID) ||
				(f.Status != "" && c.Status != f.Status) ||
				(f.IsChecked != nil && c.IsChecked != *f.IsChecked) {
				continue
			}
			c = cloneSellCorrection(c)
			all = append(all, &c)
		}
		return nil
	})
	newestFirst(all, func(c *entity.SellStockCorrection) time.Time { return c.CreatedAt }, func(c *entity.SellStockCorrection) string { return c.ID })
	list, total := paginate(all, page)
	return list, total, err
}

type sellRepo struct{ d *db }

func (r *sellRepo) Create(_ context.Context, s *entity.Sell) error {
	return r.d.do(func(st *state) error {
		for _, existing := range st.sells {
			if existing.CompanyID == s.CompanyID && existing.InvoiceNo == s.InvoiceNo {
				return domain.ErrDuplicate
			}
		}
		st.sells[s.ID] = cloneSell(*s)
		return nil
	})
}

func (r *sellRepo) GetByID(_ context.Context, id string) (*entity.Sell, error) {
	var out *entity.Sell
	err := r.d.do(func(st *state) error {
		if s, ok := st.sells[id]; ok {
			s = cloneSell(s)
			out = &s
		}
		return nil
	})
	return out, err
}

// GetForUpdate equivale a GetByID: la tx en memoria ya tiene el estado en exclusiva.
func (r *sellRepo) GetForUpdate(ctx context.Context, id string) (*entity.Sell, error) {
	return r.GetByID(ctx, id)
}

func (r *sellRepo) GetByInvoiceNo(_ context.Context, companyID, invoiceNo string) (*entity.Sell, error) {
	var out *entity.Sell
	err := r.d.do(func(st *state) error {
		for _, s := range st.sells {
			s := s
			if s.CompanyID == companyID && s.InvoiceNo == invoiceNo {
				s = cloneSell(s)
				out = &s
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *sellRepo) List(_ context.Context, f repository.DocumentFilter, page repository.Page) ([]*entity.Sell, int, error) {
	var all []*entity.Sell
	err := r.d.do(func(st *state) error {
		for _, s := range st.sells {
			s := s
			if s.CompanyID != f.CompanyID ||
				(f.LocationType != "" && s.LocationType != f.LocationType) ||
				(f.LocationID != "" && s.LocationID != f.LocationID) ||
				!f.Created.Contains(s.SoldAt) {
				continue
			}
			s = cloneSell(s)
			all = append(all, &s)
		}
		return nil
	})
	newestFirst(all, func(s *entity.Sell) time.Time { return s.SoldAt }, func(s *entity.Sell) string { return s.ID })
	list, total := paginate(all, page)
	return list, total, err
}

type transferRepo struct{ d *db }

func (r *transferRepo) Create(_ context.Context, t *entity.Transfer) error {
	return r.d.do(func(st *state) error {
		st.transfers[t.ID] = cloneTransfer(*t)
		return nil
	})
}

func (r *transferRepo) GetByID(_ context.Context, id string) (*entity.Transfer, error) {
	var out *entity.Transfer
	err := r.d.do(func(st *state) error {
		if t, ok := st.transfers[id]; ok {
			t = cloneTransfer(t)
			out = &t
		}
		return nil
	})
	return out, err
}

// List con filtro de ubicación incluye traslados que salen o llegan a ella.
func (r *transferRepo) List(_ context.Context, f repository.DocumentFilter, page repository.Page) ([]*entity.Transfer, int, error) {
	var all []*entity.Transfer
	err := r.d.do(func(st *state) error {
		for _, t := range st.transfers {
			t := t
			if t.CompanyID != f.CompanyID || !f.Created.Contains(t.CreatedAt) {
				continue
			}
			if f.LocationID != "" && t.FromLocationID != f.LocationID && t.ToLocationID != f.LocationID {
				continue
			}
			if f.LocationType != "" && t.FromLocationType != f.LocationType && t.ToLocationType != f.LocationType {
				continue
			}
			t = cloneTransfer(t)
			all = append(all, &t)
		}
		return nil
	})
	newestFirst(all, func(t *entity.Transfer) time.Time { return t.CreatedAt }, func(t *entity.Transfer) string { return t.ID })
	list, total := paginate(all, page)
	return list, total, err
}

type purchaseRepo struct{ d *db }

func (r *purchaseRepo) Create(_ context.Context, p *entity.Purchase) error {
	return r.d.do(func(st *state) error {
		st.purchases[p.ID] = clonePurchase(*p)
		return nil
	})
}

func (r *purchaseRepo) GetByID(_ context.Context, id string) (*entity.Purchase, error) {
	var out *entity.Purchase
	err := r.d.do(func(st *state) error {
		if p, ok := st.purchases[id]; ok {
			p = clonePurchase(p)
			out = &p
		}
		return nil
	})
	return out, err
}

func (r *purchaseRepo) List(_ context.Context, f repository.DocumentFilter, page repository.Page) ([]*entity.Purchase, int, error) {
	var all []*entity.Purchase
	err := r.d.do(func(st *state) error {
		for _, p := range st.purchases {
			p := p
			if p.CompanyID != f.CompanyID || !f.Created.Contains(p.CreatedAt) {
				continue
			}
			if (f.LocationType != "" && f.LocationType != entity.LocationStore) || (f.LocationID != "" && p.StoreID != f.LocationID) {
				continue
			}
			p = clonePurchase(p)
			all = append(all, &p)
		}
		return nil
	})
	newestFirst(all, func(p *entity.Purchase) time.Time { return p.CreatedAt }, func(p *entity.Purchase) string { return p.ID })
	list, total := paginate(all, page)
	return list, total, err
}

type maintenanceRepo struct{ d *db }

func (r *maintenanceRepo) PurgeTransactions(_ context.Context, companyID string) error {
	return r.d.do(func(st *state) error {
		for id, s := range st.sells {
			if s.CompanyID == companyID {
				delete(st.sells, id)
			}
		}
		for id, c := range st.corrections {
			if c.CompanyID == companyID {
				delete(st.corrections, id)
			}
		}
		for id, c := range st.sellCorrections {
			if c.CompanyID == companyID {
				delete(st.sellCorrections, id)
			}
		}
		for id, t := range st.transfers {
			if t.CompanyID == companyID {
				delete(st.transfers, id)
			}
		}
		for id, p := range st.purchases {
			if p.CompanyID == companyID {
				delete(st.purchases, id)
			}
		}
		for id, b := range st.batches {
			if b.CompanyID == companyID && b.PurchaseID != "" {
				b.PurchaseID = ""
				st.batches[id] = b
			}
		}
		kept := st.ledger[:0:0]
		for _, e := range st.ledger {
			if e.CompanyID != companyID {
				kept = append(kept, e)
			}
		}
		st.ledger = kept
		return nil
	})
}

func (r *maintenanceRepo) PurgeMasterData(_ context.Context, companyID string) error {
	return r.d.do(func(st *state) error {
		for k := range st.stock {
			if b, ok := st.batches[k.BatchID]; ok && b.CompanyID == companyID {
				delete(st.stock, k)
			}
		}
		for id, b := range st.batches {
			if b.CompanyID == companyID {
				delete(st.batches, id)
			}
		}
		for id, p := range st.products {
			if p.CompanyID == companyID {
				delete(st.products, id)
			}
		}
		for id, u := range st.units {
			if u.CompanyID == companyID {
				delete(st.units, id)
			}
		}
		for id, l := range st.locations {
			if l.CompanyID == companyID {
				delete(st.locations, id)
			}
		}
		return nil
	})
}
