package memory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-api/internal/domain/entity"
	stock "github.com/jhoicas/stock-api/internal/domain/inventory"
	"github.com/jhoicas/stock-api/internal/domain/repository"
)

type stockRepo struct{ d *db }

func (r *stockRepo) Get(_ context.Context, batchID string, loc entity.LocationRef) (*entity.BatchStock, error) {
	var out *entity.BatchStock
	err := r.d.do(func(st *state) error {
		s, ok := st.stock[stock.KeyOf(batchID, loc)]
		if !ok {
			s = entity.BatchStock{BatchID: batchID, LocationType: loc.Type, LocationID: loc.ID, Quantity: decimal.Zero}
		}
		out = &s
		return nil
	})
	return out, err
}

// GetForUpdate equivale a Get: la tx en memoria ya tiene el estado en exclusiva.
func (r *stockRepo) GetForUpdate(ctx context.Context, batchID string, loc entity.LocationRef) (*entity.BatchStock, error) {
	return r.Get(ctx, batchID, loc)
}

func (r *stockRepo) Upsert(_ context.Context, s *entity.BatchStock) error {
	return r.d.do(func(st *state) error {
		st.stock[stock.KeyOf(s.BatchID, s.Location())] = *s
		return nil
	})
}

func (r *stockRepo) ListByBatch(_ context.Context, batchID string) ([]*entity.BatchStock, error) {
	var out []*entity.BatchStock
	err := r.d.do(func(st *state) error {
		for k, s := range st.stock {
			if k.BatchID == batchID {
				s := s
				out = append(out, &s)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Location().Key() < out[j].Location().Key() })
	return out, err
}

func (r *stockRepo) Snapshot(_ context.Context, companyID, batchID string) (map[stock.StockKey]decimal.Decimal, error) {
	out := make(map[stock.StockKey]decimal.Decimal)
	err := r.d.do(func(st *state) error {
		for k, s := range st.stock {
			if batchID != "" && k.BatchID != batchID {
				continue
			}
			if b, ok := st.batches[k.BatchID]; !ok || b.CompanyID != companyID {
				continue
			}
			out[k] = s.Quantity
		}
		return nil
	})
	return out, err
}

type ledgerRepo struct{ d *db }

func (r *ledgerRepo) Append(_ context.Context, e *entity.StockLedgerEntry) error {
	return r.d.do(func(st *state) error {
		st.ledger = append(st.ledger, *e)
		return nil
	})
}

func matchLedger(e entity.StockLedgerEntry, f repository.LedgerFilter) bool {
	switch {
	case e.CompanyID != f.CompanyID,
		f.BatchID != "" && e.BatchID != f.BatchID,
		f.ProductID != "" && e.ProductID != f.ProductID,
		f.LocationType != "" && e.LocationType != f.LocationType,
		f.LocationID != "" && e.LocationID != f.LocationID,
		f.MovementType != "" && e.MovementType != f.MovementType,
		f.SourceType != "" && e.SourceType != f.SourceType:
		return false
	}
	return f.Date.Contains(e.MovementDate)
}

// ListAll devuelve las entradas de la más reciente a la más antigua.
func (r *ledgerRepo) ListAll(_ context.Context, f repository.LedgerFilter) ([]*entity.StockLedgerEntry, error) {
	var out []*entity.StockLedgerEntry
	err := r.d.do(func(st *state) error {
		for i := len(st.ledger) - 1; i >= 0; i-- {
			if matchLedger(st.ledger[i], f) {
				e := st.ledger[i]
				out = append(out, &e)
			}
		}
		return nil
	})
	return out, err
}

func (r *ledgerRepo) List(ctx context.Context, f repository.LedgerFilter, page repository.Page) ([]*entity.StockLedgerEntry, int, error) {
	all, err := r.ListAll(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	list, total := paginate(all, page)
	return list, total, nil
}

func (r *ledgerRepo) Sums(_ context.Context, companyID, batchID string) (map[stock.StockKey]decimal.Decimal, error) {
	out := make(map[stock.StockKey]decimal.Decimal)
	err := r.d.do(func(st *state) error {
		for _, e := range st.ledger {
			if e.CompanyID != companyID || (batchID != "" && e.BatchID != batchID) {
				continue
			}
			sumInto(out, stock.StockKey{BatchID: e.BatchID, LocationType: e.LocationType, LocationID: e.LocationID}, e.Quantity)
		}
		return nil
	})
	return out, err
}
