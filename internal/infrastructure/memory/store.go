// Package memory implementa los repositorios en memoria. Se usa con STORAGE_DRIVER=memory
// (desarrollo/demo) y en los tests de casos de uso.
//
// Cada transacción trabaja sobre una copia del estado y la publica solo si fn termina sin
// error, lo que reproduce el rollback de PostgreSQL. Las transacciones se serializan con un
// único mutex, equivalente a bloquear todas las filas que tocan.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-api/internal/application/inventory"
	"github.com/jhoicas/stock-api/internal/domain/entity"
	stock "github.com/jhoicas/stock-api/internal/domain/inventory"
	"github.com/jhoicas/stock-api/internal/domain/repository"
)

var _ inventory.TxRunner = (*Store)(nil)

type state struct {
	companies       map[string]entity.Company
	users           map[string]entity.User
	roles           map[string]entity.Role
	audit           []entity.AuditLog
	locations       map[string]entity.Location
	products        map[string]entity.Product
	units           map[string]entity.UnitOfMeasure
	batches         map[string]entity.ProductBatch
	stock           map[stock.StockKey]entity.BatchStock
	ledger          []entity.StockLedgerEntry
	corrections     map[string]entity.StockCorrection
	sellCorrections map[string]entity.SellStockCorrection
	sells           map[string]entity.Sell
	transfers       map[string]entity.Transfer
	purchases       map[string]entity.Purchase
}

func newState() *state {
	return &state{
		companies:       map[string]entity.Company{},
		users:           map[string]entity.User{},
		roles:           map[string]entity.Role{},
		locations:       map[string]entity.Location{},
		products:        map[string]entity.Product{},
		units:           map[string]entity.UnitOfMeasure{},
		batches:         map[string]entity.ProductBatch{},
		stock:           map[stock.StockKey]entity.BatchStock{},
		corrections:     map[string]entity.StockCorrection{},
		sellCorrections: map[string]entity.SellStockCorrection{},
		sells:           map[string]entity.Sell{},
		transfers:       map[string]entity.Transfer{},
		purchases:       map[string]entity.Purchase{},
	}
}

// clone copia los mapas. Los valores guardados nunca se modifican en sitio (los repos
// guardan y devuelven copias profundas), así que compartirlos entre estados es seguro.
func (s *state) clone() *state {
	return &state{
		companies:       cloneMap(s.companies),
		users:           cloneMap(s.users),
		roles:           cloneMap(s.roles),
		audit:           append([]entity.AuditLog(nil), s.audit...),
		locations:       cloneMap(s.locations),
		products:        cloneMap(s.products),
		units:           cloneMap(s.units),
		batches:         cloneMap(s.batches),
		stock:           cloneMap(s.stock),
		ledger:          append([]entity.StockLedgerEntry(nil), s.ledger...),
		corrections:     cloneMap(s.corrections),
		sellCorrections: cloneMap(s.sellCorrections),
		sells:           cloneMap(s.sells),
		transfers:       cloneMap(s.transfers),
		purchases:       cloneMap(s.purchases),
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Store base de datos en memoria. Implementa inventory.TxRunner.
type Store struct {
	mu sync.Mutex
	st *state
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{st: newState()}
}

// Repos devuelve repositorios fuera de transacción: cada llamada toma el mutex.
// No usarlos dentro de Run (el mutex ya está tomado).
func (s *Store) Repos() inventory.Repos {
	return reposFor(&db{store: s})
}

// Run ejecuta fn sobre una copia del estado y la publica si fn devuelve nil.
func (s *Store) Run(ctx context.Context, fn func(r inventory.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := s.st.clone()
	if err := fn(reposFor(&db{store: s, tx: tx})); err != nil {
		return err
	}
	s.st = tx
	return nil
}

// db resuelve el estado sobre el que opera un repo: la copia de la tx o el estado publicado.
type db struct {
	store *Store
	tx    *state
}

func (d *db) do(fn func(st *state) error) error {
	if d.tx != nil {
		return fn(d.tx)
	}
	d.store.mu.Lock()
	defer d.store.mu.Unlock()
	return fn(d.store.st)
}

func reposFor(d *db) inventory.Repos {
	return inventory.Repos{
		Companies:       &companyRepo{d},
		Users:           &userRepo{d},
		Roles:           &roleRepo{d},
		Audit:           &auditRepo{d},
		Locations:       &locationRepo{d},
		Products:        &productRepo{d},
		Units:           &unitRepo{d},
		Batches:         &batchRepo{d},
		Stock:           &stockRepo{d},
		Ledger:          &ledgerRepo{d},
		Corrections:     &correctionRepo{d},
		SellCorrections: &sellCorrectionRepo{d},
		Sells:           &sellRepo{d},
		Transfers:       &transferRepo{d},
		Purchases:       &purchaseRepo{d},
		Maintenance:     &maintenanceRepo{d},
	}
}

// paginate aplica offset/limit. Limit <= 0 devuelve todo.
func paginate[T any](all []T, p repository.Page) ([]T, int) {
	total := len(all)
	if p.Offset >= total {
		return []T{}, total
	}
	end := total
	if p.Limit > 0 && p.Offset+p.Limit < total {
		end = p.Offset + p.Limit
	}
	return all[p.Offset:end], total
}

func sumInto(m map[stock.StockKey]decimal.Decimal, k stock.StockKey, q decimal.Decimal) {
	m[k] = m[k].Add(q)
}

func sortStrings(ss []string) []string {
	sort.Strings(ss)
	return ss
}
