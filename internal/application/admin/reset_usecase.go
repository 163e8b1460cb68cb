// Package admin operaciones administrativas destructivas sobre los datos de una empresa.
package admin

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-api/internal/application/auth"
	"github.com/jhoicas/stock-api/internal/application/dto"
	"github.com/jhoicas/stock-api/internal/application/inventory"
	"github.com/jhoicas/stock-api/internal/application/ports"
	"github.com/jhoicas/stock-api/internal/domain"
	"github.com/jhoicas/stock-api/internal/domain/authz"
	"github.com/jhoicas/stock-api/internal/domain/entity"
	"github.com/jhoicas/stock-api/pkg/logger"
)

// Tipos de reinicio.
const (
	KindFactory = "FACTORY"
	KindYearEnd = "YEAR_END"
)

// Frases que el usuario debe escribir para confirmar.
const (
	PhraseFactory = "FACTORY RESET"
	PhraseYearEnd = "YEAR END RESET"
)

// Acciones de auditoría.
const (
	AuditFactoryReset = "SYSTEM.FACTORY_RESET"
	AuditYearEndReset = "SYSTEM.YEAR_END_RESET"
)

// PasswordVerifier reautentica al usuario antes de una operación destructiva.
type PasswordVerifier interface {
	VerifyPassword(ctx context.Context, userID, password string) error
}

// ResetUseCase reinicio de fábrica y cierre de año.
//
// FACTORY borra transacciones y datos maestros; quedan empresa, usuarios, roles y auditoría.
// YEAR_END borra transacciones y conserva maestros y stock, dejando un ADJUSTMENT de saldo
// inicial por cada lote/ubicación con saldo para que Σ ledger siga igual al stock.
type ResetUseCase struct {
	tx       inventory.TxRunner
	repos    inventory.Repos
	verifier PasswordVerifier
	locker   ports.Locker
	lockTTL  time.Duration
	log      *logger.Logger
}

// NewResetUseCase construye el caso de uso.
func NewResetUseCase(tx inventory.TxRunner, repos inventory.Repos, verifier PasswordVerifier, locker ports.Locker, lockTTL time.Duration, log *logger.Logger) *ResetUseCase {
	return &ResetUseCase{tx: tx, repos: repos, verifier: verifier, locker: locker, lockTTL: lockTTL, log: log}
}

// FactoryReset reinicio de fábrica solicitado por HTTP.
func (uc *ResetUseCase) FactoryReset(ctx context.Context, s *authz.Session, in dto.ResetRequest) (*dto.ResetResponse, error) {
	return uc.authorized(ctx, s, KindFactory, in)
}

// YearEndReset cierre de año solicitado por HTTP.
func (uc *ResetUseCase) YearEndReset(ctx context.Context, s *authz.Session, in dto.ResetRequest) (*dto.ResetResponse, error) {
	return uc.authorized(ctx, s, KindYearEnd, in)
}

// Phrase frase de confirmación de un tipo de reinicio.
func Phrase(kind string) string {
	if kind == KindYearEnd {
		return PhraseYearEnd
	}
	return PhraseFactory
}

func auditAction(kind string) string {
	if kind == KindYearEnd {
		return AuditYearEndReset
	}
	return AuditFactoryReset
}

func (uc *ResetUseCase) authorized(ctx context.Context, s *authz.Session, kind string, in dto.ResetRequest) (*dto.ResetResponse, error) {
	deny := func(reason string, err error) (*dto.ResetResponse, error) {
		auth.Record(ctx, uc.repos.Audit, uc.log, s.CompanyID, s.UserID, auditAction(kind), "denegado: "+reason, false)
		uc.log.Warn().Str("company_id", s.CompanyID).Str("user_id", s.UserID).Str("kind", kind).
			Str("reason", reason).Msg("reinicio rechazado")
		return nil, err
	}
	if !s.HasPermission(entity.PermSystemReset) {
		return deny("sin permiso", domain.ErrForbidden)
	}
	if err := uc.verifier.VerifyPassword(ctx, s.UserID, in.Password); err != nil {
		return deny("password", err)
	}
	if in.Confirmation != Phrase(kind) {
		return deny("frase", domain.NewValidationError("confirmation", "debe ser exactamente \""+Phrase(kind)+"\""))
	}
	return uc.Execute(ctx, s.CompanyID, s.UserID, kind)
}

// Execute ejecuta el reinicio sin verificar credenciales (CLI de operador y flujo HTTP ya
// autorizado). Un reinicio en curso para la empresa devuelve ErrLocked.
func (uc *ResetUseCase) Execute(ctx context.Context, companyID, userID, kind string) (*dto.ResetResponse, error) {
	if kind != KindFactory && kind != KindYearEnd {
		return nil, domain.NewValidationError("kind", "debe ser FACTORY o YEAR_END")
	}
	company, err := uc.repos.Companies.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}

	now := time.Now().UTC()
	out := &dto.ResetResponse{Kind: kind, CompanyID: companyID, ExecutedAt: now}
	err = inventory.WithLock(ctx, uc.locker, "company-reset:"+companyID, uc.lockTTL, func() error {
		return uc.tx.Run(ctx, func(r inventory.Repos) error {
			if err := r.Maintenance.PurgeTransactions(ctx, companyID); err != nil {
				return fmt.Errorf("purge transactions: %w", err)
			}
			if kind == KindFactory {
				if err := r.Maintenance.PurgeMasterData(ctx, companyID); err != nil {
					return fmt.Errorf("purge master data: %w", err)
				}
				return nil
			}
			n, err := openingBalances(ctx, r, companyID, userID, now)
			out.OpeningBalances = n
			return err
		})
	})
	if err != nil {
		uc.log.Error().Err(err).Str("company_id", companyID).Str("kind", kind).Msg("reinicio fallido")
		return nil, err
	}
	auth.Record(ctx, uc.repos.Audit, uc.log, companyID, userID, auditAction(kind),
		fmt.Sprintf("saldos iniciales: %d", out.OpeningBalances), true)
	uc.log.Info().Str("company_id", companyID).Str("user_id", userID).Str("kind", kind).
		Int("opening_balances", out.OpeningBalances).Msg("reinicio ejecutado")
	return out, nil
}

// Preview calcula el resultado de un reinicio sin modificar datos (--dry-run).
func (uc *ResetUseCase) Preview(ctx context.Context, companyID, kind string) (*dto.ResetResponse, error) {
	if kind != KindFactory && kind != KindYearEnd {
		return nil, domain.NewValidationError("kind", "debe ser FACTORY o YEAR_END")
	}
	out := &dto.ResetResponse{Kind: kind, CompanyID: companyID, ExecutedAt: time.Now().UTC()}
	if kind == KindFactory {
		return out, nil
	}
	snapshot, err := uc.repos.Stock.Snapshot(ctx, companyID, "")
	if err != nil {
		return nil, err
	}
	for _, q := range snapshot {
		if !q.IsZero() {
			out.OpeningBalances++
		}
	}
	return out, nil
}

// openingBalances escribe directamente en el ledger: el stock ya tiene esas cantidades.
func openingBalances(ctx context.Context, r inventory.Repos, companyID, userID string, now time.Time) (int, error) {
	snapshot, err := r.Stock.Snapshot(ctx, companyID, "")
	if err != nil {
		return 0, err
	}
	reference := "SALDO-INICIAL-" + now.Format("2006")
	products := make(map[string]string)
	n := 0
	for key, qty := range snapshot {
		if qty.IsZero() {
			continue
		}
		productID, ok := products[key.BatchID]
		if !ok {
			b, err := r.Batches.GetByID(ctx, key.BatchID)
			if err != nil {
				return 0, err
			}
			if b == nil {
				return 0, fmt.Errorf("lote %s: %w", key.BatchID, domain.ErrNotFound)
			}
			productID = b.ProductID
			products[key.BatchID] = productID
		}
		entry := &entity.StockLedgerEntry{
			ID:           uuid.New().String(),
			CompanyID:    companyID,
			BatchID:      key.BatchID,
			ProductID:    productID,
			LocationType: key.LocationType,
			LocationID:   key.LocationID,
			MovementType: entity.MovementADJUSTMENT,
			Quantity:     qty,
			Reference:    reference,
			SourceType:   entity.SourceOpeningBalance,
			UserID:       userID,
			MovementDate: now,
			CreatedAt:    now,
		}
		if err := r.Ledger.Append(ctx, entry); err != nil {
			return 0, err
		}
		n++
	}
	return n, nil
}
