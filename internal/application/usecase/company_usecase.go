package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-api/internal/application/auth"
	"github.com/jhoicas/stock-api/internal/application/dto"
	"github.com/jhoicas/stock-api/internal/application/inventory"
	"github.com/jhoicas/stock-api/internal/domain"
	"github.com/jhoicas/stock-api/internal/domain/entity"
	"github.com/jhoicas/stock-api/pkg/logger"
)

// AdminRoleName nombre del rol con todos los permisos creado junto a la empresa.
const AdminRoleName = "Administrador"

// CompanyUseCase alta de empresas (tenant) con su rol y usuario administrador.
type CompanyUseCase struct {
	tx    inventory.TxRunner
	repos inventory.Repos
	log   *logger.Logger
}

// NewCompanyUseCase construye el caso de uso.
func NewCompanyUseCase(tx inventory.TxRunner, repos inventory.Repos, log *logger.Logger) *CompanyUseCase {
	return &CompanyUseCase{tx: tx, repos: repos, log: log}
}

// Create crea empresa, rol administrador (todos los permisos) y usuario administrador en una
// sola transacción. Devuelve ErrEmailAlreadyExists si el email del admin ya está registrado.
func (uc *CompanyUseCase) Create(ctx context.Context, in dto.CreateCompanyRequest) (*dto.CompanyBootstrapResponse, error) {
	now := time.Now().UTC()
	company := &entity.Company{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(in.Name),
		TaxID:     strings.TrimSpace(in.TaxID),
		Status:    "active",
		CreatedAt: now,
		UpdatedAt: now,
	}
	role := &entity.Role{
		ID:          uuid.New().String(),
		CompanyID:   company.ID,
		Name:        AdminRoleName,
		Permissions: append([]string(nil), entity.AllPermissions...),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	admin, err := auth.NewUser(company.ID, in.AdminEmail, in.AdminPassword, in.AdminName, role.ID)
	if err != nil {
		return nil, err
	}

	err = uc.tx.Run(ctx, func(r inventory.Repos) error {
		existing, err := r.Users.GetByEmail(ctx, admin.Email)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrEmailAlreadyExists
		}
		if err := r.Companies.Create(ctx, company); err != nil {
			return err
		}
		if err := r.Roles.Create(ctx, role); err != nil {
			return err
		}
		return r.Users.Create(ctx, admin)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("company_id", company.ID).Str("admin_id", admin.ID).Msg("empresa creada")
	return &dto.CompanyBootstrapResponse{
		Company: ToCompanyResponse(company),
		Role:    auth.ToRoleResponse(role),
		Admin:   auth.ToUserResponse(admin),
	}, nil
}

// GetByID obtiene una empresa por ID.
func (uc *CompanyUseCase) GetByID(ctx context.Context, id string) (*dto.CompanyResponse, error) {
	company, err := uc.repos.Companies.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	out := ToCompanyResponse(company)
	return &out, nil
}

// ToCompanyResponse mapea una empresa.
func ToCompanyResponse(c *entity.Company) dto.CompanyResponse {
	return dto.CompanyResponse{
		ID:        c.ID,
		Name:      c.Name,
		TaxID:     c.TaxID,
		Status:    c.Status,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
