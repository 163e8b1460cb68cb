package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-api/internal/application/admin"
	"github.com/jhoicas/stock-api/internal/application/auth"
	"github.com/jhoicas/stock-api/internal/application/correction"
	"github.com/jhoicas/stock-api/internal/application/dto"
	"github.com/jhoicas/stock-api/internal/application/inventory"
	"github.com/jhoicas/stock-api/internal/application/ports"
	"github.com/jhoicas/stock-api/internal/application/usecase"
	"github.com/jhoicas/stock-api/internal/domain"
	"github.com/jhoicas/stock-api/internal/infrastructure/cache"
	"github.com/jhoicas/stock-api/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/stock-api/internal/infrastructure/pdf"
	"github.com/jhoicas/stock-api/internal/infrastructure/postgres"
	infraxlsx "github.com/jhoicas/stock-api/internal/infrastructure/xlsx"
	httpRouter "github.com/jhoicas/stock-api/internal/interfaces/http"
	"github.com/jhoicas/stock-api/pkg/config"
	"github.com/jhoicas/stock-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("storage", cfg.Storage.Driver).
		Bool("redis", cfg.Redis.Enabled()).
		Msg("iniciando aplicación")

	ctx := context.Background()

	// Persistencia: PostgreSQL o store en memoria
	var (
		tx    inventory.TxRunner
		repos inventory.Repos
	)
	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		tx = postgres.NewTxRunner(pool)
		repos = postgres.NewRepos(pool)
	default:
		store := memory.NewStore()
		tx = store
		repos = store.Repos()
	}

	// Candados y sesiones: Redis si está configurado, si no en proceso
	var (
		locker   ports.Locker
		sessions ports.SessionCache
	)
	if cfg.Redis.Enabled() {
		rdb, err := cache.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer rdb.Close()
		locker = cache.NewLocker(rdb, log)
		sessions = cache.NewSessionCache(rdb)
	} else {
		locker = memory.NewLocker()
		sessions = memory.NewSessionCache()
	}

	engine := inventory.NewStockEngine()
	lockTTL := cfg.Redis.LockTTL

	authUC := auth.NewAuthUseCase(repos.Users, repos.Roles, sessions, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, log)
	companyUC := usecase.NewCompanyUseCase(tx, repos, log)

	if cfg.Storage.Driver == config.StorageMemory {
		seedAdmin(ctx, companyUC, cfg.Seed, log)
	}

	app := httpRouter.NewApp(cfg.App.Name, log)

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Stock API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:            authUC,
		RoleUC:            auth.NewRoleUseCase(repos.Roles, repos.Users, repos.Audit, sessions, log),
		UserUC:            usecase.NewUserUseCase(repos.Users, repos.Roles, repos.Audit, sessions, log),
		CompanyUC:         companyUC,
		LocationUC:        usecase.NewLocationUseCase(repos.Locations),
		ProductUC:         usecase.NewProductUseCase(repos.Products, repos.Units),
		BatchUC:           inventory.NewBatchUseCase(repos),
		LedgerUC:          inventory.NewLedgerUseCase(repos, infraxlsx.NewLedgerExporter()),
		ReconciliationUC:  inventory.NewReconciliationUseCase(repos, log),
		SellUC:            inventory.NewSellUseCase(tx, repos, engine, log),
		TransferUC:        inventory.NewTransferUseCase(tx, repos, engine, log),
		PurchaseUC:        inventory.NewPurchaseUseCase(tx, repos, engine, log),
		StockCorrectionUC: correction.NewStockCorrectionUseCase(tx, repos, engine, locker, lockTTL, infrapdf.NewMarotoCorrectionRenderer(), log),
		SellCorrectionUC:  correction.NewSellCorrectionUseCase(tx, repos, engine, locker, lockTTL, log),
		ResetUC:           admin.NewResetUseCase(tx, repos, authUC, locker, lockTTL, log),
		JWTSecret:         cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// seedAdmin crea una empresa demo con su administrador para arrancar con el driver memory.
func seedAdmin(ctx context.Context, companyUC *usecase.CompanyUseCase, seed config.SeedConfig, log *logger.Logger) {
	if seed.AdminEmail == "" || seed.AdminPassword == "" {
		log.Warn().Msg("driver memory sin SEED_ADMIN_EMAIL/SEED_ADMIN_PASSWORD: cree la empresa con POST /api/companies")
		return
	}
	out, err := companyUC.Create(ctx, dto.CreateCompanyRequest{
		Name:          "Demo",
		AdminEmail:    seed.AdminEmail,
		AdminPassword: seed.AdminPassword,
		AdminName:     "Administrador",
	})
	if err != nil {
		log.Fatal().Err(err).Str("code", domain.CodeOf(err)).Msg("seed del administrador")
	}
	log.Info().Str("company_id", out.Company.ID).Str("email", seed.AdminEmail).Msg("administrador inicial creado")
}
