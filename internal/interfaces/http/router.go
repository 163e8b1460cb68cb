package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/stock-api/internal/application/admin"
	"github.com/jhoicas/stock-api/internal/application/auth"
	"github.com/jhoicas/stock-api/internal/application/correction"
	"github.com/jhoicas/stock-api/internal/application/inventory"
	"github.com/jhoicas/stock-api/internal/application/usecase"
	"github.com/jhoicas/stock-api/internal/domain/entity"
	"github.com/jhoicas/stock-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC            *auth.AuthUseCase
	RoleUC            *auth.RoleUseCase
	UserUC            *usecase.UserUseCase
	CompanyUC         *usecase.CompanyUseCase
	LocationUC        *usecase.LocationUseCase
	ProductUC         *usecase.ProductUseCase
	BatchUC           *inventory.BatchUseCase
	LedgerUC          *inventory.LedgerUseCase
	ReconciliationUC  *inventory.ReconciliationUseCase
	SellUC            *inventory.SellUseCase
	TransferUC        *inventory.TransferUseCase
	PurchaseUC        *inventory.PurchaseUseCase
	StockCorrectionUC *correction.StockCorrectionUseCase
	SellCorrectionUC  *correction.SellCorrectionUseCase
	ResetUC           *admin.ResetUseCase
	JWTSecret         string
}

// NewApp instancia Fiber con el manejador de errores, recover y el log de peticiones.
func NewApp(name string, log *logger.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      name,
		ErrorHandler: FiberErrorHandler,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(RequestLogger(log))
	app.Use(recover.New())
	return app
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Públicas: login y alta de empresa
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/login", authHandler.Login)
	companyHandler := NewCompanyHandler(deps.CompanyUC)
	api.Post("/companies", companyHandler.Create)

	// Rutas protegidas (Bearer Token + sesión de permisos)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret, deps.AuthUC))

	protected.Post("/auth/register", RequirePermission(entity.PermUserManage), authHandler.Register)
	protected.Post("/auth/logout", authHandler.Logout)
	protected.Get("/auth/me", authHandler.Me)
	protected.Get("/companies/:id", companyHandler.GetByID)

	// Usuarios y roles
	userHandler := NewUserHandler(deps.UserUC, deps.RoleUC)
	users := protected.Group("/users", RequirePermission(entity.PermUserManage))
	users.Get("/", userHandler.ListUsers)
	users.Get("/:id", userHandler.GetUser)
	users.Put("/:id/role", userHandler.AssignRole)
	users.Put("/:id/status", userHandler.SetStatus)

	roles := protected.Group("/roles", RequirePermission(entity.PermRoleManage))
	roles.Get("/permissions", userHandler.Permissions)
	roles.Get("/", userHandler.ListRoles)
	roles.Post("/", userHandler.CreateRole)
	roles.Get("/:id", userHandler.GetRole)
	roles.Put("/:id", userHandler.UpdateRole)
	roles.Delete("/:id", userHandler.DeleteRole)

	// Ubicaciones
	locationHandler := NewLocationHandler(deps.LocationUC)
	locations := protected.Group("/locations")
	locations.Get("/", RequirePermission(entity.PermLocationView), locationHandler.List)
	locations.Get("/:id", RequirePermission(entity.PermLocationView), locationHandler.GetByID)
	locations.Post("/", RequirePermission(entity.PermLocationManage), locationHandler.Create)
	locations.Put("/:id", RequirePermission(entity.PermLocationManage), locationHandler.Update)
	locations.Delete("/:id", RequirePermission(entity.PermLocationManage), locationHandler.Delete)

	// Productos y unidades
	productHandler := NewProductHandler(deps.ProductUC)
	products := protected.Group("/products")
	products.Get("/", RequirePermission(entity.PermProductView), productHandler.List)
	products.Get("/:id", RequirePermission(entity.PermProductView), productHandler.GetByID)
	products.Post("/", RequirePermission(entity.PermProductManage), productHandler.Create)
	products.Put("/:id", RequirePermission(entity.PermProductManage), productHandler.Update)
	products.Delete("/:id", RequirePermission(entity.PermProductManage), productHandler.Delete)

	units := protected.Group("/units")
	units.Get("/", RequirePermission(entity.PermProductView), productHandler.ListUnits)
	units.Post("/", RequirePermission(entity.PermProductManage), productHandler.CreateUnit)
	units.Delete("/:id", RequirePermission(entity.PermProductManage), productHandler.DeleteUnit)

	// Lotes, ledger y conciliación
	inventoryHandler := NewInventoryHandler(deps.BatchUC, deps.LedgerUC, deps.ReconciliationUC)
	batches := protected.Group("/batches", RequirePermission(entity.PermBatchView))
	batches.Get("/", inventoryHandler.ListBatches)
	batches.Get("/low-stock", inventoryHandler.LowStock)
	batches.Get("/:id", inventoryHandler.GetBatch)

	ledger := protected.Group("/stock-ledger", RequirePermission(entity.PermLedgerView))
	ledger.Get("/", inventoryHandler.ListLedger)
	ledger.Get("/export", inventoryHandler.ExportLedger)
	protected.Get("/reconciliation", RequirePermission(entity.PermReconciliationView), inventoryHandler.Reconcile)

	// Documentos
	documentHandler := NewDocumentHandler(deps.SellUC, deps.TransferUC, deps.PurchaseUC)
	sellCorrectionHandler := NewSellCorrectionHandler(deps.SellCorrectionUC)
	sells := protected.Group("/sells")
	sells.Get("/", RequirePermission(entity.PermSellView), documentHandler.ListSells)
	sells.Post("/", RequirePermission(entity.PermSellCreate), documentHandler.CreateSell)
	sells.Get("/:id", RequirePermission(entity.PermSellView), documentHandler.GetSell)
	sells.Get("/:sellId/stock-corrections", RequirePermission(entity.PermSellCorrectionView), sellCorrectionHandler.ListBySell)
	sells.Get("/:sellId/stock-corrections/draft", RequirePermission(entity.PermSellCorrectionCreate), sellCorrectionHandler.Draft)

	transfers := protected.Group("/transfers")
	transfers.Get("/", RequirePermission(entity.PermTransferView), documentHandler.ListTransfers)
	transfers.Post("/", RequirePermission(entity.PermTransferCreate), documentHandler.CreateTransfer)
	transfers.Get("/:id", RequirePermission(entity.PermTransferView), documentHandler.GetTransfer)

	purchases := protected.Group("/purchases")
	purchases.Get("/", RequirePermission(entity.PermPurchaseView), documentHandler.ListPurchases)
	purchases.Post("/", RequirePermission(entity.PermPurchaseCreate), documentHandler.CreatePurchase)
	purchases.Get("/:id", RequirePermission(entity.PermPurchaseView), documentHandler.GetPurchase)

	// Correcciones de stock
	stockCorrectionHandler := NewStockCorrectionHandler(deps.StockCorrectionUC)
	sc := protected.Group("/stock-corrections")
	sc.Get("/", RequirePermission(entity.PermStockCorrectionView), stockCorrectionHandler.List)
	sc.Post("/", RequirePermission(entity.PermStockCorrectionCreate), stockCorrectionHandler.Create)
	sc.Get("/:id", RequirePermission(entity.PermStockCorrectionView), stockCorrectionHandler.GetByID)
	sc.Get("/:id/pdf", RequirePermission(entity.PermStockCorrectionView), stockCorrectionHandler.PDF)
	sc.Put("/:id", RequirePermission(entity.PermStockCorrectionUpdate), stockCorrectionHandler.Update)
	sc.Delete("/:id", RequirePermission(entity.PermStockCorrectionDelete), stockCorrectionHandler.Delete)
	sc.Post("/:id/approve", RequirePermission(entity.PermStockCorrectionApprove), stockCorrectionHandler.Approve)
	sc.Post("/:id/reject", RequirePermission(entity.PermStockCorrectionReject), stockCorrectionHandler.Reject)

	// Correcciones de venta
	ssc := protected.Group("/sell-stock-corrections")
	ssc.Get("/", RequirePermission(entity.PermSellCorrectionView), sellCorrectionHandler.List)
	ssc.Post("/", RequirePermission(entity.PermSellCorrectionCreate), sellCorrectionHandler.Create)
	ssc.Post("/check", RequirePermission(entity.PermSellCorrectionCheck), sellCorrectionHandler.MarkManyAsChecked)
	ssc.Get("/:id", RequirePermission(entity.PermSellCorrectionView), sellCorrectionHandler.GetByID)
	ssc.Post("/:id/check", RequirePermission(entity.PermSellCorrectionCheck), sellCorrectionHandler.MarkAsChecked)
	ssc.Post("/:id/approve", RequirePermission(entity.PermSellCorrectionApprove), sellCorrectionHandler.Approve)
	ssc.Post("/:id/reject", RequirePermission(entity.PermSellCorrectionReject), sellCorrectionHandler.Reject)

	// Reinicios; el permiso, la contraseña y la frase se validan en el caso de uso para auditar cada intento
	adminHandler := NewAdminHandler(deps.ResetUC)
	protected.Post("/admin/factory-reset", adminHandler.FactoryReset)
	protected.Post("/admin/year-end-reset", adminHandler.YearEndReset)
}
