package entity

import "time"

// Permisos del sistema. Formato RECURSO.ACCION.
const (
	PermStockCorrectionView    = "STOCK_CORRECTION.VIEW"
	PermStockCorrectionCreate  = "STOCK_CORRECTION.CREATE"
	PermStockCorrectionUpdate  = "STOCK_CORRECTION.UPDATE"
	PermStockCorrectionDelete  = "STOCK_CORRECTION.DELETE"
	PermStockCorrectionApprove = "STOCK_CORRECTION.APPROVE"
	PermStockCorrectionReject  = "STOCK_CORRECTION.REJECT"

	PermSellCorrectionView    = "SELL_STOCK_CORRECTION.VIEW"
	PermSellCorrectionCreate  = "SELL_STOCK_CORRECTION.CREATE"
	PermSellCorrectionApprove = "SELL_STOCK_CORRECTION.APPROVE"
	PermSellCorrectionReject  = "SELL_STOCK_CORRECTION.REJECT"
	PermSellCorrectionCheck   = "SELL_STOCK_CORRECTION.CHECK"

	PermProductView        = "PRODUCT.VIEW"
	PermProductManage      = "PRODUCT.MANAGE"
	PermBatchView          = "PRODUCT_BATCH.VIEW"
	PermLocationView       = "LOCATION.VIEW"
	PermLocationManage     = "LOCATION.MANAGE"
	PermTransferView       = "TRANSFER.VIEW"
	PermTransferCreate     = "TRANSFER.CREATE"
	PermPurchaseView       = "PURCHASE.VIEW"
	PermPurchaseCreate     = "PURCHASE.CREATE"
	PermSellView           = "SELL.VIEW"
	PermSellCreate         = "SELL.CREATE"
	PermLedgerView         = "STOCK_LEDGER.VIEW"
	PermReconciliationView = "RECONCILIATION.VIEW"
	PermRoleManage         = "ROLE.MANAGE"
	PermUserManage         = "USER.MANAGE"
	PermSystemReset        = "SYSTEM.RESET"
)

// AllPermissions catálogo completo; el rol administrador inicial los recibe todos.
var AllPermissions = []string{
	PermStockCorrectionView, PermStockCorrectionCreate, PermStockCorrectionUpdate,
	PermStockCorrectionDelete, PermStockCorrectionApprove, PermStockCorrectionReject,
	PermSellCorrectionView, PermSellCorrectionCreate, PermSellCorrectionApprove,
	PermSellCorrectionReject, PermSellCorrectionCheck,
	PermProductView, PermProductManage, PermBatchView, PermLocationView, PermLocationManage,
	PermTransferView, PermTransferCreate, PermPurchaseView, PermPurchaseCreate,
	PermSellView, PermSellCreate, PermLedgerView, PermReconciliationView,
	PermRoleManage, PermUserManage, PermSystemReset,
}

// IsKnownPermission indica si p está en el catálogo.
func IsKnownPermission(p string) bool {
	for _, known := range AllPermissions {
		if known == p {
			return true
		}
	}
	return false
}

// Role conjunto nombrado de permisos dentro de una empresa.
type Role struct {
	ID          string
	CompanyID   string
	Name        string
	Permissions []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
