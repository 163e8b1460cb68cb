package entity

import (
	"fmt"
	"time"

	"github.com/jhoicas/stock-api/internal/domain"
	"github.com/shopspring/decimal"
)

// Estados de una corrección. PARTIAL solo aplica a correcciones de venta.
const (
	CorrectionPending  = "PENDING"
	CorrectionApproved = "APPROVED"
	CorrectionRejected = "REJECTED"
	CorrectionPartial  = "PARTIAL"
)

// Motivos de corrección de stock.
const (
	ReasonPurchaseError    = "PURCHASE_ERROR"
	ReasonTransferError    = "TRANSFER_ERROR"
	ReasonExpired          = "EXPIRED"
	ReasonDamaged          = "DAMAGED"
	ReasonManualAdjustment = "MANUAL_ADJUSTMENT"
)

// IsValidReason valida el motivo.
func IsValidReason(r string) bool {
	switch r {
	case ReasonPurchaseError, ReasonTransferError, ReasonExpired, ReasonDamaged, ReasonManualAdjustment:
		return true
	}
	return false
}

// ValidateReasonQuantity aplica la convención de signo: EXPIRED y DAMAGED solo restan;
// el resto acepta ambos signos. Cero nunca es válido.
func ValidateReasonQuantity(reason string, q decimal.Decimal) error {
	if q.IsZero() {
		return fmt.Errorf("la cantidad no puede ser cero")
	}
	if (reason == ReasonExpired || reason == ReasonDamaged) && q.IsPositive() {
		return fmt.Errorf("el motivo %s requiere cantidades negativas", reason)
	}
	return nil
}

// StockCorrection ajuste propuesto sobre lotes de una tienda o bodega (nunca ambas).
// Se crea PENDING y pasa una sola vez a APPROVED (aplica al stock) o REJECTED (sin efecto).
type StockCorrection struct {
	ID         string
	CompanyID  string
	Reference  string
	Reason     string
	Status     string
	PurchaseID string
	TransferID string
	StoreID    string
	ShopID     string
	Notes      string
	Items      []StockCorrectionItem
	CreatedBy  string
	ApprovedBy string
	ApprovedAt *time.Time
	RejectedBy string
	RejectedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// StockCorrectionItem delta firmado sobre un producto/lote en la unidad indicada.
type StockCorrectionItem struct {
	ID              string
	CorrectionID    string
	ProductID       string
	BatchID         string // vacío: lote aún no asignado
	UnitOfMeasureID string
	Quantity        decimal.Decimal
}

// Location devuelve la ubicación afectada.
func (c *StockCorrection) Location() LocationRef {
	if c.StoreID != "" {
		return LocationRef{Type: LocationStore, ID: c.StoreID}
	}
	return LocationRef{Type: LocationShop, ID: c.ShopID}
}

// IsFinal indica si la corrección ya no admite cambios.
func (c *StockCorrection) IsFinal() bool {
	return c.Status != CorrectionPending
}

// EnsureEditable falla si la corrección está finalizada.
func (c *StockCorrection) EnsureEditable() error {
	if c.IsFinal() {
		return domain.ErrCorrectionFinalized
	}
	return nil
}

// Validate revisa motivo, alcance exclusivo tienda/bodega, vínculos y signos de los ítems.
func (c *StockCorrection) Validate() error {
	v := &domain.ValidationError{Fields: map[string]string{}}
	if !IsValidReason(c.Reason) {
		v.Fields["reason"] = "motivo inválido"
	}
	if (c.StoreID == "") == (c.ShopID == "") {
		v.Fields["scope"] = "debe indicar store_id o shop_id, no ambos"
	}
	if c.PurchaseID != "" && c.Reason != ReasonPurchaseError {
		v.Fields["purchase_id"] = "solo aplica a PURCHASE_ERROR"
	}
	if c.TransferID != "" && c.Reason != ReasonTransferError {
		v.Fields["transfer_id"] = "solo aplica a TRANSFER_ERROR"
	}
	if len(c.Items) == 0 {
		v.Fields["items"] = "se requiere al menos un ítem"
	}
	for i, it := range c.Items {
		key := fmt.Sprintf("items[%d]", i)
		if it.ProductID == "" {
			v.Fields[key+".product_id"] = "requerido"
		}
		if it.UnitOfMeasureID == "" {
			v.Fields[key+".unit_of_measure_id"] = "requerido"
		}
		if err := ValidateReasonQuantity(c.Reason, it.Quantity); err != nil {
			v.Fields[key+".quantity"] = err.Error()
		}
	}
	if len(v.Fields) > 0 {
		return v
	}
	return nil
}

// Approve pasa de PENDING a APPROVED.
func (c *StockCorrection) Approve(userID string, now time.Time) error {
	if err := c.EnsureEditable(); err != nil {
		return err
	}
	c.Status = CorrectionApproved
	c.ApprovedBy = userID
	c.ApprovedAt = &now
	c.UpdatedAt = now
	return nil
}

// Reject pasa de PENDING a REJECTED.
func (c *StockCorrection) Reject(userID string, now time.Time) error {
	if err := c.EnsureEditable(); err != nil {
		return err
	}
	c.Status = CorrectionRejected
	c.RejectedBy = userID
	c.RejectedAt = &now
	c.UpdatedAt = now
	return nil
}
