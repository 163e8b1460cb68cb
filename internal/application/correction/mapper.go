package correction

import (
	"github.com/jhoicas/stock-api/internal/application/dto"
	"github.com/jhoicas/stock-api/internal/domain/entity"
)

// ToStockCorrectionResponse mapea una corrección de stock.
func ToStockCorrectionResponse(c *entity.StockCorrection) dto.StockCorrectionResponse {
	out := dto.StockCorrectionResponse{
		ID:         c.ID,
		Reference:  c.Reference,
		Reason:     c.Reason,
		Status:     c.Status,
		PurchaseID: c.PurchaseID,
		TransferID: c.TransferID,
		StoreID:    c.StoreID,
		ShopID:     c.ShopID,
		Notes:      c.Notes,
		Items:      make([]dto.StockCorrectionItemResponse, 0, len(c.Items)),
		CreatedBy:  c.CreatedBy,
		ApprovedBy: c.ApprovedBy,
		ApprovedAt: c.ApprovedAt,
		RejectedBy: c.RejectedBy,
		RejectedAt: c.RejectedAt,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
	for _, it := range c.Items {
		out.Items = append(out.Items, dto.StockCorrectionItemResponse{
			ID:              it.ID,
			ProductID:       it.ProductID,
			BatchID:         it.BatchID,
			UnitOfMeasureID: it.UnitOfMeasureID,
			Quantity:        it.Quantity,
		})
	}
	return out
}

// ToSellCorrectionResponse mapea una corrección de venta o un borrador.
func ToSellCorrectionResponse(c *entity.SellStockCorrection) dto.SellCorrectionResponse {
	out := dto.SellCorrectionResponse{
		ID:        c.ID,
		SellID:    c.SellID,
		Reference: c.Reference,
		Notes:     c.Notes,
		Status:    c.Status,
		Total:     c.Total,
		IsChecked: c.IsChecked,
		CheckedBy: c.CheckedBy,
		CheckedAt: c.CheckedAt,
		Items:     toSellCorrectionItems(c.Items),
		CreatedBy: c.CreatedBy,
		DecidedBy: c.DecidedBy,
		DecidedAt: c.DecidedAt,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	return out
}

func toSellCorrectionItems(items []entity.SellStockCorrectionItem) []dto.SellCorrectionItemResponse {
	out := make([]dto.SellCorrectionItemResponse, 0, len(items))
	for _, it := range items {
		row := dto.SellCorrectionItemResponse{
			ID:             it.ID,
			SellItemID:     it.SellItemID,
			ProductID:      it.ProductID,
			UnitPrice:      it.UnitPrice,
			Quantity:       it.Quantity,
			TotalPrice:     it.TotalPrice,
			ItemSaleStatus: it.ItemSaleStatus,
			Batches:        make([]dto.SellCorrectionBatchDTO, 0, len(it.Batches)),
		}
		for _, b := range it.Batches {
			row.Batches = append(row.Batches, dto.SellCorrectionBatchDTO{BatchID: b.BatchID, Quantity: b.Quantity})
		}
		out = append(out, row)
	}
	return out
}
