package memory

import "github.com/jhoicas/stock-api/internal/domain/entity"

func cloneRole(r entity.Role) entity.Role {
	r.Permissions = append([]string(nil), r.Permissions...)
	return r
}

func cloneCorrection(c entity.StockCorrection) entity.StockCorrection {
	c.Items = append([]entity.StockCorrectionItem(nil), c.Items...)
	return c
}

func cloneSellCorrection(c entity.SellStockCorrection) entity.SellStockCorrection {
	items := make([]entity.SellStockCorrectionItem, len(c.Items))
	for i, it := range c.Items {
		it.Batches = append([]entity.SellStockCorrectionBatch(nil), it.Batches...)
		items[i] = it
	}
	c.Items = items
	return c
}

func cloneSell(s entity.Sell) entity.Sell {
	items := make([]entity.SellItem, len(s.Items))
	for i, it := range s.Items {
		it.Batches = append([]entity.SellItemBatch(nil), it.Batches...)
		items[i] = it
	}
	s.Items = items
	return s
}

func cloneTransfer(t entity.Transfer) entity.Transfer {
	t.Items = append([]entity.TransferItem(nil), t.Items...)
	return t
}

func clonePurchase(p entity.Purchase) entity.Purchase {
	p.Items = append([]entity.PurchaseItem(nil), p.Items...)
	return p
}
