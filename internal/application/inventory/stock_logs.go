package inventory

import (
	"context"

	"github.com/lvtian/agrostock/internal/domain/inventory"
)

// ListStockLogsUseCase 库存流水查询用例
type ListStockLogsUseCase struct {
	inventoryService inventory.Service
}

// NewListStockLogsUseCase 创建流水查询用例
func NewListStockLogsUseCase(inventoryService inventory.Service) *ListStockLogsUseCase {
	return &ListStockLogsUseCase{inventoryService: inventoryService}
}

// StockLogEntry 流水项DTO
type StockLogEntry struct {
	ID             uint   `json:"id"`
	ItemID         uint   `json:"item_id"`
	BatchID        string `json:"batch_id,omitempty"`
	ChangeType     string `json:"change_type"`
	Delta          string `json:"delta"`
	BeforeQuantity string `json:"before_quantity"`
	AfterQuantity  string `json:"after_quantity"`
	Operator       string `json:"operator,omitempty"`
	Remark         string `json:"remark,omitempty"`
	CreatedAt      string `json:"created_at"`
}

// Execute 执行流水查询(按时间倒序)
// limit不合法时默认返回最近50条
func (uc *ListStockLogsUseCase) Execute(ctx context.Context, itemID uint, limit int) ([]StockLogEntry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	logs, err := uc.inventoryService.ListStockLogs(ctx, itemID, limit)
	if err != nil {
		return nil, err
	}

	entries := make([]StockLogEntry, len(logs))
	for i, l := range logs {
		entries[i] = StockLogEntry{
			ID:             l.ID,
			ItemID:         l.ItemID,
			BatchID:        l.BatchID,
			ChangeType:     string(l.ChangeType),
			Delta:          l.Delta.String(),
			BeforeQuantity: l.BeforeQuantity.String(),
			AfterQuantity:  l.AfterQuantity.String(),
			Operator:       l.Operator,
			Remark:         l.Remark,
			CreatedAt:      formatTime(l.CreatedAt),
		}
	}

	return entries, nil
}
