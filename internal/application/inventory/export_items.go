package inventory

import (
	"context"

	"github.com/lvtian/agrostock/internal/domain/inventory"
)

// ExportItemsUseCase 库存报表导出用例
// 设计说明:
// 1. 每个(商品,批次)组合展开为一行,无批次商品恰好一行
// 2. 导出不分页:按当前过滤条件取全量数据
// 3. 接口层负责把行集合写成CSV
type ExportItemsUseCase struct {
	inventoryService inventory.Service
}

// NewExportItemsUseCase 创建导出用例
func NewExportItemsUseCase(inventoryService inventory.Service) *ExportItemsUseCase {
	return &ExportItemsUseCase{inventoryService: inventoryService}
}

// ExportItemsRequest 导出请求DTO(过滤条件与列表查询一致)
type ExportItemsRequest struct {
	Keyword  string
	Category string
	Status   string
}

// ExportRowEntry 导出行DTO
type ExportRowEntry struct {
	ItemID            uint   `json:"item_id"`
	Name              string `json:"name"`
	Sku               string `json:"sku"`
	Category          string `json:"category"`
	Unit              string `json:"unit"`
	Price             int64  `json:"price"` // 分
	ItemQuantity      string `json:"item_quantity"`
	Threshold         string `json:"threshold"`
	Status            string `json:"status"`
	BatchID           string `json:"batch_id"`
	LotNumber         string `json:"lot_number"`
	BatchQuantity     string `json:"batch_quantity"`
	ManufacturingDate string `json:"manufacturing_date"`
	ExpiryDate        string `json:"expiry_date"`
	Supplier          string `json:"supplier"`
	LocationCode      string `json:"location_code"`
	Notes             string `json:"notes"`
}

// Execute 执行导出
func (uc *ExportItemsUseCase) Execute(ctx context.Context, req ExportItemsRequest) ([]ExportRowEntry, error) {
	rows, err := uc.inventoryService.ExportRows(ctx, inventory.ListParams{
		Keyword:  req.Keyword,
		Category: req.Category,
		Status:   inventory.Status(req.Status),
	})
	if err != nil {
		return nil, err
	}

	return toExportEntries(rows), nil
}

// toExportEntries 领域导出行 → DTO
func toExportEntries(rows []inventory.ExportRow) []ExportRowEntry {
	entries := make([]ExportRowEntry, len(rows))
	for i, row := range rows {
		entry := ExportRowEntry{
			ItemID:            row.ItemID,
			Name:              row.Name,
			Sku:               row.Sku,
			Category:          row.Category,
			Unit:              row.Unit,
			Price:             row.Price,
			ItemQuantity:      row.ItemQuantity.String(),
			Threshold:         row.Threshold.String(),
			Status:            string(row.Status),
			BatchID:           row.BatchID,
			LotNumber:         row.LotNumber,
			ManufacturingDate: formatDate(row.ManufacturingDate),
			ExpiryDate:        formatDate(row.ExpiryDate),
			Supplier:          row.Supplier,
			LocationCode:      row.LocationCode,
			Notes:             row.Notes,
		}
		// 无批次的行不输出批次数量(空串而非"0")
		if row.BatchID != "" {
			entry.BatchQuantity = row.BatchQuantity.String()
		}
		entries[i] = entry
	}
	return entries
}
