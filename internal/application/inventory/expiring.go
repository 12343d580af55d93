package inventory

import (
	"context"
	"time"

	"github.com/lvtian/agrostock/internal/domain/inventory"
)

// ListExpiringUseCase 临期批次查询用例
// 查询指定天数内将要过期的批次,展开为报表行(每批次一行)
type ListExpiringUseCase struct {
	inventoryService inventory.Service
}

// NewListExpiringUseCase 创建临期查询用例
func NewListExpiringUseCase(inventoryService inventory.Service) *ListExpiringUseCase {
	return &ListExpiringUseCase{inventoryService: inventoryService}
}

// Execute 执行临期查询
// days不合法时使用默认30天窗口
func (uc *ListExpiringUseCase) Execute(ctx context.Context, days int) ([]ExportRowEntry, error) {
	if days <= 0 {
		days = 30
	}

	rows, err := uc.inventoryService.ListExpiring(ctx, time.Duration(days)*24*time.Hour)
	if err != nil {
		return nil, err
	}

	return toExportEntries(rows), nil
}
