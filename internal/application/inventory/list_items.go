package inventory

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/lvtian/agrostock/internal/domain/inventory"
)

// ListItemsUseCase 商品列表查询用例
// 设计说明:
// 1. 支持分页、关键词搜索、分类和库存状态过滤、排序
// 2. 列表项不返回批次明细(减少数据传输量),只返回批次数量
type ListItemsUseCase struct {
	inventoryService inventory.Service
}

// NewListItemsUseCase 创建列表查询用例
func NewListItemsUseCase(inventoryService inventory.Service) *ListItemsUseCase {
	return &ListItemsUseCase{inventoryService: inventoryService}
}

// ListItemsRequest 列表查询请求DTO
type ListItemsRequest struct {
	Page     int    // 页码(从1开始)
	PageSize int    // 每页数量
	Keyword  string // 搜索关键词(搜索名称、SKU、分类、供应商)
	Category string // 分类过滤
	Status   string // 库存状态过滤(In Stock / Low Stock / Out of Stock)
	SortBy   string // 排序方式(price_asc, price_desc, quantity_asc, quantity_desc, created_at_desc)
}

// ItemListEntry 列表项DTO(不含批次明细)
type ItemListEntry struct {
	ID         uint            `json:"id"`
	Name       string          `json:"name"`
	Sku        string          `json:"sku"`
	Category   string          `json:"category"`
	Unit       string          `json:"unit"`
	Price      int64           `json:"price"` // 分
	Quantity   decimal.Decimal `json:"quantity"`
	Threshold  decimal.Decimal `json:"threshold"`
	Status     string          `json:"status"`
	Supplier   string          `json:"supplier"`
	BatchCount int             `json:"batch_count"`
	CreatedAt  string          `json:"created_at"`
}

// ListItemsResponse 列表查询响应DTO
type ListItemsResponse struct {
	List     []ItemListEntry `json:"list"`
	Total    int64           `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
}

// Execute 执行列表查询
func (uc *ListItemsUseCase) Execute(ctx context.Context, req ListItemsRequest) (*ListItemsResponse, error) {
	// 参数默认值与范围限制
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 {
		req.PageSize = 20
	}
	if req.PageSize > 100 {
		req.PageSize = 100
	}

	items, total, err := uc.inventoryService.ListItems(ctx, inventory.ListParams{
		Page:     req.Page,
		PageSize: req.PageSize,
		Keyword:  req.Keyword,
		Category: req.Category,
		Status:   inventory.Status(req.Status),
		SortBy:   req.SortBy,
	})
	if err != nil {
		return nil, err
	}

	list := make([]ItemListEntry, len(items))
	for i, item := range items {
		list[i] = ItemListEntry{
			ID:         item.ID,
			Name:       item.Name,
			Sku:        item.Sku,
			Category:   item.Category,
			Unit:       item.Unit,
			Price:      item.Price,
			Quantity:   item.Quantity,
			Threshold:  item.Threshold,
			Status:     string(item.Status),
			Supplier:   item.Supplier,
			BatchCount: len(item.Batches),
			CreatedAt:  formatTime(item.CreatedAt),
		}
	}

	return &ListItemsResponse{
		List:     list,
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
	}, nil
}
