package inventory

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/lvtian/agrostock/internal/domain/inventory"
)

// CreateItemUseCase 创建商品用例
// 设计说明:
// 1. 接收DTO并转换为领域参数,日期解析在这一层完成
// 2. 库存状态由领域层推导,调用方不能指定
type CreateItemUseCase struct {
	inventoryService inventory.Service
}

// NewCreateItemUseCase 创建用例实例
func NewCreateItemUseCase(inventoryService inventory.Service) *CreateItemUseCase {
	return &CreateItemUseCase{inventoryService: inventoryService}
}

// CreateItemRequest 创建商品请求DTO
type CreateItemRequest struct {
	Name      string           `json:"name" binding:"required"`
	Sku       string           `json:"sku" binding:"required"`
	Category  string           `json:"category"`
	Unit      string           `json:"unit"`
	Price     int64            `json:"price"` // 分
	Quantity  decimal.Decimal  `json:"quantity"`
	Threshold *decimal.Decimal `json:"threshold"` // 不传使用默认阈值
	Supplier  string           `json:"supplier"`
	Batches   []BatchInput     `json:"batches"`

	Operator string `json:"-"` // 由接口层从登录态注入
}

// Execute 执行创建商品
func (uc *CreateItemUseCase) Execute(ctx context.Context, req CreateItemRequest) (*ItemDetail, error) {
	batches, err := toDomainBatches(req.Batches)
	if err != nil {
		return nil, err
	}

	item, err := uc.inventoryService.CreateItem(ctx, inventory.CreateItemParams{
		Name:      req.Name,
		Sku:       req.Sku,
		Category:  req.Category,
		Unit:      req.Unit,
		Price:     req.Price,
		Quantity:  req.Quantity,
		Threshold: req.Threshold,
		Supplier:  req.Supplier,
		Batches:   batches,
		Operator:  req.Operator,
	})
	if err != nil {
		return nil, err
	}

	return toItemDetail(item), nil
}
