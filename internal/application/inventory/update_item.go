package inventory

import (
	"context"
	"log"

	"github.com/shopspring/decimal"

	"github.com/lvtian/agrostock/internal/domain/inventory"
	"github.com/lvtian/agrostock/internal/infrastructure/persistence/redis"
)

// UpdateItemUseCase 更新商品用例
// 设计说明:
// 1. 指针字段语义:不传保持原值,传了就替换
// 2. batches字段非null时整体替换批次集合(最后写入者胜出)
// 3. 提交成功后删除详情缓存
type UpdateItemUseCase struct {
	inventoryService inventory.Service
	itemCache        *redis.ItemCache
}

// NewUpdateItemUseCase 创建更新用例
func NewUpdateItemUseCase(inventoryService inventory.Service, itemCache *redis.ItemCache) *UpdateItemUseCase {
	return &UpdateItemUseCase{
		inventoryService: inventoryService,
		itemCache:        itemCache,
	}
}

// UpdateItemRequest 更新商品请求DTO
// 状态字段不可由调用方指定:每次写操作后由库存规则重新推导
type UpdateItemRequest struct {
	Name      *string          `json:"name"`
	Sku       *string          `json:"sku"`
	Category  *string          `json:"category"`
	Unit      *string          `json:"unit"`
	Price     *int64           `json:"price"`
	Quantity  *decimal.Decimal `json:"quantity"`
	Threshold *decimal.Decimal `json:"threshold"`
	Supplier  *string          `json:"supplier"`
	Batches   *[]BatchInput    `json:"batches"`

	Operator string `json:"-"` // 由接口层从登录态注入
}

// Execute 执行更新商品
func (uc *UpdateItemUseCase) Execute(ctx context.Context, itemID uint, req UpdateItemRequest) (*ItemDetail, error) {
	params := inventory.UpdateItemParams{
		Name:      req.Name,
		Sku:       req.Sku,
		Category:  req.Category,
		Unit:      req.Unit,
		Price:     req.Price,
		Quantity:  req.Quantity,
		Threshold: req.Threshold,
		Supplier:  req.Supplier,
		Operator:  req.Operator,
	}

	if req.Batches != nil {
		batches, err := toDomainBatches(*req.Batches)
		if err != nil {
			return nil, err
		}
		params.Batches = &batches
	}

	item, err := uc.inventoryService.UpdateItem(ctx, itemID, params)
	if err != nil {
		return nil, err
	}

	uc.invalidateCache(ctx, itemID)
	return toItemDetail(item), nil
}

func (uc *UpdateItemUseCase) invalidateCache(ctx context.Context, itemID uint) {
	if uc.itemCache == nil {
		return
	}
	if err := uc.itemCache.Delete(ctx, itemID); err != nil {
		log.Printf("删除商品缓存失败: id=%d: %v", itemID, err)
	}
}
