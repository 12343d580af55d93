package inventory

import (
	"context"
	"log"

	"github.com/lvtian/agrostock/internal/domain/inventory"
	"github.com/lvtian/agrostock/internal/infrastructure/persistence/redis"
)

// GetItemUseCase 商品详情查询用例
// 设计说明:
// 1. Cache-Aside:先查Redis缓存,未命中查数据库并回填
// 2. 缓存读写失败都降级为直接查库,不阻断请求
type GetItemUseCase struct {
	inventoryService inventory.Service
	itemCache        *redis.ItemCache
}

// NewGetItemUseCase 创建详情查询用例
func NewGetItemUseCase(inventoryService inventory.Service, itemCache *redis.ItemCache) *GetItemUseCase {
	return &GetItemUseCase{
		inventoryService: inventoryService,
		itemCache:        itemCache,
	}
}

// Execute 执行详情查询
func (uc *GetItemUseCase) Execute(ctx context.Context, itemID uint) (*ItemDetail, error) {
	// 1. 查缓存
	if uc.itemCache != nil {
		cached, err := uc.itemCache.Get(ctx, itemID)
		if err != nil {
			log.Printf("读取商品缓存失败: id=%d: %v", itemID, err)
		} else if cached != nil {
			return toItemDetail(cached), nil
		}
	}

	// 2. 缓存未命中,查数据库
	item, err := uc.inventoryService.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	// 3. 回填缓存(失败只记录日志)
	if uc.itemCache != nil {
		if err := uc.itemCache.Set(ctx, item); err != nil {
			log.Printf("回填商品缓存失败: id=%d: %v", itemID, err)
		}
	}

	return toItemDetail(item), nil
}

// GetItemBySKUUseCase 按SKU查询商品用例
type GetItemBySKUUseCase struct {
	inventoryService inventory.Service
}

// NewGetItemBySKUUseCase 创建SKU查询用例
func NewGetItemBySKUUseCase(inventoryService inventory.Service) *GetItemBySKUUseCase {
	return &GetItemBySKUUseCase{inventoryService: inventoryService}
}

// Execute 执行SKU查询
func (uc *GetItemBySKUUseCase) Execute(ctx context.Context, sku string) (*ItemDetail, error) {
	item, err := uc.inventoryService.GetItemBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	return toItemDetail(item), nil
}
