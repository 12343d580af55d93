package inventory

import (
	"context"
	"log"

	"github.com/lvtian/agrostock/internal/domain/inventory"
	"github.com/lvtian/agrostock/internal/infrastructure/persistence/redis"
)

// DeleteItemUseCase 删除商品用例
type DeleteItemUseCase struct {
	inventoryService inventory.Service
	itemCache        *redis.ItemCache
}

// NewDeleteItemUseCase 创建删除用例
func NewDeleteItemUseCase(inventoryService inventory.Service, itemCache *redis.ItemCache) *DeleteItemUseCase {
	return &DeleteItemUseCase{
		inventoryService: inventoryService,
		itemCache:        itemCache,
	}
}

// Execute 执行删除商品
func (uc *DeleteItemUseCase) Execute(ctx context.Context, itemID uint) error {
	if err := uc.inventoryService.DeleteItem(ctx, itemID); err != nil {
		return err
	}

	if uc.itemCache != nil {
		if err := uc.itemCache.Delete(ctx, itemID); err != nil {
			log.Printf("删除商品缓存失败: id=%d: %v", itemID, err)
		}
	}

	return nil
}
