package inventory

import (
	"context"
	"log"

	"github.com/shopspring/decimal"

	"github.com/lvtian/agrostock/internal/domain/inventory"
	"github.com/lvtian/agrostock/internal/infrastructure/persistence/redis"
	apperrors "github.com/lvtian/agrostock/pkg/errors"
)

// 批次操作用例
// 设计说明:
// 1. 新增/修改/删除批次都是商品聚合上的原子操作:
//    领域服务在同一事务内锁商品行、变更批次、重算总量和状态
// 2. 提交成功后删除详情缓存,下次查询重新加载

// AddBatchUseCase 新增批次入库用例
type AddBatchUseCase struct {
	inventoryService inventory.Service
	itemCache        *redis.ItemCache
}

// NewAddBatchUseCase 创建入库用例
func NewAddBatchUseCase(inventoryService inventory.Service, itemCache *redis.ItemCache) *AddBatchUseCase {
	return &AddBatchUseCase{
		inventoryService: inventoryService,
		itemCache:        itemCache,
	}
}

// AddBatchRequest 新增批次请求DTO
type AddBatchRequest struct {
	BatchInput

	Operator string `json:"-"` // 由接口层从登录态注入
}

// Execute 执行批次入库
func (uc *AddBatchUseCase) Execute(ctx context.Context, itemID uint, req AddBatchRequest) (*ItemDetail, error) {
	batch, err := toDomainBatch(req.BatchInput)
	if err != nil {
		return nil, err
	}

	item, err := uc.inventoryService.AddBatch(ctx, itemID, batch, req.Operator)
	if err != nil {
		return nil, err
	}

	invalidateItemCache(ctx, uc.itemCache, itemID)
	return toItemDetail(item), nil
}

// UpdateBatchUseCase 修改批次用例
type UpdateBatchUseCase struct {
	inventoryService inventory.Service
	itemCache        *redis.ItemCache
}

// NewUpdateBatchUseCase 创建批次修改用例
func NewUpdateBatchUseCase(inventoryService inventory.Service, itemCache *redis.ItemCache) *UpdateBatchUseCase {
	return &UpdateBatchUseCase{
		inventoryService: inventoryService,
		itemCache:        itemCache,
	}
}

// UpdateBatchRequest 修改批次请求DTO
// 批次编号不可修改(业务标识);不传的字段保持原值
type UpdateBatchRequest struct {
	LotNumber         *string          `json:"lot_number"`
	Quantity          *decimal.Decimal `json:"quantity"`
	ManufacturingDate *string          `json:"manufacturing_date"` // 2006-01-02
	ExpiryDate        *string          `json:"expiry_date"`        // 2006-01-02
	Supplier          *string          `json:"supplier"`
	LocationCode      *string          `json:"location_code"`
	Notes             *string          `json:"notes"`

	Operator string `json:"-"` // 由接口层从登录态注入
}

// Execute 执行批次修改
func (uc *UpdateBatchUseCase) Execute(ctx context.Context, itemID uint, batchID string, req UpdateBatchRequest) (*ItemDetail, error) {
	patch := inventory.BatchPatch{
		LotNumber:    req.LotNumber,
		Quantity:     req.Quantity,
		Supplier:     req.Supplier,
		LocationCode: req.LocationCode,
		Notes:        req.Notes,
	}

	if req.ManufacturingDate != nil {
		t, err := parseDate(*req.ManufacturingDate)
		if err != nil {
			return nil, apperrors.New(apperrors.ErrCodeInvalidParams, "生产日期格式错误,应为YYYY-MM-DD")
		}
		patch.ManufacturingDate = &t
	}
	if req.ExpiryDate != nil {
		t, err := parseDate(*req.ExpiryDate)
		if err != nil {
			return nil, apperrors.New(apperrors.ErrCodeInvalidParams, "有效期格式错误,应为YYYY-MM-DD")
		}
		patch.ExpiryDate = &t
	}

	item, err := uc.inventoryService.UpdateBatch(ctx, itemID, batchID, patch, req.Operator)
	if err != nil {
		return nil, err
	}

	invalidateItemCache(ctx, uc.itemCache, itemID)
	return toItemDetail(item), nil
}

// RemoveBatchUseCase 删除批次用例
type RemoveBatchUseCase struct {
	inventoryService inventory.Service
	itemCache        *redis.ItemCache
}

// NewRemoveBatchUseCase 创建批次删除用例
func NewRemoveBatchUseCase(inventoryService inventory.Service, itemCache *redis.ItemCache) *RemoveBatchUseCase {
	return &RemoveBatchUseCase{
		inventoryService: inventoryService,
		itemCache:        itemCache,
	}
}

// Execute 执行批次删除
func (uc *RemoveBatchUseCase) Execute(ctx context.Context, itemID uint, batchID, operator string) (*ItemDetail, error) {
	item, err := uc.inventoryService.RemoveBatch(ctx, itemID, batchID, operator)
	if err != nil {
		return nil, err
	}

	invalidateItemCache(ctx, uc.itemCache, itemID)
	return toItemDetail(item), nil
}

// invalidateItemCache 删除商品详情缓存(失败只记录日志)
func invalidateItemCache(ctx context.Context, cache *redis.ItemCache, itemID uint) {
	if cache == nil {
		return
	}
	if err := cache.Delete(ctx, itemID); err != nil {
		log.Printf("删除商品缓存失败: id=%d: %v", itemID, err)
	}
}
