package mysql

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lvtian/agrostock/internal/domain/inventory"
	apperrors "github.com/lvtian/agrostock/pkg/errors"
)

// itemRepository 农资商品仓储实现(MySQL)
// 设计说明:
// 1. 实现domain/inventory/repository.go定义的接口
// 2. 负责domain实体与GORM模型之间的转换
// 3. Item与Batches作为一个聚合整体读写:
//    批次集合按内存状态落库(先删后插),不做增量diff
// 4. 处理数据库特定错误(SKU重复等),转换为业务错误
type itemRepository struct {
	db *gorm.DB
}

// NewItemRepository 创建商品仓储
func NewItemRepository(db *gorm.DB) inventory.Repository {
	return &itemRepository{db: db}
}

// Create 创建商品(连同初始批次)
func (r *itemRepository) Create(ctx context.Context, item *inventory.Item) error {
	model := toItemModel(item)

	db := r.getDB(ctx)
	if err := db.Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return inventory.ErrSkuDuplicate
		}
		return apperrors.Wrap(err, "创建商品失败")
	}

	// 回填自增ID和时间戳
	item.ID = model.ID
	item.CreatedAt = model.CreatedAt
	item.UpdatedAt = model.UpdatedAt
	for i := range model.Batches {
		item.Batches[i].ID = model.Batches[i].ID
	}

	return nil
}

// FindByID 根据ID查找商品(预加载批次,按插入顺序)
func (r *itemRepository) FindByID(ctx context.Context, id uint) (*inventory.Item, error) {
	var model ItemModel
	err := r.getDB(ctx).
		Preload("Batches", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		First(&model, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, inventory.ErrItemNotFound
		}
		return nil, apperrors.Wrap(err, "查询商品失败")
	}

	return toItemEntity(&model), nil
}

// FindBySKU 根据SKU查找商品
func (r *itemRepository) FindBySKU(ctx context.Context, sku string) (*inventory.Item, error) {
	var model ItemModel
	err := r.getDB(ctx).
		Preload("Batches", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Where("sku = ?", sku).First(&model).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, inventory.ErrItemNotFound
		}
		return nil, apperrors.Wrap(err, "查询商品失败")
	}

	return toItemEntity(&model), nil
}

// LockByID 悲观锁查询商品
// SELECT FOR UPDATE锁定商品行:批次表不单独加锁,
// 所有批次写操作都先锁商品行,同一商品的写序列自然串行化。
func (r *itemRepository) LockByID(ctx context.Context, id uint) (*inventory.Item, error) {
	db := r.getDB(ctx)

	var model ItemModel
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, inventory.ErrItemNotFound
		}
		return nil, apperrors.Wrap(err, "锁定商品失败")
	}

	// 持锁后加载批次(同一事务内,读到的是一致快照)
	if err := db.Where("item_id = ?", id).Order("id ASC").Find(&model.Batches).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询批次失败")
	}

	return toItemEntity(&model), nil
}

// Update 更新商品及其批次集合
// 批次整体替换落库(先删后插):聚合在内存中已完成增删改,
// 仓储不做增量diff,保证落库结果与内存状态严格一致。
func (r *itemRepository) Update(ctx context.Context, item *inventory.Item) error {
	db := r.getDB(ctx)

	model := toItemModel(item)
	model.CreatedAt = item.CreatedAt

	// 1. 更新商品行(不级联批次)
	if err := db.Omit(clause.Associations).Save(model).Error; err != nil {
		if isDuplicateError(err) {
			return inventory.ErrSkuDuplicate
		}
		return apperrors.Wrap(err, "更新商品失败")
	}

	// 2. 删除旧批次(物理删除,批次表不做软删除)
	if err := db.Where("item_id = ?", item.ID).Delete(&BatchModel{}).Error; err != nil {
		return apperrors.Wrap(err, "清理批次失败")
	}

	// 3. 重插当前批次集合
	if len(model.Batches) > 0 {
		batches := make([]BatchModel, len(model.Batches))
		copy(batches, model.Batches)
		for i := range batches {
			batches[i].ID = 0 // 重插时重新分配主键
			batches[i].ItemID = item.ID
		}
		if err := db.Create(&batches).Error; err != nil {
			if isDuplicateError(err) {
				return inventory.ErrBatchIDDuplicate
			}
			return apperrors.Wrap(err, "写入批次失败")
		}
		for i := range batches {
			item.Batches[i].ID = batches[i].ID
		}
	}

	item.UpdatedAt = model.UpdatedAt
	return nil
}

// Delete 删除商品(软删除)及其全部批次
func (r *itemRepository) Delete(ctx context.Context, id uint) error {
	db := r.getDB(ctx)

	result := db.Delete(&ItemModel{}, id)
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "删除商品失败")
	}
	if result.RowsAffected == 0 {
		return inventory.ErrItemNotFound
	}

	// 批次随商品一并清除(物理删除)
	if err := db.Where("item_id = ?", id).Delete(&BatchModel{}).Error; err != nil {
		return apperrors.Wrap(err, "删除批次失败")
	}

	return nil
}

// List 分页查询商品列表
func (r *itemRepository) List(ctx context.Context, params inventory.ListParams) ([]*inventory.Item, int64, error) {
	var models []ItemModel
	var total int64

	query := r.getDB(ctx).Model(&ItemModel{})

	// 关键词搜索(名称、SKU、分类、供应商)
	if params.Keyword != "" {
		keyword := "%" + params.Keyword + "%"
		query = query.Where("name LIKE ? OR sku LIKE ? OR category LIKE ? OR supplier LIKE ?",
			keyword, keyword, keyword, keyword)
	}
	if params.Category != "" {
		query = query.Where("category = ?", params.Category)
	}
	if params.Status != "" {
		query = query.Where("status = ?", string(params.Status))
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询商品总数失败")
	}

	switch params.SortBy {
	case "price_asc":
		query = query.Order("price ASC")
	case "price_desc":
		query = query.Order("price DESC")
	case "quantity_asc":
		query = query.Order("quantity ASC")
	case "quantity_desc":
		query = query.Order("quantity DESC")
	case "created_at_desc":
		query = query.Order("created_at DESC")
	default:
		query = query.Order("id ASC")
	}

	// 分页(PageSize=0表示不分页,导出场景返回全部)
	if params.PageSize > 0 {
		offset := (params.Page - 1) * params.PageSize
		if offset < 0 {
			offset = 0
		}
		query = query.Limit(params.PageSize).Offset(offset)
	}

	err := query.Preload("Batches", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC")
	}).Find(&models).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询商品列表失败")
	}

	items := make([]*inventory.Item, len(models))
	for i := range models {
		items[i] = toItemEntity(&models[i])
	}

	return items, total, nil
}

// ListExpiring 查询含有在指定时间前过期批次的商品
func (r *itemRepository) ListExpiring(ctx context.Context, before time.Time) ([]*inventory.Item, error) {
	db := r.getDB(ctx)

	// 先找出有过期批次的商品ID
	var itemIDs []uint
	err := db.Model(&BatchModel{}).
		Distinct("item_id").
		Where("expiry_date < ?", before).
		Pluck("item_id", &itemIDs).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询过期批次失败")
	}
	if len(itemIDs) == 0 {
		return nil, nil
	}

	var models []ItemModel
	err = db.Preload("Batches", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC")
	}).Where("id IN ?", itemIDs).Order("id ASC").Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询商品失败")
	}

	items := make([]*inventory.Item, len(models))
	for i := range models {
		items[i] = toItemEntity(&models[i])
	}
	return items, nil
}

// CountBatchID 统计批次编号在其他商品下的出现次数(跨商品冲突告警用)
func (r *itemRepository) CountBatchID(ctx context.Context, batchID string, excludeItemID uint) (int64, error) {
	var count int64
	err := r.getDB(ctx).Model(&BatchModel{}).
		Where("batch_id = ? AND item_id <> ?", batchID, excludeItemID).
		Count(&count).Error
	if err != nil {
		return 0, apperrors.Wrap(err, "查询批次编号失败")
	}
	return count, nil
}

// =========================================
// 辅助函数:模型转换
// =========================================

// toItemModel 领域实体 → GORM模型
func toItemModel(item *inventory.Item) *ItemModel {
	model := &ItemModel{
		ID:        item.ID,
		Name:      item.Name,
		Sku:       item.Sku,
		Category:  item.Category,
		Unit:      item.Unit,
		Price:     item.Price,
		Quantity:  item.Quantity,
		Threshold: item.Threshold,
		Status:    string(item.Status),
		Supplier:  item.Supplier,
	}
	model.Batches = make([]BatchModel, len(item.Batches))
	for i, b := range item.Batches {
		model.Batches[i] = BatchModel{
			ID:                b.ID,
			ItemID:            item.ID,
			BatchID:           b.BatchID,
			LotNumber:         b.LotNumber,
			Quantity:          b.Quantity,
			ManufacturingDate: b.ManufacturingDate,
			ExpiryDate:        b.ExpiryDate,
			Supplier:          b.Supplier,
			LocationCode:      b.LocationCode,
			Notes:             b.Notes,
		}
	}
	return model
}

// toItemEntity GORM模型 → 领域实体
func toItemEntity(model *ItemModel) *inventory.Item {
	item := &inventory.Item{
		ID:        model.ID,
		Name:      model.Name,
		Sku:       model.Sku,
		Category:  model.Category,
		Unit:      model.Unit,
		Price:     model.Price,
		Quantity:  model.Quantity,
		Threshold: model.Threshold,
		Status:    inventory.Status(model.Status),
		Supplier:  model.Supplier,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
	item.Batches = make([]inventory.Batch, len(model.Batches))
	for i, b := range model.Batches {
		item.Batches[i] = inventory.Batch{
			ID:                b.ID,
			BatchID:           b.BatchID,
			LotNumber:         b.LotNumber,
			Quantity:          b.Quantity,
			ManufacturingDate: b.ManufacturingDate,
			ExpiryDate:        b.ExpiryDate,
			Supplier:          b.Supplier,
			LocationCode:      b.LocationCode,
			Notes:             b.Notes,
			CreatedAt:         b.CreatedAt,
			UpdatedAt:         b.UpdatedAt,
		}
	}
	return item
}

// getDB 从context获取事务DB,如果没有则使用默认DB
func (r *itemRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value("tx").(*gorm.DB); ok {
		return tx
	}
	return r.db
}
