package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/lvtian/agrostock/internal/domain/inventory"
	apperrors "github.com/lvtian/agrostock/pkg/errors"
)

// stockLogRepository 库存流水仓储实现(MySQL)
// 流水只追加不修改,与库存写操作在同一事务内落库
type stockLogRepository struct {
	db *gorm.DB
}

// NewStockLogRepository 创建库存流水仓储
func NewStockLogRepository(db *gorm.DB) inventory.LogRepository {
	return &stockLogRepository{db: db}
}

// Create 写入一条库存流水
func (r *stockLogRepository) Create(ctx context.Context, log *inventory.StockLog) error {
	model := &StockLogModel{
		ItemID:         log.ItemID,
		BatchID:        log.BatchID,
		ChangeType:     string(log.ChangeType),
		Delta:          log.Delta,
		BeforeQuantity: log.BeforeQuantity,
		AfterQuantity:  log.AfterQuantity,
		Operator:       log.Operator,
		Remark:         log.Remark,
	}

	if err := r.getDB(ctx).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "写入库存流水失败")
	}

	log.ID = model.ID
	log.CreatedAt = model.CreatedAt
	return nil
}

// ListByItem 查询商品的库存流水(按时间倒序)
func (r *stockLogRepository) ListByItem(ctx context.Context, itemID uint, limit int) ([]*inventory.StockLog, error) {
	query := r.getDB(ctx).Model(&StockLogModel{}).
		Where("item_id = ?", itemID).
		Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var models []StockLogModel
	if err := query.Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询库存流水失败")
	}

	logs := make([]*inventory.StockLog, len(models))
	for i, m := range models {
		logs[i] = &inventory.StockLog{
			ID:             m.ID,
			ItemID:         m.ItemID,
			BatchID:        m.BatchID,
			ChangeType:     inventory.ChangeType(m.ChangeType),
			Delta:          m.Delta,
			BeforeQuantity: m.BeforeQuantity,
			AfterQuantity:  m.AfterQuantity,
			Operator:       m.Operator,
			Remark:         m.Remark,
			CreatedAt:      m.CreatedAt,
		}
	}
	return logs, nil
}

// getDB 从context获取事务DB,如果没有则使用默认DB
func (r *stockLogRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value("tx").(*gorm.DB); ok {
		return tx
	}
	return r.db
}
