package inventory

import (
	"context"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lvtian/agrostock/pkg/metrics"
)

// Service 库存领域服务接口
// 设计说明:
// 1. 所有库存写操作都通过领域服务,API层不允许绕过服务直接写仓储
// 2. 每个写操作是一个"锁定商品→修改聚合→重算→落库+写日志"的事务,
//    同一商品的并发写串行化,不同商品互不阻塞
// 3. 状态变化告警在事务提交后发出(通知失败不回滚库存)
type Service interface {
	// CreateItem 创建商品
	// 业务规则:
	// - SKU不能与现有商品重复
	// - 携带批次创建时,总量强制等于批次数量之和
	// - 状态由数量和阈值推导,不接受外部传入值
	CreateItem(ctx context.Context, params CreateItemParams) (*Item, error)

	// GetItem 根据ID获取商品详情(含批次)
	GetItem(ctx context.Context, id uint) (*Item, error)

	// GetItemBySKU 根据SKU获取商品
	GetItemBySKU(ctx context.Context, sku string) (*Item, error)

	// ListItems 分页查询商品列表
	ListItems(ctx context.Context, params ListParams) ([]*Item, int64, error)

	// UpdateItem 部分更新商品
	// nil字段保持原值;Batches非nil时整体替换批次集合(last-writer-wins);
	// 无论是否显式传入数量,状态都会重新推导。
	UpdateItem(ctx context.Context, id uint, params UpdateItemParams) (*Item, error)

	// DeleteItem 删除商品及其全部批次
	DeleteItem(ctx context.Context, id uint) error

	// AddBatch 批次入库
	// 批次编号与该商品现有批次重复时拒绝,商品状态不变。
	AddBatch(ctx context.Context, itemID uint, batch Batch, operator string) (*Item, error)

	// UpdateBatch 修改批次(部分更新),总量按新旧数量差额调整
	UpdateBatch(ctx context.Context, itemID uint, batchID string, patch BatchPatch, operator string) (*Item, error)

	// RemoveBatch 移除批次,总量扣减但不低于0
	RemoveBatch(ctx context.Context, itemID uint, batchID string, operator string) (*Item, error)

	// ExportRows 导出报表行:每个(商品,批次)组合一行,无批次商品一行
	ExportRows(ctx context.Context, params ListParams) ([]ExportRow, error)

	// ListExpiring 查询即将过期的批次(按剩余时间)
	ListExpiring(ctx context.Context, within time.Duration) ([]ExportRow, error)

	// ListStockLogs 查询商品的库存变更历史
	ListStockLogs(ctx context.Context, itemID uint, limit int) ([]*StockLog, error)
}

// CreateItemParams 创建商品参数
type CreateItemParams struct {
	Name      string
	Sku       string
	Category  string
	Unit      string
	Price     int64            // 分
	Quantity  decimal.Decimal  // 无批次时的初始库存
	Threshold *decimal.Decimal // nil表示使用默认阈值10
	Supplier  string
	Batches   []Batch
	Operator  string
}

// UpdateItemParams 部分更新参数
// 指针字段语义: nil表示保持原值,非nil表示替换
type UpdateItemParams struct {
	Name      *string
	Sku       *string
	Category  *string
	Unit      *string
	Price     *int64
	Quantity  *decimal.Decimal // 仅对无批次商品生效,有批次时被聚合重算覆盖
	Threshold *decimal.Decimal
	Supplier  *string
	Batches   *[]Batch // 非nil时整体替换批次集合
	Operator  string
}

// service 领域服务实现
type service struct {
	repo      Repository
	logRepo   LogRepository
	txManager TxManager
	notifier  AlertNotifier // 可为nil(未接入消息队列时)
}

// NewService 创建库存领域服务
func NewService(repo Repository, logRepo LogRepository, txManager TxManager, notifier AlertNotifier) Service {
	return &service{
		repo:      repo,
		logRepo:   logRepo,
		txManager: txManager,
		notifier:  notifier,
	}
}

// CreateItem 创建商品
func (s *service) CreateItem(ctx context.Context, params CreateItemParams) (*Item, error) {
	threshold := DefaultThreshold
	if params.Threshold != nil {
		threshold = *params.Threshold
	}

	item, err := NewItem(
		params.Name, params.Sku, params.Category, params.Unit,
		params.Price, params.Quantity, threshold, params.Supplier, params.Batches,
	)
	if err != nil {
		return nil, err
	}

	// SKU重复检查(数据库唯一索引兜底,这里提前返回友好错误)
	existing, err := s.repo.FindBySKU(ctx, params.Sku)
	if err == nil && existing != nil {
		return nil, ErrSkuDuplicate
	}
	if err != nil && err != ErrItemNotFound {
		return nil, err
	}

	err = s.txManager.Transaction(ctx, func(txCtx context.Context) error {
		if err := s.repo.Create(txCtx, item); err != nil {
			return err
		}
		stockLog := NewStockLog(item.ID, "", ChangeTypeCreate, decimal.Zero, item.Quantity, params.Operator, "创建商品")
		return s.logRepo.Create(txCtx, stockLog)
	})
	if err != nil {
		s.recordMutation("create_item", false)
		return nil, err
	}

	s.recordMutation("create_item", true)
	s.notifyIfChanged(ctx, item, StatusInStock, item.Status)
	return item, nil
}

// GetItem 根据ID获取商品
func (s *service) GetItem(ctx context.Context, id uint) (*Item, error) {
	return s.repo.FindByID(ctx, id)
}

// GetItemBySKU 根据SKU获取商品
func (s *service) GetItemBySKU(ctx context.Context, sku string) (*Item, error) {
	if sku == "" {
		return nil, ErrInvalidSku
	}
	return s.repo.FindBySKU(ctx, sku)
}

// ListItems 分页查询商品列表
func (s *service) ListItems(ctx context.Context, params ListParams) ([]*Item, int64, error) {
	return s.repo.List(ctx, params)
}

// UpdateItem 部分更新商品
func (s *service) UpdateItem(ctx context.Context, id uint, params UpdateItemParams) (*Item, error) {
	var (
		updated      *Item
		beforeStatus Status
	)

	err := s.txManager.Transaction(ctx, func(txCtx context.Context) error {
		// 悲观锁锁定商品行,与其他写操作串行化
		item, err := s.repo.LockByID(txCtx, id)
		if err != nil {
			return err
		}
		before := item.Quantity
		beforeStatus = item.Status

		if params.Sku != nil && *params.Sku != item.Sku {
			if *params.Sku == "" {
				return ErrInvalidSku
			}
			other, err := s.repo.FindBySKU(txCtx, *params.Sku)
			if err == nil && other != nil && other.ID != item.ID {
				return ErrSkuDuplicate
			}
			if err != nil && err != ErrItemNotFound {
				return err
			}
			item.Sku = *params.Sku
		}
		if params.Name != nil {
			if *params.Name == "" {
				return ErrInvalidName
			}
			item.Name = *params.Name
		}
		if params.Category != nil {
			item.Category = *params.Category
		}
		if params.Unit != nil {
			item.Unit = *params.Unit
		}
		if params.Price != nil {
			if *params.Price < 0 {
				return ErrInvalidPrice
			}
			item.Price = *params.Price
		}
		if params.Supplier != nil {
			item.Supplier = *params.Supplier
		}
		if params.Threshold != nil {
			item.Threshold = *params.Threshold
		}
		if params.Quantity != nil {
			if params.Quantity.IsNegative() {
				return ErrInvalidQuantity
			}
			item.Quantity = *params.Quantity
		}

		if params.Batches != nil {
			// 整体替换批次集合(last-writer-wins)
			if err := item.ReplaceBatches(*params.Batches); err != nil {
				return err
			}
		} else {
			item.Reconcile()
		}

		if err := s.repo.Update(txCtx, item); err != nil {
			return err
		}

		if !item.Quantity.Equal(before) {
			stockLog := NewStockLog(item.ID, "", ChangeTypeAdjust, before, item.Quantity, params.Operator, "商品更新")
			if err := s.logRepo.Create(txCtx, stockLog); err != nil {
				return err
			}
		}

		updated = item
		return nil
	})
	if err != nil {
		s.recordMutation("update_item", false)
		return nil, err
	}

	s.recordMutation("update_item", true)
	s.notifyIfChanged(ctx, updated, beforeStatus, updated.Status)
	return updated, nil
}

// DeleteItem 删除商品
func (s *service) DeleteItem(ctx context.Context, id uint) error {
	err := s.txManager.Transaction(ctx, func(txCtx context.Context) error {
		if _, err := s.repo.LockByID(txCtx, id); err != nil {
			return err
		}
		return s.repo.Delete(txCtx, id)
	})
	if err != nil {
		s.recordMutation("delete_item", false)
		return err
	}
	s.recordMutation("delete_item", true)
	return nil
}

// AddBatch 批次入库
func (s *service) AddBatch(ctx context.Context, itemID uint, batch Batch, operator string) (*Item, error) {
	var (
		updated      *Item
		beforeStatus Status
	)

	start := time.Now()
	err := s.txManager.Transaction(ctx, func(txCtx context.Context) error {
		item, err := s.repo.LockByID(txCtx, itemID)
		if err != nil {
			return err
		}
		before := item.Quantity
		beforeStatus = item.Status

		if err := item.AddBatch(batch); err != nil {
			return err
		}

		// 批次编号只在商品内强制唯一,跨商品冲突记录告警供人工确认
		if count, err := s.repo.CountBatchID(txCtx, batch.BatchID, item.ID); err == nil && count > 0 {
			log.Printf("批次编号%s已在其他%d个商品下使用, ItemID=%d", batch.BatchID, count, item.ID)
		}

		if err := s.repo.Update(txCtx, item); err != nil {
			return err
		}

		stockLog := NewStockLog(item.ID, batch.BatchID, ChangeTypeAddBatch, before, item.Quantity, operator, "批次入库")
		if err := s.logRepo.Create(txCtx, stockLog); err != nil {
			return err
		}

		updated = item
		return nil
	})
	metrics.ObserveHistogram(metrics.StockMutationDuration, time.Since(start).Seconds())
	if err != nil {
		s.recordMutation("add_batch", false)
		return nil, err
	}

	s.recordMutation("add_batch", true)
	metrics.IncCounter(metrics.BatchesReceivedTotal)
	s.notifyIfChanged(ctx, updated, beforeStatus, updated.Status)
	return updated, nil
}

// UpdateBatch 修改批次
func (s *service) UpdateBatch(ctx context.Context, itemID uint, batchID string, patch BatchPatch, operator string) (*Item, error) {
	var (
		updated      *Item
		beforeStatus Status
	)

	err := s.txManager.Transaction(ctx, func(txCtx context.Context) error {
		item, err := s.repo.LockByID(txCtx, itemID)
		if err != nil {
			return err
		}
		before := item.Quantity
		beforeStatus = item.Status

		if err := item.UpdateBatch(batchID, patch); err != nil {
			return err
		}

		if err := s.repo.Update(txCtx, item); err != nil {
			return err
		}

		if !item.Quantity.Equal(before) {
			stockLog := NewStockLog(item.ID, batchID, ChangeTypeUpdateBatch, before, item.Quantity, operator, "批次修改")
			if err := s.logRepo.Create(txCtx, stockLog); err != nil {
				return err
			}
		}

		updated = item
		return nil
	})
	if err != nil {
		s.recordMutation("update_batch", false)
		return nil, err
	}

	s.recordMutation("update_batch", true)
	s.notifyIfChanged(ctx, updated, beforeStatus, updated.Status)
	return updated, nil
}

// RemoveBatch 移除批次
func (s *service) RemoveBatch(ctx context.Context, itemID uint, batchID string, operator string) (*Item, error) {
	var (
		updated      *Item
		beforeStatus Status
	)

	err := s.txManager.Transaction(ctx, func(txCtx context.Context) error {
		item, err := s.repo.LockByID(txCtx, itemID)
		if err != nil {
			return err
		}
		before := item.Quantity
		beforeStatus = item.Status

		if err := item.RemoveBatch(batchID); err != nil {
			return err
		}

		if err := s.repo.Update(txCtx, item); err != nil {
			return err
		}

		stockLog := NewStockLog(item.ID, batchID, ChangeTypeRemoveBatch, before, item.Quantity, operator, "批次移除")
		if err := s.logRepo.Create(txCtx, stockLog); err != nil {
			return err
		}

		updated = item
		return nil
	})
	if err != nil {
		s.recordMutation("remove_batch", false)
		return nil, err
	}

	s.recordMutation("remove_batch", true)
	s.notifyIfChanged(ctx, updated, beforeStatus, updated.Status)
	return updated, nil
}

// ExportRows 导出报表行
func (s *service) ExportRows(ctx context.Context, params ListParams) ([]ExportRow, error) {
	// 导出不分页,PageSize=0返回全部匹配项
	params.Page = 0
	params.PageSize = 0
	items, _, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, err
	}
	return FlattenRows(items), nil
}

// ListExpiring 查询即将过期的批次
func (s *service) ListExpiring(ctx context.Context, within time.Duration) ([]ExportRow, error) {
	before := time.Now().Add(within)
	items, err := s.repo.ListExpiring(ctx, before)
	if err != nil {
		return nil, err
	}

	// 只保留过期窗口内的批次再展开
	filtered := make([]*Item, 0, len(items))
	for _, item := range items {
		expiring := item.ExpiringBatches(before)
		if len(expiring) == 0 {
			continue
		}
		clone := *item
		clone.Batches = expiring
		filtered = append(filtered, &clone)
	}
	return FlattenRows(filtered), nil
}

// ListStockLogs 查询商品的库存变更历史
func (s *service) ListStockLogs(ctx context.Context, itemID uint, limit int) ([]*StockLog, error) {
	if _, err := s.repo.FindByID(ctx, itemID); err != nil {
		return nil, err
	}
	return s.logRepo.ListByItem(ctx, itemID, limit)
}

// notifyIfChanged 状态发生变化时发出告警(事务提交之后调用)
func (s *service) notifyIfChanged(ctx context.Context, item *Item, from, to Status) {
	if s.notifier == nil || from == to {
		return
	}
	s.notifier.NotifyStatusChange(ctx, item, from, to)
}

// recordMutation 记录库存写操作指标
func (s *service) recordMutation(operation string, success bool) {
	result := "success"
	if !success {
		result = "error"
	}
	metrics.IncCounterVec(metrics.StockMutationsTotal, map[string]string{
		"operation": operation,
		"result":    result,
	})
}
