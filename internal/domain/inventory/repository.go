package inventory

import (
	"context"
	"time"
)

// Repository 库存仓储接口(依赖倒置原则)
// 设计说明:
// 1. 由domain层定义接口,infrastructure层实现
// 2. 便于Mock测试,不依赖具体数据库实现
// 3. Item与其Batches作为一个聚合整体读写
type Repository interface {
	// Create 创建商品(连同初始批次)
	Create(ctx context.Context, item *Item) error

	// FindByID 根据ID查找商品(预加载批次)
	FindByID(ctx context.Context, id uint) (*Item, error)

	// FindBySKU 根据SKU查找商品
	FindBySKU(ctx context.Context, sku string) (*Item, error)

	// LockByID 悲观锁查询商品(SELECT FOR UPDATE)
	// 所有库存写操作必须在事务内先锁定商品行,
	// 保证同一商品的读-改-写序列之间不交错。
	LockByID(ctx context.Context, id uint) (*Item, error)

	// Update 更新商品及其批次集合
	// 批次集合按当前内存状态整体落库(删除后重插),
	// 批次的增删改由聚合在内存中完成,仓储不做增量diff。
	Update(ctx context.Context, item *Item) error

	// Delete 删除商品及其全部批次(软删除)
	Delete(ctx context.Context, id uint) error

	// List 分页查询商品列表
	List(ctx context.Context, params ListParams) ([]*Item, int64, error)

	// ListExpiring 查询含有在指定时间前过期批次的商品(预加载批次)
	ListExpiring(ctx context.Context, before time.Time) ([]*Item, error)

	// CountBatchID 统计批次编号在其他商品下的出现次数
	// 批次编号只在商品内强制唯一,跨商品冲突仅作告警提示。
	CountBatchID(ctx context.Context, batchID string, excludeItemID uint) (int64, error)
}

// ListParams 列表查询参数
type ListParams struct {
	Page     int    // 页码(从1开始)
	PageSize int    // 每页数量(0表示不分页,返回全部)
	Keyword  string // 搜索关键词(匹配名称、SKU、分类、供应商)
	Category string // 分类过滤
	Status   Status // 库存状态过滤
	SortBy   string // 排序(price_asc, price_desc, quantity_asc, quantity_desc, created_at_desc)
}

// LogRepository 库存变更日志仓储接口
type LogRepository interface {
	// Create 写入变更日志(与库存写操作同一事务)
	Create(ctx context.Context, log *StockLog) error

	// ListByItem 查询商品的变更历史(按时间倒序)
	ListByItem(ctx context.Context, itemID uint, limit int) ([]*StockLog, error)
}

// TxManager 事务管理器接口
// fn内的所有仓储操作在同一事务中执行:
// fn返回error时回滚,返回nil时提交。
type TxManager interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// AlertNotifier 库存告警通知接口
// 由infrastructure层实现(RabbitMQ发布),领域层只依赖抽象。
// 通知失败不影响库存写操作本身(已提交的事务不回滚)。
type AlertNotifier interface {
	// NotifyStatusChange 商品库存状态变化时发出告警
	NotifyStatusChange(ctx context.Context, item *Item, from, to Status)
}
