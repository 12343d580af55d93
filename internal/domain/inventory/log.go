package inventory

import (
	"time"

	"github.com/shopspring/decimal"
)

// ChangeType 库存变更类型
type ChangeType string

const (
	ChangeTypeCreate      ChangeType = "CREATE"       // 创建商品(含初始库存)
	ChangeTypeAddBatch    ChangeType = "ADD_BATCH"    // 批次入库
	ChangeTypeUpdateBatch ChangeType = "UPDATE_BATCH" // 批次修改
	ChangeTypeRemoveBatch ChangeType = "REMOVE_BATCH" // 批次移除
	ChangeTypeAdjust      ChangeType = "ADJUST"       // 商品更新导致的总量调整(含批次整体替换)
)

// StockLog 库存变更日志
// 设计原则:
// 1. 只增不改(Append-Only),所有库存变更可追溯
// 2. 记录变更前后总量,便于对账和异常排查
// 3. 与触发变更的库存写操作在同一事务内落库
type StockLog struct {
	ID             uint
	ItemID         uint            // 商品ID
	BatchID        string          // 关联批次编号(商品级调整时为空)
	ChangeType     ChangeType      // 变更类型
	Delta          decimal.Decimal // 变更量(正数=增加,负数=减少)
	BeforeQuantity decimal.Decimal // 变更前总量
	AfterQuantity  decimal.Decimal // 变更后总量
	Operator       string          // 操作人(为空表示系统操作)
	Remark         string          // 备注
	CreatedAt      time.Time
}

// NewStockLog 创建库存变更日志
func NewStockLog(itemID uint, batchID string, changeType ChangeType, before, after decimal.Decimal, operator, remark string) *StockLog {
	return &StockLog{
		ItemID:         itemID,
		BatchID:        batchID,
		ChangeType:     changeType,
		Delta:          after.Sub(before),
		BeforeQuantity: before,
		AfterQuantity:  after,
		Operator:       operator,
		Remark:         remark,
		CreatedAt:      time.Now(),
	}
}
