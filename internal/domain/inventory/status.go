package inventory

import (
	"github.com/shopspring/decimal"
)

// Status 库存状态
// 使用string类型(与前端/导出报表直接对应,无需映射表)
type Status string

const (
	StatusInStock    Status = "In Stock"     // 库存充足
	StatusLowStock   Status = "Low Stock"    // 低于补货阈值
	StatusOutOfStock Status = "Out of Stock" // 无库存
)

// DeriveStatus 根据数量和阈值推导库存状态
// 业务规则:
// - quantity <= 0          → Out of Stock
// - 0 < quantity <= 阈值   → Low Stock
// - quantity > 阈值        → In Stock
//
// 这是status字段的唯一计算入口:任何改变quantity或threshold的
// 操作之后都必须调用此函数,不允许调用方直接写status。
// 阈值为负数时,所有正库存都判定为In Stock(阈值失效,等同于0)。
func DeriveStatus(quantity, threshold decimal.Decimal) Status {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return StatusOutOfStock
	}
	if quantity.LessThanOrEqual(threshold) {
		return StatusLowStock
	}
	return StatusInStock
}
