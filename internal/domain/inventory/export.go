package inventory

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExportRow 导出报表行(只读投影)
// 每个(商品,批次)组合展开为一行;无批次的商品恰好产生一行(批次字段为空)。
type ExportRow struct {
	ItemID            uint
	Name              string
	Sku               string
	Category          string
	Unit              string
	Price             int64           // 分
	ItemQuantity      decimal.Decimal // 商品在库总量
	Threshold         decimal.Decimal
	Status            Status
	BatchID           string
	LotNumber         string
	BatchQuantity     decimal.Decimal
	ManufacturingDate time.Time
	ExpiryDate        time.Time
	Supplier          string // 批次供应商为空时回退到商品默认供应商
	LocationCode      string
	Notes             string
}

// FlattenRows 将商品聚合展开为导出行
// 纯函数,无副作用:只做join和字段回退,不产生新的业务规则。
func FlattenRows(items []*Item) []ExportRow {
	rows := make([]ExportRow, 0, len(items))

	for _, item := range items {
		if len(item.Batches) == 0 {
			rows = append(rows, itemRow(item))
			continue
		}
		for _, b := range item.Batches {
			row := itemRow(item)
			row.BatchID = b.BatchID
			row.LotNumber = b.LotNumber
			row.BatchQuantity = b.Quantity
			row.ManufacturingDate = b.ManufacturingDate
			row.ExpiryDate = b.ExpiryDate
			row.LocationCode = b.LocationCode
			row.Notes = b.Notes
			if b.Supplier != "" {
				row.Supplier = b.Supplier
			}
			rows = append(rows, row)
		}
	}

	return rows
}

// itemRow 生成商品级字段,供应商默认取商品级值
func itemRow(item *Item) ExportRow {
	return ExportRow{
		ItemID:       item.ID,
		Name:         item.Name,
		Sku:          item.Sku,
		Category:     item.Category,
		Unit:         item.Unit,
		Price:        item.Price,
		ItemQuantity: item.Quantity,
		Threshold:    item.Threshold,
		Status:       item.Status,
		Supplier:     item.Supplier,
	}
}
