package inventory

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultThreshold 未指定补货阈值时的默认值
var DefaultThreshold = decimal.NewFromInt(10)

// Batch 批次(lot) - 聚合内的子实体
// DDD设计说明:
// 1. 批次不是独立聚合根,必须通过Item访问(组合关系,不跨商品共享)
// 2. BatchID在所属商品内唯一,创建后不可修改(业务标识)
// 3. 数量使用decimal(农药按升/千克计量,存在小数,float64有精度问题)
// 4. Supplier/LocationCode可以为空,导出时回退到商品级默认值
type Batch struct {
	ID                uint
	BatchID           string          // 批次编号(商品内唯一)
	LotNumber         string          // 生产批号(自由文本,不要求唯一)
	Quantity          decimal.Decimal // 该批次在库数量
	ManufacturingDate time.Time       // 生产日期
	ExpiryDate        time.Time       // 过期日期
	Supplier          string          // 该批次的供应商(可与商品默认供应商不同)
	LocationCode      string          // 库位编码,约定格式 W{n}-{section}{row}-S{shelf}
	Notes             string          // 备注
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Validate 校验批次必填字段和业务规则
// 业务规则:
// - 批次编号不能为空
// - 数量不能为负数
// - 过期日期必须晚于生产日期(两个日期都提供时)
func (b *Batch) Validate() error {
	if b.BatchID == "" {
		return ErrInvalidBatchID
	}
	if b.Quantity.IsNegative() {
		return ErrInvalidQuantity
	}
	if !b.ManufacturingDate.IsZero() && !b.ExpiryDate.IsZero() &&
		!b.ExpiryDate.After(b.ManufacturingDate) {
		return ErrInvalidBatchDates
	}
	return nil
}

// IsExpiringBefore 判断批次是否在指定时间前过期
func (b *Batch) IsExpiringBefore(t time.Time) bool {
	return !b.ExpiryDate.IsZero() && b.ExpiryDate.Before(t)
}

// BatchPatch 批次部分更新
// 指针字段语义: nil表示保持原值,非nil表示替换
// BatchID是业务标识,不允许修改,因此不在patch中
type BatchPatch struct {
	LotNumber         *string
	Quantity          *decimal.Decimal
	ManufacturingDate *time.Time
	ExpiryDate        *time.Time
	Supplier          *string
	LocationCode      *string
	Notes             *string
}

// Item 农资商品实体(聚合根)
// DDD设计说明:
// 1. Item是库存聚合的根,独占其批次集合(批次不独立存在)
// 2. Quantity是聚合字段:有批次时必须等于所有批次数量之和,
//    无批次时是独立可设置的标量(兼容不按批次管理的老商品)
// 3. Status永远由Reconcile推导,任何写路径不得直接信任外部传入的status
// 4. 价格使用int64存储"分"为单位(避免浮点数精度问题)
// 5. 批次保持插入顺序(影响展示,不影响正确性)
type Item struct {
	ID        uint
	Name      string          // 商品名称
	Sku       string          // SKU编码(全局唯一)
	Category  string          // 分类(杀虫剂/除草剂/杀菌剂等)
	Unit      string          // 计量单位(瓶/升/千克)
	Price     int64           // 售价(单位:分,1元=100分)
	Quantity  decimal.Decimal // 在库总量(聚合字段)
	Threshold decimal.Decimal // 补货阈值,低于该值判定为Low Stock
	Status    Status          // 库存状态(推导字段)
	Supplier  string          // 默认供应商(批次未填供应商时的回退值)
	Batches   []Batch         // 批次集合(聚合内的子实体)
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewItem 创建商品(工厂方法)
// 业务规则:
// - threshold为nil时默认为10
// - 携带批次创建时,quantity强制等于批次数量之和(忽略传入的quantity)
// - status由Reconcile推导,不接受外部传入值
func NewItem(name, sku, category, unit string, price int64, quantity, threshold decimal.Decimal, supplier string, batches []Batch) (*Item, error) {
	if name == "" {
		return nil, ErrInvalidName
	}
	if sku == "" {
		return nil, ErrInvalidSku
	}
	if price < 0 {
		return nil, ErrInvalidPrice
	}
	if quantity.IsNegative() {
		return nil, ErrInvalidQuantity
	}

	now := time.Now()
	item := &Item{
		Name:      name,
		Sku:       sku,
		Category:  category,
		Unit:      unit,
		Price:     price,
		Quantity:  quantity,
		Threshold: threshold,
		Supplier:  supplier,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if len(batches) > 0 {
		if err := item.ReplaceBatches(batches); err != nil {
			return nil, err
		}
	} else {
		item.Reconcile()
	}

	return item, nil
}

// Reconcile 重算聚合字段(quantity和status的唯一计算入口)
// 业务规则:
// 1. 有批次时quantity等于所有批次数量之和
// 2. 无批次时quantity保持现有标量,但不低于0
// 3. status = DeriveStatus(quantity, threshold)
//
// 所有改变批次集合、quantity或threshold的方法最后都必须调用此方法,
// 不允许在调用点重复实现聚合逻辑。
func (i *Item) Reconcile() {
	if len(i.Batches) > 0 {
		sum := decimal.Zero
		for _, b := range i.Batches {
			sum = sum.Add(b.Quantity)
		}
		i.Quantity = sum
	} else if i.Quantity.IsNegative() {
		i.Quantity = decimal.Zero
	}
	i.Status = DeriveStatus(i.Quantity, i.Threshold)
	i.UpdatedAt = time.Now()
}

// FindBatch 在商品的批次集合中按批次编号查找
func (i *Item) FindBatch(batchID string) (*Batch, error) {
	for idx := range i.Batches {
		if i.Batches[idx].BatchID == batchID {
			return &i.Batches[idx], nil
		}
	}
	return nil, ErrBatchNotFound
}

// HasBatch 判断批次编号是否已存在
func (i *Item) HasBatch(batchID string) bool {
	_, err := i.FindBatch(batchID)
	return err == nil
}

// AddBatch 入库新批次(领域行为)
// 业务规则:
// - 批次必须通过Validate校验
// - 批次编号不能与现有批次重复
// 失败时聚合状态不变;成功后quantity和status已重算。
func (i *Item) AddBatch(b Batch) error {
	if err := b.Validate(); err != nil {
		return err
	}
	if i.HasBatch(b.BatchID) {
		return ErrBatchIDDuplicate
	}

	now := time.Now()
	b.CreatedAt = now
	b.UpdatedAt = now
	i.Batches = append(i.Batches, b)
	i.Reconcile()
	return nil
}

// UpdateBatch 修改批次(领域行为)
// patch中nil字段保持原值;修改数量后聚合quantity随之重算。
func (i *Item) UpdateBatch(batchID string, patch BatchPatch) error {
	b, err := i.FindBatch(batchID)
	if err != nil {
		return err
	}

	// 先在副本上应用patch并校验,避免校验失败时留下半修改状态
	updated := *b
	if patch.LotNumber != nil {
		updated.LotNumber = *patch.LotNumber
	}
	if patch.Quantity != nil {
		updated.Quantity = *patch.Quantity
	}
	if patch.ManufacturingDate != nil {
		updated.ManufacturingDate = *patch.ManufacturingDate
	}
	if patch.ExpiryDate != nil {
		updated.ExpiryDate = *patch.ExpiryDate
	}
	if patch.Supplier != nil {
		updated.Supplier = *patch.Supplier
	}
	if patch.LocationCode != nil {
		updated.LocationCode = *patch.LocationCode
	}
	if patch.Notes != nil {
		updated.Notes = *patch.Notes
	}
	if err := updated.Validate(); err != nil {
		return err
	}

	updated.UpdatedAt = time.Now()
	*b = updated
	i.Reconcile()
	return nil
}

// RemoveBatch 移除批次(领域行为)
// 业务规则:移除后quantity不会低于0
// (即便聚合处于不一致状态,例如无批次商品的手工调整历史导致总量偏小)
func (i *Item) RemoveBatch(batchID string) error {
	idx := -1
	for j := range i.Batches {
		if i.Batches[j].BatchID == batchID {
			idx = j
			break
		}
	}
	if idx < 0 {
		return ErrBatchNotFound
	}

	removed := i.Batches[idx]
	i.Batches = append(i.Batches[:idx], i.Batches[idx+1:]...)

	if len(i.Batches) == 0 {
		// 最后一个批次被移除:quantity退化为标量,减去移除量并下限0
		i.Quantity = i.Quantity.Sub(removed.Quantity)
	}
	i.Reconcile()
	return nil
}

// ReplaceBatches 整体替换批次集合(领域行为)
// 与增量的Add/Update/Remove不同,这是last-writer-wins的批量替换,
// 用于Update(id, partial)携带batches字段的场景。
// 业务规则:新集合内批次编号不能重复,每个批次必须通过校验。
func (i *Item) ReplaceBatches(batches []Batch) error {
	seen := make(map[string]struct{}, len(batches))
	for idx := range batches {
		if err := batches[idx].Validate(); err != nil {
			return err
		}
		if _, dup := seen[batches[idx].BatchID]; dup {
			return ErrBatchIDDuplicate
		}
		seen[batches[idx].BatchID] = struct{}{}
	}

	now := time.Now()
	replaced := make([]Batch, len(batches))
	copy(replaced, batches)
	for idx := range replaced {
		if replaced[idx].CreatedAt.IsZero() {
			replaced[idx].CreatedAt = now
		}
		replaced[idx].UpdatedAt = now
	}

	i.Batches = replaced
	i.Reconcile()
	return nil
}

// SetQuantity 直接设置在库量(仅对无批次商品有意义)
// 有批次时quantity由批次之和决定,此调用会被Reconcile覆盖。
func (i *Item) SetQuantity(quantity decimal.Decimal) error {
	if quantity.IsNegative() {
		return ErrInvalidQuantity
	}
	i.Quantity = quantity
	i.Reconcile()
	return nil
}

// SetThreshold 调整补货阈值并重算状态
func (i *Item) SetThreshold(threshold decimal.Decimal) {
	i.Threshold = threshold
	i.Reconcile()
}

// ExpiringBatches 返回在指定时间前过期的批次
func (i *Item) ExpiringBatches(before time.Time) []Batch {
	var result []Batch
	for _, b := range i.Batches {
		if b.IsExpiringBefore(before) {
			result = append(result, b)
		}
	}
	return result
}
