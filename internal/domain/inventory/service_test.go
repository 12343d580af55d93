package inventory

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

// =========================================
// 内存版Fake实现(模拟仓储和事务,不依赖数据库)
// =========================================

type fakeRepo struct {
	items  map[uint]*Item
	nextID uint
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{items: make(map[uint]*Item), nextID: 1}
}

// cloneItem 深拷贝商品,模拟存储边界(内存修改不会穿透到"数据库")
func cloneItem(item *Item) *Item {
	clone := *item
	clone.Batches = make([]Batch, len(item.Batches))
	copy(clone.Batches, item.Batches)
	return &clone
}

func (r *fakeRepo) Create(ctx context.Context, item *Item) error {
	for _, existing := range r.items {
		if existing.Sku == item.Sku {
			return ErrSkuDuplicate
		}
	}
	item.ID = r.nextID
	r.nextID++
	r.items[item.ID] = cloneItem(item)
	return nil
}

func (r *fakeRepo) FindByID(ctx context.Context, id uint) (*Item, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, ErrItemNotFound
	}
	return cloneItem(item), nil
}

func (r *fakeRepo) FindBySKU(ctx context.Context, sku string) (*Item, error) {
	for _, item := range r.items {
		if item.Sku == sku {
			return cloneItem(item), nil
		}
	}
	return nil, ErrItemNotFound
}

func (r *fakeRepo) LockByID(ctx context.Context, id uint) (*Item, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeRepo) Update(ctx context.Context, item *Item) error {
	if _, ok := r.items[item.ID]; !ok {
		return ErrItemNotFound
	}
	r.items[item.ID] = cloneItem(item)
	return nil
}

func (r *fakeRepo) Delete(ctx context.Context, id uint) error {
	if _, ok := r.items[id]; !ok {
		return ErrItemNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *fakeRepo) List(ctx context.Context, params ListParams) ([]*Item, int64, error) {
	var result []*Item
	for id := uint(1); id < r.nextID; id++ {
		item, ok := r.items[id]
		if !ok {
			continue
		}
		if params.Keyword != "" && !strings.Contains(item.Name, params.Keyword) &&
			!strings.Contains(item.Sku, params.Keyword) {
			continue
		}
		result = append(result, cloneItem(item))
	}
	return result, int64(len(result)), nil
}

func (r *fakeRepo) ListExpiring(ctx context.Context, before time.Time) ([]*Item, error) {
	var result []*Item
	for id := uint(1); id < r.nextID; id++ {
		item, ok := r.items[id]
		if !ok {
			continue
		}
		if len(item.ExpiringBatches(before)) > 0 {
			result = append(result, cloneItem(item))
		}
	}
	return result, nil
}

func (r *fakeRepo) CountBatchID(ctx context.Context, batchID string, excludeItemID uint) (int64, error) {
	var count int64
	for _, item := range r.items {
		if item.ID == excludeItemID {
			continue
		}
		if item.HasBatch(batchID) {
			count++
		}
	}
	return count, nil
}

type fakeLogRepo struct {
	logs []*StockLog
}

func (r *fakeLogRepo) Create(ctx context.Context, log *StockLog) error {
	r.logs = append(r.logs, log)
	return nil
}

func (r *fakeLogRepo) ListByItem(ctx context.Context, itemID uint, limit int) ([]*StockLog, error) {
	var result []*StockLog
	for i := len(r.logs) - 1; i >= 0; i-- {
		if r.logs[i].ItemID == itemID {
			result = append(result, r.logs[i])
		}
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result, nil
}

type fakeTxManager struct{}

func (m *fakeTxManager) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type statusChange struct {
	sku  string
	from Status
	to   Status
}

type fakeNotifier struct {
	changes []statusChange
}

func (n *fakeNotifier) NotifyStatusChange(ctx context.Context, item *Item, from, to Status) {
	n.changes = append(n.changes, statusChange{sku: item.Sku, from: from, to: to})
}

func setupService() (Service, *fakeRepo, *fakeLogRepo, *fakeNotifier) {
	repo := newFakeRepo()
	logRepo := &fakeLogRepo{}
	notifier := &fakeNotifier{}
	svc := NewService(repo, logRepo, &fakeTxManager{}, notifier)
	return svc, repo, logRepo, notifier
}

func mustCreateItem(t *testing.T, svc Service, sku string, quantity, threshold int64) *Item {
	t.Helper()
	th := decimal.NewFromInt(threshold)
	item, err := svc.CreateItem(context.Background(), CreateItemParams{
		Name:      "草甘膦异丙胺盐",
		Sku:       sku,
		Category:  "除草剂",
		Unit:      "瓶",
		Price:     2580,
		Quantity:  decimal.NewFromInt(quantity),
		Threshold: &th,
		Supplier:  "绿农化工",
	})
	if err != nil {
		t.Fatalf("创建商品失败: %v", err)
	}
	return item
}

// =========================================
// 用例测试
// =========================================

// TestService_CreateItem 测试商品创建
func TestService_CreateItem(t *testing.T) {
	t.Run("成功创建并推导状态", func(t *testing.T) {
		svc, _, logRepo, _ := setupService()

		item := mustCreateItem(t, svc, "ECO-001", 0, 15)
		if item.ID == 0 {
			t.Error("商品应分配ID")
		}
		if item.Status != StatusOutOfStock {
			t.Errorf("期望状态Out of Stock，实际%s", item.Status)
		}
		if len(logRepo.logs) != 1 || logRepo.logs[0].ChangeType != ChangeTypeCreate {
			t.Errorf("创建应写入1条CREATE日志，实际%d条", len(logRepo.logs))
		}
	})

	t.Run("阈值省略时默认为10", func(t *testing.T) {
		svc, _, _, _ := setupService()

		item, err := svc.CreateItem(context.Background(), CreateItemParams{
			Name: "吡虫啉", Sku: "PST-001", Unit: "升", Price: 9900,
			Quantity: decimal.NewFromInt(10),
		})
		if err != nil {
			t.Fatalf("创建失败: %v", err)
		}
		if !item.Threshold.Equal(decimal.NewFromInt(10)) {
			t.Errorf("期望默认阈值10，实际%s", item.Threshold)
		}
		if item.Status != StatusLowStock {
			t.Errorf("数量等于阈值应为Low Stock，实际%s", item.Status)
		}
	})

	t.Run("SKU重复时拒绝且不产生新商品", func(t *testing.T) {
		svc, repo, _, _ := setupService()
		mustCreateItem(t, svc, "ECO-001", 0, 15)

		_, err := svc.CreateItem(context.Background(), CreateItemParams{
			Name: "另一个商品", Sku: "ECO-001", Unit: "瓶",
		})
		if err != ErrSkuDuplicate {
			t.Errorf("期望ErrSkuDuplicate，实际%v", err)
		}
		if len(repo.items) != 1 {
			t.Errorf("重复SKU不应产生新商品，实际商品数%d", len(repo.items))
		}
	})

	t.Run("携带批次创建时总量按批次重算", func(t *testing.T) {
		svc, _, _, _ := setupService()

		item, err := svc.CreateItem(context.Background(), CreateItemParams{
			Name: "多菌灵", Sku: "FLG-001", Unit: "千克", Price: 1500,
			Quantity: decimal.NewFromInt(999),
			Batches:  []Batch{newTestBatch("B1", 30), newTestBatch("B2", 20)},
		})
		if err != nil {
			t.Fatalf("创建失败: %v", err)
		}
		if !item.Quantity.Equal(decimal.NewFromInt(50)) {
			t.Errorf("期望总量50，实际%s", item.Quantity)
		}
	})
}

// TestService_AddBatch 测试批次入库流程
func TestService_AddBatch(t *testing.T) {
	t.Run("入库后总量状态持久化并触发告警恢复", func(t *testing.T) {
		svc, repo, logRepo, notifier := setupService()
		item := mustCreateItem(t, svc, "ECO-001", 0, 15)

		updated, err := svc.AddBatch(context.Background(), item.ID, newTestBatch("B1", 40), "zhangsan")
		if err != nil {
			t.Fatalf("入库失败: %v", err)
		}

		if !updated.Quantity.Equal(decimal.NewFromInt(40)) {
			t.Errorf("期望总量40，实际%s", updated.Quantity)
		}
		if updated.Status != StatusInStock {
			t.Errorf("期望状态In Stock，实际%s", updated.Status)
		}

		// 落库后的状态一致
		persisted, _ := repo.FindByID(context.Background(), item.ID)
		if !persisted.Quantity.Equal(decimal.NewFromInt(40)) {
			t.Errorf("持久化总量期望40，实际%s", persisted.Quantity)
		}

		// 写入了入库日志
		last := logRepo.logs[len(logRepo.logs)-1]
		if last.ChangeType != ChangeTypeAddBatch || !last.Delta.Equal(decimal.NewFromInt(40)) {
			t.Errorf("期望ADD_BATCH日志delta=40，实际%s delta=%s", last.ChangeType, last.Delta)
		}
		if last.Operator != "zhangsan" {
			t.Errorf("期望操作人zhangsan，实际%s", last.Operator)
		}

		// 状态Out of Stock → In Stock触发一次通知
		found := false
		for _, c := range notifier.changes {
			if c.from == StatusOutOfStock && c.to == StatusInStock {
				found = true
			}
		}
		if !found {
			t.Errorf("期望收到Out of Stock→In Stock通知，实际%v", notifier.changes)
		}
	})

	t.Run("批次编号重复时拒绝且无状态变化", func(t *testing.T) {
		svc, repo, _, _ := setupService()
		item := mustCreateItem(t, svc, "ECO-001", 0, 15)
		if _, err := svc.AddBatch(context.Background(), item.ID, newTestBatch("B1", 40), ""); err != nil {
			t.Fatal(err)
		}

		_, err := svc.AddBatch(context.Background(), item.ID, newTestBatch("B1", 5), "")
		if err != ErrBatchIDDuplicate {
			t.Errorf("期望ErrBatchIDDuplicate，实际%v", err)
		}

		persisted, _ := repo.FindByID(context.Background(), item.ID)
		if !persisted.Quantity.Equal(decimal.NewFromInt(40)) {
			t.Errorf("拒绝后总量应保持40，实际%s", persisted.Quantity)
		}
		if len(persisted.Batches) != 1 {
			t.Errorf("拒绝后批次数应保持1，实际%d", len(persisted.Batches))
		}
	})

	t.Run("商品不存在", func(t *testing.T) {
		svc, _, _, _ := setupService()
		_, err := svc.AddBatch(context.Background(), 999, newTestBatch("B1", 10), "")
		if err != ErrItemNotFound {
			t.Errorf("期望ErrItemNotFound，实际%v", err)
		}
	})
}

// TestService_UpdateBatch 测试批次修改
func TestService_UpdateBatch(t *testing.T) {
	t.Run("总量按新旧数量差额调整", func(t *testing.T) {
		svc, _, _, _ := setupService()
		item := mustCreateItem(t, svc, "ECO-001", 0, 10)
		if _, err := svc.AddBatch(context.Background(), item.ID, newTestBatch("B1", 30), ""); err != nil {
			t.Fatal(err)
		}
		if _, err := svc.AddBatch(context.Background(), item.ID, newTestBatch("B2", 12), ""); err != nil {
			t.Fatal(err)
		}

		newQty := decimal.NewFromInt(5)
		updated, err := svc.UpdateBatch(context.Background(), item.ID, "B1", BatchPatch{Quantity: &newQty}, "")
		if err != nil {
			t.Fatalf("修改失败: %v", err)
		}
		if !updated.Quantity.Equal(decimal.NewFromInt(17)) {
			t.Errorf("期望总量17，实际%s", updated.Quantity)
		}
	})

	t.Run("批次不存在", func(t *testing.T) {
		svc, _, _, _ := setupService()
		item := mustCreateItem(t, svc, "ECO-001", 0, 10)

		_, err := svc.UpdateBatch(context.Background(), item.ID, "NOPE", BatchPatch{}, "")
		if err != ErrBatchNotFound {
			t.Errorf("期望ErrBatchNotFound，实际%v", err)
		}
	})
}

// TestService_RemoveBatch 测试批次移除
func TestService_RemoveBatch(t *testing.T) {
	t.Run("移除后状态转为Out of Stock并告警", func(t *testing.T) {
		svc, _, _, notifier := setupService()
		item := mustCreateItem(t, svc, "ECO-001", 0, 15)
		if _, err := svc.AddBatch(context.Background(), item.ID, newTestBatch("B1", 8), ""); err != nil {
			t.Fatal(err)
		}

		updated, err := svc.RemoveBatch(context.Background(), item.ID, "B1", "")
		if err != nil {
			t.Fatalf("移除失败: %v", err)
		}
		if !updated.Quantity.IsZero() {
			t.Errorf("期望总量0，实际%s", updated.Quantity)
		}
		if updated.Status != StatusOutOfStock {
			t.Errorf("期望状态Out of Stock，实际%s", updated.Status)
		}

		last := notifier.changes[len(notifier.changes)-1]
		if last.from != StatusLowStock || last.to != StatusOutOfStock {
			t.Errorf("期望Low Stock→Out of Stock通知，实际%v", last)
		}
	})

	t.Run("批次不存在", func(t *testing.T) {
		svc, _, _, _ := setupService()
		item := mustCreateItem(t, svc, "ECO-001", 0, 10)

		_, err := svc.RemoveBatch(context.Background(), item.ID, "NOPE", "")
		if err != ErrBatchNotFound {
			t.Errorf("期望ErrBatchNotFound，实际%v", err)
		}
	})
}

// TestService_UpdateItem 测试商品部分更新
func TestService_UpdateItem(t *testing.T) {
	t.Run("nil字段保持原值", func(t *testing.T) {
		svc, _, _, _ := setupService()
		item := mustCreateItem(t, svc, "ECO-001", 20, 10)

		price := int64(3200)
		updated, err := svc.UpdateItem(context.Background(), item.ID, UpdateItemParams{Price: &price})
		if err != nil {
			t.Fatalf("更新失败: %v", err)
		}
		if updated.Price != 3200 {
			t.Errorf("期望价格3200，实际%d", updated.Price)
		}
		if updated.Name != "草甘膦异丙胺盐" {
			t.Errorf("未传名称应保持原值，实际%s", updated.Name)
		}
		if !updated.Quantity.Equal(decimal.NewFromInt(20)) {
			t.Errorf("未传数量应保持20，实际%s", updated.Quantity)
		}
	})

	t.Run("数量或阈值变化后状态无条件重算", func(t *testing.T) {
		svc, _, _, _ := setupService()
		item := mustCreateItem(t, svc, "ECO-001", 20, 10)

		threshold := decimal.NewFromInt(30)
		updated, err := svc.UpdateItem(context.Background(), item.ID, UpdateItemParams{Threshold: &threshold})
		if err != nil {
			t.Fatalf("更新失败: %v", err)
		}
		if updated.Status != StatusLowStock {
			t.Errorf("阈值上调后期望Low Stock，实际%s", updated.Status)
		}
	})

	t.Run("Batches非nil时整体替换", func(t *testing.T) {
		svc, repo, _, _ := setupService()
		item := mustCreateItem(t, svc, "ECO-001", 0, 10)
		if _, err := svc.AddBatch(context.Background(), item.ID, newTestBatch("B1", 30), ""); err != nil {
			t.Fatal(err)
		}

		replacement := []Batch{newTestBatch("C1", 5)}
		updated, err := svc.UpdateItem(context.Background(), item.ID, UpdateItemParams{Batches: &replacement})
		if err != nil {
			t.Fatalf("更新失败: %v", err)
		}
		if len(updated.Batches) != 1 || updated.Batches[0].BatchID != "C1" {
			t.Errorf("期望批次被整体替换为C1，实际%v", updated.Batches)
		}
		if !updated.Quantity.Equal(decimal.NewFromInt(5)) {
			t.Errorf("期望总量5，实际%s", updated.Quantity)
		}

		persisted, _ := repo.FindByID(context.Background(), item.ID)
		if len(persisted.Batches) != 1 {
			t.Errorf("持久化批次数期望1，实际%d", len(persisted.Batches))
		}
	})

	t.Run("修改SKU时检查重复", func(t *testing.T) {
		svc, _, _, _ := setupService()
		mustCreateItem(t, svc, "ECO-001", 0, 10)
		other := mustCreateItemWithSku(t, svc, "ECO-002")

		dup := "ECO-001"
		_, err := svc.UpdateItem(context.Background(), other.ID, UpdateItemParams{Sku: &dup})
		if err != ErrSkuDuplicate {
			t.Errorf("期望ErrSkuDuplicate，实际%v", err)
		}
	})

	t.Run("商品不存在", func(t *testing.T) {
		svc, _, _, _ := setupService()
		_, err := svc.UpdateItem(context.Background(), 999, UpdateItemParams{})
		if err != ErrItemNotFound {
			t.Errorf("期望ErrItemNotFound，实际%v", err)
		}
	})
}

func mustCreateItemWithSku(t *testing.T, svc Service, sku string) *Item {
	t.Helper()
	item, err := svc.CreateItem(context.Background(), CreateItemParams{
		Name: "吡虫啉", Sku: sku, Unit: "升", Price: 9900,
	})
	if err != nil {
		t.Fatalf("创建商品失败: %v", err)
	}
	return item
}

// TestService_DeleteItem 测试商品删除
func TestService_DeleteItem(t *testing.T) {
	svc, repo, _, _ := setupService()
	item := mustCreateItem(t, svc, "ECO-001", 0, 10)

	if err := svc.DeleteItem(context.Background(), item.ID); err != nil {
		t.Fatalf("删除失败: %v", err)
	}
	if _, err := repo.FindByID(context.Background(), item.ID); err != ErrItemNotFound {
		t.Errorf("删除后查询期望ErrItemNotFound，实际%v", err)
	}

	if err := svc.DeleteItem(context.Background(), item.ID); err != ErrItemNotFound {
		t.Errorf("重复删除期望ErrItemNotFound，实际%v", err)
	}
}

// TestService_ExportRows 测试导出
func TestService_ExportRows(t *testing.T) {
	svc, _, _, _ := setupService()

	noBatch := mustCreateItem(t, svc, "ECO-001", 5, 10)
	withBatches := mustCreateItemWithSku(t, svc, "ECO-002")
	if _, err := svc.AddBatch(context.Background(), withBatches.ID, newTestBatch("B1", 10), ""); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.AddBatch(context.Background(), withBatches.ID, newTestBatch("B2", 20), ""); err != nil {
		t.Fatal(err)
	}

	rows, err := svc.ExportRows(context.Background(), ListParams{})
	if err != nil {
		t.Fatalf("导出失败: %v", err)
	}

	// 无批次商品1行 + 两批次商品2行
	if len(rows) != 3 {
		t.Fatalf("期望3行，实际%d行", len(rows))
	}
	if rows[0].ItemID != noBatch.ID || rows[0].BatchID != "" {
		t.Errorf("第1行应为无批次商品行: %+v", rows[0])
	}
}

// TestService_ListExpiring 测试即将过期批次查询
func TestService_ListExpiring(t *testing.T) {
	svc, _, _, _ := setupService()
	item := mustCreateItem(t, svc, "ECO-001", 0, 10)

	near := newTestBatch("B1", 10)
	near.ManufacturingDate = time.Now().AddDate(-1, 0, 0)
	near.ExpiryDate = time.Now().AddDate(0, 0, 20)
	far := newTestBatch("B2", 10)
	far.ManufacturingDate = time.Now().AddDate(-1, 0, 0)
	far.ExpiryDate = time.Now().AddDate(2, 0, 0)

	if _, err := svc.AddBatch(context.Background(), item.ID, near, ""); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.AddBatch(context.Background(), item.ID, far, ""); err != nil {
		t.Fatal(err)
	}

	rows, err := svc.ListExpiring(context.Background(), 30*24*time.Hour)
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if len(rows) != 1 || rows[0].BatchID != "B1" {
		t.Errorf("期望仅B1在30天内过期，实际%v", rows)
	}
}

// TestService_ListStockLogs 测试库存变更历史
func TestService_ListStockLogs(t *testing.T) {
	svc, _, _, _ := setupService()
	item := mustCreateItem(t, svc, "ECO-001", 0, 10)
	if _, err := svc.AddBatch(context.Background(), item.ID, newTestBatch("B1", 30), ""); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.RemoveBatch(context.Background(), item.ID, "B1", ""); err != nil {
		t.Fatal(err)
	}

	logs, err := svc.ListStockLogs(context.Background(), item.ID, 10)
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	// CREATE + ADD_BATCH + REMOVE_BATCH
	if len(logs) != 3 {
		t.Fatalf("期望3条日志，实际%d条", len(logs))
	}
	if logs[0].ChangeType != ChangeTypeRemoveBatch {
		t.Errorf("最新一条应为REMOVE_BATCH，实际%s", logs[0].ChangeType)
	}
}
