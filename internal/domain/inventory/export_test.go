package inventory

import (
	"testing"

	"github.com/shopspring/decimal"
)

// TestFlattenRows 测试导出行展开
func TestFlattenRows(t *testing.T) {
	t.Run("无批次商品恰好产生一行", func(t *testing.T) {
		item := newTestItem(t, 20, 10)
		item.ID = 1

		rows := FlattenRows([]*Item{item})
		if len(rows) != 1 {
			t.Fatalf("期望1行，实际%d行", len(rows))
		}
		if rows[0].BatchID != "" {
			t.Errorf("无批次行的批次编号应为空，实际%s", rows[0].BatchID)
		}
		if rows[0].Supplier != "绿农化工" {
			t.Errorf("期望商品级供应商，实际%s", rows[0].Supplier)
		}
	})

	t.Run("N个批次产生N行", func(t *testing.T) {
		item := newTestItem(t, 0, 10)
		item.ID = 2
		for _, b := range []Batch{newTestBatch("B1", 10), newTestBatch("B2", 20), newTestBatch("B3", 5)} {
			if err := item.AddBatch(b); err != nil {
				t.Fatal(err)
			}
		}

		rows := FlattenRows([]*Item{item})
		if len(rows) != 3 {
			t.Fatalf("期望3行，实际%d行", len(rows))
		}
		for i, expected := range []string{"B1", "B2", "B3"} {
			if rows[i].BatchID != expected {
				t.Errorf("第%d行期望批次%s，实际%s", i, expected, rows[i].BatchID)
			}
			if !rows[i].ItemQuantity.Equal(decimal.NewFromInt(35)) {
				t.Errorf("每行都应携带商品总量35，实际%s", rows[i].ItemQuantity)
			}
		}
	})

	t.Run("批次供应商为空时回退到商品默认供应商", func(t *testing.T) {
		item := newTestItem(t, 0, 10)

		own := newTestBatch("B1", 10)
		own.Supplier = "华丰农资"
		blank := newTestBatch("B2", 10)
		blank.Supplier = ""

		if err := item.AddBatch(own); err != nil {
			t.Fatal(err)
		}
		if err := item.AddBatch(blank); err != nil {
			t.Fatal(err)
		}

		rows := FlattenRows([]*Item{item})
		if rows[0].Supplier != "华丰农资" {
			t.Errorf("批次自带供应商应保留，实际%s", rows[0].Supplier)
		}
		if rows[1].Supplier != "绿农化工" {
			t.Errorf("批次供应商为空时应回退到商品供应商，实际%s", rows[1].Supplier)
		}
	})

	t.Run("多个商品按顺序展开", func(t *testing.T) {
		a := newTestItem(t, 5, 10)
		a.ID = 1
		b := newTestItem(t, 0, 10)
		b.ID = 2
		b.Sku = "ECO-002"
		if err := b.AddBatch(newTestBatch("B1", 10)); err != nil {
			t.Fatal(err)
		}

		rows := FlattenRows([]*Item{a, b})
		if len(rows) != 2 {
			t.Fatalf("期望2行，实际%d行", len(rows))
		}
		if rows[0].ItemID != 1 || rows[1].ItemID != 2 {
			t.Errorf("行顺序应与商品顺序一致: %d, %d", rows[0].ItemID, rows[1].ItemID)
		}
	})
}
