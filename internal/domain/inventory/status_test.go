package inventory

import (
	"testing"

	"github.com/shopspring/decimal"
)

// TestDeriveStatus 测试库存状态推导规则
func TestDeriveStatus(t *testing.T) {
	tests := []struct {
		name      string
		quantity  string
		threshold string
		want      Status
	}{
		{"数量为0", "0", "10", StatusOutOfStock},
		{"数量为负数", "-3", "10", StatusOutOfStock},
		{"数量等于阈值", "10", "10", StatusLowStock},
		{"数量低于阈值", "8", "15", StatusLowStock},
		{"数量高于阈值", "40", "15", StatusInStock},
		{"小数数量低于阈值", "9.5", "10", StatusLowStock},
		{"小数数量高于阈值", "10.5", "10", StatusInStock},
		{"阈值为0且有库存", "1", "0", StatusInStock},
		{"阈值为负数且有库存", "5", "-1", StatusInStock},
		{"阈值为负数且无库存", "0", "-1", StatusOutOfStock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quantity := decimal.RequireFromString(tt.quantity)
			threshold := decimal.RequireFromString(tt.threshold)

			got := DeriveStatus(quantity, threshold)
			if got != tt.want {
				t.Errorf("DeriveStatus(%s, %s) = %s, 期望%s", tt.quantity, tt.threshold, got, tt.want)
			}
		})
	}
}

// TestDeriveStatus_Idempotent 测试推导函数幂等性
func TestDeriveStatus_Idempotent(t *testing.T) {
	quantity := decimal.NewFromInt(8)
	threshold := decimal.NewFromInt(15)

	first := DeriveStatus(quantity, threshold)
	second := DeriveStatus(quantity, threshold)

	if first != second {
		t.Errorf("相同输入推导结果不一致: %s != %s", first, second)
	}
}
