package inventory

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/lvtian/agrostock/internal/domain/inventory"
	apperrors "github.com/lvtian/agrostock/pkg/errors"
)

// 应用层共享DTO
// 设计说明:
// 1. 数量和阈值使用decimal传输,避免float64精度丢失
// 2. 日期统一使用"2006-01-02"格式的字符串,由应用层解析
// 3. 领域实体不直接暴露给接口层,统一经过DTO转换

const dateLayout = "2006-01-02"

// BatchInput 批次输入DTO(创建和整体替换时使用)
type BatchInput struct {
	BatchID           string          `json:"batch_id" binding:"required"`
	LotNumber         string          `json:"lot_number"`
	Quantity          decimal.Decimal `json:"quantity"`
	ManufacturingDate string          `json:"manufacturing_date"` // 2006-01-02
	ExpiryDate        string          `json:"expiry_date"`        // 2006-01-02
	Supplier          string          `json:"supplier"`
	LocationCode      string          `json:"location_code"`
	Notes             string          `json:"notes"`
}

// BatchDetail 批次详情DTO
type BatchDetail struct {
	ID                uint            `json:"id"`
	BatchID           string          `json:"batch_id"`
	LotNumber         string          `json:"lot_number"`
	Quantity          decimal.Decimal `json:"quantity"`
	ManufacturingDate string          `json:"manufacturing_date,omitempty"`
	ExpiryDate        string          `json:"expiry_date,omitempty"`
	Supplier          string          `json:"supplier,omitempty"`
	LocationCode      string          `json:"location_code,omitempty"`
	Notes             string          `json:"notes,omitempty"`
	CreatedAt         string          `json:"created_at,omitempty"`
}

// ItemDetail 商品详情DTO
type ItemDetail struct {
	ID        uint            `json:"id"`
	Name      string          `json:"name"`
	Sku       string          `json:"sku"`
	Category  string          `json:"category"`
	Unit      string          `json:"unit"`
	Price     int64           `json:"price"` // 分
	Quantity  decimal.Decimal `json:"quantity"`
	Threshold decimal.Decimal `json:"threshold"`
	Status    string          `json:"status"`
	Supplier  string          `json:"supplier"`
	Batches   []BatchDetail   `json:"batches"`
	CreatedAt string          `json:"created_at"`
	UpdatedAt string          `json:"updated_at"`
}

// toItemDetail 领域实体 → 详情DTO
func toItemDetail(item *inventory.Item) *ItemDetail {
	batches := make([]BatchDetail, len(item.Batches))
	for i, b := range item.Batches {
		batches[i] = BatchDetail{
			ID:                b.ID,
			BatchID:           b.BatchID,
			LotNumber:         b.LotNumber,
			Quantity:          b.Quantity,
			ManufacturingDate: formatDate(b.ManufacturingDate),
			ExpiryDate:        formatDate(b.ExpiryDate),
			Supplier:          b.Supplier,
			LocationCode:      b.LocationCode,
			Notes:             b.Notes,
			CreatedAt:         formatTime(b.CreatedAt),
		}
	}

	return &ItemDetail{
		ID:        item.ID,
		Name:      item.Name,
		Sku:       item.Sku,
		Category:  item.Category,
		Unit:      item.Unit,
		Price:     item.Price,
		Quantity:  item.Quantity,
		Threshold: item.Threshold,
		Status:    string(item.Status),
		Supplier:  item.Supplier,
		Batches:   batches,
		CreatedAt: formatTime(item.CreatedAt),
		UpdatedAt: formatTime(item.UpdatedAt),
	}
}

// toDomainBatch 批次输入DTO → 领域实体(解析日期)
func toDomainBatch(input BatchInput) (inventory.Batch, error) {
	manufacturingDate, err := parseDate(input.ManufacturingDate)
	if err != nil {
		return inventory.Batch{}, apperrors.New(apperrors.ErrCodeInvalidParams, "生产日期格式错误,应为YYYY-MM-DD")
	}
	expiryDate, err := parseDate(input.ExpiryDate)
	if err != nil {
		return inventory.Batch{}, apperrors.New(apperrors.ErrCodeInvalidParams, "有效期格式错误,应为YYYY-MM-DD")
	}

	return inventory.Batch{
		BatchID:           input.BatchID,
		LotNumber:         input.LotNumber,
		Quantity:          input.Quantity,
		ManufacturingDate: manufacturingDate,
		ExpiryDate:        expiryDate,
		Supplier:          input.Supplier,
		LocationCode:      input.LocationCode,
		Notes:             input.Notes,
	}, nil
}

// toDomainBatches 批量转换
func toDomainBatches(inputs []BatchInput) ([]inventory.Batch, error) {
	batches := make([]inventory.Batch, len(inputs))
	for i, input := range inputs {
		b, err := toDomainBatch(input)
		if err != nil {
			return nil, err
		}
		batches[i] = b
	}
	return batches, nil
}

// parseDate 解析日期字符串,空串返回零值
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(dateLayout, s)
}

// formatDate 格式化日期,零值返回空串
func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

// formatTime 格式化时间,零值返回空串
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}
