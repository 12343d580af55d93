package inventory

import (
	apperrors "github.com/lvtian/agrostock/pkg/errors"
)

// 库存领域错误定义
var (
	// ErrItemNotFound 农资商品不存在
	ErrItemNotFound = apperrors.New(apperrors.ErrCodeItemNotFound, "农资商品不存在")

	// ErrBatchNotFound 批次不存在
	ErrBatchNotFound = apperrors.New(apperrors.ErrCodeBatchNotFound, "批次不存在")

	// ErrSkuDuplicate SKU已存在
	ErrSkuDuplicate = apperrors.New(apperrors.ErrCodeSkuDuplicate, "SKU编码已存在")

	// ErrBatchIDDuplicate 批次编号在该商品下已存在
	ErrBatchIDDuplicate = apperrors.New(apperrors.ErrCodeBatchIDDuplicate, "批次编号已存在")

	// ErrInvalidBatchID 批次编号为空
	ErrInvalidBatchID = apperrors.New(apperrors.ErrCodeInvalidParams, "批次编号不能为空")

	// ErrInvalidQuantity 数量不能为负数
	ErrInvalidQuantity = apperrors.New(apperrors.ErrCodeInvalidParams, "数量不能为负数")

	// ErrInvalidPrice 无效的价格
	ErrInvalidPrice = apperrors.New(apperrors.ErrCodeInvalidParams, "价格不能为负数")

	// ErrInvalidBatchDates 批次日期顺序错误
	ErrInvalidBatchDates = apperrors.New(apperrors.ErrCodeInvalidParams, "过期日期必须晚于生产日期")

	// ErrInvalidSku SKU为空
	ErrInvalidSku = apperrors.New(apperrors.ErrCodeInvalidParams, "SKU编码不能为空")

	// ErrInvalidName 商品名称为空
	ErrInvalidName = apperrors.New(apperrors.ErrCodeInvalidParams, "商品名称不能为空")
)
