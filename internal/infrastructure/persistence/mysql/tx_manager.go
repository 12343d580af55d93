package mysql

import (
	"context"

	"gorm.io/gorm"
)

// TxManager 事务管理器
// 实现inventory.TxManager接口:
// 1. 封装GORM的Transaction方法
// 2. 通过context传递事务DB(Repository的getDB方法从context提取)
// 3. 支持嵌套事务(GORM自动使用Savepoint)
type TxManager struct {
	db *gorm.DB
}

// NewTxManager 创建事务管理器
func NewTxManager(db *gorm.DB) *TxManager {
	return &TxManager{db: db}
}

// Transaction 执行事务
// fn返回error时自动ROLLBACK,返回nil时自动COMMIT
//
// 使用示例:
//
//	err := txManager.Transaction(ctx, func(ctx context.Context) error {
//	    item, err := itemRepo.LockByID(ctx, itemID) // SELECT FOR UPDATE
//	    if err != nil {
//	        return err
//	    }
//	    if err := item.AddBatch(batch); err != nil {
//	        return err // 自动回滚
//	    }
//	    return itemRepo.Update(ctx, item) // nil则提交
//	})
func (m *TxManager) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 将事务DB注入到Context中
		txCtx := context.WithValue(ctx, "tx", tx)
		return fn(txCtx)
	})
}
