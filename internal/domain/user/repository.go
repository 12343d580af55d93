package user

import (
	"context"
)

// Repository 账号仓储接口
// 接口定义在domain层（依赖倒置原则），
// 具体实现在infrastructure/persistence/mysql层。
type Repository interface {
	// Create 创建账号
	// 邮箱已存在时返回errors.ErrEmailDuplicate
	Create(ctx context.Context, user *User) error

	// FindByID 根据ID查找账号
	// 不存在时返回errors.ErrUserNotFound
	FindByID(ctx context.Context, id uint) (*User, error)

	// FindByEmail 根据邮箱查找账号
	FindByEmail(ctx context.Context, email string) (*User, error)

	// Update 更新账号信息
	Update(ctx context.Context, user *User) error

	// Delete 删除账号（软删除）
	Delete(ctx context.Context, id uint) error
}
