package user

import (
	"time"
)

// Role 账号角色
type Role string

const (
	RoleAdmin    Role = "admin"    // 管理员(可管理账号)
	RoleOperator Role = "operator" // 库管员(日常出入库操作)
)

// User 操作员账号实体（聚合根）
// DDD设计说明：
// 1. 密码已加密存储（bcrypt），不提供任何暴露明文的方法
// 2. 领域实体不依赖GORM tag（infrastructure层的Repository实现时处理映射）
// 3. 库存变更日志中的Operator字段记录的是账号的Nickname
type User struct {
	ID        uint
	Email     string
	Password  string // bcrypt哈希值
	Nickname  string
	Role      Role
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUser 创建操作员账号（工厂方法）
// hashedPassword必须是bcrypt加密后的密码
func NewUser(email, hashedPassword, nickname string, role Role) *User {
	now := time.Now()
	return &User{
		Email:     email,
		Password:  hashedPassword,
		Nickname:  nickname,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// UpdateNickname 更新昵称（领域行为）
func (u *User) UpdateNickname(nickname string) {
	u.Nickname = nickname
	u.UpdatedAt = time.Now()
}

// IsAdmin 判断是否为管理员账号
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
