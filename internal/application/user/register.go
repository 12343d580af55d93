package user

import (
	"context"

	"github.com/lvtian/agrostock/internal/domain/user"
)

// RegisterUseCase 用户注册用例
// 设计说明:
// 1. 邮箱格式、密码强度、昵称长度校验在领域服务完成
// 2. 角色默认为operator,admin账号由管理员在后台创建
type RegisterUseCase struct {
	userService user.Service
}

// NewRegisterUseCase 创建注册用例
func NewRegisterUseCase(userService user.Service) *RegisterUseCase {
	return &RegisterUseCase{userService: userService}
}

// RegisterRequest 注册请求DTO
type RegisterRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Nickname string `json:"nickname" binding:"required"`
}

// RegisterResponse 注册响应DTO
type RegisterResponse struct {
	User UserInfo `json:"user"`
}

// Execute 执行注册
func (uc *RegisterUseCase) Execute(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	u, err := uc.userService.Register(ctx, req.Email, req.Password, req.Nickname, user.RoleOperator)
	if err != nil {
		return nil, err
	}

	return &RegisterResponse{
		User: UserInfo{
			ID:       u.ID,
			Email:    u.Email,
			Nickname: u.Nickname,
			Role:     string(u.Role),
		},
	}, nil
}
