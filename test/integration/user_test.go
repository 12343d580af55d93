package integration

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestUserRegisterAndLogin 注册登录流程
func TestUserRegisterAndLogin(t *testing.T) {
	RequireServer(t)

	email := GenerateTestEmail("user")

	// 1. 注册
	registerResp := PostJSON(t, BaseURL+"/auth/register", map[string]string{
		"email":    email,
		"password": "Test1234",
		"nickname": "集成测试用户",
	}, "")
	require.Equal(t, 0, registerResp.Code, "注册失败: %s", registerResp.Message)

	var registerData RegisterData
	require.NoError(t, json.Unmarshal(registerResp.Data, &registerData))
	assert.Equal(t, email, registerData.User.Email)
	assert.Equal(t, "operator", registerData.User.Role, "默认角色应为operator")

	// 2. 重复注册应失败
	dupResp := PostJSON(t, BaseURL+"/auth/register", map[string]string{
		"email":    email,
		"password": "Test1234",
		"nickname": "重复用户",
	}, "")
	assert.NotEqual(t, 0, dupResp.Code, "重复邮箱注册应该失败")

	// 3. 登录
	loginResp := PostJSON(t, BaseURL+"/auth/login", map[string]string{
		"email":    email,
		"password": "Test1234",
	}, "")
	require.Equal(t, 0, loginResp.Code, "登录失败: %s", loginResp.Message)

	var loginData LoginData
	require.NoError(t, json.Unmarshal(loginResp.Data, &loginData))
	assert.NotEmpty(t, loginData.AccessToken)
	assert.NotEmpty(t, loginData.RefreshToken)

	// 4. 错误密码登录应失败
	wrongResp := PostJSON(t, BaseURL+"/auth/login", map[string]string{
		"email":    email,
		"password": "Wrong9999",
	}, "")
	assert.NotEqual(t, 0, wrongResp.Code, "错误密码登录应该失败")
}

// TestUserWeakPassword 弱密码注册被拒绝
func TestUserWeakPassword(t *testing.T) {
	RequireServer(t)

	resp := PostJSON(t, BaseURL+"/auth/register", map[string]string{
		"email":    GenerateTestEmail("weak"),
		"password": "12345678", // 纯数字
		"nickname": "弱密码用户",
	}, "")
	assert.NotEqual(t, 0, resp.Code, "弱密码注册应该失败")
}

// TestUserLogout 登出后Token失效
func TestUserLogout(t *testing.T) {
	RequireServer(t)

	_, token := RegisterTestUser(t, "logout")

	// 1. 登出前可以访问
	listResp := GetJSON(t, BaseURL+"/items?page=1&page_size=1", token)
	require.Equal(t, 0, listResp.Code, "登出前应可访问: %s", listResp.Message)

	// 2. 登出
	logoutResp := PostJSON(t, BaseURL+"/auth/logout", nil, token)
	require.Equal(t, 0, logoutResp.Code, "登出失败: %s", logoutResp.Message)

	// 3. 登出后Token进入黑名单
	afterResp := GetJSON(t, BaseURL+"/items?page=1&page_size=1", token)
	assert.NotEqual(t, 0, afterResp.Code, "登出后Token应失效")
}

// TestUnauthorizedAccess 未登录访问受保护接口
func TestUnauthorizedAccess(t *testing.T) {
	RequireServer(t)

	resp := GetJSON(t, BaseURL+"/items", "")
	assert.Equal(t, 40100, resp.Code, "未登录应返回40100")
}
