package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// 集成测试辅助工具
// 依赖一个本地运行的服务实例(make run),服务不可用时整组测试跳过

const (
	// BaseURL API基础URL
	BaseURL = "http://localhost:8080/api/v1"
	// Timeout HTTP请求超时时间
	Timeout = 10 * time.Second
)

// RequireServer 检查服务是否可用,不可用时跳过测试
func RequireServer(t *testing.T) {
	conn, err := net.DialTimeout("tcp", "localhost:8080", time.Second)
	if err != nil {
		t.Skipf("服务未启动，跳过集成测试: %v", err)
	}
	conn.Close()
}

// Response 统一响应结构
type Response struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// RegisterData 注册响应数据
type RegisterData struct {
	User UserData `json:"user"`
}

// UserData 用户信息
type UserData struct {
	ID       uint   `json:"id"`
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
	Role     string `json:"role"`
}

// LoginData 登录响应数据
type LoginData struct {
	User         UserData `json:"user"`
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
}

// ItemData 商品详情响应数据
// 数量字段用json.Number接收(服务端以decimal精确值返回)
type ItemData struct {
	ID        uint        `json:"id"`
	Name      string      `json:"name"`
	Sku       string      `json:"sku"`
	Category  string      `json:"category"`
	Unit      string      `json:"unit"`
	Price     int64       `json:"price"`
	Quantity  json.Number `json:"quantity"`
	Threshold json.Number `json:"threshold"`
	Status    string      `json:"status"`
	Supplier  string      `json:"supplier"`
	Batches   []BatchData `json:"batches"`
}

// BatchData 批次响应数据
type BatchData struct {
	ID       uint        `json:"id"`
	BatchID  string      `json:"batch_id"`
	Quantity json.Number `json:"quantity"`
}

// ItemListData 商品列表响应数据
type ItemListData struct {
	List     []ItemListEntry `json:"list"`
	Total    int64           `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
}

// ItemListEntry 商品列表项
type ItemListEntry struct {
	ID         uint        `json:"id"`
	Name       string      `json:"name"`
	Sku        string      `json:"sku"`
	Quantity   json.Number `json:"quantity"`
	Status     string      `json:"status"`
	BatchCount int         `json:"batch_count"`
}

// DoJSON 发送任意方法的JSON请求并解析响应
func DoJSON(t *testing.T, method, url string, data interface{}, token string) *Response {
	var body io.Reader
	if data != nil {
		jsonData, err := json.Marshal(data)
		require.NoError(t, err, "JSON序列化失败")
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err, "创建HTTP请求失败")

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: Timeout}
	resp, err := client.Do(req)
	require.NoError(t, err, "发送HTTP请求失败")
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "读取响应体失败")

	var result Response
	err = json.Unmarshal(respBody, &result)
	require.NoError(t, err, "解析JSON响应失败: %s", string(respBody))

	return &result
}

// PostJSON 发送POST请求并解析JSON响应
func PostJSON(t *testing.T, url string, data interface{}, token string) *Response {
	return DoJSON(t, "POST", url, data, token)
}

// GetJSON 发送GET请求并解析JSON响应
func GetJSON(t *testing.T, url string, token string) *Response {
	return DoJSON(t, "GET", url, nil, token)
}

// GenerateTestEmail 生成唯一的测试邮箱
func GenerateTestEmail(prefix string) string {
	return fmt.Sprintf("%s_%d@test.com", prefix, time.Now().UnixNano())
}

// GenerateTestSKU 生成唯一的测试SKU
func GenerateTestSKU() string {
	return fmt.Sprintf("TEST-%d", time.Now().UnixNano()%1000000000)
}

// RegisterTestUser 注册测试用户并返回Token
func RegisterTestUser(t *testing.T, nickname string) (email string, token string) {
	email = GenerateTestEmail(nickname)
	registerReq := map[string]string{
		"email":    email,
		"password": "Test1234",
		"nickname": nickname,
	}

	registerResp := PostJSON(t, BaseURL+"/auth/register", registerReq, "")
	require.Equal(t, 0, registerResp.Code, "注册失败: %s", registerResp.Message)

	loginReq := map[string]string{
		"email":    email,
		"password": "Test1234",
	}

	loginResp := PostJSON(t, BaseURL+"/auth/login", loginReq, "")
	require.Equal(t, 0, loginResp.Code, "登录失败: %s", loginResp.Message)

	var loginData LoginData
	err := json.Unmarshal(loginResp.Data, &loginData)
	require.NoError(t, err, "解析登录响应失败")

	return email, loginData.AccessToken
}

// CreateTestItem 创建测试商品并返回商品数据
func CreateTestItem(t *testing.T, token string, name string, quantity string, threshold string) ItemData {
	itemReq := map[string]interface{}{
		"name":      name,
		"sku":       GenerateTestSKU(),
		"category":  "除草剂",
		"unit":      "瓶",
		"price":     2580, // 25.80元
		"quantity":  json.Number(quantity),
		"threshold": json.Number(threshold),
		"supplier":  "测试供应商",
	}

	itemResp := PostJSON(t, BaseURL+"/items", itemReq, token)
	require.Equal(t, 0, itemResp.Code, "创建商品失败: %s", itemResp.Message)

	var itemData ItemData
	err := json.Unmarshal(itemResp.Data, &itemData)
	require.NoError(t, err, "解析商品响应失败")

	return itemData
}
