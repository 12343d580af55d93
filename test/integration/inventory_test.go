package integration

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestItemLifecycle 商品创建、查询、更新流程
func TestItemLifecycle(t *testing.T) {
	RequireServer(t)

	_, token := RegisterTestUser(t, "inventory")

	// 1. 创建商品(无批次,初始库存0)
	item := CreateTestItem(t, token, "草甘膦异丙胺盐", "0", "15")
	assert.Equal(t, "Out of Stock", item.Status, "零库存应为缺货状态")

	// 2. 查询详情
	detailResp := GetJSON(t, fmt.Sprintf("%s/items/%d", BaseURL, item.ID), token)
	require.Equal(t, 0, detailResp.Code, "查询详情失败: %s", detailResp.Message)

	// 3. 更新名称(部分更新,其他字段不变)
	updateResp := DoJSON(t, "PUT", fmt.Sprintf("%s/items/%d", BaseURL, item.ID), map[string]interface{}{
		"name": "草甘膦异丙胺盐水剂",
	}, token)
	require.Equal(t, 0, updateResp.Code, "更新失败: %s", updateResp.Message)

	var updated ItemData
	require.NoError(t, json.Unmarshal(updateResp.Data, &updated))
	assert.Equal(t, "草甘膦异丙胺盐水剂", updated.Name)
	assert.Equal(t, item.Sku, updated.Sku, "未更新的字段应保持原值")

	// 4. SKU重复检查
	dupResp := PostJSON(t, BaseURL+"/items", map[string]interface{}{
		"name": "重复SKU商品",
		"sku":  item.Sku,
	}, token)
	assert.NotEqual(t, 0, dupResp.Code, "重复SKU应该失败")
}

// TestBatchFlow 批次入库、状态推导、流水完整流程
func TestBatchFlow(t *testing.T) {
	RequireServer(t)

	_, token := RegisterTestUser(t, "batch")

	// 1. 创建零库存商品,阈值15
	item := CreateTestItem(t, token, "吡虫啉可湿性粉剂", "0", "15")
	require.Equal(t, "Out of Stock", item.Status)

	// 2. 入库批次B1数量40 → 总量40,状态In Stock
	addResp := PostJSON(t, fmt.Sprintf("%s/items/%d/batches", BaseURL, item.ID), map[string]interface{}{
		"batch_id":           "B1",
		"lot_number":         "20250301-A",
		"quantity":           json.Number("40"),
		"manufacturing_date": "2025-03-01",
		"expiry_date":        "2027-03-01",
	}, token)
	require.Equal(t, 0, addResp.Code, "批次入库失败: %s", addResp.Message)

	var afterAdd ItemData
	require.NoError(t, json.Unmarshal(addResp.Data, &afterAdd))
	assert.Equal(t, "40", afterAdd.Quantity.String())
	assert.Equal(t, "In Stock", afterAdd.Status)
	require.Len(t, afterAdd.Batches, 1)

	// 3. 重复批次编号应失败
	dupResp := PostJSON(t, fmt.Sprintf("%s/items/%d/batches", BaseURL, item.ID), map[string]interface{}{
		"batch_id": "B1",
		"quantity": json.Number("10"),
	}, token)
	assert.NotEqual(t, 0, dupResp.Code, "重复批次编号应该失败")

	// 4. 修改批次数量40→12 → 总量12,低于阈值,Low Stock
	updateResp := DoJSON(t, "PUT", fmt.Sprintf("%s/items/%d/batches/B1", BaseURL, item.ID), map[string]interface{}{
		"quantity": json.Number("12"),
	}, token)
	require.Equal(t, 0, updateResp.Code, "修改批次失败: %s", updateResp.Message)

	var afterUpdate ItemData
	require.NoError(t, json.Unmarshal(updateResp.Data, &afterUpdate))
	assert.Equal(t, "12", afterUpdate.Quantity.String())
	assert.Equal(t, "Low Stock", afterUpdate.Status)

	// 5. 删除批次 → 总量0,Out of Stock
	removeResp := DoJSON(t, "DELETE", fmt.Sprintf("%s/items/%d/batches/B1", BaseURL, item.ID), nil, token)
	require.Equal(t, 0, removeResp.Code, "删除批次失败: %s", removeResp.Message)

	var afterRemove ItemData
	require.NoError(t, json.Unmarshal(removeResp.Data, &afterRemove))
	assert.Equal(t, "0", afterRemove.Quantity.String())
	assert.Equal(t, "Out of Stock", afterRemove.Status)
	assert.Len(t, afterRemove.Batches, 0)

	// 6. 库存流水应记录每次变更
	logsResp := GetJSON(t, fmt.Sprintf("%s/items/%d/logs", BaseURL, item.ID), token)
	require.Equal(t, 0, logsResp.Code, "查询流水失败: %s", logsResp.Message)

	var logs []map[string]interface{}
	require.NoError(t, json.Unmarshal(logsResp.Data, &logs))
	assert.GreaterOrEqual(t, len(logs), 3, "创建+入库+修改+删除应产生至少3条流水")
}

// TestItemListAndFilter 列表分页与过滤
func TestItemListAndFilter(t *testing.T) {
	RequireServer(t)

	_, token := RegisterTestUser(t, "list")

	item := CreateTestItem(t, token, "多菌灵悬浮剂", "100", "10")

	// 1. 按SKU关键词搜索能找到
	listResp := GetJSON(t, BaseURL+"/items?keyword="+item.Sku, token)
	require.Equal(t, 0, listResp.Code, "列表查询失败: %s", listResp.Message)

	var listData ItemListData
	require.NoError(t, json.Unmarshal(listResp.Data, &listData))
	require.Equal(t, int64(1), listData.Total)
	assert.Equal(t, item.ID, listData.List[0].ID)
	assert.Equal(t, "In Stock", listData.List[0].Status)

	// 2. 状态过滤:该商品不在缺货列表里
	outResp := GetJSON(t, BaseURL+"/items?keyword="+item.Sku+"&status=Out+of+Stock", token)
	require.Equal(t, 0, outResp.Code)

	var outData ItemListData
	require.NoError(t, json.Unmarshal(outResp.Data, &outData))
	assert.Equal(t, int64(0), outData.Total, "满库存商品不应出现在缺货过滤结果中")
}

// TestDeleteItemRequiresAdmin 删除商品需要管理员权限
func TestDeleteItemRequiresAdmin(t *testing.T) {
	RequireServer(t)

	_, token := RegisterTestUser(t, "operator")
	item := CreateTestItem(t, token, "待删除商品", "5", "10")

	// operator角色删除应被拒绝
	resp := DoJSON(t, "DELETE", fmt.Sprintf("%s/items/%d", BaseURL, item.ID), nil, token)
	assert.Equal(t, 40104, resp.Code, "普通操作员删除商品应返回40104")
}
