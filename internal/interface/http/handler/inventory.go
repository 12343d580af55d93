package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	appinventory "github.com/lvtian/agrostock/internal/application/inventory"
	"github.com/lvtian/agrostock/internal/interface/http/middleware"
	"github.com/lvtian/agrostock/pkg/response"
)

// InventoryHandler 库存HTTP处理器
type InventoryHandler struct {
	createItemUseCase    *appinventory.CreateItemUseCase
	getItemUseCase       *appinventory.GetItemUseCase
	getItemBySKUUseCase  *appinventory.GetItemBySKUUseCase
	listItemsUseCase     *appinventory.ListItemsUseCase
	updateItemUseCase    *appinventory.UpdateItemUseCase
	deleteItemUseCase    *appinventory.DeleteItemUseCase
	addBatchUseCase      *appinventory.AddBatchUseCase
	updateBatchUseCase   *appinventory.UpdateBatchUseCase
	removeBatchUseCase   *appinventory.RemoveBatchUseCase
	exportItemsUseCase   *appinventory.ExportItemsUseCase
	listExpiringUseCase  *appinventory.ListExpiringUseCase
	listStockLogsUseCase *appinventory.ListStockLogsUseCase
}

// NewInventoryHandler 创建库存处理器
func NewInventoryHandler(
	createItemUseCase *appinventory.CreateItemUseCase,
	getItemUseCase *appinventory.GetItemUseCase,
	getItemBySKUUseCase *appinventory.GetItemBySKUUseCase,
	listItemsUseCase *appinventory.ListItemsUseCase,
	updateItemUseCase *appinventory.UpdateItemUseCase,
	deleteItemUseCase *appinventory.DeleteItemUseCase,
	addBatchUseCase *appinventory.AddBatchUseCase,
	updateBatchUseCase *appinventory.UpdateBatchUseCase,
	removeBatchUseCase *appinventory.RemoveBatchUseCase,
	exportItemsUseCase *appinventory.ExportItemsUseCase,
	listExpiringUseCase *appinventory.ListExpiringUseCase,
	listStockLogsUseCase *appinventory.ListStockLogsUseCase,
) *InventoryHandler {
	return &InventoryHandler{
		createItemUseCase:    createItemUseCase,
		getItemUseCase:       getItemUseCase,
		getItemBySKUUseCase:  getItemBySKUUseCase,
		listItemsUseCase:     listItemsUseCase,
		updateItemUseCase:    updateItemUseCase,
		deleteItemUseCase:    deleteItemUseCase,
		addBatchUseCase:      addBatchUseCase,
		updateBatchUseCase:   updateBatchUseCase,
		removeBatchUseCase:   removeBatchUseCase,
		exportItemsUseCase:   exportItemsUseCase,
		listExpiringUseCase:  listExpiringUseCase,
		listStockLogsUseCase: listStockLogsUseCase,
	}
}

// CreateItem 创建商品
// @Summary      创建农资商品
// @Description  创建商品档案,可附带初始批次;库存状态由系统推导
// @Tags         库存
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body appinventory.CreateItemRequest true "商品信息"
// @Success      200 {object} response.Response{data=appinventory.ItemDetail}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      409 {object} response.Response "SKU已存在"
// @Router       /api/v1/items [post]
func (h *InventoryHandler) CreateItem(c *gin.Context) {
	var req appinventory.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}
	req.Operator = middleware.GetNickname(c)

	result, err := h.createItemUseCase.Execute(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetItem 商品详情
// @Summary      商品详情
// @Tags         库存
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "商品ID"
// @Success      200 {object} response.Response{data=appinventory.ItemDetail}
// @Failure      404 {object} response.Response "商品不存在"
// @Router       /api/v1/items/{id} [get]
func (h *InventoryHandler) GetItem(c *gin.Context) {
	itemID, ok := parseItemID(c)
	if !ok {
		return
	}

	result, err := h.getItemUseCase.Execute(c.Request.Context(), itemID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetItemBySKU 按SKU查询商品
// @Summary      按SKU查询商品
// @Tags         库存
// @Produce      json
// @Security     BearerAuth
// @Param        sku path string true "商品SKU"
// @Success      200 {object} response.Response{data=appinventory.ItemDetail}
// @Failure      404 {object} response.Response "商品不存在"
// @Router       /api/v1/skus/{sku} [get]
func (h *InventoryHandler) GetItemBySKU(c *gin.Context) {
	sku := c.Param("sku")
	if sku == "" {
		response.ErrorWithCode(c, 40900, "SKU不能为空")
		return
	}

	result, err := h.getItemBySKUUseCase.Execute(c.Request.Context(), sku)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ListItems 商品列表
// @Summary      商品列表
// @Description  分页查询,支持关键词搜索、分类和库存状态过滤、排序
// @Tags         库存
// @Produce      json
// @Security     BearerAuth
// @Param        page query int false "页码(默认1)"
// @Param        page_size query int false "每页数量(默认20,最大100)"
// @Param        keyword query string false "搜索关键词"
// @Param        category query string false "分类过滤"
// @Param        status query string false "库存状态过滤(In Stock/Low Stock/Out of Stock)"
// @Param        sort_by query string false "排序(price_asc/price_desc/quantity_asc/quantity_desc/created_at_desc)"
// @Success      200 {object} response.Response{data=appinventory.ListItemsResponse}
// @Router       /api/v1/items [get]
func (h *InventoryHandler) ListItems(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	result, err := h.listItemsUseCase.Execute(c.Request.Context(), appinventory.ListItemsRequest{
		Page:     page,
		PageSize: pageSize,
		Keyword:  c.Query("keyword"),
		Category: c.Query("category"),
		Status:   c.Query("status"),
		SortBy:   c.Query("sort_by"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// UpdateItem 更新商品
// @Summary      更新商品
// @Description  部分更新:不传的字段保持原值;batches非null时整体替换批次集合
// @Tags         库存
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "商品ID"
// @Param        request body appinventory.UpdateItemRequest true "更新内容"
// @Success      200 {object} response.Response{data=appinventory.ItemDetail}
// @Failure      404 {object} response.Response "商品不存在"
// @Failure      409 {object} response.Response "SKU已存在"
// @Router       /api/v1/items/{id} [put]
func (h *InventoryHandler) UpdateItem(c *gin.Context) {
	itemID, ok := parseItemID(c)
	if !ok {
		return
	}

	var req appinventory.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}
	req.Operator = middleware.GetNickname(c)

	result, err := h.updateItemUseCase.Execute(c.Request.Context(), itemID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// DeleteItem 删除商品
// @Summary      删除商品
// @Tags         库存
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "商品ID"
// @Success      200 {object} response.Response
// @Failure      403 {object} response.Response "需要管理员权限"
// @Failure      404 {object} response.Response "商品不存在"
// @Router       /api/v1/items/{id} [delete]
func (h *InventoryHandler) DeleteItem(c *gin.Context) {
	itemID, ok := parseItemID(c)
	if !ok {
		return
	}

	if err := h.deleteItemUseCase.Execute(c.Request.Context(), itemID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, nil)
}

// AddBatch 新增批次入库
// @Summary      新增批次入库
// @Description  向商品追加一个批次,总量和库存状态自动重算
// @Tags         批次
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "商品ID"
// @Param        request body appinventory.AddBatchRequest true "批次信息"
// @Success      201 {object} response.Response{data=appinventory.ItemDetail}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      404 {object} response.Response "商品不存在"
// @Failure      409 {object} response.Response "批次编号已存在"
// @Router       /api/v1/items/{id}/batches [post]
func (h *InventoryHandler) AddBatch(c *gin.Context) {
	itemID, ok := parseItemID(c)
	if !ok {
		return
	}

	var req appinventory.AddBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}
	req.Operator = middleware.GetNickname(c)

	result, err := h.addBatchUseCase.Execute(c.Request.Context(), itemID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	// 入库是资源创建,返回201
	response.Created(c, result)
}

// UpdateBatch 修改批次
// @Summary      修改批次
// @Description  部分更新批次字段;批次编号不可修改
// @Tags         批次
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "商品ID"
// @Param        batchId path string true "批次编号"
// @Param        request body appinventory.UpdateBatchRequest true "更新内容"
// @Success      200 {object} response.Response{data=appinventory.ItemDetail}
// @Failure      404 {object} response.Response "商品或批次不存在"
// @Router       /api/v1/items/{id}/batches/{batchId} [put]
func (h *InventoryHandler) UpdateBatch(c *gin.Context) {
	itemID, ok := parseItemID(c)
	if !ok {
		return
	}
	batchID := c.Param("batchId")

	var req appinventory.UpdateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}
	req.Operator = middleware.GetNickname(c)

	result, err := h.updateBatchUseCase.Execute(c.Request.Context(), itemID, batchID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// RemoveBatch 删除批次
// @Summary      删除批次
// @Description  从商品中移除批次,总量和库存状态自动重算
// @Tags         批次
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "商品ID"
// @Param        batchId path string true "批次编号"
// @Success      200 {object} response.Response{data=appinventory.ItemDetail}
// @Failure      404 {object} response.Response "商品或批次不存在"
// @Router       /api/v1/items/{id}/batches/{batchId} [delete]
func (h *InventoryHandler) RemoveBatch(c *gin.Context) {
	itemID, ok := parseItemID(c)
	if !ok {
		return
	}
	batchID := c.Param("batchId")

	result, err := h.removeBatchUseCase.Execute(c.Request.Context(), itemID, batchID, middleware.GetNickname(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ExportItems 导出库存报表行
// @Summary      导出库存报表行
// @Description  按当前过滤条件返回展开后的报表行,每个(商品,批次)组合一行;文件渲染由前端完成
// @Tags         报表
// @Produce      json
// @Security     BearerAuth
// @Param        keyword query string false "搜索关键词"
// @Param        category query string false "分类过滤"
// @Param        status query string false "库存状态过滤"
// @Success      200 {object} response.Response{data=[]appinventory.ExportRowEntry}
// @Router       /api/v1/export/items [get]
func (h *InventoryHandler) ExportItems(c *gin.Context) {
	rows, err := h.exportItemsUseCase.Execute(c.Request.Context(), appinventory.ExportItemsRequest{
		Keyword:  c.Query("keyword"),
		Category: c.Query("category"),
		Status:   c.Query("status"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, rows)
}

// ListExpiring 临期批次查询
// @Summary      临期批次查询
// @Description  查询指定天数内将要过期的批次(默认30天)
// @Tags         报表
// @Produce      json
// @Security     BearerAuth
// @Param        days query int false "过期窗口天数(默认30)"
// @Success      200 {object} response.Response{data=[]appinventory.ExportRowEntry}
// @Router       /api/v1/batches/expiring [get]
func (h *InventoryHandler) ListExpiring(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))

	rows, err := h.listExpiringUseCase.Execute(c.Request.Context(), days)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, rows)
}

// ListStockLogs 库存流水查询
// @Summary      库存流水查询
// @Tags         库存
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "商品ID"
// @Param        limit query int false "返回条数(默认50,最大200)"
// @Success      200 {object} response.Response{data=[]appinventory.StockLogEntry}
// @Failure      404 {object} response.Response "商品不存在"
// @Router       /api/v1/items/{id}/logs [get]
func (h *InventoryHandler) ListStockLogs(c *gin.Context) {
	itemID, ok := parseItemID(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	logs, err := h.listStockLogsUseCase.Execute(c.Request.Context(), itemID, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, logs)
}

// parseItemID 解析路径中的商品ID,非法时写入400响应
func parseItemID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		response.ErrorWithCode(c, 40900, "无效的商品ID")
		return 0, false
	}
	return uint(id), true
}
