package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lvtian/agrostock/internal/domain/inventory"
)

// ItemCache 商品详情缓存
// 设计说明：
// 1. Cache-Aside策略：先查缓存，未命中再查数据库并回填
// 2. 缓存一致性：库存写操作提交后删除缓存，下次查询重新加载
// 3. Key设计：agrostock:item:{id}，带业务前缀便于管理
type ItemCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewItemCache 创建商品缓存
func NewItemCache(client *redis.Client, ttl time.Duration) *ItemCache {
	return &ItemCache{client: client, ttl: ttl}
}

// Get 获取商品详情缓存,未命中返回(nil, nil)
func (c *ItemCache) Get(ctx context.Context, itemID uint) (*inventory.Item, error) {
	val, err := c.client.Get(ctx, c.itemKey(itemID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("获取缓存失败: %w", err)
	}

	var item inventory.Item
	if err := json.Unmarshal([]byte(val), &item); err != nil {
		return nil, fmt.Errorf("反序列化失败: %w", err)
	}

	return &item, nil
}

// Set 设置商品详情缓存
func (c *ItemCache) Set(ctx context.Context, item *inventory.Item) error {
	val, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("序列化失败: %w", err)
	}

	if err := c.client.Set(ctx, c.itemKey(item.ID), val, c.ttl).Err(); err != nil {
		return fmt.Errorf("设置缓存失败: %w", err)
	}

	return nil
}

// Delete 删除商品详情缓存
// 写操作提交后删除而非更新缓存：删除简单可靠，避免并发更新的脏数据
func (c *ItemCache) Delete(ctx context.Context, itemID uint) error {
	if err := c.client.Del(ctx, c.itemKey(itemID)).Err(); err != nil {
		return fmt.Errorf("删除缓存失败: %w", err)
	}

	return nil
}

// itemKey 生成商品详情缓存key
// 格式：agrostock:item:{item_id}
func (c *ItemCache) itemKey(itemID uint) string {
	return fmt.Sprintf("agrostock:item:%d", itemID)
}
