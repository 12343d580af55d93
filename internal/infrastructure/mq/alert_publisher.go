package mq

import (
	"context"
	"log"
	"time"

	"github.com/lvtian/agrostock/internal/domain/inventory"
	"github.com/lvtian/agrostock/pkg/circuitbreaker"
	"github.com/lvtian/agrostock/pkg/metrics"
	pkgmq "github.com/lvtian/agrostock/pkg/mq"
)

// StockAlertEvent 库存告警事件
// 商品状态变化时发布到RabbitMQ,供告警服务、报表服务等下游消费
type StockAlertEvent struct {
	ItemID     uint   `json:"item_id"`
	Sku        string `json:"sku"`
	Name       string `json:"name"`
	FromStatus string `json:"from_status"`
	ToStatus   string `json:"to_status"`
	Quantity   string `json:"quantity"`
	Threshold  string `json:"threshold"`
	OccurredAt string `json:"occurred_at"`
}

// AlertPublisher 库存告警发布器
// 设计说明：
// 1. 实现inventory.AlertNotifier接口,在事务提交后被调用
// 2. 使用熔断器保护:RabbitMQ持续不可用时快速失败,不拖慢库存写操作
// 3. 发布失败只记录日志,不影响已提交的库存变更
type AlertPublisher struct {
	publisher *pkgmq.Publisher
	breaker   *circuitbreaker.CircuitBreaker
}

// NewAlertPublisher 创建告警发布器
func NewAlertPublisher(publisher *pkgmq.Publisher) *AlertPublisher {
	breaker := circuitbreaker.NewCircuitBreaker("stock-alert-publisher", circuitbreaker.Config{
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts circuitbreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	breaker.SetStateChangeCallback(func(name string, from, to circuitbreaker.State) {
		log.Printf("熔断器[%s]状态变化: %s -> %s", name, from, to)
		metrics.SetGaugeVec(metrics.CircuitBreakerState,
			map[string]string{"name": name}, float64(to))
	})

	return &AlertPublisher{
		publisher: publisher,
		breaker:   breaker,
	}
}

// NotifyStatusChange 发布库存状态变化告警
// 路由键stock.alert,消费端按stock.*绑定
func (p *AlertPublisher) NotifyStatusChange(ctx context.Context, item *inventory.Item, from, to inventory.Status) {
	event := StockAlertEvent{
		ItemID:     item.ID,
		Sku:        item.Sku,
		Name:       item.Name,
		FromStatus: string(from),
		ToStatus:   string(to),
		Quantity:   item.Quantity.String(),
		Threshold:  item.Threshold.String(),
		OccurredAt: time.Now().Format(time.RFC3339),
	}

	err := p.breaker.Execute(func() error {
		return p.publisher.Publish("stock.alert", event)
	})
	if err != nil {
		// 发布失败不回滚库存变更,记录日志等待熔断恢复
		log.Printf("发布库存告警失败: sku=%s %s->%s: %v", item.Sku, from, to, err)
		metrics.IncCounterVec(metrics.CircuitBreakerRequests,
			map[string]string{"name": "stock-alert-publisher", "result": "failure"})
		return
	}

	metrics.IncCounterVec(metrics.StockAlertsTotal,
		map[string]string{"status": string(to)})
	metrics.IncCounterVec(metrics.MessagesPublishedTotal,
		map[string]string{"exchange": "agrostock.events", "routing_key": "stock.alert"})
}
