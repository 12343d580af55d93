// Package metrics 提供基于Prometheus的指标收集
//
// 指标类型选择：
// - Counter（只增不减）：请求总数、批次入库总数、告警事件总数
// - Gauge（可增可减）：处理中的请求数、低库存/缺货商品数
// - Histogram（分布）：请求耗时、库存操作耗时
//
// 命名规范：
// - Counter以_total结尾（http_requests_total）
// - Histogram以单位结尾（http_request_duration_seconds）
// - Gauge使用现在时态（items_low_stock）
//
// 使用方式：
//
//	metrics.InitMetrics()
//	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// initialized 标记是否已初始化（防止重复注册panic）
	initialized bool

	// HTTP请求指标

	// HTTPRequestsTotal HTTP请求总数
	// 标签：method（GET/POST）、path、status（200/404/500）
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration HTTP请求耗时（秒）
	HTTPRequestDuration *prometheus.HistogramVec

	// HTTPRequestsInProgress 正在处理的HTTP请求数
	HTTPRequestsInProgress prometheus.Gauge

	// 库存业务指标

	// BatchesReceivedTotal 批次入库总数
	BatchesReceivedTotal prometheus.Counter

	// StockMutationsTotal 库存变更操作总数
	// 标签：operation（add_batch/update_batch/remove_batch/update_item）、result（success/failure）
	StockMutationsTotal *prometheus.CounterVec

	// StockMutationDuration 库存变更操作耗时（秒）
	StockMutationDuration prometheus.Histogram

	// ItemsLowStock 当前低库存商品数
	ItemsLowStock prometheus.Gauge

	// ItemsOutOfStock 当前缺货商品数
	ItemsOutOfStock prometheus.Gauge

	// StockAlertsTotal 库存告警事件总数
	// 标签：status（Low Stock/Out of Stock）
	StockAlertsTotal *prometheus.CounterVec

	// 熔断器指标

	// CircuitBreakerState 熔断器状态（0=CLOSED, 1=OPEN, 2=HALF_OPEN）
	CircuitBreakerState *prometheus.GaugeVec

	// CircuitBreakerRequests 熔断器请求总数
	// 标签：name、result（success/failure/rejected）
	CircuitBreakerRequests *prometheus.CounterVec

	// 消息队列指标

	// MessagesPublishedTotal 消息发布总数
	// 标签：exchange、routing_key
	MessagesPublishedTotal *prometheus.CounterVec

	// MessagesConsumedTotal 消息消费总数
	// 标签：queue、result（success/failure）
	MessagesConsumedTotal *prometheus.CounterVec
)

// InitMetrics 初始化所有Prometheus指标
// 必须在程序启动时调用一次，注册所有指标到默认Registry
func InitMetrics() {
	if initialized {
		return
	}
	initialized = true

	// HTTP请求指标
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP请求总数",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP请求耗时（秒）",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_progress",
			Help: "正在处理的HTTP请求数",
		},
	)

	// 库存业务指标
	BatchesReceivedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "batches_received_total",
			Help: "批次入库总数",
		},
	)

	StockMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stock_mutations_total",
			Help: "库存变更操作总数",
		},
		[]string{"operation", "result"},
	)

	StockMutationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "stock_mutation_duration_seconds",
			Help: "库存变更操作耗时（秒）",
			// 单商品事务（加锁+写入+日志），通常在几十毫秒内
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)

	ItemsLowStock = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "items_low_stock",
			Help: "当前低库存商品数",
		},
	)

	ItemsOutOfStock = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "items_out_of_stock",
			Help: "当前缺货商品数",
		},
	)

	StockAlertsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stock_alerts_total",
			Help: "库存告警事件总数",
		},
		[]string{"status"},
	)

	// 熔断器指标
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "熔断器状态（0=CLOSED, 1=OPEN, 2=HALF_OPEN）",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "熔断器请求总数",
		},
		[]string{"name", "result"},
	)

	// 消息队列指标
	MessagesPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_published_total",
			Help: "消息发布总数",
		},
		[]string{"exchange", "routing_key"},
	)

	MessagesConsumedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_consumed_total",
			Help: "消息消费总数",
		},
		[]string{"queue", "result"},
	)
}

// IncCounterVec 递增CounterVec（带标签）
// 指标未初始化时静默跳过（单元测试不依赖InitMetrics）
func IncCounterVec(counter *prometheus.CounterVec, labels map[string]string) {
	if counter == nil {
		return
	}
	counter.With(labels).Inc()
}

// SetGaugeVec 设置GaugeVec值（带标签）
func SetGaugeVec(gauge *prometheus.GaugeVec, labels map[string]string, value float64) {
	if gauge == nil {
		return
	}
	gauge.With(labels).Set(value)
}

// IncCounter 递增Counter
func IncCounter(counter prometheus.Counter) {
	if counter == nil {
		return
	}
	counter.Inc()
}

// ObserveHistogram 记录Histogram观测值
func ObserveHistogram(histogram prometheus.Histogram, value float64) {
	if histogram == nil {
		return
	}
	histogram.Observe(value)
}
