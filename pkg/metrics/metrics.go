// Package metrics 基于Prometheus的指标收集
//
// 指标在包初始化时创建，InitMetrics负责注册到Registry。
// 未注册时记录指标也是安全的（只是不会被抓取），因此单元测试无需初始化。
//
// 命名规范：
//   - Counter以_total结尾
//   - Histogram以单位结尾（_seconds）
//   - 标签只用有限取值（method、status、result），不要用customer_id、isbn这类高基数字段
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "bookstore"

// 结果标签取值
const (
	ResultSuccess  = "success"
	ResultFailure  = "failure"
	ResultRejected = "rejected"
)

var registerOnce sync.Once

var (
	// HTTP请求相关指标

	// HTTPRequestsTotal 标签：method、path（路由模板）、status
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP请求总数",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP请求耗时（秒）",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInProgress = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_progress",
			Help:      "正在处理的HTTP请求数",
		},
	)

	// 业务指标

	// OrdersTotal 标签：result（success/failure/rejected）
	// rejected表示库存不足、参数错误等客户端原因
	OrdersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_total",
			Help:      "下单请求总数",
		},
		[]string{"result"},
	)

	// OrderCreationDuration 整个下单事务的耗时，包含等待行锁的时间
	OrderCreationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "order_creation_duration_seconds",
			Help:      "订单创建耗时（秒）",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		},
	)

	// CopiesReservedTotal 售出的副本数
	CopiesReservedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "copies_reserved_total",
			Help:      "已预留（售出）的图书副本总数",
		},
	)

	CopiesProvisionedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "copies_provisioned_total",
			Help:      "入库的图书副本总数",
		},
	)

	// InsufficientInventoryTotal 库存不足被拒绝的次数
	InsufficientInventoryTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "insufficient_inventory_total",
			Help:      "因可用副本不足被拒绝的请求数",
		},
	)

	// RentalsTotal 标签：action（create/return）、result
	RentalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rentals_total",
			Help:      "租借与归还请求总数",
		},
		[]string{"action", "result"},
	)

	// TxConflictsTotal 死锁、锁等待超时、约束冲突
	TxConflictsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tx_conflicts_total",
			Help:      "事务冲突（死锁/锁等待超时/约束冲突）次数",
		},
	)

	// 熔断器指标

	// CircuitBreakerState 0=CLOSED, 1=OPEN, 2=HALF_OPEN
	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state",
			Help:      "熔断器状态（0=CLOSED, 1=OPEN, 2=HALF_OPEN）",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_requests_total",
			Help:      "熔断器请求总数",
		},
		[]string{"name", "result"},
	)

	// 消息指标

	// MessagesPublishedTotal 标签：routing_key、result
	MessagesPublishedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_published_total",
			Help:      "领域事件发布总数",
		},
		[]string{"routing_key", "result"},
	)

	// PromotionCacheTotal 标签：result（hit/miss）
	PromotionCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "promotion_cache_total",
			Help:      "促销缓存访问次数",
		},
		[]string{"result"},
	)
)

// Collectors 本包定义的全部指标
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		HTTPRequestsTotal,
		HTTPRequestDuration,
		HTTPRequestsInProgress,
		OrdersTotal,
		OrderCreationDuration,
		CopiesReservedTotal,
		CopiesProvisionedTotal,
		InsufficientInventoryTotal,
		RentalsTotal,
		TxConflictsTotal,
		CircuitBreakerState,
		CircuitBreakerRequests,
		MessagesPublishedTotal,
		PromotionCacheTotal,
	}
}

// Register 注册到指定Registry（测试中使用独立Registry）
func Register(reg prometheus.Registerer) error {
	for _, c := range Collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// InitMetrics 注册到默认Registry，重复调用只生效一次
func InitMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(Collectors()...)
	})
}

// IncCounter 递增Counter
func IncCounter(counter prometheus.Counter) {
	counter.Inc()
}

// AddCounter 增加Counter
func AddCounter(counter prometheus.Counter, n int) {
	counter.Add(float64(n))
}

// IncCounterVec 递增CounterVec（带标签）
func IncCounterVec(counter *prometheus.CounterVec, labels map[string]string) {
	counter.With(labels).Inc()
}

// IncGauge 递增Gauge
func IncGauge(gauge prometheus.Gauge) {
	gauge.Inc()
}

// DecGauge 递减Gauge
func DecGauge(gauge prometheus.Gauge) {
	gauge.Dec()
}

// SetGaugeVec 设置GaugeVec值（带标签）
func SetGaugeVec(gauge *prometheus.GaugeVec, labels map[string]string, value float64) {
	gauge.With(labels).Set(value)
}

// ObserveHistogram 记录Histogram观测值
func ObserveHistogram(histogram prometheus.Histogram, value float64) {
	histogram.Observe(value)
}

// ObserveHistogramVec 记录HistogramVec观测值（带标签）
func ObserveHistogramVec(histogram *prometheus.HistogramVec, labels map[string]string, value float64) {
	histogram.With(labels).Observe(value)
}
