// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// サービス層およびミドルウェアから利用する。
type MetricsCollector interface {
	RecordUserRegistered()
	RecordGroupCreated()
	RecordGroupClosed()
	RecordAssignmentsCreated(count int)
	RecordCloseLatency(duration time.Duration)
	RecordHTTPStatus(statusCode int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	usersRegistered    prometheus.Counter
	groupsCreated      prometheus.Counter
	groupsClosed       prometheus.Counter
	assignmentsCreated prometheus.Counter
	closeLatency       prometheus.Histogram
	httpStatus         *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		usersRegistered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "santaman_users_registered_total",
			Help: "登録されたユーザーの合計数",
		}),
		groupsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "santaman_groups_created_total",
			Help: "作成されたグループの合計数",
		}),
		groupsClosed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "santaman_groups_closed_total",
			Help: "クローズされたグループの合計数",
		}),
		assignmentsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "santaman_assignments_created_total",
			Help: "確定したサンタ割り当ての合計数",
		}),
		closeLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "santaman_close_latency_seconds",
			Help:    "グループクローズ処理のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "santaman_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.usersRegistered,
		c.groupsCreated,
		c.groupsClosed,
		c.assignmentsCreated,
		c.closeLatency,
		c.httpStatus,
	)

	return c
}

// RecordUserRegistered はユーザー登録を記録する。
func (c *Collector) RecordUserRegistered() {
	c.usersRegistered.Inc()
}

// RecordGroupCreated はグループ作成を記録する。
func (c *Collector) RecordGroupCreated() {
	c.groupsCreated.Inc()
}

// RecordGroupClosed はグループクローズを記録する。
func (c *Collector) RecordGroupClosed() {
	c.groupsClosed.Inc()
}

// RecordAssignmentsCreated は確定した割り当て数を記録する。
func (c *Collector) RecordAssignmentsCreated(count int) {
	c.assignmentsCreated.Add(float64(count))
}

// RecordCloseLatency はクローズ処理のレイテンシを記録する。
func (c *Collector) RecordCloseLatency(duration time.Duration) {
	c.closeLatency.Observe(duration.Seconds())
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
