package middleware

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DecisionMetrics はゲートウェイの判定結果をPrometheusのカウンタとして集計する。
type DecisionMetrics struct {
	decisions *prometheus.CounterVec
}

// NewDecisionMetrics は判定結果のカウンタを生成してregに登録する。
func NewDecisionMetrics(reg prometheus.Registerer) *DecisionMetrics {
	return &DecisionMetrics{
		decisions: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "bruinwatch",
			Subsystem: "gateway",
			Name:      "decisions_total",
			Help:      "Number of gateway decisions by outcome.",
		}, []string{"decision"}),
	}
}

// Count は判定結果ごとの集計値を返す。
func (m *DecisionMetrics) Count(d Decision) prometheus.Counter {
	return m.decisions.WithLabelValues(d.String())
}

// observe は判定結果を1件集計する。mがnilの場合は何もしない。
func (m *DecisionMetrics) observe(d Decision) {
	if m == nil {
		return
	}
	m.Count(d).Inc()
}
