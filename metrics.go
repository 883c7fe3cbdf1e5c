package stdresp

import "github.com/prometheus/client_golang/prometheus"

// metrics holds the collectors registered by WithMetrics. A nil *metrics
// records nothing.
type metrics struct {
	queryRejections *prometheus.CounterVec
	responses       *prometheus.CounterVec
	violations      prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		queryRejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stdresp_query_rejections_total",
				Help: "Requests rejected while parsing query features",
			},
			[]string{"feature"},
		),
		responses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stdresp_responses_total",
				Help: "Handler results written, by response type",
			},
			[]string{"type"},
		),
		violations: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "stdresp_contract_violations_total",
				Help: "Handler results rejected by the response validator",
			},
		),
	}
	reg.MustRegister(m.queryRejections, m.responses, m.violations)
	return m
}

func (m *metrics) rejected(f Feature) {
	if m == nil {
		return
	}
	m.queryRejections.WithLabelValues(f.String()).Inc()
}

func (m *metrics) responded(t ResponseType) {
	if m == nil {
		return
	}
	label := t.String()
	if label == "" {
		label = "passthrough"
	}
	m.responses.WithLabelValues(label).Inc()
}

func (m *metrics) violated() {
	if m == nil {
		return
	}
	m.violations.Inc()
}
