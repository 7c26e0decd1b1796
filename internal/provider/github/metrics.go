package github

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/simplesurance/hooky/internal/logfields"
)

const metricNamespace = "hooky"

const webhookResponsesMetricName = "webhook_responses_total"

const statusCodeLabel = "status_code"

type metricCollector struct {
	logger    *zap.Logger
	responses *prometheus.CounterVec
}

var metrics = newMetricCollector()

func newMetricCollector() *metricCollector {
	return &metricCollector{
		logger: zap.L().Named(loggerName).Named("metrics"),
		responses: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricNamespace,
				Name:      webhookResponsesMetricName,
				Help:      "count of http responses to github webhook deliveries",
			},
			[]string{statusCodeLabel},
		),
	}
}

func (m *metricCollector) ResponseInc(statusCode int) {
	cnt, err := m.responses.GetMetricWith(prometheus.Labels{
		statusCodeLabel: strconv.Itoa(statusCode),
	})
	if err != nil {
		m.logger.Warn(
			"could not record metric",
			zap.String("metric", webhookResponsesMetricName),
			logfields.Event("recording_metric_failed"),
			zap.Error(err),
		)
		return
	}

	cnt.Inc()
}
