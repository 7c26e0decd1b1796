package hooky

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/simplesurance/hooky/internal/logfields"
)

const metricNamespace = "hooky"

const githubEventsMetricName = "processed_github_events_total"

const (
	eventTypeLabel = "event_type"
	resultLabel    = "result"
)

type resultLabelVal string

const (
	resultLabelActed   resultLabelVal = "acted"
	resultLabelIgnored resultLabelVal = "ignored"
	resultLabelError   resultLabelVal = "error"
)

type metricCollector struct {
	logger          *zap.Logger
	processedEvents *prometheus.CounterVec
}

var metrics = newMetricCollector()

func newMetricCollector() *metricCollector {
	return &metricCollector{
		logger: zap.L().Named(loggerName).Named("metrics"),
		processedEvents: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricNamespace,
				Name:      githubEventsMetricName,
				Help:      "count of processed github webhook events",
			},
			[]string{eventTypeLabel, resultLabel},
		),
	}
}

func eventTypeLabelVal(ev Event) string {
	switch ev.(type) {
	case *IssueCommentEvent:
		return "issue_comment"
	case *PullRequestReviewEvent:
		return "pull_request_review"
	case *PullRequestUpdateEvent:
		return "pull_request"
	case *IssueEvent:
		return "issues"
	default:
		return "unknown"
	}
}

func (m *metricCollector) EventProcessedInc(ev Event, result resultLabelVal) {
	cnt, err := m.processedEvents.GetMetricWith(prometheus.Labels{
		eventTypeLabel: eventTypeLabelVal(ev),
		resultLabel:    string(result),
	})
	if err != nil {
		m.logger.Warn(
			"could not record metric",
			zap.String("metric", githubEventsMetricName),
			logfields.Event("recording_metric_failed"),
			zap.Error(err),
		)
		return
	}

	cnt.Inc()
}
