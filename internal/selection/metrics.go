package selection

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricNamespace = "hooky"

const selectionsMetricName = "selections_total"

const (
	roleLabel   = "role"
	sourceLabel = "source"
)

type selectionSourceLabelVal string

const (
	selectionSourceRecorded   selectionSourceLabelVal = "recorded"
	selectionSourceRoundRobin selectionSourceLabelVal = "round_robin"
)

type metricCollector struct {
	selections *prometheus.CounterVec
}

var metrics = newMetricCollector()

func newMetricCollector() *metricCollector {
	return &metricCollector{
		selections: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricNamespace,
				Name:      selectionsMetricName,
				Help:      "count of selected reviewers and assignees",
			},
			[]string{roleLabel, sourceLabel},
		),
	}
}

func (m *metricCollector) SelectionInc(role Role, source selectionSourceLabelVal) {
	m.selections.WithLabelValues(role.Lower(), string(source)).Inc()
}
