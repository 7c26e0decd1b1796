package repocfg

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricNamespace = "hooky"

const (
	tierRefCache           = "ref_cache"
	tierRefFile            = "ref_file"
	tierDefaultBranchCache = "default_branch_cache"
	tierDefaultBranchFile  = "default_branch_file"
	tierDefault            = "default"
)

type metricCollector struct {
	lookups *prometheus.CounterVec
}

var metrics = newMetricCollector()

func newMetricCollector() *metricCollector {
	return &metricCollector{
		lookups: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricNamespace,
				Name:      "repository_config_lookups_total",
				Help:      "count of repository configuration lookups by the tier that provided the configuration",
			},
			[]string{"tier"},
		),
	}
}

func (m *metricCollector) LookupInc(tier string) {
	m.lookups.WithLabelValues(tier).Inc()
}
