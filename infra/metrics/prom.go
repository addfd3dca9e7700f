package metrics

import (
	coremetrics "github.com/kianlev/gridflex/core/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// PromSink records scheduling activity in Prometheus metrics.
type PromSink struct {
	requests    *prometheus.CounterVec
	power       *prometheus.CounterVec
	used        *prometheus.GaugeVec
	online      *prometheus.GaugeVec
	passes      prometheus.Counter
	passSeconds prometheus.Histogram
}

// NewPromSink registers scheduling metrics on the default Prometheus
// registerer. The metrics server is started separately using
// cfg.PrometheusPort.
func NewPromSink(cfg coremetrics.Config) (*PromSink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(cfg coremetrics.Config, reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "grid_requests_total",
		Help: "Total number of demand requests decided by scheduling passes",
	}, []string{"class", "outcome"})
	power := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "grid_power_mw_total",
		Help: "Cumulative megawatts decided, by class and outcome",
	}, []string{"class", "outcome"})
	used := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "grid_substation_used_mw",
		Help: "Currently allocated megawatts per substation",
	}, []string{"substation"})
	online := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "grid_substation_online",
		Help: "Whether the substation is online (1) or under maintenance (0)",
	}, []string{"substation"})
	passes := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "grid_scheduling_passes_total",
		Help: "Number of completed scheduling passes",
	})
	passSeconds := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "grid_scheduling_pass_duration_seconds",
		Help:    "Wall time of one scheduling pass",
		Buckets: prometheus.DefBuckets,
	})

	if err := reg.Register(requests); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			requests = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(power); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			power = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(used); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			used = are.ExistingCollector.(*prometheus.GaugeVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(online); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			online = are.ExistingCollector.(*prometheus.GaugeVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(passes); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			passes = are.ExistingCollector.(prometheus.Counter)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(passSeconds); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			passSeconds = are.ExistingCollector.(prometheus.Histogram)
		} else {
			return nil, err
		}
	}

	return &PromSink{
		requests:    requests,
		power:       power,
		used:        used,
		online:      online,
		passes:      passes,
		passSeconds: passSeconds,
	}, nil
}

// RecordRequestOutcomes increments the counters for each decided request.
func (s *PromSink) RecordRequestOutcomes(outcomes []coremetrics.RequestOutcome) error {
	for _, o := range outcomes {
		s.requests.WithLabelValues(o.Class.String(), o.State.String()).Inc()
		s.power.WithLabelValues(o.Class.String(), o.State.String()).Add(o.MegaWatts)
	}
	return nil
}

// RecordPass observes the pass counter and duration histogram.
func (s *PromSink) RecordPass(sum coremetrics.PassSummary) error {
	s.passes.Inc()
	s.passSeconds.Observe(sum.Duration.Seconds())
	return nil
}

// RecordSubstationStates sets the per-substation gauges.
func (s *PromSink) RecordSubstationStates(states []coremetrics.SubstationState) error {
	for _, st := range states {
		s.used.WithLabelValues(st.SubstationID).Set(st.UsedMW)
		onlineVal := 0.0
		if st.Online {
			onlineVal = 1
		}
		s.online.WithLabelValues(st.SubstationID).Set(onlineVal)
	}
	return nil
}
