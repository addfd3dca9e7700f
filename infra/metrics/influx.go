package metrics

import (
	"context"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kianlev/gridflex/core/metrics"
	"github.com/kianlev/gridflex/infra/logger"
)

// InfluxSink writes scheduling events to an InfluxDB instance using the
// official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(cfg coremetrics.Config) coremetrics.MetricsSink {
	sink := NewInfluxSink(cfg.InfluxURL, cfg.InfluxToken, cfg.InfluxOrg, cfg.InfluxBucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordRequestOutcomes writes each decided request as a point.
func (s *InfluxSink) RecordRequestOutcomes(outcomes []coremetrics.RequestOutcome) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	pts := make([]*write.Point, 0, len(outcomes))
	for _, o := range outcomes {
		p := influxdb2.NewPoint("grid_request",
			map[string]string{
				"class":      o.Class.String(),
				"outcome":    o.State.String(),
				"substation": o.SubstationID,
			},
			map[string]interface{}{
				"mw":          o.MegaWatts,
				"consumer_id": o.ConsumerID,
				"request_id":  o.RequestID,
			},
			o.Time,
		)
		pts = append(pts, p)
	}
	return s.writeAPI.WritePoint(ctx, pts...)
}

// RecordPass writes one summary point per scheduling pass.
func (s *InfluxSink) RecordPass(sum coremetrics.PassSummary) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p := influxdb2.NewPoint("grid_pass",
		nil,
		map[string]interface{}{
			"processed":    sum.Processed,
			"allocated":    sum.Allocated,
			"shed":         sum.Shed,
			"allocated_mw": sum.AllocatedMW,
			"shed_mw":      sum.ShedMW,
			"duration_ms":  float64(sum.Duration.Milliseconds()),
		},
		sum.Time,
	)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordSubstationStates writes one point per substation snapshot.
func (s *InfluxSink) RecordSubstationStates(states []coremetrics.SubstationState) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	pts := make([]*write.Point, 0, len(states))
	for _, st := range states {
		p := influxdb2.NewPoint("grid_substation",
			map[string]string{"substation": st.SubstationID},
			map[string]interface{}{
				"used_mw":     st.UsedMW,
				"capacity_mw": st.CapacityMW,
				"online":      st.Online,
			},
			st.Time,
		)
		pts = append(pts, p)
	}
	return s.writeAPI.WritePoint(ctx, pts...)
}

// Close flushes and closes the underlying client.
func (s *InfluxSink) Close() { s.client.Close() }
