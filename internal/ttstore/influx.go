package ttstore

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2Api "github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/treetalker/ttcloud/pkg/log"
)

// InfluxConfig configures the live InfluxDB v2 backed store.
type InfluxConfig struct {
	Url     string `json:"url"`
	Token   string `json:"token"`
	Bucket  string `json:"bucket"`
	Org     string `json:"org"`
	SkipTls bool   `json:"skiptls"`
}

// Influx is the live Store implementation, a thin client over InfluxDB
// v2: writes go through the blocking write API, queries are built as
// Flux and run through the query API.
type Influx struct {
	client      influxdb2.Client
	writeClient influxdb2Api.WriteAPIBlocking
	queryClient influxdb2Api.QueryAPI
	bucket      string
}

// NewInflux builds an Influx store from raw JSON config.
func NewInflux(rawConfig json.RawMessage) (*Influx, error) {
	var cfg InfluxConfig
	if err := json.Unmarshal(rawConfig, &cfg); err != nil {
		return nil, err
	}

	client := influxdb2.NewClientWithOptions(cfg.Url, cfg.Token,
		influxdb2.DefaultOptions().SetTLSConfig(&tls.Config{InsecureSkipVerify: cfg.SkipTls}))

	return &Influx{
		client:      client,
		writeClient: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		queryClient: client.QueryAPI(cfg.Org),
		bucket:      cfg.Bucket,
	}, nil
}

func (s *Influx) Write(ctx context.Context, obs Observation) error {
	tags := make(map[string]string, len(obs.Tags)+1)
	for k, v := range obs.Tags {
		tags[k] = v
	}
	tags["treetalker"] = obs.Talker.String()

	fields := make(map[string]interface{}, len(obs.Fields))
	for k, v := range obs.Fields {
		fields[k] = v
	}

	p := influxdb2.NewPoint(obs.Measurement, tags, fields, obs.Time)
	if err := s.writeClient.WritePoint(ctx, p); err != nil {
		return fmt.Errorf("ttstore: write failed: %w", err)
	}
	return nil
}

func (s *Influx) Query(ctx context.Context, q Query) ([]Point, error) {
	cond := fmt.Sprintf(`r["_measurement"] == "%s" and r["_field"] == "%s"`, q.Measurement, q.Field)
	if !q.AllTalkers {
		cond = fmt.Sprintf(`%s and r["treetalker"] == "%s"`, cond, q.Talker.String())
	}

	from := q.Now.Add(-q.Since)
	query := fmt.Sprintf(`
		from(bucket: "%s")
		|> range(start: %s, stop: %s)
		|> filter(fn: (r) => %s)`,
		s.bucket, formatTime(from), formatTime(q.Now), cond)

	rows, err := s.queryClient.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ttstore: query failed: %w", err)
	}

	var out []Point
	for rows.Next() {
		row := rows.Record()
		v, ok := row.Value().(float64)
		if !ok {
			continue
		}
		out = append(out, Point{Time: row.Time(), Value: v})
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("ttstore: query result error: %w", rows.Err())
	}

	return out, nil
}

func (s *Influx) Close() {
	s.client.Close()
	log.Info("ttstore: influx connection closed")
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}
