package ttconfig

import (
	"encoding/json"
	"fmt"
	"time"
)

// Aggregator is the config for cmd/ttaggregator: the periodic fleet-wide
// baseline computation job.
type Aggregator struct {
	HTTPAddr string          `json:"http-addr"`
	Nats     json.RawMessage `json:"nats"`
	Store    StoreConfig     `json:"store"`
	Interval string          `json:"interval"`
}

// SLEEP_TIME in spec.md §4.8: the fleet-wide baseline recompute period.
const DefaultAggregatorInterval = 600 * time.Second

// IntervalOrDefault parses Interval, falling back to
// DefaultAggregatorInterval if it is empty.
func (a Aggregator) IntervalOrDefault() (time.Duration, error) {
	if a.Interval == "" {
		return DefaultAggregatorInterval, nil
	}
	return time.ParseDuration(a.Interval)
}

var aggregatorSchema = fmt.Sprintf(`{
  "type": "object",
  "properties": {
%s,
%s,
%s,
    "interval": { "description": "Baseline recompute period, e.g. '600s'. Defaults to 600s.", "type": "string" }
  },
  "required": ["nats", "store"]
}`, httpSchemaFragment, natsSchemaFragment, storeSchemaFragment)

// LoadAggregator reads and validates a ttaggregator config file.
func LoadAggregator(path string) (Aggregator, error) {
	var cfg Aggregator
	if err := Load(path, aggregatorSchema, &cfg); err != nil {
		return Aggregator{}, err
	}
	return cfg, nil
}
