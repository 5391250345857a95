// Package ttstore defines the time-series store contract used by the
// decision engine, the aggregator, and offline historical analysis. The
// store itself — a time-series storage engine — is explicitly out of
// scope; this package only ties the fleet's policies to whichever typed
// backend is configured (an in-memory store for tests and historical
// replay, or InfluxDB for live deployments).
package ttstore

import (
	"context"
	"time"

	"github.com/treetalker/ttcloud/pkg/ttpacket"
)

// Observation is one tagged time-series row produced by decoding a data
// or light packet. Measurement/Field names follow spec.md §3 exactly:
// stem_temperature, growth, power, stem_water, air, gravity, AS7263,
// AS7262.
type Observation struct {
	Measurement string
	Talker      ttpacket.Address
	Tags        map[string]string
	Fields      map[string]float64
	Time        time.Time
}

// Point is one historical value returned by a range query, reduced to
// the single field the caller asked for.
type Point struct {
	Time  time.Time
	Value float64
}

// Query describes a bounded range query over one measurement/field for
// one talker (or, when AllTalkers is set, across the whole fleet — used
// by the aggregator; Talker is then ignored).
type Query struct {
	Measurement string
	Field       string
	Talker      ttpacket.Address
	AllTalkers  bool
	Since       time.Duration // relative to Now, e.g. 48h for the 2-day window
	Now         time.Time
}

// Store is the external collaborator every policy and the aggregator
// query against. A failed Write or Query is a transient I/O error per
// spec.md §7: callers must treat a Query error as "no history", never
// abort an evaluation because of it.
type Store interface {
	Write(ctx context.Context, obs Observation) error
	Query(ctx context.Context, q Query) ([]Point, error)
	Close()
}
