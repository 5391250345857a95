package ttstore

import (
	"context"
	"sort"
	"sync"

	"github.com/treetalker/ttcloud/pkg/ttpacket"
)

// Memory is an in-process Store used by historical analysis (which reads
// a captured packet stream, not live bus traffic) and by tests. It keeps
// every written row in memory, grouped by measurement+talker, and answers
// range queries by linear scan — the full WAL/checkpoint/eviction
// machinery of a real storage engine is out of scope here.
type Memory struct {
	mu   sync.Mutex
	rows map[rowKey][]Observation
}

type rowKey struct {
	measurement string
	talker      ttpacket.Address
}

// NewMemory constructs an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{rows: make(map[rowKey][]Observation)}
}

func (m *Memory) Write(_ context.Context, obs Observation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := rowKey{measurement: obs.Measurement, talker: obs.Talker}
	m.rows[k] = append(m.rows[k], obs)
	return nil
}

func (m *Memory) Query(_ context.Context, q Query) ([]Point, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	from := q.Now.Add(-q.Since)

	var out []Point
	for k, rows := range m.rows {
		if k.measurement != q.Measurement {
			continue
		}
		if !q.AllTalkers && k.talker != q.Talker {
			continue
		}
		for _, obs := range rows {
			if obs.Time.Before(from) || obs.Time.After(q.Now) {
				continue
			}
			v, ok := obs.Fields[q.Field]
			if !ok {
				continue
			}
			out = append(out, Point{Time: obs.Time, Value: v})
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	return out, nil
}

func (m *Memory) Close() {}
