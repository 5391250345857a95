// Package historical replays a captured packet stream through the same
// anomaly policies the live decision engine uses, producing
// anomalies.jsonl (short-window hits) and critical.jsonl (long-window
// hits, plus the always-on air-temperature critical check) — the
// offline counterpart to original_source/eval/historical.py, minus its
// dependency on a pickle file and a pre-existing InfluxDB instance.
package historical

import (
	"bufio"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/treetalker/ttcloud/pkg/ttpacket"
)

// Record is one captured radio packet: a Unix timestamp and the packet's
// raw wire bytes. A stream is one Record per line, JSON-encoded. No code
// in this module writes such a stream; internal/ttbus.Sniffer only names
// the subjects live traffic may be mirrored on.
type Record struct {
	Timestamp int64  `json:"timestamp"`
	Packet    string `json:"packet"` // base64 of the raw wire bytes
}

// Decode parses the packet bytes and returns both the packet and its
// capture time.
func (r Record) Decode() (ttpacket.Packet, time.Time, error) {
	raw, err := base64.StdEncoding.DecodeString(r.Packet)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("historical: decode base64: %w", err)
	}
	pkt, err := ttpacket.Unmarshal(raw)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("historical: unmarshal packet: %w", err)
	}
	return pkt, time.Unix(r.Timestamp, 0).UTC(), nil
}

// ReadStream decodes one JSONL capture file, one Record per line.
func ReadStream(r io.Reader) ([]Record, error) {
	var records []Record

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("historical: parse record: %w", err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("historical: scan stream: %w", err)
	}
	return records, nil
}
