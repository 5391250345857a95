package ttconfig

import (
	"context"
	"encoding/json"

	"github.com/treetalker/ttcloud/internal/archive"
)

// Historical is the optional config file for cmd/ttanalyse. Most of its
// surface is CLI flags (input/output paths, -append, -filter); this file
// only carries the one piece that shouldn't live on a command line:
// credentials for shipping the JSONL outputs to S3.
type Historical struct {
	Archive json.RawMessage `json:"archive,omitempty"`
}

// BuildArchive returns the S3 target described by Archive, or a local
// FileTarget rooted at localDir when no archive config was given.
func (h Historical) BuildArchive(ctx context.Context, localDir string) (archive.Target, error) {
	if len(h.Archive) == 0 {
		return archive.NewFileTarget(localDir)
	}

	var cfg archive.Config
	if err := json.Unmarshal(h.Archive, &cfg); err != nil {
		return nil, err
	}
	return archive.NewS3Target(ctx, cfg)
}

const historicalSchema = `{
  "type": "object",
  "properties": {
    "archive": {
      "description": "S3-compatible bucket to upload anomalies.jsonl/critical.jsonl to after a run.",
      "type": "object"
    }
  }
}`

// LoadHistorical reads and validates a ttanalyse config file.
func LoadHistorical(path string) (Historical, error) {
	var cfg Historical
	if err := Load(path, historicalSchema, &cfg); err != nil {
		return Historical{}, err
	}
	return cfg, nil
}
