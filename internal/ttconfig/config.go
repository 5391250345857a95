// Package ttconfig loads and validates the JSON configuration files shared
// by every long-lived process (ttgateway, ttcoordinator, ttaggregator) and
// the offline ttanalyse tool. Loading follows the same validate-then-decode
// split as the teacher's internal/config package: a JSON Schema check
// first, then a strict decode that rejects unknown fields.
package ttconfig

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/treetalker/ttcloud/internal/ttstore"
)

// Load reads the JSON file at path, validates it against schema, and
// strictly decodes it into out.
func Load(path string, schema string, out any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("ttconfig: read %s: %w", path, err)
	}

	sch, err := jsonschema.CompileString("schema.json", schema)
	if err != nil {
		return fmt.Errorf("ttconfig: compile schema: %w", err)
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("ttconfig: parse %s: %w", path, err)
	}
	if err := sch.Validate(v); err != nil {
		return fmt.Errorf("ttconfig: validate %s: %w", path, err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("ttconfig: decode %s: %w", path, err)
	}
	return nil
}

// StoreConfig selects and configures one ttstore.Store backend. Kind
// "memory" (the default, used by ttanalyse and tests) needs no Config;
// kind "influx" decodes Config as a ttstore.InfluxConfig.
type StoreConfig struct {
	Kind   string          `json:"kind"`
	Config json.RawMessage `json:"config,omitempty"`
}

// Build constructs the configured store.
func (c StoreConfig) Build() (ttstore.Store, error) {
	switch c.Kind {
	case "", "memory":
		return ttstore.NewMemory(), nil
	case "influx":
		return ttstore.NewInflux(c.Config)
	default:
		return nil, fmt.Errorf("ttconfig: unknown store kind %q", c.Kind)
	}
}

const storeSchemaFragment = `
    "store": {
      "description": "Time-series store backend: memory (default) or influx.",
      "type": "object",
      "properties": {
        "kind": { "type": "string", "enum": ["memory", "influx"] },
        "config": { "type": "object" }
      }
    }`

const natsSchemaFragment = `
    "nats": {
      "description": "Message bus connection settings, see internal/ttbus.Config.",
      "type": "object",
      "properties": {
        "address": { "type": "string" },
        "username": { "type": "string" },
        "password": { "type": "string" },
        "creds-file-path": { "type": "string" }
      },
      "required": ["address"]
    }`

const httpSchemaFragment = `
    "http-addr": {
      "description": "Address the debug/metrics HTTP server listens on, e.g. ':8090'.",
      "type": "string"
    }`
