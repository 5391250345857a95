package ttconfig

import (
	"encoding/json"
	"fmt"
)

// Coordinator is the config for cmd/ttcoordinator: the single-instance
// talker-to-gateway assignment service. It keeps no store of its own —
// the assignments map is process-local and never persisted.
type Coordinator struct {
	HTTPAddr string          `json:"http-addr"`
	Nats     json.RawMessage `json:"nats"`
}

var coordinatorSchema = fmt.Sprintf(`{
  "type": "object",
  "properties": {
%s,
%s
  },
  "required": ["nats"]
}`, httpSchemaFragment, natsSchemaFragment)

// LoadCoordinator reads and validates a ttcoordinator config file.
func LoadCoordinator(path string) (Coordinator, error) {
	var cfg Coordinator
	if err := Load(path, coordinatorSchema, &cfg); err != nil {
		return Coordinator{}, err
	}
	return cfg, nil
}
