package ttconfig

import (
	"encoding/json"
	"fmt"

	"github.com/treetalker/ttcloud/pkg/ttpacket"
)

// Gateway is the config for cmd/ttgateway: one Decision Engine plus its
// Radio Bridge, sharing a process and a serializer goroutine.
type Gateway struct {
	Address     ttpacket.Address `json:"address"`
	RadioDevice string           `json:"radio-device"`
	RadioBaud   int              `json:"radio-baud"`
	HTTPAddr    string           `json:"http-addr"`
	Nats        json.RawMessage  `json:"nats"`
	Store       StoreConfig      `json:"store"`
}

var gatewaySchema = fmt.Sprintf(`{
  "type": "object",
  "properties": {
    "address": { "description": "This gateway's own radio address.", "type": "integer" },
    "radio-device": { "description": "Serial device path the radio bridge reads/writes.", "type": "string" },
    "radio-baud": { "type": "integer" },
%s,
%s,
%s
  },
  "required": ["address", "radio-device", "nats"]
}`, httpSchemaFragment, natsSchemaFragment, storeSchemaFragment)

// LoadGateway reads and validates a ttgateway config file.
func LoadGateway(path string) (Gateway, error) {
	var cfg Gateway
	if err := Load(path, gatewaySchema, &cfg); err != nil {
		return Gateway{}, err
	}
	return cfg, nil
}
