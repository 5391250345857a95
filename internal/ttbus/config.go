// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ttbus

import (
	"bytes"
	"encoding/json"

	"github.com/treetalker/ttcloud/pkg/log"
)

// Config holds the configuration for connecting to the message bus.
type Config struct {
	Address       string `json:"address"`         // bus server address (e.g., "nats://localhost:4222")
	Username      string `json:"username"`        // optional
	Password      string `json:"password"`        // optional
	CredsFilePath string `json:"creds-file-path"` // optional
}

// Keys holds the global bus configuration loaded via Init.
var Keys Config

// ConfigSchema is a JSON Schema for Config. internal/ttconfig does not use
// it: it validates each process config's "nats" section with its own
// schema fragment.
const ConfigSchema = `{
    "type": "object",
    "description": "Configuration for the message bus client.",
    "properties": {
        "address": {
            "description": "Address of the bus server (e.g., 'nats://localhost:4222').",
            "type": "string"
        },
        "username": {
            "description": "Username for bus authentication (optional).",
            "type": "string"
        },
        "password": {
            "description": "Password for bus authentication (optional).",
            "type": "string"
        },
        "creds-file-path": {
            "description": "Path to bus credentials file for authentication (optional).",
            "type": "string"
        }
    },
    "required": ["address"]
}`

// Init initializes the global Keys configuration from JSON.
func Init(rawConfig json.RawMessage) error {
	var err error

	if rawConfig != nil {
		dec := json.NewDecoder(bytes.NewReader(rawConfig))
		dec.DisallowUnknownFields()
		if err = dec.Decode(&Keys); err != nil {
			log.Errorf("ttbus: error while initializing client: %s", err.Error())
		}
	}

	return err
}
