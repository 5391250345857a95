package ttbus

import "fmt"

// Topic name helpers for the fleet's fixed subject scheme. Receive and
// Command carry raw marshalled packet bytes, not base64; Anomaly carries
// the base64 of a packet's marshalled bytes; the helo and global subjects
// carry JSON.

// Receive is the subject a gateway's radio bridge publishes inbound
// packet bytes on (preamble stripped, not decoded), for its own decision
// engine to consume.
func Receive(gw string) string { return "receive/" + gw }

// Command is the subject a decision engine publishes replies on, for its
// own radio bridge to relay to the radio.
func Command(gw string) string { return "command/" + gw }

// HeloRequest is the single subject every decision engine publishes on
// when a talker announces itself; the coordinator is the sole subscriber.
const HeloRequest = "helo/request"

// HeloResponse is the subject the coordinator replies on, addressed to
// the requesting gateway.
func HeloResponse(gw string) string { return "helo/response/" + gw }

// GlobalMovement carries the aggregator's fleet-wide movement baseline.
const GlobalMovement = "global/movement"

// GlobalTemperature carries the aggregator's fleet-wide stem-temperature
// baseline.
const GlobalTemperature = "global/temperature"

// Anomaly is the subject an engine publishes a flagged packet's bytes on,
// base64-encoded, one per anomaly kind, for any observer subscribed to it.
func Anomaly(kind, gw string) string { return fmt.Sprintf("anomaly/%s/%s", kind, gw) }

// Sniffer is the prefix under which raw radio traffic may be mirrored for
// offline analysis tooling.
func Sniffer(source string) string { return "sniffer/" + source }

// Anomaly kind names used with Anomaly().
const (
	AnomalyPosition        = "position"
	AnomalyMovement        = "movement"
	AnomalyStemTemperature = "stem_temperature"
	AnomalyAirTemperature  = "air_temperature"
	AnomalyBrightness      = "brightness"
)
