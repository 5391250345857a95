package ttbus

import "github.com/treetalker/ttcloud/pkg/ttpacket"

// HeloClaim is published by a decision engine on the HeloRequest subject
// when a talker announces itself, and consumed by the coordinator.
type HeloClaim struct {
	Gateway ttpacket.Address `json:"gateway"`
	Talker  ttpacket.Address `json:"talker"`
}

// HeloVerdict is the coordinator's reply, published on the subject
// HeloResponse(gateway) returns.
type HeloVerdict struct {
	Talker  ttpacket.Address `json:"talker"`
	Connect bool             `json:"connect"`
}

// Baseline mirrors policy.Baseline for wire transport on GlobalMovement;
// kept distinct from policy.Baseline so ttbus never imports the policy
// package.
type Baseline struct {
	MeanX  float64 `json:"mean_x"`
	StdevX float64 `json:"stdev_x"`
	MeanY  float64 `json:"mean_y"`
	StdevY float64 `json:"stdev_y"`
	MeanZ  float64 `json:"mean_z"`
	StdevZ float64 `json:"stdev_z"`
}

// TemperatureBaseline mirrors policy.TemperatureBaseline for wire
// transport on GlobalTemperature.
type TemperatureBaseline struct {
	StdevDeltaCold float64 `json:"stdev_delta_cold"`
	StdevDeltaHot  float64 `json:"stdev_delta_hot"`
}
