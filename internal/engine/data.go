package engine

import (
	"context"
	"encoding/base64"

	"github.com/treetalker/ttcloud/internal/httpserver"
	"github.com/treetalker/ttcloud/internal/policy"
	"github.com/treetalker/ttcloud/internal/ttbus"
	"github.com/treetalker/ttcloud/pkg/log"
	"github.com/treetalker/ttcloud/pkg/ttpacket"
)

func (e *Engine) handleDataRev31(ctx context.Context, p *ttpacket.DataRev31) error {
	reading := policy.Reading{
		MeanX: float64(p.GravityXMean), MeanY: float64(p.GravityYMean), MeanZ: float64(p.GravityZMean),
		DerivationX: float64(p.GravityXDerivation), DerivationY: float64(p.GravityYDerivation), DerivationZ: float64(p.GravityZDerivation),
	}
	stem := policy.StemTemperatureReading{
		ReferenceProbeCold: float64(p.ReferenceProbeCold),
		ReferenceProbeHot:  float64(p.ReferenceProbeHot),
		HeatProbeCold:      float64(p.HeatProbeCold),
		HeatProbeHot:       float64(p.HeatProbeHot),
	}
	voltage := policy.ComputeBatteryVoltageRev31(p.Voltage)

	reply := e.evaluateData(ctx, p, p.Sender, reading, stem, float64(p.AirTemperature), voltage)
	e.writeObservations(ctx, ObservationsForDataRev31(p))
	return e.sendCommand(&reply)
}

func (e *Engine) handleDataRev32(ctx context.Context, p *ttpacket.DataRev32) error {
	reading := policy.Reading{
		MeanX: float64(p.GravityXMean), MeanY: float64(p.GravityYMean), MeanZ: float64(p.GravityZMean),
		DerivationX: float64(p.GravityXDerivation), DerivationY: float64(p.GravityYDerivation), DerivationZ: float64(p.GravityZDerivation),
	}
	stem := policy.StemTemperatureReading{
		ReferenceProbeCold: float64(p.ReferenceProbeCold),
		ReferenceProbeHot:  float64(p.ReferenceProbeHot),
		HeatProbeCold:      float64(p.HeatProbeCold),
		HeatProbeHot:       float64(p.HeatProbeHot),
	}
	voltage := policy.ComputeBatteryVoltageRev32(p.AdcVoltBat, p.AdcBandgap)

	reply := e.evaluateData(ctx, p, p.Sender, reading, stem, float64(p.AirTemperature), voltage)
	e.writeObservations(ctx, ObservationsForDataRev32(p))
	return e.sendCommand(&reply)
}

// evaluateData runs every independent data-policy check (spec.md §4.4),
// publishes an anomaly copy for each one raised, updates the sleep-seed
// state, and composes the Command1 reply.
func (e *Engine) evaluateData(ctx context.Context, p ttpacket.Packet, talker ttpacket.Address, reading policy.Reading, stem policy.StemTemperatureReading, airTemperature, voltageNow float64) ttpacket.Command1 {
	now := e.now()

	sleep := policy.EvaluateSleep(ctx, e.Store, talker, now, voltageNow, e.State.LastSleep(talker))
	e.State.SetLastSleep(talker, sleep)

	anyAnomaly := false

	movementBaseline, haveMovement := e.State.MovementBaseline()
	positionAnomaly, _, _ := policy.EvaluatePosition(ctx, e.Store, talker, now, policy.AnalysisWindowShort, reading)
	movementAnomaly := policy.EvaluateMovement(reading, movementBaseline, haveMovement)
	if positionAnomaly {
		anyAnomaly = true
		e.publishAnomalyPacket(ttbus.AnomalyPosition, p)
	}
	if movementAnomaly {
		anyAnomaly = true
		e.publishAnomalyPacket(ttbus.AnomalyMovement, p)
	}

	temperatureBaseline, haveTemperature := e.State.TemperatureBaseline()
	stemAnomaly, _, _ := policy.EvaluateStemTemperature(ctx, e.Store, talker, now, policy.AnalysisWindowShort, stem, temperatureBaseline, haveTemperature)
	if stemAnomaly {
		anyAnomaly = true
		e.publishAnomalyPacket(ttbus.AnomalyStemTemperature, p)
	}

	if policy.EvaluateAirTemperature(int16(airTemperature)) {
		anyAnomaly = true
		e.publishAnomalyPacket(ttbus.AnomalyAirTemperature, p)
	}

	slot := e.State.SlotOf(talker)
	return policy.ComposeCommand1(talker, e.State.OwnAddress, now, sleep, anyAnomaly, slot)
}

func (e *Engine) handleLight(ctx context.Context, p *ttpacket.Light) error {
	now := e.now()
	talker := p.Sender

	var as7263, as7262 [6]float64
	for i, v := range p.AS7263 {
		as7263[i] = float64(v)
	}
	for i, v := range p.AS7262 {
		as7262[i] = float64(v)
	}

	if policy.EvaluateBrightness(ctx, e.Store, talker, now, policy.AnalysisWindowShort, as7263, as7262) {
		log.Infof("engine: brightness anomaly for talker %s", talker)
		e.publishAnomalyPacket(ttbus.AnomalyBrightness, p)
	}

	e.writeObservations(ctx, ObservationsForLight(p))

	reply := policy.ComposeCommand2(talker, e.State.OwnAddress, now)
	return e.sendCommand(&reply)
}

// publishAnomalyPacket republishes a flagged packet's own wire bytes,
// base64-encoded, on anomaly/<kind>/<ownAddress>, per spec.md §4.4's
// "Observability" clause.
func (e *Engine) publishAnomalyPacket(kind string, p ttpacket.Packet) {
	raw := ttpacket.Marshal(p)
	encoded := make([]byte, base64.StdEncoding.EncodedLen(len(raw)))
	base64.StdEncoding.Encode(encoded, raw)

	if err := e.publish(ttbus.Anomaly(kind, e.gatewayName()), encoded); err != nil {
		log.Errorf("engine: anomaly publish failed for %s: %v", kind, err)
		return
	}
	httpserver.AnomaliesRaised.WithLabelValues(e.gatewayName(), kind).Inc()
}
