package historical

import (
	"context"
	"time"

	"github.com/treetalker/ttcloud/internal/engine"
	"github.com/treetalker/ttcloud/internal/policy"
	"github.com/treetalker/ttcloud/internal/ttbus"
	"github.com/treetalker/ttcloud/internal/ttstore"
	"github.com/treetalker/ttcloud/pkg/log"
	"github.com/treetalker/ttcloud/pkg/ttpacket"
)

// reaggregationWindow mirrors eval/historical.py's ANALYSIS_WINDOW (250s
// of packet time): fleet-wide baselines are refreshed at most this
// often rather than recomputed for every single packet.
const reaggregationWindow = 250 * time.Second

// Finding is one anomalies.jsonl/critical.jsonl record.
type Finding struct {
	Timestamp int64            `json:"timestamp"`
	Talker    ttpacket.Address `json:"talker"`
	Kind      string           `json:"kind"`
	Events    []string         `json:"events"`
}

// Analyzer replays a packet stream against the short (2d) and long (7d)
// windows simultaneously, writing observations as it goes so later
// packets see the history earlier ones produced.
type Analyzer struct {
	Store ttstore.Store

	aggregationTime      time.Time
	haveMovementShort    bool
	movementShort        policy.Baseline
	haveMovementLong     bool
	movementLong         policy.Baseline
	haveTemperatureShort bool
	temperatureShort     policy.TemperatureBaseline
	haveTemperatureLong  bool
	temperatureLong      policy.TemperatureBaseline
}

// NewAnalyzer builds an Analyzer over store.
func NewAnalyzer(store ttstore.Store) *Analyzer {
	return &Analyzer{Store: store}
}

// Process decodes one captured record, writes its observations, and (for
// DataRev31/DataRev32 packets) evaluates both windows. It returns a
// short-window Finding for anomalies.jsonl and a long-window Finding
// (plus the always-on air-temperature critical check) for
// critical.jsonl; either may be nil if nothing fired.
func (a *Analyzer) Process(ctx context.Context, rec Record) (anomalies, critical *Finding, err error) {
	pkt, at, err := rec.Decode()
	if err != nil {
		return nil, nil, err
	}

	if err := a.reaggregateIfDue(ctx, at); err != nil {
		log.Warnf("historical: reaggregation failed: %v", err)
	}

	a.writeObservations(ctx, pkt)

	switch p := pkt.(type) {
	case *ttpacket.DataRev31:
		anomalies, critical = a.evaluateData(ctx, p, p.Sender, at, toReading(p), toStemReading(p), float64(p.AirTemperature))
	case *ttpacket.DataRev32:
		anomalies, critical = a.evaluateData(ctx, p, p.Sender, at, toReading(p), toStemReading(p), float64(p.AirTemperature))
	}

	return anomalies, critical, nil
}

func (a *Analyzer) writeObservations(ctx context.Context, pkt ttpacket.Packet) {
	var rows []ttstore.Observation
	switch p := pkt.(type) {
	case *ttpacket.DataRev31:
		rows = engine.ObservationsForDataRev31(p)
	case *ttpacket.DataRev32:
		rows = engine.ObservationsForDataRev32(p)
	case *ttpacket.Light:
		rows = engine.ObservationsForLight(p)
	default:
		return
	}
	for _, row := range rows {
		if err := a.Store.Write(ctx, row); err != nil {
			log.Errorf("historical: store write failed for %s: %v", row.Measurement, err)
		}
	}
}

func (a *Analyzer) evaluateData(ctx context.Context, pkt ttpacket.Packet, talker ttpacket.Address, at time.Time, reading policy.Reading, stem policy.StemTemperatureReading, airTemperature float64) (anomalies, critical *Finding) {
	var shortEvents, longEvents []string

	positionShort, _, _ := policy.EvaluatePosition(ctx, a.Store, talker, at, policy.AnalysisWindowShort, reading)
	movementShort := policy.EvaluateMovement(reading, a.movementShort, a.haveMovementShort)
	stemShort, _, _ := policy.EvaluateStemTemperature(ctx, a.Store, talker, at, policy.AnalysisWindowShort, stem, a.temperatureShort, a.haveTemperatureShort)
	if positionShort {
		shortEvents = append(shortEvents, ttbus.AnomalyPosition)
	}
	if movementShort {
		shortEvents = append(shortEvents, ttbus.AnomalyMovement)
	}
	if stemShort {
		shortEvents = append(shortEvents, ttbus.AnomalyStemTemperature)
	}

	positionLong, _, _ := policy.EvaluatePosition(ctx, a.Store, talker, at, policy.AnalysisWindowLong, reading)
	movementLong := policy.EvaluateMovement(reading, a.movementLong, a.haveMovementLong)
	stemLong, _, _ := policy.EvaluateStemTemperature(ctx, a.Store, talker, at, policy.AnalysisWindowLong, stem, a.temperatureLong, a.haveTemperatureLong)
	airCritical := policy.EvaluateAirTemperature(int16(airTemperature))
	if positionLong {
		longEvents = append(longEvents, ttbus.AnomalyPosition)
	}
	if movementLong {
		longEvents = append(longEvents, ttbus.AnomalyMovement)
	}
	if stemLong {
		longEvents = append(longEvents, ttbus.AnomalyStemTemperature)
	}
	if airCritical {
		longEvents = append(longEvents, ttbus.AnomalyAirTemperature)
	}

	if len(shortEvents) > 0 {
		anomalies = &Finding{Timestamp: at.Unix(), Talker: talker, Kind: kindName(pkt), Events: shortEvents}
	}
	if len(longEvents) > 0 {
		critical = &Finding{Timestamp: at.Unix(), Talker: talker, Kind: kindName(pkt), Events: longEvents}
	}
	return anomalies, critical
}

// reaggregateIfDue recomputes the fleet-wide movement and temperature
// baselines (both windows) once at the first packet and thereafter at
// most every reaggregationWindow of packet time, mirroring
// eval/historical.py's ANALYSIS_WINDOW gate.
func (a *Analyzer) reaggregateIfDue(ctx context.Context, at time.Time) error {
	if !a.aggregationTime.IsZero() && at.Sub(a.aggregationTime) < reaggregationWindow {
		return nil
	}
	a.aggregationTime = at

	var firstErr error
	record := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	var err error
	a.movementShort, a.haveMovementShort, err = policy.QueryFleetMovementBaseline(ctx, a.Store, at, policy.AnalysisWindowShort)
	record(err)
	a.movementLong, a.haveMovementLong, err = policy.QueryFleetMovementBaseline(ctx, a.Store, at, policy.AnalysisWindowLong)
	record(err)
	a.temperatureShort, a.haveTemperatureShort, err = policy.QueryFleetTemperatureBaseline(ctx, a.Store, at, policy.AnalysisWindowShort)
	record(err)
	a.temperatureLong, a.haveTemperatureLong, err = policy.QueryFleetTemperatureBaseline(ctx, a.Store, at, policy.AnalysisWindowLong)
	record(err)

	return firstErr
}

func toReading(p ttpacket.Packet) policy.Reading {
	switch v := p.(type) {
	case *ttpacket.DataRev31:
		return policy.Reading{
			MeanX: float64(v.GravityXMean), MeanY: float64(v.GravityYMean), MeanZ: float64(v.GravityZMean),
			DerivationX: float64(v.GravityXDerivation), DerivationY: float64(v.GravityYDerivation), DerivationZ: float64(v.GravityZDerivation),
		}
	case *ttpacket.DataRev32:
		return policy.Reading{
			MeanX: float64(v.GravityXMean), MeanY: float64(v.GravityYMean), MeanZ: float64(v.GravityZMean),
			DerivationX: float64(v.GravityXDerivation), DerivationY: float64(v.GravityYDerivation), DerivationZ: float64(v.GravityZDerivation),
		}
	default:
		return policy.Reading{}
	}
}

func toStemReading(p ttpacket.Packet) policy.StemTemperatureReading {
	switch v := p.(type) {
	case *ttpacket.DataRev31:
		return policy.StemTemperatureReading{
			ReferenceProbeCold: float64(v.ReferenceProbeCold), ReferenceProbeHot: float64(v.ReferenceProbeHot),
			HeatProbeCold: float64(v.HeatProbeCold), HeatProbeHot: float64(v.HeatProbeHot),
		}
	case *ttpacket.DataRev32:
		return policy.StemTemperatureReading{
			ReferenceProbeCold: float64(v.ReferenceProbeCold), ReferenceProbeHot: float64(v.ReferenceProbeHot),
			HeatProbeCold: float64(v.HeatProbeCold), HeatProbeHot: float64(v.HeatProbeHot),
		}
	default:
		return policy.StemTemperatureReading{}
	}
}

func kindName(p ttpacket.Packet) string {
	switch p.(type) {
	case *ttpacket.DataRev31:
		return "DataRev31"
	case *ttpacket.DataRev32:
		return "DataRev32"
	default:
		return "unknown"
	}
}
