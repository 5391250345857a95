package engine

import (
	"context"
	"encoding/json"
	"time"

	"github.com/treetalker/ttcloud/internal/httpserver"
	"github.com/treetalker/ttcloud/internal/policy"
	"github.com/treetalker/ttcloud/internal/ttbus"
	"github.com/treetalker/ttcloud/internal/ttstore"
	"github.com/treetalker/ttcloud/pkg/log"
	"github.com/treetalker/ttcloud/pkg/ttpacket"
)

// Bus is the subset of ttbus.Client the engine needs, kept narrow so
// tests can substitute a recorder.
type Bus interface {
	Publish(subject string, data []byte) error
}

// Clock is injected so tests can control "now"; production callers pass
// time.Now.
type Clock func() time.Time

// Engine is one gateway's decision engine: it owns State, queries and
// writes through Store, and publishes replies and anomaly copies through
// Bus.
type Engine struct {
	State *State
	Store ttstore.Store
	Bus   Bus
	Clock Clock

	// Respond gates actual publication (observer mode). Evaluation
	// always happens regardless of this flag, per spec.md §4.3.
	Respond bool
}

// New builds an Engine for one gateway.
func New(state *State, store ttstore.Store, bus Bus) *Engine {
	return &Engine{State: state, Store: store, Bus: bus, Clock: time.Now, Respond: true}
}

func (e *Engine) now() time.Time {
	if e.Clock != nil {
		return e.Clock()
	}
	return time.Now()
}

// HandleInbound decodes one radio-delivered packet and dispatches it per
// spec.md §4.3: address filter first, then variant switch. A drop or an
// ignored variant both return nil — only codec and I/O failures are
// errors.
func (e *Engine) HandleInbound(ctx context.Context, raw []byte) error {
	pkt, err := ttpacket.Unmarshal(raw)
	if err != nil {
		log.Errorf("engine: decode failed: %v", err)
		return err
	}

	receiver := ttpacket.ReceiverAddress(pkt)
	if receiver != ttpacket.Multicast && receiver != e.State.OwnAddress {
		return nil
	}

	sender := ttpacket.SenderAddress(pkt)
	if receiver == e.State.OwnAddress {
		if e.State.SlotOf(sender) == unassignedSlot {
			e.State.AssignSlot(sender)
		}
	}

	httpserver.PacketsReceived.WithLabelValues(e.gatewayName(), pkt.Kind().String()).Inc()

	switch p := pkt.(type) {
	case *ttpacket.Helo:
		return e.handleHelo(sender)
	case *ttpacket.DataRev31:
		return e.handleDataRev31(ctx, p)
	case *ttpacket.DataRev32:
		return e.handleDataRev32(ctx, p)
	case *ttpacket.Light:
		return e.handleLight(ctx, p)
	default:
		log.Warnf("engine: ignoring packet kind %v from %s", pkt.Kind(), sender)
		return nil
	}
}

func (e *Engine) handleHelo(talker ttpacket.Address) error {
	claim := ttbus.HeloClaim{Gateway: e.State.OwnAddress, Talker: talker}
	payload, err := json.Marshal(claim)
	if err != nil {
		return err
	}
	return e.publish(ttbus.HeloRequest, payload)
}

// HandleHeloResponse processes the coordinator's verdict for a prior
// Helo. On "connect", it emits a CloudHelo acceptance and registers the
// talker (allocating its slot).
func (e *Engine) HandleHeloResponse(raw []byte) error {
	var verdict ttbus.HeloVerdict
	if err := json.Unmarshal(raw, &verdict); err != nil {
		return err
	}
	if !verdict.Connect {
		log.Debugf("engine: coordinator refused talker %s", verdict.Talker)
		return nil
	}

	e.State.AssignSlot(verdict.Talker)

	reply := ttpacket.CloudHelo{
		Header:  ttpacket.Header{Receiver: verdict.Talker, Sender: e.State.OwnAddress},
		Command: 190,
		Time:    uint32(e.now().Unix()),
	}
	return e.sendCommand(&reply)
}

// HandleGlobalMovement records the aggregator's latest movement
// baseline.
func (e *Engine) HandleGlobalMovement(raw []byte) error {
	var b ttbus.Baseline
	if err := json.Unmarshal(raw, &b); err != nil {
		return err
	}
	e.State.SetMovementBaseline(policy.Baseline{
		MeanX: b.MeanX, StdevX: b.StdevX,
		MeanY: b.MeanY, StdevY: b.StdevY,
		MeanZ: b.MeanZ, StdevZ: b.StdevZ,
	})
	return nil
}

// HandleGlobalTemperature records the aggregator's latest stem-temperature
// baseline.
func (e *Engine) HandleGlobalTemperature(raw []byte) error {
	var b ttbus.TemperatureBaseline
	if err := json.Unmarshal(raw, &b); err != nil {
		return err
	}
	e.State.SetTemperatureBaseline(policy.TemperatureBaseline{
		StdevDeltaCold: b.StdevDeltaCold,
		StdevDeltaHot:  b.StdevDeltaHot,
	})
	return nil
}

func (e *Engine) publish(subject string, payload []byte) error {
	if !e.Respond {
		return nil
	}
	return e.Bus.Publish(subject, payload)
}

func (e *Engine) sendCommand(p ttpacket.Packet) error {
	raw := ttpacket.Marshal(p)
	if err := e.publish(ttbus.Command(e.gatewayName()), raw); err != nil {
		return err
	}
	if e.Respond {
		httpserver.RepliesSent.WithLabelValues(e.gatewayName()).Inc()
	}
	return nil
}

func (e *Engine) gatewayName() string {
	return e.State.OwnAddress.String()
}

func (e *Engine) writeObservations(ctx context.Context, rows []ttstore.Observation) {
	for _, obs := range rows {
		if err := e.Store.Write(ctx, obs); err != nil {
			log.Errorf("engine: store write failed for %s: %v", obs.Measurement, err)
		}
	}
}
