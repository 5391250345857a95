// Package engine implements one gateway's decision engine: the
// per-packet address filter and variant dispatch, the time-slot
// allocator, and the reply composition that ties a decoded packet to the
// policies in internal/policy. State itself holds no lock: callers
// serialize every engine call (cmd/ttgateway holds one mutex around each
// of them, including the serializer goroutine's).
package engine

import (
	"github.com/treetalker/ttcloud/internal/httpserver"
	"github.com/treetalker/ttcloud/internal/policy"
	"github.com/treetalker/ttcloud/pkg/ttpacket"
)

// unassignedSlot is the sentinel returned for a talker with no
// registered assignment yet.
const unassignedSlot = 0

// firstSlot is the first slot nextSlot hands out.
const firstSlot = 1

// State is one gateway's engine state.
type State struct {
	OwnAddress ttpacket.Address

	connectedTalkers map[ttpacket.Address]uint8
	nextSlot         uint8
	sleepTimes       map[ttpacket.Address]int

	aggMovement    *policy.Baseline
	aggTemperature *policy.TemperatureBaseline
}

// NewState builds empty engine state for a gateway at ownAddress.
func NewState(ownAddress ttpacket.Address) *State {
	return &State{
		OwnAddress:       ownAddress,
		connectedTalkers: make(map[ttpacket.Address]uint8),
		nextSlot:         firstSlot,
		sleepTimes:       make(map[ttpacket.Address]int),
	}
}

// SlotOf returns the talker's assigned slot, or unassignedSlot (0) if it
// has never registered.
func (s *State) SlotOf(talker ttpacket.Address) uint8 {
	return s.connectedTalkers[talker]
}

// AssignSlot returns the talker's existing slot if it has one, or hands
// out the next monotonically increasing slot (1..255) and records it.
// Repeated calls for the same talker never reassign.
func (s *State) AssignSlot(talker ttpacket.Address) uint8 {
	if slot, ok := s.connectedTalkers[talker]; ok {
		return slot
	}

	slot := s.nextSlot
	s.connectedTalkers[talker] = slot
	if s.nextSlot < 255 {
		s.nextSlot++
	}
	httpserver.SlotsAllocated.WithLabelValues(s.OwnAddress.String()).Inc()
	return slot
}

// LastSleep returns the talker's previously computed sleep interval, or
// policy.SleepTimeDefault if it has none on record.
func (s *State) LastSleep(talker ttpacket.Address) int {
	if v, ok := s.sleepTimes[talker]; ok {
		return v
	}
	return policy.SleepTimeDefault
}

// SetLastSleep records the sleep interval just computed for talker, to
// seed the next regression.
func (s *State) SetLastSleep(talker ttpacket.Address, sleep int) {
	s.sleepTimes[talker] = sleep
}

// SetMovementBaseline records the aggregator's latest movement baseline.
func (s *State) SetMovementBaseline(b policy.Baseline) { s.aggMovement = &b }

// MovementBaseline returns the last-seen movement baseline, if any.
func (s *State) MovementBaseline() (policy.Baseline, bool) {
	if s.aggMovement == nil {
		return policy.Baseline{}, false
	}
	return *s.aggMovement, true
}

// SetTemperatureBaseline records the aggregator's latest stem-temperature
// baseline.
func (s *State) SetTemperatureBaseline(b policy.TemperatureBaseline) { s.aggTemperature = &b }

// TemperatureBaseline returns the last-seen stem-temperature baseline, if
// any.
func (s *State) TemperatureBaseline() (policy.TemperatureBaseline, bool) {
	if s.aggTemperature == nil {
		return policy.TemperatureBaseline{}, false
	}
	return *s.aggTemperature, true
}
