// Package coordinator assigns each talker to the first gateway that
// claims it, and holds every later gateway to that same answer.
//
// One talker can be in radio range of more than one gateway at once; the
// fleet needs exactly one of them to actually accept it. The coordinator
// is the single process that settles that race: it remembers the first
// claim it sees for a talker and answers every subsequent claim with
// whether it matches.
package coordinator

import (
	"encoding/json"
	"sync"

	"github.com/treetalker/ttcloud/internal/ttbus"
	"github.com/treetalker/ttcloud/pkg/log"
	"github.com/treetalker/ttcloud/pkg/ttpacket"
)

// Bus is the subset of ttbus.Client the coordinator needs.
type Bus interface {
	Publish(subject string, data []byte) error
}

// Coordinator holds the fleet-wide talker-to-gateway assignment table.
type Coordinator struct {
	bus Bus

	mu          sync.Mutex
	assignments map[ttpacket.Address]ttpacket.Address
}

// New builds a Coordinator with an empty assignment table.
func New(bus Bus) *Coordinator {
	return &Coordinator{
		bus:         bus,
		assignments: make(map[ttpacket.Address]ttpacket.Address),
	}
}

// HandleClaim processes one gateway's claim for a talker and publishes
// the verdict on that gateway's response subject. The first gateway to
// claim a given talker wins it; every later claim for that talker from
// any gateway is answered false unless it's the same gateway.
func (c *Coordinator) HandleClaim(raw []byte) error {
	var claim ttbus.HeloClaim
	if err := json.Unmarshal(raw, &claim); err != nil {
		return err
	}

	c.mu.Lock()
	owner, known := c.assignments[claim.Talker]
	connect := !known || owner == claim.Gateway
	if !known {
		c.assignments[claim.Talker] = claim.Gateway
	}
	c.mu.Unlock()

	log.Debugf("coordinator: talker %s claimed by %s, connect=%v", claim.Talker, claim.Gateway, connect)

	verdict := ttbus.HeloVerdict{Talker: claim.Talker, Connect: connect}
	payload, err := json.Marshal(verdict)
	if err != nil {
		return err
	}
	return c.bus.Publish(ttbus.HeloResponse(claim.Gateway.String()), payload)
}

// AssignmentCount returns the number of talkers currently assigned;
// cmd/ttcoordinator logs it at shutdown.
func (c *Coordinator) AssignmentCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.assignments)
}
