// Package radiobridge is the stateless bridge between a gateway's radio
// link and the message bus: inbound frames are unwrapped and republished
// on receive/<gw>, and replies arriving on command/<gw> are wrapped and
// written back out to the radio.
package radiobridge

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/treetalker/ttcloud/internal/ttbus"
	"github.com/treetalker/ttcloud/pkg/log"
)

// preamble is the fixed 4-byte marker original_source's rci.py prepends
// to every outbound write and strips from every inbound read
// ("[255, 255, 0, 0] + list(packet.marshall())" / "payload[4:]").
var preamble = [4]byte{0xFF, 0xFF, 0x00, 0x00}

// Bus is the subset of ttbus.Client the bridge needs.
type Bus interface {
	Publish(subject string, data []byte) error
}

// Radio is one complete radio transfer at a time, mirroring the LoRa
// chip's interrupt-driven model: on_rx_done hands the driver one whole
// payload, there is no byte-stream framing to reassemble.
type Radio interface {
	// ReadFrame blocks until one inbound payload (still carrying the
	// 4-byte preamble) has arrived.
	ReadFrame() ([]byte, error)
	// WriteFrame transmits one already-framed payload.
	WriteFrame(frame []byte) error
}

// Bridge couples one gateway's radio to the bus. It has no notion of
// packet semantics — it only frames and forwards bytes — so it carries
// no engine state.
type Bridge struct {
	Radio   Radio
	Bus     Bus
	Gateway string

	// Limiter bounds outbound radio writes; the physical link is
	// half-duplex and narrow-band, so an unbounded reply burst would
	// starve the channel.
	Limiter *rate.Limiter
}

// New builds a Bridge with the default outbound rate of 1 write/sec,
// burst 1 — the fleet's reply cadence is one packet per talker per sleep
// cycle, never a burst.
func New(radio Radio, bus Bus, gateway string) *Bridge {
	return &Bridge{
		Radio:   radio,
		Bus:     bus,
		Gateway: gateway,
		Limiter: rate.NewLimiter(1, 1),
	}
}

// Send writes one already-marshalled packet out to the radio, blocking
// on the rate limiter and prepending the 4-byte preamble.
func (b *Bridge) Send(ctx context.Context, payload []byte) error {
	if err := b.Limiter.Wait(ctx); err != nil {
		return err
	}

	framed := make([]byte, 0, len(preamble)+len(payload))
	framed = append(framed, preamble[:]...)
	framed = append(framed, payload...)

	return b.Radio.WriteFrame(framed)
}

// HandleCommand is the bus subscription callback for command/<gw>: it
// forwards the packet bytes straight to the radio.
func (b *Bridge) HandleCommand(ctx context.Context) ttbus.MessageHandler {
	return func(_ string, data []byte) {
		if err := b.Send(ctx, data); err != nil {
			log.Errorf("radiobridge: send failed: %v", err)
		}
	}
}

// ReceiveOne reads one inbound frame off the radio, strips the preamble,
// and publishes the remaining bytes on receive/<gw> for the decision
// engine to consume.
func (b *Bridge) ReceiveOne() error {
	frame, err := b.Radio.ReadFrame()
	if err != nil {
		return err
	}
	if len(frame) < len(preamble) {
		log.Warnf("radiobridge: dropping short frame (%d bytes)", len(frame))
		return nil
	}

	payload := frame[len(preamble):]
	return b.Bus.Publish(ttbus.Receive(b.Gateway), payload)
}

// Run reads frames off the radio in a loop until ctx is cancelled or a
// read fails.
func (b *Bridge) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := b.ReceiveOne(); err != nil {
			return err
		}
	}
}
