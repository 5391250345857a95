package policy

import (
	"time"

	"github.com/treetalker/ttcloud/pkg/ttpacket"
)

// DataCommand is command=32, the code the engine puts on every Command1
// reply to a data packet.
const DataCommand = 32

// TimeSlotLength is the fixed width of a TDMA cycle slot, in seconds.
const TimeSlotLength = 60

// ComposeCommand1 builds the engine's reply to a data packet. Any raised
// anomaly forces sleep down to SleepTimeMin regardless of what the
// battery regression computed.
func ComposeCommand1(receiver, sender ttpacket.Address, now time.Time, sleep int, anyAnomaly bool, slot uint8) ttpacket.Command1 {
	if anyAnomaly {
		sleep = SleepTimeMin
	}

	return ttpacket.Command1{
		Header:        ttpacket.Header{Receiver: receiver, Sender: sender},
		Command:       DataCommand,
		Time:          uint32(now.Unix()),
		SleepInterval: uint16(sleep),
		Reserved:      0,
		Heating:       uint16(sleep / 6),
		SlotLength:    TimeSlotLength,
		Slot:          slot,
	}
}

// LightCommand is command=33, the code the engine puts on every Command2
// reply to a light packet.
const LightCommand = 33

// ComposeCommand2 builds the engine's fixed reply to a light packet. The
// brightness anomaly flag is computed and logged but, per spec, never
// changes this reply.
func ComposeCommand2(receiver, sender ttpacket.Address, now time.Time) ttpacket.Command2 {
	return ttpacket.Command2{
		Header:          ttpacket.Header{Receiver: receiver, Sender: sender},
		Command:         LightCommand,
		Time:            uint32(now.Unix()),
		IntegrationTime: 50,
		Gain:            3,
	}
}
