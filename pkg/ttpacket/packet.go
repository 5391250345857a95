package ttpacket

// Kind is the 1-byte wire tag identifying a packet variant.
type Kind uint8

const (
	KindHelo       Kind = 5
	KindCloudHelo  Kind = 65
	KindCommand1   Kind = 66
	KindDataRev31  Kind = 69
	KindLight      Kind = 73
	KindCommand2   Kind = 74
	KindDataRev32  Kind = 77
)

func (k Kind) String() string {
	switch k {
	case KindHelo:
		return "Helo"
	case KindCloudHelo:
		return "CloudHelo"
	case KindCommand1:
		return "Command1"
	case KindDataRev31:
		return "DataRev31"
	case KindLight:
		return "Light"
	case KindCommand2:
		return "Command2"
	case KindDataRev32:
		return "DataRev32"
	default:
		return "Unknown"
	}
}

// Header carries the fields common to every packet.
type Header struct {
	Receiver Address
	Sender   Address
}

// Packet is the tagged-variant sum type. Every concrete type in this
// package implements it.
type Packet interface {
	Kind() Kind
	header() Header
}

func (h Header) header() Header { return h }

// ReceiverAddress returns the receiver field carried by every packet.
func ReceiverAddress(p Packet) Address { return p.header().Receiver }

// SenderAddress returns the sender field carried by every packet.
func SenderAddress(p Packet) Address { return p.header().Sender }
