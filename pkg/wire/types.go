// Wire protocol for the augmentor transport: a small multi-part frame
// format exchanged between the augmentation loop and each augmentor
// instance. Every frame is a sequence of length-prefixed byte parts; the
// first part is always the frame's type tag. The peer address itself is
// never one of these parts — it is the transport's notion of which
// connection a frame arrived on or must be sent to, so every Encode/Decode
// pair here works on the payload frames only.
package wire

import "time"

const (
	TagConfig   = "CONFIG"
	TagConfigOK = "CONFIGOK"
	TagAugment  = "AUGMENT"
	TagResponse = "RESPONSE"

	ProtocolVersion = "1.0"
)

// Frame is one multi-part wire message: parts[0] is the type tag.
type Frame [][]byte

// ConfigFrame announces (or updates) an augmentor instance's identity and
// capacity. Sent by the augmentor on connect. MaxInFlight is a sentinel of
// -1 when the augmentor sent no fifth part; doConfig defaults both that and
// any negative value it parses to global.DefaultMaxInFlight.
type ConfigFrame struct {
	Name        string
	MaxInFlight int
}

// AugmentFrame carries one auction out to an augmentor instance.
type AugmentFrame struct {
	AugmentorName     string
	AuctionID         string
	RequestFormat     string
	RequestBlob       []byte
	Agents            []string // agent IDs bidding on this auction; EncodeAgents writes them sorted
	DispatchTimestamp time.Time
}

// ResponseFrame carries one augmentor's result back for a prior AugmentFrame.
type ResponseFrame struct {
	StartTimestamp time.Time
	AuctionID      string
	AugmentorName  string
	Body           []byte // "", "null", or a JSON object decodable into an AugmentationList
}
