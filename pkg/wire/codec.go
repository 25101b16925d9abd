package wire

import (
	"fmt"
	"strconv"
	"time"
)

func encodeTimestamp(t time.Time) []byte {
	return []byte(strconv.FormatFloat(float64(t.UnixNano())/1e9, 'f', 6, 64))
}

func decodeTimestamp(part []byte) (t time.Time, err error) {
	seconds, err := strconv.ParseFloat(string(part), 64)
	if err != nil {
		err = fmt.Errorf("invalid timestamp %q: %w", part, err)
		return
	}
	t = time.Unix(0, int64(seconds*1e9))
	return
}

func checkTagAndVersion(frame Frame, wantTag string) (err error) {
	if len(frame) < 2 {
		err = fmt.Errorf("%s frame has %d parts, need at least 2", wantTag, len(frame))
		return
	}
	if string(frame[0]) != wantTag {
		err = fmt.Errorf("expected %s frame, got %q", wantTag, frame[0])
		return
	}
	if string(frame[1]) != ProtocolVersion {
		err = fmt.Errorf("unsupported %s protocol version %q", wantTag, frame[1])
		return
	}
	return
}

// EncodeConfig builds a CONFIG frame. Part layout: [0]=tag [1]=version
// [2]=name [3]=max-in-flight-decimal, with part 3 omitted when MaxInFlight
// is the "unspecified" sentinel (-1). The loop thread reads max-in-flight
// from part index 3 of this (peer-address-stripped) frame — the original
// router's off-by-one read one index past the end of its own five-element
// vector; translated to a frame without the leading peer-address slot, the
// correct index is 3, not 4.
func EncodeConfig(cfg ConfigFrame) (frame Frame) {
	frame = Frame{
		[]byte(TagConfig),
		[]byte(ProtocolVersion),
		[]byte(cfg.Name),
	}
	if cfg.MaxInFlight >= 0 {
		frame = append(frame, []byte(strconv.Itoa(cfg.MaxInFlight)))
	}
	return
}

func DecodeConfig(frame Frame) (cfg ConfigFrame, err error) {
	if err = checkTagAndVersion(frame, TagConfig); err != nil {
		return
	}
	if len(frame) != 3 && len(frame) != 4 {
		err = fmt.Errorf("config frame has %d parts, need 3 or 4", len(frame))
		return
	}

	cfg.Name = string(frame[2])
	cfg.MaxInFlight = -1
	if len(frame) == 4 {
		cfg.MaxInFlight, err = strconv.Atoi(string(frame[3]))
		if err != nil {
			err = fmt.Errorf("config frame max-in-flight %q: %w", frame[3], err)
			return
		}
	}
	return
}

func EncodeConfigOK() (frame Frame) {
	frame = Frame{[]byte(TagConfigOK)}
	return
}

func DecodeConfigOK(frame Frame) (err error) {
	if len(frame) < 1 || string(frame[0]) != TagConfigOK {
		err = fmt.Errorf("expected %s frame", TagConfigOK)
	}
	return
}

// EncodeAugment builds an AUGMENT frame: [0]=tag [1]=version
// [2]=augmentor-name [3]=auction-id [4]=request-format [5]=request-blob
// [6]=agents-blob [7]=dispatch-timestamp.
func EncodeAugment(a AugmentFrame) (frame Frame) {
	frame = Frame{
		[]byte(TagAugment),
		[]byte(ProtocolVersion),
		[]byte(a.AugmentorName),
		[]byte(a.AuctionID),
		[]byte(a.RequestFormat),
		a.RequestBlob,
		EncodeAgents(a.Agents),
		encodeTimestamp(a.DispatchTimestamp),
	}
	return
}

func DecodeAugment(frame Frame) (a AugmentFrame, err error) {
	if err = checkTagAndVersion(frame, TagAugment); err != nil {
		return
	}
	if len(frame) != 8 {
		err = fmt.Errorf("augment frame has %d parts, need 8", len(frame))
		return
	}

	a.AugmentorName = string(frame[2])
	a.AuctionID = string(frame[3])
	a.RequestFormat = string(frame[4])
	a.RequestBlob = frame[5]

	a.Agents, err = DecodeAgents(frame[6])
	if err != nil {
		err = fmt.Errorf("augment frame agents blob: %w", err)
		return
	}

	a.DispatchTimestamp, err = decodeTimestamp(frame[7])
	if err != nil {
		err = fmt.Errorf("augment frame dispatch timestamp: %w", err)
		return
	}
	return
}

// EncodeResponse builds a RESPONSE frame: [0]=tag [1]=version
// [2]=start-timestamp [3]=auction-id [4]=augmentor-name [5]=body.
func EncodeResponse(r ResponseFrame) (frame Frame) {
	frame = Frame{
		[]byte(TagResponse),
		[]byte(ProtocolVersion),
		encodeTimestamp(r.StartTimestamp),
		[]byte(r.AuctionID),
		[]byte(r.AugmentorName),
		r.Body,
	}
	return
}

func DecodeResponse(frame Frame) (r ResponseFrame, err error) {
	if err = checkTagAndVersion(frame, TagResponse); err != nil {
		return
	}
	if len(frame) != 6 {
		err = fmt.Errorf("response frame has %d parts, need 6", len(frame))
		return
	}

	r.StartTimestamp, err = decodeTimestamp(frame[2])
	if err != nil {
		err = fmt.Errorf("response frame start timestamp: %w", err)
		return
	}
	r.AuctionID = string(frame[3])
	r.AugmentorName = string(frame[4])
	r.Body = frame[5]
	return
}
