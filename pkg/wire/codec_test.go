package wire

import (
	"testing"
	"time"
)

func TestConfigRoundTrip(t *testing.T) {
	cfg := ConfigFrame{Name: "geo", MaxInFlight: 500}
	frame := EncodeConfig(cfg)
	if len(frame) != 4 {
		t.Fatalf("expected 4 parts with max-in-flight set, got %d", len(frame))
	}

	decoded, err := DecodeConfig(frame)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decoded.Name != cfg.Name || decoded.MaxInFlight != cfg.MaxInFlight {
		t.Fatalf("round trip mismatch: got %+v", decoded)
	}
}

func TestConfigRoundTrip_NoMaxInFlight(t *testing.T) {
	cfg := ConfigFrame{Name: "geo", MaxInFlight: -1}
	frame := EncodeConfig(cfg)
	if len(frame) != 3 {
		t.Fatalf("expected 3 parts with no max-in-flight, got %d", len(frame))
	}

	decoded, err := DecodeConfig(frame)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decoded.MaxInFlight != -1 {
		t.Fatalf("expected sentinel -1 for absent max-in-flight, got %d", decoded.MaxInFlight)
	}
}

func TestDecodeConfig_RejectsBadArity(t *testing.T) {
	frame := Frame{[]byte(TagConfig), []byte(ProtocolVersion)}
	if _, err := DecodeConfig(frame); err == nil {
		t.Fatalf("expected error for too-short config frame")
	}
}

func TestDecodeConfig_RejectsBadVersion(t *testing.T) {
	frame := Frame{[]byte(TagConfig), []byte("2.0"), []byte("geo")}
	if _, err := DecodeConfig(frame); err == nil {
		t.Fatalf("expected error for unsupported version")
	}
}

func TestAugmentRoundTrip(t *testing.T) {
	now := time.Unix(1700000000, 123000000)
	a := AugmentFrame{
		AugmentorName:     "geo",
		AuctionID:         "auc-1",
		RequestFormat:     "openrtb2.5",
		RequestBlob:       []byte(`{"id":"auc-1"}`),
		Agents:            []string{"b", "a", "c"},
		DispatchTimestamp: now,
	}
	frame := EncodeAugment(a)
	decoded, err := DecodeAugment(frame)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if decoded.AugmentorName != a.AugmentorName || decoded.AuctionID != a.AuctionID {
		t.Fatalf("round trip mismatch: got %+v", decoded)
	}
	if len(decoded.Agents) != 3 || decoded.Agents[0] != "a" {
		t.Fatalf("expected sorted agents, got %v", decoded.Agents)
	}
	if decoded.DispatchTimestamp.Sub(now).Abs() > time.Microsecond {
		t.Fatalf("expected timestamp to round-trip within a microsecond, got %v vs %v", decoded.DispatchTimestamp, now)
	}
}

func TestResponseRoundTrip(t *testing.T) {
	now := time.Unix(1700000000, 0)
	r := ResponseFrame{
		StartTimestamp: now,
		AuctionID:      "auc-1",
		AugmentorName:  "geo",
		Body:           []byte(`{"segment":{"accounts":["a1"]}}`),
	}
	frame := EncodeResponse(r)
	decoded, err := DecodeResponse(frame)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decoded.AuctionID != r.AuctionID || decoded.AugmentorName != r.AugmentorName {
		t.Fatalf("round trip mismatch: got %+v", decoded)
	}
	if string(decoded.Body) != string(r.Body) {
		t.Fatalf("body mismatch: got %s", decoded.Body)
	}
}

func TestAgentsRoundTrip(t *testing.T) {
	agents := []string{"z", "a", "m"}
	blob := EncodeAgents(agents)
	decoded, err := DecodeAgents(blob)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"a", "m", "z"}
	for i := range want {
		if decoded[i] != want[i] {
			t.Fatalf("expected sorted agents %v, got %v", want, decoded)
		}
	}
}

func TestDecodeAgents_RejectsTruncated(t *testing.T) {
	if _, err := DecodeAgents([]byte{0, 0, 0, 1}); err == nil {
		t.Fatalf("expected error for truncated agents blob")
	}
}

func TestParseAugmentationBody_EmptyAndNull(t *testing.T) {
	for _, body := range [][]byte{nil, []byte(""), []byte("null")} {
		list, err := ParseAugmentationBody(body)
		if err != nil {
			t.Fatalf("unexpected error for body %q: %v", body, err)
		}
		if len(list) != 0 {
			t.Fatalf("expected empty list for body %q, got %v", body, list)
		}
	}
}

func TestAugmentationList_MergeDedupesAccounts(t *testing.T) {
	a := AugmentationList{"seg1": {Accounts: []string{"x", "y"}}}
	b := AugmentationList{"seg1": {Accounts: []string{"y", "z"}}}

	merged := a.Merge(b)
	entry := merged["seg1"]
	if len(entry.Accounts) != 3 {
		t.Fatalf("expected deduped union of 3 accounts, got %v", entry.Accounts)
	}
}
