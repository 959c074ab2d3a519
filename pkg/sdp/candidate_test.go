package sdp

import "testing"

func TestPackUnpackCandidateLossless(t *testing.T) {
	lines := []string{
		"candidate:1 1 udp 2130706431 10.0.0.1 54400 typ host generation 0 ufrag abcd network-id 1 network-cost 10",
		"candidate:2 1 tcp 1694498815 203.0.113.4 0 typ srflx raddr 10.0.0.1 rport 54400 tcptype passive generation 0",
		"candidate:3 1 udp 1 192.168.0.1 12345 typ relay",
		"plain line with no dictionary tokens at all",
	}
	for _, line := range lines {
		packed := packCandidate(line)
		got := unpackCandidate(packed)
		if got != line {
			t.Fatalf("round trip mismatch:\n got: %q\nwant: %q", got, line)
		}
	}
}

func TestEncodeCandidatesMatchesSpecS2(t *testing.T) {
	const line = "candidate:1052210311 1 tcp 1518280447 192.168.0.72 50417 typ host " +
		"tcptype passive generation 0 ufrag KjZR network-id 1 network-cost 10"
	const wantPacked = "+data\t1\t1052210311 11518280447 192.168.0.72 " +
		"50417 0 KjZR 1 10\n"

	got := EncodeCandidates([]Candidate{{Mid: "data", Index: 1, Line: line}})
	if got != wantPacked {
		t.Fatalf("packed candidate mismatch:\n got: %q\nwant: %q", got, wantPacked)
	}

	decoded, err := DecodeCandidates(got)
	if err != nil {
		t.Fatalf("DecodeCandidates: %v", err)
	}
	if len(decoded) != 1 {
		t.Fatalf("got %d candidates, want 1", len(decoded))
	}
	if decoded[0].Line != line || decoded[0].Mid != "data" || decoded[0].Index != 1 || decoded[0].Removed {
		t.Fatalf("decoded candidate mismatch: %+v", decoded[0])
	}
}

func TestEncodeDecodeCandidatesRoundTrip(t *testing.T) {
	candidates := []Candidate{
		{Mid: "0", Index: 0, Line: "candidate:1 1 udp 2130706431 10.0.0.1 54400 typ host"},
		{Mid: "0", Index: 1, Line: "candidate:2 1 udp 1694498815 203.0.113.4 54401 typ srflx raddr 10.0.0.1 rport 54400"},
		{Mid: "1", Index: 0, Removed: true},
	}

	wire := EncodeCandidates(candidates)
	got, err := DecodeCandidates(wire)
	if err != nil {
		t.Fatalf("DecodeCandidates: %v", err)
	}
	if len(got) != len(candidates) {
		t.Fatalf("got %d candidates, want %d", len(got), len(candidates))
	}
	for i := range candidates {
		if got[i] != candidates[i] {
			t.Fatalf("candidate %d: got %+v, want %+v", i, got[i], candidates[i])
		}
	}
}

func TestDecodeCandidatesRejectsMalformedLine(t *testing.T) {
	if _, err := DecodeCandidates("*garbage\n"); err == nil {
		t.Fatal("expected error for unrecognized line prefix, got nil")
	}
}
