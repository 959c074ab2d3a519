package sdp

import (
	"strings"
	"testing"
)

func TestCompressDecompressRoundTripShort(t *testing.T) {
	text := "v=0\r\no=- 1 1 IN IP4 0.0.0.0\r\n"
	s, err := Compress(text, CompressionThreshold)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	if s.Compressed {
		t.Fatal("expected short SDP to stay uncompressed")
	}
	got, err := Decompress(s)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if got != text {
		t.Fatalf("got %q, want %q", got, text)
	}
}

func TestCompressDecompressRoundTripLong(t *testing.T) {
	text := "v=0\r\n" + strings.Repeat("a=candidate:1 1 udp 2130706431 10.0.0.1 54400 typ host\r\n", 20)
	s, err := Compress(text, CompressionThreshold)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	if !s.Compressed {
		t.Fatal("expected long SDP to be compressed")
	}
	if len(s.Body) >= len(text) {
		t.Fatalf("compressed body (%d) not smaller than input (%d)", len(s.Body), len(text))
	}
	got, err := Decompress(s)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if got != text {
		t.Fatal("decompressed text does not match original")
	}
}

func TestOfferFlagsRoundTrip(t *testing.T) {
	cases := []struct {
		compressed bool
		keyIndex   int
	}{
		{false, 0},
		{true, 0},
		{false, 3},
		{true, 7},
	}
	for _, c := range cases {
		offer := EncodeOfferFlags(c.compressed, c.keyIndex)
		gotCompressed, gotKeyIndex := DecodeOfferFlags(offer)
		if gotCompressed != c.compressed || gotKeyIndex != c.keyIndex {
			t.Fatalf("offer %#x: got (%v, %d), want (%v, %d)", offer, gotCompressed, gotKeyIndex, c.compressed, c.keyIndex)
		}
	}
}

func TestFilterCodecsDropsDisallowed(t *testing.T) {
	input := "v=0\r\n" +
		"o=- 1 1 IN IP4 0.0.0.0\r\n" +
		"s=-\r\n" +
		"t=0 0\r\n" +
		"m=audio 9 UDP/TLS/RTP/SAVPF 111 0\r\n" +
		"a=rtpmap:111 opus/48000/2\r\n" +
		"a=rtpmap:0 PCMU/8000\r\n"

	out, err := FilterCodecs(input)
	if err != nil {
		t.Fatalf("FilterCodecs: %v", err)
	}
	if strings.Contains(out, "PCMU") {
		t.Fatalf("expected PCMU to be filtered out, got:\n%s", out)
	}
	if !strings.Contains(out, "opus") {
		t.Fatalf("expected opus to survive filtering, got:\n%s", out)
	}
}

func TestFilterCodecsIdempotent(t *testing.T) {
	input := "v=0\r\n" +
		"o=- 1 1 IN IP4 0.0.0.0\r\n" +
		"s=-\r\n" +
		"t=0 0\r\n" +
		"m=audio 9 UDP/TLS/RTP/SAVPF 111 0\r\n" +
		"a=rtpmap:111 opus/48000/2\r\n" +
		"a=rtpmap:0 PCMU/8000\r\n"

	once, err := FilterCodecs(input)
	if err != nil {
		t.Fatalf("FilterCodecs: %v", err)
	}
	twice, err := FilterCodecs(once)
	if err != nil {
		t.Fatalf("FilterCodecs (second pass): %v", err)
	}
	if once != twice {
		t.Fatalf("FilterCodecs not idempotent:\nfirst:\n%s\nsecond:\n%s", once, twice)
	}
}
