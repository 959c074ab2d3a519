// Package sdp implements the deflate-compressed SDP body and the
// dictionary-packed ICE candidate codec of spec §4.2. It bit-packs the
// `offer` header fields by hand and uses pion/sdp/v3 for the codec
// filter; the candidate dictionary is a fixed table of literal tokens.
// SDP bodies are treated as opaque UTF-8 blobs; this package never
// opens RTP.
package sdp

import (
	"bytes"
	"compress/flate"
	"io"

	"github.com/twinlife/twincall/pkg/twinerr"
)

// CompressionThreshold is the default byte length above which an SDP
// body is deflate-compressed before being embedded in a packet (spec
// §4.2). Callers may override via internal/config.SdpParams.
const CompressionThreshold = 256

const (
	offerCompressedBit = 0x40
	offerKeyIndexMask  = 0x0FF00
	offerKeyIndexShift = 8
)

// Sdp is the value carried over the wire for an SDP body: the raw
// bytes (compressed or not) plus the flags needed to reverse
// compression and encryption.
type Sdp struct {
	Body       []byte
	Compressed bool
	// KeyIndex is 0 for plaintext, or the secret slot that AEAD-wrapped
	// Body when greater than 0.
	KeyIndex int
}

// EncodeOfferFlags packs Compressed and KeyIndex into the wire
// `offer` field layout of spec §4.2.
func EncodeOfferFlags(compressed bool, keyIndex int) uint32 {
	var v uint32
	if compressed {
		v |= offerCompressedBit
	}
	v |= (uint32(keyIndex) << offerKeyIndexShift) & offerKeyIndexMask
	return v
}

// DecodeOfferFlags reverses EncodeOfferFlags.
func DecodeOfferFlags(offer uint32) (compressed bool, keyIndex int) {
	compressed = offer&offerCompressedBit != 0
	keyIndex = int((offer & offerKeyIndexMask) >> offerKeyIndexShift)
	return
}

// Compress deflates sdpText when it is larger than threshold, and
// returns an Sdp describing whether compression was applied.
// KeyIndex is left at 0; callers that encrypt the result set it
// afterward.
func Compress(sdpText string, threshold int) (Sdp, error) {
	if len(sdpText) <= threshold {
		return Sdp{Body: []byte(sdpText)}, nil
	}
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		return Sdp{}, twinerr.Wrap(twinerr.LIBRARY_ERROR, err)
	}
	if _, err := w.Write([]byte(sdpText)); err != nil {
		return Sdp{}, twinerr.Wrap(twinerr.LIBRARY_ERROR, err)
	}
	if err := w.Close(); err != nil {
		return Sdp{}, twinerr.Wrap(twinerr.LIBRARY_ERROR, err)
	}
	return Sdp{Body: buf.Bytes(), Compressed: true}, nil
}

// Decompress reverses Compress, returning the plain SDP text.
func Decompress(s Sdp) (string, error) {
	if !s.Compressed {
		return string(s.Body), nil
	}
	r := flate.NewReader(bytes.NewReader(s.Body))
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return "", twinerr.Wrap(twinerr.BAD_FORMAT, err)
	}
	return string(out), nil
}
