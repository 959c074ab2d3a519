package sdp

import (
	psdp "github.com/pion/sdp/v3"

	"github.com/twinlife/twincall/pkg/twinerr"
)

// AllowedCodecs is the interop allow-list kept constant across
// browser/mobile peers (spec §4.2). Payload type numbers are dynamic
// per offer, so filtering matches on codec name rather than number.
var AllowedCodecs = map[string]bool{
	"opus":  true,
	"VP8":   true,
	"VP9":   true,
	"H264":  true,
	"AV1":   true,
	"red":   true,
	"rtx":   true,
	"CN":    true,
	"telephone-event": true,
}

// FilterCodecs strips m-line format entries whose rtpmap codec name is
// not in AllowedCodecs, and rewrites the m-line's format list to
// match. Pure text transform over the parsed session description;
// idempotent.
func FilterCodecs(sdpText string) (string, error) {
	desc := &psdp.SessionDescription{}
	if err := desc.Unmarshal([]byte(sdpText)); err != nil {
		return "", twinerr.Wrap(twinerr.BAD_FORMAT, err)
	}

	for _, media := range desc.MediaDescriptions {
		codecByFormat := rtpmapCodecNames(media)
		kept := media.MediaName.Formats[:0]
		for _, format := range append([]string(nil), media.MediaName.Formats...) {
			name, known := codecByFormat[format]
			if known && !AllowedCodecs[name] {
				removeRelatedAttributes(media, format)
				continue
			}
			kept = append(kept, format)
		}
		media.MediaName.Formats = kept
	}

	out, err := desc.Marshal()
	if err != nil {
		return "", twinerr.Wrap(twinerr.LIBRARY_ERROR, err)
	}
	return string(out), nil
}

// rtpmapCodecNames maps each format's payload type to its codec name
// as declared by the media's rtpmap attributes.
func rtpmapCodecNames(media *psdp.MediaDescription) map[string]string {
	names := make(map[string]string)
	for _, attr := range media.Attributes {
		if attr.Key != "rtpmap" {
			continue
		}
		format, codec, ok := parseRtpmap(attr.Value)
		if ok {
			names[format] = codec
		}
	}
	return names
}

// parseRtpmap splits an rtpmap attribute value ("96 VP8/90000") into
// its payload type and codec name.
func parseRtpmap(value string) (format, codec string, ok bool) {
	for i := 0; i < len(value); i++ {
		if value[i] == ' ' {
			format = value[:i]
			rest := value[i+1:]
			for j := 0; j < len(rest); j++ {
				if rest[j] == '/' {
					return format, rest[:j], true
				}
			}
			return format, rest, true
		}
	}
	return "", "", false
}

// removeRelatedAttributes drops rtpmap/fmtp/rtcp-fb attributes tied to
// a format that was filtered out of the media's format list.
func removeRelatedAttributes(media *psdp.MediaDescription, format string) {
	kept := media.Attributes[:0]
	for _, attr := range media.Attributes {
		if (attr.Key == "rtpmap" || attr.Key == "fmtp" || attr.Key == "rtcp-fb") &&
			hasFormatPrefix(attr.Value, format) {
			continue
		}
		kept = append(kept, attr)
	}
	media.Attributes = kept
}

func hasFormatPrefix(value, format string) bool {
	if len(value) < len(format) {
		return false
	}
	if value[:len(format)] != format {
		return false
	}
	return len(value) == len(format) || value[len(format)] == ' '
}
