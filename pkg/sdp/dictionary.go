package sdp

import (
	"sort"
	"strings"
)

// dictionaryEntry pairs a frequent ICE candidate substring with the
// single sentinel byte that replaces it on the wire (spec §4.2). The
// codes are drawn from the control-character range, which never
// appears in legitimate SDP text, so substitution is unambiguous.
type dictionaryEntry struct {
	Token string
	Code  byte
}

var dictionaryEntries = []dictionaryEntry{
	{"candidate:", 0x01},
	{"srflx", 0x02},
	{" tcp ", 0x03},
	{"relay", 0x04},
	{" typ ", 0x05},
	{"host", 0x06},
	{"active", 0x07},
	{"so", 0x08},
	{"prflx", 0x09},
	{" rport ", 0x0A},
	{" ufrag", 0x0B},
	{" raddr ", 0x0C},
	{" udp ", 0x0D},
	{" tcptype ", 0x0E},
	{"passive", 0x0F},
	{" network-cost", 0x10},
	{" network-id", 0x11},
	{" generation", 0x12},
}

// dictionaryMap and its reverse are built once, ordered by descending
// token length so substitution never matches a shorter token nested
// inside a longer one.
var dictionaryByLength = func() []dictionaryEntry {
	entries := make([]dictionaryEntry, len(dictionaryEntries))
	copy(entries, dictionaryEntries)
	sort.Slice(entries, func(i, j int) bool {
		return len(entries[i].Token) > len(entries[j].Token)
	})
	return entries
}()

var dictionaryByCode = func() map[byte]string {
	m := make(map[byte]string, len(dictionaryEntries))
	for _, e := range dictionaryEntries {
		m[e.Code] = e.Token
	}
	return m
}()

// packCandidate replaces every dictionary token occurring in line with
// its single-byte sentinel. The transform is lossless: for every
// input c, unpackCandidate(packCandidate(c)) == c.
func packCandidate(line string) string {
	var b strings.Builder
	b.Grow(len(line))
	for i := 0; i < len(line); {
		matched := false
		for _, e := range dictionaryByLength {
			if strings.HasPrefix(line[i:], e.Token) {
				b.WriteByte(e.Code)
				i += len(e.Token)
				matched = true
				break
			}
		}
		if !matched {
			b.WriteByte(line[i])
			i++
		}
	}
	return b.String()
}

// unpackCandidate reverses packCandidate.
func unpackCandidate(packed string) string {
	var b strings.Builder
	b.Grow(len(packed))
	for i := 0; i < len(packed); i++ {
		c := packed[i]
		if tok, ok := dictionaryByCode[c]; ok {
			b.WriteString(tok)
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}
