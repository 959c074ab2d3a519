package signaling

import (
	"bytes"

	"github.com/twinlife/twincall/pkg/wire"
)

func (s *Signaling) newWriter() (*wire.Writer, *bytes.Buffer) {
	var buf bytes.Buffer
	if s.compact {
		return wire.NewCompactWriter(&buf), &buf
	}
	return wire.NewWriter(&buf), &buf
}

func (s *Signaling) newReader(data []byte) *wire.Reader {
	if s.compact {
		return wire.NewCompactReader(data)
	}
	return wire.NewReader(data)
}
