package sdp

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/twinlife/twincall/pkg/twinerr"
)

// Candidate is one ICE candidate line scoped to an m-line (mid) and
// assigned an index within that m-line's candidate set.
type Candidate struct {
	Mid     string
	Index   int
	Line    string
	Removed bool
}

// EncodeCandidates serializes candidates to the TransportCandidateList
// wire form of spec §4.2: one "+<mid>\t<index>\t<packed>" line per
// added candidate, "-<mid>\t<index>" for a removed one.
func EncodeCandidates(candidates []Candidate) string {
	var b strings.Builder
	for _, c := range candidates {
		if c.Removed {
			fmt.Fprintf(&b, "-%s\t%d\n", c.Mid, c.Index)
			continue
		}
		fmt.Fprintf(&b, "+%s\t%d\t%s\n", c.Mid, c.Index, packCandidate(c.Line))
	}
	return b.String()
}

// DecodeCandidates reverses EncodeCandidates.
func DecodeCandidates(list string) ([]Candidate, error) {
	var out []Candidate
	for _, line := range strings.Split(list, "\n") {
		if line == "" {
			continue
		}
		sign, rest := line[0], line[1:]
		fields := strings.SplitN(rest, "\t", 3)
		switch sign {
		case '-':
			if len(fields) < 2 {
				return nil, twinerr.New(twinerr.BAD_FORMAT)
			}
			idx, err := strconv.Atoi(fields[1])
			if err != nil {
				return nil, twinerr.Wrap(twinerr.BAD_FORMAT, err)
			}
			out = append(out, Candidate{Mid: fields[0], Index: idx, Removed: true})
		case '+':
			if len(fields) < 3 {
				return nil, twinerr.New(twinerr.BAD_FORMAT)
			}
			idx, err := strconv.Atoi(fields[1])
			if err != nil {
				return nil, twinerr.Wrap(twinerr.BAD_FORMAT, err)
			}
			out = append(out, Candidate{Mid: fields[0], Index: idx, Line: unpackCandidate(fields[2])})
		default:
			return nil, twinerr.New(twinerr.BAD_FORMAT)
		}
	}
	return out, nil
}
