// Package preview samples a schedule over frame ranges, either as a batch or
// paced in real time the way a player would.
package preview

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrInvalidRange  = errors.New("invalid frame range")
	ErrUnsatisfiable = errors.New("frame range not satisfiable")
)

// Range is an inclusive span of frames.
type Range struct {
	Start int
	End   int
}

func (r Range) Len() int {
	return r.End - r.Start + 1
}

func (r Range) String() string {
	return fmt.Sprintf("%d-%d", r.Start, r.End)
}

// Full covers every frame of a schedule with total frames.
func Full(total int) Range {
	return Range{Start: 0, End: total - 1}
}

// ParseFrameRange reads "a-b", "a-" or "-n" against a schedule of total
// frames. An empty spec means the whole schedule. End is clamped to the last
// frame; "-n" selects the last n frames.
func ParseFrameRange(spec string, total int) (Range, error) {
	spec = strings.TrimSpace(spec)
	if total <= 0 {
		return Range{}, ErrUnsatisfiable
	}
	if spec == "" {
		return Full(total), nil
	}

	parts := strings.Split(spec, "-")
	if len(parts) != 2 {
		return Range{}, ErrInvalidRange
	}

	var start, end int
	if parts[0] == "" {
		n, err := strconv.Atoi(parts[1])
		if err != nil || n <= 0 {
			return Range{}, ErrInvalidRange
		}
		start = max(total-n, 0)
		end = total - 1
	} else {
		var err error
		start, err = strconv.Atoi(parts[0])
		if err != nil || start < 0 {
			return Range{}, ErrInvalidRange
		}

		if parts[1] == "" {
			end = total - 1
		} else {
			end, err = strconv.Atoi(parts[1])
			if err != nil {
				return Range{}, ErrInvalidRange
			}
		}
	}

	if start > end || start >= total {
		return Range{}, ErrUnsatisfiable
	}
	if end >= total {
		end = total - 1
	}

	return Range{Start: start, End: end}, nil
}
