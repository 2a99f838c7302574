// Package tags decodes the custom-tag block that precedes every game
// body's move stream: a sequence of length-prefixed name/value records,
// some referring to a fixed common-tag dictionary by index, terminated by
// a single zero byte.
package tags

import (
	"errors"
	"fmt"

	"github.com/hailam/scidpgn/internal/bstream"
)

// ErrMalformed is returned when a descriptor or length field is
// inconsistent with the bytes remaining in the stream.
var ErrMalformed = errors.New("tags: malformed tag block")

// commonTags is the fixed, ordered dictionary: descriptor byte 241+i names
// commonTags[i]. Indices 10-13 are reserved and must still be
// skip-and-discarded rather than rejected, so unknown future tags don't
// fail decoding.
var commonTags = [...]string{
	"WhiteCountry",
	"BlackCountry",
	"Annotator",
	"PlyCount",
	"EventDate",
	"Opening",
	"Variation",
	"Setup",
	"Source",
	"SetUp",
}

const (
	descriptorEnd        = 0
	descriptorCustomMax  = 240
	descriptorCommonBase = 241
	descriptorCommonMax  = 254
	descriptorBinaryDate = 255

	reservedCommonStart = 10
	reservedCommonEnd   = 13
)

// Decode reads tag records from r until the terminating zero byte,
// returning a name-to-value map (last write wins on a repeated name). The
// cursor ends up immediately after the terminator.
func Decode(r *bstream.Reader) (map[string]string, error) {
	out := make(map[string]string)

	for {
		b, err := r.ReadU8()
		if err != nil {
			return nil, fmt.Errorf("%w: reading descriptor: %v", ErrMalformed, err)
		}

		switch {
		case b == descriptorEnd:
			return out, nil

		case b == descriptorBinaryDate:
			d, err := r.ReadU24()
			if err != nil {
				return nil, fmt.Errorf("%w: reading binary EventDate: %v", ErrMalformed, err)
			}
			out["EventDate"] = formatBinaryDate(d)

		case b >= descriptorCommonBase && b <= descriptorCommonMax:
			idx := int(b) - descriptorCommonBase
			value, err := readLengthPrefixed(r)
			if err != nil {
				return nil, fmt.Errorf("%w: reading common tag %d value: %v", ErrMalformed, idx, err)
			}
			if idx >= reservedCommonStart && idx <= reservedCommonEnd {
				continue // reserved: discard
			}
			out[commonTags[idx]] = value

		case b >= 1 && b <= descriptorCustomMax:
			nameBytes, err := r.ReadBytes(int(b))
			if err != nil {
				return nil, fmt.Errorf("%w: reading custom tag name: %v", ErrMalformed, err)
			}
			value, err := readLengthPrefixed(r)
			if err != nil {
				return nil, fmt.Errorf("%w: reading custom tag %q value: %v", ErrMalformed, string(nameBytes), err)
			}
			out[string(nameBytes)] = value

		default:
			return nil, fmt.Errorf("%w: unreachable descriptor %d", ErrMalformed, b)
		}
	}
}

// readLengthPrefixed reads a one-byte length followed by that many raw
// bytes, treated as text.
func readLengthPrefixed(r *bstream.Reader) (string, error) {
	n, err := r.ReadU8()
	if err != nil {
		return "", err
	}
	raw, err := r.ReadBytes(int(n))
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// formatBinaryDate decodes the 24-bit EventDate encoding: year = D/512,
// month = (D%512)/32, day = D%32. A zero field means "unspecified" and is
// rendered as PGN's "??" placeholder.
func formatBinaryDate(d uint32) string {
	year := d / 512
	month := (d % 512) / 32
	day := d % 32

	yearStr := "????"
	if year != 0 {
		yearStr = fmt.Sprintf("%04d", year)
	}
	monthStr := "??"
	if month != 0 {
		monthStr = fmt.Sprintf("%02d", month)
	}
	dayStr := "??"
	if day != 0 {
		dayStr = fmt.Sprintf("%02d", day)
	}

	return yearStr + "." + monthStr + "." + dayStr
}
