// Package index provides a minimal reader over the game-body blob: it
// locates individual game bodies by their 0xFA 0x01 start marker so the
// CLI can hand each one to internal/decoder without requiring a full
// parse of the real fixed-size .si4 index record format.
package index

// startMarker precedes every game body in the blob.
var startMarker = [2]byte{0xFA, 0x01}

// Record is one game body's extent within the blob, with the marker
// itself excluded: Offset points at the first body byte internal/decoder
// consumes (the tag block), not at the marker.
type Record struct {
	Offset int
	Length int
}

// Scan finds every game start marker in data and returns one Record per
// game, each spanning up to (but not including) the next marker or the
// end of data.
func Scan(data []byte) []Record {
	var starts []int
	for i := 0; i+1 < len(data); i++ {
		if data[i] == startMarker[0] && data[i+1] == startMarker[1] {
			starts = append(starts, i+2)
		}
	}

	records := make([]Record, len(starts))
	for i, start := range starts {
		end := len(data)
		if i+1 < len(starts) {
			// Each next marker is preceded by two marker bytes that
			// belong to the following game, not this one.
			end = starts[i+1] - 2
		}
		records[i] = Record{Offset: start, Length: end - start}
	}
	return records
}

// Body returns the game-body slice for r within data.
func (r Record) Body(data []byte) []byte {
	return data[r.Offset : r.Offset+r.Length]
}
