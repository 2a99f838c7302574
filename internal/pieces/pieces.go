// Package pieces maintains the per-color piece list the move-byte dispatch
// table indexes into. This is the fragile contract of the whole codec: an
// encoder and a decoder built from the same position must produce
// byte-identical orderings, so construction and every mutation rule here
// are exposed as small, independently testable operations rather than
// folded into the decoder loop.
package pieces

import (
	"fmt"

	"github.com/hailam/scidpgn/internal/board"
)

// maxLen bounds a piece list: one king plus up to 15 other pieces of a
// color can never exceed 16 per the game rules (9 queens after all pawns
// promote is already unreachable with only one king, but 16 is the safe
// bitboard-popcount ceiling).
const maxLen = 16

// List is an ordered sequence of occupied squares for one color. Index 0
// is always the king. The decoder's move bytes name the moving piece by
// its index here, never by its square.
type List struct {
	squares [maxLen]board.Square
	len     int
	color   board.Color
}

// Build walks the board rank 7 down to rank 0, file 0 to file 7,
// collecting color's occupied squares, applying the king-to-front rule as
// it goes: the first non-king piece seen goes straight on the list; when
// the king is encountered, whatever currently sits at index 0 is moved to
// the tail and the king takes index 0.
func Build(pos *board.Position, color board.Color) *List {
	l := &List{color: color}

	for rank := 7; rank >= 0; rank-- {
		for file := 0; file < 8; file++ {
			sq := board.NewSquare(file, rank)
			piece := pos.PieceAt(sq)
			if piece == board.NoPiece || piece.Color() != color {
				continue
			}

			if piece.Type() == board.King {
				if l.len == 0 {
					l.append(sq)
				} else {
					displaced := l.squares[0]
					l.squares[0] = sq
					l.append(displaced)
				}
				continue
			}

			l.append(sq)
		}
	}

	return l
}

func (l *List) append(sq board.Square) {
	l.squares[l.len] = sq
	l.len++
}

// Len returns the number of squares currently tracked.
func (l *List) Len() int {
	return l.len
}

// At returns the square at index i. It panics on out-of-range i; callers
// that take an index from the move stream must bounds-check against Len
// first and surface a decoder error instead.
func (l *List) At(i int) board.Square {
	return l.squares[i]
}

// Color reports which side this list tracks.
func (l *List) Color() board.Color {
	return l.color
}

// IndexOf returns the index of sq in the list, or -1 if absent.
func (l *List) IndexOf(sq board.Square) int {
	for i := 0; i < l.len; i++ {
		if l.squares[i] == sq {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy, cheap enough to take at every variation
// entry and mainline snapshot point.
func (l *List) Clone() *List {
	c := *l
	return &c
}

// ApplyQuiet moves the piece at from to to, in place, without touching
// any other entry's index. Used for non-capturing moves, including
// promotions (the list stores squares only; role changes live in the
// Position Mirror).
func (l *List) ApplyQuiet(from, to board.Square) error {
	idx := l.IndexOf(from)
	if idx < 0 {
		return fmt.Errorf("pieces: %s list has no entry for %s", l.color, from)
	}
	l.squares[idx] = to
	return nil
}

// ApplyCapture moves the piece at from to to in this list, then removes
// capturedSq from the opponent list via swap-and-pop: the captured
// entry is overwritten with the list's last entry and the list shrinks by
// one, so every other index is preserved.
func (l *List) ApplyCapture(from, to board.Square, opponent *List, capturedSq board.Square) error {
	if err := l.ApplyQuiet(from, to); err != nil {
		return err
	}

	capIdx := opponent.IndexOf(capturedSq)
	if capIdx < 0 {
		return fmt.Errorf("pieces: %s list has no entry for captured square %s", opponent.color, capturedSq)
	}
	last := opponent.len - 1
	opponent.squares[capIdx] = opponent.squares[last]
	opponent.len--
	return nil
}

// ApplyCastle updates the king's slot and the castling rook's slot. No
// capture is involved.
func (l *List) ApplyCastle(kingFrom, kingTo, rookFrom, rookTo board.Square) error {
	kIdx := l.IndexOf(kingFrom)
	if kIdx != 0 {
		return fmt.Errorf("pieces: castling king not at index 0 (found at %d)", kIdx)
	}
	l.squares[0] = kingTo

	rIdx := l.IndexOf(rookFrom)
	if rIdx < 0 {
		return fmt.Errorf("pieces: %s list has no rook at %s for castling", l.color, rookFrom)
	}
	l.squares[rIdx] = rookTo
	return nil
}

// Validate checks the piece-list invariant against pos: every tracked
// square must hold a piece of this list's color, and index 0 must be the
// king.
func (l *List) Validate(pos *board.Position) error {
	if l.len == 0 {
		return fmt.Errorf("pieces: %s list is empty", l.color)
	}
	king := pos.PieceAt(l.squares[0])
	if king == board.NoPiece || king.Type() != board.King || king.Color() != l.color {
		return fmt.Errorf("pieces: %s list index 0 (%s) is not that color's king", l.color, l.squares[0])
	}
	for i := 0; i < l.len; i++ {
		sq := l.squares[i]
		piece := pos.PieceAt(sq)
		if piece == board.NoPiece || piece.Color() != l.color {
			return fmt.Errorf("pieces: %s list index %d (%s) is not occupied by that color", l.color, i, sq)
		}
	}
	return nil
}
