// Package movecode implements the per-role move-byte dispatch tables: the
// heart of the binary codec, which names a moving piece by its index in
// the side-to-move's piece list and encodes its destination (and
// occasionally a captured/promoted role) in a single nibble, or rarely a
// second byte for the queen's diagonal form.
package movecode

import (
	"fmt"

	"github.com/hailam/scidpgn/internal/bstream"
	"github.com/hailam/scidpgn/internal/board"
	"github.com/hailam/scidpgn/internal/pieces"
)

// Marker byte values. A byte in this range always denotes a marker, never
// a move: real moves always carry a non-zero high nibble except for piece
// index 0 (the king), whose low-nibble value set is 0..=10 — strictly
// below the marker range.
const (
	MarkerNAG            byte = 0x0B
	MarkerComment        byte = 0x0C
	MarkerStartVariation byte = 0x0D
	MarkerEndVariation   byte = 0x0E
	MarkerEndGame        byte = 0x0F
)

// IsMarker reports whether b is one of the reserved in-stream markers
// rather than a move byte. Dispatch must check the full byte, not just
// the high nibble.
func IsMarker(b byte) bool {
	return b >= MarkerNAG && b <= MarkerEndGame
}

// Kind classifies a dispatcher error, satisfying the Kind/Offset contract
// decoder.Error re-exports.
type Kind int

const (
	KindInvalidMove Kind = iota
	KindInvalidPieceIndex
	KindInvalidQueenSecondByte
	KindInconsistentCaptureList
	KindRecursionDepthExceeded
)

func (k Kind) String() string {
	switch k {
	case KindInvalidMove:
		return "InvalidMove"
	case KindInvalidPieceIndex:
		return "InvalidPieceIndex"
	case KindInvalidQueenSecondByte:
		return "InvalidQueenSecondByte"
	case KindInconsistentCaptureList:
		return "InconsistentCaptureList"
	case KindRecursionDepthExceeded:
		return "RecursionDepthExceeded"
	default:
		return "Unknown"
	}
}

// Error is the typed failure every dispatcher and decoder error wraps,
// carrying the reader offset at which the problem was detected.
type Error struct {
	Kind   Kind
	Offset int
	Msg    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("movecode: %s at offset %d: %s", e.Kind, e.Offset, e.Msg)
}

func newError(kind Kind, offset int, format string, args ...any) *Error {
	return &Error{Kind: kind, Offset: offset, Msg: fmt.Sprintf(format, args...)}
}

// Decoded is one dispatched move, still in the codec's own vocabulary
// (squares, roles, flags) rather than board.Move — the caller applies it
// to the piece lists and the Position Mirror.
type Decoded struct {
	From, To    board.Square
	Role        board.PieceType
	Captured    board.PieceType // board.NoPieceType if not a capture
	CapturedSq  board.Square    // differs from To only for en passant
	Promotion   board.PieceType // board.NoPieceType if not a promotion
	IsEnPassant bool
	IsCastling  bool
	RookFrom    board.Square // valid only if IsCastling
	RookTo      board.Square
}

var kingDeltas = [11]int{0, -9, -8, -7, -1, 1, 7, 8, 9, -2, 2}
var knightDeltas = [9]int{0, -17, -15, -10, -6, 6, 10, 15, 17}

// pawnOffsets and pawnPromotions are indexed by the pawn's low-nibble
// value. Index 15 is the two-square push; every other index falls into
// one of five groups of three (7/8/9) whose group number selects the
// promotion role.
var pawnOffsets = [16]int{7, 8, 9, 7, 8, 9, 7, 8, 9, 7, 8, 9, 7, 8, 9, 16}
var pawnPromotions = [16]board.PieceType{
	board.NoPieceType, board.NoPieceType, board.NoPieceType,
	board.Queen, board.Queen, board.Queen,
	board.Rook, board.Rook, board.Rook,
	board.Bishop, board.Bishop, board.Bishop,
	board.Knight, board.Knight, board.Knight,
	board.NoPieceType,
}

// Decode reads one move byte (and, for the queen's diagonal form, a
// second byte) and dispatches it per the mover's role. list is the
// side-to-move's piece list; pos is consulted to resolve captures and
// en-passant, and must not yet reflect this move.
func Decode(r *bstream.Reader, pos *board.Position, list *pieces.List) (Decoded, error) {
	offset := r.Position()
	b, err := r.ReadU8()
	if err != nil {
		return Decoded{}, newError(KindInvalidMove, offset, "reading move byte: %v", err)
	}

	pieceIndex := int(b >> 4)
	value := int(b & 0x0F)

	if pieceIndex >= list.Len() {
		return Decoded{}, newError(KindInvalidPieceIndex, offset, "piece index %d exceeds list length %d", pieceIndex, list.Len())
	}
	from := list.At(pieceIndex)
	piece := pos.PieceAt(from)
	if piece == board.NoPiece {
		return Decoded{}, newError(KindInvalidPieceIndex, offset, "piece index %d names empty square %s", pieceIndex, from)
	}

	switch piece.Type() {
	case board.King:
		return decodeKing(pos, from, value, offset)
	case board.Knight:
		return decodeKnight(pos, from, value, offset)
	case board.Rook:
		return decodeRook(pos, from, value, offset)
	case board.Bishop:
		return decodeBishop(pos, from, value, offset)
	case board.Queen:
		return decodeQueen(r, pos, from, value, offset)
	case board.Pawn:
		return decodePawn(pos, from, value, offset)
	default:
		return Decoded{}, newError(KindInvalidMove, offset, "unknown piece role at %s", from)
	}
}

func destination(from board.Square, delta int, offset int) (board.Square, error) {
	to := int(from) + delta
	if to < 0 || to > 63 {
		return 0, newError(KindInvalidMove, offset, "destination off-board (from %s, delta %d)", from, delta)
	}
	return board.Square(to), nil
}

func decodeKing(pos *board.Position, from board.Square, value, offset int) (Decoded, error) {
	if value > 10 {
		return Decoded{}, newError(KindInvalidMove, offset, "king value %d out of range", value)
	}
	if value == 0 {
		return Decoded{From: from, To: from, Role: board.King, Captured: board.NoPieceType, Promotion: board.NoPieceType}, nil
	}

	to, err := destination(from, kingDeltas[value], offset)
	if err != nil {
		return Decoded{}, err
	}

	if from.File() == 4 && to.File() == 6 {
		return Decoded{
			From: from, To: to, Role: board.King,
			Captured: board.NoPieceType, Promotion: board.NoPieceType,
			IsCastling: true,
			RookFrom:   board.NewSquare(7, from.Rank()),
			RookTo:     board.NewSquare(5, from.Rank()),
		}, nil
	}
	if from.File() == 4 && to.File() == 2 {
		return Decoded{
			From: from, To: to, Role: board.King,
			Captured: board.NoPieceType, Promotion: board.NoPieceType,
			IsCastling: true,
			RookFrom:   board.NewSquare(0, from.Rank()),
			RookTo:     board.NewSquare(3, from.Rank()),
		}, nil
	}

	d := Decoded{From: from, To: to, Role: board.King, Captured: board.NoPieceType, Promotion: board.NoPieceType}
	if captured := pos.PieceAt(to); captured != board.NoPiece {
		d.Captured = captured.Type()
		d.CapturedSq = to
	}
	return d, nil
}

func decodeKnight(pos *board.Position, from board.Square, value, offset int) (Decoded, error) {
	if value > 8 {
		return Decoded{}, newError(KindInvalidMove, offset, "knight value %d out of range", value)
	}
	to, err := destination(from, knightDeltas[value], offset)
	if err != nil {
		return Decoded{}, err
	}
	d := Decoded{From: from, To: to, Role: board.Knight, Captured: board.NoPieceType, Promotion: board.NoPieceType}
	if captured := pos.PieceAt(to); captured != board.NoPiece {
		d.Captured = captured.Type()
		d.CapturedSq = to
	}
	return d, nil
}

func decodeRook(pos *board.Position, from board.Square, value, offset int) (Decoded, error) {
	var to board.Square
	if value < 8 {
		to = board.NewSquare(value, from.Rank())
	} else {
		to = board.NewSquare(from.File(), value-8)
	}
	d := Decoded{From: from, To: to, Role: board.Rook, Captured: board.NoPieceType, Promotion: board.NoPieceType}
	if captured := pos.PieceAt(to); captured != board.NoPiece {
		d.Captured = captured.Type()
		d.CapturedSq = to
	}
	return d, nil
}

func decodeBishop(pos *board.Position, from board.Square, value, offset int) (Decoded, error) {
	f := value & 7
	diff := f - from.File()

	var to board.Square
	if value >= 8 {
		sq, err := destination(from, -7*diff, offset)
		if err != nil {
			return Decoded{}, err
		}
		to = sq
	} else {
		sq, err := destination(from, 9*diff, offset)
		if err != nil {
			return Decoded{}, err
		}
		to = sq
	}

	d := Decoded{From: from, To: to, Role: board.Bishop, Captured: board.NoPieceType, Promotion: board.NoPieceType}
	if captured := pos.PieceAt(to); captured != board.NoPiece {
		d.Captured = captured.Type()
		d.CapturedSq = to
	}
	return d, nil
}

func decodeQueen(r *bstream.Reader, pos *board.Position, from board.Square, value, offset int) (Decoded, error) {
	if value >= 8 || value != from.File() {
		// Same shape as the rook dispatch.
		var to board.Square
		if value < 8 {
			to = board.NewSquare(value, from.Rank())
		} else {
			to = board.NewSquare(from.File(), value-8)
		}
		d := Decoded{From: from, To: to, Role: board.Queen, Captured: board.NoPieceType, Promotion: board.NoPieceType}
		if captured := pos.PieceAt(to); captured != board.NoPiece {
			d.Captured = captured.Type()
			d.CapturedSq = to
		}
		return d, nil
	}

	// Diagonal form: a second byte carries the destination, offset by 64.
	secondOffset := r.Position()
	second, err := r.ReadU8()
	if err != nil {
		return Decoded{}, newError(KindInvalidQueenSecondByte, offset, "missing second byte: %v", err)
	}
	if second < 64 {
		return Decoded{}, newError(KindInvalidQueenSecondByte, secondOffset, "second byte %d < 64", second)
	}
	to := board.Square(second - 64)

	d := Decoded{From: from, To: to, Role: board.Queen, Captured: board.NoPieceType, Promotion: board.NoPieceType}
	if captured := pos.PieceAt(to); captured != board.NoPiece {
		d.Captured = captured.Type()
		d.CapturedSq = to
	}
	return d, nil
}

func decodePawn(pos *board.Position, from board.Square, value, offset int) (Decoded, error) {
	rawOffset := pawnOffsets[value]
	promo := pawnPromotions[value]

	color := pos.SideToMove
	signed := rawOffset
	if color == board.Black {
		signed = -rawOffset
	}

	to, err := destination(from, signed, offset)
	if err != nil {
		return Decoded{}, err
	}

	d := Decoded{From: from, To: to, Role: board.Pawn, Captured: board.NoPieceType, Promotion: promo}

	switch rawOffset {
	case 8, 16:
		// Quiet push, one or two squares.
	case 7, 9:
		if captured := pos.PieceAt(to); captured != board.NoPiece {
			d.Captured = captured.Type()
			d.CapturedSq = to
		} else if pos.EnPassant != board.NoSquare && to == pos.EnPassant {
			d.IsEnPassant = true
			d.Captured = board.Pawn
			if color == board.White {
				d.CapturedSq = to - 8
			} else {
				d.CapturedSq = to + 8
			}
		} else {
			return Decoded{}, newError(KindInvalidMove, offset, "diagonal pawn move to %s is neither a capture nor en passant", to)
		}
	}

	return d, nil
}

// Flags is the one-byte field following the tag block: bit 0 signals a
// custom starting FEN, bits 1-2 are advisory promotion hints the decoder
// must not rely on for correctness, bits 3-7 are reserved.
type Flags byte

// HasCustomFEN reports whether a null-terminated starting FEN follows the
// flags byte.
func (f Flags) HasCustomFEN() bool {
	return f&1 != 0
}

// PromotionHints returns the two advisory hint bits.
func (f Flags) PromotionHints() uint8 {
	return uint8(f>>1) & 0x3
}
