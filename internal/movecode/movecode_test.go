package movecode

import (
	"testing"

	"github.com/hailam/scidpgn/internal/bstream"
	"github.com/hailam/scidpgn/internal/board"
	"github.com/hailam/scidpgn/internal/pieces"
)

func TestIsMarker(t *testing.T) {
	for b := 0; b < 256; b++ {
		got := IsMarker(byte(b))
		want := b >= 0x0B && b <= 0x0F
		if got != want {
			t.Fatalf("IsMarker(%#x) = %v, want %v", b, got, want)
		}
	}
}

func TestDecodeKnightOpening(t *testing.T) {
	pos := board.NewPosition()
	white := pieces.Build(pos, board.White)

	idx := white.IndexOf(board.G1)
	if idx < 0 {
		t.Fatal("expected a knight entry at g1")
	}
	// f3 - g1 = 21 - 6 = 15; knightDeltas[7] == 15.
	b := byte(idx<<4) | 7
	r := bstream.New([]byte{b})

	got, err := Decode(r, pos, white)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.From != board.G1 || got.To != board.F3 || got.Role != board.Knight {
		t.Fatalf("got %+v, want g1-f3 knight", got)
	}
}

func TestDecodeKingsideCastling(t *testing.T) {
	pos, err := board.ParseFEN("r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	white := pieces.Build(pos, board.White)
	idx := white.IndexOf(board.E1)
	if idx != 0 {
		t.Fatalf("king index = %d, want 0", idx)
	}

	b := byte(idx<<4) | 10 // value 10 = kingside
	r := bstream.New([]byte{b})
	got, err := Decode(r, pos, white)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !got.IsCastling || got.To != board.G1 || got.RookFrom != board.H1 || got.RookTo != board.F1 {
		t.Fatalf("got %+v, want kingside castling", got)
	}
}

func TestDecodeKingNullMove(t *testing.T) {
	pos := board.NewPosition()
	white := pieces.Build(pos, board.White)
	idx := white.IndexOf(board.E1)
	if idx != 0 {
		t.Fatalf("king index = %d, want 0", idx)
	}

	b := byte(idx<<4) | 0 // value 0 = null move
	r := bstream.New([]byte{b})
	got, err := Decode(r, pos, white)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.From != board.E1 || got.To != board.E1 || got.Role != board.King {
		t.Fatalf("got %+v, want a king null move on e1", got)
	}
	if got.Captured != board.NoPieceType {
		t.Fatalf("a null move must never report a capture, got %v", got.Captured)
	}
}

func TestDecodeQueenDiagonalSecondByte(t *testing.T) {
	pos, err := board.ParseFEN("4k3/8/8/8/8/8/8/4K2Q w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	white := pieces.Build(pos, board.White)
	idx := white.IndexOf(board.H1)
	if idx < 0 {
		t.Fatal("expected a queen entry at h1")
	}

	// Queen at h1: file(from) = 7. value == file(from) and < 8 triggers the
	// diagonal form. Destination e4 (square 28): second byte = 28+64 = 92.
	b := byte(idx<<4) | 7
	r := bstream.New([]byte{b, 92})
	got, err := Decode(r, pos, white)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.To != board.Square(28) {
		t.Fatalf("To = %s, want e4", got.To)
	}
}

func TestDecodeQueenDiagonalLowSecondByteErrors(t *testing.T) {
	pos, err := board.ParseFEN("4k3/8/8/8/8/8/8/4K2Q w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	white := pieces.Build(pos, board.White)
	idx := white.IndexOf(board.H1)

	b := byte(idx<<4) | 7
	r := bstream.New([]byte{b, 10}) // second byte < 64
	if _, err := Decode(r, pos, white); err == nil {
		t.Fatal("expected InvalidQueenSecondByte error")
	} else if me, ok := err.(*Error); !ok || me.Kind != KindInvalidQueenSecondByte {
		t.Fatalf("err = %v, want KindInvalidQueenSecondByte", err)
	}
}

func TestDecodePawnDoublePush(t *testing.T) {
	pos := board.NewPosition()
	white := pieces.Build(pos, board.White)
	idx := white.IndexOf(board.E2)
	if idx < 0 {
		t.Fatal("expected a pawn entry at e2")
	}

	b := byte(idx<<4) | 15 // two-square push
	r := bstream.New([]byte{b})
	got, err := Decode(r, pos, white)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.To != board.E4 || got.Promotion != board.NoPieceType {
		t.Fatalf("got %+v, want e2-e4 quiet", got)
	}
}

func TestDecodePawnDiagonalWithoutCaptureErrors(t *testing.T) {
	pos := board.NewPosition()
	white := pieces.Build(pos, board.White)
	idx := white.IndexOf(board.E2)

	b := byte(idx<<4) | 8 // group index 2 (value 8 -> offset 9, per group [6..8])
	r := bstream.New([]byte{b})
	if _, err := Decode(r, pos, white); err == nil {
		t.Fatal("expected an error for a diagonal move with no capture or en passant")
	}
}

func TestDecodeInvalidPieceIndex(t *testing.T) {
	// A two-piece list, so that one past the end still fits in the nibble.
	pos, err := board.ParseFEN("4k3/8/8/8/8/8/8/4K2Q w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	white := pieces.Build(pos, board.White)
	b := byte(white.Len() << 4) // one past the end
	r := bstream.New([]byte{b})
	if _, err := Decode(r, pos, white); err == nil {
		t.Fatal("expected InvalidPieceIndex error")
	}
}
