// Package decoder drives the recursive variation decoder: it reads the
// tag block, the flags byte, the optional starting FEN, then walks the
// move stream emitting a tree of MoveNodes, and finally resolves the
// trailing comment block against the positions recorded during that walk.
package decoder

import (
	"fmt"

	"github.com/hailam/scidpgn/internal/bstream"
	"github.com/hailam/scidpgn/internal/board"
	"github.com/hailam/scidpgn/internal/movecode"
	"github.com/hailam/scidpgn/internal/pieces"
	"github.com/hailam/scidpgn/internal/tags"
)

// Kind and Error are re-exported from internal/movecode: the dispatcher
// and the variation decoder share one error taxonomy.
type Kind = movecode.Kind
type Error = movecode.Error

const (
	InvalidMove             = movecode.KindInvalidMove
	InvalidPieceIndex       = movecode.KindInvalidPieceIndex
	InvalidQueenSecondByte  = movecode.KindInvalidQueenSecondByte
	InconsistentCaptureList = movecode.KindInconsistentCaptureList
	RecursionDepthExceeded  = movecode.KindRecursionDepthExceeded
)

// DefaultRecursionCeiling bounds variation nesting absent an explicit
// Options.RecursionCeiling.
const DefaultRecursionCeiling = 256

// Options configures one Decode call.
type Options struct {
	RecursionCeiling int
}

// Move is a single decoded ply, independent of the board.Move bit
// encoding used internally to drive Position.MakeMove: SAN and
// check/mate annotations are derived later by internal/pgn, not stored
// here.
type Move struct {
	From, To    board.Square
	Role        board.PieceType
	Captured    board.PieceType
	Promotion   board.PieceType
	IsEnPassant bool
	IsCastling  bool
}

// MoveNode is one ply in the decoded tree: the move itself, the side and
// full-move number at the time it was played (so a PGN renderer can print
// the right move-number prefix), any attached NAGs and comment, and the
// sibling variations that depart from it.
type MoveNode struct {
	Move           Move
	SideToMove     board.Color
	FullMoveNumber int
	NAGs           []uint8
	Comment        string
	Variations     [][]*MoveNode
}

// Game is the fully decoded game body.
type Game struct {
	Tags     map[string]string
	StartFEN string // empty unless the body carried a custom starting FEN
	Mainline []*MoveNode
}

// snapshot is the Position Mirror plus both piece lists, cloned at every
// variation entry point so the mainline continues from its own state.
type snapshot struct {
	pos   *board.Position
	lists [2]*pieces.List
}

func (s *snapshot) clone() *snapshot {
	return &snapshot{
		pos:   s.pos.Copy(),
		lists: [2]*pieces.List{s.lists[0].Clone(), s.lists[1].Clone()},
	}
}

// decodeCtx is shared, unmutated-by-copy state across the whole recursive
// descent: the cursor, the recursion ceiling, and the depth-first order in
// which comment markers were encountered.
type decodeCtx struct {
	r            *bstream.Reader
	ceiling      int
	commentOrder []*MoveNode
}

func newError(kind Kind, offset int, format string, args ...any) *Error {
	return &Error{Kind: kind, Offset: offset, Msg: fmt.Sprintf(format, args...)}
}

// Decode parses one game body. startFEN is the starting position supplied
// by the caller's index record; it is overridden if the body itself
// carries a custom FEN (flags bit 0). An empty startFEN with no in-body
// FEN means the standard starting position.
func Decode(body []byte, startFEN string, opts Options) (*Game, error) {
	ceiling := opts.RecursionCeiling
	if ceiling <= 0 {
		ceiling = DefaultRecursionCeiling
	}

	r := bstream.New(body)

	tagMap, err := tags.Decode(r)
	if err != nil {
		return nil, err
	}

	flagsByte, err := r.ReadU8()
	if err != nil {
		return nil, newError(InvalidMove, r.Position(), "reading flags byte: %v", err)
	}
	flags := movecode.Flags(flagsByte)

	var fen string
	var hasCustomFEN bool
	if flags.HasCustomFEN() {
		fen, err = r.ReadCString()
		if err != nil {
			return nil, newError(InvalidMove, r.Position(), "reading custom starting FEN: %v", err)
		}
		hasCustomFEN = true
	} else if startFEN != "" {
		fen = startFEN
	} else {
		fen = board.StartFEN
	}

	pos, err := board.ParseFEN(fen)
	if err != nil {
		return nil, fmt.Errorf("decoder: parsing starting position %q: %w", fen, err)
	}

	st := &snapshot{
		pos:   pos,
		lists: [2]*pieces.List{pieces.Build(pos, board.White), pieces.Build(pos, board.Black)},
	}

	ctx := &decodeCtx{r: r, ceiling: ceiling}
	mainline, err := decodeVariation(ctx, st, 0)
	if err != nil {
		return nil, err
	}

	resolveComments(ctx, r)

	game := &Game{Tags: tagMap, Mainline: mainline}
	if hasCustomFEN {
		game.StartFEN = fen
	}
	return game, nil
}

// decodeVariation consumes one level of the move stream: the mainline
// when called at depth 0, or the body of a variation on recursive re-entry.
// It returns once it consumes an EndVariation or EndGame marker.
func decodeVariation(ctx *decodeCtx, st *snapshot, depth int) ([]*MoveNode, error) {
	if depth > ctx.ceiling {
		return nil, newError(RecursionDepthExceeded, ctx.r.Position(), "variation nesting %d exceeds ceiling %d", depth, ctx.ceiling)
	}

	var nodes []*MoveNode
	var preMove *snapshot // state immediately before the most recently emitted move

	for {
		b, err := ctx.r.PeekU8()
		if err != nil {
			return nodes, newError(InvalidMove, ctx.r.Position(), "move stream ended without EndGame: %v", err)
		}

		switch {
		case b == movecode.MarkerEndGame || b == movecode.MarkerEndVariation:
			_ = ctx.r.Skip(1)
			return nodes, nil

		case b == movecode.MarkerStartVariation:
			_ = ctx.r.Skip(1)
			if len(nodes) == 0 || preMove == nil {
				return nodes, newError(InvalidMove, ctx.r.Position(), "start-variation marker with no preceding move at this level")
			}
			varNodes, err := decodeVariation(ctx, preMove.clone(), depth+1)
			if err != nil {
				return nodes, err
			}
			last := nodes[len(nodes)-1]
			last.Variations = append(last.Variations, varNodes)

		case b == movecode.MarkerNAG:
			_ = ctx.r.Skip(1)
			nag, err := ctx.r.ReadU8()
			if err != nil {
				return nodes, newError(InvalidMove, ctx.r.Position(), "reading NAG code: %v", err)
			}
			if len(nodes) == 0 {
				return nodes, newError(InvalidMove, ctx.r.Position(), "NAG marker with no preceding move")
			}
			last := nodes[len(nodes)-1]
			last.NAGs = append(last.NAGs, nag)

		case b == movecode.MarkerComment:
			_ = ctx.r.Skip(1)
			if len(nodes) == 0 {
				return nodes, newError(InvalidMove, ctx.r.Position(), "comment marker with no preceding move")
			}
			ctx.commentOrder = append(ctx.commentOrder, nodes[len(nodes)-1])

		default:
			node, next, err := decodeOneMove(ctx, st)
			if err != nil {
				return nodes, err
			}
			preMove = next
			nodes = append(nodes, node)
		}
	}
}

// decodeOneMove dispatches one move byte, applies it to the piece lists
// and then the Position Mirror (in that order, per the piece-list
// maintenance contract), and returns the emitted node plus a snapshot of
// the state as it stood immediately before this move — the state a
// following StartVariation marker must resume from.
func decodeOneMove(ctx *decodeCtx, st *snapshot) (*MoveNode, *snapshot, error) {
	mover := st.lists[st.pos.SideToMove]
	opponent := st.lists[st.pos.SideToMove.Other()]

	dec, err := movecode.Decode(ctx.r, st.pos, mover)
	if err != nil {
		return nil, nil, err
	}

	pre := st.clone()
	sideToMove := st.pos.SideToMove
	fullMoveNumber := st.pos.FullMoveNumber

	// A king null move (value 0 in the king delta table) leaves From and
	// To identical: no piece relocates, so the piece-list capture/quiet
	// bookkeeping (which assumes a real move) and MakeMove's own
	// capture detection (which would read the king's own square as a
	// capture) are both skipped in favor of passing the turn directly.
	if dec.From == dec.To {
		st.pos.MakeNullMove()
	} else {
		if dec.IsCastling {
			if err := mover.ApplyCastle(dec.From, dec.To, dec.RookFrom, dec.RookTo); err != nil {
				return nil, nil, newError(InconsistentCaptureList, ctx.r.Position(), "%v", err)
			}
		} else if dec.Captured != board.NoPieceType {
			if err := mover.ApplyCapture(dec.From, dec.To, opponent, dec.CapturedSq); err != nil {
				return nil, nil, newError(InconsistentCaptureList, ctx.r.Position(), "%v", err)
			}
		} else {
			if err := mover.ApplyQuiet(dec.From, dec.To); err != nil {
				return nil, nil, newError(InconsistentCaptureList, ctx.r.Position(), "%v", err)
			}
		}

		st.pos.MakeMove(toBoardMove(dec))
	}

	node := &MoveNode{
		Move: Move{
			From:        dec.From,
			To:          dec.To,
			Role:        dec.Role,
			Captured:    dec.Captured,
			Promotion:   dec.Promotion,
			IsEnPassant: dec.IsEnPassant,
			IsCastling:  dec.IsCastling,
		},
		SideToMove:     sideToMove,
		FullMoveNumber: fullMoveNumber,
	}
	return node, pre, nil
}

func toBoardMove(dec movecode.Decoded) board.Move {
	return ToBoardMove(Move{
		From: dec.From, To: dec.To, Role: dec.Role,
		Captured: dec.Captured, Promotion: dec.Promotion,
		IsEnPassant: dec.IsEnPassant, IsCastling: dec.IsCastling,
	})
}

// ToBoardMove converts a decoded Move to the bit-packed board.Move the
// Position Mirror's MakeMove and SAN renderer expect. internal/pgn uses
// this to replay a Game's tree and render each ply.
func ToBoardMove(m Move) board.Move {
	switch {
	case m.IsCastling:
		return board.NewCastling(m.From, m.To)
	case m.IsEnPassant:
		return board.NewEnPassant(m.From, m.To)
	case m.Promotion != board.NoPieceType:
		return board.NewPromotion(m.From, m.To, m.Promotion)
	default:
		return board.NewMove(m.From, m.To)
	}
}

// resolveComments reads the trailing block of null-terminated strings and
// attaches the i-th string to the MoveNode whose comment marker was the
// i-th encountered in depth-first order. Best-effort: an underflow here
// leaves the remaining slots without a comment rather than failing the
// whole decode.
func resolveComments(ctx *decodeCtx, r *bstream.Reader) {
	for _, node := range ctx.commentOrder {
		s, err := r.ReadCString()
		if err != nil {
			return
		}
		node.Comment = s
	}
}
