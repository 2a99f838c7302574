// Package pgn renders a decoder.Game as Portable Game Notation text: the
// seven mandatory header tags, any other tags the caller allows through,
// and movetext with recursive variations, NAGs, and comments.
package pgn

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hailam/scidpgn/internal/board"
	"github.com/hailam/scidpgn/internal/decoder"
)

// mandatoryTags is the PGN Seven Tag Roster, in required order.
var mandatoryTags = []string{"Event", "Site", "Date", "Round", "White", "Black", "Result"}

// Options controls optional rendering behavior.
type Options struct {
	// TagAllowlist, if non-empty, restricts which non-mandatory tags are
	// emitted. An empty allowlist emits every tag the game carries.
	TagAllowlist []string
}

// Render converts game to PGN text.
func Render(game *decoder.Game, opts Options) (string, error) {
	fen := game.StartFEN
	if fen == "" {
		fen = board.StartFEN
	}
	pos, err := board.ParseFEN(fen)
	if err != nil {
		return "", fmt.Errorf("pgn: parsing starting position %q: %w", fen, err)
	}

	var sb strings.Builder
	writeTags(&sb, game.Tags, fen, game.StartFEN != "", opts)
	sb.WriteByte('\n')

	writeMovetext(&sb, pos, game.Mainline, true)
	sb.WriteString(resultTag(game.Tags, pos))
	sb.WriteByte('\n')

	return sb.String(), nil
}

func writeTags(sb *strings.Builder, tags map[string]string, fen string, customFEN bool, opts Options) {
	for _, name := range mandatoryTags {
		value, ok := tags[name]
		if !ok {
			value = "?"
		}
		fmt.Fprintf(sb, "[%s \"%s\"]\n", name, value)
	}

	if customFEN {
		fmt.Fprintf(sb, "[SetUp \"1\"]\n[FEN \"%s\"]\n", fen)
	}

	allowed := func(string) bool { return true }
	if len(opts.TagAllowlist) > 0 {
		set := make(map[string]bool, len(opts.TagAllowlist))
		for _, t := range opts.TagAllowlist {
			set[t] = true
		}
		allowed = func(name string) bool { return set[name] }
	}

	var rest []string
	for name := range tags {
		if isMandatory(name) || name == "FEN" || name == "SetUp" {
			continue
		}
		if !allowed(name) {
			continue
		}
		rest = append(rest, name)
	}
	sort.Strings(rest)
	for _, name := range rest {
		fmt.Fprintf(sb, "[%s \"%s\"]\n", name, tags[name])
	}
}

func isMandatory(name string) bool {
	for _, m := range mandatoryTags {
		if m == name {
			return true
		}
	}
	return false
}

// resultTag prefers an explicit Result tag; failing that, it derives the
// outcome from the final replayed position, the same checkmate/stalemate
// detection the SAN renderer already uses for trailing "#" markers.
func resultTag(tags map[string]string, final *board.Position) string {
	if r, ok := tags["Result"]; ok && r != "" {
		return r
	}
	if final.IsCheckmate() {
		if final.SideToMove == board.White {
			return "0-1"
		}
		return "1-0"
	}
	if final.IsStalemate() {
		return "1/2-1/2"
	}
	return "*"
}

// writeMovetext renders nodes in sequence, replaying each move on pos
// (owned by this call) to obtain SAN. forceNumber requests a move-number
// prefix on the first node even if it's Black to move — used at the very
// start of the game and at the start of each variation. The move
// immediately following a variation gets the same prefix through
// needNumber, per the move-number semantics the decoder surfaces but does
// not itself apply.
func writeMovetext(sb *strings.Builder, pos *board.Position, nodes []*decoder.MoveNode, forceNumber bool) {
	needNumber := forceNumber

	for _, node := range nodes {
		before := pos.Copy()
		bm := decoder.ToBoardMove(node.Move)
		san := bm.ToSAN(pos)

		switch {
		case node.SideToMove == board.White:
			fmt.Fprintf(sb, "%d. ", node.FullMoveNumber)
		case needNumber:
			fmt.Fprintf(sb, "%d... ", node.FullMoveNumber)
		}

		sb.WriteString(san)
		for _, nag := range node.NAGs {
			fmt.Fprintf(sb, " $%d", nag)
		}
		if node.Comment != "" {
			fmt.Fprintf(sb, " {%s}", node.Comment)
		}
		sb.WriteByte(' ')

		pos.MakeMove(bm)
		needNumber = false

		for _, variation := range node.Variations {
			var vb strings.Builder
			writeMovetext(&vb, before.Copy(), variation, true)
			sb.WriteString("(" + strings.TrimRight(vb.String(), " ") + ") ")
			needNumber = true
		}
	}
}
