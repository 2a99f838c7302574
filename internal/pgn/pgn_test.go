package pgn

import (
	"strings"
	"testing"

	"github.com/hailam/scidpgn/internal/decoder"
)

func decodeOrFatal(t *testing.T, body []byte) *decoder.Game {
	t.Helper()
	game, err := decoder.Decode(body, "", decoder.Options{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return game
}

func TestRenderItalianOpening(t *testing.T) {
	body := []byte{
		0x00, 0x00,
		0x4F, 0xCF, 0xE7, 0x12,
		0x0F,
	}
	game := decodeOrFatal(t, body)
	game.Tags = map[string]string{"White": "Polgar, Judit", "Black": "Kasparov, Garry", "Result": "1-0"}

	out, err := Render(game, Options{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	for _, want := range []string{"[Event \"?\"]", "[White \"Polgar, Judit\"]", "1. e4 e5 2. Nf3 Nc6", "1-0"} {
		if !strings.Contains(out, want) {
			t.Fatalf("Render() = %q, missing %q", out, want)
		}
	}
}

func TestRenderVariationGetsMoveNumber(t *testing.T) {
	body := []byte{
		0x00, 0x00,
		0x4F,
		0x0D, 0x3F, 0x0E,
		0xCF,
		0x0F,
	}
	game := decodeOrFatal(t, body)

	out, err := Render(game, Options{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out, "1. e4 (1. d4) 1... e5") {
		t.Fatalf("Render() = %q, want a renumbered move after the variation", out)
	}
}

func TestRenderTagAllowlist(t *testing.T) {
	body := []byte{0x00, 0x00, 0x0F}
	game := decodeOrFatal(t, body)
	game.Tags["ECO"] = "C50"
	game.Tags["Annotator"] = "hidden"

	out, err := Render(game, Options{TagAllowlist: []string{"ECO"}})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out, "[ECO \"C50\"]") {
		t.Fatalf("Render() = %q, want ECO tag", out)
	}
	if strings.Contains(out, "Annotator") {
		t.Fatalf("Render() = %q, Annotator should be filtered out", out)
	}
}
