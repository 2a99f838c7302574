package cache

import (
	"path/filepath"
	"testing"

	"github.com/hailam/scidpgn/internal/decoder"
)

func TestStoreAndGetRoundTrip(t *testing.T) {
	c, err := Open(filepath.Join(t.TempDir(), "badger"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	body := []byte{0x00, 0x00, 0x4F, 0x0F}
	game, err := decoder.Decode(body, "", decoder.Options{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	key := Key(body, "")
	if err := c.Store(key, game); err != nil {
		t.Fatalf("Store: %v", err)
	}

	got, ok, err := c.Get(key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatal("Get() miss, want hit")
	}
	if len(got.Mainline) != len(game.Mainline) {
		t.Fatalf("round-tripped Mainline len = %d, want %d", len(got.Mainline), len(game.Mainline))
	}
}

func TestGetMiss(t *testing.T) {
	c, err := Open(filepath.Join(t.TempDir(), "badger"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	_, ok, err := c.Get(Key([]byte("nope"), ""))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Fatal("Get() hit on empty cache, want miss")
	}
}

func TestKeyDependsOnStartFEN(t *testing.T) {
	body := []byte{0x00, 0x00, 0x0F}
	a := Key(body, "")
	b := Key(body, "4k3/8/8/8/8/8/8/4K3 w - - 0 1")
	if string(a) == string(b) {
		t.Fatal("Key should differ when the starting FEN differs")
	}
}
