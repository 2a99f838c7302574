package tags

import (
	"testing"

	"github.com/hailam/scidpgn/internal/bstream"
)

func TestDecodeEmptyBlock(t *testing.T) {
	r := bstream.New([]byte{0x00})
	got, err := Decode(r)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("Decode() = %v, want empty", got)
	}
	if r.Position() != 1 {
		t.Fatalf("Position() = %d, want 1", r.Position())
	}
}

func TestDecodeCommonTagAnnotator(t *testing.T) {
	// descriptor 0xF3 = 243 -> common index 2 -> "Annotator"; value length 3, "T2R".
	r := bstream.New([]byte{0xF3, 0x03, 'T', '2', 'R', 0x00})
	got, err := Decode(r)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got["Annotator"] != "T2R" {
		t.Fatalf("Annotator = %q, want %q", got["Annotator"], "T2R")
	}
}

func TestDecodeBinaryEventDate(t *testing.T) {
	// year=1985, month=9, day=3 -> D = 1985*512 + 9*32 + 3 = 1016611
	d := uint32(1985*512 + 9*32 + 3)
	r := bstream.New([]byte{0xFF, byte(d >> 16), byte(d >> 8), byte(d), 0x00})
	got, err := Decode(r)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got["EventDate"] != "1985.09.03" {
		t.Fatalf("EventDate = %q, want %q", got["EventDate"], "1985.09.03")
	}
}

func TestDecodeCustomTag(t *testing.T) {
	name := "MyCustomTag"
	value := "hello"
	buf := []byte{byte(len(name))}
	buf = append(buf, name...)
	buf = append(buf, byte(len(value)))
	buf = append(buf, value...)
	buf = append(buf, 0x00)

	r := bstream.New(buf)
	got, err := Decode(r)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got[name] != value {
		t.Fatalf("%s = %q, want %q", name, got[name], value)
	}
}

func TestDecodeReservedCommonTagSkipped(t *testing.T) {
	// descriptor 241+10 = 251: reserved index 10, value "ignored" must be
	// skipped without producing a tag and without failing.
	r := bstream.New([]byte{251, 0x07, 'i', 'g', 'n', 'o', 'r', 'e', 'd', 0x00})
	got, err := Decode(r)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("Decode() = %v, want empty (reserved tag skipped)", got)
	}
}

func TestDecodeLastWriteWins(t *testing.T) {
	name := "X"
	buf := []byte{byte(len(name))}
	buf = append(buf, name...)
	buf = append(buf, 1, 'a')
	buf = append(buf, byte(len(name)))
	buf = append(buf, name...)
	buf = append(buf, 1, 'b')
	buf = append(buf, 0x00)

	r := bstream.New(buf)
	got, err := Decode(r)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got["X"] != "b" {
		t.Fatalf("X = %q, want %q (last write wins)", got["X"], "b")
	}
}

func TestDecodeUnderflowIsMalformed(t *testing.T) {
	r := bstream.New([]byte{0xF3, 0x05, 'a', 'b'}) // claims 5 bytes, only 2 present
	if _, err := Decode(r); err == nil {
		t.Fatal("expected an error on truncated tag value")
	}
}
