package index

import "testing"

func TestScanFindsEachGameBody(t *testing.T) {
	data := []byte{
		0xFA, 0x01, 0x00, 0x00, 0x0F, // game 1 body: empty game
		0xFA, 0x01, 0x00, 0x00, 0x4F, 0x0F, // game 2 body: one move
	}

	records := Scan(data)
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}

	if got := records[0].Body(data); len(got) != 3 {
		t.Fatalf("game 1 body = %x, want 3 bytes", got)
	}
	if got := records[1].Body(data); len(got) != 4 {
		t.Fatalf("game 2 body = %x, want 4 bytes", got)
	}
}

func TestScanNoMarkersIsEmpty(t *testing.T) {
	if got := Scan([]byte{0x00, 0x00, 0x0F}); len(got) != 0 {
		t.Fatalf("Scan() = %v, want empty", got)
	}
}
