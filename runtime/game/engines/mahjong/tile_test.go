package mahjong

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func mustTiles(t *testing.T, codes string) []Tile {
	t.Helper()
	tiles, err := ParseTiles(strings.Fields(codes))
	if err != nil {
		t.Fatalf("parse %q: %v", codes, err)
	}
	return tiles
}

func mustHand(t *testing.T, codes string) Hand34 {
	t.Helper()
	return Hand34FromTiles(mustTiles(t, codes))
}

func TestTileCodes(t *testing.T) {
	seen := make(map[string]bool)
	for tile := W1; tile <= White; tile++ {
		code := tile.String()
		if seen[code] {
			t.Fatalf("duplicate code %q", code)
		}
		seen[code] = true
		parsed, err := ParseTile(code)
		if err != nil || parsed != tile {
			t.Fatalf("ParseTile(%q) = %v, %v; want %v", code, parsed, err, int(tile))
		}
	}
	if len(seen) != TileKinds {
		t.Fatalf("got %d codes, want %d", len(seen), TileKinds)
	}

	for _, bad := range []string{"", "W0", "W10", "w1", "Z", "18", "EE"} {
		if _, err := ParseTile(bad); !errors.Is(err, ErrUnknownTile) {
			t.Fatalf("ParseTile(%q) err = %v, want ErrUnknownTile", bad, err)
		}
	}
}

func TestTileClassification(t *testing.T) {
	tests := []struct {
		tile     Tile
		suit     Suit
		rank     int
		honor    bool
		terminal bool
	}{
		{W1, SuitCharacters, 1, false, true},
		{W5, SuitCharacters, 5, false, false},
		{T9, SuitDots, 9, false, true},
		{B1, SuitBamboo, 1, false, true},
		{B6, SuitBamboo, 6, false, false},
		{East, SuitHonor, 0, true, true},
		{White, SuitHonor, 0, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.tile.String(), func(t *testing.T) {
			if got := tt.tile.Suit(); got != tt.suit {
				t.Fatalf("Suit() = %v, want %v", got, tt.suit)
			}
			if got := tt.tile.Rank(); got != tt.rank {
				t.Fatalf("Rank() = %d, want %d", got, tt.rank)
			}
			if got := tt.tile.IsHonor(); got != tt.honor {
				t.Fatalf("IsHonor() = %v, want %v", got, tt.honor)
			}
			if got := tt.tile.IsTerminalOrHonor(); got != tt.terminal {
				t.Fatalf("IsTerminalOrHonor() = %v, want %v", got, tt.terminal)
			}
		})
	}
	if Wildcard != Tile(18) {
		t.Fatalf("wildcard should be B1 (18), got %d", int(Wildcard))
	}
}

func TestTileJSONUsesCodes(t *testing.T) {
	tiles := []Tile{W1, T9, B1, West, White}
	b, err := json.Marshal(tiles)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `["W1","T9","B1","Ws","Wh"]` {
		t.Fatalf("got %s", b)
	}

	var back []Tile
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for i := range tiles {
		if back[i] != tiles[i] {
			t.Fatalf("tile %d = %v, want %v", i, back[i], tiles[i])
		}
	}

	if err := json.Unmarshal([]byte(`["W1", "X9"]`), &back); !errors.Is(err, ErrUnknownTile) {
		t.Fatalf("unmarshal bad code err = %v", err)
	}
}

func TestHand34(t *testing.T) {
	h := mustHand(t, "W3 W1 E W1 B9")
	if h.Total() != 5 || h[W1] != 2 || h[East] != 1 {
		t.Fatalf("unexpected counts %v", h)
	}
	got := h.Tiles()
	want := []Tile{W1, W1, W3, B9, East}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Tiles() = %v, want %v", got, want)
		}
	}
}

func TestNewHand34RejectsFifthCopy(t *testing.T) {
	h, err := NewHand34(mustTiles(t, "W1 W1 W1 W1 E"))
	if err != nil || h[W1] != 4 || h.Total() != 5 {
		t.Fatalf("NewHand34 = %v, %v", h, err)
	}
	tiles := make([]Tile, 0, 257)
	for i := 0; i < 257; i++ {
		tiles = append(tiles, W1)
	}
	if _, err := NewHand34(tiles); !errors.Is(err, ErrTooManyCopies) {
		t.Fatalf("err = %v, want ErrTooManyCopies", err)
	}
	if ErrorCode(ErrTooManyCopies) != "TOO_MANY_COPIES" || ErrorCode(ErrBadHandSize) != "BAD_HAND_SIZE" {
		t.Fatalf("hand validation errors need wire codes")
	}
}
