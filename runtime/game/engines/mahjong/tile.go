package mahjong

import (
	"fmt"
	"sort"
)

// Tile 牌种，取值 0-33，每种四张
type Tile int

const (
	// 万子 (0-8)
	W1 Tile = iota
	W2
	W3
	W4
	W5
	W6
	W7
	W8
	W9

	// 筒子 (9-17)
	T1
	T2
	T3
	T4
	T5
	T6
	T7
	T8
	T9

	// 条子 (18-26)
	B1
	B2
	B3
	B4
	B5
	B6
	B7
	B8
	B9

	// 字牌 (27-33)
	East
	South
	West
	North
	Red
	Green
	White
)

const (
	TileKinds  = 34
	TileCopies = 4
	TileLimit  = TileKinds * TileCopies
	SeatCount  = 4

	// Wildcard 一条，可替代亮风、亮中发白中缺的字牌
	Wildcard = B1
)

type Suit int

const (
	SuitCharacters Suit = iota // 万
	SuitDots                   // 筒
	SuitBamboo                 // 条
	SuitHonor                  // 字
)

var tileCodes = [TileKinds]string{
	"W1", "W2", "W3", "W4", "W5", "W6", "W7", "W8", "W9",
	"T1", "T2", "T3", "T4", "T5", "T6", "T7", "T8", "T9",
	"B1", "B2", "B3", "B4", "B5", "B6", "B7", "B8", "B9",
	"E", "S", "Ws", "N",
	"R", "G", "Wh",
}

var codeToTile = func() map[string]Tile {
	m := make(map[string]Tile, TileKinds)
	for i, code := range tileCodes {
		m[code] = Tile(i)
	}
	return m
}()

var (
	windTiles   = [4]Tile{East, South, West, North}
	dragonTiles = [3]Tile{Red, Green, White}
	orphanTiles = [13]Tile{W1, W9, T1, T9, B1, B9, East, South, West, North, Red, Green, White}
)

// ParseTile 牌码转牌，只接受 W1..W9 T1..T9 B1..B9 E S Ws N R G Wh
func ParseTile(code string) (Tile, error) {
	t, ok := codeToTile[code]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownTile, code)
	}
	return t, nil
}

// ParseTiles 批量解析
func ParseTiles(codes []string) ([]Tile, error) {
	tiles := make([]Tile, 0, len(codes))
	for _, code := range codes {
		t, err := ParseTile(code)
		if err != nil {
			return nil, err
		}
		tiles = append(tiles, t)
	}
	return tiles, nil
}

func (t Tile) Valid() bool { return t >= W1 && t <= White }

func (t Tile) IsSuited() bool { return t >= W1 && t <= B9 }

func (t Tile) IsHonor() bool { return t >= East && t <= White }

func (t Tile) Suit() Suit {
	if t.IsHonor() {
		return SuitHonor
	}
	return Suit(int(t) / 9)
}

// Rank 数牌点数 1-9，字牌返回 0
func (t Tile) Rank() int {
	if !t.IsSuited() {
		return 0
	}
	return int(t)%9 + 1
}

func (t Tile) IsTerminalOrHonor() bool {
	return t.IsHonor() || t.Rank() == 1 || t.Rank() == 9
}

func (t Tile) String() string {
	if !t.Valid() {
		return fmt.Sprintf("Tile(%d)", int(t))
	}
	return tileCodes[t]
}

func (t Tile) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownTile, int(t))
	}
	return []byte(tileCodes[t]), nil
}

func (t *Tile) UnmarshalText(text []byte) error {
	parsed, err := ParseTile(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Hand34 按牌种计数，值拷贝即快照
type Hand34 [TileKinds]uint8

func Hand34FromTiles(tiles []Tile) Hand34 {
	var h Hand34
	for _, t := range tiles {
		h[t]++
	}
	return h
}

// NewHand34 同 Hand34FromTiles，任一牌种超过四张时报错
func NewHand34(tiles []Tile) (Hand34, error) {
	var h Hand34
	for _, t := range tiles {
		if h[t] == TileCopies {
			return Hand34{}, fmt.Errorf("%w: %s", ErrTooManyCopies, t)
		}
		h[t]++
	}
	return h, nil
}

func (h Hand34) Total() int {
	n := 0
	for _, c := range h {
		n += int(c)
	}
	return n
}

// Tiles 按牌种升序展开
func (h Hand34) Tiles() []Tile {
	out := make([]Tile, 0, h.Total())
	for i, c := range h {
		for k := uint8(0); k < c; k++ {
			out = append(out, Tile(i))
		}
	}
	return out
}

func (h Hand34) key(suffix byte) string {
	var b [TileKinds + 1]byte
	for i := 0; i < TileKinds; i++ {
		b[i] = h[i]
	}
	b[TileKinds] = suffix
	return string(b[:])
}

func sortTiles(tiles []Tile) {
	sort.Slice(tiles, func(i, j int) bool { return tiles[i] < tiles[j] })
}

func countOf(tiles []Tile, t Tile) int {
	n := 0
	for _, x := range tiles {
		if x == t {
			n++
		}
	}
	return n
}

// removeTiles 从 tiles 中移除 n 张 t，返回新切片，不修改入参
func removeTiles(tiles []Tile, t Tile, n int) []Tile {
	out := make([]Tile, 0, len(tiles))
	for _, x := range tiles {
		if x == t && n > 0 {
			n--
			continue
		}
		out = append(out, x)
	}
	return out
}
