package mahjong

import (
	"math/rand"
	"time"
)

// Dice 两颗骰子
type Dice [2]int

func (d Dice) Sum() int { return d[0] + d[1] }

func rollDice(rng *rand.Rand) Dice {
	return Dice{rng.Intn(6) + 1, rng.Intn(6) + 1}
}

func newRand() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// Wall 牌墙，前端正常摸牌，后端只给双摸
type Wall struct {
	tiles []Tile
	cut   Dice
}

// NewWall 洗牌、掷骰、按骰子切牌
func NewWall(rng *rand.Rand) *Wall {
	tiles := make([]Tile, 0, TileLimit)
	for t := W1; t <= White; t++ {
		for k := 0; k < TileCopies; k++ {
			tiles = append(tiles, t)
		}
	}
	rng.Shuffle(len(tiles), func(i, j int) {
		tiles[i], tiles[j] = tiles[j], tiles[i]
	})

	dice := rollDice(rng)
	start := ((dice.Sum() + 1) * 4) % len(tiles)
	rotated := make([]Tile, 0, len(tiles))
	rotated = append(rotated, tiles[start:]...)
	rotated = append(rotated, tiles[:start]...)
	return &Wall{tiles: rotated, cut: dice}
}

// newWallFromTiles 按给定顺序建墙，不洗牌
func newWallFromTiles(tiles []Tile) *Wall {
	return &Wall{tiles: append([]Tile(nil), tiles...)}
}

func (w *Wall) Remaining() int { return len(w.tiles) }

func (w *Wall) Cut() Dice { return w.cut }

func (w *Wall) DrawFront() (Tile, bool) {
	if len(w.tiles) == 0 {
		return 0, false
	}
	t := w.tiles[0]
	w.tiles = w.tiles[1:]
	return t, true
}

func (w *Wall) DrawBack() (Tile, bool) {
	if len(w.tiles) == 0 {
		return 0, false
	}
	t := w.tiles[len(w.tiles)-1]
	w.tiles = w.tiles[:len(w.tiles)-1]
	return t, true
}

// TreasureAt 从牌墙尾端往回数 offset 张处的牌，只看不取
func (w *Wall) TreasureAt(offset int) (Tile, bool) {
	if len(w.tiles) == 0 {
		return 0, false
	}
	idx := len(w.tiles) - offset
	if idx < 0 {
		idx = 0
	}
	if idx >= len(w.tiles) {
		idx = len(w.tiles) - 1
	}
	return w.tiles[idx], true
}

// deal 三轮每家四张，再每家一张，庄家多一张；从庄家开始轮
func (w *Wall) deal(dealer int) [SeatCount][]Tile {
	var hands [SeatCount][]Tile
	take := func(seat, n int) {
		for i := 0; i < n; i++ {
			if t, ok := w.DrawFront(); ok {
				hands[seat] = append(hands[seat], t)
			}
		}
	}
	for pass := 0; pass < 3; pass++ {
		for k := 0; k < SeatCount; k++ {
			take((dealer+k)%SeatCount, 4)
		}
	}
	for k := 0; k < SeatCount; k++ {
		take((dealer+k)%SeatCount, 1)
	}
	take(dealer, 1)
	return hands
}

func (w *Wall) census(out *[TileKinds]int) {
	for _, t := range w.tiles {
		out[t]++
	}
}
