package mahjong

import (
	"github.com/NHFNHF/zhuanghe-majiang/common/cache"
)

// Analyzer 听牌分析，可选地用进程内缓存记住听牌结果
type Analyzer struct {
	cache *cache.GeneralCache
}

func NewAnalyzer(c *cache.GeneralCache) *Analyzer {
	return &Analyzer{cache: c}
}

var defaultAnalyzer = NewAnalyzer(nil)

// IsTenpai 13 张（或扣除副露后 3n+1 张）是否听牌
func IsTenpai(hand []Tile, melds []Meld) bool {
	return defaultAnalyzer.IsTenpai(Hand34FromTiles(hand), melds)
}

// Waits 听哪些牌，升序
func Waits(hand []Tile, melds []Meld) []Tile {
	return defaultAnalyzer.Waits(Hand34FromTiles(hand), melds)
}

func (a *Analyzer) IsTenpai(h Hand34, melds []Meld) bool {
	return len(a.Waits(h, melds)) > 0
}

func (a *Analyzer) Waits(h Hand34, melds []Meld) []Tile {
	if h.Total()%3 != 1 {
		return nil
	}
	key := "waits:" + h.key(meldSuitMask(melds))
	if a.cache != nil {
		if v, ok := a.cache.Get(key); ok {
			if waits, ok := v.([]Tile); ok {
				return append([]Tile(nil), waits...)
			}
		}
	}

	var waits []Tile
	for t := 0; t < TileKinds; t++ {
		if h[t] >= TileCopies {
			continue
		}
		work := h
		work[t]++
		if _, ok := Evaluate(work, melds); ok {
			waits = append(waits, Tile(t))
		}
	}

	if a.cache != nil {
		a.cache.Set(key, append([]Tile(nil), waits...))
	}
	return waits
}

// meldSuitMask 副露中出现的门，低三位万筒条，第四位字牌
func meldSuitMask(melds []Meld) byte {
	var mask byte
	for _, m := range melds {
		for _, t := range m.Tiles {
			mask |= 1 << uint(t.Suit())
		}
	}
	return mask
}
