package mahjong

type Shape int

const (
	ShapeNone Shape = iota
	ShapeStandard
	ShapeSevenPairs
	ShapeThirteenOrphans
)

func (s Shape) String() string {
	switch s {
	case ShapeStandard:
		return "standard"
	case ShapeSevenPairs:
		return "seven_pairs"
	case ShapeThirteenOrphans:
		return "thirteen_orphans"
	}
	return "none"
}

func (s Shape) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Decomposition 和牌拆解结果，特殊牌型只有 Shape
type Decomposition struct {
	Shape     Shape  `json:"shape"`
	Pair      Tile   `json:"pair"`
	Triplets  []Tile `json:"triplets,omitempty"`
	Sequences []Tile `json:"sequences,omitempty"` // 顺子首张
}

func (d Decomposition) HasTriplet() bool { return len(d.Triplets) > 0 }

func (d Decomposition) AllTriplets() bool {
	return d.Shape == ShapeStandard && len(d.Sequences) == 0
}

// accepted 雀头是字牌，或者至少有一个刻子
func (d Decomposition) accepted() bool {
	return d.Pair.IsHonor() || d.HasTriplet()
}

type Purity int

const (
	PurityMixed        Purity = iota
	PurityMixedOneSuit        // 混一色
	PurityPureOneSuit         // 清一色
	PurityHonorsOnly          // 字一色
)

// Evaluate 判断手牌（含和牌张）能否和牌
func Evaluate(h Hand34, melds []Meld) (Decomposition, bool) {
	for _, c := range h {
		if c > TileCopies {
			return Decomposition{}, false
		}
	}
	if !CoversThreeSuits(h, melds) {
		return Decomposition{}, false
	}
	if IsThirteenOrphans(h) {
		return Decomposition{Shape: ShapeThirteenOrphans}, true
	}
	if IsSevenPairs(h) {
		return Decomposition{Shape: ShapeSevenPairs}, true
	}
	return bestStandard(h)
}

// CoversThreeSuits 手牌加副露万筒条三门齐
func CoversThreeSuits(h Hand34, melds []Meld) bool {
	var seen [3]bool
	for i := 0; i < int(East); i++ {
		if h[i] > 0 {
			seen[Tile(i).Suit()] = true
		}
	}
	for _, m := range melds {
		for _, t := range m.Tiles {
			if t.IsSuited() {
				seen[t.Suit()] = true
			}
		}
	}
	return seen[0] && seen[1] && seen[2]
}

// IsThirteenOrphans 十三幺：十三种幺九字牌各至少一张，至少一种成对，无其他牌
// 不限总张数，预杠补牌后多于 14 张的手牌也按此判断
func IsThirteenOrphans(h Hand34) bool {
	orphans, paired := 0, false
	for _, t := range orphanTiles {
		if h[t] == 0 {
			return false
		}
		if h[t] >= 2 {
			paired = true
		}
		orphans += int(h[t])
	}
	return paired && orphans == h.Total()
}

// IsSevenPairs 七对：每种 0 或 2 张，正好七对
func IsSevenPairs(h Hand34) bool {
	pairs := 0
	for _, c := range h {
		switch c {
		case 0:
		case 2:
			pairs++
		default:
			return false
		}
	}
	return pairs == 7
}

func bestStandard(h Hand34) (Decomposition, bool) {
	if h.Total()%3 != 2 {
		return Decomposition{}, false
	}
	var best Decomposition
	found := false
	for _, d := range StandardDecompositions(h) {
		if !d.accepted() {
			continue
		}
		if d.AllTriplets() {
			return d, true
		}
		if !found {
			best, found = d, true
		}
	}
	return best, found
}

// StandardDecompositions 枚举雀头加面子的全部拆法，不做刻子/字牌雀头校验
func StandardDecompositions(h Hand34) []Decomposition {
	var out []Decomposition
	for p := 0; p < TileKinds; p++ {
		if h[p] < 2 {
			continue
		}
		rest := h
		rest[p] -= 2
		for _, st := range decomposeMelds(rest) {
			out = append(out, Decomposition{
				Shape:     ShapeStandard,
				Pair:      Tile(p),
				Triplets:  st.triplets,
				Sequences: st.sequences,
			})
		}
	}
	return out
}

type searchState struct {
	rest      Hand34
	triplets  []Tile
	sequences []Tile
}

// decomposeMelds 显式栈深搜，每个分支持有自己的计数副本
func decomposeMelds(h Hand34) []searchState {
	var out []searchState
	stack := []searchState{{rest: h}}
	for len(stack) > 0 {
		st := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		i := firstNonZero(st.rest)
		if i < 0 {
			out = append(out, st)
			continue
		}

		var next []searchState
		// 刻子
		if st.rest[i] >= 3 {
			n := st
			n.rest[i] -= 3
			n.triplets = appendTile(st.triplets, Tile(i))
			next = append(next, n)
		}
		// 顺子（仅数牌，不跨门）
		if t := Tile(i); t.IsSuited() && t.Rank() <= 7 && st.rest[i+1] > 0 && st.rest[i+2] > 0 {
			n := st
			n.rest[i]--
			n.rest[i+1]--
			n.rest[i+2]--
			n.sequences = appendTile(st.sequences, t)
			next = append(next, n)
		}
		// 刻子分支先出栈
		for k := len(next) - 1; k >= 0; k-- {
			stack = append(stack, next[k])
		}
	}
	return out
}

func firstNonZero(h Hand34) int {
	for i, c := range h {
		if c > 0 {
			return i
		}
	}
	return -1
}

func appendTile(s []Tile, t Tile) []Tile {
	out := make([]Tile, len(s), len(s)+1)
	copy(out, s)
	return append(out, t)
}

// ClassifyPurity 清一色/混一色/字一色判定，手牌加副露
func ClassifyPurity(h Hand34, melds []Meld) Purity {
	var suits [3]bool
	honors := false
	mark := func(t Tile) {
		if t.IsHonor() {
			honors = true
			return
		}
		suits[t.Suit()] = true
	}
	for i, c := range h {
		if c > 0 {
			mark(Tile(i))
		}
	}
	for _, m := range melds {
		for _, t := range m.Tiles {
			mark(t)
		}
	}
	used := 0
	for _, s := range suits {
		if s {
			used++
		}
	}
	switch {
	case used == 0 && honors:
		return PurityHonorsOnly
	case used == 1 && !honors:
		return PurityPureOneSuit
	case used == 1 && honors:
		return PurityMixedOneSuit
	}
	return PurityMixed
}

// IsEdgeWait 夹胡：和牌张同门的下两张、两侧或上两张都在手里
func IsEdgeWait(h Hand34, win Tile) bool {
	if !win.IsSuited() {
		return false
	}
	base := int(win) - (win.Rank() - 1)
	has := func(rank int) bool {
		return rank >= 1 && rank <= 9 && h[base+rank-1] > 0
	}
	r := win.Rank()
	return (has(r-2) && has(r-1)) || (has(r-1) && has(r+1)) || (has(r+1) && has(r+2))
}
