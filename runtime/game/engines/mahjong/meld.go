package mahjong

import "fmt"

type MeldKind int

const (
	MeldConcealedKong MeldKind = iota // 暗杠
	MeldExposedKong                   // 明杠
	MeldPreDragon                     // 亮中发白
)

var meldKindNames = [...]string{"concealed_kong", "exposed_kong", "pre_dragon"}

func (k MeldKind) String() string {
	if k < 0 || int(k) >= len(meldKindNames) {
		return fmt.Sprintf("MeldKind(%d)", int(k))
	}
	return meldKindNames[k]
}

func (k MeldKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func ParseMeldKind(s string) (MeldKind, error) {
	for i, name := range meldKindNames {
		if name == s {
			return MeldKind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: meld kind %q", ErrUnknownKind, s)
}

// Meld 副露，一局内只追加
type Meld struct {
	Kind     MeldKind `json:"kind" bson:"kind"`
	Tiles    []Tile   `json:"tiles" bson:"tiles"`
	FromSeat *int     `json:"fromSeat,omitempty" bson:"fromSeat,omitempty"`
}

func (m Meld) clone() Meld {
	out := m
	out.Tiles = append([]Tile(nil), m.Tiles...)
	if m.FromSeat != nil {
		from := *m.FromSeat
		out.FromSeat = &from
	}
	return out
}

func cloneMelds(melds []Meld) []Meld {
	out := make([]Meld, 0, len(melds))
	for _, m := range melds {
		out = append(out, m.clone())
	}
	return out
}

type KongKind int

const (
	KongConcealed KongKind = iota
	KongExposed
)

func ParseKongKind(s string) (KongKind, error) {
	switch s {
	case "concealed", "an":
		return KongConcealed, nil
	case "exposed", "ming":
		return KongExposed, nil
	}
	return 0, fmt.Errorf("%w: kong kind %q", ErrUnknownKind, s)
}

func (k KongKind) String() string {
	if k == KongExposed {
		return "exposed"
	}
	return "concealed"
}

func (k KongKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k KongKind) meldKind() MeldKind {
	if k == KongExposed {
		return MeldExposedKong
	}
	return MeldConcealedKong
}

type PreRevealKind int

const (
	PreRevealWind   PreRevealKind = iota // 亮东南西北
	PreRevealDragon                      // 亮中发白
)

func ParsePreRevealKind(s string) (PreRevealKind, error) {
	switch s {
	case "wind":
		return PreRevealWind, nil
	case "dragon":
		return PreRevealDragon, nil
	}
	return 0, fmt.Errorf("%w: pre-reveal kind %q", ErrUnknownKind, s)
}

func (k PreRevealKind) String() string {
	if k == PreRevealDragon {
		return "dragon"
	}
	return "wind"
}

// PreKongSlot 开局亮牌槽位
type PreKongSlot struct {
	Active bool   `json:"active"`
	Tiles  []Tile `json:"tiles,omitempty"`
}

// KongEntry 待结算杠钱，只有和牌才结算，流局作废
type KongEntry struct {
	Seat   int      `json:"seat" bson:"seat"`
	Kind   KongKind `json:"kind" bson:"kind"`
	Fee    int      `json:"fee" bson:"fee"`
	AtTurn int      `json:"atTurn" bson:"atTurn"`
}

// takeWithWildcard 从手牌中取出 set 中每种一张，缺的用一条补；优先用真牌
func takeWithWildcard(hand []Tile, set []Tile) (taken, rest []Tile, ok bool) {
	rest = append([]Tile(nil), hand...)
	missing := 0
	for _, t := range set {
		if countOf(rest, t) > 0 {
			rest = removeTiles(rest, t, 1)
			taken = append(taken, t)
			continue
		}
		missing++
	}
	if missing > countOf(rest, Wildcard) {
		return nil, nil, false
	}
	for i := 0; i < missing; i++ {
		taken = append(taken, Wildcard)
	}
	rest = removeTiles(rest, Wildcard, missing)
	return taken, rest, true
}
