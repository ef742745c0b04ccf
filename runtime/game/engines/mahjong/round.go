package mahjong

import (
	"fmt"
	"math/rand"
)

type Stage int

const (
	StagePreReveal Stage = iota // 开局亮牌
	StagePlaying                // 行牌
	StageSettle                 // 结算，本局终态
)

var stageNames = [...]string{"PRE_REVEAL", "PLAYING", "SETTLE"}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return fmt.Sprintf("Stage(%d)", int(s))
	}
	return stageNames[s]
}

func (s Stage) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// RiichiStatus 立直状态，一局内只设置一次
type RiichiStatus struct {
	Declared       bool `json:"declared"`
	WasConcealed   bool `json:"wasConcealed"`
	Locked         bool `json:"locked"`
	CanSeeTreasure bool `json:"canSeeTreasure"`
}

// PendingDiscard 等待其他三家表态的打牌，过牌记录跟着这张牌走
type PendingDiscard struct {
	Seat   int
	Tile   Tile
	Passed [SeatCount]bool
}

func (p *PendingDiscard) passCount() int {
	n := 0
	for _, ok := range p.Passed {
		if ok {
			n++
		}
	}
	return n
}

type seatState struct {
	hand       []Tile
	melds      []Meld
	discards   []Tile
	riichi     RiichiStatus
	windKong   PreKongSlot
	dragonKong PreKongSlot
	bonusFan   int
	lastDrawn  *Tile
}

// Round 一局的全部状态，只能通过动作接口修改
type Round struct {
	rules    Rules
	analyzer *Analyzer
	rng      *rand.Rand

	wall   *Wall
	stage  Stage
	dealer int
	turn   int
	drawn  bool // 当前行动者本回合已摸牌（或庄家首轮）
	seats  [SeatCount]*seatState

	pending       *PendingDiscard
	kongs         []KongEntry
	totalDiscards int

	treasure        *Tile
	treasureDice    Dice
	riichiOccurred  bool
	firstRiichiSeat int

	result *RoundResult
}

type Option func(*Round)

func WithRand(rng *rand.Rand) Option {
	return func(r *Round) { r.rng = rng }
}

func WithRules(rules Rules) Option {
	return func(r *Round) { r.rules = rules }
}

func WithAnalyzer(a *Analyzer) Option {
	return func(r *Round) { r.analyzer = a }
}

// NewRound 建墙、洗牌、切牌、发牌，进入亮牌阶段
func NewRound(dealer int, opts ...Option) (*Round, error) {
	if dealer < 0 || dealer >= SeatCount {
		return nil, fmt.Errorf("%w: dealer %d", ErrInvalidSeat, dealer)
	}
	r := newRound(dealer, opts...)
	r.wall = NewWall(r.rng)
	hands := r.wall.deal(dealer)
	for seat := range r.seats {
		r.seats[seat].hand = hands[seat]
	}
	return r, nil
}

func newRound(dealer int, opts ...Option) *Round {
	r := &Round{
		rules:           DefaultRules(),
		analyzer:        defaultAnalyzer,
		stage:           StagePreReveal,
		dealer:          dealer,
		turn:            dealer,
		firstRiichiSeat: -1,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.rng == nil {
		r.rng = newRand()
	}
	for seat := range r.seats {
		r.seats[seat] = &seatState{}
	}
	return r
}

func (r *Round) Stage() Stage { return r.stage }

func (r *Round) Dealer() int { return r.dealer }

func (r *Round) Turn() int { return r.turn }

func (r *Round) WallRemaining() int { return r.wall.Remaining() }

// Result 结算结果，未结算为 nil
func (r *Round) Result() *RoundResult { return r.result.clone() }

func (r *Round) Hand(seat int) []Tile {
	out := append([]Tile(nil), r.seats[seat].hand...)
	sortTiles(out)
	return out
}

func (r *Round) Melds(seat int) []Meld { return cloneMelds(r.seats[seat].melds) }

func (r *Round) Discards(seat int) []Tile {
	return append([]Tile(nil), r.seats[seat].discards...)
}

// TileCensus 牌墙、手牌、副露、牌河、亮风槽位中每种牌的张数，任何时刻都应为 4
func (r *Round) TileCensus() [TileKinds]int {
	var out [TileKinds]int
	r.wall.census(&out)
	for _, s := range r.seats {
		for _, t := range s.hand {
			out[t]++
		}
		for _, m := range s.melds {
			for _, t := range m.Tiles {
				out[t]++
			}
		}
		for _, t := range s.discards {
			out[t]++
		}
		if s.windKong.Active {
			for _, t := range s.windKong.Tiles {
				out[t]++
			}
		}
	}
	return out
}

// CheckConservation 牌数守恒校验，失败说明程序有缺陷
func (r *Round) CheckConservation() error {
	census := r.TileCensus()
	for t, n := range census {
		if n != TileCopies {
			return fmt.Errorf("tile %s count %d, want %d", Tile(t), n, TileCopies)
		}
	}
	return nil
}

func (r *Round) allConcealed() bool {
	for _, s := range r.seats {
		if len(s.melds) > 0 {
			return false
		}
	}
	return true
}

// drawInto 摸一张进手并做摸宝/摸鸡判定；牌墙摸空则流局并返回 false
func (r *Round) drawInto(seat int, back bool) bool {
	var (
		t  Tile
		ok bool
	)
	if back {
		t, ok = r.wall.DrawBack()
	} else {
		t, ok = r.wall.DrawFront()
	}
	if !ok {
		r.exhaust()
		return false
	}
	s := r.seats[seat]
	s.hand = append(s.hand, t)
	drawn := t
	s.lastDrawn = &drawn
	if r.treasure != nil && t == *r.treasure {
		s.bonusFan++
	}
	if t == Wildcard {
		s.bonusFan++
	}
	return true
}

// exhaust 荒庄：杠钱作废，庄家连庄
func (r *Round) exhaust() {
	r.kongs = nil
	r.pending = nil
	r.result = drawResult(r.dealer)
	r.stage = StageSettle
}

// discardTile 打出一张牌并打开表态窗口
func (r *Round) discardTile(seat int, t Tile) {
	s := r.seats[seat]
	s.hand = removeTiles(s.hand, t, 1)
	s.lastDrawn = nil
	s.discards = append(s.discards, t)
	r.pending = &PendingDiscard{Seat: seat, Tile: t}
	r.totalDiscards++
	r.drawn = false
}

func (r *Round) settle(ctx WinContext, score Score) {
	r.result = settleWin(r.rules, ctx, score, r.kongs)
	r.pending = nil
	r.stage = StageSettle
}

func (r *Round) winContext(seat int, kind WinKind, hand Hand34, win Tile) WinContext {
	s := r.seats[seat]
	return WinContext{
		Seat:         seat,
		Dealer:       r.dealer,
		Kind:         kind,
		FromSeat:     -1,
		WinningTile:  win,
		Hand:         hand,
		Melds:        s.melds,
		Riichi:       s.riichi.Declared,
		BonusFan:     s.bonusFan,
		AllConcealed: r.allConcealed(),
	}
}
