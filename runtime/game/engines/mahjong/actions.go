package mahjong

import (
	"github.com/NHFNHF/zhuanghe-majiang/common/log"
)

type Action string

const (
	ActionPreReveal     Action = "pre_reveal"
	ActionPreRevealDone Action = "pre_reveal_done"
	ActionDraw          Action = "draw"
	ActionDiscard       Action = "discard"
	ActionPass          Action = "pass"
	ActionKong          Action = "kong"
	ActionRiichi        Action = "riichi"
	ActionDeclareWin    Action = "declare_win"
)

// Command 线上动作，牌只用牌码
type Command struct {
	Action Action `json:"action"`
	Tile   string `json:"tile,omitempty"`
	Kind   string `json:"kind,omitempty"`
}

// Apply 解析牌码与类型后分派到具体动作
func (r *Round) Apply(seat int, cmd Command) error {
	switch cmd.Action {
	case ActionPreReveal:
		kind, err := ParsePreRevealKind(cmd.Kind)
		if err != nil {
			return reject(cmd.Action, seat, err)
		}
		return r.PreReveal(seat, kind)
	case ActionPreRevealDone:
		return r.PreRevealDone(seat)
	case ActionDraw:
		return r.Draw(seat)
	case ActionDiscard:
		t, err := ParseTile(cmd.Tile)
		if err != nil {
			return reject(cmd.Action, seat, err)
		}
		return r.Discard(seat, t)
	case ActionPass:
		return r.Pass(seat)
	case ActionKong:
		kind, err := ParseKongKind(cmd.Kind)
		if err != nil {
			return reject(cmd.Action, seat, err)
		}
		t, err := ParseTile(cmd.Tile)
		if err != nil {
			return reject(cmd.Action, seat, err)
		}
		return r.Kong(seat, kind, t)
	case ActionRiichi:
		t, err := ParseTile(cmd.Tile)
		if err != nil {
			return reject(cmd.Action, seat, err)
		}
		return r.Riichi(seat, t)
	case ActionDeclareWin:
		return r.DeclareWin(seat)
	}
	return reject(cmd.Action, seat, ErrUnknownAction)
}

func validSeat(seat int) bool { return seat >= 0 && seat < SeatCount }

// checkTurn 行牌阶段、轮到该座位、没有待表态的打牌
func (r *Round) checkTurn(action Action, seat int) error {
	if !validSeat(seat) {
		return reject(action, seat, ErrInvalidSeat)
	}
	if r.stage != StagePlaying {
		return reject(action, seat, ErrWrongStage)
	}
	if r.pending != nil {
		return reject(action, seat, ErrPendingDiscard)
	}
	if r.turn != seat {
		return reject(action, seat, ErrNotYourTurn)
	}
	return nil
}

// PreReveal 亮东南西北或中发白，缺的用一条补
func (r *Round) PreReveal(seat int, kind PreRevealKind) error {
	if !validSeat(seat) {
		return reject(ActionPreReveal, seat, ErrInvalidSeat)
	}
	if r.stage != StagePreReveal {
		return reject(ActionPreReveal, seat, ErrWrongStage)
	}
	s := r.seats[seat]
	slot, set := &s.windKong, windTiles[:]
	if kind == PreRevealDragon {
		slot, set = &s.dragonKong, dragonTiles[:]
	}
	if slot.Active {
		return reject(ActionPreReveal, seat, ErrPreKongActive)
	}
	taken, rest, ok := takeWithWildcard(s.hand, set)
	if !ok {
		return reject(ActionPreReveal, seat, ErrPreKongTiles)
	}

	s.hand = rest
	slot.Active = true
	slot.Tiles = taken
	if kind == PreRevealDragon {
		s.melds = append(s.melds, Meld{Kind: MeldPreDragon, Tiles: append([]Tile(nil), taken...)})
	}
	log.Debug("座位 %d 亮%s: %v", seat, kind, taken)
	return nil
}

// PreRevealDone 任意一家确认即开局，庄家手握 14 张先行动
func (r *Round) PreRevealDone(seat int) error {
	if !validSeat(seat) {
		return reject(ActionPreRevealDone, seat, ErrInvalidSeat)
	}
	if r.stage != StagePreReveal {
		return reject(ActionPreRevealDone, seat, ErrWrongStage)
	}
	r.stage = StagePlaying
	r.turn = r.dealer
	r.drawn = true
	return nil
}

func (r *Round) Draw(seat int) error {
	if err := r.checkTurn(ActionDraw, seat); err != nil {
		return err
	}
	dealerFirst := seat == r.dealer && r.totalDiscards == 0
	if r.drawn && !dealerFirst {
		return reject(ActionDraw, seat, ErrAlreadyDrawn)
	}

	s := r.seats[seat]
	// 有人立直后亮风作废，轮到自己摸牌时退回手牌
	if s.windKong.Active && r.riichiOccurred {
		s.hand = append(s.hand, s.windKong.Tiles...)
		s.windKong = PreKongSlot{}
		log.Debug("座位 %d 亮风作废，退回手牌", seat)
	}
	if dealerFirst {
		r.drawn = true
		return nil
	}

	if s.windKong.Active && !r.riichiOccurred {
		// 双摸：前后各一张
		if !r.drawInto(seat, false) || !r.drawInto(seat, true) {
			return nil
		}
	} else if !r.drawInto(seat, false) {
		return nil
	}
	r.drawn = true
	return nil
}

func (r *Round) Discard(seat int, t Tile) error {
	if err := r.checkTurn(ActionDiscard, seat); err != nil {
		return err
	}
	if !r.drawn {
		return reject(ActionDiscard, seat, ErrMustDraw)
	}
	if !t.Valid() {
		return reject(ActionDiscard, seat, ErrUnknownTile)
	}
	if countOf(r.seats[seat].hand, t) == 0 {
		return reject(ActionDiscard, seat, ErrTileNotInHand)
	}
	r.discardTile(seat, t)
	return nil
}

// Pass 三家都过，轮到打牌者下家
func (r *Round) Pass(seat int) error {
	if !validSeat(seat) {
		return reject(ActionPass, seat, ErrInvalidSeat)
	}
	if r.stage != StagePlaying {
		return reject(ActionPass, seat, ErrWrongStage)
	}
	p := r.pending
	if p == nil {
		return reject(ActionPass, seat, ErrNoPendingDiscard)
	}
	if seat == p.Seat {
		return reject(ActionPass, seat, ErrOwnDiscard)
	}
	if p.Passed[seat] {
		return reject(ActionPass, seat, ErrAlreadyPassed)
	}

	p.Passed[seat] = true
	if p.passCount() == SeatCount-1 {
		r.pending = nil
		r.turn = (p.Seat + 1) % SeatCount
		r.drawn = false
	}
	return nil
}

func (r *Round) Kong(seat int, kind KongKind, t Tile) error {
	if err := r.checkTurn(ActionKong, seat); err != nil {
		return err
	}
	if !r.drawn {
		return reject(ActionKong, seat, ErrMustDraw)
	}
	if kind != KongConcealed && kind != KongExposed {
		return reject(ActionKong, seat, ErrUnknownKind)
	}
	if !t.Valid() {
		return reject(ActionKong, seat, ErrUnknownTile)
	}
	s := r.seats[seat]
	if s.riichi.Declared && s.riichi.WasConcealed && kind == KongExposed {
		return reject(ActionKong, seat, ErrExposedKongForbidden)
	}
	if countOf(s.hand, t) < TileCopies {
		return reject(ActionKong, seat, ErrInsufficientCopies)
	}
	rest := removeTiles(s.hand, t, TileCopies)
	meld := Meld{Kind: kind.meldKind(), Tiles: []Tile{t, t, t, t}}
	melds := append(cloneMelds(s.melds), meld)
	if s.riichi.Declared && !r.analyzer.IsTenpai(Hand34FromTiles(rest), melds) {
		return reject(ActionKong, seat, ErrKongBreaksTenpai)
	}

	s.hand = rest
	s.melds = melds
	s.lastDrawn = nil
	r.kongs = append(r.kongs, KongEntry{Seat: seat, Kind: kind, Fee: r.rules.KongFee(kind), AtTurn: r.totalDiscards})
	log.Debug("座位 %d %s杠 %s", seat, kind, t)
	// 杠后补牌，摸空同样流局
	r.drawInto(seat, false)
	return nil
}

// Riichi 立直并打出 t；首个立直掷骰翻宝；宝牌恰为所听之牌即冲宝
func (r *Round) Riichi(seat int, t Tile) error {
	if err := r.checkTurn(ActionRiichi, seat); err != nil {
		return err
	}
	if !r.drawn {
		return reject(ActionRiichi, seat, ErrMustDraw)
	}
	s := r.seats[seat]
	if s.riichi.Declared {
		return reject(ActionRiichi, seat, ErrAlreadyRiichi)
	}
	if !t.Valid() {
		return reject(ActionRiichi, seat, ErrUnknownTile)
	}
	if countOf(s.hand, t) == 0 {
		return reject(ActionRiichi, seat, ErrTileNotInHand)
	}
	after := Hand34FromTiles(removeTiles(s.hand, t, 1))
	waits := r.analyzer.Waits(after, s.melds)
	if len(waits) == 0 {
		return reject(ActionRiichi, seat, ErrNotTenpai)
	}

	s.riichi = RiichiStatus{
		Declared:       true,
		WasConcealed:   len(s.melds) == 0,
		Locked:         true,
		CanSeeTreasure: true,
	}
	if !r.riichiOccurred {
		r.riichiOccurred = true
		r.firstRiichiSeat = seat
		r.treasureDice = rollDice(r.rng)
		if tt, ok := r.wall.TreasureAt(r.treasureDice.Sum()); ok {
			r.treasure = &tt
		}
		log.Debug("座位 %d 首个立直，骰子 %v", seat, r.treasureDice)
	}
	r.discardTile(seat, t)

	if r.treasure == nil || !containsTile(waits, *r.treasure) {
		return nil
	}
	win := *r.treasure
	hand := after
	hand[win]++
	ctx := r.winContext(seat, WinTreasureStrike, hand, win)
	ctx.ExtraFan = r.rules.TreasureStrikeFan
	score, err := ScoreWin(ctx, r.rules)
	if err != nil {
		// 听牌集合与算番用同一判定，走到这里是程序缺陷
		log.Error("座位 %d 冲宝算番失败: %v", seat, err)
		return nil
	}
	r.settle(ctx, score)
	log.Info("座位 %d 冲宝 %s，%d 番", seat, win, score.Fan)
	return nil
}

// DeclareWin 有待表态的打牌时为点炮和，否则为自摸
func (r *Round) DeclareWin(seat int) error {
	if !validSeat(seat) {
		return reject(ActionDeclareWin, seat, ErrInvalidSeat)
	}
	if r.stage != StagePlaying {
		return reject(ActionDeclareWin, seat, ErrWrongStage)
	}
	s := r.seats[seat]

	if p := r.pending; p != nil {
		if seat == p.Seat {
			return reject(ActionDeclareWin, seat, ErrOwnDiscard)
		}
		if p.Passed[seat] {
			return reject(ActionDeclareWin, seat, ErrAlreadyPassed)
		}
		hand := Hand34FromTiles(s.hand)
		hand[p.Tile]++
		ctx := r.winContext(seat, WinDiscard, hand, p.Tile)
		ctx.FromSeat = p.Seat
		score, err := ScoreWin(ctx, r.rules)
		if err != nil {
			return reject(ActionDeclareWin, seat, err)
		}
		from := r.seats[p.Seat]
		from.discards = from.discards[:len(from.discards)-1]
		s.hand = append(s.hand, p.Tile)
		r.settle(ctx, score)
		log.Info("座位 %d 和座位 %d 打出的 %s，%d 番", seat, p.Seat, p.Tile, score.Fan)
		return nil
	}

	if r.turn != seat {
		return reject(ActionDeclareWin, seat, ErrNotYourTurn)
	}
	if !r.drawn {
		return reject(ActionDeclareWin, seat, ErrMustDraw)
	}
	var win Tile
	if s.lastDrawn != nil {
		win = *s.lastDrawn
	} else if len(s.hand) > 0 {
		win = s.hand[len(s.hand)-1]
	}
	ctx := r.winContext(seat, WinSelfDraw, Hand34FromTiles(s.hand), win)
	score, err := ScoreWin(ctx, r.rules)
	if err != nil {
		return reject(ActionDeclareWin, seat, err)
	}
	r.settle(ctx, score)
	log.Info("座位 %d 自摸，%d 番", seat, score.Fan)
	return nil
}

func containsTile(tiles []Tile, t Tile) bool {
	for _, x := range tiles {
		if x == t {
			return true
		}
	}
	return false
}
