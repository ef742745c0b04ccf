package mahjong

import "fmt"

type WinKind int

const (
	WinSelfDraw       WinKind = iota // 自摸
	WinDiscard                       // 点炮
	WinTreasureStrike                // 冲宝
)

var winKindNames = [...]string{"self_draw", "discard", "treasure_strike"}

func (k WinKind) String() string {
	if k < 0 || int(k) >= len(winKindNames) {
		return fmt.Sprintf("WinKind(%d)", int(k))
	}
	return winKindNames[k]
}

func (k WinKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// WinContext 和牌算番所需的全部输入
type WinContext struct {
	Seat         int
	Dealer       int
	Kind         WinKind
	FromSeat     int  // 点炮者，非点炮为 -1
	WinningTile  Tile // 和牌张
	Hand         Hand34
	Melds        []Meld
	Riichi       bool
	BonusFan     int
	ExtraFan     int
	AllConcealed bool // 四家都没有副露
}

type Score struct {
	Shape Shape
	Fan   int
	Yaku  []YakuFan
}

// ScoreWin 算番；同样的输入总是得到同样的番数与番种顺序
func ScoreWin(ctx WinContext, rules Rules) (Score, error) {
	decomp, ok := Evaluate(ctx.Hand, ctx.Melds)
	if !ok {
		return Score{}, ErrNoWinningHand
	}
	yc := &yakuContext{
		WinContext: ctx,
		decomp:     decomp,
		purity:     ClassifyPurity(ctx.Hand, ctx.Melds),
	}

	score := Score{Shape: decomp.Shape}
	for _, checker := range yakuCheckers {
		if fan := checker.check(yc); fan > 0 {
			score.Fan += fan
			score.Yaku = append(score.Yaku, YakuFan{Yaku: checker.id, Fan: fan})
		}
	}
	if ctx.AllConcealed {
		score.Fan = rules.AllConcealedFan
		score.Yaku = append(score.Yaku, YakuFan{Yaku: YakuAllConcealed, Fan: rules.AllConcealedFan})
	}
	return score, nil
}

type ResultKind string

const (
	ResultDraw ResultKind = "draw"
	ResultWin  ResultKind = "win"
)

type PaymentReason string

const (
	PayWin     PaymentReason = "win"
	PayDealIn  PaymentReason = "deal_in" // 点炮多付一番
	PayKongFee PaymentReason = "kong"
)

type Payment struct {
	From   int           `json:"from" bson:"from"`
	To     int           `json:"to" bson:"to"`
	Amount int           `json:"amount" bson:"amount"`
	Reason PaymentReason `json:"reason" bson:"reason"`
}

// RoundResult 一局的结果，流局时只有 Kind 与 NextDealer 有意义
type RoundResult struct {
	Kind         ResultKind `json:"kind" bson:"kind"`
	Winner       int        `json:"winner" bson:"winner"`
	WinKind      *WinKind   `json:"winKind,omitempty" bson:"winKind,omitempty"`
	FromSeat     int        `json:"fromSeat" bson:"fromSeat"`
	WinningTile  *Tile      `json:"winningTile,omitempty" bson:"winningTile,omitempty"`
	Shape        Shape      `json:"shape" bson:"shape"`
	Fan          int        `json:"fan" bson:"fan"`
	CappedFan    int        `json:"cappedFan" bson:"cappedFan"`
	Yaku         []YakuFan  `json:"yaku" bson:"yaku"`
	Payments     []Payment  `json:"payments" bson:"payments"`
	KongPayments []Payment  `json:"kongPayments" bson:"kongPayments"`
	NextDealer   int        `json:"nextDealer" bson:"nextDealer"`
}

func (r *RoundResult) clone() *RoundResult {
	if r == nil {
		return nil
	}
	out := *r
	if r.WinKind != nil {
		k := *r.WinKind
		out.WinKind = &k
	}
	if r.WinningTile != nil {
		t := *r.WinningTile
		out.WinningTile = &t
	}
	out.Yaku = append([]YakuFan(nil), r.Yaku...)
	out.Payments = append([]Payment(nil), r.Payments...)
	out.KongPayments = append([]Payment(nil), r.KongPayments...)
	return &out
}

// Balances 各座位本局输赢，总和为 0
func (r *RoundResult) Balances() [SeatCount]int {
	var out [SeatCount]int
	for _, list := range [][]Payment{r.Payments, r.KongPayments} {
		for _, p := range list {
			out[p.From] -= p.Amount
			out[p.To] += p.Amount
		}
	}
	return out
}

func drawResult(dealer int) *RoundResult {
	return &RoundResult{
		Kind:         ResultDraw,
		Winner:       -1,
		FromSeat:     -1,
		Payments:     []Payment{},
		KongPayments: []Payment{},
		NextDealer:   dealer,
	}
}

// settleWin 生成和牌结算：番钱、杠钱、下一局庄家
func settleWin(rules Rules, ctx WinContext, score Score, kongs []KongEntry) *RoundResult {
	kind := ctx.Kind
	win := ctx.WinningTile
	res := &RoundResult{
		Kind:         ResultWin,
		Winner:       ctx.Seat,
		WinKind:      &kind,
		FromSeat:     ctx.FromSeat,
		WinningTile:  &win,
		Shape:        score.Shape,
		Fan:          score.Fan,
		CappedFan:    rules.capFan(score.Fan),
		Yaku:         score.Yaku,
		Payments:     make([]Payment, 0, SeatCount-1),
		KongPayments: make([]Payment, 0, len(kongs)*(SeatCount-1)),
		NextDealer:   nextDealer(ctx.Dealer, ctx.Seat),
	}

	for seat := 0; seat < SeatCount; seat++ {
		if seat == ctx.Seat {
			continue
		}
		p := Payment{From: seat, To: ctx.Seat, Amount: rules.Money(score.Fan), Reason: PayWin}
		if ctx.Kind == WinDiscard && seat == ctx.FromSeat {
			p.Amount = rules.Money(rules.capFan(score.Fan) + 1)
			p.Reason = PayDealIn
		}
		res.Payments = append(res.Payments, p)
	}

	for _, k := range kongs {
		for seat := 0; seat < SeatCount; seat++ {
			if seat == k.Seat {
				continue
			}
			res.KongPayments = append(res.KongPayments, Payment{From: seat, To: k.Seat, Amount: k.Fee, Reason: PayKongFee})
		}
	}
	return res
}

func nextDealer(dealer, winner int) int {
	if winner == dealer {
		return dealer
	}
	return (dealer + 1) % SeatCount
}
