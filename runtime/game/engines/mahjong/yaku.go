package mahjong

// Yaku 番种，字符串即线上编码
type Yaku string

const (
	// 牌型
	YakuThirteenOrphans Yaku = "thirteen_orphans" // 十三幺不重样
	YakuSevenPairs      Yaku = "seven_pairs"      // 七对子
	YakuAllTriplets     Yaku = "all_triplets"     // 飘胡

	// 花色
	YakuHonorsOnly   Yaku = "honors_only"    // 字一色
	YakuPureOneSuit  Yaku = "pure_one_suit"  // 清一色
	YakuMixedOneSuit Yaku = "mixed_one_suit" // 混一色

	YakuEdgeWait Yaku = "edge_wait" // 夹胡，只算点炮

	// 通用
	YakuSelfDraw       Yaku = "self_draw"
	YakuDiscardWin     Yaku = "discard_win"
	YakuDealer         Yaku = "dealer"
	YakuRiichi         Yaku = "riichi"
	YakuBonusDraws     Yaku = "bonus_draws" // 摸宝、摸鸡累计
	YakuTreasureStrike Yaku = "treasure_strike"

	YakuAllConcealed Yaku = "all_concealed" // 四家闭门
)

type YakuFan struct {
	Yaku Yaku `json:"yaku" bson:"yaku"`
	Fan  int  `json:"fan" bson:"fan"`
}

type yakuContext struct {
	WinContext
	decomp Decomposition
	purity Purity
}

type yakuChecker struct {
	id    Yaku
	check func(ctx *yakuContext) int
}

// yakuCheckers 按顺序求值，顺序即番种列表顺序
var yakuCheckers = []yakuChecker{
	{YakuThirteenOrphans, func(ctx *yakuContext) int {
		return boolFan(ctx.decomp.Shape == ShapeThirteenOrphans, 5)
	}},
	{YakuSevenPairs, func(ctx *yakuContext) int {
		return boolFan(ctx.decomp.Shape == ShapeSevenPairs, 5)
	}},
	{YakuAllTriplets, func(ctx *yakuContext) int {
		return boolFan(ctx.decomp.AllTriplets(), 2)
	}},
	{YakuHonorsOnly, func(ctx *yakuContext) int {
		return boolFan(ctx.standard() && ctx.purity == PurityHonorsOnly, 5)
	}},
	{YakuPureOneSuit, func(ctx *yakuContext) int {
		return boolFan(ctx.standard() && ctx.purity == PurityPureOneSuit, 5)
	}},
	{YakuMixedOneSuit, func(ctx *yakuContext) int {
		return boolFan(ctx.standard() && ctx.purity == PurityMixedOneSuit, 1)
	}},
	{YakuEdgeWait, func(ctx *yakuContext) int {
		return boolFan(ctx.standard() && ctx.Kind == WinDiscard && IsEdgeWait(ctx.Hand, ctx.WinningTile), 1)
	}},
	{YakuSelfDraw, func(ctx *yakuContext) int {
		return boolFan(ctx.Kind == WinSelfDraw, 1)
	}},
	{YakuDiscardWin, func(ctx *yakuContext) int {
		return boolFan(ctx.Kind == WinDiscard, 1)
	}},
	{YakuDealer, func(ctx *yakuContext) int {
		return boolFan(ctx.Seat == ctx.Dealer, 1)
	}},
	{YakuRiichi, func(ctx *yakuContext) int {
		return boolFan(ctx.Riichi, 1)
	}},
	{YakuBonusDraws, func(ctx *yakuContext) int {
		return ctx.BonusFan
	}},
	{YakuTreasureStrike, func(ctx *yakuContext) int {
		return ctx.ExtraFan
	}},
}

func (ctx *yakuContext) standard() bool { return ctx.decomp.Shape == ShapeStandard }

func boolFan(ok bool, fan int) int {
	if ok {
		return fan
	}
	return 0
}
