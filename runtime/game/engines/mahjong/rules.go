package mahjong

// Rules 庄河规则中的可调常量
type Rules struct {
	KongFeeConcealed  int   // 暗杠每家
	KongFeeExposed    int   // 明杠每家
	TreasureStrikeFan int   // 冲宝额外番
	AllConcealedFan   int   // 四家闭门固定番
	FanCap            int   // 番数封顶
	MoneyTable        []int // 下标为封顶后的番数
}

func DefaultRules() Rules {
	return Rules{
		KongFeeConcealed:  10,
		KongFeeExposed:    5,
		TreasureStrikeFan: 3,
		AllConcealedFan:   5,
		FanCap:            5,
		MoneyTable:        []int{0, 5, 5, 10, 20, 40},
	}
}

// Money 番数换钱，先封顶
func (r Rules) Money(fan int) int {
	fan = r.capFan(fan)
	if len(r.MoneyTable) == 0 {
		return 0
	}
	if fan >= len(r.MoneyTable) {
		return r.MoneyTable[len(r.MoneyTable)-1]
	}
	return r.MoneyTable[fan]
}

func (r Rules) capFan(fan int) int {
	if fan < 0 {
		return 0
	}
	if r.FanCap > 0 && fan > r.FanCap {
		return r.FanCap
	}
	return fan
}

func (r Rules) KongFee(kind KongKind) int {
	if kind == KongConcealed {
		return r.KongFeeConcealed
	}
	return r.KongFeeExposed
}
