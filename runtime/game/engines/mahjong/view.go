package mahjong

// MeldView 他家暗杠只给张数
type MeldView struct {
	Kind   MeldKind `json:"kind"`
	Tiles  []Tile   `json:"tiles,omitempty"`
	Masked bool     `json:"masked,omitempty"`
	Count  int      `json:"count"`
}

type RiichiView struct {
	Declared       bool  `json:"declared"`
	WasConcealed   bool  `json:"wasConcealed"`
	Locked         bool  `json:"locked"`
	CanSeeTreasure *bool `json:"canSeeTreasure,omitempty"`
}

type SeatView struct {
	Seat       int         `json:"seat"`
	HandCount  int         `json:"handCount"`
	Hand       []Tile      `json:"hand,omitempty"`
	LastDrawn  *Tile       `json:"lastDrawn,omitempty"`
	BonusFan   *int        `json:"bonusFan,omitempty"`
	Melds      []MeldView  `json:"melds"`
	Discards   []Tile      `json:"discards"`
	Riichi     RiichiView  `json:"riichi"`
	WindKong   PreKongSlot `json:"windKong"`
	DragonKong PreKongSlot `json:"dragonKong"`
}

type PendingView struct {
	Seat   int   `json:"seat"`
	Tile   Tile  `json:"tile"`
	Passed []int `json:"passed"`
}

// View 某个座位能看到的一局
type View struct {
	Viewer          int                 `json:"viewer"`
	Stage           Stage               `json:"stage"`
	Dealer          int                 `json:"dealer"`
	Turn            int                 `json:"turn"`
	WallRemaining   int                 `json:"wallRemaining"`
	Seats           [SeatCount]SeatView `json:"seats"`
	Pending         *PendingView        `json:"pending,omitempty"`
	PendingKongs    []KongEntry         `json:"pendingKongs"`
	RiichiOccurred  bool                `json:"riichiOccurred"`
	FirstRiichiSeat int                 `json:"firstRiichiSeat"`
	Treasure        *Tile               `json:"treasure,omitempty"`
	Result          *RoundResult        `json:"result,omitempty"`
}

// View 按需从当前状态投影，不单独保存
func (r *Round) View(viewer int) (View, error) {
	if !validSeat(viewer) {
		return View{}, ErrInvalidSeat
	}
	me := r.seats[viewer]
	v := View{
		Viewer:          viewer,
		Stage:           r.stage,
		Dealer:          r.dealer,
		Turn:            r.turn,
		WallRemaining:   r.wall.Remaining(),
		PendingKongs:    append([]KongEntry{}, r.kongs...),
		RiichiOccurred:  r.riichiOccurred,
		FirstRiichiSeat: r.firstRiichiSeat,
		Result:          r.result.clone(),
	}
	if r.treasure != nil && me.riichi.CanSeeTreasure {
		t := *r.treasure
		v.Treasure = &t
	}
	if p := r.pending; p != nil {
		pv := &PendingView{Seat: p.Seat, Tile: p.Tile, Passed: []int{}}
		for seat, ok := range p.Passed {
			if ok {
				pv.Passed = append(pv.Passed, seat)
			}
		}
		v.Pending = pv
	}
	for seat, s := range r.seats {
		v.Seats[seat] = projectSeat(seat, s, viewer, me.riichi.Declared)
	}
	return v, nil
}

func projectSeat(seat int, s *seatState, viewer int, viewerRiichi bool) SeatView {
	own := seat == viewer
	sv := SeatView{
		Seat:      seat,
		HandCount: len(s.hand),
		Melds:     make([]MeldView, 0, len(s.melds)),
		Discards:  append([]Tile{}, s.discards...),
		Riichi: RiichiView{
			Declared:     s.riichi.Declared,
			WasConcealed: s.riichi.WasConcealed,
			Locked:       s.riichi.Locked,
		},
		DragonKong: PreKongSlot{Active: s.dragonKong.Active, Tiles: append([]Tile(nil), s.dragonKong.Tiles...)},
		WindKong:   PreKongSlot{Active: s.windKong.Active},
	}
	if own || viewerRiichi {
		canSee := s.riichi.CanSeeTreasure
		sv.Riichi.CanSeeTreasure = &canSee
	}
	for _, m := range s.melds {
		mv := MeldView{Kind: m.Kind, Count: len(m.Tiles)}
		if m.Kind == MeldConcealedKong && !own {
			mv.Masked = true
		} else {
			mv.Tiles = append([]Tile(nil), m.Tiles...)
		}
		sv.Melds = append(sv.Melds, mv)
	}
	if own {
		sv.Hand = append([]Tile(nil), s.hand...)
		sortTiles(sv.Hand)
		if s.lastDrawn != nil {
			t := *s.lastDrawn
			sv.LastDrawn = &t
		}
		bonus := s.bonusFan
		sv.BonusFan = &bonus
		sv.WindKong.Tiles = append([]Tile(nil), s.windKong.Tiles...)
	}
	return sv
}
