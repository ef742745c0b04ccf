package api

import (
	"fmt"

	"github.com/NHFNHF/zhuanghe-majiang/common/http"
	"github.com/NHFNHF/zhuanghe-majiang/runtime/game/engines/mahjong"
)

type meldRequest struct {
	Kind  string   `json:"kind" binding:"required"`
	Tiles []string `json:"tiles" binding:"required"`
}

type tenpaiRequest struct {
	Hand  []string      `json:"hand" binding:"required"`
	Melds []meldRequest `json:"melds"`
}

type tenpaiResponse struct {
	Tenpai bool           `json:"tenpai"`
	Waits  []mahjong.Tile `json:"waits"`
}

// TenpaiHandler 听牌查询，不涉及任何牌桌
func (h *Handler) TenpaiHandler(c *http.Context) error {
	var req tenpaiRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("请求参数错误")
		return nil
	}
	hand, err := mahjong.ParseTiles(req.Hand)
	if err != nil {
		writeTableError(c, err)
		return nil
	}
	// 手牌须为 3n+1 张，加上副露不超过 13 张
	if len(hand)%3 != 1 || len(hand)+3*len(req.Melds) > 13 {
		writeTableError(c, fmt.Errorf("%w: %d tiles with %d melds", mahjong.ErrBadHandSize, len(hand), len(req.Melds)))
		return nil
	}
	all := append([]mahjong.Tile(nil), hand...)
	melds := make([]mahjong.Meld, 0, len(req.Melds))
	for _, m := range req.Melds {
		kind, err := mahjong.ParseMeldKind(m.Kind)
		if err != nil {
			writeTableError(c, err)
			return nil
		}
		tiles, err := mahjong.ParseTiles(m.Tiles)
		if err != nil {
			writeTableError(c, err)
			return nil
		}
		melds = append(melds, mahjong.Meld{Kind: kind, Tiles: tiles})
		all = append(all, tiles...)
	}
	if _, err := mahjong.NewHand34(all); err != nil {
		writeTableError(c, err)
		return nil
	}
	counts, _ := mahjong.NewHand34(hand)

	waits := h.Analyzer.Waits(counts, melds)
	if waits == nil {
		waits = []mahjong.Tile{}
	}
	c.Success(tenpaiResponse{Tenpai: len(waits) > 0, Waits: waits})
	return nil
}
