package api

import (
	"errors"

	"github.com/NHFNHF/zhuanghe-majiang/common/http"
	"github.com/NHFNHF/zhuanghe-majiang/common/log"
	"github.com/NHFNHF/zhuanghe-majiang/core/domain/repository"
)

// RoundHistoryHandler 已归档的牌局，按局数升序；桌子删除后仍可查询
func (h *Handler) RoundHistoryHandler(c *http.Context) error {
	if h.Archive == nil {
		c.Unavailable("未配置牌局归档")
		return nil
	}
	tableID := c.GetParam("id")
	records, err := h.Archive.FindRoundRecords(c.Ctx(), tableID)
	if errors.Is(err, repository.ErrRoundRecordNotFound) {
		c.NotFound("没有牌局记录")
		return nil
	}
	if err != nil {
		log.Error("查询牌局记录失败 table=%s: %v", tableID, err)
		c.InternalServerError("查询牌局记录失败")
		return nil
	}
	c.Success(map[string]any{
		"rounds": records,
		"total":  len(records),
	})
	return nil
}

// ScoresHandler 记分板上的累计输赢
func (h *Handler) ScoresHandler(c *http.Context) error {
	if h.Board == nil {
		c.Unavailable("未配置记分板")
		return nil
	}
	tableID := c.GetParam("id")
	totals, err := h.Board.Totals(c.Ctx(), tableID)
	if err != nil {
		log.Error("查询累计输赢失败 table=%s: %v", tableID, err)
		c.InternalServerError("查询累计输赢失败")
		return nil
	}
	c.Success(map[string]any{
		"tableId": tableID,
		"totals":  totals,
	})
	return nil
}
