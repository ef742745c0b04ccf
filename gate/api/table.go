package api

import (
	"context"
	"errors"

	"github.com/NHFNHF/zhuanghe-majiang/common/http"
	"github.com/NHFNHF/zhuanghe-majiang/common/log"
	"github.com/NHFNHF/zhuanghe-majiang/runtime/game"
	"github.com/NHFNHF/zhuanghe-majiang/runtime/game/engines/mahjong"
)

const codeRoundInProgress = "ROUND_IN_PROGRESS"

type createTableRequest struct {
	Dealer int `json:"dealer"`
}

type actionRequest struct {
	Seat   *int   `json:"seat" binding:"required"`
	Action string `json:"action" binding:"required"`
	Tile   string `json:"tile"`
	Kind   string `json:"kind"`
}

// CreateTableHandler 建桌，body 可省略，默认 0 号位坐庄
func (h *Handler) CreateTableHandler(c *http.Context) error {
	var req createTableRequest
	if c.Request().ContentLength > 0 {
		if err := c.BindJSON(&req); err != nil {
			c.BadRequest("请求参数错误")
			return nil
		}
	}
	table, err := h.Tables.CreateTable(req.Dealer)
	if err != nil {
		writeTableError(c, err)
		return nil
	}
	info, err := table.Info(c.Ctx())
	if err != nil {
		writeTableError(c, err)
		return nil
	}
	c.Success(info)
	return nil
}

func (h *Handler) ListTablesHandler(c *http.Context) error {
	tables := h.Tables.List()
	infos := make([]game.TableInfo, 0, len(tables))
	for _, table := range tables {
		info, err := table.Info(c.Ctx())
		if err != nil {
			// 列表期间被删除的桌子直接跳过
			continue
		}
		infos = append(infos, info)
	}
	c.Success(map[string]any{
		"tables": infos,
		"total":  len(infos),
	})
	return nil
}

func (h *Handler) GetTableHandler(c *http.Context) error {
	table, ok := h.table(c)
	if !ok {
		return nil
	}
	info, err := table.Info(c.Ctx())
	if err != nil {
		writeTableError(c, err)
		return nil
	}
	c.Success(info)
	return nil
}

func (h *Handler) DeleteTableHandler(c *http.Context) error {
	if err := h.Tables.DeleteTable(c.GetParam("id")); err != nil {
		writeTableError(c, err)
		return nil
	}
	c.Success(nil)
	return nil
}

// ViewHandler 某个座位的视图：GET /tables/:id/view?seat=N
func (h *Handler) ViewHandler(c *http.Context) error {
	table, ok := h.table(c)
	if !ok {
		return nil
	}
	seat, ok := c.GetQueryInt("seat")
	if !ok {
		c.BadRequest("seat 参数错误")
		return nil
	}
	view, err := table.View(c.Ctx(), seat)
	if err != nil {
		writeTableError(c, err)
		return nil
	}
	c.Success(view)
	return nil
}

// ActionHandler 以某个座位执行动作，成功后返回该座位的最新视图
func (h *Handler) ActionHandler(c *http.Context) error {
	table, ok := h.table(c)
	if !ok {
		return nil
	}
	var req actionRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("请求参数错误")
		return nil
	}
	cmd := mahjong.Command{Action: mahjong.Action(req.Action), Tile: req.Tile, Kind: req.Kind}
	if err := table.Do(c.Ctx(), *req.Seat, cmd); err != nil {
		writeTableError(c, err)
		return nil
	}
	view, err := table.View(c.Ctx(), *req.Seat)
	if err != nil {
		writeTableError(c, err)
		return nil
	}
	c.Success(view)
	return nil
}

// NextRoundHandler 本局结算后开下一局
func (h *Handler) NextRoundHandler(c *http.Context) error {
	table, ok := h.table(c)
	if !ok {
		return nil
	}
	if err := table.NextRound(c.Ctx()); err != nil {
		writeTableError(c, err)
		return nil
	}
	info, err := table.Info(c.Ctx())
	if err != nil {
		writeTableError(c, err)
		return nil
	}
	c.Success(info)
	return nil
}

func (h *Handler) table(c *http.Context) (*game.Table, bool) {
	table, ok := h.Tables.GetTable(c.GetParam("id"))
	if !ok {
		c.NotFound("牌桌不存在")
		return nil, false
	}
	return table, true
}

// writeTableError 规则错误走 20000，其余按类别映射
func writeTableError(c *http.Context, err error) {
	if code := mahjong.ErrorCode(err); code != "" {
		c.Reject(code, err.Error())
		return
	}
	switch {
	case errors.Is(err, game.ErrRoundInProgress):
		c.Reject(codeRoundInProgress, err.Error())
	case errors.Is(err, game.ErrTableNotFound):
		c.NotFound(err.Error())
	case errors.Is(err, game.ErrTableClosed),
		errors.Is(err, game.ErrTooManyTables),
		errors.Is(err, game.ErrManagerClosed),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		c.Unavailable(err.Error())
	default:
		log.Error("请求 %s %s 处理失败: %v", c.Method(), c.Path(), err)
		c.InternalServerError("")
	}
}
