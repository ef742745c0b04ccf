package api

import (
	nethttp "net/http"

	"github.com/NHFNHF/zhuanghe-majiang/common/http"
	"github.com/NHFNHF/zhuanghe-majiang/core/domain/repository"
	"github.com/NHFNHF/zhuanghe-majiang/runtime/game"
	"github.com/NHFNHF/zhuanghe-majiang/runtime/game/engines/mahjong"
)

// Handler 路由依赖：牌桌管理、负载监控、听牌分析
// Archive 与 Board 未配置时历史接口返回 503
type Handler struct {
	Tables   *game.TableManager
	Monitor  *game.Monitor
	Analyzer *mahjong.Analyzer
	Archive  repository.RoundArchive
	Board    repository.ScoreBoard
}

func NewHandler(tables *game.TableManager, monitor *game.Monitor, analyzer *mahjong.Analyzer) *Handler {
	if analyzer == nil {
		analyzer = mahjong.NewAnalyzer(nil)
	}
	return &Handler{Tables: tables, Monitor: monitor, Analyzer: analyzer}
}

// RegisterRoutes 注册所有路由；ws 为 websocket 入口，可以为 nil
func RegisterRoutes(server *http.HttpServer, h *Handler, ws nethttp.Handler) {
	server.GET("/ping", PingHandler)
	if ws != nil {
		server.Mount(nethttp.MethodGet, "/ws", ws)
	}

	// API v1 路由组
	v1 := server.Group("/api/v1")
	{
		v1.GET("/stats", h.StatsHandler)
		v1.POST("/tenpai", h.TenpaiHandler)

		tables := v1.Group("/tables")
		{
			tables.POST("", h.CreateTableHandler)
			tables.GET("", h.ListTablesHandler)
			tables.GET("/:id", h.GetTableHandler)
			tables.DELETE("/:id", h.DeleteTableHandler)
			tables.GET("/:id/view", h.ViewHandler)
			tables.POST("/:id/actions", h.ActionHandler)
			tables.POST("/:id/rounds", h.NextRoundHandler)
			tables.GET("/:id/rounds", h.RoundHistoryHandler)
			tables.GET("/:id/scores", h.ScoresHandler)
		}
	}
}
