package api

import (
	"time"

	"github.com/NHFNHF/zhuanghe-majiang/common/http"
)

// PingHandler ping 检查
func PingHandler(c *http.Context) error {
	c.Success(map[string]any{
		"message":   "pong",
		"timestamp": time.Now().Unix(),
		"service":   "table",
	})
	return nil
}

// StatsHandler 主机负载与牌桌数
func (h *Handler) StatsHandler(c *http.Context) error {
	if h.Monitor == nil {
		tables, active := h.Tables.Stats()
		c.Success(map[string]int{"tableCount": tables, "activeRounds": active})
		return nil
	}
	info := h.Monitor.Snapshot()
	if info.UpdatedAt.IsZero() {
		info = h.Monitor.Refresh()
	}
	c.Success(info)
	return nil
}
