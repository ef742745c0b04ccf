package game

import "time"

// LoadInfo 负载信息
// 用于计算牌桌服务的综合负载评分
type LoadInfo struct {
	TableCount   int       `json:"tableCount"`   // 当前牌桌数
	ActiveRounds int       `json:"activeRounds"` // 未结算的对局数
	ConnCount    int       `json:"connCount"`    // websocket 连接数
	CPUUsage     float64   `json:"cpuUsage"`     // CPU 使用率（0-100）
	MemUsage     float64   `json:"memUsage"`     // 内存使用率（0-100）
	Load         float64   `json:"load"`         // 综合评分
	UpdatedAt    time.Time `json:"updatedAt"`
}

// CalculateLoad 计算综合负载评分
// 权重：CPU 30%、内存 20%、牌桌数 25%、连接数 25%
// capacity 为牌桌上限，<= 0 时按 100 张桌归一化；返回值越小表示负载越低
func (li *LoadInfo) CalculateLoad(capacity int) float64 {
	if capacity <= 0 {
		capacity = 100
	}
	normalizedTables := clampUnit(float64(li.TableCount) / float64(capacity))
	// 每张桌最多四个座位连接
	normalizedConns := clampUnit(float64(li.ConnCount) / float64(capacity*4))

	return li.CPUUsage*0.3 + li.MemUsage*0.2 + normalizedTables*100*0.25 + normalizedConns*100*0.25
}

func clampUnit(v float64) float64 {
	if v > 1.0 {
		return 1.0
	}
	if v < 0 {
		return 0
	}
	return v
}
