package game

import (
	"context"
	"sync"
	"time"

	"github.com/NHFNHF/zhuanghe-majiang/common/log"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// ConnCounter 当前连接数，由 websocket hub 提供
type ConnCounter interface {
	Count() int
}

// Monitor 监控器
// 定期采集主机负载与牌桌数，最近一次结果通过 Snapshot 读取
type Monitor struct {
	manager        *TableManager
	conns          ConnCounter
	updateInterval time.Duration
	stopCh         chan struct{}
	stopOnce       sync.Once

	mu   sync.RWMutex
	last LoadInfo
}

// NewMonitor 创建监控器
// conns 可以为 nil；updateInterval 建议 5-10 秒
func NewMonitor(manager *TableManager, conns ConnCounter, updateInterval time.Duration) *Monitor {
	if updateInterval <= 0 {
		updateInterval = 5 * time.Second
	}
	return &Monitor{
		manager:        manager,
		conns:          conns,
		updateInterval: updateInterval,
		stopCh:         make(chan struct{}),
	}
}

// Start 阻塞运行，直到 ctx 结束或 Stop
func (m *Monitor) Start(ctx context.Context) {
	ticker := time.NewTicker(m.updateInterval)
	defer ticker.Stop()

	// 立即执行一次
	m.Refresh()

	for {
		select {
		case <-ctx.Done():
			log.Info("Monitor 收到停止信号，退出监控")
			return
		case <-m.stopCh:
			log.Info("Monitor 收到停止信号，退出监控")
			return
		case <-ticker.C:
			m.Refresh()
		}
	}
}

func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

// Refresh 立即采集一次
func (m *Monitor) Refresh() LoadInfo {
	info := m.collectLoadInfo()
	info.Load = info.CalculateLoad(m.manager.Capacity())

	m.mu.Lock()
	m.last = info
	m.mu.Unlock()

	log.Debug("Monitor 负载: Load=%.2f, Tables=%d, Active=%d, Conns=%d, CPU=%.2f%%, Mem=%.2f%%",
		info.Load, info.TableCount, info.ActiveRounds, info.ConnCount, info.CPUUsage, info.MemUsage)
	return info
}

func (m *Monitor) Snapshot() LoadInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.last
}

func (m *Monitor) collectLoadInfo() LoadInfo {
	tableCount, activeRounds := m.manager.Stats()
	info := LoadInfo{
		TableCount:   tableCount,
		ActiveRounds: activeRounds,
		CPUUsage:     m.getCPUUsage(),
		MemUsage:     m.getMemoryUsage(),
		UpdatedAt:    time.Now(),
	}
	if m.conns != nil {
		info.ConnCount = m.conns.Count()
	}
	return info
}

// getCPUUsage 距上次调用以来的整机 CPU 使用率
func (m *Monitor) getCPUUsage() float64 {
	percents, err := cpu.Percent(0, false)
	if err != nil || len(percents) == 0 {
		log.Warn("Monitor 获取 CPU 使用率失败: %v", err)
		return 0
	}
	return percents[0]
}

// getMemoryUsage 整机内存使用率
func (m *Monitor) getMemoryUsage() float64 {
	vm, err := mem.VirtualMemory()
	if err != nil {
		log.Warn("Monitor 获取内存使用率失败: %v", err)
		return 0
	}
	return vm.UsedPercent
}
