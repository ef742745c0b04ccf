package game

import (
	"fmt"
	"sort"
	"sync"

	"github.com/NHFNHF/zhuanghe-majiang/common/log"
	"github.com/NHFNHF/zhuanghe-majiang/runtime/game/engines/mahjong"
	"github.com/google/uuid"
)

// TableManager 牌桌管理器
// 持有所有牌桌，牌桌关闭由管理器负责
type TableManager struct {
	tables    map[string]*Table // tableID -> Table
	maxTables int               // <= 0 不限
	tableOpts []TableOption     // 每张新桌共用的参数
	closed    bool
	mu        sync.RWMutex
}

func NewTableManager(maxTables int, opts ...TableOption) *TableManager {
	return &TableManager{
		tables:    make(map[string]*Table),
		maxTables: maxTables,
		tableOpts: opts,
	}
}

// CreateTable 创建牌桌并开第一局
// dealer: 首局庄家座位
func (tm *TableManager) CreateTable(dealer int) (*Table, error) {
	if dealer < 0 || dealer >= mahjong.SeatCount {
		return nil, fmt.Errorf("%w: dealer %d", mahjong.ErrInvalidSeat, dealer)
	}

	tm.mu.Lock()
	defer tm.mu.Unlock()

	if tm.closed {
		return nil, ErrManagerClosed
	}
	if tm.maxTables > 0 && len(tm.tables) >= tm.maxTables {
		return nil, ErrTooManyTables
	}

	table, err := NewTable(uuid.NewString(), dealer, tm.tableOpts...)
	if err != nil {
		return nil, fmt.Errorf("创建牌桌失败: %w", err)
	}
	tm.tables[table.ID] = table

	log.Info("TableManager 创建牌桌 %s，当前牌桌数: %d", table.ID, len(tm.tables))
	return table, nil
}

func (tm *TableManager) GetTable(tableID string) (*Table, bool) {
	tm.mu.RLock()
	defer tm.mu.RUnlock()

	table, exists := tm.tables[tableID]
	return table, exists
}

// DeleteTable 移除并关闭牌桌
func (tm *TableManager) DeleteTable(tableID string) error {
	tm.mu.Lock()
	table, exists := tm.tables[tableID]
	if !exists {
		tm.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrTableNotFound, tableID)
	}
	delete(tm.tables, tableID)
	tm.mu.Unlock()

	// 关闭要等结算下游，不占着锁
	table.Close()

	log.Info("TableManager 删除牌桌 %s", tableID)
	return nil
}

// List 按创建时间排序的牌桌列表（副本）
func (tm *TableManager) List() []*Table {
	tm.mu.RLock()
	tables := make([]*Table, 0, len(tm.tables))
	for _, table := range tm.tables {
		tables = append(tables, table)
	}
	tm.mu.RUnlock()

	sort.Slice(tables, func(i, j int) bool {
		if tables[i].CreatedAt.Equal(tables[j].CreatedAt) {
			return tables[i].ID < tables[j].ID
		}
		return tables[i].CreatedAt.Before(tables[j].CreatedAt)
	})
	return tables
}

// Stats 牌桌数与未结算的对局数，供 Monitor 使用
func (tm *TableManager) Stats() (tableCount int, activeRounds int) {
	tm.mu.RLock()
	defer tm.mu.RUnlock()

	tableCount = len(tm.tables)
	for _, table := range tm.tables {
		if table.Stage() != mahjong.StageSettle {
			activeRounds++
		}
	}
	return tableCount, activeRounds
}

func (tm *TableManager) Capacity() int { return tm.maxTables }

// Close 关闭全部牌桌，之后不能再建桌
func (tm *TableManager) Close() {
	tm.mu.Lock()
	if tm.closed {
		tm.mu.Unlock()
		return
	}
	tm.closed = true
	tables := tm.tables
	tm.tables = make(map[string]*Table)
	tm.mu.Unlock()

	var wg sync.WaitGroup
	for _, table := range tables {
		wg.Add(1)
		go func(t *Table) {
			defer wg.Done()
			t.Close()
		}(table)
	}
	wg.Wait()
	log.Info("TableManager 已关闭 %d 张牌桌", len(tables))
}
