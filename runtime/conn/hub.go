package conn

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/NHFNHF/zhuanghe-majiang/common/log"
	"github.com/NHFNHF/zhuanghe-majiang/runtime/game"
	"github.com/NHFNHF/zhuanghe-majiang/runtime/game/engines/mahjong"
	"github.com/gorilla/websocket"
)

type CheckOriginHandler func(r *http.Request) bool

// Hub websocket 入口：GET /ws?table=ID&seat=N
// 牌桌每次状态变化后给该桌每个连接推送各自座位的视图
type Hub struct {
	manager  *game.TableManager
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[string]map[string]*LongConnection // tableID -> connID -> conn
	closed  bool

	// 订阅与取消订阅只在 subMu 下进行，推送回调不会取 subMu
	subMu sync.Mutex
	subs  map[string]func()

	currentConnections atomic.Int32
}

type HubOption func(*Hub)

func WithCheckOrigin(fn CheckOriginHandler) HubOption {
	return func(h *Hub) { h.upgrader.CheckOrigin = fn }
}

func NewHub(manager *game.TableManager, opts ...HubOption) *Hub {
	h := &Hub{
		manager: manager,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[string]map[string]*LongConnection),
		subs:    make(map[string]func()),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	tableID := r.URL.Query().Get("table")
	seat, err := strconv.Atoi(r.URL.Query().Get("seat"))
	if err != nil || seat < 0 || seat >= mahjong.SeatCount {
		http.Error(w, "invalid seat", http.StatusBadRequest)
		return
	}
	table, ok := h.manager.GetTable(tableID)
	if !ok {
		http.Error(w, "table not found", http.StatusNotFound)
		return
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("websocket 升级失败: %v", err)
		return
	}
	client := newLongConnection(ws, h, table, seat)
	if !h.add(client) {
		_ = ws.Close()
		return
	}
	client.Run()
	log.Info("WebSocket 建立连接: table=%s, seat=%d, connID=%s, remote=%s", tableID, seat, client.ConnID, r.RemoteAddr)

	// 先登记再取初始视图，之后的变化都会推送
	ctx, cancel := context.WithTimeout(r.Context(), commandWait)
	defer cancel()
	view, err := table.View(ctx, seat)
	if err != nil {
		client.sendError(codeTable, err.Error())
		return
	}
	client.Send(Message{Type: MessageView, View: &view})
}

func (h *Hub) add(client *LongConnection) bool {
	tableID := client.table.ID
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return false
	}
	conns, exists := h.clients[tableID]
	if !exists {
		conns = make(map[string]*LongConnection)
		h.clients[tableID] = conns
	}
	conns[client.ConnID] = client
	h.currentConnections.Add(1)
	h.mu.Unlock()

	h.syncSubscription(client.table)
	return true
}

func (h *Hub) remove(client *LongConnection) {
	tableID := client.table.ID
	h.mu.Lock()
	conns, exists := h.clients[tableID]
	if !exists {
		h.mu.Unlock()
		return
	}
	if _, ok := conns[client.ConnID]; ok {
		delete(conns, client.ConnID)
		h.currentConnections.Add(-1)
	}
	if len(conns) == 0 {
		delete(h.clients, tableID)
	}
	h.mu.Unlock()

	h.syncSubscription(client.table)
}

// syncSubscription 有连接的牌桌保持一个订阅，没有连接的取消
func (h *Hub) syncSubscription(table *game.Table) {
	h.subMu.Lock()
	defer h.subMu.Unlock()

	h.mu.RLock()
	_, wanted := h.clients[table.ID]
	h.mu.RUnlock()

	unsubscribe, subscribed := h.subs[table.ID]
	switch {
	case wanted && !subscribed:
		tableID := table.ID
		h.subs[tableID] = table.Subscribe(func(ev game.TableEvent) { h.broadcast(tableID, ev) })
	case !wanted && subscribed:
		unsubscribe()
		delete(h.subs, table.ID)
	}
}

// broadcast 在牌桌协程内执行，只取读锁
func (h *Hub) broadcast(tableID string, ev game.TableEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients[tableID] {
		view := ev.Views[client.Seat]
		client.Send(Message{Type: MessageView, Event: ev.Kind, View: &view})
	}
}

// Count 当前连接数，供 Monitor 使用
func (h *Hub) Count() int {
	return int(h.currentConnections.Load())
}

// Close 断开所有连接，之后拒绝新连接
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	var clients []*LongConnection
	for _, conns := range h.clients {
		for _, client := range conns {
			clients = append(clients, client)
		}
	}
	h.mu.Unlock()

	for _, client := range clients {
		client.Close()
	}
	log.Info("WebSocket Hub 已关闭 %d 个连接", len(clients))
}
