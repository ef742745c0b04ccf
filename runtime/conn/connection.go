package conn

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/NHFNHF/zhuanghe-majiang/common/log"
	"github.com/NHFNHF/zhuanghe-majiang/runtime/game"
	"github.com/NHFNHF/zhuanghe-majiang/runtime/game/engines/mahjong"
	"github.com/gorilla/websocket"
)

var connIDBase uint64 = 10000

var (
	pongWait             = 60 * time.Second
	writeWait            = 10 * time.Second
	pingInterval         = (pongWait * 9) / 10
	commandWait          = 5 * time.Second
	maxMessageSize int64 = 1024
	writeBuffer          = 32
)

const (
	MessageView  = "view"
	MessageError = "error"

	codeBadMessage = "BAD_MESSAGE"
	codeTable      = "TABLE_UNAVAILABLE"
)

// Message 下行消息：视图推送或只发给动作发起者的拒绝
type Message struct {
	Type    string         `json:"type"`
	Event   game.EventKind `json:"event,omitempty"`
	View    *mahjong.View  `json:"view,omitempty"`
	Code    string         `json:"code,omitempty"`
	Message string         `json:"message,omitempty"`
}

// LongConnection 一个座位的长连接
type LongConnection struct {
	ConnID    string
	Conn      *websocket.Conn
	Seat      int
	table     *game.Table
	hub       *Hub
	WriteChan chan []byte
	closeChan chan struct{}
	closeOnce sync.Once
}

func newLongConnection(ws *websocket.Conn, hub *Hub, table *game.Table, seat int) *LongConnection {
	id := atomic.AddUint64(&connIDBase, 1)
	return &LongConnection{
		ConnID:    table.ID + "-" + strconv.FormatUint(id, 10),
		Conn:      ws,
		Seat:      seat,
		table:     table,
		hub:       hub,
		WriteChan: make(chan []byte, writeBuffer),
		closeChan: make(chan struct{}),
	}
}

func (con *LongConnection) Run() {
	con.Conn.SetPongHandler(con.PongHandler)
	go con.readMessage()
	go con.writeMessage()
}

func (con *LongConnection) writeMessage() {
	pingTicker := time.NewTicker(pingInterval)
	defer pingTicker.Stop()

	for {
		select {
		case message := <-con.WriteChan:
			if err := con.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Error("客户端[%s] SetWriteDeadline err: %v", con.ConnID, err)
			}
			if err := con.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Error("客户端[%s] 写消息失败: %v", con.ConnID, err)
				con.Close()
				return
			}
		case <-pingTicker.C:
			if err := con.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Error("客户端[%s] ping SetWriteDeadline err: %v", con.ConnID, err)
			}
			if err := con.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Error("客户端[%s] ping 失败: %v", con.ConnID, err)
				con.Close()
				return
			}
		case <-con.closeChan:
			_ = con.Conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return
		}
	}
}

func (con *LongConnection) readMessage() {
	defer func() {
		con.hub.remove(con)
		con.Close()
	}()
	con.Conn.SetReadLimit(maxMessageSize)
	if err := con.Conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		log.Error("客户端[%s] SetReadDeadline err: %v", con.ConnID, err)
		return
	}
	for {
		_, message, err := con.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("客户端[%s] 异常断开: %v", con.ConnID, err)
			}
			return
		}
		con.handle(message)
	}
}

// handle 解析上行动作并以本连接的座位执行；失败只回给本连接
func (con *LongConnection) handle(message []byte) {
	var cmd mahjong.Command
	if err := json.Unmarshal(message, &cmd); err != nil {
		con.sendError(codeBadMessage, fmt.Sprintf("无法解析消息: %v", err))
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), commandWait)
	defer cancel()

	err := con.table.Do(ctx, con.Seat, cmd)
	if err == nil {
		return
	}
	if code := mahjong.ErrorCode(err); code != "" {
		con.sendError(code, err.Error())
		return
	}
	if errors.Is(err, game.ErrTableClosed) || errors.Is(err, context.DeadlineExceeded) {
		con.sendError(codeTable, err.Error())
		return
	}
	log.Error("客户端[%s] 执行动作失败: %v", con.ConnID, err)
	con.sendError(codeTable, err.Error())
}

func (con *LongConnection) PongHandler(string) error {
	return con.Conn.SetReadDeadline(time.Now().Add(pongWait))
}

func (con *LongConnection) sendError(code, msg string) {
	con.Send(Message{Type: MessageError, Code: code, Message: msg})
}

// Send 不阻塞；写缓冲满说明客户端读得太慢，直接断开
func (con *LongConnection) Send(msg Message) {
	buf, err := json.Marshal(msg)
	if err != nil {
		log.Error("客户端[%s] 消息编码失败: %v", con.ConnID, err)
		return
	}
	select {
	case con.WriteChan <- buf:
	case <-con.closeChan:
	default:
		log.Warn("客户端[%s] 写缓冲已满，断开连接", con.ConnID)
		con.Close()
	}
}

func (con *LongConnection) Close() {
	con.closeOnce.Do(func() {
		close(con.closeChan)
		// 读协程靠关闭底层连接退出
		go func() {
			time.Sleep(100 * time.Millisecond)
			_ = con.Conn.Close()
		}()
		log.Info("客户端[%s] 连接关闭", con.ConnID)
	})
}
