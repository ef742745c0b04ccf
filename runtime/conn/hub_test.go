package conn

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/NHFNHF/zhuanghe-majiang/runtime/game"
	"github.com/gorilla/websocket"
)

// wireMessage 客户端视角的下行消息，只取测试关心的字段
type wireMessage struct {
	Type    string `json:"type"`
	Event   string `json:"event"`
	Code    string `json:"code"`
	Message string `json:"message"`
	View    *struct {
		Viewer int    `json:"viewer"`
		Stage  string `json:"stage"`
		Seats  []struct {
			Hand []string `json:"hand"`
		} `json:"seats"`
	} `json:"view"`
}

func dial(t *testing.T, server *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?" + query
	ws, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		t.Fatalf("dial %s: %v (status %d)", query, err, status)
	}
	return ws
}

func readMessage(t *testing.T, ws *websocket.Conn) wireMessage {
	t.Helper()
	if err := ws.SetReadDeadline(time.Now().Add(3 * time.Second)); err != nil {
		t.Fatalf("SetReadDeadline: %v", err)
	}
	_, data, err := ws.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var msg wireMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
	return msg
}

func newTestServer(t *testing.T) (*game.TableManager, *Hub, *httptest.Server) {
	t.Helper()
	tm := game.NewTableManager(8)
	hub := NewHub(tm)
	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		hub.Close()
		server.Close()
		tm.Close()
	})
	return tm, hub, server
}

func TestHubPushesPerSeatViews(t *testing.T) {
	tm, hub, server := newTestServer(t)
	table, err := tm.CreateTable(0)
	if err != nil {
		t.Fatalf("CreateTable: %v", err)
	}

	seat0 := dial(t, server, "table="+table.ID+"&seat=0")
	defer seat0.Close()
	seat2 := dial(t, server, "table="+table.ID+"&seat=2")
	defer seat2.Close()

	for seat, ws := range map[int]*websocket.Conn{0: seat0, 2: seat2} {
		msg := readMessage(t, ws)
		if msg.Type != MessageView || msg.View == nil || msg.View.Viewer != seat || msg.View.Stage != "PRE_REVEAL" {
			t.Fatalf("initial message for seat %d = %+v", seat, msg)
		}
		if len(msg.View.Seats[seat].Hand) == 0 {
			t.Fatalf("seat %d cannot see its own hand", seat)
		}
		other := (seat + 1) % 4
		if len(msg.View.Seats[other].Hand) != 0 {
			t.Fatalf("seat %d sees seat %d's hand", seat, other)
		}
	}
	if hub.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", hub.Count())
	}

	// 拒绝只发给发起者
	if err := seat2.WriteJSON(map[string]string{"action": "discard", "tile": "W1"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	msg := readMessage(t, seat2)
	if msg.Type != MessageError || msg.Code != "WRONG_STAGE" {
		t.Fatalf("rejection = %+v, want WRONG_STAGE", msg)
	}

	if err := seat2.WriteJSON(map[string]string{"action": "pre_reveal_done"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	// seat0 收到的第一条就是开局推送，说明之前的拒绝没有发给它
	for seat, ws := range map[int]*websocket.Conn{0: seat0, 2: seat2} {
		msg := readMessage(t, ws)
		if msg.Type != MessageView || msg.Event != string(game.EventAction) {
			t.Fatalf("seat %d push = %+v", seat, msg)
		}
		if msg.View.Viewer != seat || msg.View.Stage != "PLAYING" {
			t.Fatalf("seat %d got view %+v", seat, msg.View)
		}
	}

	if err := seat2.WriteMessage(websocket.TextMessage, []byte("{not json")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if msg := readMessage(t, seat2); msg.Code != codeBadMessage {
		t.Fatalf("bad message reply = %+v", msg)
	}
}

func TestHubRejectsBadRequests(t *testing.T) {
	tm, _, server := newTestServer(t)
	table, err := tm.CreateTable(1)
	if err != nil {
		t.Fatalf("CreateTable: %v", err)
	}

	base := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?"
	tests := []struct {
		query  string
		status int
	}{
		{"table=" + table.ID + "&seat=4", http.StatusBadRequest},
		{"table=" + table.ID + "&seat=x", http.StatusBadRequest},
		{"table=missing&seat=0", http.StatusNotFound},
	}
	for _, tt := range tests {
		_, resp, err := websocket.DefaultDialer.Dial(base+tt.query, nil)
		if err == nil {
			t.Fatalf("dial %s succeeded", tt.query)
		}
		if resp == nil || resp.StatusCode != tt.status {
			t.Fatalf("dial %s: resp %+v, want status %d", tt.query, resp, tt.status)
		}
	}
}

func TestHubCountDropsOnDisconnect(t *testing.T) {
	tm, hub, server := newTestServer(t)
	table, err := tm.CreateTable(0)
	if err != nil {
		t.Fatalf("CreateTable: %v", err)
	}
	ws := dial(t, server, "table="+table.ID+"&seat=1")
	readMessage(t, ws)
	if hub.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", hub.Count())
	}
	ws.Close()

	deadline := time.Now().Add(3 * time.Second)
	for hub.Count() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("connection was not removed, Count() = %d", hub.Count())
		}
		time.Sleep(10 * time.Millisecond)
	}
}
