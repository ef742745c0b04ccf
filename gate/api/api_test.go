package api

import (
	"bytes"
	"encoding/json"
	nethttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/NHFNHF/zhuanghe-majiang/common/http"
	"github.com/NHFNHF/zhuanghe-majiang/runtime/game"
)

type apiResponse struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type tableInfo struct {
	ID          string `json:"id"`
	RoundNumber int    `json:"roundNumber"`
	Dealer      int    `json:"dealer"`
	Stage       string `json:"stage"`
}

func newTestAPI(t *testing.T, maxTables int) nethttp.Handler {
	t.Helper()
	tm := game.NewTableManager(maxTables)
	t.Cleanup(tm.Close)
	monitor := game.NewMonitor(tm, nil, time.Hour)

	server := http.NewHttpServer(http.WithMode("test"))
	RegisterRoutes(server, NewHandler(tm, monitor, nil), nil)
	return server.Handler()
}

func call(t *testing.T, h nethttp.Handler, method, path string, body any) (int, apiResponse) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp apiResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("%s %s: decode %q: %v", method, path, rec.Body.String(), err)
	}
	return rec.Code, resp
}

func decodeData(t *testing.T, resp apiResponse, out any) {
	t.Helper()
	if err := json.Unmarshal(resp.Data, out); err != nil {
		t.Fatalf("decode data %s: %v", resp.Data, err)
	}
}

func TestPingAndStats(t *testing.T) {
	h := newTestAPI(t, 4)
	if status, resp := call(t, h, nethttp.MethodGet, "/ping", nil); status != nethttp.StatusOK || resp.Code != http.CodeSuccess {
		t.Fatalf("ping = %d %+v", status, resp)
	}
	call(t, h, nethttp.MethodPost, "/api/v1/tables", nil)

	_, resp := call(t, h, nethttp.MethodGet, "/api/v1/stats", nil)
	var stats game.LoadInfo
	decodeData(t, resp, &stats)
	if stats.TableCount != 1 || stats.ActiveRounds != 1 {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestTableLifecycle(t *testing.T) {
	h := newTestAPI(t, 4)

	status, resp := call(t, h, nethttp.MethodPost, "/api/v1/tables", map[string]int{"dealer": 1})
	if status != nethttp.StatusOK || resp.Code != http.CodeSuccess {
		t.Fatalf("create = %d %+v", status, resp)
	}
	var info tableInfo
	decodeData(t, resp, &info)
	if info.ID == "" || info.Dealer != 1 || info.RoundNumber != 1 || info.Stage != "PRE_REVEAL" {
		t.Fatalf("created table = %+v", info)
	}
	base := "/api/v1/tables/" + info.ID

	_, resp = call(t, h, nethttp.MethodGet, "/api/v1/tables", nil)
	var list struct {
		Tables []tableInfo `json:"tables"`
		Total  int         `json:"total"`
	}
	decodeData(t, resp, &list)
	if list.Total != 1 || list.Tables[0].ID != info.ID {
		t.Fatalf("list = %+v", list)
	}

	_, resp = call(t, h, nethttp.MethodGet, base+"/view?seat=1", nil)
	var view struct {
		Viewer int    `json:"viewer"`
		Stage  string `json:"stage"`
		Dealer int    `json:"dealer"`
	}
	decodeData(t, resp, &view)
	if resp.Code != http.CodeSuccess || view.Viewer != 1 || view.Dealer != 1 {
		t.Fatalf("view = %+v (%+v)", view, resp)
	}
	if status, _ := call(t, h, nethttp.MethodGet, base+"/view?seat=x", nil); status != nethttp.StatusBadRequest {
		t.Fatalf("bad seat status = %d", status)
	}
	if _, resp := call(t, h, nethttp.MethodGet, base+"/view?seat=7", nil); resp.Code != http.CodeRuleReject || resp.Message != "INVALID_SEAT" {
		t.Fatalf("out of range seat = %+v", resp)
	}

	// 规则拒绝返回 20000 与规则错误码
	_, resp = call(t, h, nethttp.MethodPost, base+"/actions", map[string]any{"seat": 1, "action": "discard", "tile": "W1"})
	if resp.Code != http.CodeRuleReject || resp.Message != "WRONG_STAGE" {
		t.Fatalf("discard before start = %+v", resp)
	}
	_, resp = call(t, h, nethttp.MethodPost, base+"/actions", map[string]any{"seat": 0, "action": "fly"})
	if resp.Code != http.CodeRuleReject || resp.Message != "UNKNOWN_ACTION" {
		t.Fatalf("unknown action = %+v", resp)
	}
	if status, _ := call(t, h, nethttp.MethodPost, base+"/actions", map[string]any{"action": "pass"}); status != nethttp.StatusBadRequest {
		t.Fatalf("missing seat status = %d", status)
	}

	_, resp = call(t, h, nethttp.MethodPost, base+"/actions", map[string]any{"seat": 0, "action": "pre_reveal_done"})
	decodeData(t, resp, &view)
	if resp.Code != http.CodeSuccess || view.Stage != "PLAYING" || view.Viewer != 0 {
		t.Fatalf("pre_reveal_done = %+v (%+v)", view, resp)
	}

	_, resp = call(t, h, nethttp.MethodPost, base+"/rounds", nil)
	if resp.Code != http.CodeRuleReject || resp.Message != codeRoundInProgress {
		t.Fatalf("next round before settle = %+v", resp)
	}

	if _, resp := call(t, h, nethttp.MethodDelete, base, nil); resp.Code != http.CodeSuccess {
		t.Fatalf("delete = %+v", resp)
	}
	if status, resp := call(t, h, nethttp.MethodDelete, base, nil); status != nethttp.StatusNotFound || resp.Code != http.CodeNotFound {
		t.Fatalf("second delete = %d %+v", status, resp)
	}
	if status, _ := call(t, h, nethttp.MethodGet, base+"/view?seat=0", nil); status != nethttp.StatusNotFound {
		t.Fatalf("view of deleted table status = %d", status)
	}
}

func TestTableLimit(t *testing.T) {
	h := newTestAPI(t, 1)
	call(t, h, nethttp.MethodPost, "/api/v1/tables", nil)
	status, resp := call(t, h, nethttp.MethodPost, "/api/v1/tables", nil)
	if status != nethttp.StatusServiceUnavailable || resp.Code != http.CodeUnavailable {
		t.Fatalf("over limit = %d %+v", status, resp)
	}
	if _, resp := call(t, h, nethttp.MethodPost, "/api/v1/tables", map[string]int{"dealer": 5}); resp.Code != http.CodeRuleReject {
		t.Fatalf("bad dealer = %+v", resp)
	}
}

func TestTenpaiHandler(t *testing.T) {
	h := newTestAPI(t, 1)
	tests := []struct {
		name    string
		body    map[string]any
		code    int
		message string
		tenpai  bool
		waits   []string
	}{
		{
			name:   "two honor pairs",
			body:   map[string]any{"hand": []string{"W1", "W1", "W1", "T2", "T3", "T4", "B5", "B6", "B7", "S", "S", "N", "N"}},
			code:   http.CodeSuccess,
			tenpai: true,
			waits:  []string{"S", "N"},
		},
		{
			name: "with concealed kong",
			body: map[string]any{
				"hand":  []string{"T2", "T3", "T4", "B5", "B6", "B7", "S", "S", "N", "N"},
				"melds": []map[string]any{{"kind": "concealed_kong", "tiles": []string{"W1", "W1", "W1", "W1"}}},
			},
			code:   http.CodeSuccess,
			tenpai: true,
			waits:  []string{"S", "N"},
		},
		{
			name:  "not tenpai",
			body:  map[string]any{"hand": []string{"W1", "W3", "W5", "W7", "W9", "T1", "T3", "T5", "T7", "B2", "B4", "B6", "E"}},
			code:  http.CodeSuccess,
			waits: []string{},
		},
		{
			name:    "unknown tile",
			body:    map[string]any{"hand": []string{"X9"}},
			code:    http.CodeRuleReject,
			message: "UNKNOWN_TILE",
		},
		{
			name: "unknown meld kind",
			body: map[string]any{
				"hand":  []string{"T2", "T3", "T4", "B5", "B6", "B7", "S", "S", "N", "N"},
				"melds": []map[string]any{{"kind": "chow", "tiles": []string{"W1", "W2", "W3"}}},
			},
			code:    http.CodeRuleReject,
			message: "UNKNOWN_KIND",
		},
		{
			name:    "fourteen tiles",
			body:    map[string]any{"hand": []string{"W1", "W1", "W1", "T2", "T3", "T4", "B5", "B6", "B7", "S", "S", "N", "N", "N"}},
			code:    http.CodeRuleReject,
			message: "BAD_HAND_SIZE",
		},
		{
			name: "hand too long with meld",
			body: map[string]any{
				"hand":  []string{"W1", "W1", "W1", "T2", "T3", "T4", "B5", "B6", "B7", "S", "S", "N", "N"},
				"melds": []map[string]any{{"kind": "exposed_kong", "tiles": []string{"W9", "W9", "W9", "W9"}}},
			},
			code:    http.CodeRuleReject,
			message: "BAD_HAND_SIZE",
		},
		{
			name:    "five copies in hand",
			body:    map[string]any{"hand": []string{"W1", "W1", "W1", "W1", "W1", "T3", "T4", "B5", "B6", "B7", "S", "S", "N"}},
			code:    http.CodeRuleReject,
			message: "TOO_MANY_COPIES",
		},
		{
			name: "hand and meld share five copies",
			body: map[string]any{
				"hand":  []string{"W1", "T3", "T4", "B5", "B6", "B7", "S", "S", "N", "N"},
				"melds": []map[string]any{{"kind": "concealed_kong", "tiles": []string{"W1", "W1", "W1", "W1"}}},
			},
			code:    http.CodeRuleReject,
			message: "TOO_MANY_COPIES",
		},
	}
	// 超长请求不会因计数溢出被当作 13 张分析
	long := make([]string, 0, 269)
	for i := 0; i < 257; i++ {
		long = append(long, "W1")
	}
	long = append(long, "T2", "T3", "T4", "B5", "B6", "B7", "S", "S", "N", "N", "E", "E")
	tests = append(tests, struct {
		name    string
		body    map[string]any
		code    int
		message string
		tenpai  bool
		waits   []string
	}{name: "oversized request", body: map[string]any{"hand": long}, code: http.CodeRuleReject, message: "BAD_HAND_SIZE"})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, resp := call(t, h, nethttp.MethodPost, "/api/v1/tenpai", tt.body)
			if resp.Code != tt.code {
				t.Fatalf("code = %d, want %d (%+v)", resp.Code, tt.code, resp)
			}
			if tt.code != http.CodeSuccess {
				if resp.Message != tt.message {
					t.Fatalf("message = %q, want %q", resp.Message, tt.message)
				}
				return
			}
			var got struct {
				Tenpai bool     `json:"tenpai"`
				Waits  []string `json:"waits"`
			}
			decodeData(t, resp, &got)
			if got.Tenpai != tt.tenpai || len(got.Waits) != len(tt.waits) {
				t.Fatalf("got %+v, want tenpai=%v waits=%v", got, tt.tenpai, tt.waits)
			}
			for i := range got.Waits {
				if got.Waits[i] != tt.waits[i] {
					t.Fatalf("waits = %v, want %v", got.Waits, tt.waits)
				}
			}
		})
	}
}
