package game

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/NHFNHF/zhuanghe-majiang/core/domain/entity"
	"github.com/NHFNHF/zhuanghe-majiang/runtime/game/engines/mahjong"
)

type recordingSink struct {
	records chan *entity.RoundRecord
	err     error
}

func newRecordingSink() *recordingSink {
	return &recordingSink{records: make(chan *entity.RoundRecord, 4)}
}

func (s *recordingSink) HandleRound(ctx context.Context, record *entity.RoundRecord) error {
	s.records <- record
	return s.err
}

func seeded(seed int64) TableOption {
	return WithRoundOptions(mahjong.WithRand(rand.New(rand.NewSource(seed))))
}

func mustDo(t *testing.T, table *Table, seat int, cmd mahjong.Command) {
	t.Helper()
	if err := table.Do(context.Background(), seat, cmd); err != nil {
		t.Fatalf("seat %d %s: %v", seat, cmd.Action, err)
	}
}

// playToExhaustion 摸什么打什么直到牌墙摸空，返回被接受的动作数
func playToExhaustion(t *testing.T, table *Table) int {
	t.Helper()
	ctx := context.Background()
	info, err := table.Info(ctx)
	if err != nil {
		t.Fatalf("Info: %v", err)
	}
	mustDo(t, table, info.Dealer, mahjong.Command{Action: mahjong.ActionPreRevealDone})
	accepted := 1

	for i := 0; i < 1000; i++ {
		info, err = table.Info(ctx)
		if err != nil {
			t.Fatalf("Info: %v", err)
		}
		if info.Stage == mahjong.StageSettle {
			return accepted
		}
		seat := info.Turn
		mustDo(t, table, seat, mahjong.Command{Action: mahjong.ActionDraw})
		accepted++
		if table.Stage() == mahjong.StageSettle {
			return accepted
		}

		view, err := table.View(ctx, seat)
		if err != nil {
			t.Fatalf("View: %v", err)
		}
		tile := view.Seats[seat].Hand[0]
		mustDo(t, table, seat, mahjong.Command{Action: mahjong.ActionDiscard, Tile: tile.String()})
		accepted++
		for other := 0; other < mahjong.SeatCount; other++ {
			if other == seat {
				continue
			}
			mustDo(t, table, other, mahjong.Command{Action: mahjong.ActionPass})
			accepted++
		}
	}
	t.Fatalf("round did not exhaust")
	return 0
}

func TestTableRoundLifecycle(t *testing.T) {
	sink := newRecordingSink()
	table, err := NewTable("t-1", 2, WithSink(sink), seeded(11))
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	defer table.Close()

	var (
		mu     sync.Mutex
		events []TableEvent
	)
	unsubscribe := table.Subscribe(func(ev TableEvent) {
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
	})
	defer unsubscribe()

	ctx := context.Background()
	if err := table.NextRound(ctx); !errors.Is(err, ErrRoundInProgress) {
		t.Fatalf("NextRound before settle = %v, want ErrRoundInProgress", err)
	}

	accepted := playToExhaustion(t, table)

	var record *entity.RoundRecord
	select {
	case record = <-sink.records:
	case <-time.After(2 * time.Second):
		t.Fatalf("sink was not called")
	}
	if record.TableID != "t-1" || record.RoundNumber != 1 || record.Dealer != 2 {
		t.Fatalf("unexpected record header %+v", record)
	}
	if record.Result == nil || record.Result.Kind != mahjong.ResultDraw || record.Result.NextDealer != 2 {
		t.Fatalf("unexpected result %+v", record.Result)
	}
	if len(record.Events) != accepted {
		t.Fatalf("record has %d events, want %d", len(record.Events), accepted)
	}
	if record.Delta != [mahjong.SeatCount]int{} || record.Totals != [mahjong.SeatCount]int{} {
		t.Fatalf("exhaustion moved money: %v %v", record.Delta, record.Totals)
	}
	for seat, hand := range record.Hands {
		if len(hand) == 0 {
			t.Fatalf("seat %d final hand missing", seat)
		}
	}

	mu.Lock()
	got := len(events)
	last := events[got-1]
	mu.Unlock()
	if got != accepted {
		t.Fatalf("listener saw %d events, want %d", got, accepted)
	}
	if last.Kind != EventSettled || last.Result == nil || last.Stage != mahjong.StageSettle {
		t.Fatalf("last event = %+v", last)
	}
	for seat, v := range last.Views {
		if v.Viewer != seat {
			t.Fatalf("view %d built for viewer %d", seat, v.Viewer)
		}
	}

	if err := table.NextRound(ctx); err != nil {
		t.Fatalf("NextRound: %v", err)
	}
	info, err := table.Info(ctx)
	if err != nil {
		t.Fatalf("Info: %v", err)
	}
	if info.RoundNumber != 2 || info.Dealer != 2 || info.Stage != mahjong.StagePreReveal {
		t.Fatalf("unexpected info after NextRound %+v", info)
	}
	mu.Lock()
	newRound := events[len(events)-1]
	mu.Unlock()
	if newRound.Kind != EventNewRound || newRound.RoundNumber != 2 {
		t.Fatalf("new round event = %+v", newRound)
	}
}

func TestTableRejectionIsNotRecorded(t *testing.T) {
	table, err := NewTable("t-2", 0, seeded(5))
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	defer table.Close()

	calls := 0
	table.Subscribe(func(TableEvent) { calls++ })

	err = table.Do(context.Background(), 0, mahjong.Command{Action: mahjong.ActionDiscard, Tile: "W1"})
	if !errors.Is(err, mahjong.ErrWrongStage) {
		t.Fatalf("err = %v, want ErrWrongStage", err)
	}
	var ae *mahjong.ActionError
	if !errors.As(err, &ae) || ae.Seat != 0 {
		t.Fatalf("err is not an ActionError for seat 0: %v", err)
	}
	if _, err := table.View(context.Background(), 9); !errors.Is(err, mahjong.ErrInvalidSeat) {
		t.Fatalf("View(9) = %v, want ErrInvalidSeat", err)
	}
	// 读一次信息保证前面的请求都已处理
	if _, err := table.Info(context.Background()); err != nil {
		t.Fatalf("Info: %v", err)
	}
	if calls != 0 {
		t.Fatalf("listener called %d times for rejected command", calls)
	}
}

func TestTableSinkErrorDoesNotBlock(t *testing.T) {
	sink := newRecordingSink()
	sink.err = errors.New("mongo down")
	table, err := NewTable("t-3", 1, WithSink(sink), WithSinkTimeout(time.Second), seeded(9))
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	defer table.Close()

	playToExhaustion(t, table)
	select {
	case <-sink.records:
	case <-time.After(2 * time.Second):
		t.Fatalf("sink was not called")
	}
	if err := table.NextRound(context.Background()); err != nil {
		t.Fatalf("NextRound after sink failure: %v", err)
	}
}

func TestTableClose(t *testing.T) {
	table, err := NewTable("t-4", 0)
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	table.Close()
	table.Close()

	if err := table.Do(context.Background(), 0, mahjong.Command{Action: mahjong.ActionPreRevealDone}); !errors.Is(err, ErrTableClosed) {
		t.Fatalf("Do after Close = %v, want ErrTableClosed", err)
	}
	if _, err := table.Info(context.Background()); !errors.Is(err, ErrTableClosed) {
		t.Fatalf("Info after Close = %v, want ErrTableClosed", err)
	}
}

func TestNewTableRejectsBadDealer(t *testing.T) {
	if _, err := NewTable("t-5", 4); !errors.Is(err, mahjong.ErrInvalidSeat) {
		t.Fatalf("err = %v, want ErrInvalidSeat", err)
	}
}
