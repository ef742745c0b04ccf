package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/NHFNHF/zhuanghe-majiang/core/domain/entity"
	"github.com/NHFNHF/zhuanghe-majiang/runtime/game/engines/mahjong"
)

type fakeArchive struct {
	saved []*entity.RoundRecord
	err   error
}

func (f *fakeArchive) SaveRoundRecord(_ context.Context, r *entity.RoundRecord) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, r)
	return nil
}

func (f *fakeArchive) FindRoundRecords(_ context.Context, tableID string) ([]*entity.RoundRecord, error) {
	return f.saved, nil
}

type fakeBoard struct {
	totals map[string][mahjong.SeatCount]int
}

func (f *fakeBoard) Apply(_ context.Context, tableID string, delta [mahjong.SeatCount]int) error {
	cur := f.totals[tableID]
	for i := range cur {
		cur[i] += delta[i]
	}
	f.totals[tableID] = cur
	return nil
}

func (f *fakeBoard) Totals(_ context.Context, tableID string) ([mahjong.SeatCount]int, error) {
	return f.totals[tableID], nil
}

type fakePublisher struct{ err error }

func (f *fakePublisher) Publish(context.Context, *entity.RoundRecord) error { return f.err }

func settledRecord() *entity.RoundRecord {
	rec := entity.NewRoundRecord("t1", 1, 0)
	res := &mahjong.RoundResult{
		Kind:   mahjong.ResultWin,
		Winner: 0,
		Payments: []mahjong.Payment{
			{From: 1, To: 0, Amount: 10, Reason: mahjong.PayWin},
			{From: 2, To: 0, Amount: 10, Reason: mahjong.PayWin},
			{From: 3, To: 0, Amount: 20, Reason: mahjong.PayDealIn},
		},
	}
	rec.CompleteRound(res, [mahjong.SeatCount][]mahjong.Tile{}, res.Balances())
	return rec
}

func TestMultiSinkFansOut(t *testing.T) {
	archive := &fakeArchive{}
	board := &fakeBoard{totals: map[string][mahjong.SeatCount]int{}}
	sink := NewMultiSink(archive, board, &fakePublisher{})

	rec := settledRecord()
	if err := sink.HandleRound(context.Background(), rec); err != nil {
		t.Fatalf("HandleRound: %v", err)
	}
	if err := sink.HandleRound(context.Background(), rec); err != nil {
		t.Fatalf("HandleRound: %v", err)
	}
	if len(archive.saved) != 2 {
		t.Fatalf("saved = %d", len(archive.saved))
	}
	got, _ := board.Totals(context.Background(), "t1")
	if got != [mahjong.SeatCount]int{80, -20, -20, -40} {
		t.Fatalf("totals = %v", got)
	}
}

func TestMultiSinkJoinsErrors(t *testing.T) {
	errArchive := errors.New("archive down")
	errPublish := errors.New("nats down")
	board := &fakeBoard{totals: map[string][mahjong.SeatCount]int{}}
	sink := NewMultiSink(&fakeArchive{err: errArchive}, board, &fakePublisher{err: errPublish})

	err := sink.HandleRound(context.Background(), settledRecord())
	if !errors.Is(err, errArchive) || !errors.Is(err, errPublish) {
		t.Fatalf("err = %v", err)
	}
	// 归档失败不影响记分
	if got, _ := board.Totals(context.Background(), "t1"); got[0] != 40 {
		t.Fatalf("board not applied: %v", got)
	}
}

func TestMultiSinkEmpty(t *testing.T) {
	sink := NewMultiSink(nil, nil, nil)
	if !sink.Empty() {
		t.Fatalf("expected empty sink")
	}
	if err := sink.HandleRound(context.Background(), settledRecord()); err != nil {
		t.Fatalf("empty sink returned %v", err)
	}
}

func TestParseTotals(t *testing.T) {
	got := parseTotals(map[string]string{"0": "15", "2": "-5", "9": "3", "x": "1", "1": "bad"})
	if got != [mahjong.SeatCount]int{15, 0, -5, 0} {
		t.Fatalf("parseTotals = %v", got)
	}
	if balanceKey("abc") != "table:abc:balance" {
		t.Fatalf("key = %s", balanceKey("abc"))
	}
}
