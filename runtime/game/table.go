package game

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/NHFNHF/zhuanghe-majiang/common/log"
	"github.com/NHFNHF/zhuanghe-majiang/core/domain/entity"
	"github.com/NHFNHF/zhuanghe-majiang/runtime/game/engines/mahjong"
)

var (
	ErrTableClosed     = errors.New("牌桌已关闭")
	ErrRoundInProgress = errors.New("本局尚未结算")
	ErrTableNotFound   = errors.New("牌桌不存在")
	ErrTooManyTables   = errors.New("牌桌数量已达上限")
	ErrManagerClosed   = errors.New("牌桌管理器已关闭")
)

const (
	defaultSinkTimeout  = 5 * time.Second
	defaultCommandQueue = 64
)

// RoundSink 结算后的牌局去向（归档、记分、广播），在独立 goroutine 中调用
type RoundSink interface {
	HandleRound(ctx context.Context, record *entity.RoundRecord) error
}

type EventKind string

const (
	EventAction   EventKind = "action"    // 动作被接受
	EventSettled  EventKind = "settled"   // 动作导致本局结算
	EventNewRound EventKind = "new_round" // 新开一局
)

// TableEvent 状态变化通知；Views 为四个座位各自的视图，在牌桌协程内生成
type TableEvent struct {
	Kind        EventKind
	TableID     string
	RoundNumber int
	Seat        int
	Command     *mahjong.Command
	Stage       mahjong.Stage
	Result      *mahjong.RoundResult
	Totals      [mahjong.SeatCount]int
	Views       [mahjong.SeatCount]mahjong.View
}

// Listener 在牌桌协程内同步调用，不能阻塞，也不能回调牌桌
type Listener func(TableEvent)

// TableInfo 牌桌概况
type TableInfo struct {
	ID            string                 `json:"id"`
	RoundNumber   int                    `json:"roundNumber"`
	Dealer        int                    `json:"dealer"`
	Stage         mahjong.Stage          `json:"stage"`
	Turn          int                    `json:"turn"`
	WallRemaining int                    `json:"wallRemaining"`
	Totals        [mahjong.SeatCount]int `json:"totals"`
	CreatedAt     time.Time              `json:"createdAt"`
}

type tableOptions struct {
	rules       mahjong.Rules
	analyzer    *mahjong.Analyzer
	sink        RoundSink
	sinkTimeout time.Duration
	queueSize   int
	roundOpts   []mahjong.Option
}

type TableOption func(*tableOptions)

func WithRules(rules mahjong.Rules) TableOption {
	return func(o *tableOptions) { o.rules = rules }
}

func WithAnalyzer(a *mahjong.Analyzer) TableOption {
	return func(o *tableOptions) { o.analyzer = a }
}

func WithSink(sink RoundSink) TableOption {
	return func(o *tableOptions) { o.sink = sink }
}

func WithSinkTimeout(d time.Duration) TableOption {
	return func(o *tableOptions) {
		if d > 0 {
			o.sinkTimeout = d
		}
	}
}

func WithCommandBuffer(n int) TableOption {
	return func(o *tableOptions) {
		if n > 0 {
			o.queueSize = n
		}
	}
}

// WithRoundOptions 每一局额外的构造参数，测试里用来固定随机源
func WithRoundOptions(opts ...mahjong.Option) TableOption {
	return func(o *tableOptions) { o.roundOpts = append(o.roundOpts, opts...) }
}

// Table 一张牌桌：一个协程串行处理所有请求，牌局从不被并发访问
type Table struct {
	ID        string
	CreatedAt time.Time

	opts    tableOptions
	jobs    chan func()
	closeCh chan struct{}
	doneCh  chan struct{}
	once    sync.Once
	sinkWG  sync.WaitGroup

	// 只在牌桌协程中读写
	round  *mahjong.Round
	record *entity.RoundRecord
	totals [mahjong.SeatCount]int

	// 供外部无锁读取
	roundNumber atomic.Int64
	stage       atomic.Int32

	lmu          sync.RWMutex
	listeners    map[int]Listener
	nextListener int
}

// NewTable 创建牌桌并开第一局
func NewTable(id string, dealer int, opts ...TableOption) (*Table, error) {
	o := tableOptions{
		rules:       mahjong.DefaultRules(),
		sinkTimeout: defaultSinkTimeout,
		queueSize:   defaultCommandQueue,
	}
	for _, opt := range opts {
		opt(&o)
	}
	t := &Table{
		ID:        id,
		CreatedAt: time.Now(),
		opts:      o,
		jobs:      make(chan func(), o.queueSize),
		closeCh:   make(chan struct{}),
		doneCh:    make(chan struct{}),
		listeners: make(map[int]Listener),
	}
	if err := t.startRound(dealer); err != nil {
		return nil, err
	}
	go t.loop()
	log.Info("Table[%s] 创建成功，庄家: %d", id, dealer)
	return t, nil
}

func (t *Table) loop() {
	defer close(t.doneCh)
	for {
		select {
		case job := <-t.jobs:
			job()
		case <-t.closeCh:
			return
		}
	}
}

// exec 把 fn 投递到牌桌协程并等待执行完
func (t *Table) exec(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	job := func() {
		fn()
		close(done)
	}
	select {
	case t.jobs <- job:
	case <-t.closeCh:
		return ErrTableClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-done:
		return nil
	case <-t.doneCh:
		return ErrTableClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Do 以 seat 的身份执行一个动作，规则拒绝时返回 *mahjong.ActionError
func (t *Table) Do(ctx context.Context, seat int, cmd mahjong.Command) error {
	var applyErr error
	if err := t.exec(ctx, func() { applyErr = t.apply(seat, cmd) }); err != nil {
		return err
	}
	return applyErr
}

func (t *Table) View(ctx context.Context, seat int) (mahjong.View, error) {
	var (
		view    mahjong.View
		viewErr error
	)
	if err := t.exec(ctx, func() { view, viewErr = t.round.View(seat) }); err != nil {
		return mahjong.View{}, err
	}
	return view, viewErr
}

func (t *Table) Info(ctx context.Context) (TableInfo, error) {
	var info TableInfo
	err := t.exec(ctx, func() {
		info = TableInfo{
			ID:            t.ID,
			RoundNumber:   int(t.roundNumber.Load()),
			Dealer:        t.round.Dealer(),
			Stage:         t.round.Stage(),
			Turn:          t.round.Turn(),
			WallRemaining: t.round.WallRemaining(),
			Totals:        t.totals,
			CreatedAt:     t.CreatedAt,
		}
	})
	return info, err
}

// NextRound 本局结算后以连庄/下庄结果开下一局
func (t *Table) NextRound(ctx context.Context) error {
	var roundErr error
	err := t.exec(ctx, func() {
		if t.round.Stage() != mahjong.StageSettle {
			roundErr = ErrRoundInProgress
			return
		}
		next := t.round.Result().NextDealer
		if roundErr = t.startRound(next); roundErr != nil {
			return
		}
		t.emit(t.event(EventNewRound, -1, nil))
	})
	if err != nil {
		return err
	}
	return roundErr
}

// Subscribe 返回取消订阅函数
func (t *Table) Subscribe(l Listener) func() {
	t.lmu.Lock()
	id := t.nextListener
	t.nextListener++
	t.listeners[id] = l
	t.lmu.Unlock()
	return func() {
		t.lmu.Lock()
		delete(t.listeners, id)
		t.lmu.Unlock()
	}
}

func (t *Table) RoundNumber() int { return int(t.roundNumber.Load()) }

func (t *Table) Stage() mahjong.Stage { return mahjong.Stage(t.stage.Load()) }

// Close 停止牌桌协程并等待未完成的结算下游，可重复调用
func (t *Table) Close() {
	t.once.Do(func() {
		close(t.closeCh)
		<-t.doneCh
		t.sinkWG.Wait()
		log.Info("Table[%s] 已关闭", t.ID)
	})
}

func (t *Table) startRound(dealer int) error {
	opts := []mahjong.Option{mahjong.WithRules(t.opts.rules)}
	if t.opts.analyzer != nil {
		opts = append(opts, mahjong.WithAnalyzer(t.opts.analyzer))
	}
	opts = append(opts, t.opts.roundOpts...)
	round, err := mahjong.NewRound(dealer, opts...)
	if err != nil {
		return fmt.Errorf("开局失败: %w", err)
	}
	number := int(t.roundNumber.Add(1))
	t.round = round
	t.record = entity.NewRoundRecord(t.ID, number, dealer)
	t.stage.Store(int32(round.Stage()))
	return nil
}

func (t *Table) apply(seat int, cmd mahjong.Command) error {
	if err := t.round.Apply(seat, cmd); err != nil {
		log.Debug("Table[%s] 座位 %d 动作 %s 被拒绝: %v", t.ID, seat, cmd.Action, err)
		return err
	}
	t.record.AddEvent(seat, cmd)
	t.stage.Store(int32(t.round.Stage()))

	kind := EventAction
	if t.round.Stage() == mahjong.StageSettle {
		kind = EventSettled
		t.settle()
	}
	t.emit(t.event(kind, seat, &cmd))
	return nil
}

// settle 累计输赢并异步交给下游，下游失败只记日志
func (t *Table) settle() {
	result := t.round.Result()
	delta := result.Balances()
	for seat := range t.totals {
		t.totals[seat] += delta[seat]
	}
	var hands [mahjong.SeatCount][]mahjong.Tile
	for seat := range hands {
		hands[seat] = t.round.Hand(seat)
	}
	record := t.record
	record.CompleteRound(result, hands, t.totals)
	log.Info("Table[%s] 第 %d 局结算: %s，输赢 %v", t.ID, record.RoundNumber, result.Kind, delta)

	if t.opts.sink == nil {
		return
	}
	t.sinkWG.Add(1)
	go func() {
		defer t.sinkWG.Done()
		ctx, cancel := context.WithTimeout(context.Background(), t.opts.sinkTimeout)
		defer cancel()
		if err := t.opts.sink.HandleRound(ctx, record); err != nil {
			log.Error("Table[%s] 第 %d 局结果写入下游失败: %v", t.ID, record.RoundNumber, err)
		}
	}()
}

func (t *Table) event(kind EventKind, seat int, cmd *mahjong.Command) TableEvent {
	ev := TableEvent{
		Kind:        kind,
		TableID:     t.ID,
		RoundNumber: int(t.roundNumber.Load()),
		Seat:        seat,
		Command:     cmd,
		Stage:       t.round.Stage(),
		Result:      t.round.Result(),
		Totals:      t.totals,
	}
	for seat := range ev.Views {
		ev.Views[seat], _ = t.round.View(seat)
	}
	return ev
}

func (t *Table) emit(ev TableEvent) {
	t.lmu.RLock()
	defer t.lmu.RUnlock()
	for _, l := range t.listeners {
		l(ev)
	}
}
