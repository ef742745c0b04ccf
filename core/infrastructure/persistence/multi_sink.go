package persistence

import (
	"context"
	"errors"

	"github.com/NHFNHF/zhuanghe-majiang/core/domain/entity"
	"github.com/NHFNHF/zhuanghe-majiang/core/domain/repository"
)

// MultiSink 归档、记分、广播依次执行，互不阻断，错误合并返回
type MultiSink struct {
	Archive   repository.RoundArchive
	Board     repository.ScoreBoard
	Publisher repository.ResultPublisher
}

func NewMultiSink(archive repository.RoundArchive, board repository.ScoreBoard, publisher repository.ResultPublisher) *MultiSink {
	return &MultiSink{Archive: archive, Board: board, Publisher: publisher}
}

func (s *MultiSink) HandleRound(ctx context.Context, record *entity.RoundRecord) error {
	var errs []error
	if s.Archive != nil {
		if err := s.Archive.SaveRoundRecord(ctx, record); err != nil {
			errs = append(errs, err)
		}
	}
	if s.Board != nil {
		if err := s.Board.Apply(ctx, record.TableID, record.Delta); err != nil {
			errs = append(errs, err)
		}
	}
	if s.Publisher != nil {
		if err := s.Publisher.Publish(ctx, record); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Empty 没有配置任何下游
func (s *MultiSink) Empty() bool {
	return s.Archive == nil && s.Board == nil && s.Publisher == nil
}
