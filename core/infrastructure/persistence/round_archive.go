package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/NHFNHF/zhuanghe-majiang/common/database"
	"github.com/NHFNHF/zhuanghe-majiang/common/log"
	"github.com/NHFNHF/zhuanghe-majiang/core/domain/entity"
	"github.com/NHFNHF/zhuanghe-majiang/core/domain/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const roundRecordCollection = "round_records"

type MongoRoundArchive struct {
	mongo *database.MongoManager
}

func NewMongoRoundArchive(mongo *database.MongoManager) *MongoRoundArchive {
	return &MongoRoundArchive{mongo: mongo}
}

// EnsureIndexes 按桌号加局数查询
func (r *MongoRoundArchive) EnsureIndexes(ctx context.Context) error {
	_, err := r.mongo.Db.Collection(roundRecordCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "table_id", Value: 1}, {Key: "round_number", Value: 1}},
	})
	return err
}

func (r *MongoRoundArchive) SaveRoundRecord(ctx context.Context, record *entity.RoundRecord) error {
	if _, err := r.mongo.Db.Collection(roundRecordCollection).InsertOne(ctx, record); err != nil {
		log.Error("保存牌局记录失败 table=%s round=%d: %v", record.TableID, record.RoundNumber, err)
		return fmt.Errorf("%w: %v", repository.ErrStorage, err)
	}
	return nil
}

func (r *MongoRoundArchive) FindRoundRecords(ctx context.Context, tableID string) ([]*entity.RoundRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "round_number", Value: 1}})
	cursor, err := r.mongo.Db.Collection(roundRecordCollection).Find(ctx, bson.M{"table_id": tableID}, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", repository.ErrStorage, err)
	}
	defer cursor.Close(ctx)

	var records []*entity.RoundRecord
	if err := cursor.All(ctx, &records); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrRoundRecordNotFound
		}
		return nil, fmt.Errorf("%w: %v", repository.ErrStorage, err)
	}
	if len(records) == 0 {
		return nil, repository.ErrRoundRecordNotFound
	}
	return records, nil
}
