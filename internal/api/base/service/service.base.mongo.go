package basesvc

import (
	"context"
	"errors"
	"fmt"

	basemodels "crm_pipeline/internal/api/base/models"
	"crm_pipeline/internal/api/events"
	"crm_pipeline/internal/common"
	"crm_pipeline/internal/logger"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore cài đặt RecordStore trên một collection MongoDB.
// ID số tăng dần được cấp qua collection counters ({_id: tên collection, seq}).
type MongoStore[T any] struct {
	collection *mongo.Collection
	counters   *mongo.Collection
	opts       storeOptions
}

// NewMongoStore tạo store cho collection, counters dùng chung cho mọi collection.
func NewMongoStore[T any](collection, counters *mongo.Collection, opts ...StoreOption) *MongoStore[T] {
	o := defaultStoreOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &MongoStore[T]{
		collection: collection,
		counters:   counters,
		opts:       o,
	}
}

// Name tên collection
func (s *MongoStore[T]) Name() string {
	return s.collection.Name()
}

// Collection trả về collection MongoDB
func (s *MongoStore[T]) Collection() *mongo.Collection {
	return s.collection
}

func (s *MongoStore[T]) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.opts.timeout)
}

// storeError chuyển lỗi driver sang lỗi hệ thống, log lại khi kho dữ liệu lỗi
func (s *MongoStore[T]) storeError(op string, err error) error {
	converted := common.ConvertMongoError(err)
	if errors.Is(converted, common.ErrStoreUnavailable) {
		logger.GetAppLogger().WithFields(logrus.Fields{
			"collection": s.collection.Name(),
			"op":         op,
		}).WithError(err).Error("MongoDB call failed")
	}
	return converted
}

// nextIDs giữ chỗ n id liên tiếp, trả về id đầu tiên
func (s *MongoStore[T]) nextIDs(ctx context.Context, n int) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := s.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": s.collection.Name()},
		bson.M{"$inc": bson.M{"seq": int64(n)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, s.storeError("nextIDs", err)
	}
	return counter.Seq - int64(n) + 1, nil
}

// findOptions chuyển Query sang options của driver
func findOptions(q *Query) *options.FindOptions {
	order := 1
	if q.sortDesc() {
		order = -1
	}
	sortDoc := bson.D{{Key: q.sortField(), Value: order}}
	if q.sortField() != "_id" {
		sortDoc = append(sortDoc, bson.E{Key: "_id", Value: -1})
	}
	opts := options.Find().SetSort(sortDoc)
	if q != nil && q.Limit > 0 {
		opts.SetLimit(q.Limit)
	}
	return opts
}

// filterDoc chuyển Query thành filter
func filterDoc(q *Query) bson.M {
	filter := bson.M{}
	if q == nil {
		return filter
	}
	for k, v := range q.Equals {
		filter[k] = v
	}
	return filter
}

// updateDoc tạo update document: $set (kèm updatedAt), $unset và luôn $inc version
func updateDoc(update *UpdateData, nowMs int64) bson.M {
	set := bson.M{}
	unset := bson.M{}
	if update != nil {
		for k, v := range setFields(update) {
			set[k] = v
		}
		for _, k := range update.Unset {
			if !systemFields[k] {
				unset[k] = ""
			}
		}
	}
	set["updatedAt"] = nowMs

	doc := bson.M{
		"$set": set,
		"$inc": bson.M{"version": int64(1)},
	}
	if len(unset) > 0 {
		doc["$unset"] = unset
	}
	return doc
}

// Find lấy danh sách theo query
func (s *MongoStore[T]) Find(ctx context.Context, q *Query) ([]T, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	cursor, err := s.collection.Find(ctx, filterDoc(q), findOptions(q))
	if err != nil {
		return nil, s.storeError("find", err)
	}
	defer cursor.Close(ctx)

	results := make([]T, 0)
	if err := cursor.All(ctx, &results); err != nil {
		return nil, s.storeError("find", err)
	}
	return results, nil
}

// FindOneById lấy theo id
func (s *MongoStore[T]) FindOneById(ctx context.Context, id int64) (T, error) {
	var zero T
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var result T
	if err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&result); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return zero, common.NotFoundf("%s: không tìm thấy bản ghi %d", s.collection.Name(), id)
		}
		return zero, s.storeError("findOneById", err)
	}
	return result, nil
}

// InsertOne tạo mới một bản ghi
func (s *MongoStore[T]) InsertOne(ctx context.Context, data T) (T, error) {
	var zero T
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	id, err := s.nextIDs(ctx, 1)
	if err != nil {
		return zero, err
	}
	doc, err := prepareInsertDoc(data, id, s.opts.now().UnixMilli())
	if err != nil {
		return zero, err
	}
	if _, err := s.collection.InsertOne(ctx, doc); err != nil {
		return zero, s.storeError("insertOne", err)
	}

	// Lấy lại document vừa tạo
	var created T
	if err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&created); err != nil {
		return zero, s.storeError("insertOne", err)
	}

	s.opts.emit(ctx, s.collection.Name(), events.OpInsert, id, created)
	return created, nil
}

// InsertMany tạo nhiều bản ghi với ordered=false, lỗi từng bản ghi được map về vị trí trong input
func (s *MongoStore[T]) InsertMany(ctx context.Context, data []T) (*basemodels.BatchResult[T], error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	result := basemodels.NewBatchResult[T](len(data))
	if len(data) == 0 {
		return result, nil
	}

	first, err := s.nextIDs(ctx, len(data))
	if err != nil {
		return nil, err
	}

	nowMs := s.opts.now().UnixMilli()
	docs := make([]interface{}, 0, len(data))
	docIndex := make([]int, 0, len(data)) // vị trí trong docs -> vị trí trong input
	ids := make(map[int]int64, len(data))
	for i, item := range data {
		id := first + int64(i)
		doc, err := prepareInsertDoc(item, id, nowMs)
		if err != nil {
			result.Fail(i, err.Error())
			continue
		}
		docs = append(docs, doc)
		docIndex = append(docIndex, i)
		ids[i] = id
		result.Succeed(i, id)
	}

	if len(docs) > 0 {
		_, err = s.collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
		if err != nil {
			var bwe mongo.BulkWriteException
			if !errors.As(err, &bwe) || len(bwe.WriteErrors) == 0 {
				return nil, s.storeError("insertMany", err)
			}
			for _, we := range bwe.WriteErrors {
				if we.Index < 0 || we.Index >= len(docIndex) {
					continue
				}
				result.Fail(docIndex[we.Index], writeErrorMessage(we.WriteError))
			}
		}
	}

	// Lấy lại các bản ghi đã tạo, giữ thứ tự input
	var insertedIDs []int64
	for i, res := range result.Results {
		if res.Success {
			insertedIDs = append(insertedIDs, ids[i])
		}
	}
	if len(insertedIDs) > 0 {
		cursor, err := s.collection.Find(ctx, bson.M{"_id": bson.M{"$in": insertedIDs}})
		if err != nil {
			return nil, s.storeError("insertMany", err)
		}
		var created []T
		if err := cursor.All(ctx, &created); err != nil {
			return nil, s.storeError("insertMany", err)
		}
		byID := make(map[int64]T, len(created))
		for _, item := range created {
			byID[events.GetInt64Field(item, "ID")] = item
		}
		for _, id := range insertedIDs {
			if item, ok := byID[id]; ok {
				result.Items = append(result.Items, item)
				s.opts.emit(ctx, s.collection.Name(), events.OpInsert, id, item)
			}
		}
	}

	result.Tally()
	if result.FailureCount > 0 {
		return result, common.PartialBatch(result.FailureMessages())
	}
	return result, nil
}

// writeErrorMessage thông báo đọc được cho lỗi ghi của một bản ghi
func writeErrorMessage(we mongo.WriteError) string {
	if we.Code == 11000 || we.Code == 11001 {
		return "Dữ liệu đã tồn tại"
	}
	return fmt.Sprintf("MongoDB error %d: %s", we.Code, we.Message)
}

// UpdateById cập nhật một phần bản ghi, expectedVersion > 0 thì chỉ cập nhật khi version khớp
func (s *MongoStore[T]) UpdateById(ctx context.Context, id int64, update *UpdateData, expectedVersion int64) (T, error) {
	var zero T
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	filter := bson.M{"_id": id}
	if expectedVersion > 0 {
		filter["version"] = expectedVersion
	}

	var updated T
	err := s.collection.FindOneAndUpdate(ctx, filter, updateDoc(update, s.opts.now().UnixMilli()),
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return zero, s.storeError("updateById", err)
		}
		if expectedVersion > 0 {
			// Phân biệt bản ghi không tồn tại với lệch version
			n, cerr := s.collection.CountDocuments(ctx, bson.M{"_id": id})
			if cerr != nil {
				return zero, s.storeError("updateById", cerr)
			}
			if n > 0 {
				return zero, common.ErrConflict
			}
		}
		return zero, common.NotFoundf("%s: không tìm thấy bản ghi %d", s.collection.Name(), id)
	}

	s.opts.emit(ctx, s.collection.Name(), events.OpUpdate, id, updated)
	return updated, nil
}

// DeleteById xóa vĩnh viễn
func (s *MongoStore[T]) DeleteById(ctx context.Context, id int64) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var existing T
	if err := s.collection.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&existing); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return common.NotFoundf("%s: không tìm thấy bản ghi %d", s.collection.Name(), id)
		}
		return s.storeError("deleteById", err)
	}

	s.opts.emit(ctx, s.collection.Name(), events.OpDelete, id, existing)
	return nil
}
