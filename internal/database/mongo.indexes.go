// Package database - kết nối MongoDB và tạo index từ struct tag `index` của model.
package database

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"crm_pipeline/internal/logger"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Cú pháp tag (các phần cách nhau bởi dấu phẩy):
//
//	single:1 | single:-1    index 1 field, giá trị là thứ tự
//	unique                  index unique (thêm "sparse" để bỏ qua document thiếu field)
//	compound:<tên>          field thuộc compound index <tên>, theo thứ tự khai báo field
//	text                    text index
func parseIndexTag(tag string) map[string]string {
	entry := map[string]string{}
	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kv := strings.SplitN(part, ":", 2)
		if len(kv) == 2 {
			entry[kv[0]] = kv[1]
		} else {
			entry[kv[0]] = ""
		}
	}
	return entry
}

func parseOrder(v string) int {
	if n, err := strconv.Atoi(v); err == nil && n < 0 {
		return -1
	}
	return 1
}

// BuildIndexModels đọc tag `index` của model, trả về danh sách index cần tạo (thứ tự ổn định theo tên).
func BuildIndexModels(model interface{}) []mongo.IndexModel {
	modelType := reflect.TypeOf(model)
	if modelType.Kind() == reflect.Ptr {
		modelType = modelType.Elem()
	}

	var models []mongo.IndexModel
	compoundKeys := map[string]bson.D{}
	var compoundNames []string

	for i := 0; i < modelType.NumField(); i++ {
		field := modelType.Field(i)
		tag, ok := field.Tag.Lookup("index")
		if !ok {
			continue
		}
		bsonField := strings.SplitN(field.Tag.Get("bson"), ",", 2)[0]
		if bsonField == "" || bsonField == "-" {
			continue
		}

		cfg := parseIndexTag(tag)
		if v, ok := cfg["single"]; ok {
			models = append(models, mongo.IndexModel{
				Keys:    bson.D{{Key: bsonField, Value: parseOrder(v)}},
				Options: options.Index().SetName(bsonField + "_single"),
			})
		}
		if _, ok := cfg["unique"]; ok {
			opts := options.Index().SetName(bsonField + "_unique").SetUnique(true)
			if _, sparse := cfg["sparse"]; sparse {
				opts.SetSparse(true)
			}
			models = append(models, mongo.IndexModel{
				Keys:    bson.D{{Key: bsonField, Value: 1}},
				Options: opts,
			})
		}
		if _, ok := cfg["text"]; ok {
			models = append(models, mongo.IndexModel{
				Keys:    bson.D{{Key: bsonField, Value: "text"}},
				Options: options.Index().SetName(bsonField + "_text"),
			})
		}
		if group, ok := cfg["compound"]; ok && group != "" {
			if _, seen := compoundKeys[group]; !seen {
				compoundNames = append(compoundNames, group)
			}
			compoundKeys[group] = append(compoundKeys[group], bson.E{Key: bsonField, Value: 1})
		}
	}

	for _, name := range compoundNames {
		models = append(models, mongo.IndexModel{
			Keys:    compoundKeys[name],
			Options: options.Index().SetName(name),
		})
	}

	sort.SliceStable(models, func(i, j int) bool {
		return *models[i].Options.Name < *models[j].Options.Name
	})
	return models
}

// CreateIndexes tạo các index khai báo trên model cho collection. Index đã tồn tại được bỏ qua.
func CreateIndexes(ctx context.Context, collection *mongo.Collection, model interface{}) error {
	for _, m := range BuildIndexModels(model) {
		if _, err := collection.Indexes().CreateOne(ctx, m); err != nil && !isIndexExistsError(err) {
			return fmt.Errorf("không thể tạo index %s trên %s: %w", *m.Options.Name, collection.Name(), err)
		}
		logger.GetAppLogger().WithFields(logrus.Fields{
			"collection": collection.Name(),
			"index":      *m.Options.Name,
		}).Debug("Index ensured")
	}
	return nil
}

func isIndexExistsError(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "already exists") || strings.Contains(s, "IndexOptionsConflict")
}
