package utility

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
)

// ToMap chuyển struct thành map qua BSON, key là tên bson của field.
// Giá trị đã ở dạng lưu trữ (vd: Money thành Decimal128), nên map có thể so sánh/ghi thẳng vào MongoDB.
func ToMap(s interface{}) (map[string]interface{}, error) {
	raw, err := bson.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("bson marshal failed: %w", err)
	}
	m := map[string]interface{}{}
	if err := bson.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("bson unmarshal failed: %w", err)
	}
	return m, nil
}

// FromMap giải mã map (dạng lưu trữ) về struct T.
func FromMap[T any](m map[string]interface{}) (T, error) {
	var out T
	raw, err := bson.Marshal(m)
	if err != nil {
		return out, fmt.Errorf("bson marshal failed: %w", err)
	}
	if err := bson.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("bson unmarshal failed: %w", err)
	}
	return out, nil
}

// ToStorageValue chuyển một giá trị bất kỳ về dạng lưu trữ BSON (như khi nằm trong document).
func ToStorageValue(v interface{}) (interface{}, error) {
	m, err := ToMap(bson.M{"v": v})
	if err != nil {
		return nil, err
	}
	return m["v"], nil
}
