package models

import (
	"fmt"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Money giá trị tiền tệ không âm, lưu Decimal128 trong MongoDB và số trong JSON.
type Money struct {
	decimal.Decimal
}

// NewMoney tạo Money từ số thực.
func NewMoney(v float64) Money {
	return Money{decimal.NewFromFloat(v)}
}

// MoneyFromInt tạo Money từ số nguyên.
func MoneyFromInt(v int64) Money {
	return Money{decimal.NewFromInt(v)}
}

// Add cộng hai giá trị.
func (m Money) Add(o Money) Money {
	return Money{m.Decimal.Add(o.Decimal)}
}

// MarshalJSON xuất dạng số, không có dấu nháy.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal.String()), nil
}

// UnmarshalJSON nhận cả số lẫn chuỗi số.
func (m *Money) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		m.Decimal = decimal.Zero
		return nil
	}
	return m.Decimal.UnmarshalJSON(data)
}

// MarshalBSONValue lưu dạng Decimal128.
func (m Money) MarshalBSONValue() (bsontype.Type, []byte, error) {
	d, err := primitive.ParseDecimal128(m.Decimal.String())
	if err != nil {
		return 0, nil, fmt.Errorf("money: %w", err)
	}
	return bson.MarshalValue(d)
}

// UnmarshalBSONValue đọc Decimal128, double, int hoặc chuỗi (dữ liệu cũ).
func (m *Money) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}
	switch t {
	case bson.TypeDecimal128:
		d, ok := raw.Decimal128OK()
		if !ok {
			return fmt.Errorf("money: invalid decimal128")
		}
		v, err := decimal.NewFromString(d.String())
		if err != nil {
			return fmt.Errorf("money: %w", err)
		}
		m.Decimal = v
	case bson.TypeDouble:
		m.Decimal = decimal.NewFromFloat(raw.Double())
	case bson.TypeInt32:
		m.Decimal = decimal.NewFromInt32(raw.Int32())
	case bson.TypeInt64:
		m.Decimal = decimal.NewFromInt(raw.Int64())
	case bson.TypeString:
		v, err := decimal.NewFromString(raw.StringValue())
		if err != nil {
			return fmt.Errorf("money: %w", err)
		}
		m.Decimal = v
	case bson.TypeNull, bson.TypeUndefined:
		m.Decimal = decimal.Zero
	default:
		return fmt.Errorf("money: cannot decode bson type %s", t)
	}
	return nil
}
