package models

import (
	"encoding/json"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// DealHistoryEntry một lần đổi giai đoạn của deal.
type DealHistoryEntry struct {
	ID            int    `json:"id" bson:"id"` // Tăng dần trong phạm vi deal, bắt đầu từ 1
	Stage         Stage  `json:"stage" bson:"stage"`
	PreviousStage Stage  `json:"previousStage" bson:"previousStage"`
	ChangedAt     int64  `json:"changedAt" bson:"changedAt"` // unix ms
	ChangedBy     string `json:"changedBy" bson:"changedBy"`
	Notes         string `json:"notes" bson:"notes"`
}

// DealHistory lịch sử giai đoạn, chỉ append.
//
// Dữ liệu cũ lưu lịch sử dạng chuỗi JSON nên khi đọc chấp nhận cả mảng lẫn chuỗi.
// Dữ liệu hỏng trả về lịch sử rỗng, không trả lỗi.
type DealHistory []DealHistoryEntry

// NextID id cho entry tiếp theo.
func (h DealHistory) NextID() int {
	maxID := 0
	for _, e := range h {
		if e.ID > maxID {
			maxID = e.ID
		}
	}
	return maxID + 1
}

// Clone sao chép để tránh chia sẻ backing array giữa các bản deal.
func (h DealHistory) Clone() DealHistory {
	if h == nil {
		return DealHistory{}
	}
	out := make(DealHistory, len(h))
	copy(out, h)
	return out
}

// ParseDealHistory parse chuỗi JSON lịch sử kiểu cũ. Chuỗi rỗng hoặc hỏng trả về rỗng.
func ParseDealHistory(raw string) DealHistory {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DealHistory{}
	}
	var entries []DealHistoryEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return DealHistory{}
	}
	if entries == nil {
		return DealHistory{}
	}
	return DealHistory(entries)
}

// MarshalJSON luôn xuất mảng, kể cả khi nil.
func (h DealHistory) MarshalJSON() ([]byte, error) {
	if h == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]DealHistoryEntry(h))
}

// UnmarshalJSON chấp nhận mảng hoặc chuỗi JSON (dữ liệu cũ).
func (h *DealHistory) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	switch {
	case strings.HasPrefix(trimmed, "["):
		var entries []DealHistoryEntry
		if err := json.Unmarshal(data, &entries); err != nil {
			*h = DealHistory{}
			return nil
		}
		*h = entries
	case strings.HasPrefix(trimmed, `"`):
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			*h = DealHistory{}
			return nil
		}
		*h = ParseDealHistory(raw)
	default:
		*h = DealHistory{}
	}
	if *h == nil {
		*h = DealHistory{}
	}
	return nil
}

// MarshalBSONValue lưu dạng mảng.
func (h DealHistory) MarshalBSONValue() (bsontype.Type, []byte, error) {
	entries := []DealHistoryEntry(h)
	if entries == nil {
		entries = []DealHistoryEntry{}
	}
	return bson.MarshalValue(entries)
}

// UnmarshalBSONValue đọc mảng hoặc chuỗi JSON cũ.
func (h *DealHistory) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}
	switch t {
	case bson.TypeArray:
		var entries []DealHistoryEntry
		if err := raw.Unmarshal(&entries); err != nil {
			*h = DealHistory{}
			return nil
		}
		if entries == nil {
			entries = []DealHistoryEntry{}
		}
		*h = entries
	case bson.TypeString:
		s, _ := raw.StringValueOK()
		*h = ParseDealHistory(s)
	default:
		*h = DealHistory{}
	}
	return nil
}
