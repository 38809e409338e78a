// Package models chứa các kiểu dùng chung cho layer repository/base (kết quả batch, truy vấn).
package models

import "strconv"

// BatchItemResult kết quả của một bản ghi trong thao tác nhiều bản ghi.
type BatchItemResult struct {
	// Vị trí của bản ghi trong input
	Index int `json:"index"`
	// ID được cấp (0 nếu thất bại)
	ID int64 `json:"id,omitempty"`
	// Thành công hay không
	Success bool `json:"success"`
	// Thông báo lỗi đọc được cho người dùng
	Message string `json:"message,omitempty"`
}

// BatchResult kết quả thao tác nhiều bản ghi.
type BatchResult[T any] struct {
	// Các bản ghi đã ghi thành công, theo thứ tự input
	Items []T `json:"items"`
	// Kết quả từng bản ghi, theo thứ tự input
	Results []BatchItemResult `json:"results"`
	// Số bản ghi thành công
	SuccessCount int `json:"successCount"`
	// Số bản ghi thất bại
	FailureCount int `json:"failureCount"`
}

// NewBatchResult tạo kết quả rỗng với n vị trí.
func NewBatchResult[T any](n int) *BatchResult[T] {
	results := make([]BatchItemResult, n)
	for i := range results {
		results[i].Index = i
	}
	return &BatchResult[T]{Items: []T{}, Results: results}
}

// Fail đánh dấu bản ghi tại index thất bại.
func (r *BatchResult[T]) Fail(index int, message string) {
	r.Results[index] = BatchItemResult{Index: index, Success: false, Message: message}
}

// Succeed đánh dấu bản ghi tại index thành công.
func (r *BatchResult[T]) Succeed(index int, id int64) {
	r.Results[index] = BatchItemResult{Index: index, ID: id, Success: true}
}

// Tally tính lại SuccessCount/FailureCount.
func (r *BatchResult[T]) Tally() {
	r.SuccessCount, r.FailureCount = 0, 0
	for _, res := range r.Results {
		if res.Success {
			r.SuccessCount++
		} else {
			r.FailureCount++
		}
	}
}

// FailureMessages thông báo lỗi của các bản ghi thất bại, dạng "#index: message".
func (r *BatchResult[T]) FailureMessages() []string {
	var msgs []string
	for _, res := range r.Results {
		if !res.Success {
			msgs = append(msgs, formatFailure(res))
		}
	}
	return msgs
}

func formatFailure(res BatchItemResult) string {
	msg := res.Message
	if msg == "" {
		msg = "không xác định"
	}
	return "#" + strconv.Itoa(res.Index) + ": " + msg
}
