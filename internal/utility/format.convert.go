package utility

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseID chuyển chuỗi id (path param) thành int64 dương.
func ParseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("id không hợp lệ: %q", s)
	}
	return id, nil
}

// ParseIntDefault parse số nguyên, chuỗi rỗng trả về def.
func ParseIntDefault(s string, def int) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("không phải số nguyên: %q", s)
	}
	return n, nil
}
