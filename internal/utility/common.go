package utility

import (
	"fmt"
	"time"
)

// GoProtect bọc hàm f, panic trong f được recover và trả về dạng error thay vì làm sập chương trình.
func GoProtect(f func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	f()
	return nil
}

// FromUnixMilli chuyển mili giây về time.Time theo múi giờ loc (nil = UTC).
func FromUnixMilli(ms int64, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.UnixMilli(ms).In(loc)
}
