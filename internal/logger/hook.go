package logger

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// AsyncHook ghi log bất đồng bộ qua một goroutine riêng để không block request handling.
// Hỗ trợ nhiều writers (file, stdout).
type AsyncHook struct {
	writers []io.Writer
	entries chan *logrus.Entry
	wg      sync.WaitGroup
	mu      sync.Mutex
	closed  bool
}

// NewAsyncHook tạo một async hook mới với nhiều writers
// bufferSize: kích thước buffer cho log entries (mặc định 1000)
func NewAsyncHook(writers []io.Writer, bufferSize int) *AsyncHook {
	if bufferSize <= 0 {
		bufferSize = 1000
	}

	hook := &AsyncHook{
		writers: writers,
		entries: make(chan *logrus.Entry, bufferSize),
	}

	hook.wg.Add(1)
	go hook.processEntries()

	return hook
}

// Levels trả về các log levels mà hook này xử lý
func (h *AsyncHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire không block: nếu channel đầy thì bỏ entry, nếu hook đã đóng thì ghi trực tiếp.
func (h *AsyncHook) Fire(entry *logrus.Entry) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		data, err := format(entry)
		if err != nil {
			return err
		}
		h.write(data)
		return nil
	}

	// Send không block nên giữ mu ở đây không ảnh hưởng, và tránh send vào channel đã đóng.
	select {
	case h.entries <- snapshot(entry):
	default:
	}
	return nil
}

// snapshot copy entry vì logrus dùng lại entry sau khi Fire trả về.
// Dup() không copy Level/Message/Caller nên phải gán lại.
func snapshot(entry *logrus.Entry) *logrus.Entry {
	cp := entry.Dup()
	cp.Level = entry.Level
	cp.Message = entry.Message
	cp.Caller = entry.Caller
	return cp
}

// processEntries xử lý log entries, có recover để goroutine logger không làm sập server
func (h *AsyncHook) processEntries() {
	defer h.wg.Done()

	for entry := range h.entries {
		func() {
			defer func() {
				if r := recover(); r != nil {
					// Không dùng logger ở đây vì sẽ tạo vòng lặp
					fmt.Fprintf(os.Stderr, "[LOGGER PANIC] %v\n", r)
				}
			}()

			data, err := format(entry)
			if err != nil {
				return
			}
			h.write(data)
		}()
	}
}

func (h *AsyncHook) write(data []byte) {
	for _, w := range h.writers {
		_, _ = w.Write(data)
	}
}

// Close đóng hook và đợi tất cả entries được xử lý xong
func (h *AsyncHook) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	h.mu.Unlock()

	close(h.entries)
	h.wg.Wait()
	return nil
}

func format(entry *logrus.Entry) ([]byte, error) {
	if entry.Logger != nil && entry.Logger.Formatter != nil {
		return entry.Logger.Formatter.Format(entry)
	}
	line, err := entry.String()
	if err != nil {
		return nil, err
	}
	return []byte(line), nil
}
