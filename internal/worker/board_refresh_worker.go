package worker

import (
	"context"
	"sync/atomic"
	"time"

	"crm_pipeline/internal/api/events"
	"crm_pipeline/internal/logger"
	"crm_pipeline/internal/utility"
)

// BoardLoader nguồn cần tải lại (PipelineBoard).
type BoardLoader interface {
	Load(ctx context.Context) error
}

// BoardRefreshWorker tải lại board khi dữ liệu deal hoặc liên hệ thay đổi ngoài board
// (ghi thẳng qua service, seed, liên hệ mới). Event chỉ đánh dấu dirty, việc tải lại gom theo interval.
// Event chỉ có trong process nên maxAge buộc tải lại định kỳ để thấy thay đổi từ instance khác.
type BoardRefreshWorker struct {
	board    BoardLoader
	interval time.Duration // Khoảng thời gian giữa các lần kiểm tra
	maxAge   time.Duration // 0 = chỉ tải lại khi dirty
	dirty    atomic.Bool
	lastLoad time.Time
	now      func() time.Time
}

// NewBoardRefreshWorker tạo mới BoardRefreshWorker.
// Tham số:
//   - interval: Khoảng thời gian giữa các lần kiểm tra (nhỏ hơn 1 giây thì dùng 15 giây)
//   - maxAge: Tuổi tối đa của dữ liệu board trước khi buộc tải lại (0 = tắt)
func NewBoardRefreshWorker(board BoardLoader, interval, maxAge time.Duration) *BoardRefreshWorker {
	if interval < time.Second {
		interval = 15 * time.Second
	}
	if maxAge < 0 {
		maxAge = 0
	}
	return &BoardRefreshWorker{board: board, interval: interval, maxAge: maxAge, now: time.Now, lastLoad: time.Now()}
}

// MarkDirty đánh dấu board cần tải lại ở lần chạy tới.
func (w *BoardRefreshWorker) MarkDirty() {
	w.dirty.Store(true)
}

// Dirty board có đang chờ tải lại không.
func (w *BoardRefreshWorker) Dirty() bool {
	return w.dirty.Load()
}

// Watch đăng ký vào bus: thay đổi trên các collection chỉ định thì đánh dấu dirty. bus nil thì dùng bus mặc định.
func (w *BoardRefreshWorker) Watch(bus *events.Bus, collections ...string) {
	if bus == nil {
		bus = events.Default()
	}
	watched := make(map[string]bool, len(collections))
	for _, c := range collections {
		watched[c] = true
	}
	bus.OnDataChanged(func(ctx context.Context, e events.DataChangeEvent) {
		if watched[e.CollectionName] {
			w.MarkDirty()
		}
	})
}

// RunOnce tải lại board nếu đang dirty hoặc dữ liệu quá maxAge. Lỗi thì giữ cờ dirty để thử lại lần sau.
// Chỉ gọi từ một goroutine (vòng lặp Start).
func (w *BoardRefreshWorker) RunOnce(ctx context.Context) (bool, error) {
	expired := w.maxAge > 0 && w.now().Sub(w.lastLoad) >= w.maxAge
	if !w.dirty.Swap(false) && !expired {
		return false, nil
	}
	if err := w.board.Load(ctx); err != nil {
		w.dirty.Store(true)
		return false, err
	}
	w.lastLoad = w.now()
	return true, nil
}

// Start chạy worker trong vòng lặp cho tới khi ctx bị hủy.
func (w *BoardRefreshWorker) Start(ctx context.Context) {
	log := logger.GetAppLogger()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	log.WithFields(map[string]interface{}{
		"interval": w.interval.String(),
		"maxAge":   w.maxAge.String(),
	}).Info("[BOARD_REFRESH] Starting Board Refresh Worker...")

	for {
		select {
		case <-ctx.Done():
			log.Info("[BOARD_REFRESH] Board Refresh Worker stopped")
			return
		case <-ticker.C:
			var (
				reloaded bool
				err      error
			)
			if perr := utility.GoProtect(func() { reloaded, err = w.RunOnce(ctx) }); perr != nil {
				w.MarkDirty()
				log.WithError(perr).Error("[BOARD_REFRESH] Panic khi tải lại board, sẽ thử lại ở lần chạy tiếp theo")
				continue
			}
			if err != nil {
				log.WithError(err).Warn("[BOARD_REFRESH] Tải lại board thất bại, giữ dữ liệu cũ")
				continue
			}
			if reloaded {
				log.Debug("[BOARD_REFRESH] Đã tải lại board")
			}
		}
	}
}
