package crmvc

import (
	"context"
	"errors"
	"sync"

	basesvc "crm_pipeline/internal/api/base/service"
	crmdto "crm_pipeline/internal/api/crm/dto"
	crmmodels "crm_pipeline/internal/api/crm/models"
	"crm_pipeline/internal/common"
	"crm_pipeline/internal/logger"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// PipelineBoard giữ danh sách deal đã tải và trạng thái kéo thả, nhóm deal theo giai đoạn khi hiển thị.
//
// Board không tự sắp xếp: thứ tự trong mỗi cột là thứ tự store trả về.
// Lời gọi store không giữ lock, nên các thao tác trên deal khác nhau chạy song song được.
type PipelineBoard struct {
	deals    *DealService
	contacts basesvc.RecordStore[crmmodels.CrmContact]

	mu           sync.RWMutex
	items        []crmmodels.CrmDeal
	contactNames map[int64]string
	drag         crmdto.DragState
	loaded       bool
}

// NewPipelineBoard tạo board rỗng. contacts có thể nil (không join tên liên hệ).
func NewPipelineBoard(deals *DealService, contacts basesvc.RecordStore[crmmodels.CrmContact]) *PipelineBoard {
	return &PipelineBoard{
		deals:        deals,
		contacts:     contacts,
		contactNames: map[int64]string{},
	}
}

// Load tải đồng thời deal và liên hệ. Một trong hai lỗi thì cả lần tải lỗi (common.ErrStoreUnavailable)
// và board giữ nguyên dữ liệu cũ.
func (b *PipelineBoard) Load(ctx context.Context) error {
	var (
		deals    []crmmodels.CrmDeal
		contacts []crmmodels.CrmContact
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		deals, err = b.deals.ListDeals(gctx, nil)
		return err
	})
	if b.contacts != nil {
		g.Go(func() error {
			var err error
			contacts, err = b.contacts.Find(gctx, basesvc.NewQuery())
			return err
		})
	}
	if err := g.Wait(); err != nil {
		logger.GetAppLogger().WithError(err).Warn("Pipeline board load failed")
		if errors.Is(err, common.ErrStoreUnavailable) {
			return err
		}
		return common.StoreUnavailable(err)
	}

	names := make(map[int64]string, len(contacts))
	for _, c := range contacts {
		names[c.ID] = c.FullName()
	}

	b.mu.Lock()
	b.items = deals
	b.contactNames = names
	b.loaded = true
	b.mu.Unlock()

	logger.GetAppLogger().WithFields(logrus.Fields{
		"deals":    len(deals),
		"contacts": len(contacts),
	}).Debug("Pipeline board loaded")
	return nil
}

// Loaded đã tải thành công ít nhất một lần.
func (b *PipelineBoard) Loaded() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.loaded
}

// View nhóm deal theo giai đoạn: 5 cột cố định theo thứ tự, sau đó là các cột ngầm
// cho giai đoạn lạ theo thứ tự xuất hiện đầu tiên.
func (b *PipelineBoard) View() crmdto.BoardView {
	b.mu.RLock()
	defer b.mu.RUnlock()

	view := crmdto.BoardView{Drag: b.drag}
	index := map[crmmodels.Stage]int{}
	for _, cfg := range crmmodels.PipelineStages {
		index[cfg.Stage] = len(view.Columns)
		view.Columns = append(view.Columns, crmdto.BoardColumn{
			Stage: cfg.Stage,
			Title: cfg.Title,
			Deals: []crmdto.BoardCard{},
		})
	}

	for _, deal := range b.items {
		i, ok := index[deal.Stage]
		if !ok {
			i = len(view.Columns)
			index[deal.Stage] = i
			view.Columns = append(view.Columns, crmdto.BoardColumn{
				Stage:    deal.Stage,
				Title:    string(deal.Stage),
				Implicit: true,
				Deals:    []crmdto.BoardCard{},
			})
		}
		col := &view.Columns[i]
		col.Deals = append(col.Deals, b.cardLocked(deal))
		col.Count++
		col.TotalValue = col.TotalValue.Add(deal.Value)

		view.TotalCount++
		view.TotalValue = view.TotalValue.Add(deal.Value)
	}
	return view
}

// cardLocked tạo card, tên liên hệ join lúc đọc, không có thì dùng snapshot trên deal
func (b *PipelineBoard) cardLocked(deal crmmodels.CrmDeal) crmdto.BoardCard {
	contactName := deal.ContactName
	if name, ok := b.contactNames[deal.ContactId]; ok && name != "" {
		contactName = name
	}
	return crmdto.BoardCard{
		ID:                deal.ID,
		Name:              deal.Name,
		ContactId:         deal.ContactId,
		ContactName:       contactName,
		Value:             deal.Value,
		ExpectedCloseDate: deal.ExpectedCloseDate,
		Stage:             deal.Stage,
		Probability:       deal.Probability,
		Version:           deal.Version,
	}
}

// Deal lấy deal đang có trên board.
func (b *PipelineBoard) Deal(id int64) (crmmodels.CrmDeal, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	i := b.indexLocked(id)
	if i < 0 {
		return crmmodels.CrmDeal{}, false
	}
	return b.items[i], true
}

func (b *PipelineBoard) indexLocked(id int64) int {
	for i := range b.items {
		if b.items[i].ID == id {
			return i
		}
	}
	return -1
}

// BeginDrag đánh dấu deal đang được kéo, thay thế lần kéo trước nếu có.
func (b *PipelineBoard) BeginDrag(dealId int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.indexLocked(dealId) < 0 {
		return common.NotFoundf("deal %d không có trên board", dealId)
	}
	b.drag = crmdto.DragState{Active: true, DealId: dealId}
	return nil
}

// DragOver đặt cột đang được kéo qua.
func (b *PipelineBoard) DragOver(stage crmmodels.Stage) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.drag.Active {
		b.drag.OverStage = stage
	}
}

// DragLeave bỏ highlight cột.
func (b *PipelineBoard) DragLeave() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.drag.OverStage = ""
}

// DragState trạng thái kéo thả hiện tại.
func (b *PipelineBoard) DragState() crmdto.DragState {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.drag
}

// Drop thả deal đang kéo vào giai đoạn stage. Trạng thái kéo luôn được xóa.
//
// Trả về (nil, nil) khi không có deal đang kéo hoặc thả vào đúng giai đoạn hiện tại: không gọi store.
// Thành công thì deal trên board được thay bằng bản server trả về. Lỗi thì board giữ nguyên.
func (b *PipelineBoard) Drop(ctx context.Context, stage crmmodels.Stage) (*crmmodels.CrmDeal, error) {
	b.mu.Lock()
	drag := b.drag
	b.drag = crmdto.DragState{}
	if !drag.Active {
		b.mu.Unlock()
		return nil, nil
	}
	i := b.indexLocked(drag.DealId)
	if i < 0 {
		b.mu.Unlock()
		return nil, common.NotFoundf("deal %d không có trên board", drag.DealId)
	}
	if b.items[i].Stage == stage {
		b.mu.Unlock()
		return nil, nil
	}
	b.mu.Unlock()

	updated, err := b.deals.UpdateDealStage(ctx, drag.DealId, stage)
	if err != nil {
		logger.GetAppLogger().WithFields(logrus.Fields{
			"dealId": drag.DealId,
			"stage":  stage,
		}).WithError(err).Warn("Drop failed, board unchanged")
		return nil, err
	}
	b.replace(updated)
	return &updated, nil
}

// MoveDeal chuyển deal sang giai đoạn stage. Deal trên board đã ở stage thì trả về ngay, không gọi store.
func (b *PipelineBoard) MoveDeal(ctx context.Context, id int64, stage crmmodels.Stage) (crmmodels.CrmDeal, error) {
	if current, ok := b.Deal(id); ok && current.Stage == stage {
		return current, nil
	}
	updated, err := b.deals.UpdateDealStage(ctx, id, stage)
	if err != nil {
		return crmmodels.CrmDeal{}, err
	}
	b.replace(updated)
	return updated, nil
}

// CreateDeal tạo deal và thêm vào đầu board (thứ tự id giảm dần).
func (b *PipelineBoard) CreateDeal(ctx context.Context, input *crmdto.DealCreateInput) (crmmodels.CrmDeal, error) {
	created, err := b.deals.CreateDeal(ctx, input)
	if err != nil {
		return crmmodels.CrmDeal{}, err
	}
	b.mu.Lock()
	if b.indexLocked(created.ID) < 0 {
		b.items = append([]crmmodels.CrmDeal{created}, b.items...)
	}
	b.mu.Unlock()
	return created, nil
}

// UpdateDeal cập nhật deal và đồng bộ board.
func (b *PipelineBoard) UpdateDeal(ctx context.Context, id int64, patch *crmdto.DealPatch) (crmmodels.CrmDeal, error) {
	updated, err := b.deals.UpdateDeal(ctx, id, patch)
	if err != nil {
		return crmmodels.CrmDeal{}, err
	}
	b.replace(updated)
	return updated, nil
}

// DeleteDeal xóa deal và bỏ khỏi board.
func (b *PipelineBoard) DeleteDeal(ctx context.Context, id int64) error {
	if err := b.deals.DeleteDeal(ctx, id); err != nil {
		return err
	}
	b.mu.Lock()
	if i := b.indexLocked(id); i >= 0 {
		b.items = append(b.items[:i:i], b.items[i+1:]...)
	}
	if b.drag.DealId == id {
		b.drag = crmdto.DragState{}
	}
	b.mu.Unlock()
	return nil
}

// replace thay deal trên board bằng bản mới (giữ vị trí). Deal không có trên board thì bỏ qua.
func (b *PipelineBoard) replace(deal crmmodels.CrmDeal) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i := b.indexLocked(deal.ID); i >= 0 {
		b.items[i] = deal
	}
}
