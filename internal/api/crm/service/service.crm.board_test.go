package crmvc

import (
	"context"
	"errors"
	"testing"

	crmdto "crm_pipeline/internal/api/crm/dto"
	crmmodels "crm_pipeline/internal/api/crm/models"
	"crm_pipeline/internal/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBoard(t *testing.T) (*fixture, *PipelineBoard) {
	t.Helper()
	f := newFixture(t)
	return f, NewPipelineBoard(f.service, f.contacts)
}

func columnStages(v crmdto.BoardView) []crmmodels.Stage {
	out := make([]crmmodels.Stage, len(v.Columns))
	for i, c := range v.Columns {
		out[i] = c.Stage
	}
	return out
}

func cardIDs(c crmdto.BoardColumn) []int64 {
	out := make([]int64, len(c.Deals))
	for i, d := range c.Deals {
		out[i] = d.ID
	}
	return out
}

func TestBoard_LoadGroupsByStage(t *testing.T) {
	f, board := newBoard(t)
	c := f.addContact(t, "Ada", "Lovelace")
	d1 := f.createDeal(t, "d1", c.ID, 1000, crmmodels.StageLead)
	d2 := f.createDeal(t, "d2", c.ID, 2000, crmmodels.StageClosed)
	d3 := f.createDeal(t, "d3", c.ID, 500, crmmodels.StageLead)
	won := f.insertRaw(t, crmmodels.CrmDeal{Name: "legacy", Stage: "Won", Value: crmmodels.MoneyFromInt(7)})
	f.insertRaw(t, crmmodels.CrmDeal{Name: "legacy2", Stage: "Lost", Value: crmmodels.MoneyFromInt(3)})

	require.NoError(t, board.Load(context.Background()))
	view := board.View()

	// 5 cột cố định, sau đó cột ngầm theo thứ tự xuất hiện (id giảm dần: Lost trước Won)
	assert.Equal(t, []crmmodels.Stage{
		crmmodels.StageLead, crmmodels.StageQualified, crmmodels.StageProposal,
		crmmodels.StageNegotiation, crmmodels.StageClosed, "Lost", "Won",
	}, columnStages(view))

	lead, ok := view.Column(crmmodels.StageLead)
	require.True(t, ok)
	assert.Equal(t, 2, lead.Count)
	assert.Equal(t, "1500", lead.TotalValue.String())
	assert.Equal(t, []int64{d3.ID, d1.ID}, cardIDs(lead), "giữ thứ tự của store")

	closed, _ := view.Column(crmmodels.StageClosed)
	assert.Equal(t, []int64{d2.ID}, cardIDs(closed))

	qualified, _ := view.Column(crmmodels.StageQualified)
	assert.Equal(t, 0, qualified.Count)
	assert.Empty(t, qualified.Deals)
	assert.True(t, qualified.TotalValue.IsZero())

	wonCol, _ := view.Column("Won")
	assert.True(t, wonCol.Implicit)
	assert.Equal(t, []int64{won.ID}, cardIDs(wonCol))

	assert.Equal(t, 5, view.TotalCount)
	assert.Equal(t, "3510", view.TotalValue.String())
}

func TestBoard_ContactNameJoinedAtRead(t *testing.T) {
	f, board := newBoard(t)
	c := f.addContact(t, "Ada", "Lovelace")
	f.insertRaw(t, crmmodels.CrmDeal{Name: "orphan", ContactId: 999, ContactName: "Old Snapshot", Stage: crmmodels.StageLead})
	f.insertRaw(t, crmmodels.CrmDeal{Name: "stale", ContactId: c.ID, ContactName: "Outdated", Stage: crmmodels.StageLead})

	require.NoError(t, board.Load(context.Background()))
	lead, _ := board.View().Column(crmmodels.StageLead)
	require.Len(t, lead.Deals, 2)
	assert.Equal(t, "Ada Lovelace", lead.Deals[0].ContactName, "join theo contactId")
	assert.Equal(t, "Old Snapshot", lead.Deals[1].ContactName, "không join được thì dùng snapshot")
}

func TestBoard_LoadFailureKeepsPreviousState(t *testing.T) {
	f, board := newBoard(t)
	c := f.addContact(t, "A", "B")
	f.createDeal(t, "d1", c.ID, 100, crmmodels.StageLead)
	require.NoError(t, board.Load(context.Background()))
	before := board.View()

	f.createDeal(t, "d2", c.ID, 100, crmmodels.StageLead)
	f.contacts.failFind = errors.New("network down")

	err := board.Load(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrStoreUnavailable))
	assert.Equal(t, before, board.View(), "lỗi một nguồn thì không áp dụng dữ liệu nào")

	f.contacts.failFind = nil
	require.NoError(t, board.Load(context.Background()))
	assert.Equal(t, 2, board.View().TotalCount)
}

func TestBoard_DropOnSameStageIsNoop(t *testing.T) {
	f, board := newBoard(t)
	c := f.addContact(t, "A", "B")
	deal := f.createDeal(t, "d", c.ID, 100, crmmodels.StageProposal)
	require.NoError(t, board.Load(context.Background()))
	before := board.View()

	require.NoError(t, board.BeginDrag(deal.ID))
	board.DragOver(crmmodels.StageProposal)
	moved, err := board.Drop(context.Background(), crmmodels.StageProposal)
	require.NoError(t, err)
	assert.Nil(t, moved)

	assert.Equal(t, 0, f.deals.Calls("update"), "không gọi store")
	assert.False(t, board.DragState().Active)
	stored, err := f.service.GetDeal(context.Background(), deal.ID)
	require.NoError(t, err)
	assert.Len(t, stored.History, 1)

	after := board.View()
	before.Drag = crmdto.DragState{}
	assert.Equal(t, before, after)
}

func TestBoard_DropWithoutDragIsNoop(t *testing.T) {
	f, board := newBoard(t)
	moved, err := board.Drop(context.Background(), crmmodels.StageClosed)
	require.NoError(t, err)
	assert.Nil(t, moved)
	assert.Equal(t, 0, f.deals.Calls("update"))
}

func TestBoard_DropMovesDealWithServerCopy(t *testing.T) {
	f, board := newBoard(t)
	c := f.addContact(t, "A", "B")
	d1 := f.createDeal(t, "d1", c.ID, 100, crmmodels.StageLead)
	d2 := f.createDeal(t, "d2", c.ID, 300, crmmodels.StageLead)
	require.NoError(t, board.Load(context.Background()))

	require.NoError(t, board.BeginDrag(d1.ID))
	board.DragOver(crmmodels.StageNegotiation)
	assert.Equal(t, crmdto.DragState{Active: true, DealId: d1.ID, OverStage: crmmodels.StageNegotiation}, board.DragState())
	board.DragLeave()
	assert.Equal(t, crmmodels.Stage(""), board.DragState().OverStage)

	moved, err := board.Drop(context.Background(), crmmodels.StageNegotiation)
	require.NoError(t, err)
	require.NotNil(t, moved)
	assert.Equal(t, 80, moved.Probability)
	assert.Equal(t, int64(2), moved.Version)
	assert.False(t, board.DragState().Active)

	view := board.View()
	lead, _ := view.Column(crmmodels.StageLead)
	neg, _ := view.Column(crmmodels.StageNegotiation)
	assert.Equal(t, []int64{d2.ID}, cardIDs(lead))
	require.Equal(t, []int64{d1.ID}, cardIDs(neg))
	assert.Equal(t, 80, neg.Deals[0].Probability)
	assert.Equal(t, "100", neg.TotalValue.String())

	local, ok := board.Deal(d1.ID)
	require.True(t, ok)
	assert.Equal(t, *moved, local)
}

func TestBoard_DropFailureLeavesBoardUnchanged(t *testing.T) {
	f, board := newBoard(t)
	c := f.addContact(t, "A", "B")
	deal := f.createDeal(t, "d", c.ID, 100, crmmodels.StageLead)
	require.NoError(t, board.Load(context.Background()))
	before := board.View()

	f.deals.failUpdate = common.StoreUnavailable(errors.New("timeout"))
	require.NoError(t, board.BeginDrag(deal.ID))
	moved, err := board.Drop(context.Background(), crmmodels.StageClosed)
	assert.Nil(t, moved)
	assert.True(t, errors.Is(err, common.ErrStoreUnavailable))
	assert.False(t, board.DragState().Active, "trạng thái kéo luôn được xóa")
	assert.Equal(t, before, board.View())
}

func TestBoard_BeginDragReplacesPrevious(t *testing.T) {
	f, board := newBoard(t)
	c := f.addContact(t, "A", "B")
	d1 := f.createDeal(t, "d1", c.ID, 100, crmmodels.StageLead)
	d2 := f.createDeal(t, "d2", c.ID, 100, crmmodels.StageLead)
	require.NoError(t, board.Load(context.Background()))

	require.NoError(t, board.BeginDrag(d1.ID))
	require.NoError(t, board.BeginDrag(d2.ID))
	assert.Equal(t, d2.ID, board.DragState().DealId)

	assert.True(t, errors.Is(board.BeginDrag(4242), common.ErrNotFound))
}

func TestBoard_MoveDeal(t *testing.T) {
	f, board := newBoard(t)
	c := f.addContact(t, "A", "B")
	deal := f.createDeal(t, "d", c.ID, 100, crmmodels.StageLead)
	require.NoError(t, board.Load(context.Background()))

	same, err := board.MoveDeal(context.Background(), deal.ID, crmmodels.StageLead)
	require.NoError(t, err)
	assert.Equal(t, deal.ID, same.ID)
	assert.Equal(t, 0, f.deals.Calls("update"))

	moved, err := board.MoveDeal(context.Background(), deal.ID, crmmodels.StageQualified)
	require.NoError(t, err)
	assert.Equal(t, 45, moved.Probability)
	q, _ := board.View().Column(crmmodels.StageQualified)
	assert.Equal(t, 1, q.Count)

	_, err = board.MoveDeal(context.Background(), 999, crmmodels.StageQualified)
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestBoard_CreateUpdateDeleteKeepInSync(t *testing.T) {
	ctx := context.Background()
	f, board := newBoard(t)
	c := f.addContact(t, "A", "B")
	old := f.createDeal(t, "old", c.ID, 100, crmmodels.StageLead)
	require.NoError(t, board.Load(ctx))

	created, err := board.CreateDeal(ctx, &crmdto.DealCreateInput{
		Name:              "new",
		ContactId:         c.ID,
		Value:             crmmodels.MoneyFromInt(50),
		ExpectedCloseDate: testNow.UnixMilli(),
	})
	require.NoError(t, err)
	lead, _ := board.View().Column(crmmodels.StageLead)
	assert.Equal(t, []int64{created.ID, old.ID}, cardIDs(lead))

	_, err = board.UpdateDeal(ctx, old.ID, &crmdto.DealPatch{Stage: stagePtr(crmmodels.StageClosed)})
	require.NoError(t, err)
	closed, _ := board.View().Column(crmmodels.StageClosed)
	assert.Equal(t, []int64{old.ID}, cardIDs(closed))

	require.NoError(t, board.DeleteDeal(ctx, created.ID))
	assert.Equal(t, 1, board.View().TotalCount)
	assert.True(t, errors.Is(board.DeleteDeal(ctx, created.ID), common.ErrNotFound))
}

func TestBoard_ConcurrentMovesOfDifferentDeals(t *testing.T) {
	ctx := context.Background()
	f, board := newBoard(t)
	c := f.addContact(t, "A", "B")
	var ids []int64
	for i := 0; i < 8; i++ {
		ids = append(ids, f.createDeal(t, "d", c.ID, 10, crmmodels.StageLead).ID)
	}
	require.NoError(t, board.Load(ctx))

	errs := make(chan error, len(ids))
	for _, id := range ids {
		go func(id int64) {
			_, err := board.MoveDeal(ctx, id, crmmodels.StageProposal)
			errs <- err
		}(id)
	}
	for range ids {
		require.NoError(t, <-errs)
	}
	p, _ := board.View().Column(crmmodels.StageProposal)
	assert.Equal(t, len(ids), p.Count)
	assert.Equal(t, "80", p.TotalValue.String())
}
