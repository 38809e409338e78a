// Package crmvc - Service bình luận trên deal (crm_deal_comments).
package crmvc

import (
	"context"
	"strings"
	"time"

	basesvc "crm_pipeline/internal/api/base/service"
	crmdto "crm_pipeline/internal/api/crm/dto"
	crmmodels "crm_pipeline/internal/api/crm/models"
	"crm_pipeline/internal/common"
	"crm_pipeline/internal/global"
)

// DefaultCommentAuthor tác giả khi không truyền
const DefaultCommentAuthor = "User"

// CommentService xử lý bình luận của deal.
type CommentService struct {
	comments basesvc.RecordStore[crmmodels.CrmDealComment]
	deals    basesvc.RecordStore[crmmodels.CrmDeal]
	now      func() time.Time
}

// NewCommentService tạo CommentService mới.
func NewCommentService(comments basesvc.RecordStore[crmmodels.CrmDealComment], deals basesvc.RecordStore[crmmodels.CrmDeal]) *CommentService {
	return &CommentService{comments: comments, deals: deals, now: time.Now}
}

// ListComments bình luận của deal, mới nhất trước.
func (s *CommentService) ListComments(ctx context.Context, dealId int64) ([]crmmodels.CrmDealComment, error) {
	if _, err := s.deals.FindOneById(ctx, dealId); err != nil {
		return nil, err
	}
	return s.comments.Find(ctx, basesvc.NewQuery().Where("dealId", dealId).OrderBy("commentDate", true))
}

// AddComment thêm bình luận vào deal.
func (s *CommentService) AddComment(ctx context.Context, dealId int64, input *crmdto.CommentCreateInput) (crmmodels.CrmDealComment, error) {
	in := crmdto.CommentCreateInput{}
	if input != nil {
		in = *input
	}
	in.Text = strings.TrimSpace(in.Text)
	in.Author = strings.TrimSpace(in.Author)
	if err := global.ValidateStruct(&in); err != nil {
		return crmmodels.CrmDealComment{}, err
	}
	if in.Author == "" {
		in.Author = DefaultCommentAuthor
	}
	if _, err := s.deals.FindOneById(ctx, dealId); err != nil {
		return crmmodels.CrmDealComment{}, err
	}
	return s.comments.InsertOne(ctx, crmmodels.CrmDealComment{
		DealId:      dealId,
		Text:        in.Text,
		Author:      in.Author,
		CommentDate: s.now().UnixMilli(),
	})
}

// DeleteComment xóa bình luận thuộc deal.
func (s *CommentService) DeleteComment(ctx context.Context, dealId, commentId int64) error {
	comment, err := s.comments.FindOneById(ctx, commentId)
	if err != nil {
		return err
	}
	if comment.DealId != dealId {
		return common.NotFoundf("bình luận %d không thuộc deal %d", commentId, dealId)
	}
	return s.comments.DeleteById(ctx, commentId)
}
