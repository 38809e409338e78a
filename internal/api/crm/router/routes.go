// Package router đăng ký các route thuộc domain CRM: Deals, Pipeline board, Contacts, Activities, Comments.
package router

import (
	"fmt"

	crmhdl "crm_pipeline/internal/api/crm/handler"
	crmvc "crm_pipeline/internal/api/crm/service"
	apirouter "crm_pipeline/internal/api/router"

	"github.com/gofiber/fiber/v3"
)

// Services các service CRM đã khởi tạo sẵn (store do main chọn theo driver).
type Services struct {
	Deals      *crmvc.DealService
	Board      *crmvc.PipelineBoard
	Contacts   *crmvc.ContactService
	Activities *crmvc.ActivityService
	Comments   *crmvc.CommentService
}

// Routes trả về hàm đăng ký route CRM lên v1. middlewares áp dụng cho mọi route CRM.
func Routes(svc Services, middlewares ...fiber.Handler) apirouter.RegisterFunc {
	return func(v1 fiber.Router, r *apirouter.Router) error {
		if svc.Deals == nil || svc.Board == nil || svc.Contacts == nil || svc.Activities == nil || svc.Comments == nil {
			return fmt.Errorf("crm routes: thiếu service")
		}

		dealHandler := crmhdl.NewDealHandler(svc.Deals, svc.Board)
		commentHandler := crmhdl.NewCommentHandler(svc.Comments)
		deals := apirouter.NewGroup(v1, "/deals", middlewares...)
		deals.Get("/", dealHandler.List)
		deals.Post("/", dealHandler.Create)
		deals.Get("/:id", dealHandler.FindOneById)
		deals.Put("/:id", dealHandler.Update)
		deals.Delete("/:id", dealHandler.Delete)
		deals.Get("/:id/history", dealHandler.History)
		deals.Post("/:id/move", dealHandler.Move)
		deals.Get("/:id/comments", commentHandler.List)
		deals.Post("/:id/comments", commentHandler.Create)
		deals.Delete("/:id/comments/:commentId", commentHandler.Delete)

		boardHandler := crmhdl.NewBoardHandler(svc.Board)
		pipeline := apirouter.NewGroup(v1, "/pipeline", middlewares...)
		pipeline.Get("/board", boardHandler.View)
		pipeline.Post("/drag", boardHandler.BeginDrag)
		pipeline.Post("/drag/over", boardHandler.DragOver)
		pipeline.Post("/drag/leave", boardHandler.DragLeave)
		pipeline.Post("/drop", boardHandler.Drop)

		contactHandler := crmhdl.NewContactHandler(svc.Contacts)
		contacts := apirouter.NewGroup(v1, "/contacts", middlewares...)
		contacts.Get("/", contactHandler.List)
		contacts.Post("/", contactHandler.Create)
		contacts.Get("/:id", contactHandler.FindOneById)

		activityHandler := crmhdl.NewActivityHandler(svc.Activities)
		activities := apirouter.NewGroup(v1, "/activities", middlewares...)
		activities.Get("/", activityHandler.List)
		activities.Post("/", activityHandler.Create)
		activities.Post("/batch", activityHandler.Import)
		activities.Get("/:id", activityHandler.FindOneById)

		return nil
	}
}
