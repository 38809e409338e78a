// Package crmvc - Event handlers cho CRM (OnDataChanged).
// Hook ghi audit log cho mọi thay đổi trên các collection CRM.
package crmvc

import (
	"context"

	crmmodels "crm_pipeline/internal/api/crm/models"
	"crm_pipeline/internal/api/events"
	"crm_pipeline/internal/global"
	"crm_pipeline/internal/logger"
)

// RegisterHooks đăng ký handler audit vào bus. bus nil thì dùng bus mặc định.
func RegisterHooks(bus *events.Bus) {
	if bus == nil {
		bus = events.Default()
	}
	bus.OnDataChanged(handleCrmDataChange)
	bus.OnPanic(func(e events.DataChangeEvent, recovered interface{}) {
		logger.GetErrorLogger().WithField("collection", e.CollectionName).
			WithField("panic", recovered).Error("[CRM] Hook panic")
	})
}

// handleCrmDataChange ghi audit. Deal kèm giai đoạn và xác suất để theo dõi pipeline.
func handleCrmDataChange(ctx context.Context, e events.DataChangeEvent) {
	details := auditDetails(e)
	if details == nil {
		return
	}
	logger.LogCRUD(e.Operation, e.CollectionName, e.DocumentID, details)
}

// auditDetails trả về nil nếu collection không thuộc CRM
func auditDetails(e events.DataChangeEvent) map[string]interface{} {
	names := global.MongoDB_ColNames
	details := map[string]interface{}{"operation": e.Operation}

	switch e.CollectionName {
	case names.Deals:
		if deal, ok := toDeal(e.Document); ok {
			details["stage"] = deal.Stage
			details["probability"] = deal.Probability
			details["version"] = deal.Version
		}
	case names.DealComments:
		if c, ok := e.Document.(crmmodels.CrmDealComment); ok {
			details["dealId"] = c.DealId
		}
	case names.Activities:
		if a, ok := e.Document.(crmmodels.CrmActivity); ok {
			details["activityType"] = a.ActivityType
		}
	case names.Contacts:
	default:
		return nil
	}
	return details
}

func toDeal(doc interface{}) (crmmodels.CrmDeal, bool) {
	switch d := doc.(type) {
	case crmmodels.CrmDeal:
		return d, true
	case *crmmodels.CrmDeal:
		if d != nil {
			return *d, true
		}
	}
	return crmmodels.CrmDeal{}, false
}
