package crmvc

import (
	"testing"

	crmmodels "crm_pipeline/internal/api/crm/models"
	"crm_pipeline/internal/api/events"

	"github.com/stretchr/testify/assert"
)

func TestAuditDetails(t *testing.T) {
	deal := crmmodels.CrmDeal{ID: 3, Stage: crmmodels.StageProposal, Probability: 65, Version: 2}

	d := auditDetails(events.DataChangeEvent{CollectionName: "crm_deals", Operation: events.OpUpdate, Document: deal})
	assert.Equal(t, crmmodels.StageProposal, d["stage"])
	assert.Equal(t, 65, d["probability"])
	assert.Equal(t, int64(2), d["version"])

	d = auditDetails(events.DataChangeEvent{CollectionName: "crm_deals", Operation: events.OpUpdate, Document: &deal})
	assert.Equal(t, crmmodels.StageProposal, d["stage"])

	d = auditDetails(events.DataChangeEvent{CollectionName: "crm_deals", Operation: events.OpDelete})
	assert.Equal(t, map[string]interface{}{"operation": events.OpDelete}, d)

	d = auditDetails(events.DataChangeEvent{CollectionName: "crm_deal_comments", Operation: events.OpInsert,
		Document: crmmodels.CrmDealComment{DealId: 9}})
	assert.Equal(t, int64(9), d["dealId"])

	assert.NotNil(t, auditDetails(events.DataChangeEvent{CollectionName: "crm_contacts", Operation: events.OpInsert}))
	assert.Nil(t, auditDetails(events.DataChangeEvent{CollectionName: "orders", Operation: events.OpInsert}))
}
