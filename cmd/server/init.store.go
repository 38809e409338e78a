package main

import (
	"fmt"
	"time"

	"crm_pipeline/config"
	basesvc "crm_pipeline/internal/api/base/service"
	crmmodels "crm_pipeline/internal/api/crm/models"
	"crm_pipeline/internal/global"
)

// appStores các store của ứng dụng, cài đặt theo STORE_DRIVER
type appStores struct {
	Deals      basesvc.RecordStore[crmmodels.CrmDeal]
	Contacts   basesvc.RecordStore[crmmodels.CrmContact]
	Activities basesvc.RecordStore[crmmodels.CrmActivity]
	Comments   basesvc.RecordStore[crmmodels.CrmDealComment]
}

// InitStores tạo store theo driver. Mongo cần InitRegistry chạy trước.
func InitStores(cfg *config.Configuration) (*appStores, error) {
	names := global.MongoDB_ColNames
	timeout := basesvc.WithTimeout(time.Duration(cfg.StoreTimeoutSeconds) * time.Second)

	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		return &appStores{
			Deals:      basesvc.NewMemoryStore[crmmodels.CrmDeal](names.Deals),
			Contacts:   basesvc.NewMemoryStore[crmmodels.CrmContact](names.Contacts, basesvc.WithUniqueFields("email")),
			Activities: basesvc.NewMemoryStore[crmmodels.CrmActivity](names.Activities),
			Comments:   basesvc.NewMemoryStore[crmmodels.CrmDealComment](names.DealComments),
		}, nil
	case config.StoreDriverMongo:
		counters, err := global.RegistryCollections.MustGet(names.Counters)
		if err != nil {
			return nil, err
		}
		deals, err := global.RegistryCollections.MustGet(names.Deals)
		if err != nil {
			return nil, err
		}
		contacts, err := global.RegistryCollections.MustGet(names.Contacts)
		if err != nil {
			return nil, err
		}
		activities, err := global.RegistryCollections.MustGet(names.Activities)
		if err != nil {
			return nil, err
		}
		comments, err := global.RegistryCollections.MustGet(names.DealComments)
		if err != nil {
			return nil, err
		}
		return &appStores{
			Deals:      basesvc.NewMongoStore[crmmodels.CrmDeal](deals, counters, timeout),
			Contacts:   basesvc.NewMongoStore[crmmodels.CrmContact](contacts, counters, timeout),
			Activities: basesvc.NewMongoStore[crmmodels.CrmActivity](activities, counters, timeout),
			Comments:   basesvc.NewMongoStore[crmmodels.CrmDealComment](comments, counters, timeout),
		}, nil
	default:
		return nil, fmt.Errorf("store driver không hỗ trợ: %s", cfg.StoreDriver)
	}
}
