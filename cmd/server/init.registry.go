package main

import (
	"context"
	"time"

	"crm_pipeline/config"
	crmmodels "crm_pipeline/internal/api/crm/models"
	"crm_pipeline/internal/database"
	"crm_pipeline/internal/global"
	"crm_pipeline/internal/logger"

	"go.mongodb.org/mongo-driver/mongo"
)

// InitRegistry đăng ký các collection và tạo index. Chỉ chạy với STORE_DRIVER=mongo.
func InitRegistry() {
	if global.MongoDB_Session == nil {
		return
	}
	log := logger.GetAppLogger()

	if err := InitCollections(global.MongoDB_Session, global.ServerConfig); err != nil {
		log.Fatalf("Failed to initialize collections: %v", err)
	}
	log.Info("Initialized collection registry")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := initIndexes(ctx); err != nil {
		log.Fatalf("Failed to create indexes: %v", err)
	}
	log.Info("Ensured indexes")
}

// InitCollections khởi tạo và đăng ký các collections MongoDB
func InitCollections(client *mongo.Client, cfg *config.Configuration) error {
	db := client.Database(cfg.MongoDB_DBName)
	names := global.MongoDB_ColNames
	colNames := []string{names.Deals, names.DealComments, names.Contacts, names.Activities, names.Counters}

	log := logger.GetAppLogger()
	for _, name := range colNames {
		registered, err := global.RegistryCollections.Register(name, db.Collection(name))
		if err != nil {
			log.Errorf("Failed to register collection %s: %v", name, err)
			return err
		}
		if registered {
			log.Debugf("Collection %s registered successfully", name)
		} else {
			log.Warnf("Collection %s already registered", name)
		}
	}
	return nil
}

// initIndexes tạo index khai báo bằng tag `index` trên model
func initIndexes(ctx context.Context) error {
	names := global.MongoDB_ColNames
	models := map[string]interface{}{
		names.Deals:        crmmodels.CrmDeal{},
		names.DealComments: crmmodels.CrmDealComment{},
		names.Contacts:     crmmodels.CrmContact{},
		names.Activities:   crmmodels.CrmActivity{},
	}
	for name, model := range models {
		col, err := global.RegistryCollections.MustGet(name)
		if err != nil {
			return err
		}
		if err := database.CreateIndexes(ctx, col, model); err != nil {
			return err
		}
	}
	return nil
}
