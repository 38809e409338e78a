package main

import (
	"context"
	"time"

	"crm_pipeline/internal/api/initsvc"
	"crm_pipeline/internal/logger"
)

// InitDefaultData seed dữ liệu demo khi INITMODE=true. Lỗi seed không chặn khởi động.
func InitDefaultData(svc *initsvc.InitService) {
	log := logger.GetAppLogger()
	log.Info("[INIT] Starting InitDefaultData...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	seeded, err := svc.InitDemoData(ctx)
	if err != nil {
		log.WithError(err).Error("[INIT] Failed to initialize demo data")
		return
	}
	log.WithField("seeded", seeded).Info("[INIT] InitDefaultData completed")
}
