package main

import (
	"crm_pipeline/config"
	"crm_pipeline/internal/database"
	"crm_pipeline/internal/global"
	"crm_pipeline/internal/logger"
)

// Hàm khởi tạo các biến toàn cục
func InitGlobal() {
	initValidator() // Khởi tạo validator
	initConfig()    // Khởi tạo cấu hình server
	if global.ServerConfig.StoreDriver == config.StoreDriverMongo {
		initDatabase_MongoDB() // Khởi tạo kết nối database
	}
}

// Hàm khởi tạo validator (đăng ký custom validators: no_xss, pipeline_stage, Money)
func initValidator() {
	global.InitValidator()
	logger.GetAppLogger().Info("Initialized validator")
}

// Hàm khởi tạo cấu hình server
func initConfig() {
	cfg, err := config.NewConfig()
	if err != nil {
		logger.GetAppLogger().Fatalf("Failed to initialize config: %v", err)
	}
	global.ServerConfig = cfg
	logger.GetAppLogger().WithField("storeDriver", cfg.StoreDriver).Info("Initialized server config")
}

// Hàm khởi tạo kết nối database
func initDatabase_MongoDB() {
	var err error
	global.MongoDB_Session, err = database.GetInstance(global.ServerConfig)
	if err != nil {
		logger.GetAppLogger().Fatalf("Failed to get database instance: %v", err)
	}
	logger.GetAppLogger().Info("Connected to MongoDB")
}
