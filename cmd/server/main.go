package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	crmrouter "crm_pipeline/internal/api/crm/router"
	crmvc "crm_pipeline/internal/api/crm/service"
	"crm_pipeline/internal/api/events"
	"crm_pipeline/internal/api/initsvc"
	reportrouter "crm_pipeline/internal/api/report/router"
	reportsvc "crm_pipeline/internal/api/report/service"
	"crm_pipeline/internal/database"
	"crm_pipeline/internal/global"
	"crm_pipeline/internal/logger"
	"crm_pipeline/internal/worker"

	"github.com/gofiber/fiber/v3"
)

// initLogger khởi tạo và cấu hình logger cho toàn bộ ứng dụng
func initLogger() {
	// Logger tự đọc biến môi trường LOG_* để cấu hình
	if err := logger.Init(nil); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	logger.GetAppLogger().Info("Logger system initialized successfully")
}

// Hàm main
func main() {
	initLogger()
	defer logger.Shutdown()

	// Khởi tạo các biến toàn cục, kết nối database, registry
	InitGlobal()
	InitRegistry()
	defer database.CloseInstance(global.MongoDB_Session)

	log := logger.GetAppLogger()
	cfg := global.ServerConfig

	stores, err := InitStores(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize stores: %v", err)
	}

	// Audit log cho mọi thay đổi dữ liệu CRM
	crmvc.RegisterHooks(events.Default())

	dealService := crmvc.NewDealService(stores.Deals, crmvc.WithContactStore(stores.Contacts))
	services := crmrouter.Services{
		Deals:      dealService,
		Board:      crmvc.NewPipelineBoard(dealService, stores.Contacts),
		Contacts:   crmvc.NewContactService(stores.Contacts),
		Activities: crmvc.NewActivityService(stores.Activities),
		Comments:   crmvc.NewCommentService(stores.Comments, stores.Deals),
	}

	loc, err := cfg.ReportLocation()
	if err != nil {
		log.Fatalf("Invalid report timezone: %v", err)
	}
	analytics := reportsvc.NewAnalyticsService(stores.Deals, stores.Activities,
		reportsvc.WithLocation(loc),
		reportsvc.WithDefaults(cfg.DefaultRangeDays, cfg.DefaultRevenueMonths))

	if cfg.InitMode {
		InitDefaultData(initsvc.NewInitService(services.Contacts, services.Board, services.Activities, services.Comments))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Board tải lần đầu, lỗi thì để request đầu tiên tải lại
	if err := services.Board.Load(ctx); err != nil {
		log.WithError(err).Warn("Initial board load failed")
	}
	refresher := worker.NewBoardRefreshWorker(services.Board,
		time.Duration(cfg.BoardRefreshSeconds)*time.Second,
		time.Duration(cfg.BoardMaxAgeSeconds)*time.Second)
	refresher.Watch(events.Default(), global.MongoDB_ColNames.Deals, global.MongoDB_ColNames.Contacts)
	go refresher.Start(ctx)

	app, err := InitFiberApp(cfg, crmrouter.Routes(services), reportrouter.Routes(analytics))
	if err != nil {
		log.Fatalf("Failed to setup routes: %v", err)
	}

	go func() {
		<-ctx.Done()
		log.Info("Shutting down server...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.WithError(err).Error("Server shutdown failed")
		}
	}()

	log.WithFields(map[string]interface{}{
		"address":  cfg.Address,
		"protocol": "HTTP",
	}).Info("Starting server with HTTP")
	if err := app.Listen(cfg.Address, fiber.ListenConfig{DisableStartupMessage: true}); err != nil {
		log.WithError(err).Error("Error in Fiber Listen")
	}
	log.Info("Server stopped")
}
