package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/SlpAus/adventurer-progression-backend/api"
	"github.com/SlpAus/adventurer-progression-backend/internal/adventurer"
	"github.com/SlpAus/adventurer-progression-backend/internal/platform/config"
	"github.com/SlpAus/adventurer-progression-backend/internal/platform/database"
	"github.com/SlpAus/adventurer-progression-backend/internal/platform/health"
	"github.com/SlpAus/adventurer-progression-backend/internal/platform/shutdown"
	"github.com/SlpAus/adventurer-progression-backend/internal/platform/startup"
	"github.com/SlpAus/adventurer-progression-backend/pkg/lifecycle"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(fmt.Sprintf("无法加载配置: %v", err))
	}

	database.InitDB(cfg.Database.Sqlite)
	database.InitRedis(cfg.Database.Redis)

	// 1. 阻塞式获取初始Run ID
	health.InitializeRunID()

	// 2. 配置升级曲线并执行应用首次启动初始化流程
	adventurer.ConfigureModule(cfg.Progression)
	if err := startup.InitializeApplication(); err != nil {
		panic(fmt.Sprintf("应用初始化失败，无法启动: %v", err))
	}

	// 3. 阻塞式执行一次启动后健康检查
	fmt.Println("正在执行启动后健康检查...")
	health.PerformCheck()

	// 4. 异步启动后台的持续健康检查器
	go health.StartRedisHealthCheck()

	// 5. 创建两阶段停机的生命周期管理器，并启动后台服务
	gracefulManager := lifecycle.NewManager()
	forcefulManager := lifecycle.NewManager()

	processorGraceful, err := gracefulManager.NewServiceHandle("ranking-processor")
	if err != nil {
		panic(fmt.Sprintf("无法注册排行榜处理器: %v", err))
	}
	processorForceful, err := forcefulManager.NewServiceHandle("ranking-processor-drain")
	if err != nil {
		panic(fmt.Sprintf("无法注册排行榜处理器排空任务: %v", err))
	}
	go adventurer.StartProcessor(processorGraceful, processorForceful)

	resyncHandle, err := gracefulManager.NewServiceHandle("ranking-resync")
	if err != nil {
		panic(fmt.Sprintf("无法注册排行榜校准调度器: %v", err))
	}
	go adventurer.StartResyncScheduler(resyncHandle)

	// 6. 组装Gin引擎
	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.Cors.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api.SetupRoutes(r)

	// 7. 启动HTTP服务器，并交由停机协调器接管信号处理
	server := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: r,
	}

	go func() {
		fmt.Printf("服务器已准备就绪，开始监听 %s\n", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			panic("Failed to start server: " + err.Error())
		}
	}()

	coordinator := shutdown.NewCoordinator(gracefulManager, forcefulManager)
	coordinator.ListenForSignalsAndShutdown(server)
}
