// @title Brainer 后端 API
// @version 1.0
// @description Brainer 课程、章节、练习与学习进度服务。

// @host localhost:8000
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

//go:generate swag init -g main.go -o docs

package main

import (
	"brainer_backend/internal/app"
	"brainer_backend/internal/config"
	"brainer_backend/pkg/configwatcher"
	"brainer_backend/pkg/logger"
	"context"
	"flag"
	"log"

	"go.uber.org/zap"
)

func main() {
	// 命令行参数
	configDir := flag.String("config", "configs", "配置文件目录（包含 config.yaml）")
	migrateOnly := flag.Bool("migrate-only", false, "只执行数据库迁移，完成后退出")
	migrate := flag.Bool("migrate", false, "启动时强制执行数据库迁移（即使是 release 模式）")
	watch := flag.Bool("watch-config", true, "配置文件变更时热更新日志级别与 CORS")
	flag.Parse()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 设置迁移标志
	cfg.ForceMigrate = *migrate || *migrateOnly
	cfg.MigrateOnly = *migrateOnly

	application, err := app.NewApp(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer logger.Log.Sync()

	// 迁移完成后直接退出
	if *migrateOnly {
		logger.Log.Info("数据库迁移完成，退出程序")
		application.Close(context.Background())
		return
	}

	if *watch {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() {
			if err := configwatcher.WatchConfig(ctx, *configDir, application.ApplyConfig); err != nil {
				logger.Log.Warn("Config watcher disabled", zap.Error(err))
			}
		}()
	}

	application.Run()
}
