package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	internalApp "github.com/haierkeys/watermelon-notes/internal/app"
	"github.com/haierkeys/watermelon-notes/internal/dao"
	"github.com/haierkeys/watermelon-notes/internal/routers"
	"github.com/haierkeys/watermelon-notes/internal/task"
	"github.com/haierkeys/watermelon-notes/internal/upgrade"
	pkgapp "github.com/haierkeys/watermelon-notes/pkg/app"
	"github.com/haierkeys/watermelon-notes/pkg/code"
	"github.com/haierkeys/watermelon-notes/pkg/logger"
	"github.com/haierkeys/watermelon-notes/pkg/safe_close"
	"github.com/haierkeys/watermelon-notes/pkg/storage"

	"github.com/charmbracelet/lipgloss"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DefaultShutdownTimeout default shutdown timeout duration
// DefaultShutdownTimeout 默认关闭超时时间
const DefaultShutdownTimeout = 30 * time.Second

type Server struct {
	logger            *zap.Logger            // Logger // 日志对象
	config            *internalApp.AppConfig // App configuration (injected dependency) // 应用配置（注入的依赖）
	db                *gorm.DB               // Database connection // 数据库连接
	validator         *pkgapp.Validator
	httpServer        *http.Server
	privateHttpServer *http.Server
	sc                *safe_close.SafeClose
	app               *internalApp.App // App Container
	tasks             *task.Manager
	unsubscribe       func()
}

var bannerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#2BB673"))

const banner = `
 _       __      __                            __
| |     / /___ _/ /____  _________ ___  ___  / /___  ____
| | /| / / __ '/ __/ _ \/ ___/ __ '__ \/ _ \/ / __ \/ __ \
| |/ |/ / /_/ / /_/  __/ /  / / / / / /  __/ / /_/ / / / /
|__/|__/\__,_/\__/\___/_/  /_/ /_/ /_/\___/_/\____/_/ /_/ `

func NewServer(runEnv *runFlags) (*Server, error) {

	// Use LoadConfig to directly load config into AppConfig
	// 使用 LoadConfig 直接加载配置到 AppConfig
	appConfig, configRealpath, err := internalApp.LoadConfig(runEnv.config)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Determine run mode
	// 确定运行模式
	runMode := runEnv.runMode
	if len(runMode) <= 0 {
		runMode = appConfig.Server.RunMode
	}
	if len(runMode) > 0 {
		gin.SetMode(runMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	appConfig.Server.RunMode = gin.Mode()

	if len(runEnv.port) > 0 {
		appConfig.Server.HttpPort = ":" + runEnv.port
	}

	s := &Server{
		config: appConfig,
		sc:     safe_close.NewSafeClose(),
	}

	// Initialize logger (using injected config)
	// 初始化日志器（使用注入的配置）
	lg, err := logger.NewLogger(appConfig.LoggerConfig())
	if err != nil {
		return nil, fmt.Errorf("initLogger: %w", err)
	}
	s.logger = lg

	if err := code.SetGlobalDefaultLang(appConfig.App.Language); err != nil {
		s.logger.Warn("config app.language", zap.String("language", appConfig.App.Language), zap.Error(err))
	}

	// Initialize storage directory (using injected config)
	// 初始化存储目录（使用注入的配置）
	if err := initStorageWithConfig(appConfig); err != nil {
		return nil, fmt.Errorf("initStorage: %w", err)
	}

	db, err := dao.NewDBEngineWithConfig(appConfig.DaoConfig(), s.logger)
	if err != nil {
		return nil, fmt.Errorf("initDatabase: %w", err)
	}
	s.db = db

	// Initialize App Container (using AppConfig directly)
	// 初始化 App Container（直接使用 AppConfig）
	app, err := internalApp.NewApp(appConfig, s.logger, db)
	if err != nil {
		return nil, fmt.Errorf("failed to create app container: %w", err)
	}
	s.app = app

	// Auto-execute migration tasks
	// 自动执行升级任务
	if err := upgrade.Execute(context.Background(), app.Dao, s.logger, internalApp.Version); err != nil {
		_ = app.Shutdown(context.Background())
		return nil, fmt.Errorf("upgrade.Execute: %w", err)
	}

	if _, err := app.Start(context.Background()); err != nil {
		_ = app.Shutdown(context.Background())
		return nil, fmt.Errorf("failed to load notes: %w", err)
	}

	s.validator, err = pkgapp.NewValidator()
	if err != nil {
		_ = app.Shutdown(context.Background())
		return nil, fmt.Errorf("initValidator: %w", err)
	}

	// Start scheduler
	// 启动调度器
	s.tasks = task.NewManager(s.logger, s.app)
	if err := s.tasks.RegisterTasks(); err != nil {
		s.logger.Error("failed to register tasks", zap.Error(err))
	} else {
		s.tasks.Start(context.Background())
	}

	fmt.Fprintln(os.Stderr, bannerStyle.Render(banner))
	s.logger.Warn(fmt.Sprintf("%s v%s\nGit: %s\nBuildTime: %s\n", internalApp.Name, internalApp.Version, internalApp.GitTag, internalApp.BuildTime))
	s.logger.Warn("config loaded", zap.String("path", configRealpath))

	var listeners sync.WaitGroup

	// Start HTTP API server
	// 启动 HTTP API 服务器
	if httpAddr := appConfig.Server.HttpPort; len(httpAddr) > 0 {
		s.logger.Warn("api_router", zap.String("config.server.HttpPort", appConfig.Server.HttpPort))
		handler, unsubscribe := routers.NewRouter(s.app, s.validator)
		s.unsubscribe = unsubscribe
		s.httpServer = &http.Server{
			Addr:           httpAddr,
			Handler:        handler,
			ReadTimeout:    time.Duration(appConfig.Server.ReadTimeout) * time.Second,
			WriteTimeout:   time.Duration(appConfig.Server.WriteTimeout) * time.Second,
			MaxHeaderBytes: 1 << 20,
		}
		listeners.Add(1)
		s.sc.Attach(func(closeSignal <-chan struct{}) error {
			defer listeners.Done()
			return s.serve(s.httpServer, "api service", closeSignal)
		})
	}

	if httpAddr := appConfig.Server.PrivateHttpListen; len(httpAddr) > 0 {
		s.logger.Info("api_router", zap.String("config.server.PrivateHttpListen", appConfig.Server.PrivateHttpListen))
		s.privateHttpServer = &http.Server{
			Addr:           httpAddr,
			Handler:        routers.NewPrivateRouter(appConfig.Server.RunMode, s.logger),
			ReadTimeout:    time.Duration(appConfig.Server.ReadTimeout) * time.Second,
			WriteTimeout:   time.Duration(appConfig.Server.WriteTimeout) * time.Second,
			MaxHeaderBytes: 1 << 20,
		}
		listeners.Add(1)
		s.sc.Attach(func(closeSignal <-chan struct{}) error {
			defer listeners.Done()
			return s.serve(s.privateHttpServer, "private api service", closeSignal)
		})
	}

	// Shutdown order: listeners -> scheduler -> event broadcaster -> App Container (final flush)
	// 关闭顺序：监听服务 -> 调度器 -> 事件广播 -> App Container（最终保存）
	s.sc.Attach(func(closeSignal <-chan struct{}) error {
		<-closeSignal
		listeners.Wait()
		s.tasks.Stop()
		if s.unsubscribe != nil {
			s.unsubscribe()
		}

		ctx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
		defer cancel()
		if err := s.app.Shutdown(ctx); err != nil {
			s.logger.Error("failed to shutdown app container", zap.Error(err))
			return err
		}
		s.logger.Info("App container shutdown gracefully")
		return nil
	})

	return s, nil
}

// serve runs srv until it fails or closeSignal closes
// serve 运行 HTTP 服务，直到失败或收到关闭信号
func (s *Server) serve(srv *http.Server, name string, closeSignal <-chan struct{}) error {
	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.ListenAndServe()
	}()
	select {
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		s.logger.Error(name+" err", zap.Error(err))
		return fmt.Errorf("%s: %w", name, err)
	case <-closeSignal:
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		// 停止HTTP服务器
		if err := srv.Shutdown(ctx); err != nil {
			s.logger.Error(name+" shutdown error", zap.Error(err))
		}
		return nil
	}
}

// initStorageWithConfig initializes storage directory (using injected config)
// initStorageWithConfig 初始化存储目录（使用注入的配置）
func initStorageWithConfig(cfg *internalApp.AppConfig) error {
	dirs := []string{
		filepath.Dir(cfg.Log.File),
		filepath.Dir(cfg.Database.Path),
	}
	if cfg.Storage.IsEnabled && cfg.Storage.Type == storage.LOCAL {
		dirs = append(dirs, cfg.Storage.SavePath)
	}

	for _, dir := range dirs {
		if dir == "" || dir == "." {
			continue
		}
		if err := os.MkdirAll(dir, 0754); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// GetApp gets App Container
// GetApp 获取 App Container
func (s *Server) GetApp() *internalApp.App {
	return s.app
}
