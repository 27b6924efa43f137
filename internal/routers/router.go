package routers

import (
	"github.com/haierkeys/watermelon-notes/internal/app"
	"github.com/haierkeys/watermelon-notes/internal/middleware"
	"github.com/haierkeys/watermelon-notes/internal/routers/api_router"
	"github.com/haierkeys/watermelon-notes/internal/routers/websocket_router"
	pkgapp "github.com/haierkeys/watermelon-notes/pkg/app"
	"github.com/haierkeys/watermelon-notes/pkg/storage"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/lxzan/gws"
)

// NewRouter builds the public API. The returned func detaches the event broadcaster.
// NewRouter 创建公开 API 路由，返回的函数用于解除事件广播订阅
func NewRouter(appContainer *app.App, v *pkgapp.Validator) (*gin.Engine, func()) {
	cfg := appContainer.Config()

	// gin 绑定与命令解码共用同一个带翻译的校验器
	binding.Validator = v

	wss := pkgapp.NewWebsocketServer(pkgapp.WebsocketServerConfig{
		GWSOption: gws.ServerOption{
			CheckUtf8Enabled: true,
			// 同一连接上的命令必须按到达顺序执行，不开启并行处理
			ParallelEnabled:     false,
			Recovery:            gws.Recovery,
			PermessageDeflate:   gws.PermessageDeflate{Enabled: true},
			ReadMaxPayloadSize:  1024 * 1024 * 16,
			WriteMaxPayloadSize: 1024 * 1024 * 16,
		},
	}, appContainer.Logger())

	eventWSHandler := websocket_router.NewEventWSHandler(appContainer, v, wss)
	unsubscribe := eventWSHandler.Register()

	limiter := middleware.NewIPLimiter(middleware.LimiterConfig{
		FillInterval: cfg.GetRateLimitFillInterval(),
		Capacity:     cfg.Security.RateLimitCapacity,
		Quantum:      cfg.Security.RateLimitQuantum,
	})

	r := gin.New()

	api := r.Group("/api")
	{
		api.Use(middleware.AppInfo(app.Name, appContainer.Version().Version))
		api.Use(middleware.TraceMiddleware(cfg.Tracer.Enabled, cfg.Tracer.Header))
		api.Use(middleware.RateLimiter(limiter))
		api.Use(middleware.ContextTimeout(cfg.GetContextTimeout()))
		api.Use(middleware.AccessLog(appContainer.Logger()))
		api.Use(middleware.RecoveryWithLogger(appContainer.Logger()))

		commandHandler := api_router.NewCommandHandler(appContainer, v)
		noteHandler := api_router.NewNoteHandler(appContainer, v)
		healthHandler := api_router.NewHealthHandler(appContainer, wss)
		versionHandler := api_router.NewVersionHandler(appContainer)
		attachmentHandler := api_router.NewAttachmentHandler(appContainer, v)

		api.POST("/command", commandHandler.Dispatch)
		api.GET("/view", noteHandler.View)
		api.GET("/folders", noteHandler.Folders)
		api.GET("/notes", noteHandler.List)
		api.GET("/note", noteHandler.Get)
		api.GET("/note/preview", noteHandler.Preview)
		api.GET("/events", wss.Run())
		api.POST("/attachment", attachmentHandler.Upload)
		api.DELETE("/attachment", attachmentHandler.Delete)

		api.GET("/health", healthHandler.Check)
		api.GET("/version", versionHandler.ServerVersion)
	}

	if cfg.Storage.ServesLocal() {
		r.Static(storage.LocalURLPrefix, cfg.Storage.SavePath)
	}

	r.NoRoute(middleware.NoFound())

	return r, unsubscribe
}
