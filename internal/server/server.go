// Package server 本地 HTTP 服务，供浏览器扩展等宿主通过消息调用翻译
package server

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/nerdneilsfield/go-selection-translator/pkg/translation"
	"go.uber.org/zap"
)

// MaxTextLength 超过此长度的文本仍会翻译，但会记录警告
const MaxTextLength = 5000

// Server 翻译 HTTP 服务
type Server struct {
	app     *fiber.App
	manager *translation.Manager
	logger  *zap.Logger
}

// New 创建服务并注册路由
func New(manager *translation.Manager, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	app := fiber.New(fiber.Config{
		AppName:               "selection-translator",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler(logger),
	})

	s := &Server{
		app:     app,
		manager: manager,
		logger:  logger,
	}

	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, X-Request-ID",
	}))
	app.Use(recovery(logger))

	api := app.Group("/api")
	api.Post("/message", s.handleMessage)
	api.Get("/settings", s.getSettings)
	api.Put("/settings", s.putSettings)
	api.Get("/cache/stats", s.cacheStats)
	api.Delete("/cache", s.clearCache)
	api.Get("/quota", s.quota)
	api.Get("/stats", s.providerStats)

	return s
}

// App 底层 fiber 应用
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen 阻塞监听，直到 Shutdown 被调用
func (s *Server) Listen(addr string) error {
	s.logger.Info("HTTP 服务启动", zap.String("addr", addr))
	return s.app.Listen(addr)
}

// Shutdown 优雅关闭
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
