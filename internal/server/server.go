package server

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"weatherhist/internal/config"
	"weatherhist/internal/fetcher"
	"weatherhist/internal/store"
)

// Server 本地查看服务
type Server struct {
	router  *gin.Engine
	handler *Handler
}

// NewServer 创建服务器
// logs 可为 nil，此时 /api/logs 返回空列表
func NewServer(cfg *config.AppConfig, logs *store.Store, logger *slog.Logger) *Server {
	if !cfg.Server.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}

	client := fetcher.NewClient(cfg.Fetch.BaseURL, logger)
	orch := fetcher.NewOrchestrator(client, logs,
		time.Duration(cfg.Fetch.PauseMillis)*time.Millisecond, logger)

	handler := NewHandler(cfg, orch, logs, logger)

	s := &Server{
		router:  gin.Default(),
		handler: handler,
	}
	s.setupRoutes(cfg)

	return s
}

// setupRoutes 设置路由
func (s *Server) setupRoutes(cfg *config.AppConfig) {
	// CORS
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	api := s.router.Group("/api")
	{
		s.handler.RegisterRoutes(api)
	}

	// 渲染好的图表文件
	if _, resultsDir, err := config.EnsureDirs(cfg); err == nil {
		s.router.Static("/results", resultsDir)
	}
}

// Run 启动服务器
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}
