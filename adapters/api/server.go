package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"alignbench/app"
	"alignbench/internal/logging"
)

// MaxBodyBytes bounds the size of a scoring request document
const MaxBodyBytes = 32 << 20

// Server exposes the scoring service over HTTP
type Server struct {
	router  *gin.Engine
	service *app.ScoringService
	logger  *zap.Logger
}

// NewServer creates the router and registers every route
func NewServer(service *app.ScoringService) *Server {
	s := &Server{
		router:  gin.New(),
		service: service,
		logger:  logging.New("api"),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Router returns the underlying gin engine
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run starts serving on addr
func (s *Server) Run(addr string) error {
	s.logger.Info("serving", zap.String("addr", addr), zap.Bool("persistence", s.service.PersistenceEnabled()))
	return s.router.Run(addr)
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.requestLogger())
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	v1.POST("/score", s.handleScore)
	v1.GET("/runs", s.handleListRuns)
	v1.GET("/runs/:id", s.handleGetRun)
}

// requestLogger logs one line per request at info level
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)))
	}
}
