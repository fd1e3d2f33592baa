package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"github.com/Aidin1998/pricecatalog/api/handlers"
	"github.com/Aidin1998/pricecatalog/internal/catalog"
	"github.com/Aidin1998/pricecatalog/internal/config"
	"github.com/Aidin1998/pricecatalog/pkg/validation"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

func init() {
	// prices are rendered as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		validation.Configure(v)
	}
}

// Server represents the API server
type Server struct {
	router    *gin.Engine
	logger    *zap.Logger
	cfg       *config.Config
	db        *gorm.DB
	catalog   *catalog.Catalog
	validator *validation.Validator
}

// NewServer creates a new API server over the catalog services
func NewServer(cfg *config.Config, logger *zap.Logger, db *gorm.DB, cat *catalog.Catalog, v *validation.Validator) *Server {
	server := &Server{
		logger:    logger.With(zap.String("component", "api")),
		cfg:       cfg,
		db:        db,
		catalog:   cat,
		validator: v,
	}

	router := gin.New()

	// Add middleware
	router.Use(requestID())
	router.Use(ginzap.GinzapWithConfig(logger, &ginzap.Config{
		TimeFormat: time.RFC3339,
		UTC:        true,
		SkipPaths:  []string{"/health", "/metrics"},
		Context: func(c *gin.Context) []zapcore.Field {
			return []zapcore.Field{zap.String("request_id", c.GetString("request_id"))}
		},
	}))
	router.Use(ginzap.RecoveryWithZap(logger, true))
	router.Use(otelgin.Middleware(cfg.Tracing.ServiceName))

	// Configure CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.Server.AllowedOrigins,
		AllowMethods:  []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}))

	server.router = router
	server.registerRoutes()
	return server
}

// Router returns the internal Gin engine for testing purposes
func (s *Server) Router() *gin.Engine {
	return s.router
}

// HTTPServer returns an http.Server for the configured address and timeouts.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              s.cfg.Server.Addr(),
		Handler:           s.router,
		ReadTimeout:       s.cfg.Server.ReadTimeout,
		ReadHeaderTimeout: s.cfg.Server.ReadHeaderTimeout,
		WriteTimeout:      s.cfg.Server.WriteTimeout,
		IdleTimeout:       s.cfg.Server.IdleTimeout,
		MaxHeaderBytes:    s.cfg.Server.MaxHeaderBytes,
	}
}

// registerRoutes registers all API routes
func (s *Server) registerRoutes() {
	s.router.GET("/health", s.healthCheck)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := s.router.Group("/api/v1")
	handlers.NewCategoryHandler(s.catalog.Categories, s.catalog.Pricing, s.logger).Register(v1)
	handlers.NewBrandHandler(s.catalog.Brands, s.catalog.Pricing, s.validator, s.logger).Register(v1)
	handlers.NewProductHandler(s.catalog.Products, s.catalog.Queries, s.validator, s.logger).Register(v1)
}

func (s *Server) healthCheck(c *gin.Context) {
	status, code := "ok", http.StatusOK
	sqlDB, err := s.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		s.logger.Warn("health check failed", zap.Error(err))
		status, code = "unavailable", http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status": status,
		"time":   time.Now().UTC(),
	})
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}
