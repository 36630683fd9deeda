// internal/app/server.go
package app

import (
	"context"
	"fmt"

	"salora-service/internal/config"
	"salora-service/internal/db"
	"salora-service/internal/gateway"
	certificateHandler "salora-service/internal/handlers/certificate"
	orderHandler "salora-service/internal/handlers/order"
	planHandler "salora-service/internal/handlers/plan"
	wsHandler "salora-service/internal/handlers/ws"
	"salora-service/internal/middleware"
	"salora-service/internal/notify"
	"salora-service/internal/pkg/jwt"
	"salora-service/internal/pkg/ratelimit"
	"salora-service/internal/repository/postgres"
	certificateService "salora-service/internal/service/certificate"
	orderService "salora-service/internal/service/order"
	planService "salora-service/internal/service/plan"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	cfg    config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
}

func NewServer() *Server {
	cfg := config.Load()
	engine := gin.New()
	return &Server{cfg: cfg, engine: engine}
}

func (s *Server) Start() error {
	ctx := context.Background()

	// ----- Logger -----
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync()
	s.logger = logger

	// ----- PostgreSQL -----
	pool, err := db.ConnectDB(ctx, s.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	logger.Info("connected to PostgreSQL")

	// ----- Redis -----
	redisClient, err := db.NewRedisClient(db.RedisConfig{
		Addr:     s.cfg.RedisAddr,
		Password: s.cfg.RedisPass,
		DB:       0,
		PoolSize: 10,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	logger.Info("connected to Redis")

	// ----- JWT Manager -----
	if s.cfg.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	jwtManager := jwt.NewManager([]byte(s.cfg.JWTSecret), s.cfg.JWTIssuer, s.cfg.JWTAudience, s.cfg.JWTTTL)

	// ----- Rate Limiter -----
	certLimiter := ratelimit.NewCertificateLimiter(redisClient)

	// ----- Payment Gateway -----
	charger := gateway.NewHTTPGateway(s.cfg.GatewayBaseURL, s.cfg.GatewayAPIKey, logger)

	// ----- WebSocket Hub -----
	hub := notify.NewHub(logger)

	// ----- Repositories -----
	dbWrapper := postgres.NewDB(pool)
	planRepo := postgres.NewPlanRepository(dbWrapper)
	certRepo := postgres.NewCertificateRepository(dbWrapper)
	orderRepo := postgres.NewOrderRepository(dbWrapper)

	// ----- Services -----
	ledger := certificateService.NewLedgerService(certRepo, logger)
	plans := planService.NewPlanService(planRepo, charger, logger)
	orders := orderService.NewOrderService(orderRepo, ledger, charger, hub, logger)

	// ----- Handlers -----
	planHandlerInst := planHandler.NewPlanHandler(plans)
	certHandlerInst := certificateHandler.NewCertificateHandler(ledger, certLimiter, logger)
	orderHandlerInst := orderHandler.NewOrderHandler(orders)
	wsHandlerInst := wsHandler.NewWSHandler(hub)

	// ----- Middlewares -----
	authMiddleware := middleware.NewAuthMiddleware(jwtManager)

	s.engine.Use(
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger),
		middleware.CORSMiddleware(),
	)

	// ----- Router -----
	handlers := &Handlers{
		PlanHandler:        planHandlerInst,
		CertificateHandler: certHandlerInst,
		OrderHandler:       orderHandlerInst,
		WSHandler:          wsHandlerInst,
		AuthMiddleware:     authMiddleware,
	}
	SetupRouter(s.engine, logger, handlers)

	logger.Info("server starting", zap.String("addr", s.cfg.HTTPAddr))
	return s.engine.Run(s.cfg.HTTPAddr)
}
