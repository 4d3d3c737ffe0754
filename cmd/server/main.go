package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/nightloom/nightcore/internal/api"
	"github.com/nightloom/nightcore/internal/config"
	"github.com/nightloom/nightcore/internal/metrics"
	"github.com/nightloom/nightcore/internal/middleware"
	"github.com/nightloom/nightcore/internal/room"
	"github.com/nightloom/nightcore/internal/store"
	"github.com/nightloom/nightcore/internal/transport"
	"github.com/nightloom/nightcore/internal/voice"
)

func main() {
	// Load .env file (ignore error in production where env vars are set directly)
	_ = godotenv.Load("../../.env")
	_ = godotenv.Load(".env")

	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := metrics.NewLogger(cfg.Server.Environment != "production")
	if err != nil {
		panic("failed to build logger: " + err.Error())
	}
	defer logger.Sync()

	s, err := store.NewStore(cfg)
	if err != nil {
		logger.Fatal("failed to connect to store", zap.Error(err))
	}
	defer s.Close()

	logger.Info("connected to postgres and redis")

	games := api.NewGameManager(cfg.Night.ToNight())
	voiceService := voice.NewService(&cfg.Agora)
	wsHub := transport.NewHub()

	wsHub.ActionHandler = api.NewActionDispatcher(games)

	if cfg.Metrics.Enabled {
		m := metrics.New(nil)
		wsHub.ActiveConnections = m.ActiveConnections
		games.ActiveSessions = m.ActiveSessions
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go wsHub.Run(ctx)
	logger.Info("transport hub started")

	lifecycleManager := room.NewLifecycleManager(s, wsHub)
	go lifecycleManager.Start(ctx)

	handler := api.NewHandler(s, games, voiceService, wsHub, lifecycleManager)

	if cfg.Metrics.Enabled {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			logger.Info("metrics endpoint starting", zap.String("address", cfg.Metrics.Address))
			if err := http.ListenAndServe(cfg.Metrics.Address, mux); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics endpoint exited", zap.Error(err))
			}
		}()
	}

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		if err := s.Health(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	public := router.Group("/api/v1")
	{
		public.POST("/auth/register", handler.Register)
		public.POST("/auth/login", handler.Login)
		public.POST("/auth/refresh", handler.RefreshToken)
		public.GET("/rooms", handler.GetRooms)

		// WebSocket (handles auth via query param token)
		public.GET("/ws", handler.HandleWebSocket)
	}

	protected := router.Group("/api/v1")
	protected.Use(middleware.AuthMiddleware(cfg.JWT.Secret))
	{
		protected.GET("/users/me", handler.GetCurrentUser)
		protected.PUT("/users/me", handler.UpdateUser)
		protected.GET("/users/:userId/stats", handler.GetUserStats)

		protected.POST("/rooms", handler.CreateRoom)
		protected.POST("/rooms/join", handler.JoinRoom)
		protected.GET("/rooms/:roomId", handler.GetRoom)
		protected.POST("/rooms/:roomId/start", handler.StartGame)
		protected.POST("/rooms/:roomId/leave", handler.LeaveRoom)
		protected.POST("/rooms/:roomId/ready", handler.SetReady)
		protected.POST("/rooms/:roomId/kick", handler.KickPlayer)
		protected.POST("/rooms/:roomId/extend-timeout", handler.ExtendRoomTimeout)
		protected.POST("/rooms/:roomId/extend", handler.ExtendRoomTimeout) // Alternative route for compatibility

		protected.GET("/games/:sessionId", handler.GetGameState)
		protected.POST("/games/:sessionId/action", handler.PerformAction)
		protected.GET("/games/:sessionId/history", handler.GetGameHistory)

		protected.POST("/agora/token", handler.GetAgoraToken)
	}

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("address", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exited gracefully")
}
