package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/EshwarReddy13/tassot-backend/internal/api/handlers"
	"github.com/EshwarReddy13/tassot-backend/internal/api/middleware"
	"github.com/EshwarReddy13/tassot-backend/internal/config"
	"github.com/EshwarReddy13/tassot-backend/internal/cron"
	"github.com/EshwarReddy13/tassot-backend/internal/db"
	"github.com/EshwarReddy13/tassot-backend/internal/email"
	"github.com/EshwarReddy13/tassot-backend/internal/notification"
	"github.com/EshwarReddy13/tassot-backend/internal/repository"
	"github.com/EshwarReddy13/tassot-backend/internal/seed"
	"github.com/EshwarReddy13/tassot-backend/internal/service"
	"github.com/EshwarReddy13/tassot-backend/internal/socket"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// ============================================
	// Database migrations
	// ============================================
	log.Println("[DB] Running database migrations...")
	if err := db.RunMigrations(cfg.DatabaseURL, "./internal/db/migrations"); err != nil {
		log.Fatalf("[DB] Migration failed: %v", err)
	}
	log.Println("[DB] Migrations completed")

	// ============================================
	// PostgreSQL
	// ============================================
	pg, err := db.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[DB] Failed to connect to PostgreSQL: %v", err)
	}
	defer pg.Close()

	repos := repository.NewRepositories(pg.Pool)

	// ============================================
	// Redis (optional)
	// ============================================
	var redisDB *db.RedisDB
	if cfg.RedisURL != "" {
		redisDB, err = db.NewRedisDB(cfg.RedisURL)
		if err != nil {
			log.Printf("[Cache] Failed to connect to Redis: %v (continuing without cache)", err)
			redisDB = nil
		} else {
			defer redisDB.Close()
			log.Println("[Cache] Redis cache enabled")
		}
	}

	// ============================================
	// Email (optional)
	// ============================================
	var emailSvc *email.Service
	if cfg.SMTPHost != "" {
		emailSvc = email.NewService(&email.Config{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
			FromName: cfg.SMTPFromName,
			UseTLS:   cfg.SMTPUseTLS,
		})
		log.Println("[Email] Email service initialized")
	} else {
		log.Println("[Email] Not configured (SMTP_HOST not set)")
	}

	// ============================================
	// WebSocket hub
	// ============================================
	hub := socket.NewHub()
	go hub.Run()
	broadcaster := socket.NewBroadcaster(hub)
	wsHandler := socket.NewHandler(hub, cfg.JWTSecret)
	log.Println("[Hub] WebSocket hub initialized")

	// ============================================
	// Development seed data
	// ============================================
	if cfg.Environment != "production" {
		seed.SeedData(repos)
	}

	// ============================================
	// Services and handlers
	// ============================================
	notificationSvc := notification.NewService(repos.NotificationRepo)
	notificationSvc.SetBroadcaster(broadcaster)

	services := service.NewServices(&service.ServiceDeps{
		Config:      cfg,
		Repos:       repos,
		NotifSvc:    notificationSvc,
		EmailSvc:    emailSvc,
		Broadcaster: broadcaster,
		Redis:       redisDB,
	})

	h := handlers.NewHandlers(services)

	// ============================================
	// Cron scheduler
	// ============================================
	cronScheduler := cron.NewScheduler(repos)
	cronScheduler.Start()
	defer cronScheduler.Stop()

	// ============================================
	// Router
	// ============================================
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.FrontendURL, "http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		cache := "disabled"
		if redisDB != nil {
			cache = "connected"
		}
		c.JSON(http.StatusOK, gin.H{
			"status":     "healthy",
			"timestamp":  time.Now(),
			"database":   "connected",
			"cache":      cache,
			"ws_clients": hub.GetConnectedClientsCount(),
		})
	})

	api := r.Group("/api")
	{
		// Public routes
		auth := api.Group("/auth")
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
			auth.POST("/logout", h.Auth.Logout)
		}

		// Anyone holding an invitation link can verify it without logging in.
		api.GET("/invitations/verify/:token", h.Invitation.Verify)

		api.GET("/ws", wsHandler.HandleWebSocket)

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(cfg.JWTSecret))
		{
			users := protected.Group("/users")
			{
				users.GET("/me", h.User.GetMe)
				users.PUT("/me", h.User.UpdateMe)
			}

			protected.POST("/invitations/accept", h.Invitation.Accept)

			projects := protected.Group("/projects")
			{
				projects.GET("", h.Project.List)
				projects.POST("", h.Project.Create)
				projects.GET("/:projectUrl", h.Project.Get)
				projects.PUT("/:projectUrl", h.Project.Update)
				projects.DELETE("/:projectUrl", h.Project.Delete)
				projects.GET("/:projectUrl/stats", h.Project.GetStats)

				projects.GET("/:projectUrl/members", h.Project.ListMembers)
				projects.DELETE("/:projectUrl/members/:userId", h.Project.RemoveMember)

				projects.POST("/:projectUrl/invitations", h.Invitation.Create)
				projects.GET("/:projectUrl/invitations", h.Invitation.ListPending)
				projects.DELETE("/:projectUrl/invitations/:invitationId", h.Invitation.Cancel)

				projects.GET("/:projectUrl/tasks", h.Task.ListByProject)
				projects.POST("/:projectUrl/tasks", h.Task.Create)
			}

			tasks := protected.Group("/tasks")
			{
				tasks.GET("/:taskId", h.Task.Get)
				tasks.PUT("/:taskId", h.Task.Update)
				tasks.DELETE("/:taskId", h.Task.Delete)
				tasks.PATCH("/:taskId/status", h.Task.UpdateStatus)
				tasks.POST("/:taskId/assign", h.Task.Assign)

				tasks.GET("/:taskId/comments", h.Comment.ListByTask)
				tasks.POST("/:taskId/comments", h.Comment.Create)
			}

			comments := protected.Group("/comments")
			{
				comments.PUT("/:commentId", h.Comment.Update)
				comments.DELETE("/:commentId", h.Comment.Delete)
			}

			notifications := protected.Group("/notifications")
			{
				notifications.GET("", h.Notification.List)
				notifications.GET("/count", h.Notification.UnreadCount)
				notifications.PUT("/:id/read", h.Notification.MarkRead)
				notifications.PUT("/read-all", h.Notification.MarkAllRead)
				notifications.DELETE("/:id", h.Notification.Delete)
			}
		}
	}

	// ============================================
	// HTTP server with graceful shutdown
	// ============================================
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Printf("[API] Server listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[API] Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("[API] Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("[API] Forced shutdown: %v", err)
	}
	log.Println("[API] Server stopped")
}
