package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskboard/internal/config"
	"taskboard/internal/handler"
	"taskboard/internal/middleware"
	"taskboard/internal/model"
	"taskboard/internal/repository"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Server struct {
	Engine *gin.Engine
	DB     *gorm.DB
	Config *config.Config
}

func Init(cfg *config.Config) (*Server, error) {
	// Setup GORM
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName,
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("❌ failed to connect to DB: %w", err)
	}
	log.Println("✅ Connected to database")

	if err := migrate(db); err != nil {
		return nil, fmt.Errorf("❌ failed to migrate schema: %w", err)
	}
	log.Println("✅ Schema migrated")

	// Setup Gin
	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	accountRepo := repository.NewAccountRepository(db)
	tokenRepo := repository.NewTokenRepository(db)
	orgRepo := repository.NewOrganizationRepository(db)
	workspaceRepo := repository.NewWorkspaceRepository(db)
	boardRepo := repository.NewBoardRepository(db)
	itemRepo := repository.NewItemRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	ctaRepo := repository.NewCtaRepository(db)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(userRepo, accountRepo, tokenRepo, cfg)
	workspaceHandler := handler.NewWorkspaceHandler(workspaceRepo, orgRepo)
	boardHandler := handler.NewBoardHandler(boardRepo, workspaceRepo)
	itemHandler := handler.NewItemHandler(itemRepo, boardRepo, workspaceRepo, activityRepo)
	ctaHandler := handler.NewCtaHandler(ctaRepo, itemRepo, workspaceRepo)

	// Public routes
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	auth := r.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", authHandler.Logout)
		auth.POST("/forgot-password", authHandler.ForgotPassword)
		auth.POST("/reset-password", authHandler.ResetPassword)
		auth.POST("/migrate-users", authHandler.MigrateUsers)
	}

	// Protected routes - require authentication
	authorized := r.Group("/")
	authorized.Use(middleware.JWTAuthMiddleware(cfg.AccessTokenSecret))
	{
		// Workspace routes
		authorized.GET("/workspaces", workspaceHandler.GetAll)
		authorized.POST("/workspaces", workspaceHandler.Create)
		authorized.GET("/workspaces/:id", workspaceHandler.GetByID)
		authorized.PATCH("/workspaces/:id", workspaceHandler.Update)
		authorized.DELETE("/workspaces/:id", workspaceHandler.Delete)
		authorized.GET("/workspaces/:id/users", workspaceHandler.ListUsers)
		authorized.POST("/workspaces/:id/users", workspaceHandler.AddUser)
		authorized.GET("/workspaces/:id/available-users", workspaceHandler.AvailableUsers)
		authorized.GET("/workspaces/:id/tags", workspaceHandler.Tags)

		// Board routes
		authorized.POST("/boards", boardHandler.Create)
		authorized.GET("/boards/:id", boardHandler.Get)
		authorized.PATCH("/boards/:id", boardHandler.Update)
		authorized.DELETE("/boards/:id", boardHandler.Delete)
		authorized.POST("/boards/columns", boardHandler.CreateColumn)
		authorized.POST("/boards/groups", boardHandler.CreateGroup)

		// Item routes
		authorized.POST("/boards/items", itemHandler.Create)
		authorized.PATCH("/boards/items/:itemId", itemHandler.Update)
		authorized.DELETE("/boards/items/:itemId", itemHandler.Delete)
		authorized.PATCH("/boards/items/:itemId/move", itemHandler.Move)
		authorized.PATCH("/boards/items/:itemId/assignees", itemHandler.UpdateAssignees)
		authorized.PATCH("/boards/items/:itemId/values/:columnId", itemHandler.UpdateValue)
		authorized.GET("/boards/items/:itemId/activities", itemHandler.Activities)

		// CTA routes
		authorized.GET("/boards/items/:itemId/ctas", ctaHandler.List)
		authorized.PATCH("/boards/items/:itemId/ctas/reorder", ctaHandler.Reorder)
		authorized.POST("/boards/ctas", ctaHandler.Create)
		authorized.PATCH("/boards/ctas/:ctaId", ctaHandler.Update)
		authorized.DELETE("/boards/ctas/:ctaId", ctaHandler.Delete)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return &Server{
		Engine: r,
		DB:     db,
		Config: cfg,
	}, nil
}

// migrate ensures the uuid extension and keeps the schema in sync with the
// models. Order matters: referenced tables first.
func migrate(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		return err
	}
	return db.AutoMigrate(
		&model.User{},
		&model.Organization{},
		&model.OrganizationUser{},
		&model.Workspace{},
		&model.WorkspaceUser{},
		&model.Board{},
		&model.BoardColumn{},
		&model.ItemGroup{},
		&model.Item{},
		&model.ItemValue{},
		&model.ItemAssignee{},
		&model.ItemActivity{},
		&model.ItemCta{},
		&model.RefreshToken{},
		&model.PasswordResetToken{},
	)
}

func (s *Server) Run() {
	srv := &http.Server{
		Addr:    ":" + s.Config.ServerPort,
		Handler: s.Engine,
	}

	go func() {
		log.Printf("🚀 Server running on port %s\n", s.Config.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Failed to listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %s", err)
	}

	log.Println("✅ Server exited properly")
}
