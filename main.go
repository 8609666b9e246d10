package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/didip/tollbooth/v7"
	"github.com/didip/tollbooth_gin"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	_ "github.com/tokenworks/todo-auth-service/docs"

	"github.com/tokenworks/todo-auth-service/internal/authentication"
	"github.com/tokenworks/todo-auth-service/internal/todo"
	"github.com/tokenworks/todo-auth-service/internal/token"
	"github.com/tokenworks/todo-auth-service/internal/user"
	"github.com/tokenworks/todo-auth-service/internal/utils"
	"go.uber.org/zap"
)

// @title           To-Do Service API
// @version         1.0
// @description     To-do CRUD with JWT access tokens and rotating refresh tokens.
//
// @host      localhost:8080
// @BasePath  /api/v1
func main() {
	// load config
	cfg, err := utils.LoadConfig(".env")
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// init database
	db, err := utils.InitDatabase(cfg.Database.DSN())
	if err != nil {
		panic("Failed to connect to the database: " + err.Error())
	}
	if err := db.AutoMigrate(&user.User{}, &authentication.RefreshTokenRecord{}, &todo.Todo{}); err != nil {
		panic("Failed to migrate database: " + err.Error())
	}

	// init logger
	logger, err := zap.NewProduction()
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	// init Gin router
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	//
	// SWAGGER (protected by Basic Auth, not JWT)
	//
	swaggerGroup := router.Group("/swagger", gin.BasicAuth(gin.Accounts{
		cfg.Admin.Username: cfg.Admin.Password,
	}))
	swaggerGroup.GET("", ginSwagger.WrapHandler(swaggerFiles.Handler))
	swaggerGroup.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	//
	// WIRE UP SERVICES
	//
	userRepo := user.NewUserRepository(db)
	userService := user.NewUserService(userRepo, logger)

	codec := token.NewCodec(cfg.Token.Secret)
	recordRepo := authentication.NewRecordRepository(db)
	authService := authentication.NewAuthenticationService(
		userService,
		recordRepo,
		codec,
		logger,
		cfg.Token.AccessTokenTTL,
		cfg.Token.RefreshTokenTTL,
	)

	todoRepo := todo.NewTodoRepository(db)
	todoService := todo.NewTodoService(todoRepo, logger)

	api := router.Group("/api/v1")

	// credential endpoints get a per-IP rate limit
	authLimiter := tollbooth.NewLimiter(5, nil)
	authLimiter.SetMessage(`{"success":false,"errors":["too_many_requests"]}`)
	authLimiter.SetMessageContentType("application/json")
	authRoutes := api.Group("/", tollbooth_gin.LimitHandler(authLimiter))
	authentication.NewAuthHandler(authRoutes, authService, logger)

	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authGroup := api.Group("/")
	authGroup.Use(
		authentication.AuthMiddleware(userService, codec, logger),
	)
	authGroup.GET("/users/me", func(c *gin.Context) {
		raw, _ := c.Get(user.ContextUserKey)
		u := raw.(*user.User)
		c.JSON(http.StatusOK, u)
	})
	todo.NewTodoHandler(authGroup, todoService, logger)

	adminGroup := api.Group("/")
	adminGroup.Use(
		authentication.AuthMiddleware(userService, codec, logger),
		authentication.RoleMiddleware(user.Admin, logger),
	)
	user.NewUserHandler(adminGroup, userService, logger)

	//
	// START SERVER
	//
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}
	go func() {
		logger.Info("starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", zap.Error(err))
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	} else {
		logger.Info("server stopped gracefully")
	}
}
