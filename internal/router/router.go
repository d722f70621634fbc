// Package router assembles the HTTP API.
package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aura-survey/backend/config"
	"github.com/aura-survey/backend/internal/answers"
	"github.com/aura-survey/backend/internal/auth"
	"github.com/aura-survey/backend/internal/middleware"
	"github.com/aura-survey/backend/internal/questions"
	"github.com/aura-survey/backend/internal/realtime"
	"github.com/aura-survey/backend/internal/summary"
	"github.com/aura-survey/backend/pkg/response"
)

// Stores groups the repositories of one storage backend.
type Stores struct {
	Questions questions.Repository
	Answers   answers.Repository
	Users     auth.Repository
}

// Deps are the collaborators of the API router.
type Deps struct {
	Logger        *zap.Logger
	Server        config.ServerConfig
	RateLimit     config.RateLimitConfig
	AuthMode      string
	Stores        Stores
	Authenticator auth.Authenticator
	// Hub is optional; a local hub is created when nil.
	Hub *realtime.Hub
}

// New builds the gin engine with every route mounted.
func New(d Deps) *gin.Engine {
	logger := d.Logger
	hub := d.Hub
	if hub == nil {
		hub = realtime.NewHub(logger, nil, nil)
	}

	authSvc := auth.NewService(d.Stores.Users, d.Authenticator, logger)
	answerSvc := answers.NewService(d.Stores.Answers, d.Stores.Questions, hub, logger)

	authHandler := auth.NewHandler(authSvc, logger)
	questionHandler := questions.NewHandler(d.Stores.Questions)
	answerHandler := answers.NewHandler(answerSvc)
	summaryHandler := summary.NewHandler(d.Stores.Questions, answerSvc)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Secure(d.Server.Development))
	router.Use(middleware.CORS(d.Server.SplitOrigins()))
	router.Use(middleware.Logger(logger))

	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	api := router.Group("/api")

	// Credential endpoints exist only when tokens are issued locally.
	if d.AuthMode != config.AuthModeExternal {
		credentials := api.Group("")
		if d.RateLimit.AuthPerMinute > 0 {
			credentials.Use(middleware.RateLimit(d.RateLimit.AuthPerMinute))
		}
		credentials.POST("/register", authHandler.Register)
		credentials.POST("/login", authHandler.Login)
	}

	api.GET("/questions", questionHandler.List)
	api.GET("/questions/:id", questionHandler.Get)
	api.GET("/answer_counts", answerHandler.Counts)
	api.GET("/ws", realtime.ServeWs(hub, answerSvc, logger))

	protected := api.Group("")
	protected.Use(middleware.JWT(authSvc))
	{
		protected.GET("/me", authHandler.Me)
		protected.GET("/answers", answerHandler.List)
		protected.POST("/answers", answerHandler.Submit)
		protected.GET("/summary", summaryHandler.Get)
	}

	return router
}
