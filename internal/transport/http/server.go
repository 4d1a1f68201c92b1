package http

import (
	"time"

	"github.com/gin-gonic/gin"

	appsvc "noteally/internal/app"
	"noteally/internal/bootstrap"
	"noteally/internal/repository"
	"noteally/internal/transport/http/handler"
	"noteally/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	userRepo := repository.NewUserRepository(app.MySQL)
	authService := appsvc.NewAuthService(
		userRepo,
		app.Config.Auth.JWTSecret,
		time.Duration(app.Config.Auth.JWTExpireMinute)*time.Minute,
	)
	authHandler := handler.NewAuthHandler(authService)
	noteHandler := handler.NewNoteHandler(app.NoteService, authService)
	summarizeHandler := handler.NewSummarizeHandler(app.SummarizeService)

	authRequired := middleware.AuthJWT(app.Config.Auth.JWTSecret)

	v1 := router.Group("/api/v1")
	authGroup := v1.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.GET("/me", authRequired, authHandler.Me)

	notes := v1.Group("/notes")
	notes.GET("", noteHandler.List)
	notes.GET("/subjects", noteHandler.Subjects)
	notes.GET("/:id", noteHandler.Get)
	notes.POST("/:id/view", noteHandler.RegisterView)
	notes.POST("", authRequired, noteHandler.Create)
	notes.GET("/mine", authRequired, noteHandler.Mine)
	notes.DELETE("/:id", authRequired, noteHandler.Delete)
	notes.POST("/:id/like", authRequired, noteHandler.ToggleLike)
	notes.POST("/:id/summarize", authRequired, noteHandler.RequestSummary)

	v1.POST("/summarize", summarizeHandler.Summarize)

	return router
}
