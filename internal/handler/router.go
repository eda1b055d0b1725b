package handler

import (
	"daily-checkin/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Register mounts the check-in API on r.
func Register(r *gin.Engine, auth *AuthHandler, entries *EntryHandler, tokens *middleware.Tokens, origins []string) {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:  origins,
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"X-New-Token"},
	}))

	r.POST("/api/signup", auth.Signup)
	r.POST("/api/login", auth.Login)

	api := r.Group("/api", tokens.JWTAuth())
	api.GET("/me", auth.Me)
	api.GET("/entries/:type", entries.Get)
	api.POST("/entries/:type", entries.Submit)
	api.GET("/history", entries.History)
	api.POST("/submitTrackingForm", entries.SubmitTrackingForm)
	api.GET("/today", entries.Today)
	api.GET("/forms", entries.Forms)
}
