package http

import (
	"github.com/gin-gonic/gin"

	"github.com/gdugdh24/speeddate-backend/internal/delivery/http/handler"
	"github.com/gdugdh24/speeddate-backend/internal/delivery/http/middleware"
)

type Router struct {
	authHandler          *handler.AuthHandler
	ratingHandler        *handler.RatingHandler
	choiceHandler        *handler.ChoiceHandler
	compatibilityHandler *handler.CompatibilityHandler
	adminHandler         *handler.AdminHandler
	authMiddleware       *middleware.AuthMiddleware
}

func NewRouter(
	authHandler *handler.AuthHandler,
	ratingHandler *handler.RatingHandler,
	choiceHandler *handler.ChoiceHandler,
	compatibilityHandler *handler.CompatibilityHandler,
	adminHandler *handler.AdminHandler,
	authMiddleware *middleware.AuthMiddleware,
) *Router {
	return &Router{
		authHandler:          authHandler,
		ratingHandler:        ratingHandler,
		choiceHandler:        choiceHandler,
		compatibilityHandler: compatibilityHandler,
		adminHandler:         adminHandler,
		authMiddleware:       authMiddleware,
	}
}

func (r *Router) Setup() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	// Health check (supports both GET and HEAD)
	healthHandler := func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	}
	router.GET("/health", healthHandler)
	router.HEAD("/health", healthHandler)

	// API v1
	v1 := router.Group("/api/v1")
	v1.Use(r.authMiddleware.RequireAuth())
	{
		v1.GET("/auth/me", r.authHandler.Me)

		events := v1.Group("/events/:event_id")
		{
			events.POST("/ratings", r.ratingHandler.SubmitRating)
			events.GET("/choices/form", r.choiceHandler.GetForm)
			events.POST("/choices", r.choiceHandler.Submit)
			events.GET("/results", r.choiceHandler.GetResults)
			events.GET("/vip-bonus", r.choiceHandler.GetVIPBonus)
		}

		compat := v1.Group("/compatibility")
		{
			compat.GET("", r.compatibilityHandler.ListTop)
			compat.GET("/:user_id", r.compatibilityHandler.GetScore)
		}

		admin := v1.Group("/admin")
		admin.Use(r.authMiddleware.RequireAdmin())
		{
			admin.POST("/recalculate", r.adminHandler.Recalculate)
			admin.POST("/taste/learn", r.adminHandler.LearnTaste)
			admin.GET("/weights", r.adminHandler.GetWeights)
			admin.PUT("/weights", r.adminHandler.UpdateWeights)
			admin.POST("/events/:event_id/resolve", r.adminHandler.ResolveEvent)
		}
	}

	return router
}
