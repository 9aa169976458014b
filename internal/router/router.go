package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/thucdon/backend/internal/api"
	"github.com/thucdon/backend/internal/middleware"
)

// Setup configures the application routes
func Setup(
	jwtSecret string,
	menuHandler *api.MenuHandler,
	mealPlanHandler *api.MealPlanHandler,
	shoppingListHandler *api.ShoppingListHandler,
	adminHandler *api.AdminHandler,
) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization", "Accept", "Origin"},
		AllowCredentials: true,
		MaxAge:           24 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	v1.Use(middleware.Auth(jwtSecret))
	{
		menuHandler.RegisterRoutes(v1)
		mealPlanHandler.RegisterRoutes(v1)
		shoppingListHandler.RegisterRoutes(v1)
		adminHandler.RegisterRoutes(v1)
	}

	return router
}
