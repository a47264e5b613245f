package handler

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"pix-charge-api/internal/database"
)

// NewRouter wires the HTTP surface: charge CRUD, payment simulation and
// the database health endpoint.
func NewRouter(charges *ChargeHandler, health database.Service) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST"},
		AllowHeaders: []string{"Content-Type"},
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, health.Health())
	})

	group := router.Group("/charges")
	{
		group.POST("", charges.Create)
		// Registered before :id so the path is not captured as an id.
		group.POST("/simulate-payment", charges.SimulatePayment)
		group.GET("/:id", charges.FindById)
	}

	return router
}
