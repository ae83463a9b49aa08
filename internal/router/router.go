package router

import (
	"github.com/varunhp06/campus-connect-sub000/internal/handlers"
	"github.com/varunhp06/campus-connect-sub000/internal/middleware"
	"github.com/varunhp06/campus-connect-sub000/internal/service"
	"github.com/varunhp06/campus-connect-sub000/internal/token"

	"github.com/gin-contrib/cors"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
)

type Services struct {
	Catalog service.CatalogService
	Rental  service.RentalService
	Returns service.ReturnService
	Orders  service.OrderService
}

func Router(svcs Services, verifier *token.HSVerifier, log *zap.Logger) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	catalogHandler := handlers.NewCatalogHandler(svcs.Catalog, log)
	rentalHandler := handlers.NewRentalHandler(svcs.Rental, log)
	returnHandler := handlers.NewReturnHandler(svcs.Returns, log)
	orderHandler := handlers.NewOrderHandler(svcs.Orders, log)

	auth := middleware.AuthRequired(verifier, log)
	adminOnly := middleware.RequireRole(service.RoleAdmin)
	staff := middleware.RequireRole(service.RoleVendor, service.RoleAdmin)

	v1 := r.Group("/api/v1")

	// Витрина открыта без токена
	catalog := v1.Group("/catalog")
	{
		catalog.GET("/items", catalogHandler.List)
		catalog.GET("/items/:id", catalogHandler.Get)
		catalog.GET("/items/:id/availability", catalogHandler.Availability)

		manage := catalog.Group("", auth, staff)
		{
			manage.POST("/items", catalogHandler.Create)
			manage.PATCH("/items/:id", catalogHandler.Update)
			manage.DELETE("/items/:id", catalogHandler.Delete)
			manage.GET("/items/:id/stock", catalogHandler.GetStock)
			manage.PUT("/items/:id/stock", catalogHandler.SetStock)
			manage.POST("/items/:id/stock", catalogHandler.AdjustStock)
		}
	}

	rentals := v1.Group("/rentals", auth)
	{
		rentals.POST("/requests", rentalHandler.Create)
		rentals.GET("/requests", rentalHandler.List)
		rentals.GET("/requests/:id", rentalHandler.Get)
		rentals.GET("/holdings/:holder_id", rentalHandler.GetHolding)

		// Модерация заявок — только админ
		rentals.POST("/requests/:id/approve", adminOnly, rentalHandler.Approve)
		rentals.POST("/requests/:id/reject", adminOnly, rentalHandler.Reject)
	}

	returns := v1.Group("/returns", auth)
	{
		returns.POST("", returnHandler.Create)
		returns.GET("", returnHandler.List)
		returns.GET("/:id", returnHandler.Get)

		returns.POST("/:id/approve", adminOnly, returnHandler.Approve)
		returns.POST("/:id/reject", adminOnly, returnHandler.Reject)
	}

	orders := v1.Group("/orders", auth)
	{
		orders.POST("", orderHandler.Create)
		orders.GET("", orderHandler.List)
		orders.GET("/:id", orderHandler.Get)

		// Кухня двигает заказы
		orders.POST("/:id/advance", staff, orderHandler.Advance)
		orders.POST("/:id/reject", staff, orderHandler.Reject)
	}

	return r
}
