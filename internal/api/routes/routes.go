// server/internal/api/routes/routes.go
package routes

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"food-rescue-api-server/internal/api/handlers"
	"food-rescue-api-server/internal/api/middleware"
	"food-rescue-api-server/internal/geocode"
	"food-rescue-api-server/internal/lifecycle"
	"food-rescue-api-server/internal/linking"
	"food-rescue-api-server/internal/matching"
	"food-rescue-api-server/internal/notify"
	"food-rescue-api-server/internal/s3"
	"food-rescue-api-server/internal/socket"
	"food-rescue-api-server/internal/store"
)

// SetupRouter wires the handlers onto the gin engine. Everything except
// register, login, health and the websocket upgrade requires a token.
func SetupRouter(
	st store.Store,
	hub *socket.Hub,
	uploader *s3.Uploader,
	geocoder *geocode.Client,
	notifier *notify.Notifier,
) *gin.Engine {
	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(cors.Default())

	engine := &lifecycle.Engine{Store: st}
	matcher := &matching.Service{Store: st}
	workflow := &linking.Workflow{Store: st, Notifier: notifier}

	donationHandler := &handlers.DonationHandler{
		Engine: engine, Matcher: matcher, Workflow: workflow,
		Store: st, Uploader: uploader, Geocoder: geocoder,
	}
	volunteerHandler := &handlers.VolunteerHandler{
		Engine: engine, Matcher: matcher, Workflow: workflow,
		Store: st, Notifier: notifier,
	}
	ngoHandler := &handlers.NgoHandler{Matcher: matcher, Workflow: workflow, Store: st}
	userHandler := &handlers.UserHandler{Store: st}
	webSocketHandler := &handlers.WebSocketHandler{Hub: hub}

	apiV1 := router.Group("/api/v1")
	{
		apiV1.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		apiV1.GET("/ws", webSocketHandler.ServeWs)

		auth := apiV1.Group("/auth")
		{
			auth.POST("/register", userHandler.Register)
			auth.POST("/login", userHandler.Login)
		}

		donations := apiV1.Group("/donations")
		donations.Use(middleware.Authenticate())
		{
			// Reads are open to every authenticated role.
			donations.GET("/", donationHandler.GetAllDonations)
			donations.GET("/:id", donationHandler.GetDonation)
			donations.GET("/donor/:donorId", donationHandler.GetDonationsByDonor)
			donations.GET("/assigned/:ngoId", donationHandler.GetDonationsAssignedToNgo)
			donations.POST("/nearby", donationHandler.FindNearbyDonations)

			donorRoutes := donations.Group("/")
			donorRoutes.Use(middleware.Authorize("donor", "admin"))
			{
				donorRoutes.POST("/", donationHandler.CreateDonation)
				donorRoutes.PATCH("/:id", donationHandler.UpdateDonation)
				donorRoutes.DELETE("/:id", donationHandler.DeleteDonation)
				donorRoutes.POST("/:id/photo", donationHandler.UploadPhoto)
			}
		}

		volunteers := apiV1.Group("/volunteers")
		volunteers.Use(middleware.Authenticate())
		volunteers.Use(middleware.Authorize("volunteer", "admin"))
		{
			volunteers.PATCH("/accept/:donationId", volunteerHandler.AcceptDonation)
			volunteers.PATCH("/transit/:donationId", volunteerHandler.StartTransit)
			volunteers.PATCH("/deliver/:donationId", volunteerHandler.ConfirmDelivery)
			volunteers.GET("/:id/pickups", volunteerHandler.GetPickups)
			volunteers.PATCH("/:id/toggleAvailability", volunteerHandler.ToggleAvailability)
			volunteers.PATCH("/recommend-ngo/:donationId", volunteerHandler.RecommendNgo)
			volunteers.POST("/request-ngo", volunteerHandler.RequestNgo)
			volunteers.POST("/nearby-ngos", volunteerHandler.FindNearbyNgos)
		}

		ngos := apiV1.Group("/ngos")
		ngos.Use(middleware.Authenticate())
		{
			ngos.POST("/nearby", ngoHandler.FindNearbyNgos)
			ngos.GET("/:id/requests", ngoHandler.GetRequests)

			ngoOnly := ngos.Group("/requests")
			ngoOnly.Use(middleware.Authorize("ngo", "admin"))
			{
				ngoOnly.POST("/", ngoHandler.CreateRequest)
			}

			cancel := ngos.Group("/requests")
			cancel.Use(middleware.Authorize("ngo", "volunteer", "admin"))
			{
				cancel.PATCH("/:id/cancel", ngoHandler.CancelRequest)
			}
		}
	}

	return router
}
