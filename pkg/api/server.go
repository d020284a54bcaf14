package api

import (
	"github.com/fleetwatch/fleetwatch/pkg/api/routes"
	"github.com/fleetwatch/fleetwatch/pkg/tracker"
	"github.com/gofiber/fiber/v2"
)

func SetupServer(listen string, service *tracker.Service) error {
	webApp := fiber.New()
	webApp.Use(NewLogger())

	routes.Setup(service)

	group := webApp.Group("/core")

	group.Get("version", routes.APIVersion)

	routes.VehiclesRouter(group.Group("/vehicles"), EnsureValidToken())
	routes.StopsRouter(group.Group("/stops"))

	return webApp.Listen(listen)
}
