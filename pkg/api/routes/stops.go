package routes

import (
	"errors"

	"github.com/fleetwatch/fleetwatch/pkg/store"
	"github.com/gofiber/fiber/v2"
	"github.com/liip/sheriff"
)

func StopsRouter(router fiber.Router) {
	router.Get("/:identifier", getStop)
	router.Get("/:identifier/vehicles", getStopVehicles)
}

func getStop(c *fiber.Ctx) error {
	identifier := c.Params("identifier")

	stop, err := store.MongoStopStore{}.Stop(c.Context(), identifier)
	if errors.Is(err, store.ErrNotFound) {
		c.SendStatus(fiber.StatusNotFound)
		return c.JSON(fiber.Map{
			"error": "Could not find Stop matching Stop Identifier",
		})
	}
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Failed to query Stop",
		})
	}

	return c.JSON(stop)
}

func getStopVehicles(c *fiber.Ctx) error {
	identifier := c.Params("identifier")

	vehicles, err := vehicleService.Vehicles.VehiclesServingStop(c.Context(), identifier)
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Failed to query Vehicles",
		})
	}

	reduced, err := sheriff.Marshal(&sheriff.Options{
		Groups: []string{"basic"},
	}, vehicles)
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Sheriff could not reduce vehicles",
		})
	}

	return c.JSON(reduced)
}
