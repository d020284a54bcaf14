package routes

import (
	"errors"

	"github.com/fleetwatch/fleetwatch/pkg/authorize"
	"github.com/fleetwatch/fleetwatch/pkg/fdm"
	"github.com/fleetwatch/fleetwatch/pkg/store"
	"github.com/fleetwatch/fleetwatch/pkg/tracker"
	"github.com/gofiber/fiber/v2"
	"github.com/liip/sheriff"
)

var vehicleService *tracker.Service

// Setup hands the routes their service. Called once before the routers are
// registered.
func Setup(service *tracker.Service) {
	vehicleService = service
}

func VehiclesRouter(router fiber.Router, tokenMiddleware fiber.Handler) {
	router.Get("/", listVehicles)
	router.Get("/:identifier", getVehicle)
	router.Post("/:identifier/position", recordVehiclePosition)
	router.Patch("/:identifier", tokenMiddleware, updateVehicle)
}

func listVehicles(c *fiber.Ctx) error {
	statusQuery := c.Query("status")

	if statusQuery == "" {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "A status filter must be applied to the request",
		})
	}

	vehicles, err := vehicleService.Vehicles.VehiclesByStatus(c.Context(), fdm.VehicleStatus(statusQuery))
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

func getVehicle(c *fiber.Ctx) error {
	identifier := c.Params("identifier")

	vehicle, err := vehicleService.Vehicles.Vehicle(c.Context(), identifier)
	if errors.Is(err, store.ErrNotFound) {
		c.SendStatus(fiber.StatusNotFound)
		return c.JSON(fiber.Map{
			"error": "Could not find Vehicle matching Vehicle Identifier",
		})
	}
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Failed to query Vehicle",
		})
	}

	return c.JSON(vehicle)
}

func recordVehiclePosition(c *fiber.Ctx) error {
	identifier := c.Params("identifier")

	var position fdm.VehiclePosition
	if err := c.BodyParser(&position); err != nil {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "Body should be a vehicle position report",
		})
	}

	snapshot, err := vehicleService.RecordPosition(c.Context(), identifier, &position)

	switch {
	case errors.Is(err, tracker.ErrInvalidPosition):
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	case errors.Is(err, store.ErrNotFound):
		c.SendStatus(fiber.StatusNotFound)
		return c.JSON(fiber.Map{
			"error": "Could not find Vehicle matching Vehicle Identifier",
		})
	case errors.Is(err, store.ErrConflict):
		c.SendStatus(fiber.StatusConflict)
		return c.JSON(fiber.Map{
			"error": "Vehicle record changed during update",
		})
	case err != nil:
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Failed to record vehicle position",
		})
	}

	return c.JSON(snapshot)
}

func updateVehicle(c *fiber.Ctx) error {
	identifier := c.Params("identifier")

	actor, ok := c.Locals("actor").(authorize.Actor)
	if !ok {
		c.SendStatus(fiber.StatusUnauthorized)
		return c.JSON(fiber.Map{
			"error": "No actor resolved for request",
		})
	}

	proposedFields := map[string]interface{}{}
	if err := c.BodyParser(&proposedFields); err != nil {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "Body should be a map of field paths to values",
		})
	}

	vehicle, err := vehicleService.ProposeMutation(c.Context(), actor, identifier, proposedFields)

	switch {
	case errors.Is(err, authorize.ErrDenied):
		c.SendStatus(fiber.StatusForbidden)
		return c.JSON(fiber.Map{
			"error": "Actor is not authorised for this Vehicle",
		})
	case errors.Is(err, store.ErrNotFound):
		c.SendStatus(fiber.StatusNotFound)
		return c.JSON(fiber.Map{
			"error": "Could not find Vehicle matching Vehicle Identifier",
		})
	case errors.Is(err, store.ErrConflict):
		c.SendStatus(fiber.StatusConflict)
		return c.JSON(fiber.Map{
			"error": "Vehicle record changed during update",
		})
	case err != nil:
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Failed to update Vehicle",
		})
	}

	return c.JSON(vehicle)
}
