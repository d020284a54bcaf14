package authorize

import (
	"errors"
	"strings"

	"github.com/fleetwatch/fleetwatch/pkg/fdm"
	"golang.org/x/exp/slices"
)

// ErrDenied is returned when an actor has no authority over the target vehicle
// at all. Callers must keep it distinguishable from a not-found outcome.
var ErrDenied = errors.New("actor not authorised for vehicle")

// Fields a station admin may touch. Anything else they propose is silently
// dropped rather than rejected.
var scopedAllowedFields = []string{"status", "schedule"}
var scopedAllowedPrefixes = []string{"schedule.", "route."}

// Filter reduces a proposed field mutation to the subset the actor may apply.
// System admins pass everything through. Station admins must administer a
// station on the vehicle's route, otherwise the whole mutation is denied; when
// eligible their fields are filtered to the allow-list, and an empty surviving
// set is still a success. Pure function, no I/O.
func Filter(actor Actor, vehicle *fdm.Vehicle, proposedFields map[string]interface{}) (map[string]interface{}, error) {
	switch actor.Role {
	case RoleSystemAdmin:
		allowed := map[string]interface{}{}
		for path, value := range proposedFields {
			allowed[path] = value
		}
		return allowed, nil

	case RoleStationAdmin:
		if !vehicle.Route.ContainsStop(actor.StationRef) {
			return nil, ErrDenied
		}

		allowed := map[string]interface{}{}
		for path, value := range proposedFields {
			if fieldAllowedForScoped(path) {
				allowed[path] = value
			}
		}
		return allowed, nil

	default:
		return nil, ErrDenied
	}
}

func fieldAllowedForScoped(path string) bool {
	if slices.Contains(scopedAllowedFields, path) {
		return true
	}

	for _, prefix := range scopedAllowedPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}

	return false
}
