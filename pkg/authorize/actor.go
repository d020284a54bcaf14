package authorize

type Role string

const (
	// RoleSystemAdmin actors have unrestricted administrative capability.
	RoleSystemAdmin Role = "SYSTEM_ADMIN"

	// RoleStationAdmin actors are scoped to vehicles whose route serves their
	// station.
	RoleStationAdmin Role = "STATION_ADMIN"

	RoleNone Role = "NONE"
)

// Actor identifies who is proposing a mutation. StationRef is only meaningful
// for station admins.
type Actor struct {
	Role Role

	StationRef string
}

func SystemAdmin() Actor {
	return Actor{Role: RoleSystemAdmin}
}

func StationAdmin(stationRef string) Actor {
	return Actor{Role: RoleStationAdmin, StationRef: stationRef}
}
