package fdm

// NotOnRoute is returned by StopIndex when a stop reference cannot be matched
// against the route's stop sequence. It marks a vehicle that has not yet
// started a recognised leg and is not an error condition.
const NotOnRoute = -1

type Route struct {
	// StopRefs is the ordered traversal sequence of the route. Stop references
	// are unique within a single route.
	StopRefs []string `bson:"stops" groups:"basic"`

	// EstimatedDurationMinutes is the last known estimate for reaching the next
	// stop. Only ever overwritten by a fresh estimate, never cleared by an
	// unknown one.
	EstimatedDurationMinutes int `bson:"estimatedduration" groups:"basic"`
}

// StopIndex finds the position of stopRef within the route's stop sequence.
// An empty reference or one absent from the sequence (eg. stale after a route
// reassignment) yields NotOnRoute.
func (r *Route) StopIndex(stopRef string) int {
	if stopRef == "" {
		return NotOnRoute
	}

	for index, ref := range r.StopRefs {
		if ref == stopRef {
			return index
		}
	}

	return NotOnRoute
}

// NextStopRef returns the stop immediately following index in traversal order.
// ok is false when index is NotOnRoute or already the final stop - the
// terminal state of a traversal.
func (r *Route) NextStopRef(index int) (string, bool) {
	if index == NotOnRoute {
		return "", false
	}

	if index+1 >= len(r.StopRefs) {
		return "", false
	}

	return r.StopRefs[index+1], true
}

// ContainsStop reports whether stopRef appears anywhere on the route.
func (r *Route) ContainsStop(stopRef string) bool {
	return r.StopIndex(stopRef) != NotOnRoute
}
