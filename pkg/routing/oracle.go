package routing

import (
	"context"
	"errors"

	"github.com/fleetwatch/fleetwatch/pkg/fdm"
)

// ErrUnavailable covers every way the routing oracle can fail to produce a
// usable answer - network errors, timeouts, non-2xx responses and responses
// with no route geometry. Callers degrade the affected estimate to unknown
// rather than failing the surrounding operation.
var ErrUnavailable = errors.New("routing oracle unavailable")

// Oracle estimates travel between two geographic points. Implementations are
// network-bound and best-effort; both queries are independent so a caller may
// run them concurrently.
type Oracle interface {
	EstimateDuration(ctx context.Context, origin *fdm.Location, destination *fdm.Location) (float64, error)
	EstimateDistance(ctx context.Context, origin *fdm.Location, destination *fdm.Location) (float64, error)
}
