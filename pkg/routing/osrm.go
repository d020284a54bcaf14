package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fleetwatch/fleetwatch/pkg/fdm"
	"github.com/rs/zerolog/log"
)

const defaultOSRMTimeout = 5 * time.Second

// OSRMClient queries an OSRM routing server for travel estimates between two
// points. Requests are idempotent GETs with no side effects on the server.
type OSRMClient struct {
	BaseURL string

	HTTPClient *http.Client
}

func NewOSRMClient(baseURL string) *OSRMClient {
	return &OSRMClient{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: defaultOSRMTimeout,
		},
	}
}

type osrmRoute struct {
	Duration float64 `json:"duration"`
	Distance float64 `json:"distance"`
}

type osrmRouteResponse struct {
	Code   string     `json:"code"`
	Routes []osrmRoute `json:"routes"`
}

func (o *OSRMClient) EstimateDuration(ctx context.Context, origin *fdm.Location, destination *fdm.Location) (float64, error) {
	route, err := o.getRoute(ctx, origin, destination)
	if err != nil {
		return 0, err
	}

	return route.Duration, nil
}

func (o *OSRMClient) EstimateDistance(ctx context.Context, origin *fdm.Location, destination *fdm.Location) (float64, error) {
	route, err := o.getRoute(ctx, origin, destination)
	if err != nil {
		return 0, err
	}

	return route.Distance, nil
}

func (o *OSRMClient) getRoute(ctx context.Context, origin *fdm.Location, destination *fdm.Location) (*osrmRoute, error) {
	// OSRM takes lon,lat pairs
	requestURL := fmt.Sprintf(
		"%s/route/v1/driving/%f,%f;%f,%f?overview=false",
		o.BaseURL,
		origin.Longitude(), origin.Latitude(),
		destination.Longitude(), destination.Latitude(),
	)

	req, err := http.NewRequestWithContext(ctx, "GET", requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, err)
	}

	resp, err := o.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Debug().Int("status", resp.StatusCode).Msg("OSRM returned non-OK status")
		return nil, fmt.Errorf("%w: status code %d", ErrUnavailable, resp.StatusCode)
	}

	jsonBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, err)
	}

	var routeResponse osrmRouteResponse
	if err := json.Unmarshal(jsonBytes, &routeResponse); err != nil {
		return nil, fmt.Errorf("%w: malformed response", ErrUnavailable)
	}

	if routeResponse.Code != "Ok" || len(routeResponse.Routes) == 0 {
		return nil, fmt.Errorf("%w: no route geometry", ErrUnavailable)
	}

	return &routeResponse.Routes[0], nil
}
