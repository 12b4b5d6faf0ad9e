package routing

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/fieldroute/fieldd/params"
	"github.com/paulmach/orb"
	"github.com/tidwall/gjson"
)

// DirectionsClient talks the Google Directions JSON contract.
type DirectionsClient struct {
	config *params.RoutingConfig
	client *http.Client
}

func NewDirectionsClient(config *params.RoutingConfig) *DirectionsClient {
	if config == nil {
		config = params.DefaultRoutingConfig()
	}
	return &DirectionsClient{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
	}
}

// Configured reports whether a credential is present. Without one,
// every call would fail; callers short-circuit on this and log a
// configuration error instead.
func (c *DirectionsClient) Configured() bool {
	return c.config.APIKey != ""
}

func formatPoint(p orb.Point) string {
	return fmt.Sprintf("%f,%f", p.Lat(), p.Lon())
}

// Directions issues one directions request. The provider's status is
// returned verbatim in the Response; transport and non-200 failures
// come back as errors.
func (c *DirectionsClient) Directions(ctx context.Context, req *Request) (*Response, error) {
	if !c.Configured() {
		return nil, ErrNoCredential
	}

	mode := req.Mode
	if mode == "" {
		mode = "driving"
	}

	q := url.Values{}
	q.Set("origin", formatPoint(req.Origin))
	q.Set("destination", formatPoint(req.Destination))
	if len(req.Waypoints) > 0 {
		wps := make([]string, 0, len(req.Waypoints))
		for _, wp := range req.Waypoints {
			wps = append(wps, formatPoint(wp))
		}
		q.Set("waypoints", strings.Join(wps, "|"))
	}
	q.Set("mode", mode)
	q.Set("key", c.config.APIKey)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.config.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("directions request failed: %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return parseDirections(body), nil
}

// parseDirections reads the provider payload leniently; absent or
// malformed fields parse as zeros rather than failing the call.
func parseDirections(body []byte) *Response {
	out := &Response{
		Status: gjson.GetBytes(body, "status").String(),
	}
	for _, route := range gjson.GetBytes(body, "routes").Array() {
		r := Route{}
		for _, leg := range route.Get("legs").Array() {
			r.Legs = append(r.Legs, Leg{
				DistanceMeters:  leg.Get("distance.value").Float(),
				DurationSeconds: leg.Get("duration.value").Float(),
			})
		}
		out.Routes = append(out.Routes, r)
	}
	return out
}
