package geocode

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const defaultEndpoint = "https://nominatim.openstreetmap.org"

// Place is a resolved address returned by Nominatim.
type Place struct {
	DisplayName string `json:"display_name"`
	Address     struct {
		Country     string `json:"country"`
		CountryCode string `json:"country_code"`
	} `json:"address"`
}

// Country returns the country name of the place. It prefers the structured
// address field and falls back to the last comma-separated segment of the
// display name.
func (p *Place) Country() string {
	if p == nil {
		return ""
	}
	if country := strings.TrimSpace(p.Address.Country); country != "" {
		return country
	}

	segments := strings.Split(p.DisplayName, ",")
	return strings.TrimSpace(segments[len(segments)-1])
}

// Client resolves free-text locations against the Nominatim search API.
// Requests are throttled to one per second per the Nominatim usage policy.
type Client struct {
	userAgent string
	limiter   *rate.Limiter
	logger    *zap.Logger

	HTTPClient *http.Client
	Endpoint   string
}

func NewClient(userAgent string, logger *zap.Logger) *Client {
	return &Client{
		userAgent: userAgent,
		limiter:   rate.NewLimiter(rate.Every(time.Second), 1),
		logger:    logger,
		Endpoint:  defaultEndpoint,
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Resolve geocodes the free-text query. It returns (nil, nil) when the query
// does not resolve to any address, which callers must distinguish from
// transport errors.
func (c *Client) Resolve(ctx context.Context, query string) (*Place, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "geocode: rate limit")
	}

	params := url.Values{
		"q":              {query},
		"format":         {"jsonv2"},
		"limit":          {"1"},
		"addressdetails": {"1"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Endpoint+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: build request")
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: read response body")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("geocode: nominatim returned status %d: %s", resp.StatusCode, string(body))
	}

	var places []*Place
	if err := json.Unmarshal(body, &places); err != nil {
		return nil, eris.Wrap(err, "geocode: parse response")
	}

	if len(places) == 0 {
		c.logger.Debug("no address resolved", zap.String("query", query))
		return nil, nil
	}

	return places[0], nil
}
