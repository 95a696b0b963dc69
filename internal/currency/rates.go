package currency

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

const defaultEndpoint = "https://v6.exchangerate-api.com/v6"

// Snapshot is an immutable mapping of currency code to rate relative to the
// base currency, loaded once per process lifetime.
type Snapshot struct {
	base  string
	rates map[string]float64
}

// NewSnapshot builds a snapshot from a code->rate map. Codes are normalized
// to upper case.
func NewSnapshot(base string, rates map[string]float64) Snapshot {
	normalized := make(map[string]float64, len(rates))
	for code, rate := range rates {
		normalized[strings.ToUpper(strings.TrimSpace(code))] = rate
	}
	return Snapshot{base: strings.ToUpper(base), rates: normalized}
}

// Rate returns the conversion rate for the given code. Unknown codes resolve
// to 1 so an incomplete snapshot degrades to treating amounts as already in
// the base currency instead of rejecting the record.
func (s Snapshot) Rate(code string) float64 {
	rate, ok := s.rates[strings.ToUpper(strings.TrimSpace(code))]
	if !ok || rate == 0 {
		return 1
	}
	return rate
}

// Base returns the base currency code the rates are relative to.
func (s Snapshot) Base() string { return s.base }

// Len returns the number of known currency codes.
func (s Snapshot) Len() int { return len(s.rates) }

type latestResponse struct {
	Result          string             `json:"result"`
	BaseCode        string             `json:"base_code"`
	ConversionRates map[string]float64 `json:"conversion_rates"`
}

// Client fetches rate snapshots from exchangerate-api.com.
type Client struct {
	apiKey string
	logger *zap.Logger

	HTTPClient *http.Client
	Endpoint   string
}

func NewClient(apiKey string, logger *zap.Logger) *Client {
	return &Client{
		apiKey:   apiKey,
		logger:   logger,
		Endpoint: defaultEndpoint,
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// FetchLatest performs the one-shot snapshot fetch for the given base
// currency. The process is expected to fail fast when this errors.
func (c *Client) FetchLatest(ctx context.Context, base string) (Snapshot, error) {
	url := c.Endpoint + "/" + c.apiKey + "/latest/" + strings.ToUpper(base)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Snapshot{}, eris.Wrap(err, "currency: build request")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return Snapshot{}, eris.Wrap(err, "currency: request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Snapshot{}, eris.Wrap(err, "currency: read response body")
	}

	if resp.StatusCode != http.StatusOK {
		return Snapshot{}, eris.Errorf("currency: api returned status %d: %s", resp.StatusCode, string(body))
	}

	var latest latestResponse
	if err := json.Unmarshal(body, &latest); err != nil {
		return Snapshot{}, eris.Wrap(err, "currency: parse response")
	}

	if latest.Result != "success" || len(latest.ConversionRates) == 0 {
		return Snapshot{}, eris.Errorf("currency: api returned result %q with %d rates", latest.Result, len(latest.ConversionRates))
	}

	c.logger.Info("loaded currency rate snapshot",
		zap.String("base", latest.BaseCode),
		zap.Int("rates", len(latest.ConversionRates)),
	)

	return NewSnapshot(latest.BaseCode, latest.ConversionRates), nil
}
