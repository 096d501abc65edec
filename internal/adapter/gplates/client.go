package gplates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/paleotemp-etl/internal/domain"
	"github.com/couchcryptid/paleotemp-etl/internal/observability"
)

// ErrMalformed is returned when the service answers with a body that does not
// hold one coordinate pair per requested point.
var ErrMalformed = errors.New("malformed gplates response")

// Client implements domain.Rotator using the GPlates Web Service
// reconstruct_points endpoint.
type Client struct {
	model      string
	batchSize  int
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates a GPlates rotation client. batchSize caps the points per
// request to keep GET URLs short.
func NewClient(baseURL, model string, timeout time.Duration, batchSize int, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		model:     model,
		batchSize: batchSize,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
		metrics: metrics,
	}
}

// MaxBatch returns the largest number of points accepted per Rotate call.
func (c *Client) MaxBatch() int { return c.batchSize }

// Rotate reconstructs points to their positions at age Ma.
func (c *Client) Rotate(ctx context.Context, points []domain.Point, age float64) ([]domain.Point, error) {
	if len(points) == 0 {
		return nil, nil
	}
	if c.batchSize > 0 && len(points) > c.batchSize {
		return nil, fmt.Errorf("rotate %d points: batch limit is %d", len(points), c.batchSize)
	}

	// The service takes lon,lat pairs.
	coords := make([]string, 0, 2*len(points))
	for _, p := range points {
		coords = append(coords, formatCoord(p.Lon), formatCoord(p.Lat))
	}
	params := url.Values{
		"points": {strings.Join(coords, ",")},
		"time":   {formatCoord(age)},
		"model":  {c.model},
	}
	u := c.baseURL + "/reconstruct/reconstruct_points/?" + params.Encode()

	start := time.Now()
	out, err := c.doRequest(ctx, u, len(points))
	c.metrics.RotationAPIDuration.Observe(time.Since(start).Seconds())

	switch {
	case errors.Is(err, ErrMalformed):
		c.metrics.RotationRequests.WithLabelValues("malformed").Inc()
	case err != nil:
		c.metrics.RotationRequests.WithLabelValues("error").Inc()
	default:
		c.metrics.RotationRequests.WithLabelValues("success").Inc()
	}
	return out, err
}

func (c *Client) doRequest(ctx context.Context, fullURL string, n int) ([]domain.Point, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("reconstruct request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("gplates API error: status %d: %s", resp.StatusCode, body)
	}

	var r response
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if len(r.Coordinates) != n {
		return nil, fmt.Errorf("%w: %d coordinates for %d points", ErrMalformed, len(r.Coordinates), n)
	}

	out := make([]domain.Point, n)
	for i, pair := range r.Coordinates {
		if len(pair) < 2 || pair[0] == nil || pair[1] == nil {
			out[i] = domain.Point{Lat: math.NaN(), Lon: math.NaN()}
			continue
		}
		out[i] = domain.Point{Lat: *pair[1], Lon: *pair[0]}
	}
	return out, nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(math.Round(v*1000)/1000, 'f', -1, 64)
}

// GPlates API response types.

type response struct {
	Type        string       `json:"type"`
	Coordinates [][]*float64 `json:"coordinates"` // [[lon, lat], ...]
}
