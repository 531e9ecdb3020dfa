// Package routing talks to the HERE routing API for distance,
// duration and fare estimation at booking time.
package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/alikamatu/medi-rides-sub003/internal/common/env"
	"github.com/alikamatu/medi-rides-sub003/pkg/models"
)

const (
	routesURL = "https://router.hereapi.com/v8/routes"
	tokenURL  = "https://account.api.here.com/oauth2/token"
)

// perKmRate is the provisional fare rate; final pricing happens on
// ride completion.
const perKmRate = 2.25

// RouteSummary is the provider's answer for one pickup/dropoff pair.
type RouteSummary struct {
	DistanceKm   float64
	DurationMin  float64
	FareEstimate float64
}

type routeResponse struct {
	Routes []struct {
		Sections []struct {
			Summary struct {
				Length   float64 `json:"length"`
				Duration float64 `json:"duration"`
			} `json:"summary"`
		} `json:"sections"`
	} `json:"routes"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Provider is an authenticated routing API client. Construct it
// through a Loader so concurrent callers share one initialization.
type Provider struct {
	httpClient *http.Client
	apiKey     string

	mu          sync.Mutex
	cachedToken string
	tokenExpiry time.Time
}

// NewProvider builds a provider and performs an eager token fetch so
// a misconfigured credential fails at load time, not mid-booking.
func NewProvider(ctx context.Context) (*Provider, error) {
	p := &Provider{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		apiKey:     env.Get("ROUTING_API_KEY", ""),
	}
	if p.apiKey == "" {
		return nil, fmt.Errorf("ROUTING_API_KEY is not set")
	}

	if _, err := p.token(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

// token returns the cached bearer token, fetching a fresh one when
// the cached one is missing or expired.
func (p *Provider) token(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cachedToken != "" && time.Now().Before(p.tokenExpiry) {
		return p.cachedToken, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.URL.RawQuery = form.Encode()

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return "", fmt.Errorf("failed to parse token response: %w", err)
	}

	p.cachedToken = tr.AccessToken
	// renew a minute early to dodge clock skew
	p.tokenExpiry = time.Now().Add(time.Duration(tr.ExpiresIn-60) * time.Second)

	return p.cachedToken, nil
}

// GetRouteSummary asks the routing API for the car route between two
// locations.
func (p *Provider) GetRouteSummary(ctx context.Context, pickup, dropoff models.Location) (*RouteSummary, error) {
	token, err := p.token(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get routing token: %w", err)
	}

	params := url.Values{}
	params.Set("transportMode", "car")
	params.Set("origin", fmt.Sprintf("%f,%f", pickup.Lat, pickup.Lng))
	params.Set("destination", fmt.Sprintf("%f,%f", dropoff.Lat, dropoff.Lng))
	params.Set("return", "summary")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, routesURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("routing API error (%d): %s", resp.StatusCode, string(body))
	}

	var data routeResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("failed to parse routing response: %w", err)
	}

	if len(data.Routes) == 0 || len(data.Routes[0].Sections) == 0 {
		return &RouteSummary{}, nil
	}

	summary := data.Routes[0].Sections[0].Summary
	distanceKm := summary.Length / 1000

	return &RouteSummary{
		DistanceKm:   distanceKm,
		DurationMin:  summary.Duration / 60,
		FareEstimate: perKmRate * distanceKm,
	}, nil
}
