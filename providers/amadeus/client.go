// Package amadeus implements the primary offer source: the Amadeus
// flight-offers API behind an OAuth2 client-credentials token.
package amadeus

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/mehzan07/flightfinder/metrics"
)

const (
	BaseURLTest       = "https://test.api.amadeus.com"
	BaseURLProduction = "https://api.amadeus.com"

	sourceLabel = "amadeus"
)

// Client is the Amadeus API client
type Client struct {
	ClientID     string
	ClientSecret string
	BaseURL      string
	HTTPClient   *http.Client

	// Affiliate parameters for synthesized fallback links
	Marker   string
	LinkHost string
	Currency string

	Metrics *metrics.Metrics
	Tokens  *TokenCache
}

// NewClient creates a new Amadeus client. A nil store keeps the token
// purely in-process.
func NewClient(clientID, clientSecret, baseURL string, timeout time.Duration, store TokenStore) (*Client, error) {
	if clientID == "" {
		return nil, fmt.Errorf("client ID is required")
	}
	if clientSecret == "" {
		return nil, fmt.Errorf("client secret is required")
	}
	if baseURL == "" {
		baseURL = BaseURLTest
	}

	c := &Client{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		BaseURL:      baseURL,
		HTTPClient:   &http.Client{Timeout: timeout},
		Currency:     "EUR",
	}
	c.Tokens = NewTokenCache(sourceLabel, store, c.authenticate)

	return c, nil
}

// authToken is the OAuth2 token response
type authToken struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// authenticate performs the client-credentials exchange. The returned
// expiry is pulled forward 60 seconds so callers refresh before the token
// actually lapses.
func (c *Client) authenticate(ctx context.Context) (string, time.Time, error) {
	data := url.Values{}
	data.Set("grant_type", "client_credentials")
	data.Set("client_id", c.ClientID)
	data.Set("client_secret", c.ClientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.BaseURL+"/v1/security/oauth2/token", bytes.NewBufferString(data.Encode()))
	if err != nil {
		return "", time.Time{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", time.Time{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", time.Time{}, fmt.Errorf("authentication failed: %s", resp.Status)
	}

	var token authToken
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return "", time.Time{}, err
	}

	expiry := time.Now().Add(time.Duration(token.ExpiresIn)*time.Second - 60*time.Second)
	return token.AccessToken, expiry, nil
}
