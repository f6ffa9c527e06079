// Package travelpayouts implements the secondary link source: a signed
// two-phase metasearch protocol that yields affiliate deep links keyed by
// match key.
package travelpayouts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mehzan07/flightfinder/flights"
	"github.com/mehzan07/flightfinder/log"
	"github.com/mehzan07/flightfinder/metrics"
)

const sourceLabel = "travelpayouts"

// Client is the Travelpayouts flight-search client
type Client struct {
	Token   string
	Marker  string
	Host    string // affiliate host, used in both the signature and links
	UserIP  string
	Locale  string
	BaseURL string

	HTTPClient   *http.Client
	PollAttempts int
	PollDelay    time.Duration

	Metrics *metrics.Metrics
}

// NewClient creates a Travelpayouts client with the protocol's standard
// polling cadence (5 attempts, 3 s apart).
func NewClient(token, marker, host, userIP, locale, baseURL string, timeout time.Duration) *Client {
	if locale == "" {
		locale = "en"
	}
	if baseURL == "" {
		baseURL = "https://api.travelpayouts.com"
	}
	return &Client{
		Token:        token,
		Marker:       marker,
		Host:         host,
		UserIP:       userIP,
		Locale:       locale,
		BaseURL:      baseURL,
		HTTPClient:   &http.Client{Timeout: timeout},
		PollAttempts: 5,
		PollDelay:    3 * time.Second,
	}
}

type searchRequest struct {
	Marker     string             `json:"marker"`
	Host       string             `json:"host"`
	UserIP     string             `json:"user_ip"`
	Locale     string             `json:"locale"`
	TripClass  string             `json:"trip_class"`
	Passengers flights.Passengers `json:"passengers"`
	Segments   []Segment          `json:"segments"`
	Signature  string             `json:"signature"`
}

type searchResponse struct {
	SearchID string `json:"search_id"`
	UUID     string `json:"uuid"`
}

type resultChunk struct {
	Proposals []proposal `json:"proposals"`
}

type proposal struct {
	Segment []proposalSegment   `json:"segment"`
	Terms   map[string]gateTerm `json:"terms"`
}

type proposalSegment struct {
	Flight []proposalFlight `json:"flight"`
}

type proposalFlight struct {
	MarketingCarrier string `json:"marketing_carrier"`
	Number           string `json:"number"`
	Departure        string `json:"departure"`
	Arrival          string `json:"arrival"`
	DepartureDate    string `json:"departure_date"`
	DepartureTime    string `json:"departure_time"`
	ArrivalDate      string `json:"arrival_date"`
	ArrivalTime      string `json:"arrival_time"`
}

type gateTerm struct {
	Price    float64 `json:"price"`
	Currency string  `json:"currency"`
	DeepLink string  `json:"deep_link"`
}

// FetchDeepLinks runs the signed two-phase search and returns the best
// (lowest-price) deep link per match key. Initiation failure, polling
// failure and empty results all degrade to an empty map.
func (c *Client) FetchDeepLinks(ctx context.Context, q flights.Query) flights.DeepLinkMap {
	result := flights.DeepLinkMap{}

	segments := []Segment{{Date: q.DepartDate, Destination: q.Destination, Origin: q.Origin}}
	if q.TripType == flights.TripTypeRoundTrip && q.ReturnDate != "" {
		segments = append(segments, Segment{Date: q.ReturnDate, Destination: q.Origin, Origin: q.Destination})
	}

	tripClass := MapCabinClass(q.CabinClass)

	searchID := c.initiateSearch(ctx, q.Passengers, tripClass, segments)
	if searchID == "" {
		return result
	}

	proposals := c.pollProposals(ctx, searchID)
	if len(proposals) == 0 {
		log.Warnf(ctx, "travelpayouts: no proposals after polling")
		return result
	}

	for _, p := range proposals {
		c.collectProposal(ctx, &p, q, tripClass, result)
	}

	log.Infof(ctx, "travelpayouts: built %d deep-link records from %d proposals",
		len(result), len(proposals))
	return result
}

// initiateSearch posts the signed request and returns the search id, or ""
// on any failure.
func (c *Client) initiateSearch(ctx context.Context, p flights.Passengers, tripClass string, segments []Segment) string {
	payload := searchRequest{
		Marker:     c.Marker,
		Host:       c.Host,
		UserIP:     c.UserIP,
		Locale:     c.Locale,
		TripClass:  tripClass,
		Passengers: p,
		Segments:   segments,
		Signature:  Signature(c.Token, c.Marker, c.Host, c.UserIP, c.Locale, tripClass, p, segments),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return ""
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.BaseURL+"/v1/flight_search", bytes.NewReader(body))
	if err != nil {
		return ""
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		log.Errorf(ctx, "travelpayouts: search initiation failed: %v", err)
		c.Metrics.UpstreamError(sourceLabel)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Errorf(ctx, "travelpayouts: initiation returned %s", resp.Status)
		c.Metrics.UpstreamError(sourceLabel)
		return ""
	}

	var search searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&search); err != nil {
		log.Errorf(ctx, "travelpayouts: failed to decode initiation response: %v", err)
		return ""
	}

	searchID := search.SearchID
	if searchID == "" {
		searchID = search.UUID
	}
	if searchID == "" {
		log.Errorf(ctx, "travelpayouts: no search id in initiation response")
		return ""
	}

	log.Infof(ctx, "travelpayouts: search initiated: %s", searchID)
	return searchID
}

// pollProposals polls the results endpoint, accumulating proposals across
// chunks until an attempt yields at least one or attempts run out.
func (c *Client) pollProposals(ctx context.Context, searchID string) []proposal {
	resultsURL := fmt.Sprintf("%s/v1/flight_search_results?uuid=%s", c.BaseURL, searchID)
	var proposals []proposal

	for attempt := 0; attempt < c.PollAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return proposals
		case <-time.After(c.PollDelay):
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, resultsURL, nil)
		if err != nil {
			return proposals
		}

		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			log.Errorf(ctx, "travelpayouts: polling failed: %v", err)
			c.Metrics.UpstreamError(sourceLabel)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			log.Warnf(ctx, "travelpayouts: poll attempt %d: status %s", attempt+1, resp.Status)
			resp.Body.Close()
			continue
		}

		var chunks []resultChunk
		err = json.NewDecoder(resp.Body).Decode(&chunks)
		resp.Body.Close()
		if err != nil {
			log.Errorf(ctx, "travelpayouts: failed to decode poll response: %v", err)
			continue
		}

		for _, chunk := range chunks {
			proposals = append(proposals, chunk.Proposals...)
		}

		if len(proposals) > 0 {
			log.Infof(ctx, "travelpayouts: got %d proposals on attempt %d", len(proposals), attempt+1)
			break
		}
	}

	return proposals
}

// collectProposal folds one proposal's per-gate terms into the deep-link
// map, keeping only the lowest price per match key.
func (c *Client) collectProposal(ctx context.Context, p *proposal, q flights.Query, tripClass string, result flights.DeepLinkMap) {
	if len(p.Segment) == 0 {
		return
	}
	outbound := p.Segment[0].Flight
	if len(outbound) == 0 {
		return
	}
	if q.DirectOnly && len(outbound) > 1 {
		return
	}

	first := outbound[0]
	last := outbound[len(outbound)-1]

	departAt := normalizeDateTime(first.DepartureDate, first.DepartureTime)
	if first.MarketingCarrier == "" || departAt == "" {
		return
	}
	key := flights.MatchKey{Carrier: first.MarketingCarrier, DepartAt: departAt}

	returnDate := ""
	if len(p.Segment) > 1 && len(p.Segment[1].Flight) > 0 {
		returnDate = p.Segment[1].Flight[0].DepartureDate
	}

	for gateID, term := range p.Terms {
		if term.Price <= 0 {
			continue
		}

		var link string
		if strings.HasPrefix(term.DeepLink, "http") {
			link = flights.AppendMarker(term.DeepLink, c.Marker)
		} else {
			link = flights.BuildSearchLink(flights.SearchLinkParams{
				Host:        c.Host,
				Marker:      c.Marker,
				Origin:      first.Departure,
				Destination: last.Arrival,
				DepartDate:  first.DepartureDate,
				ReturnDate:  returnDate,
				Adults:      q.Passengers.Adults,
				Children:    q.Passengers.Children,
				Infants:     q.Passengers.Infants,
				Currency:    term.Currency,
				TripClass:   tripClass,
				GateID:      gateID,
				DirectOnly:  q.DirectOnly,
			})
		}

		existing, seen := result[key]
		if !seen || term.Price < existing.Price {
			result[key] = flights.DeepLinkRecord{
				Link:     link,
				Price:    term.Price,
				Currency: term.Currency,
				GateID:   gateID,
			}
		}
	}
}

// normalizeDateTime joins the upstream's separate date and time fields into
// the normalized "YYYY-MM-DD HH:MM:SS" form, padding a missing seconds
// component. The textual form must line up exactly with the primary
// normalizer's output or the offer silently fails to match.
func normalizeDateTime(date, clock string) string {
	if date == "" || clock == "" {
		return ""
	}

	parts := strings.Split(clock, ":")
	if len(parts) < 2 {
		return ""
	}
	seconds := "00"
	if len(parts) > 2 {
		seconds = parts[2]
	}

	return fmt.Sprintf("%s %s:%s:%s", date, parts[0], parts[1], seconds)
}
