package amadeus

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/mehzan07/flightfinder/flights"
	"github.com/mehzan07/flightfinder/log"
)

// flightSearchResponse is the envelope of /v2/shopping/flight-offers
type flightSearchResponse struct {
	Data []rawOffer `json:"data"`
}

type rawOffer struct {
	ID          string         `json:"id"`
	Itineraries []rawItinerary `json:"itineraries"`
	Price       rawPrice       `json:"price"`
}

type rawItinerary struct {
	Duration string       `json:"duration"`
	Segments []rawSegment `json:"segments"`
}

type rawSegment struct {
	Departure   rawEndpoint `json:"departure"`
	Arrival     rawEndpoint `json:"arrival"`
	CarrierCode string      `json:"carrierCode"`
	Number      string      `json:"number"`
}

type rawEndpoint struct {
	IataCode string `json:"iataCode"`
	At       string `json:"at"`
}

type rawPrice struct {
	Currency string `json:"currency"`
	Total    string `json:"total"`
}

// MapCabinClass maps a user-facing cabin class to the Amadeus travelClass
// enum, defaulting to ECONOMY for anything unrecognized.
func MapCabinClass(cabinClass string) string {
	switch cabinClass {
	case "business":
		return "BUSINESS"
	case "first":
		return "FIRST"
	default:
		return "ECONOMY"
	}
}

// FetchOffers searches flight offers and normalizes them. All failure modes
// degrade to an empty slice: token acquisition, network errors, non-2xx
// responses and empty upstream results are logged, never propagated. The
// result limit is applied after normalization so dropped malformed records
// do not count against it.
func (c *Client) FetchOffers(ctx context.Context, q flights.Query) []flights.FlightOffer {
	token, err := c.Tokens.Get(ctx)
	if err != nil {
		log.Errorf(ctx, "amadeus: failed to get access token: %v", err)
		c.Metrics.UpstreamError(sourceLabel)
		return nil
	}

	params := url.Values{}
	params.Set("originLocationCode", q.Origin)
	params.Set("destinationLocationCode", q.Destination)
	params.Set("departureDate", q.DepartDate)
	params.Set("adults", strconv.Itoa(q.Passengers.Adults))
	params.Set("children", strconv.Itoa(q.Passengers.Children))
	params.Set("infants", strconv.Itoa(q.Passengers.Infants))
	params.Set("currencyCode", c.Currency)
	params.Set("travelClass", MapCabinClass(q.CabinClass))
	if q.Limit > 0 {
		params.Set("max", strconv.Itoa(q.Limit))
	}
	if q.TripType == flights.TripTypeRoundTrip && q.ReturnDate != "" {
		params.Set("returnDate", q.ReturnDate)
	}
	if q.DirectOnly {
		params.Set("nonStop", "true")
	}

	endpoint := fmt.Sprintf("%s/v2/shopping/flight-offers?%s", c.BaseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		log.Errorf(ctx, "amadeus: failed to build request: %v", err)
		return nil
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	log.Infof(ctx, "amadeus: searching %s-%s depart %s", q.Origin, q.Destination, q.DepartDate)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		log.Errorf(ctx, "amadeus: request failed: %v", err)
		c.Metrics.UpstreamError(sourceLabel)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Errorf(ctx, "amadeus: search returned %s", resp.Status)
		c.Metrics.UpstreamError(sourceLabel)
		return nil
	}

	var searchResp flightSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		log.Errorf(ctx, "amadeus: failed to decode response: %v", err)
		c.Metrics.UpstreamError(sourceLabel)
		return nil
	}

	if len(searchResp.Data) == 0 {
		log.Warnf(ctx, "amadeus: no offers for %s-%s on %s", q.Origin, q.Destination, q.DepartDate)
		return nil
	}

	offers := make([]flights.FlightOffer, 0, len(searchResp.Data))
	for _, raw := range searchResp.Data {
		if offer := c.normalizeOffer(raw, q); offer != nil {
			offers = append(offers, *offer)
		}
	}

	if q.Limit > 0 && len(offers) > q.Limit {
		offers = offers[:q.Limit]
	}

	log.Infof(ctx, "amadeus: parsed %d of %d raw offers", len(offers), len(searchResp.Data))
	return offers
}
