package amadeus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mehzan07/flightfinder/flights"
)

func TestStandardizeTimestamp(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"utc zulu", "2025-12-12T10:30:00Z", "2025-12-12 10:30:00"},
		{"explicit offset keeps wall time", "2025-12-12T10:30:00+01:00", "2025-12-12 10:30:00"},
		{"negative offset", "2025-12-12T22:15:00-05:00", "2025-12-12 22:15:00"},
		{"no offset", "2025-12-12T10:30:00", "2025-12-12 10:30:00"},
		{"garbage", "not-a-timestamp", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, standardizeTimestamp(tt.input))
		})
	}
}

func normalizeTestClient() *Client {
	client, _ := NewClient("id", "secret", "", time.Second, nil)
	client.Marker = "12345"
	client.LinkHost = "www.aviasales.com"
	return client
}

func TestNormalizeOffer_RejectsMalformed(t *testing.T) {
	client := normalizeTestClient()
	q := flights.Query{Origin: "ARN", Destination: "LHR"}

	assert.Nil(t, client.normalizeOffer(rawOffer{ID: "no-itineraries"}, q))
	assert.Nil(t, client.normalizeOffer(rawOffer{
		ID:          "no-segments",
		Itineraries: []rawItinerary{{Duration: "PT1H"}},
	}, q))
}

func TestNormalizeOffer_RoundTrip(t *testing.T) {
	client := normalizeTestClient()
	q := flights.Query{
		Origin:      "ARN",
		Destination: "LHR",
		TripType:    flights.TripTypeRoundTrip,
		Passengers:  flights.Passengers{Adults: 2},
	}

	raw := rawOffer{
		ID: "42",
		Itineraries: []rawItinerary{
			{
				Duration: "PT2H30M",
				Segments: []rawSegment{
					{
						Departure:   rawEndpoint{IataCode: "ARN", At: "2025-12-12T10:30:00+01:00"},
						Arrival:     rawEndpoint{IataCode: "CPH", At: "2025-12-12T11:40:00+01:00"},
						CarrierCode: "SK",
						Number:      "403",
					},
					{
						Departure: rawEndpoint{IataCode: "CPH", At: "2025-12-12T12:30:00+01:00"},
						Arrival:   rawEndpoint{IataCode: "LHR", At: "2025-12-12T13:00:00+00:00"},
					},
				},
			},
			{
				Duration: "PT2H15M",
				Segments: []rawSegment{{
					Departure: rawEndpoint{IataCode: "LHR", At: "2025-12-19T09:00:00+00:00"},
					Arrival:   rawEndpoint{IataCode: "ARN", At: "2025-12-19T12:15:00+01:00"},
				}},
			},
		},
		Price: rawPrice{Currency: "SEK", Total: "2450.00"},
	}

	offer := client.normalizeOffer(raw, q)
	assert.NotNil(t, offer)

	assert.Equal(t, "SK", offer.CarrierCode)
	assert.Equal(t, "SK403", offer.FlightNumber)
	assert.Equal(t, "2025-12-12 10:30:00", offer.DepartAt)
	assert.Equal(t, "2025-12-12 13:00:00", offer.ArriveAt)
	assert.Equal(t, "2025-12-19 09:00:00", offer.ReturnDepartAt)
	assert.Equal(t, "2025-12-19 12:15:00", offer.ReturnArriveAt)
	assert.Equal(t, 1, offer.Stops)
	assert.Equal(t, 150, offer.DurationMinutes)
	assert.Equal(t, 2450.00, offer.Price)
	assert.Equal(t, "SEK", offer.Currency)
	// Round-trip fallback link carries both DDMM dates and the adult count
	assert.Contains(t, offer.BookingLink, "/search/ARN1212LHR19122?")
	assert.Contains(t, offer.BookingLink, "currency=sek")
}

func TestNormalizeOffer_BadTimestampYieldsEmptyField(t *testing.T) {
	client := normalizeTestClient()
	q := flights.Query{Origin: "ARN", Destination: "LHR"}

	raw := rawOffer{
		ID: "1",
		Itineraries: []rawItinerary{{
			Segments: []rawSegment{{
				Departure:   rawEndpoint{At: "garbage"},
				Arrival:     rawEndpoint{At: "2025-12-12T11:40:00+01:00"},
				CarrierCode: "SK",
				Number:      "1",
			}},
		}},
		Price: rawPrice{Total: "100"},
	}

	offer := client.normalizeOffer(raw, q)
	assert.NotNil(t, offer)
	assert.Equal(t, "", offer.DepartAt)
	assert.Equal(t, "2025-12-12 11:40:00", offer.ArriveAt)
}

func TestNormalizeOffer_StableID(t *testing.T) {
	client := normalizeTestClient()
	q := flights.Query{Origin: "ARN", Destination: "LHR"}

	raw := rawOffer{
		ID: "1",
		Itineraries: []rawItinerary{{
			Segments: []rawSegment{{
				Departure:   rawEndpoint{At: "2025-12-12T10:30:00+01:00"},
				Arrival:     rawEndpoint{At: "2025-12-12T11:40:00+01:00"},
				CarrierCode: "BA",
				Number:      "1",
			}},
		}},
		Price: rawPrice{Total: "100"},
	}

	first := client.normalizeOffer(raw, q)
	second := client.normalizeOffer(raw, q)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "68c6dadb4abea570c5b32fa3f964d7da", first.ID)
}
