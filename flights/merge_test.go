package flights

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchKeyString(t *testing.T) {
	key := MatchKey{Carrier: "BA", DepartAt: "2025-12-12 10:30:00"}
	assert.Equal(t, "BA_2025-12-12 10:30:00", key.String())
}

func TestMerge_DeepLinkOverwritesFallback(t *testing.T) {
	offers := []FlightOffer{{
		ID:          "o1",
		CarrierCode: "BA",
		DepartAt:    "2025-12-12 10:30:00",
		BookingLink: "https://www.aviasales.com/search/ARN1212LHR1?marker=1&currency=eur",
		Vendor:      "Amadeus",
	}}
	links := DeepLinkMap{
		{Carrier: "BA", DepartAt: "2025-12-12 10:30:00"}: {Link: "https://x/y", Price: 120, GateID: "gate-7"},
	}

	merged := Merge(context.Background(), offers, links)

	assert.Len(t, merged, 1)
	assert.Equal(t, "https://x/y", merged[0].BookingLink)
	assert.Equal(t, "gate-7", merged[0].Vendor)
	// Input slice is untouched
	assert.Equal(t, "Amadeus", offers[0].Vendor)
}

func TestMerge_UnmatchedKeepsFallback(t *testing.T) {
	fallback := "https://www.aviasales.com/search/ARN1212LHR1?marker=1&currency=eur"
	offers := []FlightOffer{{ID: "o1", CarrierCode: "SK", DepartAt: "2025-12-12 08:00:00", BookingLink: fallback, Vendor: "Amadeus"}}
	links := DeepLinkMap{
		{Carrier: "BA", DepartAt: "2025-12-12 10:30:00"}: {Link: "https://x/y", Price: 120, GateID: "gate-7"},
	}

	merged := Merge(context.Background(), offers, links)

	assert.Equal(t, fallback, merged[0].BookingLink)
	assert.Equal(t, "Amadeus", merged[0].Vendor)
}

func TestMerge_PreservesOrderAndCardinality(t *testing.T) {
	offers := []FlightOffer{
		{ID: "a", CarrierCode: "BA", DepartAt: "2025-12-12 10:30:00"},
		{ID: "b", CarrierCode: "SK", DepartAt: "2025-12-12 11:00:00"},
		{ID: "c", CarrierCode: "LH", DepartAt: "2025-12-12 12:00:00"},
	}

	merged := Merge(context.Background(), offers, DeepLinkMap{})

	assert.Len(t, merged, len(offers))
	for i := range offers {
		assert.Equal(t, offers[i].ID, merged[i].ID)
	}
}

func TestMerge_Idempotent(t *testing.T) {
	offers := []FlightOffer{
		{ID: "a", CarrierCode: "BA", DepartAt: "2025-12-12 10:30:00", BookingLink: "fallback"},
		{ID: "b", CarrierCode: "SK", DepartAt: "2025-12-12 11:00:00", BookingLink: "fallback"},
	}
	links := DeepLinkMap{
		{Carrier: "BA", DepartAt: "2025-12-12 10:30:00"}: {Link: "https://x/y", Price: 120, GateID: "g1"},
	}

	once := Merge(context.Background(), offers, links)
	twice := Merge(context.Background(), once, links)

	assert.Equal(t, once, twice)
}

func TestMerge_EmptyLinkRecordIgnored(t *testing.T) {
	offers := []FlightOffer{{ID: "a", CarrierCode: "BA", DepartAt: "2025-12-12 10:30:00", BookingLink: "fallback"}}
	links := DeepLinkMap{
		{Carrier: "BA", DepartAt: "2025-12-12 10:30:00"}: {Link: "", Price: 99, GateID: "g1"},
	}

	merged := Merge(context.Background(), offers, links)
	assert.Equal(t, "fallback", merged[0].BookingLink)
}

func TestMatchCount(t *testing.T) {
	offers := []FlightOffer{
		{ID: "a", CarrierCode: "BA", DepartAt: "2025-12-12 10:30:00"},
		{ID: "b", CarrierCode: "SK", DepartAt: "2025-12-12 11:00:00"},
	}
	links := DeepLinkMap{
		{Carrier: "BA", DepartAt: "2025-12-12 10:30:00"}: {Link: "https://x/y"},
	}

	assert.Equal(t, 1, MatchCount(offers, links))
	assert.Equal(t, 0, MatchCount(offers, DeepLinkMap{}))
}
