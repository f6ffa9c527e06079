package amadeus

import (
	"crypto/md5"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mehzan07/flightfinder/flights"
)

// normalizeOffer converts one raw Amadeus offer into the common flight
// record. Returns nil for malformed records (no itineraries, no segments);
// these are expected inputs, not errors.
func (c *Client) normalizeOffer(raw rawOffer, q flights.Query) *flights.FlightOffer {
	if len(raw.Itineraries) == 0 {
		return nil
	}

	outbound := raw.Itineraries[0]
	if len(outbound.Segments) == 0 {
		return nil
	}

	first := outbound.Segments[0]
	last := outbound.Segments[len(outbound.Segments)-1]

	departRaw := first.Departure.At
	departAt := standardizeTimestamp(departRaw)
	arriveAt := standardizeTimestamp(last.Arrival.At)

	var returnDepartAt, returnArriveAt string
	if q.TripType == flights.TripTypeRoundTrip && len(raw.Itineraries) > 1 {
		if segs := raw.Itineraries[1].Segments; len(segs) > 0 {
			returnDepartAt = standardizeTimestamp(segs[0].Departure.At)
			returnArriveAt = standardizeTimestamp(segs[len(segs)-1].Arrival.At)
		}
	}

	price, _ := strconv.ParseFloat(raw.Price.Total, 64)
	currency := raw.Price.Currency
	if currency == "" {
		currency = c.Currency
	}

	durationMinutes := flights.ParseISODuration(outbound.Duration)

	departDate := ""
	if len(departRaw) >= 10 {
		departDate = departRaw[:10]
	}
	returnDate := ""
	if len(returnDepartAt) >= 10 {
		returnDate = returnDepartAt[:10]
	}

	link := flights.BuildSearchLink(flights.SearchLinkParams{
		Host:        c.LinkHost,
		Marker:      c.Marker,
		Origin:      q.Origin,
		Destination: q.Destination,
		DepartDate:  departDate,
		ReturnDate:  returnDate,
		Adults:      q.Passengers.Adults,
		Currency:    currency,
		Airline:     first.CarrierCode,
		DirectOnly:  q.DirectOnly,
	})

	return &flights.FlightOffer{
		// Hash of the upstream offer id plus the raw departure string, so
		// the same offer re-fetched later keeps a stable id.
		ID:              fmt.Sprintf("%x", md5.Sum([]byte(raw.ID+"_"+departRaw))),
		CarrierCode:     first.CarrierCode,
		FlightNumber:    first.CarrierCode + first.Number,
		Origin:          q.Origin,
		Destination:     q.Destination,
		DepartAt:        departAt,
		ArriveAt:        arriveAt,
		ReturnDepartAt:  returnDepartAt,
		ReturnArriveAt:  returnArriveAt,
		Stops:           len(outbound.Segments) - 1,
		DurationMinutes: durationMinutes,
		Duration:        flights.FormatDuration(durationMinutes),
		Price:           price,
		Currency:        currency,
		BookingLink:     link,
		Vendor:          "Amadeus",
	}
}

// standardizeTimestamp converts an ISO-8601 timestamp with optional Z or
// explicit offset to the normalized "YYYY-MM-DD HH:MM:SS" form, keeping the
// wall-clock time in the source-supplied timezone. Parse failures yield "".
func standardizeTimestamp(raw string) string {
	if raw == "" {
		return ""
	}

	clean := strings.Replace(raw, "Z", "+00:00", 1)

	dt, err := time.Parse("2006-01-02T15:04:05-07:00", clean)
	if err != nil {
		if dt, err = time.Parse("2006-01-02T15:04:05", clean); err != nil {
			return ""
		}
	}

	return dt.Format("2006-01-02 15:04:05")
}
