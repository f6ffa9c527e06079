package travelpayouts

import (
	"crypto/md5"
	"fmt"

	"github.com/mehzan07/flightfinder/flights"
)

// Segment is one direction of the requested trip
type Segment struct {
	Date        string `json:"date"`
	Destination string `json:"destination"`
	Origin      string `json:"origin"`
}

// MapCabinClass maps a user-facing cabin class to the metasearch trip_class
// code, defaulting to economy.
func MapCabinClass(cabinClass string) string {
	switch cabinClass {
	case "business":
		return "C"
	case "first":
		return "F"
	default:
		return "Y"
	}
}

// Signature computes the MD5 request signature over a colon-joined string.
// One-way and round-trip requests concatenate differently: the return
// segment's date/destination/origin is inserted before the trip class.
func Signature(token, marker, host, userIP, locale, tripClass string, p flights.Passengers, segments []Segment) string {
	outbound := segments[0]

	var raw string
	if len(segments) == 1 {
		raw = fmt.Sprintf("%s:%s:%s:%s:%d:%d:%d:%s:%s:%s:%s:%s",
			token, host, locale, marker,
			p.Adults, p.Children, p.Infants,
			outbound.Date, outbound.Destination, outbound.Origin,
			tripClass, userIP)
	} else {
		ret := segments[1]
		raw = fmt.Sprintf("%s:%s:%s:%s:%d:%d:%d:%s:%s:%s:%s:%s:%s:%s:%s",
			token, host, locale, marker,
			p.Adults, p.Children, p.Infants,
			outbound.Date, outbound.Destination, outbound.Origin,
			ret.Date, ret.Destination, ret.Origin,
			tripClass, userIP)
	}

	return fmt.Sprintf("%x", md5.Sum([]byte(raw)))
}
