// Package flights holds the common flight-offer model shared by both
// upstream providers, the merge engine that joins them, and the search
// service that orchestrates a request.
package flights

// TripType distinguishes one-way from round-trip searches
type TripType string

const (
	TripTypeOneWay    TripType = "one-way"
	TripTypeRoundTrip TripType = "round-trip"
)

// Passengers holds the traveler counts for a search
type Passengers struct {
	Adults   int `json:"adults"`
	Children int `json:"children"`
	Infants  int `json:"infants"`
}

// Query captures one flight search request
type Query struct {
	Origin      string
	Destination string
	DepartDate  string // YYYY-MM-DD
	ReturnDate  string // YYYY-MM-DD, empty for one-way
	TripType    TripType
	Passengers  Passengers
	CabinClass  string // economy, business, first
	Limit       int
	DirectOnly  bool
}

// FlightOffer is the normalized representation of one priced itinerary,
// regardless of which upstream produced it.
type FlightOffer struct {
	ID              string  `json:"id"`
	CarrierCode     string  `json:"airline"`
	FlightNumber    string  `json:"flight_number"`
	Origin          string  `json:"origin"`
	Destination     string  `json:"destination"`
	DepartAt        string  `json:"depart"`
	ArriveAt        string  `json:"arrive"`
	ReturnDepartAt  string  `json:"return_depart,omitempty"`
	ReturnArriveAt  string  `json:"return_arrive,omitempty"`
	Stops           int     `json:"stops"`
	DurationMinutes int     `json:"duration_minutes"`
	Duration        string  `json:"duration"`
	Price           float64 `json:"price"`
	Currency        string  `json:"currency"`
	DisplayPrice    string  `json:"display_price,omitempty"`
	BookingLink     string  `json:"link"`
	Vendor          string  `json:"vendor"`
}

// MatchKey correlates offers across sources. Two offers describe the same
// flight exactly when their keys are equal; equality is textual, with no
// tolerance window, so the timestamp must already be in the normalized
// YYYY-MM-DD HH:MM:SS form.
type MatchKey struct {
	Carrier  string
	DepartAt string
}

func (k MatchKey) String() string {
	return k.Carrier + "_" + k.DepartAt
}

// KeyFor derives the match key of a normalized offer
func KeyFor(o *FlightOffer) MatchKey {
	return MatchKey{Carrier: o.CarrierCode, DepartAt: o.DepartAt}
}

// DeepLinkRecord is the best (lowest-price) affiliate link seen for one
// match key across all polled proposals.
type DeepLinkRecord struct {
	Link     string
	Price    float64
	Currency string
	GateID   string
}

// DeepLinkMap indexes deep-link records by match key
type DeepLinkMap map[MatchKey]DeepLinkRecord
