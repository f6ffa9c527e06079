package flights

import (
	"fmt"
	"strconv"
	"strings"
)

// SearchLinkParams are the inputs for a synthesized affiliate search URL.
// This is a best-effort link to a search-results page on the partner site,
// not a deep link to a specific fare.
type SearchLinkParams struct {
	Host        string
	Marker      string
	Origin      string
	Destination string
	DepartDate  string // YYYY-MM-DD
	ReturnDate  string // optional
	Adults      int
	Children    int
	Infants     int
	Currency    string
	TripClass   string // metasearch cabin code (Y/C/F), optional
	Airline     string // carrier filter, optional
	GateID      string // vendor preselection, optional
	DirectOnly  bool
}

// BuildSearchLink synthesizes the fallback affiliate URL:
//
//	https://<host>/search/<ORIGIN><DDMM><DEST>[<DDMM-return>]<adults>?marker=..&currency=..
//
// with optional passenger, cabin, gate, airline and direct-only parameters.
func BuildSearchLink(p SearchLinkParams) string {
	adults := p.Adults
	if adults <= 0 {
		adults = 1
	}

	code := p.Origin + ToDDMM(p.DepartDate) + p.Destination
	if p.ReturnDate != "" {
		code += ToDDMM(p.ReturnDate)
	}
	code += strconv.Itoa(adults)

	var b strings.Builder
	fmt.Fprintf(&b, "https://%s/search/%s?marker=%s&currency=%s",
		p.Host, code, p.Marker, strings.ToLower(p.Currency))

	if p.Children > 0 {
		fmt.Fprintf(&b, "&children=%d", p.Children)
	}
	if p.Infants > 0 {
		fmt.Fprintf(&b, "&infants=%d", p.Infants)
	}
	if p.TripClass != "" {
		fmt.Fprintf(&b, "&trip_class=%s", p.TripClass)
	}
	if p.GateID != "" {
		fmt.Fprintf(&b, "&gate_id=%s", p.GateID)
	}
	if p.Airline != "" {
		fmt.Fprintf(&b, "&airlines=%s", p.Airline)
	}
	if p.DirectOnly {
		b.WriteString("&transfers=0&direct=true")
	}

	return b.String()
}

// AppendMarker attaches the affiliate marker to an upstream-provided deep
// link when it does not already carry one.
func AppendMarker(link, marker string) string {
	if marker == "" || strings.Contains(link, "marker=") {
		return link
	}
	separator := "?"
	if strings.Contains(link, "?") {
		separator = "&"
	}
	return link + separator + "marker=" + marker
}
