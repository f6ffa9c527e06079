package flights

import (
	"context"

	"github.com/mehzan07/flightfinder/log"
)

// Merge attaches affiliate deep links to offers whose match key appears in
// the deep-link map, overwriting the booking link and vendor. Unmatched
// offers keep their synthesized fallback link. The result preserves input
// order and cardinality; offers are never dropped or added, and merging
// twice with the same map yields the same links as merging once.
func Merge(ctx context.Context, offers []FlightOffer, links DeepLinkMap) []FlightOffer {
	merged := make([]FlightOffer, len(offers))
	matched := 0

	for i, offer := range offers {
		key := KeyFor(&offer)
		if rec, ok := links[key]; ok && rec.Link != "" {
			offer.BookingLink = rec.Link
			offer.Vendor = rec.GateID
			matched++
		}
		merged[i] = offer
	}

	log.Debugf(ctx, "merge: %d/%d offers matched a deep link (%d candidates)",
		matched, len(offers), len(links))

	return merged
}

// MatchCount reports how many offers would receive a deep link. Used for
// metrics; Merge itself stays a pure value transformation.
func MatchCount(offers []FlightOffer, links DeepLinkMap) int {
	matched := 0
	for i := range offers {
		if rec, ok := links[KeyFor(&offers[i])]; ok && rec.Link != "" {
			matched++
		}
	}
	return matched
}
