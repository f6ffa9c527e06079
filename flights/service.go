package flights

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/mehzan07/flightfinder/log"
	"github.com/mehzan07/flightfinder/metrics"
	"github.com/mehzan07/flightfinder/orm"
)

// OfferSource is the primary (GDS-style) adapter: authoritative for flight
// facts, never for affiliate links. It degrades to an empty slice on any
// upstream failure.
type OfferSource interface {
	FetchOffers(ctx context.Context, q Query) []FlightOffer
}

// LinkSource is the secondary (metasearch) adapter producing affiliate deep
// links keyed by match key. It degrades to an empty map on any failure.
type LinkSource interface {
	FetchDeepLinks(ctx context.Context, q Query) DeepLinkMap
}

// Service runs one combined flight search: primary offers, then deep links,
// then the merge. The two upstream calls are strictly sequential; the
// secondary is only consulted when the primary returned at least one offer.
type Service struct {
	Offers  OfferSource
	Links   LinkSource
	Metrics *metrics.Metrics
	DB      *gorm.DB // optional response cache
	TTL     time.Duration
}

// CacheKey is a deterministic identifier for a search request
func (q Query) CacheKey() string {
	return fmt.Sprintf("search:%s:%s:%s:%s:%s:%d-%d-%d:%s:%d:%t",
		q.Origin, q.Destination, q.DepartDate, q.ReturnDate, q.TripType,
		q.Passengers.Adults, q.Passengers.Children, q.Passengers.Infants,
		q.CabinClass, q.Limit, q.DirectOnly)
}

// Search returns the best achievable result for a query, down to an empty
// slice. Upstream failures never surface as errors.
func (s *Service) Search(ctx context.Context, q Query) []FlightOffer {
	started := time.Now()
	if s.Metrics != nil {
		s.Metrics.SearchesTotal.Inc()
		defer func() {
			s.Metrics.SearchDuration.Observe(time.Since(started).Seconds())
		}()
	}

	if q.TripType == "" {
		if q.ReturnDate != "" {
			q.TripType = TripTypeRoundTrip
		} else {
			q.TripType = TripTypeOneWay
		}
	}
	if q.Passengers.Adults <= 0 {
		q.Passengers.Adults = 1
	}

	if cached, ok := s.cachedResult(ctx, q); ok {
		return cached
	}

	offers := s.Offers.FetchOffers(ctx, q)
	if len(offers) == 0 {
		log.Warnf(ctx, "primary source returned no offers for %s-%s on %s",
			q.Origin, q.Destination, q.DepartDate)
		s.observe(0, 0)
		return []FlightOffer{}
	}

	var links DeepLinkMap
	if s.Links != nil {
		links = s.Links.FetchDeepLinks(ctx, q)
	}

	merged := Merge(ctx, offers, links)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Price < merged[j].Price
	})

	s.observe(len(merged), MatchCount(offers, links))
	s.storeResult(ctx, q, merged)

	log.Infof(ctx, "combined search %s-%s: %d offers, %d with deep links",
		q.Origin, q.Destination, len(merged), MatchCount(offers, links))

	return merged
}

func (s *Service) observe(offers, matches int) {
	if s.Metrics == nil {
		return
	}
	s.Metrics.OffersReturned.Observe(float64(offers))
	s.Metrics.DeepLinkMatches.Add(float64(matches))
}

func (s *Service) cachedResult(ctx context.Context, q Query) ([]FlightOffer, bool) {
	if s.DB == nil {
		return nil, false
	}

	entry, err := orm.GetCacheEntry(s.DB, q.CacheKey())
	if err != nil {
		return nil, false
	}

	var offers []FlightOffer
	if err := json.Unmarshal(entry.Value, &offers); err != nil {
		log.Warnf(ctx, "discarding unreadable cache entry %s: %v", q.CacheKey(), err)
		return nil, false
	}

	if s.Metrics != nil {
		s.Metrics.CacheHits.Inc()
	}
	log.Debugf(ctx, "served %d offers from cache for %s", len(offers), q.CacheKey())
	return offers, true
}

func (s *Service) storeResult(ctx context.Context, q Query, offers []FlightOffer) {
	if s.DB == nil || len(offers) == 0 {
		return
	}

	payload, err := json.Marshal(offers)
	if err != nil {
		return
	}

	ttl := s.TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if err := orm.SetCacheEntry(s.DB, q.CacheKey(), payload, ttl); err != nil {
		log.Warnf(ctx, "failed to cache search result: %v", err)
	}
}
