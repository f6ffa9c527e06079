package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mehzan07/flightfinder/config"
	logcontext "github.com/mehzan07/flightfinder/context"
	"github.com/mehzan07/flightfinder/flights"
	"github.com/mehzan07/flightfinder/log"
	"github.com/mehzan07/flightfinder/metrics"
	"github.com/mehzan07/flightfinder/orm"
	"github.com/mehzan07/flightfinder/providers/amadeus"
	"github.com/mehzan07/flightfinder/providers/travelpayouts"
)

// searchServer exposes the combined flight search over HTTP
type searchServer struct {
	svc *flights.Service

	// featuredLimit caps featured searches (the homepage widget asks for a
	// handful of offers, not the full result set)
	featuredLimit int
}

type searchResultsResponse struct {
	Flights []flights.FlightOffer `json:"flights"`
	Count   int                   `json:"count"`
}

func (s *searchServer) handleResults(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	origin := query.Get("origin")
	destination := query.Get("destination")
	dateFrom := query.Get("date_from")
	if origin == "" || destination == "" || dateFrom == "" {
		http.Error(w, "origin, destination and date_from are required", http.StatusBadRequest)
		return
	}

	ctx := logcontext.WithRequestID(r.Context(), logcontext.NewRequestID())

	limit := intParam(query.Get("limit"), 0)
	if query.Get("featured") == "true" && limit == 0 {
		limit = s.featuredLimit
	}

	q := flights.Query{
		Limit:       limit,
		Origin:      origin,
		Destination: destination,
		DepartDate:  dateFrom,
		ReturnDate:  query.Get("date_to"),
		CabinClass:  query.Get("cabin_class"),
		DirectOnly:  query.Get("direct_only") == "on" || query.Get("direct_only") == "true",
		Passengers: flights.Passengers{
			Adults:   intParam(query.Get("adults"), 1),
			Children: intParam(query.Get("children"), 0),
			Infants:  intParam(query.Get("infants"), 0),
		},
	}

	log.Infof(ctx, "starting combined search: %s to %s on %s", origin, destination, dateFrom)

	offers := s.svc.Search(ctx, q)
	for i := range offers {
		offers[i].DisplayPrice = flights.FormatPrice(offers[i].Price, offers[i].Currency)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(searchResultsResponse{Flights: offers, Count: len(offers)}); err != nil {
		log.Errorf(ctx, "failed to write response: %v", err)
	}
}

func intParam(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n := 0
	for _, c := range raw {
		if c < '0' || c > '9' {
			return fallback
		}
		n = n*10 + int(c-'0')
	}
	return n
}

// corsMiddleware allows browser clients during development
func corsMiddleware(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		h.ServeHTTP(w, r)
	})
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Init(false)
		log.Fatalf(context.Background(), "Failed to load config: %v", err)
	}
	log.Init(cfg.Server.Debug)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info(context.Background(), "Program terminated externally. Exiting...")
		cancel()
	}()

	// Storage is optional: without it the token lives in-process only and
	// search responses are not cached.
	var tokenStore amadeus.TokenStore
	db, err := orm.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		log.Warnf(ctx, "database unavailable, running without durable cache: %v", err)
		db = nil
	} else {
		tokenStore = &orm.TokenStore{DB: db}
	}

	m := metrics.New("flightfinder")

	// The primary source must be able to authenticate; without it there is
	// nothing to search.
	amadeusClient, err := amadeus.NewClient(
		cfg.Amadeus.ClientID, cfg.Amadeus.ClientSecret, cfg.Amadeus.BaseURL,
		time.Duration(cfg.Amadeus.TimeoutSecs)*time.Second, tokenStore)
	if err != nil {
		log.Fatalf(ctx, "Failed to initialize Amadeus client: %v", err)
	}
	amadeusClient.Marker = cfg.Affiliate.Marker
	amadeusClient.LinkHost = cfg.Affiliate.Host
	amadeusClient.Currency = cfg.Search.Currency
	amadeusClient.Metrics = m

	svc := &flights.Service{
		Offers:  amadeusClient,
		Metrics: m,
		DB:      db,
		TTL:     time.Duration(cfg.Search.CacheTTLSecs) * time.Second,
	}

	// A missing metasearch token just means no deep links; the source is
	// never queried.
	if cfg.Travelpayouts.Token != "" {
		tp := travelpayouts.NewClient(
			cfg.Travelpayouts.Token, cfg.Affiliate.Marker, cfg.Affiliate.Host,
			cfg.Travelpayouts.UserIP, cfg.Travelpayouts.Locale, cfg.Travelpayouts.BaseURL,
			time.Duration(cfg.Travelpayouts.TimeoutSecs)*time.Second)
		tp.Metrics = m
		svc.Links = tp
	} else {
		log.Warnf(ctx, "TRAVELPAYOUTS_API_TOKEN not set; deep-link matching disabled")
	}

	server := &searchServer{svc: svc, featuredLimit: cfg.Search.FeaturedFlightLimit}

	mux := http.NewServeMux()
	mux.HandleFunc("/flights/results", server.handleResults)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: h2c.NewHandler(corsMiddleware(mux), &http2.Server{}),
	}

	go func() {
		<-ctx.Done()
		log.Info(context.Background(), "Shutting down server...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Infof(ctx, "Starting server on port %s", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf(ctx, "Server failed: %v", err)
	}
}
