// Copyright 2026 The VoteATX Authors
//
// SPDX-License-Identifier: Apache-2.0
package resolver

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/open-austin/voteatx/dataset"
	"github.com/open-austin/voteatx/spatial"
)

// Server exposes the resolvers over HTTP. The dataset snapshot is held
// behind an atomic pointer so a new election cycle can be published
// without in-flight queries ever seeing a partial dataset.
type Server struct {
	cfg     Config
	clock   clockwork.Clock
	metrics *Metrics
	reg     *prometheus.Registry
	mapsKey string

	store atomic.Pointer[dataset.Store]
}

// NewServer binds a server to a dataset snapshot. The clock supplies the
// default query instant; serve passes a real clock, tests a fake one.
func NewServer(store *dataset.Store, cfg Config, clock clockwork.Clock) *Server {
	reg := prometheus.NewRegistry()

	s := &Server{
		cfg:     cfg,
		clock:   clock,
		metrics: NewMetrics(reg),
		reg:     reg,
	}
	s.SwapStore(store)

	return s
}

// SwapStore atomically publishes a new dataset snapshot.
func (s *Server) SwapStore(store *dataset.Store) {
	s.store.Store(store)
	s.metrics.DatasetPlaces.Set(float64(len(store.Places())))
}

// ResolveMapsKey looks up the Google Maps browser key served to the map
// frontend. Optional; call before Run when the map overlay is wanted.
func (s *Server) ResolveMapsKey(ctx context.Context) {
	s.mapsKey = MapsAPIKey(ctx)
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.Default()

	r.GET("/healthz", s.health)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.reg, promhttp.HandlerOpts{})))
	r.GET("/api/v1/voting-places", s.votingPlaces)
	r.GET("/api/v1/map-config", s.mapConfig)

	return r
}

// Run serves until the listener fails.
func (s *Server) Run(addr string) error {
	return s.Router().Run(addr)
}

func (s *Server) health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"places": len(s.store.Load().Places()),
	})
}

func (s *Server) mapConfig(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"maps_api_key": s.mapsKey})
}

// acceptable layouts for the time parameter, most specific first.
var timeLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04"}

func (s *Server) queryInstant(ctx *gin.Context) (time.Time, bool) {
	raw := ctx.Query("time")
	if raw == "" {
		return s.clock.Now().In(s.cfg.TZ), true
	}

	for _, layout := range timeLayouts {
		if at, err := time.ParseInLocation(layout, raw, s.cfg.TZ); err == nil {
			return at, true
		}
	}

	ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid time parameter"})

	return time.Time{}, false
}

func queryFloat(ctx *gin.Context, name string) (float64, bool, bool) {
	raw := ctx.Query(name)
	if raw == "" {
		return 0, false, true
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name + " parameter"})

		return 0, false, false
	}

	return v, true, true
}

func (s *Server) votingPlaces(ctx *gin.Context) {
	start := time.Now()
	defer func() { s.metrics.RequestDuration.Observe(time.Since(start).Seconds()) }()

	lat, latSet, ok := queryFloat(ctx, "latitude")
	if !ok {
		return
	}

	lng, lngSet, ok := queryFloat(ctx, "longitude")
	if !ok {
		return
	}

	if !latSet || !lngSet {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "latitude and longitude parameters are required"})

		return
	}

	pt, err := spatial.NewCoord(lat, lng, spatial.Degrees)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	at, ok := s.queryInstant(ctx)
	if !ok {
		return
	}

	maxDistance, _, ok := queryFloat(ctx, "max_distance")
	if !ok {
		return
	}

	maxPlaces := 0

	if raw := ctx.Query("max_places"); raw != "" {
		maxPlaces, err = strconv.Atoi(raw)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid max_places parameter"})

			return
		}
	}

	store := s.store.Load()

	electionDay, err := NewElectionDayResolver(store, s.cfg).Resolve(pt, at)
	s.metrics.observe("election_day", boolToCount(electionDay != nil), err)

	if err != nil {
		// Data-integrity defect: refuse to serve a guess from a corrupt
		// dataset.
		log.Printf("election day resolution failed for %s: %v", pt, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "dataset integrity failure"})

		return
	}

	early, err := NewEarlyVotingResolver(store, s.cfg).Resolve(pt, at, maxDistance, maxPlaces)
	s.metrics.observe("early_voting", len(early), err)

	if err != nil {
		log.Printf("early voting resolution failed for %s: %v", pt, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "dataset integrity failure"})

		return
	}

	places := make([]*Result, 0, 1+len(early))
	if electionDay != nil {
		places = append(places, electionDay)
	}

	places = append(places, early...)

	ctx.JSON(http.StatusOK, gin.H{
		"time":   at.Format(time.RFC3339),
		"places": places,
	})
}

func boolToCount(b bool) int {
	if b {
		return 1
	}

	return 0
}
