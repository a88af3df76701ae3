package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/munisearch/lienportal-core/internal/place"
)

// Metric source labels for county reads.
const (
	sourceUpstream = "upstream"
	sourceCache    = "cache"
)

// handleListCounties returns the transformed county list.
//
// The upstream is the source of truth: each request fetches and
// re-transforms the live place list, then refreshes the cache as a
// side effect. When the upstream is down, the last cached list is
// served instead; 502 only when both fail.
func (s *Server) handleListCounties(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	counties, err := s.fetchCounties(r)
	if err == nil {
		if s.metrics != nil {
			s.metrics.RecordCountyRequest(sourceUpstream)
		}
		writeJSON(w, http.StatusOK, counties)
		return
	}

	s.logger.Warn("upstream fetch failed, serving cache", "error", err)

	cached, cacheErr := s.cache.ListCounties(ctx)
	if cacheErr != nil || len(cached) == 0 {
		if cacheErr != nil {
			s.logger.Error("cache read failed", "error", cacheErr)
		}
		writeBadGateway(w, "county data is temporarily unavailable")
		return
	}

	if s.metrics != nil {
		s.metrics.RecordCountyRequest(sourceCache)
	}
	writeJSON(w, http.StatusOK, cached)
}

// handleGetCounty returns one county with its municipalities.
func (s *Server) handleGetCounty(w http.ResponseWriter, r *http.Request) {
	county, ok := s.countyByID(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, county)
}

// handleListMunicipalities returns one county's municipalities.
func (s *Server) handleListMunicipalities(w http.ResponseWriter, r *http.Request) {
	county, ok := s.countyByID(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, county.Municipalities)
}

// countyByID resolves {id} against the cache, refreshing from the
// upstream when the cache has no answer. Writes the error response
// itself and returns ok=false on failure.
func (s *Server) countyByID(w http.ResponseWriter, r *http.Request) (*place.County, bool) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	county, err := s.cache.GetCounty(ctx, id)
	if err == nil {
		return county, true
	}
	if !errors.Is(err, place.ErrCountyNotFound) {
		s.logger.Error("cache read failed", "county_id", id, "error", err)
		writeInternalError(w, "county lookup failed")
		return nil, false
	}

	// Cache miss: the cache may simply be cold. One refresh, one retry.
	// A failed refresh is an outage, not proof the county is unknown.
	if _, err := s.fetchCounties(r); err != nil {
		s.logger.Warn("upstream fetch failed resolving county", "county_id", id, "error", err)
		writeBadGateway(w, "county data is temporarily unavailable")
		return nil, false
	}

	county, err = s.cache.GetCounty(ctx, id)
	if err != nil {
		writeNotFound(w, "county not found")
		return nil, false
	}
	return county, true
}

// fetchCounties pulls the live place list, transforms it, and
// refreshes the cache. Cache write failures are logged, not fatal:
// the fresh data is still returned.
func (s *Server) fetchCounties(r *http.Request) ([]place.County, error) {
	ctx := r.Context()

	start := time.Now()
	places, err := s.upstream.GetPlaces(ctx)
	if s.metrics != nil {
		s.metrics.RecordUpstreamLatency("GetPlaces", time.Since(start))
	}
	if err != nil {
		return nil, err
	}

	counties := s.transformer.TransformPlaces(places)

	if err := s.cache.ReplaceAll(ctx, counties); err != nil {
		s.logger.Warn("cache refresh failed", "error", err)
	}

	return counties, nil
}
