package webd

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/jellydator/ttlcache/v3"
	"github.com/paulmach/orb/geojson"
	"github.com/rotblauer/gpxnap/api"
	"github.com/rotblauer/gpxnap/common"
	"github.com/rotblauer/gpxnap/gpx"
	"github.com/rotblauer/gpxnap/ndgeojson"
	"github.com/rotblauer/gpxnap/params"
	"github.com/rotblauer/gpxnap/tabular"
	"github.com/rotblauer/gpxnap/types/trackpoint"
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"
)

const (
	HeaderInputPoints  = "X-Gpxnap-Input-Points"
	HeaderOutputPoints = "X-Gpxnap-Output-Points"
	HeaderStays        = "X-Gpxnap-Stays"
	HeaderCache        = "X-Gpxnap-Cache"
)

var countHeaders = []string{HeaderInputPoints, HeaderOutputPoints, HeaderStays, HeaderCache}

func pingPong(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("pong"))
}

type webDaemonStatus struct {
	StartedAt time.Time               `json:"started_at"`
	Uptime    string                  `json:"uptime"`
	Requests  int64                   `json:"requests"`
	CacheLen  int                     `json:"cache_len"`
	CacheHits int64                   `json:"cache_hits"`
	Config    *params.WebDaemonConfig `json:"config"`
}

func (s *WebDaemon) statusReport(w http.ResponseWriter, r *http.Request) {
	st := webDaemonStatus{
		StartedAt: s.started,
		Uptime:    time.Since(s.started).Round(time.Second).String(),
		Requests:  s.requests.Load(),
		CacheHits: s.cacheHits.Load(),
		Config:    s.Config,
	}
	if s.cache != nil {
		st.CacheLen = s.cache.Len()
	}
	j, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		s.logger.Error("Failed to marshal status", "error", err)
		http.Error(w, "Failed to marshal status", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(j); err != nil {
		s.logger.Error("Failed to write response", "error", err)
	}
}

// decodeBody reads the request body as points, choosing a decoder by Content-Type.
// CSV and newline-delimited GeoJSON are recognized; anything else is read as GPX.
func decodeBody(contentType string, body []byte) ([]trackpoint.TrackPoint, error) {
	mt, _, _ := mime.ParseMediaType(contentType)
	switch mt {
	case "text/csv", "application/csv":
		return tabular.Read(bytes.NewReader(body))
	case "application/x-ndjson", "application/geo+json-seq", "application/geo+json":
		return ndgeojson.Read(bytes.NewReader(body))
	}
	f, err := gpx.Read(bytes.NewReader(body))
	if err != nil {
		return nil, common.InvalidInputf(-1, "", "%v", err)
	}
	return f.Points()
}

// statusFor maps simplify errors to HTTP statuses.
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, common.ErrInvalidInput), errors.Is(err, common.ErrMissingRequiredField):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func (s *WebDaemon) cacheKey(route string, r *http.Request, body []byte) string {
	sum := sha256.Sum256(body)
	return route + "|" + r.Header.Get("Content-Type") + "|" + r.URL.RawQuery + "|" + hex.EncodeToString(sum[:])
}

// serveCached replays a cached response, reporting whether there was one.
func (s *WebDaemon) serveCached(w http.ResponseWriter, key string) bool {
	if s.cache == nil {
		return false
	}
	item := s.cache.Get(key)
	if item == nil {
		return false
	}
	s.cacheHits.Add(1)
	s.writeResponse(w, item.Value(), "hit")
	return true
}

func (s *WebDaemon) store(key string, resp *cachedResponse) {
	if s.cache != nil {
		s.cache.Set(key, resp, ttlcache.DefaultTTL)
	}
}

func (s *WebDaemon) writeResponse(w http.ResponseWriter, resp *cachedResponse, cacheState string) {
	for k, vs := range resp.Header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	w.Header().Set("Content-Type", resp.ContentType)
	w.Header().Set(HeaderCache, cacheState)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(resp.Body); err != nil {
		s.logger.Error("Failed to write response", "error", err)
	}
}

// readBody reads a bounded request body.
// On failure it has already written the error response.
func (s *WebDaemon) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	if s.Config.MaxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.Config.MaxBodyBytes)
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.logger.Error("Failed to read request body", "error", err)
		http.Error(w, err.Error(), statusFor(err))
		return nil, false
	}
	if len(body) == 0 {
		http.Error(w, "Please send a request body", http.StatusBadRequest)
		return nil, false
	}
	return body, true
}

// simplifyBody decodes and simplifies body, writing the error response on failure.
func (s *WebDaemon) simplifyBody(w http.ResponseWriter, r *http.Request, body []byte) (*api.Result, bool) {
	points, err := decodeBody(r.Header.Get("Content-Type"), body)
	if err == nil {
		var res *api.Result
		if res, err = s.simplifier.Simplify(points); err == nil {
			s.logger.Info("Simplified track",
				"in", res.InputPointCount, "out", res.OutputPointCount, "stays", res.StayRegionCount)
			return res, true
		}
	}
	s.logger.Warn("Failed to simplify request", "error", err)
	http.Error(w, err.Error(), statusFor(err))
	return nil, false
}

func countHeader(res *api.Result) http.Header {
	h := http.Header{}
	h.Set(HeaderInputPoints, strconv.Itoa(res.InputPointCount))
	h.Set(HeaderOutputPoints, strconv.Itoa(res.OutputPointCount))
	h.Set(HeaderStays, strconv.Itoa(res.StayRegionCount))
	return h
}

// formatContentTypes maps the format query parameter to response types.
var formatContentTypes = map[string]string{
	"":       "application/gpx+xml",
	"gpx":    "application/gpx+xml",
	"csv":    "text/csv",
	"ndjson": "application/x-ndjson",
}

// handleSimplify returns the simplified track, as GPX unless the format
// query parameter asks for csv or ndjson.
func (s *WebDaemon) handleSimplify(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	contentType, ok := formatContentTypes[format]
	if !ok {
		http.Error(w, fmt.Sprintf("unknown format %q", format), http.StatusBadRequest)
		return
	}
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}
	key := s.cacheKey("simplify", r, body)
	if s.serveCached(w, key) {
		return
	}
	res, ok := s.simplifyBody(w, r, body)
	if !ok {
		return
	}

	buf := new(bytes.Buffer)
	var err error
	switch format {
	case "csv":
		err = tabular.WriteCSV(buf, res.Points)
	case "ndjson":
		err = ndgeojson.Write(buf, res.Points)
	default:
		err = gpx.Write(buf, r.URL.Query().Get("name"), res.Points)
	}
	if err != nil {
		s.logger.Error("Failed to encode response", "error", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
	resp := &cachedResponse{ContentType: contentType, Header: countHeader(res), Body: buf.Bytes()}
	s.store(key, resp)
	s.writeResponse(w, resp, "miss")
}

type simplifyReport struct {
	*api.Result
	Ratio        float64                    `json:"ratio"`
	StayFeatures *geojson.FeatureCollection `json:"stay_features"`
}

// handleSimplifyReport returns the run and stay summaries as JSON.
func (s *WebDaemon) handleSimplifyReport(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}
	key := s.cacheKey("report", r, body)
	if s.serveCached(w, key) {
		return
	}
	res, ok := s.simplifyBody(w, r, body)
	if !ok {
		return
	}
	fc := geojson.NewFeatureCollection()
	for _, st := range res.Stays {
		fc.Append(st.Feature())
	}
	j, err := json.Marshal(simplifyReport{Result: res, Ratio: res.Ratio(), StayFeatures: fc})
	if err != nil {
		s.logger.Error("Failed to marshal report", "error", err)
		http.Error(w, "Failed to marshal report", http.StatusInternalServerError)
		return
	}
	resp := &cachedResponse{ContentType: "application/json", Header: countHeader(res), Body: j}
	s.store(key, resp)
	s.writeResponse(w, resp, "miss")
}
