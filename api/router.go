// Package api serves the query service and the market report over HTTP.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"property-scraper/models"
	"property-scraper/services"
	"property-scraper/utils"
)

const welcome = "Welcome to the Nigeria Real Estate API. Endpoints: /api/average_price, /api/trends, /api/insights."

// Handler answers API requests from an immutable dataset snapshot.
type Handler struct {
	query    *services.QueryService
	insights *services.InsightService
	logger   *utils.Logger
}

// NewHandler returns a Handler answering price queries from query and
// report requests from insights.
func NewHandler(query *services.QueryService, insights *services.InsightService, logger *utils.Logger) *Handler {
	return &Handler{query: query, insights: insights, logger: logger}
}

// Router returns the API routes with request logging attached.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(h.logRequests)

	r.MethodNotAllowedHandler = http.HandlerFunc(handleMethodNotAllowed)

	r.HandleFunc("/", h.handleRoot).Methods(http.MethodGet)
	r.HandleFunc("/api/average_price", h.handleAveragePrice).Methods(http.MethodGet)
	r.HandleFunc("/api/trends", h.handleTrends).Methods(http.MethodGet)
	r.HandleFunc("/api/insights", h.handleInsights).Methods(http.MethodGet)
	return r
}

func handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, r.Method+" not allowed on "+r.URL.Path)
}

func (h *Handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": welcome})
}

func (h *Handler) handleAveragePrice(w http.ResponseWriter, r *http.Request) {
	city, ok := requireCity(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.query.AveragePrice(city, r.URL.Query().Get("property_type")))
}

func (h *Handler) handleTrends(w http.ResponseWriter, r *http.Request) {
	city, ok := requireCity(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.query.MonthlyTrend(city, r.URL.Query().Get("property_type")))
}

func (h *Handler) handleInsights(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.InsightFilter{
		City:     strings.TrimSpace(q.Get("city")),
		Category: strings.TrimSpace(q.Get("category")),
	}
	for name, dst := range map[string]**float64{"min_price": &filter.MinPrice, "max_price": &filter.MaxPrice} {
		raw := strings.TrimSpace(q.Get(name))
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, name+" must be a number")
			return
		}
		*dst = &v
	}
	writeJSON(w, http.StatusOK, h.insights.Generate(h.query.Rows(), filter))
}

func requireCity(w http.ResponseWriter, r *http.Request) (string, bool) {
	city := strings.TrimSpace(r.URL.Query().Get("city"))
	if city == "" {
		writeError(w, http.StatusBadRequest, "query parameter 'city' is required")
		return "", false
	}
	return city, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		h.logger.Info("[api] %s %s → %d (%s)", r.Method, r.URL.RequestURI(), rec.status, time.Since(start).Round(time.Microsecond))
	})
}
