package server

import (
	"net/http"
	"strings"

	"github.com/emretezel/pyvalue-sub000/internal/common"
	"github.com/emretezel/pyvalue-sub000/internal/models"
)

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)

	// Data
	mux.HandleFunc("/api/symbols", s.handleSymbols)
	mux.HandleFunc("/api/metrics", s.handleMetricCatalog)
	mux.HandleFunc("/api/metrics/", s.handleMetrics)
	mux.HandleFunc("/api/facts/", s.handleFacts)
	mux.HandleFunc("/api/prices/", s.handlePrice)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, common.GetVersionInfo())
}

func (s *Server) handleSymbols(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	symbols, err := s.app.Storage.FactStore().ListSymbols(r.Context())
	if err != nil {
		s.requestLogger(r).Error().Err(err).Msg("Failed to list symbols")
		WriteError(w, http.StatusInternalServerError, "Failed to list symbols")
		return
	}
	if symbols == nil {
		symbols = []string{}
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"symbols": symbols})
}

func (s *Server) handleMetricCatalog(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"metrics": s.app.Registry.IDs()})
}

// handleMetrics serves /api/metrics/{symbol} and /api/metrics/{symbol}/{metric}.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	parts := PathSegments(r, "/api/metrics/")
	store := s.app.Storage.MetricsStore()

	switch len(parts) {
	case 1:
		symbol := strings.ToUpper(parts[0])
		records, err := store.ListForSymbol(r.Context(), symbol)
		if err != nil {
			s.requestLogger(r).Error().Str("symbol", symbol).Err(err).Msg("Failed to list metrics")
			WriteError(w, http.StatusInternalServerError, "Failed to list metrics")
			return
		}
		if records == nil {
			records = []*models.MetricRecord{}
		}
		WriteJSON(w, http.StatusOK, map[string]interface{}{
			"symbol":  symbol,
			"metrics": records,
		})
	case 2:
		symbol := strings.ToUpper(parts[0])
		record, err := store.Fetch(r.Context(), symbol, parts[1])
		if err != nil {
			s.requestLogger(r).Error().Str("symbol", symbol).Str("metric", parts[1]).Err(err).Msg("Failed to fetch metric")
			WriteError(w, http.StatusInternalServerError, "Failed to fetch metric")
			return
		}
		if record == nil {
			WriteError(w, http.StatusNotFound, "Metric not found")
			return
		}
		WriteJSON(w, http.StatusOK, record)
	default:
		WriteError(w, http.StatusNotFound, "Expected /api/metrics/{symbol}[/{metric}]")
	}
}

// handleFacts serves /api/facts/{symbol}/{concept}?period=FY&limit=N.
func (s *Server) handleFacts(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	parts := PathSegments(r, "/api/facts/")
	if len(parts) != 2 {
		WriteError(w, http.StatusNotFound, "Expected /api/facts/{symbol}/{concept}")
		return
	}
	limit, ok := QueryInt(r, "limit", 0)
	if !ok {
		WriteError(w, http.StatusBadRequest, "limit must be a non-negative integer")
		return
	}

	symbol, concept := strings.ToUpper(parts[0]), parts[1]
	var opts []models.FactOption
	if period := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("period"))); period != "" {
		opts = append(opts, models.WithFiscalPeriod(period))
	}
	if limit > 0 {
		opts = append(opts, models.WithLimit(limit))
	}

	facts, err := s.app.Storage.FactStore().FactsForConcept(r.Context(), symbol, concept, opts...)
	if err != nil {
		s.requestLogger(r).Error().Str("symbol", symbol).Str("concept", concept).Err(err).Msg("Failed to load facts")
		WriteError(w, http.StatusInternalServerError, "Failed to load facts")
		return
	}
	if facts == nil {
		facts = []models.FactRecord{}
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"symbol":  symbol,
		"concept": concept,
		"facts":   facts,
	})
}

func (s *Server) handlePrice(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	parts := PathSegments(r, "/api/prices/")
	if len(parts) != 1 {
		WriteError(w, http.StatusNotFound, "Expected /api/prices/{symbol}")
		return
	}
	symbol := strings.ToUpper(parts[0])
	snap, err := s.app.Storage.MarketStore().LatestSnapshot(r.Context(), symbol)
	if err != nil {
		s.requestLogger(r).Error().Str("symbol", symbol).Err(err).Msg("Failed to load price")
		WriteError(w, http.StatusInternalServerError, "Failed to load price")
		return
	}
	if snap == nil {
		WriteError(w, http.StatusNotFound, "No price stored for "+symbol)
		return
	}
	WriteJSON(w, http.StatusOK, snap)
}
