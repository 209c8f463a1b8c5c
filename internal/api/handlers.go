package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MikeSquared-Agency/reviewlens/internal/analytics"
	"github.com/MikeSquared-Agency/reviewlens/internal/recommend"
)

const (
	defaultCompareMonths = 3
	maxCompareMonths     = 24
	defaultHistoryLimit  = 10
	maxHistoryLimit      = 100
	maxBodyBytes         = 8 << 20
)

func (s *Server) listBusinesses(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"businesses": s.svc.Businesses()})
}

// analysis handles GET /api/v1/businesses/{slug}/analysis
func (s *Server) analysis(w http.ResponseWriter, r *http.Request) {
	report, err := s.svc.Analyze(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// comparison handles GET /api/v1/businesses/{slug}/comparison?months=N
func (s *Server) comparison(w http.ResponseWriter, r *http.Request) {
	months, err := intParam(r, "months", defaultCompareMonths, 1, maxCompareMonths)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	cmp, err := s.svc.Compare(r.Context(), chi.URLParam(r, "slug"), months, s.now())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cmp)
}

// recommend handles POST /api/v1/businesses/{slug}/recommendations. The body
// is optional; its fields override the server's provider for this call.
func (s *Server) recommend(w http.ResponseWriter, r *http.Request) {
	var override recommend.ProviderConfig
	if err := decodeOptional(r, &override); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	res, err := s.svc.Recommend(r.Context(), chi.URLParam(r, "slug"), override)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// recommendationHistory handles GET /api/v1/businesses/{slug}/recommendations?limit=N
func (s *Server) recommendationHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit", defaultHistoryLimit, 1, maxHistoryLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	runs, err := s.svc.History(r.Context(), chi.URLParam(r, "slug"), limit)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs, "count": len(runs)})
}

type analyzeRequest struct {
	Reviews []analytics.Review `json:"reviews"`
}

// analyzeReviews handles POST /api/v1/analyze
func (s *Server) analyzeReviews(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.svc.AnalyzeReviews(req.Reviews))
}

// refresh handles POST /api/v1/refresh
func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.RefreshAll(r.Context()); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "refreshed"})
}

func decodeOptional(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func intParam(r *http.Request, name string, def, lo, hi int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < lo || n > hi {
		return 0, fmt.Errorf("%s must be an integer between %d and %d", name, lo, hi)
	}
	return n, nil
}
