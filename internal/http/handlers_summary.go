package http

import (
	"net/http"

	chart "github.com/wcharczuk/go-chart/v2"
)

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	key := "summary:" + r.URL.RawQuery
	if cached, ok := s.summaryCache.Get(key); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	summary, err := s.svc.Summarize(r.Context(), parseListParams(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.summaryCache.Set(key, summary)
	writeJSON(w, http.StatusOK, summary)
}

// handleSummaryChart renders the per-category totals as a PNG bar
// chart. With no matching categories there is nothing to draw, so the
// endpoint answers 204.
func (s *Server) handleSummaryChart(w http.ResponseWriter, r *http.Request) {
	summary, err := s.svc.Summarize(r.Context(), parseListParams(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if len(summary.ByCategory) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	bars := make([]chart.Value, 0, len(summary.ByCategory))
	for _, ct := range summary.ByCategory {
		label := ct.Category
		if label == "" {
			label = "uncategorized"
		}
		bars = append(bars, chart.Value{Label: label, Value: ct.Total})
	}

	graph := chart.BarChart{
		Title:    "Totals by category",
		Width:    max(256, 120*len(bars)),
		Height:   512,
		BarWidth: 60,
		Bars:     bars,
	}

	w.Header().Set("Content-Type", "image/png")
	if err := graph.Render(chart.PNG, w); err != nil {
		s.logger.ErrorContext(r.Context(), "Chart rendering failed", "error", err)
	}
}
