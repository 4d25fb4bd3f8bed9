package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"fintrack/internal/core"
	"fintrack/internal/service"
)

func decodeInput(r *http.Request) (service.TransactionInput, error) {
	var in service.TransactionInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		var ve core.ValidationError
		ve.Add("body", "must be a JSON object")
		return service.TransactionInput{}, ve.Err()
	}
	return in, nil
}

// parseListParams reads the filter and pagination query parameters.
// Non-numeric page or limit values fall back to the defaults; date
// validation happens in the service layer.
func parseListParams(r *http.Request) service.ListParams {
	q := r.URL.Query()
	page, _ := strconv.ParseInt(q.Get("page"), 10, 64)
	limit, _ := strconv.ParseInt(q.Get("limit"), 10, 64)
	return service.ListParams{
		Type:      q.Get("type"),
		Category:  q.Get("category"),
		StartDate: q.Get("startDate"),
		EndDate:   q.Get("endDate"),
		Page:      page,
		Limit:     limit,
	}
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	in, err := decodeInput(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	tx, err := s.svc.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateCaches()
	writeJSON(w, http.StatusCreated, tx)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	key := "list:" + r.URL.RawQuery
	if cached, ok := s.listCache.Get(key); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	txs, total, err := s.svc.List(r.Context(), parseListParams(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if txs == nil {
		txs = []core.Transaction{}
	}

	resp := listResponse{Data: txs, Total: total}
	s.listCache.Set(key, resp)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	tx, err := s.svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	in, err := decodeInput(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	tx, err := s.svc.Update(r.Context(), r.PathValue("id"), in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateCaches()
	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateCaches()
	writeJSON(w, http.StatusOK, messageResponse{Message: "Deleted"})
}
